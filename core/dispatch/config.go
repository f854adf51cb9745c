package dispatch

import (
	"fmt"
	"time"
)

// Config holds the rollout and accrual timings.
type Config struct {
	// ActivationWindow spreads cluster activations evenly.
	ActivationWindow time.Duration `json:"activation_window"`
	PhaseTwoAt       time.Duration `json:"phase_two_at"`
	PhaseThreeAt     time.Duration `json:"phase_three_at"`
	AccrualInterval  time.Duration `json:"accrual_interval"`
	AccrualWindow    time.Duration `json:"accrual_window"`
	// RatePerMW is the accrued dollars per MW of demand per interval.
	RatePerMW    float64 `json:"rate_per_mw"`
	ChargeTarget float64 `json:"charge_target"`
	// Seed drives the command sequence number and accrual noise. Zero seeds
	// from the clock.
	Seed int64 `json:"seed"`
}

// SetDefaults fills zero fields.
func (c *Config) SetDefaults() {
	if c.ActivationWindow <= 0 {
		c.ActivationWindow = 3 * time.Second
	}
	if c.PhaseTwoAt <= 0 {
		c.PhaseTwoAt = 3200 * time.Millisecond
	}
	if c.PhaseThreeAt <= 0 {
		c.PhaseThreeAt = 5500 * time.Millisecond
	}
	if c.AccrualInterval <= 0 {
		c.AccrualInterval = time.Second
	}
	if c.AccrualWindow <= 0 {
		c.AccrualWindow = 30 * time.Second
	}
	if c.RatePerMW == 0 {
		c.RatePerMW = 10
	}
	if c.ChargeTarget == 0 {
		c.ChargeTarget = 0.95
	}
}

// Validate checks phase ordering and the accrual window.
func (c Config) Validate() error {
	if c.PhaseTwoAt < c.ActivationWindow {
		return fmt.Errorf("phase_two_at (%s) must not precede the activation window (%s)", c.PhaseTwoAt, c.ActivationWindow)
	}
	if c.PhaseThreeAt < c.PhaseTwoAt {
		return fmt.Errorf("phase_three_at must not precede phase_two_at")
	}
	if c.AccrualWindow < c.AccrualInterval {
		return fmt.Errorf("accrual_window must cover at least one interval")
	}
	if c.ChargeTarget <= 0 || c.ChargeTarget > 1 {
		return fmt.Errorf("charge_target must be in (0, 1]")
	}
	return nil
}

func (c Config) accrualTicks() int {
	return int(c.AccrualWindow / c.AccrualInterval)
}
