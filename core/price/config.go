package price

import (
	"fmt"
	"time"
)

// Config defines the synthetic market price process.
type Config struct {
	// FeedURL is probed once at startup. Empty means simulate directly.
	FeedURL      string        `json:"feed_url"`
	ProbeTimeout time.Duration `json:"probe_timeout"`
	TickInterval time.Duration `json:"tick_interval"`
	RampDuration time.Duration `json:"ramp_duration"`
	Initial      float64       `json:"initial"`
	Min          float64       `json:"min"`
	Max          float64       `json:"max"`
	Jitter       float64       `json:"jitter"`
	RampMin      float64       `json:"ramp_min"`
	RampMax      float64       `json:"ramp_max"`
	// Seed drives jitter and ramp targets. Zero seeds from the clock.
	Seed int64 `json:"seed"`
}

// SetDefaults fills zero fields with the standard process parameters.
func (c *Config) SetDefaults() {
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 3 * time.Second
	}
	if c.TickInterval <= 0 {
		c.TickInterval = 5 * time.Second
	}
	if c.RampDuration <= 0 {
		c.RampDuration = 24 * time.Second
	}
	if c.Min == 0 {
		c.Min = 20
	}
	if c.Max == 0 {
		c.Max = 450
	}
	if c.Initial == 0 {
		c.Initial = 52
	}
	if c.Jitter == 0 {
		c.Jitter = 7
	}
	if c.RampMin == 0 {
		c.RampMin = 90
	}
	if c.RampMax == 0 {
		c.RampMax = 220
	}
}

// Validate checks the band and ramp parameters.
func (c Config) Validate() error {
	if c.Min <= 0 || c.Max <= c.Min {
		return fmt.Errorf("price band invalid: min=%v max=%v", c.Min, c.Max)
	}
	if c.Initial < c.Min || c.Initial > c.Max {
		return fmt.Errorf("initial price %v outside [%v, %v]", c.Initial, c.Min, c.Max)
	}
	if c.Jitter < 0 {
		return fmt.Errorf("jitter must be non-negative")
	}
	if c.RampMax < c.RampMin {
		return fmt.Errorf("ramp_max must be >= ramp_min")
	}
	return nil
}
