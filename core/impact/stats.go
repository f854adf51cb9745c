package impact

import (
	"time"

	"github.com/kilianp07/gridpulse/core/model"
)

// NoDeadlineLabel is shown when there is no event to derive a deadline from.
const NoDeadlineLabel = "-"

// Stats aggregates the impact of the events sharing a date.
type Stats struct {
	EventCount     int       `json:"event_count"`
	DemandMW       float64   `json:"demand_mw"`
	Batteries      int       `json:"batteries"`
	Deadline       time.Time `json:"deadline,omitempty"`
	HasDeadline    bool      `json:"has_deadline"`
	PreChargeLabel string    `json:"pre_charge_by"`
	Spread         float64   `json:"spread_per_battery"`
	Revenue        float64   `json:"revenue_estimate"`
	Zones          []string  `json:"zones"`
	EarliestID     string    `json:"earliest_event_id,omitempty"`
	Tier           Tier      `json:"tier"`
}

// Aggregate folds events into Stats at the given price. Battery totals are
// summed then capped at the fleet size. An empty list yields zero figures, a
// "-" deadline label and the tier of the price.
func Aggregate(events []model.Event, price float64) Stats {
	st := Stats{
		EventCount:     len(events),
		PreChargeLabel: NoDeadlineLabel,
		Zones:          []string{},
		Tier:           TierFor(price),
	}
	if len(events) == 0 {
		return st
	}
	demand := 0.0
	batteries := 0
	for _, e := range events {
		demand += DemandMW(e)
		batteries += BatteriesNeeded(e)
	}
	if batteries > model.FleetSize {
		batteries = model.FleetSize
	}
	st.DemandMW = round1(demand)
	st.Batteries = batteries
	st.Spread = SpreadPerUnit(price)
	st.Revenue = float64(batteries) * st.Spread
	st.Zones = Zones(events)
	if e, ok := Earliest(events); ok {
		st.EarliestID = e.ID
		st.Deadline = e.End.Add(-PreChargeLead)
		st.HasDeadline = true
		st.PreChargeLabel = model.ClockLabel(st.Deadline)
	}
	return st
}
