// Package impact holds the pure functions that turn events and a market price
// into grid demand, battery allocation and revenue figures. Every function is
// total: unknown categories, zero attendance and empty inputs all produce a
// defined result.
package impact

import (
	"math"
	"time"

	"github.com/kilianp07/gridpulse/core/model"
)

const (
	// DemandCoefficient converts attendees into MW of post-event load.
	DemandCoefficient = 0.00003
	// MinBatteries is the per-event allocation floor.
	MinBatteries = 50
	// SelloutAttendance scales football allocations by stadium fill.
	SelloutAttendance = 95000.0
	// PreChargeLead is how long before the earliest end charging must finish.
	PreChargeLead = 90 * time.Minute
)

var batteryBase = map[model.Category]float64{
	model.Football:         1000,
	model.MensBasketball:   280,
	model.WomensBasketball: 220,
	model.Baseball:         210,
	model.Softball:         170,
	model.Soccer:           155,
	model.MensTennis:       75,
	model.WomensTennis:     75,
	model.MensSwimming:     60,
	model.WomensSwimming:   60,
	model.BeachVolleyball:  70,
}

const defaultBatteryBase = 90

func round1(v float64) float64 { return math.Round(v*10) / 10 }

// demandMultiplier is the single temperature curve used for every category.
func demandMultiplier(tempF int) float64 {
	switch {
	case tempF > 90:
		return 1.8
	case tempF > 78:
		return 1.3
	default:
		return 1.0
	}
}

func batteryTempFactor(tempF int) float64 {
	switch {
	case tempF > 90:
		return 1.25
	case tempF > 78:
		return 1.1
	default:
		return 1.0
	}
}

// DemandMW projects the post-event load increase in MW, rounded to 0.1.
func DemandMW(e model.Event) float64 {
	return round1(float64(e.Attendance) * DemandCoefficient * demandMultiplier(e.TempF))
}

// BatteriesNeeded allocates units for one event, clamped to
// [MinBatteries, model.FleetSize]. Football allocations scale with the
// event's own attendance against a sellout crowd.
func BatteriesNeeded(e model.Event) int {
	base, ok := batteryBase[e.Category]
	if !ok {
		base = defaultBatteryBase
	}
	fill := 1.0
	if e.Category == model.Football {
		fill = float64(e.Attendance) / SelloutAttendance
	}
	n := int(math.Round(base * batteryTempFactor(e.TempF) * fill))
	return clamp(n, MinBatteries, model.FleetSize)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SpreadPerUnit maps a price in $/MWh to the dollar spread captured per
// battery. Band upper bounds are exclusive: 49.99 pays 8 and 50.00 pays 12.
// NaN pays the lowest band.
func SpreadPerUnit(price float64) float64 {
	switch {
	case math.IsNaN(price) || price < 50:
		return 8
	case price < 100:
		return 12
	case price < 150:
		return 18
	case price < 250:
		return 22
	default:
		return 25
	}
}

// RevenueEstimate is batteries × spread at the given price.
func RevenueEstimate(batteries int, price float64) float64 {
	return float64(batteries) * SpreadPerUnit(price)
}

// PreChargeDeadline is PreChargeLead before the earliest end among events.
// ok is false for an empty list.
func PreChargeDeadline(events []model.Event) (deadline time.Time, ok bool) {
	e, ok := Earliest(events)
	if !ok {
		return time.Time{}, false
	}
	return e.End.Add(-PreChargeLead), true
}

// Earliest returns the first event with the minimum end instant.
func Earliest(events []model.Event) (model.Event, bool) {
	if len(events) == 0 {
		return model.Event{}, false
	}
	best := events[0]
	for _, e := range events[1:] {
		if e.End.Before(best.End) {
			best = e
		}
	}
	return best, true
}

// Zones returns the union of affected zones in first-seen order.
func Zones(events []model.Event) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, e := range events {
		for _, z := range e.Venue.Zones {
			if _, ok := seen[z]; ok {
				continue
			}
			seen[z] = struct{}{}
			out = append(out, z)
		}
	}
	return out
}

// ProjectedRevenue sums the per-event revenue without the fleet cap.
func ProjectedRevenue(events []model.Event, price float64) float64 {
	total := 0.0
	for _, e := range events {
		total += RevenueEstimate(BatteriesNeeded(e), price)
	}
	return total
}
