package model

import (
	"time"
)

// Category is the sport tag of an event. Unknown categories are kept as-is
// and resolve to the default row of every lookup table.
type Category string

const (
	Football         Category = "Football"
	MensBasketball   Category = "Men's Basketball"
	WomensBasketball Category = "Women's Basketball"
	Baseball         Category = "Baseball"
	Softball         Category = "Softball"
	Soccer           Category = "Soccer"
	MensTennis       Category = "Men's Tennis"
	WomensTennis     Category = "Women's Tennis"
	MensSwimming     Category = "Men's Swimming and Diving"
	WomensSwimming   Category = "Women's Swimming and Diving"
	BeachVolleyball  Category = "Beach Volleyball"
)

const (
	// MinAttendance is the floor applied to every derived attendance.
	MinAttendance = 250
	// DefaultCapacity is used for venues absent from the capacity table.
	DefaultCapacity = 3500
	// DefaultEnergyUsage is used for venues absent from the usage table.
	DefaultEnergyUsage = 1.0
)

// DateLayout is the calendar key used to group events by day.
const DateLayout = "2006-01-02"

// Event is a fully resolved scheduled occurrence at a venue. Values are
// immutable once produced by the normalizer.
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Venue       Venue     `json:"venue"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	EndLabel    string    `json:"end_label"`
	Attendance  int       `json:"attendance"`
	TempF       int       `json:"temp_f"`
	EnergyUsage float64   `json:"energy_usage"`
}

// DateKey returns the calendar day of the event start in its own location.
func (e Event) DateKey() string { return e.Start.Format(DateLayout) }

// Zones returns a copy of the postal zones affected by the event's venue.
func (e Event) Zones() []string {
	out := make([]string, len(e.Venue.Zones))
	copy(out, e.Venue.Zones)
	return out
}

// ClockLabel renders t as a 12-hour label such as "10:30 PM".
func ClockLabel(t time.Time) string { return t.Format("3:04 PM") }

// SeasonalTempF is the coarse month-based temperature proxy in °F.
func SeasonalTempF(m time.Month) int {
	switch {
	case m >= time.June && m <= time.September:
		return 95
	case m >= time.April && m <= time.May:
		return 85
	case m >= time.October && m <= time.November:
		return 78
	default:
		return 66
	}
}

// Occupancy returns the expected fill ratio of a venue for the category.
func Occupancy(c Category) float64 {
	if v, ok := occupancy[c]; ok {
		return v
	}
	return 0.68
}

var occupancy = map[Category]float64{
	Football:         0.96,
	MensBasketball:   0.88,
	WomensBasketball: 0.76,
	Baseball:         0.68,
	Softball:         0.72,
	Soccer:           0.63,
	MensTennis:       0.84,
	WomensTennis:     0.82,
	MensSwimming:     0.74,
	WomensSwimming:   0.72,
	BeachVolleyball:  0.78,
}

// ClockTime is a wall-clock time of day without a date.
type ClockTime struct {
	Hour   int
	Minute int
}

// On places the clock time on the calendar day of t, in t's location.
func (c ClockTime) On(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, t.Location())
}

// DefaultEnd returns the typical finishing time for the category. It is used
// when the source end time is missing or implausible.
func DefaultEnd(c Category) ClockTime {
	if v, ok := defaultEnds[c]; ok {
		return v
	}
	return ClockTime{Hour: 20}
}

var defaultEnds = map[Category]ClockTime{
	Football:         {22, 30},
	MensBasketball:   {21, 30},
	WomensBasketball: {21, 30},
	Baseball:         {21, 0},
	Softball:         {20, 30},
	Soccer:           {20, 0},
	MensTennis:       {17, 30},
	WomensTennis:     {17, 30},
	MensSwimming:     {17, 0},
	WomensSwimming:   {17, 0},
	BeachVolleyball:  {19, 0},
}
