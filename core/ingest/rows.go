package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/gridpulse/core/logger"
)

// EventRow is one raw line of the event schedule.
type EventRow struct {
	Name      string
	Category  string
	Facility  string
	StartDate string
	StartTime string
	EndDate   string
	EndTime   string
}

// UsageRow maps a facility to its energy-usage index.
type UsageRow struct {
	Facility string
	Usage    string
}

// CapacityRow maps a venue to its seat capacity.
type CapacityRow struct {
	Venue    string
	Capacity string
}

// Tables bundles the three raw inputs.
type Tables struct {
	Events     []EventRow
	Usage      []UsageRow
	Capacities []CapacityRow
}

// Options control normalization.
type Options struct {
	// Location is the time zone of the schedule. Defaults to UTC.
	Location *time.Location
	Logger   logger.Logger
}

// Drop reasons reported by Normalize.
const (
	ReasonUnknownFacility = "unknown_facility"
	ReasonBadStart        = "bad_start"
)

// Report summarises a normalization run.
type Report struct {
	Rows    int
	Kept    int
	Dropped map[string]int
}

// DroppedTotal is the number of rows that did not produce an event.
func (r Report) DroppedTotal() int {
	n := 0
	for _, v := range r.Dropped {
		n += v
	}
	return n
}

func usageIndex(rows []UsageRow) map[string]float64 {
	out := make(map[string]float64, len(rows))
	for _, r := range rows {
		v, err := strconv.ParseFloat(strings.TrimSpace(r.Usage), 64)
		if err != nil {
			continue
		}
		out[strings.TrimSpace(r.Facility)] = v
	}
	return out
}

// capacityIndex keeps only positive integer capacities. Thousands separators
// are tolerated.
func capacityIndex(rows []CapacityRow) map[string]int {
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		raw := strings.ReplaceAll(strings.TrimSpace(r.Capacity), ",", "")
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			continue
		}
		out[strings.TrimSpace(r.Venue)] = v
	}
	return out
}
