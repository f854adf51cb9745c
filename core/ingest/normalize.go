package ingest

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/kilianp07/gridpulse/core/logger"
	"github.com/kilianp07/gridpulse/core/model"
)

// Normalize resolves raw rows into events sorted by start ascending. Rows
// with an unknown facility or an unreadable start date are dropped.
func Normalize(t Tables, opts Options) ([]model.Event, Report) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	log := logger.OrNop(opts.Logger)
	usage := usageIndex(t.Usage)
	capacity := capacityIndex(t.Capacities)

	rep := Report{Rows: len(t.Events), Dropped: map[string]int{}}
	events := make([]model.Event, 0, len(t.Events))
	for i, row := range t.Events {
		ev, reason := normalizeRow(i, row, loc, usage, capacity)
		if reason != "" {
			rep.Dropped[reason]++
			log.Debugw("row dropped", map[string]any{"row": i, "event": row.Name, "reason": reason})
			continue
		}
		events = append(events, ev)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	rep.Kept = len(events)
	if n := rep.DroppedTotal(); n > 0 {
		log.Infof("normalized %d events, dropped %d rows", rep.Kept, n)
	}
	return events, rep
}

func normalizeRow(idx int, row EventRow, loc *time.Location, usage map[string]float64, capacity map[string]int) (model.Event, string) {
	facility := strings.TrimSpace(row.Facility)
	venue, ok := model.LookupVenue(facility)
	if facility == "" || !ok {
		return model.Event{}, ReasonUnknownFacility
	}
	start, ok := parseDateTime(row.StartDate, row.StartTime, loc)
	if !ok {
		return model.Event{}, ReasonBadStart
	}
	cat := model.Category(strings.TrimSpace(row.Category))
	end := resolveEnd(cat, start, row, loc)

	seats, ok := capacity[facility]
	if !ok {
		seats = model.DefaultCapacity
	}
	attendance := int(math.Round(float64(seats) * model.Occupancy(cat)))
	if attendance < model.MinAttendance {
		attendance = model.MinAttendance
	}
	energy, ok := usage[facility]
	if !ok {
		energy = model.DefaultEnergyUsage
	}

	return model.Event{
		ID:          fmt.Sprintf("%s-%d", row.Name, idx),
		Name:        row.Name,
		Category:    cat,
		Venue:       venue,
		Start:       start,
		End:         end,
		EndLabel:    model.ClockLabel(end),
		Attendance:  attendance,
		TempF:       model.SeasonalTempF(start.Month()),
		EnergyUsage: energy,
	}, ""
}

// resolveEnd applies the end-time corrections. The result is never before
// start.
func resolveEnd(cat model.Category, start time.Time, row EventRow, loc *time.Location) time.Time {
	fallback := model.DefaultEnd(cat).On(start)
	if fallback.Before(start) {
		fallback = start.Add(2 * time.Hour)
	}
	end, ok := parseDateTime(row.EndDate, row.EndTime, loc)
	if !ok {
		return fallback
	}
	if end.Before(start) {
		end = end.Add(24 * time.Hour)
	}
	// 1-4 AM finishes are artifacts of the source export.
	if h := end.Hour(); h >= 1 && h <= 4 {
		return fallback
	}
	if end.Before(start) {
		return fallback
	}
	return end
}
