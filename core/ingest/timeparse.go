package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHour   = 19
	defaultMinute = 0
)

var (
	clockRe    = regexp.MustCompile(`(?i)(\d{1,2})(?::(\d{2}))?\s*(AM|PM)`)
	trailingTZ = regexp.MustCompile(`(?i)\s*\b(CST|CDT|CT|EST|EDT|ET|MST|MDT|MT|PST|PDT|PT)$`)
	spaces     = regexp.MustCompile(`\s+`)
	tbaRe      = regexp.MustCompile(`(?i)TBA`)
)

// cleanTime strips punctuation noise and a trailing time zone abbreviation.
func cleanTime(raw string) string {
	s := strings.NewReplacer("?", "", ".", "").Replace(raw)
	s = strings.TrimSpace(spaces.ReplaceAllString(s, " "))
	s = trailingTZ.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// parseClock extracts hour and minute from a cleaned time string. Empty, TBA
// and unrecognised values resolve to 19:00.
func parseClock(raw string) (int, int) {
	s := cleanTime(raw)
	if s == "" || tbaRe.MatchString(s) {
		return defaultHour, defaultMinute
	}
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return defaultHour, defaultMinute
	}
	h, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if h < 1 || h > 12 || minute > 59 {
		return defaultHour, defaultMinute
	}
	pm := strings.EqualFold(m[3], "PM")
	switch {
	case pm && h != 12:
		h += 12
	case !pm && h == 12:
		h = 0
	}
	return h, minute
}

// parseDate reads M/D/YYYY. Every component must be a positive integer.
func parseDate(raw string) (year, month, day int, ok bool) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	vals := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v <= 0 {
			return 0, 0, 0, false
		}
		vals[i] = v
	}
	return vals[2], vals[0], vals[1], true
}

// parseDateTime combines a date and a time column into an instant in loc.
func parseDateTime(date, clock string, loc *time.Location) (time.Time, bool) {
	y, m, d, ok := parseDate(date)
	if !ok {
		return time.Time{}, false
	}
	h, minute := parseClock(clock)
	return time.Date(y, time.Month(m), d, h, minute, 0, 0, loc), true
}
