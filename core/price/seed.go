package price

import (
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/kilianp07/gridpulse/core/model"
)

const (
	weekendBonus    = 12
	maxCrowdBonus   = 40
	crowdDivisor    = 2000
	marqueeBonus    = 25
	seasonNoiseSpan = 5
)

// SeedSource returns a generator keyed by the FNV-1a hash of key. Equal keys
// yield identical sequences.
func SeedSource(key string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

func seasonalBase(m time.Month) float64 {
	switch {
	case m >= time.June && m <= time.September:
		return 65
	case m >= time.April && m <= time.May:
		return 48
	case m >= time.October && m <= time.November:
		return 42
	default:
		return 35
	}
}

// BasePrice derives the deterministic opening price for a date key
// (YYYY-MM-DD) and the events on it, before clamping. Keys that are not
// dates get the off-season base and no weekend bonus.
func BasePrice(key string, events []model.Event) float64 {
	base := 35.0
	if day, err := time.Parse(model.DateLayout, key); err == nil {
		base = seasonalBase(day.Month())
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			base += weekendBonus
		}
	}
	crowd := 0
	marquee := false
	for _, e := range events {
		crowd += e.Attendance
		if e.Category == model.Football {
			marquee = true
		}
	}
	base += min(maxCrowdBonus, float64(crowd)/crowdDivisor)
	if marquee {
		base += marqueeBonus
	}
	noise := SeedSource(key).Float64()*2*seasonNoiseSpan - seasonNoiseSpan
	return base + noise
}
