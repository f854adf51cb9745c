package ledger

import (
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/gridpulse/core/impact"
	"github.com/kilianp07/gridpulse/core/model"
)

// Totals summarises a set of entries.
type Totals struct {
	Count       int     `json:"count"`
	Batteries   int     `json:"batteries"`
	Capture     float64 `json:"capture"`
	MeanCapture float64 `json:"mean_capture"`
	MaxCapture  float64 `json:"max_capture"`
	ProjectedMW float64 `json:"projected_mw"`
}

// ComputeTotals folds entries into Totals. An empty input yields zeros.
func ComputeTotals(entries []Entry) Totals {
	if len(entries) == 0 {
		return Totals{}
	}
	captures := make([]float64, len(entries))
	mw := make([]float64, len(entries))
	t := Totals{Count: len(entries)}
	for i, e := range entries {
		captures[i] = e.TotalCapture
		mw[i] = e.ProjectedMW
		t.Batteries += e.Batteries
	}
	t.Capture = floats.Sum(captures)
	t.MeanCapture = stat.Mean(captures, nil)
	t.MaxCapture = floats.Max(captures)
	t.ProjectedMW = floats.Sum(mw)
	return t
}

// SeasonTotal is the Totals of one calendar year of events.
type SeasonTotal struct {
	Season int `json:"season"`
	Totals
}

func entryYear(e Entry) int {
	if len(e.DateKey) >= 4 {
		if y, err := strconv.Atoi(e.DateKey[:4]); err == nil {
			return y
		}
	}
	return e.RecordedAt.Year()
}

// SeasonTotals groups entries by the year of their event date, ascending.
func SeasonTotals(entries []Entry) []SeasonTotal {
	groups := map[int][]Entry{}
	for _, e := range entries {
		y := entryYear(e)
		groups[y] = append(groups[y], e)
	}
	out := make([]SeasonTotal, 0, len(groups))
	for y, es := range groups {
		out = append(out, SeasonTotal{Season: y, Totals: ComputeTotals(es)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Season < out[j].Season })
	return out
}

// CategoryTotal attributes capture and batteries to one event category.
type CategoryTotal struct {
	Category   model.Category `json:"category"`
	Dispatches int            `json:"dispatches"`
	Batteries  float64        `json:"batteries"`
	Capture    float64        `json:"capture"`
}

// CategoryTotals splits every entry across its events in proportion to each
// event's own battery allocation, looked up in catalog. Events no longer in
// the catalog fall back to the recorded category with an even share.
// Results are ordered by capture, highest first.
func CategoryTotals(entries []Entry, catalog *model.Catalog) []CategoryTotal {
	acc := map[model.Category]*CategoryTotal{}
	for _, e := range entries {
		cats, weights := entryShares(e, catalog)
		sum := floats.Sum(weights)
		if sum == 0 {
			continue
		}
		seen := map[model.Category]bool{}
		for i, c := range cats {
			share := weights[i] / sum
			ct, ok := acc[c]
			if !ok {
				ct = &CategoryTotal{Category: c}
				acc[c] = ct
			}
			ct.Batteries += float64(e.Batteries) * share
			ct.Capture += e.TotalCapture * share
			if !seen[c] {
				ct.Dispatches++
				seen[c] = true
			}
		}
	}
	out := make([]CategoryTotal, 0, len(acc))
	for _, ct := range acc {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Capture != out[j].Capture {
			return out[i].Capture > out[j].Capture
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func entryShares(e Entry, catalog *model.Catalog) ([]model.Category, []float64) {
	var cats []model.Category
	var weights []float64
	for i, id := range e.EventIDs {
		if catalog != nil {
			if ev, ok := catalog.Event(id); ok {
				cats = append(cats, ev.Category)
				weights = append(weights, float64(impact.BatteriesNeeded(ev)))
				continue
			}
		}
		if i < len(e.Categories) {
			cats = append(cats, e.Categories[i])
			weights = append(weights, 1)
		}
	}
	return cats, weights
}
