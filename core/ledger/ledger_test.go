package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridpulse/core/model"
)

var fixed = time.Date(2025, 9, 13, 20, 0, 0, 0, time.UTC)

func TestRecordPrependsAndFillsDefaults(t *testing.T) {
	l := NewWithClock(func() time.Time { return fixed })
	first := l.Record(Entry{DispatchID: "GP-2025-0913-101", EventIDs: []string{"a-0"}})
	second := l.Record(Entry{DispatchID: "GP-2025-0914-202", EventIDs: []string{"b-1", "c-2"}})

	require.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, fixed, first.RecordedAt)
	assert.Equal(t, 2, second.EventCount)

	got := l.Entries()
	require.Len(t, got, 2)
	assert.Equal(t, "GP-2025-0914-202", got[0].DispatchID)
	assert.Equal(t, "GP-2025-0913-101", got[1].DispatchID)
}

func TestEntriesReturnsCopy(t *testing.T) {
	l := New()
	zones := []string{"78705"}
	l.Record(Entry{DispatchID: "x", Zones: zones})
	zones[0] = "mutated"

	got := l.Entries()
	got[0].Zones[0] = "changed"
	got[0].DispatchID = "changed"

	again := l.Entries()
	assert.Equal(t, "78705", again[0].Zones[0])
	assert.Equal(t, "x", again[0].DispatchID)
}

func TestConcurrentRecord(t *testing.T) {
	l := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Record(Entry{DispatchID: "x"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, l.Len())
}

func TestComputeTotals(t *testing.T) {
	assert.Equal(t, Totals{}, ComputeTotals(nil))
	tot := ComputeTotals([]Entry{
		{Batteries: 1000, TotalCapture: 12000, ProjectedMW: 5.2},
		{Batteries: 200, TotalCapture: 1600, ProjectedMW: 0.4},
		{Batteries: 300, TotalCapture: 6600, ProjectedMW: 1},
	})
	assert.Equal(t, 3, tot.Count)
	assert.Equal(t, 1500, tot.Batteries)
	assert.Equal(t, 20200.0, tot.Capture)
	assert.InDelta(t, 6733.33, tot.MeanCapture, 0.01)
	assert.Equal(t, 12000.0, tot.MaxCapture)
	assert.InDelta(t, 6.6, tot.ProjectedMW, 1e-9)
}

func TestSeasonTotals(t *testing.T) {
	got := SeasonTotals([]Entry{
		{DateKey: "2026-01-10", TotalCapture: 100},
		{DateKey: "2025-09-13", TotalCapture: 200},
		{DateKey: "2025-11-01", TotalCapture: 300},
		{RecordedAt: fixed, TotalCapture: 50},
	})
	require.Len(t, got, 2)
	assert.Equal(t, 2025, got[0].Season)
	assert.Equal(t, 3, got[0].Count)
	assert.Equal(t, 550.0, got[0].Capture)
	assert.Equal(t, 2026, got[1].Season)
}

func TestCategoryTotalsSplitsByBatteryShare(t *testing.T) {
	dkr, _ := model.LookupVenue("DKR-Texas Memorial Stadium")
	myers, _ := model.LookupVenue("Mike A. Myers Stadium and Soccer Field")
	game := model.Event{ID: "game-0", Category: model.Football, Venue: dkr, Attendance: 95000, TempF: 66, Start: fixed}
	match := model.Event{ID: "match-1", Category: model.Soccer, Venue: myers, Attendance: 2205, TempF: 66, Start: fixed}
	catalog := model.NewCatalog([]model.Event{game, match})

	// football 1000 units, soccer 155 units
	entry := Entry{EventIDs: []string{"game-0", "match-1"}, Batteries: 1155, TotalCapture: 11550}
	orphan := Entry{EventIDs: []string{"gone-9"}, Categories: []model.Category{model.Baseball}, Batteries: 210, TotalCapture: 2520}

	got := CategoryTotals([]Entry{entry, orphan}, catalog)
	require.Len(t, got, 3)
	assert.Equal(t, model.Football, got[0].Category)
	assert.InDelta(t, 10000, got[0].Capture, 1e-6)
	assert.InDelta(t, 1000, got[0].Batteries, 1e-6)
	assert.Equal(t, model.Baseball, got[1].Category)
	assert.InDelta(t, 2520, got[1].Capture, 1e-6)
	assert.Equal(t, model.Soccer, got[2].Category)
	assert.InDelta(t, 1550, got[2].Capture, 1e-6)
	assert.Equal(t, 1, got[2].Dispatches)

	assert.Empty(t, CategoryTotals(nil, catalog))
}
