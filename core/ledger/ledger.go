// Package ledger keeps the append-only history of confirmed dispatches for
// the session and the pure folds used for reporting.
package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/gridpulse/core/model"
)

// Entry is a snapshot of a confirmed dispatch. It holds no reference to live
// session state.
type Entry struct {
	ID            string           `json:"id"`
	DispatchID    string           `json:"dispatch_id"`
	DateKey       string           `json:"date"`
	EventIDs      []string         `json:"event_ids"`
	EventNames    []string         `json:"event_names"`
	Categories    []model.Category `json:"categories"`
	EventCount    int              `json:"event_count"`
	RecordedAt    time.Time        `json:"recorded_at"`
	Batteries     int              `json:"batteries"`
	SpreadPerUnit float64          `json:"spread_per_battery"`
	TotalCapture  float64          `json:"total_capture"`
	ProjectedMW   float64          `json:"projected_mw"`
	Zones         []string         `json:"zones"`
}

func (e Entry) clone() Entry {
	e.EventIDs = append([]string(nil), e.EventIDs...)
	e.EventNames = append([]string(nil), e.EventNames...)
	e.Categories = append([]model.Category(nil), e.Categories...)
	e.Zones = append([]string(nil), e.Zones...)
	return e
}

// Ledger is safe for concurrent use. Entries are never updated or removed.
type Ledger struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

// New returns an empty ledger.
func New() *Ledger { return &Ledger{now: time.Now} }

// NewWithClock returns an empty ledger stamping entries with now.
func NewWithClock(now func() time.Time) *Ledger { return &Ledger{now: now} }

// Record prepends e, filling ID, RecordedAt and EventCount when unset, and
// returns the stored copy.
func (l *Ledger) Record(e Entry) Entry {
	e = e.clone()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = l.now()
	}
	if e.EventCount == 0 {
		e.EventCount = len(e.EventIDs)
	}
	l.mu.Lock()
	l.entries = append([]Entry{e}, l.entries...)
	l.mu.Unlock()
	return e.clone()
}

// Entries returns a copy of the history, newest first.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.clone()
	}
	return out
}

// Len reports the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
