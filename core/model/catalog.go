package model

import (
	"sort"
	"time"
)

// Catalog is a read-only index over normalized events.
type Catalog struct {
	events []Event
	byDate map[string][]Event
	byID   map[string]Event
	dates  []string
}

// NewCatalog indexes events by id and calendar date. The input order is kept
// within each date.
func NewCatalog(events []Event) *Catalog {
	c := &Catalog{
		events: append([]Event(nil), events...),
		byDate: make(map[string][]Event),
		byID:   make(map[string]Event, len(events)),
	}
	for _, e := range c.events {
		key := e.DateKey()
		if _, ok := c.byDate[key]; !ok {
			c.dates = append(c.dates, key)
		}
		c.byDate[key] = append(c.byDate[key], e)
		c.byID[e.ID] = e
	}
	// keys are ISO dates so lexical order is chronological
	sort.Strings(c.dates)
	return c
}

// Len reports the number of events.
func (c *Catalog) Len() int { return len(c.events) }

// Events returns every event in normalized order.
func (c *Catalog) Events() []Event { return append([]Event(nil), c.events...) }

// Dates lists the distinct event dates ascending.
func (c *Catalog) Dates() []string { return append([]string(nil), c.dates...) }

// OnDate returns the events starting on the given YYYY-MM-DD day.
func (c *Catalog) OnDate(key string) []Event {
	return append([]Event(nil), c.byDate[key]...)
}

// Event looks up an event by id.
func (c *Catalog) Event(id string) (Event, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// UpcomingDates counts the event dates strictly after key and no more than
// days later.
func (c *Catalog) UpcomingDates(key string, days int) int {
	from, err := time.Parse(DateLayout, key)
	if err != nil {
		return 0
	}
	until := from.AddDate(0, 0, days).Format(DateLayout)
	n := 0
	for _, d := range c.dates {
		if d > key && d <= until {
			n++
		}
	}
	return n
}
