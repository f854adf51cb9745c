// Package csvsource reads the three input tables from CSV files. Columns
// are matched by header name, so extra columns and any column order are
// accepted.
package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/kilianp07/gridpulse/core/ingest"
)

// Config names the three files. Usage and capacity are optional.
type Config struct {
	Events     string `json:"events"`
	Usage      string `json:"usage"`
	Capacities string `json:"capacities"`
}

type opener func(path string) (io.ReadCloser, error)

// Load reads the tables from the local filesystem.
func Load(cfg Config) (ingest.Tables, error) {
	return load(func(p string) (io.ReadCloser, error) { return os.Open(p) }, cfg)
}

// LoadFS reads the tables from fsys. Paths are fs.FS paths; a leading "./"
// is ignored.
func LoadFS(fsys fs.FS, cfg Config) (ingest.Tables, error) {
	return load(func(p string) (io.ReadCloser, error) { return fsys.Open(strings.TrimPrefix(p, "./")) }, cfg)
}

func load(open opener, cfg Config) (ingest.Tables, error) {
	var t ingest.Tables
	if cfg.Events == "" {
		return t, errors.New("events table path is required")
	}
	if err := withFile(open, cfg.Events, func(r io.Reader) (err error) {
		t.Events, err = ReadEvents(r)
		return err
	}); err != nil {
		return t, err
	}
	if cfg.Usage != "" {
		if err := withFile(open, cfg.Usage, func(r io.Reader) (err error) {
			t.Usage, err = ReadUsage(r)
			return err
		}); err != nil {
			return t, err
		}
	}
	if cfg.Capacities != "" {
		if err := withFile(open, cfg.Capacities, func(r io.Reader) (err error) {
			t.Capacities, err = ReadCapacities(r)
			return err
		}); err != nil {
			return t, err
		}
	}
	return t, nil
}

func withFile(open opener, path string, fn func(io.Reader) error) error {
	f, err := open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := fn(f); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

type table struct {
	index map[string]int
	rows  [][]string
}

func readTable(r io.Reader, required ...string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("empty table")
	}
	t := &table{index: map[string]int{}}
	for i, h := range records[0] {
		t.index[normalizeHeader(h)] = i
	}
	for _, h := range required {
		if _, ok := t.index[normalizeHeader(h)]; !ok {
			return nil, fmt.Errorf("missing column %q", h)
		}
	}
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (t *table) get(rec []string, col string) string {
	i, ok := t.index[normalizeHeader(col)]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// ReadEvents parses the schedule. Required columns: Event, Category,
// Facility, Start Date. Start Time, End Date and End Time may be absent.
func ReadEvents(r io.Reader) ([]ingest.EventRow, error) {
	t, err := readTable(r, "Event", "Category", "Facility", "Start Date")
	if err != nil {
		return nil, err
	}
	out := make([]ingest.EventRow, 0, len(t.rows))
	for _, rec := range t.rows {
		out = append(out, ingest.EventRow{
			Name:      t.get(rec, "Event"),
			Category:  t.get(rec, "Category"),
			Facility:  t.get(rec, "Facility"),
			StartDate: t.get(rec, "Start Date"),
			StartTime: t.get(rec, "Start Time"),
			EndDate:   t.get(rec, "End Date"),
			EndTime:   t.get(rec, "End Time"),
		})
	}
	return out, nil
}

// ReadUsage parses the facility energy-usage table (Center Name, Energy
// Usage).
func ReadUsage(r io.Reader) ([]ingest.UsageRow, error) {
	t, err := readTable(r, "Center Name", "Energy Usage")
	if err != nil {
		return nil, err
	}
	out := make([]ingest.UsageRow, 0, len(t.rows))
	for _, rec := range t.rows {
		out = append(out, ingest.UsageRow{Facility: t.get(rec, "Center Name"), Usage: t.get(rec, "Energy Usage")})
	}
	return out, nil
}

// ReadCapacities parses the venue capacity table (Venue, Capacity).
func ReadCapacities(r io.Reader) ([]ingest.CapacityRow, error) {
	t, err := readTable(r, "Venue", "Capacity")
	if err != nil {
		return nil, err
	}
	out := make([]ingest.CapacityRow, 0, len(t.rows))
	for _, rec := range t.rows {
		out = append(out, ingest.CapacityRow{Venue: t.get(rec, "Venue"), Capacity: t.get(rec, "Capacity")})
	}
	return out, nil
}
