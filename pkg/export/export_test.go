package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/kilianp07/gridpulse/core/ledger"
	"github.com/kilianp07/gridpulse/core/model"
)

var entries = []ledger.Entry{{
	ID:            "e1",
	DispatchID:    "GP-2025-0913-123",
	DateKey:       "2025-09-13",
	EventNames:    []string{"Texas vs. Baylor", "Texas vs. UTEP"},
	Categories:    []model.Category{model.Soccer, model.Football},
	RecordedAt:    time.Date(2025, 9, 1, 17, 0, 0, 0, time.UTC),
	Batteries:     544,
	SpreadPerUnit: 18,
	TotalCapture:  9792,
	ProjectedMW:   0.6,
	Zones:         []string{"78705", "78751"},
}}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, entries); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	want := "GP-2025-0913-123,2025-09-13,2025-09-01T17:00:00Z,Texas vs. Baylor|Texas vs. UTEP,Soccer|Football,544,18.00,9792.00,0.6,78705|78751"
	if lines[1] != want {
		t.Fatalf("row mismatch:\n got %s\nwant %s", lines[1], want)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, entries); err != nil {
		t.Fatalf("write json: %v", err)
	}
	var out []ledger.Entry
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].DispatchID != "GP-2025-0913-123" {
		t.Fatalf("unexpected entries %+v", out)
	}
}
