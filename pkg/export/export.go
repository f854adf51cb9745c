package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/gridpulse/core/ledger"
)

// WriteJSON writes the dispatch history to w in JSON format.
func WriteJSON(w io.Writer, entries []ledger.Entry) error {
	enc := json.NewEncoder(w)
	return enc.Encode(entries)
}

// WriteCSV writes the dispatch history to w in CSV format, one row per
// dispatch. Multi-valued columns are joined with "|".
func WriteCSV(w io.Writer, entries []ledger.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"dispatch_id", "date", "recorded_at", "events", "categories",
		"batteries", "spread_per_battery", "total_capture", "projected_mw", "zip_codes",
	}); err != nil {
		return err
	}
	for _, e := range entries {
		cats := make([]string, len(e.Categories))
		for i, c := range e.Categories {
			cats[i] = string(c)
		}
		rec := []string{
			e.DispatchID,
			e.DateKey,
			e.RecordedAt.Format(time.RFC3339),
			strings.Join(e.EventNames, "|"),
			strings.Join(cats, "|"),
			strconv.Itoa(e.Batteries),
			strconv.FormatFloat(e.SpreadPerUnit, 'f', 2, 64),
			strconv.FormatFloat(e.TotalCapture, 'f', 2, 64),
			strconv.FormatFloat(e.ProjectedMW, 'f', -1, 64),
			strings.Join(e.Zones, "|"),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
