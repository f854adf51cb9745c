package dispatch

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kilianp07/gridpulse/core/impact"
	"github.com/kilianp07/gridpulse/core/model"
)

// CommandEvent names one event covered by a dispatch command.
type CommandEvent struct {
	Name  string `json:"name"`
	Venue string `json:"venue"`
	End   string `json:"end"`
}

// Command is the dispatch order sent to the fleet. Field order is part of
// the wire format.
type Command struct {
	DispatchID       string         `json:"dispatch_id"`
	Batteries        int            `json:"batteries"`
	ZipCodes         []string       `json:"zip_codes"`
	ChargeTarget     float64        `json:"charge_target"`
	ChargeBy         string         `json:"charge_by"`
	DischargeWindow  string         `json:"discharge_window"`
	EstimatedSpread  string         `json:"estimated_spread_per_battery"`
	EstimatedCapture string         `json:"estimated_total_capture"`
	Events           []CommandEvent `json:"events"`
}

// JSON renders the command as indented JSON.
func (c Command) JSON() ([]byte, error) { return json.MarshalIndent(c, "", "  ") }

var printer = message.NewPrinter(language.English)

// FormatDollars renders a whole-dollar amount with thousands separators.
func FormatDollars(v decimal.Decimal) string {
	return printer.Sprintf("$%d", v.Round(0).IntPart())
}

// BuildCommand derives the dispatch command for events aggregated in stats.
// seq is the three-digit suffix of the dispatch id. The id embeds the start
// date of the earliest-ending event and the discharge window opens at its
// end.
func BuildCommand(events []model.Event, stats impact.Stats, chargeTarget float64, seq int) (Command, error) {
	earliest, ok := impact.Earliest(events)
	if !ok || !stats.HasDeadline {
		return Command{}, ErrNoSelection
	}
	if seq < 100 || seq > 999 {
		return Command{}, fmt.Errorf("sequence %d outside 100-999", seq)
	}
	end := earliest.End
	spread := decimal.NewFromFloat(stats.Spread)
	capture := decimal.NewFromInt(int64(stats.Batteries)).Mul(spread)

	covered := make([]CommandEvent, len(events))
	for i, e := range events {
		covered[i] = CommandEvent{Name: e.Name, Venue: e.Venue.Name, End: e.EndLabel}
	}
	return Command{
		DispatchID:   fmt.Sprintf("GP-%s-%s-%03d", earliest.Start.Format("2006"), earliest.Start.Format("0102"), seq),
		Batteries:    stats.Batteries,
		ZipCodes:     append([]string(nil), stats.Zones...),
		ChargeTarget: chargeTarget,
		ChargeBy:     stats.Deadline.Format("15:04:05"),
		DischargeWindow: fmt.Sprintf("%02d:%02d:00–%02d:%02d:00",
			end.Hour(), end.Minute(), (end.Hour()+1)%24, end.Minute()),
		EstimatedSpread:  "$" + spread.StringFixed(2),
		EstimatedCapture: FormatDollars(capture),
		Events:           covered,
	}, nil
}
