package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/gridpulse/core/impact"
	"github.com/kilianp07/gridpulse/core/model"
)

// BriefInput is everything a brief generator may use.
type BriefInput struct {
	DateKey   string
	DateLabel string
	Events    []model.Event
	Stats     impact.Stats
	Price     float64
	FleetSize int
}

// DateLabel renders a YYYY-MM-DD key as "Sat, Sep 13, 2025".
func DateLabel(key string) string {
	d, err := time.Parse(model.DateLayout, key)
	if err != nil {
		return key
	}
	return d.Format("Mon, Jan 2, 2006")
}

func maxTemp(events []model.Event) int {
	m := 0
	for i, e := range events {
		if i == 0 || e.TempF > m {
			m = e.TempF
		}
	}
	return m
}

// LocalBriefText synthesises the five-point operator brief from the same
// fields a remote model would receive.
func LocalBriefText(in BriefInput) string {
	if len(in.Events) == 0 {
		return ""
	}
	st := in.Stats
	zones := strings.Join(st.Zones, ", ")
	first := "-"
	if len(st.Zones) > 0 {
		first = st.Zones[0]
	}
	temp := maxTemp(in.Events)
	weather := fmt.Sprintf("At %d°F, standard AC load expected, 95%% charge target sufficient.", temp)
	if temp > 90 {
		weather = fmt.Sprintf("At %d°F, AC load adds ~25%% to projected demand, target 97%% charge.", temp)
	}
	risk := "Monitor I-35 corridor for unexpected crowd rerouting in the discharge window."
	if n := len(in.Events); n > 1 {
		risk = fmt.Sprintf("%d simultaneous events, combined ZIP demand may overlap; monitor for fleet capacity ceiling.", n)
	}
	covered := make([]string, len(in.Events))
	for i, e := range in.Events {
		covered[i] = fmt.Sprintf("%s at %s (ends %s)", e.Name, e.Venue.Name, e.EndLabel)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "1. PRE-CHARGE: Begin by %s, %d min before earliest event end.\n", st.PreChargeLabel, int(impact.PreChargeLead.Minutes()))
	b.WriteString(printer.Sprintf("2. TARGET: Charge %d batteries to 95%% across ZIPs %s.\n", st.Batteries, zones))
	fmt.Fprintf(&b, "3. PRIORITY: Stage ZIP %s first, highest projected surge from nearest venue.\n", first)
	fmt.Fprintf(&b, "4. WEATHER: %s\n", weather)
	fmt.Fprintf(&b, "5. RISK: %s\n\n", risk)
	fmt.Fprintf(&b, "Events covered: %s", strings.Join(covered, "; "))
	return b.String()
}

// BriefSystemPrompt instructs a remote model to answer in the five-point
// format.
const BriefSystemPrompt = "You are an AI dispatch system for a distributed home-battery fleet in Austin, TX. " +
	"Generate a precise multi-event operator dispatch brief in exactly 5 numbered points.\n\n" +
	"Format:\n1. PRE-CHARGE: [exact time]\n2. TARGET: [charge % and total batteries]\n" +
	"3. PRIORITY: [ZIP order and reasoning]\n4. WEATHER: [temp impact]\n5. RISK: [key risk]"

// BriefUserPrompt renders the request body for a remote model.
func BriefUserPrompt(in BriefInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", in.DateLabel)
	fmt.Fprintf(&b, "Events on this date (%d total):\n", len(in.Events))
	for _, e := range in.Events {
		b.WriteString(printer.Sprintf("- %s (%s) at %s, ends %s, %d expected, %d°F\n",
			e.Name, e.Category, e.Venue.Name, e.EndLabel, e.Attendance, e.TempF))
	}
	st := in.Stats
	b.WriteString(printer.Sprintf("\nTotal batteries to dispatch: %d of %d\n", st.Batteries, in.FleetSize))
	fmt.Fprintf(&b, "All affected ZIPs: %s\n", strings.Join(st.Zones, ", "))
	fmt.Fprintf(&b, "Pre-charge start: %s\n", st.PreChargeLabel)
	fmt.Fprintf(&b, "ERCOT price: $%.0f/MWh\n", in.Price)
	b.WriteString(printer.Sprintf("Est. revenue: $%d ($%d/battery)", int64(st.Revenue), int64(st.Spread)))
	return b.String()
}
