package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kilianp07/gridpulse/app"
	"github.com/kilianp07/gridpulse/core/dispatch"
	"github.com/kilianp07/gridpulse/core/impact"
	"github.com/kilianp07/gridpulse/infra/logger"
)

var printer = message.NewPrinter(language.English)

var eventsDate string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List event dates, or the events of one date",
	RunE:  listEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&eventsDate, "date", "", "show the events of this date (YYYY-MM-DD)")
	rootCmd.AddCommand(eventsCmd)
}

func listEvents(cmd *cobra.Command, _ []string) error {
	catalog, rep, err := app.LoadCatalog(cfg.Data, logger.New("ingest"))
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	if eventsDate != "" {
		evs := catalog.OnDate(eventsDate)
		if len(evs) == 0 {
			return fmt.Errorf("%w: date %s", dispatch.ErrUnknownSelection, eventsDate)
		}
		fmt.Fprintln(w, "ID\tEVENT\tCATEGORY\tVENUE\tSTART\tEND\tATTENDANCE\tBATTERIES")
		for _, e := range evs {
			printer.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
				e.ID, e.Name, e.Category, e.Venue.Name, e.Start.Format("3:04 PM"), e.EndLabel,
				e.Attendance, impact.BatteriesNeeded(e))
		}
		return w.Flush()
	}
	fmt.Fprintln(w, "DATE\tDAY\tEVENTS\tBATTERIES")
	for _, d := range catalog.Dates() {
		st := impact.Aggregate(catalog.OnDate(d), cfg.Price.Initial)
		printer.Fprintf(w, "%s\t%s\t%d\t%d\n", d, dispatch.DateLabel(d), st.EventCount, st.Batteries)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err = printer.Fprintf(cmd.OutOrStdout(), "%d events on %d dates, %d rows dropped\n",
		catalog.Len(), len(catalog.Dates()), rep.DroppedTotal())
	return err
}
