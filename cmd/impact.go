package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridpulse/app"
	"github.com/kilianp07/gridpulse/core/dispatch"
	"github.com/kilianp07/gridpulse/core/impact"
	"github.com/kilianp07/gridpulse/core/model"
	"github.com/kilianp07/gridpulse/infra/logger"
)

var (
	impactDate  string
	impactPrice float64
)

var impactCmd = &cobra.Command{
	Use:   "impact",
	Short: "Show the grid impact of a date at a given market price",
	RunE:  showImpact,
}

func init() {
	impactCmd.Flags().StringVar(&impactDate, "date", "", "event date (YYYY-MM-DD)")
	impactCmd.Flags().Float64Var(&impactPrice, "price", 0, "market price in $/MWh (defaults to price.initial)")
	_ = impactCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(impactCmd)
}

func showImpact(cmd *cobra.Command, _ []string) error {
	catalog, _, err := app.LoadCatalog(cfg.Data, logger.New("ingest"))
	if err != nil {
		return err
	}
	evs := catalog.OnDate(impactDate)
	if len(evs) == 0 {
		return fmt.Errorf("%w: date %s", dispatch.ErrUnknownSelection, impactDate)
	}
	p := impactPrice
	if p <= 0 {
		p = cfg.Price.Initial
	}
	st := impact.Aggregate(evs, p)
	out := cmd.OutOrStdout()
	printer.Fprintf(out, "%s (%d events)\n", dispatch.DateLabel(impactDate), st.EventCount)
	printer.Fprintf(out, "Market:      $%.2f/MWh %s, %s\n", p, st.Tier.Label, st.Tier.Description)
	printer.Fprintf(out, "Demand:      %.1f MW\n", st.DemandMW)
	printer.Fprintf(out, "Batteries:   %d of %d\n", st.Batteries, model.FleetSize)
	printer.Fprintf(out, "Pre-charge:  by %s\n", st.PreChargeLabel)
	printer.Fprintf(out, "Spread:      $%.2f per battery\n", st.Spread)
	printer.Fprintf(out, "Revenue:     $%.0f\n\n", st.Revenue)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ZONE\tLOAD\tBATTERIES\tINTENSITY\tCLUSTERS")
	for _, z := range impact.ZoneLoad(evs) {
		fmt.Fprintf(w, "%s\t+%d%%\t%d\t%s\t%d\n", z.Zone, z.LoadPct, z.Batteries, z.Intensity, len(model.ClustersInZones([]string{z.Zone})))
	}
	return w.Flush()
}
