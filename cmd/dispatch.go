package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/gridpulse/app"
	"github.com/kilianp07/gridpulse/core/dispatch"
	"github.com/kilianp07/gridpulse/infra/logger"
)

var dispatchSel string

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Run one full dispatch session headlessly and print the command",
	RunE:  runDispatch,
}

func init() {
	dispatchCmd.Flags().StringVar(&dispatchSel, "date", "", "event date (YYYY-MM-DD) or event id")
	_ = dispatchCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(dispatchCmd)
}

func runDispatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logg := logger.New("dispatch-command")
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("service close: %v", err)
		}
	}()

	workers, cancel := context.WithCancel(ctx)
	g, workers := errgroup.WithContext(workers)
	svc.Start(workers, g)
	defer func() {
		cancel()
		if err := g.Wait(); err != nil {
			logg.Errorf("workers: %v", err)
		}
	}()

	snap, err := svc.RunHeadless(ctx, dispatch.ParseSelection(dispatchSel))
	out := cmd.OutOrStdout()
	if snap.Brief != "" {
		fmt.Fprintf(out, "%s\n\n", snap.Brief)
	}
	if err != nil {
		return err
	}
	payload, err := snap.Command.JSON()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n\n", payload)
	printer.Fprintf(out, "Activated %d clusters, %d batteries\n", len(snap.ActiveClusters), snap.Activating)
	printer.Fprintf(out, "Accrued $%.2f over %d ticks\n", snap.Revenue, snap.AccrualTicks)
	return nil
}
