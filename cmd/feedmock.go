package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridpulse/core/price/feedmock"
	"github.com/kilianp07/gridpulse/infra/logger"
)

var feedMockCmd = &cobra.Command{
	Use:   "feed-mock",
	Short: "Serve a local market price feed for development",
	RunE:  runFeedMock,
}

func init() {
	feedMockCmd.Flags().String("addr", "", "listen address (overrides feed_mock.address)")
	rootCmd.AddCommand(feedMockCmd)
}

func runFeedMock(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mc := cfg.FeedMock
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		mc.Address = addr
	}
	if mc.Address == "" {
		mc.Address = ":9090"
	}
	return feedmock.New(mc, logger.New("feed-mock")).Start(ctx)
}
