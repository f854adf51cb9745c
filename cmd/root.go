package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kilianp07/gridpulse/config"
)

var (
	cfgPath string
	envPath string
	cfg     *config.Config

	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:               "gridpulse",
	Short:             "Event-driven battery fleet dispatch",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRunE: func(*cobra.Command, []string) error {
		return closeLog()
	},
	RunE: serve,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env-file", ".env", "optional dotenv file with credentials")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the dotenv file, if any, then the configuration. A
// missing default config file falls back to built-in defaults.
func loadConfig(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envPath, err)
	}
	path := cfgPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	c, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	closeFn, err := c.Logging.Apply()
	if err != nil {
		return err
	}
	closeLog = closeFn
	cfg = c
	return nil
}
