package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/gridpulse/infra/csvsource"
)

// DataConfig locates the input tables. With no events path the bundled
// season schedule is used.
type DataConfig struct {
	Events     string `json:"events"`
	Usage      string `json:"usage"`
	Capacities string `json:"capacities"`
	// Timezone of the schedule's wall-clock times.
	Timezone string `json:"timezone"`
}

func (c *DataConfig) SetDefaults() {
	if c.Timezone == "" {
		c.Timezone = "America/Chicago"
	}
}

func (c DataConfig) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Events == "" && (c.Usage != "" || c.Capacities != "") {
		return fmt.Errorf("usage and capacities require an events path")
	}
	return nil
}

// Location loads the configured time zone.
func (c DataConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Bundled reports whether the embedded dataset should be used.
func (c DataConfig) Bundled() bool { return c.Events == "" }

// Sources converts the paths for the CSV loader.
func (c DataConfig) Sources() csvsource.Config {
	return csvsource.Config{Events: c.Events, Usage: c.Usage, Capacities: c.Capacities}
}
