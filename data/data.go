// Package data bundles the default season schedule and venue tables so the
// service runs without external files.
package data

import "embed"

//go:embed *.csv
var FS embed.FS

// Bundled file names inside FS.
const (
	EventsFile     = "UT_Sports_Events.csv"
	UsageFile      = "Facility_Energy_Usage.csv"
	CapacitiesFile = "venues_capcity.csv"
)
