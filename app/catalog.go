package app

import (
	"fmt"

	"github.com/kilianp07/gridpulse/config"
	"github.com/kilianp07/gridpulse/core/ingest"
	"github.com/kilianp07/gridpulse/core/logger"
	"github.com/kilianp07/gridpulse/core/model"
	"github.com/kilianp07/gridpulse/data"
	"github.com/kilianp07/gridpulse/infra/csvsource"
)

// LoadCatalog reads the input tables, from the configured paths or the
// bundled dataset, and normalizes them into a catalog.
func LoadCatalog(cfg config.DataConfig, log logger.Logger) (*model.Catalog, ingest.Report, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, ingest.Report{}, err
	}
	var tables ingest.Tables
	if cfg.Bundled() {
		tables, err = csvsource.LoadFS(data.FS, csvsource.Config{
			Events:     data.EventsFile,
			Usage:      data.UsageFile,
			Capacities: data.CapacitiesFile,
		})
	} else {
		tables, err = csvsource.Load(cfg.Sources())
	}
	if err != nil {
		return nil, ingest.Report{}, fmt.Errorf("load tables: %w", err)
	}
	events, rep := ingest.Normalize(tables, ingest.Options{Location: loc, Logger: log})
	return model.NewCatalog(events), rep, nil
}
