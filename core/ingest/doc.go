// Package ingest turns the three raw input tables (event schedule, facility
// energy usage, venue capacity) into fully resolved model.Event values.
//
// Malformed rows never fail a load. They are dropped, counted in the Report
// and logged at debug level.
package ingest
