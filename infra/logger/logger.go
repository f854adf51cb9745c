// Package logger builds component loggers on zerolog.
package logger

import corelogger "github.com/kilianp07/gridpulse/core/logger"

type Logger = corelogger.Logger

// NopLogger discards everything.
type NopLogger = corelogger.Nop

// New returns the logger for one component ("price", "dispatch",
// "mqtt_bridge"). APP_ENV=dev switches to console output and LOG_LEVEL sets
// the threshold; config.LoggingConfig.Apply fills both from the config file.
func New(component string) Logger {
	return NewZerologLogger(component)
}
