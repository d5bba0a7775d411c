package shared

import (
	"os"

	"github.com/charmbracelet/log"
)

// SetupLogger configures a logger at the named level, defaulting to info
func SetupLogger(level string) *log.Logger {
	logger := log.New(os.Stderr)
	logger.SetReportTimestamp(true)

	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	return logger
}
