// Package log provides a public logging interface for github.com/callpath/ensemble.
package log // import "github.com/callpath/ensemble/log"

import (
	"log/slog"

	"github.com/callpath/ensemble/internal/log"
)

// SetLevel configures the log level for the library's internal logger.
func SetLevel(level slog.Level) {
	log.SetLevelLogger(level)
}

// SetLogger configures the library's internal logger.
func SetLogger(l slog.Logger) {
	log.SetLogger(l)
}
