package log // import "github.com/callpath/ensemble/internal/log"

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
)

// globalLogger holds a reference to the [slog.Logger] used within
// github.com/callpath/ensemble.
//
// The default logger logs to stderr and shows messages at the Info level.
var globalLogger = func() *atomic.Pointer[slog.Logger] {
	l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	p := new(atomic.Pointer[slog.Logger])
	p.Store(l)
	return p
}()

// SetLogger sets the global Logger to l.
func SetLogger(l slog.Logger) {
	globalLogger.Store(&l)
}

// SetLevelLogger configures the global logger to write logs at the given
// level to stderr.
func SetLevelLogger(level slog.Level) {
	SetLogger(*slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// getLogger returns the global logger.
func getLogger() *slog.Logger {
	return globalLogger.Load()
}

// Infof logs informational messages about the general progress of a merge.
func Infof(msg string, args ...any) {
	if getLogger().Enabled(context.Background(), slog.LevelInfo) {
		getLogger().Info(fmt.Sprintf(msg, args...))
	}
}

// Warnf logs warnings — not errors, but likely more important than
// informational messages.
func Warnf(msg string, args ...any) {
	if getLogger().Enabled(context.Background(), slog.LevelWarn) {
		getLogger().Warn(fmt.Sprintf(msg, args...))
	}
}

// Errorf logs error messages about exceptional states.
func Errorf(msg string, args ...any) {
	if getLogger().Enabled(context.Background(), slog.LevelError) {
		getLogger().Error(fmt.Sprintf(msg, args...))
	}
}

// Debugf logs detailed debugging information about internal behavior.
func Debugf(msg string, args ...any) {
	if getLogger().Enabled(context.Background(), slog.LevelDebug) {
		getLogger().Debug(fmt.Sprintf(msg, args...))
	}
}
