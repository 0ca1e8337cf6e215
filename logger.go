package tmuxcontrol

import "log/slog"

// NopLogger returns a logger that discards all output.
// Sessions use it when WithLogger is not given.
func NopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
