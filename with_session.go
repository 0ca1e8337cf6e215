package tmuxcontrol

import (
	"context"
	"fmt"
)

// WithSession manages session lifecycle with automatic cleanup.
//
// This helper creates a session, starts it with the provided options,
// executes the callback function, and ensures proper cleanup via Close()
// when done.
//
// If the callback returns an error, it is returned to the caller.
// If Close() fails, a warning is logged but does not override the
// callback's error.
//
// Example usage:
//
//	err := tmuxcontrol.WithSession(ctx, func(s tmuxcontrol.Session) error {
//	    info, err := s.Info().Wait(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(info.Content)
//	    return nil
//	},
//	    tmuxcontrol.WithLogger(log),
//	    tmuxcontrol.WithSocketPath("/tmp/work.sock"),
//	)
func WithSession(ctx context.Context, fn func(Session) error, opts ...Option) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	session := NewSession()
	if err := session.Start(ctx, opts...); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			log.Warn("failed to close session", "error", closeErr)
		}
	}()

	return fn(session)
}
