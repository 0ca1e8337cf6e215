package config

import (
	"log/slog"
	"time"
)

// DefaultCloseTimeout is how long Close waits for tmux to exit on its own
// after stdin is closed before the process is killed.
const DefaultCloseTimeout = 2 * time.Second

// Options configures a tmux control session.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// TmuxPath is the explicit path to the tmux binary.
	// If empty, tmux is searched in PATH and common install locations.
	TmuxPath string

	// SocketPath selects the tmux server socket (tmux -S).
	// If empty, tmux uses its default server.
	SocketPath string

	// ConfigFile is passed to tmux -f. Use "/dev/null" to start a server
	// that ignores the user's tmux.conf.
	ConfigFile string

	// SessionName names the tmux session to control. With Attach unset the
	// session is created if missing (new-session -A -s). If empty, tmux
	// creates an anonymous session.
	SessionName string

	// Attach attaches to the existing session SessionName instead of
	// creating it (attach-session -t). Starting fails if it does not exist.
	Attach bool

	// Cwd sets the working directory for the tmux process.
	Cwd string

	// Env provides additional environment variables for the tmux process.
	// TMUX and TMUX_PANE are always removed.
	Env map[string]string

	// SkipVersionCheck disables the "tmux -V" check run before starting.
	SkipVersionCheck bool

	// MaxBufferSize sets the maximum bytes of a single tmux output line.
	// If nil, uses the default of 1MB.
	MaxBufferSize *int

	// Stderr is a callback function for handling tmux stderr output.
	Stderr func(string)

	// CloseTimeout bounds how long Close waits for a graceful exit.
	// If zero, DefaultCloseTimeout is used.
	CloseTimeout time.Duration

	// OnProtocolError receives malformed-stanza and unmatched-block errors
	// as the reader encounters them. It runs on the reader goroutine and
	// must not block.
	OnProtocolError func(error)

	// Transport allows injecting a custom transport implementation.
	// If nil, the default subprocess transport is created automatically.
	Transport Transport `json:"-"`
}

// EffectiveCloseTimeout returns CloseTimeout or its default.
func (o *Options) EffectiveCloseTimeout() time.Duration {
	if o == nil || o.CloseTimeout <= 0 {
		return DefaultCloseTimeout
	}

	return o.CloseTimeout
}
