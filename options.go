package tmuxcontrol

import (
	"log/slog"
	"time"

	"github.com/wagiedev/tmux-control-go/internal/config"
)

// Options configures a Session. See the With* functions for each field.
type Options = config.Options

// DefaultCloseTimeout is how long Close waits for tmux to exit when
// WithCloseTimeout is not given.
const DefaultCloseTimeout = config.DefaultCloseTimeout

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options to a new Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithTmuxPath sets the explicit path to the tmux binary.
// If not set, tmux is searched in PATH and common install locations.
func WithTmuxPath(path string) Option {
	return func(o *Options) {
		o.TmuxPath = path
	}
}

// WithCwd sets the working directory for the tmux process.
func WithCwd(cwd string) Option {
	return func(o *Options) {
		o.Cwd = cwd
	}
}

// WithEnv provides additional environment variables for the tmux process.
// TMUX and TMUX_PANE are always removed so tmux never sees itself nested.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		o.Env = env
	}
}

// ===== Server and Session =====

// WithSocketPath selects the tmux server socket (tmux -S).
func WithSocketPath(path string) Option {
	return func(o *Options) {
		o.SocketPath = path
	}
}

// WithConfigFile sets the tmux configuration file (tmux -f). Pass
// "/dev/null" for a server that ignores the user's tmux.conf.
func WithConfigFile(path string) Option {
	return func(o *Options) {
		o.ConfigFile = path
	}
}

// WithSessionName names the tmux session to control, creating it if it
// does not exist.
func WithSessionName(name string) Option {
	return func(o *Options) {
		o.SessionName = name
	}
}

// WithAttach attaches to the existing session name instead of creating
// it. Starting fails if the session does not exist.
func WithAttach(name string) Option {
	return func(o *Options) {
		o.SessionName = name
		o.Attach = true
	}
}

// ===== Process =====

// WithSkipVersionCheck disables the "tmux -V" check.
// The TMUXCONTROL_SKIP_VERSION_CHECK environment variable does the same.
func WithSkipVersionCheck() Option {
	return func(o *Options) {
		o.SkipVersionCheck = true
	}
}

// WithMaxBufferSize sets the maximum size of one tmux output line.
func WithMaxBufferSize(size int) Option {
	return func(o *Options) {
		o.MaxBufferSize = &size
	}
}

// WithStderr sets a callback that receives each line tmux writes to stderr.
func WithStderr(fn func(string)) Option {
	return func(o *Options) {
		o.Stderr = fn
	}
}

// WithCloseTimeout bounds how long Close waits for tmux to exit before
// killing it. The default is DefaultCloseTimeout.
func WithCloseTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.CloseTimeout = timeout
	}
}

// ===== Protocol =====

// WithProtocolErrorHandler receives *ProtocolDecodeError and
// *CorrelationError values as they are detected. The handler runs on the
// reader goroutine and must not block.
func WithProtocolErrorHandler(fn func(error)) Option {
	return func(o *Options) {
		o.OnProtocolError = fn
	}
}

// WithTransport injects a custom transport in place of the tmux subprocess.
func WithTransport(transport Transport) Option {
	return func(o *Options) {
		o.Transport = transport
	}
}
