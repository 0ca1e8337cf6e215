package tmuxcontrol

import "github.com/wagiedev/tmux-control-go/internal/config"

// Transport defines the interface for talking to a tmux control-mode client.
// Implement this to provide custom transports for testing, mocking,
// or alternative connections (e.g., tmux on a remote host over ssh).
//
// The default implementation spawns "tmux -C" as a subprocess.
// Custom transports can be injected via WithTransport.
type Transport = config.Transport
