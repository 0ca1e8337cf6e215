// Package subprocess provides the subprocess-based transport for tmux
// control mode.
//
// This package implements the Transport interface by spawning "tmux -C" as
// a child process and communicating via stdin/stdout. It handles process
// lifecycle management, line buffering, and exit reporting.
package subprocess
