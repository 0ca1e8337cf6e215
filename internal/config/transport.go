// Package config provides configuration types for tmux control sessions.
package config

import "context"

// Transport defines the interface for talking to a tmux control-mode client.
// Implement this to provide custom transports for testing, mocking,
// or alternative connections (e.g., tmux on a remote host over ssh).
//
// The default implementation is the subprocess transport, which spawns
// "tmux -C". Custom transports can be injected via Options.Transport.
type Transport interface {
	// Start initializes the transport and prepares it for communication.
	// This is called before any command is sent or any line is read.
	Start(ctx context.Context) error

	// ReadLines returns channels for receiving output lines and errors.
	// Lines are yielded without their trailing newline.
	// Both channels are closed when the output stream ends.
	ReadLines(ctx context.Context) (<-chan string, <-chan error)

	// SendLine writes one command line to tmux.
	// A newline is appended if missing.
	// This method must be safe for concurrent use.
	SendLine(ctx context.Context, data []byte) error

	// Close terminates the transport and releases resources.
	// It's safe to call Close multiple times.
	Close() error

	// IsReady returns true if the transport is ready for communication.
	IsReady() bool

	// EndInput signals that no more commands will be sent.
	// For process-based transports, this closes stdin, which makes
	// tmux detach and exit.
	EndInput() error
}
