package tmuxcontrol

import (
	"github.com/wagiedev/tmux-control-go/internal/command"
	"github.com/wagiedev/tmux-control-go/internal/errors"
)

// Re-export error types from internal package

// TmuxControlError is the base interface for all errors of this package.
type TmuxControlError = errors.TmuxControlError

// TmuxNotFoundError indicates the tmux binary was not found.
type TmuxNotFoundError = errors.TmuxNotFoundError

// ConnectionError indicates tmux could not be started.
type ConnectionError = errors.ConnectionError

// ProcessError indicates tmux exited with a failure.
type ProcessError = errors.ProcessError

// TransmissionError indicates a command could not be written to tmux.
type TransmissionError = errors.TransmissionError

// ProtocolDecodeError indicates a malformed control-mode stanza.
type ProtocolDecodeError = errors.ProtocolDecodeError

// CorrelationError indicates an output block that matches no command.
type CorrelationError = errors.CorrelationError

// CommandError indicates tmux closed a command's output with %error.
type CommandError = errors.CommandError

// Re-export sentinel errors from internal package.
var (
	// ErrSessionNotStarted indicates Start has not been called.
	ErrSessionNotStarted = errors.ErrSessionNotStarted

	// ErrSessionAlreadyStarted indicates Start was called twice.
	ErrSessionAlreadyStarted = errors.ErrSessionAlreadyStarted

	// ErrSessionClosed indicates the session was closed and cannot be reused.
	ErrSessionClosed = errors.ErrSessionClosed

	// ErrSessionBroken indicates commands can no longer be written to tmux.
	ErrSessionBroken = errors.ErrSessionBroken

	// ErrCancelled indicates tmux's output ended before the reply arrived.
	ErrCancelled = errors.ErrCancelled

	// ErrTransportNotConnected indicates the transport is not connected.
	ErrTransportNotConnected = errors.ErrTransportNotConnected

	// ErrInvalidCommand indicates a command line that cannot be sent.
	ErrInvalidCommand = command.ErrInvalidCommand
)
