package errors

import (
	"errors"
	"fmt"
)

// TmuxControlError is the base interface for all tmux control errors.
type TmuxControlError interface {
	error
	IsTmuxControlError() bool
}

// Compile-time verification that all error types implement TmuxControlError.
var (
	_ TmuxControlError = (*TmuxNotFoundError)(nil)
	_ TmuxControlError = (*ConnectionError)(nil)
	_ TmuxControlError = (*ProcessError)(nil)
	_ TmuxControlError = (*TransmissionError)(nil)
	_ TmuxControlError = (*ProtocolDecodeError)(nil)
	_ TmuxControlError = (*CorrelationError)(nil)
	_ TmuxControlError = (*CommandError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrSessionNotStarted indicates the session has not been started.
	ErrSessionNotStarted = errors.New("session not started")

	// ErrSessionAlreadyStarted indicates Start was called twice.
	ErrSessionAlreadyStarted = errors.New("session already started")

	// ErrSessionClosed indicates the session has been closed and cannot be reused.
	ErrSessionClosed = errors.New("session closed: sessions are single-use, create a new one with NewSession()")

	// ErrSessionBroken indicates the command stream to tmux failed and no
	// further commands can be sent.
	ErrSessionBroken = errors.New("session broken")

	// ErrCancelled indicates a reply will never be fulfilled because the
	// output stream ended first.
	ErrCancelled = errors.New("reply cancelled")

	// ErrTransportNotConnected indicates the transport is not connected.
	ErrTransportNotConnected = errors.New("transport not connected")

	// ErrStdinClosed indicates stdin was closed due to context cancellation or shutdown.
	ErrStdinClosed = errors.New("stdin closed")

	// ErrQueueClosed indicates a push onto a closed queue.
	ErrQueueClosed = errors.New("queue closed")
)

// TmuxNotFoundError indicates the tmux binary was not found.
type TmuxNotFoundError struct {
	SearchedPaths []string
}

func (e *TmuxNotFoundError) Error() string {
	return fmt.Sprintf("tmux not found in: %v", e.SearchedPaths)
}

// IsTmuxControlError implements TmuxControlError.
func (e *TmuxNotFoundError) IsTmuxControlError() bool { return true }

// ConnectionError indicates failure to start or attach to tmux.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to tmux: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsTmuxControlError implements TmuxControlError.
func (e *ConnectionError) IsTmuxControlError() bool { return true }

// ProcessError indicates the tmux process failed.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tmux process failed (exit %d): %v", e.ExitCode, e.Err)
	}

	return fmt.Sprintf("tmux process failed (exit %d): %s", e.ExitCode, e.Stderr)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsTmuxControlError implements TmuxControlError.
func (e *ProcessError) IsTmuxControlError() bool { return true }

// TransmissionError indicates a command could not be written to tmux.
// It is fatal to the session.
type TransmissionError struct {
	Seq uint64
	Err error
}

func (e *TransmissionError) Error() string {
	return fmt.Sprintf("transmit command #%d: %v", e.Seq, e.Err)
}

func (e *TransmissionError) Unwrap() error {
	return e.Err
}

// IsTmuxControlError implements TmuxControlError.
func (e *TransmissionError) IsTmuxControlError() bool { return true }

// ProtocolDecodeError indicates a stanza line did not match the control-mode grammar.
type ProtocolDecodeError struct {
	Line   string
	Reason string
}

func (e *ProtocolDecodeError) Error() string {
	return fmt.Sprintf("decode control stanza %q: %s", e.Line, e.Reason)
}

// IsTmuxControlError implements TmuxControlError.
func (e *ProtocolDecodeError) IsTmuxControlError() bool { return true }

// CorrelationError indicates an output block and the pending commands disagree
// about which sequence numbers are in flight.
type CorrelationError struct {
	Seq    uint64
	Reason string
}

func (e *CorrelationError) Error() string {
	return fmt.Sprintf("correlate block #%d: %s", e.Seq, e.Reason)
}

// IsTmuxControlError implements TmuxControlError.
func (e *CorrelationError) IsTmuxControlError() bool { return true }

// CommandError indicates tmux closed the command's output block with %error.
// Output holds the error text tmux produced.
type CommandError struct {
	Seq    uint64
	Output string
}

func (e *CommandError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("tmux command #%d failed", e.Seq)
	}

	return fmt.Sprintf("tmux command #%d failed: %s", e.Seq, e.Output)
}

// IsTmuxControlError implements TmuxControlError.
func (e *CommandError) IsTmuxControlError() bool { return true }
