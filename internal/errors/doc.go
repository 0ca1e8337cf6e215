// Package errors defines error types for the tmux control client.
//
// This package provides structured error types that wrap the different failure
// scenarios of a control-mode session: locating tmux, starting it, transmitting
// commands, and decoding or correlating its output. All error types support
// error unwrapping and can be checked using errors.Is, errors.As, and errors.AsType.
package errors
