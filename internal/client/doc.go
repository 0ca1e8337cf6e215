// Package client implements the control session facade for a tmux
// control-mode client.
//
// A Client owns the transport, runs the protocol Writer and Reader as two
// goroutines in an errgroup, and exposes Submit, which hands back a Reply
// immediately. Every reply resolves exactly once: with tmux's output, or
// with the error that ended the session (closed, broken, or cancelled).
package client
