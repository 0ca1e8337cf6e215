// Package command defines the contract shared by every tmux control-mode
// command, and the catalog of concrete commands the client ships with.
//
// A Command supplies its one-line wire form and builds the empty Response
// that will receive the command's output block. The protocol engine never
// inspects either beyond that: it transmits WireFormat, and calls Consume
// exactly once with the block text.
package command
