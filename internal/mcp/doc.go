// Package mcp exposes a tmux control session as Model Context Protocol
// tools.
//
// Server keeps a thread-safe tool registry served to MCP clients over any
// go-sdk transport (Serve). Tool handler failures reach clients as error
// results.
// RegisterSessionTools installs the tmux tools backed by a session.
package mcp
