package tmuxcontrol

import (
	"context"

	"github.com/wagiedev/tmux-control-go/internal/command"
	"github.com/wagiedev/tmux-control-go/internal/protocol"
)

// Re-export the command catalog.
type (
	// Command is a single tmux control-mode command. Implement it to send
	// commands the catalog does not cover.
	Command = command.Command

	// Response receives the text of a command's output block.
	Response = command.Response

	// Info describes the tmux server and the control client's terminal.
	Info = command.Info

	// InfoResponse holds the output of Info.
	InfoResponse = command.InfoResponse

	// Raw is an arbitrary tmux command line.
	Raw = command.Raw

	// TextResponse holds unparsed command output.
	TextResponse = command.TextResponse

	// ListSessions lists the server's sessions.
	ListSessions = command.ListSessions

	// ListSessionsResponse holds the parsed session list.
	ListSessionsResponse = command.ListSessionsResponse

	// SessionInfo describes one tmux session.
	SessionInfo = command.SessionInfo

	// DisplayMessage expands a tmux format string.
	DisplayMessage = command.DisplayMessage

	// DisplayMessageResponse holds the expanded format.
	DisplayMessageResponse = command.DisplayMessageResponse

	// Reply is the pending result of one submitted command.
	Reply = protocol.Reply
)

// NewInfo returns the info command.
func NewInfo() Info {
	return command.NewInfo()
}

// NewRaw wraps a single tmux command line. It fails with ErrInvalidCommand
// for empty lines or lines containing a line break.
func NewRaw(line string) (*Raw, error) {
	return command.NewRaw(line)
}

// NewListSessions returns the list-sessions command.
func NewListSessions() ListSessions {
	return command.NewListSessions()
}

// NewDisplayMessage returns a command expanding format.
func NewDisplayMessage(format string) (*DisplayMessage, error) {
	return command.NewDisplayMessage(format)
}

// TypedReply is a Reply whose response has a known concrete type.
type TypedReply[T Response] struct {
	reply *Reply
}

func newTypedReply[T Response](reply *Reply) *TypedReply[T] {
	return &TypedReply[T]{reply: reply}
}

// failedReply returns a reply that has already failed with err.
func failedReply[T Response](err error) *TypedReply[T] {
	reply := protocol.NewReply()
	reply.Fail(err)

	return newTypedReply[T](reply)
}

// Seq returns the sequence number assigned to the command, or 0 if it was
// never transmitted.
func (r *TypedReply[T]) Seq() uint64 {
	return r.reply.Seq()
}

// Done returns a channel that is closed when the reply resolves.
func (r *TypedReply[T]) Done() <-chan struct{} {
	return r.reply.Done()
}

// Wait blocks until the reply resolves or ctx is done.
//
// A command tmux rejected returns the populated response together with a
// *CommandError.
func (r *TypedReply[T]) Wait(ctx context.Context) (T, error) {
	resp, err := r.reply.Wait(ctx)

	typed, _ := resp.(T)

	return typed, err
}

// Untyped returns the underlying Reply.
func (r *TypedReply[T]) Untyped() *Reply {
	return r.reply
}
