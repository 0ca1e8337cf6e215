package tmuxcontrol

import "context"

// Session is one tmux control-mode client.
//
// Commands may be submitted from any number of goroutines. Each submission
// returns a reply at once; the reply resolves when tmux answers the command
// or the session ends.
//
// Lifecycle: Sessions are single-use. After Close(), create a new session
// with NewSession().
//
// Example usage:
//
//	session := NewSession()
//	defer session.Close()
//
//	err := session.Start(ctx,
//	    WithLogger(slog.Default()),
//	    WithSessionName("work"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sessions, err := session.ListSessions().Wait(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, s := range sessions.Sessions {
//	    fmt.Println(s.Name, s.Windows)
//	}
type Session interface {
	// Start spawns tmux in control mode. Must be called before any command
	// is submitted. Returns TmuxNotFoundError if tmux is not found,
	// ConnectionError if it cannot be started.
	//
	// ctx bounds startup only; the session keeps running after it is done.
	Start(ctx context.Context, opts ...Option) error

	// Submit queues an arbitrary command. It never blocks on tmux.
	Submit(cmd Command) *Reply

	// Info asks tmux for server and terminal information.
	Info() *TypedReply[*InfoResponse]

	// Run sends a single raw tmux command line.
	Run(line string) *TypedReply[*TextResponse]

	// ListSessions lists the sessions on the server.
	ListSessions() *TypedReply[*ListSessionsResponse]

	// DisplayMessage expands a tmux format string such as
	// "#{session_name}".
	DisplayMessage(format string) *TypedReply[*DisplayMessageResponse]

	// ID returns the identifier used in this session's log records.
	ID() string

	// Done is closed once the session has ended and every reply has resolved.
	Done() <-chan struct{}

	// Err returns why the session ended, or nil while it runs.
	Err() error

	// Close ends the session. Queued commands are still sent; tmux is killed
	// if it does not exit within the close timeout.
	// Safe to call multiple times.
	Close() error
}

// NewSession creates a new Session.
// Call Start() to spawn tmux.
func NewSession() Session {
	return newSessionImpl()
}
