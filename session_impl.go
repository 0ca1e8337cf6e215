package tmuxcontrol

import (
	"context"

	"github.com/wagiedev/tmux-control-go/internal/client"
)

// sessionWrapper wraps the internal client to adapt it to the public interface.
type sessionWrapper struct {
	impl *client.Client
}

// Compile-time check that *sessionWrapper implements the Session interface.
var _ Session = (*sessionWrapper)(nil)

func newSessionImpl() Session {
	return &sessionWrapper{impl: client.New()}
}

func (s *sessionWrapper) Start(ctx context.Context, opts ...Option) error {
	return s.impl.Start(ctx, applyOptions(opts))
}

func (s *sessionWrapper) Submit(cmd Command) *Reply {
	return s.impl.Submit(cmd)
}

func (s *sessionWrapper) Info() *TypedReply[*InfoResponse] {
	return newTypedReply[*InfoResponse](s.impl.Submit(NewInfo()))
}

func (s *sessionWrapper) Run(line string) *TypedReply[*TextResponse] {
	cmd, err := NewRaw(line)
	if err != nil {
		return failedReply[*TextResponse](err)
	}

	return newTypedReply[*TextResponse](s.impl.Submit(cmd))
}

func (s *sessionWrapper) ListSessions() *TypedReply[*ListSessionsResponse] {
	return newTypedReply[*ListSessionsResponse](s.impl.Submit(NewListSessions()))
}

func (s *sessionWrapper) DisplayMessage(format string) *TypedReply[*DisplayMessageResponse] {
	cmd, err := NewDisplayMessage(format)
	if err != nil {
		return failedReply[*DisplayMessageResponse](err)
	}

	return newTypedReply[*DisplayMessageResponse](s.impl.Submit(cmd))
}

func (s *sessionWrapper) ID() string {
	return s.impl.ID()
}

func (s *sessionWrapper) Done() <-chan struct{} {
	return s.impl.Done()
}

func (s *sessionWrapper) Err() error {
	return s.impl.Err()
}

func (s *sessionWrapper) Close() error {
	return s.impl.Close()
}
