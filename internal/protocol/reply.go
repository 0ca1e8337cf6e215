package protocol

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/wagiedev/tmux-control-go/internal/command"
)

// Reply is a single-value future for one submitted command. It resolves
// exactly once, either with the populated Response or with an error.
type Reply struct {
	seq  atomic.Uint64
	once sync.Once
	done chan struct{}

	response command.Response
	err      error
}

// NewReply creates an unresolved reply.
func NewReply() *Reply {
	return &Reply{done: make(chan struct{})}
}

// Seq returns the sequence number the Writer assigned to the command, or 0
// if the command has not been dispatched.
func (r *Reply) Seq() uint64 {
	return r.seq.Load()
}

// Done returns a channel that is closed when the reply resolves.
func (r *Reply) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the reply resolves or ctx is done. Cancelling ctx only
// stops this wait; the command stays in flight.
//
// A command that tmux closed with %error returns both the populated Response
// and a *errors.CommandError.
func (r *Reply) Wait(ctx context.Context) (command.Response, error) {
	select {
	case <-r.done:
		return r.response, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Fail resolves the reply with err. It reports false if the reply had
// already resolved.
func (r *Reply) Fail(err error) bool {
	return r.Resolve(nil, err)
}

// Resolve settles the reply with response and err. It reports false if the
// reply had already resolved. The Reader is the only caller in a session; it
// is exported for fakes.
func (r *Reply) Resolve(response command.Response, err error) bool {
	resolved := false

	r.once.Do(func() {
		r.response = response
		r.err = err
		resolved = true

		close(r.done)
	})

	return resolved
}
