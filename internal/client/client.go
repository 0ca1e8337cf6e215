package client

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/tmux-control-go/internal/command"
	"github.com/wagiedev/tmux-control-go/internal/config"
	"github.com/wagiedev/tmux-control-go/internal/errors"
	"github.com/wagiedev/tmux-control-go/internal/protocol"
	"github.com/wagiedev/tmux-control-go/internal/subprocess"
)

// Client is a single-use tmux control session.
type Client struct {
	log       *slog.Logger
	id        string
	transport config.Transport
	options   *config.Options

	submissions *protocol.Queue[protocol.Submission]

	// Fatal error storage; the first cause wins.
	errMu    sync.RWMutex
	fatalErr error

	// Errgroup for the Writer and Reader goroutines
	eg *errgroup.Group

	// Lifecycle management
	mu        sync.Mutex
	done      chan struct{}
	doneOnce  sync.Once
	started   bool
	closed    bool
	closeOnce sync.Once
}

// New creates a new session client.
//
// The client is not connected after creation. Call Start() with options to
// spawn tmux.
func New() *Client {
	return &Client{
		id:   ulid.Make().String(),
		done: make(chan struct{}),
	}
}

// ID returns the session id used in log records.
func (c *Client) ID() string {
	return c.id
}

func (c *Client) setFatalError(err error) {
	if err == nil {
		return
	}

	c.errMu.Lock()
	defer c.errMu.Unlock()

	if c.fatalErr == nil {
		c.fatalErr = err
	}
}

func (c *Client) getFatalError() error {
	c.errMu.RLock()
	defer c.errMu.RUnlock()

	return c.fatalErr
}

// Start spawns tmux in control mode and starts the Writer and Reader.
//
// ctx bounds startup only; the session stays up until Close or until tmux
// exits.
//
// Returns TmuxNotFoundError if the binary cannot be located,
// or ConnectionError if the process fails to start.
func (c *Client) Start(ctx context.Context, options *config.Options) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.ErrSessionClosed
	}

	if c.started {
		return errors.ErrSessionAlreadyStarted
	}

	if options == nil {
		options = &config.Options{}
	}

	c.options = options

	log := options.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	base := log.With("session_id", c.id)
	c.log = base.With("component", "session")

	var transport config.Transport

	if options.Transport != nil {
		transport = options.Transport

		c.log.Debug("Using injected custom transport")
	} else {
		transport = subprocess.NewTmuxTransport(base, options)
	}

	if err := transport.Start(ctx); err != nil {
		return fmt.Errorf("start transport: %w", err)
	}

	c.transport = transport
	c.submissions = protocol.NewQueue[protocol.Submission]()

	correlations := protocol.NewQueue[protocol.Record]()
	writer := protocol.NewWriter(base, c.submissions, correlations, transport)
	reader := protocol.NewReader(protocol.ReaderConfig{
		Logger:          base,
		Correlations:    correlations,
		OnProtocolError: options.OnProtocolError,
		CancelCause:     c.cancelCause,
	})

	// The loops run on a background context: the caller's ctx may carry a
	// startup deadline, and the session must outlive it until Close.
	var egCtx context.Context

	c.eg, egCtx = errgroup.WithContext(context.Background())

	c.eg.Go(func() error {
		return c.writeLoop(egCtx, writer)
	})

	c.eg.Go(func() error {
		return c.readLoop(egCtx, reader)
	})

	go c.supervise()

	c.started = true
	c.log.Info("Session started")

	return nil
}

// writeLoop runs the Writer. A clean return means every submission was
// flushed after Close, so stdin is closed to let tmux detach.
func (c *Client) writeLoop(ctx context.Context, writer *protocol.Writer) error {
	err := writer.Run(ctx)
	if err == nil {
		if endErr := c.transport.EndInput(); endErr != nil {
			c.log.Debug("Failed to end tmux input", "error", endErr)
		}

		return nil
	}

	c.setFatalError(err)

	if !stderrors.Is(err, context.Canceled) {
		c.log.Error("Writer failed, terminating tmux", "error", err)

		// Nothing more can be sent; stop tmux so the Reader reaches the end
		// of the stream and resolves what is still pending.
		if closeErr := c.transport.Close(); closeErr != nil {
			c.log.Debug("Failed to close transport", "error", closeErr)
		}
	}

	return err
}

func (c *Client) readLoop(ctx context.Context, reader *protocol.Reader) error {
	lines, errs := c.transport.ReadLines(ctx)

	err := reader.Run(ctx, lines, errs)

	c.setFatalError(protocol.CancelError(err))
	c.submissions.Close()

	// Commands the Writer has not taken yet can no longer be answered.
	cause := c.getFatalError()
	for _, sub := range c.submissions.Drain() {
		sub.Reply.Fail(cause)
	}

	if err != nil && !stderrors.Is(err, context.Canceled) {
		c.log.Error("tmux output stream failed", "error", err)

		return err
	}

	c.log.Debug("tmux output stream ended")

	return nil
}

// cancelCause resolves replies left pending when the output stream ends
// with the session's fatal error, so a user Close or a Writer failure is
// reported instead of a bare cancellation.
func (c *Client) cancelCause(streamErr error) error {
	c.setFatalError(protocol.CancelError(streamErr))

	return c.getFatalError()
}

// supervise waits for both loops, resolves any submission the Writer never
// took, and marks the session done.
func (c *Client) supervise() {
	_ = c.eg.Wait()

	c.submissions.Close()

	cause := c.getFatalError()
	if cause == nil {
		cause = errors.ErrSessionBroken
	}

	for _, sub := range c.submissions.Drain() {
		sub.Reply.Fail(cause)
	}

	if err := c.transport.Close(); err != nil {
		c.log.Debug("Failed to close transport", "error", err)
	}

	c.log.Info("Session ended", "cause", cause)
	c.markDone()
}

func (c *Client) markDone() {
	c.doneOnce.Do(func() { close(c.done) })
}

// Submit queues cmd for transmission and returns its reply immediately.
//
// Submit never blocks on tmux. If the session is not running, the returned
// reply has already failed with the reason.
func (c *Client) Submit(cmd command.Command) *protocol.Reply {
	reply := protocol.NewReply()

	if cmd == nil {
		reply.Fail(fmt.Errorf("%w: nil command", command.ErrInvalidCommand))

		return reply
	}

	c.mu.Lock()
	started, closed := c.started, c.closed
	c.mu.Unlock()

	if !started {
		if closed {
			reply.Fail(errors.ErrSessionClosed)
		} else {
			reply.Fail(errors.ErrSessionNotStarted)
		}

		return reply
	}

	if err := c.getFatalError(); err != nil {
		reply.Fail(err)

		return reply
	}

	if err := c.submissions.Push(protocol.Submission{Command: cmd, Reply: reply}); err != nil {
		if fatal := c.getFatalError(); fatal != nil {
			err = fatal
		}

		reply.Fail(err)
	}

	return reply
}

// Done returns a channel that is closed once the session has ended and
// every reply has resolved.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the cause that ended the session, or nil while it runs.
func (c *Client) Err() error {
	return c.getFatalError()
}

// Close ends the session.
//
// Queued commands are still transmitted; stdin is then closed so tmux
// detaches after answering them. If tmux has not exited within the close
// timeout it is killed. Replies still pending resolve to ErrSessionClosed.
//
// After Close(), the client cannot be reused - create a new client with
// New(). This method is safe to call multiple times.
func (c *Client) Close() error {
	var closeErr error

	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		wasStarted := c.started
		c.mu.Unlock()

		if !wasStarted {
			c.setFatalError(errors.ErrSessionClosed)
			c.markDone()

			return
		}

		c.log.Info("Closing session")

		c.setFatalError(errors.ErrSessionClosed)
		c.submissions.Close()

		timer := time.NewTimer(c.options.EffectiveCloseTimeout())
		defer timer.Stop()

		select {
		case <-c.done:
		case <-timer.C:
			c.log.Warn("tmux did not exit in time, killing it")

			closeErr = c.transport.Close()

			<-c.done
		}

		if err := c.eg.Wait(); err != nil && closeErr == nil && !stderrors.Is(err, context.Canceled) {
			closeErr = err
		}

		c.log.Info("Session closed")
	})

	return closeErr
}
