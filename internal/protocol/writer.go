package protocol

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wagiedev/tmux-control-go/internal/errors"
)

// Sink is the stream commands are written to. SendLine appends the newline
// framing when data lacks it.
type Sink interface {
	SendLine(ctx context.Context, data []byte) error
}

// Writer transmits submitted commands in submission order.
//
// For every command the Writer enqueues the correlation Record before it
// writes a single byte, so a Record always exists by the time tmux can
// answer.
type Writer struct {
	log          *slog.Logger
	submissions  *Queue[Submission]
	correlations *Queue[Record]
	sink         Sink

	// seq is owned by the Run goroutine.
	seq uint64
}

// NewWriter creates a Writer that takes commands from submissions, enqueues
// Records on correlations and writes to sink.
func NewWriter(
	log *slog.Logger,
	submissions *Queue[Submission],
	correlations *Queue[Record],
	sink Sink,
) *Writer {
	return &Writer{
		log:          log.With("component", "writer"),
		submissions:  submissions,
		correlations: correlations,
		sink:         sink,
	}
}

// Run transmits submissions until the submission queue is closed and empty,
// ctx is done, or a command cannot be dispatched.
//
// A dispatch failure is fatal: Run fails the command in hand and returns an
// error wrapping errors.ErrSessionBroken and *errors.TransmissionError.
// Submissions still queued are left for the caller to resolve.
func (w *Writer) Run(ctx context.Context) error {
	w.log.Debug("Writer started")
	defer w.log.Debug("Writer stopped")

	for {
		for _, sub := range w.submissions.Drain() {
			if err := w.dispatch(ctx, sub); err != nil {
				return err
			}
		}

		if w.submissions.Closed() && w.submissions.Len() == 0 {
			return nil
		}

		select {
		case <-w.submissions.Ready():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// dispatch assigns the next sequence number, enqueues the Record and writes
// the command.
func (w *Writer) dispatch(ctx context.Context, sub Submission) error {
	if err := ctx.Err(); err != nil {
		sub.Reply.Fail(err)

		return err
	}

	w.seq++
	seq := w.seq

	sub.Reply.seq.Store(seq)

	record := Record{
		Seq:      seq,
		response: sub.Command.BuildResponse(),
		reply:    sub.Reply,
	}

	if err := w.correlations.Push(record); err != nil {
		w.log.Error("Failed to enqueue correlation record", "seq", seq, "error", err)

		broken := brokenError(seq, err)
		sub.Reply.Fail(broken)

		return broken
	}

	wire := sub.Command.WireFormat()

	w.log.Debug("Transmitting command", "seq", seq, "command", string(wire))

	if err := w.sink.SendLine(ctx, wire); err != nil {
		w.log.Error("Failed to transmit command", "seq", seq, "error", err)

		// The Record is already with the Reader, which resolves the reply
		// when the session winds down.
		return brokenError(seq, err)
	}

	return nil
}

func brokenError(seq uint64, err error) error {
	return fmt.Errorf("%w: %w", errors.ErrSessionBroken, &errors.TransmissionError{Seq: seq, Err: err})
}
