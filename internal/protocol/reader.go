package protocol

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/wagiedev/tmux-control-go/internal/errors"
)

// ReaderConfig configures a Reader.
type ReaderConfig struct {
	// Logger receives parser diagnostics. If nil, logging is disabled.
	Logger *slog.Logger

	// Correlations is the queue the Writer enqueues Records on.
	Correlations *Queue[Record]

	// OnProtocolError receives *errors.ProtocolDecodeError and
	// *errors.CorrelationError values as they are detected. Optional.
	OnProtocolError func(error)

	// CancelCause returns the error that resolves every reply still pending
	// when Run exits. streamErr is the transport error that ended the
	// stream, if any. Defaults to wrapping errors.ErrCancelled.
	CancelCause func(streamErr error) error
}

// openBlock accumulates the lines of the output block being read.
type openBlock struct {
	lines    []string
	beginSeq uint64
	hasSeq   bool
}

// Reader parses tmux control-mode output and resolves replies.
//
// While no block is open the Reader is scanning: %begin opens a block, other
// notifications are discarded, anything else is ignored. While a block is
// open every line is output until %end or %error closes it.
type Reader struct {
	log     *slog.Logger
	config  ReaderConfig
	current *openBlock

	// blocks holds completed blocks awaiting their Record.
	blocks map[uint64]rawBlock
	// records holds Records drained from the correlation queue.
	records map[uint64]Record
}

// NewReader creates a Reader in the scanning state.
func NewReader(cfg ReaderConfig) *Reader {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if cfg.CancelCause == nil {
		cfg.CancelCause = CancelError
	}

	return &Reader{
		log:     log.With("component", "reader"),
		config:  cfg,
		blocks:  make(map[uint64]rawBlock, 4),
		records: make(map[uint64]Record, 16),
	}
}

// Run consumes lines until the channel closes or ctx is done. Errors on errs
// are remembered and passed to CancelCause once lines closes.
//
// On exit the correlation queue is closed and every pending reply resolves
// to the CancelCause error. Run returns the stream error, ctx.Err(), or nil
// after a clean end of stream.
func (r *Reader) Run(ctx context.Context, lines <-chan string, errs <-chan error) error {
	r.log.Debug("Reader started")
	defer r.log.Debug("Reader stopped")

	var streamErr error

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				// Transports close errs before lines, so anything they
				// reported is already buffered.
				if streamErr == nil {
					streamErr = pendingError(errs)
				}

				r.finish(streamErr)

				return streamErr
			}

			r.handleLine(line)

		case err, ok := <-errs:
			if !ok {
				errs = nil

				continue
			}

			if err != nil && streamErr == nil {
				r.log.Debug("Stream error", "error", err)
				streamErr = err
			}

		case <-ctx.Done():
			r.finish(ctx.Err())

			return ctx.Err()
		}
	}
}

// handleLine advances the state machine by one line, then correlates.
func (r *Reader) handleLine(line string) {
	line = strings.TrimSuffix(line, "\r")

	if r.current == nil {
		r.scan(line)
	} else {
		r.accumulate(line)
	}

	r.correlate()
}

// scan handles a line while no block is open.
func (r *Reader) scan(line string) {
	st, ok := matchNotification(line)
	if !ok {
		r.log.Debug("Ignoring line outside output block", "line", line)

		return
	}

	switch st.keyword {
	case keywordBegin:
		args, reason := parseBlockArgs(st.args)
		if reason != "" {
			// Only the terminator's sequence number is used for matching.
			r.log.Warn("Malformed %begin arguments", "line", line, "reason", reason)
		}

		r.current = &openBlock{beginSeq: args.seq, hasSeq: args.hasSeq}

	case keywordExit,
		keywordLayoutChange,
		keywordOutput,
		keywordSessionChanged,
		keywordSessionRenamed,
		keywordSessionsChanged,
		keywordUnlinkedWindowAdd,
		keywordWindowAdd,
		keywordWindowClose,
		keywordWindowRenamed:
		r.log.Debug("Discarding notification", "notification", st.keyword)
	}
}

// accumulate handles a line while a block is open.
func (r *Reader) accumulate(line string) {
	st, ok := matchTerminator(line)
	if !ok {
		r.current.lines = append(r.current.lines, line)

		return
	}

	block := r.current
	r.current = nil

	text := strings.Join(block.lines, "\n")

	args, reason := parseBlockArgs(st.args)
	if reason == "" && !args.hasSeq {
		reason = "missing sequence number"
	}

	if reason != "" {
		r.malformed(&errors.ProtocolDecodeError{Line: line, Reason: reason})

		return
	}

	if block.hasSeq && block.beginSeq != args.seq {
		r.log.Warn("Block delimiters disagree on sequence number, using terminator",
			"begin_seq", block.beginSeq,
			"end_seq", args.seq,
		)
	}

	r.blocks[args.seq] = rawBlock{
		seq:    args.seq,
		text:   text,
		failed: st.keyword == keywordError,
	}
}

// malformed reports a terminator that cannot be attributed by sequence
// number. tmux answers commands in order, so the block belongs to the
// oldest pending command, whose reply fails with err.
func (r *Reader) malformed(err *errors.ProtocolDecodeError) {
	r.report(err)
	r.drain()

	oldest, ok := r.oldestRecord()
	if !ok {
		return
	}

	delete(r.records, oldest.Seq)
	oldest.reply.Fail(err)
}

// correlate drains the correlation queue and resolves every completed block.
//
// A block whose sequence number matches no pending command is attributed to
// the oldest pending command, which tmux answers first; that reply carries
// the block text and a *errors.CorrelationError. A block that arrives while
// nothing is pending, such as the answer to tmux's startup command, is
// reported and dropped.
func (r *Reader) correlate() {
	if len(r.blocks) == 0 {
		return
	}

	r.drain()

	for _, seq := range slices.Sorted(maps.Keys(r.blocks)) {
		block := r.blocks[seq]
		delete(r.blocks, seq)

		if record, ok := r.records[seq]; ok {
			delete(r.records, seq)
			r.deliver(record, block)

			continue
		}

		oldest, ok := r.oldestRecord()
		if !ok {
			r.report(&errors.CorrelationError{Seq: seq, Reason: "no pending command"})

			continue
		}

		delete(r.records, oldest.Seq)

		err := &errors.CorrelationError{
			Seq:    seq,
			Reason: fmt.Sprintf("no pending command, attributed to command #%d", oldest.Seq),
		}
		r.report(err)

		oldest.response.Consume(block.text)
		oldest.reply.Resolve(oldest.response, err)
	}
}

func (r *Reader) deliver(record Record, block rawBlock) {
	record.response.Consume(block.text)

	var err error
	if block.failed {
		err = &errors.CommandError{Seq: block.seq, Output: block.text}
	}

	r.log.Debug("Resolving reply", "seq", block.seq, "failed", block.failed)
	record.reply.Resolve(record.response, err)
}

// drain moves queued Records into the pending set without blocking.
func (r *Reader) drain() {
	for _, record := range r.config.Correlations.Drain() {
		r.records[record.Seq] = record
	}
}

func (r *Reader) oldestRecord() (Record, bool) {
	var (
		oldest Record
		found  bool
	)

	for seq, record := range r.records {
		if !found || seq < oldest.Seq {
			oldest = record
			found = true
		}
	}

	return oldest, found
}

// finish closes the correlation queue and fails every pending reply.
func (r *Reader) finish(streamErr error) {
	r.config.Correlations.Close()
	r.drain()

	if r.current != nil {
		r.log.Warn("Output stream ended inside an output block", "lines", len(r.current.lines))
		r.current = nil
	}

	if len(r.records) == 0 {
		return
	}

	cause := r.config.CancelCause(streamErr)

	r.log.Debug("Cancelling pending replies", "count", len(r.records), "cause", cause)

	for seq, record := range r.records {
		record.reply.Fail(cause)
		delete(r.records, seq)
	}
}

func (r *Reader) report(err error) {
	r.log.Error("Control protocol error", "error", err)

	if r.config.OnProtocolError != nil {
		r.config.OnProtocolError(err)
	}
}

// pendingError returns the first non-nil error already buffered on errs
// without blocking.
func pendingError(errs <-chan error) error {
	for {
		select {
		case err, ok := <-errs:
			if !ok {
				return nil
			}

			if err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// CancelError is the error pending replies resolve to when the output stream
// ends. It wraps errors.ErrCancelled and the stream error, if any.
func CancelError(streamErr error) error {
	if streamErr != nil {
		return fmt.Errorf("%w: %w", errors.ErrCancelled, streamErr)
	}

	return fmt.Errorf("%w: output stream closed", errors.ErrCancelled)
}
