// Package protocol implements the tmux control-mode channel engine.
//
// Two loops run for the lifetime of a session. The Writer owns tmux's stdin:
// it takes submitted commands in order, assigns each a sequence number,
// enqueues a correlation Record and only then transmits the command line.
// The Reader owns tmux's stdout: it parses the line stream into %begin /
// %end (or %error) output blocks and matches every completed block against
// the Records the Writer enqueued, resolving the caller's Reply.
//
// The loops share nothing but the correlation Queue, which never blocks the
// Writer.
//
// Example usage:
//
//	submissions := protocol.NewQueue[protocol.Submission]()
//	correlations := protocol.NewQueue[protocol.Record]()
//
//	writer := protocol.NewWriter(log, submissions, correlations, transport)
//	reader := protocol.NewReader(protocol.ReaderConfig{Logger: log, Correlations: correlations})
//
//	go writer.Run(ctx)
//	go reader.Run(ctx, lines, errs)
//
//	reply := protocol.NewReply()
//	_ = submissions.Push(protocol.Submission{Command: command.NewInfo(), Reply: reply})
//	resp, err := reply.Wait(ctx)
package protocol
