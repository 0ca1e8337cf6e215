// Package tmuxcontrol drives tmux through its control-mode protocol.
//
// A Session spawns "tmux -C", writes one command per line to its stdin and
// decodes the %begin/%end output blocks on its stdout back into typed
// responses. Commands are numbered in submission order and every reply is
// matched to its command by that number, so any number of goroutines can
// submit concurrently.
//
// # Basic Usage
//
//	session := tmuxcontrol.NewSession()
//	defer session.Close()
//
//	err := session.Start(ctx,
//	    tmuxcontrol.WithSocketPath("/tmp/work.sock"),
//	    tmuxcontrol.WithSessionName("work"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	info, err := session.Info().Wait(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(info.Content)
//
// Or let WithSession manage the lifecycle:
//
//	err := tmuxcontrol.WithSession(ctx, func(s tmuxcontrol.Session) error {
//	    out, err := s.Run("list-windows").Wait(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(out.Text)
//	    return nil
//	}, tmuxcontrol.WithSessionName("work"))
//
// Submitting never blocks on tmux. Wait blocks until tmux answers, ctx is
// done, or the session ends; a session that ends resolves every pending
// reply with the reason (ErrSessionClosed, ErrSessionBroken or ErrCancelled).
//
// # Logging
//
// For detailed operation tracking, use WithLogger:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	err := session.Start(ctx, tmuxcontrol.WithLogger(logger))
//
// # Error Handling
//
// Errors are typed:
//
//	_, err := session.Run("frobnicate").Wait(ctx)
//	if cmdErr, ok := errors.AsType[*tmuxcontrol.CommandError](err); ok {
//	    log.Printf("tmux rejected command #%d: %s", cmdErr.Seq, cmdErr.Output)
//	}
//	if errors.Is(err, tmuxcontrol.ErrSessionBroken) {
//	    log.Fatal("tmux went away")
//	}
//
// # Requirements
//
// tmux 1.8 or newer must be installed. Use WithTmuxPath to point at a
// specific binary.
package tmuxcontrol
