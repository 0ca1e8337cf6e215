package subprocess

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/wagiedev/tmux-control-go/internal/config"
	"github.com/wagiedev/tmux-control-go/internal/errors"
	"github.com/wagiedev/tmux-control-go/internal/tmux"
)

const (
	// defaultMaxLineSize is the maximum size of a single tmux output line.
	defaultMaxLineSize = 1024 * 1024 // 1MB
	// maxStderrBufferSize caps the stderr kept for ProcessError. The callback
	// still receives every line.
	maxStderrBufferSize = 1024 * 1024 // 1MB
)

// TmuxTransport implements Transport by spawning a tmux control-mode client.
type TmuxTransport struct {
	log            *slog.Logger
	options        *config.Options
	tmuxPath       string
	args           []string
	cmd            *exec.Cmd
	stdin          io.WriteCloser
	stdout         io.ReadCloser
	stderr         io.ReadCloser
	stderrCallback func(string)
	mu             sync.Mutex // Protects stdin writes
	closing        bool       // Whether Close() has been called (intentional shutdown)
	stdinClosed    bool       // Whether stdin was closed
}

var _ config.Transport = (*TmuxTransport)(nil)

// NewTmuxTransport creates a transport for the given options.
//
// Binary discovery is deferred to Start(), which searches for tmux in the
// following order:
//  1. The explicit path in options.TmuxPath (if provided)
//  2. The system PATH
//  3. Common installation directories
//
// Start() returns TmuxNotFoundError if the binary cannot be located.
func NewTmuxTransport(log *slog.Logger, options *config.Options) *TmuxTransport {
	return &TmuxTransport{
		log:            log.With("component", "tmux_transport"),
		options:        options,
		stderrCallback: options.Stderr,
	}
}

// Start discovers tmux and spawns it in control mode.
//
// ctx bounds discovery only. The process lives until stdin is closed or
// Close is called.
//
// Returns TmuxNotFoundError if the binary cannot be located,
// or ConnectionError if the process fails to start.
func (t *TmuxTransport) Start(ctx context.Context) error {
	t.log.Info("Starting tmux control-mode client")

	discoverer := tmux.NewDiscoverer(&tmux.Config{
		TmuxPath:         t.options.TmuxPath,
		SkipVersionCheck: t.options.SkipVersionCheck,
		Logger:           t.log,
	})

	tmuxPath, err := discoverer.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discover tmux: %w", err)
	}

	t.tmuxPath = tmuxPath
	t.args = tmux.BuildArgs(t.options)
	t.log.Debug("Built command arguments", "args", t.args)

	//nolint:gosec // G204: the binary and its arguments come from options
	cmd := exec.Command(t.tmuxPath, t.args...)
	cmd.Env = tmux.BuildEnvironment(t.options)

	if t.options.Cwd != "" {
		if _, err := os.Stat(t.options.Cwd); err != nil {
			return &errors.ConnectionError{Err: fmt.Errorf("working directory: %w", err)}
		}

		cmd.Dir = t.options.Cwd
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &errors.ConnectionError{Err: fmt.Errorf("stdin pipe: %w", err)}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &errors.ConnectionError{Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &errors.ConnectionError{Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		t.log.Error("Failed to start tmux", "error", err)

		return &errors.ConnectionError{Err: fmt.Errorf("start process: %w", err)}
	}

	t.mu.Lock()
	t.cmd = cmd
	t.stdin = stdin
	t.stdout = stdout
	t.stderr = stderr
	t.mu.Unlock()

	t.log.Info("tmux started", "pid", cmd.Process.Pid, "tmux_path", t.tmuxPath)

	return nil
}

// ReadLines streams tmux stdout line by line.
//
// The goroutine behind it exits when tmux closes stdout or ctx is done. It
// then waits for the process; an unexpected non-zero exit is sent on the
// error channel as *errors.ProcessError. Both channels are closed last.
func (t *TmuxTransport) ReadLines(ctx context.Context) (<-chan string, <-chan error) {
	lines := make(chan string)
	errs := make(chan error, 2)

	t.mu.Lock()
	started := t.cmd != nil
	t.mu.Unlock()

	if !started {
		errs <- errors.ErrTransportNotConnected

		close(lines)
		close(errs)

		return lines, errs
	}

	var (
		stderrWg     sync.WaitGroup
		stderrMu     sync.Mutex
		stderrBuffer strings.Builder
	)

	// stderr must be fully read before cmd.Wait.
	stderrWg.Go(func() {
		scanner := bufio.NewScanner(t.stderr)
		for scanner.Scan() {
			line := scanner.Text()

			stderrMu.Lock()
			appendStderr(&stderrBuffer, line)
			stderrMu.Unlock()

			if t.stderrCallback != nil {
				t.stderrCallback(line)
			}
		}

		if err := scanner.Err(); err != nil {
			t.log.Debug("Stderr scanner error", "error", err)
		}
	})

	go func() {
		defer close(lines)
		defer close(errs)
		defer t.log.Debug("ReadLines goroutine stopped")

		if err := scanLines(ctx, t.stdout, t.maxLineSize(), lines); err != nil {
			if !stderrors.Is(err, context.Canceled) && !stderrors.Is(err, context.DeadlineExceeded) {
				t.log.Error("Scanner error while reading tmux output", "error", err)
			}

			errs <- err
		}

		stderrWg.Wait()

		t.log.Debug("Waiting for tmux to exit")

		if err := t.cmd.Wait(); err != nil {
			t.mu.Lock()
			isClosing := t.closing
			t.mu.Unlock()

			if isClosing {
				t.log.Debug("tmux terminated during shutdown")

				return
			}

			stderrMu.Lock()
			stderrOutput := strings.TrimSpace(stderrBuffer.String())
			stderrMu.Unlock()

			exitCode := -1
			if exitErr, ok := stderrors.AsType[*exec.ExitError](err); ok {
				exitCode = exitErr.ExitCode()
			}

			t.log.Error("tmux exited with error", "exit_code", exitCode, "stderr", stderrOutput)

			errs <- &errors.ProcessError{
				ExitCode: exitCode,
				Stderr:   stderrOutput,
				Err:      err,
			}

			return
		}

		t.log.Info("tmux exited")
	}()

	return lines, errs
}

func (t *TmuxTransport) maxLineSize() int {
	if t.options != nil && t.options.MaxBufferSize != nil && *t.options.MaxBufferSize > 0 {
		return *t.options.MaxBufferSize
	}

	return defaultMaxLineSize
}

// scanLines sends each line of r to out until EOF, a read error, or ctx is
// done. A trailing carriage return is kept; the reader strips it.
func scanLines(ctx context.Context, r io.Reader, maxLineSize int, out chan<- string) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(64*1024, maxLineSize)), maxLineSize)

	for scanner.Scan() {
		select {
		case out <- scanner.Text():
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan tmux output: %w", err)
	}

	return nil
}

func appendStderr(buf *strings.Builder, line string) {
	if buf.Len() >= maxStderrBufferSize {
		return
	}

	if buf.Len() > 0 {
		buf.WriteString("\n")
	}

	buf.WriteString(line)
}

// SendLine writes one command line to tmux stdin.
//
// A newline is appended when missing. This method is safe for concurrent
// use and respects context cancellation even during blocking writes.
//
// If ctx is cancelled during a blocked write, stdin is closed to unblock
// it. Subsequent calls return ErrStdinClosed.
func (t *TmuxTransport) SendLine(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stdinClosed {
		return errors.ErrStdinClosed
	}

	if t.stdin == nil {
		return errors.ErrTransportNotConnected
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// Copy so the caller's backing array is never mutated.
	if len(data) == 0 || data[len(data)-1] != '\n' {
		framed := make([]byte, len(data)+1)
		copy(framed, data)
		framed[len(data)] = '\n'
		data = framed
	}

	done := make(chan error, 1)

	go func() {
		_, err := t.stdin.Write(data)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("write to stdin: %w", err)
		}

		return nil

	case <-ctx.Done():
		t.log.Debug("Context cancelled during write, closing stdin")

		_ = t.stdin.Close()
		t.stdinClosed = true

		select {
		case <-done:
		case <-time.After(1 * time.Second):
			t.log.Warn("Write goroutine did not exit after stdin close, potential leak")
		}

		return ctx.Err()
	}
}

// IsReady reports whether tmux is running and stdin is open.
func (t *TmuxTransport) IsReady() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.cmd != nil && t.cmd.Process != nil && t.stdin != nil && !t.stdinClosed
}

// EndInput closes stdin. tmux treats this as a detach and exits once it has
// answered the commands already written.
func (t *TmuxTransport) EndInput() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stdin == nil || t.stdinClosed {
		return nil
	}

	t.log.Debug("Closing stdin pipe")

	t.stdinClosed = true

	return t.stdin.Close()
}

// Close kills the tmux process. It's safe to call Close multiple times or
// on a process that already exited.
func (t *TmuxTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closing = true
	t.stdinClosed = true

	if t.cmd != nil && t.cmd.Process != nil {
		t.log.Debug("Killing tmux", "pid", t.cmd.Process.Pid)

		if err := t.cmd.Process.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("kill tmux (pid %d): %w", t.cmd.Process.Pid, err)
		}
	}

	return nil
}
