package client

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagiedev/tmux-control-go/internal/command"
	"github.com/wagiedev/tmux-control-go/internal/config"
	"github.com/wagiedev/tmux-control-go/internal/errors"
	"github.com/wagiedev/tmux-control-go/internal/protocol"
)

// mockTransport implements config.Transport for testing.
// It answers every command with a well-formed output block, like tmux.
type mockTransport struct {
	mu      sync.Mutex
	started bool
	closed  bool
	n       uint64
	sent    []string
	lines   chan string
	errors  chan error

	// respond builds the output for command n; nil means no answer.
	respond func(n uint64, line string) []string
	// sendErr fails every SendLine when set.
	sendErr error
	// ignoreEndInput keeps the stream open after stdin closes, like a hung
	// tmux.
	ignoreEndInput bool
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		lines:  make(chan string, 1024),
		errors: make(chan error, 2),
		respond: func(n uint64, line string) []string {
			return []string{
				fmt.Sprintf("%%begin 1700000000 %d 1", n),
				line + " output",
				fmt.Sprintf("%%end 1700000000 %d 1", n),
			}
		},
	}
}

func (m *mockTransport) Start(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.started = true

	return nil
}

func (m *mockTransport) ReadLines(_ context.Context) (<-chan string, <-chan error) {
	return m.lines, m.errors
}

func (m *mockTransport) SendLine(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errors.ErrStdinClosed
	}

	if m.sendErr != nil {
		return m.sendErr
	}

	m.n++
	line := string(data)
	m.sent = append(m.sent, line)

	if m.respond != nil {
		for _, out := range m.respond(m.n, line) {
			m.lines <- out
		}
	}

	return nil
}

func (m *mockTransport) emit(lines ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, line := range lines {
		m.lines <- line
	}
}

// exit ends the output stream, optionally reporting err first.
func (m *mockTransport) exit(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	if err != nil {
		m.errors <- err
	}

	m.closeLocked()
}

// closeLocked closes errors before lines, as the subprocess transport does.
func (m *mockTransport) closeLocked() {
	if m.closed {
		return
	}

	m.closed = true
	close(m.errors)
	close(m.lines)
}

func (m *mockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeLocked()

	return nil
}

func (m *mockTransport) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.started && !m.closed
}

func (m *mockTransport) EndInput() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.ignoreEndInput {
		m.closeLocked()
	}

	return nil
}

func (m *mockTransport) sentLines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.sent...)
}

func startClient(t *testing.T, transport *mockTransport, opts ...func(*config.Options)) *Client {
	t.Helper()

	options := &config.Options{Transport: transport, CloseTimeout: time.Second}
	for _, opt := range opts {
		opt(options)
	}

	client := New()
	require.NoError(t, client.Start(context.Background(), options))

	t.Cleanup(func() { _ = client.Close() })

	return client
}

func wait(t *testing.T, reply *protocol.Reply) (command.Response, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := reply.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "reply never resolved")

	return resp, err
}

func waitDone(t *testing.T, client *Client) {
	t.Helper()

	select {
	case <-client.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end")
	}
}

func TestClient_Lifecycle(t *testing.T) {
	t.Run("submit before start", func(t *testing.T) {
		_, err := wait(t, New().Submit(command.NewInfo()))
		require.ErrorIs(t, err, errors.ErrSessionNotStarted)
	})

	t.Run("start twice", func(t *testing.T) {
		client := startClient(t, newMockTransport())

		err := client.Start(context.Background(), &config.Options{Transport: newMockTransport()})
		require.ErrorIs(t, err, errors.ErrSessionAlreadyStarted)
	})

	t.Run("start after close", func(t *testing.T) {
		client := New()
		require.NoError(t, client.Close())

		err := client.Start(context.Background(), &config.Options{Transport: newMockTransport()})
		require.ErrorIs(t, err, errors.ErrSessionClosed)

		waitDone(t, client)
	})

	t.Run("transport start failure", func(t *testing.T) {
		client := New()

		err := client.Start(context.Background(), &config.Options{TmuxPath: "/nonexistent/tmux"})
		_, ok := stderrors.AsType[*errors.TmuxNotFoundError](err)
		require.True(t, ok)
	})

	t.Run("nil command", func(t *testing.T) {
		client := startClient(t, newMockTransport())

		_, err := wait(t, client.Submit(nil))
		require.ErrorIs(t, err, command.ErrInvalidCommand)
	})

	t.Run("session id", func(t *testing.T) {
		a, b := New(), New()
		require.Len(t, a.ID(), 26)
		require.NotEqual(t, a.ID(), b.ID())
	})
}

func TestClient_SubmitInfo(t *testing.T) {
	transport := newMockTransport()
	client := startClient(t, transport)

	reply := client.Submit(command.NewInfo())

	resp, err := wait(t, reply)
	require.NoError(t, err)
	require.Equal(t, "info output", resp.(*command.InfoResponse).Content)
	require.Equal(t, uint64(1), reply.Seq())
	require.Equal(t, []string{"info"}, transport.sentLines())
}

func TestClient_RemainsUsableAfterStartContextCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := New()
	require.NoError(t, client.Start(ctx, &config.Options{Transport: newMockTransport()}))

	t.Cleanup(func() { _ = client.Close() })

	<-ctx.Done()

	_, err := wait(t, client.Submit(command.NewInfo()))
	require.NoError(t, err)
	require.NoError(t, client.Err())
}

func TestClient_ConcurrentSubmittersNoCrossTalk(t *testing.T) {
	client := startClient(t, newMockTransport())

	const n = 50

	var wg sync.WaitGroup

	for i := range n {
		wg.Go(func() {
			format := fmt.Sprintf("#{pane_id}-%d", i)

			cmd, err := command.NewDisplayMessage(format)
			assert.NoError(t, err)

			resp, err := wait(t, client.Submit(cmd))
			assert.NoError(t, err)
			assert.Equal(t, "display-message -p '"+format+"' output", resp.(*command.DisplayMessageResponse).Text)
		})
	}

	wg.Wait()
}

func TestClient_StreamEndCancelsPendingAndFutureReplies(t *testing.T) {
	transport := newMockTransport()
	transport.respond = nil // tmux never answers

	client := startClient(t, transport)

	pending := client.Submit(command.NewInfo())

	require.Eventually(t, func() bool {
		return len(transport.sentLines()) == 1
	}, time.Second, time.Millisecond)

	transport.exit(nil)

	_, err := wait(t, pending)
	require.ErrorIs(t, err, errors.ErrCancelled)

	waitDone(t, client)
	require.ErrorIs(t, client.Err(), errors.ErrCancelled)

	_, err = wait(t, client.Submit(command.NewInfo()))
	require.ErrorIs(t, err, errors.ErrCancelled)
}

func TestClient_UnterminatedBlockCancels(t *testing.T) {
	transport := newMockTransport()
	transport.respond = func(n uint64, line string) []string {
		return []string{fmt.Sprintf("%%begin 0 %d 0", n), "partial output"}
	}

	client := startClient(t, transport)

	reply := client.Submit(command.NewInfo())

	require.Eventually(t, func() bool {
		return len(transport.sentLines()) == 1
	}, time.Second, time.Millisecond)

	transport.exit(nil)

	_, err := wait(t, reply)
	require.ErrorIs(t, err, errors.ErrCancelled)
}

func TestClient_ProcessErrorReachesPendingReplies(t *testing.T) {
	transport := newMockTransport()
	transport.respond = nil

	client := startClient(t, transport)

	reply := client.Submit(command.NewInfo())

	require.Eventually(t, func() bool {
		return len(transport.sentLines()) == 1
	}, time.Second, time.Millisecond)

	transport.exit(&errors.ProcessError{ExitCode: 1, Stderr: "server exited unexpectedly"})

	_, err := wait(t, reply)
	require.ErrorIs(t, err, errors.ErrCancelled)

	procErr, ok := stderrors.AsType[*errors.ProcessError](err)
	require.True(t, ok)
	require.Equal(t, "server exited unexpectedly", procErr.Stderr)

	waitDone(t, client)

	closeErr := client.Close()
	_, ok = stderrors.AsType[*errors.ProcessError](closeErr)
	require.True(t, ok)
}

func TestClient_TransmissionFailureBreaksSession(t *testing.T) {
	transport := newMockTransport()
	transport.sendErr = stderrors.New("broken pipe")

	client := startClient(t, transport)

	_, err := wait(t, client.Submit(command.NewInfo()))
	require.ErrorIs(t, err, errors.ErrSessionBroken)

	transErr, ok := stderrors.AsType[*errors.TransmissionError](err)
	require.True(t, ok)
	require.Equal(t, uint64(1), transErr.Seq)

	waitDone(t, client)
	require.ErrorIs(t, client.Err(), errors.ErrSessionBroken)
	require.False(t, transport.IsReady(), "transport is torn down")

	_, err = wait(t, client.Submit(command.NewInfo()))
	require.ErrorIs(t, err, errors.ErrSessionBroken)
}

func TestClient_CloseFlushesQueuedCommands(t *testing.T) {
	transport := newMockTransport()

	client := New()
	require.NoError(t, client.Start(context.Background(), &config.Options{Transport: transport}))

	replies := make([]*protocol.Reply, 0, 10)
	for range 10 {
		replies = append(replies, client.Submit(command.NewInfo()))
	}

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	for _, reply := range replies {
		resp, err := wait(t, reply)
		require.NoError(t, err)
		require.Equal(t, "info output", resp.(*command.InfoResponse).Content)
	}

	require.ErrorIs(t, client.Err(), errors.ErrSessionClosed)

	_, err := wait(t, client.Submit(command.NewInfo()))
	require.ErrorIs(t, err, errors.ErrSessionClosed)
}

func TestClient_CloseKillsHungTmux(t *testing.T) {
	transport := newMockTransport()
	transport.respond = nil
	transport.ignoreEndInput = true

	client := New()
	require.NoError(t, client.Start(context.Background(), &config.Options{
		Transport:    transport,
		CloseTimeout: 50 * time.Millisecond,
	}))

	reply := client.Submit(command.NewInfo())

	require.Eventually(t, func() bool {
		return len(transport.sentLines()) == 1
	}, time.Second, time.Millisecond)

	start := time.Now()
	require.NoError(t, client.Close())
	require.Less(t, time.Since(start), time.Second)

	_, err := wait(t, reply)
	require.ErrorIs(t, err, errors.ErrSessionClosed)
	require.False(t, transport.IsReady())
}

func TestClient_CommandErrorKeepsResponse(t *testing.T) {
	transport := newMockTransport()
	transport.respond = func(n uint64, _ string) []string {
		return []string{
			fmt.Sprintf("%%begin 0 %d 1", n),
			"unknown command: frobnicate",
			fmt.Sprintf("%%error 0 %d 1", n),
		}
	}

	client := startClient(t, transport)

	raw, err := command.NewRaw("frobnicate")
	require.NoError(t, err)

	resp, err := wait(t, client.Submit(raw))

	cmdErr, ok := stderrors.AsType[*errors.CommandError](err)
	require.True(t, ok)
	require.Equal(t, "unknown command: frobnicate", cmdErr.Output)
	require.Equal(t, "unknown command: frobnicate", resp.(*command.TextResponse).Text)

	// A failed command does not end the session.
	require.NoError(t, client.Err())
}

// TestClient_ServerNumberedBlocksResolve covers a tmux server whose block
// numbers do not follow the session's: every reply still resolves, carrying
// the block text and a CorrelationError.
func TestClient_ServerNumberedBlocksResolve(t *testing.T) {
	var (
		mu       sync.Mutex
		reported []error
	)

	transport := newMockTransport()
	transport.respond = func(n uint64, line string) []string {
		return []string{
			fmt.Sprintf("%%begin 1700000000 %d 1", n+265),
			line + " output",
			fmt.Sprintf("%%end 1700000000 %d 1", n+265),
		}
	}

	client := startClient(t, transport, func(o *config.Options) {
		o.OnProtocolError = func(err error) {
			mu.Lock()
			reported = append(reported, err)
			mu.Unlock()
		}
	})

	// tmux answers its startup command before anything is submitted.
	transport.emit("%begin 1700000000 260 0", "%end 1700000000 260 0")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(reported) == 1
	}, time.Second, time.Millisecond)

	replies := make([]*protocol.Reply, 3)

	for i := range replies {
		format, err := command.NewDisplayMessage(fmt.Sprintf("#{n%d}", i))
		require.NoError(t, err)

		replies[i] = client.Submit(format)
	}

	for i, reply := range replies {
		resp, err := wait(t, reply)

		corrErr, ok := stderrors.AsType[*errors.CorrelationError](err)
		require.True(t, ok, "reply %d: %v", i, err)
		require.Equal(t, uint64(i+266), corrErr.Seq)
		require.Equal(t, fmt.Sprintf("display-message -p '#{n%d}' output", i),
			resp.(*command.DisplayMessageResponse).Text)
	}

	mu.Lock()
	defer mu.Unlock()

	require.Len(t, reported, 4)
}

func TestClient_ProtocolErrorHandler(t *testing.T) {
	var (
		mu       sync.Mutex
		reported []error
	)

	transport := newMockTransport()
	client := startClient(t, transport, func(o *config.Options) {
		o.OnProtocolError = func(err error) {
			mu.Lock()
			reported = append(reported, err)
			mu.Unlock()
		}
	})

	transport.emit("%begin 0 99 0", "stray", "%end 0 99 0")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(reported) == 1
	}, time.Second, time.Millisecond)

	mu.Lock()
	corrErr, ok := stderrors.AsType[*errors.CorrelationError](reported[0])
	mu.Unlock()

	require.True(t, ok)
	require.Equal(t, uint64(99), corrErr.Seq)

	// The session keeps working.
	_, err := wait(t, client.Submit(command.NewInfo()))
	require.NoError(t, err)
}

func TestClient_FakeTmuxProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake tmux requires /bin/sh")
	}

	tmuxPath := filepath.Join(t.TempDir(), "tmux")
	script := `#!/bin/sh
n=0
while IFS= read -r line; do
  n=$((n+1))
  printf '%%session-changed $1 main\n'
  printf '%%begin 0 %d 0\n%s output\n%%end 0 %d 0\n' "$n" "$line" "$n"
done
`
	require.NoError(t, os.WriteFile(tmuxPath, []byte(script), 0o755))

	client := New()
	require.NoError(t, client.Start(context.Background(), &config.Options{
		TmuxPath:         tmuxPath,
		SkipVersionCheck: true,
	}))

	info := client.Submit(command.NewInfo())
	raw, err := command.NewRaw("list-windows")
	require.NoError(t, err)

	list := client.Submit(raw)

	resp, err := wait(t, info)
	require.NoError(t, err)
	require.Equal(t, "info output", resp.(*command.InfoResponse).Content)

	resp, err = wait(t, list)
	require.NoError(t, err)
	require.Equal(t, "list-windows output", resp.(*command.TextResponse).Text)

	require.NoError(t, client.Close())
	waitDone(t, client)
	require.ErrorIs(t, client.Err(), errors.ErrSessionClosed)
}
