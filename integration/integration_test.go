//go:build integration

package integration

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	tmuxcontrol "github.com/wagiedev/tmux-control-go"
	"github.com/wagiedev/tmux-control-go/internal/tmux"
)

// skipIfTmuxNotInstalled skips the test if the error indicates tmux is not found.
func skipIfTmuxNotInstalled(t *testing.T, err error) {
	t.Helper()

	if _, ok := errors.AsType[*tmuxcontrol.TmuxNotFoundError](err); ok {
		t.Skip("tmux not installed")
	}
}

// tmuxPath returns the tmux binary or skips the test.
func tmuxPath(t *testing.T) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	path, err := tmux.NewDiscoverer(&tmux.Config{SkipVersionCheck: true}).Discover(ctx)
	if err != nil {
		skipIfTmuxNotInstalled(t, err)
		t.Fatalf("Discover failed: %v", err)
	}

	return path
}

// isolatedServer returns a socket path for a private tmux server that is
// killed when the test ends. Socket paths are kept short because unix
// sockets have a small path limit.
func isolatedServer(t *testing.T) string {
	t.Helper()

	binary := tmuxPath(t)

	dir, err := os.MkdirTemp("", "tmuxctl")
	if err != nil {
		t.Fatalf("MkdirTemp failed: %v", err)
	}

	socket := filepath.Join(dir, "s")

	t.Cleanup(func() {
		_ = exec.Command(binary, "-S", socket, "kill-server").Run()
		_ = os.RemoveAll(dir)
	})

	return socket
}

// sessionOptions starts tmux against the isolated server with no user
// configuration.
func sessionOptions(t *testing.T, socket string) []tmuxcontrol.Option {
	t.Helper()

	return []tmuxcontrol.Option{
		tmuxcontrol.WithTmuxPath(tmuxPath(t)),
		tmuxcontrol.WithSocketPath(socket),
		tmuxcontrol.WithConfigFile("/dev/null"),
		tmuxcontrol.WithSessionName("integration"),
		tmuxcontrol.WithCloseTimeout(5 * time.Second),
	}
}
