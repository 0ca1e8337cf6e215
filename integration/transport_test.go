//go:build integration

package integration

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	tmuxcontrol "github.com/wagiedev/tmux-control-go"
	"github.com/wagiedev/tmux-control-go/internal/config"
	"github.com/wagiedev/tmux-control-go/internal/subprocess"
)

// TestTransport_OutputBlock sends a command to a real tmux and checks that
// its output arrives framed by %begin and %end lines.
func TestTransport_OutputBlock(t *testing.T) {
	socket := isolatedServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	transport := subprocess.NewTmuxTransport(tmuxcontrol.NopLogger(), &config.Options{
		TmuxPath:    tmuxPath(t),
		SocketPath:  socket,
		ConfigFile:  "/dev/null",
		SessionName: "transport",
	})
	require.NoError(t, transport.Start(ctx))

	defer func() { _ = transport.Close() }()

	lines, _ := transport.ReadLines(ctx)

	require.NoError(t, transport.SendLine(ctx, []byte("display-message -p integration-marker")))

	var (
		inBlock bool
		found   bool
	)

	for !found {
		select {
		case line, ok := <-lines:
			require.True(t, ok, "tmux output ended before the marker block")

			switch {
			case strings.HasPrefix(line, "%begin"):
				inBlock = true
			case strings.HasPrefix(line, "%end"), strings.HasPrefix(line, "%error"):
				inBlock = false
			case line == "integration-marker":
				require.True(t, inBlock, "marker outside an output block")

				found = true
			}
		case <-ctx.Done():
			t.Fatal("timed out waiting for the marker block")
		}
	}

	require.NoError(t, transport.EndInput())
}
