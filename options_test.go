package tmuxcontrol

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestApplyOptions(t *testing.T) {
	logger := slog.Default()
	stderr := func(string) {}

	options := applyOptions([]Option{
		WithLogger(logger),
		WithTmuxPath("/opt/tmux/bin/tmux"),
		WithSocketPath("/tmp/work.sock"),
		WithConfigFile("/dev/null"),
		WithSessionName("work"),
		WithEnv(map[string]string{"TERM": "xterm-256color"}),
		WithCwd("/tmp"),
		WithSkipVersionCheck(),
		WithMaxBufferSize(4096),
		WithStderr(stderr),
		WithCloseTimeout(5 * time.Second),
	})

	require.Same(t, logger, options.Logger)
	require.Equal(t, "/opt/tmux/bin/tmux", options.TmuxPath)
	require.Equal(t, "/tmp/work.sock", options.SocketPath)
	require.Equal(t, "/dev/null", options.ConfigFile)
	require.Equal(t, "work", options.SessionName)
	require.False(t, options.Attach)
	require.Equal(t, "xterm-256color", options.Env["TERM"])
	require.Equal(t, "/tmp", options.Cwd)
	require.True(t, options.SkipVersionCheck)
	require.NotNil(t, options.MaxBufferSize)
	require.Equal(t, 4096, *options.MaxBufferSize)
	require.NotNil(t, options.Stderr)
	require.Equal(t, 5*time.Second, options.EffectiveCloseTimeout())
}

func TestWithAttach(t *testing.T) {
	options := applyOptions([]Option{WithSessionName("new"), WithAttach("existing")})

	require.Equal(t, "existing", options.SessionName)
	require.True(t, options.Attach)
}

func TestApplyOptions_Defaults(t *testing.T) {
	options := applyOptions(nil)

	require.Nil(t, options.Logger)
	require.Nil(t, options.Transport)
	require.Equal(t, 2*time.Second, options.EffectiveCloseTimeout())
}
