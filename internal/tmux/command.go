package tmux

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/wagiedev/tmux-control-go/internal/config"
)

// scrubbedEnv names variables that make tmux believe it runs nested inside
// another session.
var scrubbedEnv = []string{"TMUX", "TMUX_PANE"}

// BuildArgs constructs the tmux arguments for a control-mode client.
// Server options come before -C; the session command follows it.
func BuildArgs(options *config.Options) []string {
	args := make([]string, 0, 8)

	if options.SocketPath != "" {
		args = append(args, "-S", options.SocketPath)
	}

	if options.ConfigFile != "" {
		args = append(args, "-f", options.ConfigFile)
	}

	args = append(args, "-C")

	switch {
	case options.Attach && options.SessionName != "":
		args = append(args, "attach-session", "-t", options.SessionName)
	case options.SessionName != "":
		args = append(args, "new-session", "-A", "-s", options.SessionName)
	default:
		args = append(args, "new-session")
	}

	return args
}

// BuildEnvironment constructs the environment for the tmux process: the
// current environment without TMUX and TMUX_PANE, plus options.Env.
func BuildEnvironment(options *config.Options) []string {
	env := make([]string, 0, len(os.Environ())+len(options.Env))

	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if slices.Contains(scrubbedEnv, key) {
			continue
		}

		env = append(env, kv)
	}

	// Sorted so the process sees a deterministic environment.
	for _, key := range slices.Sorted(maps.Keys(options.Env)) {
		if slices.Contains(scrubbedEnv, key) {
			continue
		}

		env = append(env, fmt.Sprintf("%s=%s", key, options.Env[key]))
	}

	return env
}
