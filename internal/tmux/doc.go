// Package tmux provides tmux binary discovery, version validation, and
// command building for control-mode sessions.
//
// # Discovery
//
// The Discoverer interface locates and validates the tmux binary:
//
//	discoverer := tmux.NewDiscoverer(&tmux.Config{
//	    TmuxPath: "",           // Optional explicit path
//	    Logger:   slog.Default(),
//	})
//	tmuxPath, err := discoverer.Discover(ctx)
//
// Discovery searches in the following order:
//  1. Explicit path in Config.TmuxPath (if provided)
//  2. System PATH
//  3. Common installation directories (/usr/local/bin, /usr/bin,
//     /opt/homebrew/bin, ~/.local/bin)
//
// # Version Validation
//
// Control mode appeared in tmux 1.8. During discovery the output of
// "tmux -V" is checked against MinimumVersion and a warning is logged for
// older servers. Checking can be skipped via Config.SkipVersionCheck or the
// TMUXCONTROL_SKIP_VERSION_CHECK environment variable.
//
// # Command Building
//
//	args := tmux.BuildArgs(options)
//	env := tmux.BuildEnvironment(options)
package tmux
