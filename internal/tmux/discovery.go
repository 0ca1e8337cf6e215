package tmux

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/wagiedev/tmux-control-go/internal/errors"
)

const (
	// MinimumVersion is the first tmux release with control mode.
	MinimumVersion = "1.8"

	// VersionCheckTimeout is the timeout for the "tmux -V" check.
	VersionCheckTimeout = 2 * time.Second

	// SkipVersionCheckEnv disables the version check when set to any value.
	SkipVersionCheckEnv = "TMUXCONTROL_SKIP_VERSION_CHECK"
)

// versionPattern extracts major.minor from "tmux 3.3a", "tmux next-3.5" etc.
var versionPattern = regexp.MustCompile(`([0-9]+)\.([0-9]+)`)

// Config holds configuration for tmux discovery.
type Config struct {
	// TmuxPath is an explicit binary path that skips PATH search.
	TmuxPath string

	// SkipVersionCheck skips version validation during discovery.
	SkipVersionCheck bool

	// Logger is an optional logger for discovery operations.
	Logger *slog.Logger
}

// Discoverer locates and validates the tmux binary.
type Discoverer interface {
	// Discover returns the path to the tmux binary or a
	// *errors.TmuxNotFoundError.
	Discover(ctx context.Context) (string, error)
}

type discoverer struct {
	cfg *Config
	log *slog.Logger
}

var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new tmux discoverer with the given configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &discoverer{
		cfg: cfg,
		log: log.With("component", "tmux_discovery"),
	}
}

// Discover locates the tmux binary and validates its version.
func (d *discoverer) Discover(ctx context.Context) (string, error) {
	d.log.Debug("Discovering tmux binary")

	tmuxPath, err := d.findTmux()
	if err != nil {
		d.log.Error("Failed to find tmux", "error", err)

		return "", err
	}

	d.log.Debug("Found tmux binary", "tmux_path", tmuxPath)

	d.checkVersion(ctx, tmuxPath)

	return tmuxPath, nil
}

func (d *discoverer) findTmux() (string, error) {
	// An explicit path is used and only it
	if d.cfg.TmuxPath != "" {
		if _, err := os.Stat(d.cfg.TmuxPath); err == nil {
			return d.cfg.TmuxPath, nil
		}

		d.log.Debug("Explicit tmux path not found", "tmux_path", d.cfg.TmuxPath)

		return "", &errors.TmuxNotFoundError{SearchedPaths: []string{d.cfg.TmuxPath}}
	}

	searchedPaths := make([]string, 0, 5)

	if path, err := exec.LookPath("tmux"); err == nil {
		d.log.Debug("Found 'tmux' in PATH", "path", path)

		return path, nil
	}

	searchedPaths = append(searchedPaths, "$PATH")

	commonPaths := []string{
		"/usr/local/bin/tmux",
		"/usr/bin/tmux",
		"/opt/homebrew/bin/tmux",
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		commonPaths = append(commonPaths, filepath.Join(homeDir, ".local/bin/tmux"))
	}

	for _, path := range commonPaths {
		searchedPaths = append(searchedPaths, path)

		if _, err := os.Stat(path); err == nil {
			d.log.Debug("Found tmux at common path", "path", path)

			return path, nil
		}
	}

	d.log.Warn("tmux not found in any searched paths", "searched_paths", searchedPaths)

	return "", &errors.TmuxNotFoundError{SearchedPaths: searchedPaths}
}

// checkVersion logs a warning when tmux predates control mode.
// Probe failures are ignored.
func (d *discoverer) checkVersion(ctx context.Context, tmuxPath string) {
	if d.cfg.SkipVersionCheck {
		d.log.Debug("Skipping tmux version check (configured)")

		return
	}

	if os.Getenv(SkipVersionCheckEnv) != "" {
		d.log.Debug("Skipping tmux version check", "env", SkipVersionCheckEnv)

		return
	}

	ctx, cancel := context.WithTimeout(ctx, VersionCheckTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, tmuxPath, "-V").Output()
	if err != nil {
		d.log.Debug("tmux version check failed", "error", err)

		return
	}

	version, ok := ParseVersion(string(output))
	if !ok {
		// Development builds report "tmux master".
		d.log.Debug("Could not parse tmux version", "output", string(output))

		return
	}

	if compareVersions(version, MinimumVersion) < 0 {
		d.log.Warn("tmux version does not support control mode",
			"version", version,
			"minimum_required", MinimumVersion,
		)

		return
	}

	d.log.Debug("tmux version check passed", "version", version, "minimum", MinimumVersion)
}

// ParseVersion extracts "major.minor" from "tmux -V" output.
func ParseVersion(output string) (string, bool) {
	match := versionPattern.FindStringSubmatch(output)
	if match == nil {
		return "", false
	}

	return match[1] + "." + match[2], true
}

// compareVersions compares two major.minor versions.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func compareVersions(a, b string) int {
	am := versionPattern.FindStringSubmatch(a)
	bm := versionPattern.FindStringSubmatch(b)

	for i := 1; i <= 2; i++ {
		aNum, bNum := 0, 0

		if am != nil {
			aNum, _ = strconv.Atoi(am[i])
		}

		if bm != nil {
			bNum, _ = strconv.Atoi(bm[i])
		}

		if aNum < bNum {
			return -1
		}

		if aNum > bNum {
			return 1
		}
	}

	return 0
}
