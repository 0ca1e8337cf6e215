package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	tmuxcontrol "github.com/wagiedev/tmux-control-go"
)

// Config is the tmuxctl configuration. It is loaded from the file named by
// --config (or TMUXCTL_CONFIG) and then overridden by explicit flags.
type Config struct {
	// TmuxPath is the tmux binary. Empty searches PATH.
	TmuxPath string `yaml:"tmux_path"`

	// SocketPath selects the tmux server socket (tmux -S).
	SocketPath string `yaml:"socket_path"`

	// ConfigFile is passed to tmux -f.
	ConfigFile string `yaml:"config_file"`

	// Session is the tmux session to control.
	Session string `yaml:"session"`

	// Attach requires Session to exist instead of creating it.
	Attach bool `yaml:"attach"`

	// Timeout bounds a single command.
	Timeout time.Duration `yaml:"timeout"`

	// CloseTimeout bounds how long tmux gets to exit on shutdown.
	CloseTimeout time.Duration `yaml:"close_timeout"`

	// Env adds variables to the tmux environment.
	Env map[string]string `yaml:"env"`

	// Verbose enables debug logging on stderr.
	Verbose bool `yaml:"verbose"`
}

const defaultTimeout = 10 * time.Second

// ConfigEnv names the environment variable consulted when --config is not
// given.
const ConfigEnv = "TMUXCTL_CONFIG"

// LoadConfig reads a YAML config file. Unknown keys are rejected so typos
// do not silently fall back to defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// flagValues holds the raw flag targets before they are merged into a Config.
type flagValues struct {
	configPath   string
	tmuxPath     string
	socketPath   string
	configFile   string
	session      string
	attach       bool
	timeout      time.Duration
	closeTimeout time.Duration
	verbose      bool
}

func (f *flagValues) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.configPath, "config", "", "YAML config file (default $"+ConfigEnv+")")
	flagSet.StringVar(&f.tmuxPath, "tmux", "", "path to the tmux binary")
	flagSet.StringVarP(&f.socketPath, "socket", "S", "", "tmux server socket path")
	flagSet.StringVarP(&f.configFile, "config-file", "f", "", "tmux configuration file")
	flagSet.StringVarP(&f.session, "session", "s", "", "tmux session to control")
	flagSet.BoolVar(&f.attach, "attach", false, "attach to an existing session instead of creating it")
	flagSet.DurationVar(&f.timeout, "timeout", defaultTimeout, "timeout for each command")
	flagSet.DurationVar(&f.closeTimeout, "close-timeout", tmuxcontrol.DefaultCloseTimeout, "how long tmux gets to exit on shutdown")
	flagSet.BoolVarP(&f.verbose, "verbose", "v", false, "log protocol activity to stderr")
}

// resolveConfig loads the config file, if any, and applies every flag the
// user set explicitly on top of it.
func resolveConfig(flagSet *pflag.FlagSet, f *flagValues) (*Config, error) {
	path := f.configPath
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}

	cfg := &Config{}

	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	overrides := []struct {
		flag  string
		apply func()
	}{
		{"tmux", func() { cfg.TmuxPath = f.tmuxPath }},
		{"socket", func() { cfg.SocketPath = f.socketPath }},
		{"config-file", func() { cfg.ConfigFile = f.configFile }},
		{"session", func() { cfg.Session = f.session }},
		{"attach", func() { cfg.Attach = f.attach }},
		{"timeout", func() { cfg.Timeout = f.timeout }},
		{"close-timeout", func() { cfg.CloseTimeout = f.closeTimeout }},
		{"verbose", func() { cfg.Verbose = f.verbose }},
	}

	for _, override := range overrides {
		if flagSet.Changed(override.flag) {
			override.apply()
		}
	}

	if cfg.Attach && cfg.Session == "" {
		return nil, errors.New("--attach requires --session")
	}

	return cfg, nil
}

// Options converts the config into session options.
func (c *Config) Options() []tmuxcontrol.Option {
	var opts []tmuxcontrol.Option

	if c.TmuxPath != "" {
		opts = append(opts, tmuxcontrol.WithTmuxPath(c.TmuxPath))
	}

	if c.SocketPath != "" {
		opts = append(opts, tmuxcontrol.WithSocketPath(c.SocketPath))
	}

	if c.ConfigFile != "" {
		opts = append(opts, tmuxcontrol.WithConfigFile(c.ConfigFile))
	}

	switch {
	case c.Attach:
		opts = append(opts, tmuxcontrol.WithAttach(c.Session))
	case c.Session != "":
		opts = append(opts, tmuxcontrol.WithSessionName(c.Session))
	}

	if len(c.Env) > 0 {
		opts = append(opts, tmuxcontrol.WithEnv(c.Env))
	}

	if c.CloseTimeout > 0 {
		opts = append(opts, tmuxcontrol.WithCloseTimeout(c.CloseTimeout))
	}

	return opts
}
