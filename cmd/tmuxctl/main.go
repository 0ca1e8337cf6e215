// tmuxctl sends commands to a tmux server over a control-mode connection.
//
// Each invocation starts "tmux -C", runs one subcommand and detaches:
//
//	tmuxctl -S /tmp/work.sock info
//	tmuxctl -s work run list-windows -a
//	tmuxctl sessions
//	tmuxctl display '#{session_name}:#{window_index}'
//
// "tmuxctl mcp" instead keeps the connection open and serves the session
// as MCP tools on stdin/stdout until the client disconnects.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/pflag"

	tmuxcontrol "github.com/wagiedev/tmux-control-go"
	tmuxmcp "github.com/wagiedev/tmux-control-go/internal/mcp"
)

const version = "0.1.0"

// usageError marks errors caused by the command line rather than tmux.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "tmuxctl: %v\n", err)

		if _, ok := errors.AsType[*usageError](err); ok {
			os.Exit(2)
		}

		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var flags flagValues

	flagSet := pflag.NewFlagSet("tmuxctl", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	flags.register(flagSet)
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.Usage = func() { printUsage(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}

		return &usageError{msg: err.Error()}
	}

	if help, _ := flagSet.GetBool("help"); help {
		printUsage(stdout, flagSet)

		return nil
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printUsage(stderr, flagSet)

		return usagef("missing command")
	}

	cfg, err := resolveConfig(flagSet, &flags)
	if err != nil {
		return &usageError{msg: err.Error()}
	}

	name, cmdArgs := rest[0], rest[1:]

	var action func(context.Context, tmuxcontrol.Session) error

	switch name {
	case "version":
		fmt.Fprintf(stdout, "tmuxctl %s\n", version)

		return nil
	case "info":
		action = func(ctx context.Context, s tmuxcontrol.Session) error {
			return runInfo(ctx, s, stdout)
		}
	case "run":
		if len(cmdArgs) == 0 {
			return usagef("run: missing tmux command")
		}

		line := strings.Join(cmdArgs, " ")
		action = func(ctx context.Context, s tmuxcontrol.Session) error {
			return runRaw(ctx, s, line, stdout)
		}
	case "sessions":
		action = func(ctx context.Context, s tmuxcontrol.Session) error {
			return runSessions(ctx, s, stdout)
		}
	case "display":
		if len(cmdArgs) != 1 {
			return usagef("display: expected one format argument")
		}

		action = func(ctx context.Context, s tmuxcontrol.Session) error {
			return runDisplay(ctx, s, cmdArgs[0], stdout)
		}
	case "mcp":
		return serveMCP(ctx, cfg, newLogger(cfg, stderr))
	default:
		return usagef("unknown command %q", name)
	}

	logger := newLogger(cfg, stderr)

	return tmuxcontrol.WithSession(ctx, func(s tmuxcontrol.Session) error {
		cmdCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()

		return action(cmdCtx, s)
	}, sessionOptions(cfg, logger)...)
}

func newLogger(cfg *Config, stderr io.Writer) *slog.Logger {
	if !cfg.Verbose {
		return tmuxcontrol.NopLogger()
	}

	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func sessionOptions(cfg *Config, logger *slog.Logger) []tmuxcontrol.Option {
	return append(cfg.Options(),
		tmuxcontrol.WithLogger(logger),
		tmuxcontrol.WithStderr(func(line string) {
			logger.Warn("tmux stderr", "line", line)
		}),
		tmuxcontrol.WithProtocolErrorHandler(func(err error) {
			logger.Warn("Protocol error", "error", err)
		}),
	)
}

func runInfo(ctx context.Context, s tmuxcontrol.Session, stdout io.Writer) error {
	info, err := s.Info().Wait(ctx)
	if err != nil {
		return err
	}

	return writeText(stdout, info.Content)
}

func runRaw(ctx context.Context, s tmuxcontrol.Session, line string, stdout io.Writer) error {
	out, err := s.Run(line).Wait(ctx)
	if cmdErr, ok := errors.AsType[*tmuxcontrol.CommandError](err); ok {
		return fmt.Errorf("%s: %s", line, cmdErr.Output)
	}

	if err != nil {
		return err
	}

	return writeText(stdout, out.Text)
}

func runSessions(ctx context.Context, s tmuxcontrol.Session, stdout io.Writer) error {
	resp, err := s.ListSessions().Wait(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tWINDOWS\tATTACHED")

	for _, session := range resp.Sessions {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", session.ID, session.Name, session.Windows, session.Attached)
	}

	return tw.Flush()
}

func runDisplay(ctx context.Context, s tmuxcontrol.Session, format string, stdout io.Writer) error {
	resp, err := s.DisplayMessage(format).Wait(ctx)
	if err != nil {
		return err
	}

	return writeText(stdout, resp.Text)
}

// serveMCP exposes the session as MCP tools on stdio. It returns when the
// MCP client disconnects, ctx is cancelled, or tmux exits.
func serveMCP(ctx context.Context, cfg *Config, logger *slog.Logger) error {
	return tmuxcontrol.WithSession(ctx, func(s tmuxcontrol.Session) error {
		serveCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		go func() {
			select {
			case <-s.Done():
				logger.Warn("tmux session ended, stopping MCP server", "error", s.Err())
				cancel()
			case <-serveCtx.Done():
			}
		}()

		server := tmuxmcp.NewServer("tmuxctl", version)
		tmuxmcp.RegisterSessionTools(server, s)

		err := server.Serve(serveCtx, &mcp.StdioTransport{})
		if errors.Is(err, context.Canceled) {
			return nil
		}

		return err
	}, sessionOptions(cfg, logger)...)
}

func writeText(w io.Writer, text string) error {
	if text == "" {
		return nil
	}

	_, err := fmt.Fprintln(w, text)

	return err
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `tmuxctl sends commands to tmux over a control-mode connection.

Usage:
  tmuxctl [flags] <command> [args]

Commands:
  info                 show server and terminal information
  run <tmux command>   run a tmux command and print its output
  sessions             list sessions
  display <format>     expand a tmux format string
  mcp                  serve the session as MCP tools on stdio
  version              print the tmuxctl version

Flags:
%s`, flagSet.FlagUsages())
}
