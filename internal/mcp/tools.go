package mcp

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/tmux-control-go/internal/command"
	"github.com/wagiedev/tmux-control-go/internal/errors"
	"github.com/wagiedev/tmux-control-go/internal/protocol"
)

// Tool names registered by RegisterSessionTools.
const (
	ToolInfo         = "tmux_info"
	ToolCommand      = "tmux_command"
	ToolListSessions = "tmux_list_sessions"
	ToolDisplay      = "tmux_display"
)

// Submitter is the part of a control session the tools need.
type Submitter interface {
	Submit(cmd command.Command) *protocol.Reply
}

// RegisterSessionTools adds the tmux tools to server. Every call submits
// one command to session and waits for its output.
func RegisterSessionTools(server *Server, session Submitter) {
	readOnly := &mcp.ToolAnnotations{ReadOnlyHint: true}

	info := NewTool(ToolInfo, "Describe the tmux server and the control client's terminal.",
		&jsonschema.Schema{Type: "object"})
	info.Annotations = readOnly
	server.AddTool(info, func(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return run(ctx, session, command.NewInfo(), func(resp command.Response) string {
			return resp.(*command.InfoResponse).Content
		})
	})

	server.AddTool(
		NewTool(ToolCommand, "Run one tmux command line, for example \"split-window -h\", and return its output.",
			SimpleSchema(map[string]string{"command": "string"})),
		func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			line, result := stringArgument(req, "command")
			if result != nil {
				return result, nil
			}

			cmd, err := command.NewRaw(line)
			if err != nil {
				return ErrorResult(err.Error()), nil
			}

			return run(ctx, session, cmd, func(resp command.Response) string {
				return resp.(*command.TextResponse).Text
			})
		},
	)

	sessions := NewTool(ToolListSessions, "List tmux sessions with their window counts.",
		&jsonschema.Schema{Type: "object"})
	sessions.Annotations = readOnly
	server.AddTool(sessions, func(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return run(ctx, session, command.NewListSessions(), func(resp command.Response) string {
			return formatSessions(resp.(*command.ListSessionsResponse))
		})
	})

	display := NewTool(ToolDisplay, "Expand a tmux format string such as \"#{session_name}:#{window_index}\".",
		SimpleSchema(map[string]string{"format": "string"}))
	display.Annotations = readOnly
	server.AddTool(display, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		format, result := stringArgument(req, "format")
		if result != nil {
			return result, nil
		}

		cmd, err := command.NewDisplayMessage(format)
		if err != nil {
			return ErrorResult(err.Error()), nil
		}

		return run(ctx, session, cmd, func(resp command.Response) string {
			return resp.(*command.DisplayMessageResponse).Text
		})
	})
}

// run submits cmd and renders the response. tmux command failures become
// error results carrying tmux's message.
func run(
	ctx context.Context,
	session Submitter,
	cmd command.Command,
	render func(command.Response) string,
) (*mcp.CallToolResult, error) {
	resp, err := session.Submit(cmd).Wait(ctx)
	if err != nil {
		if cmdErr, ok := stderrors.AsType[*errors.CommandError](err); ok {
			return ErrorResult(cmdErr.Output), nil
		}

		return nil, err
	}

	return TextResult(render(resp)), nil
}

func stringArgument(req *mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	args, err := ParseArguments(req)
	if err != nil {
		return "", ErrorResult(fmt.Sprintf("failed to parse arguments: %v", err))
	}

	value, ok := args[name].(string)
	if !ok || value == "" {
		return "", ErrorResult(fmt.Sprintf("missing required string argument %q", name))
	}

	return value, nil
}

func formatSessions(resp *command.ListSessionsResponse) string {
	if len(resp.Sessions) == 0 {
		return "no sessions"
	}

	var b strings.Builder

	for _, s := range resp.Sessions {
		attached := ""
		if s.Attached > 0 {
			attached = " (attached)"
		}

		fmt.Fprintf(&b, "%s %s: %d windows%s\n", s.ID, s.Name, s.Windows, attached)
	}

	return strings.TrimSuffix(b.String(), "\n")
}
