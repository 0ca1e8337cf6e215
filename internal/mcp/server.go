package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server is a tool registry served to MCP clients through the official SDK.
type Server struct {
	name    string
	version string
	mu      sync.RWMutex
	tools   map[string]*registeredTool
}

type registeredTool struct {
	tool    *mcp.Tool
	handler mcp.ToolHandler
}

// NewServer creates an empty registry.
func NewServer(name, version string) *Server {
	return &Server{
		name:    name,
		version: version,
		tools:   make(map[string]*registeredTool, 4),
	}
}

// AddTool registers a tool, replacing any tool with the same name.
//
// Handler failures reach the client as error results, never as protocol
// errors, so a model calling the tool can read what went wrong.
func (s *Server) AddTool(tool *mcp.Tool, handler mcp.ToolHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools[tool.Name] = &registeredTool{
		tool:    tool,
		handler: resultOnly(handler),
	}
}

func resultOnly(handler mcp.ToolHandler) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if handler == nil {
			return &mcp.CallToolResult{Content: []mcp.Content{}}, nil
		}

		result, err := handler(ctx, req)
		if err != nil {
			return ErrorResult("Tool execution failed: " + err.Error()), nil
		}

		if result == nil {
			return &mcp.CallToolResult{Content: []mcp.Content{}}, nil
		}

		return result, nil
	}
}

// sdkServer builds a go-sdk server exposing every registered tool.
func (s *Server) sdkServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: s.name, Version: s.version}, nil)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tools {
		server.AddTool(t.tool, t.handler)
	}

	return server
}

// Serve runs the tools over transport until the client disconnects or ctx
// is done.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport) error {
	if err := s.sdkServer().Run(ctx, transport); err != nil {
		return fmt.Errorf("serve mcp: %w", err)
	}

	return nil
}
