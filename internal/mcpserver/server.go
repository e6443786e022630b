// Package mcpserver exposes a tool registry over the MCP stdio transport.
package mcpserver

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/lydakis/prism-mcp/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// Name is the server name reported during initialization.
const Name = "prism-mcp"

// Server is an MCP server whose tools are served by a tools.Registry.
type Server struct {
	mcp      *server.MCPServer
	registry *tools.Registry
	logger   zerolog.Logger
}

// New mounts every tool of reg onto a fresh MCP server.
func New(reg *tools.Registry, version string, logger *zerolog.Logger) *Server {
	s := &Server{
		mcp: server.NewMCPServer(Name, version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		registry: reg,
		logger:   zerolog.Nop(),
	}
	if logger != nil {
		s.logger = *logger
	}

	for _, t := range reg.Tools() {
		s.mcp.AddTool(t.MCP(), s.handle)
	}
	return s
}

func (s *Server) handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.registry.Dispatch(ctx, req.Params.Name, req.GetArguments()), nil
}

// MCP returns the underlying mcp-go server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio serves newline-delimited JSON-RPC on in and out until in is
// exhausted or ctx is cancelled. Transport errors go to the logger; out
// carries protocol messages only.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.New(s.logger.With().Str("component", "stdio").Logger(), "", 0))

	s.logger.Info().Int("tools", len(s.registry.Tools())).Msg("prism MCP server running on stdio")
	err := stdio.Listen(ctx, in, out)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
