package mcpserver

import (
	"context"
	"os"

	"regctl/pkg/logging"

	"github.com/mark3labs/mcp-go/server"
)

// ServerName is announced to MCP clients during initialization.
const ServerName = "regctl"

// NewServer creates an MCP server carrying every registration tool.
func NewServer(version string, tools *RegTools) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)
	s.AddTools(tools.ServerTools()...)
	return s
}

// ServeStdio serves s on stdin and stdout until the client disconnects or ctx
// is cancelled.
func ServeStdio(ctx context.Context, s *server.MCPServer) error {
	logging.Info("MCPServer", "Serving registration tools on stdio")
	stdio := server.NewStdioServer(s)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}
