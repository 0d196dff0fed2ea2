// ABOUTME: MCP server setup for the fitlog tracker.
// ABOUTME: Serves one user's diet and workout log to an AI assistant over stdio.
package mcp

import (
	"context"
	"errors"

	"github.com/harperreed/fitlog/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with tracker access for a single owner.
type Server struct {
	mcpServer *mcp.Server
	tracker   *tracker.Tracker
	owner     string
}

// NewServer creates a new MCP server acting as owner.
func NewServer(tr *tracker.Tracker, owner string) (*Server, error) {
	if tr == nil {
		return nil, errors.New("mcp: tracker is required")
	}
	if owner == "" {
		return nil, errors.New("mcp: owner is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "fitlog",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		tracker:   tr,
		owner:     owner,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
