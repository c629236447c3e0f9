package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "somnia-jump-leaderboard"
	serverVersion = "0.1.0"
)

// NewServer registers the leaderboard tools.
func NewServer(board Leaderboard) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	mcp.AddTool(server, TopTool(), TopHandler(board))
	mcp.AddTool(server, SubmitTool(), SubmitHandler(board))
	return server
}

// Run serves the tools over stdio until ctx ends or the client disconnects.
func Run(ctx context.Context, board Leaderboard) error {
	return RunWithTransport(ctx, board, &mcp.StdioTransport{})
}

// RunWithTransport serves the tools over transport.
func RunWithTransport(ctx context.Context, board Leaderboard, transport mcp.Transport) error {
	if board == nil {
		return fmt.Errorf("leaderboard is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := NewServer(board).Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
