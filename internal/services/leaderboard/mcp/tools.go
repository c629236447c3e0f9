// Package mcp exposes the leaderboard as Model Context Protocol tools.
package mcp

import (
	"context"
	"fmt"

	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/service"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Leaderboard is the service surface the tools need.
type Leaderboard interface {
	Top(ctx context.Context, limit int) (service.TopResult, error)
	Submit(ctx context.Context, identity string, score float64) (service.SubmitResult, error)
}

// TopInput selects how many entries to read.
type TopInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum entries to return; defaults to 10, capped at 100"`
}

// EntryResult is one ranked row.
type EntryResult struct {
	Rank      int    `json:"rank" jsonschema:"1-based position"`
	Address   string `json:"address" jsonschema:"player identity"`
	Score     int64  `json:"score" jsonschema:"best score"`
	Timestamp int64  `json:"timestamp" jsonschema:"unix milliseconds when the score was recorded"`
}

// TopResult lists the top entries.
type TopResult struct {
	Entries []EntryResult `json:"entries" jsonschema:"entries by descending score"`
	Storage string        `json:"storage" jsonschema:"backend that served the read (memory, kv or redis)"`
}

// SubmitInput is a score submission.
type SubmitInput struct {
	Address string  `json:"address" jsonschema:"player identity"`
	Score   float64 `json:"score" jsonschema:"non-negative score; fractions are floored"`
}

// SubmitResult reports the outcome of a submission.
type SubmitResult struct {
	NewHighScore bool   `json:"new_high_score" jsonschema:"true when the score became the identity's best"`
	Storage      string `json:"storage" jsonschema:"backend that served the write (memory, kv or redis)"`
}

// TopTool defines the read tool.
func TopTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "leaderboard_top",
		Description: "Lists the best scores on the jump leaderboard",
	}
}

// SubmitTool defines the write tool.
func SubmitTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "leaderboard_submit",
		Description: "Submits a score; it is kept only if it beats the identity's best",
	}
}

// TopHandler reads the leaderboard.
func TopHandler(board Leaderboard) mcp.ToolHandlerFor[TopInput, TopResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TopInput) (*mcp.CallToolResult, TopResult, error) {
		result, err := board.Top(ctx, input.Limit)
		if err != nil {
			return nil, TopResult{}, fmt.Errorf("read leaderboard: %w", err)
		}
		out := TopResult{Entries: make([]EntryResult, 0, len(result.Entries)), Storage: string(result.Storage)}
		for i, e := range result.Entries {
			out.Entries = append(out.Entries, EntryResult{
				Rank:      i + 1,
				Address:   e.Identity,
				Score:     e.Score,
				Timestamp: e.RecordedAt.UnixMilli(),
			})
		}
		return nil, out, nil
	}
}

// SubmitHandler writes a score.
func SubmitHandler(board Leaderboard) mcp.ToolHandlerFor[SubmitInput, SubmitResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SubmitInput) (*mcp.CallToolResult, SubmitResult, error) {
		result, err := board.Submit(ctx, input.Address, input.Score)
		if err != nil {
			return nil, SubmitResult{}, fmt.Errorf("submit score: %w", err)
		}
		return nil, SubmitResult{NewHighScore: result.Accepted, Storage: string(result.Storage)}, nil
	}
}
