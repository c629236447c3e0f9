// Package mcp parses MCP server flags and launches the stdio tool server.
package mcp

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/daemonn69/somnia-jump/internal/platform/cmd"
	lbmcp "github.com/daemonn69/somnia-jump/internal/services/leaderboard/mcp"
	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/service"
)

// Config holds MCP command configuration.
type Config struct {
	Leaderboard service.Env
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Leaderboard.Key, "key", cfg.Leaderboard.Key, "Sorted-set key holding the leaderboard")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run serves the leaderboard tools over stdio.
func Run(ctx context.Context, cfg Config) error {
	options := entrypoint.RunOptions{ResourceAttributes: cfg.Leaderboard.ResourceAttributes()}
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceMCP, options, func(ctx context.Context) error {
		svc, err := service.New(cfg.Leaderboard.Config())
		if err != nil {
			return fmt.Errorf("init leaderboard: %w", err)
		}
		defer svc.Close()
		return lbmcp.Run(ctx, svc)
	})
}
