// Package web parses web service flags and launches the service.
package web

import (
	"context"
	"flag"
	"fmt"
	"strings"

	entrypoint "github.com/daemonn69/somnia-jump/internal/platform/cmd"
	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/service"
	server "github.com/daemonn69/somnia-jump/internal/services/web/app"
)

// Config holds web command configuration.
type Config struct {
	Port        int    `env:"SOMNIA_JUMP_WEB_PORT" envDefault:"8080"`
	Addr        string `env:"SOMNIA_JUMP_WEB_ADDR"`
	HealthPort  int    `env:"SOMNIA_JUMP_HEALTH_PORT" envDefault:"8081"`
	Leaderboard service.Env
}

// HTTPAddr returns Addr when set, otherwise all interfaces on Port.
func (c Config) HTTPAddr() string {
	if addr := strings.TrimSpace(c.Addr); addr != "" {
		return addr
	}
	return fmt.Sprintf(":%d", c.Port)
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The HTTP server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address; overrides -port")
	fs.IntVar(&cfg.HealthPort, "health-port", cfg.HealthPort, "The gRPC health server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the leaderboard API and play sockets.
func Run(ctx context.Context, cfg Config) error {
	options := entrypoint.RunOptions{ResourceAttributes: cfg.Leaderboard.ResourceAttributes()}
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceWeb, options, func(ctx context.Context) error {
		return server.Run(ctx, server.Config{
			HTTPAddr:    cfg.HTTPAddr(),
			HealthAddr:  fmt.Sprintf(":%d", cfg.HealthPort),
			Leaderboard: cfg.Leaderboard.Config(),
		})
	})
}
