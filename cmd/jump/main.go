// Package main starts the desktop jump game.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	jumpcmd "github.com/daemonn69/somnia-jump/internal/cmd/jump"
	"github.com/daemonn69/somnia-jump/internal/services/game/app"
	"github.com/daemonn69/somnia-jump/internal/services/game/engine"
)

func main() {
	cfg, err := jumpcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[JUMP] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host := func(ctx context.Context, e *engine.Engine) error {
		g := app.NewGame(e)
		defer g.Close()
		return app.Run(ctx, g)
	}
	if err := jumpcmd.Run(ctx, cfg, host); err != nil {
		log.Fatalf("failed to run: %v", err)
	}
}
