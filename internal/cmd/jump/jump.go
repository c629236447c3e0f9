// Package jump parses desktop game flags and wires the engine to its
// local best store and the remote leaderboard.
package jump

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	entrypoint "github.com/daemonn69/somnia-jump/internal/platform/cmd"
	"github.com/daemonn69/somnia-jump/internal/platform/random"
	"github.com/daemonn69/somnia-jump/internal/services/game/engine"
	"github.com/daemonn69/somnia-jump/internal/services/game/storage/sqlite"
	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/client"
)

// Config holds jump command configuration.
type Config struct {
	LeaderboardURL string `env:"SOMNIA_JUMP_LEADERBOARD_URL"`
	Identity       string `env:"SOMNIA_JUMP_IDENTITY"`
	DBPath         string `env:"SOMNIA_JUMP_DB_PATH" envDefault:"data/jump.db"`
}

// Host drives an engine until the player quits or ctx ends.
type Host func(ctx context.Context, e *engine.Engine) error

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.LeaderboardURL, "leaderboard-url", cfg.LeaderboardURL, "Base URL of the leaderboard web service")
	fs.StringVar(&cfg.Identity, "identity", cfg.Identity, "Wallet address used for leaderboard submissions")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "Local best score database path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run opens local storage, builds the engine, and hands it to host.
func Run(ctx context.Context, cfg Config, host Host) error {
	if host == nil {
		return errors.New("game host is required")
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceJump, func(ctx context.Context) error {
		store, err := openStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close local store: %v", err)
			}
		}()

		best, err := store.LoadBest(ctx)
		if err != nil {
			return fmt.Errorf("load local best: %w", err)
		}
		rng, err := random.NewRand()
		if err != nil {
			return err
		}

		engineCfg := engine.Config{
			Random:   rng,
			Bests:    store,
			Best:     best,
			Identity: cfg.Identity,
		}
		var submitter *client.Submitter
		if url := strings.TrimSpace(cfg.LeaderboardURL); url != "" {
			c, err := client.New(url, nil)
			if err != nil {
				return fmt.Errorf("init leaderboard client: %w", err)
			}
			submitter = client.NewSubmitter(c)
			engineCfg.Submitter = submitter
		}

		err = host(ctx, engine.New(engineCfg))
		if submitter != nil {
			submitter.Wait()
		}
		return err
	})
}

func openStore(path string) (*sqlite.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("db path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	return store, nil
}
