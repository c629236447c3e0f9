package service

import (
	"testing"

	"github.com/daemonn69/somnia-jump/internal/platform/config"
)

func TestEnvDefaults(t *testing.T) {
	var env Env
	if err := config.ParseEnvMap(&env, nil); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	cfg := env.Config()
	if cfg.Key != "leaderboard" || cfg.Capacity != 100 {
		t.Fatalf("config = %+v", cfg)
	}
	if cfg.RedisURL != "" || cfg.KVURL != "" || cfg.KVToken != "" {
		t.Fatalf("expected no durable backend, got %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	var env Env
	err := config.ParseEnvMap(&env, map[string]string{
		"REDIS_URL":                        "redis://cache:6379/0",
		"KV_REST_API_URL":                  "https://kv.example",
		"KV_REST_API_TOKEN":                "secret",
		"SOMNIA_JUMP_LEADERBOARD_KEY":      "scores",
		"SOMNIA_JUMP_LEADERBOARD_CAPACITY": "25",
	})
	if err != nil {
		t.Fatalf("parse env: %v", err)
	}
	cfg := env.Config()
	if cfg.RedisURL != "redis://cache:6379/0" || cfg.KVToken != "secret" || cfg.Key != "scores" || cfg.Capacity != 25 {
		t.Fatalf("config = %+v", cfg)
	}
	attrs := env.ResourceAttributes()
	if len(attrs) != 1 || attrs[0].Key != "leaderboard.storage" || attrs[0].Value.AsString() != "redis" {
		t.Fatalf("ResourceAttributes() = %v", attrs)
	}
}
