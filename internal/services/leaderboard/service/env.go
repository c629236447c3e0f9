package service

import "go.opentelemetry.io/otel/attribute"

// Env is the environment form of Config shared by the binaries that host
// the leaderboard.
type Env struct {
	RedisURL string `env:"REDIS_URL"`
	KVURL    string `env:"KV_REST_API_URL"`
	KVToken  string `env:"KV_REST_API_TOKEN"`
	Key      string `env:"SOMNIA_JUMP_LEADERBOARD_KEY" envDefault:"leaderboard"`
	Capacity int    `env:"SOMNIA_JUMP_LEADERBOARD_CAPACITY" envDefault:"100"`
}

// Config converts the environment values.
func (e Env) Config() Config {
	return Config{
		RedisURL: e.RedisURL,
		KVURL:    e.KVURL,
		KVToken:  e.KVToken,
		Key:      e.Key,
		Capacity: e.Capacity,
	}
}

// ResourceAttributes tags telemetry with the storage kind the environment
// selects.
func (e Env) ResourceAttributes() []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String("leaderboard.storage", string(e.Config().Kind()))}
}
