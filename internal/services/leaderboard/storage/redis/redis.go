// Package redis stores the leaderboard in a Redis sorted set.
package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/daemonn69/somnia-jump/internal/platform/timeouts"
	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/storage"
	goredis "github.com/redis/go-redis/v9"
)

// Store is a storage.RankedStore over one sorted-set key.
type Store struct {
	client *goredis.Client
	key    string
}

// Open connects lazily to the server described by url (redis:// or
// rediss://). Dial and I/O are bounded by the backend timeouts.
func Open(url, key string) (*Store, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("redis url is required")
	}
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = timeouts.BackendDial
	opts.ReadTimeout = timeouts.BackendRequest
	opts.WriteTimeout = timeouts.BackendRequest
	opts.MaxRetries = 1
	return New(goredis.NewClient(opts), key), nil
}

// New wraps an existing client.
func New(client *goredis.Client, key string) *Store {
	if strings.TrimSpace(key) == "" {
		key = "leaderboard"
	}
	return &Store{client: client, key: key}
}

func fromZ(values []goredis.Z) []storage.Member {
	members := make([]storage.Member, 0, len(values))
	for _, z := range values {
		payload, ok := z.Member.(string)
		if !ok {
			payload = fmt.Sprint(z.Member)
		}
		members = append(members, storage.Member{Payload: payload, Score: z.Score})
	}
	return members
}

func (s *Store) RangeWithScores(ctx context.Context, start, stop int64) ([]storage.Member, error) {
	values, err := s.client.ZRangeWithScores(ctx, s.key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange %s: %w", s.key, err)
	}
	return fromZ(values), nil
}

func (s *Store) RevRangeWithScores(ctx context.Context, start, stop int64) ([]storage.Member, error) {
	values, err := s.client.ZRevRangeWithScores(ctx, s.key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange %s: %w", s.key, err)
	}
	return fromZ(values), nil
}

// Replace runs ZREM and ZADD in one MULTI/EXEC transaction.
func (s *Store) Replace(ctx context.Context, remove []string, member storage.Member) error {
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		if len(remove) > 0 {
			stale := make([]any, len(remove))
			for i, payload := range remove {
				stale[i] = payload
			}
			pipe.ZRem(ctx, s.key, stale...)
		}
		pipe.ZAdd(ctx, s.key, goredis.Z{Score: member.Score, Member: member.Payload})
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace in %s: %w", s.key, err)
	}
	return nil
}

func (s *Store) Card(ctx context.Context) (int64, error) {
	n, err := s.client.ZCard(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("zcard %s: %w", s.key, err)
	}
	return n, nil
}

func (s *Store) RemoveRangeByRank(ctx context.Context, start, stop int64) error {
	if err := s.client.ZRemRangeByRank(ctx, s.key, start, stop).Err(); err != nil {
		return fmt.Errorf("zremrangebyrank %s: %w", s.key, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Close releases the client's connections.
func (s *Store) Close() error {
	return s.client.Close()
}
