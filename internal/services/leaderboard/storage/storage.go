package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/daemonn69/somnia-jump/internal/platform/errors"
	"golang.org/x/text/cases"
)

// Kind names the backend that served a request.
type Kind string

const (
	KindMemory Kind = "memory"
	KindKV     Kind = "kv"
	KindRedis  Kind = "redis"
)

// DefaultCapacity is the number of entries a board retains.
const DefaultCapacity = 100

// Entry is one identity's best score.
type Entry struct {
	Identity   string
	Score      int64
	RecordedAt time.Time
}

// Board is a bounded best-score table.
type Board interface {
	// Top returns up to limit entries by descending score.
	Top(ctx context.Context, limit int) ([]Entry, error)
	// Submit records entry when its identity is new or the score is strictly
	// higher than the stored one, and reports whether it was recorded.
	Submit(ctx context.Context, entry Entry) (bool, error)
}

// Member is one sorted-set element.
type Member struct {
	Payload string
	Score   float64
}

// RankedStore is the sorted-set surface durable backends provide. Ranks are
// zero based in ascending score order; stop may be -1 for the last element.
type RankedStore interface {
	RangeWithScores(ctx context.Context, start, stop int64) ([]Member, error)
	RevRangeWithScores(ctx context.Context, start, stop int64) ([]Member, error)
	// Replace removes the listed payloads and adds member as one atomic unit.
	Replace(ctx context.Context, remove []string, member Member) error
	Card(ctx context.Context) (int64, error)
	RemoveRangeByRank(ctx context.Context, start, stop int64) error
	Ping(ctx context.Context) error
	Close() error
}

// NormalizeIdentity trims and case-folds an identity for comparison.
func NormalizeIdentity(identity string) string {
	// Casers carry state and are not shared across goroutines.
	return cases.Fold().String(strings.TrimSpace(identity))
}

type memberPayload struct {
	Address   string `json:"address"`
	Timestamp int64  `json:"timestamp"`
}

// EncodeMember serializes an entry into a sorted-set member.
func EncodeMember(entry Entry) (Member, error) {
	payload, err := json.Marshal(memberPayload{
		Address:   entry.Identity,
		Timestamp: entry.RecordedAt.UTC().UnixMilli(),
	})
	if err != nil {
		return Member{}, fmt.Errorf("encode member: %w", err)
	}
	return Member{Payload: string(payload), Score: float64(entry.Score)}, nil
}

// DecodeMember parses a sorted-set member. Malformed payloads return a
// PARSE_FAILURE error.
func DecodeMember(member Member) (Entry, error) {
	var payload memberPayload
	if err := json.Unmarshal([]byte(member.Payload), &payload); err != nil {
		return Entry{}, apperrors.Wrap(apperrors.CodeParseFailure, "decode leaderboard member", err)
	}
	if strings.TrimSpace(payload.Address) == "" {
		return Entry{}, apperrors.New(apperrors.CodeParseFailure, "leaderboard member has no address")
	}
	return Entry{
		Identity:   payload.Address,
		Score:      int64(member.Score),
		RecordedAt: time.UnixMilli(payload.Timestamp).UTC(),
	}, nil
}
