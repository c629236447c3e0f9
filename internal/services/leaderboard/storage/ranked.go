package storage

import (
	"context"
	"fmt"
	"log"
)

// RankedBoard implements Board on top of a RankedStore.
//
// Submit reads the whole set before writing, so two concurrent submissions
// for the same identity can both pass the comparison; the later write wins.
// The set is capped, which keeps the scan small.
type RankedBoard struct {
	store    RankedStore
	capacity int
}

// NewRankedBoard wraps store with the submission rules. A non-positive
// capacity becomes DefaultCapacity.
func NewRankedBoard(store RankedStore, capacity int) *RankedBoard {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &RankedBoard{store: store, capacity: capacity}
}

// Top returns up to limit entries by descending score. Members that fail to
// decode are logged and skipped.
func (b *RankedBoard) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return []Entry{}, nil
	}
	members, err := b.store.RevRangeWithScores(ctx, 0, int64(limit-1))
	if err != nil {
		return nil, fmt.Errorf("range leaderboard: %w", err)
	}
	entries := make([]Entry, 0, len(members))
	for _, member := range members {
		entry, err := DecodeMember(member)
		if err != nil {
			log.Printf("leaderboard: skip member payload=%q: %v", member.Payload, err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Submit records entry when its identity is absent or its score is strictly
// higher than the stored one, then trims the set to capacity. A failed trim
// is logged; the next successful submission trims again.
func (b *RankedBoard) Submit(ctx context.Context, entry Entry) (bool, error) {
	members, err := b.store.RangeWithScores(ctx, 0, -1)
	if err != nil {
		return false, fmt.Errorf("scan leaderboard: %w", err)
	}

	key := NormalizeIdentity(entry.Identity)
	var stale []string
	found := false
	var best int64
	for _, member := range members {
		existing, err := DecodeMember(member)
		if err != nil {
			log.Printf("leaderboard: skip member payload=%q: %v", member.Payload, err)
			continue
		}
		if NormalizeIdentity(existing.Identity) != key {
			continue
		}
		if !found || existing.Score > best {
			best = existing.Score
		}
		found = true
		stale = append(stale, member.Payload)
	}
	if found && entry.Score <= best {
		return false, nil
	}

	member, err := EncodeMember(entry)
	if err != nil {
		return false, err
	}
	if err := b.store.Replace(ctx, stale, member); err != nil {
		return false, fmt.Errorf("write leaderboard entry: %w", err)
	}
	if err := b.trim(ctx); err != nil {
		log.Printf("leaderboard: %v", err)
	}
	return true, nil
}

func (b *RankedBoard) trim(ctx context.Context) error {
	count, err := b.store.Card(ctx)
	if err != nil {
		return fmt.Errorf("count leaderboard: %w", err)
	}
	excess := count - int64(b.capacity)
	if excess <= 0 {
		return nil
	}
	if err := b.store.RemoveRangeByRank(ctx, 0, excess-1); err != nil {
		return fmt.Errorf("trim leaderboard: %w", err)
	}
	return nil
}
