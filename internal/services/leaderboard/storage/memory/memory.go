// Package memory is the volatile leaderboard backend. Contents live for the
// life of the process.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/storage"
)

type record struct {
	entry storage.Entry
	seq   uint64
}

// Store keeps entries keyed by normalized identity.
type Store struct {
	mu       sync.Mutex
	capacity int
	seq      uint64
	entries  map[string]record
}

// New returns an empty store. A non-positive capacity becomes
// storage.DefaultCapacity.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = storage.DefaultCapacity
	}
	return &Store{capacity: capacity, entries: make(map[string]record)}
}

// Len reports how many identities are stored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Top returns up to limit entries by descending score. Equal scores keep
// insertion order.
func (s *Store) Top(_ context.Context, limit int) ([]storage.Entry, error) {
	if limit <= 0 {
		return []storage.Entry{}, nil
	}
	s.mu.Lock()
	ranked := s.rankedLocked()
	s.mu.Unlock()

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]storage.Entry, len(ranked))
	for i, r := range ranked {
		out[i] = r.entry
	}
	return out, nil
}

// Submit records entry when its identity is new or the score is strictly
// higher, then evicts the lowest scores beyond capacity.
func (s *Store) Submit(_ context.Context, entry storage.Entry) (bool, error) {
	key := storage.NormalizeIdentity(entry.Identity)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[key]; ok && entry.Score <= existing.entry.Score {
		return false, nil
	}
	s.seq++
	s.entries[key] = record{entry: entry, seq: s.seq}
	s.evictLocked()
	return true, nil
}

func (s *Store) rankedLocked() []record {
	ranked := make([]record, 0, len(s.entries))
	for _, r := range s.entries {
		ranked = append(ranked, r)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].entry.Score != ranked[j].entry.Score {
			return ranked[i].entry.Score > ranked[j].entry.Score
		}
		return ranked[i].seq < ranked[j].seq
	})
	return ranked
}

func (s *Store) evictLocked() {
	if len(s.entries) <= s.capacity {
		return
	}
	ranked := s.rankedLocked()
	for _, r := range ranked[s.capacity:] {
		delete(s.entries, storage.NormalizeIdentity(r.entry.Identity))
	}
}
