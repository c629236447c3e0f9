// Package storagetest provides leaderboard storage fakes and a behavior suite
// shared by every backend.
package storagetest

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/storage"
)

// ErrUnavailable is returned by a SortedSet once Fail is set.
var ErrUnavailable = errors.New("sorted set unavailable")

// SortedSet is an in-memory RankedStore ordered by score then payload, the
// order Redis uses.
type SortedSet struct {
	mu      sync.Mutex
	members map[string]float64
	fail    bool
	closed  bool
}

// NewSortedSet returns an empty set.
func NewSortedSet() *SortedSet {
	return &SortedSet{members: make(map[string]float64)}
}

// Fail makes every later call return ErrUnavailable.
func (s *SortedSet) Fail(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}

// Closed reports whether Close was called.
func (s *SortedSet) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Add inserts a raw member, bypassing any encoding.
func (s *SortedSet) Add(payload string, score float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[payload] = score
}

func (s *SortedSet) sorted() []storage.Member {
	out := make([]storage.Member, 0, len(s.members))
	for payload, score := range s.members {
		out = append(out, storage.Member{Payload: payload, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].Payload < out[j].Payload
	})
	return out
}

func window(n, start, stop int64) (int64, int64, bool) {
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return 0, 0, false
	}
	return start, stop, true
}

func (s *SortedSet) RangeWithScores(_ context.Context, start, stop int64) ([]storage.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, ErrUnavailable
	}
	all := s.sorted()
	lo, hi, ok := window(int64(len(all)), start, stop)
	if !ok {
		return []storage.Member{}, nil
	}
	return all[lo : hi+1], nil
}

func (s *SortedSet) RevRangeWithScores(_ context.Context, start, stop int64) ([]storage.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, ErrUnavailable
	}
	all := s.sorted()
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	lo, hi, ok := window(int64(len(all)), start, stop)
	if !ok {
		return []storage.Member{}, nil
	}
	return all[lo : hi+1], nil
}

func (s *SortedSet) Replace(_ context.Context, remove []string, member storage.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return ErrUnavailable
	}
	for _, payload := range remove {
		delete(s.members, payload)
	}
	s.members[member.Payload] = member.Score
	return nil
}

func (s *SortedSet) Card(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return 0, ErrUnavailable
	}
	return int64(len(s.members)), nil
}

func (s *SortedSet) RemoveRangeByRank(_ context.Context, start, stop int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return ErrUnavailable
	}
	all := s.sorted()
	lo, hi, ok := window(int64(len(all)), start, stop)
	if !ok {
		return nil
	}
	for _, member := range all[lo : hi+1] {
		delete(s.members, member.Payload)
	}
	return nil
}

func (s *SortedSet) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return ErrUnavailable
	}
	return nil
}

func (s *SortedSet) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
