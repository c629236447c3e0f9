package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/storage"
)

// BoardFactory builds an empty board with the given capacity.
type BoardFactory func(t *testing.T, capacity int) storage.Board

var recordedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func entry(identity string, score int64) storage.Entry {
	return storage.Entry{Identity: identity, Score: score, RecordedAt: recordedAt}
}

func submit(t *testing.T, board storage.Board, identity string, score int64) bool {
	t.Helper()
	accepted, err := board.Submit(context.Background(), entry(identity, score))
	if err != nil {
		t.Fatalf("submit %s=%d: %v", identity, score, err)
	}
	return accepted
}

func top(t *testing.T, board storage.Board, limit int) []storage.Entry {
	t.Helper()
	entries, err := board.Top(context.Background(), limit)
	if err != nil {
		t.Fatalf("top %d: %v", limit, err)
	}
	return entries
}

// RunBoard exercises the submission and ranking rules every backend shares.
func RunBoard(t *testing.T, newBoard BoardFactory) {
	t.Run("lower score rejected", func(t *testing.T) {
		board := newBoard(t, storage.DefaultCapacity)
		if !submit(t, board, "0xA", 50) {
			t.Fatal("first submission should be accepted")
		}
		if submit(t, board, "0xA", 30) {
			t.Fatal("lower submission should be rejected")
		}
		entries := top(t, board, 10)
		if len(entries) != 1 || entries[0].Score != 50 {
			t.Fatalf("entries = %+v, want single 50", entries)
		}
	})

	t.Run("equal score rejected", func(t *testing.T) {
		board := newBoard(t, storage.DefaultCapacity)
		submit(t, board, "0xA", 50)
		if submit(t, board, "0xA", 50) {
			t.Fatal("equal submission should be rejected")
		}
	})

	t.Run("higher score replaces", func(t *testing.T) {
		board := newBoard(t, storage.DefaultCapacity)
		submit(t, board, "0xA", 50)
		if !submit(t, board, "0xA", 80) {
			t.Fatal("higher submission should be accepted")
		}
		entries := top(t, board, 10)
		if len(entries) != 1 || entries[0].Score != 80 {
			t.Fatalf("entries = %+v, want single 80", entries)
		}
		if !entries[0].RecordedAt.Equal(recordedAt) {
			t.Fatalf("recorded at = %v, want %v", entries[0].RecordedAt, recordedAt)
		}
	})

	t.Run("identity is case insensitive", func(t *testing.T) {
		board := newBoard(t, storage.DefaultCapacity)
		submit(t, board, "0xAbC", 50)
		if !submit(t, board, "0XABC", 80) {
			t.Fatal("higher submission under different case should be accepted")
		}
		if submit(t, board, "0xabc", 10) {
			t.Fatal("lower submission under different case should be rejected")
		}
		entries := top(t, board, 10)
		if len(entries) != 1 {
			t.Fatalf("entries = %+v, want one entry per identity", entries)
		}
		if entries[0].Identity != "0XABC" || entries[0].Score != 80 {
			t.Fatalf("entry = %+v, want 0XABC=80", entries[0])
		}
	})

	t.Run("top is bounded and descending", func(t *testing.T) {
		board := newBoard(t, storage.DefaultCapacity)
		for i := 1; i <= 15; i++ {
			submit(t, board, fmt.Sprintf("0x%02d", i), int64(i*10))
		}
		entries := top(t, board, 10)
		if len(entries) != 10 {
			t.Fatalf("entries = %d, want 10", len(entries))
		}
		if entries[0].Score != 150 {
			t.Fatalf("first score = %d, want 150", entries[0].Score)
		}
		for i := 1; i < len(entries); i++ {
			if entries[i].Score > entries[i-1].Score {
				t.Fatalf("entries out of order at %d: %+v", i, entries)
			}
		}
	})

	t.Run("non-positive limit is empty", func(t *testing.T) {
		board := newBoard(t, storage.DefaultCapacity)
		submit(t, board, "0xA", 50)
		if entries := top(t, board, 0); len(entries) != 0 {
			t.Fatalf("entries = %+v, want none", entries)
		}
	})

	t.Run("capacity evicts lowest", func(t *testing.T) {
		board := newBoard(t, storage.DefaultCapacity)
		for i := 1; i <= storage.DefaultCapacity+1; i++ {
			submit(t, board, fmt.Sprintf("0x%03d", i), int64(i))
		}
		entries := top(t, board, storage.DefaultCapacity+10)
		if len(entries) != storage.DefaultCapacity {
			t.Fatalf("entries = %d, want %d", len(entries), storage.DefaultCapacity)
		}
		for _, e := range entries {
			if e.Score == 1 {
				t.Fatal("lowest score should have been evicted")
			}
		}
		if last := entries[len(entries)-1]; last.Score != 2 {
			t.Fatalf("lowest kept score = %d, want 2", last.Score)
		}
	})
}
