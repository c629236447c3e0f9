package kv

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/storage"
	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/storage/storagetest"
)

const testToken = "test-token"

// fakeServer speaks the REST protocol over per-key sorted sets.
type fakeServer struct {
	mu       sync.Mutex
	sets     map[string]*storagetest.SortedSet
	commands []string
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()
	f := &fakeServer{sets: make(map[string]*storagetest.SortedSet)}
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	return f, server
}

func (f *fakeServer) set(key string) *storagetest.SortedSet {
	if s, ok := f.sets[key]; ok {
		return s
	}
	s := storagetest.NewSortedSet()
	f.sets[key] = s
	return s
}

func (f *fakeServer) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+testToken {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Path {
	case "", "/":
		var args []string
		if err := json.NewDecoder(r.Body).Decode(&args); err != nil || len(args) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad command"})
			return
		}
		_ = json.NewEncoder(w).Encode(f.exec(r.Context(), args))
	case "/multi-exec":
		var batch [][]string
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad transaction"})
			return
		}
		replies := make([]map[string]any, 0, len(batch))
		for _, args := range batch {
			replies = append(replies, f.exec(r.Context(), args))
		}
		_ = json.NewEncoder(w).Encode(replies)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeServer) exec(ctx context.Context, args []string) map[string]any {
	name := strings.ToUpper(args[0])
	f.commands = append(f.commands, name)
	fail := func(msg string) map[string]any { return map[string]any{"error": msg} }
	ok := func(result any) map[string]any { return map[string]any{"result": result} }
	rank := func(i int) int64 {
		v, _ := strconv.ParseInt(args[i], 10, 64)
		return v
	}

	switch name {
	case "PING":
		return ok("PONG")
	case "ZADD":
		score, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fail("ERR value is not a valid float")
		}
		f.set(args[1]).Add(args[3], score)
		return ok(1)
	case "ZREM":
		set := f.set(args[1])
		members, _ := set.RangeWithScores(ctx, 0, -1)
		var keep []storage.Member
		removed := 0
		for _, m := range members {
			drop := false
			for _, payload := range args[2:] {
				if m.Payload == payload {
					drop = true
				}
			}
			if drop {
				removed++
				continue
			}
			keep = append(keep, m)
		}
		fresh := storagetest.NewSortedSet()
		for _, m := range keep {
			fresh.Add(m.Payload, m.Score)
		}
		f.sets[args[1]] = fresh
		return ok(removed)
	case "ZRANGE", "ZREVRANGE":
		set := f.set(args[1])
		var members []storage.Member
		if name == "ZRANGE" {
			members, _ = set.RangeWithScores(ctx, rank(2), rank(3))
		} else {
			members, _ = set.RevRangeWithScores(ctx, rank(2), rank(3))
		}
		flat := make([]string, 0, len(members)*2)
		for _, m := range members {
			flat = append(flat, m.Payload, strconv.FormatFloat(m.Score, 'f', -1, 64))
		}
		return ok(flat)
	case "ZCARD":
		n, _ := f.set(args[1]).Card(ctx)
		return ok(n)
	case "ZREMRANGEBYRANK":
		set := f.set(args[1])
		before, _ := set.Card(ctx)
		_ = set.RemoveRangeByRank(ctx, rank(2), rank(3))
		after, _ := set.Card(ctx)
		return ok(before - after)
	default:
		return fail("ERR unknown command '" + name + "'")
	}
}
