package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	apperrors "github.com/daemonn69/somnia-jump/internal/platform/errors"
	"github.com/daemonn69/somnia-jump/internal/services/game/engine"
	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/api/rest"
	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/service"
)

func newTestServer(t *testing.T) *Client {
	t.Helper()
	svc := service.NewWithBackend(service.Config{}, service.Backend{})
	mux := http.NewServeMux()
	rest.NewHandler(svc).Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	c, err := New(server.URL+"/", server.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNewRequiresURL(t *testing.T) {
	if _, err := New("  ", nil); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestSubmitAndTop(t *testing.T) {
	c := newTestServer(t)
	ctx := context.Background()

	first, err := c.Submit(ctx, "0xA", 40)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !first.Success || !first.NewHighScore || first.Storage != "memory" {
		t.Fatalf("first = %+v", first)
	}
	second, err := c.Submit(ctx, "0xa", 20)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if second.NewHighScore {
		t.Fatal("lower score should not be a new high score")
	}

	top, err := c.Top(ctx, 5)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top.Leaderboard) != 1 || top.Leaderboard[0].Score != 40 {
		t.Fatalf("top = %+v", top)
	}
}

func TestSubmitInvalidInput(t *testing.T) {
	c := newTestServer(t)
	_, err := c.Submit(context.Background(), "", 10)
	if apperrors.GetCode(err) != apperrors.CodeInvalidInput {
		t.Fatalf("code = %v, want INVALID_INPUT", apperrors.GetCode(err))
	}
}

func TestServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
	}))
	defer server.Close()
	c, err := New(server.URL, server.Client())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = c.Top(context.Background(), 0)
	if apperrors.GetCode(err) != apperrors.CodeBackendUnavailable {
		t.Fatalf("code = %v, want BACKEND_UNAVAILABLE", apperrors.GetCode(err))
	}
}

type recordingSink struct {
	mu     sync.Mutex
	scores map[string]int
	err    error
}

func (s *recordingSink) SubmitScore(_ context.Context, identity string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scores == nil {
		s.scores = make(map[string]int)
	}
	s.scores[identity] = score
	return s.err
}

func TestSubmitterIsEngineCollaborator(t *testing.T) {
	var _ engine.ScoreSubmitter = (*Submitter)(nil)

	sink := &recordingSink{}
	s := NewSubmitter(sink)
	s.SubmitScore("0xA", 12)
	s.SubmitScore("0xB", 7)
	s.Wait()

	if sink.scores["0xA"] != 12 || sink.scores["0xB"] != 7 {
		t.Fatalf("scores = %v", sink.scores)
	}
}

func TestSubmitterSwallowsErrors(t *testing.T) {
	calls := 0
	s := NewSubmitter(SinkFunc(func(context.Context, string, int) error {
		calls++
		return errors.New("offline")
	}))
	s.SubmitScore("0xA", 1)
	s.Wait()
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestSubmitterWithClient(t *testing.T) {
	c := newTestServer(t)
	s := NewSubmitter(c)
	s.SubmitScore("0xC", 99)
	s.Wait()

	top, err := c.Top(context.Background(), 0)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top.Leaderboard) != 1 || top.Leaderboard[0].Address != "0xC" {
		t.Fatalf("top = %+v", top)
	}
}
