package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/service"
	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/storage"
)

type fakeBoard struct {
	topResult    service.TopResult
	topErr       error
	submitResult service.SubmitResult
	submitErr    error

	limit    int
	identity string
	score    float64
}

func (f *fakeBoard) Top(_ context.Context, limit int) (service.TopResult, error) {
	f.limit = limit
	return f.topResult, f.topErr
}

func (f *fakeBoard) Submit(_ context.Context, identity string, score float64) (service.SubmitResult, error) {
	f.identity = identity
	f.score = score
	return f.submitResult, f.submitErr
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return payload["error"]
}

func TestGetLeaderboard(t *testing.T) {
	at := time.UnixMilli(1772366400000).UTC()
	board := &fakeBoard{topResult: service.TopResult{
		Entries: []storage.Entry{{Identity: "0xA", Score: 90, RecordedAt: at}},
		Storage: storage.KindRedis,
	}}
	rec := do(t, NewHandler(board), http.MethodGet, Path, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp TopResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Storage != "redis" || len(resp.Leaderboard) != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	if got := resp.Leaderboard[0]; got.Address != "0xA" || got.Score != 90 || got.Timestamp != 1772366400000 {
		t.Fatalf("entry = %+v", got)
	}
	if board.limit != service.DefaultLimit {
		t.Fatalf("limit = %d, want default", board.limit)
	}
}

func TestGetLeaderboardEmptyIsArray(t *testing.T) {
	board := &fakeBoard{topResult: service.TopResult{Storage: storage.KindMemory}}
	rec := do(t, NewHandler(board), http.MethodGet, Path, "")
	if !strings.Contains(rec.Body.String(), `"leaderboard":[]`) {
		t.Fatalf("body = %s, want empty array", rec.Body.String())
	}
}

func TestGetLeaderboardLimit(t *testing.T) {
	tests := []struct {
		query      string
		wantStatus int
		wantLimit  int
	}{
		{query: "?limit=25", wantStatus: http.StatusOK, wantLimit: 25},
		{query: "?limit=abc", wantStatus: http.StatusBadRequest},
		{query: "?limit=0", wantStatus: http.StatusBadRequest},
		{query: "?limit=-3", wantStatus: http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			board := &fakeBoard{}
			rec := do(t, NewHandler(board), http.MethodGet, Path+tc.query, "")
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusOK && board.limit != tc.wantLimit {
				t.Fatalf("limit = %d, want %d", board.limit, tc.wantLimit)
			}
		})
	}
}

func TestPostLeaderboard(t *testing.T) {
	board := &fakeBoard{submitResult: service.SubmitResult{Accepted: true, Storage: storage.KindKV}}
	rec := do(t, NewHandler(board), http.MethodPost, Path, `{"address":"0xA","score":123.7}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp SubmitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || !resp.NewHighScore || resp.Storage != "kv" {
		t.Fatalf("resp = %+v", resp)
	}
	if board.identity != "0xA" || board.score != 123.7 {
		t.Fatalf("submitted %q=%v", board.identity, board.score)
	}
}

func TestPostLeaderboardBadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "invalid json", body: `{`, wantMsg: "invalid JSON body"},
		{name: "missing address", body: `{"score":1}`, wantMsg: "address is required"},
		{name: "blank address", body: `{"address":"  ","score":1}`, wantMsg: "address is required"},
		{name: "missing score", body: `{"address":"0xA"}`, wantMsg: "score must be a number"},
		{name: "null score", body: `{"address":"0xA","score":null}`, wantMsg: "score must be a number"},
		{name: "string score", body: `{"address":"0xA","score":"50"}`, wantMsg: "score must be a number"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			board := &fakeBoard{}
			rec := do(t, NewHandler(board), http.MethodPost, Path, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if msg := decodeError(t, rec); msg != tc.wantMsg {
				t.Fatalf("error = %q, want %q", msg, tc.wantMsg)
			}
		})
	}
}

func TestPostLeaderboardServiceValidation(t *testing.T) {
	svc := service.NewWithBackend(service.Config{}, service.Backend{})
	rec := do(t, NewHandler(svc), http.MethodPost, Path, `{"address":"0xA","score":-5}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "score must be a non-negative number" {
		t.Fatalf("error = %q", msg)
	}
}

func TestUnexpectedErrorsAreHidden(t *testing.T) {
	board := &fakeBoard{
		topErr:    errors.New("dial tcp 10.0.0.1:6379: secret detail"),
		submitErr: errors.New("boom"),
	}
	h := NewHandler(board)

	for _, rec := range []*httptest.ResponseRecorder{
		do(t, h, http.MethodGet, Path, ""),
		do(t, h, http.MethodPost, Path, `{"address":"0xA","score":1}`),
	} {
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		if msg := decodeError(t, rec); msg != "internal server error" {
			t.Fatalf("error = %q, want generic message", msg)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, NewHandler(&fakeBoard{}), http.MethodDelete, Path, "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, POST" {
		t.Fatalf("allow = %q", allow)
	}
}

func TestRoundTripWithMemoryService(t *testing.T) {
	svc := service.NewWithBackend(service.Config{}, service.Backend{})
	mux := http.NewServeMux()
	NewHandler(svc).Register(mux)

	for _, body := range []string{
		`{"address":"0xA","score":50}`,
		`{"address":"0xa","score":30}`,
	} {
		if rec := do(t, mux, http.MethodPost, Path, body); rec.Code != http.StatusOK {
			t.Fatalf("post %s: status %d", body, rec.Code)
		}
	}
	rec := do(t, mux, http.MethodGet, Path, "")
	var resp TopResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Leaderboard) != 1 || resp.Leaderboard[0].Score != 50 || resp.Storage != "memory" {
		t.Fatalf("resp = %+v", resp)
	}
}
