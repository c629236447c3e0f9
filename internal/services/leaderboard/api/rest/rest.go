// Package rest exposes the leaderboard over JSON HTTP.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/daemonn69/somnia-jump/internal/platform/errors"
	"github.com/daemonn69/somnia-jump/internal/platform/httpx"
	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/service"
)

// Path is where the handler is mounted.
const Path = "/api/leaderboard"

const maxBodyBytes = 1 << 20

// Leaderboard is the service surface the handler needs.
type Leaderboard interface {
	Top(ctx context.Context, limit int) (service.TopResult, error)
	Submit(ctx context.Context, identity string, score float64) (service.SubmitResult, error)
}

// Entry is one ranked row on the wire.
type Entry struct {
	Address   string `json:"address"`
	Score     int64  `json:"score"`
	Timestamp int64  `json:"timestamp"`
}

// TopResponse is returned by GET.
type TopResponse struct {
	Leaderboard []Entry `json:"leaderboard"`
	Storage     string  `json:"storage"`
}

// SubmitRequest is the POST body. Score stays raw so non-numeric values can
// be told apart from a missing field.
type SubmitRequest struct {
	Address string          `json:"address"`
	Score   json.RawMessage `json:"score"`
}

// SubmitResponse is returned by a successful POST.
type SubmitResponse struct {
	Success      bool   `json:"success"`
	NewHighScore bool   `json:"newHighScore"`
	Storage      string `json:"storage"`
}

// Handler serves GET and POST on Path.
type Handler struct {
	board Leaderboard
}

// NewHandler builds a handler over board.
func NewHandler(board Leaderboard) *Handler {
	return &Handler{board: board}
}

// Register mounts the handler on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle(Path, h)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.top(w, r)
	case http.MethodPost:
		h.submit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		_ = httpx.WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func parseLimit(r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return service.DefaultLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, false
	}
	return limit, true
}

func (h *Handler) top(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r)
	if !ok {
		_ = httpx.WriteJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	result, err := h.board.Top(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entries := make([]Entry, 0, len(result.Entries))
	for _, e := range result.Entries {
		entries = append(entries, Entry{
			Address:   e.Identity,
			Score:     e.Score,
			Timestamp: e.RecordedAt.UnixMilli(),
		})
	}
	_ = httpx.WriteJSON(w, http.StatusOK, TopResponse{Leaderboard: entries, Storage: string(result.Storage)})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		_ = httpx.WriteJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Address) == "" {
		_ = httpx.WriteJSONError(w, http.StatusBadRequest, "address is required")
		return
	}
	score, ok := parseScore(req.Score)
	if !ok {
		_ = httpx.WriteJSONError(w, http.StatusBadRequest, "score must be a number")
		return
	}

	result, err := h.board.Submit(r.Context(), req.Address, score)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, SubmitResponse{
		Success:      true,
		NewHighScore: result.Accepted,
		Storage:      string(result.Storage),
	})
}

func parseScore(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var score float64
	if err := json.Unmarshal(raw, &score); err != nil {
		return 0, false
	}
	return score, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.GetCode(err)
	status := code.HTTPStatus()
	message := apperrors.PublicMessage(err)
	if status >= http.StatusInternalServerError {
		log.Printf("leaderboard %s %s: code=%s: %v", r.Method, r.URL.Path, code, err)
		message = "internal server error"
	}
	_ = httpx.WriteJSONError(w, status, message)
}
