package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	apperrors "github.com/daemonn69/somnia-jump/internal/platform/errors"
	platformotel "github.com/daemonn69/somnia-jump/internal/platform/otel"
	"github.com/daemonn69/somnia-jump/internal/platform/timeouts"
	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/storage"
	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/storage/kv"
	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/storage/memory"
	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/storage/redis"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultLimit is the number of entries Top returns when no limit is given.
const DefaultLimit = 10

// Config selects and tunes the backend.
type Config struct {
	RedisURL string
	KVURL    string
	KVToken  string
	Key      string
	Capacity int
	Clock    func() time.Time

	// DialTimeout bounds each reachability check. Zero means
	// timeouts.BackendDial.
	DialTimeout time.Duration
}

// Kind reports which backend cfg selects: Redis when a URL is set, else
// the KV REST API when both its URL and token are set, else memory.
func (c Config) Kind() storage.Kind {
	switch {
	case strings.TrimSpace(c.RedisURL) != "":
		return storage.KindRedis
	case strings.TrimSpace(c.KVURL) != "" && strings.TrimSpace(c.KVToken) != "":
		return storage.KindKV
	default:
		return storage.KindMemory
	}
}

// Backend is a durable ranked store and the kind reported when it serves.
type Backend struct {
	Kind  storage.Kind
	Store storage.RankedStore
}

// OpenBackend builds the durable backend cfg selects. It returns a zero
// Backend when neither Redis nor the KV REST API is configured. No network
// I/O happens here.
func OpenBackend(cfg Config) (Backend, error) {
	switch cfg.Kind() {
	case storage.KindRedis:
		store, err := redis.Open(cfg.RedisURL, cfg.Key)
		if err != nil {
			return Backend{}, fmt.Errorf("open redis backend: %w", err)
		}
		return Backend{Kind: storage.KindRedis, Store: store}, nil
	case storage.KindKV:
		store, err := kv.Open(cfg.KVURL, cfg.KVToken, cfg.Key)
		if err != nil {
			return Backend{}, fmt.Errorf("open kv backend: %w", err)
		}
		return Backend{Kind: storage.KindKV, Store: store}, nil
	default:
		return Backend{}, nil
	}
}

// TopResult is a ranked read.
type TopResult struct {
	Entries []storage.Entry
	Storage storage.Kind
}

// SubmitResult reports whether a submission became the identity's best.
type SubmitResult struct {
	Accepted bool
	Storage  storage.Kind
}

// Service serves leaderboard requests.
type Service struct {
	backend  Backend
	capacity int
	clock    func() time.Time
	dial     time.Duration
	tracer   trace.Tracer
	fallback *memory.Store

	mu    sync.Mutex
	board *storage.RankedBoard
}

// New selects the backend from cfg and builds the service.
func New(cfg Config) (*Service, error) {
	backend, err := OpenBackend(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithBackend(cfg, backend), nil
}

// NewWithBackend builds the service over an explicit backend. A zero Backend
// serves everything from memory.
func NewWithBackend(cfg Config, backend Backend) *Service {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = storage.DefaultCapacity
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = timeouts.BackendDial
	}
	return &Service{
		backend:  backend,
		capacity: capacity,
		clock:    clock,
		dial:     dial,
		tracer:   platformotel.Tracer("leaderboard"),
		fallback: memory.New(capacity),
	}
}

// Kind reports the configured durable backend, or memory when none is set.
func (s *Service) Kind() storage.Kind {
	if s.backend.Store == nil {
		return storage.KindMemory
	}
	return s.backend.Kind
}

// durable returns the durable board, verifying reachability on first use and
// after any failure. The lock only guards the cached board; pings run
// unlocked and are bounded by the dial timeout.
func (s *Service) durable(ctx context.Context) (*storage.RankedBoard, error) {
	if s.backend.Store == nil {
		return nil, nil
	}
	s.mu.Lock()
	board := s.board
	s.mu.Unlock()
	if board != nil {
		return board, nil
	}

	if err := s.ping(ctx, "connect"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil {
		s.board = storage.NewRankedBoard(s.backend.Store, s.capacity)
	}
	return s.board, nil
}

func (s *Service) ping(ctx context.Context, op string) error {
	pingCtx, cancel := context.WithTimeout(ctx, s.dial)
	defer cancel()
	if err := s.backend.Store.Ping(pingCtx); err != nil {
		return s.unavailable(op, err)
	}
	return nil
}

func (s *Service) unavailable(op string, err error) error {
	kind := string(s.backend.Kind)
	return apperrors.Wrap(apperrors.CodeBackendUnavailable, op+" "+kind, err).
		WithMetadata("backend", kind).
		WithMetadata("op", op)
}

func (s *Service) markDown(board *storage.RankedBoard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == board {
		s.board = nil
	}
}

func (s *Service) degrade(span trace.Span, op string, err error) {
	log.Printf("leaderboard: %s failed, serving from memory: %v %s", op, err, apperrors.LogFields(err))
	span.RecordError(err)
	span.SetAttributes(attribute.Bool("leaderboard.fallback", true))
}

// Top returns up to limit entries by descending score. A non-positive limit
// becomes DefaultLimit; limits above capacity are clamped. Durable failures
// are served from memory.
func (s *Service) Top(ctx context.Context, limit int) (TopResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > s.capacity {
		limit = s.capacity
	}
	ctx, span := s.tracer.Start(ctx, "leaderboard.Top", trace.WithAttributes(attribute.Int("leaderboard.limit", limit)))
	defer span.End()

	board, err := s.durable(ctx)
	if err != nil {
		s.degrade(span, "top", err)
	} else if board != nil {
		entries, err := board.Top(ctx, limit)
		if err == nil {
			span.SetAttributes(attribute.String("leaderboard.storage", string(s.backend.Kind)))
			return TopResult{Entries: entries, Storage: s.backend.Kind}, nil
		}
		s.markDown(board)
		s.degrade(span, "top", s.unavailable("top", err))
	}

	entries, err := s.fallback.Top(ctx, limit)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return TopResult{}, fmt.Errorf("read memory leaderboard: %w", err)
	}
	span.SetAttributes(attribute.String("leaderboard.storage", string(storage.KindMemory)))
	return TopResult{Entries: entries, Storage: storage.KindMemory}, nil
}

// validate checks a raw submission and returns the stored entry.
func (s *Service) validate(identity string, score float64) (storage.Entry, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return storage.Entry{}, apperrors.New(apperrors.CodeInvalidInput, "address is required")
	}
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
		return storage.Entry{}, apperrors.New(apperrors.CodeInvalidInput, "score must be a non-negative number")
	}
	if score >= float64(math.MaxInt64) {
		return storage.Entry{}, apperrors.New(apperrors.CodeInvalidInput, "score is too large")
	}
	return storage.Entry{
		Identity:   identity,
		Score:      int64(math.Floor(score)),
		RecordedAt: s.clock().UTC(),
	}, nil
}

// Submit records score for identity when it beats the stored best.
func (s *Service) Submit(ctx context.Context, identity string, score float64) (SubmitResult, error) {
	ctx, span := s.tracer.Start(ctx, "leaderboard.Submit")
	defer span.End()

	entry, err := s.validate(identity, score)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return SubmitResult{}, err
	}
	span.SetAttributes(attribute.Int64("leaderboard.score", entry.Score))

	board, err := s.durable(ctx)
	if err != nil {
		s.degrade(span, "submit", err)
	} else if board != nil {
		accepted, err := board.Submit(ctx, entry)
		if err == nil {
			span.SetAttributes(
				attribute.String("leaderboard.storage", string(s.backend.Kind)),
				attribute.Bool("leaderboard.accepted", accepted),
			)
			return SubmitResult{Accepted: accepted, Storage: s.backend.Kind}, nil
		}
		s.markDown(board)
		s.degrade(span, "submit", s.unavailable("submit", err))
	}

	accepted, err := s.fallback.Submit(ctx, entry)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return SubmitResult{}, fmt.Errorf("write memory leaderboard: %w", err)
	}
	span.SetAttributes(
		attribute.String("leaderboard.storage", string(storage.KindMemory)),
		attribute.Bool("leaderboard.accepted", accepted),
	)
	return SubmitResult{Accepted: accepted, Storage: storage.KindMemory}, nil
}

// Ping checks the durable backend. It succeeds trivially without one.
func (s *Service) Ping(ctx context.Context) error {
	if s.backend.Store == nil {
		return nil
	}
	return s.ping(ctx, "ping")
}

// Close releases the durable backend.
func (s *Service) Close() error {
	if s == nil || s.backend.Store == nil {
		return nil
	}
	return s.backend.Store.Close()
}
