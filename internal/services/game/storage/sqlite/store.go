package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/daemonn69/somnia-jump/internal/platform/storage/sqlitemigrate"
	"github.com/daemonn69/somnia-jump/internal/services/game/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store keeps a single best-score row.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens a SQLite store at the provided path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the underlying database. It is nil-safe.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// LoadBest returns the stored best score, or zero when none was saved.
func (s *Store) LoadBest(ctx context.Context) (int, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	var score int
	err := s.sqlDB.QueryRowContext(ctx, `SELECT score FROM local_best WHERE id = 1`).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load best score: %w", err)
	}
	return score, nil
}

// SaveBest stores score unless a higher one is already recorded.
func (s *Store) SaveBest(ctx context.Context, score int) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if score < 0 {
		return fmt.Errorf("best score must be non-negative: %d", score)
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO local_best (id, score, updated_at) VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    score = MAX(local_best.score, excluded.score),
    updated_at = CASE WHEN excluded.score > local_best.score THEN excluded.updated_at ELSE local_best.updated_at END
`, score, s.now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save best score: %w", err)
	}
	return nil
}
