package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/config"
	"github.com/MeiTetsuH/diffchecker/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS saved_comparisons (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	left_label TEXT NOT NULL DEFAULT '',
	right_label TEXT NOT NULL DEFAULT '',
	payload BLOB,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_saved_comparisons_created_at ON saved_comparisons (created_at);
CREATE INDEX IF NOT EXISTS idx_saved_comparisons_name ON saved_comparisons (name);
`

const selectColumns = `id, name, kind, left_label, right_label, payload, created_at, updated_at`

// ComparisonStore persists saved comparisons in SQLite and keeps at most maxEntries of
// them, evicting the oldest by creation time after every save or import.
type ComparisonStore struct {
	mu         sync.RWMutex
	db         *sql.DB
	logger     zerolog.Logger
	maxEntries int
	now        func() time.Time
	closed     bool
}

// StoreOption customises a ComparisonStore
type StoreOption func(*ComparisonStore)

// WithClock replaces time.Now
func WithClock(now func() time.Time) StoreOption {
	return func(s *ComparisonStore) { s.now = now }
}

// WithMaxEntries overrides the configured quota
func WithMaxEntries(n int) StoreOption {
	return func(s *ComparisonStore) { s.maxEntries = n }
}

// NewComparisonStore opens (creating if needed) the SQLite database and ensures the schema.
func NewComparisonStore(cfg config.StorageConfig, logger zerolog.Logger, opts ...StoreOption) (*ComparisonStore, error) {
	logger = logger.With().Str("component", "ComparisonStore").Logger()
	dsn := cfg.SQLiteDBPath
	logger.Info().Str("db_path", dsn).Msg("Initializing comparison database connection")

	if dsn != ":memory:" {
		dbDir := filepath.Dir(dsn)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error().Err(err).Str("directory", dbDir).Msg("Failed to create database directory")
			return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		logger.Error().Err(err).Str("db_path", dsn).Msg("Failed to open comparison database")
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dsn, err)
	}
	// A single connection serialises writers and keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	s := &ComparisonStore{
		db:         db,
		logger:     logger,
		maxEntries: cfg.MaxSavedComparisons,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxEntries <= 0 {
		s.maxEntries = config.DefaultStorageMaxSavedComparisons
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		logger.Error().Err(err).Msg("Failed to initialize database schema")
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info().Str("path", dsn).Int("max_entries", s.maxEntries).Msg("Comparison database initialized")
	return s, nil
}

// Close closes the database. Every later call reports ErrStorageUnavailable.
func (s *ComparisonStore) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Available reports whether the store can serve requests.
func (s *ComparisonStore) Available() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed && s.db != nil
}

// MaxEntries returns the quota.
func (s *ComparisonStore) MaxEntries() int {
	return s.maxEntries
}

// Save inserts a comparison, filling ID and timestamps when unset, then enforces the quota.
func (s *ComparisonStore) Save(ctx context.Context, rec models.SavedComparison) (*models.SavedComparison, error) {
	if !s.Available() {
		return nil, common.ErrStorageUnavailable
	}
	if strings.TrimSpace(rec.Name) == "" {
		return nil, common.NewValidationError("name", rec.Name, "name cannot be empty")
	}
	if len(rec.Payload) > 0 && !json.Valid(rec.Payload) {
		return nil, common.NewValidationError("payload", len(rec.Payload), "payload must be valid JSON")
	}

	s.fillDefaults(&rec)

	err := s.withDB(true, func(db *sql.DB) error {
		return inTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO saved_comparisons (`+selectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				rec.ID, rec.Name, string(rec.Kind), rec.LeftLabel, rec.RightLabel, []byte(rec.Payload),
				rec.CreatedAt.UnixMilli(), rec.UpdatedAt.UnixMilli()); err != nil {
				return fmt.Errorf("failed to insert comparison: %w", err)
			}
			return s.enforceQuota(ctx, tx)
		})
	})
	if err != nil {
		s.logger.Error().Err(err).Str("id", rec.ID).Msg("Failed to save comparison")
		return nil, err
	}

	s.logger.Info().Str("id", rec.ID).Str("name", rec.Name).Msg("Saved comparison")
	return &rec, nil
}

// LoadByID returns one comparison or ErrNotFound.
func (s *ComparisonStore) LoadByID(ctx context.Context, id string) (*models.SavedComparison, error) {
	var rec *models.SavedComparison
	err := s.withDB(false, func(db *sql.DB) error {
		var err error
		rec, err = scanComparison(db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM saved_comparisons WHERE id = ?`, id))
		return err
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, common.WrapErrorf(common.ErrNotFound, "comparison %s", id)
	case errors.Is(err, common.ErrStorageUnavailable):
		return nil, err
	case err != nil:
		s.logger.Error().Err(err).Str("id", id).Msg("Failed to load comparison")
		return nil, fmt.Errorf("failed to load comparison %s: %w", id, err)
	}
	return rec, nil
}

// ListAll returns every comparison, newest first. An unavailable store yields an empty list.
func (s *ComparisonStore) ListAll(ctx context.Context) ([]models.SavedComparison, error) {
	return s.list(ctx, 0)
}

// Recent returns the n newest comparisons.
func (s *ComparisonStore) Recent(ctx context.Context, n int) ([]models.SavedComparison, error) {
	if n <= 0 {
		return []models.SavedComparison{}, nil
	}
	return s.list(ctx, n)
}

func (s *ComparisonStore) list(ctx context.Context, limit int) ([]models.SavedComparison, error) {
	query := `SELECT ` + selectColumns + ` FROM saved_comparisons ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	out := []models.SavedComparison{}
	err := s.withDB(false, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to list comparisons: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanComparison(rows)
			if err != nil {
				return fmt.Errorf("failed to scan comparison: %w", err)
			}
			out = append(out, *rec)
		}
		return rows.Err()
	})
	if errors.Is(err, common.ErrStorageUnavailable) {
		if s != nil {
			s.logger.Warn().Msg("Comparison store unavailable, returning empty list")
		}
		return []models.SavedComparison{}, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list comparisons")
		return nil, err
	}
	return out, nil
}

// SearchByName returns comparisons whose name contains term, ignoring case. An empty term matches nothing.
func (s *ComparisonStore) SearchByName(ctx context.Context, term string) ([]models.SavedComparison, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return []models.SavedComparison{}, nil
	}

	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.SavedComparison{}
	for _, rec := range all {
		if strings.Contains(strings.ToLower(rec.Name), term) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Count returns the number of stored comparisons.
func (s *ComparisonStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.withDB(false, func(db *sql.DB) error {
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM saved_comparisons`).Scan(&n); err != nil {
			return fmt.Errorf("failed to count comparisons: %w", err)
		}
		return nil
	})
	return n, err
}

// DeleteByID removes one comparison or reports ErrNotFound.
func (s *ComparisonStore) DeleteByID(ctx context.Context, id string) error {
	err := s.withDB(true, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, `DELETE FROM saved_comparisons WHERE id = ?`, id)
		if err != nil {
			s.logger.Error().Err(err).Str("id", id).Msg("Failed to delete comparison")
			return fmt.Errorf("failed to delete comparison %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return common.WrapErrorf(common.ErrNotFound, "comparison %s", id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info().Str("id", id).Msg("Deleted comparison")
	return nil
}

// Update changes the name or labels of a comparison and bumps UpdatedAt.
func (s *ComparisonStore) Update(ctx context.Context, id string, upd models.ComparisonUpdate) (*models.SavedComparison, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, common.NewValidationError("name", *upd.Name, "name cannot be empty")
	}

	rec, err := s.LoadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		rec.Name = *upd.Name
	}
	if upd.LeftLabel != nil {
		rec.LeftLabel = *upd.LeftLabel
	}
	if upd.RightLabel != nil {
		rec.RightLabel = *upd.RightLabel
	}
	rec.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)

	err = s.withDB(true, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx,
			`UPDATE saved_comparisons SET name = ?, left_label = ?, right_label = ?, updated_at = ? WHERE id = ?`,
			rec.Name, rec.LeftLabel, rec.RightLabel, rec.UpdatedAt.UnixMilli(), id)
		if err != nil {
			return fmt.Errorf("failed to update comparison %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return common.WrapErrorf(common.ErrNotFound, "comparison %s", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Import upserts records by ID and then enforces the quota. It returns how many were written.
func (s *ComparisonStore) Import(ctx context.Context, records []models.SavedComparison) (int, error) {
	written := 0
	err := s.withDB(true, func(db *sql.DB) error {
		return inTx(ctx, db, func(tx *sql.Tx) error {
			for _, rec := range records {
				if strings.TrimSpace(rec.Name) == "" {
					s.logger.Warn().Str("id", rec.ID).Msg("Skipping imported comparison without a name")
					continue
				}
				s.fillDefaults(&rec)
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO saved_comparisons (`+selectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
					ON CONFLICT(id) DO UPDATE SET
						name = excluded.name,
						kind = excluded.kind,
						left_label = excluded.left_label,
						right_label = excluded.right_label,
						payload = excluded.payload,
						created_at = excluded.created_at,
						updated_at = excluded.updated_at`,
					rec.ID, rec.Name, string(rec.Kind), rec.LeftLabel, rec.RightLabel, []byte(rec.Payload),
					rec.CreatedAt.UnixMilli(), rec.UpdatedAt.UnixMilli()); err != nil {
					return fmt.Errorf("failed to import comparison %s: %w", rec.ID, err)
				}
				written++
			}
			return s.enforceQuota(ctx, tx)
		})
	})
	if err != nil {
		if !errors.Is(err, common.ErrStorageUnavailable) {
			s.logger.Error().Err(err).Msg("Import failed")
		}
		return 0, err
	}

	s.logger.Info().Int("imported", written).Msg("Imported comparisons")
	return written, nil
}

// withDB runs fn while holding the store lock, exclusively when exclusive is set. The
// closed check happens under that same lock, so Close cannot slip in between.
func (s *ComparisonStore) withDB(exclusive bool, fn func(*sql.DB) error) error {
	if s == nil {
		return common.ErrStorageUnavailable
	}
	if exclusive {
		s.mu.Lock()
		defer s.mu.Unlock()
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	if s.closed || s.db == nil {
		return common.ErrStorageUnavailable
	}
	return fn(s.db)
}

// enforceQuota deletes the oldest rows beyond maxEntries.
func (s *ComparisonStore) enforceQuota(ctx context.Context, tx *sql.Tx) error {
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM saved_comparisons`).Scan(&n); err != nil {
		return fmt.Errorf("failed to count comparisons: %w", err)
	}
	overflow := n - s.maxEntries
	if overflow <= 0 {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM saved_comparisons WHERE rowid IN (
			SELECT rowid FROM saved_comparisons ORDER BY created_at ASC, rowid ASC LIMIT ?
		)`, overflow); err != nil {
		return fmt.Errorf("failed to evict old comparisons: %w", err)
	}
	s.logger.Debug().Int("evicted", overflow).Msg("Evicted oldest comparisons")
	return nil
}

func inTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *ComparisonStore) fillDefaults(rec *models.SavedComparison) {
	now := s.now().UTC().Truncate(time.Millisecond)
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Kind == "" {
		rec.Kind = models.ComparisonText
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	} else {
		rec.CreatedAt = rec.CreatedAt.UTC().Truncate(time.Millisecond)
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	} else {
		rec.UpdatedAt = rec.UpdatedAt.UTC().Truncate(time.Millisecond)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComparison(r rowScanner) (*models.SavedComparison, error) {
	var (
		rec                  models.SavedComparison
		kind                 string
		payload              []byte
		createdAt, updatedAt int64
	)
	if err := r.Scan(&rec.ID, &rec.Name, &kind, &rec.LeftLabel, &rec.RightLabel, &payload, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	rec.Kind = models.ComparisonKind(kind)
	if len(payload) > 0 {
		rec.Payload = payload
	}
	rec.CreatedAt = time.UnixMilli(createdAt).UTC()
	rec.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &rec, nil
}
