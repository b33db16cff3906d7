// Package cache persists token streams and the accepted-duplicate
// baseline in a local SQLite database.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dupecheck/dupecheck/internal/token"
)

// Store wraps the SQLite database behind cache.path. Token rows are
// keyed by unit id and invalidated by content checksum; baseline rows
// are content-derived cluster keys.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS files (
	unit        TEXT PRIMARY KEY,
	checksum    TEXT NOT NULL,
	language    TEXT NOT NULL,
	token_count INTEGER NOT NULL,
	tokens      TEXT NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS baseline (
	cluster_key TEXT PRIMARY KEY,
	created_at  TIMESTAMP NOT NULL
);
`

// Open creates or opens the database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	// modernc.org/sqlite allows one writer; a single connection keeps
	// concurrent scans from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Tokens returns the cached stream for a unit if the stored checksum
// still matches the current content.
func (s *Store) Tokens(unit, checksum string) ([]token.Token, bool, error) {
	var (
		stored  string
		payload []byte
	)
	err := s.db.QueryRow(
		"SELECT checksum, tokens FROM files WHERE unit = ?", unit,
	).Scan(&stored, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query token cache: %w", err)
	}
	if stored != checksum {
		return nil, false, nil
	}

	var tokens []token.Token
	if err := json.Unmarshal(payload, &tokens); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached tokens: %w", err)
	}
	return tokens, true, nil
}

// PutTokens upserts the stream for a unit, replacing any stale row.
func (s *Store) PutTokens(unit, checksum, language string, tokens []token.Token) error {
	payload, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("failed to encode tokens: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO files (unit, checksum, language, token_count, tokens, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(unit) DO UPDATE SET
			checksum    = excluded.checksum,
			language    = excluded.language,
			token_count = excluded.token_count,
			tokens      = excluded.tokens,
			updated_at  = excluded.updated_at`,
		unit, checksum, language, len(tokens), payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	return nil
}

// IsBaselined reports whether a cluster key was accepted by a previous
// baseline update.
func (s *Store) IsBaselined(key string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		"SELECT 1 FROM baseline WHERE cluster_key = ?", key,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query baseline: %w", err)
	}
	return true, nil
}

// ReplaceBaseline swaps the accepted set wholesale, so keys of clusters
// that were since fixed do not linger.
func (s *Store) ReplaceBaseline(keys []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin baseline update: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM baseline"); err != nil {
		return fmt.Errorf("failed to clear baseline: %w", err)
	}

	now := time.Now().UTC()
	for _, key := range keys {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO baseline (cluster_key, created_at) VALUES (?, ?)",
			key, now,
		); err != nil {
			return fmt.Errorf("failed to record baseline key: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit baseline update: %w", err)
	}
	return nil
}

// BaselineSize returns how many cluster keys the baseline holds.
func (s *Store) BaselineSize() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM baseline").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count baseline: %w", err)
	}
	return n, nil
}

// BaselineKeys returns the accepted cluster keys in sorted order.
func (s *Store) BaselineKeys() ([]string, error) {
	rows, err := s.db.Query("SELECT cluster_key FROM baseline ORDER BY cluster_key")
	if err != nil {
		return nil, fmt.Errorf("failed to list baseline: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan baseline key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
