// Package manifest records which pages a build produced so later builds can
// skip unchanged content and remove pages whose symbols disappeared.
package manifest

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Entry is one recorded page.
type Entry struct {
	Path      string
	Symbol    string
	Hash      string
	RunID     string
	WrittenAt time.Time
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("manifest path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("manifest path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create manifest directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts when watch mode rebuilds quickly.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite manifest %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite manifest %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// BeginRun returns a fresh identifier for one build.
func (s *Store) BeginRun() string {
	return uuid.NewString()
}

// Hash is the content hash stored for a page.
func Hash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Unchanged reports whether path was last recorded with hash.
func (s *Store) Unchanged(path, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored string
	err := s.withRetry("lookup page", func() error {
		return s.db.QueryRow(`SELECT hash FROM pages WHERE path = ?`, path).Scan(&stored)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored == hash, nil
}

// Record marks path as produced by runID with the given content hash.
func (s *Store) Record(runID string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.WrittenAt.IsZero() {
		e.WrittenAt = time.Now().UTC()
	}
	query := `
INSERT INTO pages (path, symbol, hash, run_id, written_at_utc)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
  symbol=excluded.symbol,
  run_id=excluded.run_id,
  written_at_utc=CASE WHEN pages.hash = excluded.hash THEN pages.written_at_utc ELSE excluded.written_at_utc END,
  hash=excluded.hash
`
	return s.withRetry("record page", func() error {
		_, err := s.db.Exec(query, e.Path, e.Symbol, e.Hash, runID, e.WrittenAt.UTC().Format(time.RFC3339Nano))
		return err
	})
}

// Stale lists pages not produced by runID, sorted by path.
func (s *Store) Stale(runID string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("load stale pages", func() error {
		var qErr error
		rows, qErr = s.db.Query(`
SELECT path, symbol, hash, run_id, written_at_utc
FROM pages
WHERE run_id <> ?
ORDER BY path ASC`, runID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e     Entry
			tsRaw string
		)
		if err := rows.Scan(&e.Path, &e.Symbol, &e.Hash, &e.RunID, &tsRaw); err != nil {
			return nil, fmt.Errorf("scan page row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse page timestamp %q: %w", tsRaw, err)
		}
		e.WrittenAt = ts.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate page rows: %w", err)
	}
	return entries, nil
}

// Forget removes the given pages from the manifest.
func (s *Store) Forget(paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withRetry("forget pages", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		for _, p := range paths {
			if _, err := tx.Exec(`DELETE FROM pages WHERE path = ?`, p); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	})
}

// Len returns the number of recorded pages.
func (s *Store) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := s.withRetry("count pages", func() error {
		return s.db.QueryRow(`SELECT COUNT(*) FROM pages`).Scan(&n)
	})
	return n, err
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
