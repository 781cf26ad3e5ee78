package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const schema = `
CREATE TABLE IF NOT EXISTS user_languages (
	user_id    INTEGER PRIMARY KEY,
	language   TEXT    NOT NULL,
	updated_at TEXT    NOT NULL
)`

// SQLite is a Store backed by a SQLite database file.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the preference database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create prefs directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string { return s.path }

// Get returns the stored language for userID.
func (s *SQLite) Get(ctx context.Context, userID int64) (string, error) {
	var code string
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT language FROM user_languages WHERE user_id = ?`, userID).Scan(&code)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get preference for %d: %w", userID, err)
	}
	return code, nil
}

// Set stores code for userID, replacing any previous value.
func (s *SQLite) Set(ctx context.Context, userID int64, code string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	err := retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO user_languages (user_id, language, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(user_id) DO UPDATE SET language = excluded.language, updated_at = excluded.updated_at`,
			userID, code, now)
		return err
	})
	if err != nil {
		return fmt.Errorf("set preference for %d: %w", userID, err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging preference database: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
