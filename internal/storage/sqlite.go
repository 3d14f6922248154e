package storage

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

	"splice/internal/tensor"
)

// sqliteStore keeps every container in one database file: the single-file
// analog of an archive store, with keys as primary keys.
type sqliteStore struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const sqliteArraySchema = `
CREATE TABLE IF NOT EXISTS arrays (
    key       TEXT PRIMARY KEY,
    container BLOB NOT NULL
);`

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

func openSQLiteStore(location string, create bool) (*sqliteStore, error) {
	path := strings.TrimSpace(location)
	if path == "" {
		return nil, fmt.Errorf("%w: sqlite backend needs a database path", ErrUnavailable)
	}
	if !create {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: stat %s: %v", ErrUnavailable, path, err)
		}
	} else if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create %s: %v", ErrUnavailable, dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite db %s: %v", ErrUnavailable, path, err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if create {
		if _, err := db.Exec(sqliteArraySchema); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init array schema: %w", err)
		}
	}
	return &sqliteStore{db: db, path: path}, nil
}

func newSQLiteWriter(location string) (Writer, error) {
	store, err := openSQLiteStore(location, true)
	if err != nil {
		return nil, err
	}
	return &sqliteWriter{sqliteStore: store}, nil
}

func openSQLiteReader(location string) (Reader, error) {
	store, err := openSQLiteStore(location, false)
	if err != nil {
		return nil, err
	}
	return &sqliteReader{sqliteStore: store}, nil
}

type sqliteWriter struct {
	*sqliteStore
}

func (w *sqliteWriter) Put(ctx context.Context, key string, arr tensor.Array) error {
	ctx = ensureContext(ctx)
	if err := validateKey(key); err != nil {
		return err
	}
	encoded, err := tensor.Encode(arr)
	if err != nil {
		return fmt.Errorf("encode array for key %q: %w", key, err)
	}
	const query = `
INSERT INTO arrays (key, container) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET container = excluded.container`
	if err := retryOnBusy(ctx, func() error {
		_, execErr := w.db.ExecContext(ctx, query, key, encoded)
		return execErr
	}); err != nil {
		return fmt.Errorf("store array for key %q: %w", key, err)
	}
	return nil
}

func (w *sqliteWriter) Location() string { return w.path }
func (w *sqliteWriter) Kind() Kind       { return KindSQLite }

func (w *sqliteWriter) Close() error {
	if w.db == nil {
		return nil
	}
	return w.db.Close()
}

type sqliteReader struct {
	*sqliteStore
}

func (r *sqliteReader) Get(ctx context.Context, key string) (tensor.Array, error) {
	ctx = ensureContext(ctx)
	if err := validateKey(key); err != nil {
		return tensor.Array{}, err
	}
	var encoded []byte
	err := retryOnBusy(ctx, func() error {
		return r.db.QueryRowContext(ctx, `SELECT container FROM arrays WHERE key = ?`, key).Scan(&encoded)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return tensor.Array{}, fmt.Errorf("%w: key %q in %s", ErrNotFound, key, r.path)
	}
	if err != nil {
		return tensor.Array{}, fmt.Errorf("load array for key %q: %w", key, err)
	}
	arr, err := tensor.Decode(encoded)
	if err != nil {
		return tensor.Array{}, fmt.Errorf("decode container for key %q: %w", key, err)
	}
	return arr, nil
}

func (r *sqliteReader) GetRange(ctx context.Context, key string, lo, hi int) (tensor.Array, error) {
	arr, err := r.Get(ctx, key)
	if err != nil {
		return tensor.Array{}, err
	}
	return rangeFromFull(arr, lo, hi)
}

func (r *sqliteReader) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
