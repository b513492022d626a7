// Package sqlite implements the storage.Storage interface backed by a
// local SQLite database using the pure-Go ncruces/go-sqlite3 driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	sqlite3 "github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/tetratelabs/wazero"
)

// setupWASMCache configures a persistent compilation cache for the
// WASM-based SQLite driver. Without this, every process start pays
// ~100-200ms to recompile the SQLite WASM module.
func setupWASMCache() {
	cacheDir := filepath.Join(os.TempDir(), "tacks-wazero-cache")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return // fall back to in-memory compilation
	}
	cache, err := wazero.NewCompilationCacheWithDir(cacheDir)
	if err != nil {
		return
	}
	sqlite3.RuntimeConfig = wazero.NewRuntimeConfig().WithCompilationCache(cache)
}

func init() {
	setupWASMCache()
}

// Store provides SQLite-backed task storage.
type Store struct {
	db   *sql.DB
	path string

	// In-memory databases only exist on a single connection, so we
	// pin one and serialize access to it.
	memConn *sql.Conn
	memMu   sync.Mutex
}

// New creates a new SQLite storage backend at the given path, creating
// the database and running any pending migrations as needed.
func New(ctx context.Context, path string) (*Store, error) {
	isMemory := strings.Contains(path, ":memory:")

	if !isMemory {
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	var connStr string
	switch {
	case isMemory:
		// In-memory databases are per-connection; the pool is pinned
		// to one connection below so the schema survives.
		connStr = "file::memory:?_txlock=immediate&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	case strings.Contains(path, "?"):
		connStr = path
	default:
		// _txlock=immediate makes every write transaction take the
		// write lock up front, so lock contention surfaces at BEGIN
		// (where we retry) instead of at COMMIT.
		connStr = "file:" + path + "?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite"
	}

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, path: path}

	if isMemory {
		// Pin a single connection so the schema survives.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		conn, err := db.Conn(ctx)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to pin memory connection: %w", err)
		}
		store.memConn = conn
	} else {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := store.exec(ctx, schema); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if err := store.runMigrations(ctx); err != nil {
		store.Close()
		return nil, err
	}

	return store, nil
}

// Exists reports whether a database file is already present at path.
// Used by commands that must not create a store as a side effect.
func Exists(path string) bool {
	if strings.Contains(path, ":memory:") {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// exec runs a statement on the pinned connection for in-memory
// databases, or the pool otherwise.
func (s *Store) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if s.memConn != nil {
		s.memMu.Lock()
		defer s.memMu.Unlock()
		return s.memConn.ExecContext(ctx, query, args...)
	}
	return s.db.ExecContext(ctx, query, args...)
}

func (s *Store) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if s.memConn != nil {
		s.memMu.Lock()
		defer s.memMu.Unlock()
		return s.memConn.QueryContext(ctx, query, args...)
	}
	return s.db.QueryContext(ctx, query, args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	if s.memConn != nil {
		s.memMu.Lock()
		defer s.memMu.Unlock()
		return s.memConn.QueryRowContext(ctx, query, args...)
	}
	return s.db.QueryRowContext(ctx, query, args...)
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// UnderlyingDB exposes the raw handle for tests that need to inspect
// schema state directly.
func (s *Store) UnderlyingDB() *sql.DB {
	return s.db
}

// Close closes the database connection, checkpointing the WAL so the
// main database file is self-contained.
func (s *Store) Close() error {
	if s.memConn != nil {
		s.memConn.Close()
		s.memConn = nil
	} else if s.db != nil {
		s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
