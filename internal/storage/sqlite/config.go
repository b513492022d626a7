package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tacksdev/tacks/internal/storage"
)

// SetConfig stores a key/value pair, overwriting any existing value.
func (s *Store) SetConfig(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: config key is required", storage.ErrInvalidValue)
	}
	_, err := s.exec(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return wrapDBError("set config", err)
	}
	return nil
}

// GetConfig retrieves a config value. Missing keys map to ErrNotFound.
func (s *Store) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := s.queryRow(ctx,
		"SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("config %s: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return "", wrapDBError("get config", err)
	}
	return value, nil
}

// getConfigTx reads a config value inside an existing transaction.
// Returns sql.ErrNoRows unchanged so callers can distinguish a missing
// key from a query failure.
func getConfigTx(ctx context.Context, tx *sql.Tx, key string) (string, error) {
	var value string
	err := tx.QueryRowContext(ctx,
		"SELECT value FROM config WHERE key = ?", key).Scan(&value)
	return value, err
}
