package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/tacksdev/tacks/internal/storage"
)

// migration brings the schema from version-1 to version. Each step
// runs in its own transaction and must be idempotent: re-applying a
// step that already ran (e.g. after a crash between the DDL and the
// version bump) is a no-op.
type migration struct {
	version int
	name    string
	apply   func(ctx context.Context, tx *sql.Tx) error
}

// Ordered, append-only. Never reorder or renumber entries.
var migrations = []migration{
	{
		version: 1,
		name:    "add close_reason column to tasks",
		apply: func(ctx context.Context, tx *sql.Tx) error {
			return addColumnIfMissing(ctx, tx, "tasks", "close_reason", "TEXT")
		},
	},
	{
		version: 2,
		name:    "add notes column to tasks",
		apply: func(ctx context.Context, tx *sql.Tx) error {
			return addColumnIfMissing(ctx, tx, "tasks", "notes", "TEXT")
		},
	},
}

// SchemaVersion is the version a fully migrated store reports.
const SchemaVersion = 2

// addColumnIfMissing appends a nullable column. Checking
// pragma_table_info first keeps the step idempotent.
func addColumnIfMissing(ctx context.Context, tx *sql.Tx, table, column, typ string) error {
	var count int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?",
		table, column).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check for %s.%s column: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	_, err = tx.ExecContext(ctx,
		fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, typ))
	if err != nil {
		return fmt.Errorf("failed to add %s.%s column: %w", table, column, err)
	}
	return nil
}

// runMigrations applies any migrations newer than the stored
// schema_version, one transaction per step so a failure leaves the
// store at the last fully applied version.
func (s *Store) runMigrations(ctx context.Context) error {
	current, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := s.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("%w: step %d (%s): %v",
				storage.ErrMigration, m.version, m.name, err)
		}
		current = m.version
	}
	return nil
}

func (s *Store) applyMigration(ctx context.Context, m migration) error {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m.apply(ctx, tx); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES ('schema_version', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, strconv.Itoa(m.version))
	if err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return tx.Commit()
}

func (s *Store) schemaVersion(ctx context.Context) (int, error) {
	var value string
	err := s.queryRow(ctx,
		"SELECT value FROM config WHERE key = 'schema_version'").Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed schema_version %q", storage.ErrMigration, value)
	}
	return v, nil
}
