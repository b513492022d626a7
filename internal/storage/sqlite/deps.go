package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tacksdev/tacks/internal/storage"
	"github.com/tacksdev/tacks/internal/types"
)

// AddDependency records that childID is blocked by parentID.
//
// Validation order: both tasks must exist, the edge must not be a
// self-loop or a duplicate, and inserting it must not close a cycle in
// the blocks graph. Everything runs in one write transaction so a
// concurrent insert cannot slip a cycle past the check.
func (s *Store) AddDependency(ctx context.Context, childID, parentID string) error {
	if childID == parentID {
		return fmt.Errorf("%s: %w", childID, storage.ErrSelfDependency)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, id := range []string{childID, parentID} {
			var exists int
			err := tx.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM tasks WHERE id = ?", id).Scan(&exists)
			if err != nil {
				return wrapDBError("check task exists", err)
			}
			if exists == 0 {
				return fmt.Errorf("task %s: %w", id, storage.ErrNotFound)
			}
		}

		var dup int
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM dependencies WHERE child_id = ? AND parent_id = ?",
			childID, parentID).Scan(&dup)
		if err != nil {
			return wrapDBError("check duplicate edge", err)
		}
		if dup > 0 {
			return fmt.Errorf("%s blocked by %s: %w", childID, parentID, storage.ErrDuplicateEdge)
		}

		cycle, err := wouldCreateCycle(ctx, tx, childID, parentID)
		if err != nil {
			return err
		}
		if cycle {
			return fmt.Errorf("%s blocked by %s: %w", childID, parentID, storage.ErrCycle)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO dependencies (child_id, parent_id) VALUES (?, ?)",
			childID, parentID)
		if err != nil {
			if IsUniqueConstraintError(err) {
				return fmt.Errorf("%s blocked by %s: %w", childID, parentID, storage.ErrDuplicateEdge)
			}
			return wrapDBError("insert dependency", err)
		}
		return nil
	})
}

// wouldCreateCycle reports whether adding child->parent closes a cycle,
// i.e. whether child is already reachable from parent by following
// blocked-by edges. BFS frontier-by-frontier with an IN query per
// level; iteration is bounded by the task count so a corrupt graph
// cannot loop forever.
func wouldCreateCycle(ctx context.Context, tx *sql.Tx, childID, parentID string) (bool, error) {
	var taskCount int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tasks").Scan(&taskCount); err != nil {
		return false, wrapDBError("count tasks", err)
	}

	visited := map[string]bool{parentID: true}
	frontier := []string{parentID}

	for depth := 0; depth <= taskCount && len(frontier) > 0; depth++ {
		next, err := blockersOf(ctx, tx, frontier)
		if err != nil {
			return false, err
		}
		frontier = frontier[:0]
		for _, id := range next {
			if id == childID {
				return true, nil
			}
			if !visited[id] {
				visited[id] = true
				frontier = append(frontier, id)
			}
		}
	}
	return false, nil
}

// blockersOf returns the parent side of every edge whose child is in ids.
func blockersOf(ctx context.Context, tx *sql.Tx, ids []string) ([]string, error) {
	placeholders, args := inClause(ids)
	rows, err := tx.QueryContext(ctx,
		"SELECT parent_id FROM dependencies WHERE child_id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, wrapDBError("walk dependency graph", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDBError("scan dependency edge", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func inClause(ids []string) (string, []interface{}) {
	placeholders := ""
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args[i] = id
	}
	return placeholders, args
}

// RemoveDependency deletes the edge if present. Removing an edge that
// does not exist is not an error: the caller's desired end state holds
// either way.
func (s *Store) RemoveDependency(ctx context.Context, childID, parentID string) error {
	_, err := s.exec(ctx,
		"DELETE FROM dependencies WHERE child_id = ? AND parent_id = ?",
		childID, parentID)
	if err != nil {
		return wrapDBError("remove dependency", err)
	}
	return nil
}

// Blockers returns the tasks that block id, most urgent first.
func (s *Store) Blockers(ctx context.Context, id string) ([]*types.Task, error) {
	if _, err := s.GetTask(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE id IN (SELECT parent_id FROM dependencies WHERE child_id = ?)
		`+orderClause, id)
	if err != nil {
		return nil, wrapDBError("list blockers", err)
	}
	return collectTasks(rows)
}

// Dependents returns the tasks blocked by id, most urgent first.
func (s *Store) Dependents(ctx context.Context, id string) ([]*types.Task, error) {
	if _, err := s.GetTask(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE id IN (SELECT child_id FROM dependencies WHERE parent_id = ?)
		`+orderClause, id)
	if err != nil {
		return nil, wrapDBError("list dependents", err)
	}
	return collectTasks(rows)
}

// BlockedTasks returns non-done tasks that have at least one non-done
// blocker.
func (s *Store) BlockedTasks(ctx context.Context) ([]*types.Task, error) {
	rows, err := s.query(ctx, `
		SELECT `+taskColumns+` FROM tasks t
		WHERE t.status != ?
		AND EXISTS (
			SELECT 1 FROM dependencies d
			JOIN tasks p ON p.id = d.parent_id
			WHERE d.child_id = t.id AND p.status != ?
		)
		`+orderClause,
		string(types.StatusDone), string(types.StatusDone))
	if err != nil {
		return nil, wrapDBError("list blocked tasks", err)
	}
	return collectTasks(rows)
}
