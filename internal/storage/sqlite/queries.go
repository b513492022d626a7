package sqlite

import (
	"context"
	"strings"

	"github.com/tacksdev/tacks/internal/storage"
	"github.com/tacksdev/tacks/internal/types"
)

// clause is one WHERE predicate with its bound arguments. Filters
// compose by appending clauses, never by splicing values into SQL.
type clause struct {
	sql  string
	args []interface{}
}

// filterClauses translates a TaskFilter into its predicate list.
func filterClauses(filter types.TaskFilter) []clause {
	var clauses []clause

	if filter.Status != nil {
		clauses = append(clauses, clause{"status = ?", []interface{}{string(*filter.Status)}})
	} else if !filter.IncludeClosed {
		clauses = append(clauses, clause{"status != ?", []interface{}{string(types.StatusDone)}})
	}
	if filter.Priority != nil {
		clauses = append(clauses, clause{"priority = ?", []interface{}{*filter.Priority}})
	}
	if filter.Tag != "" {
		// Tags are stored comma-joined; the wrap makes the match
		// exact-token so "api" never matches "api-client". The bound
		// token is escaped so "%" and "_" stay literal characters.
		clauses = append(clauses, clause{
			`(',' || tags || ',') LIKE '%,' || ? || ',%' ESCAPE '\'`,
			[]interface{}{escapeLikeToken(filter.Tag)},
		})
	}
	if filter.ParentID != "" {
		clauses = append(clauses, clause{"parent_id = ?", []interface{}{filter.ParentID}})
	}
	return clauses
}

// escapeLikeToken neutralizes LIKE metacharacters in a value bound
// into a membership pattern.
func escapeLikeToken(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

func buildWhere(clauses []clause) (string, []interface{}) {
	if len(clauses) == 0 {
		return "", nil
	}
	parts := make([]string, len(clauses))
	var args []interface{}
	for i, c := range clauses {
		parts[i] = c.sql
		args = append(args, c.args...)
	}
	return "WHERE " + strings.Join(parts, " AND "), args
}

// ListTasks returns tasks matching the filter in deterministic order.
// Without an explicit status filter, done tasks are hidden unless
// IncludeClosed is set.
func (s *Store) ListTasks(ctx context.Context, filter types.TaskFilter) ([]*types.Task, error) {
	where, args := buildWhere(filterClauses(filter))
	rows, err := s.query(ctx,
		"SELECT "+taskColumns+" FROM tasks "+where+" "+orderClause, args...)
	if err != nil {
		return nil, wrapDBError("list tasks", err)
	}
	return collectTasks(rows)
}

// ListChildren returns all direct children of a task, done included.
func (s *Store) ListChildren(ctx context.Context, parentID string) ([]*types.Task, error) {
	if _, err := s.GetTask(ctx, parentID); err != nil {
		return nil, err
	}
	rows, err := s.query(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE parent_id = ? "+orderClause, parentID)
	if err != nil {
		return nil, wrapDBError("list children", err)
	}
	return collectTasks(rows)
}

// ReadyTasks returns open tasks with no unfinished blockers, most
// urgent first. limit <= 0 means no limit.
func (s *Store) ReadyTasks(ctx context.Context, limit int) ([]*types.Task, error) {
	q := `
		SELECT ` + taskColumns + ` FROM tasks t
		WHERE t.status = ?
		AND NOT EXISTS (
			SELECT 1 FROM dependencies d
			JOIN tasks p ON p.id = d.parent_id
			WHERE d.child_id = t.id AND p.status != ?
		)
		` + orderClause
	args := []interface{}{string(types.StatusOpen), string(types.StatusDone)}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, wrapDBError("list ready tasks", err)
	}
	return collectTasks(rows)
}

// EpicProgress reports child completion for every epic-tagged task.
func (s *Store) EpicProgress(ctx context.Context) ([]*types.EpicProgress, error) {
	epics, err := s.ListTasks(ctx, types.TaskFilter{
		Tag:           types.TagEpic,
		IncludeClosed: true,
	})
	if err != nil {
		return nil, err
	}

	progress := make([]*types.EpicProgress, 0, len(epics))
	for _, epic := range epics {
		var total, done int
		err := s.queryRow(ctx, `
			SELECT COUNT(*),
			       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
			FROM tasks WHERE parent_id = ?
		`, string(types.StatusDone), epic.ID).Scan(&total, &done)
		if err != nil {
			return nil, wrapDBError("count epic children", err)
		}
		progress = append(progress, &types.EpicProgress{
			Epic:          epic,
			TotalChildren: total,
			DoneChildren:  done,
		})
	}
	return progress, nil
}

// Statistics aggregates task counts by status, priority, and tag.
func (s *Store) Statistics(ctx context.Context) (*types.Statistics, error) {
	stats := &types.Statistics{
		ByStatus:   make(map[types.Status]int),
		ByPriority: make(map[int]int),
		ByTag:      make(map[string]int),
	}

	rows, err := s.query(ctx,
		"SELECT status, COUNT(*) FROM tasks GROUP BY status")
	if err != nil {
		return nil, wrapDBError("count by status", err)
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, wrapDBError("scan status count", err)
		}
		stats.ByStatus[types.Status(status)] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("count by status", err)
	}

	rows, err = s.query(ctx,
		"SELECT priority, COUNT(*) FROM tasks GROUP BY priority")
	if err != nil {
		return nil, wrapDBError("count by priority", err)
	}
	for rows.Next() {
		var priority, count int
		if err := rows.Scan(&priority, &count); err != nil {
			rows.Close()
			return nil, wrapDBError("scan priority count", err)
		}
		stats.ByPriority[priority] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("count by priority", err)
	}

	// Tags are denormalized; split in Go rather than in SQL.
	rows, err = s.query(ctx, "SELECT tags FROM tasks WHERE tags != ''")
	if err != nil {
		return nil, wrapDBError("count by tag", err)
	}
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			rows.Close()
			return nil, wrapDBError("scan tags", err)
		}
		for _, tag := range types.SplitTags(tags) {
			stats.ByTag[tag]++
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("count by tag", err)
	}

	return stats, nil
}

var _ storage.Storage = (*Store)(nil)
