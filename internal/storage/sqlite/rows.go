package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tacksdev/tacks/internal/types"
)

// taskColumns is the canonical projection for task queries. Listing
// columns by name keeps queries valid across schema versions: a store
// migrated from an older version may have appended columns in a
// different file order, and SELECT * would couple decoding to it.
const taskColumns = "id, title, description, status, priority, assignee, parent_id, tags, created_at, updated_at, close_reason, notes"

// scanTask decodes the current row by column name, so the same helper
// serves any query that projects a subset or superset of taskColumns.
func scanTask(rows *sql.Rows) (*types.Task, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var (
		id, title   string
		status      string
		priority    int
		description sql.NullString
		assignee    sql.NullString
		parentID    sql.NullString
		tags        sql.NullString
		closeReason sql.NullString
		notes       sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
	)

	dests := make([]interface{}, len(cols))
	for i, col := range cols {
		switch col {
		case "id":
			dests[i] = &id
		case "title":
			dests[i] = &title
		case "description":
			dests[i] = &description
		case "status":
			dests[i] = &status
		case "priority":
			dests[i] = &priority
		case "assignee":
			dests[i] = &assignee
		case "parent_id":
			dests[i] = &parentID
		case "tags":
			dests[i] = &tags
		case "created_at":
			dests[i] = &createdAt
		case "updated_at":
			dests[i] = &updatedAt
		case "close_reason":
			dests[i] = &closeReason
		case "notes":
			dests[i] = &notes
		default:
			var discard interface{}
			dests[i] = &discard
		}
	}

	if err := rows.Scan(dests...); err != nil {
		return nil, fmt.Errorf("failed to scan task row: %w", err)
	}

	return &types.Task{
		ID:          id,
		Title:       title,
		Description: description.String,
		Status:      types.Status(status),
		Priority:    priority,
		Assignee:    assignee.String,
		ParentID:    parentID.String,
		Tags:        types.SplitTags(tags.String),
		CloseReason: closeReason.String,
		Notes:       notes.String,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// collectTasks drains rows into a slice, closing them when done.
func collectTasks(rows *sql.Rows) ([]*types.Task, error) {
	defer rows.Close()
	var tasks []*types.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task rows: %w", err)
	}
	return tasks, nil
}
