package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tacksdev/tacks/internal/idgen"
	"github.com/tacksdev/tacks/internal/storage"
	"github.com/tacksdev/tacks/internal/types"
)

// orderClause is the deterministic ordering for every multi-row task
// query: most urgent first, then oldest, with ID as a stable tiebreak.
const orderClause = "ORDER BY priority ASC, created_at ASC, id ASC"

// defaultPriority applies when a draft leaves priority unset and no
// default_priority config key overrides it.
const defaultPriority = 2

// maxIDAttempts bounds the nonce loop when a generated root ID collides.
const maxIDAttempts = 100

// CreateTask creates a new task from the draft, generating its ID.
//
// Root tasks get a hash-suffixed ID under the configured prefix. Child
// drafts (ParentID set) get the parent's ID with the next free numeric
// suffix, and the parent gains the epic tag in the same transaction.
func (s *Store) CreateTask(ctx context.Context, draft types.Draft) (*types.Task, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", storage.ErrInvalidValue)
	}
	if len(title) > 500 {
		return nil, fmt.Errorf("%w: title must be 500 characters or less (got %d)", storage.ErrInvalidValue, len(title))
	}
	if draft.Priority != nil && (*draft.Priority < 0 || *draft.Priority > 4) {
		return nil, fmt.Errorf("%w: priority must be between 0 and 4 (got %d)", storage.ErrInvalidValue, *draft.Priority)
	}
	if err := validateTags(draft.Tags); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrInvalidValue, err)
	}
	parentID := strings.TrimSpace(draft.ParentID)
	tags := types.CanonicalTags(draft.Tags)

	var task *types.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		priority := defaultPriority
		if draft.Priority != nil {
			priority = *draft.Priority
		} else if v, err := getConfigTx(ctx, tx, "default_priority"); err == nil {
			var p int
			if _, serr := fmt.Sscanf(v, "%d", &p); serr == nil && p >= 0 && p <= 4 {
				priority = p
			}
		}

		var id string
		var err error
		if parentID != "" {
			id, err = s.createChildID(ctx, tx, parentID)
		} else {
			id, err = s.createRootID(ctx, tx, title)
		}
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tasks (id, title, description, status, priority, assignee, parent_id, tags, created_at, updated_at)
			VALUES (?, ?, ?, 'open', ?, NULL, ?, ?, ?, ?)
		`, id, title, nullString(draft.Description), priority,
			nullString(parentID), types.JoinTags(tags), now, now)
		if err != nil {
			return wrapDBError("insert task", err)
		}

		task = &types.Task{
			ID:          id,
			Title:       title,
			Description: draft.Description,
			Status:      types.StatusOpen,
			Priority:    priority,
			ParentID:    parentID,
			Tags:        tags,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// createRootID generates a collision-free hash ID under the configured
// prefix. Collisions are resolved by bumping the hash nonce, never by
// overwriting.
func (s *Store) createRootID(ctx context.Context, tx *sql.Tx, title string) (string, error) {
	prefix, err := getConfigTx(ctx, tx, "prefix")
	if err != nil {
		if err == sql.ErrNoRows {
			return "", storage.ErrNotInitialized
		}
		return "", wrapDBError("read prefix", err)
	}

	now := time.Now()
	for nonce := 0; nonce < maxIDAttempts; nonce++ {
		id := idgen.New(prefix, title, now, nonce)
		var exists int
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM tasks WHERE id = ?", id).Scan(&exists)
		if err != nil {
			return "", wrapDBError("check ID collision", err)
		}
		if exists == 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique ID after %d attempts", maxIDAttempts)
}

// createChildID verifies the parent, allocates the next numeric suffix,
// and ensures the parent carries the epic tag. All inside the caller's
// transaction so concurrent child creation cannot race the suffix.
func (s *Store) createChildID(ctx context.Context, tx *sql.Tx, parentID string) (string, error) {
	var parentTags string
	err := tx.QueryRowContext(ctx,
		"SELECT tags FROM tasks WHERE id = ?", parentID).Scan(&parentTags)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("parent %s: %w", parentID, storage.ErrNotFound)
	}
	if err != nil {
		return "", wrapDBError("load parent", err)
	}

	// Highest direct-child suffix; grandchildren (parent.N.M) excluded.
	var maxSuffix int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(CAST(substr(id, length(?1) + 2) AS INTEGER)), 0)
		FROM tasks
		WHERE id LIKE ?1 || '.%' AND id NOT LIKE ?1 || '.%.%'
	`, parentID).Scan(&maxSuffix)
	if err != nil {
		return "", wrapDBError("compute child suffix", err)
	}

	tags := types.SplitTags(parentTags)
	if !containsTag(tags, types.TagEpic) {
		tags = append(tags, types.TagEpic)
		_, err = tx.ExecContext(ctx,
			"UPDATE tasks SET tags = ?, updated_at = ? WHERE id = ?",
			types.JoinTags(tags), time.Now().UTC(), parentID)
		if err != nil {
			return "", wrapDBError("tag parent as epic", err)
		}
	}

	return idgen.Child(parentID, maxSuffix+1), nil
}

// GetTask retrieves a task by ID.
func (s *Store) GetTask(ctx context.Context, id string) (*types.Task, error) {
	rows, err := s.query(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	if err != nil {
		return nil, wrapDBError("get task", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, wrapDBError("get task", err)
		}
		return nil, fmt.Errorf("task %s: %w", id, storage.ErrNotFound)
	}
	return scanTask(rows)
}

// getTaskTx is GetTask inside an existing transaction.
func getTaskTx(ctx context.Context, tx *sql.Tx, id string) (*types.Task, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	if err != nil {
		return nil, wrapDBError("get task", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, wrapDBError("get task", err)
		}
		return nil, fmt.Errorf("task %s: %w", id, storage.ErrNotFound)
	}
	return scanTask(rows)
}

// allowedUpdateFields defines which task fields UpdateTask accepts.
// Identity and bookkeeping columns (id, parent_id, created_at,
// updated_at, close_reason) are managed by the store, not callers.
var allowedUpdateFields = map[string]bool{
	"title":       true,
	"description": true,
	"status":      true,
	"priority":    true,
	"assignee":    true,
	"tags":        true,
	"notes":       true,
}

// fieldValidators normalize and validate update values per field.
// Each returns the value to store.
var fieldValidators = map[string]func(interface{}) (interface{}, error){
	"title": func(v interface{}) (interface{}, error) {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("title must be a string")
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, fmt.Errorf("title is required")
		}
		if len(s) > 500 {
			return nil, fmt.Errorf("title must be 500 characters or less (got %d)", len(s))
		}
		return s, nil
	},
	"status": func(v interface{}) (interface{}, error) {
		var raw string
		switch t := v.(type) {
		case string:
			raw = t
		case types.Status:
			raw = string(t)
		default:
			return nil, fmt.Errorf("status must be a string")
		}
		st, err := types.ParseStatus(raw)
		if err != nil {
			return nil, err
		}
		return string(st), nil
	},
	"priority": func(v interface{}) (interface{}, error) {
		var p int
		switch t := v.(type) {
		case int:
			p = t
		case int64:
			p = int(t)
		case float64:
			p = int(t)
		default:
			return nil, fmt.Errorf("priority must be an integer")
		}
		if p < 0 || p > 4 {
			return nil, fmt.Errorf("priority must be between 0 and 4 (got %d)", p)
		}
		return p, nil
	},
	"tags": func(v interface{}) (interface{}, error) {
		switch t := v.(type) {
		case []string:
			if err := validateTags(t); err != nil {
				return nil, err
			}
			return types.JoinTags(t), nil
		case []interface{}:
			tags := make([]string, 0, len(t))
			for _, e := range t {
				s, ok := e.(string)
				if !ok {
					return nil, fmt.Errorf("tags must be a string list")
				}
				tags = append(tags, s)
			}
			if err := validateTags(tags); err != nil {
				return nil, err
			}
			return types.JoinTags(tags), nil
		case string:
			return types.JoinTags(strings.Split(t, ",")), nil
		}
		return nil, fmt.Errorf("tags must be a string list")
	},
}

// UpdateTask applies a partial update. Unknown fields are rejected so a
// typo cannot silently write a new column.
//
// Setting status to done fills close_reason with "done" unless the task
// already has one; moving away from done clears it. This keeps the
// reason column consistent with status no matter which path wrote it.
func (s *Store) UpdateTask(ctx context.Context, id string, updates map[string]interface{}) (*types.Task, error) {
	if len(updates) == 0 {
		return s.GetTask(ctx, id)
	}

	var task *types.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getTaskTx(ctx, tx, id)
		if err != nil {
			return err
		}

		setClauses := make([]string, 0, len(updates)+2)
		args := make([]interface{}, 0, len(updates)+3)
		var newStatus *types.Status

		for field, value := range updates {
			if !allowedUpdateFields[field] {
				return fmt.Errorf("%w: field %q is not updatable", storage.ErrInvalidValue, field)
			}
			if validate, ok := fieldValidators[field]; ok {
				value, err = validate(value)
				if err != nil {
					return fmt.Errorf("%w: %v", storage.ErrInvalidValue, err)
				}
			}
			if field == "status" {
				st := types.Status(value.(string))
				newStatus = &st
			}
			setClauses = append(setClauses, field+" = ?")
			args = append(args, value)
		}

		if newStatus != nil {
			clause, arg := manageCloseReason(current, *newStatus)
			if clause != "" {
				setClauses = append(setClauses, clause)
				args = append(args, arg)
			}
		}

		setClauses = append(setClauses, "updated_at = ?")
		args = append(args, time.Now().UTC())
		args = append(args, id)

		_, err = tx.ExecContext(ctx,
			"UPDATE tasks SET "+strings.Join(setClauses, ", ")+" WHERE id = ?", args...)
		if err != nil {
			return wrapDBError("update task", err)
		}

		task, err = getTaskTx(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// manageCloseReason returns the extra SET clause keeping close_reason
// consistent with a status change, or "" when none is needed.
func manageCloseReason(current *types.Task, newStatus types.Status) (string, interface{}) {
	switch {
	case newStatus == types.StatusDone && current.CloseReason == "":
		return "close_reason = ?", string(types.ReasonDone)
	case newStatus != types.StatusDone && current.CloseReason != "":
		return "close_reason = ?", nil
	}
	return "", nil
}

// ClaimTask assigns the task and moves it to in_progress.
func (s *Store) ClaimTask(ctx context.Context, id, assignee string) (*types.Task, error) {
	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return nil, fmt.Errorf("%w: assignee is required", storage.ErrInvalidValue)
	}

	var task *types.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getTaskTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.Status == types.StatusDone {
			return fmt.Errorf("task %s: %w", id, storage.ErrAlreadyDone)
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE tasks SET assignee = ?, status = ?, updated_at = ? WHERE id = ?",
			assignee, string(types.StatusInProgress), time.Now().UTC(), id)
		if err != nil {
			return wrapDBError("claim task", err)
		}

		task, err = getTaskTx(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// CloseTask marks a task done with the given reason.
//
// A task with non-done children cannot be closed unless force is set;
// closing an epic before its children is almost always a mistake. The
// optional comment is recorded in the same transaction.
func (s *Store) CloseTask(ctx context.Context, id string, reason types.CloseReason, comment string, force bool) (*types.Task, error) {
	if reason == "" {
		reason = types.ReasonDone
	}
	if !reason.IsValid() {
		return nil, fmt.Errorf("%w: unknown close reason %q", storage.ErrInvalidValue, reason)
	}

	var task *types.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getTaskTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.Status == types.StatusDone {
			return fmt.Errorf("task %s: %w", id, storage.ErrAlreadyDone)
		}

		if !force {
			var open int
			err := tx.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM tasks WHERE parent_id = ? AND status != ?",
				id, string(types.StatusDone)).Scan(&open)
			if err != nil {
				return wrapDBError("count open children", err)
			}
			if open > 0 {
				return fmt.Errorf("task %s has %d open children: %w", id, open, storage.ErrOpenChildren)
			}
		}

		now := time.Now().UTC()
		_, err = tx.ExecContext(ctx,
			"UPDATE tasks SET status = ?, close_reason = ?, updated_at = ? WHERE id = ?",
			string(types.StatusDone), string(reason), now, id)
		if err != nil {
			return wrapDBError("close task", err)
		}

		if comment != "" {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO comments (task_id, body, created_at) VALUES (?, ?, ?)",
				id, comment, now)
			if err != nil {
				return wrapDBError("record close comment", err)
			}
		}

		task, err = getTaskTx(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// validateTags rejects tags that cannot survive the comma-joined
// serialization. The comma is the one reserved character.
func validateTags(tags []string) error {
	for _, tag := range tags {
		if strings.Contains(tag, ",") {
			return fmt.Errorf("tag %q must not contain a comma", tag)
		}
	}
	return nil
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
