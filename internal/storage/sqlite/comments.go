package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tacksdev/tacks/internal/storage"
	"github.com/tacksdev/tacks/internal/types"
)

// AddComment appends a comment to a task.
func (s *Store) AddComment(ctx context.Context, taskID, body string) (*types.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: comment body is required", storage.ErrInvalidValue)
	}
	if _, err := s.GetTask(ctx, taskID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result, err := s.exec(ctx,
		"INSERT INTO comments (task_id, body, created_at) VALUES (?, ?, ?)",
		taskID, body, now)
	if err != nil {
		return nil, wrapDBError("insert comment", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, wrapDBError("read comment ID", err)
	}

	return &types.Comment{
		ID:        id,
		TaskID:    taskID,
		Body:      body,
		CreatedAt: now,
	}, nil
}

// Comments returns a task's comments, oldest first.
func (s *Store) Comments(ctx context.Context, taskID string) ([]*types.Comment, error) {
	if _, err := s.GetTask(ctx, taskID); err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, `
		SELECT id, task_id, body, created_at FROM comments
		WHERE task_id = ? ORDER BY id ASC
	`, taskID)
	if err != nil {
		return nil, wrapDBError("list comments", err)
	}
	defer rows.Close()

	var comments []*types.Comment
	for rows.Next() {
		c := &types.Comment{}
		if err := rows.Scan(&c.ID, &c.TaskID, &c.Body, &c.CreatedAt); err != nil {
			return nil, wrapDBError("scan comment", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("list comments", err)
	}
	return comments, nil
}
