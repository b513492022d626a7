// Package storage provides the interface and shared errors for task storage.
//
// The concrete implementation lives in the sqlite sub-package. Consumers
// (cmd/tk, internal/web) depend on this interface rather than on the
// concrete type so that alternative implementations can be substituted.
package storage

import (
	"context"
	"errors"

	"github.com/tacksdev/tacks/internal/types"
)

// ErrNotFound is returned when a requested entity does not exist in the store.
var ErrNotFound = errors.New("not found")

// ErrInvalidValue is returned when a field value is outside its enumerated
// or numeric domain (unknown status, bad close reason, priority out of range).
var ErrInvalidValue = errors.New("invalid value")

// ErrSelfDependency is returned when a task is declared to block itself.
var ErrSelfDependency = errors.New("task cannot depend on itself")

// ErrDuplicateEdge is returned when the dependency edge already exists.
var ErrDuplicateEdge = errors.New("dependency already exists")

// ErrCycle is returned when inserting a dependency edge would create a
// cycle in the depends-on graph.
var ErrCycle = errors.New("dependency cycle detected")

// ErrOpenChildren is returned when closing a task whose hierarchy children
// are not all done and force was not requested.
var ErrOpenChildren = errors.New("task has open children")

// ErrAlreadyDone is returned when claiming a task that is already done.
var ErrAlreadyDone = errors.New("task is already done")

// ErrNotInitialized is returned when the store has no configured prefix
// (tk init has not been run).
var ErrNotInitialized = errors.New("store not initialized")

// ErrMigration wraps any failure while applying schema migrations.
// Migration failure is fatal for the opening operation.
var ErrMigration = errors.New("migration failed")

// Storage is the operation set the CLI and HTTP surfaces consume.
type Storage interface {
	// Task CRUD
	CreateTask(ctx context.Context, draft types.Draft) (*types.Task, error)
	GetTask(ctx context.Context, id string) (*types.Task, error)
	UpdateTask(ctx context.Context, id string, updates map[string]interface{}) (*types.Task, error)
	ClaimTask(ctx context.Context, id, assignee string) (*types.Task, error)
	CloseTask(ctx context.Context, id string, reason types.CloseReason, comment string, force bool) (*types.Task, error)

	// Queries
	ListTasks(ctx context.Context, filter types.TaskFilter) ([]*types.Task, error)
	ListChildren(ctx context.Context, parentID string) ([]*types.Task, error)
	ReadyTasks(ctx context.Context, limit int) ([]*types.Task, error)
	BlockedTasks(ctx context.Context) ([]*types.Task, error)
	EpicProgress(ctx context.Context) ([]*types.EpicProgress, error)
	Statistics(ctx context.Context) (*types.Statistics, error)

	// Dependencies
	AddDependency(ctx context.Context, childID, parentID string) error
	RemoveDependency(ctx context.Context, childID, parentID string) error
	Blockers(ctx context.Context, id string) ([]*types.Task, error)
	Dependents(ctx context.Context, id string) ([]*types.Task, error)

	// Comments
	AddComment(ctx context.Context, taskID, body string) (*types.Comment, error)
	Comments(ctx context.Context, taskID string) ([]*types.Comment, error)

	// Configuration
	SetConfig(ctx context.Context, key, value string) error
	GetConfig(ctx context.Context, key string) (string, error)

	// Lifecycle
	Close() error
}
