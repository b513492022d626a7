package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tacksdev/tacks/internal/types"
)

// newTestStore creates an initialized store on a temp database.
// Cleanup is registered automatically.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	store, err := New(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.SetConfig(ctx, "prefix", "tk"); err != nil {
		t.Fatalf("failed to set prefix: %v", err)
	}
	return store
}

// mustCreate creates a task or fails the test.
func mustCreate(t *testing.T, store *Store, draft types.Draft) *types.Task {
	t.Helper()
	task, err := store.CreateTask(context.Background(), draft)
	if err != nil {
		t.Fatalf("failed to create task %q: %v", draft.Title, err)
	}
	return task
}

func intPtr(n int) *int { return &n }

func statusPtr(s types.Status) *types.Status { return &s }
