package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/tacksdev/tacks/internal/storage"
	"github.com/tacksdev/tacks/internal/types"
)

func TestCreateTask(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	task := mustCreate(t, store, types.Draft{
		Title:       "Fix login flow",
		Description: "OAuth redirect drops the return URL",
		Tags:        []string{"auth", "bug"},
	})

	if !strings.HasPrefix(task.ID, "tk-") {
		t.Errorf("expected ID with tk- prefix, got %s", task.ID)
	}
	if task.Status != types.StatusOpen {
		t.Errorf("expected status open, got %s", task.Status)
	}
	if task.Priority != 2 {
		t.Errorf("expected default priority 2, got %d", task.Priority)
	}

	got, err := store.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Title != "Fix login flow" {
		t.Errorf("expected title round-trip, got %q", got.Title)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "auth" || got.Tags[1] != "bug" {
		t.Errorf("expected sorted tags [auth bug], got %v", got.Tags)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateTask(ctx, types.Draft{Title: "   "}); !errors.Is(err, storage.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for blank title, got %v", err)
	}
	if _, err := store.CreateTask(ctx, types.Draft{Title: strings.Repeat("x", 501)}); !errors.Is(err, storage.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for long title, got %v", err)
	}
	if _, err := store.CreateTask(ctx, types.Draft{Title: "ok", Priority: intPtr(5)}); !errors.Is(err, storage.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for priority 5, got %v", err)
	}
	if _, err := store.CreateTask(ctx, types.Draft{Title: "ok", Tags: []string{"a,b"}}); !errors.Is(err, storage.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for comma-bearing tag, got %v", err)
	}
	if _, err := store.CreateTask(ctx, types.Draft{Title: "orphan", ParentID: "tk-zzzz"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing parent, got %v", err)
	}
}

func TestCreateTaskWithoutPrefix(t *testing.T) {
	store, err := New(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	_, err = store.CreateTask(context.Background(), types.Draft{Title: "no prefix yet"})
	if !errors.Is(err, storage.ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestCreateTaskDefaultPriorityConfig(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SetConfig(ctx, "default_priority", "1"); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	task := mustCreate(t, store, types.Draft{Title: "uses configured default"})
	if task.Priority != 1 {
		t.Errorf("expected priority 1 from config, got %d", task.Priority)
	}

	// Explicit priority still wins.
	task = mustCreate(t, store, types.Draft{Title: "explicit", Priority: intPtr(4)})
	if task.Priority != 4 {
		t.Errorf("expected priority 4, got %d", task.Priority)
	}
}

func TestCreateChildTask(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	parent := mustCreate(t, store, types.Draft{Title: "Big feature"})
	child1 := mustCreate(t, store, types.Draft{Title: "Part one", ParentID: parent.ID})
	child2 := mustCreate(t, store, types.Draft{Title: "Part two", ParentID: parent.ID})

	if child1.ID != parent.ID+".1" {
		t.Errorf("expected %s.1, got %s", parent.ID, child1.ID)
	}
	if child2.ID != parent.ID+".2" {
		t.Errorf("expected %s.2, got %s", parent.ID, child2.ID)
	}

	// Parent gains the epic tag in the same transaction.
	got, err := store.GetTask(ctx, parent.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if !got.HasTag(types.TagEpic) {
		t.Errorf("expected parent to carry epic tag, got %v", got.Tags)
	}

	// Grandchildren number independently of the parent's children.
	grandchild := mustCreate(t, store, types.Draft{Title: "Sub-part", ParentID: child1.ID})
	if grandchild.ID != child1.ID+".1" {
		t.Errorf("expected %s.1, got %s", child1.ID, grandchild.ID)
	}
}

func TestChildSuffixSkipsGaps(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	parent := mustCreate(t, store, types.Draft{Title: "epic"})
	mustCreate(t, store, types.Draft{Title: "one", ParentID: parent.ID})
	c2 := mustCreate(t, store, types.Draft{Title: "two", ParentID: parent.ID})

	// Suffix allocation is max+1, so a freed number is never reused.
	if _, err := store.UnderlyingDB().ExecContext(ctx,
		"DELETE FROM tasks WHERE id = ?", parent.ID+".1"); err != nil {
		t.Fatalf("failed to delete child: %v", err)
	}
	c3 := mustCreate(t, store, types.Draft{Title: "three", ParentID: parent.ID})
	if c3.ID != parent.ID+".3" {
		t.Errorf("expected suffix 3 after deleting .1 (max was %s), got %s", c2.ID, c3.ID)
	}
}

func TestConcurrentChildCreation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	parent := mustCreate(t, store, types.Draft{Title: "epic"})

	const workers = 8
	var wg sync.WaitGroup
	ids := make(chan string, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			task, err := store.CreateTask(ctx, types.Draft{
				Title:    fmt.Sprintf("child %d", n),
				ParentID: parent.ID,
			})
			if err != nil {
				errs <- err
				return
			}
			ids <- task.ID
		}(i)
	}
	wg.Wait()
	close(ids)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent CreateTask failed: %v", err)
	}

	// Suffix allocation happens inside the insert transaction, so
	// simultaneous writers must never compute the same next number.
	seen := make(map[string]bool, workers)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate child id %s", id)
		}
		seen[id] = true
	}
	if len(seen) != workers {
		t.Fatalf("expected %d distinct child ids, got %d", workers, len(seen))
	}
	for n := 1; n <= workers; n++ {
		id := fmt.Sprintf("%s.%d", parent.ID, n)
		if !seen[id] {
			t.Errorf("expected child id %s to be allocated, got %v", id, seen)
		}
	}
}

func TestGetTaskNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetTask(context.Background(), "tk-none")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateTask(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	task := mustCreate(t, store, types.Draft{Title: "original"})

	updated, err := store.UpdateTask(ctx, task.ID, map[string]interface{}{
		"title":    "renamed",
		"priority": 0,
		"status":   "in-progress",
		"notes":    "started digging",
	})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if updated.Title != "renamed" {
		t.Errorf("expected renamed title, got %q", updated.Title)
	}
	if updated.Priority != 0 {
		t.Errorf("expected priority 0, got %d", updated.Priority)
	}
	if updated.Status != types.StatusInProgress {
		t.Errorf("expected in_progress (alias normalized), got %s", updated.Status)
	}
	if updated.Notes != "started digging" {
		t.Errorf("expected notes, got %q", updated.Notes)
	}
	if !updated.UpdatedAt.After(task.UpdatedAt) && !updated.UpdatedAt.Equal(task.UpdatedAt) {
		t.Errorf("expected updated_at to advance")
	}
}

func TestUpdateTaskRejectsUnknownField(t *testing.T) {
	store := newTestStore(t)
	task := mustCreate(t, store, types.Draft{Title: "t"})

	_, err := store.UpdateTask(context.Background(), task.ID, map[string]interface{}{
		"created_at": "2020-01-01",
	})
	if !errors.Is(err, storage.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for non-updatable field, got %v", err)
	}

	_, err = store.UpdateTask(context.Background(), task.ID, map[string]interface{}{
		"status": "bogus",
	})
	if !errors.Is(err, storage.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for bad status, got %v", err)
	}

	_, err = store.UpdateTask(context.Background(), task.ID, map[string]interface{}{
		"tags": []string{"a,b"},
	})
	if !errors.Is(err, storage.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for comma-bearing tag, got %v", err)
	}
}

func TestUpdateStatusManagesCloseReason(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	task := mustCreate(t, store, types.Draft{Title: "t"})

	done, err := store.UpdateTask(ctx, task.ID, map[string]interface{}{"status": "done"})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if done.CloseReason != string(types.ReasonDone) {
		t.Errorf("expected close_reason done, got %q", done.CloseReason)
	}

	reopened, err := store.UpdateTask(ctx, task.ID, map[string]interface{}{"status": "open"})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if reopened.CloseReason != "" {
		t.Errorf("expected close_reason cleared on reopen, got %q", reopened.CloseReason)
	}
}

func TestClaimTask(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	task := mustCreate(t, store, types.Draft{Title: "t"})

	claimed, err := store.ClaimTask(ctx, task.ID, "alice")
	if err != nil {
		t.Fatalf("ClaimTask failed: %v", err)
	}
	if claimed.Assignee != "alice" {
		t.Errorf("expected assignee alice, got %q", claimed.Assignee)
	}
	if claimed.Status != types.StatusInProgress {
		t.Errorf("expected in_progress, got %s", claimed.Status)
	}

	if _, err := store.CloseTask(ctx, task.ID, types.ReasonDone, "", false); err != nil {
		t.Fatalf("CloseTask failed: %v", err)
	}
	if _, err := store.ClaimTask(ctx, task.ID, "bob"); !errors.Is(err, storage.ErrAlreadyDone) {
		t.Errorf("expected ErrAlreadyDone claiming done task, got %v", err)
	}
}

func TestCloseTask(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	task := mustCreate(t, store, types.Draft{Title: "t"})

	closed, err := store.CloseTask(ctx, task.ID, types.ReasonDuplicate, "dupe of tk-aaaa", false)
	if err != nil {
		t.Fatalf("CloseTask failed: %v", err)
	}
	if closed.Status != types.StatusDone {
		t.Errorf("expected done, got %s", closed.Status)
	}
	if closed.CloseReason != string(types.ReasonDuplicate) {
		t.Errorf("expected duplicate reason, got %q", closed.CloseReason)
	}

	comments, err := store.Comments(ctx, task.ID)
	if err != nil {
		t.Fatalf("Comments failed: %v", err)
	}
	if len(comments) != 1 || comments[0].Body != "dupe of tk-aaaa" {
		t.Errorf("expected close comment recorded, got %v", comments)
	}

	if _, err := store.CloseTask(ctx, task.ID, types.ReasonDone, "", false); !errors.Is(err, storage.ErrAlreadyDone) {
		t.Errorf("expected ErrAlreadyDone on double close, got %v", err)
	}
}

func TestCloseTaskOpenChildren(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	parent := mustCreate(t, store, types.Draft{Title: "epic"})
	child := mustCreate(t, store, types.Draft{Title: "child", ParentID: parent.ID})

	if _, err := store.CloseTask(ctx, parent.ID, types.ReasonDone, "", false); !errors.Is(err, storage.ErrOpenChildren) {
		t.Errorf("expected ErrOpenChildren, got %v", err)
	}

	// force overrides the guard.
	if _, err := store.CloseTask(ctx, parent.ID, types.ReasonStale, "", true); err != nil {
		t.Fatalf("forced close failed: %v", err)
	}

	// Reopen, finish the child, close normally.
	if _, err := store.UpdateTask(ctx, parent.ID, map[string]interface{}{"status": "open"}); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if _, err := store.CloseTask(ctx, child.ID, types.ReasonDone, "", false); err != nil {
		t.Fatalf("close child failed: %v", err)
	}
	if _, err := store.CloseTask(ctx, parent.ID, types.ReasonDone, "", false); err != nil {
		t.Errorf("close after children done failed: %v", err)
	}
}

func TestCloseTaskBadReason(t *testing.T) {
	store := newTestStore(t)
	task := mustCreate(t, store, types.Draft{Title: "t"})

	_, err := store.CloseTask(context.Background(), task.ID, "because", "", false)
	if !errors.Is(err, storage.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for bad reason, got %v", err)
	}
}
