package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tacksdev/tacks/internal/storage"
	"github.com/tacksdev/tacks/internal/types"
)

func TestNewCreatesDirectories(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "tacks.db")

	store, err := New(ctx, path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer store.Close()

	if !Exists(path) {
		t.Errorf("expected database file at %s", path)
	}
}

func TestExists(t *testing.T) {
	if Exists(filepath.Join(t.TempDir(), "missing.db")) {
		t.Error("Exists must be false for a missing file")
	}
	if Exists(":memory:") {
		t.Error("Exists must be false for memory databases")
	}
}

func TestReopenPreservesData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tacks.db")

	store, err := New(ctx, path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := store.SetConfig(ctx, "prefix", "tk"); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	task, err := store.CreateTask(ctx, types.Draft{Title: "survives reopen"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := New(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask after reopen failed: %v", err)
	}
	if got.Title != "survives reopen" {
		t.Errorf("expected task to survive reopen, got %q", got.Title)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store, err := New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer store.Close()

	if err := store.SetConfig(ctx, "prefix", "mem"); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	task, err := store.CreateTask(ctx, types.Draft{Title: "in memory"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if _, err := store.GetTask(ctx, task.ID); err != nil {
		t.Errorf("GetTask failed: %v", err)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SetConfig(ctx, "actor", "alice"); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	got, err := store.GetConfig(ctx, "actor")
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if got != "alice" {
		t.Errorf("expected alice, got %q", got)
	}

	// Overwrite.
	if err := store.SetConfig(ctx, "actor", "bob"); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	got, err = store.GetConfig(ctx, "actor")
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if got != "bob" {
		t.Errorf("expected bob, got %q", got)
	}

	if _, err := store.GetConfig(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing key, got %v", err)
	}
}

func TestComments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	task := mustCreate(t, store, types.Draft{Title: "t"})

	first, err := store.AddComment(ctx, task.ID, "first note")
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	second, err := store.AddComment(ctx, task.ID, "second note")
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if second.ID <= first.ID {
		t.Errorf("expected increasing comment IDs, got %d then %d", first.ID, second.ID)
	}

	comments, err := store.Comments(ctx, task.ID)
	if err != nil {
		t.Fatalf("Comments failed: %v", err)
	}
	if len(comments) != 2 || comments[0].Body != "first note" {
		t.Errorf("expected oldest-first comments, got %v", comments)
	}

	if _, err := store.AddComment(ctx, task.ID, "  "); !errors.Is(err, storage.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for blank body, got %v", err)
	}
	if _, err := store.AddComment(ctx, "tk-none", "x"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing task, got %v", err)
	}
}
