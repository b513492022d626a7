package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacksdev/tacks/internal/storage/sqlite"
	"github.com/tacksdev/tacks/internal/types"
)

func newTestServer(t *testing.T) (http.Handler, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.SetConfig(context.Background(), "prefix", "tk"))
	return NewHandler(store), store
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createTask(t *testing.T, h http.Handler, body map[string]interface{}) types.Task {
	t.Helper()
	rec := doJSON(t, h, "POST", "/api/tasks", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var task types.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	return task
}

func TestHealthz(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, "GET", "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateAndGetTask(t *testing.T) {
	h, _ := newTestServer(t)

	task := createTask(t, h, map[string]interface{}{
		"title": "Ship it",
		"tags":  []string{"release"},
	})
	assert.Equal(t, types.StatusOpen, task.Status)
	assert.Equal(t, 2, task.Priority)

	rec := doJSON(t, h, "GET", "/api/tasks/"+task.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got types.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Ship it", got.Title)
	assert.Equal(t, []string{"release"}, got.Tags)
}

func TestGetTaskNotFound(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, "GET", "/api/tasks/tk-none", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateTaskInvalid(t *testing.T) {
	h, _ := newTestServer(t)

	rec := doJSON(t, h, "POST", "/api/tasks", map[string]interface{}{"title": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, h, "POST", "/api/tasks", map[string]interface{}{
		"title": "p out of range", "priority": 9,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateTask(t *testing.T) {
	h, _ := newTestServer(t)
	task := createTask(t, h, map[string]interface{}{"title": "before"})

	rec := doJSON(t, h, "PATCH", "/api/tasks/"+task.ID, map[string]interface{}{
		"title":  "after",
		"status": "in-progress",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got types.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "after", got.Title)
	assert.Equal(t, types.StatusInProgress, got.Status)

	// Unknown enum value maps to 422.
	rec = doJSON(t, h, "PATCH", "/api/tasks/"+task.ID, map[string]interface{}{
		"status": "wontfix",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCloseTask(t *testing.T) {
	h, _ := newTestServer(t)
	parent := createTask(t, h, map[string]interface{}{"title": "epic"})
	child := createTask(t, h, map[string]interface{}{"title": "child", "parent_id": parent.ID})

	// Open child blocks the close.
	rec := doJSON(t, h, "POST", "/api/tasks/"+parent.ID+"/close", map[string]interface{}{})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Bad reason is 422.
	rec = doJSON(t, h, "POST", "/api/tasks/"+child.ID+"/close", map[string]interface{}{
		"reason": "whatever",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Close child, then parent.
	rec = doJSON(t, h, "POST", "/api/tasks/"+child.ID+"/close", map[string]interface{}{
		"reason": "done",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, "POST", "/api/tasks/"+parent.ID+"/close", map[string]interface{}{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got types.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, types.StatusDone, got.Status)
	assert.Equal(t, string(types.ReasonDone), got.CloseReason)
}

func TestClaimTask(t *testing.T) {
	h, _ := newTestServer(t)
	task := createTask(t, h, map[string]interface{}{"title": "t"})

	rec := doJSON(t, h, "POST", "/api/tasks/"+task.ID+"/claim", map[string]interface{}{
		"assignee": "alice",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got types.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "alice", got.Assignee)
	assert.Equal(t, types.StatusInProgress, got.Status)
}

func TestDependencyEndpoints(t *testing.T) {
	h, _ := newTestServer(t)
	a := createTask(t, h, map[string]interface{}{"title": "a"})
	b := createTask(t, h, map[string]interface{}{"title": "b"})

	rec := doJSON(t, h, "POST", "/api/tasks/"+a.ID+"/deps", map[string]interface{}{
		"blocked_by": b.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Duplicate edge and cycle map to 409, self-dependency to 422.
	rec = doJSON(t, h, "POST", "/api/tasks/"+a.ID+"/deps", map[string]interface{}{
		"blocked_by": b.ID,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, "POST", "/api/tasks/"+b.ID+"/deps", map[string]interface{}{
		"blocked_by": a.ID,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, "POST", "/api/tasks/"+a.ID+"/deps", map[string]interface{}{
		"blocked_by": a.ID,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Blockers listing.
	rec = doJSON(t, h, "GET", "/api/tasks/"+a.ID+"/deps", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var blockers []types.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &blockers))
	require.Len(t, blockers, 1)
	assert.Equal(t, b.ID, blockers[0].ID)

	// Removal is 204, and removing again is still 204.
	rec = doJSON(t, h, "DELETE", "/api/tasks/"+a.ID+"/deps/"+b.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, h, "DELETE", "/api/tasks/"+a.ID+"/deps/"+b.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestListFiltersAndReady(t *testing.T) {
	h, _ := newTestServer(t)
	a := createTask(t, h, map[string]interface{}{"title": "a", "tags": []string{"api"}})
	b := createTask(t, h, map[string]interface{}{"title": "b", "priority": 0})
	doJSON(t, h, "POST", "/api/tasks/"+a.ID+"/deps", map[string]interface{}{"blocked_by": b.ID})

	rec := doJSON(t, h, "GET", "/api/tasks?tag=api", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []types.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, a.ID, tasks[0].ID)

	// Bad filter values are 422.
	rec = doJSON(t, h, "GET", "/api/tasks?status=nope", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = doJSON(t, h, "GET", "/api/tasks?priority=9", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Ready excludes the gated task.
	rec = doJSON(t, h, "GET", "/api/ready", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, b.ID, tasks[0].ID)

	// Blocked is the complement.
	rec = doJSON(t, h, "GET", "/api/blocked", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, a.ID, tasks[0].ID)
}

func TestCommentsEndpoints(t *testing.T) {
	h, _ := newTestServer(t)
	task := createTask(t, h, map[string]interface{}{"title": "t"})

	rec := doJSON(t, h, "POST", "/api/tasks/"+task.ID+"/comments", map[string]interface{}{
		"body": "note one",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, h, "GET", "/api/tasks/"+task.ID+"/comments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var comments []types.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comments))
	require.Len(t, comments, 1)
	assert.Equal(t, "note one", comments[0].Body)
}

func TestStatsAndEpics(t *testing.T) {
	h, _ := newTestServer(t)
	parent := createTask(t, h, map[string]interface{}{"title": "epic"})
	for i := 0; i < 2; i++ {
		createTask(t, h, map[string]interface{}{
			"title":     fmt.Sprintf("child %d", i),
			"parent_id": parent.ID,
		})
	}

	rec := doJSON(t, h, "GET", "/api/epics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var epics []types.EpicProgress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &epics))
	require.Len(t, epics, 1)
	assert.Equal(t, 2, epics[0].TotalChildren)
	assert.Equal(t, 0, epics[0].DoneChildren)

	rec = doJSON(t, h, "GET", "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats types.Statistics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.Total())
}

func TestIndexPage(t *testing.T) {
	h, _ := newTestServer(t)
	createTask(t, h, map[string]interface{}{"title": "visible on index"})

	rec := doJSON(t, h, "GET", "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "visible on index")
}
