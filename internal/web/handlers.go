package web

import (
	"net/http"

	"github.com/tacksdev/tacks/internal/types"
)

type createTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    *int     `json:"priority"`
	Tags        []string `json:"tags"`
	ParentID    string   `json:"parent_id"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body: " + err.Error()})
		return
	}
	task, err := s.store.CreateTask(r.Context(), types.Draft{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Tags:        req.Tags,
		ParentID:    req.ParentID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var updates map[string]interface{}
	if err := decodeJSON(r, &updates); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body: " + err.Error()})
		return
	}
	task, err := s.store.UpdateTask(r.Context(), r.PathValue("id"), updates)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

type closeTaskRequest struct {
	Reason  string `json:"reason"`
	Comment string `json:"comment"`
	Force   bool   `json:"force"`
}

func (s *Server) handleCloseTask(w http.ResponseWriter, r *http.Request) {
	var req closeTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body: " + err.Error()})
		return
	}
	task, err := s.store.CloseTask(r.Context(), r.PathValue("id"),
		types.CloseReason(req.Reason), req.Comment, req.Force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

type claimTaskRequest struct {
	Assignee string `json:"assignee"`
}

func (s *Server) handleClaimTask(w http.ResponseWriter, r *http.Request) {
	var req claimTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body: " + err.Error()})
		return
	}
	task, err := s.store.ClaimTask(r.Context(), r.PathValue("id"), req.Assignee)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	tasks, err := s.store.ListTasks(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskList(tasks))
}

func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.ListChildren(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskList(tasks))
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.store.Comments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if comments == nil {
		comments = []*types.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

type addCommentRequest struct {
	Body string `json:"body"`
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req addCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body: " + err.Error()})
		return
	}
	comment, err := s.store.AddComment(r.Context(), r.PathValue("id"), req.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) handleListDeps(w http.ResponseWriter, r *http.Request) {
	blockers, err := s.store.Blockers(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskList(blockers))
}

type addDepRequest struct {
	BlockedBy string `json:"blocked_by"`
}

func (s *Server) handleAddDep(w http.ResponseWriter, r *http.Request) {
	var req addDepRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body: " + err.Error()})
		return
	}
	if err := s.store.AddDependency(r.Context(), r.PathValue("id"), req.BlockedBy); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.Dependency{
		ChildID:  r.PathValue("id"),
		ParentID: req.BlockedBy,
	})
}

func (s *Server) handleRemoveDep(w http.ResponseWriter, r *http.Request) {
	err := s.store.RemoveDependency(r.Context(), r.PathValue("id"), r.PathValue("parent"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", 0)
	tasks, err := s.store.ReadyTasks(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskList(tasks))
}

func (s *Server) handleBlocked(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.BlockedTasks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskList(tasks))
}

func (s *Server) handleEpics(w http.ResponseWriter, r *http.Request) {
	progress, err := s.store.EpicProgress(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if progress == nil {
		progress = []*types.EpicProgress{}
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Statistics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// taskList normalizes a nil slice so the API always emits a JSON array.
func taskList(tasks []*types.Task) []*types.Task {
	if tasks == nil {
		return []*types.Task{}
	}
	return tasks
}
