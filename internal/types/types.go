// Package types defines core data structures for the tk task tracker.
package types

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Task represents a trackable work item
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	Priority    int       `json:"priority"` // No omitempty: 0 is valid (critical)
	Assignee    string    `json:"assignee,omitempty"`
	ParentID    string    `json:"parent_id,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CloseReason string    `json:"close_reason,omitempty"` // Set if and only if status is done
	Notes       string    `json:"notes,omitempty"`        // Working notes, overwritten on update
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks if the task has valid field values
func (t *Task) Validate() error {
	if len(t.Title) == 0 {
		return fmt.Errorf("title is required")
	}
	if len(t.Title) > 500 {
		return fmt.Errorf("title must be 500 characters or less (got %d)", len(t.Title))
	}
	if t.Priority < 0 || t.Priority > 4 {
		return fmt.Errorf("priority must be between 0 and 4 (got %d)", t.Priority)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", t.Status)
	}
	// close_reason invariant: present iff status is done
	if t.Status == StatusDone && t.CloseReason == "" {
		return fmt.Errorf("done tasks must have a close reason")
	}
	if t.Status != StatusDone && t.CloseReason != "" {
		return fmt.Errorf("non-done tasks cannot have a close reason")
	}
	if t.CloseReason != "" && !CloseReason(t.CloseReason).IsValid() {
		return fmt.Errorf("invalid close reason: %s", t.CloseReason)
	}
	return nil
}

// HasTag reports whether the task carries the given tag (exact match).
func (t *Task) HasTag(tag string) bool {
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// Draft holds the caller-supplied fields for task creation.
// Priority is a pointer so "unset" can fall back to the configured default.
type Draft struct {
	Title       string
	Description string
	Priority    *int
	Tags        []string
	ParentID    string
}

// Status represents the current state of a task
type Status string

// Task status constants
const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
)

// IsValid checks if the status value is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusDone, StatusBlocked:
		return true
	}
	return false
}

// ParseStatus normalizes a user-supplied status string.
// Accepts common aliases ("in-progress", "closed").
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(s) {
	case "open":
		return StatusOpen, nil
	case "in_progress", "in-progress", "inprogress":
		return StatusInProgress, nil
	case "done", "closed":
		return StatusDone, nil
	case "blocked":
		return StatusBlocked, nil
	}
	return "", fmt.Errorf("unknown status: %s", s)
}

// CloseReason records why a task was closed
type CloseReason string

// Close reason constants
const (
	ReasonDone       CloseReason = "done"
	ReasonDuplicate  CloseReason = "duplicate"
	ReasonAbsorbed   CloseReason = "absorbed"
	ReasonStale      CloseReason = "stale"
	ReasonSuperseded CloseReason = "superseded"
)

// IsValid checks if the close reason value is valid
func (r CloseReason) IsValid() bool {
	switch r {
	case ReasonDone, ReasonDuplicate, ReasonAbsorbed, ReasonStale, ReasonSuperseded:
		return true
	}
	return false
}

// TagEpic is the tag automatically applied to any task that gains a child.
const TagEpic = "epic"

// CanonicalTags normalizes a tag set: trims whitespace, drops empties,
// de-duplicates, and sorts. Tag serialization in the store is the
// comma-joined canonical form, so membership tests can be exact-token.
func CanonicalTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || strings.Contains(tag, ",") || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// JoinTags serializes a tag set to its canonical stored form.
func JoinTags(tags []string) string {
	return strings.Join(CanonicalTags(tags), ",")
}

// SplitTags parses the stored tag serialization back into a slice.
func SplitTags(s string) []string {
	if s == "" {
		return nil
	}
	return CanonicalTags(strings.Split(s, ","))
}

// Dependency represents a blocking edge: ChildID is blocked by ParentID.
type Dependency struct {
	ChildID  string `json:"child_id"`
	ParentID string `json:"parent_id"`
}

// Comment is an append-only note on a task
type Comment struct {
	ID        int64     `json:"id"`
	TaskID    string    `json:"task_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskFilter selects tasks for list queries. Filters are conjunctive.
type TaskFilter struct {
	Status        *Status
	Priority      *int
	Tag           string
	ParentID      string
	IncludeClosed bool
}

// EpicProgress pairs an epic-tagged task with its child completion counts
type EpicProgress struct {
	Epic          *Task `json:"epic"`
	TotalChildren int   `json:"children_total"`
	DoneChildren  int   `json:"children_done"`
}

// Percent returns the completion percentage, 0 when the epic has no children.
func (p *EpicProgress) Percent() int {
	if p.TotalChildren == 0 {
		return 0
	}
	return p.DoneChildren * 100 / p.TotalChildren
}

// Statistics provides aggregate task counts
type Statistics struct {
	ByStatus   map[Status]int `json:"by_status"`
	ByPriority map[int]int    `json:"by_priority"`
	ByTag      map[string]int `json:"by_tag"`
}

// Total returns the total number of tasks across all statuses.
func (s *Statistics) Total() int {
	n := 0
	for _, c := range s.ByStatus {
		n += c
	}
	return n
}
