package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/tacksdev/tacks/internal/storage"
	"github.com/tacksdev/tacks/internal/types"
)

// filterFromQuery translates list query parameters into a TaskFilter.
// Bad enum or numeric values map to ErrInvalidValue, not a silent
// unfiltered listing.
func filterFromQuery(r *http.Request) (types.TaskFilter, error) {
	var filter types.TaskFilter
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		st, err := types.ParseStatus(v)
		if err != nil {
			return filter, fmt.Errorf("%w: %v", storage.ErrInvalidValue, err)
		}
		filter.Status = &st
	}
	if v := q.Get("priority"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 0 || p > 4 {
			return filter, fmt.Errorf("%w: priority must be 0-4, got %q", storage.ErrInvalidValue, v)
		}
		filter.Priority = &p
	}
	filter.Tag = q.Get("tag")
	filter.ParentID = q.Get("parent")
	if v := q.Get("all"); v == "1" || v == "true" {
		filter.IncludeClosed = true
	}
	return filter, nil
}

func intQuery(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
