package web

import (
	"html/template"
	"net/http"

	"github.com/tacksdev/tacks/internal/types"
)

// indexTemplate is the minimal HTML dashboard: ready work on top,
// everything else below. It reads the same queries the API exposes.
var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>tacks</title>
<style>
body { font-family: ui-monospace, monospace; margin: 2rem auto; max-width: 60rem; }
h1 { font-size: 1.2rem; }
table { border-collapse: collapse; width: 100%; margin-bottom: 2rem; }
td, th { text-align: left; padding: 0.25rem 0.75rem 0.25rem 0; }
th { border-bottom: 1px solid #ccc; }
.done { color: #86b300; }
.blocked { color: #f07171; }
.muted { color: #828c99; }
</style>
</head>
<body>
<h1>tacks</h1>
<h2>Ready ({{len .Ready}})</h2>
<table>
<tr><th>ID</th><th>P</th><th>Title</th><th>Tags</th></tr>
{{range .Ready}}<tr><td>{{.ID}}</td><td>P{{.Priority}}</td><td>{{.Title}}</td><td class="muted">{{range .Tags}}{{.}} {{end}}</td></tr>
{{end}}</table>
<h2>All open ({{len .Open}})</h2>
<table>
<tr><th>ID</th><th>P</th><th>Status</th><th>Title</th><th>Assignee</th></tr>
{{range .Open}}<tr><td>{{.ID}}</td><td>P{{.Priority}}</td><td>{{.Status}}</td><td>{{.Title}}</td><td class="muted">{{.Assignee}}</td></tr>
{{end}}</table>
</body>
</html>
`))

type indexData struct {
	Ready []*types.Task
	Open  []*types.Task
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ready, err := s.store.ReadyTasks(r.Context(), 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	open, err := s.store.ListTasks(r.Context(), types.TaskFilter{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_ = indexTemplate.Execute(w, indexData{Ready: ready, Open: open})
}
