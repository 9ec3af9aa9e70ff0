package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
	"github.com/edensitko/RED-CRM-sub001/internal/server/services"
)

// parseTaskFilter reads the filter and sort dimensions from query
// parameters. Absent parameters leave their dimension unconstrained.
func parseTaskFilter(r *http.Request) (services.TaskFilter, string, bool) {
	q := r.URL.Query()

	filter := services.TaskFilter{
		Statuses:   splitParam(q.Get("status")),
		Priorities: splitParam(q.Get("priority")),
		Assignees:  splitParam(q.Get("assignee")),
		Search:     q.Get("q"),
	}

	if v := q.Get("dueFrom"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.DueFrom = &t
		}
	}
	if v := q.Get("dueTo"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.DueTo = &t
		}
	}

	return filter, q.Get("sort"), q.Get("dir") == "desc"
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

func (s *Server) HandleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filter, sortKey, desc := parseTaskFilter(r)
		tasks, err := s.tasks.List(r.Context(), filter, sortKey, desc)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tasks)

	case http.MethodPost:
		var task models.Task
		if err := decodeJSON(r, &task); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		created, err := s.tasks.Create(r.Context(), UserID(r.Context()), &task)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		s.hub.Notify("tasks")
		writeJSON(w, http.StatusCreated, created)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) HandleTaskByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		task, err := s.tasks.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, task)

	case http.MethodPut:
		var task models.Task
		if err := decodeJSON(r, &task); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		task.ID = id

		if err := s.tasks.Update(r.Context(), &task); err != nil {
			writeServiceError(w, err)
			return
		}

		s.hub.Notify("tasks")
		writeJSON(w, http.StatusOK, task)

	case http.MethodDelete:
		if err := s.tasks.Delete(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}

		s.hub.Notify("tasks")
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
