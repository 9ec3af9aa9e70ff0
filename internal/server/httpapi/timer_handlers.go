package httpapi

import (
	"net/http"
	"strings"

	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
)

func (s *Server) HandleTimerState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	state, err := s.timer.State(r.Context(), UserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

func (s *Server) HandleTimerStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID := UserID(r.Context())
	state, err := s.timer.Start(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.hub.Notify("timers", userID)
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) HandleTimerStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Category    string `json:"category"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	userID := UserID(r.Context())
	entry, err := s.timer.Stop(r.Context(), userID, req.Category, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.hub.Notify("timers", userID)
	s.hub.Notify("time_entries", userID)
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) HandleTimeEntries(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())

	switch r.Method {
	case http.MethodGet:
		entries, err := s.timer.Entries(r.Context(), userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)

	case http.MethodPost:
		var entry models.TimeEntry
		if err := decodeJSON(r, &entry); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		created, err := s.timer.AddEntry(r.Context(), userID, &entry)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		s.hub.Notify("time_entries", userID)
		writeJSON(w, http.StatusCreated, created)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) HandleTimeEntryByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/time-entries/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	if err := s.timer.DeleteEntry(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	s.hub.Notify("time_entries", UserID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}
