package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
)

// HandleCollections dispatches /api/collections/{name} and
// /api/collections/{name}/{id} for the generic JSON collections.
func (s *Server) HandleCollections(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/collections/")
	parts := strings.SplitN(rest, "/", 2)
	collection := parts[0]
	if collection == "" {
		writeError(w, http.StatusBadRequest, "missing collection name")
		return
	}

	id := ""
	if len(parts) == 2 {
		id = parts[1]
	}

	if id == "" {
		s.handleCollection(w, r, collection)
		return
	}
	s.handleCollectionRecord(w, r, collection, id)
}

func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request, collection string) {
	switch r.Method {
	case http.MethodGet:
		recs, err := s.records.List(r.Context(), collection)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)

	case http.MethodPost:
		var data json.RawMessage
		if err := decodeJSON(r, &data); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		rec, err := s.records.Create(r.Context(), UserID(r.Context()), collection, data)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		s.hub.Notify(collection)
		writeJSON(w, http.StatusCreated, rec)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCollectionRecord(w http.ResponseWriter, r *http.Request, collection, id string) {
	switch r.Method {
	case http.MethodGet:
		rec, err := s.records.Get(r.Context(), collection, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)

	case http.MethodPut:
		var data json.RawMessage
		if err := decodeJSON(r, &data); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		if err := s.records.Update(r.Context(), collection, id, data); err != nil {
			writeServiceError(w, err)
			return
		}

		s.hub.Notify(collection)
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		if err := s.records.Delete(r.Context(), collection, id); err != nil {
			writeServiceError(w, err)
			return
		}

		s.hub.Notify(collection)
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
