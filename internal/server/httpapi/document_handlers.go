package httpapi

import (
	"net/http"
	"strings"

	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
)

func (s *Server) HandleDocuments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		docs, err := s.documents.List(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, docs)

	case http.MethodPost:
		var req struct {
			Name        string `json:"name"`
			Category    string `json:"category"`
			FileName    string `json:"fileName"`
			ContentType string `json:"contentType"`
			Size        int64  `json:"size"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		doc := &models.FormDocument{
			Name:        req.Name,
			Category:    req.Category,
			FileName:    req.FileName,
			ContentType: req.ContentType,
			Size:        req.Size,
		}

		upload, err := s.documents.CreateUpload(r.Context(), UserID(r.Context()), doc)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		s.hub.Notify("documents")
		writeJSON(w, http.StatusCreated, map[string]any{
			"document":  upload.Document,
			"uploadUrl": upload.UploadURL,
		})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// HandleDocumentSubroutes dispatches /api/documents/{id} and
// /api/documents/{id}/url.
func (s *Server) HandleDocumentSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/documents/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing document id")
		return
	}

	if len(parts) == 2 && parts[1] == "url" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		url, err := s.documents.DownloadURL(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": url})
		return
	}

	if len(parts) == 1 && r.Method == http.MethodDelete {
		if err := s.documents.Delete(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		s.hub.Notify("documents")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeError(w, http.StatusNotFound, "not found")
}
