package httpapi

import (
	"fmt"
	"io"
	"net/http"
)

// HandleDownload fetches a remote file and relays it to the caller as an
// attachment. Browsers cannot force a download for cross-origin URLs, so
// the server fetches on their behalf.
func (s *Server) HandleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	url := r.URL.Query().Get("url")
	filename := r.URL.Query().Get("filename")
	if url == "" || filename == "" {
		writeError(w, http.StatusBadRequest, "url and filename are required")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, url, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid url")
		return
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "fetch failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		writeError(w, http.StatusInternalServerError, "fetch failed")
		return
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := io.Copy(w, resp.Body); err != nil {
		s.logger.Error(r.Context(), "download relay interrupted", "error", err.Error())
	}
}
