package httpapi

import (
	"net/http"
	"strings"
)

// HandleWebsocket upgrades the connection and hands it to the hub. The
// collections query parameter narrows the subscription; absent, the
// client receives every registered collection.
func (s *Server) HandleWebsocket(w http.ResponseWriter, r *http.Request) {
	userID, err := s.authenticate(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	collections := s.hub.Collections()
	if v := r.URL.Query().Get("collections"); v != "" {
		collections = strings.Split(v, ",")
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error(r.Context(), "websocket upgrade failed", "error", err.Error())
		return
	}

	s.hub.ServeConn(conn, userID, collections)
}
