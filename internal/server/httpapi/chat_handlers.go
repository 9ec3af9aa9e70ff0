package httpapi

import (
	"net/http"
	"strings"
)

func (s *Server) HandleChats(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())

	switch r.Method {
	case http.MethodGet:
		convs, err := s.chat.ListConversations(r.Context(), userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, convs)

	case http.MethodPost:
		var req struct {
			Title        string   `json:"title"`
			Participants []string `json:"participants"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		conv, err := s.chat.CreateConversation(r.Context(), userID, req.Title, req.Participants)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		s.hub.Notify("conversations", conv.Participants...)
		writeJSON(w, http.StatusCreated, conv)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// HandleChatSubroutes dispatches /api/chats/{id}/messages and
// /api/chats/{id}/read.
func (s *Server) HandleChatSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/chats/")
	parts := strings.SplitN(rest, "/", 2)
	chatID := parts[0]
	if chatID == "" {
		writeError(w, http.StatusBadRequest, "missing chat id")
		return
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch action {
	case "messages":
		s.handleChatMessages(w, r, chatID)
	case "read":
		s.handleChatRead(w, r, chatID)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleChatMessages(w http.ResponseWriter, r *http.Request, chatID string) {
	userID := UserID(r.Context())

	switch r.Method {
	case http.MethodGet:
		msgs, err := s.chat.Messages(r.Context(), userID, chatID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msgs)

	case http.MethodPost:
		var req struct {
			Text string `json:"text"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		user, err := s.users.GetUser(r.Context(), userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		msg, err := s.chat.PostMessage(r.Context(), userID, user.DisplayName, chatID, req.Text)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		s.notifyChat(r, chatID)
		writeJSON(w, http.StatusCreated, msg)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleChatRead(w http.ResponseWriter, r *http.Request, chatID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := s.chat.MarkChatRead(r.Context(), UserID(r.Context()), chatID); err != nil {
		writeServiceError(w, err)
		return
	}

	s.notifyChat(r, chatID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	count, err := s.chat.UnreadCount(r.Context(), UserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

// notifyChat refreshes the chat collections for every participant of the
// conversation.
func (s *Server) notifyChat(r *http.Request, chatID string) {
	convs, err := s.chat.ListConversations(r.Context(), UserID(r.Context()))
	if err != nil {
		s.logger.Error(r.Context(), "conversation lookup for notify failed", "error", err.Error())
		return
	}
	for _, c := range convs {
		if c.ID == chatID {
			s.hub.Notify("messages", c.Participants...)
			s.hub.Notify("conversations", c.Participants...)
			return
		}
	}
}
