// Package httpapi exposes the data-access layer over HTTP JSON plus a
// WebSocket endpoint for live snapshot subscriptions.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/edensitko/RED-CRM-sub001/internal/logging"
	"github.com/edensitko/RED-CRM-sub001/internal/server/live"
	"github.com/edensitko/RED-CRM-sub001/internal/server/services"
)

type Server struct {
	addr       string
	logger     logging.Logger
	users      *services.UserService
	chat       *services.ChatService
	tasks      *services.TaskService
	timer      *services.TimerService
	documents  *services.DocumentService
	records    *services.RecordService
	hub        *live.Hub
	upgrader   websocket.Upgrader
	jwtSecret  []byte
	corsOrigin string
}

func NewServer(
	addr string,
	l logging.Logger,
	us *services.UserService,
	cs *services.ChatService,
	ts *services.TaskService,
	tm *services.TimerService,
	ds *services.DocumentService,
	rs *services.RecordService,
	hub *live.Hub,
	secretKey string,
	corsOrigin string,
) *Server {
	return &Server{
		addr:      addr,
		logger:    l.With("module", "http_server"),
		users:     us,
		chat:      cs,
		tasks:     ts,
		timer:     tm,
		documents: ds,
		records:   rs,
		hub:       hub,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool {
			return true
		}},
		jwtSecret:  []byte(secretKey),
		corsOrigin: corsOrigin,
	}
}

// Routes builds the request multiplexer.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/register", s.HandleRegister)
	mux.HandleFunc("/api/login", s.HandleLogin)
	mux.HandleFunc("/api/refresh", s.HandleRefresh)
	mux.HandleFunc("/api/me", s.RequireAuth(s.HandleMe))

	mux.HandleFunc("/api/chats", s.RequireAuth(s.HandleChats))
	mux.HandleFunc("/api/chats/", s.RequireAuth(s.HandleChatSubroutes))
	mux.HandleFunc("/api/unread-count", s.RequireAuth(s.HandleUnreadCount))

	mux.HandleFunc("/api/tasks", s.RequireAuth(s.HandleTasks))
	mux.HandleFunc("/api/tasks/", s.RequireAuth(s.HandleTaskByID))

	mux.HandleFunc("/api/timer", s.RequireAuth(s.HandleTimerState))
	mux.HandleFunc("/api/timer/start", s.RequireAuth(s.HandleTimerStart))
	mux.HandleFunc("/api/timer/stop", s.RequireAuth(s.HandleTimerStop))
	mux.HandleFunc("/api/time-entries", s.RequireAuth(s.HandleTimeEntries))
	mux.HandleFunc("/api/time-entries/", s.RequireAuth(s.HandleTimeEntryByID))

	mux.HandleFunc("/api/documents", s.RequireAuth(s.HandleDocuments))
	mux.HandleFunc("/api/documents/", s.RequireAuth(s.HandleDocumentSubroutes))

	mux.HandleFunc("/api/collections/", s.RequireAuth(s.HandleCollections))

	mux.HandleFunc("/api/download", s.HandleDownload)
	mux.HandleFunc("/ws", s.HandleWebsocket)

	return s.CORS(s.Logging(mux))
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
