// Package server initializes and runs the application server. It opens
// the database, runs migrations, wires services onto the HTTP/WebSocket
// surface, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/edensitko/RED-CRM-sub001/internal/logging"
	"github.com/edensitko/RED-CRM-sub001/internal/server/config"
	"github.com/edensitko/RED-CRM-sub001/internal/server/httpapi"
	"github.com/edensitko/RED-CRM-sub001/internal/server/live"
	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
	"github.com/edensitko/RED-CRM-sub001/internal/server/repositories/repomanager"
	"github.com/edensitko/RED-CRM-sub001/internal/server/services"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	users     *services.UserService
	chat      *services.ChatService
	tasks     *services.TaskService
	timer     *services.TimerService
	documents *services.DocumentService
	records   *services.RecordService
}

func NewApp(cfg *config.Config) (*App, error) {
	zl, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	logger := logging.NewZapLogger(zl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &App{
		config:    cfg,
		logger:    logger,
		db:        db,
		users:     services.NewUserService(db, rm, cfg),
		chat:      services.NewChatService(db, rm),
		tasks:     services.NewTaskService(db, rm),
		timer:     services.NewTimerService(db, rm),
		documents: services.NewDocumentService(db, rm, cfg),
		records:   services.NewRecordService(db, rm),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// buildHub registers a snapshot loader per collection. Every loader
// returns the complete user-visible result set; the hub never sends
// partial updates.
func (app *App) buildHub(ctx context.Context) *live.Hub {
	hub := live.NewHub(ctx, app.logger)

	hub.RegisterLoader("conversations", func(ctx context.Context, userID string) (any, error) {
		return app.chat.ListConversations(ctx, userID)
	})
	hub.RegisterLoader("messages", func(ctx context.Context, userID string) (any, error) {
		return app.chat.MessagesSnapshot(ctx, userID)
	})
	hub.RegisterLoader("tasks", func(ctx context.Context, userID string) (any, error) {
		return app.tasks.Snapshot(ctx)
	})
	hub.RegisterLoader("timers", func(ctx context.Context, userID string) (any, error) {
		return app.timer.State(ctx, userID)
	})
	hub.RegisterLoader("time_entries", func(ctx context.Context, userID string) (any, error) {
		return app.timer.Entries(ctx, userID)
	})
	hub.RegisterLoader("documents", func(ctx context.Context, userID string) (any, error) {
		return app.documents.List(ctx)
	})

	for _, collection := range models.RecordCollections {
		collection := collection
		hub.RegisterLoader(collection, func(ctx context.Context, userID string) (any, error) {
			return app.records.List(ctx, collection)
		})
	}

	return hub
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	hub := app.buildHub(ctx)

	s := httpapi.NewServer(
		app.config.EndpointAddrHTTP,
		app.logger,
		app.users,
		app.chat,
		app.tasks,
		app.timer,
		app.documents,
		app.records,
		hub,
		app.config.SecretKey,
		app.config.CORSOrigin,
	)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
