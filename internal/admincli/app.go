// Package admincli implements the operator command-line tool. It talks to
// the database directly, so it works even when the HTTP endpoint is down.
package admincli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/edensitko/RED-CRM-sub001/internal/server/config"
	"github.com/edensitko/RED-CRM-sub001/internal/server/repositories/repomanager"
	"github.com/edensitko/RED-CRM-sub001/internal/server/services"
)

type App struct {
	db    *sql.DB
	users *services.UserService
	out   io.Writer
}

func NewApp(cfg *config.Config) (*App, error) {
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &App{
		db:    db,
		users: services.NewUserService(db, rm, cfg),
		out:   os.Stdout,
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

// CreateUser prompts for the account details and provisions the user.
func (a *App) CreateUser(ctx context.Context) error {
	reader := bufio.NewReader(os.Stdin)

	email, err := GetSimpleText(reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	displayName, err := GetSimpleText(reader, "Enter display name", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	user, err := a.users.Register(ctx, email, displayName, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Created user %s (%s)\n", user.Email, user.ID)
	return nil
}

// Run dispatches the subcommand. Only user provisioning is supported for
// now.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: cli <command>\n\ncommands:\n  create-user    provision an account")
	}

	switch args[0] {
	case "create-user":
		return a.CreateUser(ctx)
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}
