package timetracking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/edensitko/RED-CRM-sub001/internal/dbx"
	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateEntry(ctx context.Context, entry *models.TimeEntry) (*models.TimeEntry, error) {

	query :=
		`INSERT INTO time_entries (id, user_id, started_at, ended_at, duration_seconds, category, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		entry.ID, entry.UserID, entry.StartedAt, entry.EndedAt,
		entry.DurationSeconds, entry.Category, entry.Description).Scan(&entry.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entry, nil
}

func (r *PostgresRepository) ListEntriesByUser(ctx context.Context, userID string) ([]*models.TimeEntry, error) {

	query :=
		`SELECT id, user_id, started_at, ended_at, duration_seconds, category, description, created_at
		 FROM time_entries
		 WHERE user_id = $1
		 ORDER BY started_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.TimeEntry
	for rows.Next() {
		entry := &models.TimeEntry{}
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.StartedAt, &entry.EndedAt,
			&entry.DurationSeconds, &entry.Category, &entry.Description, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) DeleteEntry(ctx context.Context, id string) error {

	query := `DELETE FROM time_entries WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetState(ctx context.Context, userID string) (*models.TimerState, error) {

	query :=
		`SELECT user_id, running, started_at FROM timer_states
		 WHERE user_id = $1
		 `

	state := &models.TimerState{}
	var startedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&state.UserID, &state.Running, &startedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.TimerState{UserID: userID}, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if startedAt.Valid {
		state.StartedAt = startedAt.Time
	}

	return state, nil
}

func (r *PostgresRepository) SaveState(ctx context.Context, state *models.TimerState) error {

	var startedAt any
	if !state.StartedAt.IsZero() {
		startedAt = state.StartedAt
	}

	query :=
		`INSERT INTO timer_states (user_id, running, started_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET running = $2, started_at = $3
		 `

	_, err := r.db.ExecContext(ctx, query, state.UserID, state.Running, startedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
