package tasks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/edensitko/RED-CRM-sub001/internal/common"
	"github.com/edensitko/RED-CRM-sub001/internal/dbx"
	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {

	assignees, err := json.Marshal(task.Assignees)
	if err != nil {
		return nil, fmt.Errorf("marshal assignees: %w", err)
	}

	query :=
		`INSERT INTO tasks (id, title, description, status, priority, due_date, assignees, project_id, repeat, urgent, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at, updated_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		task.ID, task.Title, task.Description, task.Status, task.Priority,
		task.DueDate, assignees, task.ProjectID, task.Repeat, task.Urgent,
		task.CreatedBy).Scan(&task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

func (r *PostgresRepository) Update(ctx context.Context, task *models.Task) error {

	assignees, err := json.Marshal(task.Assignees)
	if err != nil {
		return fmt.Errorf("marshal assignees: %w", err)
	}

	query :=
		`UPDATE tasks
		 SET title = $2, description = $3, status = $4, priority = $5, due_date = $6,
		     assignees = $7, project_id = $8, repeat = $9, urgent = $10, updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		task.ID, task.Title, task.Description, task.Status, task.Priority,
		task.DueDate, assignees, task.ProjectID, task.Repeat, task.Urgent)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {

	query := `DELETE FROM tasks WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {

	query :=
		`SELECT id, title, description, status, priority, due_date, assignees, project_id, repeat, urgent, created_by, created_at, updated_at
		 FROM tasks
		 WHERE id = $1
		 `

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Task, error) {

	query :=
		`SELECT id, title, description, status, priority, due_date, assignees, project_id, repeat, urgent, created_by, created_at, updated_at
		 FROM tasks
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var assignees []byte
	var dueDate sql.NullTime

	err := row.Scan(&task.ID, &task.Title, &task.Description, &task.Status,
		&task.Priority, &dueDate, &assignees, &task.ProjectID, &task.Repeat,
		&task.Urgent, &task.CreatedBy, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(assignees, &task.Assignees); err != nil {
		return nil, fmt.Errorf("unmarshal assignees: %w", err)
	}
	if dueDate.Valid {
		t := dueDate.Time
		task.DueDate = &t
	}

	return task, nil
}
