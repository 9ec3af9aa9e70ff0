package records

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

func (r *PostgresRepository) Create(ctx context.Context, rec *models.Record) (*models.Record, error) {

	query :=
		`INSERT INTO records (id, collection, data, created_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		rec.ID, rec.Collection, []byte(rec.Data), rec.CreatedBy).Scan(&rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

func (r *PostgresRepository) Update(ctx context.Context, collection, id string, data json.RawMessage) error {

	query :=
		`UPDATE records
		 SET data = data || $3, updated_at = now()
		 WHERE id = $1 AND collection = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, collection, []byte(data))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, collection, id string) error {

	query := `DELETE FROM records WHERE id = $1 AND collection = $2`

	_, err := r.db.ExecContext(ctx, query, id, collection)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, collection, id string) (*models.Record, error) {

	query :=
		`SELECT id, collection, data, created_by, created_at, updated_at FROM records
		 WHERE id = $1 AND collection = $2
		 `

	rec := &models.Record{}
	var data []byte
	err := r.db.QueryRowContext(ctx, query, id, collection).Scan(
		&rec.ID, &rec.Collection, &data, &rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	rec.Data = json.RawMessage(data)
	return rec, nil
}

func (r *PostgresRepository) ListByCollection(ctx context.Context, collection string) ([]*models.Record, error) {

	query :=
		`SELECT id, collection, data, created_by, created_at, updated_at FROM records
		 WHERE collection = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		rec := &models.Record{}
		var data []byte
		if err := rows.Scan(&rec.ID, &rec.Collection, &data, &rec.CreatedBy,
			&rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		rec.Data = json.RawMessage(data)
		result = append(result, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
