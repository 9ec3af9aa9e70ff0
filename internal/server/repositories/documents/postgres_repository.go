package documents

import (
	"context"
	"database/sql"
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

func (r *PostgresRepository) Create(ctx context.Context, doc *models.FormDocument) (*models.FormDocument, error) {

	query :=
		`INSERT INTO documents (id, name, category, storage_key, file_name, content_type, size, uploaded_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING uploaded_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		doc.ID, doc.Name, doc.Category, doc.StorageKey, doc.FileName,
		doc.ContentType, doc.Size, doc.UploadedBy).Scan(&doc.UploadedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return doc, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.FormDocument, error) {

	query :=
		`SELECT id, name, category, storage_key, file_name, content_type, size, uploaded_by, uploaded_at
		 FROM documents
		 WHERE id = $1
		 `

	doc := &models.FormDocument{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.Name, &doc.Category, &doc.StorageKey, &doc.FileName,
		&doc.ContentType, &doc.Size, &doc.UploadedBy, &doc.UploadedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return doc, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.FormDocument, error) {

	query :=
		`SELECT id, name, category, storage_key, file_name, content_type, size, uploaded_by, uploaded_at
		 FROM documents
		 ORDER BY uploaded_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.FormDocument
	for rows.Next() {
		doc := &models.FormDocument{}
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Category, &doc.StorageKey,
			&doc.FileName, &doc.ContentType, &doc.Size, &doc.UploadedBy, &doc.UploadedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {

	query := `DELETE FROM documents WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
