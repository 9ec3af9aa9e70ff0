// Package tasks declares the repository contract for board tasks.
package tasks

import (
	"context"

	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Task, error)

	// List returns the full task set; filtering and sorting happen in
	// memory on the service side.
	List(ctx context.Context) ([]*models.Task, error)
}
