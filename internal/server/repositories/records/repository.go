// Package records declares the repository contract for the generic JSON
// collections (customers, projects, leads).
package records

import (
	"context"
	"encoding/json"

	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, rec *models.Record) (*models.Record, error)
	Update(ctx context.Context, collection, id string, data json.RawMessage) error
	Delete(ctx context.Context, collection, id string) error
	GetByID(ctx context.Context, collection, id string) (*models.Record, error)
	ListByCollection(ctx context.Context, collection string) ([]*models.Record, error)
}
