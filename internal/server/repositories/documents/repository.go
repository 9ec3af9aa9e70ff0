// Package documents declares the repository contract for form-document
// metadata. The binary payloads live in object storage.
package documents

import (
	"context"

	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, doc *models.FormDocument) (*models.FormDocument, error)
	GetByID(ctx context.Context, id string) (*models.FormDocument, error)
	List(ctx context.Context) ([]*models.FormDocument, error)
	Delete(ctx context.Context, id string) error
}
