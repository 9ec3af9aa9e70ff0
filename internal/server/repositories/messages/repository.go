// Package messages declares the repository contract for chat messages.
// Messages are immutable once created except for the reader-set, which
// only grows.
package messages

import (
	"context"

	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, msg *models.Message) (*models.Message, error)

	// ListByChat returns all messages of one conversation, oldest first.
	ListByChat(ctx context.Context, chatID string) ([]*models.Message, error)

	// ListForUser returns every message in every conversation the user
	// takes part in. This is the full mirrored set the unread projection
	// runs over.
	ListForUser(ctx context.Context, userID string) ([]*models.Message, error)

	// ListUnreadByChat returns the messages of a conversation whose
	// reader-set does not contain userID.
	ListUnreadByChat(ctx context.Context, chatID, userID string) ([]*models.Message, error)

	// AddReader appends userID to the reader-set if absent. The reader-set
	// never shrinks.
	AddReader(ctx context.Context, messageID, userID string) error
}
