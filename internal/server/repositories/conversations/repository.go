// Package conversations declares the repository contract for chat
// conversations, including the denormalized last-message summary and the
// per-participant unread flag map.
package conversations

import (
	"context"
	"time"

	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, conv *models.Conversation) (*models.Conversation, error)
	GetByID(ctx context.Context, id string) (*models.Conversation, error)

	// ListByParticipant returns every conversation the user takes part in,
	// newest activity first.
	ListByParticipant(ctx context.Context, userID string) ([]*models.Conversation, error)

	// UpdateSummary overwrites the last-message summary and the unread map.
	// The write is unconditional; the last writer wins.
	UpdateSummary(ctx context.Context, id string, lastMessage string, at time.Time, unreadBy map[string]bool) error

	// SetUnread flips a single participant's unread flag.
	SetUnread(ctx context.Context, id string, userID string, unread bool) error

	Delete(ctx context.Context, id string) error
}
