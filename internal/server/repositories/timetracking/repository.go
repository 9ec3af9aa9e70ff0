// Package timetracking declares the repository contract for finished time
// entries and the single per-user running-timer record.
package timetracking

import (
	"context"

	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
)

type Repository interface {
	CreateEntry(ctx context.Context, entry *models.TimeEntry) (*models.TimeEntry, error)
	ListEntriesByUser(ctx context.Context, userID string) ([]*models.TimeEntry, error)
	DeleteEntry(ctx context.Context, id string) error

	// GetState returns the user's timer record. A user who never started a
	// timer gets a zero-value, non-running state rather than an error.
	GetState(ctx context.Context, userID string) (*models.TimerState, error)

	// SaveState upserts the timer record with an unconditional overwrite.
	SaveState(ctx context.Context, state *models.TimerState) error
}
