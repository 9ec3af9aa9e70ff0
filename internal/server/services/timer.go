package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edensitko/RED-CRM-sub001/internal/common"
	"github.com/edensitko/RED-CRM-sub001/internal/dbx"
	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
	"github.com/edensitko/RED-CRM-sub001/internal/server/repositories/repomanager"
)

// DurationSeconds computes a finished interval's length in whole seconds,
// floored, never negative.
func DurationSeconds(start, end time.Time) int64 {
	if end.Before(start) {
		return 0
	}
	return int64(end.Sub(start) / time.Second)
}

// TimerService tracks one open-ended running interval per user, persisted
// so a reload can resume display of the in-progress timer. Writes to the
// state record overwrite unconditionally; concurrent devices race and the
// last writer wins.
type TimerService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewTimerService(db *sql.DB, m repomanager.RepositoryManager) *TimerService {
	return &TimerService{db: db, repomanager: m, now: time.Now}
}

// State returns the user's current timer record.
func (s *TimerService) State(ctx context.Context, userID string) (*models.TimerState, error) {
	return s.repomanager.TimeTracking(s.db).GetState(ctx, userID)
}

// Start overwrites the timer record with running=true and the current time.
func (s *TimerService) Start(ctx context.Context, userID string) (*models.TimerState, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}

	state := &models.TimerState{UserID: userID, Running: true, StartedAt: s.now()}
	if err := s.repomanager.TimeTracking(s.db).SaveState(ctx, state); err != nil {
		return nil, fmt.Errorf("error saving timer state: %v", err)
	}
	return state, nil
}

// Stop clears the running flag and commits a finished entry using the
// captured start time and the current time. Clearing and committing happen
// in one transaction.
func (s *TimerService) Stop(ctx context.Context, userID, category, description string) (*models.TimeEntry, error) {
	repo := s.repomanager.TimeTracking(s.db)

	state, err := repo.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !state.Running {
		return nil, common.ErrTimerNotRunning
	}

	if category == "" {
		category = models.TimeCategoryOther
	}

	end := s.now()
	entry := &models.TimeEntry{
		ID:              uuid.New().String(),
		UserID:          userID,
		StartedAt:       state.StartedAt,
		EndedAt:         end,
		DurationSeconds: DurationSeconds(state.StartedAt, end),
		Category:        category,
		Description:     description,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.TimeTracking(tx)
		if err := repoTx.SaveState(ctx, &models.TimerState{UserID: userID}); err != nil {
			return err
		}
		_, err := repoTx.CreateEntry(ctx, entry)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error stopping timer: %v", err)
	}

	return entry, nil
}

// AddEntry records a manually entered interval.
func (s *TimerService) AddEntry(ctx context.Context, userID string, entry *models.TimeEntry) (*models.TimeEntry, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}
	if entry.StartedAt.IsZero() || entry.EndedAt.IsZero() || entry.EndedAt.Before(entry.StartedAt) {
		return nil, common.ErrorValidation
	}
	if entry.Category == "" {
		entry.Category = models.TimeCategoryOther
	}

	entry.ID = uuid.New().String()
	entry.UserID = userID
	entry.DurationSeconds = DurationSeconds(entry.StartedAt, entry.EndedAt)

	created, err := s.repomanager.TimeTracking(s.db).CreateEntry(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("error creating time entry: %v", err)
	}
	return created, nil
}

// Entries lists the user's finished entries, newest first.
func (s *TimerService) Entries(ctx context.Context, userID string) ([]*models.TimeEntry, error) {
	return s.repomanager.TimeTracking(s.db).ListEntriesByUser(ctx, userID)
}

// DeleteEntry removes a finished entry.
func (s *TimerService) DeleteEntry(ctx context.Context, id string) error {
	return s.repomanager.TimeTracking(s.db).DeleteEntry(ctx, id)
}
