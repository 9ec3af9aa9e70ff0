package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/edensitko/RED-CRM-sub001/internal/common"
	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
	"github.com/edensitko/RED-CRM-sub001/internal/server/repositories/repomanager"
)

// RecordService implements CRUD on the whitelisted generic JSON
// collections (customers, projects, leads).
type RecordService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewRecordService(db *sql.DB, m repomanager.RepositoryManager) *RecordService {
	return &RecordService{db: db, repomanager: m}
}

func (s *RecordService) Create(ctx context.Context, userID, collection string, data json.RawMessage) (*models.Record, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}
	if !models.ValidRecordCollection(collection) {
		return nil, common.ErrUnknownCollection
	}
	if len(data) == 0 || !json.Valid(data) {
		return nil, common.ErrorValidation
	}

	rec := &models.Record{
		ID:         uuid.New().String(),
		Collection: collection,
		Data:       data,
		CreatedBy:  userID,
	}

	created, err := s.repomanager.Records(s.db).Create(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("error creating record: %v", err)
	}
	return created, nil
}

func (s *RecordService) Update(ctx context.Context, collection, id string, data json.RawMessage) error {
	if !models.ValidRecordCollection(collection) {
		return common.ErrUnknownCollection
	}
	if len(data) == 0 || !json.Valid(data) {
		return common.ErrorValidation
	}
	return s.repomanager.Records(s.db).Update(ctx, collection, id, data)
}

func (s *RecordService) Delete(ctx context.Context, collection, id string) error {
	if !models.ValidRecordCollection(collection) {
		return common.ErrUnknownCollection
	}
	return s.repomanager.Records(s.db).Delete(ctx, collection, id)
}

func (s *RecordService) Get(ctx context.Context, collection, id string) (*models.Record, error) {
	if !models.ValidRecordCollection(collection) {
		return nil, common.ErrUnknownCollection
	}
	return s.repomanager.Records(s.db).GetByID(ctx, collection, id)
}

func (s *RecordService) List(ctx context.Context, collection string) ([]*models.Record, error) {
	if !models.ValidRecordCollection(collection) {
		return nil, common.ErrUnknownCollection
	}
	return s.repomanager.Records(s.db).ListByCollection(ctx, collection)
}
