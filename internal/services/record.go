package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/repos"
	"github.com/gpp-archive/autharch/internal/types"
)

// RecordService exposes read access to archival records and their audit
// trail.
type RecordService interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*types.ArchivalRecord, error)
	GetByUUID(ctx context.Context, recordUUID string) (*types.ArchivalRecord, error)
	Revisions(ctx context.Context, id uuid.UUID) ([]*types.Revision, error)
}

type recordService struct {
	db           *gorm.DB
	log          *logger.Logger
	recordRepo   repos.RecordRepo
	revisionRepo repos.RevisionRepo
}

func NewRecordService(db *gorm.DB, baseLog *logger.Logger, recordRepo repos.RecordRepo, revisionRepo repos.RevisionRepo) RecordService {
	serviceLog := baseLog.With("service", "RecordService")
	return &recordService{
		db:           db,
		log:          serviceLog,
		recordRepo:   recordRepo,
		revisionRepo: revisionRepo,
	}
}

func (s *recordService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*types.ArchivalRecord, error) {
	return s.recordRepo.ListByProject(ctx, nil, projectID)
}

func (s *recordService) GetByUUID(ctx context.Context, recordUUID string) (*types.ArchivalRecord, error) {
	record, err := s.recordRepo.GetByUUID(ctx, nil, recordUUID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("record %q does not exist", recordUUID)
	}
	return record, nil
}

func (s *recordService) Revisions(ctx context.Context, id uuid.UUID) ([]*types.Revision, error) {
	return s.revisionRepo.ListByObject(ctx, nil, RevisionObjectRecord, id)
}
