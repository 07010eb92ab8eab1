package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/repos"
	"github.com/gpp-archive/autharch/internal/types"
)

// EntityService exposes read access to authority entities and their audit
// trail.
type EntityService interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*types.Entity, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Entity, error)
	Revisions(ctx context.Context, id uuid.UUID) ([]*types.Revision, error)
}

type entityService struct {
	db           *gorm.DB
	log          *logger.Logger
	entityRepo   repos.EntityRepo
	revisionRepo repos.RevisionRepo
}

func NewEntityService(db *gorm.DB, baseLog *logger.Logger, entityRepo repos.EntityRepo, revisionRepo repos.RevisionRepo) EntityService {
	serviceLog := baseLog.With("service", "EntityService")
	return &entityService{
		db:           db,
		log:          serviceLog,
		entityRepo:   entityRepo,
		revisionRepo: revisionRepo,
	}
}

func (s *entityService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*types.Entity, error) {
	return s.entityRepo.ListByProject(ctx, nil, projectID)
}

func (s *entityService) Get(ctx context.Context, id uuid.UUID) (*types.Entity, error) {
	return s.entityRepo.GetByID(ctx, nil, id)
}

func (s *entityService) Revisions(ctx context.Context, id uuid.UUID) ([]*types.Revision, error) {
	return s.revisionRepo.ListByObject(ctx, nil, RevisionObjectEntity, id)
}
