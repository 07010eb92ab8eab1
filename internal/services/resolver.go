package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/repos"
	"github.com/gpp-archive/autharch/internal/types"
)

// EntityResolver finds or creates an authority entity from a free-text
// display name, deduplicating within a project scope.
type EntityResolver interface {
	GetOrCreateByDisplayName(ctx context.Context, tx *gorm.DB, name, language, script string, projectID *uuid.UUID) (*types.Entity, bool, error)
}

type entityResolver struct {
	db         *gorm.DB
	log        *logger.Logger
	entityRepo repos.EntityRepo
	vocabRepo  repos.VocabRepo
}

func NewEntityResolver(db *gorm.DB, baseLog *logger.Logger, entityRepo repos.EntityRepo, vocabRepo repos.VocabRepo) EntityResolver {
	serviceLog := baseLog.With("service", "EntityResolver")
	return &entityResolver{
		db:         db,
		log:        serviceLog,
		entityRepo: entityRepo,
		vocabRepo:  vocabRepo,
	}
}

// GetOrCreateByDisplayName returns an existing entity whose authorised name
// matches name within the project, or creates a person entity carrying the
// name. An empty name returns (nil, false, nil): the caller must skip. When
// more than one entity matches, none can be accurately returned; the
// ambiguity is logged and (nil, false, nil) is returned so the caller skips
// the link rather than guessing.
func (s *entityResolver) GetOrCreateByDisplayName(ctx context.Context, tx *gorm.DB, name, language, script string, projectID *uuid.UUID) (*types.Entity, bool, error) {
	if name == "" {
		return nil, false, nil
	}
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	matches, err := s.entityRepo.FindByAuthorisedName(ctx, transaction, name, projectID)
	if err != nil {
		return nil, false, err
	}
	if len(matches) > 1 {
		s.log.Warn("Multiple entities match display name; not resolving",
			"display_name", name, "matches", len(matches))
		return nil, false, nil
	}
	if len(matches) == 1 {
		return matches[0], false, nil
	}

	entityType, err := s.vocabRepo.GetOrCreateEntityType(ctx, transaction, "person")
	if err != nil {
		return nil, false, err
	}
	maintenanceStatus, err := s.vocabRepo.GetOrCreateMaintenanceStatus(ctx, transaction, types.StatusNew)
	if err != nil {
		return nil, false, err
	}
	publicationStatus, err := s.vocabRepo.GetOrCreatePublicationStatus(ctx, transaction, types.StatusInProcess)
	if err != nil {
		return nil, false, err
	}

	now := time.Now()
	entity := &types.Entity{
		ID:           uuid.New(),
		EntityTypeID: entityType.ID,
		ProjectID:    projectID,
		Identities: []*types.Identity{
			{
				ID:                uuid.New(),
				PreferredIdentity: true,
				DateFrom:          &now,
				NameEntries: []*types.NameEntry{
					{
						ID:             uuid.New(),
						DisplayName:    name,
						AuthorisedForm: true,
						Language:       language,
						Script:         script,
						DateFrom:       &now,
					},
				},
			},
		},
		Control: &types.Control{
			ID:                  uuid.New(),
			MaintenanceStatusID: maintenanceStatus.ID,
			PublicationStatusID: publicationStatus.ID,
			Language:            language,
			Script:              script,
		},
	}
	if _, err := s.entityRepo.Create(ctx, transaction, entity); err != nil {
		return nil, false, err
	}
	return entity, true, nil
}
