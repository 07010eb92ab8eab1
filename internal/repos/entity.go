package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/types"
)

type EntityRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entity *types.Entity) (*types.Entity, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Entity, error)
	ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Entity, error)
	FindByAuthorisedName(ctx context.Context, tx *gorm.DB, displayName string, projectID *uuid.UUID) ([]*types.Entity, error)
	ReparentIdentity(ctx context.Context, tx *gorm.DB, identityID, entityID uuid.UUID, preferred bool) error
	RepointRelations(ctx context.Context, tx *gorm.DB, fromEntityID, toEntityID uuid.UUID) error
	MoveNameParts(ctx context.Context, tx *gorm.DB, fromEntryID, toEntryID uuid.UUID) error
	DeleteNameEntry(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) error
	SetMaintenanceStatus(ctx context.Context, tx *gorm.DB, entityID, statusID uuid.UUID) error
	CopySources(ctx context.Context, tx *gorm.DB, fromControlID, toControlID uuid.UUID) error
}

type entityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntityRepo(db *gorm.DB, baseLog *logger.Logger) EntityRepo {
	repoLog := baseLog.With("repo", "EntityRepo")
	return &entityRepo{db: db, log: repoLog}
}

func (r *entityRepo) Create(ctx context.Context, tx *gorm.DB, entity *types.Entity) (*types.Entity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *entityRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Entity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var entity types.Entity
	if err := transaction.WithContext(ctx).
		Preload("EntityType").
		Preload("Project").
		Preload("Identities.NameEntries.Parts").
		Preload("Identities.Descriptions.BiographyHistory").
		Preload("Identities.Descriptions.Places").
		Preload("Identities.Descriptions.Events").
		Preload("Identities.Descriptions.Functions").
		Preload("Identities.Descriptions.LanguagesScripts").
		Preload("Identities.Descriptions.LocalDescriptions").
		Preload("Identities.Descriptions.LegalStatuses").
		Preload("Identities.Descriptions.Mandates").
		Preload("Identities.Relations").
		Preload("Identities.Resources").
		Preload("Control.Sources").
		Preload("Control.MaintenanceStatus").
		Preload("Control.PublicationStatus").
		First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *entityRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Entity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Entity
	if err := transaction.WithContext(ctx).
		Preload("EntityType").
		Preload("Identities.NameEntries").
		Preload("Control.MaintenanceStatus").
		Where("project_id = ?", projectID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// FindByAuthorisedName returns the entities carrying an authorised name
// entry whose display name matches exactly, optionally restricted to a
// project. Matching is case-sensitive; disambiguating near-matches is the
// caller's problem.
func (r *entityRepo) FindByAuthorisedName(ctx context.Context, tx *gorm.DB, displayName string, projectID *uuid.UUID) ([]*types.Entity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).
		Distinct("entity.*").
		Joins("JOIN identity ON identity.entity_id = entity.id").
		Joins("JOIN name_entry ON name_entry.identity_id = identity.id").
		Where("name_entry.display_name = ?", displayName).
		Where("name_entry.authorised_form = ?", true)
	if projectID != nil {
		query = query.Where("entity.project_id = ?", *projectID)
	}

	var entities []*types.Entity
	if err := query.Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *entityRepo) ReparentIdentity(ctx context.Context, tx *gorm.DB, identityID, entityID uuid.UUID, preferred bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Identity{}).
		Where("id = ?", identityID).
		Updates(map[string]interface{}{
			"entity_id":          entityID,
			"preferred_identity": preferred,
		}).Error
}

func (r *entityRepo) RepointRelations(ctx context.Context, tx *gorm.DB, fromEntityID, toEntityID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Relation{}).
		Where("related_entity_id = ?", fromEntityID).
		Update("related_entity_id", toEntityID).Error
}

func (r *entityRepo) MoveNameParts(ctx context.Context, tx *gorm.DB, fromEntryID, toEntryID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.NamePart{}).
		Where("name_entry_id = ?", fromEntryID).
		Update("name_entry_id", toEntryID).Error
}

func (r *entityRepo) DeleteNameEntry(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Delete(&types.NameEntry{}, "id = ?", entryID).Error
}

func (r *entityRepo) SetMaintenanceStatus(ctx context.Context, tx *gorm.DB, entityID, statusID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Control{}).
		Where("entity_id = ?", entityID).
		Update("maintenance_status_id", statusID).Error
}

// CopySources duplicates every source citation of one control block onto
// another. Additive: existing duplicates are tolerated.
func (r *entityRepo) CopySources(ctx context.Context, tx *gorm.DB, fromControlID, toControlID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var sources []*types.Source
	if err := transaction.WithContext(ctx).
		Where("control_id = ?", fromControlID).
		Find(&sources).Error; err != nil {
		return err
	}
	for _, source := range sources {
		copied := &types.Source{
			ID:        uuid.New(),
			ControlID: toControlID,
			Name:      source.Name,
			URL:       source.URL,
			Notes:     source.Notes,
		}
		if err := transaction.WithContext(ctx).Create(copied).Error; err != nil {
			return err
		}
	}
	return nil
}
