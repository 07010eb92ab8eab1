package repos

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/types"
)

// ErrAmbiguousCalmReference reports a CALM reference held by more than one
// record, which should never happen but does in dirty data.
var ErrAmbiguousCalmReference = errors.New("multiple records share the CALM reference")

// Join tables in which an entity can appear as a record linkage. The merge
// engine repoints all of them.
var entityLinkTables = []string{
	"archival_record_creator",
	"archival_record_person_relation",
	"archival_record_person_subject",
	"archival_record_organisation_subject",
	"archival_record_related_entity",
}

type RecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, record *types.ArchivalRecord) (*types.ArchivalRecord, error)
	Save(ctx context.Context, tx *gorm.DB, record *types.ArchivalRecord) error
	GetByUUID(ctx context.Context, tx *gorm.DB, recordUUID string) (*types.ArchivalRecord, error)
	GetByCalmReference(ctx context.Context, tx *gorm.DB, calmReference string) (*types.ArchivalRecord, error)
	ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.ArchivalRecord, error)
	ListNonDeletedByLevel(ctx context.Context, tx *gorm.DB, level types.Level) ([]*types.ArchivalRecord, error)
	AddReference(ctx context.Context, tx *gorm.DB, record *types.ArchivalRecord, ref *types.Reference) error
	AddEntityLink(ctx context.Context, tx *gorm.DB, joinTable string, recordID, entityID uuid.UUID) error
	ReplaceEntityLinks(ctx context.Context, tx *gorm.DB, fromEntityID, toEntityID uuid.UUID) error
}

type recordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecordRepo(db *gorm.DB, baseLog *logger.Logger) RecordRepo {
	repoLog := baseLog.With("repo", "RecordRepo")
	return &recordRepo{db: db, log: repoLog}
}

func (r *recordRepo) Create(ctx context.Context, tx *gorm.DB, record *types.ArchivalRecord) (*types.ArchivalRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *recordRepo) Save(ctx context.Context, tx *gorm.DB, record *types.ArchivalRecord) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Omit("References", "Creators", "PersonsAsRelations", "PersonsAsSubjects",
			"OrganisationsAsSubjects", "RelatedEntities", "RecordTypes").
		Save(record).Error
}

// GetByUUID returns the record carrying the externally stable identifier,
// or (nil, nil) when none exists.
func (r *recordRepo) GetByUUID(ctx context.Context, tx *gorm.DB, recordUUID string) (*types.ArchivalRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var record types.ArchivalRecord
	err := transaction.WithContext(ctx).
		Preload("Project").
		Preload("MaintenanceStatus").
		First(&record, "uuid = ?", recordUUID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *recordRepo) GetByCalmReference(ctx context.Context, tx *gorm.DB, calmReference string) (*types.ArchivalRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var records []*types.ArchivalRecord
	if err := transaction.WithContext(ctx).
		Where("calm_reference = ?", calmReference).
		Limit(2).
		Find(&records).Error; err != nil {
		return nil, err
	}
	switch len(records) {
	case 0:
		return nil, nil
	case 1:
		return records[0], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousCalmReference, calmReference)
	}
}

func (r *recordRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.ArchivalRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ArchivalRecord
	if err := transaction.WithContext(ctx).
		Preload("MaintenanceStatus").
		Preload("PublicationStatus").
		Where("project_id = ?", projectID).
		Order("title").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *recordRepo) ListNonDeletedByLevel(ctx context.Context, tx *gorm.DB, level types.Level) ([]*types.ArchivalRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ArchivalRecord
	if err := transaction.WithContext(ctx).
		Preload("References.Source").
		Preload("MaintenanceStatus").
		Where("level = ?", level).
		Find(&results).Error; err != nil {
		return nil, err
	}
	nonDeleted := make([]*types.ArchivalRecord, 0, len(results))
	for _, record := range results {
		if !record.IsDeleted() {
			nonDeleted = append(nonDeleted, record)
		}
	}
	return nonDeleted, nil
}

func (r *recordRepo) AddReference(ctx context.Context, tx *gorm.DB, record *types.ArchivalRecord, ref *types.Reference) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(record).
		Association("References").
		Append(ref)
}

func (r *recordRepo) AddEntityLink(ctx context.Context, tx *gorm.DB, joinTable string, recordID, entityID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	// Set semantics: linking twice is a no-op.
	var count int64
	if err := transaction.WithContext(ctx).
		Table(joinTable).
		Where("archival_record_id = ? AND entity_id = ?", recordID, entityID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Table(joinTable).
		Create(map[string]interface{}{
			"archival_record_id": recordID,
			"entity_id":          entityID,
		}).Error
}

// ReplaceEntityLinks moves every record linkage of one entity onto another
// across all linkage roles, with set-union semantics: where the target is
// already linked no duplicate membership is created.
func (r *recordRepo) ReplaceEntityLinks(ctx context.Context, tx *gorm.DB, fromEntityID, toEntityID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	for _, table := range entityLinkTables {
		insert := fmt.Sprintf(
			`INSERT INTO %s (archival_record_id, entity_id)
			 SELECT archival_record_id, ? FROM %s
			 WHERE entity_id = ?
			 AND archival_record_id NOT IN
			     (SELECT archival_record_id FROM %s WHERE entity_id = ?)`,
			table, table, table)
		if err := transaction.WithContext(ctx).
			Exec(insert, toEntityID, fromEntityID, toEntityID).Error; err != nil {
			return fmt.Errorf("repoint %s: %w", table, err)
		}
		remove := fmt.Sprintf(`DELETE FROM %s WHERE entity_id = ?`, table)
		if err := transaction.WithContext(ctx).
			Exec(remove, fromEntityID).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
