package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/types"
)

type RevisionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, revision *types.Revision) (*types.Revision, error)
	ListByObject(ctx context.Context, tx *gorm.DB, objectType string, objectID uuid.UUID) ([]*types.Revision, error)
}

type revisionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRevisionRepo(db *gorm.DB, baseLog *logger.Logger) RevisionRepo {
	repoLog := baseLog.With("repo", "RevisionRepo")
	return &revisionRepo{db: db, log: repoLog}
}

func (r *revisionRepo) Create(ctx context.Context, tx *gorm.DB, revision *types.Revision) (*types.Revision, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if revision.ID == uuid.Nil {
		revision.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(revision).Error; err != nil {
		return nil, err
	}
	return revision, nil
}

func (r *revisionRepo) ListByObject(ctx context.Context, tx *gorm.DB, objectType string, objectID uuid.UUID) ([]*types.Revision, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Revision
	if err := transaction.WithContext(ctx).
		Where("object_type = ? AND object_id = ?", objectType, objectID).
		Order("created_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
