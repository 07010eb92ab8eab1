package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/types"
)

type ReferenceRepo interface {
	Get(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID, unitid string) (*types.Reference, error)
	GetOrCreate(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID, unitid string) (*types.Reference, bool, error)
}

type referenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReferenceRepo(db *gorm.DB, baseLog *logger.Logger) ReferenceRepo {
	repoLog := baseLog.With("repo", "ReferenceRepo")
	return &referenceRepo{db: db, log: repoLog}
}

// Get returns (nil, nil) when no reference exists for the pair.
func (r *referenceRepo) Get(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID, unitid string) (*types.Reference, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ref types.Reference
	err := transaction.WithContext(ctx).
		First(&ref, "source_id = ? AND unitid = ?", sourceID, unitid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *referenceRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID, unitid string) (*types.Reference, bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	existing, err := r.Get(ctx, transaction, sourceID, unitid)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	ref := &types.Reference{ID: uuid.New(), SourceID: sourceID, Unitid: unitid}
	if err := transaction.WithContext(ctx).Create(ref).Error; err != nil {
		return nil, false, err
	}
	return ref, true, nil
}
