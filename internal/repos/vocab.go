package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/types"
)

// VocabRepo looks up (or lazily creates) controlled vocabulary terms by
// title. Strict Get variants return ErrTermNotFound so importers can report
// an unresolvable term as a per-row problem.
type VocabRepo interface {
	GetOrCreateEntityType(ctx context.Context, tx *gorm.DB, title string) (*types.EntityType, error)
	GetOrCreateMaintenanceStatus(ctx context.Context, tx *gorm.DB, title string) (*types.MaintenanceStatus, error)
	GetOrCreatePublicationStatus(ctx context.Context, tx *gorm.DB, title string) (*types.PublicationStatus, error)
	GetOrCreateNamePartType(ctx context.Context, tx *gorm.DB, title string) (*types.NamePartType, error)
	GetOrCreateEntityRelationType(ctx context.Context, tx *gorm.DB, title string) (*types.EntityRelationType, error)
	GetOrCreateResourceRelationType(ctx context.Context, tx *gorm.DB, title string) (*types.ResourceRelationType, error)
	GetOrCreateRecordType(ctx context.Context, tx *gorm.DB, title string) (*types.RecordType, error)
	GetOrCreateReferenceSource(ctx context.Context, tx *gorm.DB, title string) (*types.ReferenceSource, error)
	GetOrCreateRepository(ctx context.Context, tx *gorm.DB, code int, title string) (*types.Repository, error)
	GetReferenceSource(ctx context.Context, tx *gorm.DB, title string) (*types.ReferenceSource, error)
	GetPublicationStatus(ctx context.Context, tx *gorm.DB, title string) (*types.PublicationStatus, error)
}

var ErrTermNotFound = errors.New("vocabulary term not found")

type vocabRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVocabRepo(db *gorm.DB, baseLog *logger.Logger) VocabRepo {
	repoLog := baseLog.With("repo", "VocabRepo")
	return &vocabRepo{db: db, log: repoLog}
}

func (r *vocabRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx == nil {
		return r.db
	}
	return tx
}

func (r *vocabRepo) GetOrCreateEntityType(ctx context.Context, tx *gorm.DB, title string) (*types.EntityType, error) {
	var term types.EntityType
	err := r.tx(tx).WithContext(ctx).
		Where(types.EntityType{Title: title}).
		Attrs(types.EntityType{ID: uuid.New()}).
		FirstOrCreate(&term).Error
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *vocabRepo) GetOrCreateMaintenanceStatus(ctx context.Context, tx *gorm.DB, title string) (*types.MaintenanceStatus, error) {
	var term types.MaintenanceStatus
	err := r.tx(tx).WithContext(ctx).
		Where(types.MaintenanceStatus{Title: title}).
		Attrs(types.MaintenanceStatus{ID: uuid.New()}).
		FirstOrCreate(&term).Error
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *vocabRepo) GetOrCreatePublicationStatus(ctx context.Context, tx *gorm.DB, title string) (*types.PublicationStatus, error) {
	var term types.PublicationStatus
	err := r.tx(tx).WithContext(ctx).
		Where(types.PublicationStatus{Title: title}).
		Attrs(types.PublicationStatus{ID: uuid.New()}).
		FirstOrCreate(&term).Error
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *vocabRepo) GetOrCreateNamePartType(ctx context.Context, tx *gorm.DB, title string) (*types.NamePartType, error) {
	var term types.NamePartType
	err := r.tx(tx).WithContext(ctx).
		Where(types.NamePartType{Title: title}).
		Attrs(types.NamePartType{ID: uuid.New()}).
		FirstOrCreate(&term).Error
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *vocabRepo) GetOrCreateEntityRelationType(ctx context.Context, tx *gorm.DB, title string) (*types.EntityRelationType, error) {
	var term types.EntityRelationType
	err := r.tx(tx).WithContext(ctx).
		Where(types.EntityRelationType{Title: title}).
		Attrs(types.EntityRelationType{ID: uuid.New()}).
		FirstOrCreate(&term).Error
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *vocabRepo) GetOrCreateResourceRelationType(ctx context.Context, tx *gorm.DB, title string) (*types.ResourceRelationType, error) {
	var term types.ResourceRelationType
	err := r.tx(tx).WithContext(ctx).
		Where(types.ResourceRelationType{Title: title}).
		Attrs(types.ResourceRelationType{ID: uuid.New()}).
		FirstOrCreate(&term).Error
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *vocabRepo) GetOrCreateRecordType(ctx context.Context, tx *gorm.DB, title string) (*types.RecordType, error) {
	var term types.RecordType
	err := r.tx(tx).WithContext(ctx).
		Where(types.RecordType{Title: title}).
		Attrs(types.RecordType{ID: uuid.New()}).
		FirstOrCreate(&term).Error
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *vocabRepo) GetOrCreateReferenceSource(ctx context.Context, tx *gorm.DB, title string) (*types.ReferenceSource, error) {
	var term types.ReferenceSource
	err := r.tx(tx).WithContext(ctx).
		Where(types.ReferenceSource{Title: title}).
		Attrs(types.ReferenceSource{ID: uuid.New()}).
		FirstOrCreate(&term).Error
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *vocabRepo) GetOrCreateRepository(ctx context.Context, tx *gorm.DB, code int, title string) (*types.Repository, error) {
	var term types.Repository
	err := r.tx(tx).WithContext(ctx).
		Where(types.Repository{Code: code, Title: title}).
		Attrs(types.Repository{ID: uuid.New()}).
		FirstOrCreate(&term).Error
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *vocabRepo) GetReferenceSource(ctx context.Context, tx *gorm.DB, title string) (*types.ReferenceSource, error) {
	var term types.ReferenceSource
	err := r.tx(tx).WithContext(ctx).First(&term, "title = ?", title).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTermNotFound
	}
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *vocabRepo) GetPublicationStatus(ctx context.Context, tx *gorm.DB, title string) (*types.PublicationStatus, error) {
	var term types.PublicationStatus
	err := r.tx(tx).WithContext(ctx).First(&term, "title = ?", title).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTermNotFound
	}
	if err != nil {
		return nil, err
	}
	return &term, nil
}
