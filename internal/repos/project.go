package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/types"
)

type ProjectRepo interface {
	Create(ctx context.Context, tx *gorm.DB, project *types.Project) (*types.Project, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Project, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Project, error)
	GetOrCreateBySlug(ctx context.Context, tx *gorm.DB, slug, title string) (*types.Project, bool, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Project, error)
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	repoLog := baseLog.With("repo", "ProjectRepo")
	return &projectRepo{db: db, log: repoLog}
}

func (r *projectRepo) Create(ctx context.Context, tx *gorm.DB, project *types.Project) (*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

func (r *projectRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var project types.Project
	err := transaction.WithContext(ctx).First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetBySlug returns (nil, nil) when no project carries the slug.
func (r *projectRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var project types.Project
	err := transaction.WithContext(ctx).First(&project, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepo) GetOrCreateBySlug(ctx context.Context, tx *gorm.DB, slug, title string) (*types.Project, bool, error) {
	project, err := r.GetBySlug(ctx, tx, slug)
	if err != nil {
		return nil, false, err
	}
	if project != nil {
		return project, false, nil
	}
	project = &types.Project{ID: uuid.New(), Slug: slug, Title: title}
	project, err = r.Create(ctx, tx, project)
	if err != nil {
		return nil, false, err
	}
	return project, true, nil
}

func (r *projectRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var projects []*types.Project
	if err := transaction.WithContext(ctx).Order("title").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}
