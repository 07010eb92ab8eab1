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

// ProjectService manages the cataloguing projects that partition all
// records and entities.
type ProjectService interface {
	List(ctx context.Context) ([]*types.Project, error)
	GetBySlug(ctx context.Context, slug string) (*types.Project, error)
	Create(ctx context.Context, slug, title string) (*types.Project, error)
}

type projectService struct {
	db          *gorm.DB
	log         *logger.Logger
	projectRepo repos.ProjectRepo
}

func NewProjectService(db *gorm.DB, baseLog *logger.Logger, projectRepo repos.ProjectRepo) ProjectService {
	serviceLog := baseLog.With("service", "ProjectService")
	return &projectService{db: db, log: serviceLog, projectRepo: projectRepo}
}

func (s *projectService) List(ctx context.Context) ([]*types.Project, error) {
	return s.projectRepo.List(ctx, nil)
}

func (s *projectService) GetBySlug(ctx context.Context, slug string) (*types.Project, error) {
	project, err := s.projectRepo.GetBySlug(ctx, nil, slug)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %q does not exist", slug)
	}
	return project, nil
}

func (s *projectService) Create(ctx context.Context, slug, title string) (*types.Project, error) {
	if slug == "" {
		return nil, fmt.Errorf("project slug must not be empty")
	}
	existing, err := s.projectRepo.GetBySlug(ctx, nil, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("project %q already exists", slug)
	}
	project := &types.Project{
		ID:    uuid.New(),
		Slug:  slug,
		Title: title,
	}
	return s.projectRepo.Create(ctx, nil, project)
}
