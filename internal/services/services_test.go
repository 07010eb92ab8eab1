package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/db"
	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/repos"
	"github.com/gpp-archive/autharch/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "autharch.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrateAll(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

type testEnv struct {
	db          *gorm.DB
	projectRepo repos.ProjectRepo
	entityRepo  repos.EntityRepo
	recordRepo  repos.RecordRepo
	vocabRepo   repos.VocabRepo
	revRepo     repos.RevisionRepo
	resolver    EntityResolver
	merger      MergeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := newTestDB(t)
	log := logger.NewNop()
	projectRepo := repos.NewProjectRepo(database, log)
	entityRepo := repos.NewEntityRepo(database, log)
	recordRepo := repos.NewRecordRepo(database, log)
	vocabRepo := repos.NewVocabRepo(database, log)
	revRepo := repos.NewRevisionRepo(database, log)
	revisionSvc := NewRevisionService(database, log, revRepo)
	return &testEnv{
		db:          database,
		projectRepo: projectRepo,
		entityRepo:  entityRepo,
		recordRepo:  recordRepo,
		vocabRepo:   vocabRepo,
		revRepo:     revRepo,
		resolver:    NewEntityResolver(database, log, entityRepo, vocabRepo),
		merger:      NewMergeService(database, log, entityRepo, recordRepo, vocabRepo, revisionSvc),
	}
}

func (e *testEnv) project(t *testing.T, slug string) *types.Project {
	t.Helper()
	project, _, err := e.projectRepo.GetOrCreateBySlug(context.Background(), nil, slug, slug)
	if err != nil {
		t.Fatalf("failed to create project %q: %v", slug, err)
	}
	return project
}

// makeEntity builds an entity with one preferred identity carrying a single
// authorised name entry, matching the shape the resolver creates.
func (e *testEnv) makeEntity(t *testing.T, entityType, name string, projectID *uuid.UUID) *types.Entity {
	t.Helper()
	ctx := context.Background()
	typeTerm, err := e.vocabRepo.GetOrCreateEntityType(ctx, nil, entityType)
	if err != nil {
		t.Fatalf("failed to create entity type: %v", err)
	}
	maintenance, err := e.vocabRepo.GetOrCreateMaintenanceStatus(ctx, nil, types.StatusNew)
	if err != nil {
		t.Fatalf("failed to create maintenance status: %v", err)
	}
	publication, err := e.vocabRepo.GetOrCreatePublicationStatus(ctx, nil, types.StatusInProcess)
	if err != nil {
		t.Fatalf("failed to create publication status: %v", err)
	}
	now := time.Now()
	entity := &types.Entity{
		ID:           uuid.New(),
		EntityTypeID: typeTerm.ID,
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
						Language:       "eng",
						Script:         "Latin",
					},
				},
			},
		},
		Control: &types.Control{
			ID:                  uuid.New(),
			MaintenanceStatusID: maintenance.ID,
			PublicationStatusID: publication.ID,
		},
	}
	if _, err := e.entityRepo.Create(ctx, nil, entity); err != nil {
		t.Fatalf("failed to create entity %q: %v", name, err)
	}
	return entity
}
