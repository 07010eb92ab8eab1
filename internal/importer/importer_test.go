package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/db"
	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/repos"
	"github.com/gpp-archive/autharch/internal/services"
	"github.com/gpp-archive/autharch/internal/types"
)

type importEnv struct {
	db          *gorm.DB
	dir         string
	projectRepo repos.ProjectRepo
	recordRepo  repos.RecordRepo
	entityRepo  repos.EntityRepo
	vocabRepo   repos.VocabRepo
	revRepo     repos.RevisionRepo
	archival    ArchivalImporter
	eac         EACImporter
	jsonEntity  JSONEntityImporter
}

func newImportEnv(t *testing.T) *importEnv {
	t.Helper()
	dir := t.TempDir()
	database, err := gorm.Open(sqlite.Open(filepath.Join(dir, "autharch.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrateAll(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	log := logger.NewNop()
	projectRepo := repos.NewProjectRepo(database, log)
	recordRepo := repos.NewRecordRepo(database, log)
	entityRepo := repos.NewEntityRepo(database, log)
	referenceRepo := repos.NewReferenceRepo(database, log)
	vocabRepo := repos.NewVocabRepo(database, log)
	revRepo := repos.NewRevisionRepo(database, log)
	resolver := services.NewEntityResolver(database, log, entityRepo, vocabRepo)
	revisionSvc := services.NewRevisionService(database, log, revRepo)
	cfg := DefaultConfig()

	return &importEnv{
		db:          database,
		dir:         dir,
		projectRepo: projectRepo,
		recordRepo:  recordRepo,
		entityRepo:  entityRepo,
		vocabRepo:   vocabRepo,
		revRepo:     revRepo,
		archival: NewArchivalImporter(database, log, cfg, projectRepo, recordRepo,
			referenceRepo, vocabRepo, resolver, revisionSvc),
		eac: NewEACImporter(database, log, cfg, projectRepo, entityRepo,
			vocabRepo, resolver, revisionSvc),
		jsonEntity: NewJSONEntityImporter(database, log, cfg, projectRepo, entityRepo,
			vocabRepo, resolver, revisionSvc),
	}
}

func (e *importEnv) project(t *testing.T, slug string) *types.Project {
	t.Helper()
	project, _, err := e.projectRepo.GetOrCreateBySlug(context.Background(), nil, slug, slug)
	if err != nil {
		t.Fatalf("failed to create project %q: %v", slug, err)
	}
	return project
}

func (e *importEnv) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %q: %v", name, err)
	}
	return path
}
