package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/db"
	"github.com/gpp-archive/autharch/internal/exporter"
	"github.com/gpp-archive/autharch/internal/handlers"
	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/repos"
	"github.com/gpp-archive/autharch/internal/server"
	"github.com/gpp-archive/autharch/internal/services"
	"github.com/gpp-archive/autharch/internal/types"
)

type apiEnv struct {
	db         *gorm.DB
	router     *gin.Engine
	entityRepo repos.EntityRepo
	vocabRepo  repos.VocabRepo
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "autharch.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrateAll(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	log := logger.NewNop()
	projectRepo := repos.NewProjectRepo(database, log)
	entityRepo := repos.NewEntityRepo(database, log)
	recordRepo := repos.NewRecordRepo(database, log)
	vocabRepo := repos.NewVocabRepo(database, log)
	revRepo := repos.NewRevisionRepo(database, log)

	revisionSvc := services.NewRevisionService(database, log, revRepo)
	projectSvc := services.NewProjectService(database, log, projectRepo)
	entitySvc := services.NewEntityService(database, log, entityRepo, revRepo)
	recordSvc := services.NewRecordService(database, log, recordRepo, revRepo)
	mergeSvc := services.NewMergeService(database, log, entityRepo, recordRepo, vocabRepo, revisionSvc)
	raExporter := exporter.NewRAReferenceExporter(database, log, recordRepo, vocabRepo)

	router := server.NewRouter(server.RouterConfig{
		ProjectHandler: handlers.NewProjectHandler(log, projectSvc),
		EntityHandler:  handlers.NewEntityHandler(log, projectSvc, entitySvc, mergeSvc),
		RecordHandler:  handlers.NewRecordHandler(log, projectSvc, recordSvc),
		ExportHandler:  handlers.NewExportHandler(log, raExporter),
	})

	return &apiEnv{db: database, router: router, entityRepo: entityRepo, vocabRepo: vocabRepo}
}

func (e *apiEnv) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func (e *apiEnv) makeEntity(t *testing.T, name string, projectID *uuid.UUID) *types.Entity {
	t.Helper()
	ctx := context.Background()
	typeTerm, err := e.vocabRepo.GetOrCreateEntityType(ctx, nil, "person")
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
	entity := &types.Entity{
		ID:           uuid.New(),
		EntityTypeID: typeTerm.ID,
		ProjectID:    projectID,
		Identities: []*types.Identity{
			{
				ID:                uuid.New(),
				PreferredIdentity: true,
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

func TestProjectEndpoints(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.request(t, http.MethodPost, "/api/projects", gin.H{"slug": "gpp", "title": "Georgian Papers"})
	if rec.Code != http.StatusOK {
		t.Fatalf("create project returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.request(t, http.MethodGet, "/api/projects", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list projects returned %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	var projects []types.Project
	if err := json.Unmarshal(body["projects"], &projects); err != nil {
		t.Fatalf("failed to decode projects: %v", err)
	}
	if len(projects) != 1 || projects[0].Slug != "gpp" {
		t.Fatalf("expected one project with slug gpp, got %+v", projects)
	}

	rec = env.request(t, http.MethodGet, "/api/projects/gpp", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get project returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.request(t, http.MethodGet, "/api/projects/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown project, got %d", rec.Code)
	}

	rec = env.request(t, http.MethodPost, "/api/projects", gin.H{"slug": "gpp", "title": "Duplicate"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate slug, got %d", rec.Code)
	}
}

func TestEntityEndpoints(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.request(t, http.MethodPost, "/api/projects", gin.H{"slug": "gpp", "title": "Georgian Papers"})
	if rec.Code != http.StatusOK {
		t.Fatalf("create project returned %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Project types.Project `json:"project"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode project: %v", err)
	}
	projectID := created.Project.ID

	survivor := env.makeEntity(t, "North, Frederick", &projectID)
	loser := env.makeEntity(t, "Lord North", &projectID)

	rec = env.request(t, http.MethodGet, "/api/projects/gpp/entities", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list entities returned %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	var entities []types.Entity
	if err := json.Unmarshal(body["entities"], &entities); err != nil {
		t.Fatalf("failed to decode entities: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(entities))
	}

	rec = env.request(t, http.MethodGet, "/api/entities/"+survivor.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get entity returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.request(t, http.MethodGet, "/api/entities/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad entity id, got %d", rec.Code)
	}

	// Self merge violates a precondition and maps to 409.
	rec = env.request(t, http.MethodPost, fmt.Sprintf("/api/entities/%s/merge", survivor.ID), gin.H{"loser_id": survivor.ID})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for self merge, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.request(t, http.MethodPost, fmt.Sprintf("/api/entities/%s/merge", survivor.ID), gin.H{"loser_id": loser.ID, "actor": "tester"})
	if rec.Code != http.StatusOK {
		t.Fatalf("merge returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.request(t, http.MethodGet, fmt.Sprintf("/api/entities/%s/revisions", survivor.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list revisions returned %d: %s", rec.Code, rec.Body.String())
	}
	body = decodeBody(t, rec)
	var revisions []types.Revision
	if err := json.Unmarshal(body["revisions"], &revisions); err != nil {
		t.Fatalf("failed to decode revisions: %v", err)
	}
	if len(revisions) != 1 {
		t.Fatalf("expected 1 revision after merge, got %d", len(revisions))
	}
}

func TestExportEndpoint(t *testing.T) {
	env := newAPIEnv(t)

	if _, err := env.vocabRepo.GetOrCreateReferenceSource(context.Background(), nil, "RA"); err != nil {
		t.Fatalf("failed to create RA source: %v", err)
	}

	rec := env.request(t, http.MethodGet, "/api/exports/ra-references?level=banana", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad level, got %d", rec.Code)
	}

	rec = env.request(t, http.MethodGet, "/api/exports/ra-references", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export returned %d: %s", rec.Code, rec.Body.String())
	}
	var export exporter.RefsExport
	if err := json.Unmarshal(rec.Body.Bytes(), &export); err != nil {
		t.Fatalf("failed to decode export: %v", err)
	}
	if len(export.Refs) != 0 {
		t.Fatalf("expected empty refs, got %v", export.Refs)
	}
}
