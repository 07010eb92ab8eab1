package exporter

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/db"
	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/repos"
	"github.com/gpp-archive/autharch/internal/types"
)

type exportEnv struct {
	db       *gorm.DB
	records  repos.RecordRepo
	vocab    repos.VocabRepo
	refs     repos.ReferenceRepo
	exporter RAReferenceExporter
	source   *types.ReferenceSource
	statuses map[string]*types.MaintenanceStatus
}

func newExportEnv(t *testing.T) *exportEnv {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "autharch.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrateAll(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	log := logger.NewNop()
	recordRepo := repos.NewRecordRepo(database, log)
	vocabRepo := repos.NewVocabRepo(database, log)
	refRepo := repos.NewReferenceRepo(database, log)

	ctx := context.Background()
	source, err := vocabRepo.GetOrCreateReferenceSource(ctx, nil, "RA")
	if err != nil {
		t.Fatalf("failed to create reference source: %v", err)
	}
	statuses := map[string]*types.MaintenanceStatus{}
	for _, title := range []string{types.StatusNew, types.StatusDeleted} {
		status, err := vocabRepo.GetOrCreateMaintenanceStatus(ctx, nil, title)
		if err != nil {
			t.Fatalf("failed to create status %q: %v", title, err)
		}
		statuses[title] = status
	}

	return &exportEnv{
		db:       database,
		records:  recordRepo,
		vocab:    vocabRepo,
		refs:     refRepo,
		exporter: NewRAReferenceExporter(database, log, recordRepo, vocabRepo),
		source:   source,
		statuses: statuses,
	}
}

func (e *exportEnv) record(t *testing.T, recordUUID string, level types.Level, status string, raRefs ...string) *types.ArchivalRecord {
	t.Helper()
	ctx := context.Background()
	record := &types.ArchivalRecord{
		ID:                  uuid.New(),
		UUID:                recordUUID,
		Level:               level,
		Title:               recordUUID,
		MaintenanceStatusID: &e.statuses[status].ID,
	}
	for _, raRef := range raRefs {
		ref, _, err := e.refs.GetOrCreate(ctx, nil, e.source.ID, raRef)
		if err != nil {
			t.Fatalf("failed to create reference %q: %v", raRef, err)
		}
		record.References = append(record.References, ref)
	}
	if _, err := e.records.Create(ctx, nil, record); err != nil {
		t.Fatalf("failed to create record %q: %v", recordUUID, err)
	}
	return record
}

func TestExportExpandsRanges(t *testing.T) {
	env := newExportEnv(t)
	env.record(t, "i1", types.LevelItem, types.StatusNew, "GEO/ADD/32/12-13")

	export, err := env.exporter.Export(context.Background(), LevelItem)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if len(export.Refs) != 2 {
		t.Fatalf("expected 2 refs, got %d: %v", len(export.Refs), export.Refs)
	}
	for _, ref := range []string{"GEO/ADD/32/12", "GEO/ADD/32/13"} {
		if export.Refs[ref] != "i1" {
			t.Errorf("ref %q = %q", ref, export.Refs[ref])
		}
	}
	if len(export.Errors) != 0 {
		t.Errorf("unexpected errors: %v", export.Errors)
	}
}

func TestExportItemRefsWinOverFileRefs(t *testing.T) {
	env := newExportEnv(t)
	env.record(t, "i1", types.LevelItem, types.StatusNew, "GEO/ADD/32/12")
	env.record(t, "f1", types.LevelFile, types.StatusNew, "GEO/ADD/32/12", "GEO/ADD/32/14")

	export, err := env.exporter.Export(context.Background(), LevelBoth)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if export.Refs["GEO/ADD/32/12"] != "i1" {
		t.Errorf("conflicting ref should belong to the item, got %q", export.Refs["GEO/ADD/32/12"])
	}
	if export.Refs["GEO/ADD/32/14"] != "f1" {
		t.Errorf("unconflicted file ref missing: %v", export.Refs)
	}
	if len(export.Duplicates) != 0 {
		t.Errorf("item/file conflict is not a duplicate: %v", export.Duplicates)
	}
}

func TestExportRecordsDuplicates(t *testing.T) {
	env := newExportEnv(t)
	env.record(t, "i1", types.LevelItem, types.StatusNew, "GEO/ADD/32/12")
	env.record(t, "i2", types.LevelItem, types.StatusNew, "GEO/ADD/32/12")
	env.record(t, "i3", types.LevelItem, types.StatusNew, "GEO/ADD/32/12")

	export, err := env.exporter.Export(context.Background(), LevelItem)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if _, ok := export.Refs["GEO/ADD/32/12"]; ok {
		t.Error("duplicated ref must not appear in refs")
	}
	claimants := export.Duplicates["GEO/ADD/32/12"]
	if len(claimants) != 3 {
		t.Fatalf("expected 3 claimants, got %v", claimants)
	}
}

func TestExportSkipsDeletedRecords(t *testing.T) {
	env := newExportEnv(t)
	env.record(t, "i1", types.LevelItem, types.StatusDeleted, "GEO/ADD/32/12")
	env.record(t, "i2", types.LevelItem, types.StatusNew, "GEO/ADD/32/13")

	export, err := env.exporter.Export(context.Background(), LevelItem)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if len(export.Refs) != 1 || export.Refs["GEO/ADD/32/13"] != "i2" {
		t.Errorf("expected only the live record's ref, got %v", export.Refs)
	}
}

func TestExportReportsBadRanges(t *testing.T) {
	env := newExportEnv(t)
	env.record(t, "i1", types.LevelItem, types.StatusNew,
		"GEO/MAIN/32922A-33264, 33498-33500")

	export, err := env.exporter.Export(context.Background(), LevelItem)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if export.Errors["GEO/MAIN/32922A-33264"] != "i1" {
		t.Errorf("bad range not reported: %v", export.Errors)
	}
	// The rest of the reference still expands.
	if export.Refs["GEO/MAIN/33498"] != "i1" || export.Refs["GEO/MAIN/33500"] != "i1" {
		t.Errorf("later ranges should still expand: %v", export.Refs)
	}
}

func TestExportStripsLeadingZeros(t *testing.T) {
	env := newExportEnv(t)
	env.record(t, "i1", types.LevelItem, types.StatusNew, "GEO/025/007")

	export, err := env.exporter.Export(context.Background(), LevelItem)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if export.Refs["GEO/025/007"] != "i1" {
		t.Errorf("raw ref missing: %v", export.Refs)
	}
	if export.StrippedRefs["GEO/25/7"] != "i1" {
		t.Errorf("stripped ref missing: %v", export.StrippedRefs)
	}
}
