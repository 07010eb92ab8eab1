package db

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/types"
)

// The schema must migrate on sqlite as well as Postgres; nothing in the
// column definitions may lean on Postgres-only functions.
func TestAutoMigrateAllOnSQLite(t *testing.T) {
	database, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "autharch.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := AutoMigrateAll(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	project := &types.Project{
		ID:    uuid.New(),
		Title: "Georgian Papers",
		Slug:  "gpp",
	}
	if err := database.Create(project).Error; err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	var loaded types.Project
	if err := database.First(&loaded, "id = ?", project.ID).Error; err != nil {
		t.Fatalf("failed to reload project: %v", err)
	}
	if loaded.ID != project.ID {
		t.Fatalf("expected id %s, got %s", project.ID, loaded.ID)
	}
	if loaded.CreatedAt.IsZero() || loaded.UpdatedAt.IsZero() {
		t.Fatalf("expected gorm to populate timestamps, got %+v", loaded)
	}
}
