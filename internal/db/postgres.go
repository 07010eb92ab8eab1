package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/types"
	"github.com/gpp-archive/autharch/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "autharch", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	return nil
}

// AutoMigrateAll migrates every model. Shared with the sqlite-backed tests.
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Project{},
		&types.EntityType{},
		&types.EntityRelationType{},
		&types.ResourceRelationType{},
		&types.NamePartType{},
		&types.MaintenanceStatus{},
		&types.PublicationStatus{},
		&types.RecordType{},
		&types.ReferenceSource{},
		&types.Repository{},
		&types.Reference{},
		&types.ArchivalRecord{},
		&types.Entity{},
		&types.Identity{},
		&types.NameEntry{},
		&types.NamePart{},
		&types.Description{},
		&types.BiographyHistory{},
		&types.Place{},
		&types.Event{},
		&types.Function{},
		&types.LanguageScript{},
		&types.LocalDescription{},
		&types.LegalStatus{},
		&types.Mandate{},
		&types.Relation{},
		&types.Resource{},
		&types.Control{},
		&types.Source{},
		&types.Revision{},
	)
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
