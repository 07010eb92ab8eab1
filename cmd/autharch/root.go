package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/db"
	"github.com/gpp-archive/autharch/internal/exporter"
	"github.com/gpp-archive/autharch/internal/importer"
	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/repos"
	"github.com/gpp-archive/autharch/internal/services"
)

// Global flag values.
var (
	flagConfigDir string
)

// The stack shared by all subcommands. Set by initStack before any
// subcommand runs.
var (
	cliLog *logger.Logger
	cliDB  *gorm.DB

	projectRepo repos.ProjectRepo

	projectService services.ProjectService
	mergeService   services.MergeService

	archivalImporter   importer.ArchivalImporter
	eacImporter        importer.EACImporter
	jsonEntityImporter importer.JSONEntityImporter
	raExporter         exporter.RAReferenceExporter
)

var rootCmd = &cobra.Command{
	Use:   "autharch",
	Short: "Autharch manages archival catalogue and authority data",
	Long: `Autharch is the command line interface for the archival catalogue.
It imports archival descriptions from spreadsheets, authority entities
from EAC-CPF XML and JSON, exports RA reference concordances, and merges
duplicate entities.`,
	SilenceUsage:      true,
	PersistentPreRunE: initStack,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: $HOME/.autharch)")

	rootCmd.AddCommand(createProjectCmd)
	rootCmd.AddCommand(importArchivalCmd)
	rootCmd.AddCommand(importEACCmd)
	rootCmd.AddCommand(importEntitiesCmd)
	rootCmd.AddCommand(exportRARefsCmd)
	rootCmd.AddCommand(mergeCmd)
}

func initStack(cmd *cobra.Command, args []string) error {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "production"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	cliLog = log

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		return fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		return fmt.Errorf("postgres automigrate: %w", err)
	}
	cliDB = pg.DB()

	projectRepo = repos.NewProjectRepo(cliDB, log)
	entityRepo := repos.NewEntityRepo(cliDB, log)
	recordRepo := repos.NewRecordRepo(cliDB, log)
	referenceRepo := repos.NewReferenceRepo(cliDB, log)
	vocabRepo := repos.NewVocabRepo(cliDB, log)
	revisionRepo := repos.NewRevisionRepo(cliDB, log)

	revisionService := services.NewRevisionService(cliDB, log, revisionRepo)
	resolver := services.NewEntityResolver(cliDB, log, entityRepo, vocabRepo)
	projectService = services.NewProjectService(cliDB, log, projectRepo)
	mergeService = services.NewMergeService(cliDB, log, entityRepo, recordRepo, vocabRepo, revisionService)

	archivalImporter = importer.NewArchivalImporter(cliDB, log, cfg, projectRepo, recordRepo, referenceRepo, vocabRepo, resolver, revisionService)
	eacImporter = importer.NewEACImporter(cliDB, log, cfg, projectRepo, entityRepo, vocabRepo, resolver, revisionService)
	jsonEntityImporter = importer.NewJSONEntityImporter(cliDB, log, cfg, projectRepo, entityRepo, vocabRepo, resolver, revisionService)
	raExporter = exporter.NewRAReferenceExporter(cliDB, log, recordRepo, vocabRepo)

	return nil
}
