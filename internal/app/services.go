package app

import (
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/exporter"
	"github.com/gpp-archive/autharch/internal/importer"
	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/services"
)

type Services struct {
	Revision services.RevisionService
	Resolver services.EntityResolver
	Merge    services.MergeService
	Project  services.ProjectService
	Entity   services.EntityService
	Record   services.RecordService

	ArchivalImporter   importer.ArchivalImporter
	EACImporter        importer.EACImporter
	JSONEntityImporter importer.JSONEntityImporter
	RAExporter         exporter.RAReferenceExporter
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) Services {
	revisionSvc := services.NewRevisionService(db, log, r.Revision)
	resolver := services.NewEntityResolver(db, log, r.Entity, r.Vocab)
	mergeSvc := services.NewMergeService(db, log, r.Entity, r.Record, r.Vocab, revisionSvc)
	projectSvc := services.NewProjectService(db, log, r.Project)
	entitySvc := services.NewEntityService(db, log, r.Entity, r.Revision)
	recordSvc := services.NewRecordService(db, log, r.Record, r.Revision)

	archivalImporter := importer.NewArchivalImporter(db, log, cfg.Importer, r.Project, r.Record, r.Reference, r.Vocab, resolver, revisionSvc)
	eacImporter := importer.NewEACImporter(db, log, cfg.Importer, r.Project, r.Entity, r.Vocab, resolver, revisionSvc)
	jsonImporter := importer.NewJSONEntityImporter(db, log, cfg.Importer, r.Project, r.Entity, r.Vocab, resolver, revisionSvc)
	raExporter := exporter.NewRAReferenceExporter(db, log, r.Record, r.Vocab)

	return Services{
		Revision:           revisionSvc,
		Resolver:           resolver,
		Merge:              mergeSvc,
		Project:            projectSvc,
		Entity:             entitySvc,
		Record:             recordSvc,
		ArchivalImporter:   archivalImporter,
		EACImporter:        eacImporter,
		JSONEntityImporter: jsonImporter,
		RAExporter:         raExporter,
	}
}
