package app

import (
	"github.com/gin-gonic/gin"

	"github.com/gpp-archive/autharch/internal/handlers"
	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/server"
)

type Handlers struct {
	Project *handlers.ProjectHandler
	Entity  *handlers.EntityHandler
	Record  *handlers.RecordHandler
	Export  *handlers.ExportHandler
}

func wireHandlers(log *logger.Logger, s Services) Handlers {
	return Handlers{
		Project: handlers.NewProjectHandler(log, s.Project),
		Entity:  handlers.NewEntityHandler(log, s.Project, s.Entity, s.Merge),
		Record:  handlers.NewRecordHandler(log, s.Project, s.Record),
		Export:  handlers.NewExportHandler(log, s.RAExporter),
	}
}

func wireRouter(h Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		ProjectHandler: h.Project,
		EntityHandler:  h.Entity,
		RecordHandler:  h.Record,
		ExportHandler:  h.Export,
	})
}
