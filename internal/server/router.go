package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gpp-archive/autharch/internal/handlers"
)

type RouterConfig struct {
	ProjectHandler *handlers.ProjectHandler
	EntityHandler  *handlers.EntityHandler
	RecordHandler  *handlers.RecordHandler
	ExportHandler  *handlers.ExportHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Projects
		api.GET("/projects", cfg.ProjectHandler.ListProjects)
		api.POST("/projects", cfg.ProjectHandler.CreateProject)
		api.GET("/projects/:slug", cfg.ProjectHandler.GetProject)
		api.GET("/projects/:slug/entities", cfg.EntityHandler.ListProjectEntities)
		api.GET("/projects/:slug/records", cfg.RecordHandler.ListProjectRecords)
		// Entities
		api.GET("/entities/:id", cfg.EntityHandler.GetEntity)
		api.GET("/entities/:id/revisions", cfg.EntityHandler.ListEntityRevisions)
		api.POST("/entities/:id/merge", cfg.EntityHandler.MergeEntity)
		// Records
		api.GET("/records/:uuid", cfg.RecordHandler.GetRecord)
		api.GET("/records/:uuid/revisions", cfg.RecordHandler.ListRecordRevisions)
		// Exports
		api.GET("/exports/ra-references", cfg.ExportHandler.ExportRAReferences)
	}

	return router
}
