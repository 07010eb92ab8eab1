package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gpp-archive/autharch/internal/exporter"
	"github.com/gpp-archive/autharch/internal/logger"
)

type ExportHandler struct {
	log        *logger.Logger
	raExporter exporter.RAReferenceExporter
}

func NewExportHandler(log *logger.Logger, raExporter exporter.RAReferenceExporter) *ExportHandler {
	return &ExportHandler{
		log:        log.With("handler", "ExportHandler"),
		raExporter: raExporter,
	}
}

func (h *ExportHandler) ExportRAReferences(c *gin.Context) {
	level := exporter.Level(c.DefaultQuery("level", string(exporter.LevelBoth)))
	switch level {
	case exporter.LevelFile, exporter.LevelItem, exporter.LevelBoth:
	default:
		err := fmt.Errorf("level must be one of file, item or both, got %q", level)
		RespondError(c, http.StatusBadRequest, "invalid_level", err)
		return
	}
	export, err := h.raExporter.Export(c.Request.Context(), level)
	if err != nil {
		h.log.Error("ExportRAReferences failed", "error", err, "level", level)
		RespondError(c, http.StatusInternalServerError, "export_failed", err)
		return
	}
	RespondOK(c, export)
}
