package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/services"
)

type RecordHandler struct {
	log            *logger.Logger
	projectService services.ProjectService
	recordService  services.RecordService
}

func NewRecordHandler(log *logger.Logger, projectService services.ProjectService, recordService services.RecordService) *RecordHandler {
	return &RecordHandler{
		log:            log.With("handler", "RecordHandler"),
		projectService: projectService,
		recordService:  recordService,
	}
}

func (h *RecordHandler) ListProjectRecords(c *gin.Context) {
	project, err := h.projectService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "project_not_found", err)
		return
	}
	records, err := h.recordService.ListByProject(c.Request.Context(), project.ID)
	if err != nil {
		h.log.Error("ListProjectRecords failed", "error", err, "project_id", project.ID)
		RespondError(c, http.StatusInternalServerError, "load_records_failed", err)
		return
	}
	RespondOK(c, gin.H{"records": records})
}

func (h *RecordHandler) GetRecord(c *gin.Context) {
	record, err := h.recordService.GetByUUID(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "record_not_found", err)
		return
	}
	RespondOK(c, gin.H{"record": record})
}

func (h *RecordHandler) ListRecordRevisions(c *gin.Context) {
	record, err := h.recordService.GetByUUID(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "record_not_found", err)
		return
	}
	revisions, err := h.recordService.Revisions(c.Request.Context(), record.ID)
	if err != nil {
		h.log.Error("ListRecordRevisions failed", "error", err, "record_uuid", record.UUID)
		RespondError(c, http.StatusInternalServerError, "load_revisions_failed", err)
		return
	}
	RespondOK(c, gin.H{"revisions": revisions})
}
