package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/services"
)

type EntityHandler struct {
	log            *logger.Logger
	projectService services.ProjectService
	entityService  services.EntityService
	mergeService   services.MergeService
}

func NewEntityHandler(
	log *logger.Logger,
	projectService services.ProjectService,
	entityService services.EntityService,
	mergeService services.MergeService,
) *EntityHandler {
	return &EntityHandler{
		log:            log.With("handler", "EntityHandler"),
		projectService: projectService,
		entityService:  entityService,
		mergeService:   mergeService,
	}
}

func (h *EntityHandler) ListProjectEntities(c *gin.Context) {
	project, err := h.projectService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "project_not_found", err)
		return
	}
	entities, err := h.entityService.ListByProject(c.Request.Context(), project.ID)
	if err != nil {
		h.log.Error("ListProjectEntities failed", "error", err, "project_id", project.ID)
		RespondError(c, http.StatusInternalServerError, "load_entities_failed", err)
		return
	}
	RespondOK(c, gin.H{"entities": entities})
}

func (h *EntityHandler) GetEntity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_entity_id", err)
		return
	}
	entity, err := h.entityService.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, http.StatusNotFound, "entity_not_found", err)
		return
	}
	RespondOK(c, gin.H{"entity": entity})
}

func (h *EntityHandler) ListEntityRevisions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_entity_id", err)
		return
	}
	revisions, err := h.entityService.Revisions(c.Request.Context(), id)
	if err != nil {
		h.log.Error("ListEntityRevisions failed", "error", err, "entity_id", id)
		RespondError(c, http.StatusInternalServerError, "load_revisions_failed", err)
		return
	}
	RespondOK(c, gin.H{"revisions": revisions})
}

type mergeRequest struct {
	LoserID uuid.UUID `json:"loser_id" binding:"required"`
	Actor   string    `json:"actor"`
}

func (h *EntityHandler) MergeEntity(c *gin.Context) {
	survivorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_entity_id", err)
		return
	}
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	actor := req.Actor
	if actor == "" {
		actor = "api"
	}
	survivor, err := h.mergeService.Merge(c.Request.Context(), survivorID, req.LoserID, actor)
	if err != nil {
		var mergeErr *services.MergeError
		if errors.As(err, &mergeErr) {
			RespondError(c, http.StatusConflict, string(mergeErr.Reason), err)
			return
		}
		h.log.Error("MergeEntity failed", "error", err, "survivor_id", survivorID, "loser_id", req.LoserID)
		RespondError(c, http.StatusInternalServerError, "merge_failed", err)
		return
	}
	RespondOK(c, gin.H{"entity": survivor})
}
