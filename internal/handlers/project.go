package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/services"
)

type ProjectHandler struct {
	log            *logger.Logger
	projectService services.ProjectService
}

func NewProjectHandler(log *logger.Logger, projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		log:            log.With("handler", "ProjectHandler"),
		projectService: projectService,
	}
}

func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.projectService.List(c.Request.Context())
	if err != nil {
		h.log.Error("ListProjects failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "load_projects_failed", err)
		return
	}
	RespondOK(c, gin.H{"projects": projects})
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	slug := c.Param("slug")
	project, err := h.projectService.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		RespondError(c, http.StatusNotFound, "project_not_found", err)
		return
	}
	RespondOK(c, gin.H{"project": project})
}

type createProjectRequest struct {
	Slug  string `json:"slug" binding:"required"`
	Title string `json:"title" binding:"required"`
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	project, err := h.projectService.Create(c.Request.Context(), req.Slug, req.Title)
	if err != nil {
		h.log.Error("CreateProject failed", "error", err, "slug", req.Slug)
		RespondError(c, http.StatusBadRequest, "create_project_failed", err)
		return
	}
	RespondOK(c, gin.H{"project": project})
}
