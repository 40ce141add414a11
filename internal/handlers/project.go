package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/workspace-rbac-api/internal/constants"
	"github.com/yukikurage/workspace-rbac-api/internal/dto"
	apierrors "github.com/yukikurage/workspace-rbac-api/internal/errors"
	"github.com/yukikurage/workspace-rbac-api/internal/middleware"
	"github.com/yukikurage/workspace-rbac-api/internal/services"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	log            *logrus.Logger
}

func NewProjectHandler(projectService *services.ProjectService, log *logrus.Logger) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, log: log}
}

// CreateProject creates a project in the workspace
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	type CreateProjectRequest struct {
		Name        string `json:"name" binding:"required,max=255"`
		Description string `json:"description"`
		Emoji       string `json:"emoji" binding:"max=32"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	workspaceID, ok := parseIDParam(c, constants.ParamWorkspaceID, "workspace")
	if !ok {
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Emoji:       req.Emoji,
		WorkspaceID: workspaceID,
		CreatedByID: userID,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects returns the projects of the workspace
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	workspaceID, ok := parseIDParam(c, constants.ParamWorkspaceID, "workspace")
	if !ok {
		return
	}

	projects, err := h.projectService.List(c.Request.Context(), workspaceID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": dto.ToProjectDTOs(projects)})
}

// GetProject returns a project of the workspace
func (h *ProjectHandler) GetProject(c *gin.Context) {
	workspaceID, ok := parseIDParam(c, constants.ParamWorkspaceID, "workspace")
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, constants.ParamProjectID, "project")
	if !ok {
		return
	}

	project, err := h.projectService.Get(c.Request.Context(), workspaceID, projectID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// UpdateProject applies a partial update
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	type UpdateProjectRequest struct {
		Name        *string `json:"name" binding:"omitempty,max=255"`
		Description *string `json:"description"`
		Emoji       *string `json:"emoji" binding:"omitempty,max=32"`
	}

	workspaceID, ok := parseIDParam(c, constants.ParamWorkspaceID, "workspace")
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, constants.ParamProjectID, "project")
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), workspaceID, projectID, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Emoji:       req.Emoji,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject removes the project and its tasks
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	workspaceID, ok := parseIDParam(c, constants.ParamWorkspaceID, "workspace")
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, constants.ParamProjectID, "project")
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), workspaceID, projectID); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}
