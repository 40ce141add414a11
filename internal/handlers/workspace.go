package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/workspace-rbac-api/internal/constants"
	"github.com/yukikurage/workspace-rbac-api/internal/dto"
	apierrors "github.com/yukikurage/workspace-rbac-api/internal/errors"
	"github.com/yukikurage/workspace-rbac-api/internal/middleware"
	"github.com/yukikurage/workspace-rbac-api/internal/models"
	"github.com/yukikurage/workspace-rbac-api/internal/services"
)

type WorkspaceHandler struct {
	workspaceService *services.WorkspaceService
	memberService    *services.MemberService
	log              *logrus.Logger
}

func NewWorkspaceHandler(workspaceService *services.WorkspaceService, memberService *services.MemberService, log *logrus.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		memberService:    memberService,
		log:              log,
	}
}

// CreateWorkspace creates a workspace owned by the caller
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	type CreateWorkspaceRequest struct {
		Name        string `json:"name" binding:"required,min=1,max=255"`
		Description string `json:"description"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	workspace, err := h.workspaceService.Create(c.Request.Context(), services.CreateWorkspaceInput{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     userID,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkspaceDTO(*workspace, true))
}

// ListWorkspaces returns the workspaces the caller is a member of
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	rows, err := h.workspaceService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	items := make([]dto.WorkspaceWithRoleDTO, len(rows))
	for i, row := range rows {
		items[i] = dto.ToWorkspaceWithRoleDTO(row)
	}
	c.JSON(http.StatusOK, gin.H{"workspaces": items})
}

// GetWorkspace returns one workspace. The invite code is included for
// callers who may add members.
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	workspaceID, ok := parseIDParam(c, constants.ParamWorkspaceID, "workspace")
	if !ok {
		return
	}

	workspace, err := h.workspaceService.Get(c.Request.Context(), workspaceID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"workspace": dto.ToWorkspaceDTO(*workspace, middleware.HasPermission(c, models.PermissionAddMember)),
		"role_name": middleware.GetRoleName(c),
	})
}

// UpdateWorkspace applies a partial update
func (h *WorkspaceHandler) UpdateWorkspace(c *gin.Context) {
	type UpdateWorkspaceRequest struct {
		Name        *string `json:"name" binding:"omitempty,max=255"`
		Description *string `json:"description"`
	}

	workspaceID, ok := parseIDParam(c, constants.ParamWorkspaceID, "workspace")
	if !ok {
		return
	}

	var req UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	workspace, err := h.workspaceService.Update(c.Request.Context(), workspaceID, services.UpdateWorkspaceInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(*workspace, middleware.HasPermission(c, models.PermissionAddMember)))
}

// DeleteWorkspace removes the workspace and everything in it
func (h *WorkspaceHandler) DeleteWorkspace(c *gin.Context) {
	workspaceID, ok := parseIDParam(c, constants.ParamWorkspaceID, "workspace")
	if !ok {
		return
	}

	if err := h.workspaceService.Delete(c.Request.Context(), workspaceID); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Workspace deleted successfully",
	})
}

// RegenerateInviteCode replaces the workspace invite code
func (h *WorkspaceHandler) RegenerateInviteCode(c *gin.Context) {
	workspaceID, ok := parseIDParam(c, constants.ParamWorkspaceID, "workspace")
	if !ok {
		return
	}

	workspace, err := h.workspaceService.RegenerateInviteCode(c.Request.Context(), workspaceID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invite_code": workspace.InviteCode,
	})
}

// JoinWorkspace adds the caller to a workspace via invite code
func (h *WorkspaceHandler) JoinWorkspace(c *gin.Context) {
	type JoinWorkspaceRequest struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req JoinWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	workspace, member, err := h.memberService.JoinByInviteCode(c.Request.Context(), userID, req.InviteCode)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"workspace": dto.ToWorkspaceDTO(*workspace, false),
		"member":    dto.ToMemberDTO(*member),
	})
}
