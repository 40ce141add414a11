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

type MemberHandler struct {
	memberService *services.MemberService
	authService   *services.AuthService
	log           *logrus.Logger
}

func NewMemberHandler(memberService *services.MemberService, authService *services.AuthService, log *logrus.Logger) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
		authService:   authService,
		log:           log,
	}
}

// ListMembers returns the members of the workspace
func (h *MemberHandler) ListMembers(c *gin.Context) {
	workspaceID, ok := parseIDParam(c, constants.ParamWorkspaceID, "workspace")
	if !ok {
		return
	}

	members, err := h.memberService.ListMembers(c.Request.Context(), workspaceID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": dto.ToMemberDTOs(members)})
}

// AddMember adds an existing user, addressed by email, to the workspace
func (h *MemberHandler) AddMember(c *gin.Context) {
	type AddMemberRequest struct {
		UserEmail string `json:"user_email" binding:"required,email"`
		RoleName  string `json:"role_name" binding:"required"`
	}

	workspaceID, ok := parseIDParam(c, constants.ParamWorkspaceID, "workspace")
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.GetByEmail(c.Request.Context(), req.UserEmail)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	member, err := h.memberService.AddMember(c.Request.Context(), user.ID, workspaceID, req.RoleName)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMemberDTO(*member))
}

// UpdateMemberRole changes a member's role
func (h *MemberHandler) UpdateMemberRole(c *gin.Context) {
	type UpdateRoleRequest struct {
		RoleName string `json:"role_name" binding:"required"`
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	workspaceID, ok := parseIDParam(c, constants.ParamWorkspaceID, "workspace")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, constants.ParamUserID, "user")
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.memberService.UpdateRole(c.Request.Context(), actorID, userID, workspaceID, req.RoleName)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberDTO(*member))
}

// RemoveMember removes a member from the workspace
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	workspaceID, ok := parseIDParam(c, constants.ParamWorkspaceID, "workspace")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, constants.ParamUserID, "user")
	if !ok {
		return
	}

	if err := h.memberService.RemoveMember(c.Request.Context(), userID, workspaceID); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}
