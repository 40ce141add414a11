package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/workspace-rbac-api/internal/dto"
	apierrors "github.com/yukikurage/workspace-rbac-api/internal/errors"
	"github.com/yukikurage/workspace-rbac-api/internal/middleware"
	"github.com/yukikurage/workspace-rbac-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	log         *logrus.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// Register creates a user and logs them in.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Email          string `json:"email" binding:"required,email"`
		Password       string `json:"password" binding:"required"`
		Name           string `json:"name" binding:"max=255"`
		ProfilePicture string `json:"profile_picture" binding:"max=1024"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Email:          req.Email,
		Password:       req.Password,
		Name:           req.Name,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	token, err := h.authService.IssueToken(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewTokenResponse(token.AccessToken, token.Claims.ExpiresAt.Time, *user))
}

// Login authenticates with email and password. Form posts use the OAuth2
// password-flow field name "username" for the email.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" form:"username" binding:"required"`
		Password string `json:"password" form:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTokenResponse(token.AccessToken, token.Claims.ExpiresAt.Time, *user))
}

// Logout revokes the presented token.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logout successful. Token has been revoked.",
	})
}

// LogoutAll revokes every token of the authenticated user.
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	revoked, err := h.authService.LogoutAll(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out from all devices successfully.",
		"revoked": revoked,
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateCurrentUser edits the authenticated user's profile.
func (h *AuthHandler) UpdateCurrentUser(c *gin.Context) {
	type UpdateProfileRequest struct {
		Name               *string              `json:"name" binding:"omitempty,max=255"`
		ProfilePicture     *string              `json:"profile_picture" binding:"omitempty,max=1024"`
		CurrentWorkspaceID dto.Optional[uint64] `json:"current_workspace_id"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, services.ProfileUpdate{
		Name:                  req.Name,
		ProfilePicture:        req.ProfilePicture,
		CurrentWorkspaceID:    req.CurrentWorkspaceID.Ptr(),
		ClearCurrentWorkspace: req.CurrentWorkspaceID.IsNull(),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}
