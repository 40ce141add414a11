package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/workspace-rbac-api/internal/auth"
	"github.com/yukikurage/workspace-rbac-api/internal/dto"
	apierrors "github.com/yukikurage/workspace-rbac-api/internal/errors"
	"github.com/yukikurage/workspace-rbac-api/internal/services"
)

// OAuthHandler serves the Google sign-in flow. A nil provider means sign-in
// is not configured.
type OAuthHandler struct {
	provider    *auth.OAuthProvider
	states      *auth.OAuthStateStore
	authService *services.AuthService
	log         *logrus.Logger
}

// NewOAuthHandler creates a new OAuthHandler.
func NewOAuthHandler(provider *auth.OAuthProvider, states *auth.OAuthStateStore, authService *services.AuthService, log *logrus.Logger) *OAuthHandler {
	return &OAuthHandler{
		provider:    provider,
		states:      states,
		authService: authService,
		log:         log,
	}
}

// GoogleLogin redirects to the Google consent page.
func (h *OAuthHandler) GoogleLogin(c *gin.Context) {
	if h.provider == nil {
		apierrors.ServiceUnavailable(c, "Google OAuth2 not configured")
		return
	}

	state, err := h.states.Create(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state))
}

// GoogleCallback completes the flow and issues an access token.
func (h *OAuthHandler) GoogleCallback(c *gin.Context) {
	if h.provider == nil {
		apierrors.ServiceUnavailable(c, "Google OAuth2 not configured")
		return
	}

	if reason := c.Query("error"); reason != "" {
		apierrors.BadRequest(c, "OAuth error: "+reason)
		return
	}
	code := c.Query("code")
	if code == "" {
		apierrors.BadRequest(c, "Missing authorization code")
		return
	}

	ctx := c.Request.Context()
	ok, err := h.states.Consume(ctx, c.Query("state"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !ok {
		respondError(c, h.log, auth.ErrOAuthState)
		return
	}

	identity, err := h.provider.Identify(ctx, code)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	user, token, err := h.authService.LoginWithOAuth(ctx, identity)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTokenResponse(token.AccessToken, token.Claims.ExpiresAt.Time, *user))
}
