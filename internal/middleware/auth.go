package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/workspace-rbac-api/internal/auth"
	"github.com/yukikurage/workspace-rbac-api/internal/constants"
	apierrors "github.com/yukikurage/workspace-rbac-api/internal/errors"
	"github.com/yukikurage/workspace-rbac-api/internal/models"
	"github.com/yukikurage/workspace-rbac-api/internal/services"
)

// TokenValidator checks a bearer token against signature, expiry and revocation.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*auth.Claims, error)
}

// UserLoader loads the user a token was issued to.
type UserLoader interface {
	GetByID(ctx context.Context, id uint64) (*models.User, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth authenticates the request with a bearer token. A token whose
// revocation state cannot be checked is rejected.
func RequireAuth(tokens TokenValidator, users UserLoader, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			apierrors.Unauthorized(c, "Not authenticated")
			c.Abort()
			return
		}

		claims, err := tokens.Validate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenStateUnavailable) {
				log.WithError(err).Warn("Token store unavailable, rejecting request")
			}
			respondAuthError(c, err)
			c.Abort()
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			respondAuthError(c, auth.ErrInvalidToken)
			c.Abort()
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				respondAuthError(c, auth.ErrInvalidToken)
			} else {
				log.WithError(err).WithField("user_id", userID).Error("Failed to load authenticated user")
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		if !user.IsActive {
			apierrors.RespondWithDomainError(c, services.ErrUserInactive)
			c.Abort()
			return
		}

		// Store identity in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
		c.Set(constants.ContextKeyClaims, claims)
		c.Next()
	}
}

func respondAuthError(c *gin.Context, err error) {
	var domainErr *apierrors.Error
	if !errors.As(err, &domainErr) {
		domainErr = auth.ErrInvalidToken
	}
	c.Header("WWW-Authenticate", "Bearer")
	apierrors.RespondWithDomainError(c, domainErr)
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetCurrentUser retrieves the authenticated user from context
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// GetClaims retrieves the validated token claims from context
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(constants.ContextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}
