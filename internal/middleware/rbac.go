package middleware

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/workspace-rbac-api/internal/constants"
	apierrors "github.com/yukikurage/workspace-rbac-api/internal/errors"
	"github.com/yukikurage/workspace-rbac-api/internal/models"
	"github.com/yukikurage/workspace-rbac-api/internal/services"
)

// Authorizer decides whether a user holds permissions in a workspace.
type Authorizer interface {
	Authorize(ctx context.Context, userID, workspaceID uint64, required ...models.Permission) (*services.Decision, error)
}

// DecisionObserver records authorization outcomes.
type DecisionObserver interface {
	ObserveAuthorization(decision, role string)
}

// RBAC builds permission-checking middleware for workspace routes.
type RBAC struct {
	authorizer Authorizer
	observer   DecisionObserver
	log        *logrus.Logger
}

// NewRBAC creates the permission middleware factory. observer may be nil.
func NewRBAC(authorizer Authorizer, observer DecisionObserver, log *logrus.Logger) *RBAC {
	return &RBAC{authorizer: authorizer, observer: observer, log: log}
}

// Require denies the request unless the caller holds every permission in the
// workspace named by the :workspace_id path parameter. Must run after RequireAuth.
func (r *RBAC) Require(perms ...models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		rawID := c.Param(constants.ParamWorkspaceID)
		if rawID == "" {
			if len(perms) == 0 {
				c.Next()
				return
			}
			r.log.WithFields(logrus.Fields{
				"path":        c.FullPath(),
				"permissions": perms,
			}).Error("Permission check on a route without a workspace")
			r.observe("deny", "")
			apierrors.Forbidden(c, "Workspace context required")
			c.Abort()
			return
		}

		workspaceID, err := strconv.ParseUint(rawID, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid workspace ID")
			c.Abort()
			return
		}

		decision, err := r.authorizer.Authorize(c.Request.Context(), userID, workspaceID, perms...)
		if err != nil {
			r.log.WithError(err).WithFields(logrus.Fields{
				"user_id":      userID,
				"workspace_id": workspaceID,
			}).Error("Failed to resolve permissions")
			r.observe("error", "")
			apierrors.InternalError(c, "")
			c.Abort()
			return
		}

		if !decision.Allowed() {
			r.observe("deny", decision.RoleName)
			apierrors.InsufficientPermissions(c, decision.DenialMessage(), gin.H{
				"missing_permissions": decision.Missing,
				"role":                decision.RoleName,
			})
			c.Abort()
			return
		}

		r.observe("allow", decision.RoleName)
		c.Set(constants.ContextKeyWorkspaceID, workspaceID)
		c.Set(constants.ContextKeyRoleName, decision.RoleName)
		c.Set(constants.ContextKeyPermissions, decision.Granted)
		c.Next()
	}
}

func (r *RBAC) observe(decision, role string) {
	if r.observer != nil {
		r.observer.ObserveAuthorization(decision, role)
	}
}

// GetWorkspaceID returns the workspace authorized for this request
func GetWorkspaceID(c *gin.Context) (uint64, bool) {
	value, exists := c.Get(constants.ContextKeyWorkspaceID)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint64)
	return id, ok
}

// GetRoleName returns the caller's role in the authorized workspace
func GetRoleName(c *gin.Context) string {
	return c.GetString(constants.ContextKeyRoleName)
}

// HasPermission reports whether the caller holds p in the authorized workspace
func HasPermission(c *gin.Context, p models.Permission) bool {
	value, exists := c.Get(constants.ContextKeyPermissions)
	if !exists {
		return false
	}
	perms, ok := value.(models.PermissionSet)
	return ok && perms.Has(p)
}
