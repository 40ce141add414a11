package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	apierrors "github.com/yukikurage/workspace-rbac-api/internal/errors"
)

// respondError writes the response for a service error. Classified errors
// map to their status; anything else is logged and hidden behind a 500.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	var domainErr *apierrors.Error
	if errors.As(err, &domainErr) && domainErr.Kind != apierrors.KindInternal {
		if domainErr.Kind == apierrors.KindAuth {
			c.Header("WWW-Authenticate", "Bearer")
		}
		apierrors.RespondWithDomainError(c, domainErr)
		return
	}

	_ = c.Error(err)
	if errors.Is(err, context.DeadlineExceeded) {
		log.WithError(err).WithField("path", c.FullPath()).Warn("Request timed out")
		apierrors.ServiceUnavailable(c, "Request timed out")
		return
	}

	log.WithError(err).WithField("path", c.FullPath()).Error("Unhandled error")
	apierrors.InternalError(c, "")
}

// parseIDParam reads a numeric path parameter, writing a 400 when it is malformed.
func parseIDParam(c *gin.Context, name, label string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+label+" ID")
		return 0, false
	}
	return id, true
}
