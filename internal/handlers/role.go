package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/workspace-rbac-api/internal/dto"
	"github.com/yukikurage/workspace-rbac-api/internal/services"
)

type RoleHandler struct {
	roleService *services.RoleService
	log         *logrus.Logger
}

func NewRoleHandler(roleService *services.RoleService, log *logrus.Logger) *RoleHandler {
	return &RoleHandler{roleService: roleService, log: log}
}

// ListRoles returns the global roles and their permissions
func (h *RoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.roleService.ListRoles(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	items := make([]dto.RoleDTO, len(roles))
	for i, role := range roles {
		items[i] = dto.ToRoleDTO(role)
	}
	c.JSON(http.StatusOK, gin.H{"roles": items})
}
