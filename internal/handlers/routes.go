package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workspace-rbac-api/internal/middleware"
	"github.com/yukikurage/workspace-rbac-api/internal/models"
)

// Routes groups the handlers and the auth middleware mounted under /api.
type Routes struct {
	Auth      *AuthHandler
	OAuth     *OAuthHandler
	Roles     *RoleHandler
	Workspace *WorkspaceHandler
	Members   *MemberHandler
	Projects  *ProjectHandler
	Tasks     *TaskHandler

	RequireAuth gin.HandlerFunc
	RBAC        *middleware.RBAC
}

// Register mounts every API route on api.
func (rt *Routes) Register(api *gin.RouterGroup) {
	can := rt.RBAC.Require

	// Auth routes (public)
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", rt.Auth.Register)
		authGroup.POST("/login", rt.Auth.Login)
		authGroup.POST("/logout", rt.Auth.Logout)
		authGroup.POST("/logout-all", rt.RequireAuth, rt.Auth.LogoutAll)
		authGroup.GET("/me", rt.RequireAuth, rt.Auth.GetCurrentUser)
		authGroup.GET("/users/me", rt.RequireAuth, rt.Auth.GetCurrentUser)
		authGroup.PATCH("/me", rt.RequireAuth, rt.Auth.UpdateCurrentUser)
		authGroup.GET("/google", rt.OAuth.GoogleLogin)
		authGroup.GET("/google/callback", rt.OAuth.GoogleCallback)
	}

	api.GET("/roles", rt.RequireAuth, rt.Roles.ListRoles)

	// Workspace routes (protected)
	workspaces := api.Group("/workspaces")
	workspaces.Use(rt.RequireAuth)
	{
		workspaces.POST("", rt.Workspace.CreateWorkspace)
		workspaces.GET("", rt.Workspace.ListWorkspaces)
		workspaces.POST("/join", rt.Workspace.JoinWorkspace)

		ws := workspaces.Group("/:workspace_id")
		ws.GET("", can(models.PermissionViewOnly), rt.Workspace.GetWorkspace)
		ws.PATCH("", can(models.PermissionEditWorkspace), rt.Workspace.UpdateWorkspace)
		ws.PUT("", can(models.PermissionEditWorkspace), rt.Workspace.UpdateWorkspace)
		ws.DELETE("", can(models.PermissionDeleteWorkspace), rt.Workspace.DeleteWorkspace)
		ws.POST("/invite-code", can(models.PermissionManageWorkspaceSettings), rt.Workspace.RegenerateInviteCode)

		ws.GET("/members", can(models.PermissionViewOnly), rt.Members.ListMembers)
		ws.POST("/members", can(models.PermissionAddMember), rt.Members.AddMember)
		ws.PUT("/members/:user_id/role", can(models.PermissionChangeMemberRole), rt.Members.UpdateMemberRole)
		ws.DELETE("/members/:user_id", can(models.PermissionRemoveMember), rt.Members.RemoveMember)

		ws.POST("/projects", can(models.PermissionCreateProject), rt.Projects.CreateProject)
		ws.GET("/projects", can(models.PermissionViewOnly), rt.Projects.ListProjects)

		project := ws.Group("/projects/:project_id")
		project.GET("", can(models.PermissionViewOnly), rt.Projects.GetProject)
		project.PATCH("", can(models.PermissionEditProject), rt.Projects.UpdateProject)
		project.PUT("", can(models.PermissionEditProject), rt.Projects.UpdateProject)
		project.DELETE("", can(models.PermissionDeleteProject), rt.Projects.DeleteProject)

		project.POST("/tasks", can(models.PermissionCreateTask), rt.Tasks.CreateTask)
		project.GET("/tasks", can(models.PermissionViewOnly), rt.Tasks.ListTasks)
		project.GET("/tasks/:task_id", can(models.PermissionViewOnly), rt.Tasks.GetTask)
		project.PATCH("/tasks/:task_id", can(models.PermissionEditTask), rt.Tasks.UpdateTask)
		project.PUT("/tasks/:task_id", can(models.PermissionEditTask), rt.Tasks.UpdateTask)
		project.DELETE("/tasks/:task_id", can(models.PermissionDeleteTask), rt.Tasks.DeleteTask)
	}
}
