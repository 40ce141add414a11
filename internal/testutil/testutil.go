// Package testutil builds the in-memory stores shared by package tests.
package testutil

import (
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workspace-rbac-api/internal/auth"
	"github.com/yukikurage/workspace-rbac-api/internal/database"
	"github.com/yukikurage/workspace-rbac-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	TestJWTSecret = "test-secret"
	TestTokenTTL  = 30 * time.Minute
)

// NewTestDB opens a migrated in-memory SQLite database. A single connection
// keeps every query on the same in-memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.NewGormConfig(nil))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(database.Models...))

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// SeedRoles inserts the built-in roles with the given permissions.
func SeedRoles(t *testing.T, db *gorm.DB, roles ...models.Role) {
	t.Helper()
	for i := range roles {
		role := roles[i]
		require.NoError(t, db.Create(&role).Error)
	}
}

// CreateUser inserts an active user with a throwaway password hash.
func CreateUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "hashedpassword",
		Name:         strings.SplitN(email, "@", 2)[0],
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateWorkspace inserts a workspace and its owner membership.
func CreateWorkspace(t *testing.T, db *gorm.DB, name string, owner *models.User) *models.Workspace {
	t.Helper()
	workspace := &models.Workspace{
		Name:       name,
		OwnerID:    owner.ID,
		InviteCode: strings.ToUpper(strings.ReplaceAll(name, " ", "")) + "CODE",
	}
	require.NoError(t, db.Create(workspace).Error)
	AddMember(t, db, workspace, owner, models.RoleOwner)
	return workspace
}

// AddMember inserts a membership.
func AddMember(t *testing.T, db *gorm.DB, workspace *models.Workspace, user *models.User, roleName string) *models.Member {
	t.Helper()
	member := &models.Member{
		UserID:      user.ID,
		WorkspaceID: workspace.ID,
		RoleName:    roleName,
		JoinedAt:    time.Now().UTC(),
	}
	require.NoError(t, db.Omit("User").Create(member).Error)
	return member
}

// CreateProject inserts a project.
func CreateProject(t *testing.T, db *gorm.DB, name string, workspace *models.Workspace, creator *models.User) *models.Project {
	t.Helper()
	project := &models.Project{
		Name:        name,
		Emoji:       models.DefaultProjectEmoji,
		WorkspaceID: workspace.ID,
		CreatedByID: creator.ID,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

// CreateTask inserts a TODO task with a code derived from the title.
func CreateTask(t *testing.T, db *gorm.DB, title string, project *models.Project, creator *models.User) *models.Task {
	t.Helper()
	task := &models.Task{
		TaskCode:    "task-" + strings.ReplaceAll(strings.ToLower(title), " ", "-"),
		Title:       title,
		Status:      models.TaskStatusTodo,
		Priority:    models.TaskPriorityMedium,
		ProjectID:   project.ID,
		WorkspaceID: project.WorkspaceID,
		CreatedByID: creator.ID,
	}
	require.NoError(t, db.Omit("Assignee").Create(task).Error)
	return task
}

// NewRedis starts a miniredis server and returns a client connected to it.
func NewRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		client.Close()
	})
	return server, client
}

// NewTokenService returns a token service backed by miniredis.
func NewTokenService(t *testing.T) (*auth.TokenService, *miniredis.Miniredis) {
	t.Helper()
	server, client := NewRedis(t)
	tokens := auth.NewTokenService(auth.NewJWTService(TestJWTSecret), auth.NewTokenStore(client), TestTokenTTL, nil)
	return tokens, server
}
