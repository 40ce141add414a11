package repository

import (
	"context"
	"time"

	"github.com/yukikurage/workspace-rbac-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// Update saves all user fields
	Update(ctx context.Context, user *models.User) error

	// UpdateLastLogin sets the last login timestamp
	UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error
}

// RoleRepository defines the interface for role data access
type RoleRepository interface {
	// FindByName finds a role by its unique name
	FindByName(ctx context.Context, name string) (*models.Role, error)

	// List returns all roles ordered by name
	List(ctx context.Context) ([]models.Role, error)

	// Upsert creates the role or replaces the permissions of the existing one
	Upsert(ctx context.Context, role *models.Role) error

	// DeleteExcept removes every role whose name is not listed
	DeleteExcept(ctx context.Context, names []string) (int64, error)
}

// WorkspaceWithRole is a workspace together with one user's role in it
type WorkspaceWithRole struct {
	models.Workspace
	RoleName string `json:"role_name"`
}

// CascadeResult counts the rows removed by a cascading delete
type CascadeResult struct {
	Tasks    int64
	Projects int64
	Members  int64
}

// WorkspaceRepository defines the interface for workspace data access
type WorkspaceRepository interface {
	// CreateWithOwner creates a workspace and its owner membership in one transaction
	CreateWithOwner(ctx context.Context, workspace *models.Workspace, owner *models.Member) error

	// FindByID finds a workspace by ID
	FindByID(ctx context.Context, id uint64) (*models.Workspace, error)

	// FindByInviteCode finds a workspace by invite code
	FindByInviteCode(ctx context.Context, code string) (*models.Workspace, error)

	// ListForUser lists the workspaces a user is a member of, with the user's role
	ListForUser(ctx context.Context, userID uint64) ([]WorkspaceWithRole, error)

	// Update saves a workspace
	Update(ctx context.Context, workspace *models.Workspace) error

	// DeleteCascade deletes a workspace, its projects, tasks and memberships in one transaction
	DeleteCascade(ctx context.Context, id uint64) (*CascadeResult, error)
}

// MemberRepository defines the interface for membership data access
type MemberRepository interface {
	// Create adds a membership; the (user, workspace) unique index rejects duplicates
	Create(ctx context.Context, member *models.Member) error

	// Find finds the membership of a user in a workspace
	Find(ctx context.Context, workspaceID, userID uint64) (*models.Member, error)

	// Update saves a membership
	Update(ctx context.Context, member *models.Member) error

	// Delete removes the membership of a user in a workspace
	Delete(ctx context.Context, workspaceID, userID uint64) error

	// List lists all members of a workspace with their users
	List(ctx context.Context, workspaceID uint64) ([]models.Member, error)

	// CountWithRole counts members holding roleName, excluding one user
	CountWithRole(ctx context.Context, workspaceID uint64, roleName string, excludeUserID uint64) (int64, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(ctx context.Context, project *models.Project) error

	// FindByID finds a project by ID regardless of workspace
	FindByID(ctx context.Context, id uint64) (*models.Project, error)

	// FindInWorkspace finds a project only if it belongs to the workspace
	FindInWorkspace(ctx context.Context, workspaceID, projectID uint64) (*models.Project, error)

	// ListByWorkspace lists the projects of a workspace
	ListByWorkspace(ctx context.Context, workspaceID uint64) ([]models.Project, error)

	// Update saves a project
	Update(ctx context.Context, project *models.Project) error

	// DeleteCascade deletes a project and its tasks in one transaction
	DeleteCascade(ctx context.Context, id uint64) (*CascadeResult, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectID    uint64
	WorkspaceID  *uint64
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	AssignedToID *uint64
	Page         int
	PageSize     int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindInProject finds a task only if it belongs to the project
	FindInProject(ctx context.Context, projectID, taskID uint64) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update saves all task fields
	Update(ctx context.Context, task *models.Task) error

	// Delete deletes a task
	Delete(ctx context.Context, id uint64) error
}
