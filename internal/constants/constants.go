package constants

const (
	// Context keys set by the auth middleware
	ContextKeyUserID = "user_id"
	ContextKeyUser   = "current_user"
	ContextKeyClaims = "token_claims"

	// Context keys set by the permission middleware
	ContextKeyRoleName    = "role_name"
	ContextKeyPermissions = "permissions"
	ContextKeyWorkspaceID = "workspace_id"

	// Path parameters
	ParamWorkspaceID = "workspace_id"
	ParamProjectID   = "project_id"
	ParamTaskID      = "task_id"
	ParamUserID      = "user_id"

	TokenTypeBearer = "bearer"

	MinPasswordLength = 8
	// bcrypt only accepts passwords up to 72 bytes
	MaxPasswordLength = 72

	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200

	// Attempts made when a generated unique code collides
	MaxCodeGenerationAttempts = 3
)
