package services

import (
	apierrors "github.com/yukikurage/workspace-rbac-api/internal/errors"
)

// Identity
var (
	ErrEmailTaken         = apierrors.New(apierrors.KindConflict, apierrors.ErrCodeAlreadyExists, "Email already registered")
	ErrInvalidEmail       = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeInvalidFormat, "Invalid email address")
	ErrPasswordTooShort   = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeInvalidInput, "Password is too short")
	ErrPasswordTooLong    = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeInvalidInput, "Password is too long")
	ErrInvalidCredentials = apierrors.New(apierrors.KindAuth, apierrors.ErrCodeInvalidCredentials, "Incorrect email or password")
	ErrUserNotFound       = apierrors.New(apierrors.KindNotFound, apierrors.ErrCodeNotFound, "User not found")
	ErrUserInactive       = apierrors.New(apierrors.KindPermission, apierrors.ErrCodeForbidden, "Inactive user")
	ErrEmailUnverified    = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeInvalidInput, "Email address is not verified by the provider")
)

// Roles and membership
var (
	ErrRoleNotFound             = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeRoleNotFound, "Role does not exist")
	ErrWorkspaceNotFound        = apierrors.New(apierrors.KindNotFound, apierrors.ErrCodeNotFound, "Workspace not found")
	ErrMemberNotFound           = apierrors.New(apierrors.KindNotFound, apierrors.ErrCodeNotFound, "Member not found in this workspace")
	ErrAlreadyMember            = apierrors.New(apierrors.KindConflict, apierrors.ErrCodeAlreadyExists, "User is already a member of this workspace")
	ErrCannotRemoveOwner        = apierrors.New(apierrors.KindInvariant, apierrors.ErrCodeInvalidOperation, "Cannot remove the workspace owner")
	ErrCannotDemoteLastOwner    = apierrors.New(apierrors.KindInvariant, apierrors.ErrCodeInvalidOperation, "Cannot change the role of the sole owner to a non-owner role")
	ErrOwnerRoleChangeForbidden = apierrors.New(apierrors.KindPermission, apierrors.ErrCodeInsufficientPermissions, "Only workspace owners can grant or revoke the OWNER role")
	ErrInvalidInviteCode        = apierrors.New(apierrors.KindNotFound, apierrors.ErrCodeNotFound, "Invalid invite code")
	ErrNotWorkspaceMember       = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeInvalidInput, "User is not a member of this workspace")
)

// Resources
var (
	ErrInvalidWorkspaceName = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeMissingField, "Workspace name cannot be empty")
	ErrProjectNotFound      = apierrors.New(apierrors.KindNotFound, apierrors.ErrCodeNotFound, "Project not found")
	ErrInvalidProjectName   = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeMissingField, "Project name cannot be empty")
	ErrTaskNotFound         = apierrors.New(apierrors.KindNotFound, apierrors.ErrCodeNotFound, "Task not found")
	ErrTitleEmpty           = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeMissingField, "Title cannot be empty")
	ErrInvalidTaskStatus    = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeInvalidInput, "Invalid task status")
	ErrInvalidTaskPriority  = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeInvalidInput, "Invalid task priority")
	ErrAssigneeNotFound     = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeInvalidInput, "Assigned user does not exist")
	ErrCodeExhausted        = apierrors.New(apierrors.KindInternal, apierrors.ErrCodeOperationFailed, "Could not generate a unique code")
)
