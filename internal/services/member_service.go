package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	apierrors "github.com/yukikurage/workspace-rbac-api/internal/errors"
	"github.com/yukikurage/workspace-rbac-api/internal/models"
	"github.com/yukikurage/workspace-rbac-api/internal/repository"
	"github.com/yukikurage/workspace-rbac-api/internal/utils"
	"gorm.io/gorm"
)

// MemberService maps users to workspaces and enforces the ownership rules.
type MemberService struct {
	memberRepo    repository.MemberRepository
	workspaceRepo repository.WorkspaceRepository
	userRepo      repository.UserRepository
	roles         *RoleService
	log           *logrus.Logger
	now           func() time.Time

	// ownerRoleChangeRequiresOwner limits changes to or from OWNER to callers
	// that hold OWNER themselves.
	ownerRoleChangeRequiresOwner bool
}

// NewMemberService creates a new MemberService.
func NewMemberService(
	memberRepo repository.MemberRepository,
	workspaceRepo repository.WorkspaceRepository,
	userRepo repository.UserRepository,
	roles *RoleService,
	ownerRoleChangeRequiresOwner bool,
	log *logrus.Logger,
) *MemberService {
	return &MemberService{
		memberRepo:                   memberRepo,
		workspaceRepo:                workspaceRepo,
		userRepo:                     userRepo,
		roles:                        roles,
		log:                          log,
		now:                          time.Now,
		ownerRoleChangeRequiresOwner: ownerRoleChangeRequiresOwner,
	}
}

func (s *MemberService) findWorkspace(ctx context.Context, workspaceID uint64) (*models.Workspace, error) {
	workspace, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}
	return workspace, nil
}

func (s *MemberService) findMember(ctx context.Context, workspaceID, userID uint64) (*models.Member, error) {
	member, err := s.memberRepo.Find(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	return member, nil
}

// AddMember adds a user to a workspace with the given role.
func (s *MemberService) AddMember(ctx context.Context, userID, workspaceID uint64, roleName string) (*models.Member, error) {
	workspace, err := s.findWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	role, err := s.roles.GetRole(ctx, roleName)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	alreadyMember := apierrors.Wrapf(ErrAlreadyMember, "User %s is already a member of workspace %s.", user.Email, workspace.Name)

	if _, err := s.memberRepo.Find(ctx, workspaceID, userID); err == nil {
		return nil, alreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	member := &models.Member{
		UserID:      userID,
		WorkspaceID: workspaceID,
		RoleName:    role.Name,
		JoinedAt:    s.now().UTC(),
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		// Lost a race with a concurrent add; the unique index decides.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, alreadyMember
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	member.User = user

	s.log.WithFields(logrus.Fields{
		"workspace_id": workspaceID,
		"user_id":      userID,
		"role":         role.Name,
	}).Info("Member added")
	return member, nil
}

// RemoveMember removes a user from a workspace. The designated owner and the
// last OWNER cannot be removed.
func (s *MemberService) RemoveMember(ctx context.Context, userID, workspaceID uint64) error {
	workspace, err := s.findWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}

	member, err := s.findMember(ctx, workspaceID, userID)
	if err != nil {
		return err
	}

	if workspace.OwnerID == userID {
		return ErrCannotRemoveOwner
	}
	if member.RoleName == models.RoleOwner {
		others, err := s.memberRepo.CountWithRole(ctx, workspaceID, models.RoleOwner, userID)
		if err != nil {
			return fmt.Errorf("failed to count owners: %w", err)
		}
		if others == 0 {
			return apierrors.Wrapf(ErrCannotDemoteLastOwner, "Cannot remove the sole owner of the workspace")
		}
	}

	if err := s.memberRepo.Delete(ctx, workspaceID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"workspace_id": workspaceID,
		"user_id":      userID,
	}).Info("Member removed")
	return nil
}

// UpdateRole changes a member's role on behalf of actorID.
func (s *MemberService) UpdateRole(ctx context.Context, actorID, userID, workspaceID uint64, newRoleName string) (*models.Member, error) {
	if _, err := s.findWorkspace(ctx, workspaceID); err != nil {
		return nil, err
	}

	role, err := s.roles.GetRole(ctx, newRoleName)
	if err != nil {
		return nil, err
	}

	member, err := s.findMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}

	touchesOwner := member.RoleName == models.RoleOwner || role.Name == models.RoleOwner
	if s.ownerRoleChangeRequiresOwner && touchesOwner && member.RoleName != role.Name {
		actorRole, isMember, err := s.GetRoleName(ctx, actorID, workspaceID)
		if err != nil {
			return nil, err
		}
		if !isMember || actorRole != models.RoleOwner {
			return nil, ErrOwnerRoleChangeForbidden
		}
	}

	if member.RoleName == models.RoleOwner && role.Name != models.RoleOwner {
		others, err := s.memberRepo.CountWithRole(ctx, workspaceID, models.RoleOwner, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to count owners: %w", err)
		}
		if others == 0 {
			return nil, ErrCannotDemoteLastOwner
		}
	}

	if member.RoleName != role.Name {
		previous := member.RoleName
		member.RoleName = role.Name
		if err := s.memberRepo.Update(ctx, member); err != nil {
			return nil, fmt.Errorf("failed to update member role: %w", err)
		}
		s.log.WithFields(logrus.Fields{
			"workspace_id": workspaceID,
			"user_id":      userID,
			"actor_id":     actorID,
			"from":         previous,
			"to":           role.Name,
		}).Info("Member role changed")
	}

	if user, err := s.userRepo.FindByID(ctx, userID); err == nil {
		member.User = user
	}
	return member, nil
}

// ListMembers returns the members of a workspace with their users.
func (s *MemberService) ListMembers(ctx context.Context, workspaceID uint64) ([]models.Member, error) {
	if _, err := s.findWorkspace(ctx, workspaceID); err != nil {
		return nil, err
	}
	members, err := s.memberRepo.List(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// GetRoleName returns the user's role in the workspace. A non-member yields
// ("", false, nil).
func (s *MemberService) GetRoleName(ctx context.Context, userID, workspaceID uint64) (string, bool, error) {
	member, err := s.memberRepo.Find(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to resolve role: %w", err)
	}
	return member.RoleName, true, nil
}

// JoinByInviteCode adds the user to the workspace owning the code as a MEMBER.
func (s *MemberService) JoinByInviteCode(ctx context.Context, userID uint64, code string) (*models.Workspace, *models.Member, error) {
	workspace, err := s.workspaceRepo.FindByInviteCode(ctx, utils.NormalizeInviteCode(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidInviteCode
		}
		return nil, nil, fmt.Errorf("failed to find workspace by invite code: %w", err)
	}

	member, err := s.AddMember(ctx, userID, workspace.ID, models.RoleMember)
	if err != nil {
		return nil, nil, err
	}
	return workspace, member, nil
}
