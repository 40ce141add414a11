package services

import (
	"context"

	apierrors "github.com/yukikurage/workspace-rbac-api/internal/errors"
	"github.com/yukikurage/workspace-rbac-api/internal/models"
)

func (suite *ServiceTestSuite) TestAddMember() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	user := suite.createUser("member@example.com")
	workspace := suite.createWorkspace("Acme", owner)

	member, err := suite.members.AddMember(ctx, user.ID, workspace.ID, models.RoleAdmin)
	suite.Require().NoError(err)
	suite.Equal(models.RoleAdmin, member.RoleName)
	suite.Require().NotNil(member.User)
	suite.Equal("member@example.com", member.User.Email)

	_, err = suite.members.AddMember(ctx, user.ID, workspace.ID, models.RoleMember)
	suite.ErrorIs(err, ErrAlreadyMember)
	suite.Equal(apierrors.KindConflict, apierrors.KindOf(err))
	suite.Equal("User member@example.com is already a member of workspace Acme.", err.Error())
}

func (suite *ServiceTestSuite) TestAddMember_UnknownRole() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	user := suite.createUser("member@example.com")
	workspace := suite.createWorkspace("Acme", owner)

	_, err := suite.members.AddMember(ctx, user.ID, workspace.ID, "GUEST")
	suite.ErrorIs(err, ErrRoleNotFound)
	suite.Equal("Role 'GUEST' does not exist", err.Error())
	suite.Equal(apierrors.KindValidation, apierrors.KindOf(err))

	suite.Zero(suite.count(&models.Member{}, "user_id = ?", user.ID))
}

func (suite *ServiceTestSuite) TestAddMember_MissingWorkspaceOrUser() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	workspace := suite.createWorkspace("Acme", owner)

	_, err := suite.members.AddMember(ctx, owner.ID, workspace.ID+100, models.RoleMember)
	suite.ErrorIs(err, ErrWorkspaceNotFound)

	_, err = suite.members.AddMember(ctx, owner.ID+100, workspace.ID, models.RoleMember)
	suite.ErrorIs(err, ErrUserNotFound)
}

func (suite *ServiceTestSuite) TestRemoveMember() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	user := suite.createUser("member@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	suite.addMember(workspace, user, models.RoleMember)

	suite.Require().NoError(suite.members.RemoveMember(ctx, user.ID, workspace.ID))
	suite.Zero(suite.count(&models.Member{}, "workspace_id = ? AND user_id = ?", workspace.ID, user.ID))

	err := suite.members.RemoveMember(ctx, user.ID, workspace.ID)
	suite.ErrorIs(err, ErrMemberNotFound)
}

func (suite *ServiceTestSuite) TestRemoveMember_DesignatedOwner() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	coOwner := suite.createUser("co-owner@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	suite.addMember(workspace, coOwner, models.RoleOwner)

	err := suite.members.RemoveMember(ctx, owner.ID, workspace.ID)
	suite.ErrorIs(err, ErrCannotRemoveOwner)
	suite.Equal(apierrors.KindInvariant, apierrors.KindOf(err))

	// A second OWNER member can leave
	suite.NoError(suite.members.RemoveMember(ctx, coOwner.ID, workspace.ID))
}

func (suite *ServiceTestSuite) TestRemoveMember_LastOwnerRole() {
	ctx := context.Background()
	creator := suite.createUser("creator@example.com")
	soleOwner := suite.createUser("sole@example.com")
	workspace := suite.createWorkspace("Acme", creator)

	// The creator stepped down; soleOwner now holds the only OWNER role.
	suite.Require().NoError(suite.db.Model(&models.Member{}).
		Where("workspace_id = ? AND user_id = ?", workspace.ID, creator.ID).
		Update("role_name", models.RoleAdmin).Error)
	suite.addMember(workspace, soleOwner, models.RoleOwner)

	err := suite.members.RemoveMember(ctx, soleOwner.ID, workspace.ID)
	suite.ErrorIs(err, ErrCannotDemoteLastOwner)
	suite.Equal("Cannot remove the sole owner of the workspace", err.Error())
}

func (suite *ServiceTestSuite) TestUpdateRole() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	user := suite.createUser("member@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	suite.addMember(workspace, user, models.RoleMember)

	member, err := suite.members.UpdateRole(ctx, owner.ID, user.ID, workspace.ID, models.RoleAdmin)
	suite.Require().NoError(err)
	suite.Equal(models.RoleAdmin, member.RoleName)

	roleName, isMember, err := suite.members.GetRoleName(ctx, user.ID, workspace.ID)
	suite.Require().NoError(err)
	suite.True(isMember)
	suite.Equal(models.RoleAdmin, roleName)
}

func (suite *ServiceTestSuite) TestUpdateRole_SoleOwnerCannotBeDemoted() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	workspace := suite.createWorkspace("Acme", owner)

	_, err := suite.members.UpdateRole(ctx, owner.ID, owner.ID, workspace.ID, models.RoleAdmin)
	suite.ErrorIs(err, ErrCannotDemoteLastOwner)
	suite.Equal(apierrors.KindInvariant, apierrors.KindOf(err))

	roleName, _, err := suite.members.GetRoleName(ctx, owner.ID, workspace.ID)
	suite.Require().NoError(err)
	suite.Equal(models.RoleOwner, roleName)
}

func (suite *ServiceTestSuite) TestUpdateRole_OwnerCanStepDownWhenAnotherOwnerExists() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	coOwner := suite.createUser("co-owner@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	suite.addMember(workspace, coOwner, models.RoleOwner)

	member, err := suite.members.UpdateRole(ctx, coOwner.ID, owner.ID, workspace.ID, models.RoleAdmin)
	suite.Require().NoError(err)
	suite.Equal(models.RoleAdmin, member.RoleName)
}

func (suite *ServiceTestSuite) TestUpdateRole_OnlyOwnersTouchOwnerRole() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	admin := suite.createUser("admin@example.com")
	user := suite.createUser("member@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	suite.addMember(workspace, admin, models.RoleAdmin)
	suite.addMember(workspace, user, models.RoleMember)

	_, err := suite.members.UpdateRole(ctx, admin.ID, user.ID, workspace.ID, models.RoleOwner)
	suite.ErrorIs(err, ErrOwnerRoleChangeForbidden)

	_, err = suite.members.UpdateRole(ctx, admin.ID, user.ID, workspace.ID, models.RoleAdmin)
	suite.NoError(err)
}

func (suite *ServiceTestSuite) TestUpdateRole_UnknownRoleAndMember() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	outsider := suite.createUser("outsider@example.com")
	workspace := suite.createWorkspace("Acme", owner)

	_, err := suite.members.UpdateRole(ctx, owner.ID, owner.ID, workspace.ID, "GUEST")
	suite.ErrorIs(err, ErrRoleNotFound)

	_, err = suite.members.UpdateRole(ctx, owner.ID, outsider.ID, workspace.ID, models.RoleMember)
	suite.ErrorIs(err, ErrMemberNotFound)
}

func (suite *ServiceTestSuite) TestListMembers() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	user := suite.createUser("member@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	suite.addMember(workspace, user, models.RoleMember)

	members, err := suite.members.ListMembers(ctx, workspace.ID)
	suite.Require().NoError(err)
	suite.Require().Len(members, 2)
	suite.Equal(owner.ID, members[0].UserID)
	suite.Require().NotNil(members[1].User)
	suite.Equal("member@example.com", members[1].User.Email)

	_, err = suite.members.ListMembers(ctx, workspace.ID+100)
	suite.ErrorIs(err, ErrWorkspaceNotFound)
}

func (suite *ServiceTestSuite) TestGetRoleName_NonMember() {
	owner := suite.createUser("owner@example.com")
	outsider := suite.createUser("outsider@example.com")
	workspace := suite.createWorkspace("Acme", owner)

	roleName, isMember, err := suite.members.GetRoleName(context.Background(), outsider.ID, workspace.ID)
	suite.Require().NoError(err)
	suite.False(isMember)
	suite.Empty(roleName)
}

func (suite *ServiceTestSuite) TestJoinByInviteCode() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	user := suite.createUser("member@example.com")
	workspace := suite.createWorkspace("Acme", owner)

	joined, member, err := suite.members.JoinByInviteCode(ctx, user.ID, " acmecode ")
	suite.Require().NoError(err)
	suite.Equal(workspace.ID, joined.ID)
	suite.Equal(models.RoleMember, member.RoleName)

	_, _, err = suite.members.JoinByInviteCode(ctx, user.ID, workspace.InviteCode)
	suite.ErrorIs(err, ErrAlreadyMember)

	_, _, err = suite.members.JoinByInviteCode(ctx, user.ID, "NOPE")
	suite.ErrorIs(err, ErrInvalidInviteCode)
}
