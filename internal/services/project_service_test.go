package services

import (
	"context"

	"github.com/yukikurage/workspace-rbac-api/internal/models"
)

func (suite *ServiceTestSuite) TestCreateProject() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	workspace := suite.createWorkspace("Acme", owner)

	project, err := suite.projects.Create(ctx, CreateProjectInput{
		Name:        "Launch",
		WorkspaceID: workspace.ID,
		CreatedByID: owner.ID,
	})
	suite.Require().NoError(err)
	suite.Equal(models.DefaultProjectEmoji, project.Emoji)
	suite.Equal(workspace.ID, project.WorkspaceID)

	withEmoji, err := suite.projects.Create(ctx, CreateProjectInput{
		Name:        "Rocket",
		Emoji:       "🚀",
		WorkspaceID: workspace.ID,
		CreatedByID: owner.ID,
	})
	suite.Require().NoError(err)
	suite.Equal("🚀", withEmoji.Emoji)

	_, err = suite.projects.Create(ctx, CreateProjectInput{Name: "", WorkspaceID: workspace.ID, CreatedByID: owner.ID})
	suite.ErrorIs(err, ErrInvalidProjectName)

	_, err = suite.projects.Create(ctx, CreateProjectInput{Name: "Ghost", WorkspaceID: workspace.ID + 100, CreatedByID: owner.ID})
	suite.ErrorIs(err, ErrWorkspaceNotFound)
}

func (suite *ServiceTestSuite) TestGetProject_ScopedToWorkspace() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	other := suite.createWorkspace("Other", owner)
	project := suite.createProject("Launch", workspace, owner)

	found, err := suite.projects.Get(ctx, workspace.ID, project.ID)
	suite.Require().NoError(err)
	suite.Equal(project.ID, found.ID)

	_, err = suite.projects.Get(ctx, other.ID, project.ID)
	suite.ErrorIs(err, ErrProjectNotFound)
}

func (suite *ServiceTestSuite) TestListProjects() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	other := suite.createWorkspace("Other", owner)
	suite.createProject("One", workspace, owner)
	suite.createProject("Two", workspace, owner)
	suite.createProject("Elsewhere", other, owner)

	projects, err := suite.projects.List(ctx, workspace.ID)
	suite.Require().NoError(err)
	suite.Len(projects, 2)
	for _, project := range projects {
		suite.Equal(workspace.ID, project.WorkspaceID)
	}
}

func (suite *ServiceTestSuite) TestUpdateProject() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	other := suite.createWorkspace("Other", owner)
	project := suite.createProject("Launch", workspace, owner)

	name := "Relaunch"
	updated, err := suite.projects.Update(ctx, workspace.ID, project.ID, UpdateProjectInput{Name: &name})
	suite.Require().NoError(err)
	suite.Equal("Relaunch", updated.Name)
	suite.Equal(models.DefaultProjectEmoji, updated.Emoji)

	_, err = suite.projects.Update(ctx, other.ID, project.ID, UpdateProjectInput{Name: &name})
	suite.ErrorIs(err, ErrProjectNotFound)
}

func (suite *ServiceTestSuite) TestDeleteProject_LeavesSiblings() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	doomed := suite.createProject("Doomed", workspace, owner)
	sibling := suite.createProject("Sibling", workspace, owner)
	suite.createTask("Doomed one", doomed, owner)
	suite.createTask("Doomed two", doomed, owner)
	suite.createTask("Sibling task", sibling, owner)

	suite.Require().NoError(suite.projects.Delete(ctx, workspace.ID, doomed.ID))

	suite.Zero(suite.count(&models.Project{}, "id = ?", doomed.ID))
	suite.Zero(suite.count(&models.Task{}, "project_id = ?", doomed.ID))
	suite.Equal(int64(1), suite.count(&models.Project{}, "id = ?", sibling.ID))
	suite.Equal(int64(1), suite.count(&models.Task{}, "project_id = ?", sibling.ID))

	suite.Require().Len(suite.cascades.events, 1)
	suite.Equal("project", suite.cascades.events[0].resource)

	err := suite.projects.Delete(ctx, workspace.ID, doomed.ID)
	suite.ErrorIs(err, ErrProjectNotFound)
}

func (suite *ServiceTestSuite) TestDeleteProject_OtherWorkspace() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	other := suite.createWorkspace("Other", owner)
	project := suite.createProject("Launch", workspace, owner)

	err := suite.projects.Delete(ctx, other.ID, project.ID)
	suite.ErrorIs(err, ErrProjectNotFound)
	suite.Equal(int64(1), suite.count(&models.Project{}, "id = ?", project.ID))
}
