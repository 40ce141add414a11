package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/workspace-rbac-api/internal/logging"
	"github.com/yukikurage/workspace-rbac-api/internal/models"
	"github.com/yukikurage/workspace-rbac-api/internal/repository"
)

func (suite *ServiceTestSuite) TestCreateTask_Defaults() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	project := suite.createProject("Launch", workspace, owner)

	task, err := suite.tasks.Create(ctx, CreateTaskInput{
		Title:       "  Write docs ",
		WorkspaceID: workspace.ID,
		ProjectID:   project.ID,
		CreatedByID: owner.ID,
	})
	suite.Require().NoError(err)
	suite.Equal("Write docs", task.Title)
	suite.Equal(models.TaskStatusTodo, task.Status)
	suite.Equal(models.TaskPriorityMedium, task.Priority)
	suite.Equal(workspace.ID, task.WorkspaceID)
	suite.NotEmpty(task.TaskCode)
	suite.Nil(task.AssignedToID)
}

func (suite *ServiceTestSuite) TestCreateTask_Validation() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	other := suite.createWorkspace("Other", owner)
	project := suite.createProject("Launch", workspace, owner)

	base := CreateTaskInput{Title: "Task", WorkspaceID: workspace.ID, ProjectID: project.ID, CreatedByID: owner.ID}

	input := base
	input.Title = "   "
	_, err := suite.tasks.Create(ctx, input)
	suite.ErrorIs(err, ErrTitleEmpty)

	input = base
	input.Status = "BLOCKED"
	_, err = suite.tasks.Create(ctx, input)
	suite.ErrorIs(err, ErrInvalidTaskStatus)

	input = base
	input.Priority = "URGENT"
	_, err = suite.tasks.Create(ctx, input)
	suite.ErrorIs(err, ErrInvalidTaskPriority)

	input = base
	input.WorkspaceID = other.ID
	_, err = suite.tasks.Create(ctx, input)
	suite.ErrorIs(err, ErrProjectNotFound)

	suite.Zero(suite.count(&models.Task{}, "1 = 1"))
}

func (suite *ServiceTestSuite) TestCreateTask_Assignee() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	assignee := suite.createUser("assignee@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	project := suite.createProject("Launch", workspace, owner)

	task, err := suite.tasks.Create(ctx, CreateTaskInput{
		Title:        "Assigned",
		WorkspaceID:  workspace.ID,
		ProjectID:    project.ID,
		CreatedByID:  owner.ID,
		AssignedToID: &assignee.ID,
	})
	suite.Require().NoError(err)
	suite.Require().NotNil(task.AssignedToID)
	suite.Equal(assignee.ID, *task.AssignedToID)
	suite.Require().NotNil(task.Assignee)
	suite.Equal("assignee@example.com", task.Assignee.Email)

	missing := assignee.ID + 100
	_, err = suite.tasks.Create(ctx, CreateTaskInput{
		Title:        "Strict",
		WorkspaceID:  workspace.ID,
		ProjectID:    project.ID,
		CreatedByID:  owner.ID,
		AssignedToID: &missing,
	})
	suite.ErrorIs(err, ErrAssigneeNotFound)
}

func (suite *ServiceTestSuite) TestCreateTask_LenientAssignee() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	project := suite.createProject("Launch", workspace, owner)

	lenient := NewTaskService(
		repository.NewTaskRepository(suite.db),
		repository.NewProjectRepository(suite.db),
		repository.NewUserRepository(suite.db),
		false,
		logging.Discard(),
	)

	missing := owner.ID + 100
	task, err := lenient.Create(ctx, CreateTaskInput{
		Title:        "Lenient",
		WorkspaceID:  workspace.ID,
		ProjectID:    project.ID,
		CreatedByID:  owner.ID,
		AssignedToID: &missing,
	})
	suite.Require().NoError(err)
	suite.Nil(task.AssignedToID)
}

func (suite *ServiceTestSuite) TestCreateTask_RetriesCodeCollision() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	project := suite.createProject("Launch", workspace, owner)
	existing := suite.createTask("Existing", project, owner)

	codes := []string{existing.TaskCode, "task-fresh"}
	suite.tasks.newCode = func() string {
		code := codes[0]
		codes = codes[1:]
		return code
	}

	task, err := suite.tasks.Create(ctx, CreateTaskInput{Title: "New", WorkspaceID: workspace.ID, ProjectID: project.ID, CreatedByID: owner.ID})
	suite.Require().NoError(err)
	suite.Equal("task-fresh", task.TaskCode)

	suite.tasks.newCode = func() string { return existing.TaskCode }
	_, err = suite.tasks.Create(ctx, CreateTaskInput{Title: "Doomed", WorkspaceID: workspace.ID, ProjectID: project.ID, CreatedByID: owner.ID})
	suite.ErrorIs(err, ErrCodeExhausted)
}

func (suite *ServiceTestSuite) TestGetTask_Scoping() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	other := suite.createWorkspace("Other", owner)
	project := suite.createProject("Launch", workspace, owner)
	sibling := suite.createProject("Sibling", workspace, owner)
	foreignProject := suite.createProject("Foreign", other, owner)
	task := suite.createTask("Scoped", project, owner)

	found, err := suite.tasks.Get(ctx, workspace.ID, project.ID, task.ID)
	suite.Require().NoError(err)
	suite.Equal(task.ID, found.ID)

	// Wrong project in the right workspace
	_, err = suite.tasks.Get(ctx, workspace.ID, sibling.ID, task.ID)
	suite.ErrorIs(err, ErrTaskNotFound)

	// Project of another workspace
	_, err = suite.tasks.Get(ctx, workspace.ID, foreignProject.ID, task.ID)
	suite.ErrorIs(err, ErrProjectNotFound)

	// Right project under another workspace id
	_, err = suite.tasks.Get(ctx, other.ID, project.ID, task.ID)
	suite.ErrorIs(err, ErrProjectNotFound)
}

func (suite *ServiceTestSuite) TestUpdateTask_PartialMerge() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	assignee := suite.createUser("assignee@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	project := suite.createProject("Launch", workspace, owner)
	task := suite.createTask("Original", project, owner)

	due := time.Date(2027, 1, 2, 15, 0, 0, 0, time.UTC)
	status := models.TaskStatusInProgress
	updated, err := suite.tasks.Update(ctx, workspace.ID, project.ID, task.ID, UpdateTaskInput{
		Status:       &status,
		DueDate:      &due,
		AssignedToID: &assignee.ID,
	})
	suite.Require().NoError(err)
	suite.Equal("Original", updated.Title)
	suite.Equal(models.TaskStatusInProgress, updated.Status)
	suite.Require().NotNil(updated.DueDate)
	suite.True(due.Equal(*updated.DueDate))
	suite.Require().NotNil(updated.AssignedToID)

	// Absent fields keep their values
	title := "Renamed"
	updated, err = suite.tasks.Update(ctx, workspace.ID, project.ID, task.ID, UpdateTaskInput{Title: &title})
	suite.Require().NoError(err)
	suite.Equal("Renamed", updated.Title)
	suite.NotNil(updated.DueDate)
	suite.NotNil(updated.AssignedToID)

	// Clearing sets the columns to null
	updated, err = suite.tasks.Update(ctx, workspace.ID, project.ID, task.ID, UpdateTaskInput{ClearDueDate: true, ClearAssignee: true})
	suite.Require().NoError(err)
	suite.Nil(updated.DueDate)
	suite.Nil(updated.AssignedToID)

	var stored models.Task
	suite.Require().NoError(suite.db.First(&stored, task.ID).Error)
	suite.Nil(stored.DueDate)
	suite.Nil(stored.AssignedToID)
	suite.Equal("Renamed", stored.Title)
}

func (suite *ServiceTestSuite) TestUpdateTask_Validation() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	project := suite.createProject("Launch", workspace, owner)
	task := suite.createTask("Original", project, owner)

	blank := ""
	_, err := suite.tasks.Update(ctx, workspace.ID, project.ID, task.ID, UpdateTaskInput{Title: &blank})
	suite.ErrorIs(err, ErrTitleEmpty)

	priority := models.TaskPriority("URGENT")
	_, err = suite.tasks.Update(ctx, workspace.ID, project.ID, task.ID, UpdateTaskInput{Priority: &priority})
	suite.ErrorIs(err, ErrInvalidTaskPriority)

	missing := owner.ID + 100
	_, err = suite.tasks.Update(ctx, workspace.ID, project.ID, task.ID, UpdateTaskInput{AssignedToID: &missing})
	suite.ErrorIs(err, ErrAssigneeNotFound)

	_, err = suite.tasks.Update(ctx, workspace.ID, project.ID, task.ID+100, UpdateTaskInput{})
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *ServiceTestSuite) TestUpdateTask_CorrectsWorkspaceDrift() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	other := suite.createWorkspace("Other", owner)
	project := suite.createProject("Launch", workspace, owner)
	task := suite.createTask("Drifted", project, owner)
	suite.Require().NoError(suite.db.Model(task).Update("workspace_id", other.ID).Error)

	title := "Fixed"
	updated, err := suite.tasks.Update(ctx, workspace.ID, project.ID, task.ID, UpdateTaskInput{Title: &title})
	suite.Require().NoError(err)
	suite.Equal(workspace.ID, updated.WorkspaceID)

	var stored models.Task
	suite.Require().NoError(suite.db.First(&stored, task.ID).Error)
	suite.Equal(workspace.ID, stored.WorkspaceID)
}

func (suite *ServiceTestSuite) TestListTasks() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	assignee := suite.createUser("assignee@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	project := suite.createProject("Launch", workspace, owner)
	sibling := suite.createProject("Sibling", workspace, owner)

	for i := 0; i < 5; i++ {
		suite.createTask(fmt.Sprintf("Task %d", i), project, owner)
	}
	done := suite.createTask("Done task", project, owner)
	suite.Require().NoError(suite.db.Model(done).Updates(map[string]interface{}{
		"status":         models.TaskStatusDone,
		"assigned_to_id": assignee.ID,
	}).Error)
	suite.createTask("Sibling task", sibling, owner)

	tasks, total, err := suite.tasks.List(ctx, ListTasksInput{WorkspaceID: workspace.ID, ProjectID: project.ID, Page: 1, PageSize: 4})
	suite.Require().NoError(err)
	suite.Equal(int64(6), total)
	suite.Len(tasks, 4)

	tasks, total, err = suite.tasks.List(ctx, ListTasksInput{WorkspaceID: workspace.ID, ProjectID: project.ID, Page: 2, PageSize: 4})
	suite.Require().NoError(err)
	suite.Equal(int64(6), total)
	suite.Len(tasks, 2)

	status := models.TaskStatusDone
	tasks, total, err = suite.tasks.List(ctx, ListTasksInput{WorkspaceID: workspace.ID, ProjectID: project.ID, Status: &status, Page: 1, PageSize: 50})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Require().Len(tasks, 1)
	suite.Equal(done.ID, tasks[0].ID)
	suite.Require().NotNil(tasks[0].Assignee)

	tasks, _, err = suite.tasks.List(ctx, ListTasksInput{WorkspaceID: workspace.ID, ProjectID: project.ID, AssignedToID: &assignee.ID, Page: 1, PageSize: 50})
	suite.Require().NoError(err)
	suite.Len(tasks, 1)

	bad := models.TaskStatus("BLOCKED")
	_, _, err = suite.tasks.List(ctx, ListTasksInput{WorkspaceID: workspace.ID, ProjectID: project.ID, Status: &bad})
	suite.ErrorIs(err, ErrInvalidTaskStatus)
}

func (suite *ServiceTestSuite) TestDeleteTask() {
	ctx := context.Background()
	owner := suite.createUser("owner@example.com")
	workspace := suite.createWorkspace("Acme", owner)
	project := suite.createProject("Launch", workspace, owner)
	sibling := suite.createProject("Sibling", workspace, owner)
	task := suite.createTask("Doomed", project, owner)

	err := suite.tasks.Delete(ctx, workspace.ID, sibling.ID, task.ID)
	suite.ErrorIs(err, ErrTaskNotFound)

	suite.Require().NoError(suite.tasks.Delete(ctx, workspace.ID, project.ID, task.ID))
	suite.Zero(suite.count(&models.Task{}, "id = ?", task.ID))

	err = suite.tasks.Delete(ctx, workspace.ID, project.ID, task.ID)
	suite.ErrorIs(err, ErrTaskNotFound)
}
