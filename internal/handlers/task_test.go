package handlers

import (
	"fmt"
	"net/http"

	"github.com/yukikurage/workspace-rbac-api/internal/dto"
	"github.com/yukikurage/workspace-rbac-api/internal/models"
	"github.com/yukikurage/workspace-rbac-api/internal/testutil"
)

type taskFixture struct {
	owner       *models.User
	ownerToken  string
	workspace   dto.WorkspaceDTO
	project     dto.ProjectDTO
	tasksPath   string
	projectPath string
}

func (suite *APITestSuite) setupTaskFixture() taskFixture {
	owner := suite.createUser("owner@example.com")
	token := suite.tokenFor(owner)
	workspace := suite.createWorkspace(token, "Acme")

	w := suite.do(http.MethodPost, fmt.Sprintf("/api/workspaces/%d/projects", workspace.ID), token, map[string]string{"name": "Launch"})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var project dto.ProjectDTO
	suite.decode(w, &project)

	projectPath := fmt.Sprintf("/api/workspaces/%d/projects/%d", workspace.ID, project.ID)
	return taskFixture{
		owner:       owner,
		ownerToken:  token,
		workspace:   workspace,
		project:     project,
		tasksPath:   projectPath + "/tasks",
		projectPath: projectPath,
	}
}

func (suite *APITestSuite) createTaskVia(f taskFixture, body map[string]interface{}) dto.TaskDTO {
	w := suite.do(http.MethodPost, f.tasksPath, f.ownerToken, body)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var task dto.TaskDTO
	suite.decode(w, &task)
	return task
}

func (suite *APITestSuite) TestCreateTask() {
	f := suite.setupTaskFixture()

	task := suite.createTaskVia(f, map[string]interface{}{"title": "Write docs"})
	suite.Equal(models.TaskStatusTodo, task.Status)
	suite.Equal(models.TaskPriorityMedium, task.Priority)
	suite.Equal(f.workspace.ID, task.WorkspaceID)
	suite.Equal(f.owner.ID, task.CreatedByID)

	w := suite.do(http.MethodPost, f.tasksPath, f.ownerToken, map[string]interface{}{"title": "Bad", "status": "BLOCKED"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodPost, f.tasksPath, f.ownerToken, map[string]interface{}{"title": "Ghost", "assigned_to_id": 9999})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *APITestSuite) TestUpdateTask_NullVersusAbsent() {
	f := suite.setupTaskFixture()
	assignee := suite.createUser("assignee@example.com")

	task := suite.createTaskVia(f, map[string]interface{}{
		"title":          "Original",
		"due_date":       "2027-01-02T15:00:00Z",
		"assigned_to_id": assignee.ID,
	})
	suite.Require().NotNil(task.DueDate)
	suite.Require().NotNil(task.AssignedToID)
	taskPath := fmt.Sprintf("%s/%d", f.tasksPath, task.ID)

	// Absent keys keep their values
	w := suite.do(http.MethodPatch, taskPath, f.ownerToken, `{"title": "Renamed"}`)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.TaskDTO
	suite.decode(w, &updated)
	suite.Equal("Renamed", updated.Title)
	suite.NotNil(updated.DueDate)
	suite.NotNil(updated.AssignedToID)

	// Explicit nulls clear them
	w = suite.do(http.MethodPatch, taskPath, f.ownerToken, `{"due_date": null, "assigned_to_id": null}`)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	updated = dto.TaskDTO{}
	suite.decode(w, &updated)
	suite.Equal("Renamed", updated.Title)
	suite.Nil(updated.DueDate)
	suite.Nil(updated.AssignedToID)

	var stored models.Task
	suite.Require().NoError(suite.db.First(&stored, task.ID).Error)
	suite.Nil(stored.DueDate)
	suite.Nil(stored.AssignedToID)

	// PUT is an alias of PATCH
	w = suite.do(http.MethodPut, taskPath, f.ownerToken, map[string]interface{}{"status": "DONE"})
	suite.Require().Equal(http.StatusOK, w.Code)
	updated = dto.TaskDTO{}
	suite.decode(w, &updated)
	suite.Equal(models.TaskStatusDone, updated.Status)
}

func (suite *APITestSuite) TestTask_ScopedToProject() {
	f := suite.setupTaskFixture()
	task := suite.createTaskVia(f, map[string]interface{}{"title": "Scoped"})

	w := suite.do(http.MethodPost, fmt.Sprintf("/api/workspaces/%d/projects", f.workspace.ID), f.ownerToken, map[string]string{"name": "Sibling"})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var sibling dto.ProjectDTO
	suite.decode(w, &sibling)

	wrongProject := fmt.Sprintf("/api/workspaces/%d/projects/%d/tasks/%d", f.workspace.ID, sibling.ID, task.ID)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodGet, wrongProject, f.ownerToken, nil).Code)

	// A project of another workspace is hidden even from its members
	other := suite.createWorkspace(f.ownerToken, "Other")
	crossWorkspace := fmt.Sprintf("/api/workspaces/%d/projects/%d/tasks/%d", other.ID, f.project.ID, task.ID)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodGet, crossWorkspace, f.ownerToken, nil).Code)

	suite.Equal(http.StatusOK, suite.do(http.MethodGet, fmt.Sprintf("%s/%d", f.tasksPath, task.ID), f.ownerToken, nil).Code)
}

func (suite *APITestSuite) TestListTasks() {
	f := suite.setupTaskFixture()
	for i := 0; i < 3; i++ {
		suite.createTaskVia(f, map[string]interface{}{"title": fmt.Sprintf("Task %d", i)})
	}
	suite.createTaskVia(f, map[string]interface{}{"title": "Urgent", "priority": "HIGH"})

	w := suite.do(http.MethodGet, f.tasksPath+"?limit=2&page=1", f.ownerToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var page dto.TaskListResponse
	suite.decode(w, &page)
	suite.Len(page.Tasks, 2)
	suite.Equal(int64(4), page.Pagination.Total)
	suite.Equal(2, page.Pagination.TotalPages)

	w = suite.do(http.MethodGet, f.tasksPath+"?priority=HIGH", f.ownerToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	page = dto.TaskListResponse{}
	suite.decode(w, &page)
	suite.Require().Len(page.Tasks, 1)
	suite.Equal("Urgent", page.Tasks[0].Title)

	suite.Equal(http.StatusBadRequest, suite.do(http.MethodGet, f.tasksPath+"?status=BLOCKED", f.ownerToken, nil).Code)
	suite.Equal(http.StatusBadRequest, suite.do(http.MethodGet, f.tasksPath+"?assigned_to_id=abc", f.ownerToken, nil).Code)
}

func (suite *APITestSuite) TestTaskPermissions() {
	f := suite.setupTaskFixture()
	member := suite.createUser("member@example.com")
	testutil.AddMember(suite.T(), suite.db, &models.Workspace{ID: f.workspace.ID}, member, models.RoleMember)
	memberToken := suite.tokenFor(member)

	task := suite.createTaskVia(f, map[string]interface{}{"title": "Guarded"})
	taskPath := fmt.Sprintf("%s/%d", f.tasksPath, task.ID)

	// MEMBER can create and edit, not delete
	w := suite.do(http.MethodPost, f.tasksPath, memberToken, map[string]interface{}{"title": "From member"})
	suite.Equal(http.StatusCreated, w.Code)
	w = suite.do(http.MethodPatch, taskPath, memberToken, map[string]interface{}{"title": "Edited"})
	suite.Equal(http.StatusOK, w.Code)
	w = suite.do(http.MethodDelete, taskPath, memberToken, nil)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Contains(w.Body.String(), "DELETE_TASK")

	suite.Equal(http.StatusOK, suite.do(http.MethodDelete, taskPath, f.ownerToken, nil).Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodGet, taskPath, f.ownerToken, nil).Code)
}

func (suite *APITestSuite) TestDeleteProject() {
	f := suite.setupTaskFixture()
	suite.createTaskVia(f, map[string]interface{}{"title": "Goes with the project"})

	suite.Equal(http.StatusOK, suite.do(http.MethodDelete, f.projectPath, f.ownerToken, nil).Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodGet, f.projectPath, f.ownerToken, nil).Code)

	var remaining int64
	suite.Require().NoError(suite.db.Model(&models.Task{}).Where("project_id = ?", f.project.ID).Count(&remaining).Error)
	suite.Zero(remaining)
}

func (suite *APITestSuite) TestInvalidPathIDs() {
	f := suite.setupTaskFixture()

	suite.Equal(http.StatusBadRequest, suite.do(http.MethodGet, "/api/workspaces/abc", f.ownerToken, nil).Code)
	suite.Equal(http.StatusBadRequest, suite.do(http.MethodGet, fmt.Sprintf("/api/workspaces/%d/projects/abc", f.workspace.ID), f.ownerToken, nil).Code)
	suite.Equal(http.StatusBadRequest, suite.do(http.MethodGet, f.tasksPath+"/abc", f.ownerToken, nil).Code)
}
