package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/workspace-rbac-api/internal/constants"
	"github.com/yukikurage/workspace-rbac-api/internal/dto"
	apierrors "github.com/yukikurage/workspace-rbac-api/internal/errors"
	"github.com/yukikurage/workspace-rbac-api/internal/middleware"
	"github.com/yukikurage/workspace-rbac-api/internal/models"
	"github.com/yukikurage/workspace-rbac-api/internal/services"
	"github.com/yukikurage/workspace-rbac-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
	log         *logrus.Logger
}

func NewTaskHandler(taskService *services.TaskService, log *logrus.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		log:         log,
	}
}

// taskPath reads the workspace and project ids every task route carries
func taskPath(c *gin.Context) (uint64, uint64, bool) {
	workspaceID, ok := parseIDParam(c, constants.ParamWorkspaceID, "workspace")
	if !ok {
		return 0, 0, false
	}
	projectID, ok := parseIDParam(c, constants.ParamProjectID, "project")
	if !ok {
		return 0, 0, false
	}
	return workspaceID, projectID, true
}

// ListTasks returns the tasks of a project
// Can filter by status, priority and assigned_to_id
func (h *TaskHandler) ListTasks(c *gin.Context) {
	workspaceID, projectID, ok := taskPath(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	input := services.ListTasksInput{
		WorkspaceID: workspaceID,
		ProjectID:   projectID,
		Page:        params.Page,
		PageSize:    params.Limit,
	}

	if status := c.Query("status"); status != "" {
		s := models.TaskStatus(status)
		input.Status = &s
	}
	if priority := c.Query("priority"); priority != "" {
		p := models.TaskPriority(priority)
		input.Priority = &p
	}
	if assignee := c.Query("assigned_to_id"); assignee != "" {
		id, err := strconv.ParseUint(assignee, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assigned_to_id")
			return
		}
		input.AssignedToID = &id
	}

	tasks, total, err := h.taskService.List(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params, total))
}

// GetTask returns a specific task
func (h *TaskHandler) GetTask(c *gin.Context) {
	workspaceID, projectID, ok := taskPath(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, constants.ParamTaskID, "task")
	if !ok {
		return
	}

	task, err := h.taskService.Get(c.Request.Context(), workspaceID, projectID, taskID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task in the project
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		Title        string              `json:"title" binding:"required,max=255"`
		Description  string              `json:"description"`
		Status       models.TaskStatus   `json:"status"`
		Priority     models.TaskPriority `json:"priority"`
		DueDate      *time.Time          `json:"due_date"`
		AssignedToID *uint64             `json:"assigned_to_id"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	workspaceID, projectID, ok := taskPath(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		AssignedToID: req.AssignedToID,
		WorkspaceID:  workspaceID,
		ProjectID:    projectID,
		CreatedByID:  userID,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update. A null due_date or assigned_to_id
// clears the field; an absent key keeps it.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	workspaceID, projectID, ok := taskPath(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, constants.ParamTaskID, "task")
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), workspaceID, projectID, taskID, services.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		DueDate:       req.DueDate.Ptr(),
		ClearDueDate:  req.DueDate.IsNull(),
		AssignedToID:  req.AssignedToID.Ptr(),
		ClearAssignee: req.AssignedToID.IsNull(),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	workspaceID, projectID, ok := taskPath(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, constants.ParamTaskID, "task")
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), workspaceID, projectID, taskID); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}
