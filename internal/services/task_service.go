package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/workspace-rbac-api/internal/constants"
	"github.com/yukikurage/workspace-rbac-api/internal/models"
	"github.com/yukikurage/workspace-rbac-api/internal/repository"
	"github.com/yukikurage/workspace-rbac-api/internal/utils"
	"gorm.io/gorm"
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	log         *logrus.Logger
	newCode     func() string

	// strictAssignee rejects creation with an unknown assignee instead of
	// creating the task unassigned.
	strictAssignee bool
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	strictAssignee bool,
	log *logrus.Logger,
) *TaskService {
	return &TaskService{
		taskRepo:       taskRepo,
		projectRepo:    projectRepo,
		userRepo:       userRepo,
		log:            log,
		newCode:        utils.GenerateTaskCode,
		strictAssignee: strictAssignee,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	WorkspaceID  uint64
	ProjectID    uint64
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	AssignedToID *uint64
	Page         int
	PageSize     int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title        string
	Description  string
	Status       models.TaskStatus
	Priority     models.TaskPriority
	DueDate      *time.Time
	AssignedToID *uint64
	WorkspaceID  uint64
	ProjectID    uint64
	CreatedByID  uint64
}

// UpdateTaskInput represents input for updating a task. Nil fields are left
// unchanged; the Clear flags set the optional fields to null.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	DueDate       *time.Time
	ClearDueDate  bool
	AssignedToID  *uint64
	ClearAssignee bool
}

// scopedProject returns the project only if it belongs to the workspace
func (s *TaskService) scopedProject(ctx context.Context, workspaceID, projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindInWorkspace(ctx, workspaceID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// syncWorkspace sets the task's workspace from its project. The project is
// authoritative; a disagreement is corrected and logged.
func (s *TaskService) syncWorkspace(task *models.Task, project *models.Project) {
	if task.WorkspaceID != 0 && task.WorkspaceID != project.WorkspaceID {
		s.log.WithFields(logrus.Fields{
			"task_id":           task.ID,
			"project_id":        project.ID,
			"task_workspace":    task.WorkspaceID,
			"project_workspace": project.WorkspaceID,
		}).Warn("Task workspace disagrees with its project; using the project's workspace")
	}
	task.WorkspaceID = project.WorkspaceID
}

func (s *TaskService) findAssignee(ctx context.Context, userID uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssigneeNotFound
		}
		return nil, fmt.Errorf("failed to find assignee: %w", err)
	}
	return user, nil
}

// List returns the tasks of a project
func (s *TaskService) List(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	project, err := s.scopedProject(ctx, input.WorkspaceID, input.ProjectID)
	if err != nil {
		return nil, 0, err
	}

	if input.Status != nil && !input.Status.IsValid() {
		return nil, 0, ErrInvalidTaskStatus
	}
	if input.Priority != nil && !input.Priority.IsValid() {
		return nil, 0, ErrInvalidTaskPriority
	}

	filter := repository.TaskFilter{
		ProjectID:    project.ID,
		WorkspaceID:  &project.WorkspaceID,
		Status:       input.Status,
		Priority:     input.Priority,
		AssignedToID: input.AssignedToID,
		Page:         input.Page,
		PageSize:     input.PageSize,
	}

	tasks, total, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// Get returns a task addressed by workspace, project and task ids
func (s *TaskService) Get(ctx context.Context, workspaceID, projectID, taskID uint64) (*models.Task, error) {
	project, err := s.scopedProject(ctx, workspaceID, projectID)
	if err != nil {
		return nil, err
	}

	task, err := s.taskRepo.FindInProject(ctx, project.ID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// Create creates a new task in a project of the workspace
func (s *TaskService) Create(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleEmpty
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !input.Status.IsValid() {
		return nil, ErrInvalidTaskStatus
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !input.Priority.IsValid() {
		return nil, ErrInvalidTaskPriority
	}

	project, err := s.scopedProject(ctx, input.WorkspaceID, input.ProjectID)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		ProjectID:   project.ID,
		WorkspaceID: input.WorkspaceID,
		CreatedByID: input.CreatedByID,
	}
	s.syncWorkspace(task, project)

	if input.AssignedToID != nil {
		assignee, err := s.findAssignee(ctx, *input.AssignedToID)
		switch {
		case err == nil:
			task.AssignedToID = &assignee.ID
			task.Assignee = assignee
		case errors.Is(err, ErrAssigneeNotFound) && !s.strictAssignee:
			s.log.WithField("assigned_to_id", *input.AssignedToID).Warn("Assignee not found; creating task unassigned")
		default:
			return nil, err
		}
	}

	for attempt := 1; ; attempt++ {
		task.TaskCode = s.newCode()
		err := s.taskRepo.Create(ctx, task)
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("failed to create task: %w", err)
		}
		if attempt >= constants.MaxCodeGenerationAttempts {
			return nil, ErrCodeExhausted
		}
	}

	return task, nil
}

// Update merges the provided fields into an existing task
func (s *TaskService) Update(ctx context.Context, workspaceID, projectID, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	project, err := s.scopedProject(ctx, workspaceID, projectID)
	if err != nil {
		return nil, err
	}

	task, err := s.taskRepo.FindInProject(ctx, project.ID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, ErrInvalidTaskPriority
		}
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.ClearAssignee {
		task.AssignedToID = nil
		task.Assignee = nil
	} else if input.AssignedToID != nil {
		assignee, err := s.findAssignee(ctx, *input.AssignedToID)
		if err != nil {
			return nil, err
		}
		task.AssignedToID = &assignee.ID
		task.Assignee = assignee
	}

	s.syncWorkspace(task, project)

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// Delete deletes a task addressed by workspace, project and task ids
func (s *TaskService) Delete(ctx context.Context, workspaceID, projectID, taskID uint64) error {
	task, err := s.Get(ctx, workspaceID, projectID, taskID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}
