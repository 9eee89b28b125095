package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thecodingmontana/zadaci-api/internal/dto"
	apierrors "github.com/thecodingmontana/zadaci-api/internal/errors"
	"github.com/thecodingmontana/zadaci-api/internal/middleware"
	"github.com/thecodingmontana/zadaci-api/internal/models"
	"github.com/thecodingmontana/zadaci-api/internal/services"
	"github.com/thecodingmontana/zadaci-api/internal/utils"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// subtaskRequest is the wire form of one subtask in create/update requests.
type subtaskRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name" binding:"required"`
	IsCompleted bool   `json:"is_completed"`
}

func toSubtaskInputs(requests []subtaskRequest) []services.SubtaskInput {
	inputs := make([]services.SubtaskInput, len(requests))
	for i, request := range requests {
		inputs[i] = services.SubtaskInput{
			ID:          request.ID,
			Name:        request.Name,
			IsCompleted: request.IsCompleted,
		}
	}
	return inputs
}

// CreateTask creates a task under a project.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}
	member, ok := middleware.GetMember(c)
	if !ok {
		apierrors.InternalError(c, "Member not found in context")
		return
	}

	type CreateTaskRequest struct {
		Name        string           `json:"name" binding:"required"`
		Description string           `json:"description"`
		Status      models.Status    `json:"status"`
		Priority    models.Priority  `json:"priority"`
		DueDate     *time.Time       `json:"due_date"`
		Subtasks    []subtaskRequest `json:"subtasks"`
		AssigneeIDs []string         `json:"assignee_ids"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(&workspace, &member, c.Param("projectId"), services.CreateTaskInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Subtasks:    toSubtaskInputs(req.Subtasks),
		AssigneeIDs: req.AssigneeIDs,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ListTasks returns all tasks of a project.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	params := utils.GetPaginationParams(c)
	tasks, total, err := h.taskService.ListTasks(workspace.ID, c.Param("projectId"), params)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	items := make([]dto.TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = dto.ToTaskDTO(task)
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":      items,
		"pagination": utils.NewPaginationResponse(params, total),
	})
}

// GetTask returns one task with subtasks and assignees.
func (h *TaskHandler) GetTask(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	task, err := h.taskService.GetTask(workspace.ID, c.Param("projectId"), c.Param("taskId"))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask updates a task, its subtasks and its assignees.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}
	member, ok := middleware.GetMember(c)
	if !ok {
		apierrors.InternalError(c, "Member not found in context")
		return
	}

	type UpdateTaskRequest struct {
		Name        *string          `json:"name"`
		Description *string          `json:"description"`
		Status      *models.Status   `json:"status"`
		Priority    *models.Priority `json:"priority"`
		DueDate     *time.Time       `json:"due_date"`
		Subtasks    []subtaskRequest `json:"subtasks"`
		AssigneeIDs []string         `json:"assignee_ids"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(&workspace, &member, c.Param("projectId"), c.Param("taskId"), services.UpdateTaskInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Subtasks:    toSubtaskInputs(req.Subtasks),
		AssigneeIDs: req.AssigneeIDs,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTaskStatus changes only the task status, as from a board drag.
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}
	member, ok := middleware.GetMember(c)
	if !ok {
		apierrors.InternalError(c, "Member not found in context")
		return
	}

	type StatusRequest struct {
		Status models.Status `json:"status" binding:"required"`
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTaskStatus(workspace.ID, c.Param("projectId"), c.Param("taskId"), req.Status, member.ID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask removes a task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	if err := h.taskService.DeleteTask(workspace.ID, c.Param("projectId"), c.Param("taskId")); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// respondTaskError maps task service errors to HTTP responses.
func respondTaskError(c *gin.Context, err error) {
	var invalidMembers *services.InvalidMembersError
	var notOnProject *services.NotProjectMembersError

	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidTaskName),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrNoAssignees):
		apierrors.BadRequest(c, err.Error())
	case errors.As(err, &invalidMembers):
		apierrors.BadRequestWithDetails(c, "Some members do not belong to this workspace", invalidMembers.MemberIDs)
	case errors.As(err, &notOnProject):
		apierrors.BadRequestWithDetails(c, "Some members are not on this project", notOnProject.Usernames)
	default:
		apierrors.InternalError(c, "Something went wrong")
	}
}
