package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thecodingmontana/zadaci-api/internal/dto"
	apierrors "github.com/thecodingmontana/zadaci-api/internal/errors"
	"github.com/thecodingmontana/zadaci-api/internal/middleware"
	"github.com/thecodingmontana/zadaci-api/internal/services"
)

// StatsHandler coordinates workspace dashboard HTTP handlers.
type StatsHandler struct {
	statsService *services.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// Overall returns task totals across the workspace's active projects.
func (h *StatsHandler) Overall(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	stats, err := h.statsService.Overall(workspace.ID)
	if err != nil {
		respondStatsError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Productivity returns the weekday activity buckets for ?range=this|last.
func (h *StatsHandler) Productivity(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	days, err := h.statsService.Productivity(workspace.ID, c.Query("range"))
	if err != nil {
		respondStatsError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"days": days,
	})
}

// WorkspaceTasks returns every task of the workspace flattened across
// projects.
func (h *StatsHandler) WorkspaceTasks(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	tasks, err := h.statsService.WorkspaceTasks(workspace.ID)
	if err != nil {
		respondStatsError(c, err)
		return
	}

	items := make([]dto.TaskListItemDTO, len(tasks))
	for i, task := range tasks {
		items[i] = dto.ToTaskListItemDTO(task)
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": items,
	})
}

// MemberTasks returns the caller's assigned tasks across the workspace.
func (h *StatsHandler) MemberTasks(c *gin.Context) {
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

	tasks, err := h.statsService.MemberTasks(workspace.ID, member.ID)
	if err != nil {
		respondStatsError(c, err)
		return
	}

	items := make([]dto.TaskListItemDTO, len(tasks))
	for i, task := range tasks {
		items[i] = dto.ToTaskListItemDTO(task)
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": items,
	})
}

// Due returns the caller's dated, unfinished projects and tasks.
func (h *StatsHandler) Due(c *gin.Context) {
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

	due, err := h.statsService.Due(workspace.ID, member.ID)
	if err != nil {
		respondStatsError(c, err)
		return
	}

	projects := make([]dto.ProjectListItemDTO, len(due.Projects))
	for i, project := range due.Projects {
		projects[i] = dto.ToProjectListItemDTO(project)
	}
	tasks := make([]dto.TaskListItemDTO, len(due.Tasks))
	for i, task := range due.Tasks {
		tasks[i] = dto.ToTaskListItemDTO(task)
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"tasks":    tasks,
	})
}

// respondStatsError maps stats service errors to HTTP responses.
func respondStatsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidStatsRange):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Something went wrong")
	}
}
