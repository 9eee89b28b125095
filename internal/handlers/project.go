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
)

// ProjectHandler coordinates project HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// CreateProject creates a project in the workspace.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
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

	type CreateProjectRequest struct {
		Title       string          `json:"title" binding:"required"`
		Description string          `json:"description"`
		Status      models.Status   `json:"status"`
		Priority    models.Priority `json:"priority"`
		DueDate     *time.Time      `json:"due_date"`
		MemberIDs   []string        `json:"member_ids"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(&workspace, &member, services.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		MemberIDs:   req.MemberIDs,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects returns the workspace's projects. With ?with_tasks=true each
// project carries its task rollup for board views.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	withTasks := c.Query("with_tasks") == "true"
	projects, err := h.projectService.ListProjects(workspace.ID, withTasks)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	items := make([]dto.ProjectListItemDTO, len(projects))
	for i, project := range projects {
		items[i] = dto.ToProjectListItemDTO(project)
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": items,
	})
}

// GetProject returns one project with staffing and tasks.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	projectID := c.Param("projectId")
	project, err := h.projectService.GetProject(workspace.ID, projectID, "Tasks", "Tasks.Subtasks", "Tasks.Assignees")
	if err != nil {
		respondProjectError(c, err)
		return
	}

	members, err := h.projectService.ListProjectMembers(workspace.ID, projectID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTOWithMembers(*project, members))
}

// ListProjectTeammates returns the members staffed on a project.
func (h *ProjectHandler) ListProjectTeammates(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	members, err := h.projectService.ListProjectMembers(workspace.ID, c.Param("projectId"))
	if err != nil {
		respondProjectError(c, err)
		return
	}

	items := make([]dto.MemberDTO, len(members))
	for i, staffing := range members {
		items[i] = dto.ToMemberDTO(staffing.Member)
	}

	c.JSON(http.StatusOK, gin.H{
		"teammates": items,
	})
}

// UpdateProject updates a project and its staffing.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
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

	type UpdateProjectRequest struct {
		Title       *string          `json:"title"`
		Description *string          `json:"description"`
		Status      *models.Status   `json:"status"`
		Priority    *models.Priority `json:"priority"`
		DueDate     *time.Time       `json:"due_date"`
		MemberIDs   []string         `json:"member_ids"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateProject(&workspace, &member, c.Param("projectId"), services.UpdateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		MemberIDs:   req.MemberIDs,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// UpdateProjectStatus changes only the project status.
func (h *ProjectHandler) UpdateProjectStatus(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
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

	project, err := h.projectService.UpdateProjectStatus(workspace.ID, c.Param("projectId"), req.Status)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject removes a project and its tasks.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	if err := h.projectService.DeleteProject(workspace.ID, c.Param("projectId")); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

// respondProjectError maps project service errors to HTTP responses.
func respondProjectError(c *gin.Context, err error) {
	var invalidMembers *services.InvalidMembersError

	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidProjectName),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrNoProjectMembers):
		apierrors.BadRequest(c, err.Error())
	case errors.As(err, &invalidMembers):
		apierrors.BadRequestWithDetails(c, "Some members do not belong to this workspace", invalidMembers.MemberIDs)
	default:
		apierrors.InternalError(c, "Something went wrong")
	}
}
