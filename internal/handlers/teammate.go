package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thecodingmontana/zadaci-api/internal/dto"
	apierrors "github.com/thecodingmontana/zadaci-api/internal/errors"
	"github.com/thecodingmontana/zadaci-api/internal/middleware"
	"github.com/thecodingmontana/zadaci-api/internal/models"
	"github.com/thecodingmontana/zadaci-api/internal/services"
)

// TeammateHandler coordinates workspace membership HTTP handlers.
type TeammateHandler struct {
	workspaceService *services.WorkspaceService
}

// NewTeammateHandler creates a new TeammateHandler.
func NewTeammateHandler(workspaceService *services.WorkspaceService) *TeammateHandler {
	return &TeammateHandler{
		workspaceService: workspaceService,
	}
}

// ListTeammates returns all members of the workspace.
func (h *TeammateHandler) ListTeammates(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	members, err := h.workspaceService.ListTeammates(workspace.ID)
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	teammates := make([]dto.MemberDTO, len(members))
	for i, member := range members {
		teammates[i] = dto.ToMemberDTO(member)
	}

	c.JSON(http.StatusOK, gin.H{
		"teammates": teammates,
	})
}

// ChangeRoles applies a batch of role changes.
func (h *TeammateHandler) ChangeRoles(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	type RoleChangeRequest struct {
		Changes []struct {
			UserID string      `json:"user_id" binding:"required"`
			Role   models.Role `json:"role" binding:"required"`
		} `json:"changes" binding:"required,min=1"`
	}

	var req RoleChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	changes := make([]services.RoleChange, len(req.Changes))
	for i, change := range req.Changes {
		changes[i] = services.RoleChange{
			UserID: change.UserID,
			Role:   change.Role,
		}
	}

	if err := h.workspaceService.ChangeTeammateRoles(workspace.ID, changes); err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Roles updated successfully",
	})
}

// RemoveTeammates removes members from the workspace.
func (h *TeammateHandler) RemoveTeammates(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	type RemoveRequest struct {
		UserIDs []string `json:"user_ids" binding:"required,min=1"`
	}

	var req RemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.workspaceService.RemoveTeammates(workspace.ID, req.UserIDs); err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Teammates removed successfully",
	})
}
