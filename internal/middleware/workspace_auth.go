package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/thecodingmontana/zadaci-api/internal/constants"
	"github.com/thecodingmontana/zadaci-api/internal/database"
	apierrors "github.com/thecodingmontana/zadaci-api/internal/errors"
	"github.com/thecodingmontana/zadaci-api/internal/models"
)

// RequireWorkspaceAccess resolves the caller's membership in the workspace
// named by the :workspaceId path parameter. Missing workspaces and missing
// memberships both answer 404 so outsiders cannot probe tenant existence.
func RequireWorkspaceAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID := c.Param("workspaceId")
		if workspaceID == "" {
			apierrors.BadRequest(c, "WorkspaceId is required")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var workspace models.Workspace
		if err := database.GetDB().Where("id = ?", workspaceID).First(&workspace).Error; err != nil {
			apierrors.NotFound(c, "Workspace not found")
			c.Abort()
			return
		}

		var member models.WorkspaceMember
		err := database.GetDB().
			Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
			First(&member).Error
		if err != nil {
			apierrors.NotFound(c, "Workspace not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyWorkspace, workspace)
		c.Set(constants.ContextKeyMember, member)
		c.Next()
	}
}

// RequireWorkspaceRole gates a route on a minimum workspace role. It must
// run after RequireWorkspaceAccess.
func RequireWorkspaceRole(min models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		member, ok := GetMember(c)
		if !ok {
			apierrors.Forbidden(c, "Workspace access required")
			c.Abort()
			return
		}

		if !member.Role.AtLeast(min) {
			apierrors.Forbidden(c, "Insufficient workspace role for this action")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetWorkspace retrieves the workspace stored by RequireWorkspaceAccess.
func GetWorkspace(c *gin.Context) (models.Workspace, bool) {
	value, exists := c.Get(constants.ContextKeyWorkspace)
	if !exists {
		return models.Workspace{}, false
	}
	workspace, ok := value.(models.Workspace)
	return workspace, ok
}

// GetMember retrieves the membership stored by RequireWorkspaceAccess.
func GetMember(c *gin.Context) (models.WorkspaceMember, bool) {
	value, exists := c.Get(constants.ContextKeyMember)
	if !exists {
		return models.WorkspaceMember{}, false
	}
	member, ok := value.(models.WorkspaceMember)
	return member, ok
}
