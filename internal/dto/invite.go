package dto

import (
	"time"

	"github.com/thecodingmontana/zadaci-api/internal/models"
)

// InviteDTO represents a workspace invite in API responses
type InviteDTO struct {
	ID        string              `json:"id"`
	Email     string              `json:"email"`
	Role      models.Role         `json:"role"`
	Status    models.InviteStatus `json:"status"`
	ExpiresAt time.Time           `json:"expires_at"`
	CreatedAt time.Time           `json:"created_at"`
	Inviter   *UserDTO            `json:"inviter,omitempty"`
}

// InvitePreviewDTO is the public view of an invite shown on the accept page
type InvitePreviewDTO struct {
	Email         string      `json:"email"`
	Role          models.Role `json:"role"`
	ExpiresAt     time.Time   `json:"expires_at"`
	WorkspaceName string      `json:"workspace_name"`
	WorkspaceIcon string      `json:"workspace_icon"`
	OwnerName     string      `json:"owner_name"`
}

// ToInviteDTO converts a WorkspaceInvite model to InviteDTO
func ToInviteDTO(invite models.WorkspaceInvite) InviteDTO {
	dto := InviteDTO{
		ID:        invite.ID,
		Email:     invite.Email,
		Role:      invite.Role,
		Status:    invite.Status,
		ExpiresAt: invite.ExpiresAt,
		CreatedAt: invite.CreatedAt,
	}
	// Include inviter if preloaded
	if invite.Inviter.ID != "" {
		inviter := ToUserDTO(invite.Inviter)
		dto.Inviter = &inviter
	}
	return dto
}

// ToInvitePreviewDTO builds the public invite preview
func ToInvitePreviewDTO(invite models.WorkspaceInvite, workspace models.Workspace) InvitePreviewDTO {
	return InvitePreviewDTO{
		Email:         invite.Email,
		Role:          invite.Role,
		ExpiresAt:     invite.ExpiresAt,
		WorkspaceName: workspace.Name,
		WorkspaceIcon: workspace.ImageURL,
		OwnerName:     workspace.Owner.Username,
	}
}
