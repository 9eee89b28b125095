package dto

import (
	"time"

	"github.com/thecodingmontana/zadaci-api/internal/models"
)

// WorkspaceDTO represents a workspace in API responses. The invite code is
// only exposed to members who can invite.
type WorkspaceDTO struct {
	ID               string                  `json:"id"`
	Name             string                  `json:"name"`
	ImageURL         string                  `json:"image_url"`
	InviteCode       string                  `json:"invite_code,omitempty"`
	OwnerID          string                  `json:"owner_id"`
	SubscriptionPlan models.SubscriptionPlan `json:"subscription_plan"`
	CreatedAt        time.Time               `json:"created_at"`
}

// WorkspaceWithRoleDTO represents a workspace with the caller's role
type WorkspaceWithRoleDTO struct {
	WorkspaceDTO
	Role models.Role `json:"role"`
}

// MemberDTO represents a workspace member in API responses
type MemberDTO struct {
	ID       string      `json:"id"`
	Role     models.Role `json:"role"`
	JoinedAt time.Time   `json:"joined_at"`
	User     UserDTO     `json:"user"`
}

// WorkspaceDetailDTO represents detailed workspace information
type WorkspaceDetailDTO struct {
	WorkspaceDTO
	Members  []MemberDTO `json:"members"`
	YourRole models.Role `json:"your_role"`
}

// ToWorkspaceDTO converts a Workspace model to WorkspaceDTO
func ToWorkspaceDTO(workspace models.Workspace, includeInviteCode bool) WorkspaceDTO {
	dto := WorkspaceDTO{
		ID:               workspace.ID,
		Name:             workspace.Name,
		ImageURL:         workspace.ImageURL,
		OwnerID:          workspace.OwnerID,
		SubscriptionPlan: workspace.SubscriptionPlan,
		CreatedAt:        workspace.CreatedAt,
	}
	if includeInviteCode {
		dto.InviteCode = workspace.InviteCode
	}
	return dto
}

// ToWorkspaceWithRoleDTO converts a membership to a workspace with role
func ToWorkspaceWithRoleDTO(member models.WorkspaceMember) WorkspaceWithRoleDTO {
	return WorkspaceWithRoleDTO{
		WorkspaceDTO: ToWorkspaceDTO(member.Workspace, member.Role == models.RoleOwner),
		Role:         member.Role,
	}
}

// ToMemberDTO converts a member to DTO
func ToMemberDTO(member models.WorkspaceMember) MemberDTO {
	return MemberDTO{
		ID:       member.ID,
		Role:     member.Role,
		JoinedAt: member.CreatedAt,
		User:     ToUserDTO(member.User),
	}
}

// ToWorkspaceDetailDTO converts a workspace with members to a detailed DTO
func ToWorkspaceDetailDTO(workspace models.Workspace, members []models.WorkspaceMember, yourRole models.Role) WorkspaceDetailDTO {
	memberDTOs := make([]MemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToMemberDTO(member)
	}

	return WorkspaceDetailDTO{
		WorkspaceDTO: ToWorkspaceDTO(workspace, yourRole.AtLeast(models.RoleOwner)),
		Members:      memberDTOs,
		YourRole:     yourRole,
	}
}
