package models

import "time"

type WorkspaceMember struct {
	ID          string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Role        Role      `gorm:"type:varchar(20);not null;default:'MEMBER'" json:"role"`
	UserID      string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_members_workspace_user" json:"user_id"`
	WorkspaceID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_members_workspace_user" json:"workspace_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
}
