package models

import "time"

// WorkspaceInvite is a pending offer for an email address to join a
// workspace with a given role. Acceptance, decline and cancellation all
// delete the row; only resend mutates it in place. The composite unique
// index guarantees at most one invite per (workspace, email).
type WorkspaceInvite struct {
	ID          string       `gorm:"type:varchar(36);primarykey" json:"id"`
	Email       string       `gorm:"type:varchar(255);not null;uniqueIndex:idx_invites_workspace_email" json:"email"`
	Role        Role         `gorm:"type:varchar(20);not null;default:'MEMBER'" json:"role"`
	WorkspaceID string       `gorm:"type:varchar(36);not null;uniqueIndex:idx_invites_workspace_email" json:"workspace_id"`
	Status      InviteStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	ExpiresAt   time.Time    `gorm:"not null" json:"expires_at"`
	InvitedBy   string       `gorm:"type:varchar(36);not null" json:"invited_by"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relations
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	Inviter   User      `gorm:"foreignKey:InvitedBy" json:"inviter,omitempty"`
}

// Expired reports whether the invite's expiry has passed.
func (i *WorkspaceInvite) Expired(now time.Time) bool {
	return i.ExpiresAt.Before(now)
}
