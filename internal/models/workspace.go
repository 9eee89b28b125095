package models

import (
	"time"
)

type SubscriptionPlan string

const (
	PlanFree SubscriptionPlan = "FREE"
	PlanPro  SubscriptionPlan = "PRO"
)

type Workspace struct {
	ID               string           `gorm:"type:varchar(36);primarykey" json:"id"`
	Name             string           `gorm:"type:varchar(255);not null" json:"name"`
	ImageURL         string           `gorm:"type:text;not null" json:"image_url"`
	InviteCode       string           `gorm:"type:varchar(50);uniqueIndex;not null" json:"invite_code"`
	OwnerID          string           `gorm:"type:varchar(36);not null" json:"owner_id"`
	SubscriptionPlan SubscriptionPlan `gorm:"type:varchar(20);not null;default:'FREE'" json:"subscription_plan"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`

	// Relations
	Owner    User              `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Members  []WorkspaceMember `gorm:"foreignKey:WorkspaceID" json:"members,omitempty"`
	Projects []Project         `gorm:"foreignKey:WorkspaceID" json:"projects,omitempty"`
	Invites  []WorkspaceInvite `gorm:"foreignKey:WorkspaceID" json:"invites,omitempty"`
}
