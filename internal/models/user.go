package models

import (
	"time"
)

type User struct {
	ID            string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Email         string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Username      string    `gorm:"type:varchar(255);not null" json:"username"`
	PasswordHash  *string   `gorm:"type:varchar(255)" json:"-"`
	EmailVerified bool      `gorm:"not null;default:false" json:"email_verified"`
	Registered2FA bool      `gorm:"not null;default:false" json:"registered_2fa"`
	RecoveryCode  string    `gorm:"type:text;not null" json:"-"`
	AvatarURL     string    `gorm:"type:text" json:"avatar_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relations
	OwnedWorkspaces []Workspace       `gorm:"foreignKey:OwnerID" json:"-"`
	Memberships     []WorkspaceMember `gorm:"foreignKey:UserID" json:"-"`
}
