package models

import (
	"time"
)

type Project struct {
	ID          string     `gorm:"type:varchar(36);primarykey" json:"id"`
	Title       string     `gorm:"type:text;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      Status     `gorm:"type:varchar(20);not null;default:'IDEA'" json:"status"`
	Priority    Priority   `gorm:"type:varchar(20);not null;default:'NONE'" json:"priority"`
	WorkspaceID string     `gorm:"type:varchar(36);not null;index" json:"workspace_id"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Workspace Workspace       `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	Members   []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	Tasks     []Task          `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}

// ProjectMember staffs a workspace member onto a project.
type ProjectMember struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	ProjectID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_project_members_pair" json:"project_id"`
	MemberID  string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_project_members_pair" json:"member_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Project Project         `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Member  WorkspaceMember `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}
