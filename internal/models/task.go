package models

import (
	"time"
)

type Task struct {
	ID          string     `gorm:"type:varchar(36);primarykey" json:"id"`
	Name        string     `gorm:"type:text;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Status      Status     `gorm:"type:varchar(20);not null;default:'IDEA'" json:"status"`
	Priority    Priority   `gorm:"type:varchar(20);not null;default:'NONE'" json:"priority"`
	ProjectID   string     `gorm:"type:varchar(36);not null;index" json:"project_id"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Project    Project        `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Subtasks   []Subtask      `gorm:"foreignKey:TaskID" json:"subtasks,omitempty"`
	Assignees  []TaskAssignee `gorm:"foreignKey:TaskID" json:"assignees,omitempty"`
	Activities []TaskActivity `gorm:"foreignKey:TaskID" json:"activities,omitempty"`
}

type Subtask struct {
	ID          string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	TaskID      string    `gorm:"type:varchar(36);not null;index" json:"task_id"`
	IsCompleted bool      `gorm:"not null;default:false" json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TaskAssignee struct {
	ID         string    `gorm:"type:varchar(36);primarykey" json:"id"`
	TaskID     string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_task_assignees_pair" json:"task_id"`
	MemberID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_task_assignees_pair" json:"member_id"`
	AssignedAt time.Time `json:"assigned_at"`

	// Relations
	Task   Task            `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Member WorkspaceMember `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

// TaskActivity is an append-only record of a task entering COMPLETED,
// IN REVIEW or ABANDONED. It feeds the productivity stats.
type TaskActivity struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Status    Status    `gorm:"type:varchar(20);not null" json:"status"`
	TaskID    string    `gorm:"type:varchar(36);not null;index" json:"task_id"`
	ChangedBy string    `gorm:"type:varchar(36);not null" json:"changed_by"`
	ChangedAt time.Time `gorm:"index" json:"changed_at"`

	// Relations
	Task   Task            `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Member WorkspaceMember `gorm:"foreignKey:ChangedBy" json:"member,omitempty"`
}
