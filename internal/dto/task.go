package dto

import (
	"time"

	"github.com/thecodingmontana/zadaci-api/internal/models"
)

// SubtaskDTO represents a subtask in API responses
type SubtaskDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsCompleted bool   `json:"is_completed"`
}

// AssigneeDTO represents a task assignee in API responses
type AssigneeDTO struct {
	MemberID   string    `json:"member_id"`
	AssignedAt time.Time `json:"assigned_at"`
	User       *UserDTO  `json:"user,omitempty"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Status      models.Status   `json:"status"`
	Priority    models.Priority `json:"priority"`
	ProjectID   string          `json:"project_id"`
	DueDate     *time.Time      `json:"due_date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Subtasks    []SubtaskDTO    `json:"subtasks"`
	Assignees   []AssigneeDTO   `json:"assignees"`
}

// TaskListItemDTO represents a task in list views
type TaskListItemDTO struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Status        models.Status   `json:"status"`
	Priority      models.Priority `json:"priority"`
	DueDate       *time.Time      `json:"due_date"`
	SubtaskCount  int             `json:"subtask_count"`
	DoneSubtasks  int             `json:"done_subtasks"`
	AssigneeCount int             `json:"assignee_count"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Name:        task.Name,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		ProjectID:   task.ProjectID,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Subtasks:    make([]SubtaskDTO, len(task.Subtasks)),
		Assignees:   make([]AssigneeDTO, len(task.Assignees)),
	}

	for i, subtask := range task.Subtasks {
		dto.Subtasks[i] = SubtaskDTO{
			ID:          subtask.ID,
			Name:        subtask.Name,
			IsCompleted: subtask.IsCompleted,
		}
	}

	for i, assignee := range task.Assignees {
		item := AssigneeDTO{
			MemberID:   assignee.MemberID,
			AssignedAt: assignee.AssignedAt,
		}
		// Include user if preloaded through the member
		if assignee.Member.User.ID != "" {
			user := ToUserDTO(assignee.Member.User)
			item.User = &user
		}
		dto.Assignees[i] = item
	}

	return dto
}

// ToTaskListItemDTO converts a Task model to TaskListItemDTO
func ToTaskListItemDTO(task models.Task) TaskListItemDTO {
	dto := TaskListItemDTO{
		ID:            task.ID,
		Name:          task.Name,
		Status:        task.Status,
		Priority:      task.Priority,
		DueDate:       task.DueDate,
		SubtaskCount:  len(task.Subtasks),
		AssigneeCount: len(task.Assignees),
		CreatedAt:     task.CreatedAt,
	}
	for _, subtask := range task.Subtasks {
		if subtask.IsCompleted {
			dto.DoneSubtasks++
		}
	}
	return dto
}
