package dto

import (
	"time"

	"github.com/thecodingmontana/zadaci-api/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.Status     `json:"status"`
	Priority    models.Priority   `json:"priority"`
	WorkspaceID string            `json:"workspace_id"`
	DueDate     *time.Time        `json:"due_date"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Members     []MemberDTO       `json:"members,omitempty"`
	Tasks       []TaskListItemDTO `json:"tasks,omitempty"`
}

// ProjectListItemDTO represents a project in board and list views, carrying
// a small task rollup instead of full tasks.
type ProjectListItemDTO struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Status         models.Status   `json:"status"`
	Priority       models.Priority `json:"priority"`
	DueDate        *time.Time      `json:"due_date"`
	TaskCount      int             `json:"task_count"`
	CompletedTasks int             `json:"completed_tasks"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		Status:      project.Status,
		Priority:    project.Priority,
		WorkspaceID: project.WorkspaceID,
		DueDate:     project.DueDate,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}

	// Include tasks if preloaded
	if len(project.Tasks) > 0 {
		dto.Tasks = make([]TaskListItemDTO, len(project.Tasks))
		for i, task := range project.Tasks {
			dto.Tasks[i] = ToTaskListItemDTO(task)
		}
	}

	return dto
}

// ToProjectDTOWithMembers converts a project and its staffing to a DTO
func ToProjectDTOWithMembers(project models.Project, members []models.ProjectMember) ProjectDTO {
	dto := ToProjectDTO(project)
	dto.Members = make([]MemberDTO, len(members))
	for i, staffing := range members {
		dto.Members[i] = ToMemberDTO(staffing.Member)
	}
	return dto
}

// ToProjectListItemDTO converts a Project model to ProjectListItemDTO
func ToProjectListItemDTO(project models.Project) ProjectListItemDTO {
	dto := ProjectListItemDTO{
		ID:        project.ID,
		Title:     project.Title,
		Status:    project.Status,
		Priority:  project.Priority,
		DueDate:   project.DueDate,
		TaskCount: len(project.Tasks),
		CreatedAt: project.CreatedAt,
	}
	for _, task := range project.Tasks {
		if task.Status == models.StatusCompleted {
			dto.CompletedTasks++
		}
	}
	return dto
}
