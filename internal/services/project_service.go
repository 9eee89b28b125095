package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thecodingmontana/zadaci-api/internal/models"
	"github.com/thecodingmontana/zadaci-api/internal/outbox"
	"github.com/thecodingmontana/zadaci-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrInvalidProjectName = errors.New("project title cannot be empty")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidPriority    = errors.New("invalid priority")
	ErrNoProjectMembers   = errors.New("at least one member is required")
)

// InvalidMembersError reports workspace-member IDs that do not belong to
// the workspace a project lives in.
type InvalidMembersError struct {
	MemberIDs []string
}

func (e *InvalidMembersError) Error() string {
	return fmt.Sprintf("members do not belong to this workspace: %s", strings.Join(e.MemberIDs, ", "))
}

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projectRepo   repository.ProjectRepository
	workspaceRepo repository.WorkspaceRepository
	siteURL       string
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, workspaceRepo repository.WorkspaceRepository, siteURL string) *ProjectService {
	return &ProjectService{
		projectRepo:   projectRepo,
		workspaceRepo: workspaceRepo,
		siteURL:       siteURL,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Title       string
	Description string
	Status      models.Status
	Priority    models.Priority
	DueDate     *time.Time
	MemberIDs   []string
}

// CreateProject creates a project in the workspace and staffs the given
// members onto it. Every staffed member except the actor gets an email.
func (s *ProjectService) CreateProject(workspace *models.Workspace, actor *models.WorkspaceMember, input CreateProjectInput) (*models.Project, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidProjectName
	}
	if input.Status != "" && !input.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if input.Priority != "" && !input.Priority.IsValid() {
		return nil, ErrInvalidPriority
	}

	if len(input.MemberIDs) == 0 {
		return nil, ErrNoProjectMembers
	}
	members, err := s.resolveMembers(workspace.ID, input.MemberIDs)
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		ID:          uuid.NewString(),
		Title:       title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		WorkspaceID: workspace.ID,
		DueDate:     input.DueDate,
	}
	if project.Status == "" {
		project.Status = models.StatusIdea
	}
	if project.Priority == "" {
		project.Priority = models.PriorityNone
	}

	staffing := make([]models.ProjectMember, 0, len(members))
	events := make([]models.OutboxMessage, 0, len(members))
	for _, member := range members {
		staffing = append(staffing, models.ProjectMember{
			ID:        uuid.NewString(),
			ProjectID: project.ID,
			MemberID:  member.ID,
		})
		if member.ID == actor.ID {
			continue
		}
		event, err := outbox.NewMessage(outbox.KindProjectAssigned, outbox.ProjectAssignedEmail(
			member.User.Email,
			member.User.Username,
			project.Title,
			workspace.Name,
			s.projectURL(workspace.ID, project.ID),
		))
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := s.projectRepo.Create(project, staffing, events); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

// GetProject fetches a project scoped to its workspace.
func (s *ProjectService) GetProject(workspaceID, projectID string, preload ...string) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(workspaceID, projectID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// ListProjects lists projects of a workspace.
func (s *ProjectService) ListProjects(workspaceID string, withTasks bool) ([]models.Project, error) {
	projects, err := s.projectRepo.ListByWorkspace(workspaceID, withTasks)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// ListProjectMembers lists the staffing of a project.
func (s *ProjectService) ListProjectMembers(workspaceID, projectID string) ([]models.ProjectMember, error) {
	if _, err := s.GetProject(workspaceID, projectID); err != nil {
		return nil, err
	}

	members, err := s.projectRepo.ListMembers(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	return members, nil
}

// UpdateProjectInput carries the updatable project fields. Nil pointers
// leave the field untouched; MemberIDs always replaces the staffing set.
type UpdateProjectInput struct {
	Title       *string
	Description *string
	Status      *models.Status
	Priority    *models.Priority
	DueDate     *time.Time
	MemberIDs   []string
}

// UpdateProject updates a project and reconciles its staffing. Newly added
// members are emailed, and completing the project emails everyone on it.
func (s *ProjectService) UpdateProject(workspace *models.Workspace, actor *models.WorkspaceMember, projectID string, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.GetProject(workspace.ID, projectID)
	if err != nil {
		return nil, err
	}

	previousStatus := project.Status

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrInvalidProjectName
		}
		project.Title = title
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, ErrInvalidStatus
		}
		project.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, ErrInvalidPriority
		}
		project.Priority = *input.Priority
	}
	if input.DueDate != nil {
		project.DueDate = input.DueDate
	}

	members, err := s.resolveMembers(workspace.ID, input.MemberIDs)
	if err != nil {
		return nil, err
	}

	staffed, err := s.projectRepo.ListMemberIDs(projectID, input.MemberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to check staffing: %w", err)
	}
	alreadyStaffed := make(map[string]bool, len(staffed))
	for _, id := range staffed {
		alreadyStaffed[id] = true
	}

	var events []models.OutboxMessage
	completed := project.Status == models.StatusCompleted && previousStatus != models.StatusCompleted

	for _, member := range members {
		if completed {
			event, err := outbox.NewMessage(outbox.KindProjectCompleted, outbox.ProjectCompletedEmail(
				member.User.Email,
				member.User.Username,
				project.Title,
				workspace.Name,
			))
			if err != nil {
				return nil, err
			}
			events = append(events, event)
			continue
		}

		if alreadyStaffed[member.ID] || member.ID == actor.ID {
			continue
		}
		event, err := outbox.NewMessage(outbox.KindProjectAssigned, outbox.ProjectAssignedEmail(
			member.User.Email,
			member.User.Username,
			project.Title,
			workspace.Name,
			s.projectURL(workspace.ID, project.ID),
		))
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := s.projectRepo.Update(project, input.MemberIDs, events); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

// UpdateProjectStatus changes only the project status, as from a board drag.
func (s *ProjectService) UpdateProjectStatus(workspaceID, projectID string, status models.Status) (*models.Project, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	project, err := s.GetProject(workspaceID, projectID)
	if err != nil {
		return nil, err
	}

	if err := s.projectRepo.UpdateStatus(projectID, status); err != nil {
		return nil, fmt.Errorf("failed to update project status: %w", err)
	}

	project.Status = status
	return project, nil
}

// DeleteProject removes a project and all of its tasks.
func (s *ProjectService) DeleteProject(workspaceID, projectID string) error {
	if _, err := s.GetProject(workspaceID, projectID); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// resolveMembers loads workspace members for the given IDs and fails with
// InvalidMembersError when any ID is foreign to the workspace.
func (s *ProjectService) resolveMembers(workspaceID string, memberIDs []string) ([]models.WorkspaceMember, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}

	members, err := s.workspaceRepo.ListMembersByIDs(workspaceID, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to check members: %w", err)
	}

	known := make(map[string]bool, len(members))
	for _, member := range members {
		known[member.ID] = true
	}

	var unknown []string
	for _, id := range memberIDs {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return nil, &InvalidMembersError{MemberIDs: unknown}
	}
	return members, nil
}

func (s *ProjectService) projectURL(workspaceID, projectID string) string {
	return fmt.Sprintf("%s/workspace/%s/projects/%s", s.siteURL, workspaceID, projectID)
}
