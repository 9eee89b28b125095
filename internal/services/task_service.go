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
	"github.com/thecodingmontana/zadaci-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrInvalidTaskName = errors.New("task name cannot be empty")
	ErrNoAssignees     = errors.New("at least one assignee is required")
)

// NotProjectMembersError reports assignees who are workspace members but
// not staffed on the task's project.
type NotProjectMembersError struct {
	Usernames []string
}

func (e *NotProjectMembersError) Error() string {
	return fmt.Sprintf("members are not on this project: %s", strings.Join(e.Usernames, ", "))
}

// TaskService provides business logic for task operations.
type TaskService struct {
	taskRepo      repository.TaskRepository
	projectRepo   repository.ProjectRepository
	workspaceRepo repository.WorkspaceRepository
	siteURL       string
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, workspaceRepo repository.WorkspaceRepository, siteURL string) *TaskService {
	return &TaskService{
		taskRepo:      taskRepo,
		projectRepo:   projectRepo,
		workspaceRepo: workspaceRepo,
		siteURL:       siteURL,
	}
}

// SubtaskInput is one subtask in a create or update request. A non-empty ID
// matches an existing row so completion state survives edits.
type SubtaskInput struct {
	ID          string
	Name        string
	IsCompleted bool
}

// CreateTaskInput represents parameters to create a new task.
type CreateTaskInput struct {
	Name        string
	Description string
	Status      models.Status
	Priority    models.Priority
	DueDate     *time.Time
	Subtasks    []SubtaskInput
	AssigneeIDs []string
}

// CreateTask creates a task under a project with its subtasks and
// assignees. Every assignee except the actor gets an email.
func (s *TaskService) CreateTask(workspace *models.Workspace, actor *models.WorkspaceMember, projectID string, input CreateTaskInput) (*models.Task, error) {
	project, err := s.requireProject(workspace.ID, projectID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidTaskName
	}
	if input.Status != "" && !input.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if input.Priority != "" && !input.Priority.IsValid() {
		return nil, ErrInvalidPriority
	}

	if len(input.AssigneeIDs) == 0 {
		return nil, ErrNoAssignees
	}
	assigneeMembers, err := s.resolveAssignees(workspace.ID, input.AssigneeIDs)
	if err != nil {
		return nil, err
	}
	if err := s.requireProjectStaffing(projectID, assigneeMembers); err != nil {
		return nil, err
	}

	task := &models.Task{
		ID:          uuid.NewString(),
		Name:        name,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		ProjectID:   projectID,
		DueDate:     input.DueDate,
	}
	if task.Status == "" {
		task.Status = models.StatusIdea
	}
	if task.Priority == "" {
		task.Priority = models.PriorityNone
	}

	subtasks := make([]models.Subtask, 0, len(input.Subtasks))
	for _, sub := range input.Subtasks {
		subtasks = append(subtasks, models.Subtask{
			ID:          uuid.NewString(),
			Name:        sub.Name,
			TaskID:      task.ID,
			IsCompleted: sub.IsCompleted,
		})
	}

	assignees := make([]models.TaskAssignee, 0, len(assigneeMembers))
	events := make([]models.OutboxMessage, 0, len(assigneeMembers))
	for _, member := range assigneeMembers {
		assignees = append(assignees, models.TaskAssignee{
			ID:         uuid.NewString(),
			TaskID:     task.ID,
			MemberID:   member.ID,
			AssignedAt: time.Now(),
		})
		if member.ID == actor.ID {
			continue
		}
		event, err := outbox.NewMessage(outbox.KindTaskAssigned, outbox.TaskAssignedEmail(
			member.User.Email,
			member.User.Username,
			task.Name,
			project.Title,
			s.taskURL(workspace.ID, projectID, task.ID),
		))
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := s.taskRepo.Create(task, subtasks, assignees, events); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// GetTask fetches a task scoped to its project, with relations preloaded.
func (s *TaskService) GetTask(workspaceID, projectID, taskID string) (*models.Task, error) {
	if _, err := s.requireProject(workspaceID, projectID); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.FindByID(projectID, taskID,
		"Subtasks", "Assignees", "Assignees.Member", "Assignees.Member.User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// ListTasks lists a page of a project's tasks with the total count.
func (s *TaskService) ListTasks(workspaceID, projectID string, params utils.PaginationParams) ([]models.Task, int64, error) {
	if _, err := s.requireProject(workspaceID, projectID); err != nil {
		return nil, 0, err
	}

	tasks, total, err := s.taskRepo.ListByProject(projectID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// UpdateTaskInput carries the updatable task fields. Nil pointers leave the
// field untouched; Subtasks and AssigneeIDs always replace their sets.
type UpdateTaskInput struct {
	Name        *string
	Description *string
	Status      *models.Status
	Priority    *models.Priority
	DueDate     *time.Time
	Subtasks    []SubtaskInput
	AssigneeIDs []string
}

// UpdateTask updates a task and reconciles its subtasks and assignees. A
// status transition into COMPLETED, IN REVIEW or ABANDONED is recorded as
// activity. New assignees are emailed; completion emails every assignee.
func (s *TaskService) UpdateTask(workspace *models.Workspace, actor *models.WorkspaceMember, projectID, taskID string, input UpdateTaskInput) (*models.Task, error) {
	project, err := s.requireProject(workspace.ID, projectID)
	if err != nil {
		return nil, err
	}

	task, err := s.taskRepo.FindByID(projectID, taskID, "Assignees")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	previousStatus := task.Status
	previousAssignees := make(map[string]bool, len(task.Assignees))
	for _, assignee := range task.Assignees {
		previousAssignees[assignee.MemberID] = true
	}
	task.Assignees = nil

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidTaskName
		}
		task.Name = name
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	assigneeMembers, err := s.resolveAssignees(workspace.ID, input.AssigneeIDs)
	if err != nil {
		return nil, err
	}
	if err := s.requireProjectStaffing(projectID, assigneeMembers); err != nil {
		return nil, err
	}

	subtasks := make([]models.Subtask, 0, len(input.Subtasks))
	for _, sub := range input.Subtasks {
		id := sub.ID
		if id == "" {
			id = uuid.NewString()
		}
		subtasks = append(subtasks, models.Subtask{
			ID:          id,
			Name:        sub.Name,
			TaskID:      task.ID,
			IsCompleted: sub.IsCompleted,
		})
	}

	completed := task.Status == models.StatusCompleted && previousStatus != models.StatusCompleted

	assignees := make([]models.TaskAssignee, 0, len(assigneeMembers))
	var events []models.OutboxMessage
	for _, member := range assigneeMembers {
		assignees = append(assignees, models.TaskAssignee{
			ID:         uuid.NewString(),
			TaskID:     task.ID,
			MemberID:   member.ID,
			AssignedAt: time.Now(),
		})

		if completed {
			event, err := outbox.NewMessage(outbox.KindTaskCompleted, outbox.TaskCompletedEmail(
				member.User.Email,
				member.User.Username,
				task.Name,
				project.Title,
			))
			if err != nil {
				return nil, err
			}
			events = append(events, event)
			continue
		}

		if previousAssignees[member.ID] || member.ID == actor.ID {
			continue
		}
		event, err := outbox.NewMessage(outbox.KindTaskAssigned, outbox.TaskAssignedEmail(
			member.User.Email,
			member.User.Username,
			task.Name,
			project.Title,
			s.taskURL(workspace.ID, projectID, task.ID),
		))
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	activity := s.activityFor(task, previousStatus, actor.ID)

	if err := s.taskRepo.Update(task, subtasks, assignees, activity, events); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// UpdateTaskStatus changes only the task status, recording activity on the
// same transitions as a full update.
func (s *TaskService) UpdateTaskStatus(workspaceID, projectID, taskID string, status models.Status, actorMemberID string) (*models.Task, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	if _, err := s.requireProject(workspaceID, projectID); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.FindByID(projectID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	previousStatus := task.Status
	task.Status = status
	activity := s.activityFor(task, previousStatus, actorMemberID)

	if err := s.taskRepo.UpdateStatus(task, status, activity); err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	return task, nil
}

// DeleteTask removes a task and its subtasks, assignees and activity.
func (s *TaskService) DeleteTask(workspaceID, projectID, taskID string) error {
	if _, err := s.requireProject(workspaceID, projectID); err != nil {
		return err
	}

	if _, err := s.taskRepo.FindByID(projectID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.Delete(projectID, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// activityFor returns the activity row for a status transition, or nil when
// the transition is not recorded.
func (s *TaskService) activityFor(task *models.Task, previousStatus models.Status, actorMemberID string) *models.TaskActivity {
	if task.Status == previousStatus || !task.Status.LogsActivity() {
		return nil
	}
	return &models.TaskActivity{
		ID:        uuid.NewString(),
		Status:    task.Status,
		TaskID:    task.ID,
		ChangedBy: actorMemberID,
		ChangedAt: time.Now(),
	}
}

func (s *TaskService) requireProject(workspaceID, projectID string) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(workspaceID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// resolveAssignees loads workspace members for the given IDs, failing with
// InvalidMembersError on IDs foreign to the workspace.
func (s *TaskService) resolveAssignees(workspaceID string, memberIDs []string) ([]models.WorkspaceMember, error) {
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

// requireProjectStaffing fails with NotProjectMembersError when any of the
// members is not staffed on the project. Assignment follows staffing.
func (s *TaskService) requireProjectStaffing(projectID string, members []models.WorkspaceMember) error {
	if len(members) == 0 {
		return nil
	}

	memberIDs := make([]string, len(members))
	for i, member := range members {
		memberIDs[i] = member.ID
	}

	staffed, err := s.projectRepo.ListMemberIDs(projectID, memberIDs)
	if err != nil {
		return fmt.Errorf("failed to check staffing: %w", err)
	}

	onProject := make(map[string]bool, len(staffed))
	for _, id := range staffed {
		onProject[id] = true
	}

	var offenders []string
	for _, member := range members {
		if !onProject[member.ID] {
			offenders = append(offenders, member.User.Username)
		}
	}
	if len(offenders) > 0 {
		return &NotProjectMembersError{Usernames: offenders}
	}
	return nil
}

func (s *TaskService) taskURL(workspaceID, projectID, taskID string) string {
	return fmt.Sprintf("%s/workspace/%s/projects/%s/tasks/%s", s.siteURL, workspaceID, projectID, taskID)
}
