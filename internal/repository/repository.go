package repository

import (
	"time"

	"github.com/thecodingmontana/zadaci-api/internal/models"
	"github.com/thecodingmontana/zadaci-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}

// WorkspaceRepository defines the interface for workspace and membership
// data access
type WorkspaceRepository interface {
	// Create creates a workspace and its owning member atomically
	Create(workspace *models.Workspace, owner *models.WorkspaceMember) error

	// FindByID finds a workspace by ID
	FindByID(id string) (*models.Workspace, error)

	// FindByInviteCode finds a workspace by invite code, optionally with
	// the owner preloaded
	FindByInviteCode(code string, withOwner bool) (*models.Workspace, error)

	// Update updates a workspace
	Update(workspace *models.Workspace) error

	// Delete deletes a workspace and all dependent rows atomically
	Delete(id string) error

	// ListForUser lists all memberships of a user with workspaces preloaded,
	// newest workspace first
	ListForUser(userID string) ([]models.WorkspaceMember, error)

	// FindMember finds a member row by (workspace, user)
	FindMember(workspaceID, userID string) (*models.WorkspaceMember, error)

	// ListMembers lists all members of a workspace with users preloaded
	ListMembers(workspaceID string) ([]models.WorkspaceMember, error)

	// ListMembersByIDs lists workspace members matching the given member IDs,
	// users preloaded
	ListMembersByIDs(workspaceID string, memberIDs []string) ([]models.WorkspaceMember, error)

	// ListMembersByUserIDs lists workspace members matching the given user IDs
	ListMembersByUserIDs(workspaceID string, userIDs []string) ([]models.WorkspaceMember, error)

	// UpdateMemberRoles applies a userID -> role assignment atomically
	UpdateMemberRoles(workspaceID string, roles map[string]models.Role) error

	// RemoveMembers removes the member rows for the given user IDs
	RemoveMembers(workspaceID string, userIDs []string) error

	// MemberEmailExists reports whether the email belongs to a member of
	// the workspace
	MemberEmailExists(workspaceID, email string) (bool, error)
}

// InviteRepository defines the interface for workspace invite data access.
// Mutations accept outbox messages so notification intent commits with the
// state change.
type InviteRepository interface {
	// CreateBatch inserts invites and their notification events atomically
	CreateBatch(invites []models.WorkspaceInvite, events []models.OutboxMessage) error

	// Find finds an invite by (workspace, email)
	Find(workspaceID, email string) (*models.WorkspaceInvite, error)

	// FindPending finds a PENDING invite by (workspace, email)
	FindPending(workspaceID, email string) (*models.WorkspaceInvite, error)

	// Renew pushes an invite's expiry forward and enqueues a fresh invite mail
	Renew(id string, expiresAt time.Time, event models.OutboxMessage) error

	// Accept consumes an invite: creates the user when newUser is non-nil,
	// creates the membership, deletes the invite and enqueues the welcome
	// mail, all in one transaction
	Accept(invite *models.WorkspaceInvite, newUser *models.User, member *models.WorkspaceMember, event models.OutboxMessage) error

	// DeleteWithEvent removes an invite and enqueues a notification
	DeleteWithEvent(workspaceID, email string, event models.OutboxMessage) error

	// DeleteByEmails bulk-removes invites, returning how many rows went away
	DeleteByEmails(workspaceID string, emails []string) (int64, error)

	// ListByWorkspace lists all invites of a workspace with inviters preloaded
	ListByWorkspace(workspaceID string) ([]models.WorkspaceInvite, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create inserts a project, its member rows and notification events
	// atomically
	Create(project *models.Project, members []models.ProjectMember, events []models.OutboxMessage) error

	// FindByID finds a project scoped to its workspace
	FindByID(workspaceID, projectID string, preload ...string) (*models.Project, error)

	// Update saves the project and diff/merges its member set against
	// memberIDs in one transaction
	Update(project *models.Project, memberIDs []string, events []models.OutboxMessage) error

	// UpdateStatus updates only the project status
	UpdateStatus(projectID string, status models.Status) error

	// Delete removes a project and all dependent task rows atomically
	Delete(projectID string) error

	// ListByWorkspace lists all projects of a workspace
	ListByWorkspace(workspaceID string, withTasks bool) ([]models.Project, error)

	// ListForMember lists projects the member is staffed on, tasks preloaded
	ListForMember(workspaceID, memberID string) ([]models.Project, error)

	// ListMemberIDs returns which of the given workspace-member IDs are
	// staffed on the project
	ListMemberIDs(projectID string, memberIDs []string) ([]string, error)

	// ListMembers lists project staffing with member users preloaded
	ListMembers(projectID string) ([]models.ProjectMember, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create inserts a task with subtasks, assignees and notification
	// events atomically
	Create(task *models.Task, subtasks []models.Subtask, assignees []models.TaskAssignee, events []models.OutboxMessage) error

	// FindByID finds a task scoped to its project
	FindByID(projectID, taskID string, preload ...string) (*models.Task, error)

	// Update saves the task, diff/merges subtasks and assignees, appends
	// the optional activity row and enqueues events, all in one transaction
	Update(task *models.Task, subtasks []models.Subtask, assignees []models.TaskAssignee, activity *models.TaskActivity, events []models.OutboxMessage) error

	// UpdateStatus updates only the task status, appending the optional
	// activity row atomically
	UpdateStatus(task *models.Task, status models.Status, activity *models.TaskActivity) error

	// Delete removes a task and its dependent rows atomically
	Delete(projectID, taskID string) error

	// ListByProject lists a page of a project's tasks with subtasks and
	// assignees, plus the total count
	ListByProject(projectID string, params utils.PaginationParams) ([]models.Task, int64, error)
}

// StatsRepository defines the read-only aggregation queries
type StatsRepository interface {
	// ActiveProjectIDs returns IDs of non-completed projects in a workspace
	ActiveProjectIDs(workspaceID string) ([]string, error)

	// CountTasks counts tasks in the given projects, optionally by status
	CountTasks(projectIDs []string, status *models.Status) (int64, error)

	// ListActivityBetween returns activity rows of a workspace in [from, to)
	ListActivityBetween(workspaceID string, from, to time.Time) ([]models.TaskActivity, error)
}

// OutboxRepository defines the dispatcher's view of the outbox
type OutboxRepository interface {
	// ClaimDue returns pending messages whose next attempt is due
	ClaimDue(now time.Time, limit int) ([]models.OutboxMessage, error)

	// MarkSent finalizes a delivered message
	MarkSent(id string, at time.Time) error

	// MarkFailed records a delivery failure; terminal failures stop retrying
	MarkFailed(id string, attempts int, nextAttempt time.Time, lastError string, terminal bool) error
}
