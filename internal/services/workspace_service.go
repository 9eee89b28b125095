package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/thecodingmontana/zadaci-api/internal/constants"
	"github.com/thecodingmontana/zadaci-api/internal/models"
	"github.com/thecodingmontana/zadaci-api/internal/repository"
	"github.com/thecodingmontana/zadaci-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrWorkspaceNotFound          = errors.New("workspace not found")
	ErrInvalidWorkspaceName       = errors.New("workspace name cannot be empty")
	ErrInviteCodeGenerationFailed = errors.New("failed to generate invite code")
	ErrWorkspaceMemberNotFound    = errors.New("workspace member not found")
	ErrCannotRemoveOwner          = errors.New("the workspace owner cannot be removed")
	ErrCannotDemoteOwner          = errors.New("the workspace owner's role cannot be changed")
	ErrCannotAssignOwner          = errors.New("the OWNER role cannot be assigned")
	ErrInvalidRole                = errors.New("invalid role")
)

// UnknownMembersError reports user IDs that are not members of the workspace.
type UnknownMembersError struct {
	UserIDs []string
}

func (e *UnknownMembersError) Error() string {
	return fmt.Sprintf("users are not workspace members: %s", strings.Join(e.UserIDs, ", "))
}

// WorkspaceService provides business logic for workspace operations.
type WorkspaceService struct {
	workspaceRepo repository.WorkspaceRepository
}

// NewWorkspaceService creates a new WorkspaceService.
func NewWorkspaceService(workspaceRepo repository.WorkspaceRepository) *WorkspaceService {
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
	}
}

// CreateWorkspaceInput represents parameters to create a new workspace.
type CreateWorkspaceInput struct {
	Name     string
	ImageURL string
	OwnerID  string
}

// CreateWorkspace creates a workspace with the creator as OWNER.
func (s *WorkspaceService) CreateWorkspace(input CreateWorkspaceInput) (*models.Workspace, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidWorkspaceName
	}

	inviteCode, err := utils.GenerateInviteCode(constants.InviteCodeLength)
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	workspace := &models.Workspace{
		ID:         uuid.NewString(),
		Name:       name,
		ImageURL:   input.ImageURL,
		InviteCode: inviteCode,
		OwnerID:    input.OwnerID,
	}
	if workspace.ImageURL == "" {
		workspace.ImageURL = fmt.Sprintf("https://avatar.vercel.sh/%s", workspace.ID)
	}

	owner := &models.WorkspaceMember{
		ID:          uuid.NewString(),
		Role:        models.RoleOwner,
		UserID:      input.OwnerID,
		WorkspaceID: workspace.ID,
	}

	if err := s.workspaceRepo.Create(workspace, owner); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	return workspace, nil
}

// ListWorkspacesForUser returns the memberships of a user, workspaces
// preloaded.
func (s *WorkspaceService) ListWorkspacesForUser(userID string) ([]models.WorkspaceMember, error) {
	memberships, err := s.workspaceRepo.ListForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return memberships, nil
}

// GetWorkspace fetches a workspace by ID.
func (s *WorkspaceService) GetWorkspace(workspaceID string) (*models.Workspace, error) {
	workspace, err := s.workspaceRepo.FindByID(workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}
	return workspace, nil
}

// UpdateWorkspaceInput carries the updatable workspace fields.
type UpdateWorkspaceInput struct {
	Name     *string
	ImageURL *string
}

// UpdateWorkspace updates a workspace's name and image.
func (s *WorkspaceService) UpdateWorkspace(workspaceID string, input UpdateWorkspaceInput) (*models.Workspace, error) {
	workspace, err := s.workspaceRepo.FindByID(workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidWorkspaceName
		}
		workspace.Name = name
	}
	if input.ImageURL != nil {
		workspace.ImageURL = *input.ImageURL
	}

	if err := s.workspaceRepo.Update(workspace); err != nil {
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}
	return workspace, nil
}

// DeleteWorkspace removes a workspace and everything in it.
func (s *WorkspaceService) DeleteWorkspace(workspaceID string) error {
	if _, err := s.workspaceRepo.FindByID(workspaceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkspaceNotFound
		}
		return fmt.Errorf("failed to find workspace: %w", err)
	}

	if err := s.workspaceRepo.Delete(workspaceID); err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	return nil
}

// ListTeammates returns all members of a workspace.
func (s *WorkspaceService) ListTeammates(workspaceID string) ([]models.WorkspaceMember, error) {
	members, err := s.workspaceRepo.ListMembers(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// RoleChange assigns a new role to one member, keyed by user ID.
type RoleChange struct {
	UserID string
	Role   models.Role
}

// ChangeTeammateRoles applies a batch of role changes. Roles never change
// to or from OWNER and every target must already be a member.
func (s *WorkspaceService) ChangeTeammateRoles(workspaceID string, changes []RoleChange) error {
	if _, err := s.workspaceRepo.FindByID(workspaceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkspaceNotFound
		}
		return fmt.Errorf("failed to find workspace: %w", err)
	}

	roles := make(map[string]models.Role, len(changes))
	userIDs := make([]string, 0, len(changes))
	for _, change := range changes {
		if !change.Role.IsValid() {
			return ErrInvalidRole
		}
		if change.Role == models.RoleOwner {
			return ErrCannotAssignOwner
		}
		roles[change.UserID] = change.Role
		userIDs = append(userIDs, change.UserID)
	}

	members, err := s.requireMembers(workspaceID, userIDs)
	if err != nil {
		return err
	}
	for _, member := range members {
		if member.Role == models.RoleOwner {
			return ErrCannotDemoteOwner
		}
	}

	if err := s.workspaceRepo.UpdateMemberRoles(workspaceID, roles); err != nil {
		return fmt.Errorf("failed to update roles: %w", err)
	}
	return nil
}

// RemoveTeammates removes members from a workspace. OWNER members are
// protected, which also rules out the calling owner removing themselves.
func (s *WorkspaceService) RemoveTeammates(workspaceID string, userIDs []string) error {
	if _, err := s.workspaceRepo.FindByID(workspaceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkspaceNotFound
		}
		return fmt.Errorf("failed to find workspace: %w", err)
	}

	members, err := s.requireMembers(workspaceID, userIDs)
	if err != nil {
		return err
	}
	for _, member := range members {
		if member.Role == models.RoleOwner {
			return ErrCannotRemoveOwner
		}
	}

	if err := s.workspaceRepo.RemoveMembers(workspaceID, userIDs); err != nil {
		return fmt.Errorf("failed to remove members: %w", err)
	}
	return nil
}

// requireMembers resolves user IDs to member rows, failing with
// UnknownMembersError when any ID is not a member of the workspace.
func (s *WorkspaceService) requireMembers(workspaceID string, userIDs []string) ([]models.WorkspaceMember, error) {
	members, err := s.workspaceRepo.ListMembersByUserIDs(workspaceID, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to check members: %w", err)
	}

	known := make(map[string]bool, len(members))
	for _, member := range members {
		known[member.UserID] = true
	}

	var missing []string
	for _, userID := range userIDs {
		if !known[userID] {
			missing = append(missing, userID)
		}
	}
	if len(missing) > 0 {
		return nil, &UnknownMembersError{UserIDs: missing}
	}
	return members, nil
}
