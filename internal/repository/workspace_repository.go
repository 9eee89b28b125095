package repository

import (
	"github.com/thecodingmontana/zadaci-api/internal/models"
	"gorm.io/gorm"
)

// GormWorkspaceRepository is a GORM implementation of WorkspaceRepository
type GormWorkspaceRepository struct {
	db *gorm.DB
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &GormWorkspaceRepository{db: db}
}

// Create creates a workspace and its owning member in one transaction
func (r *GormWorkspaceRepository) Create(workspace *models.Workspace, owner *models.WorkspaceMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(workspace).Error; err != nil {
			return err
		}
		return tx.Create(owner).Error
	})
}

// FindByID finds a workspace by ID
func (r *GormWorkspaceRepository) FindByID(id string) (*models.Workspace, error) {
	var workspace models.Workspace
	if err := r.db.Where("id = ?", id).First(&workspace).Error; err != nil {
		return nil, err
	}
	return &workspace, nil
}

// FindByInviteCode finds a workspace by invite code
func (r *GormWorkspaceRepository) FindByInviteCode(code string, withOwner bool) (*models.Workspace, error) {
	var workspace models.Workspace
	query := r.db
	if withOwner {
		query = query.Preload("Owner")
	}
	if err := query.Where("invite_code = ?", code).First(&workspace).Error; err != nil {
		return nil, err
	}
	return &workspace, nil
}

// Update updates a workspace
func (r *GormWorkspaceRepository) Update(workspace *models.Workspace) error {
	return r.db.Save(workspace).Error
}

// Delete deletes a workspace and all related data in a transaction
func (r *GormWorkspaceRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var projectIDs []string
		if err := tx.Model(&models.Project{}).
			Where("workspace_id = ?", id).
			Pluck("id", &projectIDs).Error; err != nil {
			return err
		}

		if len(projectIDs) > 0 {
			var taskIDs []string
			if err := tx.Model(&models.Task{}).
				Where("project_id IN ?", projectIDs).
				Pluck("id", &taskIDs).Error; err != nil {
				return err
			}

			if len(taskIDs) > 0 {
				if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskActivity{}).Error; err != nil {
					return err
				}
				if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskAssignee{}).Error; err != nil {
					return err
				}
				if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.Subtask{}).Error; err != nil {
					return err
				}
				if err := tx.Where("project_id IN ?", projectIDs).Delete(&models.Task{}).Error; err != nil {
					return err
				}
			}

			if err := tx.Where("project_id IN ?", projectIDs).Delete(&models.ProjectMember{}).Error; err != nil {
				return err
			}
			if err := tx.Where("workspace_id = ?", id).Delete(&models.Project{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("workspace_id = ?", id).Delete(&models.WorkspaceInvite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&models.WorkspaceMember{}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).Delete(&models.Workspace{}).Error
	})
}

// ListForUser lists all memberships of a user with workspaces preloaded
func (r *GormWorkspaceRepository) ListForUser(userID string) ([]models.WorkspaceMember, error) {
	var memberships []models.WorkspaceMember
	if err := r.db.Preload("Workspace").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// FindMember finds a specific workspace member
func (r *GormWorkspaceRepository) FindMember(workspaceID, userID string) (*models.WorkspaceMember, error) {
	var member models.WorkspaceMember
	if err := r.db.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a workspace
func (r *GormWorkspaceRepository) ListMembers(workspaceID string) ([]models.WorkspaceMember, error) {
	var members []models.WorkspaceMember
	if err := r.db.Preload("User").
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListMembersByIDs lists workspace members matching the given member IDs
func (r *GormWorkspaceRepository) ListMembersByIDs(workspaceID string, memberIDs []string) ([]models.WorkspaceMember, error) {
	if len(memberIDs) == 0 {
		return []models.WorkspaceMember{}, nil
	}

	var members []models.WorkspaceMember
	if err := r.db.Preload("User").
		Where("workspace_id = ? AND id IN ?", workspaceID, memberIDs).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListMembersByUserIDs lists workspace members matching the given user IDs
func (r *GormWorkspaceRepository) ListMembersByUserIDs(workspaceID string, userIDs []string) ([]models.WorkspaceMember, error) {
	if len(userIDs) == 0 {
		return []models.WorkspaceMember{}, nil
	}

	var members []models.WorkspaceMember
	if err := r.db.Preload("User").
		Where("workspace_id = ? AND user_id IN ?", workspaceID, userIDs).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// UpdateMemberRoles applies a userID -> role assignment in one transaction
func (r *GormWorkspaceRepository) UpdateMemberRoles(workspaceID string, roles map[string]models.Role) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for userID, role := range roles {
			err := tx.Model(&models.WorkspaceMember{}).
				Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
				Update("role", role).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveMembers removes the member rows for the given user IDs
func (r *GormWorkspaceRepository) RemoveMembers(workspaceID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	return r.db.Where("workspace_id = ? AND user_id IN ?", workspaceID, userIDs).
		Delete(&models.WorkspaceMember{}).Error
}

// MemberEmailExists reports whether the email already belongs to a member
func (r *GormWorkspaceRepository) MemberEmailExists(workspaceID, email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.WorkspaceMember{}).
		Joins("JOIN users ON users.id = workspace_members.user_id").
		Where("workspace_members.workspace_id = ? AND users.email = ?", workspaceID, email).
		Count(&count).Error
	return count > 0, err
}
