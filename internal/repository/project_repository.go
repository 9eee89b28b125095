package repository

import (
	"github.com/thecodingmontana/zadaci-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create inserts a project, its member rows and notification events in one
// transaction
func (r *GormProjectRepository) Create(project *models.Project, members []models.ProjectMember, events []models.OutboxMessage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		if len(members) > 0 {
			if err := tx.Create(&members).Error; err != nil {
				return err
			}
		}
		if len(events) > 0 {
			if err := tx.Create(&events).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID finds a project scoped to its workspace with optional preloading
func (r *GormProjectRepository) FindByID(workspaceID, projectID string, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	err := query.Where("id = ? AND workspace_id = ?", projectID, workspaceID).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Update saves the project and reconciles its member set against memberIDs.
// Staffing rows not in memberIDs are removed, new ones are inserted and rows
// that survive keep their original created_at.
func (r *GormProjectRepository) Update(project *models.Project, memberIDs []string, events []models.OutboxMessage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(project).Error; err != nil {
			return err
		}

		removal := tx.Where("project_id = ?", project.ID)
		if len(memberIDs) > 0 {
			removal = removal.Where("member_id NOT IN ?", memberIDs)
		}
		if err := removal.Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		if len(memberIDs) > 0 {
			rows := make([]models.ProjectMember, len(memberIDs))
			for i, memberID := range memberIDs {
				rows[i] = models.ProjectMember{
					ID:        newID(),
					ProjectID: project.ID,
					MemberID:  memberID,
				}
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "project_id"}, {Name: "member_id"}},
				DoNothing: true,
			}).Create(&rows).Error
			if err != nil {
				return err
			}
		}

		if len(events) > 0 {
			if err := tx.Create(&events).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateStatus updates only the project status
func (r *GormProjectRepository) UpdateStatus(projectID string, status models.Status) error {
	return r.db.Model(&models.Project{}).
		Where("id = ?", projectID).
		Update("status", status).Error
}

// Delete removes a project and all dependent task rows in a transaction
func (r *GormProjectRepository) Delete(projectID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var taskIDs []string
		if err := tx.Model(&models.Task{}).
			Where("project_id = ?", projectID).
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
			if err := tx.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", projectID).Delete(&models.Project{}).Error
	})
}

// ListByWorkspace lists all projects of a workspace, newest first
func (r *GormProjectRepository) ListByWorkspace(workspaceID string, withTasks bool) ([]models.Project, error) {
	var projects []models.Project
	query := r.db.Where("workspace_id = ?", workspaceID).Order("created_at DESC")
	if withTasks {
		query = query.Preload("Tasks").Preload("Tasks.Subtasks")
	}
	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// ListForMember lists projects the member is staffed on, tasks preloaded
func (r *GormProjectRepository) ListForMember(workspaceID, memberID string) ([]models.Project, error) {
	var projects []models.Project
	staffingSubQuery := r.db.Model(&models.ProjectMember{}).
		Select("1").
		Where("project_members.project_id = projects.id").
		Where("project_members.member_id = ?", memberID)

	err := r.db.Preload("Tasks").Preload("Tasks.Assignees").
		Where("workspace_id = ?", workspaceID).
		Where("EXISTS (?)", staffingSubQuery).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// ListMemberIDs returns which of the given workspace-member IDs are staffed
// on the project
func (r *GormProjectRepository) ListMemberIDs(projectID string, memberIDs []string) ([]string, error) {
	if len(memberIDs) == 0 {
		return []string{}, nil
	}

	var staffed []string
	err := r.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND member_id IN ?", projectID, memberIDs).
		Pluck("member_id", &staffed).Error
	if err != nil {
		return nil, err
	}
	return staffed, nil
}

// ListMembers lists project staffing with member users preloaded
func (r *GormProjectRepository) ListMembers(projectID string) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	if err := r.db.Preload("Member").Preload("Member.User").
		Where("project_id = ?", projectID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
