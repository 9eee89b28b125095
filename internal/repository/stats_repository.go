package repository

import (
	"time"

	"github.com/thecodingmontana/zadaci-api/internal/models"
	"gorm.io/gorm"
)

// GormStatsRepository is a GORM implementation of StatsRepository
type GormStatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &GormStatsRepository{db: db}
}

// ActiveProjectIDs returns IDs of non-completed projects in a workspace
func (r *GormStatsRepository) ActiveProjectIDs(workspaceID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.Project{}).
		Where("workspace_id = ? AND status <> ?", workspaceID, models.StatusCompleted).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CountTasks counts tasks in the given projects, optionally by status
func (r *GormStatsRepository) CountTasks(projectIDs []string, status *models.Status) (int64, error) {
	if len(projectIDs) == 0 {
		return 0, nil
	}

	query := r.db.Model(&models.Task{}).Where("project_id IN ?", projectIDs)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

// ListActivityBetween returns activity rows of a workspace in [from, to)
func (r *GormStatsRepository) ListActivityBetween(workspaceID string, from, to time.Time) ([]models.TaskActivity, error) {
	var activities []models.TaskActivity
	err := r.db.
		Joins("JOIN tasks ON tasks.id = task_activities.task_id").
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.workspace_id = ?", workspaceID).
		Where("task_activities.changed_at >= ? AND task_activities.changed_at < ?", from, to).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}
