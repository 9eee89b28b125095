package repository

import (
	"github.com/thecodingmontana/zadaci-api/internal/database"
	"github.com/thecodingmontana/zadaci-api/internal/models"
	"github.com/thecodingmontana/zadaci-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create inserts a task with subtasks, assignees and notification events in
// one transaction
func (r *GormTaskRepository) Create(task *models.Task, subtasks []models.Subtask, assignees []models.TaskAssignee, events []models.OutboxMessage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		if len(subtasks) > 0 {
			if err := tx.Create(&subtasks).Error; err != nil {
				return err
			}
		}
		if len(assignees) > 0 {
			if err := tx.Create(&assignees).Error; err != nil {
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

// FindByID finds a task scoped to its project with optional preloading
func (r *GormTaskRepository) FindByID(projectID, taskID string, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	err := query.Where("id = ? AND project_id = ?", taskID, projectID).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Update saves the task and reconciles subtasks and assignees against the
// given sets. Subtasks keep their IDs across edits; rows absent from the
// incoming set are removed, the rest are upserted in place. The optional
// activity row and events commit in the same transaction.
func (r *GormTaskRepository) Update(task *models.Task, subtasks []models.Subtask, assignees []models.TaskAssignee, activity *models.TaskActivity, events []models.OutboxMessage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}

		if err := mergeSubtasks(tx, task.ID, subtasks); err != nil {
			return err
		}
		if err := mergeAssignees(tx, task.ID, assignees); err != nil {
			return err
		}

		if activity != nil {
			if err := tx.Create(activity).Error; err != nil {
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

func mergeSubtasks(tx *gorm.DB, taskID string, subtasks []models.Subtask) error {
	keep := make([]string, 0, len(subtasks))
	for _, s := range subtasks {
		keep = append(keep, s.ID)
	}

	removal := tx.Where("task_id = ?", taskID)
	if len(keep) > 0 {
		removal = removal.Where("id NOT IN ?", keep)
	}
	if err := removal.Delete(&models.Subtask{}).Error; err != nil {
		return err
	}

	if len(subtasks) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "is_completed", "updated_at"}),
	}).Create(&subtasks).Error
}

func mergeAssignees(tx *gorm.DB, taskID string, assignees []models.TaskAssignee) error {
	keep := make([]string, 0, len(assignees))
	for _, a := range assignees {
		keep = append(keep, a.MemberID)
	}

	removal := tx.Where("task_id = ?", taskID)
	if len(keep) > 0 {
		removal = removal.Where("member_id NOT IN ?", keep)
	}
	if err := removal.Delete(&models.TaskAssignee{}).Error; err != nil {
		return err
	}

	if len(assignees) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "task_id"}, {Name: "member_id"}},
		DoNothing: true,
	}).Create(&assignees).Error
}

// UpdateStatus updates only the task status with its optional activity row
func (r *GormTaskRepository) UpdateStatus(task *models.Task, status models.Status, activity *models.TaskActivity) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Task{}).
			Where("id = ?", task.ID).
			Update("status", status).Error
		if err != nil {
			return err
		}

		if activity != nil {
			return tx.Create(activity).Error
		}
		return nil
	})
}

// Delete removes a task and its dependent rows in a transaction
func (r *GormTaskRepository) Delete(projectID, taskID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskActivity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignee{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&models.Subtask{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND project_id = ?", taskID, projectID).
			Delete(&models.Task{}).Error
	})
}

// ListByProject lists a page of a project's tasks with subtasks and
// assignees, plus the total count
func (r *GormTaskRepository) ListByProject(projectID string, params utils.PaginationParams) ([]models.Task, int64, error) {
	var total int64
	err := r.db.Model(&models.Task{}).
		Where("project_id = ?", projectID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	err = r.db.Preload("Subtasks").
		Preload("Assignees").
		Preload("Assignees.Member").
		Preload("Assignees.Member.User").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Scopes(database.Paginate(params)).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}
