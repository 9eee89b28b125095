package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task indexes for filtering and rollups
		{"tasks", "idx_tasks_project_status", "project_id, status"},
		{"tasks", "idx_tasks_due_date", "due_date"},

		// Activity indexes for the productivity stats window scan
		{"task_activities", "idx_task_activities_changed_at", "changed_at"},
		{"task_activities", "idx_task_activities_task_id", "task_id"},

		// Membership lookups on every guarded request
		{"workspace_members", "idx_workspace_members_user_id", "user_id"},
		{"workspace_members", "idx_workspace_members_workspace_id", "workspace_id"},

		// Invite lookups by workspace
		{"workspace_invites", "idx_workspace_invites_workspace_id", "workspace_id"},

		// Outbox claim scan
		{"outbox_messages", "idx_outbox_status_next", "status, next_attempt_at"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
