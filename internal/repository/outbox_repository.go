package repository

import (
	"time"

	"github.com/thecodingmontana/zadaci-api/internal/models"
	"gorm.io/gorm"
)

// GormOutboxRepository is a GORM implementation of OutboxRepository
type GormOutboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository creates a new OutboxRepository
func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &GormOutboxRepository{db: db}
}

// ClaimDue returns pending messages whose next attempt is due, oldest first
func (r *GormOutboxRepository) ClaimDue(now time.Time, limit int) ([]models.OutboxMessage, error) {
	var messages []models.OutboxMessage
	err := r.db.Where("status = ? AND next_attempt_at <= ?", models.OutboxPending, now).
		Order("next_attempt_at ASC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkSent finalizes a delivered message
func (r *GormOutboxRepository) MarkSent(id string, at time.Time) error {
	return r.db.Model(&models.OutboxMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  models.OutboxSent,
			"sent_at": at,
		}).Error
}

// MarkFailed records a delivery failure; terminal failures stop retrying
func (r *GormOutboxRepository) MarkFailed(id string, attempts int, nextAttempt time.Time, lastError string, terminal bool) error {
	status := models.OutboxPending
	if terminal {
		status = models.OutboxFailed
	}
	return r.db.Model(&models.OutboxMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          status,
			"attempts":        attempts,
			"next_attempt_at": nextAttempt,
			"last_error":      lastError,
		}).Error
}
