package models

import "time"

type OutboxStatus string

const (
	OutboxPending OutboxStatus = "PENDING"
	OutboxSent    OutboxStatus = "SENT"
	OutboxFailed  OutboxStatus = "FAILED"
)

// OutboxMessage is a notification email persisted in the same transaction
// as the mutation that caused it. A background dispatcher delivers pending
// messages and retries with backoff; delivery never blocks a request.
type OutboxMessage struct {
	ID            string       `gorm:"type:varchar(36);primarykey" json:"id"`
	Kind          string       `gorm:"type:varchar(50);not null" json:"kind"`
	Payload       string       `gorm:"type:text;not null" json:"payload"`
	Status        OutboxStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Attempts      int          `gorm:"not null;default:0" json:"attempts"`
	NextAttemptAt time.Time    `gorm:"not null;index" json:"next_attempt_at"`
	LastError     *string      `gorm:"type:text" json:"last_error,omitempty"`
	SentAt        *time.Time   `json:"sent_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
