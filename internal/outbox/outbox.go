package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/thecodingmontana/zadaci-api/internal/models"
)

// Message kinds. The kind names the business event; the payload carries the
// rendered email.
const (
	KindInviteSent       = "invite.sent"
	KindInviteAccepted   = "invite.accepted"
	KindInviteDeclined   = "invite.declined"
	KindProjectAssigned  = "project.assigned"
	KindProjectCompleted = "project.completed"
	KindTaskAssigned     = "task.assigned"
	KindTaskCompleted    = "task.completed"
)

// EmailPayload is the serialized form of a notification email stored in an
// outbox row.
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// NewMessage builds a pending outbox row for the given event, due for
// immediate delivery.
func NewMessage(kind string, payload EmailPayload) (models.OutboxMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return models.OutboxMessage{}, fmt.Errorf("failed to encode outbox payload: %w", err)
	}

	return models.OutboxMessage{
		ID:            uuid.NewString(),
		Kind:          kind,
		Payload:       string(raw),
		Status:        models.OutboxPending,
		NextAttemptAt: time.Now(),
	}, nil
}

// DecodePayload parses the stored payload of an outbox row.
func DecodePayload(message models.OutboxMessage) (EmailPayload, error) {
	var payload EmailPayload
	if err := json.Unmarshal([]byte(message.Payload), &payload); err != nil {
		return EmailPayload{}, fmt.Errorf("failed to decode outbox payload: %w", err)
	}
	return payload, nil
}
