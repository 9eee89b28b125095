package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/thecodingmontana/zadaci-api/internal/constants"
	"github.com/thecodingmontana/zadaci-api/internal/models"
	"github.com/thecodingmontana/zadaci-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeMailer struct {
	sent []EmailPayload
	err  error
}

func (m *fakeMailer) Send(_ context.Context, payload EmailPayload) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, payload)
	return nil
}

func setupDispatcherTest(t *testing.T) (*gorm.DB, repository.OutboxRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.OutboxMessage{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db, repository.NewOutboxRepository(db)
}

func queueMessage(t *testing.T, db *gorm.DB, payload EmailPayload) models.OutboxMessage {
	t.Helper()

	message, err := NewMessage(KindTaskAssigned, payload)
	require.NoError(t, err)
	require.NoError(t, db.Create(&message).Error)
	return message
}

func TestDispatcher_DeliversDueMessages(t *testing.T) {
	db, repo := setupDispatcherTest(t)
	mailer := &fakeMailer{}
	dispatcher := NewDispatcher(repo, mailer, time.Minute)

	queued := queueMessage(t, db, EmailPayload{
		To:      "mate@example.com",
		Subject: "You were assigned a task",
		HTML:    "<p>hi</p>",
	})

	require.NoError(t, dispatcher.DispatchOnce(context.Background()))

	require.Len(t, mailer.sent, 1)
	require.Equal(t, "mate@example.com", mailer.sent[0].To)

	var stored models.OutboxMessage
	require.NoError(t, db.First(&stored, "id = ?", queued.ID).Error)
	require.Equal(t, models.OutboxSent, stored.Status)
	require.NotNil(t, stored.SentAt)
}

func TestDispatcher_SkipsMessagesNotYetDue(t *testing.T) {
	db, repo := setupDispatcherTest(t)
	mailer := &fakeMailer{}
	dispatcher := NewDispatcher(repo, mailer, time.Minute)

	queued := queueMessage(t, db, EmailPayload{To: "later@example.com"})
	require.NoError(t, db.Model(&queued).
		Update("next_attempt_at", time.Now().Add(time.Hour)).Error)

	require.NoError(t, dispatcher.DispatchOnce(context.Background()))
	require.Empty(t, mailer.sent)

	var stored models.OutboxMessage
	require.NoError(t, db.First(&stored, "id = ?", queued.ID).Error)
	require.Equal(t, models.OutboxPending, stored.Status)
}

func TestDispatcher_RetriesWithBackoff(t *testing.T) {
	db, repo := setupDispatcherTest(t)
	mailer := &fakeMailer{err: errors.New("smtp down")}
	dispatcher := NewDispatcher(repo, mailer, time.Minute)

	queued := queueMessage(t, db, EmailPayload{To: "retry@example.com"})

	before := time.Now()
	require.NoError(t, dispatcher.DispatchOnce(context.Background()))

	var stored models.OutboxMessage
	require.NoError(t, db.First(&stored, "id = ?", queued.ID).Error)
	require.Equal(t, models.OutboxPending, stored.Status)
	require.Equal(t, 1, stored.Attempts)
	require.NotNil(t, stored.LastError)
	require.Equal(t, "smtp down", *stored.LastError)
	// First retry waits a minute
	require.True(t, stored.NextAttemptAt.After(before.Add(50*time.Second)))

	// Not due again yet, so nothing is attempted
	require.NoError(t, dispatcher.DispatchOnce(context.Background()))
	require.NoError(t, db.First(&stored, "id = ?", queued.ID).Error)
	require.Equal(t, 1, stored.Attempts)
}

func TestDispatcher_ParksAfterMaxAttempts(t *testing.T) {
	db, repo := setupDispatcherTest(t)
	mailer := &fakeMailer{err: errors.New("bounced")}
	dispatcher := NewDispatcher(repo, mailer, time.Minute)

	queued := queueMessage(t, db, EmailPayload{To: "dead@example.com"})
	require.NoError(t, db.Model(&queued).
		Update("attempts", constants.OutboxMaxAttempts-1).Error)

	require.NoError(t, dispatcher.DispatchOnce(context.Background()))

	var stored models.OutboxMessage
	require.NoError(t, db.First(&stored, "id = ?", queued.ID).Error)
	require.Equal(t, models.OutboxFailed, stored.Status)
	require.Equal(t, constants.OutboxMaxAttempts, stored.Attempts)

	// Terminal messages are never claimed again
	require.NoError(t, dispatcher.DispatchOnce(context.Background()))
	require.Empty(t, mailer.sent)
}

func TestDispatcher_ParksUndecodablePayload(t *testing.T) {
	db, repo := setupDispatcherTest(t)
	mailer := &fakeMailer{}
	dispatcher := NewDispatcher(repo, mailer, time.Minute)

	broken := models.OutboxMessage{
		ID:            "broken",
		Kind:          KindInviteSent,
		Payload:       "{not json",
		Status:        models.OutboxPending,
		NextAttemptAt: time.Now(),
	}
	require.NoError(t, db.Create(&broken).Error)

	require.NoError(t, dispatcher.DispatchOnce(context.Background()))
	require.Empty(t, mailer.sent)

	var stored models.OutboxMessage
	require.NoError(t, db.First(&stored, "id = ?", "broken").Error)
	require.Equal(t, models.OutboxFailed, stored.Status)
	require.NotNil(t, stored.LastError)
}

func TestBackoffDoubles(t *testing.T) {
	require.Equal(t, time.Minute, backoff(1))
	require.Equal(t, 2*time.Minute, backoff(2))
	require.Equal(t, 8*time.Minute, backoff(4))
}
