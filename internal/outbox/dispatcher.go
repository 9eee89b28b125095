package outbox

import (
	"context"
	"log"
	"time"

	"github.com/thecodingmontana/zadaci-api/internal/constants"
	"github.com/thecodingmontana/zadaci-api/internal/repository"
)

// Dispatcher drains the outbox in the background. Each tick it claims due
// pending messages, hands them to the mailer and records the outcome.
// Failures retry with exponential backoff until the attempt cap is hit.
type Dispatcher struct {
	repo     repository.OutboxRepository
	mailer   Mailer
	interval time.Duration
}

// NewDispatcher creates a Dispatcher polling at the given interval
func NewDispatcher(repo repository.OutboxRepository, mailer Mailer, interval time.Duration) *Dispatcher {
	return &Dispatcher{
		repo:     repo,
		mailer:   mailer,
		interval: interval,
	}
}

// Run polls until the context is cancelled
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.DispatchOnce(ctx); err != nil {
				log.Printf("outbox dispatch failed: %v", err)
			}
		}
	}
}

// DispatchOnce processes one batch of due messages
func (d *Dispatcher) DispatchOnce(ctx context.Context) error {
	messages, err := d.repo.ClaimDue(time.Now(), constants.OutboxBatchSize)
	if err != nil {
		return err
	}

	for _, message := range messages {
		payload, err := DecodePayload(message)
		if err != nil {
			// An undecodable payload will never deliver, park it immediately
			if markErr := d.repo.MarkFailed(message.ID, message.Attempts+1, time.Now(), err.Error(), true); markErr != nil {
				return markErr
			}
			continue
		}

		if err := d.mailer.Send(ctx, payload); err != nil {
			attempts := message.Attempts + 1
			terminal := attempts >= constants.OutboxMaxAttempts
			next := time.Now().Add(backoff(attempts))
			if markErr := d.repo.MarkFailed(message.ID, attempts, next, err.Error(), terminal); markErr != nil {
				return markErr
			}
			log.Printf("outbox message %s (%s) attempt %d failed: %v", message.ID, message.Kind, attempts, err)
			continue
		}

		if err := d.repo.MarkSent(message.ID, time.Now()); err != nil {
			return err
		}
	}

	return nil
}

// backoff returns the delay before the next attempt: 1m, 2m, 4m, 8m, ...
func backoff(attempts int) time.Duration {
	delay := time.Minute
	for i := 1; i < attempts; i++ {
		delay *= 2
	}
	return delay
}
