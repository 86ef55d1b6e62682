package outbox

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/wedora/wedding-marketplace/booking-service/internal/models"
	"github.com/wedora/wedding-marketplace/booking-service/internal/repository"
	"github.com/wedora/wedding-marketplace/booking-service/internal/service"
)

const (
	drainBatchSize = 50
	baseBackoff    = time.Minute
	maxBackoff     = time.Hour
)

// Queue holds completion confirmations that could not be applied when they
// were requested. Intents are persisted to the completion_intents table; if
// that write fails too (storage fully down), the intent stays in memory and
// is flushed on the next drain. Nothing is fire-and-forget.
type Queue struct {
	repo repository.OutboxRepository

	mu  sync.Mutex
	mem []models.CompletionIntent
}

func NewQueue(repo repository.OutboxRepository) *Queue {
	return &Queue{repo: repo}
}

// Enqueue records a confirmation intent for later retry. It never returns an
// error: an intent that cannot reach storage is kept in memory.
func (q *Queue) Enqueue(ctx context.Context, bookingID uint, party string, cause error) {
	intent := models.CompletionIntent{
		BookingID:     bookingID,
		Party:         party,
		Attempts:      1,
		NextAttemptAt: time.Now().Add(baseBackoff),
	}
	if cause != nil {
		intent.LastError = cause.Error()
	}

	if err := q.repo.Save(ctx, &intent); err != nil {
		log.Printf("[outbox] intent for booking %d not persisted, holding in memory: %v", bookingID, err)
		q.mu.Lock()
		q.mem = append(q.mem, intent)
		q.mu.Unlock()
		return
	}

	log.Printf("[outbox] queued %s confirmation for booking %d", party, bookingID)
}

// HasPending reports whether a booking has unsynced confirmations.
func (q *Queue) HasPending(ctx context.Context, bookingID uint) bool {
	q.mu.Lock()
	for i := range q.mem {
		if q.mem[i].BookingID == bookingID {
			q.mu.Unlock()
			return true
		}
	}
	q.mu.Unlock()

	exists, err := q.repo.ExistsForBooking(ctx, bookingID)
	if err != nil {
		// Storage unreachable: report pending, never pretend synced.
		return true
	}
	return exists
}

// Drain flushes in-memory intents into storage and retries everything due.
// apply is the authoritative write; intents that succeed are deleted, intents
// whose booking is no longer eligible are dropped, the rest are rescheduled
// with exponential backoff.
func (q *Queue) Drain(ctx context.Context, apply func(ctx context.Context, bookingID uint, party string) error) {
	q.flushMemory(ctx)

	intents, err := q.repo.FindDue(ctx, time.Now(), drainBatchSize)
	if err != nil {
		log.Printf("[outbox] drain skipped, cannot load intents: %v", err)
		return
	}

	for i := range intents {
		intent := &intents[i]
		err := apply(ctx, intent.BookingID, intent.Party)
		switch {
		case err == nil:
			if err := q.repo.Delete(ctx, intent.ID); err != nil {
				log.Printf("[outbox] applied intent %d but could not delete it: %v", intent.ID, err)
			} else {
				log.Printf("[outbox] synced %s confirmation for booking %d", intent.Party, intent.BookingID)
			}
		case errors.Is(err, service.ErrNotEligibleForCompletion):
			// The booking moved to a state where the confirmation no longer
			// applies (e.g. cancelled). Retrying forever would never succeed.
			log.Printf("[outbox] dropping intent %d: booking %d no longer eligible", intent.ID, intent.BookingID)
			_ = q.repo.Delete(ctx, intent.ID)
		default:
			attempts := intent.Attempts + 1
			next := time.Now().Add(backoff(attempts))
			if err := q.repo.Reschedule(ctx, intent.ID, attempts, next, err.Error()); err != nil {
				log.Printf("[outbox] could not reschedule intent %d: %v", intent.ID, err)
			}
		}
	}
}

func (q *Queue) flushMemory(ctx context.Context) {
	q.mu.Lock()
	pending := q.mem
	q.mem = nil
	q.mu.Unlock()

	for i := range pending {
		intent := pending[i]
		if err := q.repo.Save(ctx, &intent); err != nil {
			q.mu.Lock()
			q.mem = append(q.mem, intent)
			q.mu.Unlock()
		}
	}
}

func backoff(attempts int) time.Duration {
	d := baseBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
