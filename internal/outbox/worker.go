package outbox

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// Worker drains the queue on a fixed schedule so queued confirmations are
// reconciled against storage without anyone asking.
type Worker struct {
	queue *Queue
	apply func(ctx context.Context, bookingID uint, party string) error
	cron  *cron.Cron
}

func NewWorker(queue *Queue, apply func(ctx context.Context, bookingID uint, party string) error) *Worker {
	return &Worker{
		queue: queue,
		apply: apply,
		cron:  cron.New(),
	}
}

// Start drains once immediately (intents may have survived a restart) and
// then every 30 seconds.
func (w *Worker) Start() {
	w.queue.Drain(context.Background(), w.apply)

	if _, err := w.cron.AddFunc("@every 30s", func() {
		w.queue.Drain(context.Background(), w.apply)
	}); err != nil {
		log.Printf("[outbox] failed to schedule drain: %v", err)
		return
	}
	w.cron.Start()
	log.Println("[outbox] retry worker started")
}

func (w *Worker) Stop() {
	w.cron.Stop()
}
