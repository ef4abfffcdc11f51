package outbox

import (
	"context"

	"transfers/internal/logger"
)

// MemoryQueue is a process-local queue. Tasks still buffered at shutdown are lost.
type MemoryQueue struct {
	tasks chan Task
	log   logger.Logger
}

func NewMemoryQueue(buffer int, log logger.Logger) *MemoryQueue {
	if buffer <= 0 {
		buffer = 1
	}
	return &MemoryQueue{tasks: make(chan Task, buffer), log: log}
}

// Enqueue never blocks the caller; a full buffer is reported as ErrQueueFull.
func (q *MemoryQueue) Enqueue(_ context.Context, t Task) error {
	select {
	case q.tasks <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Run(ctx context.Context, h Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-q.tasks:
			handle(ctx, q.log, h, t)
		}
	}
}

// handle runs one task. Failures end here: they are logged and never retried.
func handle(ctx context.Context, log logger.Logger, h Handler, t Task) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("outbox task panicked",
				logger.String("task_id", t.ID),
				logger.String("reservation_id", t.ReservationID.String()),
				logger.Any("panic", r),
			)
		}
	}()
	if err := h.Handle(ctx, t); err != nil {
		log.Error("outbox task failed",
			logger.String("task_id", t.ID),
			logger.String("reservation_id", t.ReservationID.String()),
			logger.String("template", t.Template),
			logger.String("audience", string(t.Audience)),
			logger.Error(err),
		)
	}
}
