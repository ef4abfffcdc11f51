// README: Outbox tasks are notifications enqueued after a reservation write commits.
package outbox

import (
	"context"
	"errors"
	"time"

	"transfers/internal/types"
)

type Audience string

const (
	AudienceClient Audience = "client"
	AudienceAdmin  Audience = "admin"
)

var ErrQueueFull = errors.New("outbox queue is full")

// Task is one pending notification. It carries references only; the handler
// reloads the reservation when it runs.
type Task struct {
	ID            string    `json:"id"`
	ReservationID types.ID  `json:"reservation_id"`
	Audience      Audience  `json:"audience"`
	Template      string    `json:"template"`
	AttachPDF     bool      `json:"attach_pdf"`
	CreatedAt     time.Time `json:"created_at"`
}

type Handler interface {
	Handle(ctx context.Context, t Task) error
}

type HandlerFunc func(ctx context.Context, t Task) error

func (f HandlerFunc) Handle(ctx context.Context, t Task) error {
	return f(ctx, t)
}

// Queue accepts tasks from request paths and feeds them to a single worker.
type Queue interface {
	Enqueue(ctx context.Context, t Task) error
	Run(ctx context.Context, h Handler) error
}
