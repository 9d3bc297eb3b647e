package amqp

import (
	"context"
	"time"

	"smartspend/internal/expense"
	"smartspend/internal/log"
)

// EventPublisher is satisfied by Client.
type EventPublisher interface {
	Publish(ctx context.Context, ev ExpenseEvent) error
}

// Publisher forwards store events to the broker off the mutation path.
// Handle never blocks; events are dropped when the buffer is full.
type Publisher struct {
	pub    EventPublisher
	events chan ExpenseEvent
	now    func() time.Time
	logger *log.Logger
}

func NewPublisher(pub EventPublisher, buffer int, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.Discard()
	}
	if buffer < 1 {
		buffer = 1
	}
	return &Publisher{
		pub:    pub,
		events: make(chan ExpenseEvent, buffer),
		now:    time.Now,
		logger: logger.WithComponent(log.ComponentAMQP),
	}
}

// Handle is registered with expense.Store.Subscribe.
func (p *Publisher) Handle(ev expense.Event) {
	msg := NewExpenseEvent(ev, p.now())
	select {
	case p.events <- msg:
	default:
		p.logger.Warn("Event buffer full, dropping expense event",
			"kind", msg.Kind, log.FieldVersion, msg.Version)
	}
}

// Run publishes buffered events until ctx is cancelled. Failures are logged.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-p.events:
			if err := p.pub.Publish(ctx, msg); err != nil {
				p.logger.ErrorContext(ctx, "Failed to publish expense event",
					log.NewFields().WithError(err).WithOperation(log.OpPublish).ToSlice()...)
			}
		}
	}
}
