package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	EventSessionBooked    = "session.booked"
	EventSessionStarted   = "session.started"
	EventSessionCompleted = "session.completed"
	EventSessionCancelled = "session.cancelled"
	EventSessionNoShow    = "session.no_show"
	EventSessionReminder  = "session.reminder"
	EventReviewSubmitted  = "review.submitted"
)

// Event is one outbound notification.
type Event struct {
	Type       string            `json:"type"`
	Payload    map[string]string `json:"payload"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Port delivers events to the outside world. Delivery is best-effort; the
// scheduling core never depends on it succeeding.
type Port interface {
	Notify(ctx context.Context, event Event) error
}

// Enqueuer is the write side the services see.
type Enqueuer interface {
	Enqueue(event Event)
}

// Dispatcher consumes enqueued events on a background goroutine and hands
// them to a Port. Enqueue never blocks the caller: if the buffer is full
// the event is dropped and logged.
type Dispatcher struct {
	events   chan Event
	port     Port
	logger   *zap.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewDispatcher(port Port, logger *zap.Logger, bufferSize int) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Dispatcher{
		events:   make(chan Event, bufferSize),
		port:     port,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start launches the delivery goroutine.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop drains pending events and waits for the delivery goroutine to exit.
func (d *Dispatcher) Stop() {
	close(d.stopChan)
	d.wg.Wait()
}

// Enqueue submits an event for async delivery without blocking.
func (d *Dispatcher) Enqueue(event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	select {
	case d.events <- event:
	default:
		d.logger.Warn("Notification buffer full, dropping event",
			zap.String("event_type", event.Type))
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.events:
			d.deliver(event)
		case <-d.stopChan:
			// Drain what is already queued, then exit.
			for {
				select {
				case event := <-d.events:
					d.deliver(event)
				default:
					d.logger.Info("Notification dispatcher stopped")
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.port.Notify(ctx, event); err != nil {
		// Never propagate: a booking that succeeded must not look failed
		// because a notification could not be delivered.
		d.logger.Warn("Failed to deliver notification",
			zap.String("event_type", event.Type),
			zap.Error(err))
	}
}

// LogPort is the default Port: it records the event and leaves real
// delivery (email/SMS/push) to the notification microservice.
type LogPort struct {
	Logger *zap.Logger
}

func (p *LogPort) Notify(_ context.Context, event Event) error {
	p.Logger.Info("Notification event",
		zap.String("event_type", event.Type),
		zap.Any("payload", event.Payload),
	)
	return nil
}
