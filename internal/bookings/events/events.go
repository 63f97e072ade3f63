// Package events publishes booking lifecycle changes to Kafka.
package events

import (
	"context"
	"sync"
	"time"

	"officehub/pkg/kafka"
	"officehub/pkg/logger"
	"officehub/pkg/middleware"
	"officehub/pkg/model"
)

const (
	TypeBookingCreated   = "booking.created"
	TypeBookingCancelled = "booking.cancelled"
	TypeBookingsCleared  = "bookings.cleared"

	Source        = "officehub"
	SchemaVersion = "1"

	// KeyAllRooms is the message key of a clear that spans every room.
	KeyAllRooms = "all"

	DefaultPublishTimeout = 10 * time.Second
	DefaultQueueSize      = 1024
)

// Publisher is notified after a booking change has been committed.
// Implementations must not fail the caller; delivery errors are logged.
type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking)
	BookingCancelled(ctx context.Context, booking *model.Booking)
	BookingsCleared(ctx context.Context, roomID string, count int64)
}

// Payload is the JSON value of every booking event.
type Payload struct {
	EventType  string         `json:"event_type"`
	RoomID     string         `json:"room_id,omitempty"`
	Booking    *model.Booking `json:"booking,omitempty"`
	Count      *int64         `json:"count,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type NoopPublisher struct{}

func (NoopPublisher) BookingCreated(context.Context, *model.Booking)   {}
func (NoopPublisher) BookingCancelled(context.Context, *model.Booking) {}
func (NoopPublisher) BookingsCleared(context.Context, string, int64)   {}

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaPublisher hands events to a single background sender so a slow
// broker never holds up the request that committed the change. Events are
// sent in the order they were published; when the queue is full they are
// dropped and logged.
type KafkaPublisher struct {
	producer MessagePublisher
	log      *logger.Logger
	now      func() time.Time
	timeout  time.Duration

	queue  chan outgoing
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

type outgoing struct {
	ctx context.Context
	msg kafka.Message
}

type PublisherOption func(*KafkaPublisher)

// WithPublishTimeout bounds each send to the broker.
func WithPublishTimeout(d time.Duration) PublisherOption {
	return func(p *KafkaPublisher) { p.timeout = d }
}

func WithQueueSize(n int) PublisherOption {
	return func(p *KafkaPublisher) {
		if n > 0 {
			p.queue = make(chan outgoing, n)
		}
	}
}

func NewKafkaPublisher(producer MessagePublisher, log *logger.Logger, opts ...PublisherOption) *KafkaPublisher {
	p := &KafkaPublisher{
		producer: producer,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		timeout:  DefaultPublishTimeout,
		queue:    make(chan outgoing, DefaultQueueSize),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.run()
	return p
}

// Close stops accepting events and waits until the queued ones were sent
// or ctx ends.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *KafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, booking.RoomID, Payload{
		EventType: TypeBookingCreated,
		RoomID:    booking.RoomID,
		Booking:   booking,
	})
}

func (p *KafkaPublisher) BookingCancelled(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, booking.RoomID, Payload{
		EventType: TypeBookingCancelled,
		RoomID:    booking.RoomID,
		Booking:   booking,
	})
}

// BookingsCleared reports a room clear, or a clear of every room when roomID is empty.
func (p *KafkaPublisher) BookingsCleared(ctx context.Context, roomID string, count int64) {
	key := roomID
	if key == "" {
		key = KeyAllRooms
	}
	p.publish(ctx, key, Payload{
		EventType: TypeBookingsCleared,
		RoomID:    roomID,
		Count:     &count,
	})
}

func (p *KafkaPublisher) publish(ctx context.Context, key string, payload Payload) {
	payload.OccurredAt = p.now()

	msg, err := kafka.NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(payload.EventType).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithTimestamp(payload.OccurredAt).
		Build()
	if err != nil {
		p.log.Error("Failed to build booking event", "event_type", payload.EventType, "error", err)
		return
	}

	// The booking is already committed, so the event must not be lost to a cancelled request.
	out := outgoing{ctx: context.WithoutCancel(ctx), msg: msg}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.log.Error("Booking event dropped, publisher closed", "event_type", payload.EventType, "key", key)
		return
	}
	select {
	case p.queue <- out:
	default:
		p.log.Error("Booking event dropped, publish queue full",
			"event_type", payload.EventType,
			"key", key,
			"event_id", msg.GetEventID(),
		)
	}
}

func (p *KafkaPublisher) run() {
	defer close(p.done)
	for out := range p.queue {
		p.send(out)
	}
}

func (p *KafkaPublisher) send(out outgoing) {
	ctx, cancel := context.WithTimeout(out.ctx, p.timeout)
	defer cancel()

	if err := p.producer.Publish(ctx, out.msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"event_type", out.msg.GetEventType(),
			"key", out.msg.Key,
			"event_id", out.msg.GetEventID(),
			"error", err,
		)
	}
}
