package kafka

import (
	"context"
	"errors"
	"testing"

	kafka_config "officehub/pkg/kafka/config"
	"officehub/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("ifc_oval_14").
		WithValue(map[string]any{"event_type": "booking.created"}).
		WithEventType("booking.created").
		WithSource("officehub").
		WithCorrelationID("req-1").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "ifc_oval_14", msg.Key)
	assert.NotEmpty(t, msg.GetEventID())
	assert.Equal(t, "booking.created", msg.GetEventType())
	assert.Equal(t, "req-1", msg.GetCorrelationID())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])

	var payload map[string]string
	require.NoError(t, msg.DecodeValue(&payload))
	assert.Equal(t, "booking.created", payload["event_type"])
}

func TestMessageBuilder_ExplicitHeaders(t *testing.T) {
	msg, err := NewMessage().
		WithKey("all").
		WithValue(map[string]int{"count": 3}).
		WithEventID("evt-1").
		WithHeader("room-scope", "all").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "evt-1", msg.GetEventID())
	assert.Equal(t, "all", msg.Headers["room-scope"])
}

func TestMessageBuilder_UnencodableValue(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, ErrorTypeUnknown, ClassifyError(nil))
	assert.Equal(t, ErrorTypeTransient, ClassifyError(errors.New("dial tcp: Connection Refused")))
	assert.Equal(t, ErrorTypePermanent, ClassifyError(errors.New("unexpected end of JSON input")))
	assert.Equal(t, ErrorTypeTransient, ClassifyError(NewTransientError("retry me", nil)))
	assert.Equal(t, ErrorTypePermanent, ClassifyError(NewPermanentError("bad payload", errors.New("i/o timeout"))))
}

func TestShouldRetry(t *testing.T) {
	transient := errors.New("i/o timeout")
	assert.True(t, ShouldRetry(transient, 0, 3))
	assert.False(t, ShouldRetry(transient, 3, 3))
	assert.False(t, ShouldRetry(errors.New("bad payload"), 0, 3))
	assert.False(t, ShouldRetry(nil, 0, 3))
}

func testProducer(t *testing.T) *Producer {
	t.Helper()
	p, err := NewProducer(&kafka_config.Config{
		Brokers:             []string{"localhost:9092"},
		ProducerMaxAttempts: 1,
		ProducerCompression: "none",
	}, "meeting-room-bookings", "", logger.Discard())
	require.NoError(t, err)
	return p
}

func TestProducer_RejectsInvalidMessages(t *testing.T) {
	p := testProducer(t)
	ctx := context.Background()

	assert.ErrorIs(t, p.Publish(ctx, Message{Value: []byte("{}")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(ctx, Message{Key: "k"}), ErrEmptyValue)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Publish(ctx, Message{Key: "k", Value: []byte("{}")}), ErrProducerClosed)
}

func TestProducer_MiddlewareOrder(t *testing.T) {
	p := testProducer(t)
	defer p.Close()

	var order []string
	stop := errors.New("stop before the network")
	p.Use(func(ctx context.Context, msg Message, next PublishFunc) error {
		order = append(order, "outer")
		return next(ctx, msg)
	})
	p.Use(func(ctx context.Context, msg Message, next PublishFunc) error {
		order = append(order, "inner:"+msg.Topic)
		return stop
	})

	err := p.Publish(context.Background(), Message{Key: "k", Value: []byte("{}")})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []string{"outer", "inner:meeting-room-bookings"}, order)
}

func TestNewProducer_Validation(t *testing.T) {
	_, err := NewProducer(nil, "t", "", logger.Discard())
	assert.Error(t, err)
	_, err = NewProducer(&kafka_config.Config{}, "t", "", logger.Discard())
	assert.Error(t, err)
	_, err = NewProducer(&kafka_config.Config{Brokers: []string{"b:9092"}}, "", "", logger.Discard())
	assert.Error(t, err)
}
