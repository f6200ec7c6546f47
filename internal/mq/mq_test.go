package mq

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jjudge-oj/userservice/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loopback delivers every published message to the channel's subscribers
// synchronously.
type loopback struct {
	queues     map[string][]Message
	publishErr error
	closed     bool
}

func (l *loopback) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if l.publishErr != nil {
		return "", l.publishErr
	}
	if l.queues == nil {
		l.queues = map[string][]Message{}
	}
	id := fmt.Sprintf("%s-%d", channel, len(l.queues[channel]))
	l.queues[channel] = append(l.queues[channel], Message{ID: id, Data: data, Attributes: attrs})
	return id, nil
}

func (l *loopback) Subscribe(ctx context.Context, channel string, handler Handler) error {
	for _, msg := range l.queues[channel] {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return context.Canceled
}

func (l *loopback) Close() error {
	l.closed = true
	return nil
}

func TestMQ_PublishSubscribe(t *testing.T) {
	backend := &loopback{}
	m := NewMQ(backend)
	ctx := context.Background()

	id, err := m.Publish(ctx, "user-events", []byte(`{"event_type":"user.created"}`), map[string]string{"event_type": "user.created"})
	require.NoError(t, err)
	assert.Equal(t, "user-events-0", id)

	var got []Message
	err = m.Subscribe(ctx, "user-events", func(_ context.Context, msg Message) error {
		got = append(got, msg)
		return nil
	})
	require.NoError(t, err, "cancellation ends a subscription cleanly")
	require.Len(t, got, 1)
	assert.Equal(t, "user.created", got[0].Attributes["event_type"])

	require.NoError(t, m.Close())
	assert.True(t, backend.closed)
}

func TestMQ_Validation(t *testing.T) {
	m := NewMQ(&loopback{})
	ctx := context.Background()

	_, err := m.Publish(ctx, " ", nil, nil)
	assert.Error(t, err)
	assert.Error(t, m.Subscribe(ctx, "", func(context.Context, Message) error { return nil }))
	assert.Error(t, m.Subscribe(ctx, "user-events", nil))
}

func TestMQ_WrapsErrors(t *testing.T) {
	cause := errors.New("connection refused")
	m := NewMQ(&loopback{publishErr: cause})

	_, err := m.Publish(context.Background(), "user-events", nil, nil)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "user-events")
}

func TestNew_Backends(t *testing.T) {
	m, err := New(context.Background(), config.MQConfig{Backend: config.MQBackendNone})
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = New(context.Background(), config.MQConfig{Backend: config.MQBackendRabbitMQ})
	assert.ErrorContains(t, err, "rabbitmq url is required")

	_, err = New(context.Background(), config.MQConfig{Backend: config.MQBackendPubSub})
	assert.ErrorContains(t, err, "pubsub project id is required")

	_, err = New(context.Background(), config.MQConfig{Backend: "kafka"})
	assert.Error(t, err)
}

func TestHeaderConversion(t *testing.T) {
	headers := attributesToHeaders(map[string]string{"event_type": "user.deleted"})
	assert.Equal(t, amqp.Table{"event_type": "user.deleted"}, headers)

	attrs := headersToAttributes(amqp.Table{
		"event_type": "user.deleted",
		"raw":        []byte("bytes"),
		"attempt":    int32(2),
	})
	assert.Equal(t, map[string]string{"event_type": "user.deleted", "raw": "bytes", "attempt": "2"}, attrs)
	assert.Nil(t, headersToAttributes(nil))
}
