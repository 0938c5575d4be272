package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestPublisher_WritesKeyedEnvelope(t *testing.T) {
	w := &recordingWriter{}
	p := newPublisherWithWriter(w)
	orderID := uuid.New()

	err := p.Publish(context.Background(), OrderCompleted, orderID.String(), OrderCompletedPayload(orderID, 10000, "tx-1"))
	require.NoError(t, err)
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, orderID.String(), string(msg.Key))
	assert.Equal(t, "event", msg.Headers[0].Key)

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, OrderCompleted, env.Event)
	assert.Equal(t, "completed", env.Payload["status"])
	assert.Equal(t, float64(10000), env.Payload["total_cents"])
}

func TestPublisher_NilIsNoop(t *testing.T) {
	var p *Publisher
	assert.NoError(t, p.Publish(context.Background(), OrderCreated, "k", nil))
	assert.NoError(t, p.Close())
}

func TestPublisher_WrapsWriteError(t *testing.T) {
	p := newPublisherWithWriter(&recordingWriter{err: assert.AnError})

	err := p.Publish(context.Background(), ProductDeleted, "k", ProductDeletedPayload(uuid.New(), 2))
	assert.ErrorIs(t, err, assert.AnError)
}
