package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestKafkaPublisherKeysByEntity(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{w: w}

	err := p.Publish(context.Background(), New(OrderPlaced, 42, map[string]string{"orderNumber": "ORD-1"}))
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, "type", msg.Headers[0].Key)
	assert.Equal(t, OrderPlaced, string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, OrderPlaced, decoded["type"])
	assert.EqualValues(t, 42, decoded["entityId"])
}

func TestEmitSwallowsErrors(t *testing.T) {
	p := &KafkaPublisher{w: &recordingWriter{err: errors.New("broker down")}}
	assert.NotPanics(t, func() {
		Emit(context.Background(), p, New(QuoteCreated, 1, nil))
	})
}

func TestNewKafkaPublisherWithoutBrokers(t *testing.T) {
	p := NewKafkaPublisher("", "studio.events")
	assert.IsType(t, Nop{}, p)
	assert.NoError(t, p.Publish(context.Background(), New(OrderPlaced, 1, nil)))
}
