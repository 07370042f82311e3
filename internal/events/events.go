// Package events publishes domain events to Kafka. Publishing is
// best-effort: a broker outage never fails the request that caused it.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

const (
	OrderPlaced          = "order.placed"
	OrderStatusChanged   = "order.status_changed"
	BookingCreated       = "booking.created"
	BookingStatusChanged = "booking.status_changed"
	QuoteCreated         = "quote.created"
	QuoteStatusChanged   = "quote.status_changed"
)

type Event struct {
	Type       string    `json:"type"`
	EntityID   int64     `json:"entityId"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data,omitempty"`
}

func New(eventType string, entityID int64, data any) Event {
	return Event{Type: eventType, EntityID: entityID, OccurredAt: time.Now().UTC(), Data: data}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	w messageWriter
}

// NewKafkaPublisher returns a Nop when brokers is empty.
func NewKafkaPublisher(brokers, topic string) Publisher {
	if strings.TrimSpace(brokers) == "" {
		log.Warn().Msg("KAFKA_BROKERS not set, domain events are disabled")
		return Nop{}
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaPublisher{w: w}
}

// Publish writes e keyed by its entity id so one entity's events stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(e.EntityID, 10)),
		Value: body,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// Emit publishes and logs instead of returning the error.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		log.Warn().Err(err).Str("event", e.Type).Int64("entity_id", e.EntityID).Msg("failed to publish event")
	}
}
