package events

import (
	"context"
	"encoding/json"
	"time"

	"roomline/pkg/logger"
	"roomline/pkg/model"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	TypeBookingCreated     = "booking.created"
	TypeBookingCancelled   = "booking.cancelled"
	TypeBookingOverridden  = "booking.overridden"
	TypeBookingRescheduled = "booking.rescheduled"
)

// BookingEvent is the payload published for every booking state change.
// Consumers (notification senders, audit trails) subscribe to these
// instead of being called inline.
type BookingEvent struct {
	EventID    string         `json:"event_id"`
	Type       string         `json:"type"`
	Booking    *model.Booking `json:"booking"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Publisher emits booking events to Kafka. Publishing is best effort:
// failures are logged and never propagate into the booking flow.
type Publisher interface {
	BookingChanged(ctx context.Context, eventType string, booking *model.Booking)
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
	log    *logger.Logger
}

type PublisherConfig struct {
	Brokers []string
	Topic   string
}

func NewPublisher(cfg PublisherConfig, log *logger.Logger) Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{}, // key by room for per-room ordering
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
		ErrorLogger:  kafka.LoggerFunc(func(msg string, args ...any) { log.Error("kafka: "+msg, "args", args) }),
	}

	return &kafkaPublisher{
		writer: writer,
		log:    log,
	}
}

func (p *kafkaPublisher) BookingChanged(ctx context.Context, eventType string, booking *model.Booking) {
	event := BookingEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		Booking:    booking,
		OccurredAt: time.Now().UTC(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.log.Error("Failed to encode booking event", "type", eventType, "error", err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(booking.RoomID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(event.EventID)},
			{Key: "event-type", Value: []byte(eventType)},
		},
	})
	if err != nil {
		p.log.Error("Failed to publish booking event",
			"type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
		return
	}

	p.log.Debug("Booking event published", "type", eventType, "booking_id", booking.ID)
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops all events; used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) BookingChanged(context.Context, string, *model.Booking) {}

func (NopPublisher) Close() error { return nil }
