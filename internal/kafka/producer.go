package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-booking/internal/config"
	"ms-booking/internal/models"
)

// Producer streams booking lifecycle events. Topics come from config so the
// consumer side and this service always agree.
type Producer struct {
	Writer *kafka.Writer
	Topics config.TopicConfig
}

func NewProducer(brokers []string, topics config.TopicConfig) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer, Topics: topics}
}

// Publish writes one message to a topic.
func (p *Producer) Publish(topic string, key string, value []byte) error {
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
		},
	)
}

// PublishBookingCreated streams a booking creation event.
func (p *Producer) PublishBookingCreated(b models.Booking) error {
	msgBytes, err := json.Marshal(b)
	if err != nil {
		return err
	}

	fmt.Printf("Publishing to Kafka [%s]: booking %s\n", p.Topics.BookingCreated, b.BookingID)
	return p.Publish(p.Topics.BookingCreated, b.EventID, msgBytes)
}

// PublishBookingCancelled streams a booking cancellation event.
func (p *Producer) PublishBookingCancelled(b models.Booking) error {
	msgBytes, err := json.Marshal(b)
	if err != nil {
		return err
	}

	fmt.Printf("Publishing to Kafka [%s]: booking %s\n", p.Topics.BookingCancelled, b.BookingID)
	return p.Publish(p.Topics.BookingCancelled, b.EventID, msgBytes)
}

// PublishEventDeactivated announces that an event was closed so confirmed
// bookings on it get cascade-cancelled.
func (p *Producer) PublishEventDeactivated(eventID, reason string) error {
	msgBytes, err := json.Marshal(EventDeactivated{EventID: eventID, Reason: reason})
	if err != nil {
		return err
	}

	fmt.Printf("Publishing to Kafka [%s]: event %s\n", p.Topics.EventDeactivated, eventID)
	return p.Publish(p.Topics.EventDeactivated, eventID, msgBytes)
}

// Close gracefully shuts down the Kafka writer
func (p *Producer) Close() error {
	return p.Writer.Close()
}
