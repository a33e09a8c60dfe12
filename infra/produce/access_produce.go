package produce

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	FileEventsExchange   = "file.events"
	FileAccessedQueue    = "file.accessed"
	FileAccessRoutingKey = "file.accessed"
)

// AccessEventMessage records one successful delivery of an object. The
// consumer turns these into access-counter increments.
type AccessEventMessage struct {
	Path      string `json:"path"`
	Timestamp int64  `json:"timestamp"`
}

// AccessEventService publishes fire-and-forget access events.
type AccessEventService struct {
	channel *amqp.Channel
}

func InitAccessEventService(channel *amqp.Channel) *AccessEventService {
	err := channel.ExchangeDeclare(
		FileEventsExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		panic("Failed to declare file events exchange: " + err.Error())
	}

	_, err = channel.QueueDeclare(
		FileAccessedQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		panic("Failed to declare file accessed queue: " + err.Error())
	}

	err = channel.QueueBind(
		FileAccessedQueue,
		FileAccessRoutingKey,
		FileEventsExchange,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to bind file accessed queue: " + err.Error())
	}

	return &AccessEventService{channel: channel}
}

// FileAccessed publishes an access event for the given storage path.
// Failures are the caller's to swallow; counting is best-effort.
func (s *AccessEventService) FileAccessed(ctx context.Context, path string) error {
	body, err := json.Marshal(AccessEventMessage{
		Path:      path,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal access event: %w", err)
	}

	err = s.channel.PublishWithContext(ctx,
		FileEventsExchange,
		FileAccessRoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish access event: %w", err)
	}

	return nil
}
