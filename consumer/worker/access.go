package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/eduforge/edu-file-gateway/infra"
	"github.com/eduforge/edu-file-gateway/infra/produce"
	"github.com/eduforge/edu-file-gateway/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

// AccessConsumer drains file.accessed events into the access counters.
// Counting is best-effort: a failed increment is logged and the message
// acked anyway, so a broken record can never wedge the queue.
type AccessConsumer struct {
	channel    *amqp.Channel
	infra      *infra.Infra
	repository *repository.Repository
}

func NewAccessConsumer(channel *amqp.Channel, infra *infra.Infra, repo *repository.Repository) *AccessConsumer {
	return &AccessConsumer{
		channel:    channel,
		infra:      infra,
		repository: repo,
	}
}

func (c *AccessConsumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		produce.FileAccessedQueue,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register access consumer: %w", err)
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Access Consumer] Started listening on queue: %s", produce.FileAccessedQueue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.infra.Logger.InfoWithContextf(ctx, "[Access Consumer] Shutting down...")
				return
			case msg, ok := <-msgs:
				if !ok {
					c.infra.Logger.WarningWithContextf(ctx, "[Access Consumer] Channel closed")
					return
				}
				c.handleAccessEvent(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *AccessConsumer) handleAccessEvent(ctx context.Context, msg amqp.Delivery) {
	var payload produce.AccessEventMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Access Consumer] Failed to unmarshal access event")
		_ = msg.Nack(false, false)
		return
	}

	if err := c.repository.FileRecordRepo.IncrementAccess(ctx, payload.Path); err != nil {
		c.infra.Logger.WarningWithContextf(ctx, "[Access Consumer] Failed to increment access count for %s: %v", payload.Path, err)
	}

	_ = msg.Ack(false)
}
