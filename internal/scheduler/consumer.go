package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ReleaseFunc is invoked for every expired hold. It must be idempotent: the
// broker delivers at least once, so the same booking id may arrive twice.
type ReleaseFunc func(ctx context.Context, bookingId string) error

const (
	reconnectDelay = 5 * time.Second
	requeueDelay   = time.Second
)

// ExpiryConsumer drains the expiry queue and hands each booking id to the
// release handler. Run blocks until the context is cancelled, reconnecting
// with a fixed backoff whenever the broker connection drops.
type ExpiryConsumer struct {
	url     string
	logger  *slog.Logger
	release ReleaseFunc
}

func NewExpiryConsumer(url string, logger *slog.Logger, release ReleaseFunc) *ExpiryConsumer {
	return &ExpiryConsumer{
		url:     url,
		logger:  logger,
		release: release,
	}
}

func (c *ExpiryConsumer) Run(ctx context.Context) error {
	for {
		err := c.consume(ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			return nil
		}

		c.logger.Error("expiry consumer disconnected", "error", err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *ExpiryConsumer) consume(ctx context.Context) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := declareTopology(ch); err != nil {
		return err
	}

	if err := ch.Qos(1, 0, false); err != nil {
		return err
	}

	deliveries, err := ch.Consume(expiredQueue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	c.logger.Info("expiry consumer started", "queue", expiredQueue)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handleDelivery(ctx, d)
		}
	}
}

func (c *ExpiryConsumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var task Task
	if err := json.Unmarshal(d.Body, &task); err != nil {
		c.logger.Error("dropping malformed expiry message", "error", err)
		d.Nack(false, false)
		return
	}

	if err := c.release(ctx, task.BookingID); err != nil {
		c.logger.Error("hold release failed, requeueing", "booking_id", task.BookingID, "error", err)
		// Pause before the redelivery so a struggling store is not hammered.
		select {
		case <-ctx.Done():
		case <-time.After(requeueDelay):
		}
		d.Nack(false, true)
		return
	}

	d.Ack(false)
}
