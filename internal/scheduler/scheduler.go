// Package scheduler implements the deferred seat-release mechanism on top of
// RabbitMQ. Arming a booking publishes a message with a per-message TTL equal
// to the hold window into a hold queue; when the TTL lapses the broker
// dead-letters the message into the expiry queue, where the consumer re-reads
// the booking and releases it if still unpaid.
//
// Every message carries the same TTL, so the hold queue expires strictly in
// FIFO order and a message is never stuck behind a longer-lived one.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	holdQueue       = "booking.hold"
	expiredQueue    = "booking.hold.expired"
	expiredExchange = "booking.hold.dlx"
)

// Task is the payload of a deferred hold check.
type Task struct {
	BookingID   string    `json:"booking_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

type AMQPScheduler struct {
	url    string
	logger *slog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPScheduler(url string, logger *slog.Logger) (*AMQPScheduler, error) {
	s := &AMQPScheduler{
		url:    url,
		logger: logger,
	}

	if err := s.connect(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *AMQPScheduler) connect() error {
	conn, err := amqp.Dial(s.url)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("amqp channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	s.conn = conn
	s.ch = ch

	return nil
}

func declareTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(expiredExchange, "direct", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare exchange %s: %w", expiredExchange, err)
	}

	_, err = ch.QueueDeclare(expiredQueue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", expiredQueue, err)
	}

	err = ch.QueueBind(expiredQueue, expiredQueue, expiredExchange, false, nil)
	if err != nil {
		return fmt.Errorf("bind queue %s: %w", expiredQueue, err)
	}

	_, err = ch.QueueDeclare(holdQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    expiredExchange,
		"x-dead-letter-routing-key": expiredQueue,
	})
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", holdQueue, err)
	}

	return nil
}

// ScheduleHoldExpiry arms the deferred check for a booking. The message is
// persistent, so an armed hold survives a broker restart.
func (s *AMQPScheduler) ScheduleHoldExpiry(ctx context.Context, bookingId string, delay time.Duration) error {
	body, err := json.Marshal(Task{
		BookingID:   bookingId,
		ScheduledAt: time.Now().UTC().Add(delay),
	})
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Expiration:   strconv.FormatInt(delay.Milliseconds(), 10),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.ch.PublishWithContext(ctx, "", holdQueue, false, false, pub)
	if err == nil {
		return nil
	}

	// One reconnect attempt before giving up; the caller treats a failed arm
	// as fatal to the booking and compensates.
	s.logger.Warn("scheduler publish failed, reconnecting", "error", err)

	if reconnectErr := s.connect(); reconnectErr != nil {
		return fmt.Errorf("publish hold expiry: %w", err)
	}

	return s.ch.PublishWithContext(ctx, "", holdQueue, false, false, pub)
}

func (s *AMQPScheduler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ch != nil {
		s.ch.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}

	return nil
}
