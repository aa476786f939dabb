package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Publisher sends domain events to RabbitMQ. It dials per publish; user
// deletion is rare enough that holding a connection open is not worth the
// reconnect handling.
type Publisher struct {
	url         string
	dialTimeout time.Duration
	log         zerolog.Logger
}

// defaultDialTimeout caps the TCP connect plus AMQP handshake when the
// caller's context has no earlier deadline.
const defaultDialTimeout = 5 * time.Second

// NewPublisher returns a publisher for the broker at url.
func NewPublisher(url string, log zerolog.Logger) *Publisher {
	return &Publisher{
		url:         url,
		dialTimeout: defaultDialTimeout,
		log:         log.With().Str("component", "publisher").Logger(),
	}
}

// PublishUserDeleted publishes ev to the user.deleted queue as a persistent
// JSON message. Errors are logged and returned so the caller can decide to
// ignore them.
func (p *Publisher) PublishUserDeleted(ctx context.Context, ev UserDeletedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.publish(ctx, UserDeletedQueue, body); err != nil {
		p.log.Error().Err(err).Uint64("user_id", ev.UserID).Msg("publish user.deleted failed")
		return err
	}
	p.log.Debug().Uint64("user_id", ev.UserID).Msg("published user.deleted")
	return nil
}

func (p *Publisher) publish(ctx context.Context, queue string, body []byte) error {
	conn, err := p.dial(ctx)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	return ch.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = queue name
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
}

// dial connects within whatever is left of ctx, bounded by dialTimeout.
func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := p.dialTimeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}
	return amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}
