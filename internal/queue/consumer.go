package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// SessionRevoker removes every session row of a user.
type SessionRevoker interface {
	DeleteAllForUser(ctx context.Context, userID uint64) (int64, error)
}

// Consumer listens to the user.deleted queue. With Revoke set it deletes
// the deleted user's sessions; otherwise it only records that they remain
// valid until they expire.
type Consumer struct {
	URL      string
	Revoke   bool
	Sessions SessionRevoker
	Log      zerolog.Logger
}

// NewConsumer wires a consumer for the broker at url.
func NewConsumer(url string, revoke bool, sessions SessionRevoker, log zerolog.Logger) *Consumer {
	return &Consumer{
		URL:      url,
		Revoke:   revoke,
		Sessions: sessions,
		Log:      log.With().Str("component", "user-deleted-consumer").Logger(),
	}
}

// Run dials the broker and consumes until ctx is cancelled, reconnecting
// with exponential backoff (capped at 30s) whenever the connection drops.
// Messages that cannot be handled are rejected without requeue to avoid
// tight redelivery loops.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn().Err(err).Dur("retry_in", backoff).Msg("dial broker failed")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn().Err(err).Msg("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn().Err(err).Msg("set QoS failed")
	}
	if _, err := ch.QueueDeclare(UserDeletedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(UserDeletedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handleMessage(ctx, d.Body); err != nil {
				c.Log.Error().Err(err).Msg("handle message failed")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, body []byte) error {
	var ev UserDeletedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.UserID == 0 {
		return errors.New("event without user_id")
	}
	if !c.Revoke {
		c.Log.Info().Uint64("user_id", ev.UserID).
			Msg("user deleted; existing sessions remain valid until they expire")
		return nil
	}
	n, err := c.Sessions.DeleteAllForUser(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("revoke sessions for user %d: %w", ev.UserID, err)
	}
	c.Log.Info().Uint64("user_id", ev.UserID).Int64("sessions", n).Msg("revoked sessions of deleted user")
	return nil
}

// sleep waits for d or until ctx is done, reporting whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
