package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ErrNoHandler is returned by Run when no handler was registered.
var ErrNoHandler = errors.New("events: no handler registered")

type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer follows the employee change topic. directoryctl watch uses it to
// tail changes.
type Consumer struct {
	reader  KafkaReader
	logger  *zap.Logger
	handler func(context.Context, Event) error
	// newBackOff builds the retry policy for a failing fetch or handler.
	newBackOff func() backoff.BackOff
}

// retryWindow bounds how long a single fetch or event is retried.
const retryWindow = 2 * time.Minute

func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return newConsumer(kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   topic,
		Dialer:  kafka.DefaultDialer,
	}), logger)
}

func newConsumer(reader KafkaReader, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: reader,
		logger: logger.Named("kafka_consumer"),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxElapsedTime = retryWindow
			return b
		},
	}
}

// RegisterHandler sets the event handler. A handler may return
// backoff.Permanent(err) to stop retrying an event at once.
func (c *Consumer) RegisterHandler(fn func(context.Context, Event) error) {
	c.handler = fn
}

// Run consumes until ctx is done. Failed fetches and handler errors are
// retried with backoff. A message is committed only after the handler
// accepted it; when retries run out Run returns the error and leaves the
// message uncommitted, so the group redelivers it. Undecodable messages are
// committed and skipped.
func (c *Consumer) Run(ctx context.Context) error {
	if c.handler == nil {
		return ErrNoHandler
	}
	for {
		msg, err := c.fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		var event Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Error("Failed to parse event",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
			)
			c.commit(ctx, msg, "")
			continue
		}

		err = backoff.RetryNotify(func() error {
			return c.handler(ctx, event)
		}, backoff.WithContext(c.newBackOff(), ctx), func(err error, next time.Duration) {
			c.logger.Error("Failed to handle event",
				zap.Error(err),
				zap.String("event_type", string(event.Type)),
				zap.Duration("retry_in", next),
			)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("handle %s event at offset %d: %w", event.Type, msg.Offset, err)
		}
		c.commit(ctx, msg, event.Type)
	}
}

func (c *Consumer) fetch(ctx context.Context) (kafka.Message, error) {
	var msg kafka.Message
	err := backoff.RetryNotify(func() error {
		var err error
		msg, err = c.reader.FetchMessage(ctx)
		return err
	}, backoff.WithContext(c.newBackOff(), ctx), func(err error, next time.Duration) {
		c.logger.Error("Failed to fetch message", zap.Error(err), zap.Duration("retry_in", next))
	})
	return msg, err
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message, eventType EventType) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message",
			zap.Error(err),
			zap.String("event_type", string(eventType)),
		)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("Failed to close Kafka reader", zap.Error(err))
	}
}
