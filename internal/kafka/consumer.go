package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Consumer struct {
	reader *kafka.Reader
	log    *zap.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume blocks until ctx is done or the handler fails. Messages that do
// not decode as SessionEvent are logged and skipped.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, SessionEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		event, err := DecodeSessionEvent(msg.Value)
		if err != nil {
			c.log.Warn("skipping undecodable event", zap.String("topic", msg.Topic), zap.Int64("offset", msg.Offset), zap.Error(err))
			continue
		}

		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

func DecodeSessionEvent(data []byte) (SessionEvent, error) {
	var event SessionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return SessionEvent{}, err
	}
	if event.Type == "" || event.Token == "" {
		return SessionEvent{}, errors.New("event type and token are required")
	}
	return event, nil
}
