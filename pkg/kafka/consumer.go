package kafka

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
)

// Consumer wraps kafka-go Reader for the processing queue.
type Consumer struct {
	reader *kafkago.Reader
}

type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewConsumer constructs a Consumer that joins the given consumer group.
func NewConsumer(cfg ConsumerConfig) *Consumer {
	return &Consumer{
		reader: kafkago.NewReader(kafkago.ReaderConfig{
			Brokers:  cfg.Brokers,
			Topic:    cfg.Topic,
			GroupID:  cfg.GroupID,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
	}
}

// Message is one consumed queue entry; Value carries the payload and
// Headers the metadata set by Producer.Publish.
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string

	raw kafkago.Message
}

// Fetch blocks until a message is available or ctx is done. The message
// must be acknowledged with Commit once handled.
func (c *Consumer) Fetch(ctx context.Context) (*Message, error) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return &Message{Key: msg.Key, Value: msg.Value, Headers: headers, raw: msg}, nil
}

// Commit acknowledges a fetched message with the broker.
func (c *Consumer) Commit(ctx context.Context, msg *Message) error {
	return c.reader.CommitMessages(ctx, msg.raw)
}

// Close shuts down the reader and leaves the group.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
