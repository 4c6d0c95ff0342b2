package kafka

import (
	"context"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type Producer struct {
	Writer *kafka.Writer
}

// NewProducer creates a topic-agnostic producer; the topic is chosen per
// message so one writer serves every domain event.
func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer}
}

// Publish sends one message. Each message carries a unique message_id header
// so consumers can deduplicate redeliveries.
func (p *Producer) Publish(topic string, key string, value []byte) error {
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
			Headers: []kafka.Header{
				{Key: "message_id", Value: []byte(uuid.NewString())},
			},
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
