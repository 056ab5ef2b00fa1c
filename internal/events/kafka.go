package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// event envelope key values on the wire
const (
	kindRideStatus = "ride_status_changed"
	kindMoney      = "money_moved"
)

type envelope struct {
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload"`
}

// KafkaPublisher publishes events to a Kafka topic, keyed by ride ID so all
// events for one ride stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishRideStatus(ctx context.Context, ev RideStatusChanged) error {
	return p.publish(ctx, ev.RideID, envelope{Kind: kindRideStatus, Payload: ev})
}

func (p *KafkaPublisher) PublishMoney(ctx context.Context, ev MoneyMoved) error {
	return p.publish(ctx, ev.RideID, envelope{Kind: kindMoney, Payload: ev})
}

func (p *KafkaPublisher) publish(ctx context.Context, key string, env envelope) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	b, err := json.Marshal(env)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: b})
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

var _ Publisher = (*KafkaPublisher)(nil)
