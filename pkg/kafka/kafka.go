// Package kafka publishes events to a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"log"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// DefaultTopic receives product events when Config.Topic is empty.
const DefaultTopic = "product-events"

// Config holds Kafka connection details.
type Config struct {
	Brokers []string
	Topic   string
}

// Publisher writes events to a single topic.
type Publisher struct {
	w *kafkago.Writer
}

// NewPublisher creates a synchronous writer for cfg.Topic.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafkago.LeastBytes{},
		WriteTimeout:           10 * time.Second,
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
	}
	log.Printf("Kafka publisher configured for topic %s on %v", cfg.Topic, cfg.Brokers)
	return &Publisher{w: w}, nil
}

// Publish writes body keyed by eventType, with the type also set as a header.
func (p *Publisher) Publish(ctx context.Context, eventType string, body []byte) error {
	err := p.w.WriteMessages(ctx, kafkago.Message{
		Key:     []byte(eventType),
		Value:   body,
		Headers: []kafkago.Header{{Key: "eventType", Value: []byte(eventType)}},
		Time:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("error writing message to Kafka: %w", err)
	}
	log.Printf("Successfully sent %s event to Kafka", eventType)
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}
