package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// EventType classifies analysis lifecycle events
type EventType string

const (
	AnalysisCompletedEvent EventType = "analysis_completed"
	AnalysisFailedEvent    EventType = "analysis_failed"
	SystemEvent            EventType = "system"
)

// Event is one message on the analysis event stream
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	UserID    string                 `json:"user_id,omitempty"`
	Data      map[string]interface{} `json:"data"`
}

// ProducerConfig contains configuration for the event producer
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
}

// Producer publishes analysis lifecycle events to Kafka. It is optional
// infrastructure: analysis results never depend on a publish succeeding.
type Producer struct {
	writer *kafka.Writer
	config ProducerConfig
}

// NewProducer creates an event producer
func NewProducer(config ProducerConfig) *Producer {
	if len(config.Brokers) == 0 {
		config.Brokers = []string{"localhost:9092"}
	}
	if config.Topic == "" {
		config.Topic = "codeclinic-events"
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}
	if config.BatchTimeout == 0 {
		config.BatchTimeout = 1 * time.Second
	}

	return &Producer{config: config}
}

// Connect establishes the Kafka writer and verifies it with a ping event
func (p *Producer) Connect(ctx context.Context) error {
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(p.config.Brokers...),
		Topic:        p.config.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    p.config.BatchSize,
		BatchTimeout: p.config.BatchTimeout,
		RequiredAcks: kafka.RequireOne,
	}

	ping := Event{
		Type:      SystemEvent,
		Timestamp: time.Now(),
		Source:    "event_producer",
		Data:      map[string]interface{}{"message": "ping"},
	}
	if err := p.produce(ctx, ping); err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	return nil
}

// Publish sends one analysis lifecycle event. Callers treat failures as
// log-only; publishing never affects the analysis response.
func (p *Producer) Publish(ctx context.Context, eventType string, userID string, data map[string]interface{}) error {
	return p.produce(ctx, Event{
		Type:      EventType(eventType),
		Timestamp: time.Now(),
		Source:    "analyzer",
		UserID:    userID,
		Data:      data,
	})
}

func (p *Producer) produce(ctx context.Context, event Event) error {
	if p.writer == nil {
		return fmt.Errorf("event producer not connected")
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(string(event.Type)),
		Value: value,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "source", Value: []byte(event.Source)},
			{Key: "type", Value: []byte(event.Type)},
		},
	}

	return p.writer.WriteMessages(ctx, message)
}

// Close closes the Kafka connection
func (p *Producer) Close() error {
	if p.writer != nil {
		err := p.writer.Close()
		p.writer = nil
		return err
	}
	return nil
}
