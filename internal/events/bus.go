package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/engagehub/pkg/models"
)

// Engagement topics.
const (
	TopicSessions      = "engagement.sessions"
	TopicRegistrations = "engagement.registrations"
	TopicOutreach      = "engagement.outreach"
	TopicTrust         = "engagement.trust"
	TopicIncidents     = "engagement.incidents"
)

// GetAllTopics returns all predefined topics.
func GetAllTopics() []string {
	return []string{
		TopicSessions,
		TopicRegistrations,
		TopicOutreach,
		TopicTrust,
		TopicIncidents,
	}
}

// Publisher publishes engagement events. Core state transitions never block
// on publication; callers log failures and move on.
type Publisher interface {
	Publish(ctx context.Context, topic string, event models.EngagementEvent) error
	PublishBatch(ctx context.Context, topic string, batch models.EventBatch) error
	Ping(ctx context.Context) error
	Close() error
}

// KafkaConfig represents Kafka connection configuration.
type KafkaConfig struct {
	Brokers      []string      `json:"brokers"`
	ClientID     string        `json:"client_id"`
	BatchSize    int           `json:"batch_size"`
	BatchTimeout time.Duration `json:"batch_timeout"`
}

// DefaultKafkaConfig returns default Kafka configuration.
func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Brokers:      []string{"localhost:9092"},
		ClientID:     "engagehub-events",
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// KafkaPublisher implements Publisher using Kafka.
type KafkaPublisher struct {
	config KafkaConfig
	writer *kafka.Writer

	mu     sync.Mutex
	closed bool
}

// NewKafkaPublisher creates a Kafka-backed publisher.
func NewKafkaPublisher(config KafkaConfig) (*KafkaPublisher, error) {
	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    config.BatchSize,
		BatchTimeout: config.BatchTimeout,
		Compression:  kafka.Gzip,
		RequiredAcks: kafka.RequireAll,
	}

	return &KafkaPublisher{config: config, writer: writer}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic string, event models.EngagementEvent) error {
	msg, err := buildMessage(topic, event)
	if err != nil {
		return err
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPublisherClosed
	}
	p.mu.Unlock()
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, topic string, batch models.EventBatch) error {
	messages := make([]kafka.Message, len(batch.Events))
	for i, event := range batch.Events {
		msg, err := buildMessage(topic, event)
		if err != nil {
			return fmt.Errorf("event %s: %w", event.ID, err)
		}
		messages[i] = msg
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPublisherClosed
	}
	p.mu.Unlock()
	return p.writer.WriteMessages(ctx, messages...)
}

func buildMessage(topic string, event models.EngagementEvent) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	return kafka.Message{
		Topic: topic,
		Key:   []byte(event.ID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(string(event.Type))},
			{Key: "timestamp", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
		Time: time.Now(),
	}, nil
}

// Ping checks Kafka connectivity.
func (p *KafkaPublisher) Ping(ctx context.Context) error {
	conn, err := kafka.Dial("tcp", p.config.Brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to kafka: %w", err)
	}
	defer conn.Close()

	_, err = conn.Controller()
	return err
}

// InitializeTopics creates all predefined topics. Creation failures are
// logged, not fatal; brokers may auto-create.
func (p *KafkaPublisher) InitializeTopics(ctx context.Context, partitions, replicationFactor int) error {
	conn, err := kafka.Dial("tcp", p.config.Brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to kafka: %w", err)
	}
	defer conn.Close()

	for _, topic := range GetAllTopics() {
		err := conn.CreateTopics(kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     partitions,
			ReplicationFactor: replicationFactor,
		})
		if err != nil {
			log.Printf("Warning: failed to create topic %s: %v", topic, err)
		}
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

// NoopPublisher discards events. Used when no brokers are configured and in
// tests.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, topic string, event models.EngagementEvent) error {
	return nil
}

func (NoopPublisher) PublishBatch(ctx context.Context, topic string, batch models.EventBatch) error {
	return nil
}

func (NoopPublisher) Ping(ctx context.Context) error { return nil }

func (NoopPublisher) Close() error { return nil }
