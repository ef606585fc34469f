package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"venuecap/internal/shared/config"
	"venuecap/pkg/logger"

	"github.com/IBM/sarama"
)

// Publisher hands capacity events to whatever delivers them. Publishing is
// best effort: callers log failures and never roll back on them.
type Publisher interface {
	Publish(ctx context.Context, event *CapacityEvent) error
	Close() error
}

// KafkaPublisher writes events to a single topic with a sarama SyncProducer
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	clientID string
	log      *logger.Logger
}

// NewSaramaConfig returns the producer settings used against real brokers
func NewSaramaConfig(cfg config.KafkaConfig) *sarama.Config {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Compression = sarama.CompressionSnappy
	sc.Producer.Retry.Max = 3
	sc.Producer.Timeout = 10 * time.Second
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1

	// Hash on the resource id so per-resource order survives
	sc.Producer.Partitioner = sarama.NewHashPartitioner
	return sc
}

func NewKafkaPublisher(cfg config.KafkaConfig, log *logger.Logger) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewSaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, cfg, log), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer, e.g. a sarama mock
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, cfg config.KafkaConfig, log *logger.Logger) *KafkaPublisher {
	if log == nil {
		log = logger.GetDefault()
	}
	return &KafkaPublisher{
		producer: producer,
		topic:    cfg.Topic,
		clientID: cfg.ClientID,
		log:      log.WithComponent("notifications"),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *CapacityEvent) error {
	payload, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.PartitionKey()),
		Value:     sarama.ByteEncoder(payload),
		Headers:   p.headers(event),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send event to Kafka: %w", err)
	}

	p.log.DebugContext(ctx, "event published",
		slog.String("type", string(event.Type)),
		slog.String("resource_id", event.ResourceID.String()),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
	)
	return nil
}

func (p *KafkaPublisher) headers(event *CapacityEvent) []sarama.RecordHeader {
	headers := []sarama.RecordHeader{
		{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		{Key: []byte("event_type"), Value: []byte(event.Type)},
		{Key: []byte("resource_id"), Value: []byte(event.ResourceID.String())},
		{Key: []byte("producer"), Value: []byte(p.clientID)},
	}
	if event.WaitlistEntryID != nil {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("waitlist_entry_id"),
			Value: []byte(event.WaitlistEntryID.String()),
		})
	}
	if event.ExpiresAt != nil {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("expires_at"),
			Value: []byte(event.ExpiresAt.Format(time.RFC3339)),
		})
	}
	return headers
}

func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

// NoopPublisher drops every event. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *CapacityEvent) error { return nil }
func (NoopPublisher) Close() error                                  { return nil }

// Recorder keeps published events in memory
type Recorder struct {
	mu     sync.Mutex
	events []CapacityEvent
}

func (r *Recorder) Publish(_ context.Context, event *CapacityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Types returns the recorded event types in publish order
func (r *Recorder) Types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// Events returns a copy of everything recorded
func (r *Recorder) Events() []CapacityEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]CapacityEvent(nil), r.events...)
}

// PublishBestEffort publishes and logs a failure instead of returning it
func PublishBestEffort(ctx context.Context, p Publisher, log *logger.Logger, event *CapacityEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		log.WarnContext(ctx, "failed to publish capacity event",
			slog.String("type", string(event.Type)),
			slog.String("resource_id", event.ResourceID.String()),
			slog.String("error", err.Error()),
		)
	}
}
