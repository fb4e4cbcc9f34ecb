package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"civreg/internal/platform/config"
)

// KafkaSink streams activity entries to a Kafka topic so external consumers
// (compliance archive, alerting) can follow the trail without polling the
// database. Records are keyed by model id to keep per-record ordering.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

// NewKafkaSink connects to the configured brokers. Returns nil when no
// brokers are configured (Kafka optional in development).
func NewKafkaSink(cfg config.KafkaConfig) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProduceRequestTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &KafkaSink{client: client, topic: cfg.Topic}, nil
}

// kafkaPayload is the wire format published per entry.
type kafkaPayload struct {
	ID          string `json:"id"`
	ActorID     string `json:"actor_id,omitempty"`
	Action      string `json:"action"`
	ModelType   string `json:"model_type,omitempty"`
	ModelID     string `json:"model_id,omitempty"`
	Description string `json:"description,omitempty"`
	IPAddress   string `json:"ip_address,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func (s *KafkaSink) Publish(ctx context.Context, entry Entry) error {
	payload := kafkaPayload{
		ID:          entry.ID.String(),
		Action:      entry.Action,
		ModelType:   entry.ModelType,
		ModelID:     entry.ModelID,
		Description: entry.Description,
		IPAddress:   entry.IPAddress,
		CreatedAt:   entry.CreatedAt.Format(time.RFC3339Nano),
	}
	if entry.ActorID != nil {
		payload.ActorID = entry.ActorID.String()
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal activity payload: %w", err)
	}

	key := []byte(entry.ModelID)
	if len(key) == 0 {
		key = []byte(entry.ID.String())
	}

	record := &kgo.Record{Topic: s.topic, Key: key, Value: value}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce activity record: %w", err)
	}
	return nil
}

func (s *KafkaSink) Close() {
	s.client.Close()
}
