package repository

import (
	"context"

	"VolPull/internal/domain/models"
	"VolPull/internal/domain/repository"
	pkgkafka "VolPull/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka. Messages are keyed by
// asset so per-asset ordering survives partitioning.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, rec *models.HourlyDvol) error {
	return p.producer.Publish(ctx, p.topic, []byte(rec.Asset), rec)
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, recs []*models.HourlyDvol) error {
	if len(recs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(recs))
	for i, rec := range recs {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(rec.Asset),
			Value: rec,
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
