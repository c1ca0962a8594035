package usecase

import (
	"context"
	"encoding/json"
	"time"

	"VolPull/internal/domain/models"
	domrepo "VolPull/internal/domain/repository"
	pkgkafka "VolPull/pkg/kafka"
)

// KafkaDvolHandler consumes published hourly values and writes them to
// storage. Used when the compute side runs with the kafka backend and a
// separate sink process owns ClickHouse.
type KafkaDvolHandler struct {
	topic   string
	results domrepo.ResultStore
	metrics domrepo.Metrics
}

func NewKafkaDvolHandler(topic string, results domrepo.ResultStore, metrics domrepo.Metrics) *KafkaDvolHandler {
	return &KafkaDvolHandler{topic: topic, results: results, metrics: metrics}
}

func (h *KafkaDvolHandler) Topic() string { return h.topic }

func (h *KafkaDvolHandler) Handle(ctx context.Context, b []byte) error {
	var rec models.HourlyDvol
	if err := json.Unmarshal(b, &rec); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	h.metrics.RecordLatency("sink_e2e_seconds", time.Since(rec.SnapshotHour).Seconds())

	start := time.Now()
	err := h.results.StoreHourly(ctx, &rec)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordDvol(rec.Asset, rec.Dvol)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaDvolHandler)(nil)
