package di

import (
	"context"
	"fmt"
	"time"

	"VolPull/internal/domain/repository"
	internalrepo "VolPull/internal/repository"
	icache "VolPull/internal/service/cache"
	"VolPull/internal/service/deribit"
	"VolPull/internal/usecase"
	pkgch "VolPull/pkg/clickhouse"
	"VolPull/pkg/config"
	pkgkafka "VolPull/pkg/kafka"
	"VolPull/pkg/logger"
	"VolPull/pkg/metrics"
	"VolPull/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return logger.New(&logger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client and initializes the
// snapshot and result schemas.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snapshots := internalrepo.NewClickHouseSnapshotStore(client.DB())
	results := internalrepo.NewClickHouseResultStore(client.DB())
	if err := snapshots.Init(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	if err := results.Init(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSnapshotStore creates the ClickHouse snapshot repository.
func ProvideSnapshotStore(chClient *pkgch.Client) repository.SnapshotStore {
	return internalrepo.NewClickHouseSnapshotStore(chClient.DB())
}

// ProvideResultStore creates the ClickHouse result repository.
func ProvideResultStore(chClient *pkgch.Client) repository.ResultStore {
	return internalrepo.NewClickHouseResultStore(chClient.DB())
}

// ProvideDvolPublisher creates the Kafka publisher repository.
func ProvideDvolPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideMarketSource creates the Deribit REST market source.
func ProvideMarketSource(cfg *config.Config) repository.MarketSource {
	return deribit.New(cfg.Deribit.BaseURL, cfg.Deribit.RequestTimeout, float64(cfg.Deribit.RateLimitRPS))
}

// ProvideIndexStream creates the Deribit WebSocket index stream.
func ProvideIndexStream(cfg *config.Config) repository.IndexStream {
	return deribit.NewStream(
		cfg.Deribit.WebSocketURL,
		cfg.Deribit.Assets,
		cfg.Deribit.ReconnectDelay,
		cfg.Deribit.PingInterval,
	)
}

// ProvideCache picks Redis when configured, an in-process TTL cache otherwise.
func ProvideCache(cfg *config.Config) icache.BytesCache {
	if cfg.Redis.Enabled && cfg.Redis.Addr != "" {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideDvolProcessor creates the backend-routing processor.
func ProvideDvolProcessor(
	pub repository.Publisher,
	store repository.ResultStore,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.DvolProcessor {
	return usecase.NewDvolProcessor(pub, store, metrics, cfg.Backend.Type)
}

// ProvideDvolPipeline creates the hourly compute pipeline. Live spot is
// answered from the index collector first, with the REST source as the
// fallback.
func ProvideDvolPipeline(
	snapshots repository.SnapshotStore,
	source repository.MarketSource,
	collector *usecase.IndexCollector,
	proc *usecase.DvolProcessor,
	metrics repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.DvolPipeline {
	return usecase.NewDvolPipeline(snapshots, source, collector.Last, proc, metrics, log, cfg.Dvol.Workers)
}

// ProvideVovPipeline creates the daily VoV pipeline.
func ProvideVovPipeline(
	results repository.ResultStore,
	metrics repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.VovPipeline {
	return usecase.NewVovPipeline(results, metrics, log, cfg.Dvol.VovWindow, cfg.Dvol.FVovAlpha)
}

// ProvideValidation creates the validation use case.
func ProvideValidation(
	results repository.ResultStore,
	source repository.MarketSource,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.ValidationUseCase {
	return usecase.NewValidationUseCase(results, source, log, cfg.Dvol.Validation.CorrelationThreshold)
}

// ProvideIndexCollector creates the live index tick collector.
func ProvideIndexCollector(stream repository.IndexStream, metrics repository.Metrics) *usecase.IndexCollector {
	return usecase.NewIndexCollector(stream, metrics)
}

// ProvideKafkaDvolHandler registers the handler for the hourly values topic.
func ProvideKafkaDvolHandler(results repository.ResultStore, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaDvolHandler {
	return usecase.NewKafkaDvolHandler(cfg.Kafka.Topic, results, metrics)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	dvolPipe *usecase.DvolPipeline,
	vovPipe *usecase.VovPipeline,
	validation *usecase.ValidationUseCase,
	collector *usecase.IndexCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaDvolHandler,
	results repository.ResultStore,
	cache icache.BytesCache,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, log, dvolPipe, vovPipe, validation, collector, consumer, kh, results, cache, chClient)
}
