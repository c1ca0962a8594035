//go:build wireinject
// +build wireinject

package di

import (
	"VolPull/pkg/config"
	"VolPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideCache,

		// Repositories
		ProvideSnapshotStore,
		ProvideResultStore,
		ProvideDvolPublisher,
		ProvideMarketSource,
		ProvideIndexStream,

		// Use cases
		ProvideDvolProcessor,
		ProvideDvolPipeline,
		ProvideVovPipeline,
		ProvideValidation,
		ProvideIndexCollector,
		ProvideKafkaDvolHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
