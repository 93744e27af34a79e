//go:build wireinject
// +build wireinject

package di

import (
	"SignalPulse/pkg/config"
	"SignalPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Metrics
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisClient,

		// Repositories (with business logic)
		ProvidePriceHistory,
		ProvideSignalPublisher,
		ProvideSignalArchive,
		ProvideQuoteStream,

		// Use cases
		ProvideSignalEngine,
		ProvideSignalEvaluator,
		ProvideQuoteProcessor,
		ProvideQuoteCollector,
		ProvideKafkaSignalsHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
