package di

import (
	"context"
	"fmt"
	"time"

	"SignalPulse/internal/domain/repository"
	domsvc "SignalPulse/internal/domain/service"
	mid "SignalPulse/internal/middleware"
	internalrepo "SignalPulse/internal/repository"
	"SignalPulse/internal/service/quotes"
	"SignalPulse/internal/services/indicators"
	"SignalPulse/internal/services/strategy"
	"SignalPulse/internal/usecase"
	pkgch "SignalPulse/pkg/clickhouse"
	"SignalPulse/pkg/config"
	pkgkafka "SignalPulse/pkg/kafka"
	"SignalPulse/pkg/metrics"
	"SignalPulse/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
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

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		`CREATE TABLE IF NOT EXISTS ` + db + `.signals (
			ts DateTime,
			asset String,
			price Float64,
			verdict String,
			confidence String,
			confirmations UInt8,
			short_ma Float64,
			long_ma Float64,
			rsi Float64,
			support Float64,
			resistance Float64,
			position_pct Float64,
			trend String,
			rationale String
		) ENGINE=MergeTree ORDER BY (asset, ts)`,
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
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
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
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
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideRedisClient creates the Redis client backing the price history.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvidePriceHistory creates the Redis-backed rolling price history.
func ProvidePriceHistory(rdb *redis.Client, cfg *config.Config) repository.PriceHistory {
	opts := []internalrepo.HistoryOption{}
	if cfg.Redis.KeyPrefix != "" {
		opts = append(opts, internalrepo.WithHistoryKeyPrefix(cfg.Redis.KeyPrefix))
	}
	if cfg.Redis.MaxHistory > 0 {
		opts = append(opts, internalrepo.WithHistoryMaxEntries(cfg.Redis.MaxHistory))
	}
	return internalrepo.NewRedisPriceHistory(rdb, opts...)
}

// ProvideSignalPublisher creates the Kafka publisher for actionable signals.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SignalPublisher {
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic)
}

// ProvideSignalArchive creates the ClickHouse signal archive.
func ProvideSignalArchive(chClient *pkgch.Client, cfg *config.Config) repository.SignalArchive {
	return internalrepo.NewClickHouseSignalStore(chClient.DB(), cfg.ClickHouse.Database+".signals")
}

// ProvideQuoteStream creates the quote stream for the configured transport.
func ProvideQuoteStream(cfg *config.Config) repository.QuoteStream {
	if cfg.Quotes.Transport == "rest" {
		return quotes.NewREST(
			cfg.Quotes.APIKey,
			cfg.Quotes.RESTURL,
			cfg.Quotes.Assets,
			cfg.Quotes.PollInterval,
		)
	}
	return quotes.New(
		cfg.Quotes.APIKey,
		cfg.Quotes.WebSocketURL,
		cfg.Quotes.Assets,
		cfg.Quotes.ReconnectDelay,
		cfg.Quotes.PingInterval,
	)
}

// ProvideSignalEngine creates the strategy engine from config.
func ProvideSignalEngine(cfg *config.Config) domsvc.SignalEngine {
	return strategy.NewEngine(
		strategy.WithIndicatorConfig(indicators.Config{
			ShortWindow:             cfg.Engine.ShortWindow,
			LongWindow:              cfg.Engine.LongWindow,
			RSIWindow:               cfg.Engine.RSIWindow,
			SupportResistanceWindow: cfg.Engine.SupportResistanceWindow,
		}),
		strategy.WithMinConfirmations(cfg.Engine.MinConfirmations),
	)
}

// ProvideSignalEvaluator creates the periodic evaluator use case.
func ProvideSignalEvaluator(
	history repository.PriceHistory,
	engine domsvc.SignalEngine,
	pub repository.SignalPublisher,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.SignalEvaluator {
	return usecase.NewSignalEvaluator(
		history,
		engine,
		pub,
		metrics,
		cfg.Quotes.Assets,
		usecase.WithSeriesLen(cfg.Engine.HistoryDepth),
		usecase.WithInterval(cfg.Engine.Interval),
	)
}

// ProvideQuoteProcessor creates the quote ingestion use case.
func ProvideQuoteProcessor(history repository.PriceHistory, metrics repository.Metrics) *usecase.QuoteProcessor {
	return usecase.NewQuoteProcessor(history, metrics)
}

// ProvideQuoteCollector creates the quote collector use case.
func ProvideQuoteCollector(
	stream repository.QuoteStream,
	processor *usecase.QuoteProcessor,
	metrics repository.Metrics,
) *usecase.QuoteCollector {
	// Build middleware pipeline between WebSocket and the history store
	pipe := mid.NewQuotePipeline(processor, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewQuoteCollector(stream, processor, metrics, pipe)
}

// ProvideKafkaSignalsHandler registers the handler for the signals topic.
func ProvideKafkaSignalsHandler(archive repository.SignalArchive, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaSignalsHandler {
	return usecase.NewKafkaSignalsHandler(cfg.Kafka.Topic, archive, metrics)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.QuoteCollector,
	evaluator *usecase.SignalEvaluator,
	archive repository.SignalArchive,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaSignalsHandler,
	chClient *pkgch.Client,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	return server.New(cfg, collector, evaluator, archive, consumer, kh, chClient)
}
