package di

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	drepo "StockMon/internal/domain/repository"
	handler "StockMon/internal/handler/api"
	internalrepo "StockMon/internal/repository"
	"StockMon/internal/service/finnhub"
	"StockMon/internal/service/kafkafeed"
	"StockMon/internal/service/redisfeed"
	"StockMon/internal/service/simulator"
	"StockMon/internal/usecase"
	"StockMon/pkg/config"
	xhttp "StockMon/pkg/http"
	pkgkafka "StockMon/pkg/kafka"
	"StockMon/pkg/logger"
	"StockMon/pkg/metrics"
	pkgredis "StockMon/pkg/redis"
	"StockMon/pkg/server"
	"StockMon/pkg/signal"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideRegistry creates the Prometheus registry shared by every collector.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) *metrics.Recorder {
	return metrics.New(reg)
}

// ProvideRedisClient creates the Redis client. It does not dial until used.
func ProvideRedisClient(cfg *config.Config, log *logger.Logger) (*pkgredis.Client, func()) {
	c := pkgredis.New(
		pkgredis.WithAddr(cfg.Redis.Addr),
		pkgredis.WithPassword(cfg.Redis.Password),
		pkgredis.WithDB(cfg.Redis.DB),
	)
	return c, func() {
		if err := c.Close(); err != nil {
			log.Warn("redis close", logger.Error(err))
		}
	}
}

// ProvideQuoteFeed selects the feed named by feed.type.
func ProvideQuoteFeed(cfg *config.Config, rc *pkgredis.Client, log *logger.Logger) (drepo.QuoteFeed, error) {
	switch cfg.Feed.Type {
	case "sim":
		return simulator.New(cfg.Feed.Symbols, cfg.Simulator.Interval, cfg.Simulator.Volatility, cfg.Simulator.Seed), nil
	case "finnhub":
		return finnhub.New(cfg.Finnhub.APIKey, cfg.Finnhub.WebSocketURL, cfg.Codes(), cfg.Finnhub.PingInterval, log), nil
	case "kafka":
		return kafkafeed.New(cfg.Kafka.QuotesTopic, log,
			pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithConsumerGroupID(cfg.Kafka.GroupID),
			pkgkafka.WithConsumerWorkers(cfg.Kafka.Workers),
		), nil
	case "redis":
		return redisfeed.New(rc, cfg.Redis.Channel, log), nil
	default:
		return nil, fmt.Errorf("unknown feed type %q", cfg.Feed.Type)
	}
}

// ProvideAlertPublisher fans alerts out to Kafka and Redis when enabled.
func ProvideAlertPublisher(cfg *config.Config, rc *pkgredis.Client, reg *prometheus.Registry, log *logger.Logger) (drepo.AlertPublisher, error) {
	var sinks internalrepo.FanoutPublisher
	if cfg.Kafka.AlertsEnabled {
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
			pkgkafka.WithHashByKey(true),
			pkgkafka.WithProducerMetrics(reg),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		sinks = append(sinks, internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.AlertsTopic, cfg.Kafka.WriteTimeout, internalrepo.BreakerSettings{}, log))
	}
	if cfg.Redis.AlertsChannel != "" {
		sinks = append(sinks, internalrepo.NewRedisAlertPublisher(rc, cfg.Redis.AlertsChannel))
	}
	switch len(sinks) {
	case 0:
		return internalrepo.NoopPublisher{}, nil
	case 1:
		return sinks[0], nil
	default:
		return sinks, nil
	}
}

// ProvideForegroundLoop creates the loop the console and view model run on.
func ProvideForegroundLoop() *signal.Loop {
	return signal.NewLoop("main")
}

// ProvideStockService creates the quote collecting service.
func ProvideStockService(cfg *config.Config, feed drepo.QuoteFeed, rec *metrics.Recorder, log *logger.Logger) *usecase.StockService {
	return usecase.NewStockService(feed, rec, log, usecase.ServiceConfig{
		Interval:       cfg.Feed.Interval,
		Stocks:         cfg.Feed.Symbols,
		MaxRPS:         cfg.Feed.MaxRPS,
		ReconnectDelay: cfg.Finnhub.ReconnectDelay,
	})
}

// ProvideStockProcessor creates the background worker.
func ProvideStockProcessor(pub drepo.AlertPublisher, rec *metrics.Recorder, log *logger.Logger) *usecase.StockProcessor {
	return usecase.NewStockProcessor(pub, rec, log)
}

// ProvideViewModel creates the view model on the foreground loop.
func ProvideViewModel(fg *signal.Loop, log *logger.Logger) *usecase.StockViewModel {
	return usecase.NewStockViewModel(fg, log)
}

// ProvideHTTPServer creates the metrics and status server, or nil when
// metrics are disabled.
func ProvideHTTPServer(
	cfg *config.Config,
	reg *prometheus.Registry,
	svc *usecase.StockService,
	proc *usecase.StockProcessor,
	log *logger.Logger,
) *xhttp.Server {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return xhttp.NewServer(handler.NewStatusHandler(log, svc, proc),
		xhttp.WithHost(cfg.Metrics.Host),
		xhttp.WithPort(cfg.Metrics.Port),
		xhttp.WithRegistry(reg),
		xhttp.WithLogger(log),
	)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	rec *metrics.Recorder,
	fg *signal.Loop,
	svc *usecase.StockService,
	proc *usecase.StockProcessor,
	vm *usecase.StockViewModel,
	httpServer *xhttp.Server,
) *server.App {
	return server.New(cfg, log, rec, fg, svc, proc, vm, httpServer)
}
