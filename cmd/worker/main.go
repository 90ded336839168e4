package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/caredash-api/internal/config"
	"github.com/jwalitptl/caredash-api/internal/repository/postgres"
	"github.com/jwalitptl/caredash-api/pkg/logger"
	"github.com/jwalitptl/caredash-api/pkg/messaging"
	"github.com/jwalitptl/caredash-api/pkg/messaging/kafka"
	"github.com/jwalitptl/caredash-api/pkg/messaging/redis"
	"github.com/jwalitptl/caredash-api/pkg/metrics"
	"github.com/jwalitptl/caredash-api/pkg/worker"
)

// Config is read from WORKER_* environment variables.
type Config struct {
	HealthAddr string `envconfig:"HEALTH_ADDR" default:":8081"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat  string `envconfig:"LOG_FORMAT" default:"json"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"caredash"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	Broker       string   `envconfig:"BROKER" default:"redis"`
	RedisURL     string   `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"caredash.events"`

	BatchSize     int           `envconfig:"BATCH_SIZE" default:"100"`
	PollInterval  time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
	RetryAttempts int           `envconfig:"RETRY_ATTEMPTS" default:"3"`
	RetryDelay    time.Duration `envconfig:"RETRY_DELAY" default:"5s"`
	Retention     time.Duration `envconfig:"RETENTION" default:"168h"`
}

func loadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("worker", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load worker config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) database() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSSLMode,
		MaxConns: 4,
	}
}

func (c *Config) processor() worker.OutboxProcessorConfig {
	return worker.OutboxProcessorConfig{
		BatchSize:     c.BatchSize,
		PollInterval:  c.PollInterval,
		RetryAttempts: c.RetryAttempts,
		RetryDelay:    c.RetryDelay,
	}
}

func newBroker(c *Config) (messaging.Broker, error) {
	switch strings.ToLower(c.Broker) {
	case config.MessagingRedis:
		return redis.NewRedisBroker(redis.Config{
			URL:          c.RedisURL,
			MaxRetries:   3,
			RetryBackoff: 100 * time.Millisecond,
		}, &log.Logger)
	case config.MessagingKafka:
		return kafka.NewKafkaBroker(kafka.Config{
			Brokers: c.KafkaBrokers,
			Topic:   c.KafkaTopic,
		}, &log.Logger)
	case config.MessagingNone:
		return messaging.NewNopBroker(), nil
	default:
		return nil, fmt.Errorf("unknown broker %q", c.Broker)
	}
}

// healthMux serves liveness, readiness against the database, and metrics.
func healthMux(ping func(context.Context) error, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}

func main() {
	// Load config
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Initialize logger
	l := logger.NewLogger(&logger.Config{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
	})
	l.SetGlobal()

	// Initialize database
	db, err := postgres.NewDB(cfg.database())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	baseRepo := postgres.NewBaseRepository(db)
	if err := baseRepo.Migrate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}
	outboxRepo := postgres.NewOutboxRepository(baseRepo)

	// Initialize broker
	broker, err := newBroker(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create broker")
	}
	defer broker.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.New(reg, "caredash_worker")

	processor := worker.NewOutboxProcessor(outboxRepo, broker, cfg.processor(), l, m)
	cleanup := worker.NewOutboxCleanupWorker(outboxRepo, cfg.Retention, time.Hour, l)

	// Setup health check endpoints
	srv := &http.Server{
		Addr:              cfg.HealthAddr,
		Handler:           healthMux(baseRepo.Ping, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Health check server failed")
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		cleanup.Start(ctx)
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down...")

	wg.Wait()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Health check server shutdown failed")
	}
}
