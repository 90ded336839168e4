package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/caredash-api/internal/config"
	"github.com/jwalitptl/caredash-api/internal/email"
	"github.com/jwalitptl/caredash-api/internal/handler"
	appointmentHandler "github.com/jwalitptl/caredash-api/internal/handler/appointment"
	authHandler "github.com/jwalitptl/caredash-api/internal/handler/auth"
	doctorHandler "github.com/jwalitptl/caredash-api/internal/handler/doctor"
	"github.com/jwalitptl/caredash-api/internal/handler/health"
	overviewHandler "github.com/jwalitptl/caredash-api/internal/handler/overview"
	patientHandler "github.com/jwalitptl/caredash-api/internal/handler/patient"
	uploadHandler "github.com/jwalitptl/caredash-api/internal/handler/upload"
	"github.com/jwalitptl/caredash-api/internal/middleware"
	"github.com/jwalitptl/caredash-api/internal/repository"
	"github.com/jwalitptl/caredash-api/internal/repository/file"
	"github.com/jwalitptl/caredash-api/internal/repository/memory"
	"github.com/jwalitptl/caredash-api/internal/repository/postgres"
	"github.com/jwalitptl/caredash-api/internal/router"
	appointmentService "github.com/jwalitptl/caredash-api/internal/service/appointment"
	authService "github.com/jwalitptl/caredash-api/internal/service/auth"
	doctorService "github.com/jwalitptl/caredash-api/internal/service/doctor"
	eventService "github.com/jwalitptl/caredash-api/internal/service/event"
	overviewService "github.com/jwalitptl/caredash-api/internal/service/overview"
	patientService "github.com/jwalitptl/caredash-api/internal/service/patient"
	uploadService "github.com/jwalitptl/caredash-api/internal/service/upload"
	"github.com/jwalitptl/caredash-api/pkg/auth"
	"github.com/jwalitptl/caredash-api/pkg/logger"
	"github.com/jwalitptl/caredash-api/pkg/messaging"
	"github.com/jwalitptl/caredash-api/pkg/messaging/kafka"
	"github.com/jwalitptl/caredash-api/pkg/messaging/redis"
	"github.com/jwalitptl/caredash-api/pkg/metrics"
	"github.com/jwalitptl/caredash-api/pkg/security"
	"github.com/jwalitptl/caredash-api/pkg/validator"
	"github.com/jwalitptl/caredash-api/pkg/worker"
)

// bodyOverhead is the multipart framing allowed on top of upload.max_bytes.
const bodyOverhead = 64 << 10

type storage struct {
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
	outbox       repository.OutboxRepository
	health       repository.HealthChecker
	// relay is true when the outbox lives in this process and has to be
	// drained here rather than by cmd/worker.
	relay  bool
	closer io.Closer
}

type app struct {
	cfg          *config.Config
	logger       *logger.Logger
	engine       *gin.Engine
	storage      *storage
	broker       messaging.Broker
	appointments *appointmentService.Service

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			return nil, err
		}
		base := postgres.NewBaseRepository(db)
		if err := base.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &storage{
			doctors:      postgres.NewDoctorRepository(base),
			patients:     postgres.NewPatientRepository(base),
			appointments: postgres.NewAppointmentRepository(base),
			outbox:       postgres.NewOutboxRepository(base),
			health:       &base,
			closer:       db,
		}, nil
	default:
		store := file.NewStore(cfg.Storage.DataDir)
		return &storage{
			doctors:      file.NewDoctorRepository(store),
			patients:     file.NewPatientRepository(store),
			appointments: file.NewAppointmentRepository(store),
			outbox:       memory.NewOutboxRepository(),
			health:       store,
			relay:        true,
		}, nil
	}
}

func newBroker(cfg *config.Config) (messaging.Broker, error) {
	switch cfg.Messaging.Driver {
	case config.MessagingRedis:
		return redis.NewRedisBroker(redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   3,
			RetryBackoff: 100 * time.Millisecond,
			PoolSize:     cfg.Redis.PoolSize,
		}, &log.Logger)
	case config.MessagingKafka:
		return kafka.NewKafkaBroker(kafka.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}, &log.Logger)
	default:
		return messaging.NewNopBroker(), nil
	}
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func newApp(ctx context.Context, cfg *config.Config, l *logger.Logger) (*app, error) {
	reg := newRegistry()
	m := metrics.New(reg, "caredash")

	// Initialize storage
	st, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// The patient-info template is a bundled asset, never a database row.
	dataDir := file.NewStore(cfg.Storage.DataDir)

	// Initialize services
	snapshots := cache.New(cfg.Cache.TTL, cfg.Cache.Cleanup)
	doctorSvc := doctorService.NewService(st.doctors, snapshots, cfg.Cache.TTL, m)
	patientSvc := patientService.NewService(st.patients, snapshots, cfg.Cache.TTL, m)
	overviewSvc := overviewService.NewService(doctorSvc, patientSvc)
	uploadSvc := uploadService.NewService(file.NewPatientInfoRepository(dataDir), m)

	v := validator.New()
	eventSvc := eventService.NewEventService(st.outbox)
	appointmentSvc := appointmentService.NewService(st.appointments, v, eventSvc, email.New(cfg.Email), m)

	jwtSvc := auth.NewJWTService(cfg.Auth.Secret, cfg.Server.ServiceName, cfg.Auth.TokenTTL)
	authSvc := authService.NewService(cfg.Auth, security.NewBcryptHasher(0), jwtSvc)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, cfg.Auth.Enabled)

	// Initialize handlers
	opts := handler.ListOptions{
		DefaultPageSize: cfg.Query.DefaultPageSize,
		MaxPageSize:     cfg.Query.MaxPageSize,
	}
	healthHandler := health.NewHandler(cfg.Server.ServiceName, st.health, reg)

	routerConfig := router.RouterConfig{
		Mode: cfg.Server.Mode,
		CORSConfig: middleware.CORSConfig{
			AllowOrigins: cfg.CORS.AllowedOrigins,
			MaxAge:       12 * time.Hour,
		},
		Timeout:      cfg.Server.WriteTimeout,
		MaxBodyBytes: cfg.Upload.MaxBytes + bodyOverhead,
		Metrics:      m,
	}
	if cfg.RateLimit.Enabled {
		routerConfig.RateLimit = &middleware.RateLimiterConfig{
			RPS:     cfg.RateLimit.RPS,
			Burst:   cfg.RateLimit.Burst,
			IdleTTL: 10 * time.Minute,
		}
	}

	// Setup router
	r := router.NewRouter(
		routerConfig,
		[]router.RootHandler{healthHandler},
		healthHandler,
		doctorHandler.NewHandler(doctorSvc, opts),
		patientHandler.NewHandler(patientSvc, opts),
		overviewHandler.NewHandler(overviewSvc),
		uploadHandler.NewHandler(uploadSvc, cfg.Upload.MaxBytes),
		appointmentHandler.NewHandler(appointmentSvc, opts, authMiddleware.Operator()...),
		authHandler.NewHandler(authSvc, v),
	)

	a := &app{
		cfg:          cfg,
		logger:       l,
		engine:       r.Setup(),
		storage:      st,
		broker:       messaging.NewNopBroker(),
		appointments: appointmentSvc,
	}

	if st.relay {
		broker, err := newBroker(cfg)
		if err != nil {
			a.closeStorage()
			return nil, fmt.Errorf("failed to initialize broker: %w", err)
		}
		a.broker = broker
		a.startRelay(ctx, m)
	}

	return a, nil
}

// startRelay runs the outbox processor and its cleanup in this process.
func (a *app) startRelay(ctx context.Context, m *metrics.Metrics) {
	ctx, a.cancel = context.WithCancel(ctx)

	processor := worker.NewOutboxProcessor(
		a.storage.outbox,
		a.broker,
		worker.OutboxProcessorConfig{
			BatchSize:     a.cfg.Outbox.BatchSize,
			PollInterval:  a.cfg.Outbox.PollInterval,
			RetryAttempts: a.cfg.Outbox.RetryAttempts,
			RetryDelay:    a.cfg.Outbox.RetryDelay,
		},
		a.logger,
		m,
	)
	cleanup := worker.NewOutboxCleanupWorker(a.storage.outbox, a.cfg.Outbox.Retention, time.Hour, a.logger)

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer a.wg.Done()
		cleanup.Start(ctx)
	}()
}

func (a *app) server() *http.Server {
	return &http.Server{
		Addr:              a.cfg.Server.Addr(),
		Handler:           a.engine,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
	}
}

func (a *app) closeStorage() {
	if a.storage.closer == nil {
		return
	}
	if err := a.storage.closer.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close storage")
	}
}

// Close stops background work in dependency order: pending notification
// emails first, then the outbox relay, then the broker and storage.
func (a *app) Close() error {
	a.appointments.Wait()
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()

	var err error
	if cerr := a.broker.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("failed to close broker: %w", cerr))
	}
	if a.storage.closer != nil {
		if cerr := a.storage.closer.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close storage: %w", cerr))
		}
	}
	return err
}
