package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/breachrisk/internal/application/usecase"
	"github.com/bibbank/breachrisk/internal/domain/port"
	"github.com/bibbank/breachrisk/internal/domain/service"
	badgerstore "github.com/bibbank/breachrisk/internal/infrastructure/badger"
	"github.com/bibbank/breachrisk/internal/infrastructure/config"
	infraKafka "github.com/bibbank/breachrisk/internal/infrastructure/kafka"
	"github.com/bibbank/breachrisk/internal/infrastructure/memory"
	"github.com/bibbank/breachrisk/internal/infrastructure/messaging"
	infraPostgres "github.com/bibbank/breachrisk/internal/infrastructure/postgres"
	"github.com/bibbank/breachrisk/internal/presentation/rest"
	"github.com/bibbank/breachrisk/pkg/kafka"
	"github.com/bibbank/breachrisk/pkg/observability"
	"github.com/bibbank/breachrisk/pkg/postgres"
)

// app holds the wired infrastructure shared by every subcommand.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	pool      *pgxpool.Pool
	records   port.RecordStore
	artifacts port.ArtifactStore
	history   rest.ModelHistory
	publisher port.EventPublisher
	active    *service.ActiveArtifacts

	metrics        *usecase.Metrics
	metricsHandler http.Handler

	closers []func() error
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

// newApp loads configuration and opens the record store, the artifact store
// and the event publisher.
func newApp(ctx context.Context) (_ *app, err error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg: cfg,
		logger: observability.InitLogger(observability.LogConfig{
			Level:   cfg.Log.Level,
			Format:  cfg.Log.Format,
			Service: cfg.Server.ServiceName,
		}),
		active:  service.NewActiveArtifacts(),
		metrics: usecase.NopMetrics(),
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if err := a.openRecords(ctx); err != nil {
		return nil, err
	}
	if err := a.openArtifacts(); err != nil {
		return nil, err
	}
	if err := a.openPublisher(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) openRecords(ctx context.Context) error {
	db := a.cfg.Database
	if db.Driver == config.DriverMemory {
		a.records = memory.NewRecordStore()
		a.logger.Info("using in-memory record store")
		return nil
	}

	pc := db.Postgres
	pc.URL = db.DSN()
	pool, err := postgres.NewPool(ctx, pc)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	a.pool = pool
	a.closers = append(a.closers, func() error { pool.Close(); return nil })

	if db.Migrate {
		if err := postgres.RunMigrations(infraPostgres.Migrations, infraPostgres.MigrationsDir, db.DSN()); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		a.logger.Info("database migrations applied")
	}
	a.records = infraPostgres.NewIncidentRepository(pool)
	return nil
}

func (a *app) openArtifacts() error {
	ac := a.cfg.Artifacts
	db, err := badgerstore.Open(badgerstore.Config{Path: ac.Dir, InMemory: ac.InMemory, Logger: a.logger})
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	store := badgerstore.NewArtifactStore(db, ac.History, a.logger)
	a.artifacts = store
	a.history = store
	a.logger.Info("artifact store opened", "dir", ac.Dir, "in_memory", ac.InMemory)
	return nil
}

func (a *app) openPublisher() error {
	kc := a.cfg.Kafka
	if !kc.Enabled {
		a.publisher = messaging.NewLogPublisher(a.logger)
		return nil
	}

	producer, err := kafka.NewProducer(kc.Client())
	if err != nil {
		return fmt.Errorf("create kafka producer: %w", err)
	}
	a.closers = append(a.closers, producer.Close)

	breaker := infraKafka.DefaultBreakerConfig()
	if kc.BreakerWindow > 0 {
		breaker.OpenTimeout = kc.BreakerWindow
	}
	a.publisher = infraKafka.NewEventPublisher(producer, kc.EventsTopic, breaker, a.logger)
	a.logger.Info("kafka event publisher created", "topic", kc.EventsTopic, "brokers", kc.Brokers)
	return nil
}

// enableMetrics swaps the no-op instruments for Prometheus-backed ones.
func (a *app) enableMetrics() error {
	provider, handler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: a.cfg.Server.ServiceName})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	a.closers = append(a.closers, func() error { return provider.Shutdown(context.Background()) })

	m, err := usecase.NewMetrics(provider.Meter("github.com/bibbank/breachrisk"))
	if err != nil {
		return fmt.Errorf("create instruments: %w", err)
	}
	a.metrics = m
	a.metricsHandler = handler
	return nil
}

func (a *app) trainModel() *usecase.TrainModel {
	return usecase.NewTrainModel(
		a.records,
		a.artifacts,
		a.active,
		service.NewTrainer(a.cfg.Trainer(), a.logger),
		a.publisher,
		a.metrics,
		a.logger,
	)
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
