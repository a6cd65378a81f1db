package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bibbank/breachrisk/internal/application/usecase"
	infraKafka "github.com/bibbank/breachrisk/internal/infrastructure/kafka"
	grpcPresentation "github.com/bibbank/breachrisk/internal/presentation/grpc"
	"github.com/bibbank/breachrisk/internal/presentation/rest"
	"github.com/bibbank/breachrisk/pkg/auth"
	"github.com/bibbank/breachrisk/pkg/observability"
	"github.com/bibbank/breachrisk/pkg/postgres"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions over HTTP and gRPC",
		Long: "Serve loads the stored model, training one when none exists, and serves\n" +
			"the risk API over HTTP and gRPC until SIGINT or SIGTERM. With Kafka\n" +
			"ingestion enabled, incident messages are imported as they arrive.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg
	logger := a.logger
	logger.Info("starting riskd",
		"version", version,
		"grpc_port", cfg.Server.GRPCPort,
		"http_port", cfg.Server.HTTPPort,
		"model_kind", cfg.Model.Kind,
	)

	if err := a.enableMetrics(); err != nil {
		return err
	}
	if cfg.Tracing.Enabled {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: cfg.Server.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			Insecure:    cfg.Tracing.Insecure,
		})
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				logger.Warn("tracer shutdown", "error", err)
			}
		}()
	}

	var jwtSvc *auth.JWTService
	if cfg.Auth.Enabled() {
		if jwtSvc, err = auth.NewJWTService(cfg.Auth.JWT); err != nil {
			return fmt.Errorf("initialize JWT service: %w", err)
		}
		logger.Info("bearer token authentication enabled", "issuer", cfg.Auth.JWT.Issuer)
	}

	// Use cases.
	train := a.trainModel()
	predict := usecase.NewPredictRisk(a.active, a.records, a.publisher, a.metrics, logger)
	magnitude := usecase.NewPredictMagnitude(a.active, a.metrics, logger)
	info := usecase.NewGetModelInfo(a.active)
	importer := usecase.NewImportRecords(a.records, train, logger)

	md, err := usecase.NewLoadModel(a.artifacts, a.active, train, logger).Execute(ctx, cfg.Training.RetrainOnStart)
	if err != nil {
		return fmt.Errorf("bootstrap model: %w", err)
	}
	logger.Info("serving model", "version", md.Version, "kind", md.Kind, "synthetic", md.Synthetic)

	// gRPC server.
	grpcServer, err := grpcPresentation.NewServer(
		grpcPresentation.NewHandler(predict, magnitude, train, info, logger),
		grpcPresentation.ServerConfig{
			Port:        cfg.Server.GRPCPort,
			ServiceName: cfg.Server.ServiceName,
			TLS:         cfg.Server.TLS,
			Reflection:  cfg.Server.Reflection,
		},
		jwtSvc,
		logger,
	)
	if err != nil {
		return err
	}
	grpcServer.SetReady(true)

	// HTTP server.
	checks := map[string]rest.ReadinessCheck{
		"model": func(context.Context) error {
			if !a.active.Ready() {
				return errors.New("no model published")
			}
			return nil
		},
	}
	if a.pool != nil {
		checks["database"] = func(ctx context.Context) error { return postgres.HealthCheck(ctx, a.pool) }
	}
	router := rest.NewRouter(
		rest.RouterConfig{
			CORSOrigins: cfg.Server.CORSOrigins,
			RateLimit:   cfg.Server.RateLimit,
			RateWindow:  cfg.Server.RateWindow,
		},
		rest.NewHandler(rest.UseCases{
			Predict:    predict,
			Magnitude:  magnitude,
			Train:      train,
			Info:       info,
			Statistics: usecase.NewGetStatistics(a.records),
			Import:     importer,
			Export:     usecase.NewExportRecords(a.records),
			History:    a.history,
		}, logger),
		rest.NewHealthHandler(cfg.Server.ServiceName, checks, logger),
		a.metricsHandler,
		jwtSvc,
	)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
	if cfg.Server.TLS.Enabled() {
		if httpServer.TLSConfig, err = cfg.Server.TLS.ServerConfig(); err != nil {
			return fmt.Errorf("http tls: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(grpcServer.Start)

	g.Go(func() error {
		logger.Info("HTTP server starting", "addr", httpServer.Addr)
		var err error
		if httpServer.TLSConfig != nil {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if cfg.Kafka.Ingest {
		consumer, err := infraKafka.NewIngestConsumer(
			cfg.Kafka.Client(),
			cfg.Kafka.IngestTopic,
			infraKafka.NewIngestHandler(importer, cfg.Training.RetrainOnIngest, logger),
			logger,
		)
		if err != nil {
			return fmt.Errorf("create ingest consumer: %w", err)
		}
		defer consumer.Close()
		g.Go(func() error {
			if err := consumer.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("ingest consumer: %w", err)
			}
			return nil
		})
	}

	// Graceful shutdown once a signal arrives or any server fails.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		grpcServer.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	logger.Info("riskd stopped")
	return nil
}
