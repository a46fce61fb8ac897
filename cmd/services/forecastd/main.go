package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/finsightapp/finsight/internal/analytics/forecast"
	"github.com/finsightapp/finsight/internal/config"
	"github.com/finsightapp/finsight/internal/grpc"
	"github.com/finsightapp/finsight/internal/jobs"
	"github.com/finsightapp/finsight/internal/logging"
	"github.com/finsightapp/finsight/internal/metrics"
	"github.com/finsightapp/finsight/internal/models"
	"github.com/finsightapp/finsight/internal/queue"
	"github.com/finsightapp/finsight/internal/registry"
	"github.com/finsightapp/finsight/internal/router"
	"github.com/finsightapp/finsight/internal/services"
	"github.com/finsightapp/finsight/internal/utils"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	noWorker := flag.Bool("no-worker", false, "Serve the HTTP API only, without consuming queued jobs")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Forecast service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime,
		"engine", forecast.EngineName, "engine_version", forecast.EngineVersion)

	// Forecast engine anchored in the configured zone
	locale, err := cfg.Forecast.GetLocale()
	if err != nil {
		logger.Fatal("Invalid forecast locale", "error", err)
	}
	loc := cfg.Forecast.GetTimezone()
	engine := forecast.NewEngine(
		forecast.WithClock(func() time.Time { return time.Now().In(loc) }),
		forecast.WithLocale(locale),
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}
	forecastService := services.NewForecastService(logger, engine, cfg.Forecast, m)

	workerID := cfg.Registry.WorkerID
	if workerID == "" {
		workerID = "forecaster-" + uuid.New().String()[:8]
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to Queue (configurable backend)
	var (
		submitter *jobs.Submitter
		worker    *jobs.Worker
	)
	logger.Info("Connecting to Queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)
	queueClient, err := queue.NewQueue(cfg.Queue)
	if err != nil {
		logger.Warn("Queue unavailable, asynchronous jobs disabled", "error", err)
	} else {
		defer func() { _ = queueClient.Close() }()

		codec, err := jobs.NewCodec(cfg.Queue.Compression)
		if err != nil {
			logger.Fatal("Invalid queue compression", "error", err)
		}
		submitter = jobs.NewSubmitter(queueClient, cfg.Queue.RequestSubject, codec)

		if !*noWorker {
			worker = jobs.NewWorker(jobs.WorkerConfig{
				ID:             workerID,
				RequestSubject: cfg.Queue.RequestSubject,
				ResultSubject:  cfg.Queue.ResultSubject,
				Codec:          codec,
			}, logger, forecastService, queueClient, m)
			if err := worker.Start(); err != nil {
				logger.Fatal("Failed to start forecast worker", "error", err)
			}
		}
		logger.Info("Queue connection established", "worker", worker != nil)
	}

	// gRPC health reports SERVING while the worker consumes jobs
	healthServer := grpc.NewHealthServer(cfg.GetGRPCAddress(), func() bool {
		return worker == nil || worker.Running()
	}, logger)
	if _, err := healthServer.Listen(); err != nil {
		logger.Fatal("Failed to start gRPC health server", "error", err)
	}
	go func() {
		if err := healthServer.Serve(ctx); err != nil {
			logger.Error("gRPC health server stopped", "error", err)
		}
	}()

	// Register in etcd so clients can discover the worker
	regCtx, regCancel := context.WithCancel(ctx)
	defer regCancel()
	var registration *registry.WorkerRegistration
	if cfg.Registry.Enabled && worker != nil {
		var etcdClient *clientv3.Client
		registration, etcdClient = registerWorker(regCtx, cfg, logger, workerID, worker)
		if etcdClient != nil {
			defer func() { _ = etcdClient.Close() }()
		}
	}

	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	app := router.New(logger, router.Dependencies{
		ForecastService: forecastService,
		Submitter:       submitter,
		Metrics:         m,
	}, *cfg)

	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer shutdownCancel()

	if registration != nil {
		if err := registration.SetStatus(shutdownCtx, models.WorkerStatusDraining); err != nil {
			logger.Warn("Failed to mark worker draining", "error", err)
		}
	}
	if worker != nil {
		if err := worker.Stop(); err != nil {
			logger.Error("Failed to stop forecast worker", "error", err)
		}
	}
	if registration != nil {
		regCancel()
		if err := registration.Deregister(shutdownCtx); err != nil {
			logger.Warn("Failed to deregister worker", "error", err)
		}
	}

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	cancel()

	logger.Info("Server exited")
}

// registerWorker publishes the worker record in etcd and keeps it alive
// until ctx is cancelled. Failures are logged and leave the worker running
// unregistered.
func registerWorker(
	ctx context.Context,
	cfg *config.Config,
	logger *logging.Logger,
	workerID string,
	worker *jobs.Worker,
) (*registry.WorkerRegistration, *clientv3.Client) {
	logger.Info("Connecting to etcd", "endpoints", cfg.Registry.Endpoints)
	client, err := registry.NewClient(cfg.Registry)
	if err != nil {
		logger.Error("Failed to connect to etcd, worker not registered", "error", err)
		return nil, nil
	}

	methods := make([]string, 0, len(forecast.Methods))
	for _, method := range forecast.Methods {
		methods = append(methods, method.String())
	}

	registration := registry.NewWorkerRegistration(client, models.WorkerInfo{
		ID:      workerID,
		Address: cfg.GetAdvertiseAddress(),
		Status:  models.WorkerStatusActive,
		Engine:  forecast.EngineName,
		Version: forecast.EngineVersion,
		Methods: methods,
		Subject: cfg.Queue.RequestSubject,
	}, cfg.Registry.LeaseTTL, worker.Stats, logger)

	if err := registration.Register(ctx); err != nil {
		logger.Error("Failed to register worker", "error", err)
		return nil, client
	}
	logger.Info("Worker registered", "worker_id", workerID, "key", registry.WorkerKey(workerID))
	return registration, client
}
