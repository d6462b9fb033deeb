// Package main provides the entry point for the object storage simulator.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jainsameer1991/object-storage/internal/config"
	"github.com/jainsameer1991/object-storage/internal/health"
	"github.com/jainsameer1991/object-storage/internal/metrics"
	"github.com/jainsameer1991/object-storage/internal/server"
	"github.com/jainsameer1991/object-storage/internal/service"
	"github.com/jainsameer1991/object-storage/internal/store"
	"github.com/jainsameer1991/object-storage/internal/topology"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logging)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("simulator exited with error", zap.Error(err))
	}
	logger.Info("simulator shutdown complete")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("starting object storage simulator",
		zap.Int("server_port", cfg.Server.Port),
		zap.Int("partition_servers", cfg.Cluster.PartitionServers),
		zap.Int("extent_nodes", cfg.Cluster.ExtentNodes),
		zap.Duration("election_delay", cfg.Cluster.ElectionDelay),
	)

	files, err := cfg.Cluster.ResolveFiles()
	if err != nil {
		return err
	}

	registry, err := topology.NewRegistry(cfg.Cluster.PartitionServers, cfg.Cluster.ExtentNodes)
	if err != nil {
		return fmt.Errorf("failed to build topology: %w", err)
	}

	m := metrics.NewMetrics()
	for _, name := range registry.Names() {
		m.SetComponentUp(name, true)
	}

	assignments := service.NewAssignmentService(registry, service.NewRandomPicker(cfg.Cluster.RebalanceSeed), logger)
	st := store.NewMemoryStore(registry.Names(), assignments.InitialAssign(files))
	if err := st.Verify(); err != nil {
		return fmt.Errorf("initial cluster state is inconsistent: %w", err)
	}

	elections := service.NewElectionScheduler(cfg.Cluster.ElectionDelay, logger)

	status := service.NewStatusService(st, registry, assignments, elections, m, logger)
	routing := service.NewRoutingService(st, registry, m, logger)
	healthCheck := health.NewHealthCheck(st, m, logger)

	httpServer := server.NewServer(cfg, status, routing, healthCheck, m, logger)
	httpServer.SetupRoutes()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(httpServer.Start)
	g.Go(func() error { return healthCheck.Run(ctx) })

	var metricsServer *metrics.MetricsServer
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path, logger)
		g.Go(metricsServer.Start)
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("initiating graceful shutdown")
		healthCheck.SetDraining()
		elections.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown HTTP server", zap.Error(err))
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("failed to shutdown metrics server", zap.Error(err))
			}
		}
		return nil
	})

	return g.Wait()
}

// initLogger builds the zap logger from config. LOG_LEVEL overrides the configured level.
func initLogger(cfg config.LoggingConfig) *zap.Logger {
	logLevel := cfg.Level
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		logLevel = env
	}

	var level zapcore.Level
	switch logLevel {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zcfg zap.Config
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	output := cfg.Output
	if output == "" {
		output = "stdout"
	}

	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{output}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zcfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	return logger
}
