package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/diogomassis/fixgo-payments/cmd/handlers"
	"github.com/diogomassis/fixgo-payments/internal/env"
	"github.com/diogomassis/fixgo-payments/internal/persistence"
	"github.com/diogomassis/fixgo-payments/internal/server"
	"github.com/diogomassis/fixgo-payments/internal/services/cache"
	"github.com/diogomassis/fixgo-payments/internal/services/health"
	"github.com/diogomassis/fixgo-payments/internal/services/orchestrator"
	"github.com/diogomassis/fixgo-payments/internal/services/processor"
)

const (
	healthInterval  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the payment HTTP server",
		Long: `Start the payment HTTP server.

Configuration is read from the environment. When GRPC_ADDR is set a gRPC
health endpoint is served alongside HTTP; when REDIS_ADDR is set payments that
were charged but could not be applied are recorded for reconciliation.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := env.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel, cfg.Environment)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := newDatastore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	dependencies := []health.Dependency{health.Probe("datastore", store.Ping)}

	var ledger cache.Ledger = cache.NopLedger{}
	if cfg.RedisAddr != "" {
		redisClient := cache.NewRedisClient(cfg.RedisAddr)
		defer redisClient.Close()
		ledger = cache.NewRedisLedger(redisClient.Raw())
		dependencies = append(dependencies, health.Probe("redis", redisClient.Ping))
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, unapplied payments will only be logged")
	}

	gateway := processor.NewBraintreeGateway(
		cfg.BraintreeEnvironment,
		cfg.BraintreeMerchantID,
		cfg.BraintreePublicKey,
		cfg.BraintreePrivateKey,
	)
	payments := orchestrator.NewPaymentOrchestrator(gateway, store, ledger, orchestrator.Config{
		ChatSenderID:              cfg.ChatSenderID,
		AppMerchantAccount:        cfg.AppMerchantAccount,
		TechnicianMerchantAccount: cfg.TechnicianMerchantAccount,
	}, logger)

	monitor := health.NewMonitor(logger, healthInterval, dependencies...)
	app := handlers.NewApp(handlers.New(payments, ledger, monitor, logger))

	var grpcServer *server.HealthServer
	if cfg.GrpcAddr != "" {
		grpcServer = server.NewHealthServer(logger)
		monitor.OnChange(func(string, bool) {
			grpcServer.SetServing(monitor.Healthy())
		})
	}

	monitor.Start()
	defer monitor.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Str("port", cfg.BackendPort).
			Str("gateway", gateway.GetName()).
			Str("braintree_environment", cfg.BraintreeEnvironment).
			Msg("http server listening")
		return app.Listen(":" + cfg.BackendPort)
	})
	if grpcServer != nil {
		g.Go(func() error {
			err := grpcServer.ListenAndServe(cfg.GrpcAddr)
			if errors.Is(err, grpc.ErrServerStopped) {
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		if grpcServer != nil {
			grpcServer.Stop()
		}
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

func newDatastore(ctx context.Context, cfg *env.EnvironmentVariables, logger zerolog.Logger) (persistence.Datastore, error) {
	if cfg.UsesDirectDatabase() {
		logger.Info().Msg("using direct postgres connection")
		return persistence.NewPostgresDatastore(ctx, cfg.DatabaseURL)
	}
	logger.Info().Str("url", cfg.SupabaseURL).Msg("using postgrest datastore")
	return persistence.NewPostgRESTDatastore(cfg.SupabaseURL, cfg.SupabaseServiceKey), nil
}
