package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/junction-boxers/fleetgate/app"
	"github.com/junction-boxers/fleetgate/config"
	"github.com/junction-boxers/fleetgate/internal/observability"
	mongorepo "github.com/junction-boxers/fleetgate/repositories/mongo"
	"github.com/junction-boxers/fleetgate/routes"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fleetgate",
		Short: "Privacy-mediating gateway for drone fleet queries",
	}

	rootCmd.AddCommand(serveCmd(), seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func seedCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the fleet collection with fixture data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace existing fleet documents")
	return cmd
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	apiSrv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      routes.SetupRoutes(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("gateway listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	var metricsSrv *http.Server
	if cfg.Observability.MetricsEnabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Observability.MetricsPort),
			Handler: mux,
		}
		g.Go(func() error {
			logger.Info("metrics listening", zap.String("addr", metricsSrv.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := apiSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("api server shutdown failed", zap.Error(err))
		}
		if metricsSrv != nil {
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown failed", zap.Error(err))
			}
		}
		return deps.Close(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("gateway stopped")
	return nil
}

func runSeed(ctx context.Context, force bool) error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := mongorepo.NewDB(connectCtx, cfg.Mongo, logger)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() { _ = db.Close(context.Background()) }()

	seeder := mongorepo.NewSeeder(db, cfg.Mongo, logger)
	if err := seeder.Seed(connectCtx, force); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	logger.Info("seeding complete")
	return nil
}
