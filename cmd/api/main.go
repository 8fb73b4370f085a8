package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food-catalog/internal/config"
	"food-catalog/internal/database"
	"food-catalog/internal/logger"
	"food-catalog/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// In-flight requests get 30 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")
	done <- true
}

// setup loads configuration, builds the logger and connects to the database
func setup(ctx context.Context) (*config.Config, *zap.Logger, database.Service, error) {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, err
	}

	return cfg, log, db, nil
}

func serve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, log, db, err := setup(ctx)
	if err != nil {
		return err
	}

	log.Info("Starting food catalog API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)
	log.Info("Database health check", zap.Any("health", db.Health(ctx)))

	if err := database.RunMigrations(db.DB().DB, log); err != nil {
		db.Close()
		return err
	}

	srv, err := server.NewServer(ctx, cfg, log, db)
	if err != nil {
		db.Close()
		return err
	}

	done := make(chan bool, 1)
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}

	<-done
	log.Info("Graceful shutdown complete")
	return nil
}

func migrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, db, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			defer log.Sync()

			return database.RunMigrations(db.DB().DB, log)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the status of every migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, db, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			defer log.Sync()

			return database.MigrationStatus(db.DB().DB)
		},
	})

	return migrateCmd
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "food-catalog",
		Short:        "Food ordering catalog API",
		SilenceUsage: true,
		RunE:         serve,
	}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE:  serve,
	})
	rootCmd.AddCommand(migrateCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
