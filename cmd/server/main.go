package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/IoTMirror/GoogleWebService/internal/config"
	"github.com/IoTMirror/GoogleWebService/internal/di"
	"github.com/IoTMirror/GoogleWebService/internal/infrastructure/db"
	"github.com/IoTMirror/GoogleWebService/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found")
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "server",
		Short:         "Google sign-in broker and task, calendar and inbox aggregator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			logger.SetupDefault(os.Stdout, cfg.LogLevel)
			return nil
		},
	}

	var migrateFirst bool
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if migrateFirst {
				if err := migrate(cmd.Context(), cfg, db.MigrateUp); err != nil {
					return err
				}
			}
			return run(cmd.Context(), cfg)
		},
	}
	serveCmd.Flags().BoolVar(&migrateFirst, "migrate", false, "apply pending migrations before serving")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(cmd.Context(), cfg, db.MigrateUp)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(cmd.Context(), cfg, db.MigrateDown)
			},
		},
	)

	root.AddCommand(serveCmd, migrateCmd)
	return root
}

func migrate(ctx context.Context, cfg *config.Config, step func(*sql.DB, string) error) error {
	conn, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := step(conn, cfg.DBDriver); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	slog.Info("migrations applied", "driver", cfg.DBDriver)
	return nil
}

func run(ctx context.Context, cfg *config.Config) error {
	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer container.Close()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      container.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down...")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	slog.Info("shutdown completed")
	return nil
}
