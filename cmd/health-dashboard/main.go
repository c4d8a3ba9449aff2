// @title Health Dashboard API
// @version 1.0
// @description API del dashboard clínico: clientes, programas, visitas, recetas y órdenes de laboratorio.
// @BasePath /
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pg "health-dashboard/internal/adapters/storage/postgres"
	"health-dashboard/internal/config"
	"health-dashboard/internal/domain/laborders"
	"health-dashboard/internal/platform/logger"
	"health-dashboard/internal/platform/metrics"
	"health-dashboard/internal/router"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "health-dashboard",
		Short:         "Dashboard clínico para doctores",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	log := newLogger(cfg)

	policy, err := laborders.ParsePolicy(cfg.LabCompletionPolicy)
	if err != nil {
		return err
	}

	verifier, closeVerifier, err := buildVerifier(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeVerifier()

	var db *sql.DB
	if cfg.DBDSN != "" {
		db, err = pg.Open(cfg.DBDSN, cfg.DBMaxOpenConns)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		log.Info().Msg("using postgres storage")
	} else {
		log.Warn().Msg("DB_DSN not set, using in-memory storage")
	}

	handler := router.NewRouter(router.Options{
		Verifier:       verifier,
		DB:             db,
		Logger:         log,
		Metrics:        metrics.New(),
		SessionCookie:  cfg.SessionCookie,
		SignInURL:      cfg.IDPSignInURL,
		SignUpURL:      cfg.IDPSignUpURL,
		LabPolicy:      policy,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("auth_mode", cfg.ResolvedAuthMode()).
			Str("lab_policy", string(policy)).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Corre las migraciones de la base de datos",
	}

	run := func(dir pg.Direction) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DBDSN == "" {
				return errors.New("DB_DSN is required for migrations")
			}
			log := newLogger(cfg)

			db, err := pg.Open(cfg.DBDSN, 1)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			if err := pg.Migrate(db, dir); err != nil {
				return err
			}
			log.Info().Str("direction", string(dir)).Msg("migrations applied")
			return nil
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Aplica las migraciones pendientes",
		RunE:  run(pg.Up),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revierte todas las migraciones",
		RunE:  run(pg.Down),
	})
	return cmd
}
