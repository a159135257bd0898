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

	"github.com/spf13/cobra"

	"project-share-manager/internal/adapters/auth/jwtauth"
	"project-share-manager/internal/adapters/auth/remote"
	pg "project-share-manager/internal/adapters/storage/postgres"
	"project-share-manager/internal/platform/config"
	"project-share-manager/internal/platform/logger"
	"project-share-manager/internal/ports/auth"
	"project-share-manager/internal/router"
)

// @title Project Share Manager API
// @version 1.0
// @description Shares de proyectos y permisos por página.
// @BasePath /
func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "shares-api",
		Short: "project share manager server",
		// Sin subcomando arranca el servidor.
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (opcional)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply pending postgres migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context(), configPath)
		},
	}

	rootCmd.AddCommand(serveCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "startup error:", err)
		os.Exit(1)
	}
}

func serve(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer syncLogger(log)

	verifier, err := buildVerifier(cfg)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Sin DSN se usan los stores en memoria.
	var db *sql.DB
	if cfg.DBDSN != "" {
		db, err = pg.Open(cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		if cfg.DBAutoMigrate {
			applied, err := pg.ApplyMigrations(ctx, db)
			if err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			log.Info("migrations applied", map[string]any{"files": applied})
		}
	} else {
		log.Warn("DB_DSN not set, using in-memory storage", nil)
	}

	r := router.NewRouter(router.Options{
		AuthVerifier:        verifier,
		DB:                  db,
		Logger:              log,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		ShareKeyLength:      cfg.ShareKeyLength,
		ShareKeyMaxAttempts: cfg.ShareKeyMaxAttempts,
		OwnerCacheSize:      cfg.OwnerCacheSize,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.Addr(), "auth_mode": string(cfg.AuthMode)})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("server stopping", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func migrate(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer syncLogger(log)

	if cfg.DBDSN == "" {
		return errors.New("db_dsn required for migrate")
	}
	db, err := pg.Open(cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	applied, err := pg.ApplyMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	log.Info("migrations applied", map[string]any{"files": applied})
	return nil
}

func newLogger(cfg config.Config) logger.Logger {
	return logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
}

func syncLogger(log logger.Logger) {
	if z, ok := log.(*logger.ZapLogger); ok {
		_ = z.Sync()
	}
}

// buildVerifier devuelve nil en modo dev (headers X-Debug-*).
func buildVerifier(cfg config.Config) (auth.AuthVerifier, error) {
	switch cfg.AuthMode {
	case config.AuthModeJWT:
		var opts []jwtauth.Option
		if cfg.JWTIssuer != "" {
			opts = append(opts, jwtauth.WithIssuer(cfg.JWTIssuer))
		}
		return jwtauth.NewVerifier(cfg.JWTSecret, opts...), nil
	case config.AuthModeRemote:
		return remote.NewVerifier(remote.Config{
			BaseURL: cfg.AuthRemoteURL,
			APIKey:  cfg.AuthRemoteAPIKey,
			Timeout: 5 * time.Second,
		})
	default:
		return nil, nil
	}
}
