package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/mytheresa/catalog-service/app"
	"github.com/mytheresa/catalog-service/database"
	"github.com/mytheresa/catalog-service/logger"
	"github.com/mytheresa/catalog-service/models"
	"github.com/mytheresa/catalog-service/storage"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}

	cobraflags.RegisterMap(cmd, configFlags)
	return cmd
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().
		Str("port", cfg.Server.Port).
		Str("env", cfg.Primary.Env).
		Msg("starting catalog service")

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, cfg.Database.URL, log); err != nil {
			return err
		}
	}

	db, err := database.Open(cfg.Database, cfg.Primary.Env, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}()

	images, err := storage.NewImageStore(cfg.Storage.ImageDir)
	if err != nil {
		return err
	}

	router := app.NewRouter(app.Deps{
		Collections:    models.NewCollectionsRepository(db),
		Products:       models.NewProductsRepository(db),
		Images:         images,
		ImageDir:       images.Dir(),
		DB:             database.NewPinger(db),
		Logger:         log,
		AllowedOrigins: cfg.Server.AllowedOrigins(),
		MaxUploadBytes: int64(cfg.Storage.MaxUploadMB) << 20,
		RequestTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped gracefully")
	return nil
}
