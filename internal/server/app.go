// Package server initializes and runs the application server: database
// and migrations, storage strategies, services, and the HTTP endpoint
// with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guestsnap/internal/logging"
	"guestsnap/internal/server/config"
	"guestsnap/internal/server/httpapi"
	"guestsnap/internal/server/repositories/repomanager"
	"guestsnap/internal/server/services"
	"guestsnap/internal/server/storage"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	router http.Handler
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout)

	m, err := repomanager.NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	factory := &storage.Factory{
		FilesystemRoot: cfg.FilesystemRoot,
		S3: storage.S3Config{
			Region:        cfg.S3Region,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Bucket:        cfg.S3Bucket,
			BaseEndpoint:  cfg.S3BaseEndpoint,
			PublicBaseURL: cfg.PublicBaseURL,
		},
		Repo: m.Media(m.Conn()),
		Log:  logger,
	}

	eventService := services.NewEventService(m.Conn(), m, cfg)
	uploadService := services.NewUploadService(eventService, factory, logger)
	deletionService := services.NewDeletionService(m.Conn(), m, eventService, factory, logger)
	guestService := services.NewGuestService(m.Conn(), m, eventService, cfg)

	handler := httpapi.NewHandler(eventService, uploadService, deletionService, guestService, logger)
	router := httpapi.NewRouter(handler, []byte(cfg.SecretKey), logger)

	return &App{config: cfg, logger: logger, router: router}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:         app.config.EndpointAddr,
		Handler:      app.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Error(ctx, "server error", "error", err)
			cancelFunc()
		}
	}()

	<-ctx.Done()

	app.logger.Info(context.Background(), "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "forced shutdown", "error", err)
	}
}
