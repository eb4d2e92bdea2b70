package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quransync/internal/config"
	http_controllers "github.com/mrlokans/quransync/internal/http"
	"github.com/mrlokans/quransync/internal/logging"
	"github.com/mrlokans/quransync/internal/scheduler"
	"github.com/mrlokans/quransync/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("Listen failed")
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Dur("timeout", timeout).Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("Server shutdown failed")
	}

	logging.Info().Msg("Server exiting")
}

func Run(cfg *config.Config, version string) {
	logging.Info().Str("version", version).Msg("Starting QuranSync")

	app, err := NewApp(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer func() {
		if err := app.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize task queue")
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing task client")
			}
		}()

		taskClient.Register(
			tasks.NewSyncSurahsQueue(app.Downloads, app.Catalog),
			tasks.NewPrefetchDailyVerseQueue(app.DailyVerse, app.Settings),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	dailyScheduler := scheduler.NewDailyVerseScheduler(cfg.DailyVerse, app.Settings, app.DailyVerse)
	if taskClient != nil {
		dailyScheduler.SetTaskQueue(taskClient)
	}
	if err := dailyScheduler.Start(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("Daily verse prefetch disabled")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:            app.DB,
		Catalog:             app.Catalog,
		Resolver:            app.Resolver,
		Tafsir:              app.Client,
		Settings:            app.Settings,
		Search:              app.Search,
		DailyVerse:          app.DailyVerse,
		Downloads:           app.Downloads,
		Progress:            app.Progress,
		Audio:               app.Audio,
		Reading:             app.Reading,
		DailyVerseScheduler: dailyScheduler,
		Schedules:           app.Settings,
		DailyVerseConfig:    cfg.DailyVerse,
		Version:             version,
	}
	// A nil *tasks.Client must not reach the interface field.
	if taskClient != nil {
		routerCfg.TaskClient = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		dailyScheduler.Stop()
		app.Downloads.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
