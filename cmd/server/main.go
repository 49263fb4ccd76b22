package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mathieu-neron/vidsource/internal/config"
	"github.com/mathieu-neron/vidsource/internal/db"
	"github.com/mathieu-neron/vidsource/internal/handler"
	"github.com/mathieu-neron/vidsource/internal/middleware"
	"github.com/mathieu-neron/vidsource/internal/page"
	"github.com/mathieu-neron/vidsource/internal/repository"
	"github.com/mathieu-neron/vidsource/internal/router"
	"github.com/mathieu-neron/vidsource/internal/service"
)

var version = "dev"

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "vidsource")
	log := middleware.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		pool   *pgxpool.Pool
		lister page.SourceLister
	)
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		lister = repository.NewSourceRepo(pool)
		log.Info().Msg("sources: database")
	} else {
		lister = service.NewFileSources(cfg.SourcesFile)
		log.Info().Str("file", cfg.SourcesFile).Msg("sources: file")
	}

	cache := service.NewCacheService(cfg.RedisURL, cfg.SearchCacheTTL, log)
	defer cache.Close()

	search := service.NewSearchClient(cfg.SearchURL, cfg.SearchTimeout, cache, handler.SearchMetrics{}, log)

	sessions := page.NewSessions(cfg.SessionTTL, func() *page.Page {
		return page.New(search, page.Options{Logger: log, OnStale: handler.CountStale})
	})
	handler.InitMetrics(pool, sessions.Len)

	worker := service.NewSessionWorker(sessions, cfg.SessionSweepInterval, log)
	go worker.Start(ctx)
	defer worker.Stop()

	apiLimiter := middleware.NewAPIRateLimiter()
	defer apiLimiter.Stop()
	selectLimiter := middleware.NewSelectRateLimiter()
	defer selectLimiter.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "vidsource",
		ServerHeader: "vidsource",
	})

	router.Setup(app, &router.Handlers{
		Page: handler.NewPageHandler(sessions, lister, handler.PageOptions{
			BaseCtx:       ctx,
			FetchTimeout:  cfg.SearchTimeout,
			SessionMaxAge: cfg.SessionTTL,
		}),
		Health: handler.NewHealthHandler(pool, cache.Client(), version),
	}, router.Limiters{API: apiLimiter, Select: selectLimiter}, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("vidsource starting")
	if err := app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}
}
