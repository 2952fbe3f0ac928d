package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/folio-api/folio/internal/app"
	"github.com/folio-api/folio/internal/assets"
	"github.com/folio-api/folio/internal/auth"
	"github.com/folio-api/folio/internal/contacts"
	"github.com/folio-api/folio/internal/observability"
	"github.com/folio-api/folio/internal/platform/cache"
	"github.com/folio-api/folio/internal/platform/db"
	"github.com/folio-api/folio/internal/projects"
	"github.com/folio-api/folio/internal/token"
	"github.com/folio-api/folio/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens := token.NewManager(token.Config{Secret: []byte(cfg.JWTSecret), TTL: cfg.JWTTTL})
	gate := auth.NewGate(tokens, logger)

	store, err := assets.NewStore(cfg.UploadDir, "/uploads/projects", cfg.MaxUploadBytes)
	if err != nil {
		logger.Error("init upload store", slog.Any("error", err))
		os.Exit(1)
	}

	queue := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens, auth.ServiceConfig{PasswordMinLen: cfg.PasswordMinLen})
	authHandler := auth.NewHandler(logger, authService, gate)

	statsCache := cache.NewJSONCache(redisClient, cfg.StatsCacheTTL, logger)
	projectsRepo := projects.NewRepository(pool)
	projectsService := projects.NewService(projectsRepo, store, statsCache, logger)
	projectsHandler := projects.NewHandler(logger, projectsService, gate, cfg.MaxUploadBytes)

	contactsRepo := contacts.NewRepository(pool)
	contactsService := contacts.NewService(contactsRepo, queue, logger)
	contactsHandler := contacts.NewHandler(logger, contactsService, gate)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AuthHandler:     authHandler,
		ProjectsHandler: projectsHandler,
		ContactsHandler: contactsHandler,
		UploadDir:       store.Dir(),
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
