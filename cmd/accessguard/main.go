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

	"github.com/gewog/AccessGuard/internal/accounts"
	"github.com/gewog/AccessGuard/internal/app"
	"github.com/gewog/AccessGuard/internal/audit"
	"github.com/gewog/AccessGuard/internal/authz"
	"github.com/gewog/AccessGuard/internal/platform/cache"
	"github.com/gewog/AccessGuard/internal/platform/db"
	"github.com/gewog/AccessGuard/internal/resources"
	"github.com/gewog/AccessGuard/internal/roles"
	"github.com/gewog/AccessGuard/internal/rules"
	"github.com/gewog/AccessGuard/internal/shared"
	"github.com/gewog/AccessGuard/internal/token"
	"github.com/gewog/AccessGuard/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens := token.NewResolver(token.Config{
		Secret:     cfg.TokenSecret,
		CookieName: cfg.TokenCookie,
		TTL:        cfg.TokenTTL,
		Secure:     cfg.IsProduction(),
	}, redisClient)

	auditRepo := audit.NewRepository(pool)
	auditService := audit.NewService(auditRepo, logger)

	authzRepo := authz.NewRepository(pool)
	engine := authz.NewEngine(authzRepo, auditService, logger)

	guard := shared.Guard{Resolver: tokens, Engine: engine, Logger: logger}

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	accountsRepo := accounts.NewRepository(pool)
	accountsService := accounts.NewService(accountsRepo, jobClient, logger)
	accountsHandler := accounts.NewHandler(logger, accountsService, tokens, guard)

	rolesRepo := roles.NewRepository(pool)
	rolesService := roles.NewService(rolesRepo)
	rolesHandler := roles.NewHandler(logger, rolesService, guard)

	resourcesRepo := resources.NewRepository(pool)
	resourcesService := resources.NewService(resourcesRepo)
	resourcesHandler := resources.NewHandler(logger, resourcesService, guard)

	rulesRepo := rules.NewRepository(pool)
	rulesService := rules.NewService(rulesRepo, rolesService, resourcesService)
	rulesHandler := rules.NewHandler(logger, rulesService, guard)

	auditHandler := audit.NewHandler(logger, auditService, guard)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AccountsHandler:  accountsHandler,
		RolesHandler:     rolesHandler,
		ResourcesHandler: resourcesHandler,
		RulesHandler:     rulesHandler,
		AuditHandler:     auditHandler,
		JobHandler:       jobHandler,
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
