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

	"github.com/crewbase/crewbase/internal/app"
	"github.com/crewbase/crewbase/internal/auth"
	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/companies"
	"github.com/crewbase/crewbase/internal/events"
	"github.com/crewbase/crewbase/internal/managers"
	"github.com/crewbase/crewbase/internal/observability"
	"github.com/crewbase/crewbase/internal/platform/cache"
	"github.com/crewbase/crewbase/internal/platform/db"
	"github.com/crewbase/crewbase/internal/projects"
	"github.com/crewbase/crewbase/internal/recruiting/interviews"
	"github.com/crewbase/crewbase/internal/recruiting/positions"
	"github.com/crewbase/crewbase/internal/recruiting/resumes"
	"github.com/crewbase/crewbase/internal/roles"
	"github.com/crewbase/crewbase/internal/users"
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
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()
	emitter := events.NewEmitter(asynqClient, logger)

	metrics := observability.NewMetrics()

	rolesRepo := roles.NewRepository(pool)
	catalog := authz.NewCatalog(rolesRepo, redisClient, cfg.PermissionCacheTTL, logger)

	managersRepo := managers.NewRepository(pool)
	scopeLoader := authz.NewScopeLoader(authz.NewPGScopeStore(pool))
	evaluator := authz.NewEvaluator(managersRepo)
	authzMiddleware := authz.Middleware{
		Catalog:   catalog,
		Scopes:    scopeLoader,
		Evaluator: evaluator,
		Logger:    logger,
		Metrics:   metrics,
	}

	tokens := auth.NewTokenStore(redisClient, cfg.TokenTTL)

	usersRepo := users.NewRepository(pool)
	authService := auth.NewService(usersRepo, tokens)
	authHandler := auth.NewHandler(logger, authService)

	managersService := managers.NewService(managersRepo, emitter)
	managersHandler := managers.NewHandler(logger, managersService)

	companiesService := companies.NewService(companies.NewRepository(pool), managersRepo, emitter, db.Runner(pool))
	companiesHandler := companies.NewHandler(logger, companiesService)

	projectsService := projects.NewService(projects.NewRepository(pool), managersRepo, emitter, db.Runner(pool))
	projectsHandler := projects.NewHandler(logger, projectsService)

	positionsHandler := positions.NewHandler(logger, positions.NewService(positions.NewRepository(pool), emitter))
	resumesHandler := resumes.NewHandler(logger, resumes.NewService(resumes.NewRepository(pool), emitter))
	interviewsHandler := interviews.NewHandler(logger, interviews.NewService(interviews.NewRepository(pool), emitter))

	rolesService := roles.NewService(rolesRepo, catalog, emitter)
	rolesHandler := roles.NewHandler(logger, rolesService)

	usersService := users.NewService(usersRepo, emitter)
	usersHandler := users.NewHandler(logger, usersService)

	router := app.NewRouter(app.RouterParams{
		Logger:  logger,
		Config:  cfg,
		Tokens:  tokens,
		Authz:   authzMiddleware,
		Metrics: metrics,

		AuthHandler:       authHandler,
		CompaniesHandler:  companiesHandler,
		ProjectsHandler:   projectsHandler,
		ManagersHandler:   managersHandler,
		PositionsHandler:  positionsHandler,
		ResumesHandler:    resumesHandler,
		InterviewsHandler: interviewsHandler,
		RolesHandler:      rolesHandler,
		UsersHandler:      usersHandler,
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
