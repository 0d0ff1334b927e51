package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/taskledger/backend/api/handler"
	"github.com/taskledger/backend/internal/config"
	"github.com/taskledger/backend/internal/infrastructure/journal"
	"github.com/taskledger/backend/internal/infrastructure/monitor"
	pgInfra "github.com/taskledger/backend/internal/infrastructure/postgres"
	redisInfra "github.com/taskledger/backend/internal/infrastructure/redis"
	"github.com/taskledger/backend/internal/middleware"
	"github.com/taskledger/backend/internal/router"
	"github.com/taskledger/backend/internal/services"
	"github.com/taskledger/backend/internal/services/lifecycle"
	"github.com/taskledger/backend/pkg/httpcontext"
	"github.com/taskledger/backend/pkg/logger"
	"github.com/taskledger/backend/repository/postgres"
	redisRepo "github.com/taskledger/backend/repository/redis"
	authUC "github.com/taskledger/backend/usecase/auth"
	projectUC "github.com/taskledger/backend/usecase/project"
	taskUC "github.com/taskledger/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	journalStore, err := journal.Open(cfg.Journal.Path, "activity")
	if err != nil {
		zapLogger.Fatal("failed to open activity journal", zap.Error(err))
	}
	manager.Register("journal", func(ctx context.Context) error {
		return journalStore.Close()
	})

	mon := monitor.New(pool, redisClient, journalStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Session.TTL)

	activityBridge := services.NewActivityBridge(journalStore)

	if cfg.Reconciler.Enabled {
		reconciler := services.NewReconciler(projectRepo, taskRepo, journalStore, mon, zapLogger, services.ReconcilerConfig{
			Interval:         cfg.Reconciler.Interval,
			JournalRetention: cfg.Journal.Retention,
		})
		reconciler.Start()
		manager.Register("reconciler", func(ctx context.Context) error {
			reconciler.Stop(ctx)
			return nil
		})
	}

	authUseCase := authUC.New(userRepo, sessionRepo, activityBridge, authUC.TokenConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	}, zapLogger)
	projectUseCase := projectUC.New(projectRepo, activityBridge, zapLogger)
	taskUseCase := taskUC.New(taskRepo, projectRepo, userRepo, activityBridge, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:      apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.Session.TTL),
		User:      apiHandler.NewUserHandler(authUseCase, ctxAdapter, zapLogger),
		Project:   apiHandler.NewProjectHandler(projectUseCase, taskUseCase, ctxAdapter, zapLogger),
		Task:      apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Dashboard: apiHandler.NewDashboardHandler(projectUseCase, taskUseCase, activityBridge, cfg.Journal.FeedSize, ctxAdapter, zapLogger),
		Health:    apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
