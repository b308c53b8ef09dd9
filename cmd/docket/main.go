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

	"github.com/docket-th/docket/internal/analytics"
	analytichttp "github.com/docket-th/docket/internal/analytics/http"
	"github.com/docket-th/docket/internal/app"
	"github.com/docket-th/docket/internal/auth"
	"github.com/docket-th/docket/internal/catalog"
	"github.com/docket-th/docket/internal/files"
	"github.com/docket-th/docket/internal/platform/cache"
	"github.com/docket-th/docket/internal/platform/db"
	"github.com/docket-th/docket/internal/sales"
	"github.com/docket-th/docket/internal/sales/customers"
	"github.com/docket-th/docket/internal/scheduling"
	"github.com/docket-th/docket/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, dashboard caching disabled", slog.Any("error", err))
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	store, err := files.NewStore(cfg.UploadDir, cfg.UploadMaxSize)
	if err != nil {
		logger.Error("init upload store", slog.Any("error", err))
		os.Exit(1)
	}

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, cfg.JWTSecret, cfg.JWTTTL)
	authHandler := auth.NewHandler(logger, authService)

	customersRepo := customers.NewRepository(pool)
	customersService := customers.NewService(customersRepo)
	customersHandler := customers.NewHandler(logger, customersService)

	productsRepo := catalog.NewRepository(pool)
	productsService := catalog.NewService(productsRepo)
	productsHandler := catalog.NewHandler(logger, productsService)

	analyticsRepo := analytics.NewRepository(pool)
	analyticsCache := analytics.NewCache(redisClient, cfg.DashboardCacheTTL)
	analyticsService := analytics.NewService(analyticsRepo, analyticsCache)
	analyticsHandler := analytichttp.NewHandler(logger, analyticsService)
	if err := analyticsCache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(salesRepo, customersRepo, productsRepo, store, analyticsService)
	salesHandler := sales.NewHandler(logger, salesService)

	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	schedulingRepo := scheduling.NewRepository(pool)
	schedulingService := scheduling.NewService(schedulingRepo, jobsClient)
	schedulingHandler := scheduling.NewHandler(logger, schedulingService)

	filesHandler := files.NewHandler(logger, store)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthHandler:       authHandler,
		RequireAuth:       authService.Middleware(),
		CustomersHandler:  customersHandler,
		ProductsHandler:   productsHandler,
		SalesHandler:      salesHandler,
		SchedulingHandler: schedulingHandler,
		FilesHandler:      filesHandler,
		AnalyticsHandler:  analyticsHandler,
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
