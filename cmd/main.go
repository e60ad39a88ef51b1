package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartmart_service/config"
	"smartmart_service/internal/cache"
	"smartmart_service/internal/delivery"
	grpcHandler "smartmart_service/internal/delivery/grpc"
	"smartmart_service/internal/events"
	"smartmart_service/internal/repository"
	"smartmart_service/internal/usecase"
	"smartmart_service/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const healthProbeInterval = 15 * time.Second

func main() {
	logger := setupLogger("info")

	cfg := config.LoadConfig(logger)

	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s' in config, using default 'info'. Error: %v", cfg.LogLevel, err)
	} else {
		logger.SetLevel(logLevel)
	}
	logger.Info("Starting SmartMart Service...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection ---
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Errorf("Error closing database connection: %v", err)
		} else {
			logger.Info("Database connection closed.")
		}
	}()
	logger.Info("Database connection established.")

	if cfg.RunMigrations {
		if err := db.RunMigrations(database); err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}
		logger.Info("Database migrations applied.")
	}

	// --- Optional Infrastructure ---
	var metricsCache usecase.MetricsCache
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.Warnf("Redis unavailable, dashboard cache disabled: %v", err)
		} else {
			defer client.Close()
			metricsCache = cache.NewRedisCache(client, cfg.DashboardCacheTTL, logger)
		}
	}

	var publisher events.Publisher
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warnf("AMQP unavailable, import events disabled: %v", err)
		} else {
			defer amqpPublisher.Close()
			publisher = amqpPublisher
			logger.Infof("Publishing import events to exchange %s", cfg.AMQPExchange)
		}
	}

	// --- Dependency Injection ---
	categoryRepo := repository.NewPostgresCategoryRepository(database, logger)
	productRepo := repository.NewPostgresProductRepository(database, logger)
	saleRepo := repository.NewPostgresSaleRepository(database, logger)
	dashboardRepo := repository.NewPostgresDashboardRepository(database, logger)
	logger.Info("Repositories initialized.")

	categoryUseCase := usecase.NewCategoryUseCase(categoryRepo, logger)
	productUseCase := usecase.NewProductUseCase(productRepo, logger)
	saleUseCase := usecase.NewSaleUseCase(saleRepo, metricsCache, logger)
	dashboardUseCase := usecase.NewDashboardUseCase(dashboardRepo, metricsCache, logger)
	importUseCase := usecase.NewImportUseCase(categoryRepo, productRepo, saleRepo, publisher, metricsCache, logger)
	logger.Info("Use cases initialized.")

	if logLevel != logrus.DebugLevel && logLevel != logrus.TraceLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := delivery.NewRouter(logger, cfg.MaxUploadBytes,
		delivery.NewStatusHandler(database, logger),
		delivery.NewCategoryHandler(categoryUseCase, importUseCase, logger),
		delivery.NewProductHandler(productUseCase, importUseCase, logger),
		delivery.NewSaleHandler(saleUseCase, importUseCase, logger),
		delivery.NewDashboardHandler(dashboardUseCase, logger),
	)
	logger.Info("API Routes registered.")

	healthHandler := grpcHandler.NewHealthHandler(database, healthProbeInterval, logger)
	grpcServer := grpcHandler.NewServer(healthHandler, logger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Start Servers ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Infof("Starting HTTP server on %s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		lis, err := net.Listen("tcp", cfg.GrpcPort)
		if err != nil {
			return err
		}
		logger.Infof("gRPC server listening on %s", cfg.GrpcPort)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		healthHandler.Run(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Warn("Shutdown signal received...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("HTTP server shutdown error: %v", err)
		}
		grpcServer.GracefulStop()
		logger.Info("Servers stopped.")
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("Server error: %v", err)
		os.Exit(1)
	}
	logger.Info("SmartMart Service shut down gracefully.")
}

func setupLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using default 'info'. Error: %v", level, err)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}
