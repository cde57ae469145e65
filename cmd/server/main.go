package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/application"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/cache"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/config"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine/remote"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/events"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/handler"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/location"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/platform/database"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/platform/health"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/platform/kafka"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/platform/logger"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/platform/middleware"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/repository"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/session"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "service-navigation"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-navigation",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.ProfileModel{}, &repository.RouteQueryModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	profileRepo := repository.NewGormProfileRepository(db)
	queryRepo := repository.NewGormRouteQueryRepository(db)

	// Initialize Kafka producer; an empty broker list runs without Kafka.
	var producer events.EventProducer
	if len(cfg.KafkaConfig.Brokers) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
		producer = kafkaProducer
	} else {
		log.Warn("no kafka brokers configured, state events stay in-process")
	}

	hub := events.NewHub(log.Named("hub"))
	publisher := events.NewPublisher(producer, hub, log.Named("publisher"))

	// Initialize route cache
	var routeCache application.RouteCache
	readyChecks := map[string]health.Check{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient := cache.OpenRedis(cfg.RedisConfig.Addr, cfg.RedisConfig.Password, cfg.RedisConfig.DB); redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		rc := cache.NewRouteCache(redisClient, cfg.RedisConfig.TTL, log.Named("cache"))
		routeCache = rc
		readyChecks["redis"] = rc.Ping
	}

	// Initialize session controller and application service
	providers := location.NewFactory(cfg.Location, log.Named("location"))
	controller := session.NewController(
		providers,
		remote.NewFactory(log.Named("engine")),
		publisher,
		publisher,
		cfg.NavigationOptions,
		log.Named("session"),
	)
	defer controller.Close()

	navService := application.NewNavigationService(
		controller,
		profileRepo,
		queryRepo,
		routeCache,
		cache.Key,
		log,
	)

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := navService.Restore(startCtx, cfg.CoreOptions); err != nil {
		log.Error("failed to build initial navigation session", zap.Error(err))
	}
	startCancel()
	readyChecks["session"] = func(context.Context) error {
		if !controller.Ready() {
			return fmt.Errorf("navigation session not initialized")
		}
		return nil
	}

	// Initialize and start location fix consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(cfg.KafkaConfig.Brokers) > 0 {
		groupID := cfg.KafkaConfig.GroupPrefix + "navigation-service"
		fixConsumer := events.NewLocationFixConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			navService,
			log.Named("location-consumer"),
		)
		defer func() { _ = fixConsumer.Close() }()

		go func() {
			log.Info("starting location fix consumer")
			if err := fixConsumer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("location fix consumer error", zap.Error(err))
			}
		}()
	}

	// Initialize HTTP handlers
	navigationHandler := handler.NewNavigationHandler(navService, hub)
	queryHandler := handler.NewRouteQueryHandler(navService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check and metrics routes
	healthHandler := health.NewHandler(serviceName, readyChecks)
	healthHandler.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Register routes
	navigationHandler.RegisterRoutes(&router.RouterGroup)
	queryHandler.RegisterRoutes(&router.RouterGroup)

	// Create HTTP server. WriteTimeout stays unset so event streams are not
	// cut off; they end when ctx is cancelled on shutdown.
	srv := &http.Server{
		Addr:        cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-navigation...")

	// Cancel the consumer context and open event streams
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-navigation stopped")
}
