package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/careforms/intake-service/internal/cache"
	"github.com/careforms/intake-service/internal/config"
	"github.com/careforms/intake-service/internal/events"
	"github.com/careforms/intake-service/internal/handlers"
	"github.com/careforms/intake-service/internal/repositories/postgres"
	"github.com/careforms/intake-service/internal/services"
	"github.com/careforms/intake-service/internal/utils"
	"github.com/careforms/intake-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var appLogger utils.Logger
	if cfg.IsProduction() {
		appLogger = utils.NewDefaultLogger()
	} else {
		appLogger = utils.NewDevelopmentLogger()
	}
	slogLogger := utils.ToSlogLogger(appLogger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		appLogger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		appLogger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	cacheService := cache.NewRedisCache(redisClient, appLogger)

	var publisher events.EventPublisher
	kafkaPublisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
		KafkaBrokers: cfg.KafkaBrokers,
		TopicName:    cfg.EventsTopic,
		Logger:       slogLogger,
	})
	if err != nil {
		if cfg.IsProduction() {
			appLogger.Error("Failed to create Kafka publisher", "error", err)
			os.Exit(1)
		}
		appLogger.Warn("Kafka unavailable, events will only be logged", "error", err)
		publisher = events.NewMockEventPublisher(slogLogger)
	} else {
		publisher = kafkaPublisher
	}
	defer publisher.Close()

	validator := utils.NewValidator()
	repo := postgres.NewRepository(db)

	formService := services.NewFormService(repo, cacheService, publisher, slogLogger, validator)
	sessionService := services.NewSessionService(repo, formService, publisher, slogLogger, validator)
	bookingService := services.NewBookingService(repo, publisher, slogLogger, validator)
	exportService := services.NewExportService(repo, formService, slogLogger)

	handlerManager := handlers.NewHandlerManager(formService, sessionService, bookingService, exportService, appLogger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.LoggerMiddleware(appLogger))
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		appLogger.Info("Starting intake service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down intake service")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", "error", err)
	}

	appLogger.Info("Intake service stopped")
}
