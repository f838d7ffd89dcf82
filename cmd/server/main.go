package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RishiKendai/textaegis/internal/api"
	"github.com/RishiKendai/textaegis/internal/config"
	"github.com/RishiKendai/textaegis/internal/configs/env"
	"github.com/RishiKendai/textaegis/internal/infra/mongo"
	redisInfra "github.com/RishiKendai/textaegis/internal/infra/redis"
	"github.com/RishiKendai/textaegis/internal/logger"
	"github.com/RishiKendai/textaegis/internal/metrics"
	"github.com/RishiKendai/textaegis/internal/plagiarism"
	"github.com/RishiKendai/textaegis/internal/preprocess"
	"github.com/RishiKendai/textaegis/internal/repository"
	"github.com/RishiKendai/textaegis/internal/stream"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file, continuing with system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if err := cfg.LoadFile(os.Getenv("TEXTAEGIS_CONFIG")); err != nil {
		panic(fmt.Sprintf("Failed to load config file: %v", err))
	}
	if err := cfg.ValidateServer(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	logger.Init(cfg.LogLevel, env.GetEnvBool("LOG_CONSOLE", false))
	log.Info().Msg("Starting textaegis server")
	for _, warning := range cfg.Matching.Warnings() {
		log.Warn().Err(warning).Msg("Matching options will never produce a match")
	}

	// Initialize Prometheus metrics
	metrics.InitPrometheus()
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.MetricsHandler())
	metricsServer := api.StartServer("metrics", metricsMux, cfg.MetricsPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect MongoDB
	mongoClient, err := mongo.NewClient(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create MongoDB client")
	}
	defer mongoClient.Close(context.Background())

	// Connect Redis
	redisClient, err := redisInfra.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis client")
	}
	defer redisClient.Close()

	mongoRepo := repository.NewMongoRepository(mongoClient)
	documentsRepo := repository.NewDocumentsRepository(mongoRepo)
	ingestSvc := preprocess.NewService(documentsRepo)

	statusTracker := plagiarism.NewStatusTracker(redisClient)
	publisher := stream.NewPublisher(redisClient.Client, cfg.RedisReportStreamKey)
	retryHandler := stream.NewRetryHandler(redisClient.Client, cfg.RedisDeadLetterKey)

	// Submissions arrive on a stream as well as over HTTP
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	consumerName := fmt.Sprintf("consumer-%s-%d-%s", hostname, os.Getpid(), uuid.New().String()[:8])
	consumer := stream.NewConsumer(
		redisClient.Client,
		cfg.RedisStreamKey,
		cfg.RedisConsumerGroup,
		consumerName,
		ingestSvc,
		retryHandler,
		cfg.StreamRetentionDuration,
	)

	workerPool := plagiarism.NewWorkerPool(ctx, cfg.WorkerCount)

	router := api.SetupRoutes(cfg, documentsRepo, ingestSvc, statusTracker, workerPool, publisher)

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Redis consumer error")
		}
	}()
	log.Info().Str("consumer_name", consumerName).Msg("Redis consumer started")

	srv := api.StartServer("api", router, cfg.ServerPort)

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down gracefully...")

	// Stop taking requests before the pool goes away
	if err := api.ShutdownServer(srv, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down API server")
	}

	cancel()
	<-consumerDone
	workerPool.Close()

	if err := api.ShutdownServer(metricsServer, 5*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down metrics server")
	}

	log.Info().Msg("Shutdown complete")
}
