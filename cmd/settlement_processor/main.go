package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/convoy-settlement-engine/internal/archive_poller"
	"github.com/convoy-settlement-engine/internal/config"
	"github.com/convoy-settlement-engine/internal/data/mongo"
	"github.com/convoy-settlement-engine/internal/data/postgres"
	"github.com/convoy-settlement-engine/internal/logger"
	"github.com/convoy-settlement-engine/internal/platform/messaging/consumers"
	"github.com/convoy-settlement-engine/internal/platform/messaging/producers"
	"github.com/convoy-settlement-engine/internal/platform/persistence"
	"github.com/convoy-settlement-engine/internal/settlement/aggregator"
	"github.com/convoy-settlement-engine/internal/settlement/coordinator"
	"github.com/convoy-settlement-engine/internal/settlement/distributor"
	"github.com/convoy-settlement-engine/internal/settlement/notify"
	"github.com/convoy-settlement-engine/internal/settlement/pipeline"
	"github.com/convoy-settlement-engine/internal/settlement/service"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("settlement_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Settlement Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	actorRepo := postgres.NewActorRepository(log, postgresDB)
	routeMonitor := postgres.NewShortcutMonitor(log, postgresDB, cfg.Economy.ShortcutWindow)
	subsidyRepo := postgres.NewRuleRepository(log, postgresDB)
	ledgerRepo := postgres.NewLedgerRepository(log, postgresDB)
	contractRepo := postgres.NewContractRepository(log, postgresDB)
	jobRepo := postgres.NewJobRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	archiveRepo := mongo.NewArchiveRepository(log, mongoDB.Database())

	// Initialize Kafka consumer
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Initialize Kafka DLQ producer
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// dlqProducer might be nil if DLQTopic is not configured. Handler is nil-safe.

	// Initialize actor notification channel
	notifier := notify.NewChannelNotifier(log, notify.NewLogSink(log), 256)

	// Initialize settlement components
	rewardDistributor := distributor.NewDistributor(log, jobRepo, ledgerRepo, notifier)
	jobCoordinator := coordinator.NewCoordinator(log, postgresDB, jobRepo, rewardDistributor)
	settlePipeline := pipeline.NewPipeline(log, ledgerRepo, notifier, &cfg.Economy)

	// Initialize per-actor worker pool
	workerPool, err := ants.NewPool(cfg.WorkerPool.Size)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	batchAggregator := aggregator.NewAggregator(
		log,
		actorRepo,
		routeMonitor,
		subsidyRepo,
		ledgerRepo,
		contractRepo,
		jobCoordinator,
		settlePipeline,
		notifier,
		workerPool,
		&cfg.Economy,
	)

	// Initialize batch event handler
	batchEventHandler := service.NewBatchEventHandler(log, batchAggregator, dlqProducer)

	// Initialize archive poller
	archivePublisher := archive_poller.NewArchivePublisher(outboxRepo, archiveRepo, log)
	poller := archive_poller.NewPoller(&cfg.Archive, outboxRepo, archivePublisher, log)

	// Create error channel for service errors
	errChan := make(chan error, 2)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start Kafka consumer in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.BatchTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.BatchTopic, cfg.Kafka.ConsumerGroup, batchEventHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}()

	// Start archive poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Archive Poller",
			"interval", cfg.Archive.PollingInterval.String(),
			"batch_size", cfg.Archive.BatchSize,
		)
		poller.Start(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for all goroutines to finish
	log.Info("Waiting for services to stop...")
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Shut down the worker pool once no more batches are in flight
	log.Info("Shutting down worker pool", "running_workers", workerPool.Running())
	workerPool.Release()

	// Drain pending actor notifications
	notifier.Close()
	if dropped := notifier.Dropped(); dropped > 0 {
		log.Warn("Notifications dropped during this run", "count", dropped)
	}

	// Close DLQ Kafka producer
	if dlqProducer != nil { // dlqProducer can be nil if DLQTopic was not configured
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	// Close Kafka consumer
	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("Settlement Processor shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Settlement Processor shutdown completed with errors")
	} else {
		log.Info("Settlement Processor shutdown completed successfully")
	}
}
