package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/SherClockHolmes/webpush-go"
	log "github.com/sirupsen/logrus"

	"housing-allocation-backend/config"
	"housing-allocation-backend/internal/allocation"
	"housing-allocation-backend/internal/api"
	"housing-allocation-backend/internal/db"
	"housing-allocation-backend/internal/logging"
	"housing-allocation-backend/internal/messaging"
	"housing-allocation-backend/internal/notification"
	"housing-allocation-backend/internal/pkg/password"
	"housing-allocation-backend/internal/seed"
	"housing-allocation-backend/internal/store"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logging.Setup(cfg.Log)
	log.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("auth.jwt_secret (or JWT_SECRET) must be configured")
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	log.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	// Notification sinks
	var webpushOptions *webpush.Options
	var sinks notification.Fanout
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appStore, webpushOptions)
		pool.Start(ctx)
		sinks = append(sinks, pool)
		log.Printf("web push worker pool started with %d workers", cfg.WorkerPool.Size)
	} else {
		log.Warn("VAPID keys not configured, web push notifications disabled")
	}

	if cfg.Messaging.AMQPURL != "" {
		publisher, err := messaging.NewRabbitMQPublisher(cfg.Messaging.AMQPURL, cfg.Messaging.Queue)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer publisher.Close()
		sinks = append(sinks, publisher)
		log.Printf("publishing lifecycle events to queue %s", cfg.Messaging.Queue)
	}

	var sink notification.Sink = notification.LogSink{}
	if len(sinks) > 0 {
		sink = sinks
	}

	service := allocation.NewService(appStore, sink, allocation.ClockRoomAllocator{})

	if cfg.Database.SeedFile != "" {
		if err := runSeed(ctx, cfg.Database.SeedFile, service, appStore); err != nil {
			log.Fatalf("failed to seed database: %v", err)
		}
	}

	// Initialize router
	handler := api.NewHandler(service, appStore, webpushOptions)
	router := api.NewRouter(handler, api.RouterConfig{
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
		JWTSecret:       cfg.Auth.JWTSecret,
	})
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		log.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	log.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server Shutdown: %v", err)
	}
	cancel()

	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}
	log.Println("Server gracefully stopped")
}

func runSeed(ctx context.Context, path string, service *allocation.Service, st store.Store) error {
	f, err := seed.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warnf("seed file %s not found, skipping", path)
			return nil
		}
		return err
	}
	_, err = seed.Apply(ctx, f, service, st, password.DefaultCost)
	return err
}
