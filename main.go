package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"flora-commerce/internal/auth"
	"flora-commerce/internal/cart"
	"flora-commerce/internal/cart/cart_api"
	cartdb "flora-commerce/internal/cart/db"
	"flora-commerce/internal/catalog"
	"flora-commerce/internal/catalog/catalog_api"
	"flora-commerce/internal/config"
	"flora-commerce/internal/database"
	"flora-commerce/internal/delivery"
	deliverydb "flora-commerce/internal/delivery/db"
	"flora-commerce/internal/delivery/delivery_api"
	"flora-commerce/internal/event"
	eventdb "flora-commerce/internal/event/db"
	"flora-commerce/internal/event/event_api"
	"flora-commerce/internal/identity"
	"flora-commerce/internal/idgen"
	"flora-commerce/internal/kafka"
	"flora-commerce/internal/logger"
	"flora-commerce/internal/order"
	orderdb "flora-commerce/internal/order/db"
	"flora-commerce/internal/order/order_api"
	"flora-commerce/internal/reports"
	reports_api "flora-commerce/internal/reports/api"
)

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Flora Commerce service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	bunDB, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	// Redis backs the daily event-number sequence. The service still runs
	// without it, falling back to an in-process counter.
	var sequencer idgen.Sequencer
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("REDIS", fmt.Sprintf("Redis unavailable at %s, using in-process sequencer: %v", cfg.Redis.Addr, err))
		sequencer = idgen.NewMemorySequencer()
	} else {
		log.Info("REDIS", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))
		sequencer = idgen.NewRedisSequencer(redisClient)
	}
	defer redisClient.Close()

	var orderKafka order.KafkaPublisher
	var eventKafka event.KafkaPublisher
	var deliveryKafka delivery.KafkaPublisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		log.Info("KAFKA", "Kafka producer initialized successfully")

		requiredTopics := []string{
			cfg.Kafka.Topics.OrderCreated,
			cfg.Kafka.Topics.OrderCancelled,
			cfg.Kafka.Topics.DeliveryRequested,
			cfg.Kafka.Topics.EventDecided,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics, log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}

		orderKafka, eventKafka, deliveryKafka = producer, producer, producer
	} else {
		log.Warn("KAFKA", "Kafka disabled, events will not be published")
	}

	catalogDB := &catalog.DB{Bun: bunDB}
	identityDB := &identity.DB{Bun: bunDB}

	cartService := cart.NewCartService(&cartdb.DB{Bun: bunDB}, catalogDB)
	deliveryService := delivery.NewDeliveryService(&deliverydb.DB{Bun: bunDB}, deliveryKafka, log)
	scheduler := delivery.NewSchedulerAdapter(deliveryService, cfg.Delivery.DefaultTimeSlot)
	deadLetters := order.NewDeadLetterLog(log)

	orderService := order.NewOrderService(bunDB, &orderdb.DB{Bun: bunDB}, identityDB,
		orderKafka, scheduler, deadLetters, log)
	eventService := event.NewEventService(bunDB, &eventdb.DB{Bun: bunDB}, catalogDB, identityDB,
		sequencer, eventKafka, log)
	reportService := reports.NewService(bunDB)

	catalogHandler := &catalog_api.Handler{Catalog: catalogDB, Logger: log}
	cartHandler := &cart_api.Handler{CartService: cartService, Logger: log}
	orderHandler := &order_api.Handler{OrderService: orderService, Logger: log}
	deliveryHandler := &delivery_api.Handler{DeliveryService: deliveryService, Logger: log}
	eventHandler := &event_api.Handler{EventService: eventService, Logger: log}
	reportHandler := &reports_api.Handler{ReportService: reportService, Logger: log}

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	authn := auth.Middleware(cfg.Auth.JWTSecret, identityDB)
	r.Route("/api", func(r chi.Router) {
		// --- Public Routes ---
		catalogHandler.RegisterRoutes(r)
		log.Info("ROUTER", "Public catalog routes registered under /api/products")

		// Delivery routes manage auth per-route: tracking lookups are public.
		deliveryHandler.RegisterRoutes(r, authn)

		// --- Protected Routes ---
		r.Group(func(r chi.Router) {
			r.Use(authn)
			log.Info("AUTH", "JWT middleware applied to protected API routes")

			cartHandler.RegisterRoutes(r)
			orderHandler.RegisterRoutes(r)
			eventHandler.RegisterRoutes(r)
			reportHandler.RegisterRoutes(r)
			log.Info("ROUTER", "Cart, order, event and report routes registered under /api")
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Flora Commerce service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Flora Commerce service shutdown complete")
	}
}
