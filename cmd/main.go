package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"shipment-relay-service/internal/clients"
	"shipment-relay-service/internal/config"
	"shipment-relay-service/internal/handlers"
	"shipment-relay-service/internal/middleware"
	"shipment-relay-service/internal/services"
)

func main() {
	log.Println("Starting Shipment Relay Service...")

	// Load .env if present; real deployments set env vars directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded: %d stores registered", cfg.Stores.Len())

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Server.Env == "production" {
		logger.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client (optional - graceful degradation if Redis unavailable)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Failed to parse Redis URL: %v", err)
			log.Println("Continuing without distributed rate limiting...")
		} else {
			redisClient = redis.NewClient(opt)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := redisClient.Ping(ctx).Err(); err != nil {
				log.Printf("Warning: Failed to connect to Redis: %v", err)
				log.Println("Continuing without distributed rate limiting...")
				redisClient = nil
			} else {
				log.Println("✓ Connected to Redis for rate limiting")
			}
		}
	} else {
		log.Println("REDIS_URL not configured, distributed rate limiting disabled")
	}

	// Initialize clients
	orderdeskClient := clients.NewOrderdeskClient(
		cfg.Orderdesk.BaseURL,
		cfg.Orderdesk.RequestTimeout,
		logger.WithField("component", "orderdesk-client"),
	)
	forwardClient := clients.NewForwardClient(
		cfg.Forward.URL,
		cfg.Forward.RequestTimeout,
		logger.WithField("component", "forward-client"),
	)
	log.Println("Clients initialized")

	// Initialize services
	submitService := services.NewSubmitService(orderdeskClient, cfg.Stores, logger.WithField("component", "submit-service"))
	forwardService := services.NewForwardService(forwardClient, logger.WithField("component", "forward-service"))
	formatterService := services.NewFormatterService(logger.WithField("component", "formatter-service"))
	log.Println("Services initialized")

	// Initialize handlers
	submitHandler := handlers.NewSubmitHandler(submitService, logger.WithField("component", "submit-handler"))
	forwardHandler := handlers.NewForwardHandler(forwardService, logger.WithField("component", "forward-handler"))
	importHandler := handlers.NewImportHandler(formatterService, submitService, logger.WithField("component", "import-handler"))
	log.Println("Handlers initialized")

	// Setup router
	router := setupRouter(submitHandler, forwardHandler, importHandler, logger, redisClient)
	log.Println("Router configured")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Starting server on %s (environment: %s)", addr, cfg.Server.Env)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter wires middleware and routes
func setupRouter(
	submitHandler *handlers.SubmitHandler,
	forwardHandler *handlers.ForwardHandler,
	importHandler *handlers.ImportHandler,
	logger *logrus.Logger,
	redisClient *redis.Client,
) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS())

	if redisClient != nil {
		router.Use(middleware.RedisRateLimit(redisClient, 120, time.Minute, logger))
	} else {
		router.Use(middleware.RateLimit(middleware.NewClientLimiter(2, 10)))
	}

	router.GET("/health", handlers.HealthCheck)
	router.POST("/", forwardHandler.Forward)
	router.POST("/submit", submitHandler.Submit)
	router.POST("/cannon-hill", importHandler.ImportCannonHill)

	return router
}
