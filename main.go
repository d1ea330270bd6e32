package main

import (
	"context"
	"log"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"postpilot/config"
	"postpilot/middleware"
	"postpilot/routes"
	"postpilot/services"
	"postpilot/worker"
)

func main() {
	logger := log.New(os.Stdout, "SERVER: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Error reporting is optional; a missing DSN disables it
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry init failed: %v", err)
		}
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	svcLogger := logrus.New()
	svcLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Start the notification dispatcher
	notifications := services.NewNotificationService(config.DB, svcLogger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go notifications.Start(ctx)

	// Start the retention worker
	retention := worker.NewRetentionWorker(config.DB, log.New(os.Stdout, "RETENTION: ", log.LstdFlags))
	go retention.Start(ctx)

	// Setup routes
	routes.SetupRoutes(app, config.DB, notifications, svcLogger)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Start server
	logger.Printf("Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
