package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm/logger"

	"github.com/vitalwatch/vitalwatch/internal/analysis"
	"github.com/vitalwatch/vitalwatch/internal/config"
	"github.com/vitalwatch/vitalwatch/internal/database"
	"github.com/vitalwatch/vitalwatch/internal/handlers"
	"github.com/vitalwatch/vitalwatch/internal/middleware"
	"github.com/vitalwatch/vitalwatch/internal/mqtt"
	"github.com/vitalwatch/vitalwatch/internal/notify"
	"github.com/vitalwatch/vitalwatch/internal/services"
	"github.com/vitalwatch/vitalwatch/internal/state"
	"github.com/vitalwatch/vitalwatch/internal/ws"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading it (this is fine if using environment variables): %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	log.Printf("Starting VitalWatch monitoring server...")

	// Initialize database connection
	if err := database.Connect(cfg.DatabaseURL, logger.Warn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run database migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Seed the default patient roster
	if err := database.InitializeDefaults(); err != nil {
		log.Fatalf("Failed to initialize database defaults: %v", err)
	}

	// Load classifier thresholds
	thresholds := analysis.DefaultThresholds()
	if cfg.ThresholdsFile != "" {
		thresholds, err = analysis.LoadThresholds(cfg.ThresholdsFile)
		if err != nil {
			log.Fatalf("Failed to load thresholds: %v", err)
		}
		log.Printf("Loaded classifier thresholds from %s", cfg.ThresholdsFile)
	}
	classifier := analysis.NewClassifier(thresholds)

	// Initialize shared state and the subscriber hub
	states := state.NewTable()
	hub := ws.NewHub()

	// Initialize the ingestion pipeline
	ingestService := services.NewIngestService(database.GetDB(), classifier, states, hub)
	log.Printf("Ingestion pipeline initialized")

	if cfg.SlackEnabled() {
		ingestService.SetNotifier(notify.NewSlackNotifier(cfg.SlackToken, cfg.SlackAlertsChannel))
		log.Printf("Slack notifications enabled for channel %s", cfg.SlackAlertsChannel)
	}

	// Initialize API handler
	apiHandler := handlers.NewAPIHandler(database.GetDB(), ingestService, states, hub)

	// Set up HTTP server routes
	mux := http.NewServeMux()
	apiHandler.SetupRoutes(mux)

	// Wrap all routes with CORS first, then request IDs
	corsMiddleware := middleware.NewCORSMiddleware() // Allow all origins
	wrapped := corsMiddleware.Wrap(middleware.RequestIDMiddleware(mux))

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: wrapped,
	}

	go func() {
		log.Printf("Starting HTTP server on port %d", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Start the optional MQTT ingest bridge
	var bridge *mqtt.Bridge
	if cfg.MQTTBroker != "" {
		bridge, err = mqtt.NewBridge(cfg, ingestService)
		if err != nil {
			log.Fatalf("Failed to start MQTT bridge: %v", err)
		}
		log.Printf("MQTT ingest bridge active on %s", cfg.MQTTBroker)
	}

	log.Printf("Telemetry endpoint: http://localhost:%d/api/telemetry", cfg.HTTPPort)
	log.Printf("Event stream: ws://localhost:%d/ws", cfg.HTTPPort)
	log.Printf("Health check endpoint: http://localhost:%d/health", cfg.HTTPPort)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Received shutdown signal, cleaning up...")

	if bridge != nil {
		log.Println("Shutting down MQTT bridge...")
		bridge.Disconnect(250)
	}

	log.Println("Shutting down HTTP server...")
	if err := httpServer.Close(); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	if err := database.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	log.Println("Shutdown complete")
}

// setupLogging routes the standard logger through a rotating file, with
// optional console mirroring.
func setupLogging(cfg *config.Config) {
	logFile := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    5,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	if cfg.LogToConsole {
		log.SetOutput(io.MultiWriter(os.Stdout, logFile))
	} else {
		log.SetOutput(logFile)
	}
}
