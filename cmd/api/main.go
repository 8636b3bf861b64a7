package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"proofok-api/config"
	"proofok-api/controllers"
	"proofok-api/middleware"
	"proofok-api/routes"
	"proofok-api/services"
	"proofok-api/store"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	logs := config.InitLogging(config.ServiceName, cfg.LogDir)
	defer logs.Close()

	records, err := store.Open(context.Background(), cfg)
	if err != nil {
		log.Fatalf("❌ Failed to open %s record store: %v", cfg.Store.Driver, err)
	}
	defer records.Close()

	mode, err := services.ParseDeliveryMode(cfg.Mail.Mode)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	// The pool lives for the whole process; deliveries still running at exit are abandoned.
	pool := services.NewWorkerPool(cfg.Mail.Workers, cfg.Mail.QueueSize)
	dispatcher, err := services.NewNotificationDispatcher(mode, config.NewMailer(cfg.Mail), pool, cfg.Mail.Timeout())
	if err != nil {
		log.Fatalf("❌ Failed to configure notifications: %v", err)
	}

	submissions, err := services.NewSubmissionService(records, cfg.UploadDir, cfg.MaxUploadBytes())
	if err != nil {
		log.Fatalf("❌ Failed to prepare uploads: %v", err)
	}
	decisions := services.NewDecisionService(records, services.NewNotificationComposer(), dispatcher)

	// Set Gin mode
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logs.Writer
	gin.DefaultErrorWriter = logs.Writer

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestMetrics())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	proofs := controllers.NewProofHandler(submissions, decisions, cfg.BaseURL, cfg.MaxUploadMB)
	routes.SetupRoutes(router, proofs, routes.Options{
		MonitorTokenHash: cfg.MonitorTokenHash,
		LogPath:          logs.Path,
	})

	log.Printf("🚀 Server starting on port %s (%s)", cfg.ServerPort, controllers.Version)
	log.Printf("📦 Record store: %s", cfg.Store.Driver)
	log.Printf("📧 Notifications: %s via %s (timeout %s, %d workers)", mode, cfg.Mail.Endpoint(), cfg.Mail.Timeout(), pool.Workers())
	if cfg.BaseURL != "" {
		log.Printf("🔗 Share links use %s", cfg.BaseURL)
	}
	if cfg.MonitorTokenHash == "" {
		log.Printf("🔒 Monitor routes disabled (MONITOR_TOKEN_HASH not set)")
	}

	if cfg.IsProduction() {
		log.Printf("🏭 Running in production mode")
	} else {
		log.Printf("🔧 Running in development mode")
	}

	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("❌ Failed to start server:", err)
	}
}
