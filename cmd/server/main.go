package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"sketchmachine-backend/internal/config"
	"sketchmachine-backend/internal/database"
	"sketchmachine-backend/internal/dispatch"
	"sketchmachine-backend/internal/handlers"
	"sketchmachine-backend/internal/logging"
	"sketchmachine-backend/internal/middleware"
	"sketchmachine-backend/internal/narrative"
	"sketchmachine-backend/internal/packets"
	"sketchmachine-backend/internal/providers/faceswap"
	"sketchmachine-backend/internal/providers/higgsfield"
	"sketchmachine-backend/internal/providers/kie"
	"sketchmachine-backend/internal/seedbank"
	"sketchmachine-backend/internal/services"
	"sketchmachine-backend/internal/supabase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := logging.New(cfg.Environment)

	// Provider clients
	kieClient := kie.NewClient(cfg.KieBaseURL, cfg.KieAPIKey)
	higgsClient := higgsfield.NewClient(cfg.HiggsfieldBaseURL, cfg.HiggsfieldAPIKey, cfg.HiggsfieldSecret)
	swapClient := faceswap.NewClient(cfg.FaceSwapBaseURL, cfg.FaceSwapAPIKey)
	synthesizer := narrative.NewSynthesizer(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, logger)

	// Supabase clients
	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Supabase client: %v", err)
	}
	realtimeClient := supabase.NewRealtimeClient(supabaseClient.Supabase)

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	if err != nil {
		log.Fatalf("Failed to initialize storage client: %v", err)
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database client: %v", err)
	}

	migrator, err := database.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		log.Printf("Warning: Failed to initialize migrator: %v", err)
	} else {
		defer migrator.Close()
		if err := migrator.Run(); err != nil {
			log.Printf("Warning: Migration failed: %v", err)
		} else {
			log.Println("Migrations completed successfully")
		}
	}

	// Pipeline services
	seedResolver := seedbank.NewResolver(dbClient)
	packetSelector := packets.NewSelector(dbClient)
	completion := services.NewCompletionService(dbClient, higgsClient, storageClient, realtimeClient, logger)

	standardLane := dispatch.NewStandard(kieClient, dbClient, cfg.BaseURL, logger)
	premiumLane := dispatch.NewPremium(higgsClient, swapClient, dbClient, completion, logger)

	// Handlers
	generateHandler := handlers.NewGenerateHandler(
		seedResolver, packetSelector, synthesizer, dbClient,
		standardLane, premiumLane, cfg.PremiumLaneEnabled, cfg.SupabaseURL, logger,
	)
	seedHandler := handlers.NewSeedHandler(seedResolver)
	statusHandler := handlers.NewStatusHandler(dbClient)
	pollHandler := handlers.NewPollHandler(completion)
	webhookHandler := handlers.NewWebhookHandler(cfg.KieWebhookToken, completion, logger)

	// Router
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.GET("/health", handlers.HealthHandler)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))
	api.POST("/sketches/generate", generateHandler.Generate)
	api.POST("/seeds", seedHandler.GetSeed)
	api.GET("/sketches/:job_id/status", statusHandler.GetStatus)

	// Webhook (no auth, uses the shared provider token)
	router.POST("/webhooks/kie", webhookHandler.HandleKieWebhook)

	// Service-to-service poller trigger
	router.POST("/internal/poll", pollHandler.TriggerPoll)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
