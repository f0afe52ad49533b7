package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"codeclinic/internal/analysis"
	"codeclinic/internal/auth"
	"codeclinic/internal/config"
	"codeclinic/internal/docstore"
	"codeclinic/internal/events"
	"codeclinic/internal/gemini"
	"codeclinic/internal/history"
	"codeclinic/internal/notify"
	"codeclinic/internal/server"
	"codeclinic/internal/user"

	"github.com/joho/godotenv"
)

// Version is set at compile time
var Version = "dev"

func main() {
	log.Println("╔════════════════════════════════════════════════════════════════╗")
	log.Println("║             CodeClinic - AI-Powered Code Debugging             ║")
	log.Println("║         Syntax Checks • Bug Detection • Fix Suggestions        ║")
	log.Println("╚════════════════════════════════════════════════════════════════╝")

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found or failed to load, using environment variables only")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Load configuration from environment
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Println("✅ Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open the persistent document store. A failure here degrades to
	// memory-only operation rather than refusing to start.
	db, err := docstore.Open(cfg.DataDir)
	if err != nil {
		log.Printf("⚠️  Failed to open document store, running without persistence: %v", err)
		db = nil
	} else {
		log.Println("✅ Document store initialized successfully")
	}

	// Initialize stores
	historyStore := history.NewStore(db)
	log.Println("✅ History store initialized successfully")

	userStore := user.NewStore(db)
	log.Println("✅ User store initialized successfully")

	// Initialize authentication service
	authService := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.SessionSecret, userStore)
	log.Println("✅ Authentication service initialized successfully")

	// Initialize the Gemini completion client
	geminiClient := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Endpoint, cfg.Gemini.Model, cfg.Gemini.RequestTimeout)
	log.Printf("✅ Gemini client initialized (model: %s)", cfg.Gemini.Model)

	// Initialize the analyzer
	analyzer := analysis.NewAnalyzer(geminiClient, historyStore, cfg.Gemini.MaxPromptTokens)
	log.Println("✅ Analyzer initialized successfully")

	// Initialize WebSocket broadcaster
	broadcaster := notify.NewBroadcaster()
	analyzer.AddEventSink(broadcaster)
	log.Println("✅ WebSocket broadcaster initialized successfully")

	// Initialize optional Kafka event producer
	if cfg.Events.Enable {
		producer := events.NewProducer(events.ProducerConfig{
			Brokers: cfg.Events.Brokers,
			Topic:   cfg.Events.Topic,
		})
		if err := producer.Connect(ctx); err != nil {
			log.Printf("⚠️  Kafka producer failed to start: %v. Continuing without it.", err)
		} else {
			analyzer.AddEventSink(producer)
			defer producer.Close()
			log.Printf("✅ Kafka event producer connected (topic: %s)", cfg.Events.Topic)
		}
	} else {
		log.Println("ℹ️  Kafka event stream disabled in configuration")
	}

	app := &server.App{
		Config:      cfg,
		Analyzer:    analyzer,
		History:     historyStore,
		Users:       userStore,
		AuthService: authService,
		Broadcaster: broadcaster,
	}

	printStartupBanner(cfg)

	if err := server.Start(ctx, app); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}

	log.Println("🛑 Server stopped")
}

// printStartupBanner prints the startup information banner
func printStartupBanner(cfg *config.Config) {
	log.Println("╔════════════════════════════════════════════════════════════════╗")
	log.Println("║                    🚀 Starting CodeClinic 🚀                   ║")
	log.Printf("║  🤖 Model: %s", cfg.Gemini.Model)
	log.Printf("║  ⏱️  Request timeout: %s", cfg.Gemini.RequestTimeout)
	log.Printf("║  📜 History window: %d records", cfg.History.DefaultLimit)
	log.Printf("║  🌐 Server: http://localhost:%d", cfg.ServerPort)
	log.Printf("║  🔗 WebSocket: ws://localhost:%d/ws", cfg.ServerPort)
	log.Println("╚════════════════════════════════════════════════════════════════╝")
}
