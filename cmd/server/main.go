package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"propertybot/internal/catalog"
	"propertybot/internal/config"
	"propertybot/internal/database"
	"propertybot/internal/handlers"
	"propertybot/internal/middleware"
	"propertybot/internal/models"
	"propertybot/internal/repository"
	"propertybot/internal/router"
	"propertybot/internal/services"
	"propertybot/internal/websocket"
	"propertybot/internal/worker"
)

func main() {
	log.Println("🚀 Starting Property Chat Server...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Load Listings ────
	props, err := loadListings(cfg)
	if err != nil {
		log.Fatalf("✗ Loading listings failed: %v", err)
	}
	props, dropped := catalog.Dedupe(props)
	log.Printf("✓ %d listings loaded (%d duplicate titles dropped)", len(props), dropped)

	// ──── Step 3: Initialize Embedder ────
	var embedder catalog.Embedder
	if cfg.GeminiAPIKey != "" {
		gemini, err := services.NewGeminiEmbedder(cfg.GeminiAPIKey, cfg.EmbeddingModel, cfg.GeminiConcurrentReqs)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		defer gemini.Close()
		embedder = gemini
		log.Printf("✓ Gemini embeddings enabled (%s)", cfg.EmbeddingModel)
	} else {
		embedder = services.NewLexicalEmbedder(0)
		log.Println("✓ Lexical embeddings enabled (GEMINI_API_KEY not set)")
	}

	// ──── Step 4: Embed Catalog ────
	pool := worker.NewPool(cfg.EmbedWorkers)
	embedCtx, cancelEmbed := context.WithTimeout(context.Background(), 5*time.Minute)
	cat, err := catalog.New(embedCtx, props, embedder, pool)
	cancelEmbed()
	if err != nil {
		log.Fatalf("✗ Embedding catalog failed: %v", err)
	}
	log.Printf("✓ Catalog embedded (%d goroutines)", pool.Workers())

	// ──── Step 5: Initialize Response Cache ────
	var cache services.ResponseCache = services.NopCache{}
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer redisClient.Close()
		cache = services.NewRedisCache(redisClient, cfg.CacheTTL)
		log.Printf("✓ Redis response cache enabled (ttl %s)", cfg.CacheTTL)
	}

	// ──── Initialize Services and Handlers ────
	chatService := services.NewChatService(cat, cache, cfg.ChatResultLimit)
	chatHandler := handlers.NewChatHandler(chatService)
	searchHandler := handlers.NewSearchHandler(cat)
	chatPanel := handlers.NewChatPanel(chatService)
	pageHandler := handlers.NewPageHandler(cat, chatPanel)

	chatLimiter := middleware.NewRateLimiter(cfg.ChatRateLimit, time.Minute)

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(chatService, cfg.FrontendURL)
	log.Println("✓ WebSocket hub started")

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		chatHandler,
		searchHandler,
		pageHandler,
		chatPanel,
		wsHub,
		chatLimiter,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		wsHub.Close()
		chatLimiter.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Property Chat Server ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/chat", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/chat/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

// loadListings reads the catalog from Postgres when DATABASE_URL is set and
// from the JSON file at PROPERTIES_PATH otherwise.
func loadListings(cfg *config.Config) ([]models.Property, error) {
	if cfg.DatabaseURL == "" {
		return catalog.LoadFile(cfg.PropertiesPath)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	if err := database.RunMigrations(ctx, pool); err != nil {
		return nil, err
	}
	log.Println("✓ Database migrations applied")

	return repository.NewPropertyRepo(pool).List(ctx)
}
