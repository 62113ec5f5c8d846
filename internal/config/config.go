package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Catalog
	PropertiesPath  string
	ChatResultLimit int

	// Database (optional; catalog is read from Postgres when set)
	DatabaseURL string

	// Redis (optional response cache)
	RedisURL string
	CacheTTL time.Duration

	// Gemini embeddings (optional; lexical embeddings otherwise)
	GeminiAPIKey         string
	EmbeddingModel       string
	GeminiConcurrentReqs int
	EmbedWorkers         int

	// Rate limiting on /api/chat, requests per minute per client
	ChatRateLimit int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		PropertiesPath:       getEnvOrDefault("PROPERTIES_PATH", "data/properties.json"),
		ChatResultLimit:      getEnvAsIntOrDefault("CHAT_RESULT_LIMIT", 3),
		DatabaseURL:          getEnvOrDefault("DATABASE_URL", ""),
		RedisURL:             getEnvOrDefault("REDIS_URL", ""),
		CacheTTL:             getEnvAsDurationOrDefault("CACHE_TTL", 10*time.Minute),
		GeminiAPIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
		EmbeddingModel:       getEnvOrDefault("EMBEDDING_MODEL", "text-embedding-004"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		EmbedWorkers:         getEnvAsIntOrDefault("EMBED_WORKERS", 4),
		ChatRateLimit:        getEnvAsIntOrDefault("CHAT_RATE_LIMIT", 30),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:8080"),
	}

	return cfg
}

// ServerURL returns the chat server the CLI talks to.
func ServerURL() string {
	godotenv.Load()
	return getEnvOrDefault("CHAT_SERVER_URL", "http://localhost:8080")
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
