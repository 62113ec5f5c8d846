package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"propertybot/internal/models"
)

// ResponseCache stores chat responses by normalised message. Cache failures
// are never fatal to a request.
type ResponseCache interface {
	Get(ctx context.Context, message string) (*models.ChatResponse, bool)
	Set(ctx context.Context, message string, resp *models.ChatResponse)
}

type NopCache struct{}

func (NopCache) Get(context.Context, string) (*models.ChatResponse, bool) { return nil, false }
func (NopCache) Set(context.Context, string, *models.ChatResponse)        {}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, message string) (*models.ChatResponse, bool) {
	data, err := c.client.Get(ctx, cacheKey(message)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Chat cache read failed: %v", err)
		}
		return nil, false
	}

	var resp models.ChatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		log.Printf("Chat cache entry corrupt: %v", err)
		return nil, false
	}
	return &resp, true
}

func (c *RedisCache) Set(ctx context.Context, message string, resp *models.ChatResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(message), data, c.ttl).Err(); err != nil {
		log.Printf("Chat cache write failed: %v", err)
	}
}

// cacheKey folds case and whitespace so equivalent questions share an entry.
func cacheKey(message string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(message)), " ")
	sum := sha256.Sum256([]byte(norm))
	return "chat:" + hex.EncodeToString(sum[:])
}
