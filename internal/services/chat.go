package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"propertybot/internal/models"
)

const DefaultChatResultLimit = 3

var ErrEmptyMessage = errors.New("no message provided")

// Matcher ranks listings against free text.
type Matcher interface {
	Nearest(ctx context.Context, query string, k int) ([]models.Property, error)
}

type ChatService struct {
	catalog Matcher
	cache   ResponseCache
	limit   int
}

func NewChatService(catalog Matcher, cache ResponseCache, limit int) *ChatService {
	if cache == nil {
		cache = NopCache{}
	}
	if limit < 1 {
		limit = DefaultChatResultLimit
	}
	return &ChatService{
		catalog: catalog,
		cache:   cache,
		limit:   limit,
	}
}

// Reply finds the best matching listings for message.
func (s *ChatService) Reply(ctx context.Context, message string) (*models.ChatResponse, error) {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return nil, ErrEmptyMessage
	}

	// The cache is keyed case-insensitively, so the reply is rebuilt to echo
	// this caller's wording.
	if cached, ok := s.cache.Get(ctx, msg); ok {
		return &models.ChatResponse{
			Reply:      replyText(msg, len(cached.Properties)),
			Properties: cached.Properties,
		}, nil
	}

	matches, err := s.catalog.Nearest(ctx, msg, s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}

	resp := &models.ChatResponse{
		Reply:      replyText(msg, len(matches)),
		Properties: models.Results(matches),
	}
	s.cache.Set(ctx, msg, resp)
	return resp, nil
}

func replyText(msg string, n int) string {
	switch n {
	case 0:
		return fmt.Sprintf("Sorry, I couldn't find any properties matching *'%s'*.", msg)
	case 1:
		return fmt.Sprintf("Here is 1 property matching *'%s'*:", msg)
	default:
		return fmt.Sprintf("Here are %d properties matching *'%s'*:", n, msg)
	}
}
