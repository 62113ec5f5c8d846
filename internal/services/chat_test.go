package services

import (
	"context"
	"errors"
	"testing"

	"propertybot/internal/models"
)

type stubMatcher struct {
	props []models.Property
	err   error
	calls int
	lastK int
}

func (m *stubMatcher) Nearest(ctx context.Context, query string, k int) ([]models.Property, error) {
	m.calls++
	m.lastK = k
	if m.err != nil {
		return nil, m.err
	}
	return m.props[:min(k, len(m.props))], nil
}

type memoryCache struct {
	entries map[string]*models.ChatResponse
}

func (c *memoryCache) Get(ctx context.Context, message string) (*models.ChatResponse, bool) {
	resp, ok := c.entries[cacheKey(message)]
	return resp, ok
}

func (c *memoryCache) Set(ctx context.Context, message string, resp *models.ChatResponse) {
	c.entries[cacheKey(message)] = resp
}

func TestChatService_Reply(t *testing.T) {
	matcher := &stubMatcher{props: []models.Property{
		{Title: "Duplex", Price: 1500000, ImageURL: " https://x/1.jpg "},
		{Title: "Flat", Price: 800000},
		{Title: "Terrace", Price: 4200000},
		{Title: "Bungalow", Price: 600000},
	}}
	s := NewChatService(matcher, nil, 0)

	resp, err := s.Reply(context.Background(), "  3 bedroom flat in Lekki ")
	if err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if matcher.lastK != DefaultChatResultLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultChatResultLimit, matcher.lastK)
	}
	if resp.Reply != "Here are 3 properties matching *'3 bedroom flat in Lekki'*:" {
		t.Fatalf("unexpected reply %q", resp.Reply)
	}
	if len(resp.Properties) != 3 || resp.Properties[0].ImageURL != "https://x/1.jpg" {
		t.Fatalf("unexpected properties %+v", resp.Properties)
	}
}

func TestChatService_RejectsBlank(t *testing.T) {
	s := NewChatService(&stubMatcher{}, nil, 3)

	if _, err := s.Reply(context.Background(), "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestChatService_PropagatesSearchError(t *testing.T) {
	s := NewChatService(&stubMatcher{err: errors.New("embedder down")}, nil, 3)

	if _, err := s.Reply(context.Background(), "lekki"); err == nil {
		t.Fatalf("expected search error")
	}
}

func TestChatService_CacheHitEchoesCallerWording(t *testing.T) {
	matcher := &stubMatcher{props: []models.Property{{Title: "Duplex"}}}
	cache := &memoryCache{entries: map[string]*models.ChatResponse{}}
	s := NewChatService(matcher, cache, 3)

	if _, err := s.Reply(context.Background(), "duplex in lekki"); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	resp, err := s.Reply(context.Background(), "Duplex  in LEKKI")
	if err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if matcher.calls != 1 {
		t.Fatalf("expected second reply served from cache, got %d searches", matcher.calls)
	}
	if resp.Reply != "Here is 1 property matching *'Duplex  in LEKKI'*:" {
		t.Fatalf("unexpected reply %q", resp.Reply)
	}
}

func TestReplyText(t *testing.T) {
	tests := []struct {
		n        int
		expected string
	}{
		{0, "Sorry, I couldn't find any properties matching *'q'*."},
		{1, "Here is 1 property matching *'q'*:"},
		{3, "Here are 3 properties matching *'q'*:"},
	}

	for _, tc := range tests {
		if got := replyText("q", tc.n); got != tc.expected {
			t.Errorf("Expected %q, got %q", tc.expected, got)
		}
	}
}

func TestCacheKey_Normalises(t *testing.T) {
	if cacheKey("Flat in  Yaba") != cacheKey(" flat in yaba ") {
		t.Fatalf("expected case and whitespace to be folded")
	}
	if cacheKey("flat") == cacheKey("flats") {
		t.Fatalf("different messages must not collide")
	}
}
