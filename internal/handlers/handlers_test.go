package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"propertybot/internal/models"
	"propertybot/internal/services"
)

type stubChatService struct {
	resp    *models.ChatResponse
	err     error
	message string
}

func (s *stubChatService) Reply(ctx context.Context, message string) (*models.ChatResponse, error) {
	s.message = message
	if strings.TrimSpace(message) == "" {
		return nil, services.ErrEmptyMessage
	}
	return s.resp, s.err
}

type stubCatalog struct {
	props     []models.Property
	err       error
	lastQuery string
	lastLimit int
}

func (c *stubCatalog) Search(ctx context.Context, query string, limit int) ([]models.Property, error) {
	c.lastQuery = query
	c.lastLimit = limit
	if c.err != nil {
		return nil, c.err
	}
	return c.props[:min(limit, len(c.props))], nil
}

// ─── Chat Handler Tests ───

func TestChatHandler_Success(t *testing.T) {
	svc := &stubChatService{resp: &models.ChatResponse{
		Reply:      "Here are 1 properties",
		Properties: []models.PropertyResult{{Title: "Duplex", Price: 1500000}},
	}}
	h := NewChatHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"3 bedroom flat in Lekki"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Chat(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if svc.message != "3 bedroom flat in Lekki" {
		t.Fatalf("unexpected message passed to service %q", svc.message)
	}

	var resp models.ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Reply != "Here are 1 properties" || len(resp.Properties) != 1 || resp.Properties[0].Price != 1500000 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestChatHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty message", `{"message":""}`},
		{"whitespace message", `{"message":"   "}`},
		{"missing message", `{}`},
		{"malformed json", `{"message":`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewChatHandler(&stubChatService{})

			req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(tc.body))
			req.Header.Set("X-Request-ID", "req-1")
			rr := httptest.NewRecorder()
			h.Chat(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
			}
			var resp models.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Error.Code != "VALIDATION_ERROR" || resp.Error.RequestID != "req-1" {
				t.Fatalf("unexpected error body %+v", resp)
			}
		})
	}
}

func TestChatHandler_ServiceFailure(t *testing.T) {
	h := NewChatHandler(&stubChatService{err: errors.New("embedder down")})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"lekki"}`))
	rr := httptest.NewRecorder()
	h.Chat(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
}

// ─── Search Handler Tests ───

func TestSearchHandler_ClampsLimit(t *testing.T) {
	tests := []struct {
		query    string
		expected int
	}{
		{"", defaultSearchLimit},
		{"?limit=abc", defaultSearchLimit},
		{"?limit=0", 1},
		{"?limit=500", maxSearchLimit},
		{"?limit=5", 5},
	}

	for _, tc := range tests {
		cat := &stubCatalog{}
		h := NewSearchHandler(cat)

		rr := httptest.NewRecorder()
		h.Search(rr, httptest.NewRequest(http.MethodGet, "/api/search"+tc.query, nil))

		if cat.lastLimit != tc.expected {
			t.Errorf("%q: expected limit %d, got %d", tc.query, tc.expected, cat.lastLimit)
		}
	}
}

func TestSearchHandler_ReturnsResults(t *testing.T) {
	cat := &stubCatalog{props: []models.Property{
		{Title: "Duplex", Location: "Lekki", ImageURL: " https://x/1.jpg "},
	}}
	h := NewSearchHandler(cat)

	rr := httptest.NewRecorder()
	h.Search(rr, httptest.NewRequest(http.MethodGet, "/api/search?q=+lekki+", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if cat.lastQuery != "lekki" {
		t.Fatalf("expected trimmed query, got %q", cat.lastQuery)
	}

	var resp searchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Query != "lekki" || len(resp.Properties) != 1 || resp.Properties[0].ImageURL != "https://x/1.jpg" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestSearchHandler_Failure(t *testing.T) {
	h := NewSearchHandler(&stubCatalog{err: errors.New("db down")})

	rr := httptest.NewRecorder()
	h.Search(rr, httptest.NewRequest(http.MethodGet, "/api/search?q=x", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
}

// ─── Page Handler Tests ───

func TestPageHandler_HomeListsCards(t *testing.T) {
	props := make([]models.Property, 12)
	for i := range props {
		props[i] = models.Property{Title: "Listing", Price: 1500000}
	}
	cat := &stubCatalog{props: props}
	h := NewPageHandler(cat, nil)

	rr := httptest.NewRecorder()
	h.Home(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if cat.lastLimit != homeListingCount {
		t.Fatalf("expected %d listings requested, got %d", homeListingCount, cat.lastLimit)
	}
	if got := strings.Count(rr.Body.String(), "₦1,500,000"); got != homeListingCount {
		t.Fatalf("expected %d cards, got %d", homeListingCount, got)
	}
}

func TestPageHandler_SearchEscapesQuery(t *testing.T) {
	h := NewPageHandler(&stubCatalog{}, nil)

	rr := httptest.NewRecorder()
	h.Search(rr, httptest.NewRequest(http.MethodGet, "/search?q=%3Cscript%3E", nil))

	body := rr.Body.String()
	if strings.Contains(body, "<script>") {
		t.Fatalf("query was not escaped")
	}
	if !strings.Contains(body, "No properties found.") {
		t.Fatalf("expected empty state")
	}
}
