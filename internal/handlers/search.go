package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"propertybot/internal/models"
)

type listingSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.Property, error)
}

type SearchHandler struct {
	catalog listingSearcher
}

func NewSearchHandler(catalog listingSearcher) *SearchHandler {
	return &SearchHandler{catalog: catalog}
}

type searchResponse struct {
	Query      string                  `json:"query"`
	Properties []models.PropertyResult `json:"properties"`
}

// Search answers GET /api/search?q=&limit=.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	props, err := h.catalog.Search(r.Context(), query, searchLimit(r))
	if err != nil {
		log.Printf("Search failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("SEARCH_ERROR", "Failed to search properties", r))
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:      query,
		Properties: models.Results(props),
	})
}
