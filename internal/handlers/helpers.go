package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"propertybot/internal/models"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

// searchLimit reads ?limit=, falling back to the default for missing or
// unparsable values and clamping to [1, maxSearchLimit].
func searchLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return defaultSearchLimit
	}
	return max(1, min(n, maxSearchLimit))
}
