package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"propertybot/internal/handlers"
	"propertybot/internal/middleware"
	"propertybot/internal/websocket"
)

func New(
	chatHandler *handlers.ChatHandler,
	searchHandler *handlers.SearchHandler,
	pageHandler *handlers.PageHandler,
	chatPanel *handlers.ChatPanel,
	wsHub *websocket.Hub,
	chatLimiter *middleware.RateLimiter,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{frontendURL},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// ──── Pages ────
	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(30 * time.Second))
		r.Get("/", pageHandler.Home)
		r.Get("/search", pageHandler.Search)
	})

	// ──── Chat Panel (form posts from the pages) ────
	r.Route("/chat", func(r chi.Router) {
		r.Post("/open", chatPanel.Open)
		r.Post("/close", chatPanel.Close)
		r.Post("/click", chatPanel.Click)
		r.With(chatLimiter.Middleware).Post("/send", chatPanel.Send)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", searchHandler.Search)

		// ──── Chat Routes (rate limited) ────
		r.Route("/chat", func(r chi.Router) {
			r.Use(chatLimiter.Middleware)
			r.Post("/", chatHandler.Chat)
			r.Get("/ws", wsHub.HandleWebSocket)
		})
	})

	return r
}
