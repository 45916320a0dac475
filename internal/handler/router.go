package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/getpassword/getpassword-go/internal/middleware"
	"github.com/getpassword/getpassword-go/internal/service"
)

// RouterConfig wires services into the HTTP API.
type RouterConfig struct {
	Generator      *service.GeneratorService
	Sessions       *service.SessionService
	SessionSecret  string
	RateLimitRPS   float64 // <= 0 disables rate limiting
	RateLimitBurst int
}

// NewRouter builds the widget's routes. ctx bounds background work started by
// the middleware.
func NewRouter(ctx context.Context, cfg RouterConfig) http.Handler {
	genHandler := NewGeneratorHandler(cfg.Generator)
	sessHandler := NewSessionHandler(cfg.Sessions)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/", HandleIndex)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		if cfg.RateLimitRPS > 0 {
			r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst))
		}
		r.Post("/api/v1/generate", genHandler.HandleGenerate)
		r.Post("/api/v1/sessions", sessHandler.HandleCreate)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(cfg.SessionSecret))
		r.Get("/api/v1/session", sessHandler.HandleState)
		r.Patch("/api/v1/session/options", sessHandler.HandleUpdateOptions)
		r.Post("/api/v1/session/regenerate", sessHandler.HandleRegenerate)
		r.Post("/api/v1/session/copy", sessHandler.HandleCopy)
		r.Get("/api/v1/session/events", sessHandler.HandleEvents)
	})

	return r
}
