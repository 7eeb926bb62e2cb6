// Package api wires the HTTP surface: a chi router with CORS, request
// logging, and optional throttling in front of the lead query service.
package api

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/sells-group/lead-api/internal/config"
	"github.com/sells-group/lead-api/internal/service"
)

//go:embed dashboard.html
var dashboardHTML []byte

// Router builds the HTTP handler tree.
func Router(svc *service.Service, cfg config.ServerConfig) http.Handler {
	h := &handlers{svc: svc}

	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))
	if cfg.RateLimitRPS > 0 {
		r.Use(throttle(rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)))
	}

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(dashboardHTML)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Get("/leads", h.listLeads)
		r.Get("/leads/{sessionId}", h.getLead)
		r.Get("/stats", h.stats)
	})

	return r
}
