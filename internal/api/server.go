package api

import (
	"net/http"
	"time"

	"github.com/exotic-travel-booking/backend/internal/middleware"
	"github.com/exotic-travel-booking/backend/internal/orchestrator"
)

// Config tunes the router's middleware chain. It mirrors the fields of
// internal/config.Config that api.NewRouter actually needs, keeping this
// package from depending on the root config package.
type Config struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// NewRouter builds the full HTTP handler: every route in spec.md 6, wrapped
// in the teacher's middleware chain.
func NewRouter(o *orchestrator.Orchestrator, cfg Config) http.Handler {
	mux := http.NewServeMux()

	h := &handlers{orchestrator: o}

	mux.HandleFunc("GET /health", h.health)

	mux.HandleFunc("POST /api/itinerary", h.createItinerary)
	mux.HandleFunc("POST /api/route/from-selection", h.createRouteFromSelection)
	mux.HandleFunc("POST /api/discover", h.discover)
	mux.HandleFunc("POST /api/discover/food", h.discoverFood)
	mux.HandleFunc("GET /api/places/{place_id}", h.getPlaceDetails)
	mux.HandleFunc("POST /api/geocode", h.geocode)
	mux.HandleFunc("POST /api/geocode/batch", h.geocodeBatch)
	mux.HandleFunc("POST /api/pois/lookup", h.lookupPOIs)
	mux.HandleFunc("GET /api/city/center", h.cityCenter)

	rateLimitRPS := cfg.RateLimitRPS
	if rateLimitRPS <= 0 {
		rateLimitRPS = 5
	}
	rateLimitBurst := cfg.RateLimitBurst
	if rateLimitBurst <= 0 {
		rateLimitBurst = 10
	}
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = 10 << 20
	}

	limiter := middleware.NewRateLimiter(rateLimitRPS, rateLimitBurst)
	breaker := middleware.NewCircuitBreaker(5, 30*time.Second)

	return middleware.Chain(
		mux,
		middleware.RequestID(),
		middleware.Tracing(),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.SecurityHeaders(),
		limiter.Middleware,
		middleware.TimeoutMiddleware(requestTimeout),
		middleware.InputValidation(maxBodyBytes),
		middleware.CompressionMiddleware(),
		middleware.ActiveRequestsMiddleware(),
		middleware.PerformanceMiddleware(),
		breaker.CircuitBreakerMiddleware(),
		middleware.Logging(),
		middleware.Recovery(),
	)
}

// handlers groups every endpoint method on the orchestrator it's backed
// by, matching the teacher's *Handlers-struct-per-resource pattern.
type handlers struct {
	orchestrator *orchestrator.Orchestrator
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
