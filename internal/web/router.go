package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jusunglee/hangulize/internal/transcription"
	"github.com/jusunglee/hangulize/internal/web/handlers"
	"github.com/jusunglee/hangulize/internal/web/middleware"
)

type Config struct {
	AllowedOrigins []string
	// AdminAPIKey guards history deletion. Empty disables the route.
	AdminAPIKey     string
	RateLimit       int
	RateLimitWindow time.Duration
}

type Router struct {
	svc    *transcription.Service
	log    *slog.Logger
	config Config
}

func NewRouter(svc *transcription.Service, log *slog.Logger, config Config) *Router {
	if config.RateLimit <= 0 {
		config.RateLimit = 30
	}
	if config.RateLimitWindow <= 0 {
		config.RateLimitWindow = time.Minute
	}
	return &Router{svc: svc, log: log, config: config}
}

// Handler builds the HTTP API. ctx bounds the rate limiter's background
// sweep.
func (r *Router) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()

	languageHandler := handlers.NewLanguageHandler(r.svc)
	transcriptionHandler := handlers.NewTranscriptionHandler(r.svc, r.log)

	rateLimiter := middleware.NewRateLimiter(ctx, r.config.RateLimit, r.config.RateLimitWindow)

	mux.Handle("GET /api/v1/languages",
		middleware.Chain(
			http.HandlerFunc(languageHandler.List),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.CacheControl("public, max-age=300"),
		),
	)

	mux.Handle("POST /api/v1/transcriptions",
		middleware.Chain(
			http.HandlerFunc(transcriptionHandler.Create),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.RateLimit(rateLimiter),
		),
	)

	mux.Handle("POST /api/v1/transcriptions/batch",
		middleware.Chain(
			http.HandlerFunc(transcriptionHandler.Batch),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.RateLimit(rateLimiter),
		),
	)

	mux.Handle("GET /api/v1/transcriptions",
		middleware.Chain(
			http.HandlerFunc(transcriptionHandler.List),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.CacheControl("public, s-maxage=5, max-age=0"),
		),
	)

	if r.config.AdminAPIKey != "" {
		mux.Handle("DELETE /api/v1/transcriptions",
			middleware.Chain(
				http.HandlerFunc(transcriptionHandler.Prune),
				middleware.PrometheusMetrics(),
				middleware.RequestLogger(r.log),
				middleware.APIKeyAuth(r.config.AdminAPIKey),
			),
		)
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.CORS(r.config.AllowedOrigins)(mux)
}
