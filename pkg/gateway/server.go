package gateway

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter assembles the gateway's HTTP surface: health, metrics and the
// rate-limited publish endpoint.
func NewRouter(api *API, cfg *Config, logger zerolog.Logger, reg *prometheus.Registry) http.Handler {
	router := chi.NewRouter()
	router.Use(recoverer(logger))
	router.Use(requestLogger(logger))

	router.Get("/health", api.HandleHealth)
	if reg != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	router.Group(func(r chi.Router) {
		r.Use(httprate.Limit(
			cfg.RateLimitCount,
			cfg.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(int(cfg.RateLimitWindow.Seconds())))
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"Too many requests"}`))
			}),
		))
		r.Post("/api/publish", api.HandlePublish)
	})

	return router
}

// NewServer wraps the router in an http.Server with timeouts suitable for a
// small JSON API.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// recoverer is the catch-all boundary: an unhandled panic becomes a generic
// 500 with the detail logged server-side only.
func recoverer(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("Recovered from panic in request handler")
					writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("Request handled")
		})
	}
}
