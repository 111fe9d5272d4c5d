// internal/handlers/router.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"kata_lens/internal/middleware"
)

// RouterConfig holds everything the HTTP surface needs.
type RouterConfig struct {
	Logger    *slog.Logger
	Translate *TranslateHandler
	Storage   *StorageHandler
	CORS      cors.Options
	// Health reports backend readiness for /health. Nil means always healthy.
	Health  func(ctx context.Context) error
	Timeout time.Duration
}

// NewRouter wires the middleware chain and every route of the backend.
func NewRouter(cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 150 * time.Second
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewStructuredLogger(logger))
	r.Use(middleware.DebugBodyLogger(logger))
	r.Use(middleware.Metrics)

	corsOptions := cfg.CORS
	corsOptions.OptionsSuccessStatus = http.StatusOK
	r.Use(cors.New(corsOptions).Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(timeout))

	r.Route("/api", func(r chi.Router) {
		if cfg.Translate != nil {
			r.HandleFunc("/translate", cfg.Translate.Translate)
		}
		if cfg.Storage != nil {
			r.Get("/storage", cfg.Storage.Handle)
			r.Post("/storage", cfg.Storage.Handle)
			r.Options("/storage", Options)
		}
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(r.Context()); err != nil {
				middleware.GetLogger(r.Context()).Error("Health check failed", slog.Any("error", err))
				http.Error(w, "Health check failed", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
