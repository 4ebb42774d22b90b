package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"edgar-ai/internal/handlers"
	"edgar-ai/internal/metrics"
	"edgar-ai/internal/rag"
	"edgar-ai/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine      rag.Engine
	CompanyRepo storage.CompanyStore
	DB          handlers.Pinger
	VectorStore handlers.HealthChecker
	Metrics     *metrics.Metrics
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)
	r.Use(MetricsMiddleware(deps.Metrics))

	queryHandler := handlers.NewQueryHandler(deps.Engine)
	companiesHandler := handlers.NewCompaniesHandler(deps.CompanyRepo)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.VectorStore)

	// Register API routes
	r.Route("/v1", func(r chi.Router) {
		r.Method(http.MethodPost, "/query", queryHandler)
		r.Method(http.MethodGet, "/companies", companiesHandler)
	})

	r.Method(http.MethodGet, "/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
