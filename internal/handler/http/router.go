package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/movelaria/search-service/internal/service"
	"github.com/movelaria/search-service/pkg/health"
	"github.com/movelaria/search-service/pkg/middleware"
)

// RouterConfig carries the router's wiring dependencies.
type RouterConfig struct {
	Service         *service.SearchService
	Health          *health.Handler
	TokenValidator  middleware.TokenValidator
	PublicAccountID int64
	CORS            middleware.CORSConfig
	Logger          *slog.Logger
}

// NewRouter creates a chi router with the public and internal search
// surfaces registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Tracing("search"))
	r.Use(middleware.PrometheusMetrics("search"))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	publicHandler := NewPublicHandler(cfg.Service, cfg.PublicAccountID, cfg.Logger)
	searchHandler := NewSearchHandler(cfg.Service, cfg.Logger)

	// Public storefront surface, no auth.
	r.Route("/api/v1/public/search", func(r chi.Router) {
		r.Post("/", publicHandler.Search)
		r.Get("/autocomplete", publicHandler.Autocomplete)
		r.Get("/filter-options", publicHandler.FilterOptions)
		r.Get("/alternatives", publicHandler.Alternatives)
		r.Get("/recent", publicHandler.Recent)
	})

	// Internal surface: bearer auth plus the SEARCH securable.
	r.Route("/api/v1/search", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.TokenValidator))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(securableSearch, permissionRead))
			r.Get("/products", searchHandler.Products)
			r.Get("/suggestions", searchHandler.Suggestions)
			r.Get("/filter-options", searchHandler.FilterOptions)
			r.Get("/history", searchHandler.HistoryList)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(securableSearch, permissionCreate))
			r.Post("/history", searchHandler.HistoryCreate)
		})
	})

	return r
}
