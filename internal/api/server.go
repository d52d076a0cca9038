package api

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/vladpavlovski/phm-sub006/internal/api/handler"
	"github.com/vladpavlovski/phm-sub006/internal/cache"
	"github.com/vladpavlovski/phm-sub006/internal/catalog"
	"github.com/vladpavlovski/phm-sub006/internal/config"
	"github.com/vladpavlovski/phm-sub006/internal/graph"
	"github.com/vladpavlovski/phm-sub006/internal/prefs"
	"github.com/vladpavlovski/phm-sub006/internal/routes"
)

// Deps are the components mounted by the router. GraphQL, Upload and Admin
// are optional; a nil surface is not mounted.
type Deps struct {
	Config  *config.Config
	Store   graph.Store
	Prefs   prefs.Store
	Cache   *cache.Cache
	Catalog *catalog.Catalog
	GraphQL http.Handler
	Upload  http.Handler
	Admin   http.Handler
	Logger  *slog.Logger
}

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(d Deps) (*chi.Mux, error) {
	cfg := d.Config
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Authorization", "Content-Type", "If-None-Match", "Cache-Control", "X-CSRF-Token"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(d.Store, d.Prefs, d.Cache, d.Catalog)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	if d.GraphQL != nil {
		r.Handle("/graphql", d.GraphQL)
	}
	if d.Upload != nil {
		r.Post("/upload", d.Upload.ServeHTTP)
	}
	if d.Admin != nil {
		protect, err := adminCSRF(cfg, d.Logger)
		if err != nil {
			return nil, err
		}
		r.Mount(routes.Prefix, protect(d.Admin))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", h.GetCatalog)
		r.Get("/{entity}/{id}/relations", h.GetRelations)
		r.Post("/{entity}/{id}/relations", h.PostRelations)
	})

	return r, nil
}

// adminCSRF protects admin form posts. Without a configured key (allowed
// outside production) the admin surface is served unprotected.
func adminCSRF(cfg *config.Config, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	if cfg.CSRFKey == "" {
		if logger != nil {
			logger.Warn("CSRF_KEY not set, admin forms are unprotected")
		}
		return func(next http.Handler) http.Handler { return next }, nil
	}
	key, err := hex.DecodeString(cfg.CSRFKey)
	if err != nil || len(key) != 32 {
		return nil, fmt.Errorf("CSRF_KEY must be 64 hex characters")
	}
	protect := csrf.Protect(key,
		csrf.Secure(cfg.IsProduction()),
		csrf.Path(routes.Prefix),
		csrf.SameSite(csrf.SameSiteLaxMode),
	)
	if cfg.IsProduction() {
		return protect, nil
	}
	// Local development runs over plain HTTP; the origin check must not
	// assume https.
	return func(next http.Handler) http.Handler {
		inner := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inner.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}, nil
}
