package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/httpx"
)

// RouteRegistrar registers a set of routes against the provided router.
type RouteRegistrar func(r chi.Router)

type routerConfig struct {
	timeout     time.Duration
	middlewares []func(http.Handler) http.Handler
	health      *HealthHandlers

	pages    RouteRegistrar
	api      RouteRegistrar
	static   RouteRegistrar
	notFound http.HandlerFunc
}

// Option customises the router configuration before construction.
type Option func(*routerConfig)

const (
	apiPrefix         = "/api"
	defaultTimeout    = 60 * time.Second
	errorNotFoundCode = "route_not_found"
)

// NewRouter constructs the chi router with shared middleware. API routes live under /api
// and answer unknown paths with a JSON envelope; everything else falls through to the
// HTML not-found page when one is configured.
func NewRouter(opts ...Option) chi.Router {
	cfg := routerConfig{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.health == nil {
		cfg.health = NewHealthHandlers(nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}
	r.Use(middleware.Compress(5), middleware.Timeout(cfg.timeout))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if cfg.notFound != nil && !isAPIPath(req.URL.Path) {
			cfg.notFound(w, req)
			return
		}
		httpx.WriteError(req.Context(), w, httpx.NewError(errorNotFoundCode, fmt.Sprintf("no route for %s", req.URL.Path), http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("method_not_allowed", fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path), http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", cfg.health.Healthz)
	r.Get("/readyz", cfg.health.Readyz)

	if cfg.static != nil {
		cfg.static(r)
	}
	if cfg.pages != nil {
		cfg.pages(r)
	}
	if cfg.api != nil {
		r.Route(apiPrefix, func(api chi.Router) {
			cfg.api(api)
		})
	}
	return r
}

func isAPIPath(p string) bool {
	return p == apiPrefix || strings.HasPrefix(p, apiPrefix+"/")
}

// WithMiddlewares appends global middleware, applied after RequestID and RealIP.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) { cfg.middlewares = append(cfg.middlewares, mw...) }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cfg *routerConfig) {
		if d > 0 {
			cfg.timeout = d
		}
	}
}

// WithHealthHandlers overrides the handlers used for /healthz and /readyz.
func WithHealthHandlers(h *HealthHandlers) Option {
	return func(cfg *routerConfig) { cfg.health = h }
}

// WithPageRoutes registers the HTML pages.
func WithPageRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) { cfg.pages = reg }
}

// WithAPIRoutes registers JSON endpoints under /api.
func WithAPIRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) { cfg.api = reg }
}

// WithStaticRoutes registers asset and image file servers.
func WithStaticRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) { cfg.static = reg }
}

// WithNotFound sets the handler for unknown non-API paths.
func WithNotFound(h http.HandlerFunc) Option {
	return func(cfg *routerConfig) { cfg.notFound = h }
}

// Chain combines registrars so several handler groups can share one mount point.
func Chain(regs ...RouteRegistrar) RouteRegistrar {
	return func(r chi.Router) {
		for _, reg := range regs {
			if reg != nil {
				reg(r)
			}
		}
	}
}
