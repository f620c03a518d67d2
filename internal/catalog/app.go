package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"Bookshelf/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

type Config struct {
	GraphiQL bool

	// RateLimit is GraphQL requests per minute per client IP; zero disables it.
	RateLimit int

	MaxDepth       int
	MaxParallelism int
}

const rateLimitWindowSeconds = 60

// NewServer builds the schema over store and wires the GraphQL metrics into
// deps.Registry when one is given.
func NewServer(store Store, cfg Config, deps HTTPDeps) (*Server, error) {
	schema, err := NewSchema(store, SchemaOptions{
		Log:            deps.Log,
		MaxDepth:       cfg.MaxDepth,
		MaxParallelism: cfg.MaxParallelism,
	})
	if err != nil {
		return nil, err
	}

	s := &Server{
		Store:    store,
		Schema:   schema,
		Log:      deps.Log,
		GraphiQL: cfg.GraphiQL,
	}
	if deps.Registry != nil {
		s.Metrics = NewMetrics(deps.Registry, store)
	}
	if cfg.RateLimit > 0 {
		s.Limiter = kit.NewIPRateLimiter(cfg.RateLimit, rateLimitWindowSeconds)
	}
	return s, nil
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, deps)

	r.Mount("/", s.Routes())
	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}
