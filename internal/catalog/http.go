package catalog

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	graphql "github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"

	"Bookshelf/pkg/kit"
)

const GraphQLPath = "/graphql"

type Server struct {
	Store  Store
	Schema *graphql.Schema
	Log    *zap.Logger

	GraphiQL bool
	Metrics  *Metrics

	// Limiter, when set, throttles GraphQL requests per client IP.
	Limiter *kit.IPRateLimiter
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Store.Ping(ctx); err != nil {
			if s.Log != nil {
				s.Log.Warn("readyz failed", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	var gql chi.Router = r
	if s.Limiter != nil {
		gql = r.With(s.Limiter.Middleware)
	}
	gql.Handle(GraphQLPath, &GraphQLHandler{
		Schema:   s.Schema,
		GraphiQL: s.GraphiQL,
		Log:      s.Log,
		Metrics:  s.Metrics,
	})

	return r
}
