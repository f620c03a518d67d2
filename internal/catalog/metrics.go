package catalog

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vektah/gqlparser/v2/ast"
)

const (
	labelOperation = "operation"
	labelStatus    = "status"
)

// Metrics covers the GraphQL surface; HTTP-level metrics live in kit.
// A nil *Metrics records nothing.
type Metrics struct {
	Operations *prometheus.CounterVec
}

func NewMetrics(reg *prometheus.Registry, store Store) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graphql_operations_total",
				Help: "Executed GraphQL operations",
			},
			[]string{labelOperation, labelStatus},
		),
	}

	authors := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "catalog_authors",
			Help: "Authors currently in the catalog",
		},
		func() float64 {
			n, _ := store.Counts(context.Background())
			return float64(n)
		},
	)
	books := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "catalog_books",
			Help: "Books currently in the catalog",
		},
		func() float64 {
			_, n := store.Counts(context.Background())
			return float64(n)
		},
	)

	reg.MustRegister(m.Operations, authors, books)
	return m
}

func (m *Metrics) observeOperation(op ast.Operation, status int) {
	if m == nil {
		return
	}
	name := string(op)
	if name == "" {
		name = "unknown"
	}
	m.Operations.WithLabelValues(name, strconv.Itoa(status)).Inc()
}
