package main

import (
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"Bookshelf/internal/catalog"
	"Bookshelf/pkg/kit"
)

func main() {
	service := "catalog"
	log := kit.NewLogger(service, os.Getenv("LOG_LEVEL"))
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "5000")

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: getenvBool("METRICS_ENABLED", true),
		MetricsToken:   os.Getenv("METRICS_TOKEN"),
	}

	s, err := catalog.NewServer(catalog.NewStore(), catalog.Config{
		GraphiQL:       getenvBool("GRAPHIQL", true),
		RateLimit:      getenvInt("GRAPHQL_RATE_LIMIT", 0),
		MaxDepth:       getenvInt("GRAPHQL_MAX_DEPTH", 0),
		MaxParallelism: getenvInt("GRAPHQL_MAX_PARALLELISM", 10),
	}, deps)
	if err != nil {
		log.Fatal("init graphql schema failed", zap.Error(err))
	}

	log.Info("catalog service started",
		zap.String("port", port),
		zap.String("endpoint", catalog.GraphQLPath),
	)

	if err := kit.RunHTTPServer(":"+port, catalog.NewHandler(s, deps), log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	n, err := strconv.Atoi(getenv(k, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return n
}

func getenvBool(k string, def bool) bool {
	b, err := strconv.ParseBool(getenv(k, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return b
}
