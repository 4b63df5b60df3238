// Package api exposes a pkg/bptree.Tree as an HTTP key-value and
// range-scan service.
package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the chi router for index, wrapping it with the
// teacher's middleware ordering: request logging, panic recovery, CORS,
// then API-key auth on everything under /v1.
func NewRouter(index Indexer, config ServerConfig, metrics *Metrics) http.Handler {
	server := NewServer(index, config, metrics)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint and liveness check, unprotected for
	// scraping/orchestration.
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", server.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(config.APIKey)))

		r.Put("/kv/{key}", metrics.InstrumentHandler("PUT", "/v1/kv/{key}", server.handlePut))
		r.Get("/kv/{key}", metrics.InstrumentHandler("GET", "/v1/kv/{key}", server.handleGet))
		r.Delete("/kv/{key}", metrics.InstrumentHandler("DELETE", "/v1/kv/{key}", server.handleDelete))
		r.Get("/range", metrics.InstrumentHandler("GET", "/v1/range", server.handleRange))
	})

	return r
}

// StartServer starts the HTTP server with all routes configured. It
// blocks until the server exits.
func StartServer(index Indexer, config ServerConfig) error {
	metrics := NewMetrics()
	r := NewRouter(index, config, metrics)

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	fmt.Printf("Starting bptree API server on %s\n", addr)
	fmt.Printf("Metrics available at: http://%s/metrics\n", addr)
	log.Println(http.ListenAndServe(addr, r))

	return nil
}
