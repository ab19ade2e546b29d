// Package api flatrec REST API
//
// @title           flatrec REST API
// @version         1.0.0
// @description     Read-only record access and flattening over HTTP.
//
// @securityDefinitions.apikey ApiKeyAuth
// @in              header
// @name            X-API-Key
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router builds the chi router for the given server.
func Router(server *Server) chi.Router {
	r := chi.NewRouter()

	metrics := server.metrics

	// Middleware
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", metrics.Handler())

	// Health check (unprotected for probes)
	r.Get("/health", metrics.InstrumentHandler("GET", "/health", server.handleHealth))

	// API key authentication middleware for protected routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(server.config.APIKey)))

		r.Get("/tables/{table}/records/{id}",
			metrics.InstrumentHandler("GET", "/v1/tables/{table}/records/{id}", server.handleGetRecord))
		r.Get("/tables/{table}/records/{id}/short-text",
			metrics.InstrumentHandler("GET", "/v1/tables/{table}/records/{id}/short-text", server.handleShortText))
		r.Get("/tables/{table}/references",
			metrics.InstrumentHandler("GET", "/v1/tables/{table}/references", server.handleFindReferencing))
		r.Get("/users/{id}/interactions",
			metrics.InstrumentHandler("GET", "/v1/users/{id}/interactions", server.handleUserInteractions))
	})

	return r
}

// StartServer starts the HTTP server with all routes configured.
func StartServer(service RecordService, config ServerConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	server := NewServer(service, config, NewMetrics(), logger)
	router := Router(server)

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	logger.Info("starting API server", zap.String("addr", addr))

	return http.ListenAndServe(addr, router)
}
