// Package server provides the HTTP API for Quarry.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/fieldstone/quarry/internal/config"
	"github.com/fieldstone/quarry/internal/indexer"
	"github.com/fieldstone/quarry/internal/schema"
	"github.com/fieldstone/quarry/internal/search"
	"github.com/fieldstone/quarry/internal/storage"
)

// Server is the HTTP server for the Quarry API.
type Server struct {
	engine   *search.Engine
	indexer  *indexer.Indexer
	store    storage.Store
	registry *schema.Registry
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *search.Engine,
	idx *indexer.Indexer,
	store storage.Store,
	registry *schema.Registry,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine:   engine,
		indexer:  idx,
		store:    store,
		registry: registry,
		config:   cfg,
		logger:   logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/search", s.handleSearch)
	r.Post("/api/v1/search/scored", s.handleSearchScored)
	r.Post("/api/v1/search/count", s.handleCount)
	r.Post("/api/v1/records", s.handleCreateRecord)
	r.Get("/api/v1/records", s.handleListRecords)
	r.Get("/api/v1/records/{id}", s.handleGetRecord)
	r.Delete("/api/v1/records/{id}", s.handleDeleteRecord)
	r.Post("/api/v1/reindex", s.handleReindex)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
