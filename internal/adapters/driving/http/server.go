package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driven"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driving"
	"github.com/ledgerlens/ledgerlens-core/internal/runtime"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	sessionService   driving.SessionService
	ingestService    driving.IngestService
	searchService    driving.SearchService
	analyticsService driving.AnalyticsService
	exportService    driving.ExportService

	// Infrastructure
	services  *runtime.Services
	aiFactory driven.AIServiceFactory
	index     driven.VectorIndex // vector index health check (optional)
	db        Pinger             // store backend health check (optional)
	redis     Pinger             // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	sessionService driving.SessionService,
	ingestService driving.IngestService,
	searchService driving.SearchService,
	analyticsService driving.AnalyticsService,
	exportService driving.ExportService,
	services *runtime.Services,
	aiFactory driven.AIServiceFactory,
	index driven.VectorIndex, // can be nil
	db Pinger, // can be nil
	redis Pinger, // can be nil
) *Server {
	s := &Server{
		router:           http.NewServeMux(),
		version:          cfg.Version,
		sessionService:   sessionService,
		ingestService:    ingestService,
		searchService:    searchService,
		analyticsService: analyticsService,
		exportService:    exportService,
		services:         services,
		aiFactory:        aiFactory,
		index:            index,
		db:               db,
		redis:            redis,
	}

	var handler http.Handler = s.router
	if len(cfg.AllowedOrigins) > 0 {
		handler = NewCORSMiddleware(cfg.AllowedOrigins).Handler(handler)
	}
	handler = NewLoggingMiddleware().Handler(handler)
	handler = NewRecoveryMiddleware().Handler(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Session resolution for everything operating on session data
	sessionMiddleware := NewSessionMiddleware(s.sessionService)

	// Health endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Session lifecycle
	s.router.HandleFunc("POST /api/v1/sessions", s.handleCreateSession)
	s.router.HandleFunc("DELETE /api/v1/sessions/{id}", s.handleDeleteSession)

	// Statement ingestion
	s.router.Handle("POST /api/v1/statements",
		sessionMiddleware.Resolve(http.HandlerFunc(s.handleUploadStatements)))
	s.router.Handle("POST /api/v1/statements/reindex",
		sessionMiddleware.Resolve(http.HandlerFunc(s.handleReindex)))
	s.router.Handle("GET /api/v1/transactions",
		sessionMiddleware.Resolve(http.HandlerFunc(s.handleListTransactions)))

	// Hybrid search
	s.router.Handle("POST /api/v1/search",
		sessionMiddleware.Resolve(http.HandlerFunc(s.handleSearch)))
	s.router.Handle("POST /api/v1/search/export",
		sessionMiddleware.Resolve(http.HandlerFunc(s.handleExportSearch)))

	// Analytics
	s.router.Handle("GET /api/v1/analytics/summary",
		sessionMiddleware.Resolve(http.HandlerFunc(s.handleSummary)))
	s.router.Handle("GET /api/v1/analytics/monthly",
		sessionMiddleware.Resolve(http.HandlerFunc(s.handleMonthly)))

	// Embedding settings (hot-reloaded, no restart required)
	s.router.HandleFunc("PUT /api/v1/settings/embedding", s.handleUpdateEmbeddingSettings)
	s.router.HandleFunc("GET /api/v1/settings/embedding/status", s.handleEmbeddingStatus)
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
