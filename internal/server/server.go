// Package server wires configuration, storage, providers and the
// pipeline into a single HTTP service.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/splitscan/splitscan/internal/api"
	"github.com/splitscan/splitscan/internal/config"
	"github.com/splitscan/splitscan/internal/export"
	"github.com/splitscan/splitscan/internal/home"
	"github.com/splitscan/splitscan/internal/pipeline"
	"github.com/splitscan/splitscan/internal/providers"
	"github.com/splitscan/splitscan/internal/server/endpoints"
	"github.com/splitscan/splitscan/internal/store"
	"github.com/splitscan/splitscan/internal/svcctx"
)

// Server is the main splitscan HTTP server. It owns the batch store
// lifecycle: opened on start, closed on shutdown.
type Server struct {
	httpServer   *http.Server
	store        store.BatchStore
	orchestrator *pipeline.Orchestrator
	exporter     *export.Service
	configMgr    *config.Manager
	homeDir      *home.Dir
	logger       *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Home is the splitscan home directory
	Home *home.Dir
	// Logger is the structured logger to use
	Logger *slog.Logger

	// Overrides for tests: when set they replace the config-built
	// collaborators.
	Store     store.BatchStore
	Analyzer  providers.LayoutAnalyzer
	Detector  providers.BoundaryDetector
	Extractor providers.RecordExtractor
	Splitter  providers.PdfSplitter
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.ConfigManager == nil {
		return nil, errors.New("config manager is required")
	}
	if cfg.Home == nil {
		return nil, errors.New("home directory is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	c := cfg.ConfigManager.Get()

	st := cfg.Store
	if st == nil {
		var err error
		st, err = openStore(c, cfg.Home)
		if err != nil {
			return nil, err
		}
	}

	analyzer := cfg.Analyzer
	if analyzer == nil {
		analyzer = providers.NewHTTPLayoutAnalyzer(providers.LayoutConfig{
			BaseURL:    c.Analysis.BaseURL,
			APIKey:     config.ResolveEnvVars(c.Analysis.APIKey),
			MaxRetries: c.Analysis.MaxRetries,
			RetryDelay: time.Duration(c.Analysis.RetryDelaySecs) * time.Second,
			Timeout:    time.Duration(c.Analysis.TimeoutSecs) * time.Second,
		})
	}

	detector := cfg.Detector
	extractor := cfg.Extractor
	if detector == nil || extractor == nil {
		chat := providers.NewChatClient(providers.ChatConfig{
			BaseURL:     c.Chat.BaseURL,
			APIKey:      config.ResolveEnvVars(c.Chat.APIKey),
			Model:       c.Chat.Model,
			Temperature: c.Chat.Temperature,
			MaxTokens:   c.Chat.MaxTokens,
			MaxRetries:  c.Chat.MaxRetries,
			Timeout:     time.Duration(c.Chat.TimeoutSecs) * time.Second,
		})
		if detector == nil {
			detector = providers.NewChatBoundaryDetector(chat)
		}
		if extractor == nil {
			extractor = providers.NewChatExtractor(chat)
		}
	}

	splitter := cfg.Splitter
	if splitter == nil {
		splitter = providers.NewPdfcpuSplitter()
	}

	orch, err := pipeline.New(pipeline.Options{
		Store:              st,
		Analyzer:           analyzer,
		Detector:           detector,
		Extractor:          extractor,
		Splitter:           splitter,
		Home:               cfg.Home,
		Logger:             cfg.Logger,
		ExtractionArchived: c.Extraction.Archived,
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	s := &Server{
		store:        st,
		orchestrator: orch,
		exporter:     export.NewService(st, cfg.Logger),
		configMgr:    cfg.ConfigManager,
		homeDir:      cfg.Home,
		logger:       cfg.Logger,
	}

	s.services = &svcctx.Services{
		Store:        st,
		Orchestrator: orch,
		Exporter:     s.exporter,
		Home:         cfg.Home,
		Logger:       cfg.Logger,
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(c.Server.Host, c.Server.Port),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// openStore builds the configured batch store backend.
func openStore(c *config.Config, homeDir *home.Dir) (store.BatchStore, error) {
	switch c.Storage.Backend {
	case "", "sqlite":
		path := c.Storage.Path
		if path == "" {
			path = homeDir.DBPath()
		}
		st, err := store.NewSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open batch database: %w", err)
		}
		return st, nil
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
}

// Start starts the server. It blocks until the context is cancelled or
// an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.homeDir.EnsureExists(); err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to prepare home directory: %w", err)
	}

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown: stop accepting requests, wait
// for in-flight pipeline stages, close the store.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.orchestrator.Wait()

	if err := s.store.Close(); err != nil {
		s.logger.Error("store close error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the fully wired HTTP handler. Used by tests with
// httptest.Server.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Orchestrator returns the pipeline orchestrator.
func (s *Server) Orchestrator() *pipeline.Orchestrator {
	return s.orchestrator
}

// Store returns the batch store.
func (s *Server) Store() store.BatchStore {
	return s.store
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := svcctx.WithServices(r.Context(), s.services)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil || s.orchestrator == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
