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

	"github.com/promptvault/promptvault/internal/api"
	"github.com/promptvault/promptvault/internal/auth"
	"github.com/promptvault/promptvault/internal/config"
	"github.com/promptvault/promptvault/internal/cost"
	"github.com/promptvault/promptvault/internal/home"
	"github.com/promptvault/promptvault/internal/providers"
	"github.com/promptvault/promptvault/internal/server/endpoints"
	"github.com/promptvault/promptvault/internal/store"
	"github.com/promptvault/promptvault/internal/svcctx"
	"github.com/promptvault/promptvault/internal/usage"
)

// Server is the main PromptVault HTTP server. It owns the SQLite store,
// the provider registry, and the auth service, and wires them into every
// request context.
type Server struct {
	httpServer *http.Server
	store      *store.Store
	registry   *providers.Registry
	authSvc    *auth.Service
	configMgr  *config.Manager
	logger     *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// DataDir is where the SQLite database lives. ":memory:" for tests.
	DataDir string
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Home is the promptvault home directory
	Home *home.Dir
	// SwaggerSpecPath points at the generated swagger.json
	SwaggerSpecPath string
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ConfigManager == nil {
		return nil, errors.New("config manager is required")
	}

	appCfg := cfg.ConfigManager.Get()
	if cfg.Host == "127.0.0.1" && appCfg.Server.Host != "" {
		cfg.Host = appCfg.Server.Host
	}
	if cfg.Port == "8080" && appCfg.Server.Port != "" {
		cfg.Port = appCfg.Server.Port
	}

	dataDir := cfg.DataDir
	if dataDir == "" && cfg.Home != nil {
		dataDir = cfg.Home.DataPath()
	}
	st, err := store.Open(dataDir, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	secret := config.ResolveEnvVars(appCfg.Auth.JWTSecret)
	if secret == "" {
		return nil, errors.New("auth.jwt_secret resolves to empty; set it in config or the environment")
	}
	authSvc := auth.NewService(secret, appCfg.Auth.SessionTTL)

	// Provider registry with config hot-reload
	registry := providers.NewRegistry()
	registry.SetLogger(cfg.Logger)
	reloadProviders(registry, appCfg, cfg.Logger)

	table := appCfg.PricingTable()
	calculator := cost.NewCalculator(table, cfg.Logger)
	recorder := usage.NewRecorder(st, cfg.Logger)

	s := &Server{
		store:     st,
		registry:  registry,
		authSvc:   authSvc,
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
	}

	s.services = &svcctx.Services{
		Store:         st,
		Registry:      registry,
		Auth:          authSvc,
		Calculator:    calculator,
		PricingTable:  table,
		ConfigManager: cfg.ConfigManager,
		UsageRecorder: recorder,
		UsageQuery:    usage.NewQuery(st),
		Logger:        cfg.Logger,
		Home:          cfg.Home,
	}

	// Config changes swap the provider registry contents and the pricing
	// table without a restart.
	cfg.ConfigManager.OnChange(func(c *config.Config) {
		reloadProviders(registry, c, cfg.Logger)
		s.reloadPricing(c)
		cfg.Logger.Info("providers and pricing reloaded from config")
	})

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{SwaggerSpecPath: cfg.SwaggerSpecPath}) {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, authSvc.Middleware)
	cfg.Logger.Info("routes registered", "endpoints", len(s.endpointRegistry.Endpoints()))

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // playground runs wait on providers
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// reloadProviders rebuilds the registry from the enabled providers in config.
func reloadProviders(registry *providers.Registry, cfg *config.Config, logger *slog.Logger) {
	enabled := cfg.EnabledProviders()

	for _, name := range registry.List() {
		if _, ok := enabled[name]; !ok {
			registry.Unregister(name)
		}
	}

	for name, pc := range enabled {
		switch pc.Type {
		case "mock":
			registry.Register(name, providers.NewMockClient())
		case "openai-compatible", "":
			registry.Register(name, providers.NewOpenAIClient(providers.OpenAIConfig{
				Name:      name,
				APIKey:    config.ResolveEnvVars(pc.APIKey),
				Model:     pc.Model,
				BaseURL:   pc.BaseURL,
				RateLimit: pc.RateLimit,
			}))
		default:
			logger.Warn("unknown provider type, skipping", "provider", name, "type", pc.Type)
		}
	}
}

// reloadPricing rebuilds the pricing table and calculator from config and
// swaps them in for subsequent requests.
func (s *Server) reloadPricing(c *config.Config) {
	table := c.PricingTable()
	calculator := cost.NewCalculator(table, s.logger)

	s.mu.Lock()
	svcs := *s.services
	svcs.PricingTable = table
	svcs.Calculator = calculator
	s.services = &svcs
	s.mu.Unlock()
}

// Start starts the server. It blocks until the context is cancelled or an
// error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.store.Ping(); err != nil {
		s.setNotRunning()
		return fmt.Errorf("store not ready: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

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

// shutdown performs graceful shutdown of the HTTP server and store.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

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

// Store returns the database store.
func (s *Server) Store() *store.Store {
	return s.store
}

// Registry returns the provider registry.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// Handler returns the root HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		svcs := s.services
		s.mu.RUnlock()

		ctx := r.Context()
		if svcs != nil {
			ctx = svcctx.WithServices(ctx, svcs)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
