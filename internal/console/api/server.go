// Package api wires the console HTTP surface: huma operations, the prometheus
// scrape endpoint, the MCP bridge and the dashboard UI.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	v0 "github.com/agentregistry-dev/agentconsole/internal/console/api/handlers/v0"
	"github.com/agentregistry-dev/agentconsole/internal/console/api/router"
	"github.com/agentregistry-dev/agentconsole/internal/console/config"
	"github.com/agentregistry-dev/agentconsole/internal/console/logging"
	"github.com/agentregistry-dev/agentconsole/internal/console/service"
	"github.com/agentregistry-dev/agentconsole/internal/console/session"
)

const (
	// MCPPath is where the streamable MCP bridge is mounted.
	MCPPath = "/mcp"
	// MetricsPath serves the prometheus scrape endpoint.
	MetricsPath = "/metrics"

	readHeaderTimeout = 10 * time.Second
)

// ServerOptions carries the optional collaborators of the HTTP server.
type ServerOptions struct {
	// Verifier checks bearer session tokens. Nil injects the dev user.
	Verifier *session.Verifier
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
	// MCPServer is mounted at /mcp when set.
	MCPServer *mcp.Server
	// UIHandler serves the dashboard at "/". Without it "/" redirects to the docs.
	UIHandler http.Handler
	// ExtraRoutes registers integration-owned operations under /v0.
	ExtraRoutes func(api huma.API, pathPrefix string)
	Logger      *zap.Logger
}

// Server is the console HTTP server.
type Server struct {
	config  *config.Config
	console service.ConsoleService
	humaAPI huma.API
	mux     *http.ServeMux
	server  *http.Server
	logger  *zap.Logger
}

// NewServer creates a server with every route registered.
func NewServer(cfg *config.Config, console service.ConsoleService, versionInfo *v0.VersionBody, opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger("api")
	}

	mux := http.NewServeMux()
	humaConfig := huma.DefaultConfig("Agent Console API", versionInfo.Version)
	humaConfig.Info.Description = "Catalog, agent configuration history, projects and feature flags of the agent console"
	humaAPI := humago.New(mux, humaConfig)

	router.RegisterRoutes(humaAPI, console, versionInfo, &router.RouteOptions{
		Mux:         mux,
		ExtraRoutes: opts.ExtraRoutes,
	})
	router.RegisterAPIRoutes(humaAPI, console)

	if opts.MetricsHandler != nil {
		mux.Handle("GET "+MetricsPath, opts.MetricsHandler)
	}
	if opts.MCPServer != nil {
		mcpServer := opts.MCPServer
		mux.Handle(MCPPath, mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return mcpServer
		}, nil))
	}
	if opts.UIHandler != nil {
		mux.Handle("/", opts.UIHandler)
	} else {
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/" {
				http.NotFound(w, r)
				return
			}
			http.Redirect(w, r, "/docs", http.StatusTemporaryRedirect)
		})
	}

	eventCfg := logging.ParseEventLoggingConfig(&cfg.Logging)
	logging.SetRedactPatterns(eventCfg)

	var handler http.Handler = mux
	handler = session.Middleware(opts.Verifier)(handler)
	handler = logging.Middleware(eventCfg, logger)(handler)
	handler = cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", logging.RequestIDHeader, "Mcp-Session-Id"},
		ExposedHeaders:   []string{logging.RequestIDHeader, "Mcp-Session-Id"},
		AllowCredentials: true,
	}).Handler(handler)

	return &Server{
		config:  cfg,
		console: console,
		humaAPI: humaAPI,
		mux:     mux,
		logger:  logger,
		server: &http.Server{
			Addr:              cfg.ServerAddress,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// HumaAPI returns the huma API the operations are registered on.
func (s *Server) HumaAPI() huma.API {
	return s.humaAPI
}

// Mux returns the underlying mux for custom handlers.
func (s *Server) Mux() *http.ServeMux {
	return s.mux
}

// Handler returns the fully wrapped handler (CORS, logging, session).
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens until the server is shut down. A graceful shutdown is not an error.
func (s *Server) Start() error {
	s.logger.Info("starting console API server", zap.String("address", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down console API server")
	return s.server.Shutdown(ctx)
}
