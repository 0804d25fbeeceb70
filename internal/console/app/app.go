// Package app assembles the console from its configuration and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/agentregistry-dev/agentconsole/internal/console/api"
	v0 "github.com/agentregistry-dev/agentconsole/internal/console/api/handlers/v0"
	"github.com/agentregistry-dev/agentconsole/internal/console/catalog"
	"github.com/agentregistry-dev/agentconsole/internal/console/config"
	"github.com/agentregistry-dev/agentconsole/internal/console/database"
	"github.com/agentregistry-dev/agentconsole/internal/console/flags"
	"github.com/agentregistry-dev/agentconsole/internal/console/logging"
	"github.com/agentregistry-dev/agentconsole/internal/console/metrics"
	"github.com/agentregistry-dev/agentconsole/internal/console/seed"
	"github.com/agentregistry-dev/agentconsole/internal/console/service"
	"github.com/agentregistry-dev/agentconsole/internal/console/session"
	"github.com/agentregistry-dev/agentconsole/internal/console/telemetry"
	"github.com/agentregistry-dev/agentconsole/internal/mcp/consoleserver"
	"github.com/agentregistry-dev/agentconsole/pkg/types"
)

const serviceName = "agentconsole"

// App holds the assembled components of a running console.
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        database.Database
	flags     *flags.Store
	service   service.ConsoleService
	server    types.Server
	handler   http.Handler
	telemetry *telemetry.Provider
}

// New validates cfg and builds every component. Nothing listens until Run.
func New(ctx context.Context, cfg *config.Config, versionInfo *v0.VersionBody, opts types.AppOptions) (*App, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	logger := logging.NewLogger("app")
	a := &App{cfg: cfg, logger: logger}

	tp, err := telemetry.NewProvider(serviceName, versionInfo.Version)
	if err != nil {
		return nil, err
	}
	a.telemetry = tp

	if err := a.openDatabase(ctx, opts.DatabaseFactory); err != nil {
		return nil, a.closeOnError(err)
	}
	if err := a.openFlags(ctx); err != nil {
		return nil, a.closeOnError(err)
	}

	source, err := catalogSource(cfg, logger)
	if err != nil {
		return nil, a.closeOnError(err)
	}

	mode, _ := flags.ParseMode(cfg.Mode)
	var svc service.ConsoleService = service.NewConsoleService(service.Options{
		DB:            a.db,
		Catalog:       source,
		Flags:         a.flags,
		Collector:     a.collector(),
		AutosaveDelay: cfg.AutosaveDelay,
		Mode:          mode,
		Telemetry:     tp.Metrics(),
		Logger:        logging.NewLogger("service"),
	})
	if opts.ServiceFactory != nil {
		svc = opts.ServiceFactory(svc)
	}
	a.service = svc
	if opts.OnServiceCreated != nil {
		opts.OnServiceCreated(svc)
	}

	if cfg.SeedDemoData {
		if err := seed.ImportDemoData(ctx, svc); err != nil {
			logger.Warn("failed to import demo data", zap.Error(err))
		}
	}

	var verifier *session.Verifier
	if cfg.JWTSecret != "" {
		verifier = session.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	} else {
		logger.Warn("CONSOLE_JWT_SECRET is not set, every request runs as the dev user")
	}

	serverOpts := api.ServerOptions{
		Verifier:       verifier,
		MetricsHandler: tp.Handler(),
		UIHandler:      opts.UIHandler,
		ExtraRoutes:    opts.ExtraRoutes,
		Logger:         logging.NewLogger("api"),
	}
	if cfg.EnableMCP {
		serverOpts.MCPServer = consoleserver.NewServer(svc)
	}
	apiServer := api.NewServer(cfg, svc, versionInfo, serverOpts)
	a.handler = apiServer.Handler()

	var server types.Server = apiServer
	if opts.HTTPServerFactory != nil {
		server = opts.HTTPServerFactory(server, a.db)
	}
	a.server = server
	if opts.OnHTTPServerCreated != nil {
		opts.OnHTTPServerCreated(server)
	}

	return a, nil
}

func (a *App) openDatabase(ctx context.Context, factory types.DatabaseFactory) error {
	var db database.Database
	if a.cfg.DatabaseURL != "" {
		pg, err := database.NewPostgreSQL(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to the database: %w", err)
		}
		db = pg
	} else {
		a.logger.Warn("CONSOLE_DATABASE_URL is not set, agents and projects are kept in memory")
		db = database.NewMemory()
	}
	if factory != nil {
		wrapped, err := factory(ctx, a.cfg.DatabaseURL, db)
		if err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to create database: %w", err)
		}
		db = wrapped
	}
	a.db = db
	return nil
}

func (a *App) openFlags(ctx context.Context) error {
	var storage flags.Storage
	switch a.cfg.FlagsBackend {
	case config.FlagsBackendBolt:
		s, err := flags.OpenBoltStorage(a.cfg.FlagsPath)
		if err != nil {
			return err
		}
		storage = s
	case config.FlagsBackendFile:
		s, err := flags.NewFileStorage(a.cfg.FlagsPath, logging.NewLogger("flags"))
		if err != nil {
			return err
		}
		storage = s
	default:
		storage = flags.NewMemoryStorage()
	}

	defaults, err := flags.DefaultsFromEnv()
	if err != nil {
		_ = storage.Close()
		return err
	}
	store, err := flags.NewStore(ctx, storage, flags.WithDefaults(defaults), flags.WithLogger(logging.NewLogger("flags")))
	if err != nil {
		a.logger.Warn("failed to load feature flags, serving defaults", zap.Error(err))
	}
	a.flags = store
	return nil
}

func catalogSource(cfg *config.Config, logger *zap.Logger) (catalog.Source, error) {
	switch {
	case cfg.CatalogURL != "":
		return catalog.NewCachedSource(&catalog.HTTPSource{
			URL:    cfg.CatalogURL,
			Token:  cfg.CatalogToken,
			Logger: logger,
		}, cfg.CatalogTTL, logger), nil
	case cfg.CatalogPath != "":
		return catalog.NewCachedSource(&catalog.FileSource{Path: cfg.CatalogPath, Logger: logger}, cfg.CatalogTTL, logger), nil
	}
	items, err := seed.BuiltinCatalog()
	if err != nil {
		return nil, err
	}
	return catalog.StaticSource(items), nil
}

func (a *App) collector() *metrics.Collector {
	if a.cfg.MetricsBaseURL == "" {
		return nil
	}
	tm := a.telemetry.Metrics()
	return metrics.NewCollector(
		&metrics.HTTPFetcher{BaseURL: a.cfg.MetricsBaseURL, Token: a.cfg.MetricsToken},
		metrics.WithTimeout(a.cfg.MetricsTimeout),
		metrics.WithLogger(logging.NewLogger("metrics")),
		metrics.WithFailureHook(func(ep metrics.Endpoint, _ error) {
			tm.UpstreamFailed(context.Background(), string(ep))
		}),
	)
}

// Service returns the console service.
func (a *App) Service() service.ConsoleService {
	return a.service
}

// Server returns the HTTP server.
func (a *App) Server() types.Server {
	return a.server
}

// Handler returns the wrapped handler of the built-in server.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run serves until ctx is done, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	go func() {
		if err := a.flags.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn("feature flag watch stopped", zap.Error(err))
		}
	}()
	changes, unsubscribe := a.flags.Subscribe()
	defer unsubscribe()
	go func() {
		for c := range changes {
			a.logger.Info("feature flag changed", zap.String("flag", c.Name), zap.String("value", c.Value))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	return errors.Join(runErr, a.Close(shutdownCtx))
}

// Close stops the server and releases every component. Pending draft
// auto-saves are flushed before the database closes.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}
	if a.service != nil {
		if err := a.service.Close(); err != nil {
			errs = append(errs, fmt.Errorf("service close: %w", err))
		}
	}
	errs = append(errs, a.closeStores(ctx)...)
	return errors.Join(errs...)
}

func (a *App) closeStores(ctx context.Context) []error {
	var errs []error
	if a.flags != nil {
		if err := a.flags.Close(); err != nil {
			errs = append(errs, fmt.Errorf("flags close: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}
	if a.telemetry != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.telemetry.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
	}
	return errs
}

func (a *App) closeOnError(err error) error {
	return errors.Join(append([]error{err}, a.closeStores(context.Background())...)...)
}
