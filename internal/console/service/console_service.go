package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agentregistry-dev/agentconsole/internal/console/catalog"
	"github.com/agentregistry-dev/agentconsole/internal/console/database"
	"github.com/agentregistry-dev/agentconsole/internal/console/debounce"
	"github.com/agentregistry-dev/agentconsole/internal/console/flags"
	"github.com/agentregistry-dev/agentconsole/internal/console/logging"
	"github.com/agentregistry-dev/agentconsole/internal/console/metrics"
	"github.com/agentregistry-dev/agentconsole/internal/console/session"
	"github.com/agentregistry-dev/agentconsole/internal/console/telemetry"
	"github.com/agentregistry-dev/agentconsole/internal/console/versions"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100

	defaultAutosaveDelay    = time.Second
	defaultDraftSaveTimeout = 10 * time.Second
)

// Options wires the collaborators of the console service.
type Options struct {
	DB      database.Database
	Catalog catalog.Source
	Flags   *flags.Store
	// Collector is optional; without it every metrics endpoint is reported failed.
	Collector *metrics.Collector
	Versions  *versions.Manager
	// Scheduler backs the draft auto-save debouncer. Defaults to real timers.
	Scheduler     debounce.Scheduler
	AutosaveDelay time.Duration
	Mode          flags.Mode
	Telemetry     *telemetry.Metrics
	Logger        *zap.Logger
	Clock         func() time.Time
}

// consoleServiceImpl implements ConsoleService on top of the Database interface.
type consoleServiceImpl struct {
	db        database.Database
	catalog   catalog.Source
	flags     *flags.Store
	collector *metrics.Collector
	versions  *versions.Manager
	debouncer *debounce.Debouncer
	mode      flags.Mode
	telemetry *telemetry.Metrics
	logger    *zap.Logger
	now       func() time.Time

	favMu     sync.Mutex
	favorites map[string]*catalog.Favorites

	draftMu sync.Mutex
	drafts  map[string]*draftState
}

// NewConsoleService creates a console service from opts.
func NewConsoleService(opts Options) ConsoleService {
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger("service")
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Versions == nil {
		opts.Versions = versions.NewManager(versions.WithClock(opts.Clock))
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.StaticSource(nil)
	}
	if opts.AutosaveDelay <= 0 {
		opts.AutosaveDelay = defaultAutosaveDelay
	}
	if opts.Mode == "" {
		opts.Mode = flags.ModeStudio
	}
	return &consoleServiceImpl{
		db:        opts.DB,
		catalog:   opts.Catalog,
		flags:     opts.Flags,
		collector: opts.Collector,
		versions:  opts.Versions,
		debouncer: debounce.New(opts.Scheduler, opts.AutosaveDelay),
		mode:      opts.Mode,
		telemetry: opts.Telemetry,
		logger:    opts.Logger,
		now:       opts.Clock,
		favorites: make(map[string]*catalog.Favorites),
		drafts:    make(map[string]*draftState),
	}
}

func (s *consoleServiceImpl) Health(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *consoleServiceImpl) Close() error {
	s.debouncer.Stop()
	return nil
}

func (s *consoleServiceImpl) flagValues() flags.Values {
	if s.flags == nil {
		return flags.Defaults()
	}
	return s.flags.Snapshot()
}

func (s *consoleServiceImpl) requireUser(ctx context.Context) (session.User, error) {
	u, err := session.RequireUser(ctx)
	if err != nil {
		return session.User{}, ErrUnauthenticated
	}
	return u, nil
}

func authorName(u session.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	return u.UserID
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// notFound maps database.ErrNotFound to the resource specific error.
func notFound(err error, target error) error {
	if errors.Is(err, database.ErrNotFound) {
		return target
	}
	return err
}
