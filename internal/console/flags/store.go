package flags

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/agentregistry-dev/agentconsole/internal/console/debounce"
)

// Storage persists flag values under their storage keys.
type Storage interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, key, value string) error
	Close() error
}

// Watcher is implemented by storages that can observe writes made by other
// processes. onChange is called after each external write.
type Watcher interface {
	Watch(ctx context.Context, onChange func()) error
}

// Change is published to subscribers when a flag value changes.
type Change struct {
	Name  string
	Value string
}

// Store serves consistent flag snapshots backed by a Storage.
type Store struct {
	storage    Storage
	defaults   Values
	logger     *zap.Logger
	watchDelay time.Duration

	writeMu sync.Mutex
	current atomic.Pointer[Values]

	subsMu sync.Mutex
	subs   map[int]chan Change
	nextID int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithDefaults replaces the documented defaults, e.g. with DefaultsFromEnv.
func WithDefaults(v Values) StoreOption {
	return func(s *Store) { s.defaults = v }
}

func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// WithWatchDelay sets how long file events are coalesced before a refresh.
func WithWatchDelay(d time.Duration) StoreOption {
	return func(s *Store) { s.watchDelay = d }
}

// NewStore creates a store and hydrates it from storage. Until hydration
// succeeds the defaults are served, so a load failure is returned alongside a
// usable store.
func NewStore(ctx context.Context, storage Storage, opts ...StoreOption) (*Store, error) {
	s := &Store{
		storage:    storage,
		defaults:   Defaults(),
		logger:     zap.NewNop(),
		watchDelay: 100 * time.Millisecond,
		subs:       make(map[int]chan Change),
	}
	for _, opt := range opts {
		opt(s)
	}
	defaults := s.defaults
	s.current.Store(&defaults)

	if storage == nil {
		return s, nil
	}
	if err := s.Refresh(ctx); err != nil {
		return s, err
	}
	return s, nil
}

// Snapshot returns the current values. Callers should read one snapshot per
// request so that every decision in it sees the same flags.
func (s *Store) Snapshot() Values {
	return *s.current.Load()
}

// Set validates, persists and publishes a flag value given in string form.
func (s *Store) Set(ctx context.Context, name, raw string) error {
	def, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFlag, name)
	}
	canonical, err := def.parse(raw)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.storage != nil {
		if err := s.storage.Save(ctx, StorageKey(name), canonical); err != nil {
			return fmt.Errorf("failed to persist flag %s: %w", name, err)
		}
	}
	prev := s.Snapshot()
	next := prev.with(name, canonical)
	s.current.Store(&next)

	if prev.Raw(name) != canonical {
		s.publish(Change{Name: name, Value: canonical})
	}
	return nil
}

func (s *Store) SetBool(ctx context.Context, name string, value bool) error {
	return s.Set(ctx, name, strconv.FormatBool(value))
}

func (s *Store) SetInt(ctx context.Context, name string, value int) error {
	return s.Set(ctx, name, strconv.Itoa(value))
}

// Refresh reloads every flag from storage and notifies subscribers of the
// values that changed. Persisted values that fail validation are logged and
// the default is kept.
func (s *Store) Refresh(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}
	persisted, err := s.storage.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load feature flags: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.defaults
	for key, raw := range persisted {
		name, ok := strings.CutPrefix(key, KeyPrefix)
		if !ok {
			continue
		}
		def, ok := Lookup(name)
		if !ok {
			s.logger.Debug("ignoring unknown persisted flag", zap.String("key", key))
			continue
		}
		canonical, err := def.parse(raw)
		if err != nil {
			s.logger.Warn("ignoring invalid persisted flag", zap.String("key", key), zap.Error(err))
			continue
		}
		next = next.with(name, canonical)
	}

	prev := s.Snapshot()
	s.current.Store(&next)
	for _, d := range Definitions {
		if prev.Raw(d.Name) != next.Raw(d.Name) {
			s.publish(Change{Name: d.Name, Value: next.Raw(d.Name)})
		}
	}
	return nil
}

// Subscribe returns a channel of changes and a function that unsubscribes.
// Slow subscribers miss changes rather than blocking writers.
func (s *Store) Subscribe() (<-chan Change, func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan Change, len(Definitions))
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) publish(c Change) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

// Watch refreshes the store whenever the storage reports an external write.
// It blocks until ctx is done. Storages without change notification return
// immediately.
func (s *Store) Watch(ctx context.Context) error {
	w, ok := s.storage.(Watcher)
	if !ok {
		return nil
	}
	d := debounce.New(debounce.TimerScheduler{}, s.watchDelay)
	defer d.Stop()

	return w.Watch(ctx, func() {
		d.Trigger("refresh", func() {
			if err := s.Refresh(ctx); err != nil {
				s.logger.Warn("failed to refresh feature flags", zap.Error(err))
			}
		})
	})
}

// Close releases the storage.
func (s *Store) Close() error {
	if s.storage == nil {
		return nil
	}
	return s.storage.Close()
}
