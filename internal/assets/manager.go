package assets

import (
	"bytes"
	"context"
	"log/slog"
	"sync"

	"github.com/SpringRoll/SpringRoll-sub000/internal/model"
	"github.com/SpringRoll/SpringRoll-sub000/internal/sizes"
	"github.com/SpringRoll/SpringRoll-sub000/internal/transfer"
	"go.trai.ch/zerr"
)

// Built-in kind priorities. Higher priorities are matched first.
const (
	PriorityAudio      = 30
	PriorityColorAlpha = 20
	PriorityList       = 10
	PriorityFunction   = 10
	PriorityLoad       = 0
)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used by the manager, its sessions and its
// cache.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// Manager is the entry point for loading assets.
//
// It owns the task kind registry, a pool of sessions, the result cache and
// the size resolver:
//
//	m := assets.NewManager(loader, sizes.New(), assets.WithLogger(logger))
//	m.Load(ctx, map[string]any{
//	    "icon": "images/icon.png",
//	    "bg":   &assets.File{Src: "images/bg.png", Cache: true},
//	}, assets.WithComplete(func(result any, err error) {
//	    icons := result.(map[string]any)
//	}))
type Manager struct {
	loader   *transfer.Loader
	sizes    *sizes.Sizes
	cache    *Cache
	registry registry
	logger   *slog.Logger

	mu   sync.Mutex
	pool []*Session
}

// NewManager creates a Manager with the built-in task kinds registered. A
// nil sz means an empty sizes.Sizes.
func NewManager(loader *transfer.Loader, sz *sizes.Sizes, opts ...ManagerOption) *Manager {
	if sz == nil {
		sz = sizes.New()
	}
	m := &Manager{
		loader: loader,
		sizes:  sz,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	m.cache = NewCache(m.logger)

	m.mustRegister(AudioKind(), PriorityAudio)
	m.mustRegister(ColorAlphaKind(), PriorityColorAlpha)
	m.mustRegister(ListKind(), PriorityList)
	m.mustRegister(FunctionKind(), PriorityFunction)
	m.mustRegister(LoadKind(), PriorityLoad)
	return m
}

func (m *Manager) mustRegister(k Kind, priority int) {
	if err := m.registry.register(k, priority); err != nil {
		panic(err)
	}
}

// Register adds a task kind. Kinds are matched in descending priority;
// among equal priorities the earlier registration wins.
func (m *Manager) Register(k Kind, priority int) error {
	return m.registry.register(k, priority)
}

// Kinds returns the names of the registered kinds in match order.
func (m *Manager) Kinds() []string {
	return m.registry.names()
}

// Loader implements Host.
func (m *Manager) Loader() *transfer.Loader {
	return m.loader
}

// Sizes implements Host.
func (m *Manager) Sizes() *sizes.Sizes {
	return m.sizes
}

// Logger implements Host.
func (m *Manager) Logger() *slog.Logger {
	return m.logger
}

// Results returns the result cache.
func (m *Manager) Results() *Cache {
	return m.cache
}

// Load starts loading request and returns its session.
//
// request is a single asset, a slice of assets or a string-keyed map of
// assets. When the session completes it is returned to the pool before the
// WithComplete function runs, so the returned *Session must not be used
// after completion.
func (m *Manager) Load(ctx context.Context, request any, opts ...Option) (*Session, error) {
	s := m.getSession()

	opts = append(opts, func(o *options) {
		complete := o.complete
		o.complete = func(result any, err error) {
			s.Reset()
			m.putSession(s)
			if complete != nil {
				complete(result, err)
			}
		}
	})

	if err := s.setup(ctx, request, opts...); err != nil {
		s.Reset()
		m.putSession(s)
		return nil, err
	}
	return s, nil
}

// Fetch loads request and waits for the result. Any WithComplete option is
// replaced. When ctx ends first, Fetch returns ctx.Err() and the session
// finishes in the background.
func (m *Manager) Fetch(ctx context.Context, request any, opts ...Option) (any, error) {
	type outcome struct {
		result any
		err    error
	}
	ch := make(chan outcome, 1)

	opts = append(opts, WithAutoStart(true), WithComplete(func(result any, err error) {
		ch <- outcome{result: result, err: err}
	}))
	if _, err := m.Load(ctx, request, opts...); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-ch:
		return out.result, out.err
	}
}

// Cache returns the cached value for id, or nil.
func (m *Manager) Cache(id string) any {
	return m.cache.Read(id)
}

// Unload removes and destroys the cached values of ids.
func (m *Manager) Unload(ids ...string) {
	for _, id := range ids {
		if !m.cache.Delete(id) {
			m.logger.Debug("unload of uncached asset", "id", id)
		}
	}
}

// UnloadAll empties the cache.
func (m *Manager) UnloadAll() {
	m.cache.Empty()
}

// DefineSize adds a size variant.
func (m *Manager) DefineSize(id string, maxSize int, scale float64, fallback []string) error {
	return m.sizes.Define(id, maxSize, scale, fallback)
}

// Resize picks the preferred size variant for a viewport.
func (m *Manager) Resize(width, height int) {
	m.sizes.Refresh(width, height)
	if v := m.sizes.Preferred(); v != nil {
		m.logger.Debug("preferred size", "id", v.ID, "width", width, "height", height)
	}
}

// LoadVersions fetches a version manifest and registers its entries with
// the loader's URL resolver.
func (m *Manager) LoadVersions(ctx context.Context, url string) error {
	resolver := m.loader.Resolver()
	if resolver == nil {
		return ErrNoResolver
	}

	ch := make(chan *model.Resource, 1)
	m.loader.Load(ctx, url, func(res *model.Resource) { ch <- res }, nil, nil)

	var res *model.Resource
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res = <-ch:
	}
	if res == nil {
		return zerr.With(ErrVersionsUnavailable, "url", url)
	}
	if err := resolver.AddVersions(bytes.NewReader(res.Raw)); err != nil {
		return zerr.With(err, "url", url)
	}
	m.logger.Info("versions loaded", "url", url)
	return nil
}

// Destroy cancels in-flight transfers, empties the cache and drops the
// session pool, the registered kinds and the size variants.
func (m *Manager) Destroy() {
	m.loader.CancelAll()
	m.cache.Empty()
	m.registry.reset()
	m.sizes.Reset()

	m.mu.Lock()
	m.pool = nil
	m.mu.Unlock()
}

func (m *Manager) getSession() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n := len(m.pool); n > 0 {
		s := m.pool[n-1]
		m.pool = m.pool[:n-1]
		return s
	}
	return newSession(m)
}

func (m *Manager) putSession(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pool = append(m.pool, s)
}

// pooled returns the number of idle sessions.
func (m *Manager) pooled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pool)
}
