package culture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pitabwire/util"

	"github.com/pitabwire/culture/config"
	"github.com/pitabwire/culture/workerpool"
)

// Manager resolves cultures and tracks the culture state of execution contexts.
// Each Manager owns its defaults, so independent managers never observe each other.
type Manager struct {
	cfg      any
	database Database
	defaults *Defaults
	cache    sync.Map

	logger     *util.LogEntry
	logOptions []util.Option

	workerPool        workerpool.Manager
	workerPoolOptions []workerpool.Option

	startupErrors []error
}

// NewManager builds a Manager from the environment configuration, adjusted by opts.
// The returned context carries the manager's logger and configuration and is the
// root execution context: its culture state is snapshotted from the defaults now,
// so later default changes only reach contexts spawned afterwards.
func NewManager(ctx context.Context, opts ...Option) (context.Context, *Manager, error) {
	defaultCfg, err := config.FromEnv[config.ConfigurationDefault]()
	if err != nil {
		return ctx, nil, fmt.Errorf("could not load configuration: %w", err)
	}

	m := &Manager{cfg: &defaultCfg}

	for _, opt := range opts {
		opt(ctx, m)
	}

	m.setupLogger(ctx)
	ctx = util.ContextWithLogger(ctx, m.logger)

	if m.database == nil {
		var supported []string
		if cfg, ok := m.cfg.(config.ConfigurationCulture); ok {
			supported = cfg.SupportedCultures()
		}
		m.database = NewDatabase(supported...)
	}

	m.setupDefaults(ctx)
	m.setupWorkerPool(ctx)

	if len(m.startupErrors) > 0 {
		if m.workerPool != nil {
			_ = m.workerPool.Shutdown(ctx)
		}
		return ctx, nil, errors.Join(m.startupErrors...)
	}

	ctx = config.ToContext(ctx, m.cfg)
	ctx, _ = m.Enter(ctx)
	return ctx, m, nil
}

func (m *Manager) addStartupError(err error) {
	m.startupErrors = append(m.startupErrors, err)
}

func (m *Manager) setupLogger(ctx context.Context) {
	opts := m.logOptions

	if cfg, ok := m.cfg.(config.ConfigurationLogLevel); ok {
		logLevel, err := util.ParseLevel(cfg.LoggingLevel())
		if err == nil {
			opts = append(opts, util.WithLogLevel(logLevel))
		}
		opts = append(opts,
			util.WithLogTimeFormat(cfg.LoggingTimeFormat()),
			util.WithLogNoColor(!cfg.LoggingColored()))
		if cfg.LoggingShowStackTrace() {
			opts = append(opts, util.WithLogStackTrace())
		}
	}

	m.logger = util.NewLogger(ctx, opts...)
}

func (m *Manager) setupDefaults(ctx context.Context) {
	cfg, ok := m.cfg.(config.ConfigurationCulture)
	if !ok {
		m.defaults = NewDefaults(nil, nil)
		return
	}

	system := m.resolveSystem(ctx, cfg.CultureName())
	systemUI := m.resolveSystem(ctx, cfg.UICultureName())
	m.defaults = NewDefaults(system, systemUI)

	if name := cfg.DefaultThreadCulture(); name != "" {
		c, err := m.Resolve(name)
		if err != nil {
			m.addStartupError(fmt.Errorf("invalid default thread culture: %w", err))
		}
		m.defaults.SetCulture(c)
	}

	if name := cfg.DefaultThreadUICulture(); name != "" {
		c, err := m.Resolve(name)
		if err != nil {
			m.addStartupError(fmt.Errorf("invalid default thread ui culture: %w", err))
		}
		m.defaults.SetUICulture(c)
	}
}

// resolveSystem falls back to the invariant culture when the detected system locale is not usable.
func (m *Manager) resolveSystem(ctx context.Context, name string) *Culture {
	c, err := m.Resolve(name)
	if err != nil {
		m.Log(ctx).WithError(err).WithField("culture", name).
			Warn("system culture could not be resolved, using the invariant culture")
		return Invariant()
	}
	return c
}

func (m *Manager) setupWorkerPool(ctx context.Context) {
	poolCfg, _ := m.cfg.(config.ConfigurationWorkerPool)

	opts := append([]workerpool.Option{
		workerpool.WithPoolLogger(m.logger),
		workerpool.WithPoolPanicHandler(func(r any) {
			m.stopError(ctx, fmt.Errorf("worker pool task panicked: %v", r))
		}),
	}, m.workerPoolOptions...)

	wpm, err := workerpool.NewManager(ctx, poolCfg, m.defaults, m.stopError, opts...)
	if err != nil {
		m.addStartupError(err)
		return
	}
	m.workerPool = wpm
}

func (m *Manager) stopError(ctx context.Context, err error) {
	m.Log(ctx).WithError(err).Error("culture worker pool reported a fatal error")
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() any {
	return m.cfg
}

func (m *Manager) Log(ctx context.Context) *util.LogEntry {
	return m.logger.WithContext(ctx)
}

// Defaults returns the process wide defaults new execution contexts snapshot.
func (m *Manager) Defaults() *Defaults {
	return m.defaults
}

func (m *Manager) WorkManager() workerpool.Manager {
	return m.workerPool
}

// Resolve looks a culture up in the locale database. Resolved cultures are cached.
func (m *Manager) Resolve(name string) (*Culture, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if cached, ok := m.cache.Load(key); ok {
		return cached.(*Culture), nil
	}

	data, err := m.database.Lookup(name)
	if err != nil {
		var unknown *UnknownCultureError
		if !errors.As(err, &unknown) {
			err = unknownCulture(name, err)
		}
		return nil, err
	}

	c, _ := m.cache.LoadOrStore(key, newCulture(m.database, data))
	return c.(*Culture), nil
}

// ResolveAny returns the first of names that resolves, skipping empty entries.
func (m *Manager) ResolveAny(names ...string) (*Culture, error) {
	var errs []error
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}

		c, err := m.Resolve(name)
		if err == nil {
			return c, nil
		}
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil, unknownCulture(strings.Join(names, ","), nil)
	}
	return nil, errors.Join(errs...)
}

// Enter returns a context carrying culture state. A context that already has
// state is returned as is, otherwise a new state is snapshotted from the defaults.
func (m *Manager) Enter(ctx context.Context) (context.Context, *State) {
	if s := FromContext(ctx); s != nil {
		return ctx, s
	}

	ctx = m.defaults.Spawn(ctx)
	return ctx, FromContext(ctx)
}

// Current returns the culture of the execution context, falling back to the defaults.
func (m *Manager) Current(ctx context.Context) *Culture {
	if s := FromContext(ctx); s != nil {
		return s.Current()
	}
	return m.defaults.effectiveCulture()
}

// CurrentUI returns the UI culture of the execution context, falling back to the defaults.
func (m *Manager) CurrentUI(ctx context.Context) *Culture {
	if s := FromContext(ctx); s != nil {
		return s.CurrentUI()
	}
	return m.defaults.effectiveUICulture()
}

// SetCurrent sets the culture of the execution context and returns the context holding it.
func (m *Manager) SetCurrent(ctx context.Context, c *Culture) context.Context {
	ctx, s := m.Enter(ctx)
	s.SetCurrent(c)
	return ctx
}

// SetCurrentUI sets the UI culture of the execution context and returns the context holding it.
func (m *Manager) SetCurrentUI(ctx context.Context, c *Culture) context.Context {
	ctx, s := m.Enter(ctx)
	s.SetCurrentUI(c)
	return ctx
}

// SetCurrentName resolves name and makes it the current culture.
// On failure ctx and its state are returned unchanged.
func (m *Manager) SetCurrentName(ctx context.Context, name string) (context.Context, error) {
	c, err := m.Resolve(name)
	if err != nil {
		m.Log(ctx).WithError(err).Warn("could not set current culture")
		return ctx, err
	}
	return m.SetCurrent(ctx, c), nil
}

// SetCurrentUIName resolves name and makes it the current UI culture.
// On failure ctx and its state are returned unchanged.
func (m *Manager) SetCurrentUIName(ctx context.Context, name string) (context.Context, error) {
	c, err := m.Resolve(name)
	if err != nil {
		m.Log(ctx).WithError(err).Warn("could not set current ui culture")
		return ctx, err
	}
	return m.SetCurrentUI(ctx, c), nil
}

// SetDefaultCultureName resolves name into the default culture, "" unsets it.
func (m *Manager) SetDefaultCultureName(ctx context.Context, name string) error {
	if name == "" {
		m.defaults.SetCulture(nil)
		m.Log(ctx).Debug("default culture cleared")
		return nil
	}

	c, err := m.Resolve(name)
	if err != nil {
		return err
	}

	m.defaults.SetCulture(c)
	m.Log(ctx).WithField("culture", c.Name()).Debug("default culture changed")
	return nil
}

// SetDefaultUICultureName resolves name into the default UI culture, "" unsets it.
func (m *Manager) SetDefaultUICultureName(ctx context.Context, name string) error {
	if name == "" {
		m.defaults.SetUICulture(nil)
		m.Log(ctx).Debug("default ui culture cleared")
		return nil
	}

	c, err := m.Resolve(name)
	if err != nil {
		return err
	}

	m.defaults.SetUICulture(c)
	m.Log(ctx).WithField("ui_culture", c.Name()).Debug("default ui culture changed")
	return nil
}

// Shutdown releases the worker pool.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m.workerPool == nil {
		return nil
	}
	return m.workerPool.Shutdown(ctx)
}
