package culture

import (
	"context"

	"github.com/pitabwire/util"

	"github.com/pitabwire/culture/workerpool"
)

// Option configures a Manager while it is being built.
type Option func(ctx context.Context, m *Manager)

// WithConfig replaces the environment configuration. The value is inspected for
// config.ConfigurationCulture, config.ConfigurationLogLevel and config.ConfigurationWorkerPool.
func WithConfig(cfg any) Option {
	return func(_ context.Context, m *Manager) {
		m.cfg = cfg
	}
}

// WithDatabase sets the locale database cultures are resolved against.
func WithDatabase(db Database) Option {
	return func(_ context.Context, m *Manager) {
		m.database = db
	}
}

// WithSupportedCultures restricts resolution to the named cultures.
func WithSupportedCultures(names ...string) Option {
	return func(_ context.Context, m *Manager) {
		m.database = NewDatabase(names...)
	}
}

// WithLogger adds options to the manager's logger.
func WithLogger(opts ...util.Option) Option {
	return func(_ context.Context, m *Manager) {
		m.logOptions = append(m.logOptions, opts...)
	}
}

// WithWorkerPoolOptions customises the ants worker pool jobs are submitted to.
func WithWorkerPoolOptions(opts ...workerpool.Option) Option {
	return func(_ context.Context, m *Manager) {
		m.workerPoolOptions = append(m.workerPoolOptions, opts...)
	}
}
