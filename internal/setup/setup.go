// Package setup wires adapters and application services from configuration.
package setup

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	filekvstore "github.com/Overland-East-Bay/membership-tracker/internal/adapters/file/kvstore"
	memidempotency "github.com/Overland-East-Bay/membership-tracker/internal/adapters/memory/idempotency"
	memkvstore "github.com/Overland-East-Bay/membership-tracker/internal/adapters/memory/kvstore"
	"github.com/Overland-East-Bay/membership-tracker/internal/adapters/postgres"
	pgidempotency "github.com/Overland-East-Bay/membership-tracker/internal/adapters/postgres/idempotency"
	pgkvstore "github.com/Overland-East-Bay/membership-tracker/internal/adapters/postgres/kvstore"
	"github.com/Overland-East-Bay/membership-tracker/internal/adapters/sqlite"
	sqlitekvstore "github.com/Overland-East-Bay/membership-tracker/internal/adapters/sqlite/kvstore"
	"github.com/Overland-East-Bay/membership-tracker/internal/app/memberships"
	"github.com/Overland-East-Bay/membership-tracker/internal/platform/config"
	"github.com/Overland-East-Bay/membership-tracker/internal/ports/out/clock"
	"github.com/Overland-East-Bay/membership-tracker/internal/ports/out/idempotency"
	"github.com/Overland-East-Bay/membership-tracker/internal/ports/out/kvstore"
)

// App holds the wired membership services. Close releases backend resources.
type App struct {
	KV          kvstore.Store
	Idempotency idempotency.Store
	Persistence *memberships.Persistence
	Store       *memberships.Store
	Service     *memberships.Service

	closers []func()
}

type Option func(*options)

type options struct {
	// kv overrides the configured backend.
	kv kvstore.Store
}

// WithKVStore bypasses the configured backend. Used by tests.
func WithKVStore(kv kvstore.Store) Option {
	return func(o *options) {
		o.kv = kv
	}
}

// New opens the configured storage backend, hydrates the record store from
// it and registers the metrics observer.
func New(ctx context.Context, conf *config.Config, logger *slog.Logger, clk clock.Clock, funcs ...Option) (*App, error) {
	opts := options{}
	for _, fn := range funcs {
		fn(&opts)
	}
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{}

	if opts.kv != nil {
		app.KV = opts.kv
		app.Idempotency = newMemoryIdempotency(conf)
	} else {
		if err := app.openBackend(ctx, conf, logger); err != nil {
			app.Close()
			return nil, errors.WithStack(err)
		}
	}

	app.Persistence = memberships.NewPersistence(app.KV, conf.Storage.Key,
		memberships.WithPersistenceLogger(logger.With(slog.String("component", "persistence"))),
		memberships.WithFailureHook(recordPersistenceFailure),
	)
	app.Store = memberships.NewStore(ctx, app.Persistence, clk,
		memberships.WithLogger(logger.With(slog.String("component", "store"))),
	)
	app.closers = append(app.closers, ObserveStore(ctx, app.Store))
	app.Service = memberships.NewService(app.Store)

	return app, nil
}

func (a *App) openBackend(ctx context.Context, conf *config.Config, logger *slog.Logger) error {
	switch conf.Storage.Backend {
	case config.BackendMemory:
		a.KV = memkvstore.NewStore()
		a.Idempotency = newMemoryIdempotency(conf)

	case config.BackendFile:
		dir := conf.Storage.File.Dir
		if dir == "" {
			dir = filekvstore.DefaultDir()
		}
		a.KV = filekvstore.NewStore(dir)
		a.Idempotency = newMemoryIdempotency(conf)
		logger.DebugContext(ctx, "using file storage", slog.String("dir", dir))

	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, conf.Storage.SQLite.DSN)
		if err != nil {
			return errors.Wrapf(err, "could not open sqlite database %q", conf.Storage.SQLite.DSN)
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		a.KV = sqlitekvstore.NewStore(db)
		a.Idempotency = newMemoryIdempotency(conf)
		logger.DebugContext(ctx, "using sqlite storage", slog.String("dsn", conf.Storage.SQLite.DSN))

	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, conf.Storage.Postgres.DSN, postgres.PoolOptions{MaxConns: conf.Storage.Postgres.MaxConns})
		if err != nil {
			return errors.Wrap(err, "could not connect to postgres")
		}
		a.closers = append(a.closers, pool.Close)
		if err := postgres.Migrate(ctx, pool); err != nil {
			return errors.Wrap(err, "could not migrate postgres schema")
		}
		a.KV = pgkvstore.NewStore(pool)
		a.Idempotency = pgidempotency.NewStore(pool)
		logger.DebugContext(ctx, "using postgres storage")

	default:
		return errors.Errorf("unknown storage backend %q", conf.Storage.Backend)
	}

	return nil
}

func newMemoryIdempotency(conf *config.Config) *memidempotency.Store {
	return memidempotency.NewStore(
		memidempotency.WithCapacity(conf.Idempotency.Capacity),
		memidempotency.WithTTL(conf.Idempotency.Retention),
	)
}

// Close runs cleanup functions in reverse registration order. It is safe
// to call more than once.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
