package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"

	"github.com/Overland-East-Bay/membership-tracker/internal/ports/out/kvstore"
)

// Prefix is prepended to every environment variable name.
const Prefix = "MEMBERSHIPS_"

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Logger      Logger      `envPrefix:"LOGGER_"`
	HTTP        HTTP        `envPrefix:"HTTP_"`
	Storage     Storage     `envPrefix:"STORAGE_"`
	Idempotency Idempotency `envPrefix:"IDEMPOTENCY_"`
}

type Logger struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

type HTTP struct {
	Address           string        `env:"ADDRESS" envDefault:":8080"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// CORSAllowedOrigins lists origins allowed to call the API from a
	// browser. Empty disables CORS handling.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	RateLimit RateLimit `envPrefix:"RATE_LIMIT_"`
}

// RateLimit throttles requests per client address.
type RateLimit struct {
	Enabled           bool          `env:"ENABLED" envDefault:"false"`
	Interval          time.Duration `env:"INTERVAL" envDefault:"100ms"`
	Burst             int           `env:"BURST" envDefault:"20"`
	CacheSize         int           `env:"CACHE_SIZE" envDefault:"1024"`
	TTL               time.Duration `env:"TTL" envDefault:"10m"`
	TrustProxyHeaders bool          `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
}

// Idempotency bounds how long replayable create responses are kept.
type Idempotency struct {
	Retention     time.Duration `env:"RETENTION" envDefault:"24h"`
	PurgeInterval time.Duration `env:"PURGE_INTERVAL" envDefault:"1h"`
	// Capacity caps the in-memory store used by non-postgres backends.
	Capacity int `env:"CAPACITY" envDefault:"4096"`
}

type Storage struct {
	// Backend selects the durable slot: file, sqlite, postgres or memory.
	Backend string `env:"BACKEND" envDefault:"file"`
	// Key is the slot holding the whole membership list.
	Key string `env:"KEY" envDefault:"memberships"`

	File     File     `envPrefix:"FILE_"`
	SQLite   SQLite   `envPrefix:"SQLITE_"`
	Postgres Postgres `envPrefix:"POSTGRES_"`
}

type File struct {
	// Dir defaults to the per-user configuration directory when empty.
	Dir string `env:"DIR"`
}

type SQLite struct {
	DSN string `env:"DSN" envDefault:"memberships.sqlite"`
}

type Postgres struct {
	DSN      string `env:"DSN"`
	MaxConns int32  `env:"MAX_CONNS" envDefault:"4"`
}

func Parse() (*Config, error) {
	return ParseWithEnvironment(nil)
}

// ParseWithEnvironment parses configuration from environ instead of the
// process environment when environ is non-nil.
func ParseWithEnvironment(environ map[string]string) (*Config, error) {
	opts := env.Options{
		Prefix: Prefix,
	}
	if environ != nil {
		opts.Environment = environ
	}

	conf, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := conf.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	return &conf, nil
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	case BackendPostgres:
		if c.Storage.Postgres.DSN == "" {
			return errors.Errorf("%sSTORAGE_POSTGRES_DSN is required with the postgres backend", Prefix)
		}
	default:
		return errors.Errorf("unknown storage backend %q (expected file|sqlite|postgres|memory)", c.Storage.Backend)
	}
	if c.HTTP.RateLimit.Enabled {
		rl := c.HTTP.RateLimit
		if rl.Interval <= 0 || rl.Burst <= 0 || rl.CacheSize <= 0 {
			return errors.Errorf("%sHTTP_RATE_LIMIT_INTERVAL, _BURST and _CACHE_SIZE must be positive", Prefix)
		}
	}
	if c.Idempotency.Retention <= 0 || c.Idempotency.PurgeInterval <= 0 {
		return errors.Errorf("%sIDEMPOTENCY_RETENTION and _PURGE_INTERVAL must be positive", Prefix)
	}
	if !kvstore.ValidKey(c.Storage.Key) {
		return errors.Errorf("%sSTORAGE_KEY %q must start with a letter or digit and contain only letters, digits, '.', '_' or '-'", Prefix, c.Storage.Key)
	}
	return nil
}
