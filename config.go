package posarray

import (
	"reflect"
	"runtime"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/chaisql/posarray/internal/schema"
	"go.uber.org/zap"
)

// Config is the serialization context of the codec.
// It carries the general purpose JSON API used for every value that is not
// on the positional fast path, and the configurations derived for nested codecs.
//
// A Config must not be copied after first use.
type Config struct {
	// API serializes structural values, and fields tagged ambient.
	// Defaults to sonic.ConfigStd.
	API sonic.API
	// Logger receives debug entries when caches are populated.
	// Defaults to a no-op logger.
	Logger *zap.Logger
	// Concurrency bounds the number of records UnmarshalBatch decodes in parallel.
	// Defaults to GOMAXPROCS.
	Concurrency int

	// Parent is the configuration this one was derived from, if any.
	Parent *Config
	// Codec is the nested codec this configuration was derived for, if any.
	Codec Codec

	scopes sync.Map // map[Codec]*Config
}

// An Option configures a Config.
type Option func(*Config)

// WithAPI sets the general purpose JSON API.
func WithAPI(api sonic.API) Option {
	return func(c *Config) {
		c.API = api
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithConcurrency sets the number of records decoded in parallel by UnmarshalBatch.
func WithConcurrency(n int) Option {
	return func(c *Config) {
		c.Concurrency = n
	}
}

// NewConfig creates a Config.
func NewConfig(opts ...Option) *Config {
	cfg := Config{
		API:         sonic.ConfigStd,
		Logger:      zap.NewNop(),
		Concurrency: runtime.GOMAXPROCS(0),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// DefaultConfig is used by the package level functions.
var DefaultConfig = NewConfig()

func (cfg *Config) api() sonic.API {
	if cfg.API == nil {
		return sonic.ConfigStd
	}

	return cfg.API
}

func (cfg *Config) logger() *zap.Logger {
	if cfg.Logger == nil {
		return zap.NewNop()
	}

	return cfg.Logger
}

func (cfg *Config) concurrency() int {
	if cfg.Concurrency <= 0 {
		return runtime.GOMAXPROCS(0)
	}

	return cfg.Concurrency
}

// Scoped returns the configuration derived from cfg for the nested codec c.
// It is built on first use and reused afterwards.
func (cfg *Config) Scoped(c Codec) *Config {
	if sc, ok := cfg.scopes.Load(c); ok {
		return sc.(*Config)
	}

	sc := &Config{
		API:         cfg.API,
		Logger:      cfg.Logger,
		Concurrency: cfg.Concurrency,
		Parent:      cfg,
		Codec:       c,
	}

	actual, loaded := cfg.scopes.LoadOrStore(c, sc)
	if !loaded {
		cfg.logger().Debug("scoped config built", zap.String("codec", reflect.TypeOf(c).String()))
	}

	return actual.(*Config)
}

func (cfg *Config) schemaOf(t reflect.Type) (*schema.Schema, error) {
	if s, ok := schema.Load(t); ok {
		return s, nil
	}

	s, err := schema.Of(t)
	if err != nil {
		return nil, err
	}

	cfg.logger().Debug("schema built",
		zap.Stringer("type", s.Type),
		zap.Int("fields", len(s.Fields)),
		zap.Int("maxIndex", s.MaxIndex),
	)
	return s, nil
}
