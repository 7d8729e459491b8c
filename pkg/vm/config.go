package vm

import (
	"time"

	"github.com/mstoykov/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/guregu/null.v3"

	"github.com/nooga/dynobj/pkg/errors"
)

// Config holds the engine options that can be set from the environment.
type Config struct {
	// SingleContext selects the factory policy: a bounded per-function cache
	// keyed on prototype identity when true, one shared prototype-free factory
	// per function otherwise.
	SingleContext null.Bool `json:"singleContext" envconfig:"DYNOBJ_SINGLE_CONTEXT"`

	// FactoryCacheSize is the number of prototypes cached per function.
	FactoryCacheSize null.Int `json:"factoryCacheSize" envconfig:"DYNOBJ_FACTORY_CACHE_SIZE"`

	// RegexpTimeout bounds a single regexp match, in milliseconds. Zero disables it.
	RegexpTimeout null.Int `json:"regexpTimeout" envconfig:"DYNOBJ_REGEXP_TIMEOUT"`

	LogLevel null.String `json:"logLevel" envconfig:"DYNOBJ_LOG_LEVEL"`
}

// NewConfig returns a Config with the default values.
func NewConfig() Config {
	return Config{
		SingleContext:    null.NewBool(true, false),
		FactoryCacheSize: null.NewInt(4, false),
		RegexpTimeout:    null.NewInt(0, false),
		LogLevel:         null.NewString("info", false),
	}
}

// Apply overrides the receiver with every valid field of cfg.
func (c Config) Apply(cfg Config) Config {
	if cfg.SingleContext.Valid {
		c.SingleContext = cfg.SingleContext
	}
	if cfg.FactoryCacheSize.Valid {
		c.FactoryCacheSize = cfg.FactoryCacheSize
	}
	if cfg.RegexpTimeout.Valid {
		c.RegexpTimeout = cfg.RegexpTimeout
	}
	if cfg.LogLevel.Valid && cfg.LogLevel.String != "" {
		c.LogLevel = cfg.LogLevel
	}
	return c
}

// GetConsolidatedConfig layers the defaults, the environment and then
// overrides, in that order.
func GetConsolidatedConfig(env map[string]string, overrides ...Config) (Config, error) {
	result := NewConfig()

	envConfig := Config{}
	if err := envconfig.Process("", &envConfig, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}); err != nil {
		return result, err
	}
	result = result.Apply(envConfig)

	for _, o := range overrides {
		result = result.Apply(o)
	}
	return result, result.Validate()
}

// Validate reports the first invalid option.
func (c Config) Validate() error {
	if c.FactoryCacheSize.Int64 < 0 {
		return errors.NewRangeError("factory cache size must not be negative, got %d", c.FactoryCacheSize.Int64)
	}
	if c.RegexpTimeout.Int64 < 0 {
		return errors.NewRangeError("regexp timeout must not be negative, got %d", c.RegexpTimeout.Int64)
	}
	if _, err := logrus.ParseLevel(c.LogLevel.String); err != nil {
		return errors.NewTypeError("invalid log level %q", c.LogLevel.String).CausedBy(err)
	}
	return nil
}

func (c Config) regexpTimeout() time.Duration {
	return time.Duration(c.RegexpTimeout.Int64) * time.Millisecond
}

func (c Config) factoryCacheSize() int {
	return int(c.FactoryCacheSize.Int64)
}
