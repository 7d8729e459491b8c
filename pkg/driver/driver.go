package driver

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nooga/dynobj/pkg/errors"
	"github.com/nooga/dynobj/pkg/interop"
	"github.com/nooga/dynobj/pkg/vm"
)

// Engine owns the state shared by all contexts: the configuration, the shape
// tree and the interop normalizer. In single-context mode it hands out one
// context; in multi-context mode each call creates another realm that may run
// on its own goroutine.
type Engine struct {
	config     vm.Config
	logger     logrus.FieldLogger
	shapes     *vm.ShapeTree
	normalizer *interop.Normalizer

	mu     sync.Mutex
	realms []*vm.Realm
}

// NewEngine validates config and creates an engine with a fresh shape tree.
func NewEngine(config vm.Config, logger logrus.FieldLogger) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine configuration: %w", err)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{
		config:     config,
		logger:     logger,
		shapes:     vm.NewShapeTree(),
		normalizer: interop.NewNormalizer(nil),
	}, nil
}

// NewEngineFromEnv builds the configuration from env (see
// vm.GetConsolidatedConfig) and a logger at the configured level.
func NewEngineFromEnv(env map[string]string, overrides ...vm.Config) (*Engine, error) {
	config, err := vm.GetConsolidatedConfig(env, overrides...)
	if err != nil {
		return nil, fmt.Errorf("invalid engine configuration: %w", err)
	}
	logger := logrus.New()
	level, _ := logrus.ParseLevel(config.LogLevel.String)
	logger.SetLevel(level)
	return NewEngine(config, logger)
}

func (e *Engine) Config() vm.Config               { return e.config }
func (e *Engine) Shapes() *vm.ShapeTree           { return e.shapes }
func (e *Engine) Normalizer() *interop.Normalizer { return e.normalizer }
func (e *Engine) Logger() logrus.FieldLogger      { return e.logger }
func (e *Engine) SingleContext() bool             { return e.config.SingleContext.Bool }

// NewContext creates a realm. Single-context engines allow only one.
func (e *Engine) NewContext() (*vm.Realm, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.SingleContext() && len(e.realms) > 0 {
		return nil, errors.NewTypeError("engine is in single-context mode and already has a context")
	}
	id := len(e.realms)
	realm := vm.NewRealm(id, e.config, e.shapes, e.logger)
	e.realms = append(e.realms, realm)
	e.logger.WithFields(logrus.Fields{
		"realm":          id,
		"single_context": e.SingleContext(),
	}).Debug("Created context")
	return realm, nil
}

// Contexts returns the number of contexts created so far.
func (e *Engine) Contexts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.realms)
}

// Normalize converts a host value to an engine value.
func (e *Engine) Normalize(v any) (vm.Value, error) {
	return e.normalizer.ToInternal(v)
}

// Export converts an engine value to a host value.
func (e *Engine) Export(v vm.Value) (any, error) {
	return e.normalizer.ToHost(v)
}
