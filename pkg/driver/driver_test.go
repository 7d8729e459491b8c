package driver

import (
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"github.com/nooga/dynobj/pkg/errors"
	"github.com/nooga/dynobj/pkg/vm"
)

func TestSingleContextEngine(t *testing.T) {
	t.Parallel()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	e, err := NewEngine(vm.NewConfig(), logger)
	require.NoError(t, err)
	require.True(t, e.SingleContext())

	realm, err := e.NewContext()
	require.NoError(t, err)
	assert.Same(t, e.Shapes(), realm.Shapes())
	assert.Equal(t, 0, realm.ID())

	_, err = e.NewContext()
	assert.True(t, errors.IsTypeError(err))
	assert.Equal(t, 1, e.Contexts())

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "Created context", hook.LastEntry().Message)
	assert.Equal(t, true, hook.LastEntry().Data["single_context"])
}

func TestMultiContextEngine(t *testing.T) {
	t.Parallel()
	e, err := NewEngineFromEnv(map[string]string{"DYNOBJ_SINGLE_CONTEXT": "false"})
	require.NoError(t, err)
	require.False(t, e.SingleContext())

	data := &vm.FunctionData{Name: "f"}
	const contexts = 4
	realms := make([]*vm.Realm, contexts)
	for i := range realms {
		realms[i], err = e.NewContext()
		require.NoError(t, err)
	}
	assert.Equal(t, contexts, e.Contexts())

	// Each realm runs on its own goroutine; they share the shape tree and
	// the function data.
	var wg sync.WaitGroup
	shapes := make([]*vm.Shape, contexts)
	for i, r := range realms {
		wg.Add(1)
		go func(i int, r *vm.Realm) {
			defer wg.Done()
			obj := r.NewObject().AsPlainObject()
			obj.SetOwn("x", vm.IntegerValue(int32(i)))
			obj.SetOwn("y", vm.IntegerValue(int32(i)))
			shapes[i] = obj.Shape()
			_, _ = r.CreateFunction(data, nil, r.FunctionPrototype)
		}(i, r)
	}
	wg.Wait()

	builds, uses := 0, 0
	for i, r := range realms {
		assert.Same(t, shapes[0], shapes[i])
		builds += r.FactoryStats().SharedBuilds
		uses += r.FactoryStats().SharedUses
	}
	assert.Equal(t, 1, builds)
	assert.Equal(t, contexts, uses)
}

func TestEngineConfig(t *testing.T) {
	t.Parallel()
	_, err := NewEngineFromEnv(map[string]string{"DYNOBJ_LOG_LEVEL": "loud"})
	assert.True(t, errors.IsTypeError(err))

	_, err = NewEngine(vm.NewConfig().Apply(vm.Config{FactoryCacheSize: null.IntFrom(-1)}), nil)
	assert.True(t, errors.IsRangeError(err))

	e, err := NewEngineFromEnv(map[string]string{"DYNOBJ_FACTORY_CACHE_SIZE": "16"},
		vm.Config{LogLevel: null.StringFrom("warn")})
	require.NoError(t, err)
	assert.Equal(t, int64(16), e.Config().FactoryCacheSize.Int64)
	assert.Equal(t, logrus.WarnLevel, e.Logger().(*logrus.Logger).GetLevel())
}

func TestEngineNormalizeExport(t *testing.T) {
	t.Parallel()
	e, err := NewEngine(vm.NewConfig(), nil)
	require.NoError(t, err)

	v, err := e.Normalize(int64(1) << 40)
	require.NoError(t, err)
	assert.True(t, v.IsFloatNumber())

	out, err := e.Export(vm.NewArrayFromValues([]vm.Value{vm.IntegerValue(1), vm.NewString("a")}))
	require.NoError(t, err)
	assert.Equal(t, []any{int32(1), "a"}, out)
}
