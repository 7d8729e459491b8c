package vm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"github.com/nooga/dynobj/pkg/errors"
)

func TestConfigDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := GetConsolidatedConfig(nil)
	require.NoError(t, err)
	assert.True(t, cfg.SingleContext.Bool)
	assert.False(t, cfg.SingleContext.Valid, "defaults are not marked as set")
	assert.Equal(t, 4, cfg.factoryCacheSize())
	assert.Equal(t, time.Duration(0), cfg.regexpTimeout())
	assert.Equal(t, "info", cfg.LogLevel.String)
}

func TestConfigLayering(t *testing.T) {
	t.Parallel()
	env := map[string]string{
		"DYNOBJ_SINGLE_CONTEXT":     "false",
		"DYNOBJ_FACTORY_CACHE_SIZE": "8",
		"DYNOBJ_REGEXP_TIMEOUT":     "250",
		"DYNOBJ_LOG_LEVEL":          "debug",
	}
	cfg, err := GetConsolidatedConfig(env)
	require.NoError(t, err)
	assert.False(t, cfg.SingleContext.Bool)
	assert.Equal(t, 8, cfg.factoryCacheSize())
	assert.Equal(t, 250*time.Millisecond, cfg.regexpTimeout())
	assert.Equal(t, "debug", cfg.LogLevel.String)

	cfg, err = GetConsolidatedConfig(env, Config{
		SingleContext: null.BoolFrom(true),
		LogLevel:      null.StringFrom(""),
	})
	require.NoError(t, err)
	assert.True(t, cfg.SingleContext.Bool, "overrides win over the environment")
	assert.Equal(t, "debug", cfg.LogLevel.String, "an empty override keeps the previous level")
	assert.Equal(t, 8, cfg.factoryCacheSize())
}

func TestConfigInvalid(t *testing.T) {
	t.Parallel()
	_, err := GetConsolidatedConfig(map[string]string{"DYNOBJ_FACTORY_CACHE_SIZE": "lots"})
	assert.Error(t, err)

	_, err = GetConsolidatedConfig(map[string]string{"DYNOBJ_FACTORY_CACHE_SIZE": "-1"})
	assert.True(t, errors.IsRangeError(err))

	_, err = GetConsolidatedConfig(nil, Config{RegexpTimeout: null.IntFrom(-5)})
	assert.True(t, errors.IsRangeError(err))

	_, err = GetConsolidatedConfig(map[string]string{"DYNOBJ_LOG_LEVEL": "chatty"})
	assert.True(t, errors.IsTypeError(err))
}

func TestRealmRegexpTimeout(t *testing.T) {
	t.Parallel()
	cfg := NewConfig().Apply(Config{RegexpTimeout: null.IntFrom(50)})
	r := NewRealm(1, cfg, nil, nil)
	v, err := r.NewRegExp(`a`, "")
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, v.AsRegExpObject().re.MatchTimeout)

	arr := mustExec(t, v.AsRegExpObject(), "a")
	assert.True(t, arr.props.GetPrototype().Is(r.ArrayPrototype))
}
