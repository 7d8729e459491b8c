package interop

import (
	"math"
	"math/big"
	"reflect"

	"github.com/nooga/dynobj/pkg/errors"
	"github.com/nooga/dynobj/pkg/vm"
)

// Normalizer converts host values entering the engine and engine values
// leaving it.
type Normalizer struct {
	env HostEnvironment
}

// NewNormalizer returns a Normalizer consulting env for host objects. A nil
// env selects ReflectEnvironment.
func NewNormalizer(env HostEnvironment) *Normalizer {
	if env == nil {
		env = ReflectEnvironment{}
	}
	return &Normalizer{env: env}
}

// ToInternal converts a host value to an engine value. The first matching
// rule wins:
//
//  1. integers within int32 become Integer values
//  2. other integers become Float values
//  3. floats, bools, Char, strings and *big.Int convert directly
//  4. nil becomes Null
//  5. a *FunctionHandle unwraps to its closure
//  6. host objects become Null when null, Foreign otherwise
//  7. anything else is a TypeError
//
// Engine values pass through unchanged.
func (n *Normalizer) ToInternal(v any) (vm.Value, error) {
	if iv, ok := intValue(v); ok {
		if iv.fits {
			return vm.IntegerValue(int32(iv.i)), nil
		}
		return vm.NumberValue(iv.f), nil
	}

	switch x := v.(type) {
	case vm.Value:
		return x, nil
	case float64:
		return vm.NumberValue(x), nil
	case float32:
		return vm.NumberValue(float64(x)), nil
	case bool:
		return vm.BooleanValue(x), nil
	case Char:
		return vm.NewString(x.String()), nil
	case string:
		return vm.NewString(x), nil
	case *big.Int:
		if x == nil {
			return vm.Null, nil
		}
		return vm.NewBigInt(new(big.Int).Set(x)), nil
	case nil:
		return vm.Null, nil
	case *FunctionHandle:
		if x == nil {
			return vm.Null, nil
		}
		return x.fn, nil
	}

	// Named types of the direct kinds.
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return vm.NumberValue(rv.Float()), nil
	case reflect.Bool:
		return vm.BooleanValue(rv.Bool()), nil
	case reflect.String:
		return vm.NewString(rv.String()), nil
	}

	if n.env.IsHostObject(v) {
		if n.env.IsHostNull(v) {
			return vm.Null, nil
		}
		return vm.NewForeign(v), nil
	}
	return vm.Undefined, errors.NewTypeError("unsupported interop type %T", v)
}

type intResult struct {
	i    int64
	f    float64
	fits bool
}

// intValue recognizes every Go integer kind, including named types. uintptr
// is not an integer for the engine.
func intValue(v any) (intResult, bool) {
	switch x := v.(type) {
	case int:
		return signed(int64(x)), true
	case int32:
		return signed(int64(x)), true
	case int64:
		return signed(x), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return signed(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if _, isChar := v.(Char); isChar {
			return intResult{}, false
		}
		u := rv.Uint()
		if u <= math.MaxInt32 {
			return intResult{i: int64(u), fits: true}, true
		}
		return intResult{f: float64(u)}, true
	}
	return intResult{}, false
}

func signed(i int64) intResult {
	if i >= math.MinInt32 && i <= math.MaxInt32 {
		return intResult{i: i, fits: true}
	}
	return intResult{f: float64(i)}
}
