package interop

import (
	"math"
	"math/big"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nooga/dynobj/pkg/errors"
	"github.com/nooga/dynobj/pkg/vm"
)

type (
	userID   uint8
	score    float32
	label    string
	flag     bool
	hostNode struct{ next *hostNode }
)

func TestToInternalNumbers(t *testing.T) {
	t.Parallel()
	n := NewNormalizer(nil)
	tests := []struct {
		name    string
		in      any
		integer bool
		want    float64
	}{
		{"int", 42, true, 42},
		{"int8", int8(-8), true, -8},
		{"int64 max int32", int64(math.MaxInt32), true, math.MaxInt32},
		{"int64 past int32", int64(1) << 31, false, 1 << 31},
		{"int64 below int32", int64(math.MinInt32) - 1, false, math.MinInt32 - 1},
		{"uint32 past int32", uint32(1) << 31, false, 1 << 31},
		{"uint64", uint64(7), true, 7},
		{"named uint8", userID(3), true, 3},
		{"float64", 2.5, false, 2.5},
		{"float32", float32(0.5), false, 0.5},
		{"named float", score(1.5), false, 1.5},
		{"integral float stays float", 3.0, false, 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			v, err := n.ToInternal(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.integer, v.IsIntegerNumber())
			assert.True(t, v.IsNumber())
			assert.Equal(t, tc.want, v.ToFloat())
		})
	}
}

func TestToInternalScalars(t *testing.T) {
	t.Parallel()
	n := NewNormalizer(nil)

	v, err := n.ToInternal("hi")
	require.NoError(t, err)
	assert.Equal(t, "hi", v.AsString())

	v, err = n.ToInternal(label("named"))
	require.NoError(t, err)
	assert.Equal(t, "named", v.AsString())

	v, err = n.ToInternal(true)
	require.NoError(t, err)
	assert.True(t, v.AsBoolean())

	v, err = n.ToInternal(flag(true))
	require.NoError(t, err)
	assert.True(t, v.AsBoolean())

	v, err = n.ToInternal(Char('A'))
	require.NoError(t, err)
	assert.Equal(t, "A", v.AsString())

	v, err = n.ToInternal(Char(0xD800))
	require.NoError(t, err)
	assert.Equal(t, "�", v.AsString())

	v, err = n.ToInternal(nil)
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	same := vm.NewString("engine")
	v, err = n.ToInternal(same)
	require.NoError(t, err)
	assert.True(t, v.Is(same))
}

func TestToInternalBigIntIsCopied(t *testing.T) {
	t.Parallel()
	n := NewNormalizer(nil)
	b := big.NewInt(10)
	v, err := n.ToInternal(b)
	require.NoError(t, err)
	b.SetInt64(99)
	assert.Equal(t, int64(10), v.AsBigInt().Int64())

	v, err = n.ToInternal((*big.Int)(nil))
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestToInternalHostObjects(t *testing.T) {
	t.Parallel()
	n := NewNormalizer(nil)

	// Typed nils are the host's null whatever their declared type.
	for _, in := range []any{(*hostNode)(nil), map[string]int(nil), []int(nil), (func())(nil), (*FunctionHandle)(nil)} {
		v, err := n.ToInternal(in)
		require.NoError(t, err)
		assert.Truef(t, v.IsNull(), "%T", in)
	}

	node := &hostNode{}
	v, err := n.ToInternal(node)
	require.NoError(t, err)
	require.True(t, v.IsForeign())
	assert.Same(t, node, v.AsForeign())

	v, err = n.ToInternal(hostNode{})
	require.NoError(t, err)
	assert.True(t, v.IsForeign())
}

func TestToInternalUnsupported(t *testing.T) {
	t.Parallel()
	n := NewNormalizer(nil)
	for _, in := range []any{make(chan int), complex(1, 2), uintptr(1), unsafe.Pointer(nil)} {
		_, err := n.ToInternal(in)
		assert.Truef(t, errors.IsTypeError(err), "%T", in)
	}
}

type stringsOnly struct{}

func (stringsOnly) IsHostObject(v any) bool {
	_, ok := v.([]string)
	return ok
}

func (stringsOnly) IsHostNull(v any) bool {
	s, _ := v.([]string)
	return s == nil
}

func TestToInternalCustomEnvironment(t *testing.T) {
	t.Parallel()
	n := NewNormalizer(stringsOnly{})
	v, err := n.ToInternal([]string{"a"})
	require.NoError(t, err)
	assert.True(t, v.IsForeign())

	_, err = n.ToInternal(&hostNode{})
	assert.True(t, errors.IsTypeError(err))
}

func TestToHost(t *testing.T) {
	t.Parallel()
	n := NewNormalizer(nil)
	shapes := vm.NewShapeTree()
	r := vm.NewRealm(1, vm.NewConfig(), shapes, nil)

	obj := r.NewObject()
	obj.AsPlainObject().SetOwn("n", vm.IntegerValue(1))
	obj.AsPlainObject().SetOwn("list", r.NewArray(vm.NumberValue(0.5), vm.Null))
	re, err := r.NewRegExp("a+", "g")
	require.NoError(t, err)
	obj.AsPlainObject().SetOwn("re", re)
	obj.AsPlainObject().SetOwn("big", vm.NewBigInt(big.NewInt(5)))
	obj.AsPlainObject().SetOwn("u", vm.Undefined)

	out, err := n.ToHost(obj)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"n":    int32(1),
		"list": []any{0.5, nil},
		"re":   "/a+/g",
		"big":  big.NewInt(5),
		"u":    nil,
	}, out)

	node := &hostNode{}
	out, err = n.ToHost(vm.NewForeign(node))
	require.NoError(t, err)
	assert.Same(t, node, out)

	_, err = n.ToHost(vm.NewSymbol("s"))
	assert.True(t, errors.IsTypeError(err))
}

func TestToHostCycles(t *testing.T) {
	t.Parallel()
	n := NewNormalizer(nil)
	arr := vm.NewArray()
	require.NoError(t, arr.AsArray().Push(arr))
	_, err := n.ToHost(arr)
	assert.True(t, errors.IsTypeError(err))

	obj := vm.NewObject(vm.DefaultObjectPrototype)
	obj.AsPlainObject().SetOwn("self", obj)
	_, err = n.ToHost(obj)
	assert.True(t, errors.IsTypeError(err))

	// Shared but acyclic references are fine.
	leaf := vm.NewArray()
	pair := vm.NewArrayFromValues([]vm.Value{leaf, leaf})
	out, err := n.ToHost(pair)
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{}, []any{}}, out)
}

func newDoubler(t *testing.T, r *vm.Realm) vm.Value {
	t.Helper()
	fn, err := r.CreateFunction(&vm.FunctionData{
		Name:  "double",
		Arity: 1,
		Body: func(_ *vm.Closure, _ vm.Value, args []vm.Value) (vm.Value, error) {
			return vm.NumberValue(args[0].ToFloat() * 2), nil
		},
	}, nil, r.FunctionPrototype)
	require.NoError(t, err)
	return fn
}

func TestFunctionHandleRoundTrip(t *testing.T) {
	t.Parallel()
	n := NewNormalizer(nil)
	r := vm.NewRealm(1, vm.NewConfig(), nil, nil)
	fn := newDoubler(t, r)

	out, err := n.ToHost(fn)
	require.NoError(t, err)
	h, ok := out.(*FunctionHandle)
	require.True(t, ok)
	assert.Equal(t, "double", h.Name())

	back, err := n.ToInternal(h)
	require.NoError(t, err)
	assert.True(t, back.Is(fn), "a handle unwraps to the original closure")

	res, err := h.Call(nil, 21)
	require.NoError(t, err)
	assert.Equal(t, 42.0, res)

	_, err = h.Call(nil, make(chan int))
	assert.True(t, errors.IsTypeError(err))

	_, err = n.NewFunctionHandle(vm.NewString("f"))
	assert.True(t, errors.IsTypeError(err))
}

func TestGetMemberAndInvoke(t *testing.T) {
	t.Parallel()
	n := NewNormalizer(nil)
	r := vm.NewRealm(1, vm.NewConfig(), nil, nil)
	proto := r.NewObject()
	proto.AsPlainObject().SetOwn("double", newDoubler(t, r))
	obj := vm.NewObject(proto)
	obj.AsPlainObject().SetOwn("name", vm.NewString("box"))

	got, err := n.GetMember(obj, "name")
	require.NoError(t, err)
	assert.Equal(t, "box", got)

	got, err = n.GetMember(obj, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = n.Invoke(obj, "double", 4)
	require.NoError(t, err)
	assert.Equal(t, 8.0, got)

	_, err = n.Invoke(obj, "name")
	assert.True(t, errors.IsTypeError(err))
	_, err = n.GetMember(vm.Null, "x")
	assert.True(t, errors.IsTypeError(err))

	length, err := n.GetMember(r.NewArray(vm.True), "length")
	require.NoError(t, err)
	assert.Equal(t, int32(1), length)
}
