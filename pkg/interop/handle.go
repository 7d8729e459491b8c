package interop

import (
	"fmt"

	"github.com/nooga/dynobj/pkg/errors"
	"github.com/nooga/dynobj/pkg/vm"
)

// FunctionHandle is an engine function held by the host. Passing it back
// into the engine yields the original closure.
type FunctionHandle struct {
	fn vm.Value
	n  *Normalizer
}

// NewFunctionHandle wraps a closure value.
func (n *Normalizer) NewFunctionHandle(fn vm.Value) (*FunctionHandle, error) {
	if !fn.IsClosure() {
		return nil, errors.NewTypeError("%s is not a function", fn.TypeName())
	}
	return &FunctionHandle{fn: fn, n: n}, nil
}

// Value returns the wrapped closure.
func (h *FunctionHandle) Value() vm.Value { return h.fn }

func (h *FunctionHandle) Name() string { return h.fn.AsClosure().Data().Name }

// Call normalizes this and args, invokes the function and exports the
// result.
func (h *FunctionHandle) Call(this any, args ...any) (any, error) {
	thisVal, err := h.n.ToInternal(this)
	if err != nil {
		return nil, fmt.Errorf("this: %w", err)
	}
	return h.n.call(h.fn, thisVal, args)
}

func (n *Normalizer) call(fn, this vm.Value, args []any) (any, error) {
	argv := make([]vm.Value, len(args))
	for i, a := range args {
		v, err := n.ToInternal(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		argv[i] = v
	}
	result, err := fn.AsClosure().Call(this, argv)
	if err != nil {
		return nil, err
	}
	return n.ToHost(result)
}

// GetMember reads a named property of obj, prototype chain included, and
// exports it. A missing member is nil.
func (n *Normalizer) GetMember(obj vm.Value, name string) (any, error) {
	if !obj.IsObject() {
		return nil, errors.NewTypeError("cannot read property '%s' of %s", name, obj.TypeName())
	}
	v, _ := vm.GetProperty(obj, name)
	return n.ToHost(v)
}

// Invoke calls the method name of obj with obj as this.
func (n *Normalizer) Invoke(obj vm.Value, name string, args ...any) (any, error) {
	if !obj.IsObject() {
		return nil, errors.NewTypeError("cannot read property '%s' of %s", name, obj.TypeName())
	}
	m, ok := vm.GetProperty(obj, name)
	if !ok || !m.IsClosure() {
		return nil, errors.NewTypeError("%s is not a function", name)
	}
	return n.call(m, obj, args)
}
