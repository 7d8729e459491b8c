package interop

import (
	"math/big"

	"github.com/nooga/dynobj/pkg/errors"
	"github.com/nooga/dynobj/pkg/vm"
)

// ToHost converts an engine value to a host value, the inverse of
// ToInternal. Arrays become []any and plain objects map[string]any of their
// enumerable string keys; cyclic structures are a TypeError.
func (n *Normalizer) ToHost(v vm.Value) (any, error) {
	return n.toHost(v, make(map[any]bool))
}

func (n *Normalizer) toHost(v vm.Value, seen map[any]bool) (any, error) {
	switch v.Type() {
	case vm.TypeIntegerNumber:
		return v.AsInteger(), nil
	case vm.TypeFloatNumber:
		return v.AsFloat(), nil
	case vm.TypeBoolean:
		return v.AsBoolean(), nil
	case vm.TypeString:
		return v.AsString(), nil
	case vm.TypeBigInt:
		return new(big.Int).Set(v.AsBigInt()), nil
	case vm.TypeNull, vm.TypeUndefined:
		return nil, nil
	case vm.TypeClosure:
		return &FunctionHandle{fn: v, n: n}, nil
	case vm.TypeForeign:
		return v.AsForeign(), nil
	case vm.TypeArray:
		arr := v.AsArray()
		if seen[arr] {
			return nil, errors.NewTypeError("cannot export cyclic array")
		}
		seen[arr] = true
		defer delete(seen, arr)
		out := make([]any, arr.Length())
		for i := range out {
			el, err := n.toHost(arr.Get(i), seen)
			if err != nil {
				return nil, err
			}
			out[i] = el
		}
		return out, nil
	case vm.TypeObject:
		obj := v.AsPlainObject()
		if seen[obj] {
			return nil, errors.NewTypeError("cannot export cyclic object")
		}
		seen[obj] = true
		defer delete(seen, obj)
		out := make(map[string]any)
		for _, key := range obj.OwnKeys() {
			prop, _ := obj.GetOwn(key)
			el, err := n.toHost(prop, seen)
			if err != nil {
				return nil, err
			}
			out[key] = el
		}
		return out, nil
	case vm.TypeRegExp:
		return v.AsRegExpObject().String(), nil
	}
	return nil, errors.NewTypeError("cannot export %s value to the host", v.TypeName())
}
