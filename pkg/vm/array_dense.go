package vm

import (
	"math"
)

// Dense strategies hold every index in [0, length) in a typed slice whose
// length equals the array length.

type emptyStrategy struct{}

func (emptyStrategy) Kind() StrategyKind                    { return StrategyEmpty }
func (emptyStrategy) elementKind() elementKind              { return elemNone }
func (emptyStrategy) layout() layoutKind                    { return layoutDense }
func (emptyStrategy) has(*ArrayObject, int) bool            { return false }
func (emptyStrategy) accepts(*ArrayObject, int, Value) bool { return false }
func (emptyStrategy) remove(*ArrayObject, int) bool         { return false }
func (emptyStrategy) truncate(*ArrayObject, int)            {}
func (emptyStrategy) each(*ArrayObject, func(int, Value))   {}
func (emptyStrategy) newStore(int) any                      { return nil }
func (emptyStrategy) get(_ *ArrayObject, index int) Value   { panic(missingElement(StrategyEmpty, index)) }
func (emptyStrategy) set(*ArrayObject, int, Value)          { panic(internalError("set on empty array strategy")) }
func (emptyStrategy) grow(*ArrayObject, int)                { panic(internalError("grow on empty array strategy")) }

func missingElement(kind StrategyKind, index int) error {
	return internalError("%s array has no element at %d", kind, index)
}

// denseAccepts is the common write check: the value fits the element kind and
// the index is in range or appends.
func denseAccepts(ek elementKind, n int, index int, v Value) bool {
	return index <= n && classify(v) <= ek
}

type int8Strategy struct{}

func (int8Strategy) Kind() StrategyKind       { return StrategyInt8 }
func (int8Strategy) elementKind() elementKind { return elemInt8 }
func (int8Strategy) layout() layoutKind       { return layoutDense }

func (int8Strategy) has(a *ArrayObject, index int) bool {
	return index >= 0 && index < len(a.store.([]int8))
}

func (s int8Strategy) get(a *ArrayObject, index int) Value {
	if !s.has(a, index) {
		panic(missingElement(StrategyInt8, index))
	}
	return IntegerValue(int32(a.store.([]int8)[index]))
}

func (int8Strategy) accepts(a *ArrayObject, index int, v Value) bool {
	return denseAccepts(elemInt8, len(a.store.([]int8)), index, v)
}

func (int8Strategy) set(a *ArrayObject, index int, v Value) {
	elems := a.store.([]int8)
	x := int8(toInt32(v))
	if index == len(elems) {
		a.store = append(elems, x)
		a.length = index + 1
		return
	}
	elems[index] = x
}

func (int8Strategy) remove(*ArrayObject, int) bool { return false }

func (int8Strategy) truncate(a *ArrayObject, n int) {
	a.store = a.store.([]int8)[:n]
}

func (int8Strategy) grow(*ArrayObject, int) { panic(internalError("grow on dense Int8 array")) }

func (int8Strategy) each(a *ArrayObject, fn func(int, Value)) {
	for i, x := range a.store.([]int8) {
		fn(i, IntegerValue(int32(x)))
	}
}

func (int8Strategy) newStore(length int) any { return make([]int8, length) }

type int32Strategy struct{}

func (int32Strategy) Kind() StrategyKind       { return StrategyInt32 }
func (int32Strategy) elementKind() elementKind { return elemInt32 }
func (int32Strategy) layout() layoutKind       { return layoutDense }

func (int32Strategy) has(a *ArrayObject, index int) bool {
	return index >= 0 && index < len(a.store.([]int32))
}

func (s int32Strategy) get(a *ArrayObject, index int) Value {
	if !s.has(a, index) {
		panic(missingElement(StrategyInt32, index))
	}
	return IntegerValue(a.store.([]int32)[index])
}

func (int32Strategy) accepts(a *ArrayObject, index int, v Value) bool {
	return denseAccepts(elemInt32, len(a.store.([]int32)), index, v)
}

func (int32Strategy) set(a *ArrayObject, index int, v Value) {
	elems := a.store.([]int32)
	x := toInt32(v)
	if index == len(elems) {
		a.store = append(elems, x)
		a.length = index + 1
		return
	}
	elems[index] = x
}

func (int32Strategy) remove(*ArrayObject, int) bool { return false }

func (int32Strategy) truncate(a *ArrayObject, n int) {
	a.store = a.store.([]int32)[:n]
}

func (int32Strategy) grow(*ArrayObject, int) { panic(internalError("grow on dense Int32 array")) }

func (int32Strategy) each(a *ArrayObject, fn func(int, Value)) {
	for i, x := range a.store.([]int32) {
		fn(i, IntegerValue(x))
	}
}

func (int32Strategy) newStore(length int) any { return make([]int32, length) }

type float64Strategy struct{}

func (float64Strategy) Kind() StrategyKind       { return StrategyFloat64 }
func (float64Strategy) elementKind() elementKind { return elemFloat64 }
func (float64Strategy) layout() layoutKind       { return layoutDense }

func (float64Strategy) has(a *ArrayObject, index int) bool {
	return index >= 0 && index < len(a.store.([]float64))
}

func (s float64Strategy) get(a *ArrayObject, index int) Value {
	if !s.has(a, index) {
		panic(missingElement(StrategyFloat64, index))
	}
	return NumberValue(a.store.([]float64)[index])
}

func (float64Strategy) accepts(a *ArrayObject, index int, v Value) bool {
	return denseAccepts(elemFloat64, len(a.store.([]float64)), index, v)
}

func (float64Strategy) set(a *ArrayObject, index int, v Value) {
	elems := a.store.([]float64)
	x := canonicalFloat(v.ToFloat())
	if index == len(elems) {
		a.store = append(elems, x)
		a.length = index + 1
		return
	}
	elems[index] = x
}

func (float64Strategy) remove(*ArrayObject, int) bool { return false }

func (float64Strategy) truncate(a *ArrayObject, n int) {
	a.store = a.store.([]float64)[:n]
}

func (float64Strategy) grow(*ArrayObject, int) { panic(internalError("grow on dense Float64 array")) }

func (float64Strategy) each(a *ArrayObject, fn func(int, Value)) {
	for i, x := range a.store.([]float64) {
		fn(i, NumberValue(x))
	}
}

func (float64Strategy) newStore(length int) any { return make([]float64, length) }

type objectStrategy struct{}

func (objectStrategy) Kind() StrategyKind       { return StrategyObject }
func (objectStrategy) elementKind() elementKind { return elemObject }
func (objectStrategy) layout() layoutKind       { return layoutDense }

func (objectStrategy) has(a *ArrayObject, index int) bool {
	return index >= 0 && index < len(a.store.([]Value))
}

func (s objectStrategy) get(a *ArrayObject, index int) Value {
	if !s.has(a, index) {
		panic(missingElement(StrategyObject, index))
	}
	return a.store.([]Value)[index]
}

func (objectStrategy) accepts(a *ArrayObject, index int, v Value) bool {
	classify(v)
	return index <= len(a.store.([]Value))
}

func (objectStrategy) set(a *ArrayObject, index int, v Value) {
	elems := a.store.([]Value)
	if index == len(elems) {
		a.store = append(elems, v)
		a.length = index + 1
		return
	}
	elems[index] = v
}

func (objectStrategy) remove(*ArrayObject, int) bool { return false }

func (objectStrategy) truncate(a *ArrayObject, n int) {
	elems := a.store.([]Value)
	clear(elems[n:])
	a.store = elems[:n]
}

func (objectStrategy) grow(*ArrayObject, int) { panic(internalError("grow on dense Object array")) }

func (objectStrategy) each(a *ArrayObject, fn func(int, Value)) {
	for i, v := range a.store.([]Value) {
		fn(i, v)
	}
}

func (objectStrategy) newStore(length int) any {
	elems := make([]Value, length)
	for i := range elems {
		elems[i] = Undefined
	}
	return elems
}

// canonicalNaN is the only NaN bit pattern stored in float arrays, so the
// float hole sentinel never collides with a real element.
var canonicalNaN = math.NaN()

func canonicalFloat(f float64) float64 {
	if f != f {
		return canonicalNaN
	}
	return f
}
