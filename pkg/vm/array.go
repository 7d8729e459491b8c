package vm

import (
	"unsafe"
)

// ArrayObject is an array whose elements live in the store of its current
// strategy. Named (non-index) properties live in props.
type ArrayObject struct {
	Object
	strategy ScriptArray
	store    any
	length   int
	props    *PlainObject
	frozen   bool
}

// DefaultArrayPrototype is the prototype of arrays created outside a realm.
var DefaultArrayPrototype Value

func init() {
	protoObj := NewObjectWithShape(DefaultShapes.Root(), DefaultObjectPrototype)
	DefaultArrayPrototype = Value{typ: TypeObject, obj: unsafe.Pointer(protoObj)}
}

func newArrayObject(proto Value) *ArrayObject {
	return &ArrayObject{
		strategy: emptyArray,
		props:    NewObjectWithShape(DefaultShapes.Root(), proto),
	}
}

// NewArray creates an empty array.
func NewArray() Value {
	return NewValueFromArray(newArrayObject(DefaultArrayPrototype))
}

// NewArrayFromValues creates an array holding values, stored in the
// narrowest strategy that holds all of them.
func NewArrayFromValues(values []Value) Value {
	arr := newArrayObject(DefaultArrayPrototype)
	arr.fill(values)
	return NewValueFromArray(arr)
}

// NewArrayWithLength creates an array of n holes.
func NewArrayWithLength(n int) (Value, error) {
	arr := newArrayObject(DefaultArrayPrototype)
	if err := arr.SetLength(n); err != nil {
		return Undefined, err
	}
	return NewValueFromArray(arr), nil
}

// fill replaces the contents of an empty array.
func (a *ArrayObject) fill(values []Value) {
	ek := elemNone
	for _, v := range values {
		ek = joinElement(ek, classify(v))
	}
	target := strategyFor(ek, layoutDense)
	a.strategy, a.store, a.length = target, target.newStore(len(values)), len(values)
	for i, v := range values {
		target.set(a, i, v)
	}
}

// Strategy returns the active storage strategy.
func (a *ArrayObject) Strategy() ScriptArray { return a.strategy }

// Kind returns the kind of the active storage strategy.
func (a *ArrayObject) Kind() StrategyKind { return a.strategy.Kind() }

func (a *ArrayObject) Length() int { return a.length }

// HasElement reports whether index is a valid, non-hole slot.
func (a *ArrayObject) HasElement(index int) bool {
	return index >= 0 && index < a.length && a.strategy.has(a, index)
}

// GetElement returns the element at index. Calling it for an index where
// HasElement is false is an invariant violation and panics.
func (a *ArrayObject) GetElement(index int) Value {
	if index < 0 || index >= a.length {
		panic(missingElement(a.strategy.Kind(), index))
	}
	return a.strategy.get(a, index)
}

// Get is the script-level read: holes and out-of-range indices read as
// Undefined.
func (a *ArrayObject) Get(index int) Value {
	if !a.HasElement(index) {
		return Undefined
	}
	return a.strategy.get(a, index)
}

// GetElementHinted is GetElement for callers that cached the strategy they
// last observed. A stale hint falls back to the generic path.
func (a *ArrayObject) GetElementHinted(index int, hint ScriptArray) Value {
	if hint == a.strategy && index >= 0 && index < a.length {
		return hint.get(a, index)
	}
	return a.GetElement(index)
}

func (a *ArrayObject) checkIndex(index int) error {
	if index < 0 || index >= MaxArrayLength {
		return rangeError("invalid array index %d", index)
	}
	return nil
}

func (a *ArrayObject) checkWritable() error {
	if a.frozen {
		return typeError("cannot modify a frozen array")
	}
	return nil
}

// SetElement writes value at index, moving to a wider strategy when the
// current one cannot hold it.
func (a *ArrayObject) SetElement(index int, value Value) error {
	if err := a.checkIndex(index); err != nil {
		return err
	}
	if err := a.checkWritable(); err != nil {
		return err
	}
	a.materialize()
	if !a.strategy.accepts(a, index, value) {
		a.transition(a.successorFor(index, value))
		if !a.strategy.accepts(a, index, value) {
			panic(internalError("%s array cannot hold %s at %d", a.strategy.Kind(), value.TypeName(), index))
		}
	}
	a.strategy.set(a, index, value)
	return nil
}

// SetElementHinted is SetElement with a caller-cached strategy. The hint is
// only trusted when it is the active strategy and accepts the write.
func (a *ArrayObject) SetElementHinted(index int, value Value, hint ScriptArray) error {
	if hint == a.strategy && !a.frozen && index >= 0 && index < MaxArrayLength && hint.accepts(a, index, value) {
		hint.set(a, index, value)
		return nil
	}
	return a.SetElement(index, value)
}

// Push appends value.
func (a *ArrayObject) Push(value Value) error {
	return a.SetElement(a.length, value)
}

// DeleteElement turns index into a hole. Deleting a missing element
// succeeds; frozen arrays refuse.
func (a *ArrayObject) DeleteElement(index int) bool {
	if a.frozen {
		return false
	}
	if !a.HasElement(index) {
		return true
	}
	a.materialize()
	if a.strategy.remove(a, index) {
		return true
	}
	a.transition(strategyFor(a.strategy.elementKind(), layoutHoles))
	if !a.strategy.remove(a, index) {
		panic(internalError("%s array cannot hold holes", a.strategy.Kind()))
	}
	return true
}

// SetLength truncates or extends the array. Extension appends holes and
// goes sparse when more than MaxHoleGap are needed.
func (a *ArrayObject) SetLength(n int) error {
	if n < 0 || n > MaxArrayLength {
		return rangeError("invalid array length %d", n)
	}
	if err := a.checkWritable(); err != nil {
		return err
	}
	a.materialize()
	switch {
	case n < a.length:
		a.strategy.truncate(a, n)
		a.length = n
	case n > a.length:
		lk := joinLayout(a.strategy.layout(), layoutHoles)
		if n-a.length > MaxHoleGap {
			lk = layoutSparse
		}
		if lk != a.strategy.layout() {
			a.transition(strategyFor(a.strategy.elementKind(), lk))
		}
		a.strategy.grow(a, n)
		a.length = n
	}
	return nil
}

// AddRange shifts [offset, length) right by size, leaving size holes at
// offset.
func (a *ArrayObject) AddRange(offset, size int) error {
	if offset < 0 || offset > a.length || size < 0 {
		return rangeError("invalid range %d+%d for array of length %d", offset, size, a.length)
	}
	if a.length+size > MaxArrayLength {
		return rangeError("invalid array length %d", a.length+size)
	}
	if err := a.checkWritable(); err != nil {
		return err
	}
	if size == 0 {
		return nil
	}
	a.materialize()
	lk := joinLayout(a.strategy.layout(), layoutHoles)
	if size > MaxHoleGap {
		lk = layoutSparse
	}
	a.rebuild(strategyFor(a.strategy.elementKind(), lk), a.length+size, func(i int) (int, bool) {
		if i < offset {
			return i, true
		}
		return i + size, true
	})
	return nil
}

// RemoveRange removes [start, end) and shifts the tail left.
func (a *ArrayObject) RemoveRange(start, end int) error {
	if start < 0 || start > end || end > a.length {
		return rangeError("invalid range [%d, %d) for array of length %d", start, end, a.length)
	}
	if err := a.checkWritable(); err != nil {
		return err
	}
	if start == end {
		return nil
	}
	a.materialize()
	removed := end - start
	a.rebuild(a.strategy, a.length-removed, func(i int) (int, bool) {
		switch {
		case i < start:
			return i, true
		case i < end:
			return 0, false
		default:
			return i - removed, true
		}
	})
	return nil
}

// ToArray returns the elements in index order with holes as Undefined.
func (a *ArrayObject) ToArray() []Value {
	a.materialize()
	out := make([]Value, a.length)
	for i := range out {
		out[i] = Undefined
	}
	a.strategy.each(a, func(i int, v Value) { out[i] = v })
	return out
}

// UnresolvedGroups returns how many capture groups of a lazy regex result
// have not been computed yet; zero once the array is materialized.
func (a *ArrayObject) UnresolvedGroups() int {
	if a.strategy != lazyRegexArray {
		return 0
	}
	return a.store.(*regexResultStore).unresolved()
}

// Freeze makes the elements and named properties read-only.
func (a *ArrayObject) Freeze() {
	a.frozen = true
	a.props.PreventExtensions()
}

func (a *ArrayObject) IsFrozen() bool { return a.frozen }

func (a *ArrayObject) namedProps() *PlainObject { return a.props }

// GetOwn reads a named property.
func (a *ArrayObject) GetOwn(name string) (Value, bool) {
	if name == "length" {
		return IntegerOrNumber(a.length), true
	}
	return a.props.GetOwn(name)
}

// SetOwn writes a named property; frozen arrays refuse.
func (a *ArrayObject) SetOwn(name string, v Value) bool {
	if a.frozen || name == "length" {
		return false
	}
	return a.props.SetOwn(name, v)
}

// IntegerOrNumber returns n as an Integer value when it fits in int32.
func IntegerOrNumber(n int) Value {
	if n >= -1<<31 && n < 1<<31 {
		return IntegerValue(int32(n))
	}
	return NumberValue(float64(n))
}
