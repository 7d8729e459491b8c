package vm

import (
	"math"
)

// StrategyKind names a storage strategy. The set is closed.
type StrategyKind uint8

const (
	StrategyEmpty StrategyKind = iota
	StrategyInt8
	StrategyInt32
	StrategyFloat64
	StrategyObject
	StrategyHolesInt32
	StrategyHolesFloat64
	StrategyHolesObject
	StrategySparse
	StrategyLazyRegex
)

func (k StrategyKind) String() string {
	switch k {
	case StrategyEmpty:
		return "Empty"
	case StrategyInt8:
		return "Int8"
	case StrategyInt32:
		return "Int32"
	case StrategyFloat64:
		return "Float64"
	case StrategyObject:
		return "Object"
	case StrategyHolesInt32:
		return "HolesInt32"
	case StrategyHolesFloat64:
		return "HolesFloat64"
	case StrategyHolesObject:
		return "HolesObject"
	case StrategySparse:
		return "Sparse"
	case StrategyLazyRegex:
		return "LazyRegex"
	default:
		return "Unknown"
	}
}

// ScriptArray is the behaviour of one storage strategy. Strategies are
// stateless singletons; the backing representation lives in
// ArrayObject.store. The unexported methods keep the set of strategies
// closed to this package.
type ScriptArray interface {
	Kind() StrategyKind

	elementKind() elementKind
	layout() layoutKind

	has(a *ArrayObject, index int) bool
	// get requires has(a, index).
	get(a *ArrayObject, index int) Value
	// accepts reports whether set(a, index, v) can run without a transition.
	accepts(a *ArrayObject, index int, v Value) bool
	set(a *ArrayObject, index int, v Value)
	// remove turns an existing element into a hole in place. Dense strategies
	// report false.
	remove(a *ArrayObject, index int) bool
	truncate(a *ArrayObject, n int)
	// grow extends the length with holes. Only holey and sparse strategies
	// grow.
	grow(a *ArrayObject, n int)
	// each visits present elements in index order.
	each(a *ArrayObject, fn func(index int, v Value))
	// newStore returns a store for length elements, every slot a hole.
	newStore(length int) any
}

type elementKind uint8

const (
	elemNone elementKind = iota
	elemInt8
	elemInt32
	elemFloat64
	elemObject
)

type layoutKind uint8

const (
	layoutDense layoutKind = iota
	layoutHoles
	layoutSparse
)

// MaxHoleGap is the largest gap a write past the end may open before the
// array goes sparse.
const MaxHoleGap = 1024

// MaxArrayLength is the largest valid array length, 2^32-1.
const MaxArrayLength = 1<<32 - 1

var (
	emptyArray        ScriptArray = emptyStrategy{}
	int8Array         ScriptArray = int8Strategy{}
	int32Array        ScriptArray = int32Strategy{}
	float64Array      ScriptArray = float64Strategy{}
	objectArray       ScriptArray = objectStrategy{}
	holesInt32Array   ScriptArray = holesInt32Strategy{}
	holesFloat64Array ScriptArray = holesFloat64Strategy{}
	holesObjectArray  ScriptArray = holesObjectStrategy{}
	sparseArray       ScriptArray = sparseStrategy{}
	lazyRegexArray    ScriptArray = lazyRegexStrategy{}
)

// classify returns the narrowest element kind that holds v. Integral floats
// other than -0 are integers when they fit in int32.
func classify(v Value) elementKind {
	switch v.typ {
	case TypeIntegerNumber:
		return classifyInt(int64(v.AsInteger()))
	case TypeFloatNumber:
		f := v.AsFloat()
		if f != math.Trunc(f) || (f == 0 && math.Signbit(f)) {
			return elemFloat64
		}
		if f < math.MinInt32 || f > math.MaxInt32 {
			return elemFloat64
		}
		return classifyInt(int64(f))
	case TypeHole, TypeUnresolved:
		panic(internalError("internal marker %s stored as array element", v.typ))
	default:
		return elemObject
	}
}

func classifyInt(n int64) elementKind {
	if n >= math.MinInt8 && n <= math.MaxInt8 {
		return elemInt8
	}
	return elemInt32
}

// toInt32 extracts the integer of a value classified as int8 or int32.
func toInt32(v Value) int32 {
	if v.typ == TypeIntegerNumber {
		return v.AsInteger()
	}
	return int32(v.AsFloat())
}

func joinElement(a, b elementKind) elementKind {
	if a > b {
		return a
	}
	return b
}

func joinLayout(a, b layoutKind) layoutKind {
	if a > b {
		return a
	}
	return b
}

// strategyFor is the single ordered selection match from (element kind,
// layout) to a strategy.
func strategyFor(ek elementKind, lk layoutKind) ScriptArray {
	switch lk {
	case layoutSparse:
		return sparseArray
	case layoutHoles:
		switch ek {
		case elemNone, elemInt8, elemInt32:
			return holesInt32Array
		case elemFloat64:
			return holesFloat64Array
		default:
			return holesObjectArray
		}
	default:
		switch ek {
		case elemNone:
			return emptyArray
		case elemInt8:
			return int8Array
		case elemInt32:
			return int32Array
		case elemFloat64:
			return float64Array
		default:
			return objectArray
		}
	}
}

// widen returns the next strategy with the same layout and a wider element
// kind, or nil if s already holds every value.
func widen(s ScriptArray) ScriptArray {
	switch s.Kind() {
	case StrategyEmpty:
		return int8Array
	case StrategyInt8:
		return int32Array
	case StrategyInt32:
		return float64Array
	case StrategyFloat64:
		return objectArray
	case StrategyHolesInt32:
		return holesFloat64Array
	case StrategyHolesFloat64:
		return holesObjectArray
	}
	return nil
}

// successorFor picks the narrowest strategy that holds the current elements
// plus v written at index.
func (a *ArrayObject) successorFor(index int, v Value) ScriptArray {
	ek := joinElement(a.strategy.elementKind(), classify(v))
	lk := a.strategy.layout()
	if index > a.length {
		if index-a.length > MaxHoleGap {
			lk = layoutSparse
		} else {
			lk = joinLayout(lk, layoutHoles)
		}
	}
	if lk == layoutHoles && ek <= elemInt32 && toInt32(v) == holeInt32 {
		ek = elemFloat64
	}
	return strategyFor(ek, lk)
}

// transition migrates every element into target. The successor store is
// fully built before it replaces the current one.
func (a *ArrayObject) transition(target ScriptArray) {
	a.rebuild(target, a.length, func(i int) (int, bool) { return i, true })
}

// rebuild copies the present elements into a fresh store of target, moving
// each through remap, and swaps it in. Targets that cannot hold some element
// are widened until one can.
func (a *ArrayObject) rebuild(target ScriptArray, length int, remap func(int) (int, bool)) {
	for target != nil {
		next := &ArrayObject{strategy: target, store: target.newStore(length), length: length}
		ok := true
		a.strategy.each(a, func(i int, v Value) {
			if !ok {
				return
			}
			j, keep := remap(i)
			if !keep {
				return
			}
			if !target.accepts(next, j, v) {
				ok = false
				return
			}
			target.set(next, j, v)
		})
		if ok {
			a.strategy, a.store, a.length = next.strategy, next.store, next.length
			return
		}
		target = widen(target)
	}
	panic(internalError("no array strategy can hold the elements of a %s array", a.strategy.Kind()))
}
