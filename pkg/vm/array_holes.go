package vm

import (
	"maps"
	"math"
	"slices"
)

// Holey strategies keep a slice of length equal to the array length and mark
// missing elements with a sentinel. holes counts the sentinels.

// holeInt32 marks a hole in a holey int32 array. Storing it as a real value
// widens the array to float64.
const holeInt32 = math.MinInt32

// holeFloatBits is a NaN payload no arithmetic produces; real NaNs are
// stored as canonicalNaN.
const holeFloatBits = 0x7FF80000DEADBEEF

var holeFloat64 = math.Float64frombits(holeFloatBits)

func isHoleFloat(f float64) bool { return math.Float64bits(f) == holeFloatBits }

type holesInt32Store struct {
	elems []int32
	holes int
}

type holesFloat64Store struct {
	elems []float64
	holes int
}

type holesObjectStore struct {
	elems []Value
	holes int
}

// holeGrowthFits reports whether writing at index opens at most MaxHoleGap
// new holes.
func holeGrowthFits(n, index int) bool {
	return index < n || index-n <= MaxHoleGap
}

type holesInt32Strategy struct{}

func (holesInt32Strategy) Kind() StrategyKind       { return StrategyHolesInt32 }
func (holesInt32Strategy) elementKind() elementKind { return elemInt32 }
func (holesInt32Strategy) layout() layoutKind       { return layoutHoles }

func (holesInt32Strategy) has(a *ArrayObject, index int) bool {
	s := a.store.(*holesInt32Store)
	return index >= 0 && index < len(s.elems) && s.elems[index] != holeInt32
}

func (st holesInt32Strategy) get(a *ArrayObject, index int) Value {
	if !st.has(a, index) {
		panic(missingElement(StrategyHolesInt32, index))
	}
	return IntegerValue(a.store.(*holesInt32Store).elems[index])
}

func (holesInt32Strategy) accepts(a *ArrayObject, index int, v Value) bool {
	if classify(v) > elemInt32 || toInt32(v) == holeInt32 {
		return false
	}
	return holeGrowthFits(len(a.store.(*holesInt32Store).elems), index)
}

func (holesInt32Strategy) set(a *ArrayObject, index int, v Value) {
	s := a.store.(*holesInt32Store)
	for len(s.elems) <= index {
		s.elems = append(s.elems, holeInt32)
		s.holes++
	}
	if s.elems[index] == holeInt32 {
		s.holes--
	}
	s.elems[index] = toInt32(v)
	a.length = len(s.elems)
}

func (holesInt32Strategy) remove(a *ArrayObject, index int) bool {
	s := a.store.(*holesInt32Store)
	if s.elems[index] != holeInt32 {
		s.elems[index] = holeInt32
		s.holes++
	}
	return true
}

func (holesInt32Strategy) truncate(a *ArrayObject, n int) {
	s := a.store.(*holesInt32Store)
	for _, x := range s.elems[n:] {
		if x == holeInt32 {
			s.holes--
		}
	}
	s.elems = s.elems[:n]
}

func (holesInt32Strategy) grow(a *ArrayObject, n int) {
	s := a.store.(*holesInt32Store)
	for len(s.elems) < n {
		s.elems = append(s.elems, holeInt32)
		s.holes++
	}
}

func (holesInt32Strategy) each(a *ArrayObject, fn func(int, Value)) {
	for i, x := range a.store.(*holesInt32Store).elems {
		if x != holeInt32 {
			fn(i, IntegerValue(x))
		}
	}
}

func (holesInt32Strategy) newStore(length int) any {
	elems := make([]int32, length)
	for i := range elems {
		elems[i] = holeInt32
	}
	return &holesInt32Store{elems: elems, holes: length}
}

type holesFloat64Strategy struct{}

func (holesFloat64Strategy) Kind() StrategyKind       { return StrategyHolesFloat64 }
func (holesFloat64Strategy) elementKind() elementKind { return elemFloat64 }
func (holesFloat64Strategy) layout() layoutKind       { return layoutHoles }

func (holesFloat64Strategy) has(a *ArrayObject, index int) bool {
	s := a.store.(*holesFloat64Store)
	return index >= 0 && index < len(s.elems) && !isHoleFloat(s.elems[index])
}

func (st holesFloat64Strategy) get(a *ArrayObject, index int) Value {
	if !st.has(a, index) {
		panic(missingElement(StrategyHolesFloat64, index))
	}
	return NumberValue(a.store.(*holesFloat64Store).elems[index])
}

func (holesFloat64Strategy) accepts(a *ArrayObject, index int, v Value) bool {
	if classify(v) > elemFloat64 {
		return false
	}
	return holeGrowthFits(len(a.store.(*holesFloat64Store).elems), index)
}

func (holesFloat64Strategy) set(a *ArrayObject, index int, v Value) {
	s := a.store.(*holesFloat64Store)
	for len(s.elems) <= index {
		s.elems = append(s.elems, holeFloat64)
		s.holes++
	}
	if isHoleFloat(s.elems[index]) {
		s.holes--
	}
	s.elems[index] = canonicalFloat(v.ToFloat())
	a.length = len(s.elems)
}

func (holesFloat64Strategy) remove(a *ArrayObject, index int) bool {
	s := a.store.(*holesFloat64Store)
	if !isHoleFloat(s.elems[index]) {
		s.elems[index] = holeFloat64
		s.holes++
	}
	return true
}

func (holesFloat64Strategy) truncate(a *ArrayObject, n int) {
	s := a.store.(*holesFloat64Store)
	for _, x := range s.elems[n:] {
		if isHoleFloat(x) {
			s.holes--
		}
	}
	s.elems = s.elems[:n]
}

func (holesFloat64Strategy) grow(a *ArrayObject, n int) {
	s := a.store.(*holesFloat64Store)
	for len(s.elems) < n {
		s.elems = append(s.elems, holeFloat64)
		s.holes++
	}
}

func (holesFloat64Strategy) each(a *ArrayObject, fn func(int, Value)) {
	for i, x := range a.store.(*holesFloat64Store).elems {
		if !isHoleFloat(x) {
			fn(i, NumberValue(x))
		}
	}
}

func (holesFloat64Strategy) newStore(length int) any {
	elems := make([]float64, length)
	for i := range elems {
		elems[i] = holeFloat64
	}
	return &holesFloat64Store{elems: elems, holes: length}
}

type holesObjectStrategy struct{}

func (holesObjectStrategy) Kind() StrategyKind       { return StrategyHolesObject }
func (holesObjectStrategy) elementKind() elementKind { return elemObject }
func (holesObjectStrategy) layout() layoutKind       { return layoutHoles }

func (holesObjectStrategy) has(a *ArrayObject, index int) bool {
	s := a.store.(*holesObjectStore)
	return index >= 0 && index < len(s.elems) && !s.elems[index].IsHole()
}

func (st holesObjectStrategy) get(a *ArrayObject, index int) Value {
	if !st.has(a, index) {
		panic(missingElement(StrategyHolesObject, index))
	}
	return a.store.(*holesObjectStore).elems[index]
}

func (holesObjectStrategy) accepts(a *ArrayObject, index int, v Value) bool {
	classify(v)
	return holeGrowthFits(len(a.store.(*holesObjectStore).elems), index)
}

func (holesObjectStrategy) set(a *ArrayObject, index int, v Value) {
	s := a.store.(*holesObjectStore)
	for len(s.elems) <= index {
		s.elems = append(s.elems, Hole)
		s.holes++
	}
	if s.elems[index].IsHole() {
		s.holes--
	}
	s.elems[index] = v
	a.length = len(s.elems)
}

func (holesObjectStrategy) remove(a *ArrayObject, index int) bool {
	s := a.store.(*holesObjectStore)
	if !s.elems[index].IsHole() {
		s.elems[index] = Hole
		s.holes++
	}
	return true
}

func (holesObjectStrategy) truncate(a *ArrayObject, n int) {
	s := a.store.(*holesObjectStore)
	for _, v := range s.elems[n:] {
		if v.IsHole() {
			s.holes--
		}
	}
	clear(s.elems[n:])
	s.elems = s.elems[:n]
}

func (holesObjectStrategy) grow(a *ArrayObject, n int) {
	s := a.store.(*holesObjectStore)
	for len(s.elems) < n {
		s.elems = append(s.elems, Hole)
		s.holes++
	}
}

func (holesObjectStrategy) each(a *ArrayObject, fn func(int, Value)) {
	for i, v := range a.store.(*holesObjectStore).elems {
		if !v.IsHole() {
			fn(i, v)
		}
	}
}

func (holesObjectStrategy) newStore(length int) any {
	elems := make([]Value, length)
	for i := range elems {
		elems[i] = Hole
	}
	return &holesObjectStore{elems: elems, holes: length}
}

// sparseStrategy keeps present elements in a map; the length lives on the
// array. Arrays never leave it except by replacing their contents.
type sparseStrategy struct{}

func (sparseStrategy) Kind() StrategyKind       { return StrategySparse }
func (sparseStrategy) elementKind() elementKind { return elemObject }
func (sparseStrategy) layout() layoutKind       { return layoutSparse }

func (sparseStrategy) has(a *ArrayObject, index int) bool {
	_, ok := a.store.(map[int]Value)[index]
	return ok
}

func (sparseStrategy) get(a *ArrayObject, index int) Value {
	v, ok := a.store.(map[int]Value)[index]
	if !ok {
		panic(missingElement(StrategySparse, index))
	}
	return v
}

func (sparseStrategy) accepts(_ *ArrayObject, _ int, v Value) bool {
	classify(v)
	return true
}

func (sparseStrategy) set(a *ArrayObject, index int, v Value) {
	a.store.(map[int]Value)[index] = v
	if index >= a.length {
		a.length = index + 1
	}
}

func (sparseStrategy) remove(a *ArrayObject, index int) bool {
	delete(a.store.(map[int]Value), index)
	return true
}

func (sparseStrategy) truncate(a *ArrayObject, n int) {
	m := a.store.(map[int]Value)
	for i := range m {
		if i >= n {
			delete(m, i)
		}
	}
}

func (sparseStrategy) grow(*ArrayObject, int) {}

func (sparseStrategy) each(a *ArrayObject, fn func(int, Value)) {
	m := a.store.(map[int]Value)
	for _, i := range slices.Sorted(maps.Keys(m)) {
		fn(i, m[i])
	}
}

func (sparseStrategy) newStore(int) any { return make(map[int]Value) }
