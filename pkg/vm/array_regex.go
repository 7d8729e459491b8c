package vm

// regexResultStore backs an exec result whose capture groups are computed on
// first read. spans holds a (start, end) rune-offset pair per group, -1 for
// groups that did not participate.
type regexResultStore struct {
	input    []rune
	spans    []int
	groups   []Value
	computed int // number of group computations performed
}

func newRegexResultStore(input []rune, spans []int) *regexResultStore {
	groups := make([]Value, len(spans)/2)
	for i := range groups {
		groups[i] = Unresolved
	}
	return &regexResultStore{input: input, spans: spans, groups: groups}
}

// group returns capture i, computing and caching it on first use.
func (s *regexResultStore) group(i int) Value {
	if v := s.groups[i]; v.typ != TypeUnresolved {
		return v
	}
	start, end := s.spans[2*i], s.spans[2*i+1]
	v := Undefined
	if start >= 0 {
		v = NewString(string(s.input[start:end]))
	}
	s.groups[i] = v
	s.computed++
	return v
}

func (s *regexResultStore) unresolved() int {
	n := 0
	for _, v := range s.groups {
		if v.typ == TypeUnresolved {
			n++
		}
	}
	return n
}

// lazyRegexStrategy serves reads from a regexResultStore. It never accepts a
// write: ArrayObject materializes it into an Object store first.
type lazyRegexStrategy struct{}

func (lazyRegexStrategy) Kind() StrategyKind       { return StrategyLazyRegex }
func (lazyRegexStrategy) elementKind() elementKind { return elemObject }
func (lazyRegexStrategy) layout() layoutKind       { return layoutDense }

func (lazyRegexStrategy) has(a *ArrayObject, index int) bool {
	return index >= 0 && index < len(a.store.(*regexResultStore).groups)
}

func (st lazyRegexStrategy) get(a *ArrayObject, index int) Value {
	if !st.has(a, index) {
		panic(missingElement(StrategyLazyRegex, index))
	}
	return a.store.(*regexResultStore).group(index)
}

func (lazyRegexStrategy) accepts(*ArrayObject, int, Value) bool { return false }

func (lazyRegexStrategy) set(*ArrayObject, int, Value) {
	panic(internalError("write to unmaterialized regex result"))
}

func (lazyRegexStrategy) remove(*ArrayObject, int) bool { return false }

func (lazyRegexStrategy) truncate(*ArrayObject, int) {
	panic(internalError("truncate of unmaterialized regex result"))
}

func (lazyRegexStrategy) grow(*ArrayObject, int) {
	panic(internalError("grow of unmaterialized regex result"))
}

func (lazyRegexStrategy) each(a *ArrayObject, fn func(int, Value)) {
	s := a.store.(*regexResultStore)
	for i := range s.groups {
		fn(i, s.group(i))
	}
}

func (lazyRegexStrategy) newStore(int) any {
	panic(internalError("lazy regex results are only built from a match"))
}

// materialize computes every remaining group of a lazy regex result and moves
// the array to the Object strategy. It is a no-op for other strategies.
func (a *ArrayObject) materialize() {
	if a.strategy != lazyRegexArray {
		return
	}
	s := a.store.(*regexResultStore)
	elems := make([]Value, len(s.groups))
	for i := range s.groups {
		elems[i] = s.group(i)
	}
	a.strategy, a.store = objectArray, elems
}
