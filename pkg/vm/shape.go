package vm

import (
	"fmt"
	"sync"
)

type KeyKind uint8

const (
	KeyKindString KeyKind = iota
	KeyKindSymbol
	KeyKindHidden // engine-internal slot, never visible to script code
)

// PropertyKey identifies a property: a string name, a symbol, or a hidden
// engine slot. Keys are comparable and can be used as map keys.
type PropertyKey struct {
	kind   KeyKind
	name   string        // for string and hidden keys
	symbol *SymbolObject // for symbol keys
}

// NewStringKey constructs a PropertyKey for string-named properties.
func NewStringKey(name string) PropertyKey {
	return PropertyKey{kind: KeyKindString, name: name}
}

// NewSymbolKey constructs a PropertyKey for a symbol value.
func NewSymbolKey(sym Value) PropertyKey {
	return PropertyKey{kind: KeyKindSymbol, symbol: sym.AsSymbolObject()}
}

// NewHiddenKey constructs a key for an engine-internal slot. Hidden keys with
// the same name are the same key.
func NewHiddenKey(name string) PropertyKey {
	return PropertyKey{kind: KeyKindHidden, name: name}
}

// HomeObjectKey is the hidden slot linking a method to the object it was
// defined on.
var HomeObjectKey = NewHiddenKey("HomeObject")

func (k PropertyKey) Kind() KeyKind  { return k.kind }
func (k PropertyKey) Name() string   { return k.name }
func (k PropertyKey) IsHidden() bool { return k.kind == KeyKindHidden }

func (k PropertyKey) String() string {
	switch k.kind {
	case KeyKindString:
		return k.name
	case KeyKindSymbol:
		return fmt.Sprintf("Symbol(%s)", k.symbol.value)
	case KeyKindHidden:
		return "<hidden " + k.name + ">"
	default:
		return "<unknown-key>"
	}
}

// PropertyFlags are the attribute bits of a data property.
type PropertyFlags uint8

const (
	FlagWritable PropertyFlags = 1 << iota
	FlagEnumerable
	FlagConfigurable

	// FlagsDefault are the attributes of a property created by assignment.
	FlagsDefault = FlagWritable | FlagEnumerable | FlagConfigurable
	// FlagsMethod are the attributes of builtin and class methods.
	FlagsMethod = FlagWritable | FlagConfigurable
	// FlagsHidden are the attributes of engine-internal slots.
	FlagsHidden PropertyFlags = 0
)

func (f PropertyFlags) Writable() bool     { return f&FlagWritable != 0 }
func (f PropertyFlags) Enumerable() bool   { return f&FlagEnumerable != 0 }
func (f PropertyFlags) Configurable() bool { return f&FlagConfigurable != 0 }

type Field struct {
	Key    PropertyKey
	Offset int
	Flags  PropertyFlags
}

// ShapeID addresses a shape inside its ShapeTree.
type ShapeID uint32

// RootShapeID is the empty shape every tree starts with.
const RootShapeID ShapeID = 0

// fieldIndexThreshold is the field count above which a shape builds a key
// index instead of scanning its fields.
const fieldIndexThreshold = 8

// Shape is an immutable property layout. Two objects with the same Shape have
// layout-compatible storage.
type Shape struct {
	id     ShapeID
	parent ShapeID
	tree   *ShapeTree
	fields []Field
	index  map[PropertyKey]int // nil for small shapes
}

func (s *Shape) ID() ShapeID      { return s.id }
func (s *Shape) Tree() *ShapeTree { return s.tree }
func (s *Shape) Len() int         { return len(s.fields) }

// Parent returns the shape this one was derived from, or nil for the root.
func (s *Shape) Parent() *Shape {
	if s.id == RootShapeID {
		return nil
	}
	return s.tree.Shape(s.parent)
}

// Fields returns a copy of the field table in insertion order.
func (s *Shape) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Lookup returns the field for key.
func (s *Shape) Lookup(key PropertyKey) (Field, bool) {
	if s.index != nil {
		i, ok := s.index[key]
		if !ok {
			return Field{}, false
		}
		return s.fields[i], true
	}
	for _, f := range s.fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// AddProperty returns the shape reached by adding key with flags.
func (s *Shape) AddProperty(key PropertyKey, flags PropertyFlags) *Shape {
	return s.tree.AddProperty(s, key, flags)
}

type transitionKey struct {
	parent ShapeID
	key    PropertyKey
	flags  PropertyFlags
}

// ShapeTree is an arena of shapes plus the interning table of property
// additions. Shapes are published read-only; the table is safe for concurrent
// use so templates can be shared between contexts.
type ShapeTree struct {
	mu          sync.RWMutex
	shapes      []*Shape
	transitions map[transitionKey]ShapeID
}

// NewShapeTree creates a tree holding only the root shape.
func NewShapeTree() *ShapeTree {
	t := &ShapeTree{transitions: make(map[transitionKey]ShapeID)}
	t.shapes = append(t.shapes, &Shape{id: RootShapeID, parent: RootShapeID, tree: t})
	return t
}

// DefaultShapes is the process-wide tree used by NewObject.
var DefaultShapes = NewShapeTree()

// Root returns the empty shape.
func (t *ShapeTree) Root() *Shape {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.shapes[RootShapeID]
}

// Shape returns the shape with the given id.
func (t *ShapeTree) Shape(id ShapeID) *Shape {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.shapes[id]
}

// Len returns the number of shapes in the arena.
func (t *ShapeTree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.shapes)
}

// AddProperty returns the child of s reached by the (key, flags) edge,
// creating it on first use. Repeated calls return the same *Shape. Adding a
// key the shape already has is an invariant violation.
func (t *ShapeTree) AddProperty(s *Shape, key PropertyKey, flags PropertyFlags) *Shape {
	if s.tree != t {
		panic(internalError("shape %d belongs to a different tree", s.id))
	}
	tk := transitionKey{parent: s.id, key: key, flags: flags}

	t.mu.RLock()
	id, ok := t.transitions[tk]
	if ok {
		next := t.shapes[id]
		t.mu.RUnlock()
		return next
	}
	t.mu.RUnlock()

	if _, exists := s.Lookup(key); exists {
		panic(internalError("shape %d already has property %s", s.id, key))
	}
	fields := make([]Field, len(s.fields)+1)
	copy(fields, s.fields)
	fields[len(s.fields)] = Field{Key: key, Offset: len(s.fields), Flags: flags}

	t.mu.Lock()
	defer t.mu.Unlock()
	if id, exists := t.transitions[tk]; exists {
		return t.shapes[id]
	}
	next := &Shape{id: ShapeID(len(t.shapes)), parent: s.id, tree: t, fields: fields}
	if len(fields) > fieldIndexThreshold {
		next.index = make(map[PropertyKey]int, len(fields))
		for i, f := range fields {
			next.index[f.Key] = i
		}
	}
	t.shapes = append(t.shapes, next)
	t.transitions[tk] = next.id
	return next
}

// Build replays fields (in order) from the root and returns the resulting
// shape.
func (t *ShapeTree) Build(fields []Field) *Shape {
	s := t.Root()
	for _, f := range fields {
		s = t.AddProperty(s, f.Key, f.Flags)
	}
	return s
}

// WithFlags returns the shape with the same history as s except that key
// carries flags.
func (t *ShapeTree) WithFlags(s *Shape, key PropertyKey, flags PropertyFlags) *Shape {
	fields := s.Fields()
	for i := range fields {
		if fields[i].Key == key {
			fields[i].Flags = flags
			return t.Build(fields)
		}
	}
	panic(internalError("shape %d has no property %s", s.id, key))
}

// Without returns the shape with the same history as s minus key. Offsets of
// the remaining fields are compacted.
func (t *ShapeTree) Without(s *Shape, key PropertyKey) *Shape {
	fields := make([]Field, 0, len(s.fields))
	found := false
	for _, f := range s.fields {
		if f.Key == key {
			found = true
			continue
		}
		fields = append(fields, f)
	}
	if !found {
		panic(internalError("shape %d has no property %s", s.id, key))
	}
	return t.Build(fields)
}
