package vm

import (
	"testing"
)

func TestPlainObjectBasic(t *testing.T) {
	poVal := NewObject(DefaultObjectPrototype)
	po := poVal.AsPlainObject()
	// No properties initially
	if po.HasOwn("foo") {
		t.Errorf("expected HasOwn(\"foo\") to be false on new object")
	}
	if v, ok := po.GetOwn("foo"); ok {
		t.Errorf("expected GetOwn(\"foo\") ok=false, got ok=true, v=%v", v.Inspect())
	}
	// Define a property
	if !po.SetOwn("foo", IntegerValue(42)) {
		t.Fatalf("expected SetOwn on extensible object to succeed")
	}
	v, ok := po.GetOwn("foo")
	if !ok {
		t.Fatalf("expected GetOwn(\"foo\") ok=true after SetOwn")
	}
	if v.AsInteger() != 42 {
		t.Errorf("expected GetOwn to return 42, got %d", v.AsInteger())
	}
	// Overwrite existing property
	po.SetOwn("foo", IntegerValue(7))
	v2, ok2 := po.GetOwn("foo")
	if !ok2 || v2.AsInteger() != 7 {
		t.Errorf("expected overwritten value 7, got %s (ok=%v)", v2.Inspect(), ok2)
	}
	keys := po.OwnKeys()
	if len(keys) != 1 || keys[0] != "foo" {
		t.Errorf("OwnKeys mismatch, expected [foo], got %v", keys)
	}
}

func TestPlainObjectShapeTransitions(t *testing.T) {
	po := NewObject(DefaultObjectPrototype).AsPlainObject()
	root := po.shape
	// first definition creates new shape
	po.SetOwn("a", IntegerValue(1))
	s1 := po.shape
	if s1 == root {
		t.Errorf("expected new shape after first property, got same shape")
	}
	// overwriting keeps the shape
	po.SetOwn("a", IntegerValue(2))
	if po.shape != s1 {
		t.Errorf("expected same shape on overwrite, got different shapes")
	}
	po.SetOwn("b", IntegerValue(3))
	if po.shape == s1 {
		t.Errorf("expected new shape after adding second property, got same shape")
	}
	keys := po.OwnKeys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("OwnKeys order mismatch, expected [a b], got %v", keys)
	}
}

func TestPlainObjectSharedShapes(t *testing.T) {
	a := NewObject(DefaultObjectPrototype).AsPlainObject()
	b := NewObject(DefaultObjectPrototype).AsPlainObject()
	a.SetOwn("x", IntegerValue(1))
	a.SetOwn("y", IntegerValue(2))
	b.SetOwn("x", NewString("other"))
	b.SetOwn("y", Null)
	if a.shape != b.shape {
		t.Errorf("expected objects with the same insertion history to share a shape")
	}
	c := NewObject(DefaultObjectPrototype).AsPlainObject()
	c.SetOwn("y", IntegerValue(2))
	c.SetOwn("x", IntegerValue(1))
	if c.shape == a.shape {
		t.Errorf("expected a different insertion order to produce a different shape")
	}
}

func TestPlainObjectPrototypeChain(t *testing.T) {
	proto := NewObject(DefaultObjectPrototype)
	proto.AsPlainObject().SetOwn("greet", NewString("hello"))
	child := NewObject(proto).AsPlainObject()

	if child.HasOwn("greet") {
		t.Errorf("expected inherited property not to be own")
	}
	v, ok := child.Get("greet")
	if !ok || v.AsString() != "hello" {
		t.Errorf("expected Get to find inherited 'greet', got %s (ok=%v)", v.Inspect(), ok)
	}
	// shadowing
	child.SetOwn("greet", NewString("hi"))
	v, _ = child.Get("greet")
	if v.AsString() != "hi" {
		t.Errorf("expected own property to shadow the prototype, got %s", v.Inspect())
	}
	if !child.SetPrototype(Null) {
		t.Errorf("expected SetPrototype(null) to succeed")
	}
	if proto.AsPlainObject().SetPrototype(NewValueFromPlainObject(child)) != true {
		t.Errorf("expected SetPrototype to succeed when no cycle is formed")
	}
	if child.SetPrototype(proto) {
		t.Errorf("expected SetPrototype to reject a prototype cycle")
	}
}

func TestPlainObjectDelete(t *testing.T) {
	po := NewObject(DefaultObjectPrototype).AsPlainObject()
	po.SetOwn("a", IntegerValue(1))
	po.SetOwn("b", IntegerValue(2))
	po.SetOwn("c", IntegerValue(3))

	if !po.DeleteOwn("b") {
		t.Fatalf("expected delete of configurable property to succeed")
	}
	if po.HasOwn("b") {
		t.Errorf("expected 'b' to be gone after delete")
	}
	keys := po.OwnKeys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "c" {
		t.Errorf("expected [a c] after delete, got %v", keys)
	}
	if v, _ := po.GetOwn("c"); v.AsInteger() != 3 {
		t.Errorf("expected 'c' to keep its value after storage remap, got %s", v.Inspect())
	}

	other := NewObject(DefaultObjectPrototype).AsPlainObject()
	other.SetOwn("a", IntegerValue(9))
	other.SetOwn("c", IntegerValue(9))
	if other.shape != po.shape {
		t.Errorf("expected deletion to rebuild an interned shape equal to the direct history")
	}
	if !po.DeleteOwn("missing") {
		t.Errorf("expected deleting a missing property to succeed")
	}
}

func TestPlainObjectDefineOwnProperty(t *testing.T) {
	po := NewObject(DefaultObjectPrototype).AsPlainObject()
	key := NewStringKey("fixed")
	if !po.DefineOwnProperty(key, IntegerValue(1), FlagEnumerable) {
		t.Fatalf("expected define on extensible object to succeed")
	}
	if po.SetOwn("fixed", IntegerValue(2)) {
		t.Errorf("expected write to non-writable property to fail")
	}
	if po.DeleteOwn("fixed") {
		t.Errorf("expected delete of non-configurable property to fail")
	}
	if po.DefineOwnProperty(key, IntegerValue(1), FlagsDefault) {
		t.Errorf("expected redefining a non-configurable property as configurable to fail")
	}
	if !po.DefineOwnProperty(key, IntegerValue(1), FlagEnumerable) {
		t.Errorf("expected an identical redefinition to succeed")
	}
	v, flags, ok := po.GetOwnDescriptor(key)
	if !ok || v.AsInteger() != 1 || flags != FlagEnumerable {
		t.Errorf("unexpected descriptor: %s flags=%d ok=%v", v.Inspect(), flags, ok)
	}

	po.DefineOwnProperty(NewStringKey("hidden"), True, FlagsMethod)
	keys := po.OwnKeys()
	if len(keys) != 1 || keys[0] != "fixed" {
		t.Errorf("expected non-enumerable property to be excluded from OwnKeys, got %v", keys)
	}
	names := po.OwnPropertyNames()
	if len(names) != 2 {
		t.Errorf("expected OwnPropertyNames to include non-enumerable properties, got %v", names)
	}
}

func TestPlainObjectPreventExtensions(t *testing.T) {
	po := NewObject(DefaultObjectPrototype).AsPlainObject()
	po.SetOwn("a", IntegerValue(1))
	po.PreventExtensions()
	if po.IsExtensible() {
		t.Errorf("expected object to be non-extensible")
	}
	if po.SetOwn("b", IntegerValue(2)) {
		t.Errorf("expected adding a property to a non-extensible object to fail")
	}
	if !po.SetOwn("a", IntegerValue(3)) {
		t.Errorf("expected existing writable property to stay writable")
	}
	// Hidden slots are engine-owned and ignore extensibility.
	po.SetHidden(HomeObjectKey, True)
	if v, ok := po.GetHidden(HomeObjectKey); !ok || !v.AsBoolean() {
		t.Errorf("expected hidden slot to be set on non-extensible object")
	}
}

func TestPlainObjectSymbolKeys(t *testing.T) {
	po := NewObject(DefaultObjectPrototype).AsPlainObject()
	sym := NewSymbol("tag")
	po.DefineOwnProperty(NewSymbolKey(sym), NewString("v"), FlagsDefault)
	if len(po.OwnKeys()) != 0 {
		t.Errorf("expected symbol keys to be excluded from OwnKeys")
	}
	syms := po.OwnSymbolKeys()
	if len(syms) != 1 || !syms[0].Is(sym) {
		t.Errorf("expected OwnSymbolKeys to return the symbol")
	}
	if v, ok := po.GetOwnByKey(NewSymbolKey(sym)); !ok || v.AsString() != "v" {
		t.Errorf("expected lookup by symbol key to succeed")
	}
}
