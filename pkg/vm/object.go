package vm

import (
	"unsafe"
)

// PlainObject is a shape-backed object: the shape maps keys to offsets into
// properties.
type PlainObject struct {
	Object
	shape      *Shape
	prototype  Value
	properties []Value
	extensible bool
}

// DefaultObjectPrototype is the shared prototype of objects created by
// NewObject without an explicit prototype.
var DefaultObjectPrototype Value

func init() {
	protoObj := &PlainObject{prototype: Null, shape: DefaultShapes.Root(), extensible: true}
	DefaultObjectPrototype = Value{typ: TypeObject, obj: unsafe.Pointer(protoObj)}
}

// NewObject creates an empty object on DefaultShapes. A non-object proto
// selects DefaultObjectPrototype; pass Null explicitly through
// NewObjectWithShape for a prototype-less object.
func NewObject(proto Value) Value {
	prototype := DefaultObjectPrototype
	if proto.IsObject() {
		prototype = proto
	}
	return NewValueFromPlainObject(NewObjectWithShape(DefaultShapes.Root(), prototype))
}

// NewObjectWithShape instantiates an object from a shape template. Slots are
// initialised to Undefined.
func NewObjectWithShape(shape *Shape, proto Value) *PlainObject {
	props := make([]Value, shape.Len())
	for i := range props {
		props[i] = Undefined
	}
	return &PlainObject{shape: shape, prototype: proto, properties: props, extensible: true}
}

// Shape returns the object's current shape.
func (o *PlainObject) Shape() *Shape { return o.shape }

// GetOwn looks up a visible own property by name.
func (o *PlainObject) GetOwn(name string) (Value, bool) {
	return o.GetOwnByKey(NewStringKey(name))
}

// GetOwnByKey looks up a visible own property. Hidden keys are never found.
func (o *PlainObject) GetOwnByKey(key PropertyKey) (Value, bool) {
	if key.IsHidden() {
		return Undefined, false
	}
	f, ok := o.shape.Lookup(key)
	if !ok {
		return Undefined, false
	}
	return o.properties[f.Offset], true
}

// GetOwnDescriptor returns the value and flags of a visible own property.
func (o *PlainObject) GetOwnDescriptor(key PropertyKey) (Value, PropertyFlags, bool) {
	if key.IsHidden() {
		return Undefined, 0, false
	}
	f, ok := o.shape.Lookup(key)
	if !ok {
		return Undefined, 0, false
	}
	return o.properties[f.Offset], f.Flags, true
}

// HasOwn reports whether a visible own property with the given name exists.
func (o *PlainObject) HasOwn(name string) bool {
	return o.HasOwnByKey(NewStringKey(name))
}

func (o *PlainObject) HasOwnByKey(key PropertyKey) bool {
	if key.IsHidden() {
		return false
	}
	_, ok := o.shape.Lookup(key)
	return ok
}

// SetOwn assigns a property with ordinary assignment semantics: an existing
// property is updated if writable, a new one is added (writable, enumerable,
// configurable) if the object is extensible. It reports whether the write
// took effect.
func (o *PlainObject) SetOwn(name string, v Value) bool {
	return o.SetOwnByKey(NewStringKey(name), v)
}

func (o *PlainObject) SetOwnByKey(key PropertyKey, v Value) bool {
	if key.IsHidden() {
		return false
	}
	if f, ok := o.shape.Lookup(key); ok {
		if !f.Flags.Writable() {
			return false
		}
		o.properties[f.Offset] = v
		return true
	}
	if !o.extensible {
		return false
	}
	o.addProperty(key, v, FlagsDefault)
	return true
}

// addProperty transitions to the child shape and appends the slot.
func (o *PlainObject) addProperty(key PropertyKey, v Value, flags PropertyFlags) {
	o.shape = o.shape.AddProperty(key, flags)
	o.properties = append(o.properties, v)
}

// DefineOwnProperty defines or redefines a visible property with explicit
// flags. Redefining a non-configurable property may only narrow writable and
// keep the value unless writable. It reports success.
func (o *PlainObject) DefineOwnProperty(key PropertyKey, v Value, flags PropertyFlags) bool {
	if key.IsHidden() {
		return false
	}
	f, ok := o.shape.Lookup(key)
	if !ok {
		if !o.extensible {
			return false
		}
		o.addProperty(key, v, flags)
		return true
	}
	if !f.Flags.Configurable() {
		if flags.Configurable() || flags.Enumerable() != f.Flags.Enumerable() {
			return false
		}
		if !f.Flags.Writable() {
			if flags.Writable() || !v.Is(o.properties[f.Offset]) {
				return false
			}
		}
	}
	if f.Flags != flags {
		o.shape = o.shape.Tree().WithFlags(o.shape, key, flags)
	}
	o.properties[f.Offset] = v
	return true
}

// DeleteOwn removes a visible own property if it is configurable. Deleting a
// missing property succeeds. Hidden slots cannot be deleted this way.
func (o *PlainObject) DeleteOwn(name string) bool {
	return o.DeleteOwnByKey(NewStringKey(name))
}

func (o *PlainObject) DeleteOwnByKey(key PropertyKey) bool {
	if key.IsHidden() {
		return false
	}
	f, ok := o.shape.Lookup(key)
	if !ok {
		return true
	}
	if !f.Flags.Configurable() {
		return false
	}
	o.remap(o.shape.Tree().Without(o.shape, key))
	return true
}

// remap moves every slot to its offset in next, which must contain a subset
// of the current keys.
func (o *PlainObject) remap(next *Shape) {
	props := make([]Value, next.Len())
	for _, f := range next.fields {
		old, _ := o.shape.Lookup(f.Key)
		props[f.Offset] = o.properties[old.Offset]
	}
	o.shape = next
	o.properties = props
}

// GetHidden reads an engine-internal slot.
func (o *PlainObject) GetHidden(key PropertyKey) (Value, bool) {
	if !key.IsHidden() {
		panic(internalError("GetHidden called with visible key %s", key))
	}
	f, ok := o.shape.Lookup(key)
	if !ok {
		return Undefined, false
	}
	return o.properties[f.Offset], true
}

// SetHidden writes an engine-internal slot, adding it on first use. Hidden
// slots ignore extensibility.
func (o *PlainObject) SetHidden(key PropertyKey, v Value) {
	if !key.IsHidden() {
		panic(internalError("SetHidden called with visible key %s", key))
	}
	if f, ok := o.shape.Lookup(key); ok {
		o.properties[f.Offset] = v
		return
	}
	o.addProperty(key, v, FlagsHidden)
}

// OwnKeys returns the enumerable string keys in insertion order.
func (o *PlainObject) OwnKeys() []string {
	keys := make([]string, 0, len(o.shape.fields))
	for _, f := range o.shape.fields {
		if f.Key.kind == KeyKindString && f.Flags.Enumerable() {
			keys = append(keys, f.Key.name)
		}
	}
	return keys
}

// OwnPropertyNames returns all visible string keys, enumerable or not, in
// insertion order.
func (o *PlainObject) OwnPropertyNames() []string {
	keys := make([]string, 0, len(o.shape.fields))
	for _, f := range o.shape.fields {
		if f.Key.kind == KeyKindString {
			keys = append(keys, f.Key.name)
		}
	}
	return keys
}

// OwnSymbolKeys returns the symbol keys in insertion order.
func (o *PlainObject) OwnSymbolKeys() []Value {
	var symbols []Value
	for _, f := range o.shape.fields {
		if f.Key.kind == KeyKindSymbol {
			symbols = append(symbols, Value{typ: TypeSymbol, obj: unsafe.Pointer(f.Key.symbol)})
		}
	}
	return symbols
}

// Get looks up a property by name, walking the prototype chain if necessary.
func (o *PlainObject) Get(name string) (Value, bool) {
	return o.GetByKey(NewStringKey(name))
}

func (o *PlainObject) GetByKey(key PropertyKey) (Value, bool) {
	if value, exists := o.GetOwnByKey(key); exists {
		return value, true
	}
	return lookupPrototypeChain(o.prototype, key)
}

// lookupPrototypeChain walks proto and its ancestors for key.
func lookupPrototypeChain(proto Value, key PropertyKey) (Value, bool) {
	for current := proto; current.IsObject(); {
		holder := current.asPropertyHolder()
		if holder == nil {
			break
		}
		if value, exists := holder.GetOwnByKey(key); exists {
			return value, true
		}
		current = holder.prototype
	}
	return Undefined, false
}

// Has reports whether a property with the given name exists (own or inherited).
func (o *PlainObject) Has(name string) bool {
	_, exists := o.Get(name)
	return exists
}

func (o *PlainObject) GetPrototype() Value {
	return o.prototype
}

// SetPrototype sets the object's prototype. It fails on non-extensible objects
// and when proto would create a cycle.
func (o *PlainObject) SetPrototype(proto Value) bool {
	if proto.Is(o.prototype) {
		return true
	}
	if !o.extensible {
		return false
	}
	if !proto.IsObject() && !proto.IsNull() {
		return false
	}
	for p := proto; p.IsObject(); {
		holder := p.asPropertyHolder()
		if holder == o {
			return false
		}
		p = holder.prototype
	}
	o.prototype = proto
	return true
}

func (o *PlainObject) IsExtensible() bool {
	return o.extensible
}

// PreventExtensions is irreversible.
func (o *PlainObject) PreventExtensions() {
	o.extensible = false
}

// GetProperty reads a named property of any object kind, walking the
// prototype chain. Arrays report their length.
func GetProperty(obj Value, name string) (Value, bool) {
	if obj.IsArray() && name == "length" {
		return IntegerOrNumber(obj.AsArray().Length()), true
	}
	holder := obj.asPropertyHolder()
	if holder == nil {
		return Undefined, false
	}
	return holder.Get(name)
}
