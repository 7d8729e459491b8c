package vm

import (
	"sync"
	"unsafe"
)

type FunctionKind uint8

const (
	FunctionKindNormal FunctionKind = iota
	FunctionKindMethod
	FunctionKindArrow
)

// NativeBody implements a function in Go.
type NativeBody func(callee *Closure, this Value, args []Value) (Value, error)

// FunctionData is the immutable description of one function literal, shared
// by every closure created from it.
type FunctionData struct {
	Name              string
	Arity             int
	NeedsParentFrame  bool
	PrototypeWritable bool
	Kind              FunctionKind
	Body              NativeBody

	cache     factoryCache
	saturated bool // saturation was already logged

	sharedOnce    sync.Once
	sharedFactory *FunctionFactory
}

// Frame is a materialized activation: the slots closed over by inner
// functions, chained to the enclosing frame.
type Frame struct {
	parent *Frame
	slots  []Value
}

// EmptyFrame is carried by closures that never read their parent frame.
var EmptyFrame = &Frame{}

func NewFrame(parent *Frame, size int) *Frame {
	slots := make([]Value, size)
	for i := range slots {
		slots[i] = Undefined
	}
	return &Frame{parent: parent, slots: slots}
}

func (f *Frame) Parent() *Frame         { return f.parent }
func (f *Frame) Len() int               { return len(f.slots) }
func (f *Frame) Slot(i int) Value       { return f.slots[i] }
func (f *Frame) SetSlot(i int, v Value) { f.slots[i] = v }

// Closure is a function value: its FunctionData, the frame it captured and
// its own properties.
type Closure struct {
	Object
	data  *FunctionData
	frame *Frame
	props *PlainObject
}

func (c *Closure) Data() *FunctionData { return c.data }
func (c *Closure) Frame() *Frame       { return c.frame }

// Properties returns the closure's own property store.
func (c *Closure) Properties() *PlainObject { return c.props }

// HomeObject returns the object the closure was defined on as a method.
func (c *Closure) HomeObject() (Value, bool) {
	return c.props.GetHidden(HomeObjectKey)
}

// Call invokes a native body.
func (c *Closure) Call(this Value, args []Value) (Value, error) {
	if c.data.Body == nil {
		return Undefined, typeError("%s is not callable from the host", c.describe())
	}
	return c.data.Body(c, this, args)
}

func (c *Closure) describe() string {
	if c.data.Name == "" {
		return "anonymous function"
	}
	return "function " + c.data.Name
}

// FunctionFactory creates closures of one FunctionData from a property
// layout template. A factory either captures the [[Prototype]] of its
// closures or takes it per instantiation.
type FunctionFactory struct {
	data      *FunctionData
	shape     *Shape
	prototype Value
	captured  bool
}

const (
	lengthSlot = iota
	nameSlot
	prototypeSlot
)

var (
	lengthKey    = NewStringKey("length")
	nameKey      = NewStringKey("name")
	prototypeKey = NewStringKey("prototype")
	ctorKey      = NewStringKey("constructor")
)

// newFunctionFactory builds the layout template on shapes. Only normal
// functions get a prototype property.
func newFunctionFactory(shapes *ShapeTree, data *FunctionData) *FunctionFactory {
	s := shapes.Root().
		AddProperty(lengthKey, FlagConfigurable).
		AddProperty(nameKey, FlagConfigurable)
	if data.Kind == FunctionKindNormal {
		flags := PropertyFlags(0)
		if data.PrototypeWritable {
			flags = FlagWritable
		}
		s = s.AddProperty(prototypeKey, flags)
	}
	return &FunctionFactory{data: data, shape: s, prototype: Undefined}
}

func newCapturingFactory(shapes *ShapeTree, data *FunctionData, proto Value) *FunctionFactory {
	f := newFunctionFactory(shapes, data)
	f.prototype, f.captured = proto, true
	return f
}

// Shape returns the template layout of the closures this factory creates.
func (f *FunctionFactory) Shape() *Shape { return f.shape }

// Instantiate creates a closure. proto is ignored by capturing factories.
func (f *FunctionFactory) Instantiate(frame *Frame, proto Value) *Closure {
	if f.captured {
		proto = f.prototype
	}
	if !f.data.NeedsParentFrame {
		frame = EmptyFrame
	} else if frame == nil {
		panic(internalError("function %q needs a parent frame", f.data.Name))
	}
	c := &Closure{data: f.data, frame: frame, props: NewObjectWithShape(f.shape, proto)}
	c.props.properties[lengthSlot] = IntegerOrNumber(f.data.Arity)
	c.props.properties[nameSlot] = NewString(f.data.Name)
	if f.data.Kind == FunctionKindNormal {
		protoObj := NewObjectWithShape(f.shape.Tree().Root(), DefaultObjectPrototype)
		protoObj.DefineOwnProperty(ctorKey, NewValueFromClosure(c), FlagsMethod)
		c.props.properties[prototypeSlot] = NewValueFromPlainObject(protoObj)
	}
	return c
}

// FactoryStats counts how closures were produced by a realm.
type FactoryStats struct {
	Hits         int // single-context, reused a cached factory
	Misses       int // single-context, built and cached a factory
	Uncached     int // single-context, cache full, built a throwaway factory
	SharedBuilds int // multi-context, built the shared factory
	SharedUses   int // multi-context, instantiated from the shared factory
}

type factoryEntry struct {
	proto   unsafe.Pointer
	factory *FunctionFactory
}

// factoryCache is the bounded single-context cache of factories keyed by
// prototype identity. It never evicts.
type factoryCache struct {
	entries []factoryEntry
}

func (fc *factoryCache) lookup(proto Value) *FunctionFactory {
	for _, e := range fc.entries {
		if e.proto == proto.identity() {
			return e.factory
		}
	}
	return nil
}

func (fc *factoryCache) add(proto Value, f *FunctionFactory) {
	fc.entries = append(fc.entries, factoryEntry{proto: proto.identity(), factory: f})
}

func (fc *factoryCache) len() int { return len(fc.entries) }
