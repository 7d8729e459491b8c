package vm

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Realm is one execution context: its intrinsic prototypes, its options and
// the shape tree it allocates layouts from. A realm is used by one goroutine
// at a time; realms may share a ShapeTree and FunctionData.
type Realm struct {
	id     int
	config Config
	logger logrus.FieldLogger
	shapes *ShapeTree

	ObjectPrototype   Value
	FunctionPrototype Value
	ArrayPrototype    Value
	RegExpPrototype   Value

	stats FactoryStats
}

// NewRealm creates a realm with fresh intrinsic prototypes.
func NewRealm(id int, config Config, shapes *ShapeTree, logger logrus.FieldLogger) *Realm {
	if shapes == nil {
		shapes = DefaultShapes
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	r := &Realm{
		id:     id,
		config: config,
		logger: logger.WithField("realm", id),
		shapes: shapes,
	}
	objectProto := NewObjectWithShape(shapes.Root(), Null)
	r.ObjectPrototype = NewValueFromPlainObject(objectProto)
	r.FunctionPrototype = NewValueFromPlainObject(NewObjectWithShape(shapes.Root(), r.ObjectPrototype))
	r.ArrayPrototype = NewValueFromPlainObject(NewObjectWithShape(shapes.Root(), r.ObjectPrototype))
	r.RegExpPrototype = NewValueFromPlainObject(NewObjectWithShape(shapes.Root(), r.ObjectPrototype))
	return r
}

func (r *Realm) ID() int                    { return r.id }
func (r *Realm) Config() Config             { return r.config }
func (r *Realm) Shapes() *ShapeTree         { return r.shapes }
func (r *Realm) Logger() logrus.FieldLogger { return r.logger }

// FactoryStats returns the closure factory counters of this realm.
func (r *Realm) FactoryStats() FactoryStats { return r.stats }

func (r *Realm) singleContext() bool {
	return r.config.SingleContext.Bool
}

// NewObject creates an empty object inheriting from the realm's
// Object.prototype.
func (r *Realm) NewObject() Value {
	return NewValueFromPlainObject(NewObjectWithShape(r.shapes.Root(), r.ObjectPrototype))
}

// NewArray creates an array of values inheriting from the realm's
// Array.prototype.
func (r *Realm) NewArray(values ...Value) Value {
	arr := newArrayObject(r.ArrayPrototype)
	arr.fill(values)
	return NewValueFromArray(arr)
}

// NewRegExp compiles a RegExp with the realm's match timeout.
func (r *Realm) NewRegExp(pattern, flags string) (Value, error) {
	re, err := compileRegExp(pattern, flags, r.config.regexpTimeout())
	if err != nil {
		return Undefined, err
	}
	re.props = NewObjectWithShape(r.shapes.Root(), r.RegExpPrototype)
	re.resultProto = r.ArrayPrototype
	return RegExpValue(re), nil
}

// CreateFunction creates a closure of data whose [[Prototype]] is
// functionPrototype.
func (r *Realm) CreateFunction(data *FunctionData, env *Frame, functionPrototype Value) (Value, error) {
	if !functionPrototype.IsObject() {
		return Undefined, typeError("function prototype must be an object, got %s", functionPrototype.TypeName())
	}
	return NewValueFromClosure(r.instantiate(data, env, functionPrototype)), nil
}

// CreateMethod creates a method closure whose home object is homeObject.
// Both homeObject and functionPrototype must be objects; nothing is
// allocated or mutated when they are not.
func (r *Realm) CreateMethod(data *FunctionData, env *Frame, homeObject, functionPrototype Value) (Value, error) {
	if !homeObject.IsObject() {
		return Undefined, typeError("method home object must be an object, got %s", homeObject.TypeName())
	}
	if !functionPrototype.IsObject() {
		return Undefined, typeError("method prototype must be an object, got %s", functionPrototype.TypeName())
	}
	c := r.instantiate(data, env, functionPrototype)
	c.props.SetHidden(HomeObjectKey, homeObject)
	return NewValueFromClosure(c), nil
}

// DefineMethod creates a method with CreateMethod and installs it on
// homeObject under name as a non-enumerable property.
func (r *Realm) DefineMethod(homeObject Value, name string, data *FunctionData, env *Frame, functionPrototype Value) (Value, error) {
	if !homeObject.IsObject() {
		return Undefined, typeError("cannot define method '%s' on %s", name, homeObject.TypeName())
	}
	holder := homeObject.asPropertyHolder()
	if !holder.IsExtensible() && !holder.HasOwn(name) {
		return Undefined, typeError("cannot define method '%s' on a non-extensible object", name)
	}
	if homeObject.IsArray() && homeObject.AsArray().IsFrozen() {
		return Undefined, typeError("cannot define method '%s' on a frozen array", name)
	}
	method, err := r.CreateMethod(data, env, homeObject, functionPrototype)
	if err != nil {
		return Undefined, err
	}
	if !holder.DefineOwnProperty(NewStringKey(name), method, FlagsMethod) {
		return Undefined, typeError("cannot redefine property '%s'", name)
	}
	return method, nil
}

// SuperGet reads name from the prototype of the method's home object.
func (r *Realm) SuperGet(method Value, name string) (Value, error) {
	if !method.IsClosure() {
		return Undefined, typeError("'super' outside of a method")
	}
	home, ok := method.AsClosure().HomeObject()
	if !ok {
		return Undefined, typeError("'super' keyword unexpected in %s", method.AsClosure().describe())
	}
	proto := home.asPropertyHolder().GetPrototype()
	if !proto.IsObject() {
		return Undefined, typeError("cannot read property '%s' of %s", name, proto.TypeName())
	}
	v, _ := lookupPrototypeChain(proto, NewStringKey(name))
	return v, nil
}

// instantiate applies the factory policy.
func (r *Realm) instantiate(data *FunctionData, env *Frame, proto Value) *Closure {
	if !r.singleContext() {
		data.sharedOnce.Do(func() {
			data.sharedFactory = newFunctionFactory(r.shapes, data)
			r.stats.SharedBuilds++
			r.logger.WithField("function", data.Name).Debug("Built shared function factory")
		})
		r.stats.SharedUses++
		return data.sharedFactory.Instantiate(env, proto)
	}

	if f := data.cache.lookup(proto); f != nil {
		r.stats.Hits++
		return f.Instantiate(env, proto)
	}
	f := newCapturingFactory(r.shapes, data, proto)
	if data.cache.len() < r.config.factoryCacheSize() {
		data.cache.add(proto, f)
		r.stats.Misses++
		return f.Instantiate(env, proto)
	}
	r.stats.Uncached++
	if !data.saturated {
		data.saturated = true
		r.logger.WithFields(logrus.Fields{
			"function": data.Name,
			"capacity": r.config.factoryCacheSize(),
		}).Debug("Function factory cache full, building uncached factories")
	}
	return f.Instantiate(env, proto)
}
