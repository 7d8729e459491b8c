package vm

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unsafe"
)

// cleanExponentialFormat removes leading zeros from exponent to match JS format
// e.g., "1e-07" -> "1e-7", "1e+25" -> "1e+25"
func cleanExponentialFormat(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == 'e' || s[i] == 'E' {
			if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
				sign := s[i+1]
				j := i + 2
				for j < len(s) && s[j] == '0' {
					j++
				}
				if j >= len(s) {
					return s[:i+2] + "0"
				}
				return s[:i+1] + string(sign) + s[j:]
			}
			break
		}
	}
	return s
}

type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull

	TypeString
	TypeSymbol

	TypeFloatNumber
	TypeIntegerNumber
	TypeBigInt

	TypeBoolean

	TypeClosure

	TypeObject
	TypeArray
	TypeRegExp

	TypeForeign    // Opaque host value passed through the interop boundary
	TypeHole       // Internal marker for array holes
	TypeUnresolved // Internal marker for regex groups not yet materialized
)

// String returns a human-readable string representation of the ValueType
func (vt ValueType) String() string {
	switch vt {
	case TypeNull:
		return "null"
	case TypeUndefined:
		return "undefined"
	case TypeString:
		return "string"
	case TypeSymbol:
		return "symbol"
	case TypeFloatNumber, TypeIntegerNumber:
		return "number"
	case TypeBigInt:
		return "bigint"
	case TypeBoolean:
		return "boolean"
	case TypeClosure:
		return "closure"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	case TypeRegExp:
		return "regexp"
	case TypeForeign:
		return "foreign"
	case TypeHole:
		return "hole"
	case TypeUnresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}

// Object is embedded by every heap-allocated object kind.
type Object struct {
}

type StringObject struct {
	Object
	value string
}

type SymbolObject struct {
	Object
	value string
}

// Description returns the symbol's description.
func (s *SymbolObject) Description() string { return s.value }

type BigIntObject struct {
	Object
	value *big.Int
}

// ForeignObject boxes a host value the engine does not interpret.
type ForeignObject struct {
	Object
	value any
}

type Value struct {
	typ     ValueType
	payload uint64
	obj     unsafe.Pointer
}

var (
	Undefined  = Value{typ: TypeUndefined}
	Null       = Value{typ: TypeNull}
	Hole       = Value{typ: TypeHole}       // Internal marker for array holes (sparse arrays)
	Unresolved = Value{typ: TypeUnresolved} // Placeholder for a capture group not computed yet
	True       = Value{typ: TypeBoolean, payload: 1}
	False      = Value{typ: TypeBoolean, payload: 0}
	NaN        = Value{typ: TypeFloatNumber, payload: math.Float64bits(math.NaN())}
)

func NumberValue(value float64) Value {
	return Value{typ: TypeFloatNumber, payload: math.Float64bits(value)}
}

func IntegerValue(value int32) Value {
	return Value{typ: TypeIntegerNumber, payload: uint64(int64(value))}
}

func BooleanValue(value bool) Value {
	if value {
		return True
	}
	return False
}

func NewBigInt(value *big.Int) Value {
	return Value{typ: TypeBigInt, obj: unsafe.Pointer(&BigIntObject{value: value})}
}

func NewString(value string) Value {
	return Value{typ: TypeString, obj: unsafe.Pointer(&StringObject{value: value})}
}

func NewSymbol(description string) Value {
	return Value{typ: TypeSymbol, obj: unsafe.Pointer(&SymbolObject{value: description})}
}

// NewForeign wraps an arbitrary host value for later on-demand interop.
func NewForeign(value any) Value {
	return Value{typ: TypeForeign, obj: unsafe.Pointer(&ForeignObject{value: value})}
}

func NewValueFromPlainObject(plainObj *PlainObject) Value {
	return Value{typ: TypeObject, obj: unsafe.Pointer(plainObj)}
}

func NewValueFromArray(arr *ArrayObject) Value {
	return Value{typ: TypeArray, obj: unsafe.Pointer(arr)}
}

func NewValueFromClosure(c *Closure) Value {
	return Value{typ: TypeClosure, obj: unsafe.Pointer(c)}
}

func (v Value) IsNumber() bool {
	return v.typ == TypeFloatNumber || v.typ == TypeIntegerNumber
}

func (v Value) IsFloatNumber() bool {
	return v.typ == TypeFloatNumber
}

func (v Value) IsIntegerNumber() bool {
	return v.typ == TypeIntegerNumber
}

func (v Value) IsBigInt() bool {
	return v.typ == TypeBigInt
}

func (v Value) IsString() bool {
	return v.typ == TypeString
}

func (v Value) IsSymbol() bool {
	return v.typ == TypeSymbol
}

func (v Value) IsBoolean() bool {
	return v.typ == TypeBoolean
}

// IsObject reports whether v is a full object (not a primitive).
func (v Value) IsObject() bool {
	return v.typ == TypeObject || v.typ == TypeArray || v.typ == TypeRegExp || v.typ == TypeClosure
}

func (v Value) IsArray() bool {
	return v.typ == TypeArray
}

func (v Value) IsCallable() bool {
	return v.typ == TypeClosure
}

func (v Value) IsClosure() bool {
	return v.typ == TypeClosure
}

func (v Value) IsForeign() bool {
	return v.typ == TypeForeign
}

func (v Value) IsUndefined() bool {
	return v.typ == TypeUndefined
}

func (v Value) IsNull() bool {
	return v.typ == TypeNull
}

func (v Value) IsHole() bool {
	return v.typ == TypeHole
}

func (v Value) Type() ValueType {
	return v.typ
}

func (v Value) TypeName() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeFloatNumber, TypeIntegerNumber:
		return "number"
	case TypeBigInt:
		return "bigint"
	case TypeString:
		return "string"
	case TypeSymbol:
		return "symbol"
	case TypeClosure:
		return "function"
	case TypeObject, TypeArray, TypeRegExp, TypeForeign:
		return "object"
	default:
		return fmt.Sprintf("<unknown type: %d>", v.typ)
	}
}

func (v Value) AsFloat() float64 {
	if v.typ != TypeFloatNumber {
		panic("value is not a float")
	}
	return math.Float64frombits(v.payload)
}

func (v Value) AsInteger() int32 {
	if v.typ != TypeIntegerNumber {
		panic("value is not an integer")
	}
	return int32(v.payload)
}

func (v Value) AsBigInt() *big.Int {
	if v.typ != TypeBigInt {
		panic("value is not a big int")
	}
	return (*BigIntObject)(v.obj).value
}

func (v Value) AsString() string {
	if v.typ != TypeString {
		panic("value is not a string")
	}
	return (*StringObject)(v.obj).value
}

func (v Value) AsSymbolObject() *SymbolObject {
	if v.typ != TypeSymbol {
		panic("value is not a symbol")
	}
	return (*SymbolObject)(v.obj)
}

func (v Value) AsBoolean() bool {
	if v.typ != TypeBoolean {
		panic("value is not a boolean")
	}
	return v.payload == 1
}

func (v Value) AsPlainObject() *PlainObject {
	if v.typ != TypeObject {
		panic("value is not an object")
	}
	return (*PlainObject)(v.obj)
}

func (v Value) AsArray() *ArrayObject {
	if v.typ != TypeArray {
		panic("value is not an array")
	}
	return (*ArrayObject)(v.obj)
}

func (v Value) AsClosure() *Closure {
	if v.typ != TypeClosure {
		panic("value is not a closure")
	}
	return (*Closure)(v.obj)
}

// AsForeign returns the host value wrapped by NewForeign.
func (v Value) AsForeign() any {
	if v.typ != TypeForeign {
		panic("value is not a foreign value")
	}
	return (*ForeignObject)(v.obj).value
}

// asPropertyHolder returns the shape-backed property store of any object
// kind, or nil for primitives.
func (v Value) asPropertyHolder() *PlainObject {
	switch v.typ {
	case TypeObject:
		return (*PlainObject)(v.obj)
	case TypeArray:
		return (*ArrayObject)(v.obj).namedProps()
	case TypeRegExp:
		return (*RegExpObject)(v.obj).namedProps()
	case TypeClosure:
		return (*Closure)(v.obj).props
	}
	return nil
}

// identity returns the heap pointer used for identity comparisons.
func (v Value) identity() unsafe.Pointer {
	return v.obj
}

func (v Value) ToString() string {
	switch v.typ {
	case TypeString:
		return (*StringObject)(v.obj).value
	case TypeSymbol:
		return fmt.Sprintf("Symbol(%s)", (*SymbolObject)(v.obj).value)
	case TypeFloatNumber:
		return formatNumber(v.AsFloat())
	case TypeIntegerNumber:
		return strconv.FormatInt(int64(v.AsInteger()), 10)
	case TypeBigInt:
		return v.AsBigInt().String()
	case TypeBoolean:
		if v.AsBoolean() {
			return "true"
		}
		return "false"
	case TypeClosure:
		c := v.AsClosure()
		if c.data.Name != "" {
			return fmt.Sprintf("<closure %s>", c.data.Name)
		}
		return "<closure>"
	case TypeObject:
		return "[object Object]"
	case TypeArray:
		arr := v.AsArray()
		n := arr.Length()
		parts := make([]string, n)
		for i := 0; i < n; i++ {
			el := arr.Get(i)
			if el.typ == TypeUndefined || el.typ == TypeNull {
				continue
			}
			parts[i] = el.ToString()
		}
		return strings.Join(parts, ",")
	case TypeRegExp:
		re := (*RegExpObject)(v.obj)
		return "/" + re.source + "/" + re.flags
	case TypeForeign:
		return fmt.Sprintf("[foreign %T]", v.AsForeign())
	case TypeNull:
		return "null"
	case TypeUndefined:
		return "undefined"
	case TypeHole:
		return "<hole>"
	case TypeUnresolved:
		return "<unresolved>"
	}
	return fmt.Sprintf("<unknown type %d>", v.typ)
}

// formatNumber implements Number::toString for finite and non-finite values.
func formatNumber(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if f == 0 {
		return "0"
	}
	absF := math.Abs(f)
	if absF < 1e-6 || absF >= 1e21 {
		return cleanExponentialFormat(strconv.FormatFloat(f, 'e', -1, 64))
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ToFloat converts numeric values (and booleans) to float64; everything else
// converts to NaN.
func (v Value) ToFloat() float64 {
	switch v.typ {
	case TypeFloatNumber:
		return v.AsFloat()
	case TypeIntegerNumber:
		return float64(v.AsInteger())
	case TypeBoolean:
		if v.AsBoolean() {
			return 1
		}
		return 0
	case TypeNull:
		return 0
	case TypeString:
		s := strings.TrimSpace(v.AsString())
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func (v Value) Inspect() string {
	switch v.typ {
	case TypeString:
		return strconv.Quote(v.AsString())
	case TypeArray:
		arr := v.AsArray()
		n := arr.Length()
		parts := make([]string, n)
		for i := 0; i < n; i++ {
			if !arr.HasElement(i) {
				parts[i] = "<empty>"
				continue
			}
			parts[i] = arr.GetElement(i).Inspect()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case TypeBigInt:
		return v.AsBigInt().String() + "n"
	default:
		return v.ToString()
	}
}

// Is implements SameValue. Integer and float representations of the same
// number are the same value.
func (v Value) Is(other Value) bool {
	if v.IsNumber() && other.IsNumber() {
		if v.typ == TypeIntegerNumber && other.typ == TypeIntegerNumber {
			return v.payload == other.payload
		}
		a, b := v.ToFloat(), other.ToFloat()
		if math.IsNaN(a) && math.IsNaN(b) {
			return true
		}
		if a == 0 && b == 0 {
			return math.Signbit(a) == math.Signbit(b)
		}
		return a == b
	}
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeUndefined, TypeNull, TypeHole, TypeUnresolved:
		return true
	case TypeBoolean:
		return v.payload == other.payload
	case TypeString:
		return v.AsString() == other.AsString()
	case TypeBigInt:
		return v.AsBigInt().Cmp(other.AsBigInt()) == 0
	default:
		return v.obj == other.obj
	}
}

// StrictlyEquals implements the === operator.
func (v Value) StrictlyEquals(other Value) bool {
	if v.IsNumber() && other.IsNumber() {
		return v.ToFloat() == other.ToFloat()
	}
	return v.Is(other)
}
