package interop

import (
	"reflect"
)

// HostEnvironment classifies host values the normalizer does not convert
// itself.
type HostEnvironment interface {
	// IsHostObject reports whether v is an object of the host language that
	// may cross into the engine as an opaque foreign value.
	IsHostObject(v any) bool
	// IsHostNull reports whether a host object stands for the host's null.
	IsHostNull(v any) bool
}

// ReflectEnvironment treats every Go reference or aggregate kind as a host
// object. Channels, complex numbers, uintptr and unsafe.Pointer are not host
// objects.
type ReflectEnvironment struct{}

func (ReflectEnvironment) IsHostObject(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Array,
		reflect.Struct, reflect.Func, reflect.Interface:
		return true
	}
	return false
}

func (ReflectEnvironment) IsHostNull(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface:
		return rv.IsNil()
	case reflect.Invalid:
		return true
	}
	return false
}
