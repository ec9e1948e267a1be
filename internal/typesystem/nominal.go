package typesystem

import (
	"reflect"
)

// Nominal is a named host type referenced by a Simple spec.
type Nominal interface {
	String() string
	Equal(Nominal) bool
	// Accepts reports whether v is an instance of the type or of one of its subtypes.
	Accepts(v any) bool
	// SubtypeOf reports whether every instance of the type is also an instance of other.
	SubtypeOf(other Nominal) bool
}

// GoType is a Nominal backed by a Go runtime type.
// Interface types are supertypes of every type that implements them.
type GoType struct {
	T reflect.Type
}

func (t GoType) String() string { return t.T.String() }

func (t GoType) Equal(other Nominal) bool {
	o, ok := other.(GoType)
	return ok && o.T == t.T
}

func (t GoType) Accepts(v any) bool {
	vt := reflect.TypeOf(v)
	if vt == nil {
		return false
	}
	if vt == t.T {
		return true
	}
	return t.T.Kind() == reflect.Interface && vt.Implements(t.T)
}

func (t GoType) SubtypeOf(other Nominal) bool {
	switch o := other.(type) {
	case GoType:
		if o.T == t.T {
			return true
		}
		return o.T.Kind() == reflect.Interface && t.T.Implements(o.T)
	case ProtoMessage:
		name, ok := goProtoName(t.T)
		return ok && name == o.Name
	}
	return false
}

// TypeOf returns the Simple spec for the Go type T.
// Use FromGoType to get container specs for slice and map types.
func TypeOf[T any]() Spec {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		return Any{}
	}
	return Simple{Type: GoType{T: t}}
}

// SimpleOf wraps a Go type in a Simple spec.
func SimpleOf(t reflect.Type) Spec {
	if t == nil {
		return None
	}
	return Simple{Type: GoType{T: t}}
}

// FromGoType converts a declared Go parameter type to a Spec:
// slices become Sequence, maps become Mapping, the empty interface becomes Any.
// Byte slices and arrays stay Simple because they cannot be rebuilt element-wise
// into a fixed shape.
func FromGoType(t reflect.Type) Spec {
	if t == nil {
		return None
	}

	switch t.Kind() {
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return Any{}
		}
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			break
		}
		return Container{Kind: Sequence, Key: Any{}, Elem: FromGoType(t.Elem())}
	case reflect.Map:
		return Container{Kind: Mapping, Key: FromGoType(t.Key()), Elem: FromGoType(t.Elem())}
	}
	return Simple{Type: GoType{T: t}}
}
