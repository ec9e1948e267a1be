package typesystem

import (
	"reflect"

	"github.com/funvibe/overload/internal/config"
)

// ContainerKind is the outer tag of a Container spec.
type ContainerKind int

const (
	Iterable ContainerKind = iota // any sequence or mapping
	Sequence                      // slices and arrays
	Mapping                       // maps
)

func (k ContainerKind) String() string {
	switch k {
	case Iterable:
		return config.IterableTypeName
	case Sequence:
		return config.SequenceTypeName
	case Mapping:
		return config.MappingTypeName
	default:
		return "Container?"
	}
}

// Admits reports whether a Go value of the given reflect kind has this
// container's runtime shape. Strings are scalars, not iterables.
func (k ContainerKind) Admits(rk reflect.Kind) bool {
	switch k {
	case Sequence:
		return rk == reflect.Slice || rk == reflect.Array
	case Mapping:
		return rk == reflect.Map
	case Iterable:
		return rk == reflect.Slice || rk == reflect.Array || rk == reflect.Map
	}
	return false
}

// Includes reports whether every value admitted by other is admitted by k.
func (k ContainerKind) Includes(other ContainerKind) bool {
	return k == other || k == Iterable
}

// elementsAreKeys reports whether iterating a map under this kind yields keys
// (range semantics) rather than values.
func (k ContainerKind) elementsAreKeys() bool {
	return k == Iterable
}
