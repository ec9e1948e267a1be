package typesystem

import (
	"strings"

	"github.com/funvibe/overload/internal/config"
)

// Spec is the interface for all declared parameter types in our system.
// A Spec is built once, at registration time, and never mutated afterwards.
type Spec interface {
	String() string
	Equal(Spec) bool
	spec()
}

// Simple represents a nominal type (e.g. int, *Point, fmt.Stringer).
type Simple struct {
	Type Nominal
}

func (t Simple) spec() {}

func (t Simple) String() string {
	if t.Type == nil {
		return config.NoneTypeName
	}
	return t.Type.String()
}

func (t Simple) Equal(other Spec) bool {
	o, ok := other.(Simple)
	if !ok {
		return false
	}
	if t.Type == nil || o.Type == nil {
		return t.Type == nil && o.Type == nil
	}
	return t.Type.Equal(o.Type)
}

// Container represents a parameterized collection (e.g. Sequence[int]).
// Key is only meaningful for Mapping and defaults to Any.
type Container struct {
	Kind ContainerKind
	Key  Spec
	Elem Spec
}

func (t Container) spec() {}

func (t Container) String() string {
	var sb strings.Builder
	sb.WriteString(t.Kind.String())
	sb.WriteByte('[')
	if t.Kind == Mapping {
		sb.WriteString(orAny(t.Key).String())
		sb.WriteString(", ")
	}
	sb.WriteString(orAny(t.Elem).String())
	sb.WriteByte(']')
	return sb.String()
}

func (t Container) Equal(other Spec) bool {
	o, ok := other.(Container)
	if !ok || o.Kind != t.Kind {
		return false
	}
	if t.Kind == Mapping && !orAny(t.Key).Equal(orAny(o.Key)) {
		return false
	}
	return orAny(t.Elem).Equal(orAny(o.Elem))
}

// Union represents a disjunction of specs (e.g. int | string).
// Use NormalizeUnion to build one; members never contain another Union.
type Union struct {
	Members []Spec
}

func (t Union) spec() {}

func (t Union) String() string {
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}

// Equal compares members as sets.
func (t Union) Equal(other Spec) bool {
	o, ok := other.(Union)
	if !ok || len(o.Members) != len(t.Members) {
		return false
	}
	for _, m := range t.Members {
		if !containsSpec(o.Members, m) {
			return false
		}
	}
	return true
}

// Any accepts every value.
type Any struct{}

func (t Any) spec()          {}
func (t Any) String() string { return config.AnyTypeName }

func (t Any) Equal(other Spec) bool {
	_, ok := other.(Any)
	return ok
}

// None is the spec matched only by an untyped nil.
var None Spec = Simple{}

// NormalizeUnion builds a union from the given members.
// Nested unions are flattened and duplicates dropped, keeping declaration order.
// A union containing Any is Any; a single remaining member is returned as is.
func NormalizeUnion(members ...Spec) Spec {
	flat := []Spec{}
	for _, m := range members {
		if m == nil {
			continue
		}
		if u, ok := m.(Union); ok {
			flat = append(flat, u.Members...)
		} else {
			flat = append(flat, m)
		}
	}

	unique := []Spec{}
	for _, m := range flat {
		if _, ok := m.(Any); ok {
			return Any{}
		}
		if !containsSpec(unique, m) {
			unique = append(unique, m)
		}
	}

	if len(unique) == 1 {
		return unique[0]
	}
	return Union{Members: unique}
}

// NewContainer builds a container spec; nil element or key specs become Any.
func NewContainer(kind ContainerKind, elem Spec) Container {
	return Container{Kind: kind, Key: Any{}, Elem: orAny(elem)}
}

// NewMapping builds a Mapping[key, elem] spec.
func NewMapping(key, elem Spec) Container {
	return Container{Kind: Mapping, Key: orAny(key), Elem: orAny(elem)}
}

// Optional is shorthand for spec | None.
func Optional(s Spec) Spec {
	return NormalizeUnion(s, None)
}

func orAny(s Spec) Spec {
	if s == nil {
		return Any{}
	}
	return s
}

func containsSpec(list []Spec, s Spec) bool {
	for _, m := range list {
		if m.Equal(s) {
			return true
		}
	}
	return false
}
