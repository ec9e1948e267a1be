package typesystem

import (
	"maps"
	"reflect"
	"sort"
	"sync"

	"github.com/funvibe/overload/internal/config"
)

// genericForm identifies a built-in name that takes type arguments.
type genericForm int

const (
	formIterable genericForm = iota
	formSequence
	formMapping
	formOptional
	formUnion
)

var generics = map[string]genericForm{
	config.IterableTypeName: formIterable,
	config.SequenceTypeName: formSequence,
	"List":                  formSequence,
	"list":                  formSequence,
	config.MappingTypeName:  formMapping,
	"Dict":                  formMapping,
	"dict":                  formMapping,
	config.OptionalTypeName: formOptional,
	config.UnionTypeName:    formUnion,
}

// Universe maps annotation names to specs. It is the scope in which
// declarations passed to Parse and ParseSignature are resolved.
type Universe struct {
	mu    sync.RWMutex
	names map[string]Spec
}

// NewUniverse returns a universe holding the built-in names.
func NewUniverse() *Universe {
	u := &Universe{names: make(map[string]Spec)}
	u.initBuiltins()
	return u
}

func (u *Universe) initBuiltins() {
	builtin := []struct {
		name string
		t    reflect.Type
	}{
		{"int", reflect.TypeFor[int]()},
		{"int8", reflect.TypeFor[int8]()},
		{"int16", reflect.TypeFor[int16]()},
		{"int32", reflect.TypeFor[int32]()},
		{"int64", reflect.TypeFor[int64]()},
		{"uint", reflect.TypeFor[uint]()},
		{"uint8", reflect.TypeFor[uint8]()},
		{"uint16", reflect.TypeFor[uint16]()},
		{"uint32", reflect.TypeFor[uint32]()},
		{"uint64", reflect.TypeFor[uint64]()},
		{"uintptr", reflect.TypeFor[uintptr]()},
		{"float32", reflect.TypeFor[float32]()},
		{"float64", reflect.TypeFor[float64]()},
		{"float", reflect.TypeFor[float64]()},
		{"complex64", reflect.TypeFor[complex64]()},
		{"complex128", reflect.TypeFor[complex128]()},
		{"string", reflect.TypeFor[string]()},
		{"str", reflect.TypeFor[string]()},
		{"bool", reflect.TypeFor[bool]()},
		{"byte", reflect.TypeFor[byte]()},
		{"rune", reflect.TypeFor[rune]()},
		{"error", reflect.TypeFor[error]()},
		{"bytes", reflect.TypeFor[[]byte]()},
	}
	for _, b := range builtin {
		u.names[b.name] = SimpleOf(b.t)
	}
	u.names[config.AnyTypeName] = Any{}
	u.names["any"] = Any{}
	u.names[config.NoneTypeName] = None
	u.names["nil"] = None
}

// Define binds name to spec. Later definitions replace earlier ones.
// Dotted names (e.g. "geo.Point") are allowed.
func (u *Universe) Define(name string, spec Spec) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.names[name] = orAny(spec)
}

// DefineType binds name to the spec of a Go type.
func (u *Universe) DefineType(name string, t reflect.Type) {
	u.Define(name, FromGoType(t))
}

// Alias binds name to the spec denoted by an existing annotation.
func (u *Universe) Alias(name, annotation string) error {
	spec, err := u.Parse(annotation)
	if err != nil {
		return err
	}
	u.Define(name, spec)
	return nil
}

// Lookup returns the spec bound to name.
func (u *Universe) Lookup(name string) (Spec, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	s, ok := u.names[name]
	return s, ok
}

// Names lists every bound name in sorted order.
func (u *Universe) Names() []string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]string, 0, len(u.names))
	for name := range u.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the universe.
func (u *Universe) Clone() *Universe {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return &Universe{names: maps.Clone(u.names)}
}

// Parse resolves a single type annotation such as "Iterable[int] | None".
func (u *Universe) Parse(annotation string) (Spec, error) {
	p := newParser(u, annotation)
	spec, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokEOF); err != nil {
		return nil, err
	}
	return spec, nil
}

// ParseSignature resolves a declaration such as "(x: int, *rest: str)".
func (u *Universe) ParseSignature(decl string) (Signature, error) {
	p := newParser(u, decl)
	sig, err := p.parseSignature()
	if err != nil {
		return Signature{}, err
	}
	if err := sig.Validate(); err != nil {
		return Signature{}, err
	}
	return sig, nil
}
