package typesystem

import (
	"reflect"

	"github.com/funvibe/overload/internal/config"
)

// Matcher decides whether runtime values satisfy declared specs.
// The zero value checks every element and does not descend into nested
// containers; use DefaultMatcher for the standard behaviour.
type Matcher struct {
	// SampleLimit bounds how many elements of a container are checked.
	// Zero checks all of them.
	SampleLimit int
	// NestedContainers lets an element that is itself a container satisfy
	// an Iterable or Sequence element spec by recursively matching the
	// enclosing container spec, so []any{1, []any{2, 3}} is an Iterable[int].
	NestedContainers bool
}

func DefaultMatcher() Matcher {
	return Matcher{NestedContainers: true}
}

// Matches reports whether v satisfies spec.
func (m Matcher) Matches(spec Spec, v any) bool {
	return m.matches(spec, v, 0)
}

func (m Matcher) matches(spec Spec, v any, depth int) bool {
	switch s := spec.(type) {
	case nil, Any:
		return true
	case Simple:
		if s.Type == nil {
			return v == nil
		}
		return s.Type.Accepts(v)
	case Union:
		for _, member := range s.Members {
			if m.matches(member, v, depth) {
				return true
			}
		}
		return false
	case Container:
		return m.matchContainer(s, v, depth)
	}
	return false
}

func (m Matcher) matchContainer(c Container, v any, depth int) bool {
	if v == nil || depth > config.MaxNestingDepth {
		return false
	}
	rv := reflect.ValueOf(v)
	if !c.Kind.Admits(rv.Kind()) {
		return false
	}

	if rv.Kind() == reflect.Map {
		iter := rv.MapRange()
		checked := 0
		for iter.Next() {
			if m.SampleLimit > 0 && checked >= m.SampleLimit {
				break
			}
			checked++
			key := iter.Key().Interface()
			if c.Kind.elementsAreKeys() {
				if !m.matchElem(c, key, depth) {
					return false
				}
				continue
			}
			if !m.matches(orAny(c.Key), key, depth+1) {
				return false
			}
			if !m.matches(orAny(c.Elem), iter.Value().Interface(), depth+1) {
				return false
			}
		}
		return true
	}

	n := rv.Len()
	if m.SampleLimit > 0 && n > m.SampleLimit {
		n = m.SampleLimit
	}
	for i := 0; i < n; i++ {
		if !m.matchElem(c, rv.Index(i).Interface(), depth) {
			return false
		}
	}
	return true
}

func (m Matcher) matchElem(c Container, elem any, depth int) bool {
	if m.matches(orAny(c.Elem), elem, depth+1) {
		return true
	}
	if !m.NestedContainers || c.Kind == Mapping || elem == nil {
		return false
	}
	return c.Kind.Admits(reflect.TypeOf(elem).Kind()) && m.matchContainer(c, elem, depth+1)
}

// MatchSignature reports whether args satisfy sig's arity and every
// parameter spec, the variadic spec applying to each trailing argument.
func (m Matcher) MatchSignature(sig Signature, args []any) bool {
	_, ok := m.Bind(sig, args)
	return ok
}

// Bind matches args against sig and returns the argument list the
// implementation receives. A trailing Kwargs binds parameters by name.
// Parameters left unbound take their defaults, which are not checked.
// When sig has a KwVariadic parameter the list ends with a Kwargs of the
// keyword arguments no parameter claimed, empty if there were none.
func (m Matcher) Bind(sig Signature, args []any) ([]any, bool) {
	args, kw := SplitKwargs(args)
	if len(args) > len(sig.Params) && sig.Variadic == nil {
		return nil, false
	}

	bound := make([]any, 0, max(len(args), len(sig.Params))+1)
	claimed := make(map[string]bool)
	for i, p := range sig.Params {
		v, named := kw[p.Name]
		named = named && p.Name != ""
		switch {
		case i < len(args):
			if named {
				return nil, false
			}
			v = args[i]
		case named:
			claimed[p.Name] = true
		case p.HasDefault:
			bound = append(bound, p.Default)
			continue
		default:
			return nil, false
		}
		if !m.Matches(orAny(p.Spec), v) {
			return nil, false
		}
		bound = append(bound, v)
	}
	for i := len(sig.Params); i < len(args); i++ {
		if !m.Matches(orAny(sig.Variadic.Spec), args[i]) {
			return nil, false
		}
		bound = append(bound, args[i])
	}

	rest := Kwargs{}
	for name, v := range kw {
		if !claimed[name] {
			rest[name] = v
		}
	}
	if sig.KwVariadic == nil {
		return bound, len(rest) == 0
	}
	for _, v := range rest {
		if !m.Matches(orAny(sig.KwVariadic.Spec), v) {
			return nil, false
		}
	}
	return append(bound, rest), true
}
