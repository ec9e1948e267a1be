package typesystem

import (
	"reflect"
)

// Overlaps reports whether some value could satisfy both a and b.
// The test is conservative in one direction only: two Simple specs overlap
// when one is a subtype of the other, so distinct interfaces that a single
// type happens to implement are not flagged.
func Overlaps(a, b Spec) bool {
	a, b = orAny(a), orAny(b)

	if _, ok := a.(Any); ok {
		return true
	}
	if _, ok := b.(Any); ok {
		return true
	}
	if u, ok := a.(Union); ok {
		for _, m := range u.Members {
			if Overlaps(m, b) {
				return true
			}
		}
		return false
	}
	if u, ok := b.(Union); ok {
		for _, m := range u.Members {
			if Overlaps(a, m) {
				return true
			}
		}
		return false
	}

	switch x := a.(type) {
	case Simple:
		switch y := b.(type) {
		case Simple:
			return simpleOverlap(x, y)
		case Container:
			return simpleContainerOverlap(x, y)
		}
	case Container:
		switch y := b.(type) {
		case Simple:
			return simpleContainerOverlap(y, x)
		case Container:
			return containerOverlap(x, y)
		}
	}
	return false
}

func simpleOverlap(a, b Simple) bool {
	if a.Type == nil || b.Type == nil {
		return a.Type == nil && b.Type == nil
	}
	return a.Type.SubtypeOf(b.Type) || b.Type.SubtypeOf(a.Type)
}

func containerOverlap(a, b Container) bool {
	if !a.Kind.Includes(b.Kind) && !b.Kind.Includes(a.Kind) {
		return false
	}
	switch {
	case a.Kind == Mapping && b.Kind == Mapping:
		return Overlaps(a.Key, b.Key) && Overlaps(a.Elem, b.Elem)
	case a.Kind == Mapping && b.Kind == Iterable:
		return Overlaps(a.Key, b.Elem)
	case a.Kind == Iterable && b.Kind == Mapping:
		return Overlaps(a.Elem, b.Key)
	}
	return Overlaps(a.Elem, b.Elem)
}

// simpleContainerOverlap compares a nominal type against a container spec by
// viewing the nominal's own shape as a container.
func simpleContainerOverlap(s Simple, c Container) bool {
	g, ok := s.Type.(GoType)
	if !ok {
		return false
	}
	t := g.T
	if !c.Kind.Admits(t.Kind()) {
		return false
	}
	switch t.Kind() {
	case reflect.Map:
		return containerOverlap(NewMapping(FromGoType(t.Key()), FromGoType(t.Elem())), c)
	case reflect.Slice, reflect.Array:
		return containerOverlap(NewContainer(Sequence, FromGoType(t.Elem())), c)
	}
	return false
}

// Collide reports whether some call is accepted by both signatures: there is
// an argument count both accept and every position up to it overlaps.
// The smallest common count is checked since larger counts only add positions.
func Collide(a, b Signature) bool {
	n := max(a.MinArgs(), b.MinArgs())
	if !a.AcceptsCount(n) || !b.AcceptsCount(n) {
		return false
	}
	for i := 0; i < n; i++ {
		sa, _ := a.ParamAt(i)
		sb, _ := b.ParamAt(i)
		if !Overlaps(sa, sb) {
			return false
		}
	}
	return true
}
