package vet

import (
	"go/types"

	"github.com/funvibe/overload/internal/typesystem"
)

// StaticType is a Nominal backed by a go/types type. It exists only at
// analysis time, so it never accepts a runtime value; overlap is decided
// through SubtypeOf alone.
type StaticType struct {
	T types.Type
}

func (t StaticType) String() string {
	return types.TypeString(t.T, func(p *types.Package) string { return p.Name() })
}

func (t StaticType) Equal(other typesystem.Nominal) bool {
	o, ok := other.(StaticType)
	return ok && types.Identical(t.T, o.T)
}

func (t StaticType) Accepts(any) bool { return false }

func (t StaticType) SubtypeOf(other typesystem.Nominal) bool {
	o, ok := other.(StaticType)
	if !ok {
		return false
	}
	if types.Identical(t.T, o.T) {
		return true
	}
	iface, ok := o.T.Underlying().(*types.Interface)
	return ok && types.Implements(t.T, iface)
}

// specOf converts a declared parameter type the way typesystem.FromGoType
// converts a reflect.Type. Every slice or array is a Sequence here since no
// value has to be rebuilt.
func specOf(t types.Type) typesystem.Spec {
	if _, ok := t.(*types.TypeParam); ok {
		return typesystem.Any{}
	}
	switch u := t.Underlying().(type) {
	case *types.Interface:
		if u.Empty() {
			return typesystem.Any{}
		}
	case *types.Slice:
		return typesystem.NewContainer(typesystem.Sequence, specOf(u.Elem()))
	case *types.Array:
		return typesystem.NewContainer(typesystem.Sequence, specOf(u.Elem()))
	case *types.Map:
		return typesystem.NewMapping(specOf(u.Key()), specOf(u.Elem()))
	}
	return typesystem.Simple{Type: StaticType{T: t}}
}

// signatureOf builds the overload signature of a Go function or method.
// The receiver is not part of it; every parameter is required.
func signatureOf(sig *types.Signature) typesystem.Signature {
	var out typesystem.Signature
	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		p := params.At(i)
		if sig.Variadic() && i == params.Len()-1 {
			elem := p.Type()
			if s, ok := p.Type().(*types.Slice); ok {
				elem = s.Elem()
			}
			out.Variadic = &typesystem.Param{Name: paramName(p), Spec: specOf(elem)}
			continue
		}
		out.Params = append(out.Params, typesystem.Param{Name: paramName(p), Spec: specOf(p.Type())})
	}
	return out
}

func paramName(v *types.Var) string {
	if v.Name() == "_" {
		return ""
	}
	return v.Name()
}
