package typesystem

import (
	"fmt"
	"reflect"
	"strings"
)

// Param is one declared parameter of a signature.
type Param struct {
	Name       string // optional, used in diagnostics only
	Spec       Spec
	Default    any
	HasDefault bool
}

// String renders the parameter as "name: spec = default"; name and default
// are omitted when absent.
func (p Param) String() string {
	var sb strings.Builder
	if p.Name != "" {
		sb.WriteString(p.Name)
		sb.WriteString(": ")
	}
	sb.WriteString(orAny(p.Spec).String())
	if p.HasDefault {
		fmt.Fprintf(&sb, " = %s", describeDefault(p.Default))
	}
	return sb.String()
}

// Kwargs carries keyword arguments. Passed as the last argument of a call,
// it binds parameters by name; names no parameter claims are collected by
// the signature's KwVariadic parameter.
type Kwargs map[string]any

var kwargsType = reflect.TypeFor[Kwargs]()

// SplitKwargs separates a trailing Kwargs from the positional arguments.
func SplitKwargs(args []any) ([]any, Kwargs) {
	if n := len(args); n > 0 {
		if kw, ok := args[n-1].(Kwargs); ok {
			return args[:n-1], kw
		}
	}
	return args, nil
}

// Signature is the ordered list of declared parameters of one overload,
// excluding the receiver of methods. Variadic, when set, captures every
// argument after the fixed parameters; its Spec applies to each of them.
// KwVariadic captures the keyword arguments no parameter is named after,
// and its Spec applies to each of their values.
type Signature struct {
	Params     []Param
	Variadic   *Param
	KwVariadic *Param
}

// NewSignature builds a signature of unnamed, required parameters.
func NewSignature(specs ...Spec) Signature {
	params := make([]Param, len(specs))
	for i, s := range specs {
		params[i] = Param{Spec: s}
	}
	return Signature{Params: params}
}

// WithVariadic returns a copy of s whose trailing arguments are captured by spec.
func (s Signature) WithVariadic(name string, spec Spec) Signature {
	s.Params = append([]Param(nil), s.Params...)
	s.Variadic = &Param{Name: name, Spec: spec}
	return s
}

// WithKwVariadic returns a copy of s that collects unclaimed keyword
// arguments whose values satisfy spec.
func (s Signature) WithKwVariadic(name string, spec Spec) Signature {
	s.Params = append([]Param(nil), s.Params...)
	s.KwVariadic = &Param{Name: name, Spec: spec}
	return s
}

// WithDefault returns a copy of s where parameter i is optional with the given default.
func (s Signature) WithDefault(i int, value any) Signature {
	s.Params = append([]Param(nil), s.Params...)
	if i >= 0 && i < len(s.Params) {
		s.Params[i].Default = value
		s.Params[i].HasDefault = true
	}
	return s
}

// MinArgs is the number of arguments without a default.
func (s Signature) MinArgs() int {
	n := 0
	for _, p := range s.Params {
		if !p.HasDefault {
			n++
		}
	}
	return n
}

// MaxArgs is the largest accepted argument count, or -1 when variadic.
func (s Signature) MaxArgs() int {
	if s.Variadic != nil {
		return -1
	}
	return len(s.Params)
}

// AcceptsCount reports whether a call with n arguments fits the arity.
func (s Signature) AcceptsCount(n int) bool {
	if n < s.MinArgs() {
		return false
	}
	return s.Variadic != nil || n <= len(s.Params)
}

// ParamAt returns the spec constraining argument position i.
func (s Signature) ParamAt(i int) (Spec, bool) {
	if i < len(s.Params) {
		return orAny(s.Params[i].Spec), true
	}
	if s.Variadic != nil {
		return orAny(s.Variadic.Spec), true
	}
	return nil, false
}

func (s Signature) String() string {
	parts := make([]string, 0, len(s.Params)+2)
	for _, p := range s.Params {
		parts = append(parts, p.String())
	}
	if s.Variadic != nil {
		parts = append(parts, "*"+s.Variadic.String())
	}
	if s.KwVariadic != nil {
		parts = append(parts, "**"+s.KwVariadic.String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Validate checks the structural invariants of a declared signature.
func (s Signature) Validate() error {
	seen := make(map[string]bool)
	sawDefault := false
	for i, p := range s.Params {
		if p.Name != "" {
			if seen[p.Name] {
				return &SignatureError{Pos: -1, Msg: fmt.Sprintf("duplicate parameter name %q", p.Name)}
			}
			seen[p.Name] = true
		}
		if p.HasDefault {
			sawDefault = true
		} else if sawDefault {
			return &SignatureError{Pos: -1, Msg: fmt.Sprintf("parameter %d without default follows a parameter with default", i)}
		}
	}
	if s.Variadic != nil {
		if s.Variadic.HasDefault {
			return &SignatureError{Pos: -1, Msg: "variadic parameter cannot have a default"}
		}
		if s.Variadic.Name != "" && seen[s.Variadic.Name] {
			return &SignatureError{Pos: -1, Msg: fmt.Sprintf("duplicate parameter name %q", s.Variadic.Name)}
		}
		seen[s.Variadic.Name] = true
	}
	if s.KwVariadic != nil {
		if s.KwVariadic.HasDefault {
			return &SignatureError{Pos: -1, Msg: "keyword parameter cannot have a default"}
		}
		if s.KwVariadic.Name != "" && seen[s.KwVariadic.Name] {
			return &SignatureError{Pos: -1, Msg: fmt.Sprintf("duplicate parameter name %q", s.KwVariadic.Name)}
		}
	}
	return nil
}

// FromFunc derives a signature from a Go function type.
// Every parameter is required; a Go variadic parameter becomes variadic
// capture and a final Kwargs parameter collects keyword arguments.
func FromFunc(t reflect.Type) (Signature, error) {
	return fromFunc(t, 0)
}

// FromMethod is FromFunc for a function whose first parameter is the receiver.
func FromMethod(t reflect.Type) (Signature, error) {
	if t != nil && t.Kind() == reflect.Func && t.NumIn() == 0 {
		return Signature{}, &SignatureError{Pos: -1, Msg: "method function has no receiver parameter"}
	}
	if t != nil && t.Kind() == reflect.Func && t.IsVariadic() && t.NumIn() == 1 {
		return Signature{}, &SignatureError{Pos: -1, Msg: "receiver parameter cannot be variadic"}
	}
	return fromFunc(t, 1)
}

func fromFunc(t reflect.Type, skip int) (Signature, error) {
	if t == nil || t.Kind() != reflect.Func {
		return Signature{}, &SignatureError{Pos: -1, Msg: fmt.Sprintf("expected a function, got %v", t)}
	}
	var sig Signature
	n := t.NumIn()
	for i := skip; i < n; i++ {
		in := t.In(i)
		if t.IsVariadic() && i == n-1 {
			sig.Variadic = &Param{Spec: FromGoType(in.Elem())}
			continue
		}
		if in == kwargsType && i == n-1 {
			sig.KwVariadic = &Param{Spec: Any{}}
			continue
		}
		sig.Params = append(sig.Params, Param{Spec: FromGoType(in)})
	}
	return sig, nil
}

func describeDefault(v any) string {
	if v == nil {
		return "None"
	}
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}
