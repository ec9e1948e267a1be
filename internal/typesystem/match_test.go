package typesystem

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/kr/pretty"
)

type celsius float64

func (c celsius) String() string { return fmt.Sprintf("%.1fC", float64(c)) }

func TestMatcher_Matches(t *testing.T) {
	m := DefaultMatcher()
	iterInt := NewContainer(Iterable, intSpec)
	seqStr := NewContainer(Sequence, stringSpec)
	mapStrInt := NewMapping(stringSpec, intSpec)

	tests := []struct {
		name string
		spec Spec
		v    any
		want bool
	}{
		{"int exact", intSpec, 1, true},
		{"int vs float", intSpec, 1.0, false},
		{"int vs int64", intSpec, int64(1), false},
		{"any", Any{}, struct{}{}, true},
		{"any nil", Any{}, nil, true},
		{"none nil", None, nil, true},
		{"none zero", None, 0, false},
		{"int nil", intSpec, nil, false},
		{"interface", TypeOf[fmt.Stringer](), celsius(3), true},
		{"interface miss", TypeOf[fmt.Stringer](), 3.0, false},
		{"error interface", TypeOf[error](), errors.New("x"), true},
		{"union first", NormalizeUnion(intSpec, stringSpec), 1, true},
		{"union second", NormalizeUnion(intSpec, stringSpec), "a", true},
		{"union miss", NormalizeUnion(intSpec, stringSpec), 1.5, false},
		{"optional nil", Optional(intSpec), nil, true},
		{"iterable typed slice", iterInt, []int{1, 2}, true},
		{"iterable any slice", iterInt, []any{1, 2, 3}, true},
		{"iterable array", iterInt, [2]int{1, 2}, true},
		{"iterable heterogeneous", iterInt, []any{1, "two"}, false},
		{"iterable empty", iterInt, []string{}, true},
		{"iterable nil slice", iterInt, []int(nil), true},
		{"iterable nested", iterInt, []any{1, []any{2, 3}, 4}, true},
		{"iterable nested miss", iterInt, []any{1, []any{2, "x"}}, false},
		{"iterable map keys", iterInt, map[int]string{1: "a"}, true},
		{"iterable map string keys", iterInt, map[string]int{"a": 1}, false},
		{"string is not iterable", NewContainer(Iterable, Any{}), "abc", false},
		{"scalar is not container", iterInt, 1, false},
		{"nil is not container", iterInt, nil, false},
		{"sequence rejects map", seqStr, map[string]string{}, false},
		{"sequence of str", seqStr, []string{"a"}, true},
		{"mapping", mapStrInt, map[string]int{"a": 1}, true},
		{"mapping any values", mapStrInt, map[string]any{"a": 1, "b": 2}, true},
		{"mapping bad value", mapStrInt, map[string]any{"a": "b"}, false},
		{"mapping bad key", mapStrInt, map[int]int{1: 1}, false},
		{"mapping rejects slice", mapStrInt, []int{1}, false},
		{"mapping empty", mapStrInt, map[bool]bool{}, true},
		{"sequence of union", NewContainer(Sequence, NormalizeUnion(intSpec, stringSpec)), []any{1, "a"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Matches(tt.spec, tt.v); got != tt.want {
				t.Errorf("Matches(%s, %#v) = %v, want %v", tt.spec, tt.v, got, tt.want)
			}
		})
	}
}

func TestMatcher_NestedContainersDisabled(t *testing.T) {
	m := Matcher{}
	iterInt := NewContainer(Iterable, intSpec)
	if m.Matches(iterInt, []any{1, []any{2, 3}}) {
		t.Error("nested container should not match with NestedContainers off")
	}
	if !m.Matches(iterInt, []any{1, 2}) {
		t.Error("flat container should match with NestedContainers off")
	}
}

func TestMatcher_SampleLimit(t *testing.T) {
	m := Matcher{SampleLimit: 2}
	seqInt := NewContainer(Sequence, intSpec)
	if !m.Matches(seqInt, []any{1, 2, "three"}) {
		t.Error("element beyond sample limit should not be checked")
	}
	if m.Matches(seqInt, []any{1, "two", 3}) {
		t.Error("element within sample limit must be checked")
	}
}

func TestMatcher_DepthBound(t *testing.T) {
	var v any = []any{1}
	for i := 0; i < 200; i++ {
		v = []any{v}
	}
	if DefaultMatcher().Matches(NewContainer(Sequence, intSpec), v) {
		t.Error("deeply nested value should stop matching at the nesting bound")
	}
}

func TestMatcher_Bind(t *testing.T) {
	m := DefaultMatcher()
	sig := Signature{
		Params: []Param{
			{Name: "x", Spec: intSpec},
			{Name: "y", Spec: floatSpec, Default: 1.5, HasDefault: true},
		},
	}

	args, ok := m.Bind(sig, []any{3})
	if !ok {
		t.Fatal("expected bind to succeed")
	}
	if len(args) != 2 || args[0] != 3 || args[1] != 1.5 {
		t.Errorf("Bind = %v, want [3 1.5]", args)
	}

	if _, ok := m.Bind(sig, []any{3, 2.0, 1.0}); ok {
		t.Error("too many arguments should not bind")
	}
	if _, ok := m.Bind(sig, nil); ok {
		t.Error("missing required argument should not bind")
	}
	if _, ok := m.Bind(sig, []any{3, "x"}); ok {
		t.Error("wrong type for optional argument should not bind")
	}
}

func TestMatcher_BindVariadic(t *testing.T) {
	m := DefaultMatcher()
	sig := NewSignature(stringSpec).WithVariadic("rest", intSpec)

	for _, args := range [][]any{{"a"}, {"a", 1}, {"a", 1, 2, 3}} {
		if _, ok := m.Bind(sig, args); !ok {
			t.Errorf("Bind(%v) failed", args)
		}
	}
	if _, ok := m.Bind(sig, []any{"a", 1, "b"}); ok {
		t.Error("variadic argument of wrong type should not bind")
	}
}

func TestMatcher_BindKeywords(t *testing.T) {
	m := DefaultMatcher()
	sig := Signature{
		Params: []Param{
			{Name: "x", Spec: stringSpec},
			{Name: "y", Spec: floatSpec, Default: 1.5, HasDefault: true},
		},
		Variadic:   &Param{Name: "args", Spec: intSpec},
		KwVariadic: &Param{Name: "kwargs", Spec: intSpec},
	}

	tests := []struct {
		name string
		args []any
		want []any
		ok   bool
	}{
		{"positional only", []any{"1", 2.0}, []any{"1", 2.0, Kwargs{}}, true},
		{"extra keywords", []any{"1", 2.0, 3, 4, 5, Kwargs{"a": 1, "b": 2, "c": 3}},
			[]any{"1", 2.0, 3, 4, 5, Kwargs{"a": 1, "b": 2, "c": 3}}, true},
		{"param by name", []any{Kwargs{"x": "1", "y": 2.0}}, []any{"1", 2.0, Kwargs{}}, true},
		{"default kept", []any{Kwargs{"x": "1", "k": 7}}, []any{"1", 1.5, Kwargs{"k": 7}}, true},
		{"bad keyword value", []any{"1", 2.0, Kwargs{"a": "x"}}, nil, false},
		{"bad named param", []any{Kwargs{"x": 1}}, nil, false},
		{"given twice", []any{"1", Kwargs{"x": "2"}}, nil, false},
		{"missing required", []any{Kwargs{"y": 2.0}}, nil, false},
	}
	for _, tt := range tests {
		got, ok := m.Bind(sig, tt.args)
		if ok != tt.ok {
			t.Errorf("%s: Bind ok = %v, want %v", tt.name, ok, tt.ok)
			continue
		}
		if diff := pretty.Diff(got, tt.want); ok && len(diff) > 0 {
			t.Errorf("%s: Bind = %v, want %v", tt.name, got, tt.want)
		}
	}

	strict := NewSignature(intSpec)
	strict.Params[0].Name = "n"
	if got, ok := m.Bind(strict, []any{Kwargs{"n": 3}}); !ok || len(got) != 1 || got[0] != 3 {
		t.Errorf("Bind(n=3) = %v, %v, want [3]", got, ok)
	}
	if _, ok := m.Bind(strict, []any{3, Kwargs{"extra": 1}}); ok {
		t.Error("unknown keyword without a keyword parameter should not bind")
	}
	if args, ok := m.Bind(strict, []any{3, Kwargs{}}); !ok || len(args) != 1 {
		t.Errorf("empty Kwargs should bind like no keywords, got %v, %v", args, ok)
	}
}

func TestFromFunc_Kwargs(t *testing.T) {
	sig, err := FromFunc(reflect.TypeOf(func(s string, kw Kwargs) {}))
	if err != nil {
		t.Fatal(err)
	}
	if s := sig.String(); s != "(string, **Any)" {
		t.Errorf("FromFunc = %s, want (string, **Any)", s)
	}
}
