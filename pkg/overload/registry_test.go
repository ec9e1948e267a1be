package overload_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/funvibe/overload/internal/diagnostics"
	"github.com/funvibe/overload/pkg/overload"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
)

func newRegistry(t *testing.T, opts ...overload.Option) (*overload.Registry, *diagnostics.Collector) {
	t.Helper()
	col := &diagnostics.Collector{}
	r, err := overload.New(append([]overload.Option{overload.WithReporter(col)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r, col
}

func mustRegister(t *testing.T, r *overload.Registry, name, decl string, fn overload.Func, doc ...string) []overload.CollisionWarning {
	t.Helper()
	warnings, err := r.Register(name, decl, fn, doc...)
	if err != nil {
		t.Fatalf("Register(%s%s): %v", name, decl, err)
	}
	return warnings
}

func TestRegistry_Flatten(t *testing.T) {
	r, col := newRegistry(t)

	mustRegister(t, r, "flatten", "(x: Iterable)", func(args ...any) (any, error) {
		var out []any
		rv := reflect.ValueOf(args[0])
		for i := 0; i < rv.Len(); i++ {
			sub, err := r.Call("flatten", rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out = append(out, sub.([]any)...)
		}
		return out, nil
	}, "Flatten every element.")
	warnings := mustRegister(t, r, "flatten", "(x)", func(args ...any) (any, error) {
		return []any{args[0]}, nil
	}, "A leaf.")

	if len(warnings) != 1 {
		t.Fatalf("got %d collision warnings, want 1", len(warnings))
	}
	if codes := col.Codes(); len(codes) != 1 || codes[0] != diagnostics.WarnW001 {
		t.Errorf("reported codes = %v, want [W001]", codes)
	}

	got, err := r.Call("flatten", []any{1, []any{2, []int{3, 4}}, "ab", []any{}})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	want := []any{1, 2, 3, 4, "ab"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("flatten = %v, want %v", got, want)
	}

	help, err := r.Help("flatten", "leaf")
	if err != nil {
		t.Fatal(err)
	}
	if help != "A leaf." {
		t.Errorf("Help = %q, want %q", help, "A leaf.")
	}
}

func TestRegistry_DefaultsAndDoc(t *testing.T) {
	r, _ := newRegistry(t)
	mustRegister(t, r, "area", "(r: str)", func(args ...any) (any, error) {
		return "named " + args[0].(string), nil
	}, "Area by name.")
	mustRegister(t, r, "area", "(w: float, h: float = 1.0)", func(args ...any) (any, error) {
		return args[0].(float64) * args[1].(float64), nil
	}, "Area of a rectangle.")

	tests := []struct {
		args []any
		want any
	}{
		{[]any{2.0}, 2.0},
		{[]any{2.0, 3.0}, 6.0},
		{[]any{"disc"}, "named disc"},
	}
	for _, tt := range tests {
		got, err := r.Call("area", tt.args...)
		if err != nil {
			t.Errorf("area(%v): %v", tt.args, err)
			continue
		}
		if got != tt.want {
			t.Errorf("area(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}

	doc, err := r.Doc("area")
	if err != nil {
		t.Fatal(err)
	}
	want := "Overloaded function 'area' with 2 signatures:\n" +
		"- (r: string): Area by name.\n" +
		"- (w: float64, h: float64 = 1): Area of a rectangle."
	if doc != want {
		t.Errorf("Doc =\n%s\nwant\n%s", doc, want)
	}
	if n := r.Len("area"); n != 2 {
		t.Errorf("Len = %d, want 2", n)
	}
}

func TestRegistry_Errors(t *testing.T) {
	r, col := newRegistry(t)

	_, err := r.Register("f", "(x: Nope)", func(args ...any) (any, error) { return nil, nil })
	var unknown *overload.UnknownTypeError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownTypeError, got %v", err)
	}
	if unknown.Name != "Nope" {
		t.Errorf("unknown name = %q, want Nope", unknown.Name)
	}
	if codes := col.Codes(); len(codes) != 1 || codes[0] != diagnostics.ErrE002 {
		t.Errorf("reported codes = %v, want [E002]", codes)
	}
	if r.Len("f") != 0 {
		t.Error("a rejected declaration must not create an overload")
	}

	_, err = r.Register("f", "(a: int = 1, b: int)", func(args ...any) (any, error) { return nil, nil })
	var sigErr *overload.SignatureError
	if !errors.As(err, &sigErr) {
		t.Errorf("expected SignatureError, got %v", err)
	}

	_, err = r.Call("missing")
	var notFound *overload.SymbolNotFoundError
	if !errors.As(err, &notFound) || notFound.Name != "missing" {
		t.Errorf("expected SymbolNotFoundError for missing, got %v", err)
	}

	mustRegister(t, r, "g", "(x: int)", func(args ...any) (any, error) { return nil, nil })
	_, err = r.Call("g", "text")
	if !overload.IsNoMatch(err) || !errors.Is(err, overload.ErrNoMatchingOverload) {
		t.Errorf("expected no-match error, got %v", err)
	}

	if _, err := r.RegisterSignature("nil_impl", overload.NewSignature(), nil); err == nil {
		t.Error("expected an error registering a nil implementation")
	}
	if _, err := r.Register("nil_impl", "(x: int)", nil); err == nil {
		t.Error("expected an error registering a nil implementation")
	}
	for _, n := range r.Names() {
		if n == "nil_impl" {
			t.Errorf("Names() = %v, a rejected registration must not add its name", r.Names())
		}
	}
	if _, ok := r.Lookup("nil_impl"); ok {
		t.Error("Lookup found a name whose only registration was rejected")
	}
	if _, err := r.Call("nil_impl"); !errors.As(err, &notFound) {
		t.Errorf("expected SymbolNotFoundError for nil_impl, got %v", err)
	}

	boom := errors.New("boom")
	mustRegister(t, r, "fails", "()", func(args ...any) (any, error) { return nil, boom })
	if _, err := r.Call("fails"); !errors.Is(err, boom) || overload.IsNoMatch(err) {
		t.Errorf("implementation error should propagate unchanged, got %v", err)
	}
}

func TestRegistry_SilencedCollisions(t *testing.T) {
	cfg, err := overload.LoadConfig(writeFile(t, t.TempDir(), "overload.toml", "[diagnostics]\ncollisions = \"silent\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	r, col := newRegistry(t, overload.WithConfig(cfg))
	noop := func(args ...any) (any, error) { return nil, nil }
	mustRegister(t, r, "f", "(x: int)", noop)
	warnings := mustRegister(t, r, "f", "(y: int)", noop)

	if len(warnings) != 1 {
		t.Errorf("got %d warnings, want 1", len(warnings))
	}
	if len(r.Collisions("f")) != 1 {
		t.Errorf("collision log has %d entries, want 1", len(r.Collisions("f")))
	}
	if n := len(col.Diagnostics()); n != 0 {
		t.Errorf("silenced registry reported %d diagnostics", n)
	}
}

func TestRegistry_RegisterFunc(t *testing.T) {
	r, _ := newRegistry(t)

	if _, err := r.RegisterFunc("sum", func(xs []int) int {
		total := 0
		for _, x := range xs {
			total += x
		}
		return total
	}, "Sum of ints."); err != nil {
		t.Fatal(err)
	}
	if _, err := r.RegisterFunc("sum", func(prefix string, xs ...float64) (string, error) {
		if len(xs) == 0 {
			return "", errors.New("nothing to sum")
		}
		total := 0.0
		for _, x := range xs {
			total += x
		}
		return fmt.Sprintf("%s%g", prefix, total), nil
	}); err != nil {
		t.Fatal(err)
	}

	got, err := r.Call("sum", []any{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if got != 6 {
		t.Errorf("sum([1 2 3]) = %v, want 6", got)
	}

	got, err = r.Call("sum", "total=", 1.5, 2.5)
	if err != nil {
		t.Fatal(err)
	}
	if got != "total=4" {
		t.Errorf("sum(prefix, ...) = %v, want total=4", got)
	}

	if _, err := r.Call("sum", "total="); err == nil || err.Error() != "nothing to sum" {
		t.Errorf("expected the function's own error, got %v", err)
	}
	if _, err := r.Call("sum", []any{"a"}); !overload.IsNoMatch(err) {
		t.Errorf("expected no-match for []any{\"a\"}, got %v", err)
	}

	if _, err := r.RegisterFunc("bad", 42); err == nil {
		t.Error("expected error registering a non-function")
	}

	if _, err := r.RegisterFunc("greet", func(name string, kw overload.Kwargs) string {
		return fmt.Sprintf("%s/%d", name, len(kw))
	}); err != nil {
		t.Fatal(err)
	}
	if got, _ := r.Call("greet", "hi", overload.Kwargs{"a": 1, "b": "x"}); got != "hi/2" {
		t.Errorf("greet with keywords = %v, want hi/2", got)
	}
	if got, _ := r.Call("greet", "hi"); got != "hi/0" {
		t.Errorf("greet = %v, want hi/0", got)
	}
}

func TestRegistry_Keywords(t *testing.T) {
	r, _ := newRegistry(t)
	mustRegister(t, r, "scale", "(x: float, factor: float = 2.0)", func(args ...any) (any, error) {
		return args[0].(float64) * args[1].(float64), nil
	})

	tests := []struct {
		args []any
		want float64
	}{
		{[]any{3.0}, 6},
		{[]any{3.0, 3.0}, 9},
		{[]any{3.0, overload.Kwargs{"factor": 4.0}}, 12},
		{[]any{overload.Kwargs{"x": 1.5, "factor": 4.0}}, 6},
	}
	for _, tt := range tests {
		got, err := r.Call("scale", tt.args...)
		if err != nil {
			t.Errorf("scale(%v): %v", tt.args, err)
			continue
		}
		if got != tt.want {
			t.Errorf("scale(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}

	_, err := r.Call("scale", 3.0, overload.Kwargs{"factor": "x"})
	var noMatch *overload.NoMatchingOverloadError
	if !errors.As(err, &noMatch) {
		t.Fatalf("expected NoMatchingOverloadError, got %v", err)
	}
	if !reflect.DeepEqual(noMatch.ArgTypes, []string{"float64", "factor=string"}) {
		t.Errorf("ArgTypes = %v, want [float64 factor=string]", noMatch.ArgTypes)
	}
	if _, err := r.Call("scale", 3.0, overload.Kwargs{"unknown": 1.0}); !overload.IsNoMatch(err) {
		t.Errorf("expected no-match for an unknown keyword, got %v", err)
	}
}

func TestRegistry_Scope(t *testing.T) {
	r, _ := newRegistry(t)
	constant := func(v any) overload.Func {
		return func(args ...any) (any, error) { return v, nil }
	}
	mustRegister(t, r, "name", "()", constant("outer"))
	mustRegister(t, r, "only_outer", "()", constant("outer only"))

	inner := r.Scope()
	mustRegister(t, inner, "name", "()", constant("inner"))

	if got, _ := inner.Call("name"); got != "inner" {
		t.Errorf("inner name = %v, want inner", got)
	}
	if got, _ := r.Call("name"); got != "outer" {
		t.Errorf("outer name = %v, want outer", got)
	}
	if got, _ := inner.Call("only_outer"); got != "outer only" {
		t.Errorf("inner only_outer = %v, want fallback to outer", got)
	}
	if r.Len("name") != 1 {
		t.Error("registering in a scope must not touch the outer registry")
	}

	if r.IsScope() || r.Parent() != nil {
		t.Error("a root registry has no parent")
	}
	if !inner.IsScope() {
		t.Error("Scope() should return a scoped registry")
	}
	if got, _ := inner.Parent().Call("name"); got != "outer" {
		t.Errorf("Parent().Call(name) = %v, want outer", got)
	}

	sym, ok := inner.Lookup("name")
	if !ok || !sym.Local || sym.Kind != overload.FunctionSymbol || sym.Set.Len() != 1 {
		t.Errorf("Lookup(name) = %+v, %v", sym, ok)
	}
	sym, ok = inner.Lookup("only_outer")
	if !ok || sym.Local {
		t.Errorf("Lookup(only_outer) = %+v, %v, want inherited", sym, ok)
	}
	if _, ok := inner.Lookup("nowhere"); ok {
		t.Error("Lookup(nowhere) should fail")
	}
}

type circle struct {
	r float64
}

func TestRegistry_Classes(t *testing.T) {
	r, _ := newRegistry(t)

	if _, err := r.Class("Shape").
		Method("area", "()", func(self any, args ...any) (any, error) { return 0.0, nil }, "Area of an unknown shape.").
		Method("describe", "()", func(self any, args ...any) (any, error) { return "shape", nil }).
		Build(); err != nil {
		t.Fatalf("Build(Shape): %v", err)
	}

	if _, err := r.Class("Circle").Extends("Shape").
		MethodFunc("init", func(c *circle, radius float64) *circle {
			c.r = radius
			return c
		}).
		MethodFunc("area", func(c *circle) float64 { return 3 * c.r * c.r }, "Area of a circle.").
		Build(); err != nil {
		t.Fatalf("Build(Circle): %v", err)
	}

	c := &circle{}
	if _, err := r.Construct("Circle", c, 2.0); err != nil {
		t.Fatalf("Construct: %v", err)
	}
	if c.r != 2.0 {
		t.Errorf("radius = %v, want 2", c.r)
	}

	if got, _ := r.Invoke("Circle", "area", c); got != 12.0 {
		t.Errorf("Circle.area = %v, want 12", got)
	}
	if got, _ := r.Invoke("Circle", "describe", c); got != "shape" {
		t.Errorf("Circle.describe = %v, want inherited shape", got)
	}

	mro, err := r.MRO("Circle")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(mro, []string{"Circle", "Shape"}) {
		t.Errorf("MRO = %v, want [Circle Shape]", mro)
	}

	doc, err := r.MethodDoc("Circle", "area")
	if err != nil {
		t.Fatal(err)
	}
	want := "Overloaded function 'Circle.area' with 2 signatures:\n" +
		"- (): Area of a circle.\n" +
		"- (): Area of an unknown shape."
	if doc != want {
		t.Errorf("MethodDoc =\n%s\nwant\n%s", doc, want)
	}

	if help, _ := r.MethodHelp("Circle", "area"); help != "Area of a circle." {
		t.Errorf("MethodHelp = %q, want the local overload", help)
	}
	if k, ok := r.FindClass("Circle"); !ok || !k.Declares("init") || k.Declares("describe") {
		t.Error("Circle should declare init and inherit describe")
	}

	if _, err := r.Class("Circle").Build(); err == nil {
		t.Error("expected error redefining Circle")
	}
	if _, err := r.Class("Square").Extends("Polygon").Build(); err == nil {
		t.Error("expected error for an unknown base")
	}
	if _, err := r.Class("Broken").Method("area", "(x: Nope)", nil).Build(); err == nil {
		t.Error("expected error for a malformed method declaration")
	}
	if _, err := r.Invoke("Circle", "perimeter", c); err == nil {
		t.Error("expected error for an unknown method")
	}
	if !reflect.DeepEqual(r.ClassNames(), []string{"Circle", "Shape"}) {
		t.Errorf("ClassNames = %v", r.ClassNames())
	}
	if sym, ok := r.Lookup("Circle"); !ok || sym.Kind != overload.ClassSymbol || sym.Class.Name != "Circle" {
		t.Errorf("Lookup(Circle) = %+v, %v", sym, ok)
	}
}

const geoProto = `
syntax = "proto3";
package geo;

message Point {
  int64 x = 1;
  int64 y = 2;
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRegistry_FromConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "geo.proto", geoProto)
	cfgPath := writeFile(t, dir, "overload.yaml", `
aliases:
  Point: geo.Point
  Numbers: Sequence[int | float]
protos:
  files: [geo.proto]
`)

	r, _ := newRegistry(t, overload.FromConfigFile(cfgPath))
	for _, name := range []string{"geo.Point", "Point", "Numbers"} {
		if _, ok := r.Universe().Lookup(name); !ok {
			t.Errorf("expected %s to be defined", name)
		}
	}

	mustRegister(t, r, "norm", "(p: Point)", func(args ...any) (any, error) {
		p := args[0].(*dynamic.Message)
		return p.GetFieldByName("x").(int64) + p.GetFieldByName("y").(int64), nil
	})
	mustRegister(t, r, "norm", "(xs: Numbers)", func(args ...any) (any, error) {
		return "numbers", nil
	})

	fds, err := (&protoparse.Parser{ImportPaths: []string{dir}}).ParseFiles("geo.proto")
	if err != nil {
		t.Fatal(err)
	}
	p := dynamic.NewMessage(fds[0].FindMessage("geo.Point"))
	p.SetFieldByName("x", int64(3))
	p.SetFieldByName("y", int64(4))

	got, err := r.Call("norm", p)
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(7) {
		t.Errorf("norm(point) = %v, want 7", got)
	}
	if got, _ := r.Call("norm", []any{1, 2.5}); got != "numbers" {
		t.Errorf("norm(numbers) = %v, want numbers", got)
	}
}

func TestRegistry_BadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "overload.yaml", "aliases:\n  Bad: Sequence[Nope]\n")
	if _, err := overload.New(overload.WithReporter(diagnostics.Discard), overload.FromConfigFile(cfgPath)); err == nil {
		t.Error("expected error for an alias naming an unknown type")
	}
}

func TestDefaultRegistry(t *testing.T) {
	if _, err := overload.RegisterFunc("overload_test.double", func(x int) int { return 2 * x }); err != nil {
		t.Fatal(err)
	}
	got, err := overload.Call("overload_test.double", 21)
	if err != nil {
		t.Fatal(err)
	}
	if got != 42 {
		t.Errorf("double(21) = %v, want 42", got)
	}
}
