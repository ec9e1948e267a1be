// Package overload registers several implementations under one name and
// dispatches each call to the first one whose declared parameter types
// accept the actual arguments.
//
//	r, _ := overload.New()
//	r.Register("area", "(r: float)", circleArea, "Area of a circle.")
//	r.Register("area", "(w: float, h: float = 1.0)", rectArea)
//	a, err := r.Call("area", 2.0)
//
// Overlapping signatures are reported when registered; at call time the
// earlier registration wins.
package overload

import (
	"fmt"
	"os"
	"reflect"

	"github.com/funvibe/overload/internal/config"
	"github.com/funvibe/overload/internal/diagnostics"
	"github.com/funvibe/overload/internal/symbols"
	"github.com/funvibe/overload/internal/typesystem"
)

// Registry owns the overload sets and classes of one program or test.
type Registry struct {
	cfg        *config.Config
	universe   *typesystem.Universe
	matcher    *typesystem.Matcher
	reporter   diagnostics.Reporter
	symbols    *symbols.SymbolTable
	marshaller *Marshaller
}

// Option configures a Registry created by New.
type Option func(*Registry) error

// WithConfig applies a parsed configuration. Explicit WithMatcher and
// WithReporter options take precedence over the matching config sections.
func WithConfig(cfg *config.Config) Option {
	return func(r *Registry) error {
		r.cfg = cfg
		return nil
	}
}

// FromConfigFile loads the configuration at path. An empty path searches
// the working directory and its parents; finding nothing is not an error.
func FromConfigFile(path string) Option {
	return func(r *Registry) error {
		if path == "" {
			found, err := config.FindConfig(".")
			if err != nil {
				return err
			}
			if found == "" {
				return nil
			}
			path = found
		}
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		r.cfg = cfg
		return nil
	}
}

func WithReporter(rep diagnostics.Reporter) Option {
	return func(r *Registry) error {
		r.reporter = rep
		return nil
	}
}

// WithUniverse resolves declarations against u instead of a fresh universe.
func WithUniverse(u *typesystem.Universe) Option {
	return func(r *Registry) error {
		r.universe = u
		return nil
	}
}

func WithMatcher(m typesystem.Matcher) Option {
	return func(r *Registry) error {
		r.matcher = &m
		return nil
	}
}

// New creates an empty registry.
func New(opts ...Option) (*Registry, error) {
	r := &Registry{marshaller: NewMarshaller()}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.cfg == nil {
		r.cfg = config.Default()
	}
	if r.universe == nil {
		r.universe = typesystem.NewUniverse()
	}
	if r.matcher == nil {
		r.matcher = &typesystem.Matcher{
			SampleLimit:      r.cfg.Matcher.SampleLimit,
			NestedContainers: r.cfg.NestedContainersEnabled(),
		}
	}
	if r.reporter == nil {
		r.reporter = diagnostics.NewLogReporter(os.Stderr, r.cfg.Diagnostics.Color)
	}

	if len(r.cfg.Protos.Files) > 0 {
		if err := r.universe.LoadProtoFiles(r.cfg.Protos.ImportPaths, r.cfg.Protos.Files...); err != nil {
			return nil, err
		}
	}
	for name, target := range r.cfg.Aliases {
		if err := r.universe.Alias(name, target); err != nil {
			return nil, fmt.Errorf("alias %s: %w", name, err)
		}
	}

	r.symbols = symbols.NewEmptySymbolTable(*r.matcher)
	return r, nil
}

// Scope returns a registry layered over r: names registered in the scope
// shadow r's, unknown names fall back to r.
func (r *Registry) Scope() *Registry {
	child := *r
	child.symbols = symbols.NewEnclosedSymbolTable(r.symbols)
	return &child
}

// Parent returns the registry r was scoped from, or nil for a root registry.
func (r *Registry) Parent() *Registry {
	if r.symbols.IsGlobalScope() {
		return nil
	}
	parent := *r
	parent.symbols = r.symbols.Outer()
	return &parent
}

// IsScope reports whether r was created by Scope.
func (r *Registry) IsScope() bool {
	return !r.symbols.IsGlobalScope()
}

// Lookup reports what name refers to in r: a function or a class, and
// whether it was defined in r itself or inherited from an enclosing registry.
func (r *Registry) Lookup(name string) (Symbol, bool) {
	return r.symbols.Lookup(name)
}

// Universe returns the annotation names declarations are resolved against.
func (r *Registry) Universe() *typesystem.Universe { return r.universe }

func (r *Registry) Matcher() typesystem.Matcher { return *r.matcher }

// Register parses decl, e.g. "(x: int, *rest: str)", and adds fn under name.
// The returned warnings name every earlier overload the new one overlaps.
func (r *Registry) Register(name, decl string, fn Func, doc ...string) ([]CollisionWarning, error) {
	sig, err := r.universe.ParseSignature(decl)
	if err != nil {
		r.reportSignatureError(name, err)
		return nil, fmt.Errorf("registering %s%s: %w", name, decl, err)
	}
	return r.RegisterSignature(name, sig, fn, doc...)
}

// RegisterSignature adds fn under name with an already built signature.
func (r *Registry) RegisterSignature(name string, sig Signature, fn Func, doc ...string) ([]CollisionWarning, error) {
	if err := sig.Validate(); err != nil {
		r.reportSignatureError(name, err)
		return nil, fmt.Errorf("registering %s%s: %w", name, sig, err)
	}
	_, warnings, err := r.symbols.AddFunction(name, sig, fn, joinDoc(doc))
	if err != nil {
		return nil, err
	}
	r.reportCollisions(warnings)
	return warnings, nil
}

// RegisterFunc adds an ordinary Go function under name. Its signature is
// derived from the parameter types: slices become Sequence, maps Mapping,
// the empty interface Any and a variadic parameter captures trailing arguments.
func (r *Registry) RegisterFunc(name string, fn any, doc ...string) ([]CollisionWarning, error) {
	fv := reflect.ValueOf(fn)
	sig, err := typesystem.FromFunc(reflect.TypeOf(fn))
	if err != nil {
		r.reportSignatureError(name, err)
		return nil, fmt.Errorf("registering %s: %w", name, err)
	}
	return r.RegisterSignature(name, sig, func(args ...any) (any, error) {
		return r.marshaller.Call(fv, args)
	}, doc...)
}

// Call dispatches a call to the overloads registered under name.
func (r *Registry) Call(name string, args ...any) (any, error) {
	set, err := r.symbols.ResolveFunction(name)
	if err != nil {
		return nil, err
	}
	return set.Call(args...)
}

// Resolve returns the overload a call would dispatch to, without calling it.
func (r *Registry) Resolve(name string, args ...any) (*Entry, error) {
	set, err := r.symbols.ResolveFunction(name)
	if err != nil {
		return nil, err
	}
	e, _, err := set.Resolve(args...)
	return e, err
}

// Help returns the documentation of the overload args would dispatch to.
func (r *Registry) Help(name string, args ...any) (string, error) {
	set, err := r.symbols.ResolveFunction(name)
	if err != nil {
		return "", err
	}
	return set.Help(args...)
}

// Doc renders every overload registered under name.
func (r *Registry) Doc(name string) (string, error) {
	set, err := r.symbols.ResolveFunction(name)
	if err != nil {
		return "", err
	}
	return set.Doc(), nil
}

// Len returns the number of overloads registered under name.
func (r *Registry) Len(name string) int {
	if set, ok := r.symbols.FindFunction(name); ok {
		return set.Len()
	}
	return 0
}

// Collisions returns the collision log of name.
func (r *Registry) Collisions(name string) []CollisionWarning {
	if set, ok := r.symbols.FindFunction(name); ok {
		return set.Collisions()
	}
	return nil
}

// Names lists every registered function name, sorted.
func (r *Registry) Names() []string {
	return r.symbols.FunctionNames()
}

func (r *Registry) reportCollisions(warnings []CollisionWarning) {
	if r.cfg.CollisionsSilenced() {
		return
	}
	for _, w := range warnings {
		r.reporter.Report(w.Diagnostic())
	}
}

func (r *Registry) reportSignatureError(name string, err error) {
	r.reporter.Report(diagnostics.NewError(diagnostics.ErrE002, diagnostics.Position{}, name, err.Error()))
}

func joinDoc(doc []string) string {
	switch len(doc) {
	case 0:
		return ""
	case 1:
		return doc[0]
	}
	out := doc[0]
	for _, d := range doc[1:] {
		out += "\n" + d
	}
	return out
}

// Default is the registry used by the package-level functions.
var Default = mustNew()

func mustNew() *Registry {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds an overload to the Default registry.
func Register(name, decl string, fn Func, doc ...string) ([]CollisionWarning, error) {
	return Default.Register(name, decl, fn, doc...)
}

// RegisterFunc adds a Go function to the Default registry.
func RegisterFunc(name string, fn any, doc ...string) ([]CollisionWarning, error) {
	return Default.RegisterFunc(name, fn, doc...)
}

// Call dispatches through the Default registry.
func Call(name string, args ...any) (any, error) {
	return Default.Call(name, args...)
}
