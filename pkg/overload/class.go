package overload

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/funvibe/overload/internal/class"
	"github.com/funvibe/overload/internal/typesystem"
)

// ClassBuilder collects the method declarations of one class body.
// Declarations keep their order; errors are deferred to Build.
type ClassBuilder struct {
	r     *Registry
	name  string
	bases []string
	decls []class.Method
	errs  []error
}

// Class starts the declaration of a class named name.
func (r *Registry) Class(name string) *ClassBuilder {
	return &ClassBuilder{r: r, name: name}
}

// Extends names the base classes, in inheritance order. Each base must
// already be built in the registry or an outer scope.
func (b *ClassBuilder) Extends(bases ...string) *ClassBuilder {
	b.bases = append(b.bases, bases...)
	return b
}

// Method declares one overload of method; decl excludes the receiver.
func (b *ClassBuilder) Method(method, decl string, fn MethodFunc, doc ...string) *ClassBuilder {
	sig, err := b.r.universe.ParseSignature(decl)
	if err != nil {
		b.fail(method, fmt.Errorf("%s.%s%s: %w", b.name, method, decl, err))
		return b
	}
	b.decls = append(b.decls, class.Method{Name: method, Signature: sig, Func: fn, Doc: joinDoc(doc)})
	return b
}

// MethodFunc declares a Go function as an overload of method. The first
// parameter of fn receives self; the rest form the signature.
func (b *ClassBuilder) MethodFunc(method string, fn any, doc ...string) *ClassBuilder {
	fv := reflect.ValueOf(fn)
	sig, err := typesystem.FromMethod(reflect.TypeOf(fn))
	if err != nil {
		b.fail(method, fmt.Errorf("%s.%s: %w", b.name, method, err))
		return b
	}
	m := b.r.marshaller
	b.decls = append(b.decls, class.Method{
		Name:      method,
		Signature: sig,
		Func: func(self any, args ...any) (any, error) {
			return m.Call(fv, append([]any{self}, args...))
		},
		Doc: joinDoc(doc),
	})
	return b
}

func (b *ClassBuilder) fail(method string, err error) {
	b.r.reportSignatureError(b.name+"."+method, err)
	b.errs = append(b.errs, err)
}

// Build merges the declarations with the inherited methods and defines the
// class in the registry. Collisions among the class's own declarations are
// reported and returned; nothing is defined when any declaration failed.
func (b *ClassBuilder) Build() ([]CollisionWarning, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	bases := make([]*class.Class, 0, len(b.bases))
	for _, name := range b.bases {
		base, err := b.r.symbols.ResolveClass(name)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", b.name, err)
		}
		bases = append(bases, base)
	}
	c, warnings, err := class.Build(b.name, bases, b.decls, *b.r.matcher)
	if err != nil {
		return nil, err
	}
	if err := b.r.symbols.DefineClass(c); err != nil {
		return nil, err
	}
	b.r.reportCollisions(warnings)
	return warnings, nil
}

// FindClass returns the built class named name, searching outer scopes.
func (r *Registry) FindClass(name string) (*Class, bool) {
	return r.symbols.FindClass(name)
}

// ClassNames lists every class visible from r, sorted.
func (r *Registry) ClassNames() []string {
	return r.symbols.ClassNames()
}

// MRO returns the method resolution order of a class, starting with itself.
func (r *Registry) MRO(className string) ([]string, error) {
	c, err := r.symbols.ResolveClass(className)
	if err != nil {
		return nil, err
	}
	mro := c.MRO()
	names := make([]string, len(mro))
	for i, k := range mro {
		names[i] = k.Name
	}
	return names, nil
}

// Invoke dispatches method of className on self.
func (r *Registry) Invoke(className, method string, self any, args ...any) (any, error) {
	c, err := r.symbols.ResolveClass(className)
	if err != nil {
		return nil, err
	}
	return c.Call(self, method, args...)
}

// Construct dispatches the init overloads of className on self.
func (r *Registry) Construct(className string, self any, args ...any) (any, error) {
	c, err := r.symbols.ResolveClass(className)
	if err != nil {
		return nil, err
	}
	return c.Construct(self, args...)
}

// MethodDoc renders every overload of method visible on className,
// inherited ones included.
func (r *Registry) MethodDoc(className, method string) (string, error) {
	c, err := r.symbols.ResolveClass(className)
	if err != nil {
		return "", err
	}
	return c.Doc(method)
}

// MethodHelp returns the documentation of the method overload args would
// dispatch to.
func (r *Registry) MethodHelp(className, method string, args ...any) (string, error) {
	c, err := r.symbols.ResolveClass(className)
	if err != nil {
		return "", err
	}
	return c.Help(method, args...)
}
