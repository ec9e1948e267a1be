// Package class merges per-method overload sets along an inheritance chain.
//
// A class is built in two phases: the declarations of one class body are
// collected into local overload sets (one per method name, with collision
// detection), then each method's local set is chained with the local sets of
// every ancestor in method resolution order. Local entries always precede
// inherited ones, so a subclass overload shadows an inherited overload that
// accepts the same arguments.
package class

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/funvibe/overload/internal/config"
	"github.com/funvibe/overload/internal/dispatch"
	"github.com/funvibe/overload/internal/typesystem"
)

// MethodFunc is the calling convention of a method implementation.
// self is the receiver passed to Call.
type MethodFunc func(self any, args ...any) (any, error)

// Method is one declaration in a class body.
type Method struct {
	Name      string
	Signature typesystem.Signature
	Func      MethodFunc
	Doc       string
}

// Class is an immutable, fully merged class.
type Class struct {
	Name  string
	Bases []*Class

	mro        []*Class
	local      map[string]*dispatch.Set
	methods    map[string]*dispatch.Set
	collisions []dispatch.CollisionWarning
}

// Build creates a class from its bases and its method declarations in body
// order. The returned warnings are the collisions found among the class's own
// declarations; inherited overloads are not re-checked. Build fails without
// side effects if any declaration is invalid.
func Build(name string, bases []*Class, decls []Method, matcher typesystem.Matcher) (*Class, []dispatch.CollisionWarning, error) {
	if name == "" {
		return nil, nil, fmt.Errorf("class name is empty")
	}
	seen := make(map[*Class]bool)
	for i, b := range bases {
		if b == nil {
			return nil, nil, fmt.Errorf("class %s: base %d is nil", name, i)
		}
		if seen[b] {
			return nil, nil, fmt.Errorf("class %s: duplicate base %s", name, b.Name)
		}
		seen[b] = true
	}

	c := &Class{
		Name:  name,
		Bases: append([]*Class(nil), bases...),
		local: make(map[string]*dispatch.Set),
	}

	var warnings []dispatch.CollisionWarning
	for _, d := range decls {
		if d.Name == "" {
			return nil, nil, fmt.Errorf("class %s: method name is empty", name)
		}
		if d.Func == nil {
			return nil, nil, fmt.Errorf("class %s: method %s%s has no implementation", name, d.Name, d.Signature)
		}
		set, ok := c.local[d.Name]
		if !ok {
			set = dispatch.NewSet(c.qualified(d.Name), matcher)
			c.local[d.Name] = set
		}
		_, found, err := set.AddOrigin(d.Signature, receiverFunc(d.Func), d.Doc, name)
		if err != nil {
			return nil, nil, fmt.Errorf("class %s: %w", name, err)
		}
		warnings = append(warnings, found...)
	}
	c.collisions = warnings

	mro, err := Linearize(c)
	if err != nil {
		return nil, nil, err
	}
	c.mro = mro
	c.methods = make(map[string]*dispatch.Set)
	for _, m := range c.allMethodNames() {
		var chain []*dispatch.Set
		for _, k := range c.mro {
			if set, ok := k.local[m]; ok {
				chain = append(chain, set)
			}
		}
		c.methods[m] = dispatch.Merge(c.qualified(m), matcher, chain...)
	}
	return c, warnings, nil
}

// receiverFunc adapts a method to the dispatch calling convention, where
// the receiver travels as the first argument.
func receiverFunc(fn MethodFunc) dispatch.Func {
	return func(args ...any) (any, error) {
		if len(args) == 0 {
			return nil, ErrMissingReceiver
		}
		return fn(args[0], args[1:]...)
	}
}

// ErrMissingReceiver is returned when a method entry is invoked without self.
var ErrMissingReceiver = errors.New("method called without a receiver")

func (c *Class) qualified(method string) string {
	return c.Name + "." + method
}

func (c *Class) allMethodNames() []string {
	names := make(map[string]bool)
	for _, k := range c.mro {
		for m := range k.local {
			names[m] = true
		}
	}
	out := make([]string, 0, len(names))
	for m := range names {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Linearize returns the C3 linearization of c: c itself, then a merge of
// its bases' linearizations that keeps every class ahead of its own bases
// and the bases in declaration order. Bases must already be linearized.
func Linearize(c *Class) ([]*Class, error) {
	seqs := make([][]*Class, 0, len(c.Bases)+1)
	for _, b := range c.Bases {
		if len(b.mro) == 0 {
			return nil, fmt.Errorf("class %s: base %s is not built", c.Name, b.Name)
		}
		seqs = append(seqs, append([]*Class(nil), b.mro...))
	}
	seqs = append(seqs, append([]*Class(nil), c.Bases...))

	out := []*Class{c}
	for {
		seqs = slices.DeleteFunc(seqs, func(s []*Class) bool { return len(s) == 0 })
		if len(seqs) == 0 {
			return out, nil
		}
		var head *Class
		for _, s := range seqs {
			if !inTail(seqs, s[0]) {
				head = s[0]
				break
			}
		}
		if head == nil {
			return nil, &InconsistentMROError{Class: c.Name, Pending: pendingHeads(seqs)}
		}
		out = append(out, head)
		for i, s := range seqs {
			if s[0] == head {
				seqs[i] = s[1:]
			}
		}
	}
}

func inTail(seqs [][]*Class, k *Class) bool {
	for _, s := range seqs {
		if slices.Contains(s[1:], k) {
			return true
		}
	}
	return false
}

func pendingHeads(seqs [][]*Class) []string {
	var names []string
	for _, s := range seqs {
		if !slices.Contains(names, s[0].Name) {
			names = append(names, s[0].Name)
		}
	}
	return names
}

// MRO returns the method resolution order, starting with c itself.
func (c *Class) MRO() []*Class {
	return append([]*Class(nil), c.mro...)
}

// Method returns the merged overloads of a method name, bound to the
// receiver calling convention.
func (c *Class) Method(name string) (*BoundMethod, bool) {
	s, ok := c.methods[name]
	if !ok {
		return nil, false
	}
	return &BoundMethod{set: s}, true
}

// BoundMethod is the merged overload set of one method. Every call takes
// the receiver explicitly; the arguments are matched without it.
type BoundMethod struct {
	set *dispatch.Set
}

func (m *BoundMethod) Name() string { return m.set.Name() }

func (m *BoundMethod) Len() int { return m.set.Len() }

// Entries returns the merged entries, local ones first.
func (m *BoundMethod) Entries() []*dispatch.Entry { return m.set.Entries() }

func (m *BoundMethod) Collisions() []dispatch.CollisionWarning { return m.set.Collisions() }

func (m *BoundMethod) Resolve(args ...any) (*dispatch.Entry, []any, error) {
	return m.set.Resolve(args...)
}

// Call dispatches args and invokes the selected overload on self.
func (m *BoundMethod) Call(self any, args ...any) (any, error) {
	e, bound, err := m.set.Resolve(args...)
	if err != nil {
		return nil, err
	}
	return e.Func(append([]any{self}, bound...)...)
}

func (m *BoundMethod) Doc() string { return m.set.Doc() }

func (m *BoundMethod) Help(args ...any) (string, error) { return m.set.Help(args...) }

// Declares reports whether the class body itself declares the method.
func (c *Class) Declares(name string) bool {
	_, ok := c.local[name]
	return ok
}

// MethodNames lists every callable method, inherited ones included, sorted.
func (c *Class) MethodNames() []string {
	out := make([]string, 0, len(c.methods))
	for m := range c.methods {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Collisions returns the collisions found among the class's own declarations.
func (c *Class) Collisions() []dispatch.CollisionWarning {
	return append([]dispatch.CollisionWarning(nil), c.collisions...)
}

// IsSubclassOf reports whether other appears in c's resolution order.
func (c *Class) IsSubclassOf(other *Class) bool {
	for _, k := range c.mro {
		if k == other {
			return true
		}
	}
	return false
}

// Resolve selects the overload of method that accepts args.
func (c *Class) Resolve(method string, args ...any) (*dispatch.Entry, []any, error) {
	set, ok := c.methods[method]
	if !ok {
		return nil, nil, &MethodNotFoundError{Class: c.Name, Method: method}
	}
	return set.Resolve(args...)
}

// Call dispatches method on self. args exclude the receiver.
func (c *Class) Call(self any, method string, args ...any) (any, error) {
	m, ok := c.Method(method)
	if !ok {
		return nil, &MethodNotFoundError{Class: c.Name, Method: method}
	}
	return m.Call(self, args...)
}

// Construct dispatches the init method on a freshly allocated receiver.
func (c *Class) Construct(self any, args ...any) (any, error) {
	return c.Call(self, config.InitMethodName, args...)
}

// Doc renders the merged overloads of method.
func (c *Class) Doc(method string) (string, error) {
	set, ok := c.methods[method]
	if !ok {
		return "", &MethodNotFoundError{Class: c.Name, Method: method}
	}
	return set.Doc(), nil
}

// Help returns the documentation of the overload args would dispatch to.
func (c *Class) Help(method string, args ...any) (string, error) {
	e, _, err := c.Resolve(method, args...)
	if err != nil {
		return "", err
	}
	return e.Doc, nil
}

func (c *Class) String() string { return c.Name }

type MethodNotFoundError struct {
	Class  string
	Method string
}

func (e *MethodNotFoundError) Error() string {
	return fmt.Sprintf("class %s has no method %s", e.Class, e.Method)
}

// InconsistentMROError is returned when the bases admit no order that keeps
// every class ahead of its own bases.
type InconsistentMROError struct {
	Class   string
	Pending []string
}

func (e *InconsistentMROError) Error() string {
	return fmt.Sprintf("class %s: cannot order bases %s consistently", e.Class, strings.Join(e.Pending, ", "))
}
