package symbols

import (
	"sort"

	"github.com/funvibe/overload/internal/class"
	"github.com/funvibe/overload/internal/dispatch"
	"github.com/funvibe/overload/internal/typesystem"
)

func NewEmptySymbolTable(matcher typesystem.Matcher) *SymbolTable {
	return &SymbolTable{
		functions: make(map[string]*dispatch.Set),
		classes:   make(map[string]*class.Class),
		scopeType: ScopeGlobal,
		matcher:   matcher,
	}
}

// NewEnclosedSymbolTable layers a new table over outer. Lookups fall back
// to outer; definitions stay local and shadow outer names entirely.
func NewEnclosedSymbolTable(outer *SymbolTable) *SymbolTable {
	st := NewEmptySymbolTable(outer.matcher)
	st.outer = outer
	st.scopeType = ScopeLocal
	return st
}

// Outer returns the outer scope symbol table
func (s *SymbolTable) Outer() *SymbolTable {
	return s.outer
}

func (s *SymbolTable) IsGlobalScope() bool {
	return s.scopeType == ScopeGlobal
}

func (s *SymbolTable) Matcher() typesystem.Matcher {
	return s.matcher
}

// AddFunction adds an overload to the local set for name, creating the set
// on first use. An outer set with the same name is shadowed, not extended.
// A rejected overload leaves the table unchanged.
func (s *SymbolTable) AddFunction(name string, sig typesystem.Signature, fn dispatch.Func, doc string) (*dispatch.Entry, []dispatch.CollisionWarning, error) {
	s.mu.RLock()
	set, ok := s.functions[name]
	s.mu.RUnlock()
	if ok {
		return set.Add(sig, fn, doc)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.functions[name]; ok {
		return set.Add(sig, fn, doc)
	}
	set = dispatch.NewSet(name, s.matcher)
	e, warnings, err := set.Add(sig, fn, doc)
	if err != nil {
		return nil, nil, err
	}
	s.functions[name] = set
	return e, warnings, nil
}

// FindFunction looks name up in this table and then in outer scopes.
func (s *SymbolTable) FindFunction(name string) (*dispatch.Set, bool) {
	s.mu.RLock()
	set, ok := s.functions[name]
	s.mu.RUnlock()
	if !ok && s.outer != nil {
		return s.outer.FindFunction(name)
	}
	return set, ok
}

// ResolveFunction is FindFunction with a typed error for unknown names.
func (s *SymbolTable) ResolveFunction(name string) (*dispatch.Set, error) {
	if set, ok := s.FindFunction(name); ok {
		return set, nil
	}
	return nil, NewSymbolNotFoundError(name, FunctionSymbol)
}

// DefineClass adds a built class. Class names are unique per table.
func (s *SymbolTable) DefineClass(c *class.Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.classes[c.Name]; exists {
		return &ClassExistsError{Name: c.Name}
	}
	s.classes[c.Name] = c
	return nil
}

func (s *SymbolTable) FindClass(name string) (*class.Class, bool) {
	s.mu.RLock()
	c, ok := s.classes[name]
	s.mu.RUnlock()
	if !ok && s.outer != nil {
		return s.outer.FindClass(name)
	}
	return c, ok
}

func (s *SymbolTable) ResolveClass(name string) (*class.Class, error) {
	if c, ok := s.FindClass(name); ok {
		return c, nil
	}
	return nil, NewSymbolNotFoundError(name, ClassSymbol)
}

// Lookup returns the symbol for name, preferring functions over classes
// within a scope and inner scopes over outer ones.
func (s *SymbolTable) Lookup(name string) (Symbol, bool) {
	s.mu.RLock()
	set, isFunc := s.functions[name]
	c, isClass := s.classes[name]
	s.mu.RUnlock()
	switch {
	case isFunc:
		return Symbol{Name: name, Kind: FunctionSymbol, Set: set, Local: true}, true
	case isClass:
		return Symbol{Name: name, Kind: ClassSymbol, Class: c, Local: true}, true
	case s.outer != nil:
		sym, ok := s.outer.Lookup(name)
		sym.Local = false
		return sym, ok
	}
	return Symbol{}, false
}

// FunctionNames lists every visible function name, sorted.
func (s *SymbolTable) FunctionNames() []string {
	names := make(map[string]bool)
	for t := s; t != nil; t = t.outer {
		t.mu.RLock()
		for n := range t.functions {
			names[n] = true
		}
		t.mu.RUnlock()
	}
	return sortedKeys(names)
}

// ClassNames lists every visible class name, sorted.
func (s *SymbolTable) ClassNames() []string {
	names := make(map[string]bool)
	for t := s; t != nil; t = t.outer {
		t.mu.RLock()
		for n := range t.classes {
			names[n] = true
		}
		t.mu.RUnlock()
	}
	return sortedKeys(names)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
