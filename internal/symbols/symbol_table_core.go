package symbols

import (
	"fmt"
	"sync"

	"github.com/funvibe/overload/internal/class"
	"github.com/funvibe/overload/internal/dispatch"
	"github.com/funvibe/overload/internal/typesystem"
)

type SymbolKind int

type ScopeType int

const (
	ScopeGlobal ScopeType = iota // Process or registry wide
	ScopeLocal                   // Layered over an outer table; shadows it by name
)

const (
	FunctionSymbol SymbolKind = iota
	ClassSymbol
)

func (k SymbolKind) String() string {
	if k == ClassSymbol {
		return "class"
	}
	return "function"
}

// Symbol describes one name visible in a table.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Set   *dispatch.Set // for FunctionSymbol
	Class *class.Class  // for ClassSymbol
	Local bool          // defined in this table rather than an outer one
}

// SymbolTable maps overloaded function names to their overload sets and
// class names to built classes. Sets are created lazily on first
// registration and live as long as the table.
type SymbolTable struct {
	mu        sync.RWMutex
	functions map[string]*dispatch.Set
	classes   map[string]*class.Class
	outer     *SymbolTable
	scopeType ScopeType
	matcher   typesystem.Matcher
}

// SymbolNotFoundError indicates a symbol was not found
type SymbolNotFoundError struct {
	Name string
	Kind SymbolKind
}

func (e *SymbolNotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Name)
}

func NewSymbolNotFoundError(name string, kind SymbolKind) *SymbolNotFoundError {
	return &SymbolNotFoundError{Name: name, Kind: kind}
}

// ClassExistsError is returned when a class name is defined twice in one table.
type ClassExistsError struct {
	Name string
}

func (e *ClassExistsError) Error() string {
	return fmt.Sprintf("class already defined: %s", e.Name)
}
