package overload

import (
	"github.com/funvibe/overload/internal/class"
	"github.com/funvibe/overload/internal/config"
	"github.com/funvibe/overload/internal/diagnostics"
	"github.com/funvibe/overload/internal/dispatch"
	"github.com/funvibe/overload/internal/symbols"
	"github.com/funvibe/overload/internal/typesystem"
)

// Type specs
type Spec = typesystem.Spec
type Simple = typesystem.Simple
type Container = typesystem.Container
type Union = typesystem.Union
type Any = typesystem.Any
type ContainerKind = typesystem.ContainerKind
type Nominal = typesystem.Nominal
type Signature = typesystem.Signature
type Param = typesystem.Param
type Matcher = typesystem.Matcher
type Universe = typesystem.Universe
type Kwargs = typesystem.Kwargs

// Dispatch
type Func = dispatch.Func
type Entry = dispatch.Entry
type CollisionWarning = dispatch.CollisionWarning
type NoMatchingOverloadError = dispatch.NoMatchingOverloadError

// Classes
type Class = class.Class
type MethodFunc = class.MethodFunc
type MethodNotFoundError = class.MethodNotFoundError

// Symbols
type Symbol = symbols.Symbol
type SymbolKind = symbols.SymbolKind

const (
	FunctionSymbol = symbols.FunctionSymbol
	ClassSymbol    = symbols.ClassSymbol
)

// Errors
type SignatureError = typesystem.SignatureError
type UnknownTypeError = typesystem.UnknownTypeError
type SymbolNotFoundError = symbols.SymbolNotFoundError
type ClassExistsError = symbols.ClassExistsError

// Diagnostics
type Config = config.Config
type Reporter = diagnostics.Reporter
type Diagnostic = diagnostics.DiagnosticError
type Collector = diagnostics.Collector

const (
	Iterable = typesystem.Iterable
	Sequence = typesystem.Sequence
	Mapping  = typesystem.Mapping
)

var (
	None                  = typesystem.None
	ErrNoMatchingOverload = dispatch.ErrNoMatchingOverload
)

// TypeOf returns the Simple spec for the Go type T.
func TypeOf[T any]() Spec {
	return typesystem.TypeOf[T]()
}

func NewSignature(specs ...Spec) Signature {
	return typesystem.NewSignature(specs...)
}

func NewContainer(kind ContainerKind, elem Spec) Container {
	return typesystem.NewContainer(kind, elem)
}

func NewMapping(key, elem Spec) Container {
	return typesystem.NewMapping(key, elem)
}

func NewUnion(members ...Spec) Spec {
	return typesystem.NormalizeUnion(members...)
}

func Optional(s Spec) Spec {
	return typesystem.Optional(s)
}

// NewUniverse returns the builtin annotation names.
func NewUniverse() *Universe {
	return typesystem.NewUniverse()
}

// LoadConfig reads an overload.yaml or overload.toml file.
func LoadConfig(path string) (*Config, error) {
	return config.LoadConfig(path)
}

// IsNoMatch reports whether err means no overload accepted the arguments.
func IsNoMatch(err error) bool {
	return dispatch.IsNoMatch(err)
}
