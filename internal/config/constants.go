package config

// ConfigFileNames are the recognized configuration file names, in lookup order.
var ConfigFileNames = []string{"overload.yaml", "overload.yml", "overload.toml"}

// IsTestMode indicates if the program is running under go test.
// Diagnostics switch off colour and timestamps in this mode.
var IsTestMode = false

// DefaultVetSeparator splits an overloaded Go function name into its base
// name and overload index (e.g. Put__0, Put__1).
const DefaultVetSeparator = "__"

// InitMethodName is the method dispatched by Construct.
const InitMethodName = "init"

// Collision reporting policies.
const (
	CollisionsWarn   = "warn"
	CollisionsSilent = "silent"
)

// Colour modes for diagnostics output.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Built-in annotation names
const (
	AnyTypeName      = "Any"
	NoneTypeName     = "None"
	IterableTypeName = "Iterable"
	SequenceTypeName = "Sequence"
	MappingTypeName  = "Mapping"
	OptionalTypeName = "Optional"
	UnionTypeName    = "Union"
)

// MaxNestingDepth bounds recursion into nested container values.
const MaxNestingDepth = 64
