package dispatch

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/funvibe/overload/internal/config"
	"github.com/funvibe/overload/internal/diagnostics"
	"github.com/funvibe/overload/internal/typesystem"
)

// ErrNoMatchingOverload is matched by every *NoMatchingOverloadError.
var ErrNoMatchingOverload = errors.New("no matching overload")

// NoMatchingOverloadError is returned when no registered signature accepts a call.
type NoMatchingOverloadError struct {
	Name       string
	ArgTypes   []string
	Signatures []string
}

func (e *NoMatchingOverloadError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "no matching overload for '%s' with arguments (%s)", e.Name, strings.Join(e.ArgTypes, ", "))
	if len(e.Signatures) == 0 {
		sb.WriteString("; no overloads registered")
		return sb.String()
	}
	sb.WriteString("; tried:")
	for _, sig := range e.Signatures {
		sb.WriteString("\n  ")
		sb.WriteString(sig)
	}
	return sb.String()
}

func (e *NoMatchingOverloadError) Unwrap() error { return ErrNoMatchingOverload }

func (e *NoMatchingOverloadError) Diagnostic() *diagnostics.DiagnosticError {
	return diagnostics.NewErrorf(diagnostics.ErrE001, diagnostics.Position{}, e.Name,
		"no overload accepts (%s)", strings.Join(e.ArgTypes, ", "))
}

// CollisionWarning records that a newly added entry overlaps an earlier one.
// The earlier entry wins at call time for every input both accept.
type CollisionWarning struct {
	Name   string
	First  *Entry
	Second *Entry
}

func (w CollisionWarning) String() string {
	return fmt.Sprintf("overload collision in '%s': #%d %s overlaps #%d %s; the first registered is used",
		w.Name, w.Second.Index, w.Second.Signature, w.First.Index, w.First.Signature)
}

func (w CollisionWarning) Diagnostic() *diagnostics.DiagnosticError {
	return diagnostics.NewErrorf(diagnostics.WarnW001, diagnostics.Position{}, w.Name,
		"entry #%d %s overlaps entry #%d %s; the first registered is used",
		w.Second.Index, w.Second.Signature, w.First.Index, w.First.Signature)
}

// DescribeArgs renders the runtime types of call arguments. Keyword
// arguments are rendered as name=type, sorted by name.
func DescribeArgs(args []any) []string {
	args, kw := typesystem.SplitKwargs(args)
	out := make([]string, 0, len(args)+len(kw))
	for _, a := range args {
		out = append(out, describeType(a))
	}
	names := make([]string, 0, len(kw))
	for name := range kw {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, name+"="+describeType(kw[name]))
	}
	return out
}

func describeType(v any) string {
	if v == nil {
		return config.NoneTypeName
	}
	return reflect.TypeOf(v).String()
}
