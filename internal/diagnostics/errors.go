package diagnostics

import (
	"fmt"
	"strings"
)

type ErrorCode string

const (
	// Warnings
	WarnW001 ErrorCode = "W001" // Overlapping overload signatures

	// Errors
	ErrE001 ErrorCode = "E001" // No matching overload
	ErrE002 ErrorCode = "E002" // Malformed signature
)

type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Position locates a diagnostic in source. The zero value means the
// diagnostic was raised at runtime and has no source location.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.IsValid() {
		return ""
	}
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

type DiagnosticError struct {
	Code ErrorCode
	Pos  Position
	Name string // overloaded function or method the diagnostic is about
	Msg  string
}

func NewError(code ErrorCode, pos Position, name, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Pos: pos, Name: name, Msg: msg}
}

func NewErrorf(code ErrorCode, pos Position, name, format string, args ...any) *DiagnosticError {
	return NewError(code, pos, name, fmt.Sprintf(format, args...))
}

func (e *DiagnosticError) Severity() Severity {
	if strings.HasPrefix(string(e.Code), "W") {
		return SeverityWarning
	}
	return SeverityError
}

func (e *DiagnosticError) Error() string {
	var sb strings.Builder
	if e.Pos.IsValid() {
		sb.WriteString(e.Pos.String())
		sb.WriteString(": ")
	}
	fmt.Fprintf(&sb, "%s %s", e.Severity(), e.Code)
	if e.Name != "" {
		fmt.Fprintf(&sb, " in '%s'", e.Name)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Msg)
	return sb.String()
}
