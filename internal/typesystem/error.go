package typesystem

import "fmt"

// SignatureError indicates a malformed signature or type annotation.
// Pos is the byte offset into the annotation text, or -1 when the error
// is structural rather than tied to a position.
type SignatureError struct {
	Pos int
	Msg string
}

func (e *SignatureError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("invalid signature: %s", e.Msg)
	}
	return fmt.Sprintf("invalid signature at offset %d: %s", e.Pos, e.Msg)
}

// UnknownTypeError indicates an annotation referenced an undefined type name.
type UnknownTypeError struct {
	Name string
	Pos  int
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %q at offset %d", e.Name, e.Pos)
}

func NewUnknownTypeError(name string, pos int) *UnknownTypeError {
	return &UnknownTypeError{Name: name, Pos: pos}
}
