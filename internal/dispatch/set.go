package dispatch

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/funvibe/overload/internal/typesystem"
	"github.com/google/uuid"
)

// Func is the uniform calling convention of a registered implementation.
type Func func(args ...any) (any, error)

// Entry is one registered overload. Entries are immutable once added.
type Entry struct {
	ID        uuid.UUID // stable across sets an entry is merged into
	Index     int       // position in the owning set
	Signature typesystem.Signature
	Func      Func
	Doc       string
	Origin    string // declaring class for methods, empty for free functions
}

type snapshot struct {
	entries    []*Entry
	collisions []CollisionWarning
}

// Set is an ordered collection of overloads registered under one name.
// Writers are serialized; readers work on an immutable snapshot and never block.
type Set struct {
	name    string
	matcher typesystem.Matcher

	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
}

func NewSet(name string, matcher typesystem.Matcher) *Set {
	s := &Set{name: name, matcher: matcher}
	s.snap.Store(&snapshot{})
	return s
}

func (s *Set) Name() string { return s.name }

func (s *Set) Len() int { return len(s.snap.Load().entries) }

// Entries returns the entries in registration order.
func (s *Set) Entries() []*Entry {
	return append([]*Entry(nil), s.snap.Load().entries...)
}

// Collisions returns every collision recorded so far.
func (s *Set) Collisions() []CollisionWarning {
	return append([]CollisionWarning(nil), s.snap.Load().collisions...)
}

// Add appends an implementation. The returned warnings list the earlier
// entries whose signatures overlap the new one; the entry is appended anyway.
// A malformed signature leaves the set untouched.
func (s *Set) Add(sig typesystem.Signature, fn Func, doc string) (*Entry, []CollisionWarning, error) {
	return s.add(sig, fn, doc, "")
}

// AddOrigin is Add for entries declared by a class.
func (s *Set) AddOrigin(sig typesystem.Signature, fn Func, doc, origin string) (*Entry, []CollisionWarning, error) {
	return s.add(sig, fn, doc, origin)
}

func (s *Set) add(sig typesystem.Signature, fn Func, doc, origin string) (*Entry, []CollisionWarning, error) {
	if fn == nil {
		return nil, nil, fmt.Errorf("registering %s%s: nil implementation", s.name, sig)
	}
	if err := sig.Validate(); err != nil {
		return nil, nil, fmt.Errorf("registering %s%s: %w", s.name, sig, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.snap.Load()
	e := &Entry{
		ID:        uuid.New(),
		Index:     len(old.entries),
		Signature: sig,
		Func:      fn,
		Doc:       doc,
		Origin:    origin,
	}

	var found []CollisionWarning
	for _, prev := range old.entries {
		if typesystem.Collide(prev.Signature, sig) {
			found = append(found, CollisionWarning{Name: s.name, First: prev, Second: e})
		}
	}

	next := &snapshot{
		entries:    append(append(make([]*Entry, 0, len(old.entries)+1), old.entries...), e),
		collisions: append(append([]CollisionWarning(nil), old.collisions...), found...),
	}
	s.snap.Store(next)
	return e, found, nil
}

// Resolve returns the first entry, in registration order, whose signature
// accepts args, together with args completed by parameter defaults.
func (s *Set) Resolve(args ...any) (*Entry, []any, error) {
	snap := s.snap.Load()
	for _, e := range snap.entries {
		if bound, ok := s.matcher.Bind(e.Signature, args); ok {
			return e, bound, nil
		}
	}
	sigs := make([]string, len(snap.entries))
	for i, e := range snap.entries {
		sigs[i] = e.Signature.String()
	}
	return nil, nil, &NoMatchingOverloadError{Name: s.name, ArgTypes: DescribeArgs(args), Signatures: sigs}
}

// Call resolves args and invokes the selected implementation.
// Errors and panics from the implementation propagate unchanged.
func (s *Set) Call(args ...any) (any, error) {
	e, bound, err := s.Resolve(args...)
	if err != nil {
		return nil, err
	}
	return e.Func(bound...)
}

// Doc renders every signature with its documentation.
func (s *Set) Doc() string {
	entries := s.snap.Load().entries
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("- %s: %s", e.Signature, e.Doc)
	}
	return fmt.Sprintf("Overloaded function '%s' with %d signatures:\n", s.name, len(entries)) +
		strings.Join(lines, "\n")
}

// Help returns the documentation of the entry args resolve to.
func (s *Set) Help(args ...any) (string, error) {
	e, _, err := s.Resolve(args...)
	if err != nil {
		return "", err
	}
	return e.Doc, nil
}

// Merge builds a set named name holding the entries of sets in order.
// Entries keep their IDs and are re-indexed; each collision of a source set
// is carried over naming the merged set and the re-indexed entries.
func Merge(name string, matcher typesystem.Matcher, sets ...*Set) *Set {
	merged := NewSet(name, matcher)
	next := &snapshot{}
	copies := make(map[uuid.UUID]*Entry)
	var logs [][]CollisionWarning
	for _, src := range sets {
		if src == nil {
			continue
		}
		snap := src.snap.Load()
		for _, e := range snap.entries {
			cp := *e
			cp.Index = len(next.entries)
			next.entries = append(next.entries, &cp)
			copies[cp.ID] = &cp
		}
		logs = append(logs, snap.collisions)
	}
	for _, log := range logs {
		for _, w := range log {
			next.collisions = append(next.collisions, CollisionWarning{
				Name:   name,
				First:  copies[w.First.ID],
				Second: copies[w.Second.ID],
			})
		}
	}
	merged.snap.Store(next)
	return merged
}

// IsNoMatch reports whether err is a dispatch failure rather than an
// error returned by an implementation.
func IsNoMatch(err error) bool {
	return errors.Is(err, ErrNoMatchingOverload)
}
