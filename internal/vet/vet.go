// Package vet finds overlapping overloads in Go source.
//
// Go has no overloading, so overloaded functions follow a naming
// convention: Area__0, Area__1 and so on are the overloads of Area, tried in
// suffix order. The checker groups such functions (and such methods, per
// receiver type), converts their declared parameter types into overload
// signatures and reports every pair a call could match both of.
package vet

import (
	"fmt"
	"go/token"
	"go/types"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/funvibe/overload/internal/config"
	"github.com/funvibe/overload/internal/diagnostics"
	"github.com/funvibe/overload/internal/dispatch"
	"github.com/funvibe/overload/internal/typesystem"
	"golang.org/x/tools/go/packages"
)

// Overload is one Go function taking part in an overload group.
type Overload struct {
	Name      string // Go name, e.g. Area__1
	Index     int    // numeric suffix
	Pos       token.Position
	Signature typesystem.Signature
}

// Group is the set of overloads sharing a base name. Receiver is the
// receiver type name for methods and empty for package functions.
type Group struct {
	Base      string
	Receiver  string
	Overloads []Overload
}

func (g Group) Name() string {
	if g.Receiver == "" {
		return g.Base
	}
	return g.Receiver + "." + g.Base
}

// Finding records that Second can never be reached for some calls because
// First, which precedes it in suffix order, accepts them too.
type Finding struct {
	Group  string
	First  Overload
	Second Overload
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s overlaps %s", f.Group, f.Second.Name, f.First.Name)
}

func (f Finding) Diagnostic() *diagnostics.DiagnosticError {
	pos := diagnostics.Position{File: f.Second.Pos.Filename, Line: f.Second.Pos.Line, Column: f.Second.Pos.Column}
	return diagnostics.NewErrorf(diagnostics.WarnW001, pos, f.Group,
		"%s%s overlaps %s%s declared at %s", f.Second.Name, f.Second.Signature,
		f.First.Name, f.First.Signature, f.First.Pos)
}

// splitName splits Base<sep>N. ok is false for names outside the convention.
func splitName(name, sep string) (base string, index int, ok bool) {
	i := strings.LastIndex(name, sep)
	if i <= 0 {
		return "", 0, false
	}
	suffix := name[i+len(sep):]
	if suffix == "" || strings.TrimLeft(suffix, "0123456789") != "" {
		return "", 0, false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return "", 0, false
	}
	return name[:i], n, true
}

// Groups collects the overload groups declared at package level in pkg,
// sorted by name; each group's overloads are in suffix order.
func Groups(fset *token.FileSet, pkg *types.Package, sep string) []Group {
	if sep == "" {
		sep = config.DefaultVetSeparator
	}
	byName := make(map[string]*Group)
	add := func(recv string, fn *types.Func) {
		base, index, ok := splitName(fn.Name(), sep)
		if !ok {
			return
		}
		key := base
		if recv != "" {
			key = recv + "." + base
		}
		g, ok := byName[key]
		if !ok {
			g = &Group{Base: base, Receiver: recv}
			byName[key] = g
		}
		g.Overloads = append(g.Overloads, Overload{
			Name:      fn.Name(),
			Index:     index,
			Pos:       fset.Position(fn.Pos()),
			Signature: signatureOf(fn.Type().(*types.Signature)),
		})
	}

	scope := pkg.Scope()
	for _, name := range scope.Names() {
		switch obj := scope.Lookup(name).(type) {
		case *types.Func:
			add("", obj)
		case *types.TypeName:
			if obj.IsAlias() {
				continue
			}
			named, ok := obj.Type().(*types.Named)
			if !ok {
				continue
			}
			for i := 0; i < named.NumMethods(); i++ {
				add(obj.Name(), named.Method(i))
			}
		}
	}

	groups := make([]Group, 0, len(byName))
	for _, g := range byName {
		sort.SliceStable(g.Overloads, func(i, j int) bool {
			return g.Overloads[i].Index < g.Overloads[j].Index
		})
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name() < groups[j].Name() })
	return groups
}

// Check runs registration-time collision detection over one group.
func Check(g Group) []Finding {
	set := dispatch.NewSet(g.Name(), typesystem.DefaultMatcher())
	byIndex := make(map[int]Overload)
	var findings []Finding
	for _, o := range g.Overloads {
		e, warnings, err := set.Add(o.Signature, unreachable, "")
		if err != nil {
			continue
		}
		byIndex[e.Index] = o
		for _, w := range warnings {
			findings = append(findings, Finding{Group: g.Name(), First: byIndex[w.First.Index], Second: o})
		}
	}
	return findings
}

// unreachable stands in for implementations; the checker never dispatches.
func unreachable(...any) (any, error) {
	return nil, fmt.Errorf("static overload entries are not callable")
}

// Analyze returns every finding in pkg.
func Analyze(fset *token.FileSet, pkg *types.Package, sep string) []Finding {
	var findings []Finding
	for _, g := range Groups(fset, pkg, sep) {
		if len(g.Overloads) < 2 {
			continue
		}
		findings = append(findings, Check(g)...)
	}
	return findings
}

// Load loads and type-checks the packages matching patterns, relative to dir.
func Load(dir string, patterns ...string) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedTypes |
			packages.NeedTypesInfo |
			packages.NeedSyntax,
		Dir: dir,
		Env: append(os.Environ(), "GOWORK=off"),
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	var errs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, e.Msg))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors:\n  %s", strings.Join(errs, "\n  "))
	}
	return pkgs, nil
}

// Run checks the packages selected by cfg, reports each finding as a W001
// diagnostic and returns how many there were.
func Run(cfg *config.Config, dir string, rep diagnostics.Reporter) (int, error) {
	pkgs, err := Load(dir, cfg.Vet.Patterns...)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, pkg := range pkgs {
		for _, f := range Analyze(pkg.Fset, pkg.Types, cfg.Vet.Separator) {
			rep.Report(f.Diagnostic())
			n++
		}
	}
	return n, nil
}
