// Package jafanalysis implements the static analyser that runs between the
// declaration pass (jafresolve) and the variable allocator (jafalloc):
// it type-checks every function body and global initializer, resolves
// identifier and call references against the declaration tables jafresolve
// built, rewrites property access and delegate assignment into their
// lowered call/opcode shapes, inserts numeric widening casts, replaces
// enum-member references with integer literals, and wraps `new` and
// ref-returning calls used in value context in a DummyRefExpr (§4.5).
// Other constant expressions are not folded: the pass does not call
// jafast.Fold, so arithmetic on literals, casts of literals and ternaries
// with a literal condition reach the emitter unchanged.
//
// The environment-carrying-visitor shape (a stack of name->declaration
// scopes walked alongside the tree) is adapted from the teacher's
// lang/resolver.resolver, generalized here to also carry type information
// since JAF is statically typed where the teacher's language is not.
package jafanalysis

import (
	"errors"
	"fmt"

	"github.com/mna/ain-tools/internal/ainfile"
	"github.com/mna/ain-tools/internal/aintype"
	"github.com/mna/ain-tools/internal/jafast"
	"github.com/mna/ain-tools/internal/jaferr"
	"github.com/mna/ain-tools/internal/jafresolve"
	"github.com/mna/ain-tools/internal/jaftoken"
)

// Result carries the non-fatal diagnostics produced while analysing a
// build.
type Result struct {
	Warnings []jaferr.Warning
}

// varEntry is one binding visible in the current scope stack: a
// parameter or local variable, with its resolved type and the AST node
// jafalloc will later assign a slot to.
type varEntry struct {
	typ  aintype.Type
	decl jafast.Node
}

type scope struct {
	vars map[string]*varEntry
}

// enumConst is a named enum symbol, folded directly into a LiteralExpr at
// every reference (§4.5's constant folding): JAF enums have no runtime
// representation of their own, only the backing int value.
type enumConst struct {
	enumIndex int
	value     int64
}

type analyzer struct {
	fset *jaftoken.FileSet
	af   *ainfile.AinFile

	globals     map[string]*jafast.GlobalDecl
	funcsByName map[string]*ainfile.Function
	structIdx   map[string]int
	ifaceIdx    map[string]int
	enumConsts  map[string]enumConst
	libsByName  map[string]int

	scopes    []*scope
	curStruct int // -1 for free functions

	warnings []jaferr.Warning
	errs     []error
}

// Analyze type-checks every function body and global initializer in res,
// mutating the AST in place (resolved Typ fields, inserted casts/dummy-refs,
// rewritten property/delegate nodes) and returns the accumulated warnings.
func Analyze(fset *jaftoken.FileSet, af *ainfile.AinFile, res *jafresolve.Result) (*Result, error) {
	a := &analyzer{
		fset:        fset,
		af:          af,
		globals:     map[string]*jafast.GlobalDecl{},
		funcsByName: map[string]*ainfile.Function{},
		structIdx:   map[string]int{},
		ifaceIdx:    map[string]int{},
		enumConsts:  map[string]enumConst{},
		libsByName:  map[string]int{},
	}
	for _, g := range res.Globals {
		a.globals[g.Name] = g
	}
	for _, fn := range af.Functions {
		if fn == nil || fn.Name == "" {
			continue // index 0 is the mandatory NULL entry
		}
		a.funcsByName[fn.Name] = fn
	}
	for i, s := range af.Structures {
		if s.IsInterface {
			a.ifaceIdx[s.Name] = i
		} else {
			a.structIdx[s.Name] = i
		}
	}
	for i, e := range af.Enums {
		for _, sym := range e.Symbols {
			a.enumConsts[sym.Name] = enumConst{enumIndex: i, value: int64(sym.Value)}
		}
	}
	for i, lib := range af.Libraries {
		a.libsByName[lib.Name] = i
	}

	for _, g := range res.Globals {
		if err := a.checkGlobal(g); err != nil {
			a.errs = append(a.errs, err)
		}
	}
	for _, fn := range res.Funcs {
		if err := a.checkFunc(fn); err != nil {
			a.errs = append(a.errs, err)
		}
	}

	if len(a.errs) > 0 {
		return nil, errors.Join(a.errs...)
	}
	return &Result{Warnings: a.warnings}, nil
}

func (a *analyzer) pushScope() { a.scopes = append(a.scopes, &scope{vars: map[string]*varEntry{}}) }
func (a *analyzer) popScope()  { a.scopes = a.scopes[:len(a.scopes)-1] }

func (a *analyzer) bind(name string, typ aintype.Type, decl jafast.Node) {
	a.scopes[len(a.scopes)-1].vars[name] = &varEntry{typ: typ, decl: decl}
}

// lookupLocal searches the scope stack innermost-first.
func (a *analyzer) lookupLocal(name string) (*varEntry, bool) {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if v, ok := a.scopes[i].vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (a *analyzer) checkGlobal(g *jafast.GlobalDecl) error {
	if g.Init == nil {
		return nil
	}
	pos := a.fset.Position(g.Start)
	x, err := a.checkExpr(g.Init, false)
	if err != nil {
		return err
	}
	x, err = a.coerceAssign(g.Typ, x, pos)
	if err != nil {
		return err
	}
	g.Init = x
	return nil
}

func (a *analyzer) checkFunc(fn *jafast.FuncDecl) error {
	a.curStruct = fn.StructIndex
	a.pushScope()
	defer a.popScope()
	for _, p := range fn.Params {
		a.bind(p.Name, p.Typ, p)
	}
	if fn.Body == nil {
		return nil // prototype-only (HLL, interface method)
	}
	return a.checkBlock(fn.Body, fn.Return)
}

// typeErr reports a fatal type error at pos. The error carries no source
// excerpt, since jaftoken.File has no source-excerpt accessor; the
// message callers pass is the only description of the failing construct.
func (a *analyzer) typeErr(pos jaftoken.Pos, format string, args ...any) error {
	p := a.fset.Position(pos)
	return jaferr.At(jaferr.TypeError, p, "", format, args...)
}

func (a *analyzer) unresolvedErr(pos jaftoken.Pos, format string, args ...any) error {
	p := a.fset.Position(pos)
	return jaferr.At(jaferr.Unresolved, p, "", format, args...)
}

func (a *analyzer) arityErr(pos jaftoken.Pos, format string, args ...any) error {
	p := a.fset.Position(pos)
	return jaferr.At(jaferr.ArityError, p, "", format, args...)
}

func startPos(n jafast.Node) jaftoken.Pos { s, _ := n.Span(); return s }

func describeType(t aintype.Type) string { return fmt.Sprint(t) }
