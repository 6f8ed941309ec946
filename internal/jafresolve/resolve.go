// Package jafresolve runs the declaration pass between parsing and static
// analysis (§4.4): it patches every bare-identifier type reference the
// parser deferred, resolves each struct's interface list, flattens struct
// methods into the function table, and assigns final Functions/Globals
// indices, detecting the main and message entry points by name.
//
// The two-pass shape (name table built first, then every reference
// resolved against it) is adapted from the teacher's lang/resolver, which
// builds a block-scoped binding environment before resolving uses; JAF has
// no nested functions or closures, so the environment collapses to a flat
// pass over each compilation unit's declarations plus a generic jafast.Walk
// over each function body to reach the type names nested in local variable
// declarations and `new` expressions.
package jafresolve

import (
	"github.com/mna/ain-tools/internal/ainfile"
	"github.com/mna/ain-tools/internal/aintype"
	"github.com/mna/ain-tools/internal/jafast"
	"github.com/mna/ain-tools/internal/jaferr"
	"github.com/mna/ain-tools/internal/jaftoken"
)

// Result carries the non-fatal diagnostics produced while resolving a
// build, alongside the flattened function/global declarations later
// passes walk in file order.
type Result struct {
	Warnings []jaferr.Warning

	// Funcs lists every FuncDecl in registration order (each file's
	// declarations in order, a struct's constructor/methods/destructor
	// at the point of its struct declaration), aligned 1:1 with af.Functions[1:]
	// (index 0 is the mandatory NULL entry jafresolve never touches).
	Funcs []*jafast.FuncDecl

	// Globals lists every GlobalDecl in registration order, aligned 1:1
	// with af.Globals.
	Globals []*jafast.GlobalDecl
}

// nameTable indexes every tag an identifier used as a type specifier
// might name, built once all files of a build have been parsed (and so
// every struct/interface/functype/delegate/enum tag is already present in
// af, since the parser registers tags as soon as it sees them).
type nameTable struct {
	structs   map[string]int // af.Structures index, IsInterface == false
	ifaces    map[string]int // af.Structures index, IsInterface == true
	functypes map[string]int
	delegates map[string]int
	enums     map[string]int
}

func buildNameTable(af *ainfile.AinFile) *nameTable {
	nt := &nameTable{
		structs:   map[string]int{},
		ifaces:    map[string]int{},
		functypes: map[string]int{},
		delegates: map[string]int{},
		enums:     map[string]int{},
	}
	for i, s := range af.Structures {
		if s.IsInterface {
			nt.ifaces[s.Name] = i
		} else {
			nt.structs[s.Name] = i
		}
	}
	for i, ft := range af.FunctionTypes {
		nt.functypes[ft.Name] = i
	}
	for i, d := range af.Delegates {
		nt.delegates[d.Name] = i
	}
	for i, e := range af.Enums {
		nt.enums[e.Name] = i
	}
	return nt
}

// lookup resolves name against every tag namespace, writing the result
// into dst (which the parser left holding a placeholder Struct tag) and
// reporting an error if name does not match any known tag.
func (nt *nameTable) lookup(dst *aintype.Type, name string, pos jaftoken.Position) *jaferr.Error {
	ref := dst.IsRef
	if i, ok := nt.structs[name]; ok {
		*dst = aintype.NewStruct(aintype.Struct, i)
	} else if i, ok := nt.ifaces[name]; ok {
		*dst = aintype.NewStruct(aintype.Iface, i)
	} else if i, ok := nt.functypes[name]; ok {
		*dst = aintype.New(aintype.FuncType)
		dst.FuncIndex = i
	} else if i, ok := nt.delegates[name]; ok {
		*dst = aintype.New(aintype.Delegate)
		dst.FuncIndex = i
	} else if i, ok := nt.enums[name]; ok {
		*dst = aintype.New(aintype.Enum)
		dst.StructIndex = i
	} else {
		return jaferr.At(jaferr.Unresolved, pos, "", "undefined type: %s", name)
	}
	dst.IsRef = ref
	return nil
}

// resolveField patches dst in place against name, diving into dst.Elem
// first when dst is an array: the parser always leaves a named element
// type's placeholder in the innermost Elem, never in the array Type
// itself (§4.3). A blank name means the field held a builtin type
// already resolved at parse time; resolveField is then a no-op.
func (nt *nameTable) resolveField(dst *aintype.Type, name string, pos jaftoken.Position) *jaferr.Error {
	if name == "" {
		return nil
	}
	target := dst
	for target.Tag == aintype.Array || target.Tag == aintype.RefArray {
		target = target.Elem
	}
	return nt.lookup(target, name, pos)
}

// Resolve patches every bare-identifier type reference left by parsing
// files against af's tag tables, resolves each struct's interface list,
// flattens struct methods into af.Functions, and assigns final indices to
// free functions and globals, detecting main/message by name and
// signature.
//
// files must be the complete, in-build-order list of every file parsed
// into af.
func Resolve(fset *jaftoken.FileSet, af *ainfile.AinFile, files []*jafast.File) (*Result, error) {
	nt := buildNameTable(af)

	for _, f := range files {
		for _, decl := range f.Decls {
			if err := nt.resolveDeclTypes(fset, decl); err != nil {
				return nil, err
			}
		}
	}

	res := &Result{}
	for _, f := range files {
		for _, decl := range f.Decls {
			if err := res.registerDecl(af, nt, fset, decl); err != nil {
				return nil, err
			}
		}
	}

	if err := res.resolveInterfaces(af, nt, fset, files); err != nil {
		return nil, err
	}

	res.detectEntryPoints(af)
	return res, nil
}

// resolveDeclTypes patches every *TypeName-tagged field reachable from
// decl, including those nested inside a function body or global
// initializer (local variable declarations and `new` expressions),
// walked generically via jafast.Walk since they can be arbitrarily deep.
func (nt *nameTable) resolveDeclTypes(fset *jaftoken.FileSet, decl jafast.Decl) error {
	switch d := decl.(type) {
	case *jafast.FuncDecl:
		return nt.resolveFuncTypes(fset, d)
	case *jafast.GlobalDecl:
		if err := nt.resolveField(&d.Typ, d.TypeName, fset.Position(d.Start)); err != nil {
			return err
		}
		return nt.resolveExprTypes(fset, d.Init)
	case *jafast.StructDecl:
		for _, m := range d.Members {
			if err := nt.resolveField(&m.Typ, m.TypeName, fset.Position(d.Start)); err != nil {
				return err
			}
		}
		for _, m := range d.Methods {
			if err := nt.resolveFuncTypes(fset, m); err != nil {
				return err
			}
		}
	case *jafast.FuncTypeDecl:
		pos := fset.Position(d.Start)
		if err := nt.resolveField(&d.Return, d.ReturnTypeName, pos); err != nil {
			return err
		}
		for _, p := range d.Params {
			if err := nt.resolveField(&p.Typ, p.TypeName, pos); err != nil {
				return err
			}
		}
	case *jafast.HLLDecl:
		pos := fset.Position(d.Start)
		for _, fn := range d.Functions {
			if err := nt.resolveField(&fn.Return, fn.ReturnTypeName, pos); err != nil {
				return err
			}
			for _, p := range fn.Params {
				if err := nt.resolveField(&p.Typ, p.TypeName, pos); err != nil {
					return err
				}
			}
		}
	case *jafast.EnumDecl:
		// no type-specifier fields
	default:
		return jaferr.New(jaferr.InternalError, "jafresolve: unexpected decl %T", decl)
	}
	return nil
}

func (nt *nameTable) resolveFuncTypes(fset *jaftoken.FileSet, d *jafast.FuncDecl) error {
	pos := fset.Position(d.Start)
	if err := nt.resolveField(&d.Return, d.ReturnTypeName, pos); err != nil {
		return err
	}
	for _, p := range d.Params {
		if err := nt.resolveField(&p.Typ, p.TypeName, pos); err != nil {
			return err
		}
	}
	if d.Body != nil {
		if err := nt.resolveStmtTypes(fset, d.Body); err != nil {
			return err
		}
	}
	return nil
}

// resolveStmtTypes walks every VarDeclStmt/NewExpr nested under s via
// jafast.Walk, patching each one's TypeName in place. The walk aborts and
// surfaces the first resolution failure through a closed-over error,
// since Visitor has no error return of its own.
func (nt *nameTable) resolveStmtTypes(fset *jaftoken.FileSet, s jafast.Stmt) error {
	var firstErr error
	var v jafast.VisitorFunc
	v = jafast.VisitorFunc(func(n jafast.Node, dir jafast.VisitDirection) jafast.Visitor {
		if dir != jafast.VisitEnter || firstErr != nil {
			return nil
		}
		switch x := n.(type) {
		case *jafast.VarDeclStmt:
			start, _ := x.Span()
			if err := nt.resolveField(&x.Typ, x.TypeName, fset.Position(start)); err != nil {
				firstErr = err
				return nil
			}
		case *jafast.NewExpr:
			start, _ := x.Span()
			if err := nt.resolveField(&x.Typ, x.TypeName, fset.Position(start)); err != nil {
				firstErr = err
				return nil
			}
		}
		return v
	})
	jafast.Walk(v, s)
	return firstErr
}

func (nt *nameTable) resolveExprTypes(fset *jaftoken.FileSet, e jafast.Expr) error {
	if e == nil {
		return nil
	}
	var firstErr error
	var v jafast.VisitorFunc
	v = jafast.VisitorFunc(func(n jafast.Node, dir jafast.VisitDirection) jafast.Visitor {
		if dir != jafast.VisitEnter || firstErr != nil {
			return nil
		}
		if x, ok := n.(*jafast.NewExpr); ok {
			start, _ := x.Span()
			if err := nt.resolveField(&x.Typ, x.TypeName, fset.Position(start)); err != nil {
				firstErr = err
				return nil
			}
		}
		return v
	})
	jafast.Walk(v, e)
	return firstErr
}

func (res *Result) registerDecl(af *ainfile.AinFile, nt *nameTable, fset *jaftoken.FileSet, decl jafast.Decl) error {
	switch d := decl.(type) {
	case *jafast.FuncDecl:
		return res.registerFunc(af, d)
	case *jafast.GlobalDecl:
		res.registerGlobal(af, d)
	case *jafast.StructDecl:
		return res.registerStructMethods(af, d)
	// FuncTypeDecl, EnumDecl and HLLDecl are already fully registered by
	// the parser at the point their tag is declared; nothing further to
	// do in the declaration pass.
	case *jafast.FuncTypeDecl, *jafast.EnumDecl, *jafast.HLLDecl:
	default:
		return jaferr.New(jaferr.InternalError, "jafresolve: unexpected decl %T", decl)
	}
	return nil
}

func (res *Result) registerFunc(af *ainfile.AinFile, d *jafast.FuncDecl) error {
	d.FuncIndex = len(af.Functions)
	fn := &ainfile.Function{Name: d.Name, Index: d.FuncIndex, NumArgs: len(d.Params)}
	fn.ReturnType = d.Return
	for _, p := range d.Params {
		fn.Vars = append(fn.Vars, &ainfile.Variable{Name: p.Name, Typ: p.Typ})
	}
	af.Functions = append(af.Functions, fn)
	res.Funcs = append(res.Funcs, d)
	return nil
}

func (res *Result) registerGlobal(af *ainfile.AinFile, d *jafast.GlobalDecl) {
	d.GlobalIndex = len(af.Globals)
	af.Globals = append(af.Globals, &ainfile.Variable{Name: d.Name, Typ: d.Typ})
	res.Globals = append(res.Globals, d)
}

// registerStructMethods flattens a struct's constructor/destructor/method
// FuncDecls into af.Functions using their already-qualified
// "StructName@method" names (assigned by the parser, §4.4), and records
// the constructor/destructor indices on both the jafast and ainfile
// struct records. An interface's Methods are prototype-only (no body, no
// backing Functions entry); they instead populate IfaceMethods so
// resolveInterfaces can size each implementer's vtable slice.
func (res *Result) registerStructMethods(af *ainfile.AinFile, d *jafast.StructDecl) error {
	s := af.Structures[d.StructIndex]
	if d.IsInterface {
		for _, m := range d.Methods {
			s.IfaceMethods = append(s.IfaceMethods, &ainfile.FunctionType{
				Name:    m.Name,
				NumArgs: len(m.Params),
			})
		}
		return nil
	}
	for _, m := range d.Methods {
		if err := res.registerFunc(af, m); err != nil {
			return err
		}
		switch {
		case m.IsConstructor:
			d.Constructor = m.FuncIndex
			s.Constructor = m.FuncIndex
		case m.IsDestructor:
			d.Destructor = m.FuncIndex
			s.Destructor = m.FuncIndex
		}
	}
	for _, mem := range d.Members {
		s.Members = append(s.Members, &ainfile.Variable{Name: mem.Name, Typ: mem.Typ})
	}
	return nil
}

// resolveInterfaces patches each struct's InterfaceNames into concrete
// InterfaceRef/InterfaceEntry records now that every struct/interface tag
// in the build is known. Vtable offsets are assigned sequentially per
// struct, in declaration order, matching the original's layout of an
// interface's methods contiguously in the implementing struct's vtable.
func (res *Result) resolveInterfaces(af *ainfile.AinFile, nt *nameTable, fset *jaftoken.FileSet, files []*jafast.File) error {
	for _, f := range files {
		for _, decl := range f.Decls {
			d, ok := decl.(*jafast.StructDecl)
			if !ok || len(d.InterfaceNames) == 0 {
				continue
			}
			s := af.Structures[d.StructIndex]
			offset := 0
			for _, name := range d.InterfaceNames {
				idx, ok := nt.ifaces[name]
				if !ok {
					pos := fset.Position(d.Start)
					return jaferr.At(jaferr.Unresolved, pos, "", "undefined interface: %s", name)
				}
				d.Interfaces = append(d.Interfaces, jafast.InterfaceRef{StructIndex: idx, VtableOffset: offset})
				s.Interfaces = append(s.Interfaces, ainfile.InterfaceEntry{StructType: idx, VtableOffset: offset})
				offset += len(af.Structures[idx].IfaceMethods)
			}
		}
	}
	return nil
}

// detectEntryPoints sets af.MainFunction/MessageFunction from the free
// functions named "main" (int main(void) or void main(void)) and
// "message" (void message(void)), matching §3.2's invariant that these
// are discovered by name rather than declared specially.
func (res *Result) detectEntryPoints(af *ainfile.AinFile) {
	for _, d := range res.Funcs {
		if d.StructIndex != -1 {
			continue // methods never satisfy main/message
		}
		switch d.Name {
		case "main":
			if len(d.Params) == 0 {
				af.MainFunction = d.FuncIndex
			}
		case "message":
			if len(d.Params) == 0 {
				af.MessageFunction = d.FuncIndex
			}
		}
	}
}
