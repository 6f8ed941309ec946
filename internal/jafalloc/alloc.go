// Package jafalloc implements the variable allocator that runs between
// static analysis and emission (§4.6): it walks every function body in
// declaration order, assigns each local a sequential slot number, and
// appends the matching ainfile.Variable entries after the function's
// parameters so the emitter and the on-disk function table agree on
// layout.
//
// The reproducible, order-of-appearance walk is the same shape as the
// teacher's lang/resolver block-scope pass, specialized here to a flat
// slot counter instead of a name environment since JAF locals, unlike the
// teacher's language, never shadow by block — each declared name already
// got a unique AST node during parsing.
package jafalloc

import (
	"strconv"

	"github.com/mna/ain-tools/internal/ainfile"
	"github.com/mna/ain-tools/internal/aintype"
	"github.com/mna/ain-tools/internal/jafast"
	"github.com/mna/ain-tools/internal/jafresolve"
)

// voidFillerName is the placeholder occupying a ref-scalar local's second
// slot (§4.6).
const voidFillerName = "<void>"

// Allocate assigns slots to every local declared in res.Funcs, mutating
// each VarDeclStmt/DummyRefExpr in place and extending the corresponding
// ainfile.Function.Vars entries past the parameters registerFunc already
// installed.
func Allocate(af *ainfile.AinFile, res *jafresolve.Result) error {
	for _, fn := range res.Funcs {
		if fn.Body == nil {
			continue
		}
		a := &funcAllocator{
			af:   af,
			fn:   af.Functions[fn.FuncIndex],
			next: len(fn.Params),
		}
		jafast.Walk(jafast.VisitorFunc(a.visit), fn.Body)
	}
	return nil
}

type funcAllocator struct {
	af   *ainfile.AinFile
	fn   *ainfile.Function
	next int
}

func (a *funcAllocator) visit(n jafast.Node, dir jafast.VisitDirection) jafast.Visitor {
	if dir != jafast.VisitEnter {
		return nil
	}
	switch x := n.(type) {
	case *jafast.VarDeclStmt:
		x.Slot = a.alloc(x.Name, x.Typ)
	case *jafast.DummyRefExpr:
		x.Slot = a.alloc(hiddenLocalName(a.next), x.Typ)
	}
	return jafast.VisitorFunc(a.visit)
}

// alloc assigns the next slot to a local of the given name and type,
// installing a second "<void>" filler slot immediately after when typ is
// a ref-scalar (§4.6).
func (a *funcAllocator) alloc(name string, typ aintype.Type) int {
	slot := a.next
	a.fn.Vars = append(a.fn.Vars, &ainfile.Variable{Name: name, Typ: typ})
	a.next++
	if typ.IsRefScalar() {
		a.fn.Vars = append(a.fn.Vars, &ainfile.Variable{Name: voidFillerName, Typ: aintype.New(aintype.Void)})
		a.next++
	}
	return slot
}

// hiddenLocalName names a compiler-introduced dummy-ref temporary so the
// function's variable table stays human-readable when disassembled.
func hiddenLocalName(slot int) string {
	return "<dummy_ref_" + strconv.Itoa(slot) + ">"
}
