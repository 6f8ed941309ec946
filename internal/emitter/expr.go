package emitter

import (
	"strconv"

	"github.com/mna/ain-tools/internal/aintype"
	"github.com/mna/ain-tools/internal/jafast"
	"github.com/mna/ain-tools/internal/jaftoken"
)

// emitExpr lowers x, leaving exactly one value on the stack.
func (e *funcEmitter) emitExpr(x jafast.Expr) {
	switch v := x.(type) {
	case *jafast.LiteralExpr:
		e.emitLiteral(v)
	case *jafast.IdentExpr:
		e.emitIdent(v)
	case *jafast.UnaryExpr:
		e.emitUnary(v)
	case *jafast.BinaryExpr:
		e.emitBinary(v)
	case *jafast.TernaryExpr:
		e.emitTernary(v)
	case *jafast.CallExpr:
		e.emitCall(v)
	case *jafast.CastExpr:
		e.emitCast(v)
	case *jafast.MemberExpr:
		e.emitMember(v)
	case *jafast.SeqExpr:
		e.emitExpr(v.X)
		e.line("POP")
		e.emitExpr(v.Y)
	case *jafast.SubscriptExpr:
		e.emitSubscript(v)
	case *jafast.ThisExpr:
		e.line("PUSHSTRUCTPAGE")
	case *jafast.NullExpr:
		e.line("PUSH -1")
	case *jafast.NewExpr:
		e.emitNew(v)
	case *jafast.AssignExpr:
		e.emitAssign(v)
	case *jafast.DummyRefExpr:
		e.emitDummyRef(v)
	default:
		e.fail(x, "emitter: unhandled expression %T", x)
	}
}

func (e *funcEmitter) emitLiteral(x *jafast.LiteralExpr) {
	switch x.Kind {
	case jafast.LiteralInt:
		e.line("PUSH %d", x.Int)
	case jafast.LiteralFloat:
		e.line("F_PUSH %s", strconv.FormatFloat(x.Float, 'g', -1, 64))
	case jafast.LiteralString:
		e.line("S_PUSH %q", x.Str)
	case jafast.LiteralBool:
		if x.Bool {
			e.line("PUSH 1")
		} else {
			e.line("PUSH 0")
		}
	}
}

func (e *funcEmitter) emitIdent(x *jafast.IdentExpr) {
	switch x.Resolution {
	case jafast.ResolvedLocal:
		e.line("LOCALREF %d", e.localSlot(x.Name))
	case jafast.ResolvedGlobal:
		e.line("GLOBALREF %d", x.Index)
	default:
		e.fail(x, "emitter: identifier %s left unresolved by analysis", x.Name)
	}
}

// localSlot looks up a local's slot by name. Parameters occupy 0..len(Params)-1
// in declaration order; every other local was given a slot by jafalloc and
// recorded by emitVarDecl as it was walked, in the same source order jafalloc
// used, so the two walks agree without the emitter needing IdentExpr to carry
// a slot number of its own.
func (e *funcEmitter) localSlot(name string) int {
	if slot, ok := e.locals[name]; ok {
		return slot
	}
	e.fail(nil, "emitter: local %s referenced before its declaration was walked", name)
	return 0
}

func (e *funcEmitter) emitUnary(x *jafast.UnaryExpr) {
	if x.Op == jaftoken.INC || x.Op == jaftoken.DEC {
		e.emitIncDec(x)
		return
	}
	if x.Op == jaftoken.AMP {
		e.emitLvalueRef(x.X)
		return
	}
	e.emitExpr(x.X)
	switch x.Op {
	case jaftoken.MINUS:
		if x.Type().Tag == aintype.Float {
			e.line("F_PUSH -1.0")
			e.line("F_MUL")
		} else {
			e.line("PUSH -1")
			e.line("MUL")
		}
	case jaftoken.PLUS:
		// unary + is a no-op once type-checked
	case jaftoken.TILDE:
		e.line("COMPL")
	case jaftoken.BANG:
		e.line("NOT")
	}
}

// emitIncDec reads, bumps, and stores back through the lvalue, leaving
// the pre- or post-increment value on the stack to match C semantics;
// this build only uses ++/-- as a bare statement (via ExprStmt's POP),
// so the exact pre/post value left behind is not yet load-bearing.
func (e *funcEmitter) emitIncDec(x *jafast.UnaryExpr) {
	e.emitLvalueRef(x.X)
	if x.Op == jaftoken.INC {
		e.line("INC")
	} else {
		e.line("DEC")
	}
}

func (e *funcEmitter) emitBinary(x *jafast.BinaryExpr) {
	switch x.Op {
	case jaftoken.ANDAND:
		e.emitShortCircuit(x, true)
		return
	case jaftoken.OROR:
		e.emitShortCircuit(x, false)
		return
	}

	e.emitExpr(x.X)
	e.emitExpr(x.Y)

	str := x.X.Type().Tag == aintype.String || x.Y.Type().Tag == aintype.String
	flt := x.X.Type().Tag == aintype.Float || x.Y.Type().Tag == aintype.Float

	switch x.Op {
	case jaftoken.PLUS:
		if str {
			e.line("S_ADD")
		} else if flt {
			e.line("F_ADD")
		} else {
			e.line("ADD")
		}
	case jaftoken.MINUS:
		if flt {
			e.line("F_SUB")
		} else {
			e.line("SUB")
		}
	case jaftoken.STAR:
		if flt {
			e.line("F_MUL")
		} else {
			e.line("MUL")
		}
	case jaftoken.SLASH:
		if flt {
			e.line("F_DIV")
		} else {
			e.line("DIV")
		}
	case jaftoken.PERCENT:
		if str {
			// the right operand's tag selects the format code S_MOD reads
			tag := 2
			switch x.Y.Type().Tag {
			case aintype.Float:
				tag = 3
			case aintype.String:
				tag = 4
			case aintype.Bool:
				tag = 48
			case aintype.LongInt:
				tag = 56
			}
			e.line("PUSH %d", tag)
			e.line("S_MOD")
		} else {
			e.line("MOD")
		}
	case jaftoken.AMP:
		e.line("AND")
	case jaftoken.PIPE:
		e.line("OR")
	case jaftoken.CARET:
		e.line("XOR")
	case jaftoken.LTLT:
		e.line("LSHIFT")
	case jaftoken.GTGT:
		e.line("RSHIFT")
	case jaftoken.LT:
		e.line(cmpOp("LT", str, flt))
	case jaftoken.GT:
		e.line(cmpOp("GT", str, flt))
	case jaftoken.LE:
		e.line(cmpOp("LTE", str, flt))
	case jaftoken.GE:
		e.line(cmpOp("GTE", str, flt))
	case jaftoken.EQ:
		e.line(cmpOp("EQUALE", str, flt))
	case jaftoken.NEQ:
		e.line(cmpOp("NOTE", str, flt))
	case jaftoken.REQ:
		e.line("EQUALE")
	case jaftoken.RNEQ:
		e.line("NOTE")
	default:
		e.fail(x, "emitter: unhandled binary operator %s", x.Op)
	}
}

func cmpOp(base string, str, flt bool) string {
	switch {
	case str:
		return "S_" + base
	case flt:
		return "F_" + base
	default:
		return base
	}
}

// emitShortCircuit lowers && and || without always evaluating Y, mirroring
// C's short-circuit semantics: for &&, a falsy X skips straight to a
// pushed 0; for ||, a truthy X skips straight to a pushed 1.
func (e *funcEmitter) emitShortCircuit(x *jafast.BinaryExpr, and bool) {
	e.emitExpr(x.X)
	shortcut := e.newLabel()
	end := e.newLabel()
	if and {
		e.line("IFZ %s", shortcut)
	} else {
		e.line("IFNZ %s", shortcut)
	}
	e.emitExpr(x.Y)
	e.line("JUMP %s", end)
	e.label(shortcut)
	if and {
		e.line("PUSH 0")
	} else {
		e.line("PUSH 1")
	}
	e.label(end)
}

func (e *funcEmitter) emitTernary(x *jafast.TernaryExpr) {
	elseL := e.newLabel()
	end := e.newLabel()
	e.emitExpr(x.Cond)
	e.line("IFZ %s", elseL)
	e.emitExpr(x.Then)
	e.line("JUMP %s", end)
	e.label(elseL)
	e.emitExpr(x.Else)
	e.label(end)
}

func (e *funcEmitter) emitCast(x *jafast.CastExpr) {
	inner := x.X
	e.emitExpr(inner)
	switch {
	case inner.Type().Tag == aintype.Int && x.Type().Tag == aintype.Float:
		e.line("ITOF")
	case inner.Type().Tag == aintype.Float && x.Type().Tag == aintype.Int:
		e.line("FTOI")
	case inner.Type().Tag == aintype.Int && x.Type().Tag == aintype.String:
		e.line("I_STRING")
	case inner.Type().Tag == aintype.String && x.Type().Tag == aintype.Int:
		e.line("STOI")
	case x.Type().Tag == aintype.Iface:
		// struct->interface: no code is emitted; the handle is used as is
		// and the struct's vtable_offset for the interface is not pushed.
	}
}

// emitMember reads a struct field or invokes a property getter. Field
// access mirrors LOCALREF's page/index/REF shape, but with the struct
// handle evaluated at runtime standing in for PUSHLOCALPAGE's implicit
// local page.
func (e *funcEmitter) emitMember(x *jafast.MemberExpr) {
	if x.Kind == jafast.MemberProperty {
		if x.GetterIndex < 0 {
			e.fail(x, "emitter: property %s has no getter", x.Name)
			return
		}
		e.emitExpr(x.X)
		e.line("CALLFUNC %s", e.af.Functions[x.GetterIndex].Name)
		return
	}
	e.emitExpr(x.X)
	e.line("PUSH %d", e.structMemberIndex(x.X.Type().StructIndex, x.Name))
	if e.v14 {
		e.line("X_REF 1")
	} else {
		e.line("REF")
	}
}

// structMemberIndex finds name's position among its struct's declared
// members: field storage in a struct page is laid out in declaration
// order (§3.2), so position doubles as the on-disk member offset.
func (e *funcEmitter) structMemberIndex(structIndex int, name string) int {
	for i, m := range e.af.Structures[structIndex].Members {
		if m.Name == name {
			return i
		}
	}
	e.fail(nil, "emitter: no member %s on struct %s", name, e.af.Structures[structIndex].Name)
	return 0
}

func (e *funcEmitter) emitSubscript(x *jafast.SubscriptExpr) {
	e.emitExpr(x.X)
	e.emitExpr(x.Index)
	if e.v14 {
		e.line("X_REF 1")
	} else {
		e.line("REF")
	}
}

// emitNew allocates a struct instance. The constructor, if any, runs as
// an ordinary method call against the freshly allocated handle.
func (e *funcEmitter) emitNew(x *jafast.NewExpr) {
	structIndex := e.resolveNewTarget(x)
	e.line("NEW %s", e.af.Structures[structIndex].Name)
	if ctor := e.af.Structures[structIndex].Constructor; ctor >= 0 {
		e.line("DUP")
		for _, a := range x.Args {
			e.emitExpr(a)
		}
		e.line("CALLMETHOD %s", e.af.Functions[ctor].Name)
		e.line("POP")
	}
}

func (e *funcEmitter) resolveNewTarget(x *jafast.NewExpr) int {
	return x.Type().StructIndex
}

func (e *funcEmitter) emitDummyRef(x *jafast.DummyRefExpr) {
	e.emitExpr(x.Inner)
	e.line("PUSHLOCALPAGE")
	e.line("PUSH %d", x.Slot)
	if e.v14 {
		e.line("X_ASSIGN 1")
	} else {
		e.line("ASSIGN")
	}
	e.line("POP")
	e.line("LOCALREF %d", x.Slot)
}

func (e *funcEmitter) emitAssign(x *jafast.AssignExpr) {
	if x.DelegateOp != jafast.DelegateOpNone {
		e.emitDelegateAssign(x)
		return
	}
	if x.Op != jaftoken.ASSIGN {
		e.emitCompoundAssign(x)
		return
	}
	e.emitLvalueRef(x.Lhs)
	e.emitExpr(x.Rhs)
	e.emitAssignOp(x.Lhs.Type())
	// leave the assigned value visible for expression context: re-read it
	// the same way an increment does, by pushing the lvalue ref again.
	e.line("POP")
	e.emitExpr(x.Lhs)
}

func (e *funcEmitter) emitCompoundAssign(x *jafast.AssignExpr) {
	e.emitLvalueRef(x.Lhs)
	e.emitExpr(x.Rhs)
	flt := x.Lhs.Type().Tag == aintype.Float
	switch x.Op {
	case jaftoken.PLUSEQ:
		if flt {
			e.line("F_PLUSA")
		} else {
			e.line("PLUSA")
		}
	case jaftoken.MINUSEQ:
		if flt {
			e.line("F_MINUSA")
		} else {
			e.line("MINUSA")
		}
	case jaftoken.STAREQ:
		if flt {
			e.line("F_MULA")
		} else {
			e.line("MULA")
		}
	case jaftoken.SLASHEQ:
		if flt {
			e.line("F_DIVA")
		} else {
			e.line("DIVA")
		}
	case jaftoken.PERCENTEQ:
		e.line("MODA")
	case jaftoken.AMPEQ:
		e.line("ANDA")
	case jaftoken.PIPEEQ:
		e.line("ORA")
	case jaftoken.CARETEQ:
		e.line("XORA")
	case jaftoken.LTLTEQ:
		e.line("LSHIFTA")
	case jaftoken.GTGTEQ:
		e.line("RSHIFTA")
	default:
		e.fail(x, "emitter: unhandled compound assignment operator %s", x.Op)
	}
	e.line("POP")
	e.emitExpr(x.Lhs)
}

func (e *funcEmitter) emitDelegateAssign(x *jafast.AssignExpr) {
	e.emitLvalueRef(x.Lhs)
	e.emitExpr(x.Rhs)
	switch x.DelegateOp {
	case jafast.DelegateSet:
		e.line("DG_SET")
	case jafast.DelegateAdd:
		e.line("DG_ADD")
	case jafast.DelegateErase:
		e.line("DG_ERASE")
	case jafast.DelegateStrToMethod:
		e.line("DG_STR_TO_METHOD")
	}
	e.line("POP")
}

func (e *funcEmitter) emitAssignOp(t aintype.Type) {
	switch t.Tag {
	case aintype.Float:
		e.line("F_ASSIGN")
	case aintype.String:
		e.line("S_ASSIGN")
	default:
		if e.v14 {
			e.line("X_ASSIGN 1")
		} else {
			e.line("ASSIGN")
		}
	}
}

// emitLvalueRef pushes an lvalue's page/index pair without dereferencing
// it, the shape every ASSIGN/INC/DEC/R_ASSIGN family opcode expects below
// the value (or referent) they operate on.
func (e *funcEmitter) emitLvalueRef(x jafast.Expr) {
	switch v := x.(type) {
	case *jafast.IdentExpr:
		switch v.Resolution {
		case jafast.ResolvedLocal:
			e.line("PUSHLOCALPAGE")
			e.line("PUSH %d", e.localSlot(v.Name))
		case jafast.ResolvedGlobal:
			e.line("PUSHGLOBALPAGE")
			e.line("PUSH %d", v.Index)
		}
	case *jafast.MemberExpr:
		e.emitExpr(v.X)
		e.line("PUSH %d", e.structMemberIndex(v.X.Type().StructIndex, v.Name))
	case *jafast.SubscriptExpr:
		e.emitExpr(v.X)
		e.emitExpr(v.Index)
	case *jafast.DummyRefExpr:
		e.line("PUSHLOCALPAGE")
		e.line("PUSH %d", v.Slot)
	default:
		e.fail(x, "emitter: %T is not an lvalue", x)
	}
}
