package emitter

import (
	"github.com/mna/ain-tools/internal/aintype"
	"github.com/mna/ain-tools/internal/jafast"
)

// emitStmt lowers one statement. Expression statements pop their result
// when the underlying expression leaves a value on the stack (almost
// always true; calls to void functions are the one common exception and
// are handled by tracking the pushed-value convention in emitExpr
// itself, via emitExprStmt below).
func (e *funcEmitter) emitStmt(s jafast.Stmt) {
	switch x := s.(type) {
	case *jafast.BlockStmt:
		for _, st := range x.List {
			e.emitStmt(st)
		}
		for i := len(x.DeleteVars) - 1; i >= 0; i-- {
			e.line("LOCALDELETE %d", x.DeleteVars[i])
		}

	case *jafast.ExprStmt:
		e.emitExprStmt(x.X)

	case *jafast.VarDeclStmt:
		e.emitVarDecl(x)

	case *jafast.IfStmt:
		e.emitIf(x)

	case *jafast.WhileStmt:
		e.emitWhile(x)

	case *jafast.DoWhileStmt:
		e.emitDoWhile(x)

	case *jafast.ForStmt:
		e.emitFor(x)

	case *jafast.BreakStmt:
		e.line("JUMP %s", e.loops[len(e.loops)-1].breakLabel)

	case *jafast.ContinueStmt:
		e.line("JUMP %s", e.loops[len(e.loops)-1].continueLabel)

	case *jafast.GotoStmt:
		e.line("JUMP %s", x.Label)

	case *jafast.LabeledStmt:
		e.label(x.Label)
		e.emitStmt(x.Stmt)

	case *jafast.ReturnStmt:
		e.emitReturn(x)

	case *jafast.SwitchStmt:
		// Lowering a switch's jump table requires allocating an
		// ainfile.Switch entry and threading its index through SWITCH's
		// operand; out of scope for this revision (§4.7). The analyser
		// already warned about this when it accepted the statement.

	case *jafast.MessageStmt:
		e.line("MSG %q", x.Text)
		if x.Call != nil {
			e.emitExprStmt(x.Call)
		}

	case *jafast.RAssignStmt:
		e.emitRAssign(x)

	case *jafast.AssertStmt:
		e.emitExpr(x.Cond)
		e.line("ASSERT")

	case *jafast.FileMarkerStmt:
		// No code; purely a bookkeeping marker for multi-file builds.
	}
}

// emitExprStmt emits x for its side effects only, discarding any pushed
// result. Assignment and rassign expressions push their assigned value
// (mirroring C's assignment-expression semantics) so they too need the
// trailing POP; a void-typed call leaves nothing behind to pop.
func (e *funcEmitter) emitExprStmt(x jafast.Expr) {
	if x == nil {
		return
	}
	e.emitExpr(x)
	if x.Type().Tag != aintype.Void {
		e.line("POP")
	}
}

func (e *funcEmitter) emitVarDecl(x *jafast.VarDeclStmt) {
	e.locals[x.Name] = x.Slot
	if x.Init == nil {
		return
	}
	e.assignLocal(x.Slot, x.Init)
}

// assignLocal emits PUSHLOCALPAGE; PUSH slot; <rhs>; ASSIGN-family; POP,
// picking the opcode family by container version since jamasm has no
// pseudo-op covering "assign a compiled expression" (only constant
// immediates, via LOCALASSIGN/F_LOCALASSIGN/S_LOCALASSIGN).
func (e *funcEmitter) assignLocal(slot int, rhs jafast.Expr) {
	e.line("PUSHLOCALPAGE")
	e.line("PUSH %d", slot)
	e.emitExpr(rhs)
	e.emitAssignOp(rhs.Type())
	e.line("POP")
}

func (e *funcEmitter) assignGlobal(slot int, rhs jafast.Expr) {
	e.line("PUSHGLOBALPAGE")
	e.line("PUSH %d", slot)
	e.emitExpr(rhs)
	e.emitAssignOp(rhs.Type())
	e.line("POP")
}

func (e *funcEmitter) emitIf(x *jafast.IfStmt) {
	e.emitExpr(x.Cond)
	if x.Else == nil {
		end := e.newLabel()
		e.line("IFZ %s", end)
		e.emitStmt(x.Then)
		e.label(end)
		return
	}
	elseL := e.newLabel()
	end := e.newLabel()
	e.line("IFZ %s", elseL)
	e.emitStmt(x.Then)
	e.line("JUMP %s", end)
	e.label(elseL)
	e.emitStmt(x.Else)
	e.label(end)
}

func (e *funcEmitter) emitWhile(x *jafast.WhileStmt) {
	top := e.newLabel()
	end := e.newLabel()
	e.loops = append(e.loops, &loopCtx{breakLabel: end, continueLabel: top})
	defer func() { e.loops = e.loops[:len(e.loops)-1] }()

	e.label(top)
	e.emitExpr(x.Cond)
	e.line("IFZ %s", end)
	e.emitStmt(x.Body)
	e.line("JUMP %s", top)
	e.label(end)
}

func (e *funcEmitter) emitDoWhile(x *jafast.DoWhileStmt) {
	top := e.newLabel()
	cont := e.newLabel()
	end := e.newLabel()
	e.loops = append(e.loops, &loopCtx{breakLabel: end, continueLabel: cont})
	defer func() { e.loops = e.loops[:len(e.loops)-1] }()

	e.label(top)
	e.emitStmt(x.Body)
	e.label(cont)
	e.emitExpr(x.Cond)
	e.line("IFNZ %s", top)
	e.label(end)
}

func (e *funcEmitter) emitFor(x *jafast.ForStmt) {
	if x.Init != nil {
		e.emitStmt(x.Init)
	}
	top := e.newLabel()
	cont := e.newLabel()
	end := e.newLabel()
	e.loops = append(e.loops, &loopCtx{breakLabel: end, continueLabel: cont})
	defer func() { e.loops = e.loops[:len(e.loops)-1] }()

	e.label(top)
	if x.Cond != nil {
		e.emitExpr(x.Cond)
		e.line("IFZ %s", end)
	}
	e.emitStmt(x.Body)
	e.label(cont)
	if x.Post != nil {
		e.emitStmt(x.Post)
	}
	e.line("JUMP %s", top)
	e.label(end)
}

func (e *funcEmitter) emitReturn(x *jafast.ReturnStmt) {
	if x.Result == nil {
		e.line("RETURN")
		return
	}
	e.emitExpr(x.Result)
	if x.Result.Type().IsRef {
		e.line("DUP")
		e.line("SP_INC")
	}
	e.line("RETURN")
}

// emitRAssign rebinds a ref lvalue to a new referent rather than copying
// a value: push the lvalue's page/index pair, push the rhs reference,
// R_ASSIGN.
func (e *funcEmitter) emitRAssign(x *jafast.RAssignStmt) {
	e.emitLvalueRef(x.Lhs)
	e.emitExpr(x.Rhs)
	e.line("R_ASSIGN")
	e.line("POP")
}
