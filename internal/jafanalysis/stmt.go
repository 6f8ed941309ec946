package jafanalysis

import (
	"github.com/mna/ain-tools/internal/aintype"
	"github.com/mna/ain-tools/internal/jafast"
	"github.com/mna/ain-tools/internal/jaferr"
)

func (a *analyzer) checkBlock(b *jafast.BlockStmt, ret aintype.Type) error {
	a.pushScope()
	defer a.popScope()
	for i, s := range b.List {
		s2, err := a.checkStmt(s, ret)
		if err != nil {
			return err
		}
		b.List[i] = s2
	}
	return nil
}

func (a *analyzer) checkStmt(s jafast.Stmt, ret aintype.Type) (jafast.Stmt, error) {
	switch st := s.(type) {
	case *jafast.BlockStmt:
		return st, a.checkBlock(st, ret)
	case *jafast.ExprStmt:
		x, err := a.checkExpr(st.X, false)
		if err != nil {
			return st, err
		}
		st.X = x
		return st, nil
	case *jafast.VarDeclStmt:
		return st, a.checkVarDecl(st)
	case *jafast.IfStmt:
		cond, err := a.checkExpr(st.Cond, true)
		if err != nil {
			return st, err
		}
		st.Cond = cond
		if st.Then, err = a.checkStmt(st.Then, ret); err != nil {
			return st, err
		}
		if st.Else != nil {
			if st.Else, err = a.checkStmt(st.Else, ret); err != nil {
				return st, err
			}
		}
		return st, nil
	case *jafast.WhileStmt:
		cond, err := a.checkExpr(st.Cond, true)
		if err != nil {
			return st, err
		}
		st.Cond = cond
		body, err := a.checkStmt(st.Body, ret)
		if err != nil {
			return st, err
		}
		st.Body = body
		return st, nil
	case *jafast.DoWhileStmt:
		body, err := a.checkStmt(st.Body, ret)
		if err != nil {
			return st, err
		}
		st.Body = body
		cond, err := a.checkExpr(st.Cond, true)
		if err != nil {
			return st, err
		}
		st.Cond = cond
		return st, nil
	case *jafast.ForStmt:
		return st, a.checkFor(st, ret)
	case *jafast.SwitchStmt:
		return st, a.checkSwitch(st, ret)
	case *jafast.BreakStmt, *jafast.ContinueStmt, *jafast.GotoStmt:
		return st, nil
	case *jafast.ReturnStmt:
		return st, a.checkReturn(st, ret)
	case *jafast.LabeledStmt:
		inner, err := a.checkStmt(st.Stmt, ret)
		if err != nil {
			return st, err
		}
		st.Stmt = inner
		return st, nil
	case *jafast.MessageStmt:
		if st.Call != nil {
			x, err := a.checkExpr(st.Call, false)
			if err != nil {
				return st, err
			}
			call, ok := x.(*jafast.CallExpr)
			if !ok {
				return st, a.typeErr(startPos(st), "message call target did not resolve to a call")
			}
			st.Call = call
		}
		return st, nil
	case *jafast.RAssignStmt:
		lhs, err := a.checkExpr(st.Lhs, true)
		if err != nil {
			return st, err
		}
		rhs, err := a.checkExpr(st.Rhs, true)
		if err != nil {
			return st, err
		}
		if !lhs.Type().IsRef {
			return st, a.typeErr(startPos(st), "left-hand side of <~ is not a ref")
		}
		if !lhs.Type().Equal(rhs.Type()) {
			return st, a.typeErr(startPos(st), "cannot rebind ref %s to %s", describeType(lhs.Type()), describeType(rhs.Type()))
		}
		st.Lhs, st.Rhs = lhs, rhs
		return st, nil
	case *jafast.AssertStmt:
		cond, err := a.checkExpr(st.Cond, true)
		if err != nil {
			return st, err
		}
		st.Cond = cond
		return st, nil
	case *jafast.FileMarkerStmt:
		return st, nil
	}
	return s, a.typeErr(startPos(s), "jafanalysis: unhandled statement %T", s)
}

func (a *analyzer) checkVarDecl(st *jafast.VarDeclStmt) error {
	a.bind(st.Name, st.Typ, st)
	if st.Init == nil {
		return nil
	}
	x, err := a.checkExpr(st.Init, false)
	if err != nil {
		return err
	}
	x, err = a.coerceAssign(st.Typ, x, a.fset.Position(startPos(st)))
	if err != nil {
		return err
	}
	st.Init = x
	return nil
}

func (a *analyzer) checkFor(st *jafast.ForStmt, ret aintype.Type) error {
	a.pushScope()
	defer a.popScope()
	if st.Init != nil {
		init, err := a.checkStmt(st.Init, ret)
		if err != nil {
			return err
		}
		st.Init = init
	}
	if st.Cond != nil {
		cond, err := a.checkExpr(st.Cond, true)
		if err != nil {
			return err
		}
		st.Cond = cond
	}
	if st.Post != nil {
		post, err := a.checkStmt(st.Post, ret)
		if err != nil {
			return err
		}
		st.Post = post
	}
	body, err := a.checkStmt(st.Body, ret)
	if err != nil {
		return err
	}
	st.Body = body
	return nil
}

// checkSwitch type-checks a switch statement's tag and case bodies.
// Emission is out of scope for this revision (§4.7); a non-fatal warning
// records that the construct was seen so a caller driving the emitter
// knows to reject it before that stage rather than silently miscompiling.
func (a *analyzer) checkSwitch(st *jafast.SwitchStmt, ret aintype.Type) error {
	tag, err := a.checkExpr(st.Tag, true)
	if err != nil {
		return err
	}
	st.Tag = tag
	a.warnings = append(a.warnings, jaferr.Warnf(a.fset.Position(startPos(st)), "switch statement is accepted by the analyser but not lowered by this emitter"))
	for _, c := range st.Cases {
		if c.Value != nil {
			v, err := a.checkExpr(c.Value, true)
			if err != nil {
				return err
			}
			c.Value = v
		}
		for i, bs := range c.Body {
			bs2, err := a.checkStmt(bs, ret)
			if err != nil {
				return err
			}
			c.Body[i] = bs2
		}
	}
	return nil
}

func (a *analyzer) checkReturn(st *jafast.ReturnStmt, ret aintype.Type) error {
	if st.Result == nil {
		if ret.Tag != aintype.Void {
			return a.typeErr(startPos(st), "missing return value for function returning %s", describeType(ret))
		}
		return nil
	}
	x, err := a.checkExpr(st.Result, true)
	if err != nil {
		return err
	}
	x, err = a.coerceAssign(ret, x, a.fset.Position(startPos(st)))
	if err != nil {
		return err
	}
	st.Result = x
	return nil
}
