package jafast

import "github.com/mna/ain-tools/internal/jaftoken"

// Fold performs one step of constant folding on e by structural pattern
// matching, as prescribed by the static analyser (§4.5): arithmetic on
// literal operands, casts of literals, and ternary expressions whose
// condition is a literal. It returns e unchanged if no fold rule applies.
//
// The ternary case resolves this project's ternary-fold open question
// (§9): the original source frees the discarded branch through a
// use-after-free bug; here folding simply replaces the TernaryExpr node
// with the chosen branch's subtree in place and lets the unchosen branch
// become unreachable garbage, never walking or freeing it.
func Fold(e Expr) Expr {
	switch n := e.(type) {
	case *UnaryExpr:
		return foldUnary(n)
	case *BinaryExpr:
		return foldBinary(n)
	case *CastExpr:
		return foldCast(n)
	case *TernaryExpr:
		if lit, ok := n.Cond.(*LiteralExpr); ok {
			if truthy(lit) {
				return n.Then
			}
			return n.Else
		}
	}
	return e
}

func truthy(lit *LiteralExpr) bool {
	switch lit.Kind {
	case LiteralInt:
		return lit.Int != 0
	case LiteralFloat:
		return lit.Float != 0
	case LiteralBool:
		return lit.Bool
	case LiteralString:
		return lit.Str != ""
	}
	return false
}

func intLit(pos jaftoken.Pos, v int64) *LiteralExpr {
	return &LiteralExpr{ExprBase: ExprBase{Start: pos, End: pos}, Kind: LiteralInt, Int: v}
}

func floatLit(pos jaftoken.Pos, v float64) *LiteralExpr {
	return &LiteralExpr{ExprBase: ExprBase{Start: pos, End: pos}, Kind: LiteralFloat, Float: v}
}

func boolLit(pos jaftoken.Pos, v bool) *LiteralExpr {
	return &LiteralExpr{ExprBase: ExprBase{Start: pos, End: pos}, Kind: LiteralBool, Bool: v}
}

func foldUnary(n *UnaryExpr) Expr {
	lit, ok := n.X.(*LiteralExpr)
	if !ok {
		return n
	}
	switch n.Op {
	case jaftoken.MINUS:
		switch lit.Kind {
		case LiteralInt:
			return intLit(n.Start, -lit.Int)
		case LiteralFloat:
			return floatLit(n.Start, -lit.Float)
		}
	case jaftoken.PLUS:
		return lit
	case jaftoken.TILDE:
		if lit.Kind == LiteralInt {
			return intLit(n.Start, ^lit.Int)
		}
	case jaftoken.BANG:
		return boolLit(n.Start, !truthy(lit))
	}
	return n
}

func foldBinary(n *BinaryExpr) Expr {
	x, xok := n.X.(*LiteralExpr)
	y, yok := n.Y.(*LiteralExpr)
	if !xok || !yok {
		return n
	}

	if x.Kind == LiteralString && y.Kind == LiteralString && n.Op == jaftoken.PLUS {
		s := &LiteralExpr{ExprBase: ExprBase{Start: n.Start, End: n.End}, Kind: LiteralString}
		s.Str = x.Str + y.Str
		return s
	}

	if x.Kind == LiteralFloat || y.Kind == LiteralFloat {
		xf, yf := asFloat(x), asFloat(y)
		if v, ok := foldFloatOp(n.Op, xf, yf); ok {
			return floatLit(n.Start, v)
		}
		return n
	}

	if x.Kind == LiteralInt && y.Kind == LiteralInt {
		if v, ok := foldIntOp(n.Op, x.Int, y.Int); ok {
			return intLit(n.Start, v)
		}
		if v, ok := foldIntCompare(n.Op, x.Int, y.Int); ok {
			return boolLit(n.Start, v)
		}
	}
	return n
}

func asFloat(lit *LiteralExpr) float64 {
	if lit.Kind == LiteralFloat {
		return lit.Float
	}
	return float64(lit.Int)
}

func foldFloatOp(op jaftoken.Token, x, y float64) (float64, bool) {
	switch op {
	case jaftoken.PLUS:
		return x + y, true
	case jaftoken.MINUS:
		return x - y, true
	case jaftoken.STAR:
		return x * y, true
	case jaftoken.SLASH:
		if y == 0 {
			return 0, false
		}
		return x / y, true
	}
	return 0, false
}

func foldIntOp(op jaftoken.Token, x, y int64) (int64, bool) {
	switch op {
	case jaftoken.PLUS:
		return x + y, true
	case jaftoken.MINUS:
		return x - y, true
	case jaftoken.STAR:
		return x * y, true
	case jaftoken.SLASH:
		if y == 0 {
			return 0, false
		}
		return x / y, true
	case jaftoken.PERCENT:
		if y == 0 {
			return 0, false
		}
		return x % y, true
	case jaftoken.LTLT:
		return x << uint(y), true
	case jaftoken.GTGT:
		return x >> uint(y), true
	case jaftoken.AMP:
		return x & y, true
	case jaftoken.PIPE:
		return x | y, true
	case jaftoken.CARET:
		return x ^ y, true
	}
	return 0, false
}

func foldIntCompare(op jaftoken.Token, x, y int64) (bool, bool) {
	switch op {
	case jaftoken.LT:
		return x < y, true
	case jaftoken.GT:
		return x > y, true
	case jaftoken.LE:
		return x <= y, true
	case jaftoken.GE:
		return x >= y, true
	case jaftoken.EQ:
		return x == y, true
	case jaftoken.NEQ:
		return x != y, true
	case jaftoken.ANDAND:
		return x != 0 && y != 0, true
	case jaftoken.OROR:
		return x != 0 || y != 0, true
	}
	return false, false
}

func foldCast(n *CastExpr) Expr {
	lit, ok := n.X.(*LiteralExpr)
	if !ok {
		return n
	}
	switch n.Typ.Tag.String() {
	case "int", "lint":
		switch lit.Kind {
		case LiteralFloat:
			return intLit(n.Start, int64(lit.Float))
		case LiteralBool:
			if lit.Bool {
				return intLit(n.Start, 1)
			}
			return intLit(n.Start, 0)
		}
	case "float":
		if lit.Kind == LiteralInt {
			return floatLit(n.Start, float64(lit.Int))
		}
	}
	return n
}
