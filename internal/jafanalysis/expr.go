package jafanalysis

import (
	"github.com/mna/ain-tools/internal/aintype"
	"github.com/mna/ain-tools/internal/jafast"
	"github.com/mna/ain-tools/internal/jaferr"
	"github.com/mna/ain-tools/internal/jaftoken"
)

// checkExpr type-checks e, resolving names, inserting widening casts, and
// rewriting property access and delegate assignment into their lowered
// shapes. wrap controls whether a bare `new` expression or ref-returning
// call is wrapped in a DummyRefExpr: callers that already own storage for
// the result (a declaration initializer, an assignment right-hand side)
// pass false; every other value context — call arguments, conditions,
// operands of an operator or of `<~` — passes true, since the
// result needs a temporary that outlives the sub-expression it came from
// (§4.5).
func (a *analyzer) checkExpr(e jafast.Expr, wrap bool) (jafast.Expr, error) {
	switch x := e.(type) {
	case *jafast.LiteralExpr:
		return a.checkLiteral(x)
	case *jafast.IdentExpr:
		return a.checkIdent(x)
	case *jafast.UnaryExpr:
		return a.checkUnary(x)
	case *jafast.BinaryExpr:
		return a.checkBinary(x)
	case *jafast.TernaryExpr:
		return a.checkTernary(x)
	case *jafast.CallExpr:
		return a.checkCall(x, wrap)
	case *jafast.CastExpr:
		return a.checkCast(x)
	case *jafast.MemberExpr:
		return a.checkMember(x)
	case *jafast.SeqExpr:
		return a.checkSeq(x)
	case *jafast.SubscriptExpr:
		return a.checkSubscript(x)
	case *jafast.ThisExpr:
		return a.checkThis(x)
	case *jafast.SuperExpr:
		// Only meaningful as the receiver of a CallSuper CallExpr; checkCall
		// handles it directly and never calls back into checkExpr for it.
		return x, a.typeErr(startPos(x), "'super' may only be used to call a super method")
	case *jafast.NullExpr:
		x.Typ = aintype.New(aintype.NullType)
		return x, nil
	case *jafast.NewExpr:
		return a.checkNew(x, wrap)
	case *jafast.AssignExpr:
		return a.checkAssign(x)
	case *jafast.DummyRefExpr:
		return x, nil
	}
	return e, a.typeErr(startPos(e), "jafanalysis: unhandled expression %T", e)
}

func (a *analyzer) checkLiteral(x *jafast.LiteralExpr) (jafast.Expr, error) {
	switch x.Kind {
	case jafast.LiteralInt:
		x.Typ = aintype.New(aintype.Int)
	case jafast.LiteralFloat:
		x.Typ = aintype.New(aintype.Float)
	case jafast.LiteralString:
		x.Typ = aintype.New(aintype.String)
	case jafast.LiteralBool:
		x.Typ = aintype.New(aintype.Bool)
	}
	return x, nil
}

// checkIdent resolves a bare name against the local scope stack, the
// global table, and finally the enum constant table. An enum reference is
// folded directly into an int literal (§4.5): JAF enums carry no runtime
// identity distinct from their backing value.
func (a *analyzer) checkIdent(x *jafast.IdentExpr) (jafast.Expr, error) {
	if v, ok := a.lookupLocal(x.Name); ok {
		x.Resolution = jafast.ResolvedLocal
		x.Typ = v.typ
		return x, nil
	}
	if g, ok := a.globals[x.Name]; ok {
		x.Resolution = jafast.ResolvedGlobal
		x.Index = g.GlobalIndex
		x.Typ = g.Typ
		return x, nil
	}
	if ec, ok := a.enumConsts[x.Name]; ok {
		lit := &jafast.LiteralExpr{
			ExprBase: jafast.ExprBase{Start: x.Start, End: x.End, Typ: aintype.New(aintype.Int)},
			Kind:     jafast.LiteralInt,
			Raw:      x.Name,
			Int:      ec.value,
		}
		return lit, nil
	}
	return x, a.unresolvedErr(x.Start, "undefined identifier: %s", x.Name)
}

func (a *analyzer) checkThis(x *jafast.ThisExpr) (jafast.Expr, error) {
	if a.curStruct < 0 {
		return x, a.typeErr(startPos(x), "'this' used outside a method body")
	}
	x.Typ = aintype.NewStruct(aintype.Struct, a.curStruct)
	return x, nil
}

func (a *analyzer) checkUnary(x *jafast.UnaryExpr) (jafast.Expr, error) {
	inner, err := a.checkExpr(x.X, true)
	if err != nil {
		return x, err
	}
	x.X = inner
	switch x.Op {
	case jaftoken.INC, jaftoken.DEC:
		if !jafast.IsAssignable(x.X) {
			return x, a.typeErr(startPos(x), "operand of %s must be an lvalue", x.Op)
		}
		x.Typ = x.X.Type()
	case jaftoken.AMP:
		if !jafast.IsAssignable(x.X) {
			return x, a.typeErr(startPos(x), "cannot take a reference to a non-lvalue")
		}
		x.Typ = x.X.Type().Ref()
	case jaftoken.BANG:
		x.Typ = aintype.New(aintype.Bool)
	case jaftoken.MINUS, jaftoken.PLUS, jaftoken.TILDE:
		if !isNumeric(x.X.Type()) {
			return x, a.typeErr(startPos(x), "operand of %s must be numeric, found %s", x.Op, describeType(x.X.Type()))
		}
		x.Typ = x.X.Type()
	default:
		return x, a.typeErr(startPos(x), "unsupported unary operator %s", x.Op)
	}
	return x, nil
}

func isNumeric(t aintype.Type) bool {
	switch t.Tag {
	case aintype.Int, aintype.LongInt, aintype.Float:
		return true
	}
	return false
}

// numericRank orders the three numeric tags for widening: float widens
// over long_int widens over int (§4.5).
func numericRank(t aintype.Type) int {
	switch t.Tag {
	case aintype.Int:
		return 0
	case aintype.LongInt:
		return 1
	case aintype.Float:
		return 2
	}
	return -1
}

// insertWideningCast inserts a CastExpr converting x to target when x's
// type differs from target, leaving x untouched otherwise.
func insertWideningCast(x jafast.Expr, target aintype.Type) jafast.Expr {
	if x.Type().Tag == target.Tag {
		return x
	}
	s, e := x.Span()
	return &jafast.CastExpr{ExprBase: jafast.ExprBase{Start: s, End: e, Typ: target}, X: x}
}

// widenNumeric widens x and y to their common numeric rank, inserting a
// cast on whichever side is narrower.
func widenNumeric(x, y jafast.Expr) (jafast.Expr, jafast.Expr, aintype.Type) {
	rx, ry := numericRank(x.Type()), numericRank(y.Type())
	if rx == ry {
		return x, y, x.Type()
	}
	if rx > ry {
		return x, insertWideningCast(y, x.Type()), x.Type()
	}
	return insertWideningCast(x, y.Type()), y, y.Type()
}

func isComparisonOp(op jaftoken.Token) bool {
	switch op {
	case jaftoken.LT, jaftoken.GT, jaftoken.LE, jaftoken.GE, jaftoken.EQ, jaftoken.NEQ:
		return true
	}
	return false
}

// checkBinary type-checks a binary operation, widening numeric operands,
// accepting `+` and `%` on strings (the latter formatting X according to
// Y's tag-selector code, §4.5), and accepting REQ/RNEQ only on ref types.
func (a *analyzer) checkBinary(x *jafast.BinaryExpr) (jafast.Expr, error) {
	lhs, err := a.checkExpr(x.X, true)
	if err != nil {
		return x, err
	}
	rhs, err := a.checkExpr(x.Y, true)
	if err != nil {
		return x, err
	}
	x.X, x.Y = lhs, rhs

	switch x.Op {
	case jaftoken.REQ, jaftoken.RNEQ:
		if !lhs.Type().IsRef || !rhs.Type().IsRef {
			return x, a.typeErr(startPos(x), "%s requires both operands to be refs", x.Op)
		}
		x.Typ = aintype.New(aintype.Bool)
		return x, nil
	case jaftoken.ANDAND, jaftoken.OROR:
		x.Typ = aintype.New(aintype.Bool)
		return x, nil
	case jaftoken.PLUS:
		if lhs.Type().Tag == aintype.String || rhs.Type().Tag == aintype.String {
			if lhs.Type().Tag != aintype.String || rhs.Type().Tag != aintype.String {
				return x, a.typeErr(startPos(x), "string concatenation requires both operands to be string")
			}
			x.Typ = aintype.New(aintype.String)
			return x, nil
		}
	case jaftoken.PERCENT:
		if lhs.Type().Tag == aintype.String {
			// String formatting: Y supplies the value, its tag selects the
			// format code (int=2, float=3, string=4, bool=48, long_int=56)
			// the emitter pushes ahead of S_MOD (§4.5).
			x.Typ = aintype.New(aintype.String)
			return x, nil
		}
	}

	if !isNumeric(lhs.Type()) || !isNumeric(rhs.Type()) {
		return x, a.typeErr(startPos(x), "operator %s requires numeric operands, found %s and %s", x.Op, describeType(lhs.Type()), describeType(rhs.Type()))
	}
	widenedX, widenedY, common := widenNumeric(lhs, rhs)
	x.X, x.Y = widenedX, widenedY
	if isComparisonOp(x.Op) {
		x.Typ = aintype.New(aintype.Bool)
	} else {
		x.Typ = common
	}
	return x, nil
}

func (a *analyzer) checkTernary(x *jafast.TernaryExpr) (jafast.Expr, error) {
	cond, err := a.checkExpr(x.Cond, true)
	if err != nil {
		return x, err
	}
	then, err := a.checkExpr(x.Then, true)
	if err != nil {
		return x, err
	}
	els, err := a.checkExpr(x.Else, true)
	if err != nil {
		return x, err
	}
	x.Cond, x.Then, x.Else = cond, then, els
	if isNumeric(then.Type()) && isNumeric(els.Type()) {
		widenedThen, widenedEls, common := widenNumeric(then, els)
		x.Then, x.Else, x.Typ = widenedThen, widenedEls, common
		return x, nil
	}
	if !then.Type().Equal(els.Type()) {
		return x, a.typeErr(startPos(x), "ternary branches have incompatible types %s and %s", describeType(then.Type()), describeType(els.Type()))
	}
	x.Typ = then.Type()
	return x, nil
}

func (a *analyzer) checkSeq(x *jafast.SeqExpr) (jafast.Expr, error) {
	lhs, err := a.checkExpr(x.X, false)
	if err != nil {
		return x, err
	}
	rhs, err := a.checkExpr(x.Y, true)
	if err != nil {
		return x, err
	}
	x.X, x.Y = lhs, rhs
	x.Typ = rhs.Type()
	return x, nil
}

func (a *analyzer) checkSubscript(x *jafast.SubscriptExpr) (jafast.Expr, error) {
	arr, err := a.checkExpr(x.X, true)
	if err != nil {
		return x, err
	}
	idx, err := a.checkExpr(x.Index, true)
	if err != nil {
		return x, err
	}
	x.X, x.Index = arr, idx
	if idx.Type().Tag != aintype.Int {
		return x, a.typeErr(startPos(x), "array index must be int, found %s", describeType(idx.Type()))
	}
	switch arr.Type().Tag {
	case aintype.Array, aintype.RefArray:
		if arr.Type().Elem != nil {
			x.Typ = *arr.Type().Elem
		}
	case aintype.String:
		x.Typ = aintype.New(aintype.Int) // single-character subscript, assignable via CHAREQ
	default:
		return x, a.typeErr(startPos(x), "cannot index into %s", describeType(arr.Type()))
	}
	return x, nil
}

func (a *analyzer) checkCast(x *jafast.CastExpr) (jafast.Expr, error) {
	inner, err := a.checkExpr(x.X, true)
	if err != nil {
		return x, err
	}
	x.X = inner
	return x, nil
}

// checkNew type-checks a `new T(args)` expression, validating T names a
// struct with a constructor of matching arity, and wraps it in a
// DummyRefExpr when wrap is true: the new object needs a temporary local
// that outlives the enclosing sub-expression (§4.5); a direct owning
// context (a declaration initializer, an assignment's right-hand side)
// leaves it bare since it is immediately copied into its final home.
func (a *analyzer) checkNew(x *jafast.NewExpr, wrap bool) (jafast.Expr, error) {
	if x.Typ.Tag != aintype.Struct {
		return x, a.typeErr(startPos(x), "new requires a struct type")
	}
	s := a.af.Structures[x.Typ.StructIndex]
	if s.Constructor >= 0 {
		ctor := a.af.Functions[s.Constructor]
		if len(x.Args) != ctor.NumArgs {
			return x, a.arityErr(startPos(x), "constructor %s expects %d arguments, found %d", s.Name, ctor.NumArgs, len(x.Args))
		}
	} else if len(x.Args) != 0 {
		return x, a.arityErr(startPos(x), "struct %s has no constructor, but arguments were given", s.Name)
	}
	for i, arg := range x.Args {
		checked, err := a.checkExpr(arg, true)
		if err != nil {
			return x, err
		}
		x.Args[i] = checked
	}
	var result jafast.Expr = x
	if wrap {
		s, e := x.Span()
		result = &jafast.DummyRefExpr{ExprBase: jafast.ExprBase{Start: s, End: e, Typ: x.Typ}, Inner: x, Slot: -1}
	}
	return result, nil
}

// checkAssign type-checks lhs = rhs (or a compound variant), rejecting a
// non-lvalue target and lowering delegate assignment to the matching
// DelegateOp (§4.5): `=` becomes DelegateSet, or DelegateStrToMethod when
// the right-hand side is a string, `+=` becomes DelegateAdd and `-=`
// becomes DelegateErase.
func (a *analyzer) checkAssign(x *jafast.AssignExpr) (jafast.Expr, error) {
	lhs, err := a.checkExpr(x.Lhs, true)
	if err != nil {
		return x, err
	}
	if !jafast.IsAssignable(lhs) {
		return x, a.typeErr(startPos(x), "left-hand side of %s is not assignable", x.Op)
	}
	x.Lhs = lhs

	if lhs.Type().Tag == aintype.Delegate {
		rhs, err := a.checkExpr(x.Rhs, false)
		if err != nil {
			return x, err
		}
		x.Rhs = rhs
		switch x.Op {
		case jaftoken.ASSIGN:
			x.DelegateOp = jafast.DelegateSet
			if rhs.Type().Tag == aintype.String {
				x.DelegateOp = jafast.DelegateStrToMethod
			}
		case jaftoken.PLUSEQ:
			x.DelegateOp = jafast.DelegateAdd
		case jaftoken.MINUSEQ:
			x.DelegateOp = jafast.DelegateErase
		default:
			return x, a.typeErr(startPos(x), "unsupported delegate assignment operator %s", x.Op)
		}
		x.Typ = lhs.Type()
		return x, nil
	}

	rhs, err := a.checkExpr(x.Rhs, false)
	if err != nil {
		return x, err
	}
	rhs, err = a.coerceAssign(lhs.Type(), rhs, a.fset.Position(startPos(x)))
	if err != nil {
		return x, err
	}
	x.Rhs = rhs
	x.Typ = lhs.Type()
	return x, nil
}

// coerceAssign checks that x can be assigned/passed to a slot of type
// target, inserting a numeric widening cast when both sides are numeric
// and otherwise requiring an exact type match (or a null literal against
// any ref, struct, interface, delegate, functype or imain_system target,
// §4.5's polymorphic null unification).
func (a *analyzer) coerceAssign(target aintype.Type, x jafast.Expr, pos jaftoken.Position) (jafast.Expr, error) {
	if x.Type().Tag == aintype.NullType {
		if target.IsRef {
			return x, nil
		}
		switch target.Tag {
		case aintype.Struct, aintype.Iface, aintype.Delegate, aintype.FuncType, aintype.IMainSystem:
			return x, nil
		}
		return x, jaferr.At(jaferr.TypeError, pos, "", "null is not assignable to %s", describeType(target))
	}
	if isNumeric(target) && isNumeric(x.Type()) {
		return insertWideningCast(x, target), nil
	}
	if target.Tag == aintype.Iface && x.Type().Tag == aintype.Struct {
		return a.castStructToIface(target, x, pos)
	}
	if !target.Equal(x.Type()) {
		return x, jaferr.At(jaferr.TypeError, pos, "", "cannot assign %s to %s", describeType(x.Type()), describeType(target))
	}
	return x, nil
}

// castStructToIface validates that x's concrete struct type implements
// target and rewrites x into a CastExpr carrying target. The emitter
// emits no code for that cast: the vtable_offset recorded on the struct's
// InterfaceEntry is not pushed, and interface calls use the bare method
// index (§3.2, §4.5).
func (a *analyzer) castStructToIface(target aintype.Type, x jafast.Expr, pos jaftoken.Position) (jafast.Expr, error) {
	s := a.af.Structures[x.Type().StructIndex]
	implements := false
	for _, ie := range s.Interfaces {
		if ie.StructType == target.StructIndex {
			implements = true
			break
		}
	}
	if !implements {
		return x, jaferr.At(jaferr.TypeError, pos, "", "struct %s does not implement interface", s.Name)
	}
	start, end := x.Span()
	return &jafast.CastExpr{ExprBase: jafast.ExprBase{Start: start, End: end, Typ: target}, X: x}, nil
}
