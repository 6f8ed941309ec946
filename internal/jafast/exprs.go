package jafast

import (
	"github.com/mna/ain-tools/internal/aintype"
	"github.com/mna/ain-tools/internal/jaftoken"
)

// ExprBase factors the fields every expression carries: its resolved type
// (filled by the resolver/analyser, zero value until then) and span.
type ExprBase struct {
	Start, End jaftoken.Pos
	Typ        aintype.Type
}

func (e ExprBase) Span() (start, end jaftoken.Pos) { return e.Start, e.End }
func (ExprBase) exprNode()                         {}

// Type returns the expression's resolved AinType.
func (e ExprBase) Type() aintype.Type { return e.Typ }

// LiteralKind distinguishes the payload carried by a LiteralExpr.
type LiteralKind uint8

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralString
	LiteralBool
)

// LiteralExpr is an int/float/string/bool constant.
type LiteralExpr struct {
	ExprBase
	Kind  LiteralKind
	Raw   string
	Int   int64
	Float float64
	Str   string
	Bool  bool
}

// ResolutionKind tags how an IdentExpr was resolved, matching §3.3's
// "resolution kind: unresolved/local/global/const".
type ResolutionKind uint8

const (
	Unresolved ResolutionKind = iota
	ResolvedLocal
	ResolvedGlobal
	ResolvedConst
)

// IdentExpr is a bare name reference.
type IdentExpr struct {
	ExprBase
	Name       string
	Resolution ResolutionKind
	Index      int // global index for ResolvedGlobal; -1 otherwise (locals are looked up by name)
}

// UnaryExpr is a prefix or postfix unary operation (the jaf.h operator set:
// &, unary +/-, ~, !, ++/--).
type UnaryExpr struct {
	ExprBase
	Op      jaftoken.Token
	X       Expr
	Postfix bool
}

// BinaryExpr is a binary operation, including ref == / ref != (REQ/RNEQ).
// Compound assignments are not BinaryExprs: the parser builds an
// AssignExpr for them.
type BinaryExpr struct {
	ExprBase
	Op   jaftoken.Token
	X, Y Expr
}

// TernaryExpr is `cond ? then : else`.
type TernaryExpr struct {
	ExprBase
	Cond, Then, Else Expr
}

// CallKind distinguishes the many call shapes the analyser must
// disambiguate (§3.3): plain function, syscall, HLL call, method call,
// interface call, builtin call, super call, or `new`.
type CallKind uint8

const (
	CallFunction CallKind = iota
	CallSyscall
	CallHLL
	CallMethod
	CallInterface
	CallBuiltin
	CallSuper
	CallNew
	CallFuncType // calling through a functype/delegate-valued expression
)

// CallExpr is a call of any of the above kinds. Fn is set for
// CallFuncType (the functype-valued expression being invoked) and for
// CallMethod/CallInterface (the receiver expression); Name carries the
// unresolved callee name until the analyser fills FuncIndex/LibIndex/
// StructIndex/MethodIndex/Builtin/BuiltinLib.
type CallExpr struct {
	ExprBase
	Kind   CallKind
	Fn     Expr
	Name   string
	Args   []Expr
	Bang   jaftoken.Pos // set for a call-without-parens statement form

	FuncIndex     int
	LibIndex      int
	StructIndex   int
	MethodIndex   int
	Builtin       aintype.BuiltinMethod
	BuiltinLib    aintype.BuiltinLib
}

// CastExpr converts X to Typ.
type CastExpr struct {
	ExprBase
	X Expr
}

// MemberKind distinguishes the three ways `obj.Name` can resolve (§4.5).
type MemberKind uint8

const (
	MemberField MemberKind = iota
	MemberMethod
	MemberProperty
)

// MemberExpr is `X.Name`. For MemberProperty the analyser additionally
// fills GetterIndex/SetterIndex once it synthesises the getter/setter
// rewrite.
type MemberExpr struct {
	ExprBase
	X            Expr
	Name         string
	Kind         MemberKind
	MethodIndex  int
	GetterIndex  int
	SetterIndex  int
}

// SeqExpr is the comma operator: evaluate X then Y, yielding Y's value.
type SeqExpr struct {
	ExprBase
	X, Y Expr
}

// SubscriptExpr is `X[Index]`.
type SubscriptExpr struct {
	ExprBase
	X, Index Expr
}

// ThisExpr is the `this` keyword inside a method body.
type ThisExpr struct{ ExprBase }

// SuperExpr is the `super` keyword, used only as the receiver of a
// CallSuper CallExpr.
type SuperExpr struct{ ExprBase }

// NullExpr is the polymorphic `null` literal.
type NullExpr struct{ ExprBase }

// NewExpr is `new T(args)`. It is always wrapped by a DummyRefExpr when
// used in value context (§4.5's reference/temporary handling), but is
// kept distinct so the emitter can find the constructor arguments.
type NewExpr struct {
	ExprBase
	TypeName string // bare identifier naming Typ, resolved by the declaration pass; empty for a builtin-keyword type
	Args     []Expr
}

// AssignExpr is `lhs = rhs` or a compound-assignment variant
// (`lhs += rhs`, etc., including the character-literal assignment form).
// Kept distinct from BinaryExpr because assignment requires an lvalue
// check and the analyser may lower it to delegate-specific opcodes
// (DG_SET/DG_ADD/DG_ERASE/DG_STR_TO_METHOD, §4.5).
type AssignExpr struct {
	ExprBase
	Op       jaftoken.Token // ASSIGN or one of the *EQ / CHAREQ tokens
	Lhs, Rhs Expr

	// DelegateOp is set by the analyser when Lhs is delegate-typed;
	// it names which of DG_SET/DG_ADD/DG_ERASE/DG_STR_TO_METHOD the
	// emitter must lower this assignment to.
	DelegateOp DelegateOp
}

// DelegateOp distinguishes the delegate assignment lowering the analyser
// performs for `d = ...`/`d += ...`/`d -= ...` (§4.5).
type DelegateOp uint8

const (
	DelegateOpNone DelegateOp = iota
	DelegateSet
	DelegateAdd
	DelegateErase
	DelegateStrToMethod
)

// DummyRefExpr wraps a `new` expression or a ref-returning call used in
// value context. It introduces a hidden local (Slot, filled by the
// variable allocator) that the emitter stores the result into and reads
// it back from. The emitter does not destroy that local at statement end.
type DummyRefExpr struct {
	ExprBase
	Inner Expr
	Slot  int
}
