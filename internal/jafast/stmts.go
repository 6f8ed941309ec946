package jafast

import (
	"github.com/mna/ain-tools/internal/aintype"
	"github.com/mna/ain-tools/internal/jaftoken"
)

type StmtBase struct {
	Start, End jaftoken.Pos
}

func (s StmtBase) Span() (start, end jaftoken.Pos) { return s.Start, s.End }
func (StmtBase) stmtNode()                         {}
func (StmtBase) BlockEnding() bool                  { return false }

// BlockStmt is `{ ... }`. DeleteVars lists local-variable slots the
// emitter destroys with LOCALDELETE, in reverse order, after the block's
// last statement; early exits do not destroy them. No pass fills
// DeleteVars, so it is empty for every block the parser builds.
type BlockStmt struct {
	StmtBase
	List       []Stmt
	DeleteVars []int
}

func (b *BlockStmt) BlockEnding() bool {
	if len(b.List) == 0 {
		return false
	}
	return b.List[len(b.List)-1].BlockEnding()
}

// ExprStmt is a bare expression used as a statement (almost always a
// call, or an assignment).
type ExprStmt struct {
	StmtBase
	X Expr
}

// VarDeclStmt declares one local or global variable, optionally with an
// initializer.
type VarDeclStmt struct {
	StmtBase
	Typ      aintype.Type
	TypeName string // bare identifier naming Typ (or its element type, for an array), resolved by the declaration pass
	Name     string
	Init     Expr
	Slot     int // filled by the variable allocator (§4.6)
}

// IfStmt covers `if`/`if-else`.
type IfStmt struct {
	StmtBase
	Cond       Expr
	Then, Else Stmt // Else is nil when absent
}

func (s *IfStmt) BlockEnding() bool {
	return s.Else != nil && s.Then.BlockEnding() && s.Else.BlockEnding()
}

// WhileStmt is `while (cond) body`.
type WhileStmt struct {
	StmtBase
	Cond Expr
	Body Stmt
}

// DoWhileStmt is `do body while (cond);`.
type DoWhileStmt struct {
	StmtBase
	Body Stmt
	Cond Expr
}

// ForStmt is `for (init; cond; post) body`. Init and Post may be nil.
type ForStmt struct {
	StmtBase
	Init Stmt
	Cond Expr // nil means "always true"
	Post Stmt
	Body Stmt
}

// CaseClause is one `case VALUE:` or `default:` arm of a SwitchStmt.
type CaseClause struct {
	Start, End jaftoken.Pos
	Value      Expr // nil for default
	Body       []Stmt
}

func (c *CaseClause) Span() (start, end jaftoken.Pos) { return c.Start, c.End }

// SwitchStmt is `switch (tag) { case ...: ... default: ... }`. Emission is
// explicitly out of scope for this revision (§4.7); the analyser still
// type-checks it.
type SwitchStmt struct {
	StmtBase
	Tag   Expr
	Cases []*CaseClause
}

// ReturnStmt, BreakStmt, ContinueStmt and GotoStmt share the "control
// leaves this point unconditionally" shape; keeping them distinct types
// (rather than the teacher's single ReturnLikeStmt with a Type tag) keeps
// the emitter's control-flow lowering (§4.7) switch simpler to read since
// each has different payload needs (Result vs Label).
type ReturnStmt struct {
	StmtBase
	Result Expr // nil for a bare `return;`
}

func (ReturnStmt) BlockEnding() bool { return true }

type BreakStmt struct{ StmtBase }

func (BreakStmt) BlockEnding() bool { return true }

type ContinueStmt struct{ StmtBase }

func (ContinueStmt) BlockEnding() bool { return true }

type GotoStmt struct {
	StmtBase
	Label string
}

func (GotoStmt) BlockEnding() bool { return true }

// LabeledStmt is `label: stmt`.
type LabeledStmt struct {
	StmtBase
	Label string
	Stmt  Stmt
}

func (l *LabeledStmt) BlockEnding() bool { return l.Stmt.BlockEnding() }

// MessageStmt is JAF's `'text' call();`-shaped message statement: a
// literal string pushed to the message table, with an optional trailing
// function call (§3.3).
type MessageStmt struct {
	StmtBase
	MsgIndex int // filled once the string is interned into the message table
	Text     string
	Call     *CallExpr // nil when absent
}

// RAssignStmt is JAF's `<~` reference-assignment statement form, which
// rebinds a ref lvalue to point at a new referent rather than copying a
// value (§3.3's "rassign").
type RAssignStmt struct {
	StmtBase
	Lhs, Rhs Expr
}

// AssertStmt carries pre-rendered source text (for the runtime message on
// failure) alongside the condition to check (§3.3).
type AssertStmt struct {
	StmtBase
	Cond       Expr
	SourceText string
}

// FileMarkerStmt records a source-file boundary inside a concatenated
// multi-file compilation unit, matching §3.3's "file-boundary marker".
type FileMarkerStmt struct {
	StmtBase
	Filename string
}

func (FileMarkerStmt) BlockEnding() bool { return false }
