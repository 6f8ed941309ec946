// Package jafast defines the JAF abstract syntax tree: a set of tagged
// variant node types (one Go type per shape, no inheritance-based visitor
// hierarchy) following the pattern of the teacher's lang/ast package. Every
// node carries its own source span and, for expressions, a resolved
// AinType filled in by the resolver/analyser passes.
package jafast

import "github.com/mna/ain-tools/internal/jaftoken"

// Node is implemented by every AST node.
type Node interface {
	// Span returns the node's source extent.
	Span() (start, end jaftoken.Pos)
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
	// BlockEnding reports whether control can never fall through past
	// this statement (return/break/continue/goto), matching the
	// teacher's ReturnLikeStmt.BlockEnding pattern.
	BlockEnding() bool
}

// Decl is implemented by top-level declarations registered into the host
// AinFile during parsing (§4.3): struct, interface, functype, delegate,
// function, global variable, and HLL header declarations.
type Decl interface {
	Node
	declNode()
}

// File is one parsed JAF source file: its name and its ordered list of
// top-level declarations. It holds no file-boundary marker statements.
type File struct {
	Name  string
	Decls []Decl
}

// Span returns the extent from the first declaration's start to the last
// declaration's end, or two NoPos values for a file with no declarations.
func (f *File) Span() (start, end jaftoken.Pos) {
	if len(f.Decls) == 0 {
		return jaftoken.NoPos, jaftoken.NoPos
	}
	start, _ = f.Decls[0].Span()
	_, end = f.Decls[len(f.Decls)-1].Span()
	return start, end
}

// IsAssignable reports whether e can appear on the left of an assignment
// or as the operand of ++/--/&. Mirrors the teacher's
// lang/ast.IsAssignable, generalized to JAF's lvalue shapes.
func IsAssignable(e Expr) bool {
	switch x := e.(type) {
	case *IdentExpr:
		return true
	case *MemberExpr:
		return x.Kind != MemberMethod
	case *SubscriptExpr:
		return true
	default:
		return false
	}
}
