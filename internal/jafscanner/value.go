package jafscanner

import "github.com/mna/ain-tools/internal/jaftoken"

// Value carries the decoded payload of a scanned token alongside its raw
// source text and position. Only the field matching the token kind is
// meaningful: Int for INTLIT, Float for FLOATLIT, Str for STRINGLIT/
// CHARLIT/COMMENT.
type Value struct {
	Raw   string
	Pos   jaftoken.Pos
	Int   int64
	Float float64
	Str   string
}
