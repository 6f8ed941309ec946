package jafparser

import (
	"github.com/mna/ain-tools/internal/aintype"
	"github.com/mna/ain-tools/internal/jaftoken"
)

// parseType parses a type specifier: an optional `ref` qualifier, a base
// keyword or a struct/interface/functype/delegate/enum name, followed by
// zero or more `[]` array-rank suffixes, writes it into dst, and returns
// the bare identifier named (empty string for a builtin keyword type).
//
// A bare identifier leaves dst holding a placeholder (Tag: aintype.Struct,
// StructIndex: -1) — or, for an array of a named type, leaves dst's Elem
// holding the placeholder — until jafresolve's declaration pass has seen
// every tag in the compilation unit (§4.4) and can look the name up
// against the host AinFile's tag tables. The caller is responsible for
// stashing the returned name in whatever sibling *TypeName field the AST
// node it is building carries, since aintype.Type is a plain value copied
// freely through the tree and cannot be patched by address once copied.
func (p *parser) parseType(dst *aintype.Type) string {
	ref := p.accept(jaftoken.REF)

	var name string

	switch p.tok {
	case jaftoken.VOIDKW:
		p.advance()
		*dst = aintype.New(aintype.Void)
	case jaftoken.INTKW:
		p.advance()
		*dst = aintype.New(aintype.Int)
	case jaftoken.LINTKW:
		p.advance()
		*dst = aintype.New(aintype.LongInt)
	case jaftoken.BOOLKW:
		p.advance()
		*dst = aintype.New(aintype.Bool)
	case jaftoken.FLOATKW:
		p.advance()
		*dst = aintype.New(aintype.Float)
	case jaftoken.STRINGKW:
		p.advance()
		*dst = aintype.New(aintype.String)
	case jaftoken.IDENT:
		name = p.val.Raw
		p.advance()
		*dst = aintype.NewStruct(aintype.Struct, -1)
	default:
		p.fatalf(p.pos(), "expected type specifier, found %s", describe(p.tok, p.val))
	}

	rank := 0
	for p.tok == jaftoken.LBRACK {
		p.advance()
		p.expect(jaftoken.RBRACK)
		rank++
	}

	if rank > 0 {
		elem := new(aintype.Type)
		*elem = *dst
		*dst = aintype.NewArray(false, rank, elem)
	}

	if ref {
		*dst = dst.Ref()
	}

	return name
}

// parseTypeValue is a convenience wrapper for call sites that only need
// the type value and its bare name, not a declaration-shaped AST field to
// stash the name in (e.g. `new`'s target type).
func (p *parser) parseTypeValue() (aintype.Type, string) {
	var t aintype.Type
	name := p.parseType(&t)
	return t, name
}
