package jafparser

import (
	"github.com/mna/ain-tools/internal/jafast"
	"github.com/mna/ain-tools/internal/jaftoken"
)

// parseExpr parses the comma operator, the widest expression grammar
// (used for statement-level expressions and for-loop clauses).
func (p *parser) parseExpr() jafast.Expr {
	x := p.parseAssignExpr()
	for p.tok == jaftoken.COMMA {
		p.advance()
		y := p.parseAssignExpr()
		x = &jafast.SeqExpr{ExprBase: span(x), X: x, Y: y}
	}
	return x
}

var assignOps = map[jaftoken.Token]bool{
	jaftoken.ASSIGN: true, jaftoken.PLUSEQ: true, jaftoken.MINUSEQ: true,
	jaftoken.STAREQ: true, jaftoken.SLASHEQ: true, jaftoken.PERCENTEQ: true,
	jaftoken.AMPEQ: true, jaftoken.PIPEEQ: true, jaftoken.CARETEQ: true,
	jaftoken.LTLTEQ: true, jaftoken.GTGTEQ: true, jaftoken.CHAREQ: true,
}

// parseAssignExpr parses `lvalue op= expr` (right-associative) or falls
// through to the ternary grammar.
func (p *parser) parseAssignExpr() jafast.Expr {
	x := p.parseTernary()
	if assignOps[p.tok] {
		op := p.tok
		p.advance()
		rhs := p.parseAssignExpr()
		if !jafast.IsAssignable(x) {
			p.errorf(start(x), "left-hand side of assignment is not assignable")
		}
		return &jafast.AssignExpr{ExprBase: spanTo(x, rhs), Op: op, Lhs: x, Rhs: rhs}
	}
	return x
}

func (p *parser) parseTernary() jafast.Expr {
	cond := p.parseLogicalOr()
	if p.tok == jaftoken.QUESTION {
		p.advance()
		then := p.parseAssignExpr()
		p.expect(jaftoken.COLON)
		els := p.parseAssignExpr()
		return &jafast.TernaryExpr{ExprBase: spanTo(cond, els), Cond: cond, Then: then, Else: els}
	}
	return cond
}

func (p *parser) parseLogicalOr() jafast.Expr {
	x := p.parseLogicalAnd()
	for p.tok == jaftoken.OROR {
		p.advance()
		y := p.parseLogicalAnd()
		x = &jafast.BinaryExpr{ExprBase: spanTo(x, y), Op: jaftoken.OROR, X: x, Y: y}
	}
	return x
}

func (p *parser) parseLogicalAnd() jafast.Expr {
	x := p.parseBitOr()
	for p.tok == jaftoken.ANDAND {
		p.advance()
		y := p.parseBitOr()
		x = &jafast.BinaryExpr{ExprBase: spanTo(x, y), Op: jaftoken.ANDAND, X: x, Y: y}
	}
	return x
}

func (p *parser) parseBitOr() jafast.Expr {
	x := p.parseBitXor()
	for p.tok == jaftoken.PIPE {
		p.advance()
		y := p.parseBitXor()
		x = &jafast.BinaryExpr{ExprBase: spanTo(x, y), Op: jaftoken.PIPE, X: x, Y: y}
	}
	return x
}

func (p *parser) parseBitXor() jafast.Expr {
	x := p.parseBitAnd()
	for p.tok == jaftoken.CARET {
		p.advance()
		y := p.parseBitAnd()
		x = &jafast.BinaryExpr{ExprBase: spanTo(x, y), Op: jaftoken.CARET, X: x, Y: y}
	}
	return x
}

func (p *parser) parseBitAnd() jafast.Expr {
	x := p.parseEquality()
	for p.tok == jaftoken.AMP {
		p.advance()
		y := p.parseEquality()
		x = &jafast.BinaryExpr{ExprBase: spanTo(x, y), Op: jaftoken.AMP, X: x, Y: y}
	}
	return x
}

func (p *parser) parseEquality() jafast.Expr {
	x := p.parseRelational()
	for {
		op := p.tok
		if op == jaftoken.REF && p.peekIsEqOrNeq() {
			p.advance()
			if p.tok == jaftoken.EQ {
				op = jaftoken.REQ
			} else {
				op = jaftoken.RNEQ
			}
			p.advance()
		} else if op == jaftoken.EQ || op == jaftoken.NEQ {
			p.advance()
		} else {
			break
		}
		y := p.parseRelational()
		x = &jafast.BinaryExpr{ExprBase: spanTo(x, y), Op: op, X: x, Y: y}
	}
	return x
}

// peekIsEqOrNeq reports whether the token after the current REF is == or
// !=, distinguishing `x ref == y` from a `ref` type qualifier (which never
// appears in this grammar position).
func (p *parser) peekIsEqOrNeq() bool {
	return p.peekTok == jaftoken.EQ || p.peekTok == jaftoken.NEQ
}

func (p *parser) parseRelational() jafast.Expr {
	x := p.parseShift()
	for p.tok == jaftoken.LT || p.tok == jaftoken.GT || p.tok == jaftoken.LE || p.tok == jaftoken.GE {
		op := p.tok
		p.advance()
		y := p.parseShift()
		x = &jafast.BinaryExpr{ExprBase: spanTo(x, y), Op: op, X: x, Y: y}
	}
	return x
}

func (p *parser) parseShift() jafast.Expr {
	x := p.parseAdditive()
	for p.tok == jaftoken.LTLT || p.tok == jaftoken.GTGT {
		op := p.tok
		p.advance()
		y := p.parseAdditive()
		x = &jafast.BinaryExpr{ExprBase: spanTo(x, y), Op: op, X: x, Y: y}
	}
	return x
}

func (p *parser) parseAdditive() jafast.Expr {
	x := p.parseMultiplicative()
	for p.tok == jaftoken.PLUS || p.tok == jaftoken.MINUS {
		op := p.tok
		p.advance()
		y := p.parseMultiplicative()
		x = &jafast.BinaryExpr{ExprBase: spanTo(x, y), Op: op, X: x, Y: y}
	}
	return x
}

func (p *parser) parseMultiplicative() jafast.Expr {
	x := p.parseUnary()
	for p.tok == jaftoken.STAR || p.tok == jaftoken.SLASH || p.tok == jaftoken.PERCENT {
		op := p.tok
		p.advance()
		y := p.parseUnary()
		x = &jafast.BinaryExpr{ExprBase: spanTo(x, y), Op: op, X: x, Y: y}
	}
	return x
}

func (p *parser) parseUnary() jafast.Expr {
	switch p.tok {
	case jaftoken.PLUS, jaftoken.MINUS, jaftoken.TILDE, jaftoken.BANG, jaftoken.AMP:
		pos := p.pos()
		op := p.tok
		p.advance()
		x := p.parseUnary()
		return &jafast.UnaryExpr{ExprBase: jafast.ExprBase{Start: pos, End: end(x)}, Op: op, X: x}
	case jaftoken.INC, jaftoken.DEC:
		pos := p.pos()
		op := p.tok
		p.advance()
		x := p.parseUnary()
		return &jafast.UnaryExpr{ExprBase: jafast.ExprBase{Start: pos, End: end(x)}, Op: op, X: x}
	case jaftoken.LPAREN:
		if p.looksLikeCast() {
			pos := p.pos()
			p.advance()
			typ, _ := p.parseTypeValue()
			p.expect(jaftoken.RPAREN)
			x := p.parseUnary()
			return &jafast.CastExpr{ExprBase: jafast.ExprBase{Start: pos, End: end(x), Typ: typ}, X: x}
		}
	}
	return p.parsePostfix()
}

// looksLikeCast reports whether the parenthesized expression starting at
// the current '(' is a type cast, i.e. the token after '(' is a type
// keyword. Named-type casts (`(StructName)x`) are ambiguous with a
// parenthesized identifier expression in a one-token lookahead grammar, so
// only built-in keyword casts are recognized; this matches the common JAF
// cast usage (`(int)f`, `(string)i`, `(float)i`).
func (p *parser) looksLikeCast() bool {
	switch p.peekTok {
	case jaftoken.INTKW, jaftoken.LINTKW, jaftoken.BOOLKW, jaftoken.FLOATKW, jaftoken.STRINGKW:
		return true
	}
	return false
}

func (p *parser) parsePostfix() jafast.Expr {
	x := p.parsePrimary()
	for {
		switch p.tok {
		case jaftoken.DOT:
			p.advance()
			name := p.expectIdent()
			kind := jafast.MemberField
			if p.tok == jaftoken.LPAREN {
				kind = jafast.MemberMethod
			}
			x = &jafast.MemberExpr{ExprBase: jafast.ExprBase{Start: start(x), End: p.lastEnd}, X: x, Name: name, Kind: kind}
			if kind == jafast.MemberMethod {
				x = p.parseCallTail(x.(*jafast.MemberExpr))
			}
		case jaftoken.LBRACK:
			p.advance()
			idx := p.parseExpr()
			rb := p.expect(jaftoken.RBRACK)
			x = &jafast.SubscriptExpr{ExprBase: jafast.ExprBase{Start: start(x), End: rb}, X: x, Index: idx}
		case jaftoken.INC, jaftoken.DEC:
			op := p.tok
			endPos := p.pos()
			p.advance()
			x = &jafast.UnaryExpr{ExprBase: jafast.ExprBase{Start: start(x), End: endPos}, Op: op, X: x, Postfix: true}
		case jaftoken.COLONCOLON:
			// Super/qualified method reference `Struct::method`, used for
			// delegate-valued expressions (`&S::m`); handled by the unary
			// '&' producer, so a bare postfix occurrence here is a plain
			// method group reference left to the analyser to interpret.
			p.advance()
			name := p.expectIdent()
			x = &jafast.MemberExpr{ExprBase: jafast.ExprBase{Start: start(x), End: p.lastEnd}, X: x, Name: name, Kind: jafast.MemberMethod}
		case jaftoken.LPAREN:
			if ident, ok := x.(*jafast.IdentExpr); ok {
				x = p.parseCallFromIdent(ident)
				continue
			}
			return x
		default:
			return x
		}
	}
}

func (p *parser) parseCallFromIdent(ident *jafast.IdentExpr) jafast.Expr {
	args := p.parseArgs()
	return &jafast.CallExpr{
		ExprBase: jafast.ExprBase{Start: ident.Start, End: p.lastEnd},
		Kind:     jafast.CallFunction,
		Name:     ident.Name,
		Args:     args,
		FuncIndex: -1, LibIndex: -1, StructIndex: -1, MethodIndex: -1,
	}
}

func (p *parser) parseCallTail(m *jafast.MemberExpr) jafast.Expr {
	args := p.parseArgs()
	kind := jafast.CallMethod
	if _, ok := m.X.(*jafast.SuperExpr); ok {
		kind = jafast.CallSuper
	}
	return &jafast.CallExpr{
		ExprBase: jafast.ExprBase{Start: m.Start, End: p.lastEnd},
		Kind:     kind,
		Fn:       m.X,
		Name:     m.Name,
		Args:     args,
		FuncIndex: -1, LibIndex: -1, StructIndex: -1, MethodIndex: -1,
	}
}

func (p *parser) parseArgs() []jafast.Expr {
	p.expect(jaftoken.LPAREN)
	var args []jafast.Expr
	for p.tok != jaftoken.RPAREN {
		if len(args) > 0 {
			p.expect(jaftoken.COMMA)
		}
		args = append(args, p.parseAssignExpr())
	}
	p.lastEnd = p.expect(jaftoken.RPAREN)
	return args
}

func (p *parser) parsePrimary() jafast.Expr {
	pos := p.pos()
	switch p.tok {
	case jaftoken.INTLIT:
		v := p.val.Int
		raw := p.val.Raw
		p.lastEnd = endAfter(pos, raw)
		p.advance()
		return &jafast.LiteralExpr{ExprBase: jafast.ExprBase{Start: pos, End: p.lastEnd}, Kind: jafast.LiteralInt, Int: v, Raw: raw}
	case jaftoken.FLOATLIT:
		v := p.val.Float
		raw := p.val.Raw
		p.lastEnd = endAfter(pos, raw)
		p.advance()
		return &jafast.LiteralExpr{ExprBase: jafast.ExprBase{Start: pos, End: p.lastEnd}, Kind: jafast.LiteralFloat, Float: v, Raw: raw}
	case jaftoken.STRINGLIT:
		str := p.val.Str
		raw := p.val.Raw
		p.advance()
		// Adjacent string literals concatenate implicitly.
		for p.tok == jaftoken.STRINGLIT {
			str += p.val.Str
			raw += p.val.Raw
			p.advance()
		}
		p.lastEnd = endAfter(pos, raw)
		return &jafast.LiteralExpr{ExprBase: jafast.ExprBase{Start: pos, End: p.lastEnd}, Kind: jafast.LiteralString, Str: str, Raw: raw}
	case jaftoken.CHARLIT:
		str := p.val.Str
		raw := p.val.Raw
		p.lastEnd = endAfter(pos, raw)
		p.advance()
		return &jafast.LiteralExpr{ExprBase: jafast.ExprBase{Start: pos, End: p.lastEnd}, Kind: jafast.LiteralString, Str: str, Raw: raw}
	case jaftoken.NULL:
		p.advance()
		return &jafast.NullExpr{ExprBase: jafast.ExprBase{Start: pos, End: pos}}
	case jaftoken.THIS:
		p.advance()
		return &jafast.ThisExpr{ExprBase: jafast.ExprBase{Start: pos, End: pos}}
	case jaftoken.SUPER:
		p.advance()
		return &jafast.SuperExpr{ExprBase: jafast.ExprBase{Start: pos, End: pos}}
	case jaftoken.NEW:
		p.advance()
		typ, typeName := p.parseTypeValue()
		args := p.parseArgs()
		return &jafast.NewExpr{ExprBase: jafast.ExprBase{Start: pos, End: p.lastEnd, Typ: typ}, TypeName: typeName, Args: args}
	case jaftoken.IDENT:
		name := p.val.Raw
		p.lastEnd = endAfter(pos, name)
		p.advance()
		return &jafast.IdentExpr{ExprBase: jafast.ExprBase{Start: pos, End: p.lastEnd}, Name: name, Index: -1}
	case jaftoken.LPAREN:
		p.advance()
		x := p.parseExpr()
		p.lastEnd = p.expect(jaftoken.RPAREN)
		return x
	}
	p.fatalf(pos, "expected expression, found %s", describe(p.tok, p.val))
	return nil
}

func endAfter(start jaftoken.Pos, raw string) jaftoken.Pos { return start + jaftoken.Pos(len(raw)) }

func span(x jafast.Expr) jafast.ExprBase {
	s, e := x.Span()
	return jafast.ExprBase{Start: s, End: e}
}

func spanTo(x, y jafast.Expr) jafast.ExprBase {
	s, _ := x.Span()
	_, e := y.Span()
	return jafast.ExprBase{Start: s, End: e}
}

func start(x jafast.Expr) jaftoken.Pos { s, _ := x.Span(); return s }
func end(x jafast.Expr) jaftoken.Pos   { _, e := x.Span(); return e }
