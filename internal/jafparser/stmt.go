package jafparser

import (
	"github.com/mna/ain-tools/internal/aintype"
	"github.com/mna/ain-tools/internal/jafast"
	"github.com/mna/ain-tools/internal/jaftoken"
)

// parseBlock parses `{ stmt... }`, recovering per-statement so one
// malformed statement doesn't lose the rest of the block.
func (p *parser) parseBlock() *jafast.BlockStmt {
	start := p.expect(jaftoken.LBRACE)
	b := &jafast.BlockStmt{StmtBase: jafast.StmtBase{Start: start}}
	for p.tok != jaftoken.RBRACE && p.tok != jaftoken.EOF {
		s := p.parseStmtRecovered()
		if s != nil {
			b.List = append(b.List, s)
		}
	}
	end := p.expect(jaftoken.RBRACE)
	b.End = end
	return b
}

func (p *parser) parseStmtRecovered() (s jafast.Stmt) {
	defer func() {
		if r := p.recoverStmt(); r != nil {
			s = r
		}
	}()
	return p.parseStmt()
}

// isTypeStart reports whether the current token can begin a type
// specifier, used to tell a variable declaration apart from an expression
// statement at block-statement granularity.
func (p *parser) isTypeStart() bool {
	switch p.tok {
	case jaftoken.REF, jaftoken.VOIDKW, jaftoken.INTKW, jaftoken.LINTKW,
		jaftoken.BOOLKW, jaftoken.FLOATKW, jaftoken.STRINGKW, jaftoken.CONST:
		return true
	case jaftoken.IDENT:
		// `Name ident` (two identifiers in a row) is a declaration of a
		// named (struct/enum/functype) type; a bare `Name` alone, or
		// `Name(` / `Name.`/ `Name =` etc., is an expression statement.
		return p.peekTok == jaftoken.IDENT
	}
	return false
}

func (p *parser) parseStmt() jafast.Stmt {
	start := p.pos()
	switch p.tok {
	case jaftoken.LBRACE:
		return p.parseBlock()
	case jaftoken.IF:
		return p.parseIf()
	case jaftoken.WHILE:
		return p.parseWhile()
	case jaftoken.DO:
		return p.parseDoWhile()
	case jaftoken.FOR:
		return p.parseFor()
	case jaftoken.SWITCH:
		return p.parseSwitch()
	case jaftoken.BREAK:
		p.advance()
		end := p.expect(jaftoken.SEMI)
		return &jafast.BreakStmt{StmtBase: jafast.StmtBase{Start: start, End: end}}
	case jaftoken.CONTINUE:
		p.advance()
		end := p.expect(jaftoken.SEMI)
		return &jafast.ContinueStmt{StmtBase: jafast.StmtBase{Start: start, End: end}}
	case jaftoken.GOTO:
		p.advance()
		label := p.expectIdent()
		end := p.expect(jaftoken.SEMI)
		return &jafast.GotoStmt{StmtBase: jafast.StmtBase{Start: start, End: end}, Label: label}
	case jaftoken.RETURN:
		p.advance()
		var result jafast.Expr
		if p.tok != jaftoken.SEMI {
			result = p.parseExpr()
		}
		end := p.expect(jaftoken.SEMI)
		return &jafast.ReturnStmt{StmtBase: jafast.StmtBase{Start: start, End: end}, Result: result}
	case jaftoken.ASSERT:
		return p.parseAssert()
	case jaftoken.STRINGLIT:
		return p.parseMessage()
	default:
		if p.isTypeStart() {
			return p.parseVarDeclStmt()
		}
		if p.tok == jaftoken.IDENT && p.peekTok == jaftoken.COLON {
			return p.parseLabeled()
		}
		return p.parseExprOrRAssignStmt()
	}
}

func (p *parser) parseIf() jafast.Stmt {
	start := p.pos()
	p.advance()
	p.expect(jaftoken.LPAREN)
	cond := p.parseExpr()
	p.expect(jaftoken.RPAREN)
	then := p.parseStmt()
	var els jafast.Stmt
	end := end2(then)
	if p.accept(jaftoken.ELSE) {
		els = p.parseStmt()
		end = end2(els)
	}
	return &jafast.IfStmt{StmtBase: jafast.StmtBase{Start: start, End: end}, Cond: cond, Then: then, Else: els}
}

func (p *parser) parseWhile() jafast.Stmt {
	start := p.pos()
	p.advance()
	p.expect(jaftoken.LPAREN)
	cond := p.parseExpr()
	p.expect(jaftoken.RPAREN)
	body := p.parseStmt()
	return &jafast.WhileStmt{StmtBase: jafast.StmtBase{Start: start, End: end2(body)}, Cond: cond, Body: body}
}

func (p *parser) parseDoWhile() jafast.Stmt {
	start := p.pos()
	p.advance()
	body := p.parseStmt()
	p.expect(jaftoken.WHILE)
	p.expect(jaftoken.LPAREN)
	cond := p.parseExpr()
	p.expect(jaftoken.RPAREN)
	end := p.expect(jaftoken.SEMI)
	return &jafast.DoWhileStmt{StmtBase: jafast.StmtBase{Start: start, End: end}, Body: body, Cond: cond}
}

func (p *parser) parseFor() jafast.Stmt {
	forStart := p.pos()
	p.advance()
	p.expect(jaftoken.LPAREN)

	var init jafast.Stmt
	if p.tok != jaftoken.SEMI {
		if p.isTypeStart() {
			init = p.parseVarDeclStmt()
		} else {
			x := p.parseExpr()
			semiEnd := p.expect(jaftoken.SEMI)
			init = &jafast.ExprStmt{StmtBase: jafast.StmtBase{Start: start(x), End: semiEnd}, X: x}
		}
	} else {
		p.advance()
	}

	var cond jafast.Expr
	if p.tok != jaftoken.SEMI {
		cond = p.parseExpr()
	}
	p.expect(jaftoken.SEMI)

	var post jafast.Stmt
	if p.tok != jaftoken.RPAREN {
		x := p.parseExpr()
		post = &jafast.ExprStmt{StmtBase: jafast.StmtBase{Start: start(x), End: end(x)}, X: x}
	}
	p.expect(jaftoken.RPAREN)

	body := p.parseStmt()
	return &jafast.ForStmt{
		StmtBase: jafast.StmtBase{Start: forStart, End: end2(body)},
		Init:     init, Cond: cond, Post: post, Body: body,
	}
}

func (p *parser) parseSwitch() jafast.Stmt {
	start := p.pos()
	p.advance()
	p.expect(jaftoken.LPAREN)
	tag := p.parseExpr()
	p.expect(jaftoken.RPAREN)
	p.expect(jaftoken.LBRACE)

	sw := &jafast.SwitchStmt{StmtBase: jafast.StmtBase{Start: start}, Tag: tag}
	for p.tok != jaftoken.RBRACE && p.tok != jaftoken.EOF {
		sw.Cases = append(sw.Cases, p.parseCaseClause())
	}
	end := p.expect(jaftoken.RBRACE)
	sw.End = end
	return sw
}

func (p *parser) parseCaseClause() *jafast.CaseClause {
	start := p.pos()
	c := &jafast.CaseClause{Start: start}
	if p.accept(jaftoken.DEFAULT) {
		p.expect(jaftoken.COLON)
	} else {
		p.expect(jaftoken.CASE)
		c.Value = p.parseExpr()
		p.expect(jaftoken.COLON)
	}
	for p.tok != jaftoken.CASE && p.tok != jaftoken.DEFAULT && p.tok != jaftoken.RBRACE && p.tok != jaftoken.EOF {
		s := p.parseStmtRecovered()
		if s != nil {
			c.Body = append(c.Body, s)
		}
	}
	c.End = p.lastEnd
	return c
}

func (p *parser) parseAssert() jafast.Stmt {
	start := p.pos()
	p.advance()
	p.expect(jaftoken.LPAREN)
	condStart := p.file.Offset(p.pos())
	cond := p.parseExpr()
	condEnd := p.file.Offset(p.lastEnd)
	p.expect(jaftoken.RPAREN)
	end := p.expect(jaftoken.SEMI)
	return &jafast.AssertStmt{
		StmtBase:   jafast.StmtBase{Start: start, End: end},
		Cond:       cond,
		SourceText: string(p.src[condStart:condEnd]),
	}
}

func (p *parser) parseMessage() jafast.Stmt {
	start := p.pos()
	str := p.val.Str
	p.advance()
	for p.tok == jaftoken.STRINGLIT {
		str += p.val.Str
		p.advance()
	}
	m := &jafast.MessageStmt{StmtBase: jafast.StmtBase{Start: start}, Text: str}
	if p.tok != jaftoken.SEMI {
		call := p.parseExpr()
		if ce, ok := call.(*jafast.CallExpr); ok {
			m.Call = ce
		} else {
			p.errorf(start, "expected call expression after message literal")
		}
	}
	end := p.expect(jaftoken.SEMI)
	m.End = end
	return m
}

func (p *parser) parseLabeled() jafast.Stmt {
	start := p.pos()
	label := p.val.Raw
	p.advance()
	p.expect(jaftoken.COLON)
	inner := p.parseStmt()
	return &jafast.LabeledStmt{StmtBase: jafast.StmtBase{Start: start, End: end2(inner)}, Label: label, Stmt: inner}
}

func (p *parser) parseVarDeclStmt() jafast.Stmt {
	start := p.pos()
	p.accept(jaftoken.CONST)
	typ := aintype.Type{}
	typeName := p.parseType(&typ)
	name := p.expectIdent()

	v := &jafast.VarDeclStmt{StmtBase: jafast.StmtBase{Start: start}, Typ: typ, TypeName: typeName, Name: name}
	if p.accept(jaftoken.ASSIGN) {
		v.Init = p.parseAssignExpr()
	}

	if p.tok == jaftoken.COMMA {
		// Additional declarators sharing this type become a synthetic
		// block so the caller sees a single Stmt; the allocator and
		// analyser both just walk whatever Stmt shape they're handed.
		list := &jafast.BlockStmt{StmtBase: jafast.StmtBase{Start: start}, List: []jafast.Stmt{v}}
		for p.accept(jaftoken.COMMA) {
			n2 := p.expectIdent()
			v2 := &jafast.VarDeclStmt{StmtBase: jafast.StmtBase{Start: start}, Typ: typ, TypeName: typeName, Name: n2}
			if p.accept(jaftoken.ASSIGN) {
				v2.Init = p.parseAssignExpr()
			}
			list.List = append(list.List, v2)
		}
		end := p.expect(jaftoken.SEMI)
		list.End = end
		v.End = end
		return list
	}

	end := p.expect(jaftoken.SEMI)
	v.End = end
	return v
}

func (p *parser) parseExprOrRAssignStmt() jafast.Stmt {
	start := p.pos()
	x := p.parseExpr()
	if p.tok == jaftoken.RASSIGN {
		p.advance()
		rhs := p.parseExpr()
		end := p.expect(jaftoken.SEMI)
		return &jafast.RAssignStmt{StmtBase: jafast.StmtBase{Start: start, End: end}, Lhs: x, Rhs: rhs}
	}
	end := p.expect(jaftoken.SEMI)
	return &jafast.ExprStmt{StmtBase: jafast.StmtBase{Start: start, End: end}, X: x}
}

func end2(s jafast.Stmt) jaftoken.Pos { _, e := s.Span(); return e }
