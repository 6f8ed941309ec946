package jafparser

import (
	"github.com/mna/ain-tools/internal/ainfile"
	"github.com/mna/ain-tools/internal/aintype"
	"github.com/mna/ain-tools/internal/jafast"
	"github.com/mna/ain-tools/internal/jaftoken"
)

// parseTopDecl parses one top-level declaration and, for struct/interface/
// functype/delegate/enum/hll, registers its tag into the host AinFile
// immediately (§4.3) so later files in the same build see it. Recovers at
// declaration granularity on error.
func (p *parser) parseTopDecl() (decl jafast.Decl) {
	defer p.recoverDecl()

	switch p.tok {
	case jaftoken.STRUCT, jaftoken.INTERFACE:
		return p.parseStructDecl()
	case jaftoken.FUNCTYPE, jaftoken.DELEGATE:
		return p.parseFuncTypeDecl()
	case jaftoken.ENUMKW:
		return p.parseEnumDecl()
	case jaftoken.HLLKW:
		return p.parseHLLDecl()
	default:
		return p.parseFuncOrGlobalDecl()
	}
}

func (p *parser) parseParamList() []*jafast.Param {
	p.expect(jaftoken.LPAREN)
	var params []*jafast.Param
	for p.tok != jaftoken.RPAREN {
		if len(params) > 0 {
			p.expect(jaftoken.COMMA)
		}
		if p.tok == jaftoken.VOIDKW {
			// `(void)` means zero parameters.
			if len(params) == 0 {
				p.advance()
				break
			}
		}
		param := &jafast.Param{}
		param.TypeName = p.parseType(&param.Typ)
		if p.tok == jaftoken.IDENT {
			param.Name = p.val.Raw
			p.advance()
		}
		params = append(params, param)
	}
	p.expect(jaftoken.RPAREN)
	return params
}

// parseStructDecl parses `struct Name [: Iface, ...] { members... };` or
// `interface Name { methods... };` and registers the tag immediately,
// assigning it the next Structures index.
func (p *parser) parseStructDecl() jafast.Decl {
	isInterface := p.tok == jaftoken.INTERFACE
	start := p.pos()
	p.advance()

	name := p.expectIdent()
	d := &jafast.StructDecl{
		DeclBase:    jafast.DeclBase{Start: start, End: start},
		Name:        name,
		IsInterface: isInterface,
		StructIndex: len(p.af.Structures),
		Constructor: -1,
		Destructor:  -1,
	}

	if p.accept(jaftoken.COLON) {
		for {
			ifaceName := p.expectIdent()
			d.InterfaceNames = append(d.InterfaceNames, ifaceName)
			if !p.accept(jaftoken.COMMA) {
				break
			}
		}
	}

	p.expect(jaftoken.LBRACE)
	for p.tok != jaftoken.RBRACE {
		p.parseStructMember(d)
	}
	end := p.expect(jaftoken.RBRACE)
	p.accept(jaftoken.SEMI)
	d.End = end

	d.StructIndex = len(p.af.Structures)
	p.af.Structures = append(p.af.Structures, &ainfile.Struct{
		Name:        name,
		Index:       d.StructIndex,
		IsInterface: isInterface,
		Constructor: -1,
		Destructor:  -1,
	})
	return d
}

func (p *parser) parseStructMember(d *jafast.StructDecl) {
	if p.tok == jaftoken.OVERRIDE {
		p.advance()
	}
	// Constructor/destructor: `Name();` / `~Name();`.
	if p.tok == jaftoken.TILDE {
		destrPos := p.pos()
		p.advance()
		methodName := p.expectIdent()
		params := p.parseParamList()
		body := p.parseBlockIfPresent()
		fd := &jafast.FuncDecl{
			DeclBase:      jafast.DeclBase{Start: destrPos, End: destrPos},
			Name:          d.Name + "@" + methodName,
			Params:        params,
			Return:        aintype.New(aintype.Void),
			Body:          body,
			StructIndex:   d.StructIndex,
			IsMethod:      true,
			IsDestructor:  true,
			SuperIndex:    -1,
		}
		d.Methods = append(d.Methods, fd)
		return
	}
	if p.tok == jaftoken.IDENT && p.val.Raw == d.Name {
		ctorPos := p.pos()
		name := p.val.Raw
		p.advance()
		if p.tok == jaftoken.LPAREN {
			params := p.parseParamList()
			body := p.parseBlockIfPresent()
			fd := &jafast.FuncDecl{
				DeclBase:      jafast.DeclBase{Start: ctorPos, End: ctorPos},
				Name:          d.Name + "@" + name,
				Params:        params,
				Return:        aintype.New(aintype.Void),
				Body:          body,
				StructIndex:   d.StructIndex,
				IsMethod:      true,
				IsConstructor: true,
				SuperIndex:    -1,
			}
			d.Methods = append(d.Methods, fd)
			return
		}
		p.fatalf(ctorPos, "expected constructor parameter list after %q", name)
	}

	override := false
	if p.accept(jaftoken.OVERRIDE) {
		override = true
	}
	start := p.pos()
	typ := aintype.Type{}
	typeName := p.parseType(&typ)
	memberName := p.expectIdent()

	if p.tok == jaftoken.LPAREN {
		params := p.parseParamList()
		body := p.parseBlockIfPresent()
		fd := &jafast.FuncDecl{
			DeclBase:       jafast.DeclBase{Start: start, End: start},
			Name:           d.Name + "@" + memberName,
			Params:         params,
			Return:         typ,
			ReturnTypeName: typeName,
			Body:           body,
			StructIndex:    d.StructIndex,
			IsMethod:       true,
			Override:       override,
			SuperIndex:     -1,
		}
		d.Methods = append(d.Methods, fd)
		return
	}

	d.Members = append(d.Members, &jafast.StructMember{Typ: typ, TypeName: typeName, Name: memberName})
	for p.accept(jaftoken.COMMA) {
		more := p.expectIdent()
		d.Members = append(d.Members, &jafast.StructMember{Typ: typ, TypeName: typeName, Name: more})
	}
	p.expect(jaftoken.SEMI)
}

// parseFuncTypeDecl parses `functype Ret Name(params);` or `delegate Ret
// Name(params);` and registers the tag into Functions.Types or Delegates.
func (p *parser) parseFuncTypeDecl() jafast.Decl {
	isDelegate := p.tok == jaftoken.DELEGATE
	start := p.pos()
	p.advance()

	ret := aintype.Type{}
	retName := p.parseType(&ret)
	name := p.expectIdent()
	params := p.parseParamList()
	end := p.expect(jaftoken.SEMI)

	d := &jafast.FuncTypeDecl{
		DeclBase:       jafast.DeclBase{Start: start, End: end},
		Name:           name,
		Params:         params,
		Return:         ret,
		ReturnTypeName: retName,
		IsDelegate:     isDelegate,
	}

	ft := &ainfile.FunctionType{Name: name, NumArgs: len(params)}
	if isDelegate {
		d.FuncIndex = len(p.af.Delegates)
		ft.Index = d.FuncIndex
		p.af.Delegates = append(p.af.Delegates, ft)
	} else {
		d.FuncIndex = len(p.af.FunctionTypes)
		ft.Index = d.FuncIndex
		p.af.FunctionTypes = append(p.af.FunctionTypes, ft)
	}
	return d
}

func (p *parser) parseEnumDecl() jafast.Decl {
	start := p.pos()
	p.advance()
	name := p.expectIdent()
	p.expect(jaftoken.LBRACE)

	d := &jafast.EnumDecl{DeclBase: jafast.DeclBase{Start: start, End: start}, Name: name}
	var next int64
	for p.tok != jaftoken.RBRACE {
		symName := p.expectIdent()
		if p.accept(jaftoken.ASSIGN) {
			next = p.parseConstIntExpr()
		}
		d.Symbols = append(d.Symbols, jafast.EnumSymbol{Name: symName, Value: next})
		next++
		if !p.accept(jaftoken.COMMA) {
			break
		}
	}
	end := p.expect(jaftoken.RBRACE)
	p.accept(jaftoken.SEMI)
	d.End = end

	d.EnumIndex = len(p.af.Enums)
	enum := &ainfile.Enum{Name: name, Index: d.EnumIndex}
	for _, sym := range d.Symbols {
		enum.Symbols = append(enum.Symbols, ainfile.EnumSymbol{Name: sym.Name, Value: int32(sym.Value)})
	}
	p.af.Enums = append(p.af.Enums, enum)
	return d
}

// parseConstIntExpr parses a (possibly signed) integer literal, the only
// constant-expression shape enum initializers need.
func (p *parser) parseConstIntExpr() int64 {
	neg := p.accept(jaftoken.MINUS)
	pos := p.pos()
	if p.tok != jaftoken.INTLIT {
		p.fatalf(pos, "expected integer literal in enum initializer")
	}
	v := p.val.Int
	p.advance()
	if neg {
		v = -v
	}
	return v
}

func (p *parser) parseHLLDecl() jafast.Decl {
	start := p.pos()
	p.advance()
	name := p.expectIdent()
	p.expect(jaftoken.LBRACE)

	d := &jafast.HLLDecl{DeclBase: jafast.DeclBase{Start: start, End: start}, Name: name}
	lib := &ainfile.Library{Name: name}

	for p.tok != jaftoken.RBRACE {
		ret := aintype.Type{}
		retName := p.parseType(&ret)
		fname := p.expectIdent()
		params := p.parseParamList()
		p.expect(jaftoken.SEMI)
		d.Functions = append(d.Functions, &jafast.HLLFuncDecl{Name: fname, Params: params, Return: ret, ReturnTypeName: retName})

		hf := &ainfile.HLLFunction{Name: fname}
		for _, pa := range params {
			hf.Args = append(hf.Args, ainfile.TypeRef{})
			_ = pa
		}
		lib.Functions = append(lib.Functions, hf)
	}
	end := p.expect(jaftoken.RBRACE)
	p.accept(jaftoken.SEMI)
	d.End = end

	d.LibIndex = len(p.af.Libraries)
	lib.Index = d.LibIndex
	p.af.Libraries = append(p.af.Libraries, lib)
	return d
}

// parseFuncOrGlobalDecl parses `Type Name(params) { body }` or
// `Type Name [= init] [, Name2 ...];`. Neither is registered into the
// AinFile here: the declaration pass (jafresolve) assigns FuncIndex/
// GlobalIndex once every file of the build has been parsed (§4.4).
func (p *parser) parseFuncOrGlobalDecl() jafast.Decl {
	start := p.pos()
	qualConst := p.accept(jaftoken.CONST)

	typ := aintype.Type{}
	typeName := p.parseType(&typ)
	name := p.expectIdent()

	if p.tok == jaftoken.LPAREN {
		params := p.parseParamList()
		body := p.parseBlockIfPresent()
		return &jafast.FuncDecl{
			DeclBase:       jafast.DeclBase{Start: start, End: start},
			Name:           name,
			Params:         params,
			Return:         typ,
			ReturnTypeName: typeName,
			Body:           body,
			StructIndex:    -1,
			SuperIndex:     -1,
		}
	}

	return p.parseGlobalDeclRest(start, typ, typeName, name, qualConst)
}

func (p *parser) parseGlobalDeclRest(start jaftoken.Pos, typ aintype.Type, typeName, name string, _ bool) jafast.Decl {
	g := &jafast.GlobalDecl{DeclBase: jafast.DeclBase{Start: start, End: start}, Typ: typ, TypeName: typeName, Name: name}
	if p.accept(jaftoken.ASSIGN) {
		g.Init = p.parseAssignExpr()
	}
	// Multiple declarators sharing one type (`int a, b = 1;`) each get
	// their own GlobalDecl so the declaration pass can still register
	// each one independently.
	var extra []jafast.Decl
	for p.accept(jaftoken.COMMA) {
		n2 := p.expectIdent()
		g2 := &jafast.GlobalDecl{DeclBase: jafast.DeclBase{Start: start, End: start}, Typ: typ, TypeName: typeName, Name: n2}
		if p.accept(jaftoken.ASSIGN) {
			g2.Init = p.parseAssignExpr()
		}
		extra = append(extra, g2)
	}
	end := p.expect(jaftoken.SEMI)
	g.End = end
	if len(extra) == 0 {
		return g
	}
	// Surface the extra declarators via a wrapper the declaration pass
	// understands: register them as their own top-level decls by handing
	// them back through the parser's pending-decl queue.
	p.pendingDecls = append(p.pendingDecls, extra...)
	return g
}

func (p *parser) expectIdent() string {
	pos := p.pos()
	if p.tok != jaftoken.IDENT {
		p.fatalf(pos, "expected identifier, found %s", describe(p.tok, p.val))
	}
	name := p.val.Raw
	p.advance()
	return name
}

// parseBlockIfPresent parses a function body, or consumes a lone `;` for a
// prototype-only declaration (e.g. an interface method) and returns nil.
func (p *parser) parseBlockIfPresent() *jafast.BlockStmt {
	if p.tok == jaftoken.SEMI {
		p.advance()
		return nil
	}
	return p.parseBlock()
}
