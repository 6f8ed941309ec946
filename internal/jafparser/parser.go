// Package jafparser implements the JAF recursive-descent parser (§4.3): it
// turns source text into the jafast tree and, for struct/interface/functype/
// delegate declarations, registers their tag into the host AinFile the
// moment the tag is seen so later files in the same build can name it.
//
// The error-recovery shape (a panic/recover sentinel unwound at statement
// granularity so one malformed statement doesn't abort the whole file) is
// adapted from the teacher's lang/parser.parser, itself built on
// recursive-descent-with-panic the way Go's own go/parser recovers per
// top-level declaration.
package jafparser

import (
	"errors"

	"github.com/mna/ain-tools/internal/ainfile"
	"github.com/mna/ain-tools/internal/jafast"
	"github.com/mna/ain-tools/internal/jaferr"
	"github.com/mna/ain-tools/internal/jafscanner"
	"github.com/mna/ain-tools/internal/jaftoken"
)

var errPanicMode = errors.New("jafparser: panic mode")

// parser holds the mutable state of one file's parse. A new parser is
// created per file; the AinFile passed to Parse accumulates struct/
// interface/functype/delegate tags across files in a build.
type parser struct {
	af   *ainfile.AinFile
	file *jaftoken.File
	src  []byte
	sc   jafscanner.Scanner

	tok jaftoken.Token
	val jafscanner.Value

	// peekTok/peekVal hold one token of lookahead beyond tok/val, needed
	// to disambiguate a cast's leading '(' from a parenthesized
	// expression without backtracking.
	peekTok jaftoken.Token
	peekVal jafscanner.Value

	// lastEnd is the end position of the most recently consumed token,
	// used to compute an accurate End span for nodes built from a
	// variable-length sequence of tokens (call argument lists, postfix
	// chains, string concatenation).
	lastEnd jaftoken.Pos

	errs         []error
	pendingDecls []jafast.Decl
}

// Parse parses one JAF source file's bytes against fset, registering
// struct/interface/functype/delegate tags into af as they are declared, and
// returns the resulting AST. Every bare-identifier type reference parsed
// along the way is left as a placeholder Type plus a sibling *TypeName
// string field on whichever AST node carries it, for jafresolve's
// declaration pass to patch once every tag in the compilation unit has
// been registered (§4.4). A non-nil error means at least one fatal parse
// error occurred; af may still have partial tag registrations from
// declarations that parsed successfully before the error.
func Parse(af *ainfile.AinFile, fset *jaftoken.FileSet, filename string, src []byte) (*jafast.File, error) {
	p := &parser{af: af, src: src}
	p.file = fset.AddFile(filename, len(src))
	p.sc.Init(p.file, src, p.onScanError)
	p.scanNext(&p.tok, &p.val)
	p.scanNext(&p.peekTok, &p.peekVal)

	file := &jafast.File{Name: filename}
	for p.tok != jaftoken.EOF {
		d := p.parseTopDecl()
		if d != nil {
			file.Decls = append(file.Decls, d)
		}
		if len(p.pendingDecls) > 0 {
			file.Decls = append(file.Decls, p.pendingDecls...)
			p.pendingDecls = nil
		}
	}

	if len(p.errs) == 0 {
		return file, nil
	}
	return file, errors.Join(p.errs...)
}

func (p *parser) onScanError(pos jaftoken.Position, msg string) {
	p.errs = append(p.errs, jaferr.At(jaferr.InvalidInput, pos, "", "%s", msg))
}

func (p *parser) advance() {
	p.lastEnd = endAfter(p.val.Pos, p.val.Raw)
	p.tok, p.val = p.peekTok, p.peekVal
	p.scanNext(&p.peekTok, &p.peekVal)
}

func (p *parser) scanNext(tok *jaftoken.Token, val *jafscanner.Value) {
	*tok = p.sc.Scan(val)
	for *tok == jaftoken.COMMENT {
		*tok = p.sc.Scan(val)
	}
}

func (p *parser) pos() jaftoken.Pos { return p.val.Pos }

func (p *parser) position(pos jaftoken.Pos) jaftoken.Position { return p.file.Position(pos) }

// expect consumes the current token if it matches any of toks, returning its
// position; otherwise it records a fatal error and unwinds via panic, to be
// recovered at statement/declaration granularity.
func (p *parser) expect(toks ...jaftoken.Token) jaftoken.Pos {
	pos := p.pos()
	for _, t := range toks {
		if p.tok == t {
			p.advance()
			return pos
		}
	}
	p.errorf(pos, "expected %s, found %s", expectedList(toks), describe(p.tok, p.val))
	panic(errPanicMode)
}

func (p *parser) accept(tok jaftoken.Token) bool {
	if p.tok == tok {
		p.advance()
		return true
	}
	return false
}

func (p *parser) errorf(pos jaftoken.Pos, format string, args ...any) {
	p.errs = append(p.errs, jaferr.At(jaferr.InvalidInput, p.position(pos), "", format, args...))
}

func (p *parser) fatalf(pos jaftoken.Pos, format string, args ...any) {
	p.errorf(pos, format, args...)
	panic(errPanicMode)
}

func expectedList(toks []jaftoken.Token) string {
	if len(toks) == 1 {
		return toks[0].String()
	}
	s := "one of "
	for i, t := range toks {
		if i > 0 {
			s += ", "
		}
		s += t.String()
	}
	return s
}

func describe(tok jaftoken.Token, val jafscanner.Value) string {
	if val.Raw != "" {
		return val.Raw
	}
	return tok.String()
}

// recoverDecl recovers from a panic(errPanicMode) raised while parsing one
// top-level declaration, skipping tokens until a synchronizing point (";"
// or the matching "}") so the next declaration can be attempted.
func (p *parser) recoverDecl() {
	if r := recover(); r != nil {
		if r != errPanicMode {
			panic(r)
		}
		p.syncDecl()
	}
}

func (p *parser) syncDecl() {
	depth := 0
	for {
		switch p.tok {
		case jaftoken.EOF:
			return
		case jaftoken.LBRACE:
			depth++
		case jaftoken.RBRACE:
			if depth == 0 {
				p.advance()
				return
			}
			depth--
		case jaftoken.SEMI:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

// recoverStmt mirrors recoverDecl but for statement-level resumption inside
// a function body.
func (p *parser) recoverStmt() jafast.Stmt {
	if r := recover(); r != nil {
		if r != errPanicMode {
			panic(r)
		}
		p.syncStmt()
	}
	return nil
}

func (p *parser) syncStmt() {
	for {
		switch p.tok {
		case jaftoken.EOF, jaftoken.SEMI:
			if p.tok == jaftoken.SEMI {
				p.advance()
			}
			return
		case jaftoken.RBRACE:
			return
		}
		p.advance()
	}
}
