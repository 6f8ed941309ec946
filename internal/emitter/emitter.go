// Package emitter lowers an analysed, allocated build down to JAM
// assembly text and hands it to jamasm.Assembler to produce the final
// bytecode (§4.7). It generates text rather than raw opcodes directly so
// the version-dependent opcode selection jamasm's pseudo-ops already
// encode (LOCALREF/LOCALASSIGN/... choosing between the classic and
// X_-family encodings) is reused instead of duplicated; only the
// sequences jamasm has no pseudo-op for (arithmetic, calls, control flow)
// pick explicitly between a classic and v14+ opcode.
//
// This mirrors the teacher's lang/compiler, which also walks a checked
// AST to emit a textual assembly-ish intermediate before a final encode
// pass, generalized here to JAF's richer type system and AIN's call
// shapes.
package emitter

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mna/ain-tools/internal/ainfile"
	"github.com/mna/ain-tools/internal/aintype"
	"github.com/mna/ain-tools/internal/jafast"
	"github.com/mna/ain-tools/internal/jaferr"
	"github.com/mna/ain-tools/internal/jafresolve"
	"github.com/mna/ain-tools/internal/jamasm"
)

// Emit lowers every function body and constant global initializer in res
// to bytecode, appending it to af via a jamasm.Assembler.
func Emit(af *ainfile.AinFile, res *jafresolve.Result) error {
	for _, g := range res.Globals {
		installGlobalInit(af, g)
	}

	var buf bytes.Buffer
	var errs []error
	for _, fn := range res.Funcs {
		if fn.Body == nil {
			continue // HLL/interface prototype: no code of its own
		}
		e := &funcEmitter{af: af, buf: &buf, v14: af.Version.AtLeast(14, 0), locals: map[string]int{}}
		for i, p := range fn.Params {
			e.locals[p.Name] = i
		}
		e.emitFunc(fn)
		errs = append(errs, e.errs...)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	asm := jamasm.New(af)
	return asm.Append(buf.Bytes())
}

// installGlobalInit records a constant global initializer directly in
// af.Initvals. A non-constant initializer (one referencing another global
// or a function call) has no bytecode home of its own in this revision,
// since AIN globals are only ever seeded from the static Initval table;
// it is skipped: no Initval is recorded and no diagnostic is reported.
func installGlobalInit(af *ainfile.AinFile, g *jafast.GlobalDecl) {
	lit, ok := g.Init.(*jafast.LiteralExpr)
	if !ok {
		return
	}
	iv := &ainfile.Initval{GlobalIndex: g.GlobalIndex}
	switch lit.Kind {
	case jafast.LiteralInt:
		iv.Kind = ainfile.InitvalInt
		iv.Int = lit.Int
	case jafast.LiteralFloat:
		iv.Kind = ainfile.InitvalFloat
		iv.Float = float32(lit.Float)
	case jafast.LiteralString:
		iv.Kind = ainfile.InitvalString
		iv.Str = lit.Str
	case jafast.LiteralBool:
		iv.Kind = ainfile.InitvalInt
		if lit.Bool {
			iv.Int = 1
		}
	}
	af.Initvals = append(af.Initvals, iv)
	af.Globals[g.GlobalIndex].HasInit = true
	af.Globals[g.GlobalIndex].InitVal = iv
}

// loopCtx tracks the label targets `break`/`continue` resolve to inside
// the loop currently being emitted.
type loopCtx struct {
	breakLabel    string
	continueLabel string
}

type funcEmitter struct {
	af      *ainfile.AinFile
	buf     *bytes.Buffer
	v14     bool
	labelN  int
	loops   []*loopCtx
	errs    []error
	curFunc *jafast.FuncDecl

	// locals maps every local name seen so far (parameters, then each
	// VarDeclStmt as emitVarDecl walks past it) to its jafalloc-assigned
	// slot. Dummy-ref temporaries are not recorded here; emitDummyRef
	// reads DummyRefExpr.Slot directly. JAF locals never shadow by block, so
	// a flat map mirrors jafalloc's own flat counter.
	locals map[string]int
}

func (e *funcEmitter) newLabel() string {
	e.labelN++
	return fmt.Sprintf("L%d_%d", e.curFunc.FuncIndex, e.labelN)
}

func (e *funcEmitter) line(format string, args ...any) {
	fmt.Fprintf(e.buf, "\t"+format+"\n", args...)
}

func (e *funcEmitter) label(name string) {
	fmt.Fprintf(e.buf, "%s:\n", name)
}

func (e *funcEmitter) fail(pos jafast.Node, format string, args ...any) {
	e.errs = append(e.errs, jaferr.New(jaferr.InternalError, format, args...))
}

// emitFunc lowers one function body, finishing with the implicit default
// return value for its declared type (§4.7's "Default return").
func (e *funcEmitter) emitFunc(fn *jafast.FuncDecl) {
	e.curFunc = fn
	fmt.Fprintf(e.buf, "function %s\n", fn.Name)
	e.emitStmt(fn.Body)
	e.emitDefaultReturn(fn.Return)
	fmt.Fprintf(e.buf, "endfunction\n")
}

func (e *funcEmitter) emitDefaultReturn(ret aintype.Type) {
	switch ret.Tag {
	case aintype.Void:
	case aintype.Int, aintype.LongInt, aintype.Bool:
		e.line("PUSH 0")
	case aintype.Float:
		e.line("F_PUSH 0.0")
	case aintype.String:
		e.line("S_PUSH %q", "")
	default:
		// Struct/array/delegate/functype handles default to -1 ("no
		// object"), matching the original's null-handle convention.
		e.line("PUSH -1")
	}
	e.line("RETURN")
}
