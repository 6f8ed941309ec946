package emitter

import (
	"github.com/mna/ain-tools/internal/aintype"
	"github.com/mna/ain-tools/internal/jafast"
)

// emitCall lowers every CallKind the analyser can produce. Argument
// evaluation order always matches source order; the receiver (when one
// exists) is pushed before the arguments, matching how the original
// compiler lays out a method call's stack frame.
func (e *funcEmitter) emitCall(x *jafast.CallExpr) {
	switch x.Kind {
	case jafast.CallFunction:
		e.emitArgs(x.Args)
		e.line("CALLFUNC %s", e.af.Functions[x.FuncIndex].Name)

	case jafast.CallFuncType:
		e.emitFuncValueCall(x)

	case jafast.CallMethod:
		e.emitExpr(x.Fn)
		e.emitArgs(x.Args)
		e.line("CALLMETHOD %s", e.af.Functions[x.FuncIndex].Name)

	case jafast.CallSuper:
		e.line("PUSHSTRUCTPAGE")
		e.emitArgs(x.Args)
		e.line("CALLMETHOD %s", e.af.Functions[x.FuncIndex].Name)

	case jafast.CallInterface:
		e.emitInterfaceCall(x)

	case jafast.CallHLL:
		e.emitArgs(x.Args)
		e.line("CALLHLL %s %d", e.af.Libraries[x.LibIndex].Name, x.MethodIndex)

	case jafast.CallBuiltin:
		e.emitBuiltinCall(x)

	default:
		e.fail(x, "emitter: unsupported call kind for %s", x.Name)
	}
}

func (e *funcEmitter) emitArgs(args []jafast.Expr) {
	for _, a := range args {
		e.emitExpr(a)
	}
}

// emitFuncValueCall handles a functype- or delegate-valued callee invoked
// directly by name. A delegate invoked this way broadcasts to every
// registered target: DG_CALLBEGIN starts iteration, then each loop turn
// pushes a fresh copy of the arguments and DG_CALL invokes the next
// target, leaving a nonzero continuation flag that IFNZ loops on; a
// plain function pointer instead calls once through CALLFUNC2, which
// takes the callee's function index off the stack instead of as an
// immediate operand.
func (e *funcEmitter) emitFuncValueCall(x *jafast.CallExpr) {
	if x.Fn.Type().Tag == aintype.Delegate {
		e.emitExpr(x.Fn)
		e.line("DG_CALLBEGIN")
		top := e.newLabel()
		e.label(top)
		e.emitArgs(x.Args)
		e.line("DG_CALL")
		e.line("IFNZ %s", top)
		return
	}
	e.emitExpr(x.Fn)
	e.emitArgs(x.Args)
	e.line("CALLFUNC2")
}

// emitInterfaceCall dereferences the receiver's vtable at the interface's
// method slot to find the concrete function index, then calls through it
// the same way a function-typed value does (§4.7). The slot is the bare
// method index: the struct's vtable_offset for the interface is not added.
func (e *funcEmitter) emitInterfaceCall(x *jafast.CallExpr) {
	if _, ok := x.Fn.(*jafast.SuperExpr); ok {
		e.line("PUSHSTRUCTPAGE")
	} else {
		e.emitExpr(x.Fn)
	}
	e.line("PUSH %d", x.MethodIndex)
	if e.v14 {
		e.line("X_REF 1")
	} else {
		e.line("REF")
	}
	e.emitArgs(x.Args)
	e.line("CALLFUNC2")
}

// builtinOpcodes names the fixed AIN opcode backing each BuiltinMethod;
// unlike user functions, these never go through a symbol table.
var builtinOpcodes = map[aintype.BuiltinMethod]string{
	aintype.IntString:   "I_STRING",
	aintype.FloatString: "FTOS",

	aintype.StringInt:        "STOI",
	aintype.StringLength:     "S_LENGTH",
	aintype.StringLengthByte: "S_LENGTHBYTE",
	aintype.StringEmpty:      "S_EMPTY",
	aintype.StringFind:       "S_FIND",
	aintype.StringGetPart:    "S_GETPART",
	aintype.StringPushBack:   "S_PUSHBACK",
	aintype.StringPopBack:    "S_POPBACK",
	aintype.StringErase:      "S_ERASE",

	aintype.ArrayAlloc:    "A_ALLOC",
	aintype.ArrayRealloc:  "A_REALLOC",
	aintype.ArrayFree:     "A_FREE",
	aintype.ArrayNumof:    "A_NUMOF",
	aintype.ArrayCopy:     "A_COPY",
	aintype.ArrayFill:     "A_FILL",
	aintype.ArrayPushBack: "A_PUSHBACK",
	aintype.ArrayPopBack:  "A_POPBACK",
	aintype.ArrayEmpty:    "A_EMPTY",
	aintype.ArrayErase:    "A_ERASE",
	aintype.ArrayInsert:   "A_INSERT",
	aintype.ArraySort:     "A_SORT",
	aintype.ArrayFind:     "A_FIND",

	aintype.DelegateNumof: "DG_NUMOF",
	aintype.DelegateExist: "DG_EXIST",
	aintype.DelegateClear: "DG_CLEAR",
}

func (e *funcEmitter) emitBuiltinCall(x *jafast.CallExpr) {
	op, ok := builtinOpcodes[x.Builtin]
	if !ok {
		e.fail(x, "emitter: no opcode registered for builtin method %s", x.Name)
		return
	}
	e.emitExpr(x.Fn)
	e.emitArgs(x.Args)
	e.line(op)
}
