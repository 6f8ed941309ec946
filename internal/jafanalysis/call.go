package jafanalysis

import (
	"github.com/mna/ain-tools/internal/aintype"
	"github.com/mna/ain-tools/internal/jafast"
)

// checkCall retargets a CallExpr's Kind from the two shapes the parser can
// produce (CallFunction for a bare `name(...)`, CallMethod/CallSuper for
// `recv.name(...)`) to the concrete kind the emitter needs, resolving the
// callee against the function table, the struct/interface method tables,
// the HLL library table, the builtin method table, or a functype/delegate
// value, in that order. args are type-checked regardless of the call
// shape found.
func (a *analyzer) checkCall(x *jafast.CallExpr, wrap bool) (jafast.Expr, error) {
	switch x.Kind {
	case jafast.CallFunction:
		if err := a.resolveFunctionCall(x); err != nil {
			return x, err
		}
	case jafast.CallMethod, jafast.CallSuper:
		if err := a.resolveMethodCall(x); err != nil {
			return x, err
		}
	default:
		return x, a.typeErr(startPos(x), "jafanalysis: unexpected call kind on an unresolved call node")
	}

	for i, arg := range x.Args {
		checked, err := a.checkExpr(arg, true)
		if err != nil {
			return x, err
		}
		x.Args[i] = checked
	}

	x.Typ = a.callReturnType(x)

	if wrap && x.Typ.IsRef {
		s, e := x.Span()
		return &jafast.DummyRefExpr{ExprBase: jafast.ExprBase{Start: s, End: e, Typ: x.Typ}, Inner: x, Slot: -1}, nil
	}
	return x, nil
}

// resolveFunctionCall handles a bare `name(...)`: a free function, a
// functype/delegate-valued local or global invoked by name, or (when
// neither matches) an unresolved-name error. Plain JAF source has no
// other way to spell a call without a receiver, so syscalls and HLL calls
// are only reached through resolveMethodCall's library-qualified form.
func (a *analyzer) resolveFunctionCall(x *jafast.CallExpr) error {
	if fn, ok := a.funcsByName[x.Name]; ok {
		x.FuncIndex = fn.Index
		return nil
	}
	if v, ok := a.lookupLocal(x.Name); ok && isCallableValue(v.typ) {
		return a.resolveFuncTypeValueCall(x, v.typ)
	}
	if g, ok := a.globals[x.Name]; ok && isCallableValue(g.Typ) {
		return a.resolveFuncTypeValueCall(x, g.Typ)
	}
	return a.unresolvedErr(startPos(x), "undefined function: %s", x.Name)
}

func isCallableValue(t aintype.Type) bool {
	return t.Tag == aintype.FuncType || t.Tag == aintype.Delegate
}

func (a *analyzer) resolveFuncTypeValueCall(x *jafast.CallExpr, t aintype.Type) error {
	ident := &jafast.IdentExpr{ExprBase: jafast.ExprBase{Start: x.Start, End: x.Start}, Name: x.Name, Typ: t}
	resolved, err := a.checkIdent(ident)
	if err != nil {
		return err
	}
	x.Kind = jafast.CallFuncType
	x.Fn = resolved
	x.FuncIndex = t.FuncIndex
	return nil
}

// resolveMethodCall handles `recv.name(...)`: recv may be an HLL library
// name (not a value, so it is never run through checkExpr), `super`, or
// an ordinary expression whose resolved type selects a struct method, an
// interface method, or one of the fixed array/string/int/float/delegate
// builtins (§4.5).
func (a *analyzer) resolveMethodCall(x *jafast.CallExpr) error {
	if ident, ok := x.Fn.(*jafast.IdentExpr); ok {
		if lib, ok := a.libsByName[ident.Name]; ok {
			return a.resolveHLLCall(x, lib)
		}
	}
	if _, ok := x.Fn.(*jafast.SuperExpr); ok {
		return a.resolveSuperCall(x)
	}

	recv, err := a.checkExpr(x.Fn, true)
	if err != nil {
		return err
	}
	x.Fn = recv

	switch recv.Type().Tag {
	case aintype.Struct:
		return a.resolveStructMethod(x, recv.Type().StructIndex)
	case aintype.Iface:
		return a.resolveInterfaceMethod(x, recv.Type().StructIndex)
	case aintype.Array, aintype.RefArray:
		return a.resolveBuiltin(x, aintype.BuiltinLibArray, arrayBuiltins)
	case aintype.String:
		return a.resolveBuiltin(x, aintype.BuiltinLibString, stringBuiltins)
	case aintype.Delegate:
		return a.resolveBuiltin(x, aintype.BuiltinLibDelegate, delegateBuiltins)
	case aintype.Int, aintype.LongInt:
		return a.resolveBuiltin(x, aintype.BuiltinLibInt, intBuiltins)
	case aintype.Float:
		return a.resolveBuiltin(x, aintype.BuiltinLibFloat, floatBuiltins)
	}
	return a.typeErr(startPos(x), "%s has no method %s", describeType(recv.Type()), x.Name)
}

func (a *analyzer) resolveHLLCall(x *jafast.CallExpr, libIndex int) error {
	lib := a.af.Libraries[libIndex]
	for i, fn := range lib.Functions {
		if fn.Name == x.Name {
			x.Kind = jafast.CallHLL
			x.Fn = nil
			x.LibIndex = libIndex
			x.MethodIndex = i
			return nil
		}
	}
	return a.unresolvedErr(startPos(x), "library %s has no function %s", lib.Name, x.Name)
}

func (a *analyzer) resolveStructMethod(x *jafast.CallExpr, structIndex int) error {
	s := a.af.Structures[structIndex]
	qualified := s.Name + "@" + x.Name
	fn, ok := a.funcsByName[qualified]
	if !ok {
		return a.unresolvedErr(startPos(x), "struct %s has no method %s", s.Name, x.Name)
	}
	x.Kind = jafast.CallMethod
	x.StructIndex = structIndex
	x.FuncIndex = fn.Index
	return nil
}

// resolveInterfaceMethod resolves a call through an interface-typed
// receiver to its position in the interface's own method list. The
// runtime vtable_offset that adapts this index to whichever concrete
// struct backs the handle at runtime lives on the struct's
// InterfaceEntry, assigned when the struct was cast to the interface
// (§4.5); it is not re-derived here.
func (a *analyzer) resolveInterfaceMethod(x *jafast.CallExpr, ifaceIndex int) error {
	iface := a.af.Structures[ifaceIndex]
	for i, m := range iface.IfaceMethods {
		if m.Name == x.Name {
			x.Kind = jafast.CallInterface
			x.StructIndex = ifaceIndex
			x.MethodIndex = i
			return nil
		}
	}
	return a.unresolvedErr(startPos(x), "interface %s has no method %s", iface.Name, x.Name)
}

// resolveSuperCall resolves `super.Method()` to the first interface the
// enclosing struct implements that declares Method, a deliberate
// simplification: JAF structs have no base class, only interfaces, so
// "calling the super implementation" only makes sense against an
// interface's own method slot an override replaces.
func (a *analyzer) resolveSuperCall(x *jafast.CallExpr) error {
	if a.curStruct < 0 {
		return a.typeErr(startPos(x), "'super' used outside a method body")
	}
	s := a.af.Structures[a.curStruct]
	for _, ie := range s.Interfaces {
		iface := a.af.Structures[ie.StructType]
		for i, m := range iface.IfaceMethods {
			if m.Name == x.Name {
				x.Kind = jafast.CallInterface
				x.StructIndex = ie.StructType
				x.MethodIndex = i
				return nil
			}
		}
	}
	return a.unresolvedErr(startPos(x), "no super method %s found among %s's interfaces", x.Name, s.Name)
}

// builtinSig is one fixed-arity entry in a builtin method table.
type builtinSig struct {
	method aintype.BuiltinMethod
	ret    aintype.Tag
}

var arrayBuiltins = map[string]builtinSig{
	"Alloc":   {aintype.ArrayAlloc, aintype.Void},
	"Realloc": {aintype.ArrayRealloc, aintype.Void},
	"Free":    {aintype.ArrayFree, aintype.Void},
	"Numof":   {aintype.ArrayNumof, aintype.Int},
	"Copy":    {aintype.ArrayCopy, aintype.Void},
	"Fill":    {aintype.ArrayFill, aintype.Void},
	"PushBack": {aintype.ArrayPushBack, aintype.Void},
	"PopBack": {aintype.ArrayPopBack, aintype.Void},
	"Empty":   {aintype.ArrayEmpty, aintype.Bool},
	"Erase":   {aintype.ArrayErase, aintype.Bool},
	"Insert":  {aintype.ArrayInsert, aintype.Void},
	"Sort":    {aintype.ArraySort, aintype.Void},
	"Find":    {aintype.ArrayFind, aintype.Int},
}

var stringBuiltins = map[string]builtinSig{
	"Int":        {aintype.StringInt, aintype.Int},
	"Length":     {aintype.StringLength, aintype.Int},
	"LengthByte": {aintype.StringLengthByte, aintype.Int},
	"Empty":      {aintype.StringEmpty, aintype.Bool},
	"Find":       {aintype.StringFind, aintype.Int},
	"GetPart":    {aintype.StringGetPart, aintype.String},
	"PushBack":   {aintype.StringPushBack, aintype.Void},
	"PopBack":    {aintype.StringPopBack, aintype.Void},
	"Erase":      {aintype.StringErase, aintype.Void},
}

var delegateBuiltins = map[string]builtinSig{
	"Numof": {aintype.DelegateNumof, aintype.Int},
	"Exist": {aintype.DelegateExist, aintype.Bool},
	"Clear": {aintype.DelegateClear, aintype.Void},
}

var intBuiltins = map[string]builtinSig{
	"String": {aintype.IntString, aintype.String},
}

var floatBuiltins = map[string]builtinSig{
	"String": {aintype.FloatString, aintype.String},
}

func (a *analyzer) resolveBuiltin(x *jafast.CallExpr, lib aintype.BuiltinLib, table map[string]builtinSig) error {
	sig, ok := table[x.Name]
	if !ok {
		return a.unresolvedErr(startPos(x), "no builtin method %s for this type", x.Name)
	}
	x.Kind = jafast.CallBuiltin
	x.BuiltinLib = lib
	x.Builtin = sig.method
	return nil
}

// callReturnType derives the return type now that x.Kind/target fields are
// resolved, independent of the answer callReturnType gave before
// resolution (the parser leaves ExprBase.Typ zero).
func (a *analyzer) callReturnType(x *jafast.CallExpr) aintype.Type {
	switch x.Kind {
	case jafast.CallFunction, jafast.CallMethod, jafast.CallSuper:
		return a.af.Functions[x.FuncIndex].ReturnType
	case jafast.CallFuncType:
		if x.Fn != nil && x.Fn.Type().Tag == aintype.Delegate {
			return a.af.Delegates[x.FuncIndex].ReturnType
		}
		return a.af.FunctionTypes[x.FuncIndex].ReturnType
	case jafast.CallHLL:
		return a.af.Libraries[x.LibIndex].Functions[x.MethodIndex].ReturnType
	case jafast.CallInterface:
		return a.af.Structures[x.StructIndex].IfaceMethods[x.MethodIndex].ReturnType
	case jafast.CallBuiltin:
		return builtinReturnType(x.BuiltinLib, x.Builtin)
	}
	return aintype.New(aintype.Void)
}

func builtinReturnType(lib aintype.BuiltinLib, m aintype.BuiltinMethod) aintype.Type {
	var table map[string]builtinSig
	switch lib {
	case aintype.BuiltinLibArray:
		table = arrayBuiltins
	case aintype.BuiltinLibString:
		table = stringBuiltins
	case aintype.BuiltinLibDelegate:
		table = delegateBuiltins
	case aintype.BuiltinLibInt:
		table = intBuiltins
	case aintype.BuiltinLibFloat:
		table = floatBuiltins
	}
	for _, sig := range table {
		if sig.method == m {
			return aintype.New(sig.ret)
		}
	}
	return aintype.New(aintype.Void)
}
