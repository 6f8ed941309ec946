package aincodec

import (
	"github.com/mna/ain-tools/internal/ainfile"
	"github.com/mna/ain-tools/internal/aintype"
)

// Each read*/write* pair below implements one four-byte-tagged section of
// §3.2/§4.1, applying the version-dependent rules from the authoritative
// list in §4.1. They all share the sticky reader/writer from cursor.go
// and writer_cursor.go, so a failure partway through a section just
// short-circuits every subsequent read without extra bookkeeping, mirroring
// asm_resolve_arg's style of threading one error value through a long
// operand-decoding switch.

func readVariable(r *reader, major int) *ainfile.Variable {
	v := &ainfile.Variable{}
	v.Name = r.cstring()
	if major >= 12 {
		v.Name2 = r.cstring()
	}
	v.Typ = r.readType(major)
	if major >= 8 {
		v.HasInit = r.u8() != 0
		if v.HasInit {
			v.InitVal = readInitval(r)
		}
	}
	return v
}

func writeVariable(w *writer, v *ainfile.Variable, major int) {
	w.cstring(v.Name)
	if major >= 12 {
		w.cstring(v.Name2)
	}
	w.writeType(v.Typ, major)
	if major >= 8 {
		if v.HasInit {
			w.u8(1)
			writeInitval(w, v.InitVal)
		} else {
			w.u8(0)
		}
	}
}

func readGlobalVariable(r *reader, major int) *ainfile.Variable {
	v := readVariable(r, major)
	if major >= 5 {
		v.GroupIndex = int(r.i32())
	}
	return v
}

func writeGlobalVariable(w *writer, v *ainfile.Variable, major int) {
	writeVariable(w, v, major)
	if major >= 5 {
		w.i32(int32(v.GroupIndex))
	}
}

func readInitval(r *reader) *ainfile.Initval {
	iv := &ainfile.Initval{}
	iv.Kind = ainfile.InitvalKind(r.u8())
	switch iv.Kind {
	case ainfile.InitvalFloat:
		iv.Float = r.f32()
	case ainfile.InitvalString:
		iv.Str = r.cstring()
	default: // int, bool
		iv.Int = int64(r.i32())
	}
	return iv
}

func writeInitval(w *writer, iv *ainfile.Initval) {
	w.u8(uint8(iv.Kind))
	switch iv.Kind {
	case ainfile.InitvalFloat:
		w.f32(iv.Float)
	case ainfile.InitvalString:
		w.cstring(iv.Str)
	default:
		w.i32(int32(iv.Int))
	}
}

func readFunction(r *reader, major int) *ainfile.Function {
	f := &ainfile.Function{}
	f.Name = r.cstring()
	f.ReturnType = r.readType(major)
	nargs := int(r.i32())
	nvars := int(r.i32())
	if major >= 1 {
		f.CRC = r.u32()
	}
	f.Vars = make([]*ainfile.Variable, nvars)
	for i := range f.Vars {
		f.Vars[i] = readVariable(r, major)
	}
	f.NumArgs = nargs
	if major >= 1 && major < 7 {
		f.IsLabel = r.u8() != 0
	}
	f.Address = int(r.i32())
	if major >= 11 {
		f.IsLambda = r.u8() != 0
	}
	f.SourceFile = -1
	return f
}

func writeFunction(w *writer, f *ainfile.Function, major int) {
	w.cstring(f.Name)
	w.writeType(f.ReturnType, major)
	w.i32(int32(f.NumArgs))
	w.i32(int32(len(f.Vars)))
	if major >= 1 {
		w.u32(f.CRC)
	}
	for _, v := range f.Vars {
		writeVariable(w, v, major)
	}
	if major >= 1 && major < 7 {
		if f.IsLabel {
			w.u8(1)
		} else {
			w.u8(0)
		}
	}
	w.i32(int32(f.Address))
	if major >= 11 {
		if f.IsLambda {
			w.u8(1)
		} else {
			w.u8(0)
		}
	}
}

func readStruct(r *reader, major, minor int) *ainfile.Struct {
	s := &ainfile.Struct{}
	s.Name = r.cstring()
	s.Constructor = int(r.i32())
	s.Destructor = int(r.i32())
	nmembers := int(r.i32())
	s.Members = make([]*ainfile.Variable, nmembers)
	for i := range s.Members {
		s.Members[i] = readVariable(r, major)
	}
	if major >= 11 {
		nifaces := int(r.i32())
		s.Interfaces = make([]ainfile.InterfaceEntry, nifaces)
		for i := range s.Interfaces {
			s.Interfaces[i] = ainfile.InterfaceEntry{
				StructType:   int(r.i32()),
				VtableOffset: int(r.i32()),
			}
		}
	}
	if major > 14 || (major == 14 && minor >= 1) {
		nvt := int(r.i32())
		s.Vtable = make([]int, nvt)
		for i := range s.Vtable {
			s.Vtable[i] = int(r.i32())
		}
	}
	return s
}

func writeStruct(w *writer, s *ainfile.Struct, major, minor int) {
	w.cstring(s.Name)
	w.i32(int32(s.Constructor))
	w.i32(int32(s.Destructor))
	w.i32(int32(len(s.Members)))
	for _, m := range s.Members {
		writeVariable(w, m, major)
	}
	if major >= 11 {
		w.i32(int32(len(s.Interfaces)))
		for _, iface := range s.Interfaces {
			w.i32(int32(iface.StructType))
			w.i32(int32(iface.VtableOffset))
		}
	}
	if major > 14 || (major == 14 && minor >= 1) {
		w.i32(int32(len(s.Vtable)))
		for _, fn := range s.Vtable {
			w.i32(int32(fn))
		}
	}
}

func readFunctionType(r *reader, major int) *ainfile.FunctionType {
	ft := &ainfile.FunctionType{}
	ft.Name = r.cstring()
	ft.ReturnType = r.readType(major)
	ft.NumArgs = int(r.i32())
	nvars := int(r.i32())
	ft.Vars = make([]*ainfile.Variable, nvars)
	for i := range ft.Vars {
		ft.Vars[i] = readVariable(r, major)
	}
	return ft
}

func writeFunctionType(w *writer, ft *ainfile.FunctionType, major int) {
	w.cstring(ft.Name)
	w.writeType(ft.ReturnType, major)
	w.i32(int32(ft.NumArgs))
	w.i32(int32(len(ft.Vars)))
	for _, v := range ft.Vars {
		writeVariable(w, v, major)
	}
}

func readHLLFunction(r *reader, major int) *ainfile.HLLFunction {
	hf := &ainfile.HLLFunction{}
	hf.Name = r.cstring()
	if major >= 14 {
		hf.ReturnType = r.readType(major)
	} else {
		hf.ReturnType = r.readShallowType()
	}
	nargs := int(r.i32())
	hf.Args = make([]aintype.Type, nargs)
	for i := range hf.Args {
		r.cstring() // argument name, not modeled, consumed and discarded
		if major >= 14 {
			hf.Args[i] = r.readType(major)
		} else {
			hf.Args[i] = r.readShallowType()
		}
	}
	return hf
}

func writeHLLFunction(w *writer, hf *ainfile.HLLFunction, major int) {
	w.cstring(hf.Name)
	if major >= 14 {
		w.writeType(hf.ReturnType, major)
	} else {
		w.writeShallowType(hf.ReturnType)
	}
	w.i32(int32(len(hf.Args)))
	for _, a := range hf.Args {
		w.cstring("") // argument names are not preserved by the in-memory model
		if major >= 14 {
			w.writeType(a, major)
		} else {
			w.writeShallowType(a)
		}
	}
}

func readLibrary(r *reader, major int) *ainfile.Library {
	lib := &ainfile.Library{}
	lib.Name = r.cstring()
	nfuncs := int(r.i32())
	lib.Functions = make([]*ainfile.HLLFunction, nfuncs)
	for i := range lib.Functions {
		lib.Functions[i] = readHLLFunction(r, major)
	}
	return lib
}

func writeLibrary(w *writer, lib *ainfile.Library, major int) {
	w.cstring(lib.Name)
	w.i32(int32(len(lib.Functions)))
	for _, f := range lib.Functions {
		writeHLLFunction(w, f, major)
	}
}

func readSwitch(r *reader) *ainfile.Switch {
	sw := &ainfile.Switch{}
	sw.CaseType = ainfile.SwitchCaseKind(r.u32())
	sw.DefaultAddr = int(int32(r.u32()))
	ncases := int(r.i32())
	sw.Cases = make([]ainfile.SwitchCase, ncases)
	for i := range sw.Cases {
		switch sw.CaseType {
		case ainfile.SwitchString:
			sw.Cases[i].StrValue = r.cstring()
		default:
			sw.Cases[i].IntValue = int64(r.i32())
		}
		sw.Cases[i].Address = int(r.i32())
	}
	return sw
}

func writeSwitch(w *writer, sw *ainfile.Switch) {
	w.u32(uint32(sw.CaseType))
	w.u32(uint32(int32(sw.DefaultAddr)))
	w.i32(int32(len(sw.Cases)))
	for _, c := range sw.Cases {
		switch sw.CaseType {
		case ainfile.SwitchString:
			w.cstring(c.StrValue)
		default:
			w.i32(int32(c.IntValue))
		}
		w.i32(int32(c.Address))
	}
}

func readEnum(r *reader) *ainfile.Enum {
	e := &ainfile.Enum{}
	e.Name = r.cstring()
	nsyms := int(r.i32())
	e.Symbols = make([]ainfile.EnumSymbol, nsyms)
	for i := range e.Symbols {
		e.Symbols[i].Name = r.cstring()
		e.Symbols[i].Value = int32(r.i32())
	}
	return e
}

func writeEnum(w *writer, e *ainfile.Enum) {
	w.cstring(e.Name)
	w.i32(int32(len(e.Symbols)))
	for _, s := range e.Symbols {
		w.cstring(s.Name)
		w.i32(s.Value)
	}
}
