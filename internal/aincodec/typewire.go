package aincodec

import "github.com/mna/ain-tools/internal/aintype"

// wireTag is the on-disk encoding of a basic aintype.Tag. Legacy (pre-v11)
// containers store one array tag per rank/element combination rather than
// a uniform array<T>; this table only covers the scalar/aggregate tags
// that are stable across every version, matching the values recovered
// for the intermediate tags in jaf.h's enum _ain_type (255 - N, reused
// here unmodified since those never round-trip through a real container
// but must still agree with the in-memory Tag ordering during disassembly
// of a raw opcode operand that names a type).
type wireTag = uint8

const (
	wireVoid        wireTag = 0
	wireInt         wireTag = 10
	wireFloat       wireTag = 11
	wireString      wireTag = 12
	wireStruct      wireTag = 13
	wireArray1      wireTag = 14 // rank-1 array, legacy per-element-type family base
	wireRefInt      wireTag = 18
	wireRefFloat    wireTag = 19
	wireRefString   wireTag = 20
	wireRefStruct   wireTag = 21
	wireRefArray1   wireTag = 22
	wireIMainSystem wireTag = 23
	wireFuncType    wireTag = 24
	wireRefFuncType wireTag = 25
	wireBool        wireTag = 26
	wireRefBool     wireTag = 27
	wireLongInt     wireTag = 28
	wireRefLongInt  wireTag = 29
	wireDelegate    wireTag = 30
	wireRefDelegate wireTag = 31
	wireIface       wireTag = 32
	wireRefIface    wireTag = 33
	wireEnum        wireTag = 34
	wireRefEnum     wireTag = 35
	wireArray       wireTag = 40 // uniform array<T>, major >= 11
	wireRefArray    wireTag = 41
	wireWrap        wireTag = 42
	wireHLLParam    wireTag = 43

	// Intermediate tags, grounded verbatim on jaf.h's enum _ain_type. These
	// never appear in an on-disk file; they only show up transiently when
	// disassembling an operand whose kind the assembler has not yet
	// resolved to a concrete address.
	wireFunction wireTag = 255 - 0
	wireLibrary  wireTag = 255 - 1
	wireSystem   wireTag = 255 - 2
	wireSyscall  wireTag = 255 - 3
	wireHLLCall  wireTag = 255 - 4
	wireMethod   wireTag = 255 - 5
	wireBuiltin  wireTag = 255 - 6
	wireSuper    wireTag = 255 - 7
	wireNullType wireTag = 255 - 8
	wireIMethod  wireTag = 255 - 9
)

// tagToWire maps an in-memory Tag (plus its IsRef flag for scalars) to the
// byte written for a pre-v11 type slot, or as the tag half of a full
// AinType for v11+.
func tagToWire(t aintype.Type) wireTag {
	if t.IsRef {
		switch t.Tag {
		case aintype.Int:
			return wireRefInt
		case aintype.Float:
			return wireRefFloat
		case aintype.String:
			return wireRefString
		case aintype.Struct:
			return wireRefStruct
		case aintype.Bool:
			return wireRefBool
		case aintype.LongInt:
			return wireRefLongInt
		case aintype.FuncType:
			return wireRefFuncType
		case aintype.Delegate:
			return wireRefDelegate
		case aintype.Iface:
			return wireRefIface
		case aintype.Enum:
			return wireRefEnum
		case aintype.Array:
			return wireRefArray
		case aintype.RefArray:
			return wireRefArray1
		}
	}
	switch t.Tag {
	case aintype.Void:
		return wireVoid
	case aintype.Int:
		return wireInt
	case aintype.LongInt:
		return wireLongInt
	case aintype.Bool:
		return wireBool
	case aintype.Float:
		return wireFloat
	case aintype.String:
		return wireString
	case aintype.Struct:
		return wireStruct
	case aintype.Iface:
		return wireIface
	case aintype.Enum:
		return wireEnum
	case aintype.Array:
		return wireArray
	case aintype.RefArray:
		return wireRefArray1
	case aintype.FuncType:
		return wireFuncType
	case aintype.Delegate:
		return wireDelegate
	case aintype.HLLParam:
		return wireHLLParam
	case aintype.IMainSystem:
		return wireIMainSystem
	case aintype.Wrap:
		return wireWrap
	case aintype.Function:
		return wireFunction
	case aintype.Library:
		return wireLibrary
	case aintype.System:
		return wireSystem
	case aintype.Syscall:
		return wireSyscall
	case aintype.HLLCall:
		return wireHLLCall
	case aintype.Method:
		return wireMethod
	case aintype.Builtin:
		return wireBuiltin
	case aintype.Super:
		return wireSuper
	case aintype.NullType:
		return wireNullType
	case aintype.IMethod:
		return wireIMethod
	default:
		return wireVoid
	}
}

// wireToTag is the inverse of tagToWire for the non-ref basic tags; ref
// variants are folded back with IsRef set.
func wireToTag(w wireTag) aintype.Type {
	switch w {
	case wireVoid:
		return aintype.New(aintype.Void)
	case wireInt:
		return aintype.New(aintype.Int)
	case wireRefInt:
		return aintype.New(aintype.Int).Ref()
	case wireLongInt:
		return aintype.New(aintype.LongInt)
	case wireRefLongInt:
		return aintype.New(aintype.LongInt).Ref()
	case wireBool:
		return aintype.New(aintype.Bool)
	case wireRefBool:
		return aintype.New(aintype.Bool).Ref()
	case wireFloat:
		return aintype.New(aintype.Float)
	case wireRefFloat:
		return aintype.New(aintype.Float).Ref()
	case wireString:
		return aintype.New(aintype.String)
	case wireRefString:
		return aintype.New(aintype.String).Ref()
	case wireStruct:
		return aintype.New(aintype.Struct)
	case wireRefStruct:
		return aintype.New(aintype.Struct).Ref()
	case wireIface:
		return aintype.New(aintype.Iface)
	case wireRefIface:
		return aintype.New(aintype.Iface).Ref()
	case wireEnum:
		return aintype.New(aintype.Enum)
	case wireRefEnum:
		return aintype.New(aintype.Enum).Ref()
	case wireArray, wireArray1:
		return aintype.New(aintype.Array)
	case wireRefArray, wireRefArray1:
		return aintype.New(aintype.RefArray)
	case wireFuncType:
		return aintype.New(aintype.FuncType)
	case wireRefFuncType:
		return aintype.New(aintype.FuncType).Ref()
	case wireDelegate:
		return aintype.New(aintype.Delegate)
	case wireRefDelegate:
		return aintype.New(aintype.Delegate).Ref()
	case wireHLLParam:
		return aintype.New(aintype.HLLParam)
	case wireIMainSystem:
		return aintype.New(aintype.IMainSystem)
	case wireWrap:
		return aintype.New(aintype.Wrap)
	default:
		return aintype.New(aintype.Void)
	}
}

// readType reads a type slot: a single tag byte plus, for major >= 11
// array tags, a recursive element type (§4.1).
func (r *reader) readType(major int) aintype.Type {
	tag := r.typeTag()
	t := wireToTag(tag)
	t.StructIndex = int(r.i32())
	if (t.Tag == aintype.Array || t.Tag == aintype.RefArray) && major >= 11 {
		t.Rank = int(r.i32())
		elem := r.readType(major)
		t.Elem = &elem
	} else if t.Tag == aintype.Array || t.Tag == aintype.RefArray {
		t.Rank = int(r.i32())
	}
	return t
}

func (w *writer) writeType(t aintype.Type, major int) {
	w.u8(tagToWire(t))
	w.i32(int32(t.StructIndex))
	if t.Tag == aintype.Array || t.Tag == aintype.RefArray {
		w.i32(int32(t.Rank))
		if major >= 11 && t.Elem != nil {
			w.writeType(*t.Elem, major)
		}
	}
}

// readShallowType reads a tag-only type (pre-v14 HLL parameter/return
// type), with no struct index or recursive element.
func (r *reader) readShallowType() aintype.Type {
	return wireToTag(r.typeTag())
}

func (w *writer) writeShallowType(t aintype.Type) {
	w.u8(tagToWire(t))
}
