// Package aintype defines the closed set of runtime types shared by the
// compiler and the target VM, plus the intermediate tags used only while
// resolving names and checking types.
package aintype

import "fmt"

// Tag identifies a basic AIN type. The ordering here is arbitrary; it is not
// the on-disk encoding (see the aincodec package for that mapping).
type Tag uint8

const (
	Void Tag = iota
	Int
	LongInt
	Bool
	Float
	String
	Struct
	Iface
	Enum
	Array
	RefArray
	FuncType
	Delegate
	HLLParam
	IMainSystem
	Wrap

	// Ref is not itself a tag value produced by the lexer; a Type with
	// IsRef set denotes "ref T" for a base tag T. Scalar refs occupy two
	// local slots (see ainfile.Variable).

	// Intermediate tags. A Type carrying one of these must never reach
	// the binary codec; the static analyser rewrites every node down to
	// a concrete tag (or a call/member node with a resolved target)
	// before the emitter runs.
	Function
	Library
	System
	Syscall
	HLLCall
	Method
	Builtin
	Super
	NullType
	IMethod

	maxTag
)

var tagNames = [...]string{
	Void:        "void",
	Int:         "int",
	LongInt:     "lint",
	Bool:        "bool",
	Float:       "float",
	String:      "string",
	Struct:      "struct",
	Iface:       "iface",
	Enum:        "enum",
	Array:       "array",
	RefArray:    "ref_array",
	FuncType:    "functype",
	Delegate:    "delegate",
	HLLParam:    "hll_param",
	IMainSystem: "imain_system",
	Wrap:        "wrap",
	Function:    "<function>",
	Library:     "<library>",
	System:      "<system>",
	Syscall:     "<syscall>",
	HLLCall:     "<hllcall>",
	Method:      "<method>",
	Builtin:     "<builtin>",
	Super:       "<super>",
	NullType:    "<null>",
	IMethod:     "<imethod>",
}

func (t Tag) String() string {
	if int(t) >= len(tagNames) || tagNames[t] == "" {
		return fmt.Sprintf("<invalid tag %d>", t)
	}
	return tagNames[t]
}

// IsIntermediate reports whether t is one of the type-checking-only tags
// that must never be serialized into an .ain container.
func (t Tag) IsIntermediate() bool {
	return t >= Function && t < maxTag
}

// BuiltinMethod enumerates the fixed set of array/string/delegate builtin
// methods recognized by the static analyser. The concrete list and the
// negative library IDs that distinguish "true" builtins from HLL-exposed
// ones are grounded on the original source's jaf_builtin_method/
// jaf_builtin_lib enums.
type BuiltinMethod int

const (
	IntString BuiltinMethod = iota
	FloatString
	StringInt
	StringLength
	StringLengthByte
	StringEmpty
	StringFind
	StringGetPart
	StringPushBack
	StringPopBack
	StringErase

	ArrayAlloc
	ArrayRealloc
	ArrayFree
	ArrayNumof
	ArrayCopy
	ArrayFill
	ArrayPushBack
	ArrayPopBack
	ArrayEmpty
	ArrayErase
	ArrayInsert
	ArraySort
	ArrayFind

	DelegateNumof
	DelegateExist
	DelegateClear
)

// BuiltinLib identifies which synthesized builtin family a BuiltinMethod
// belongs to. Values are negative in the original source to distinguish
// them from positive, real library indices; this type keeps that
// distinction visible without overloading a plain int.
type BuiltinLib int8

const (
	BuiltinLibInt      BuiltinLib = -1
	BuiltinLibFloat    BuiltinLib = -2
	BuiltinLibString   BuiltinLib = -3
	BuiltinLibArray    BuiltinLib = -4
	BuiltinLibDelegate BuiltinLib = -5
)

// Type is a full AinType: a tag plus the auxiliary data needed to resolve
// or serialize it without a second lookup.
type Type struct {
	Tag Tag

	// IsRef marks "ref T". Scalar ref types occupy two local slots; see
	// ainfile.Variable.
	IsRef bool

	// StructIndex is the struct/interface index for Tag==Struct/Iface,
	// or -1.
	StructIndex int

	// FuncIndex is the function-type/delegate index for
	// Tag==FuncType/Delegate, or -1.
	FuncIndex int

	// Rank is the array nesting depth for Tag==Array/RefArray.
	Rank int

	// Elem is the recursive element type, used for v11+ array<T> and for
	// wrap<T>. Nil when not applicable.
	Elem *Type

	// Intermediate-tag payloads. Exactly one is meaningful, selected by
	// Tag; all others are zero. Grounded on the aintype.Tag.IsIntermediate
	// set and on jaf.h's enum jaf_expression_type call variants.
	FunctionIndex int        // Tag==Function, Syscall
	LibraryIndex  int        // Tag==Library, HLLCall (HLL index)
	LibFuncIndex  int        // Tag==HLLCall (function-within-library index)
	MethodStruct  int        // Tag==Method, IMethod, Super (owning struct index)
	MethodIndex   int        // Tag==Method, IMethod (method index within struct)
	VtableOffset  int        // Tag==IMethod (interface's vtable_offset)
	Builtin       BuiltinMethod // Tag==Builtin
	BuiltinLib    BuiltinLib    // Tag==Builtin
}

// New returns a plain, non-ref, non-array Type for a scalar tag.
func New(tag Tag) Type {
	return Type{Tag: tag, StructIndex: -1, FuncIndex: -1}
}

// NewStruct returns a struct- or interface-typed Type.
func NewStruct(tag Tag, structIndex int) Type {
	t := New(tag)
	t.StructIndex = structIndex
	return t
}

// NewArray returns an array Type of the given rank and element type.
// Elem is nil for files below major version 11, where only the rank is
// stored and the element tag is implicit from context.
func NewArray(ref bool, rank int, elem *Type) Type {
	tag := Array
	if ref {
		tag = RefArray
	}
	t := New(tag)
	t.Rank = rank
	t.Elem = elem
	return t
}

// Ref returns a copy of t with IsRef set. It is used for scalar base tags
// (int, bool, float, long_int, functype) and also for string, struct,
// iface, enum and delegate; IsRefScalar tells the two groups apart. A
// ref array is represented by the RefArray tag rather than this flag.
func (t Type) Ref() Type {
	t.IsRef = true
	return t
}

// IsRefScalar reports whether t is a scalar type behind a ref, which the
// variable allocator must give two adjacent local slots (ainfile §3.2).
func (t Type) IsRefScalar() bool {
	if !t.IsRef {
		return false
	}
	switch t.Tag {
	case Int, Bool, Float, LongInt, FuncType:
		return true
	default:
		return false
	}
}

// Equal reports whether t and other denote the same type for assignment
// and overload-resolution purposes. Intermediate tags compare by their
// full payload since the analyser relies on this for e.g. recognizing two
// references to the same method.
func (t Type) Equal(other Type) bool {
	if t.Tag != other.Tag || t.IsRef != other.IsRef {
		return false
	}
	switch t.Tag {
	case Struct, Iface:
		return t.StructIndex == other.StructIndex
	case Enum:
		// Enum reuses StructIndex (into AinFile.Enums) since it has no
		// dedicated index field of its own; underlying storage is always
		// Int regardless of which enum it is.
		return t.StructIndex == other.StructIndex
	case FuncType, Delegate:
		return t.FuncIndex == other.FuncIndex
	case Array, RefArray:
		if t.Rank != other.Rank {
			return false
		}
		if t.Elem == nil || other.Elem == nil {
			return t.Elem == other.Elem
		}
		return t.Elem.Equal(*other.Elem)
	case Builtin:
		return t.Builtin == other.Builtin && t.BuiltinLib == other.BuiltinLib
	case Method, IMethod:
		return t.MethodStruct == other.MethodStruct && t.MethodIndex == other.MethodIndex
	case Function, Syscall:
		return t.FunctionIndex == other.FunctionIndex
	default:
		return true
	}
}

func (t Type) String() string {
	s := t.Tag.String()
	if t.IsRef {
		s = "ref " + s
	}
	return s
}
