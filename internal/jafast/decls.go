package jafast

import (
	"github.com/mna/ain-tools/internal/aintype"
	"github.com/mna/ain-tools/internal/jaftoken"
)

type DeclBase struct {
	Start, End jaftoken.Pos
}

func (d DeclBase) Span() (start, end jaftoken.Pos) { return d.Start, d.End }
func (DeclBase) declNode()                         {}

// Param is one function/method/functype parameter.
type Param struct {
	Typ      aintype.Type
	TypeName string // bare identifier naming Typ (or its element type, for an array), resolved by the declaration pass
	Name     string
}

// FuncDecl is a top-level function or (after the declaration pass
// flattens it) a struct method, whose qualified name becomes
// "StructName@method" (§4.4).
type FuncDecl struct {
	DeclBase
	Name           string
	Params         []*Param
	Return         aintype.Type
	ReturnTypeName string     // bare identifier naming Return, resolved by the declaration pass
	Body           *BlockStmt // nil for a prototype-only HLL function
	FuncIndex    int        // filled by the declaration pass
	StructIndex  int        // owning struct, or -1 for free functions
	IsMethod     bool
	IsConstructor bool
	IsDestructor  bool
	Override      bool // `override` qualifier: must replace a super method
	SuperIndex    int  // overridden struct index, or -1
}

// GlobalDecl is a top-level variable declaration.
type GlobalDecl struct {
	DeclBase
	Typ         aintype.Type
	TypeName    string // bare identifier naming Typ, resolved by the declaration pass
	Name        string
	Init        Expr
	GlobalIndex int // filled by the declaration pass
	GroupIndex  int
}

// StructMember is one field of a StructDecl (methods are split out into
// their own FuncDecl entries by the declaration pass, §4.4).
type StructMember struct {
	Typ      aintype.Type
	TypeName string // bare identifier naming Typ, resolved by the declaration pass
	Name     string
}

// InterfaceRef records one interface a struct implements, alongside the
// vtable_offset assigned to it (§3.2).
type InterfaceRef struct {
	StructIndex  int
	VtableOffset int
}

// StructDecl is a `struct` or `interface` declaration. IsInterface
// distinguishes the two; an interface's Methods are prototype-only
// FunctionType-shaped entries, matching §3.2's representation of
// Interface as "a Struct with is_interface=true".
type StructDecl struct {
	DeclBase
	Name         string
	IsInterface  bool
	Members      []*StructMember
	Methods      []*FuncDecl
	InterfaceNames []string    // names from `: Iface, ...`, resolved by the declaration pass
	Interfaces     []InterfaceRef // filled by the declaration pass once InterfaceNames resolve
	StructIndex  int // filled by the parser when the tag is registered
	Constructor  int // function index, or -1
	Destructor   int // function index, or -1
}

// FuncTypeDecl is a `functype` or `delegate` declaration (same shape,
// §3.2); IsDelegate distinguishes the two.
type FuncTypeDecl struct {
	DeclBase
	Name           string
	Params         []*Param
	Return         aintype.Type
	ReturnTypeName string // bare identifier naming Return, resolved by the declaration pass
	IsDelegate     bool
	FuncIndex      int // filled by the parser when the tag is registered
}

// EnumDecl is a named enumeration: a symbol table mapping names to
// integer values (§3.2).
type EnumDecl struct {
	DeclBase
	Name      string
	Symbols   []EnumSymbol
	EnumIndex int // filled by the parser when the tag is registered
}

// EnumSymbol is one `Name = Value` entry of an EnumDecl.
type EnumSymbol struct {
	Name  string
	Value int64
}

// HLLFuncDecl is one function prototype inside an HLL header.
type HLLFuncDecl struct {
	Name           string
	Params         []*Param
	Return         aintype.Type
	ReturnTypeName string // bare identifier naming Return, resolved by the declaration pass
}

// HLLDecl is a parsed `.hll` header: a named library plus its function
// prototypes, collected into a Library record by the declaration pass
// (§4.4).
type HLLDecl struct {
	DeclBase
	Name      string
	Functions []*HLLFuncDecl
	LibIndex  int
}
