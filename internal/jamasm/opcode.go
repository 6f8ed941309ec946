// Package jamasm implements the human-readable JAM assembly form of a
// compiled function's code section: the assembler turns mnemonic text into
// the fixed-width opcode stream an AinFile's Code buffer holds, and the
// disassembler does the reverse. Both sides are grounded on the two-pass
// index-to-address translation pattern of lang/compiler/asm.go, adapted to
// AIN's fixed 2-byte-opcode/4-byte-argument wire encoding (§4.2) instead of
// that teacher's varint scheme.
package jamasm

import "fmt"

// Opcode is a raw VM instruction mnemonic. Values and names are grounded on
// the identifiers used throughout original_source/src/core/jaf/compile.c and
// src/core/ain/asm.c — these are the real instruction names the reference
// compiler emits, not an invented vocabulary.
type Opcode uint16

const (
	NOP Opcode = iota

	PUSH
	F_PUSH
	S_PUSH
	MSG

	POP
	REF
	REFREF
	C_REF
	DUP
	DUP2
	DUP_X2
	DUP2_X1
	DUP_U2
	SWAP

	ASSIGN
	F_ASSIGN
	S_ASSIGN
	C_ASSIGN
	R_ASSIGN
	X_ASSIGN
	X_DUP
	X_MOV
	X_REF
	X_SET

	INC
	DEC
	F_INV

	ADD
	SUB
	MUL
	DIV
	MOD
	F_ADD
	F_SUB
	F_MUL
	F_DIV
	S_ADD
	S_MOD

	AND
	OR
	XOR
	LSHIFT
	RSHIFT
	NOT
	COMPL
	INV

	ANDA
	ORA
	XORA
	LSHIFTA
	RSHIFTA
	PLUSA
	MINUSA
	F_PLUSA
	F_MINUSA
	DIVA
	F_DIVA
	MULA
	F_MULA
	MODA
	S_PLUSA2

	EQUALE
	NOTE
	GT
	GTE
	LT
	LTE
	F_EQUALE
	F_NOTE
	F_GT
	F_GTE
	F_LT
	F_LTE
	S_EQUALE
	S_NOTE
	S_GT
	S_GTE
	S_LT
	S_LTE
	R_EQUALE
	R_NOTE

	ITOB
	ITOF
	ITOLI
	FTOI
	FTOS
	STOI
	I_STRING

	PUSHGLOBALPAGE
	PUSHLOCALPAGE
	PUSHSTRUCTPAGE

	NEW
	DELETE
	CHECKUDO

	S_LENGTH
	S_LENGTHBYTE
	S_EMPTY
	S_FIND
	S_GETPART
	S_PUSHBACK
	S_PUSHBACK2
	S_POPBACK
	S_POPBACK2
	S_ERASE
	S_ERASE2

	A_ALLOC
	A_REALLOC
	A_FREE
	A_NUMOF
	A_COPY
	A_FILL
	A_PUSHBACK
	A_POPBACK
	A_EMPTY
	A_ERASE
	A_INSERT
	A_SORT
	A_FIND
	A_REF

	DG_SET
	DG_ASSIGN
	DG_ADD
	DG_COPY
	DG_CALL
	DG_CALLBEGIN
	DG_NUMOF
	DG_EXIST
	DG_ERASE
	DG_CLEAR
	DG_NEW
	DG_NEW_FROM_METHOD
	DG_STR_TO_METHOD
	DG_POP
	DG_PLUSA
	DG_MINUSA

	SH_LOCALREF
	SH_LOCALASSIGN
	SH_LOCALINC
	SH_LOCALDEC
	SH_LOCALDELETE
	SH_LOCALCREATE
	SH_GLOBALREF
	SH_STRUCTREF

	SR_REF
	SR_ASSIGN
	SR_POP

	SP_INC

	SYS_LOCK_PEEK
	SYS_UNLOCK_PEEK

	FUNC
	ENDFUNC
	CALLFUNC
	CALLFUNC2
	CALLHLL
	CALLMETHOD
	CALLSYS
	RETURN
	ASSERT

	JUMP
	IFZ
	IFNZ
	SWITCH
	STRSWITCH

	GSET

	maxOpcode
)

// opArgMin is the first opcode that takes a 4-byte argument word; every
// opcode below it takes none. Grounded on the stack-effect/argument split
// visible in asm.c's operand-resolution switch, where pure stack-juggling
// instructions never carry an operand.
const opArgMin = PUSH

var opcodeNames = [...]string{
	NOP: "NOP", PUSH: "PUSH", F_PUSH: "F_PUSH", S_PUSH: "S_PUSH", MSG: "MSG",
	POP: "POP", REF: "REF", REFREF: "REFREF", C_REF: "C_REF", DUP: "DUP",
	DUP2: "DUP2", DUP_X2: "DUP_X2", DUP2_X1: "DUP2_X1", DUP_U2: "DUP_U2", SWAP: "SWAP",
	ASSIGN: "ASSIGN", F_ASSIGN: "F_ASSIGN", S_ASSIGN: "S_ASSIGN", C_ASSIGN: "C_ASSIGN",
	R_ASSIGN: "R_ASSIGN", X_ASSIGN: "X_ASSIGN", X_DUP: "X_DUP", X_MOV: "X_MOV",
	X_REF: "X_REF", X_SET: "X_SET",
	INC: "INC", DEC: "DEC", F_INV: "F_INV",
	ADD: "ADD", SUB: "SUB", MUL: "MUL", DIV: "DIV", MOD: "MOD",
	F_ADD: "F_ADD", F_SUB: "F_SUB", F_MUL: "F_MUL", F_DIV: "F_DIV",
	S_ADD: "S_ADD", S_MOD: "S_MOD",
	AND: "AND", OR: "OR", XOR: "XOR", LSHIFT: "LSHIFT", RSHIFT: "RSHIFT",
	NOT: "NOT", COMPL: "COMPL", INV: "INV",
	ANDA: "ANDA", ORA: "ORA", XORA: "XORA", LSHIFTA: "LSHIFTA", RSHIFTA: "RSHIFTA",
	PLUSA: "PLUSA", MINUSA: "MINUSA", F_PLUSA: "F_PLUSA", F_MINUSA: "F_MINUSA",
	DIVA: "DIVA", F_DIVA: "F_DIVA", MULA: "MULA", F_MULA: "F_MULA", MODA: "MODA",
	S_PLUSA2: "S_PLUSA2",
	EQUALE:   "EQUALE", NOTE: "NOTE", GT: "GT", GTE: "GTE", LT: "LT", LTE: "LTE",
	F_EQUALE: "F_EQUALE", F_NOTE: "F_NOTE", F_GT: "F_GT", F_GTE: "F_GTE",
	F_LT: "F_LT", F_LTE: "F_LTE",
	S_EQUALE: "S_EQUALE", S_NOTE: "S_NOTE", S_GT: "S_GT", S_GTE: "S_GTE",
	S_LT: "S_LT", S_LTE: "S_LTE", R_EQUALE: "R_EQUALE", R_NOTE: "R_NOTE",
	ITOB: "ITOB", ITOF: "ITOF", ITOLI: "ITOLI", FTOI: "FTOI", FTOS: "FTOS",
	STOI: "STOI", I_STRING: "I_STRING",
	PUSHGLOBALPAGE: "PUSHGLOBALPAGE", PUSHLOCALPAGE: "PUSHLOCALPAGE",
	PUSHSTRUCTPAGE: "PUSHSTRUCTPAGE",
	NEW:            "NEW", DELETE: "DELETE", CHECKUDO: "CHECKUDO",
	S_LENGTH: "S_LENGTH", S_LENGTHBYTE: "S_LENGTHBYTE", S_EMPTY: "S_EMPTY",
	S_FIND: "S_FIND", S_GETPART: "S_GETPART", S_PUSHBACK: "S_PUSHBACK",
	S_PUSHBACK2: "S_PUSHBACK2", S_POPBACK: "S_POPBACK", S_POPBACK2: "S_POPBACK2",
	S_ERASE: "S_ERASE", S_ERASE2: "S_ERASE2",
	A_ALLOC: "A_ALLOC", A_REALLOC: "A_REALLOC", A_FREE: "A_FREE", A_NUMOF: "A_NUMOF",
	A_COPY: "A_COPY", A_FILL: "A_FILL", A_PUSHBACK: "A_PUSHBACK", A_POPBACK: "A_POPBACK",
	A_EMPTY: "A_EMPTY", A_ERASE: "A_ERASE", A_INSERT: "A_INSERT", A_SORT: "A_SORT",
	A_FIND: "A_FIND", A_REF: "A_REF",
	DG_SET: "DG_SET", DG_ASSIGN: "DG_ASSIGN", DG_ADD: "DG_ADD", DG_COPY: "DG_COPY",
	DG_CALL: "DG_CALL", DG_CALLBEGIN: "DG_CALLBEGIN", DG_NUMOF: "DG_NUMOF",
	DG_EXIST: "DG_EXIST", DG_ERASE: "DG_ERASE", DG_CLEAR: "DG_CLEAR", DG_NEW: "DG_NEW",
	DG_NEW_FROM_METHOD: "DG_NEW_FROM_METHOD", DG_STR_TO_METHOD: "DG_STR_TO_METHOD",
	DG_POP: "DG_POP", DG_PLUSA: "DG_PLUSA", DG_MINUSA: "DG_MINUSA",
	SH_LOCALREF: "SH_LOCALREF", SH_LOCALASSIGN: "SH_LOCALASSIGN",
	SH_LOCALINC: "SH_LOCALINC", SH_LOCALDEC: "SH_LOCALDEC",
	SH_LOCALDELETE: "SH_LOCALDELETE", SH_LOCALCREATE: "SH_LOCALCREATE",
	SH_GLOBALREF: "SH_GLOBALREF", SH_STRUCTREF: "SH_STRUCTREF",
	SR_REF: "SR_REF", SR_ASSIGN: "SR_ASSIGN", SR_POP: "SR_POP",
	SP_INC:         "SP_INC",
	SYS_LOCK_PEEK:  "SYS_LOCK_PEEK", SYS_UNLOCK_PEEK: "SYS_UNLOCK_PEEK",
	FUNC: "FUNC", ENDFUNC: "ENDFUNC", CALLFUNC: "CALLFUNC", CALLFUNC2: "CALLFUNC2",
	CALLHLL: "CALLHLL", CALLMETHOD: "CALLMETHOD", CALLSYS: "CALLSYS",
	RETURN: "RETURN", ASSERT: "ASSERT",
	JUMP: "JUMP", IFZ: "IFZ", IFNZ: "IFNZ", SWITCH: "SWITCH", STRSWITCH: "STRSWITCH",
	GSET: "GSET",
}

var reverseOpcode = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		if name != "" {
			m[name] = Opcode(op)
		}
	}
	return m
}()

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("illegal opcode (%d)", op)
}

// operandKind classifies how the assembler resolves a textual operand and
// how the disassembler renders it back, per §4.2's operand kind list.
type operandKind int

const (
	operandNone operandKind = iota
	operandInt
	operandFloat
	operandAddr
	operandFunc
	operandString
	operandMessage
	operandLocal
	operandGlobal
	operandStruct
	operandSyscall
	operandHLL
	operandHLLFunc
	operandFile
	operandDelegate
	operandSwitch
)

// opArgs declares, for every opcode that carries one or more 4-byte
// argument words, the operand kind of each word in order. Opcodes absent
// from this table take no argument, per the raw instruction listing in
// src/core/jaf/compile.c (most stack/arithmetic ops are niladic; the VM
// reads their operands off the evaluation stack instead).
var opArgs = map[Opcode][]operandKind{
	PUSH:           {operandInt},
	F_PUSH:         {operandFloat},
	S_PUSH:         {operandString},
	MSG:            {operandMessage},
	X_ASSIGN:       {operandInt},
	X_REF:          {operandInt},
	X_DUP:          {operandInt},
	X_MOV:          {operandInt, operandInt},
	PUSHGLOBALPAGE: {},
	PUSHLOCALPAGE:  {},
	PUSHSTRUCTPAGE: {},
	NEW:            {operandStruct},
	DELETE:         {},
	CHECKUDO:       {operandStruct},
	FUNC:           {operandFunc},
	ENDFUNC:        {operandFunc},
	CALLFUNC:       {operandFunc},
	CALLFUNC2:      {},
	CALLHLL:        {operandHLL, operandHLLFunc},
	CALLMETHOD:     {operandFunc},
	CALLSYS:        {operandSyscall},
	JUMP:           {operandAddr},
	IFZ:            {operandAddr},
	IFNZ:           {operandAddr},
	SWITCH:         {operandSwitch},
	STRSWITCH:      {operandSwitch},
	GSET:           {operandGlobal, operandInt},
	SH_GLOBALREF:   {operandGlobal},
	SH_LOCALREF:    {operandLocal},
	SH_LOCALASSIGN: {operandLocal, operandInt},
	SH_LOCALINC:    {operandLocal},
	SH_LOCALDEC:    {operandLocal},
	SH_LOCALDELETE: {operandLocal},
	SH_LOCALCREATE: {operandLocal, operandStruct},
	SH_STRUCTREF:   {operandStruct, operandInt},
}

// argCount returns how many 4-byte argument words op carries.
func argCount(op Opcode) int { return len(opArgs[op]) }

// width returns the fixed encoded width, in bytes, of one op instance:
// a 2-byte opcode plus 4 bytes per argument word (§4.2 encoding note).
func width(op Opcode) int { return 2 + 4*argCount(op) }

// isJump reports whether op's single argument is a code address, the only
// kind the assembler must remember to translate in a second pass.
func isJump(op Opcode) bool {
	return op == JUMP || op == IFZ || op == IFNZ
}
