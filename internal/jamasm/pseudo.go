package jamasm

// pseudoOp is one macro recognized by the assembler/disassembler: a single
// mnemonic that expands to (or folds back from) a fixed multi-instruction
// sequence. Widths are grounded verbatim on the asm_pseudo_ops table and its
// v14+ override deltas in the original source, reproduced in SPEC_FULL.md
// §4.2.
type pseudoOp struct {
	name        string
	args        int
	legacyBytes int
	v14Bytes    int
}

var pseudoOps = []pseudoOp{
	{"CASE", 2, 0, 0},
	{"STRCASE", 2, 0, 0},
	{"DEFAULT", 1, 0, 0},
	{"SETSTR", 2, 0, 0},
	{"SETMSG", 2, 0, 0},
	{"MSG", 1, 6, 6},
	{"LOCALREF", 1, 10, 14},
	{"LOCALREFREF", 1, 10, 14},
	{"LOCALINC", 1, 10, 10},
	{"LOCALINC2", 1, 20, 34},
	{"LOCALINC3", 1, 20, 20},
	{"LOCALDEC", 1, 10, 10},
	{"LOCALDEC2", 1, 20, 34},
	{"LOCALDEC3", 1, 20, 20},
	{"LOCALPLUSA", 2, 18, 18},
	{"LOCALMINUSA", 2, 18, 18},
	{"LOCALASSIGN", 2, 18, 22},
	{"LOCALASSIGN2", 1, 14, 14},
	{"F_LOCALASSIGN", 2, 18, 18},
	{"STACK_LOCALASSIGN", 1, 26, 26},
	{"S_LOCALASSIGN", 2, 20, 36},
	{"LOCALDELETE", 1, 24, 36},
	{"LOCALCREATE", 2, 34, 40},
	{"GLOBALREF", 1, 10, 14},
	{"GLOBALREFREF", 1, 10, 10},
	{"GLOBALINC", 1, 10, 10},
	{"GLOBALDEC", 1, 10, 10},
	{"GLOBALASSIGN", 2, 18, 22},
	{"F_GLOBALASSIGN", 2, 18, 18},
	{"STRUCTREF", 2, 10, 14},
	{"STRUCTREFREF", 2, 10, 10},
	{"STRUCTINC", 2, 10, 10},
	{"STRUCTDEC", 2, 10, 10},
	{"STRUCTASSIGN", 3, 18, 22},
	{"F_STRUCTASSIGN", 3, 18, 18},
	{"PUSHVMETHOD", 2, 30, 30},
}

var pseudoByName = func() map[string]pseudoOp {
	m := make(map[string]pseudoOp, len(pseudoOps))
	for _, p := range pseudoOps {
		m[p.name] = p
	}
	return m
}()

// pseudoWidth returns the byte width the pseudoOps table lists for the
// named pseudo-op on the given file major version, or 0 if it expands to a
// table entry rather than code (CASE, STRCASE, DEFAULT, SETSTR, SETMSG).
// For several pseudo-ops (LOCALREFREF on v14+, STRUCTREF and STRUCTASSIGN
// among them) that listed width differs from the bytes expandMacro emits.
func pseudoWidth(name string, major int) int {
	p, ok := pseudoByName[name]
	if !ok {
		return 0
	}
	if major >= 14 {
		return p.v14Bytes
	}
	return p.legacyBytes
}
