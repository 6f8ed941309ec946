package jamasm

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/mna/ain-tools/internal/ainfile"
	"github.com/mna/ain-tools/internal/jaferr"
)

// The JAM text format lists one function per block:
//
//	function NAME
//	L0:
//		PUSH 3
//		CALLFUNC somefunc
//		JUMP L0
//	endfunction
//
// Labels are resolved within their enclosing function in a first pass;
// every other operand is resolved against the host AinFile's tables in a
// second pass, mirroring lang/compiler/asm.go's two-pass index-to-address
// scheme but over fixed-width words instead of varints (§4.2).

// Assembler assembles JAM text against a fixed AinFile, growing its
// string/message/switch tables as new instructions demand them.
type Assembler struct {
	af      *ainfile.AinFile
	funcs   *ainfile.SymbolTable
	globals *ainfile.SymbolTable
	structs *ainfile.SymbolTable
	libs    *ainfile.SymbolTable
	err     error
}

// New builds an Assembler whose name resolution tables are seeded from af's
// current function/global/struct/library lists.
func New(af *ainfile.AinFile) *Assembler {
	a := &Assembler{
		af:      af,
		funcs:   ainfile.NewSymbolTable(len(af.Functions)),
		globals: ainfile.NewSymbolTable(len(af.Globals)),
		structs: ainfile.NewSymbolTable(len(af.Structures)),
		libs:    ainfile.NewSymbolTable(len(af.Libraries)),
	}
	for i, f := range af.Functions {
		a.funcs.Add(f.Name, i)
	}
	for i, g := range af.Globals {
		a.globals.Add(g.Name, i)
	}
	for i, s := range af.Structures {
		a.structs.Add(s.Name, i)
	}
	for i, l := range af.Libraries {
		a.libs.Add(l.Name, i)
	}
	return a
}

type asmInsn struct {
	op   Opcode
	args []int32
}

type asmFunc struct {
	name         string
	insns        []asmInsn
	labels       map[string]int // label -> instruction index
	labelTarget  []string       // per instruction, "" unless it's an addr operand referencing a label
	curSwitch    int            // af.Switches index the most recent SWITCH/STRSWITCH instruction opened, or -1
	pendingCases []pendingCase
}

// pendingCase is one CASE/STRCASE/DEFAULT/SETSTR/SETMSG directive: these
// pseudo-ops are table entries rather than code (zero width in pseudo.go),
// so they attach a case or default target to the switch table entry most
// recently opened by a SWITCH/STRSWITCH instruction in the same function,
// resolved to an absolute address once the enclosing function is encoded.
type pendingCase struct {
	switchIdx int
	isDefault bool
	kind      ainfile.SwitchCaseKind
	intVal    int64
	strVal    string
	label     string
}

// parse splits src into per-function blocks of raw (unresolved) mnemonic
// lines, deferring operand resolution to resolve().
func (a *Assembler) parse(src []byte) []*asmFunc {
	var funcs []*asmFunc
	var cur *asmFunc

	sc := bufio.NewScanner(bytes.NewReader(src))
	for sc.Scan() {
		line := sc.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		switch {
		case fields[0] == "function" && len(fields) == 2:
			cur = &asmFunc{name: fields[1], labels: map[string]int{}, curSwitch: -1}
			funcs = append(funcs, cur)
			continue
		case fields[0] == "endfunction":
			cur = nil
			continue
		}

		if cur == nil {
			a.fail("instruction %q outside of a function block", line)
			return funcs
		}

		if strings.HasSuffix(fields[0], ":") && len(fields) == 1 {
			cur.labels[strings.TrimSuffix(fields[0], ":")] = len(cur.insns)
			continue
		}

		mnemonic := strings.ToUpper(fields[0])
		operands := fields[1:]

		if mnemonic == "CASE" || mnemonic == "STRCASE" || mnemonic == "DEFAULT" ||
			mnemonic == "SETSTR" || mnemonic == "SETMSG" {
			a.parseSwitchDirective(mnemonic, operands, cur)
			continue
		}

		if mnemonic == "SWITCH" || mnemonic == "STRSWITCH" {
			insn := asmInsn{op: a.lookupOpcode(mnemonic), args: a.parseArgs(mnemonic, operands, cur)}
			cur.insns = append(cur.insns, insn)
			if len(insn.args) == 1 {
				cur.curSwitch = int(insn.args[0])
				a.ensureSwitch(cur.curSwitch, mnemonic == "STRSWITCH")
			}
			continue
		}

		if p, ok := pseudoByName[mnemonic]; ok {
			if len(operands) != p.args {
				a.fail("%s: expected %d operand(s), got %d", mnemonic, p.args, len(operands))
				continue
			}
			for _, insn := range a.expandMacro(mnemonic, operands, a.af.Version.Major) {
				cur.insns = append(cur.insns, insn)
				cur.labelTarget = append(cur.labelTarget, "")
			}
			continue
		}

		cur.insns = append(cur.insns, asmInsn{op: a.lookupOpcode(mnemonic), args: a.parseArgs(mnemonic, operands, cur)})
	}
	return funcs
}

func (a *Assembler) lookupOpcode(mnemonic string) Opcode {
	if op, ok := reverseOpcode[mnemonic]; ok {
		return op
	}
	a.fail("unknown opcode or pseudo-op %q", mnemonic)
	return NOP
}

// parseArgs resolves each operand of one instruction by the operand-kind
// table. Label operands (addr kind) are resolved in a later pass once every
// label in the enclosing function is known, so they are recorded as -1
// placeholders paired with the raw text in cur's pending-label list.
func (a *Assembler) parseArgs(mnemonic string, operands []string, cur *asmFunc) []int32 {
	op := reverseOpcode[mnemonic]
	kinds := opArgs[op]
	if len(operands) != len(kinds) {
		a.fail("%s: expected %d operand(s), got %d", mnemonic, len(kinds), len(operands))
		return nil
	}

	args := make([]int32, len(kinds))
	for i, kind := range kinds {
		switch kind {
		case operandInt:
			args[i] = a.int32(operands[i])
		case operandFloat:
			args[i] = a.float32Bits(operands[i])
		case operandAddr:
			// Resolved in the second pass; store a sentinel and remember the
			// label text out of band via cur.labelTarget, indexed by
			// instruction position (filled in by caller after append).
			args[i] = -1
		case operandString, operandMessage:
			args[i] = a.intern(kind, operands[i])
		case operandFunc:
			args[i] = a.resolveName(a.funcs, operands[i], "function")
		case operandGlobal:
			args[i] = a.resolveName(a.globals, operands[i], "global")
		case operandStruct:
			args[i] = a.resolveName(a.structs, operands[i], "struct")
		case operandHLL:
			args[i] = a.resolveName(a.libs, operands[i], "library")
		case operandHLLFunc:
			args[i] = a.intOrFail(operands[i])
		case operandSyscall:
			args[i] = a.intOrFail(operands[i])
		case operandLocal:
			args[i] = a.intOrFail(operands[i])
		case operandSwitch:
			args[i] = a.intOrFail(operands[i])
		case operandFile, operandDelegate:
			args[i] = a.intOrFail(operands[i])
		}
	}

	if isJump(op) && len(operands) == 1 {
		cur.labelTarget = append(cur.labelTarget, operands[0])
	} else {
		cur.labelTarget = append(cur.labelTarget, "")
	}
	return args
}

// ensureSwitch grows af.Switches if needed so idx is a valid entry, seeding
// its CaseType and a DefaultAddr of -1 (overwritten by a DEFAULT directive,
// or left at -1 meaning "fall through" if the switch has none).
func (a *Assembler) ensureSwitch(idx int, isString bool) {
	for len(a.af.Switches) <= idx {
		a.af.Switches = append(a.af.Switches, &ainfile.Switch{Index: len(a.af.Switches), DefaultAddr: -1})
	}
	if isString {
		a.af.Switches[idx].CaseType = ainfile.SwitchString
	} else {
		a.af.Switches[idx].CaseType = ainfile.SwitchInt
	}
}

// parseSwitchDirective records a CASE/STRCASE/DEFAULT/SETSTR/SETMSG
// directive against the switch table most recently opened in cur by a
// SWITCH/STRSWITCH instruction. SETSTR and SETMSG are handled exactly
// like STRCASE: the first operand is the case's string value, taken
// literally (unquoted if quoted); neither looks up the string or message
// table.
func (a *Assembler) parseSwitchDirective(mnemonic string, operands []string, cur *asmFunc) {
	if cur == nil {
		a.fail("%s directive outside of a function block", mnemonic)
		return
	}
	if cur.curSwitch < 0 {
		a.fail("%s directive with no preceding SWITCH/STRSWITCH", mnemonic)
		return
	}

	switch mnemonic {
	case "DEFAULT":
		if len(operands) != 1 {
			a.fail("DEFAULT: expected 1 operand, got %d", len(operands))
			return
		}
		cur.pendingCases = append(cur.pendingCases, pendingCase{
			switchIdx: cur.curSwitch, isDefault: true, label: operands[0],
		})
	case "CASE":
		if len(operands) != 2 {
			a.fail("CASE: expected 2 operands, got %d", len(operands))
			return
		}
		cur.pendingCases = append(cur.pendingCases, pendingCase{
			switchIdx: cur.curSwitch, kind: ainfile.SwitchInt, intVal: int64(a.intOrFail(operands[0])), label: operands[1],
		})
	case "STRCASE", "SETSTR", "SETMSG":
		if len(operands) != 2 {
			a.fail("%s: expected 2 operands, got %d", mnemonic, len(operands))
			return
		}
		s, err := strconv.Unquote(operands[0])
		if err != nil {
			s = operands[0]
		}
		cur.pendingCases = append(cur.pendingCases, pendingCase{
			switchIdx: cur.curSwitch, kind: ainfile.SwitchString, strVal: s, label: operands[1],
		})
	}
}

func (a *Assembler) fail(format string, args ...any) {
	if a.err == nil {
		a.err = jaferr.New(jaferr.InvalidInput, format, args...)
	}
}

func (a *Assembler) int32(s string) int32 {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		a.fail("invalid integer literal %q: %v", s, err)
		return 0
	}
	return int32(v)
}

func (a *Assembler) intOrFail(s string) int32 { return a.int32(s) }

func (a *Assembler) float32Bits(s string) int32 {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		a.fail("invalid float literal %q: %v", s, err)
		return 0
	}
	return int32(float32bits(float32(f)))
}

// resolveName resolves a `name` or `name#N` operand against tbl.
func (a *Assembler) resolveName(tbl *ainfile.SymbolTable, text, kind string) int32 {
	name, nth := splitDuplicate(text)
	idx, ok := tbl.Lookup(name, nth)
	if !ok {
		a.fail("unresolved %s reference %q", kind, text)
		return -1
	}
	return int32(idx)
}

// splitDuplicate parses the `name#N` duplicate-disambiguation suffix
// (parse_identifier in the original source); bare names are the 0th
// duplicate.
func splitDuplicate(text string) (name string, nth int) {
	if i := strings.LastIndexByte(text, '#'); i >= 0 {
		if n, err := strconv.Atoi(text[i+1:]); err == nil {
			return text[:i], n
		}
	}
	return text, 0
}

func (a *Assembler) intern(kind operandKind, text string) int32 {
	s, err := strconv.Unquote(text)
	if err != nil {
		s = text
	}
	if kind == operandMessage {
		idx := len(a.af.Messages)
		a.af.Messages = append(a.af.Messages, s)
		return int32(idx)
	}
	idx := len(a.af.Strings)
	a.af.Strings = append(a.af.Strings, s)
	return int32(idx)
}

// resolveLabels replaces every addr placeholder with the instruction index
// its label points to, local to fn (a second translation from index to
// absolute byte address happens in encode).
func (a *Assembler) resolveLabels(fn *asmFunc) {
	for i, insn := range fn.insns {
		label := fn.labelTarget[i]
		if label == "" {
			continue
		}
		target, ok := fn.labels[label]
		if !ok {
			a.fail("function %s: undefined label %q", fn.name, label)
			return
		}
		insn.args[0] = int32(target)
		fn.insns[i] = insn
	}
}

// encode lays out fn's instructions at consecutive byte addresses starting
// at base, translating label-index operands to absolute addresses, and
// returns the encoded bytes plus the final address (base + size).
func (a *Assembler) encode(fn *asmFunc, base int) ([]byte, int) {
	indexToAddr := make([]int, len(fn.insns))
	addr := base
	for i, insn := range fn.insns {
		indexToAddr[i] = addr
		addr += width(insn.op)
	}

	var buf []byte
	for i, insn := range fn.insns {
		args := insn.args
		if isJump(insn.op) && len(args) == 1 {
			idx := int(args[0])
			if idx < 0 || idx >= len(indexToAddr) {
				a.fail("function %s: jump target index %d out of range", fn.name, idx)
				return nil, base
			}
			args = []int32{int32(indexToAddr[idx])}
		}
		buf = encodeInsn(buf, insn.op, args)
	}

	for _, pc := range fn.pendingCases {
		idx, ok := fn.labels[pc.label]
		if !ok {
			a.fail("function %s: undefined label %q", fn.name, pc.label)
			return nil, base
		}
		caseAddr := indexToAddr[idx]
		sw := a.af.Switches[pc.switchIdx]
		if pc.isDefault {
			sw.DefaultAddr = caseAddr
			continue
		}
		if pc.kind == ainfile.SwitchString {
			sw.Cases = append(sw.Cases, ainfile.SwitchCase{StrValue: pc.strVal, Address: caseAddr})
		} else {
			sw.Cases = append(sw.Cases, ainfile.SwitchCase{IntValue: pc.intVal, Address: caseAddr})
		}
	}

	return buf, addr
}

// Replace discards af's current code section and assembles src as the
// complete program, one of the three entry points required by §4.2.
func (a *Assembler) Replace(src []byte) error {
	funcs := a.parse(src)
	if a.err != nil {
		return a.err
	}
	for _, fn := range funcs {
		a.resolveLabels(fn)
	}
	if a.err != nil {
		return a.err
	}

	var code []byte
	for _, fn := range funcs {
		idx, ok := a.funcs.Lookup(fn.name, 0)
		if !ok {
			a.fail("function %q has no matching AinFile.Functions entry", fn.name)
			return a.err
		}
		encoded, next := a.encode(fn, len(code))
		if a.err != nil {
			return a.err
		}
		a.af.Functions[idx].Address = len(code)
		code = append(code, encoded...)
		_ = next
	}
	a.af.Code = code
	return nil
}

// Append assembles src and concatenates it to the end of af's existing code
// section, updating the address of any function block it defines.
func (a *Assembler) Append(src []byte) error {
	funcs := a.parse(src)
	if a.err != nil {
		return a.err
	}
	for _, fn := range funcs {
		a.resolveLabels(fn)
	}
	if a.err != nil {
		return a.err
	}

	for _, fn := range funcs {
		idx, ok := a.funcs.Lookup(fn.name, 0)
		if !ok {
			a.fail("function %q has no matching AinFile.Functions entry", fn.name)
			return a.err
		}
		encoded, _ := a.encode(fn, len(a.af.Code))
		if a.err != nil {
			return a.err
		}
		a.af.Functions[idx].Address = len(a.af.Code)
		a.af.Code = append(a.af.Code, encoded...)
	}
	return nil
}

// Inject splices src into an existing function at the given byte offset,
// relative to the function's own start address, relocating every address
// operand (jump targets, switch cases/defaults, and other functions'
// addresses) that falls after the splice point by the resulting size delta.
func (a *Assembler) Inject(src []byte, function string, offset int) error {
	fidx, ok := a.funcs.Lookup(function, 0)
	if !ok {
		return jaferr.New(jaferr.Unresolved, "unresolved function reference %q", function)
	}
	fn := a.af.Functions[fidx]
	spliceAt := fn.Address + offset

	funcs := a.parse(src)
	if a.err != nil {
		return a.err
	}
	if len(funcs) != 1 {
		return jaferr.New(jaferr.InvalidInput, "inject expects exactly one function block, got %d", len(funcs))
	}
	a.resolveLabels(funcs[0])
	if a.err != nil {
		return a.err
	}
	encoded, _ := a.encode(funcs[0], spliceAt)
	if a.err != nil {
		return a.err
	}

	delta := len(encoded)
	newCode := make([]byte, 0, len(a.af.Code)+delta)
	newCode = append(newCode, a.af.Code[:spliceAt]...)
	newCode = append(newCode, encoded...)
	newCode = append(newCode, a.af.Code[spliceAt:]...)
	a.af.Code = newCode

	relocate(a.af, spliceAt, delta)
	return nil
}

// relocate shifts every address-valued reference at or past cutoff by
// delta: function entry points, switch case/default addresses, and jump
// operands embedded in the code stream itself.
func relocate(af *ainfile.AinFile, cutoff, delta int) {
	for _, f := range af.Functions {
		if f.Address >= cutoff {
			f.Address += delta
		}
	}
	for _, sw := range af.Switches {
		if sw.DefaultAddr >= cutoff {
			sw.DefaultAddr += delta
		}
		for i := range sw.Cases {
			if sw.Cases[i].Address >= cutoff {
				sw.Cases[i].Address += delta
			}
		}
	}

	addr := 0
	code := af.Code
	for addr+2 <= len(code) {
		op := Opcode(uint16(code[addr]) | uint16(code[addr+1])<<8)
		n := argCount(op)
		if isJump(op) && n == 1 {
			argOff := addr + 2
			if argOff+4 <= len(code) {
				v := int32(le32(code[argOff:]))
				if int(v) >= cutoff {
					put32(code[argOff:], uint32(int(v)+delta))
				}
			}
		}
		addr += width(op)
	}
}
