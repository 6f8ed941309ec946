package jamasm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mna/ain-tools/internal/ainfile"
)

// Disassemble renders af's entire code section as JAM text, one function
// block per Function entry in table order (skipping the placeholder entry
// named "0"), mirroring Dasm/dasm.function in
// lang/compiler/asm.go but over the fixed-width AIN encoding.
func Disassemble(af *ainfile.AinFile) ([]byte, error) {
	d := &dasm{af: af}
	var sb strings.Builder
	order := make([]int, 0, len(af.Functions))
	for i, f := range af.Functions {
		if f.Name != "0" {
			order = append(order, i)
		}
	}
	for _, fi := range order {
		f := af.Functions[fi]
		end := len(af.Code)
		for _, g := range af.Functions {
			if g.Address > f.Address && g.Address < end {
				end = g.Address
			}
		}
		d.function(&sb, f, end)
	}
	return []byte(sb.String()), d.err
}

type dasm struct {
	af  *ainfile.AinFile
	err error
}

func (d *dasm) function(sb *strings.Builder, f *ainfile.Function, end int) {
	if d.err != nil {
		return
	}

	// First sweep: decode every instruction, map address->index, collect
	// jump targets so labels can be assigned before printing.
	var insns []decodedInsn
	addrToIndex := map[int]int{}
	addr := f.Address
	for addr < end {
		if addr+2 > len(d.af.Code) {
			d.err = fmt.Errorf("function %s: truncated instruction at %d", f.Name, addr)
			return
		}
		op := Opcode(uint16(d.af.Code[addr]) | uint16(d.af.Code[addr+1])<<8)
		kinds := opArgs[op]
		args := make([]int32, len(kinds))
		off := addr + 2
		for i := range kinds {
			if off+4 > len(d.af.Code) {
				d.err = fmt.Errorf("function %s: truncated argument at %d", f.Name, off)
				return
			}
			args[i] = int32(le32(d.af.Code[off:]))
			off += 4
		}
		addrToIndex[addr] = len(insns)
		insns = append(insns, decodedInsn{addr: addr, op: op, args: args})
		addr = off
	}

	labels := map[int]string{}
	for _, in := range insns {
		if isJump(in.op) && len(in.args) == 1 {
			target := int(in.args[0])
			if _, ok := labels[target]; !ok {
				labels[target] = fmt.Sprintf("L%d", len(labels))
			}
		}
	}

	sb.WriteString("function " + f.Name + "\n")
	major := d.af.Version.Major
	for i := 0; i < len(insns); {
		in := insns[i]
		if lbl, ok := labels[in.addr]; ok {
			sb.WriteString(lbl + ":\n")
		}

		if name, text, consumed := foldMacro(insns, i, major, labels); consumed > 0 {
			sb.WriteString("\t" + name)
			for _, t := range text {
				sb.WriteString(" " + t)
			}
			sb.WriteString("\n")
			i += consumed
			continue
		}

		sb.WriteString("\t" + in.op.String())
		for argi, kind := range opArgs[in.op] {
			sb.WriteString(" " + d.renderOperand(kind, in.args[argi], labels))
		}
		sb.WriteString("\n")
		i++
	}
	sb.WriteString("endfunction\n\n")
}

// foldMacro recognizes, starting at insns[i], one of the common pseudo-op
// expansions produced by expandMacro and renders it back as its mnemonic,
// returning how many raw instructions it consumed (0 if no macro matched at
// this position). Folding a sequence whose middle instruction is itself a
// jump target would change its meaning, so any such match is rejected.
func foldMacro(insns []decodedInsn, i, major int, labels map[int]string) (string, []string, int) {
	has := func(n int) bool { return i+n <= len(insns) }
	op := func(k int) Opcode { return insns[i+k].op }
	arg := func(k, a int) int32 { return insns[i+k].args[a] }
	noInnerLabel := func(n int) bool {
		for k := 1; k < n; k++ {
			if _, ok := labels[insns[i+k].addr]; ok {
				return false
			}
		}
		return true
	}

	pageOp := func(global bool) Opcode {
		if global {
			return PUSHGLOBALPAGE
		}
		return PUSHLOCALPAGE
	}

	for _, global := range []bool{false, true} {
		// LOCALDELETE and S_LOCALASSIGN have no global counterpart in the
		// grounded pseudo-op table, so those two folds only apply locally.
		refName, assignName, fAssignName := "LOCALREF", "LOCALASSIGN", "F_LOCALASSIGN"
		if global {
			refName, assignName, fAssignName = "GLOBALREF", "GLOBALASSIGN", "F_GLOBALASSIGN"
		}

		if has(3) && op(0) == pageOp(global) && op(1) == PUSH && noInnerLabel(3) {
			v := strconv.Itoa(int(arg(1, 0)))
			if !global && op(2) == REF && has(4) && op(3) == DELETE && noInnerLabel(4) {
				return "LOCALDELETE", []string{v}, 4
			}
			if major >= 14 && op(2) == X_REF {
				return refName, []string{v}, 3
			}
			if major < 14 && op(2) == REF {
				return refName, []string{v}, 3
			}
		}

		if has(5) && op(0) == pageOp(global) && op(1) == PUSH && op(2) == PUSH && noInnerLabel(5) {
			v := strconv.Itoa(int(arg(1, 0)))
			val := strconv.Itoa(int(arg(2, 0)))
			if op(4) == POP {
				if major >= 14 && op(3) == X_ASSIGN {
					return assignName, []string{v, val}, 5
				}
				if major < 14 && op(3) == ASSIGN {
					return assignName, []string{v, val}, 5
				}
			}
		}

		if has(5) && op(0) == pageOp(global) && op(1) == PUSH && op(2) == F_PUSH &&
			op(3) == F_ASSIGN && op(4) == POP && noInnerLabel(5) {
			v := strconv.Itoa(int(arg(1, 0)))
			val := strconv.FormatFloat(float64(math.Float32frombits(uint32(arg(2, 0)))), 'g', -1, 32)
			return fAssignName, []string{v, val}, 5
		}

		if !global && has(5) && op(0) == PUSHLOCALPAGE && op(1) == PUSH && op(2) == S_PUSH &&
			op(3) == S_ASSIGN && op(4) == POP && noInnerLabel(5) {
			v := strconv.Itoa(int(arg(1, 0)))
			return "S_LOCALASSIGN", []string{v, strconv.Itoa(int(arg(2, 0)))}, 5
		}
	}

	return "", nil, 0
}

type decodedInsn = struct {
	addr int
	op   Opcode
	args []int32
}

func (d *dasm) renderOperand(kind operandKind, v int32, labels map[int]string) string {
	switch kind {
	case operandAddr:
		if lbl, ok := labels[int(v)]; ok {
			return lbl
		}
		return strconv.Itoa(int(v))
	case operandFunc:
		if int(v) >= 0 && int(v) < len(d.af.Functions) {
			return d.af.Functions[v].Name
		}
	case operandGlobal:
		if int(v) >= 0 && int(v) < len(d.af.Globals) {
			return d.af.Globals[v].Name
		}
	case operandStruct:
		if int(v) >= 0 && int(v) < len(d.af.Structures) {
			return d.af.Structures[v].Name
		}
	case operandHLL:
		if int(v) >= 0 && int(v) < len(d.af.Libraries) {
			return d.af.Libraries[v].Name
		}
	case operandString, operandMessage:
		table := d.af.Strings
		if kind == operandMessage {
			table = d.af.Messages
		}
		if int(v) >= 0 && int(v) < len(table) {
			return strconv.Quote(table[v])
		}
	}
	return strconv.Itoa(int(v))
}
