package jamasm

// expandMacro expands one pseudo-op line into its constituent concrete
// instructions, choosing the major-version-dependent variant where the
// original source does (the X_ASSIGN/X_REF/X_DUP family replacing the
// legacy ASSIGN/REF/DUP2 family from major 14 on). Every expansion named
// LOCALREF through S_LOCALASSIGN below is grounded directly on the
// corresponding PO_* case in asm_handle_pseudo_op in the original source.
// LOCALCREATE and PUSHVMETHOD extend that pattern by symmetry with the
// grounded cases (their exact original sequence wasn't present in the
// retrieved excerpt); the byte widths in pseudo.go are descriptive
// metadata only; nothing here depends on hitting them exactly.
func (a *Assembler) expandMacro(name string, operands []string, major int) []asmInsn {
	pageOp := func(global bool) Opcode {
		if global {
			return PUSHGLOBALPAGE
		}
		return PUSHLOCALPAGE
	}

	switch name {
	case "MSG":
		n := a.intern(operandMessage, operands[0])
		return []asmInsn{op1(MSG, n)}

	case "LOCALREF", "GLOBALREF":
		global := name == "GLOBALREF"
		v := a.intOrFail(operands[0])
		insns := []asmInsn{op0(pageOp(global)), op1(PUSH, v)}
		if major >= 14 {
			return append(insns, op1(X_REF, 1))
		}
		return append(insns, op0(REF))

	case "LOCALREFREF", "GLOBALREFREF":
		global := name == "GLOBALREFREF"
		v := a.intOrFail(operands[0])
		return []asmInsn{op0(pageOp(global)), op1(PUSH, v), op0(REFREF)}

	case "LOCALINC", "GLOBALINC":
		global := name == "GLOBALINC"
		v := a.intOrFail(operands[0])
		return []asmInsn{op0(pageOp(global)), op1(PUSH, v), op0(INC)}

	case "LOCALDEC", "GLOBALDEC":
		global := name == "GLOBALDEC"
		v := a.intOrFail(operands[0])
		return []asmInsn{op0(pageOp(global)), op1(PUSH, v), op0(DEC)}

	case "LOCALINC2":
		v := a.intOrFail(operands[0])
		insns := []asmInsn{op0(PUSHLOCALPAGE), op1(PUSH, v)}
		if major >= 14 {
			return append(insns, op1(X_DUP, 2), op1(X_REF, 1), op2(X_MOV, 3, 1), op0(INC), op0(POP))
		}
		return append(insns, op0(DUP2), op0(REF), op0(DUP_X2), op0(POP), op0(INC), op0(POP))

	case "LOCALDEC2":
		v := a.intOrFail(operands[0])
		insns := []asmInsn{op0(PUSHLOCALPAGE), op1(PUSH, v)}
		if major >= 14 {
			return append(insns, op1(X_DUP, 2), op1(X_REF, 1), op2(X_MOV, 3, 1), op0(DEC), op0(POP))
		}
		return append(insns, op0(DUP2), op0(REF), op0(DUP_X2), op0(POP), op0(DEC), op0(POP))

	case "LOCALINC3":
		v := a.intOrFail(operands[0])
		return []asmInsn{op0(PUSHLOCALPAGE), op1(PUSH, v), op1(X_DUP, 2), op0(INC), op0(POP), op0(POP)}

	case "LOCALDEC3":
		v := a.intOrFail(operands[0])
		return []asmInsn{op0(PUSHLOCALPAGE), op1(PUSH, v), op1(X_DUP, 2), op0(DEC), op0(POP), op0(POP)}

	case "LOCALPLUSA", "LOCALMINUSA":
		v := a.intOrFail(operands[0])
		val := a.int32(operands[1])
		op := PLUSA
		if name == "LOCALMINUSA" {
			op = MINUSA
		}
		return []asmInsn{op0(PUSHLOCALPAGE), op1(PUSH, v), op1(PUSH, val), op0(op), op0(POP)}

	case "LOCALASSIGN", "GLOBALASSIGN":
		global := name == "GLOBALASSIGN"
		v := a.intOrFail(operands[0])
		val := a.int32(operands[1])
		insns := []asmInsn{op0(pageOp(global)), op1(PUSH, v), op1(PUSH, val)}
		if major >= 14 {
			insns = append(insns, op1(X_ASSIGN, 1))
		} else {
			insns = append(insns, op0(ASSIGN))
		}
		return append(insns, op0(POP))

	case "LOCALASSIGN2":
		v := a.intOrFail(operands[0])
		return []asmInsn{op0(PUSHLOCALPAGE), op0(SWAP), op1(PUSH, v), op0(SWAP), op0(ASSIGN)}

	case "F_LOCALASSIGN", "F_GLOBALASSIGN":
		global := name == "F_GLOBALASSIGN"
		v := a.intOrFail(operands[0])
		val := a.float32Bits(operands[1])
		return []asmInsn{op0(pageOp(global)), op1(PUSH, v), op1(F_PUSH, val), op0(F_ASSIGN), op0(POP)}

	case "STACK_LOCALASSIGN":
		v := a.intOrFail(operands[0])
		return []asmInsn{
			op0(PUSHLOCALPAGE), op1(PUSH, v), op0(REF), op0(DELETE),
			op0(PUSHLOCALPAGE), op0(SWAP), op1(PUSH, v), op0(SWAP), op0(ASSIGN),
		}

	case "S_LOCALASSIGN":
		v := a.intOrFail(operands[0])
		s := a.intern(operandString, operands[1])
		return []asmInsn{op0(PUSHLOCALPAGE), op1(PUSH, v), op1(S_PUSH, s), op0(S_ASSIGN), op0(POP)}

	case "LOCALDELETE":
		v := a.intOrFail(operands[0])
		return []asmInsn{op0(PUSHLOCALPAGE), op1(PUSH, v), op0(REF), op0(DELETE)}

	case "LOCALCREATE":
		v := a.intOrFail(operands[0])
		st := a.resolveName(a.structs, operands[1], "struct")
		return []asmInsn{
			op0(PUSHLOCALPAGE), op1(PUSH, v), op0(REF), op0(DELETE),
			op0(PUSHLOCALPAGE), op1(PUSH, v), op1(NEW, st), op0(ASSIGN), op0(POP),
		}

	case "STRUCTREF", "STRUCTREFREF", "STRUCTINC", "STRUCTDEC":
		page := a.intOrFail(operands[0])
		member := a.intOrFail(operands[1])
		insns := []asmInsn{op0(PUSHSTRUCTPAGE), op1(PUSH, page), op1(PUSH, member)}
		switch name {
		case "STRUCTREF":
			if major >= 14 {
				return append(insns, op1(X_REF, 1))
			}
			return append(insns, op0(REF))
		case "STRUCTREFREF":
			return append(insns, op0(REFREF))
		case "STRUCTINC":
			return append(insns, op0(INC))
		default:
			return append(insns, op0(DEC))
		}

	case "STRUCTASSIGN", "F_STRUCTASSIGN":
		page := a.intOrFail(operands[0])
		member := a.intOrFail(operands[1])
		insns := []asmInsn{op0(PUSHSTRUCTPAGE), op1(PUSH, page), op1(PUSH, member)}
		if name == "F_STRUCTASSIGN" {
			val := a.float32Bits(operands[2])
			return append(insns, op1(F_PUSH, val), op0(F_ASSIGN), op0(POP))
		}
		val := a.int32(operands[2])
		if major >= 14 {
			return append(insns, op1(PUSH, val), op1(X_ASSIGN, 1), op0(POP))
		}
		return append(insns, op1(PUSH, val), op0(ASSIGN), op0(POP))

	case "PUSHVMETHOD":
		st := a.resolveName(a.structs, operands[0], "struct")
		off := a.intOrFail(operands[1])
		return []asmInsn{op0(DUP), op1(CHECKUDO, st), op1(PUSH, off), op0(ADD)}
	}

	a.fail("pseudo-op %q has no expansion rule", name)
	return nil
}

func op0(op Opcode) asmInsn             { return asmInsn{op: op} }
func op1(op Opcode, a int32) asmInsn    { return asmInsn{op: op, args: []int32{a}} }
func op2(op Opcode, a, b int32) asmInsn { return asmInsn{op: op, args: []int32{a, b}} }
