package jamasm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/ain-tools/internal/ainfile"
	"github.com/mna/ain-tools/internal/aintype"
	"github.com/mna/ain-tools/internal/jamasm"
)

func newFile(major int) *ainfile.AinFile {
	af := ainfile.New(ainfile.Version{Major: major})
	af.Functions = append(af.Functions, &ainfile.Function{Name: "main", Index: 1, ReturnType: aintype.New(aintype.Int)})
	af.Globals = append(af.Globals, &ainfile.Variable{Name: "g_score", Typ: aintype.New(aintype.Int)})
	return af
}

func TestAssemblerReplace(t *testing.T) {
	cases := []struct {
		desc string
		src  string
		err  string
	}{
		{"empty program", "", ""},
		{"unknown opcode", "function main\n\tFOOBAR\nendfunction\n", `unknown opcode or pseudo-op "FOOBAR"`},
		{"instruction outside function", "PUSH 1\n", "instruction \"PUSH 1\" outside of a function block"},
		{"unresolved function reference", "function nope\n\tRETURN\nendfunction\n", `no matching AinFile.Functions entry`},
		{"undefined label", "function main\n\tJUMP L9\nendfunction\n", `undefined label "L9"`},
		{"wrong operand count", "function main\n\tPUSH\nendfunction\n", "expected 1 operand"},

		{"minimal function", "function main\n\tPUSH 1\n\tRETURN\nendfunction\n", ""},

		{"label and jump", `
function main
L0:
	PUSH 0
	IFZ L0
	RETURN
endfunction
`, ""},
	}

	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			af := newFile(14)
			a := jamasm.New(af)
			err := a.Replace([]byte(c.src))
			if c.err == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, c.err)
		})
	}
}

func TestAssemblerPseudoOps(t *testing.T) {
	cases := []struct {
		desc  string
		major int
		src   string
	}{
		{"local ref v14", 14, "function main\n\tLOCALREF 0\n\tRETURN\nendfunction\n"},
		{"local ref legacy", 8, "function main\n\tLOCALREF 0\n\tRETURN\nendfunction\n"},
		{"local assign v14", 14, "function main\n\tLOCALASSIGN 0 5\n\tRETURN\nendfunction\n"},
		{"global assign legacy", 8, "function main\n\tGLOBALASSIGN 0 5\n\tRETURN\nendfunction\n"},
		{"float local assign", 14, "function main\n\tF_LOCALASSIGN 0 3.5\n\tRETURN\nendfunction\n"},
		{"string local assign", 14, `function main
	S_LOCALASSIGN 0 "hi"
	RETURN
endfunction
`},
		{"local delete", 14, "function main\n\tLOCALDELETE 0\n\tRETURN\nendfunction\n"},
	}

	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			af := newFile(c.major)
			a := jamasm.New(af)
			require.NoError(t, a.Replace([]byte(c.src)))
			require.NotEmpty(t, af.Code)
		})
	}
}

func TestAssemblerSwitchDirectives(t *testing.T) {
	af := newFile(14)
	a := jamasm.New(af)
	src := `
function main
	PUSH 0
	SWITCH 0
		CASE 1 L1
		CASE 2 L2
		DEFAULT LD
L1:
	PUSH 10
	JUMP LEND
L2:
	PUSH 20
	JUMP LEND
LD:
	PUSH 0
LEND:
	RETURN
endfunction
`
	require.NoError(t, a.Replace([]byte(src)))
	require.Len(t, af.Switches, 1)
	sw := af.Switches[0]
	require.Equal(t, ainfile.SwitchInt, sw.CaseType)
	require.Len(t, sw.Cases, 2)
	require.NotEqual(t, -1, sw.DefaultAddr)
}

func TestDisassembleRoundtrip(t *testing.T) {
	af := newFile(14)
	a := jamasm.New(af)
	require.NoError(t, a.Replace([]byte("function main\n\tLOCALREF 0\n\tRETURN\nendfunction\n")))

	out, err := jamasm.Disassemble(af)
	require.NoError(t, err)
	require.Contains(t, string(out), "function main")
	require.Contains(t, string(out), "LOCALREF 0")
	require.Contains(t, string(out), "endfunction")

	af2 := newFile(14)
	a2 := jamasm.New(af2)
	require.NoError(t, a2.Replace(out))
	require.Equal(t, af.Code, af2.Code)
}
