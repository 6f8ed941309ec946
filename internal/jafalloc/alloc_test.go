package jafalloc_test

import (
	"testing"

	"github.com/mna/ain-tools/internal/ainfile"
	"github.com/mna/ain-tools/internal/jafalloc"
	"github.com/mna/ain-tools/internal/jafast"
	"github.com/mna/ain-tools/internal/jafparser"
	"github.com/mna/ain-tools/internal/jafresolve"
	"github.com/mna/ain-tools/internal/jaftoken"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveSrc(t *testing.T, src string) (*ainfile.AinFile, *jafresolve.Result) {
	t.Helper()

	af := ainfile.New(ainfile.Version{Major: 4, Minor: 0})
	fset := jaftoken.NewFileSet()

	file, err := jafparser.Parse(af, fset, "alloc.jaf", []byte(src))
	require.NoError(t, err)

	res, err := jafresolve.Resolve(fset, af, []*jafast.File{file})
	require.NoError(t, err)
	return af, res
}

// TestAllocateSequentialLocals checks that locals are assigned slots in
// declaration order, starting right after the parameter slots.
func TestAllocateSequentialLocals(t *testing.T) {
	const src = `
int sum(int a, int b)
{
	int x = a + b;
	int y = x + 1;
	return y;
}
`
	af, res := resolveSrc(t, src)
	require.NoError(t, jafalloc.Allocate(af, res))

	require.Len(t, res.Funcs, 1)
	fn := res.Funcs[0]

	body := fn.Body.List
	xDecl := body[0].(*jafast.VarDeclStmt)
	yDecl := body[1].(*jafast.VarDeclStmt)

	assert.Equal(t, 2, xDecl.Slot)
	assert.Equal(t, 3, yDecl.Slot)

	fnEntry := af.Functions[fn.FuncIndex]
	require.Len(t, fnEntry.Vars, 4)
	assert.Equal(t, "x", fnEntry.Vars[2].Name)
	assert.Equal(t, "y", fnEntry.Vars[3].Name)
}

// TestAllocateRefScalarTakesTwoSlots checks that a ref-qualified scalar
// local reserves its slot plus an adjacent filler slot, per the two-slot
// convention the disassembler and emitter both rely on for ref locals.
func TestAllocateRefScalarTakesTwoSlots(t *testing.T) {
	const src = `
int f()
{
	ref int x = 1;
	int y = 2;
	return y;
}
`
	af, res := resolveSrc(t, src)
	require.NoError(t, jafalloc.Allocate(af, res))

	fn := res.Funcs[0]
	body := fn.Body.List
	xDecl := body[0].(*jafast.VarDeclStmt)
	yDecl := body[1].(*jafast.VarDeclStmt)

	assert.Equal(t, 0, xDecl.Slot)
	assert.Equal(t, 2, yDecl.Slot)

	fnEntry := af.Functions[fn.FuncIndex]
	require.Len(t, fnEntry.Vars, 3)
	assert.Equal(t, "x", fnEntry.Vars[0].Name)
	assert.Equal(t, "<void>", fnEntry.Vars[1].Name)
	assert.Equal(t, "y", fnEntry.Vars[2].Name)
}
