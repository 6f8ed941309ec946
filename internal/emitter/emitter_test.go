package emitter_test

import (
	"testing"

	"github.com/mna/ain-tools/internal/ainfile"
	"github.com/mna/ain-tools/internal/emitter"
	"github.com/mna/ain-tools/internal/jafalloc"
	"github.com/mna/ain-tools/internal/jafanalysis"
	"github.com/mna/ain-tools/internal/jafast"
	"github.com/mna/ain-tools/internal/jafparser"
	"github.com/mna/ain-tools/internal/jafresolve"
	"github.com/mna/ain-tools/internal/jaftoken"
	"github.com/mna/ain-tools/internal/jamasm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// build runs src through the whole core pipeline and returns the
// resulting AinFile plus its disassembled code section.
func build(t *testing.T, src string) (*ainfile.AinFile, string) {
	t.Helper()

	af := ainfile.New(ainfile.Version{Major: 4, Minor: 0})
	fset := jaftoken.NewFileSet()

	file, err := jafparser.Parse(af, fset, "emit.jaf", []byte(src))
	require.NoError(t, err)

	res, err := jafresolve.Resolve(fset, af, []*jafast.File{file})
	require.NoError(t, err)

	_, err = jafanalysis.Analyze(fset, af, res)
	require.NoError(t, err)

	require.NoError(t, jafalloc.Allocate(af, res))
	require.NoError(t, emitter.Emit(af, res))

	code, err := jamasm.Disassemble(af)
	require.NoError(t, err)
	return af, string(code)
}

// TestEmitIntegerLiteralReturn mirrors the simplest documented build
// scenario: a function that does nothing but return a constant pushes
// that constant and also falls through to the default end-of-function
// return, since the emitter never performs reachability analysis to
// suppress it.
func TestEmitIntegerLiteralReturn(t *testing.T) {
	_, code := build(t, "int main() { return 42; }")
	assert.Contains(t, code, "PUSH 42")
	assert.Contains(t, code, "RETURN")
}

func TestEmitArithmeticAndCall(t *testing.T) {
	const src = `
int add(int a, int b)
{
	return a + b;
}

int main()
{
	int total = add(1, 2);
	return total;
}
`
	_, code := build(t, src)
	assert.Contains(t, code, "function add")
	assert.Contains(t, code, "ADD")
	assert.Contains(t, code, "CALLFUNC add")
	assert.Contains(t, code, "function main")
}

func TestEmitGlobalConstantInit(t *testing.T) {
	af, _ := build(t, "int count = 7;\nint main() { return count; }")
	require.Len(t, af.Globals, 1)
	g := af.Globals[0]
	assert.True(t, g.HasInit)
	require.NotNil(t, g.InitVal)
	assert.EqualValues(t, 7, g.InitVal.Int)
}
