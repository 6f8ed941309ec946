package jafanalysis_test

import (
	"testing"

	"github.com/mna/ain-tools/internal/ainfile"
	"github.com/mna/ain-tools/internal/jafanalysis"
	"github.com/mna/ain-tools/internal/jafast"
	"github.com/mna/ain-tools/internal/jafparser"
	"github.com/mna/ain-tools/internal/jafresolve"
	"github.com/mna/ain-tools/internal/jaftoken"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzeSrc(t *testing.T, src string) (*ainfile.AinFile, *jafresolve.Result, *jafanalysis.Result, error) {
	t.Helper()

	af := ainfile.New(ainfile.Version{Major: 4, Minor: 0})
	fset := jaftoken.NewFileSet()

	file, err := jafparser.Parse(af, fset, "analysis.jaf", []byte(src))
	require.NoError(t, err)

	res, err := jafresolve.Resolve(fset, af, []*jafast.File{file})
	require.NoError(t, err)

	out, err := jafanalysis.Analyze(fset, af, res)
	return af, res, out, err
}

// TestAnalyzeInsertsWideningCast checks that assigning an int expression
// to a float local gets wrapped in a CastExpr rather than left as-is or
// rejected, since int->float is an implicit widening in JAF.
func TestAnalyzeInsertsWideningCast(t *testing.T) {
	const src = `
int f()
{
	float x = 1;
	return 0;
}
`
	_, res, out, err := analyzeSrc(t, src)
	require.NoError(t, err)
	assert.Empty(t, out.Warnings)

	decl := res.Funcs[0].Body.List[0].(*jafast.VarDeclStmt)
	_, ok := decl.Init.(*jafast.CastExpr)
	assert.True(t, ok, "expected int initializer of a float local to be wrapped in a CastExpr, got %T", decl.Init)
}

// TestAnalyzeRejectsUnknownIdentifier checks that referencing an
// undeclared name is reported as an error rather than silently ignored.
func TestAnalyzeRejectsUnknownIdentifier(t *testing.T) {
	const src = `
int f()
{
	return undeclared_name;
}
`
	_, _, _, err := analyzeSrc(t, src)
	assert.Error(t, err)
}

// TestAnalyzeLeavesMatchingLiteralUntouched checks that a global
// initializer whose literal type already matches the declared type is
// left as a plain LiteralExpr, since the emitter's global-init fast path
// type-switches directly on *jafast.LiteralExpr.
func TestAnalyzeLeavesMatchingLiteralUntouched(t *testing.T) {
	const src = `
int count = 7;
int main() { return count; }
`
	_, res, _, err := analyzeSrc(t, src)
	require.NoError(t, err)

	g := res.Globals[0]
	_, ok := g.Init.(*jafast.LiteralExpr)
	assert.True(t, ok, "expected matching-type global initializer to remain a LiteralExpr, got %T", g.Init)
}
