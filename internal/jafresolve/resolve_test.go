package jafresolve_test

import (
	"testing"

	"github.com/mna/ain-tools/internal/ainfile"
	"github.com/mna/ain-tools/internal/jafast"
	"github.com/mna/ain-tools/internal/jafparser"
	"github.com/mna/ain-tools/internal/jafresolve"
	"github.com/mna/ain-tools/internal/jaftoken"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resolveSrc = `
int add(int a, int b)
{
	return a + b;
}

string greeting = "hello";

int main()
{
	int total = add(1, 2);
	return total;
}
`

func TestResolve(t *testing.T) {
	af := ainfile.New(ainfile.Version{Major: 4, Minor: 0})
	fset := jaftoken.NewFileSet()

	file, err := jafparser.Parse(af, fset, "resolve.jaf", []byte(resolveSrc))
	require.NoError(t, err)

	res, err := jafresolve.Resolve(fset, af, []*jafast.File{file})
	require.NoError(t, err)

	require.Len(t, res.Funcs, 2)
	require.Len(t, res.Globals, 1)

	assert.Equal(t, "add", res.Funcs[0].Name)
	assert.Equal(t, "main", res.Funcs[1].Name)
	assert.Equal(t, "greeting", res.Globals[0].Name)

	// Functions/Globals gain their final index, aligned 1:1 with
	// af.Functions[1:]/af.Globals (index 0 of Functions is the mandatory
	// NULL entry jafresolve never touches).
	assert.Equal(t, res.Funcs[0].FuncIndex, af.Functions[res.Funcs[0].FuncIndex].Index)
	assert.Equal(t, "add", af.Functions[res.Funcs[0].FuncIndex].Name)
	assert.Equal(t, "main", af.Functions[res.Funcs[1].FuncIndex].Name)
	assert.Equal(t, "greeting", af.Globals[res.Globals[0].GlobalIndex].Name)

	assert.Equal(t, res.Funcs[1].FuncIndex, af.MainFunction)
	assert.Equal(t, -1, af.MessageFunction)
}
