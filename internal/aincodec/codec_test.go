package aincodec_test

import (
	"testing"

	"github.com/mna/ain-tools/internal/aincodec"
	"github.com/mna/ain-tools/internal/ainfile"
	"github.com/mna/ain-tools/internal/emitter"
	"github.com/mna/ain-tools/internal/jafalloc"
	"github.com/mna/ain-tools/internal/jafanalysis"
	"github.com/mna/ain-tools/internal/jafast"
	"github.com/mna/ain-tools/internal/jafparser"
	"github.com/mna/ain-tools/internal/jafresolve"
	"github.com/mna/ain-tools/internal/jaftoken"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// build compiles src through the full core pipeline into an AinFile, the
// same sequence the edit command runs before writing a container out.
func build(t *testing.T, src string) *ainfile.AinFile {
	t.Helper()

	af := ainfile.New(ainfile.Version{Major: 4, Minor: 0})
	fset := jaftoken.NewFileSet()

	file, err := jafparser.Parse(af, fset, "codec.jaf", []byte(src))
	require.NoError(t, err)

	res, err := jafresolve.Resolve(fset, af, []*jafast.File{file})
	require.NoError(t, err)

	_, err = jafanalysis.Analyze(fset, af, res)
	require.NoError(t, err)

	require.NoError(t, jafalloc.Allocate(af, res))
	require.NoError(t, emitter.Emit(af, res))
	return af
}

// TestEncodeDecodeRoundTrip checks that a compiled AinFile survives an
// Encode/Decode cycle with its functions, globals, strings and code
// section intact, independent of which container framing Encode picks.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	const src = `
string greeting = "hello";

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
	af := build(t, src)

	raw, err := aincodec.Encode(af)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	got, err := aincodec.Decode(raw)
	require.NoError(t, err)

	require.Len(t, got.Functions, len(af.Functions))
	for i, fn := range af.Functions {
		if fn == nil {
			continue
		}
		require.NotNil(t, got.Functions[i])
		assert.Equal(t, fn.Name, got.Functions[i].Name)
		assert.Equal(t, fn.NumArgs, got.Functions[i].NumArgs)
	}

	require.Len(t, got.Globals, len(af.Globals))
	assert.Equal(t, "greeting", got.Globals[0].Name)

	assert.Equal(t, af.Code, got.Code)
	assert.Equal(t, af.MainFunction, got.MainFunction)
}
