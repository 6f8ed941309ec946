package jafparser_test

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/ain-tools/internal/ainfile"
	"github.com/mna/ain-tools/internal/filetest"
	"github.com/mna/ain-tools/internal/jafast"
	"github.com/mna/ain-tools/internal/jafparser"
	"github.com/mna/ain-tools/internal/jaftoken"
)

var testUpdateParserTests = flag.Bool("test.update-parser-tests", false, "If set, replace expected parser test results with actual results.")

// TestParser runs every .jaf file under testdata/in through Parse and
// diffs a one-line-per-declaration summary (and any parse errors)
// against the corresponding golden file in testdata/out.
func TestParser(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")
	for _, fi := range filetest.SourceFiles(t, srcDir, ".jaf") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}

			af := ainfile.New(ainfile.Version{Major: 4, Minor: 0})
			fset := jaftoken.NewFileSet()
			file, perr := jafparser.Parse(af, fset, fi.Name(), src)

			var buf, ebuf bytes.Buffer
			if file != nil {
				summarizeFile(&buf, file)
			}
			if perr != nil {
				fmt.Fprintln(&ebuf, perr)
			}

			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateParserTests)
			filetest.DiffErrors(t, fi, ebuf.String(), resultDir, testUpdateParserTests)
		})
	}
}

// summarizeFile writes one deterministic line per top-level declaration,
// enough to confirm the parser built the shape the source asked for
// without depending on unstable details like exact position spans.
func summarizeFile(buf *bytes.Buffer, file *jafast.File) {
	for _, d := range file.Decls {
		switch x := d.(type) {
		case *jafast.FuncDecl:
			body := "proto"
			if x.Body != nil {
				body = fmt.Sprintf("%d stmts", len(x.Body.List))
			}
			fmt.Fprintf(buf, "func %s(%d params) %s\n", x.Name, len(x.Params), body)
		case *jafast.GlobalDecl:
			init := "no-init"
			if x.Init != nil {
				init = "init"
			}
			fmt.Fprintf(buf, "global %s %s %s\n", x.Typ, x.Name, init)
		case *jafast.StructDecl:
			fmt.Fprintf(buf, "struct %s (%d members)\n", x.Name, len(x.Members))
		case *jafast.FuncTypeDecl:
			fmt.Fprintf(buf, "functype %s\n", x.Name)
		case *jafast.EnumDecl:
			fmt.Fprintf(buf, "enum %s (%d values)\n", x.Name, len(x.Symbols))
		case *jafast.HLLDecl:
			fmt.Fprintf(buf, "hll %s (%d functions)\n", x.Name, len(x.Functions))
		default:
			fmt.Fprintf(buf, "decl %T\n", x)
		}
	}
}
