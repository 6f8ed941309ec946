package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mna/ain-tools/internal/aincodec"
	"github.com/mna/ain-tools/internal/ainfile"
	"github.com/mna/ain-tools/internal/emitter"
	"github.com/mna/ain-tools/internal/jafalloc"
	"github.com/mna/ain-tools/internal/jafanalysis"
	"github.com/mna/ain-tools/internal/jafast"
	"github.com/mna/ain-tools/internal/jaferr"
	"github.com/mna/ain-tools/internal/jafparser"
	"github.com/mna/ain-tools/internal/jafresolve"
	"github.com/mna/ain-tools/internal/jaftoken"
	"github.com/mna/ain-tools/internal/jamasm"
	"github.com/mna/mainer"
)

// Edit opens or creates an AinFile, applies its inputs in a fixed order
// (every --hll file, then every --jaf file, then -c, then every --jam
// file, each group in the order given on the command line), and writes
// the result to -o (or back over INFILE when -o is absent).
func (c *Cmd) Edit(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if c.JSONFile != "" {
		return printError(stdio, fmt.Errorf("edit: -j is not supported by this build"))
	}
	if c.TextFile != "" {
		return printError(stdio, fmt.Errorf("edit: -t is not supported by this build"))
	}

	var (
		af  *ainfile.AinFile
		in  string
		err error
	)
	if len(args) > 0 {
		in = args[0]
	}

	if in != "" {
		raw, rerr := os.ReadFile(in)
		if rerr != nil {
			return printError(stdio, fmt.Errorf("edit: %w", rerr))
		}
		af, err = aincodec.Decode(raw)
		if err != nil {
			return printError(stdio, fmt.Errorf("edit: %w", err))
		}
	} else {
		af = ainfile.New(parseAinVersion(c.AinVersion))
	}

	fset := jaftoken.NewFileSet()
	var files []*jafast.File

	for _, hf := range c.HllFiles {
		f, perr := parseSourceFile(af, fset, hf)
		if perr != nil {
			return printError(stdio, perr)
		}
		files = append(files, f)
	}
	for _, jf := range c.JafFiles {
		f, perr := parseSourceFile(af, fset, jf)
		if perr != nil {
			return printError(stdio, perr)
		}
		files = append(files, f)
	}

	if len(files) > 0 {
		resolved, analysis, rerr := resolveAndCompile(fset, af, files)
		if rerr != nil {
			return printError(stdio, rerr)
		}
		for _, w := range analysis.Warnings {
			fmt.Fprintf(stdio.Stderr, "warning: %s\n", w)
		}
		if err := emitter.Emit(af, resolved); err != nil {
			return printError(stdio, fmt.Errorf("edit: %w", err))
		}
	}

	if c.CodeFile != "" {
		src, rerr := os.ReadFile(c.CodeFile)
		if rerr != nil {
			return printError(stdio, fmt.Errorf("edit: %w", rerr))
		}
		if err := jamasm.New(af).Replace(src); err != nil {
			return printError(stdio, fmt.Errorf("edit: %w", err))
		}
	}
	for _, jam := range c.JamFiles {
		src, rerr := os.ReadFile(jam)
		if rerr != nil {
			return printError(stdio, fmt.Errorf("edit: %w", rerr))
		}
		if err := jamasm.New(af).Append(src); err != nil {
			return printError(stdio, fmt.Errorf("edit: %w", err))
		}
	}

	out := c.Out
	if out == "" {
		out = in
	}
	if out == "" {
		return printError(stdio, fmt.Errorf("edit: no output path given and no INFILE to overwrite"))
	}

	raw, err := aincodec.Encode(af)
	if err != nil {
		return printError(stdio, fmt.Errorf("edit: %w", err))
	}
	if err := os.WriteFile(out, raw, 0o644); err != nil {
		return printError(stdio, fmt.Errorf("edit: %w", err))
	}
	return nil
}

func parseSourceFile(af *ainfile.AinFile, fset *jaftoken.FileSet, path string) (*jafast.File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("edit: %w", err)
	}
	f, err := jafparser.Parse(af, fset, path, src)
	if err != nil {
		return nil, fmt.Errorf("edit: %w", err)
	}
	return f, nil
}

func resolveAndCompile(fset *jaftoken.FileSet, af *ainfile.AinFile, files []*jafast.File) (*jafresolve.Result, *jafanalysis.Result, error) {
	resolved, err := jafresolve.Resolve(fset, af, files)
	if err != nil {
		return nil, nil, fmt.Errorf("edit: %w", err)
	}

	res, err := jafanalysis.Analyze(fset, af, resolved)
	if err != nil {
		return nil, nil, fmt.Errorf("edit: %w", err)
	}
	if err := jafalloc.Allocate(af, resolved); err != nil {
		return nil, nil, fmt.Errorf("edit: %w", err)
	}
	return resolved, res, nil
}

func parseAinVersion(s string) ainfile.Version {
	if s == "" {
		return ainfile.Version{Major: 4, Minor: 0}
	}
	parts := strings.SplitN(s, ".", 2)
	major, _ := strconv.Atoi(parts[0])
	minor := 0
	if len(parts) > 1 {
		minor, _ = strconv.Atoi(parts[1])
	}
	return ainfile.Version{Major: major, Minor: minor}
}

// jaferrReport renders a *jaferr.Error using its source-excerpt aware
// Report method when available, falling back to Error(). The error may
// be wrapped (edit's own steps wrap with fmt.Errorf("edit: %w", ...)),
// so it unwraps looking for the first *jaferr.Error in the chain.
func jaferrReport(err error) string {
	var je *jaferr.Error
	if errors.As(err, &je) {
		return je.Report()
	}
	return err.Error()
}
