package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/ain-tools/internal/aincodec"
	"github.com/mna/ain-tools/internal/jamasm"
	"github.com/mna/mainer"
)

// Dump opens INFILE and prints whichever views were requested. With no
// view flag at all, it behaves as if --functions had been given, since
// that's the cheapest useful summary of a container's contents.
func (c *Cmd) Dump(ctx context.Context, stdio mainer.Stdio, args []string) error {
	in := args[0]
	raw, err := os.ReadFile(in)
	if err != nil {
		return printError(stdio, fmt.Errorf("dump: %w", err))
	}
	af, err := aincodec.Decode(raw)
	if err != nil {
		return printError(stdio, fmt.Errorf("dump: %w", err))
	}

	if c.DumpJSON {
		return printError(stdio, fmt.Errorf("dump: --json is not supported by this build"))
	}

	any := c.DumpCode || c.DumpText || c.DumpFunctions
	if !any {
		c.DumpFunctions = true
	}

	if c.DumpFunctions {
		for _, fn := range af.Functions {
			if fn == nil {
				continue
			}
			fmt.Fprintf(stdio.Stdout, "%-32s addr=%-8d args=%-3d locals=%-3d ret=%s\n",
				fn.Name, fn.Address, fn.NumArgs, len(fn.Vars), fn.ReturnType)
		}
	}

	if c.DumpCode {
		code, err := jamasm.Disassemble(af)
		if err != nil {
			return printError(stdio, fmt.Errorf("dump: %w", err))
		}
		stdio.Stdout.Write(code)
	}

	if c.DumpText {
		for i, s := range af.Strings {
			fmt.Fprintf(stdio.Stdout, "s[%d] = %q\n", i, s)
		}
		for i, m := range af.Messages {
			fmt.Fprintf(stdio.Stdout, "m[%d] = %q\n", i, m)
		}
	}

	return nil
}
