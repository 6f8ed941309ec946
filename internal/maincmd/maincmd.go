package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "ain"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<path>...] [-- <arg>...]
       %[1]s -h|--help
       %[1]s -v|--version

Toolchain for AliceSoft System 4x .ain bytecode files: compiles JAF
source and JAM assembly into an .ain container and inspects existing
containers.

The <command> can be one of:
       edit                      Open or create an .ain file, apply the
                                 listed JAF/HLL/JAM inputs in order, and
                                 write the result.
       dump                      Open an .ain file and print the
                                 requested views of it.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

Valid flag options for the <edit> command are:
       -o --out FILE             Write the resulting .ain file to FILE
                                 (default: overwrite INFILE).
       --jaf FILE                Compile FILE as JAF source and link its
                                 declarations into the file (repeatable).
       --hll FILE                Compile FILE as an HLL declaration file
                                 and register its library (repeatable).
       --jam FILE                Assemble FILE as JAM text and append its
                                 functions to the code section (repeatable).
       -c FILE                   Assemble FILE as JAM text and replace
                                 the entire code section with it.
       -j FILE                   Import global/string retranslations from
                                 a JSON side-channel file (not supported
                                 by this build).
       -t FILE                   Apply a TEXT retranslation stream to the
                                 string/message tables (not supported by
                                 this build).
       --ain-version MAJOR[.MINOR]
                                 Format version to use when INFILE is
                                 omitted and a new file is created.
       --raw                     Accepted; has no effect in this build
                                 (the container framing is always the
                                 same).
       --no-validate             Accepted; has no effect in this build
                                 (no consistency checks are run after
                                 applying the inputs).

Valid flag options for the <dump> command are:
       --code                    Print the disassembled JAM text of every
                                 function.
       --text                    Print the string and message tables.
       --json                    Print the canonical JSON tree (not
                                 supported by this build).
       --functions               Print the function table (name, address,
                                 argument/local counts, return type).

More information on the ain-tools repository:
       https://github.com/mna/ain-tools
`, binName)
)

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	Out        string   `flag:"o,out"`
	JafFiles   []string `flag:"jaf"`
	HllFiles   []string `flag:"hll"`
	JamFiles   []string `flag:"jam"`
	CodeFile   string   `flag:"c"`
	JSONFile   string   `flag:"j"`
	TextFile   string   `flag:"t"`
	AinVersion string   `flag:"ain-version"`
	Raw        bool     `flag:"raw"`
	NoValidate bool     `flag:"no-validate"`

	DumpCode      bool `flag:"code"`
	DumpText      bool `flag:"text"`
	DumpJSON      bool `flag:"json"`
	DumpFunctions bool `flag:"functions"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]

	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", c.args[0])
	}

	editOnly := []string{"out", "jaf", "hll", "jam", "c", "j", "t", "ain-version", "raw", "no-validate"}
	dumpOnly := []string{"code", "text", "json", "functions"}
	switch cmdName {
	case "edit":
		for _, f := range dumpOnly {
			if c.flags[f] {
				return fmt.Errorf("edit: invalid flag '%s'", f)
			}
		}
	case "dump":
		for _, f := range editOnly {
			if c.flags[f] {
				return fmt.Errorf("dump: invalid flag '%s'", f)
			}
		}
		if len(c.args[1:]) == 0 {
			return errors.New("dump: an INFILE must be provided")
		}
	}

	return nil
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", jaferrReport(err))
	}
	return err
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		// each command takes care of printing its errors, just return with an error code
		return mainer.Failure
	}
	return mainer.Success
}

// valid commands are those that take a mainer.Stdio and a slice of strings as
// input, and return an error as output.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		// must take 4 parameters (including receiver) and return 1
		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}

		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
