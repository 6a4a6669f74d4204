// cmd/coil/commands/compile.go
package commands

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/LowLevelDaniel/COIL/internal/driver"
)

// CompileCommand parses and, optionally, validates and optimizes a HOIL
// source file, then writes the resulting module to a binary container.
func CompileCommand(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	dumpAST := fs.Bool("dump-ast", false, "print the parsed module before validation/optimization")
	validate := fs.Bool("validate", false, "run the semantic analyzer")
	optimize := fs.Bool("optimize", false, "run a basic-level optimizer pass")
	output := fs.String("o", "", "output .coil path (default: input path with .coil extension)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: coil compile <file.hoil> [--dump-ast] [--validate] [--optimize] [-o out.coil]")
	}
	input := fs.Arg(0)

	out := *output
	if out == "" {
		out = strings.TrimSuffix(input, ".hoil") + ".coil"
	}

	c := driver.NewCompiler()
	c.SetDumpAST(*dumpAST)
	c.SetValidate(*validate)
	c.SetOptimize(*optimize)

	mod := c.CompileFile(input)
	if c.HadError() {
		fmt.Fprintln(os.Stderr, c.Sink().Summary())
		return fmt.Errorf("compile failed")
	}

	if err := c.WriteBinary(mod, out); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}
