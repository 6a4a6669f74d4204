// cmd/coil/commands/assemble.go
package commands

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/LowLevelDaniel/COIL/internal/driver"
	"github.com/LowLevelDaniel/COIL/internal/optimizer"
)

var optLevels = map[string]optimizer.Level{
	"none":       optimizer.LevelNone,
	"basic":      optimizer.LevelBasic,
	"normal":     optimizer.LevelNormal,
	"aggressive": optimizer.LevelAggressive,
}

// AssembleCommand decodes a binary module and emits either native x86-64
// code or AT&T assembly text for one target configuration.
func AssembleCommand(args []string) error {
	fs := flag.NewFlagSet("assemble", flag.ContinueOnError)
	target := fs.String("target", "default", "target configuration name")
	optLevel := fs.String("opt-level", "none", "optimizer level: none|basic|normal|aggressive")
	experimental := fs.Bool("experimental", false, "enable the optimizer's reserved aggressive-level hooks")
	dumpIR := fs.Bool("dump-ir", false, "print the decoded module before codegen")
	verbose := fs.Bool("verbose", false, "print the target summary before codegen")
	emit := fs.String("emit", "native", "output kind: native|asm")
	output := fs.String("o", "", "output path (default: input path with .s or .bin extension)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: coil assemble <file.coil> [--target name] [--opt-level level] [--experimental] [--dump-ir] [--verbose] [--emit native|asm] [-o out]")
	}
	input := fs.Arg(0)

	level, ok := optLevels[*optLevel]
	if !ok {
		return fmt.Errorf("unknown --opt-level %q (want none|basic|normal|aggressive)", *optLevel)
	}

	a := driver.NewAssembler()
	if err := a.SetTarget(*target); err != nil {
		return err
	}
	a.SetOptimizerLevel(level)
	a.EnableExperimental(*experimental)
	a.SetDumpIR(*dumpIR)
	a.SetVerbose(*verbose)

	mod := a.AssembleFile(input)
	if a.HadError() {
		fmt.Fprintln(os.Stderr, a.Sink().Summary())
		return fmt.Errorf("assemble failed")
	}

	switch *emit {
	case "native":
		code, _, ok := a.GenerateNativeCode(mod)
		if !ok {
			fmt.Fprintln(os.Stderr, a.Sink().Summary())
			return fmt.Errorf("codegen failed")
		}
		out := *output
		if out == "" {
			out = strings.TrimSuffix(input, ".coil") + ".bin"
		}
		if err := os.WriteFile(out, code, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d bytes)\n", out, len(code))
	case "asm":
		text := a.GenerateAssembly(mod)
		if a.HadError() {
			fmt.Fprintln(os.Stderr, a.Sink().Summary())
			return fmt.Errorf("codegen failed")
		}
		out := *output
		if out == "" {
			out = strings.TrimSuffix(input, ".coil") + ".s"
		}
		if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", out)
	default:
		return fmt.Errorf("unknown --emit %q (want native|asm)", *emit)
	}
	return nil
}
