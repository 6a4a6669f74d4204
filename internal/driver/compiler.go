// Package driver implements the two driver-facing collaborators cmd/coil
// wires up: Compiler (HOIL source to an in-memory module, optionally to a
// binary file) and Assembler (a binary module to native code or assembly
// text). Both own a diag.Sink and report compilation failures through it
// rather than via Go errors, mirroring the rest of the toolchain (spec.md
// §6.3).
package driver

import (
	"fmt"
	"os"

	"github.com/LowLevelDaniel/COIL/internal/binary"
	"github.com/LowLevelDaniel/COIL/internal/diag"
	"github.com/LowLevelDaniel/COIL/internal/hoilparse"
	"github.com/LowLevelDaniel/COIL/internal/ir"
	"github.com/LowLevelDaniel/COIL/internal/optimizer"
	"github.com/LowLevelDaniel/COIL/internal/semantic"
	"github.com/LowLevelDaniel/COIL/internal/target"
)

// Compiler drives HOIL source through the lexer/parser, optionally the
// semantic analyzer and optimizer, to a binary-encodable module.
type Compiler struct {
	sink     *diag.Sink
	dumpAST  bool
	validate bool
	optimize bool
}

// NewCompiler returns a Compiler with validation and optimization off and
// AST dumping off, matching the teacher's "flags start disabled, commands
// enable them" convention.
func NewCompiler() *Compiler {
	return &Compiler{sink: diag.NewSink()}
}

// SetDumpAST toggles printing the freshly parsed module before semantic
// analysis or optimization runs.
func (c *Compiler) SetDumpAST(enabled bool) { c.dumpAST = enabled }

// SetValidate toggles running the semantic analyzer after parsing.
func (c *Compiler) SetValidate(enabled bool) { c.validate = enabled }

// SetOptimize toggles a basic-level optimizer pass after validation.
// set-opt-level is an assembler-only concern (Open Question #2 in
// DESIGN.md); the compiler's optimize flag is a plain on/off switch.
func (c *Compiler) SetOptimize(enabled bool) { c.optimize = enabled }

// Sink exposes the compiler's diagnostic history to callers that want to
// print it themselves (cmd/coil does, on a non-zero exit).
func (c *Compiler) Sink() *diag.Sink { return c.sink }

// HadError reports whether any diagnostic reported so far is an error.
func (c *Compiler) HadError() bool { return c.sink.HadErrors() }

// CompileString parses src (attributed to file in diagnostics) and, if
// enabled, validates and optimizes it. It always returns the module parsed
// so far — callers must check HadError before trusting it further.
func (c *Compiler) CompileString(src, file string) *ir.Module {
	p := hoilparse.New(src, file, c.sink)
	mod := p.ParseModule()

	if c.dumpAST {
		fmt.Fprint(os.Stderr, Dump(mod))
	}

	if c.validate {
		semantic.New(c.sink, file).Analyze(mod)
	}

	if c.optimize {
		opt := optimizer.New()
		opt.SetLevel(optimizer.LevelBasic)
		opt.Run(mod, target.Default().Resources.RegisterCount, c.sink, file)
	}

	return mod
}

// CompileFile reads path and compiles its contents.
func (c *Compiler) CompileFile(path string) *ir.Module {
	data, err := os.ReadFile(path)
	if err != nil {
		c.sink.Report(diag.Error, diag.System, diag.ErrSystemIO,
			fmt.Sprintf("reading %s: %v", path, err), diag.Location{File: path})
		return nil
	}
	return c.CompileString(string(data), path)
}

// WriteBinary encodes mod and writes it to path.
func (c *Compiler) WriteBinary(mod *ir.Module, path string) error {
	data := binary.Encode(mod)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.sink.Report(diag.Error, diag.System, diag.ErrSystemIO,
			fmt.Sprintf("writing %s: %v", path, err), diag.Location{File: path})
		return err
	}
	return nil
}
