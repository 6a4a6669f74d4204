package driver

import (
	"fmt"
	"os"

	"github.com/LowLevelDaniel/COIL/internal/asmprint"
	"github.com/LowLevelDaniel/COIL/internal/binary"
	"github.com/LowLevelDaniel/COIL/internal/diag"
	"github.com/LowLevelDaniel/COIL/internal/ir"
	"github.com/LowLevelDaniel/COIL/internal/optimizer"
	"github.com/LowLevelDaniel/COIL/internal/target"
	"github.com/LowLevelDaniel/COIL/internal/x86"
)

// Assembler drives a decoded module through optimization to native code or
// assembly text for one target configuration.
type Assembler struct {
	sink         *diag.Sink
	target       *target.Configuration
	optimizer    *optimizer.Optimizer
	experimental bool
	dumpIR       bool
	verbose      bool
}

// NewAssembler returns an Assembler bound to the built-in default target at
// optimizer level none.
func NewAssembler() *Assembler {
	return &Assembler{
		sink:      diag.NewSink(),
		target:    target.Default(),
		optimizer: optimizer.New(),
	}
}

// Sink exposes the assembler's diagnostic history.
func (a *Assembler) Sink() *diag.Sink { return a.sink }

// HadError reports whether any diagnostic reported so far is an error.
func (a *Assembler) HadError() bool { return a.sink.HadErrors() }

// SetTarget looks up a target configuration by name. "default",
// "x86_64-generic" and the empty string all select the single built-in
// configuration; spec.md §4.10 names
// no target registry beyond the built-in descriptor.
func (a *Assembler) SetTarget(name string) error {
	switch name {
	case "", "default", "x86_64-generic":
		a.target = target.Default()
		return nil
	default:
		return fmt.Errorf("driver: unknown target %q", name)
	}
}

// SetOptimizerLevel is the assembler-facing half of set_opt_level (Open
// Question #2 in DESIGN.md): a distinct operation from the optimizer's own
// SetLevel, named the way spec.md §6.3 lists it.
func (a *Assembler) SetOptimizerLevel(level optimizer.Level) { a.optimizer.SetLevel(level) }

// EnableExperimental toggles the optimizer's reserved aggressive-level
// hooks.
func (a *Assembler) EnableExperimental(enabled bool) {
	a.experimental = enabled
	a.optimizer.SetExperimental(enabled)
}

// SetDumpIR toggles printing the decoded module before codegen.
func (a *Assembler) SetDumpIR(enabled bool) { a.dumpIR = enabled }

// SetVerbose toggles printing the target summary before codegen.
func (a *Assembler) SetVerbose(enabled bool) { a.verbose = enabled }

// AssembleFile decodes the binary module at path.
func (a *Assembler) AssembleFile(path string) *ir.Module {
	data, err := os.ReadFile(path)
	if err != nil {
		a.sink.Report(diag.Error, diag.System, diag.ErrSystemIO,
			fmt.Sprintf("reading %s: %v", path, err), diag.Location{File: path})
		return nil
	}

	if a.verbose {
		fmt.Fprint(os.Stderr, a.target.Summary())
	}

	mod, ok := binary.Decode(data, a.sink, path)
	if !ok {
		return nil
	}

	if a.dumpIR {
		fmt.Fprint(os.Stderr, Dump(mod))
	}

	if satisfied, missing := a.target.SatisfiesRequirements(mod.TargetReqs); !satisfied {
		a.sink.Report(diag.Error, diag.Assembler, diag.ErrAssemblerBadMapping,
			fmt.Sprintf("target %q is missing required features: %v", a.target.Architecture.Name, missing),
			diag.Location{File: path})
	}

	return mod
}

// GenerateNativeCode runs the optimizer and the x86-64 translator over mod,
// returning the concatenated code buffer and each function's offset within
// it. ok is false if any function failed to translate.
func (a *Assembler) GenerateNativeCode(mod *ir.Module) ([]byte, []x86.FunctionCode, bool) {
	a.optimizer.Run(mod, a.target.Resources.RegisterCount, a.sink, "")
	return x86.New().Translate(mod, a.sink, "")
}

// GenerateAssembly runs the optimizer over mod and renders it as AT&T text.
func (a *Assembler) GenerateAssembly(mod *ir.Module) string {
	a.optimizer.Run(mod, a.target.Resources.RegisterCount, a.sink, "")
	return asmprint.Print(mod)
}
