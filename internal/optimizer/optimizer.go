// Package optimizer implements the level-gated peephole and register-
// feasibility pass (C8). Levels are cumulative (spec.md §4.8): each level
// enables everything the level below it does, plus its own transforms.
package optimizer

import (
	"fmt"

	"github.com/LowLevelDaniel/COIL/internal/diag"
	"github.com/LowLevelDaniel/COIL/internal/ir"
)

// Level selects how aggressively Run transforms a module.
type Level int

const (
	LevelNone Level = iota
	LevelBasic
	LevelNormal
	LevelAggressive
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelBasic:
		return "basic"
	case LevelNormal:
		return "normal"
	case LevelAggressive:
		return "aggressive"
	default:
		return "unknown"
	}
}

// Optimizer rewrites an *ir.Module in place. The zero value is not usable;
// use New.
type Optimizer struct {
	level        Level
	experimental bool
}

// New returns an optimizer at LevelNone (an identity pass).
func New() *Optimizer {
	return &Optimizer{level: LevelNone}
}

// SetLevel sets the cumulative transformation level (Open Question #2:
// this is the optimizer-side half of "set_opt_level"; the assembler-facing
// wrapper is (*driver.Assembler).SetOptimizerLevel).
func (o *Optimizer) SetLevel(level Level) { o.level = level }

// Level returns the optimizer's current level.
func (o *Optimizer) Level() Level { return o.level }

// SetExperimental toggles the reserved aggressive-level hooks. Nothing is
// implemented behind it yet; it exists so the driver-facing API matches
// spec.md §4.8's "aggressive: everything above + reserved hooks
// (experimental)" without inventing unreviewed transforms to fill it.
func (o *Optimizer) SetExperimental(enabled bool) { o.experimental = enabled }

// Run applies every transform o.level enables to mod, in place, and
// reports ERROR_ASSEMBLER_BAD_MAPPING (via sink) for any function whose
// register_count exceeds targetRegisterCount once LevelNormal or higher is
// active. It never adds, reorders, or removes a block, and it never
// removes an instruction from a block's slice — only rewrites one in
// place or turns it into a NOP (spec.md §4.8, invariant P5).
func (o *Optimizer) Run(mod *ir.Module, targetRegisterCount uint32, sink *diag.Sink, file string) {
	if o.level == LevelNone {
		return
	}

	for _, f := range mod.Functions {
		for _, b := range f.Blocks {
			peephole(b)
		}
	}

	if o.level >= LevelNormal {
		o.checkRegisterFeasibility(mod, targetRegisterCount, sink, file)
	}

	// LevelAggressive (o.experimental): reserved, per spec.md §4.8. No
	// transform is specified beyond peephole + register feasibility, so
	// this level currently behaves identically to LevelNormal.
}

func (o *Optimizer) checkRegisterFeasibility(mod *ir.Module, targetRegisterCount uint32, sink *diag.Sink, file string) {
	loc := diag.Location{File: file}
	for _, f := range mod.Functions {
		if f.RegisterCount > targetRegisterCount {
			sink.Report(diag.Error, diag.Assembler, diag.ErrAssemblerBadMapping,
				fmt.Sprintf("function %q needs %d registers, target provides %d", f.Name, f.RegisterCount, targetRegisterCount), loc)
		}
	}
}

// peephole applies the two rewrites from spec.md §4.8 to a single block,
// left to right, in one pass: `MOV a, b; MOV b, a` collapses its second
// instruction to NOP, and `ADD r, 0` where the destination equals the
// first source collapses to NOP. An instruction flagged FlagVolatile is
// never collapsed or used to collapse a neighbor — eliding it, even when
// it matches one of these patterns, would change observable behavior.
func peephole(b *ir.BasicBlock) {
	for i := 0; i < len(b.Instructions); i++ {
		inst := b.Instructions[i]
		if inst.Flags.Has(ir.FlagVolatile) {
			continue
		}

		if inst.Opcode == ir.OpAdd && isAddZero(inst) {
			b.Instructions[i] = ir.NewInstruction(ir.OpNop)
			continue
		}

		if inst.Opcode == ir.OpMov && i+1 < len(b.Instructions) {
			next := b.Instructions[i+1]
			if next.Opcode == ir.OpMov && !next.Flags.Has(ir.FlagVolatile) && isReverseMov(inst, next) {
				b.Instructions[i+1] = ir.NewInstruction(ir.OpNop)
				i++
			}
		}
	}
}

// isAddZero reports whether inst is `dest = ADD dest, 0`.
func isAddZero(inst *ir.Instruction) bool {
	if !inst.HasDest || len(inst.Operands) != 2 {
		return false
	}
	dest, first, second := inst.Destination, inst.Operands[0], inst.Operands[1]
	if dest.Kind != ir.OperandRegister || first.Kind != ir.OperandRegister || dest.Register != first.Register {
		return false
	}
	return second.Kind == ir.OperandImmediate && second.Immediate == 0
}

// isReverseMov reports whether a is `MOV x, y` and b is `MOV y, x`. MOV's
// two operands in this grammar are the plain (destination, source) pair —
// there is no separate Destination field set — matching the 2-operand
// arity spec.md §3.7 gives MOV.
func isReverseMov(a, b *ir.Instruction) bool {
	if len(a.Operands) != 2 || len(b.Operands) != 2 {
		return false
	}
	if a.Operands[0].Kind != ir.OperandRegister || a.Operands[1].Kind != ir.OperandRegister {
		return false
	}
	if b.Operands[0].Kind != ir.OperandRegister || b.Operands[1].Kind != ir.OperandRegister {
		return false
	}
	return a.Operands[0].Register == b.Operands[1].Register && a.Operands[1].Register == b.Operands[0].Register
}
