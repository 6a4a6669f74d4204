// Package semantic implements the HOIL/COIL semantic analyzer (C6):
// module-global and function-local symbol tables, and the four
// validation passes described in spec.md §4.6.
package semantic

import (
	"fmt"

	"github.com/LowLevelDaniel/COIL/internal/diag"
	"github.com/LowLevelDaniel/COIL/internal/ir"
)

// symbolTable is a flat name set — HOIL has no nested scopes within a
// function body beyond the function itself (spec.md §4.6).
type symbolTable struct {
	names map[string]bool
}

func newSymbolTable() *symbolTable {
	return &symbolTable{names: make(map[string]bool)}
}

// declare records name, returning false if it was already present.
func (s *symbolTable) declare(name string) bool {
	if s.names[name] {
		return false
	}
	s.names[name] = true
	return true
}

func (s *symbolTable) has(name string) bool { return s.names[name] }

// Analyzer runs the four validation passes over a module, reporting
// through a diagnostic sink.
type Analyzer struct {
	sink *diag.Sink
	file string
}

// New returns an analyzer that attributes diagnostics to file.
func New(sink *diag.Sink, file string) *Analyzer {
	return &Analyzer{sink: sink, file: file}
}

// Analyze validates mod in place. It never mutates the module; callers
// consult the sink's HadErrors/ErrorCount to decide whether to proceed.
func (a *Analyzer) Analyze(mod *ir.Module) {
	moduleScope := newSymbolTable()

	// Pass 1: globals.
	for _, g := range mod.Globals {
		if !moduleScope.declare(g.Name) {
			a.report(diag.ErrSemanticRedefined, "global %q redefined", g.Name)
		}
	}

	// Passes 2-4: one function at a time; a failure aborts only that
	// function (spec.md §4.6, "on first error in a function, analysis of
	// that function aborts; remaining functions are still analyzed").
	for _, f := range mod.Functions {
		a.analyzeFunction(mod, moduleScope, f)
	}
}

func (a *Analyzer) analyzeFunction(mod *ir.Module, moduleScope *symbolTable, f *ir.Function) {
	if !moduleScope.declare(f.Name) {
		a.report(diag.ErrSemanticRedefined, "function %q redefined", f.Name)
		return
	}

	local := newSymbolTable()
	for _, p := range f.Parameters {
		if !local.declare(p.Name) {
			a.report(diag.ErrSemanticRedefined, "parameter %q redefined in function %q", p.Name, f.Name)
			return
		}
	}

	if !f.IsExternal && f.EntryBlock() == nil {
		a.report(diag.ErrSemanticInvalidControl, "function %q has no %s block", f.Name, ir.EntryBlockName)
		return
	}

	for _, b := range f.Blocks {
		if !local.declare(b.Name) {
			a.report(diag.ErrSemanticRedefined, "block %q redefined in function %q", b.Name, f.Name)
			return
		}
	}

	for _, b := range f.Blocks {
		if len(b.Instructions) == 0 {
			a.report(diag.ErrSemanticInvalidControl, "block %q in function %q has no instructions", b.Name, f.Name)
			return
		}
		if !b.Terminator().IsTerminator() {
			a.report(diag.ErrSemanticInvalidControl, "block %q in function %q does not end in a terminator", b.Name, f.Name)
			return
		}
	}

	for _, b := range f.Blocks {
		for _, inst := range b.Instructions {
			if !a.validateInstruction(mod, f, local, inst) {
				return
			}
		}
	}
}

func (a *Analyzer) validateInstruction(mod *ir.Module, f *ir.Function, local *symbolTable, inst *ir.Instruction) bool {
	arity := ir.ExpectedArity(inst.Opcode)
	n := len(inst.Operands)
	if n < arity.Min || (arity.Max >= 0 && n > arity.Max) {
		a.report(diag.ErrSemanticBadArity, "%s expects %s, got %d operand(s)", inst.Opcode, arityString(arity), n)
		return false
	}

	if inst.Opcode == ir.OpBr && n == 2 {
		a.report(diag.ErrSemanticBadArity, "br expects 1 or 3 operand(s), got %d operand(s)", n)
		return false
	}

	if inst.Opcode == ir.OpCall && (n == 0 || inst.Operands[0].Kind != ir.OperandFunctionRef) {
		a.report(diag.ErrSemanticBadArity, "call's first operand must be a function reference")
		return false
	}

	if inst.HasDest && !a.checkOperand(mod, f, local, inst.Destination) {
		return false
	}
	for _, op := range inst.Operands {
		if !a.checkOperand(mod, f, local, op) {
			return false
		}
	}
	return true
}

func (a *Analyzer) checkOperand(mod *ir.Module, f *ir.Function, local *symbolTable, op ir.Operand) bool {
	switch op.Kind {
	case ir.OperandRegister:
		if op.Register >= f.RegisterCount {
			a.report(diag.ErrSemanticInvalidOperand, "register %%%d out of range (function has %d registers)", op.Register, f.RegisterCount)
			return false
		}
	case ir.OperandBasicBlockRef:
		if !local.has(op.Name) {
			a.report(diag.ErrSemanticUndefined, "undefined block %q", op.Name)
			return false
		}
	case ir.OperandFunctionRef:
		if mod.Function(op.Name) == nil {
			a.report(diag.ErrSemanticUndefined, "undefined function %q", op.Name)
			return false
		}
	case ir.OperandGlobalRef:
		if mod.Global(op.Name) == nil {
			a.report(diag.ErrSemanticUndefined, "undefined global %q", op.Name)
			return false
		}
	case ir.OperandMemory:
		if op.Mem.BaseReg >= uint16(f.RegisterCount) {
			a.report(diag.ErrSemanticInvalidOperand, "memory base register %%%d out of range", op.Mem.BaseReg)
			return false
		}
		if op.Mem.IndexReg != 0 && op.Mem.IndexReg >= uint16(f.RegisterCount) {
			a.report(diag.ErrSemanticInvalidOperand, "memory index register %%%d out of range", op.Mem.IndexReg)
			return false
		}
	case ir.OperandImmediate:
		// Immediates carry no referenceable name or register index.
	}
	return true
}

func arityString(a ir.Arity) string {
	if a.Max < 0 {
		return fmt.Sprintf("at least %d operand(s)", a.Min)
	}
	if a.Min == a.Max {
		return fmt.Sprintf("%d operand(s)", a.Min)
	}
	return fmt.Sprintf("%d to %d operand(s)", a.Min, a.Max)
}

func (a *Analyzer) report(code int, format string, args ...interface{}) {
	a.sink.Report(diag.Error, diag.Semantic, code, fmt.Sprintf(format, args...), diag.Location{File: a.file})
}
