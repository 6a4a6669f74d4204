// Package asmprint renders a module as AT&T-syntax text for inspection and
// tests (C11). Print is a pure function of the module — it has no
// diagnostic sink and cannot fail. It covers only the opcode subset C9
// lowers to x86-64; anything else renders as a comment so the rest of the
// function is still readable (spec.md §4.11).
package asmprint

import (
	"fmt"
	"strings"

	"github.com/LowLevelDaniel/COIL/internal/ir"
)

// Print renders every function in mod, in declaration order; an external
// function is rendered as its label followed by a `# extern` line.
func Print(mod *ir.Module) string {
	var b strings.Builder
	for i, f := range mod.Functions {
		if i > 0 {
			b.WriteString("\n")
		}
		printFunction(&b, f)
	}
	return b.String()
}

func printFunction(b *strings.Builder, f *ir.Function) {
	fmt.Fprintf(b, "%s:\n", f.Name)
	if f.IsExternal {
		b.WriteString("  # extern\n")
		return
	}
	for _, block := range f.Blocks {
		fmt.Fprintf(b, "%s:\n", block.Name)
		for _, inst := range block.Instructions {
			b.WriteString("    ")
			printInstruction(b, inst)
			b.WriteString("\n")
		}
	}
}

func printInstruction(b *strings.Builder, inst *ir.Instruction) {
	switch inst.Opcode {
	case ir.OpLoadI32:
		fmt.Fprintf(b, "movl $%d, %s", inst.Operands[0].Immediate, reg(inst.Destination))
	case ir.OpAdd:
		printAddSub(b, inst, "addl")
	case ir.OpSub:
		printAddSub(b, inst, "subl")
	case ir.OpRet:
		b.WriteString("ret")
	default:
		fmt.Fprintf(b, "# %s (not implemented)", inst.Opcode)
	}
}

// printAddSub renders `dst = OP s1, s2` as AT&T text: a mov is emitted
// first whenever dst differs from s1, mirroring C9's lowering exactly so
// the printed text matches the bytes C9 would produce.
func printAddSub(b *strings.Builder, inst *ir.Instruction, mnemonic string) {
	dst, s1, s2 := inst.Destination, inst.Operands[0], inst.Operands[1]
	if dst.Register != s1.Register {
		fmt.Fprintf(b, "movl %s, %s\n    ", reg(s1), reg(dst))
	}
	fmt.Fprintf(b, "%s %s, %s", mnemonic, reg(s2), reg(dst))
}

// reg renders a register operand as a virtual-register name; C11 is a
// pure function of the IR and never consults C9's physical assignment.
func reg(op ir.Operand) string {
	return fmt.Sprintf("%%r%d", op.Register)
}
