package driver

import (
	"fmt"
	"strings"

	"github.com/LowLevelDaniel/COIL/internal/ir"
	"github.com/LowLevelDaniel/COIL/internal/types"
)

// Dump renders mod as indented text, for --dump-ast and --dump-ir: the
// module name, each global's name, type and const/extern markers, each
// function's signature, blocks and instructions (opcode, destination,
// operands, result name). Relocations, target requirements, the build ID,
// instruction flags, global initializers and the type registry are not
// printed. Unlike asmprint.Print (C11, a pure x86-lowerable subset),
// Dump covers every opcode and operand kind so it stays useful for
// debugging instructions codegen doesn't support yet.
func Dump(mod *ir.Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "module %q\n", mod.Name)

	for _, g := range mod.Globals {
		fmt.Fprintf(&b, "global %s: %s", g.Name, typeName(g.Type))
		if g.IsConstant {
			b.WriteString(" const")
		}
		if g.IsExternal {
			b.WriteString(" extern")
		}
		b.WriteString("\n")
	}

	for _, f := range mod.Functions {
		dumpFunction(&b, f)
	}

	return b.String()
}

func dumpFunction(b *strings.Builder, f *ir.Function) {
	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = fmt.Sprintf("%s: %s", p.Name, typeName(p.Type))
	}
	fmt.Fprintf(b, "function %s(%s) -> %s", f.Name, strings.Join(params, ", "), typeName(f.ReturnType))
	if f.IsExternal {
		b.WriteString(" extern\n")
		return
	}
	b.WriteString("\n")

	for _, block := range f.Blocks {
		fmt.Fprintf(b, "  %s:\n", block.Name)
		for _, inst := range block.Instructions {
			dumpInstruction(b, inst)
		}
	}
}

func dumpInstruction(b *strings.Builder, inst *ir.Instruction) {
	b.WriteString("    ")
	if inst.HasDest {
		fmt.Fprintf(b, "%s = ", dumpOperand(inst.Destination))
	}
	fmt.Fprintf(b, "%s", inst.Opcode)
	for _, op := range inst.Operands {
		fmt.Fprintf(b, " %s", dumpOperand(op))
	}
	if inst.ResultName != "" {
		fmt.Fprintf(b, " ; %s", inst.ResultName)
	}
	b.WriteString("\n")
}

func dumpOperand(op ir.Operand) string {
	switch op.Kind {
	case ir.OperandRegister:
		return fmt.Sprintf("%%%d", op.Register)
	case ir.OperandImmediate:
		return fmt.Sprintf("%d", op.Immediate)
	case ir.OperandBasicBlockRef:
		return fmt.Sprintf("@%s", op.Name)
	case ir.OperandFunctionRef, ir.OperandGlobalRef:
		return fmt.Sprintf("$%s", op.Name)
	case ir.OperandMemory:
		if op.Mem.IndexReg != 0 {
			return fmt.Sprintf("[%%%d + %%%d*%d + %d]", op.Mem.BaseReg, op.Mem.IndexReg, op.Mem.Scale, op.Mem.Offset)
		}
		return fmt.Sprintf("[%%%d + %d]", op.Mem.BaseReg, op.Mem.Offset)
	default:
		return "?"
	}
}

func typeName(t types.Type) string {
	if t.Category() == types.Void {
		return "void"
	}
	return fmt.Sprintf("%s%d", t.Category(), t.Width())
}
