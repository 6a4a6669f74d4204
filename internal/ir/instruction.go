package ir

import "github.com/LowLevelDaniel/COIL/internal/types"

// InstructionFlags is the bitset carried alongside an opcode, matching
// `original_source/src/common/instruction.h`'s `instruction_flag_t` values
// exactly so the binary codec's flags byte round-trips against a real COIL
// consumer (spec.md §3.7, §4.7). Most bits (signed/unsigned/exact/fast/
// inline/noinline) are carried through the IR and binary codec as opaque
// payload with no reader in this toolchain; FlagVolatile and FlagTailCall
// additionally affect the optimizer and translator respectively, below.
type InstructionFlags uint8

const (
	FlagNone     InstructionFlags = 0x00
	FlagVolatile InstructionFlags = 0x01
	FlagSigned   InstructionFlags = 0x02
	FlagUnsigned InstructionFlags = 0x04
	FlagExact    InstructionFlags = 0x08
	FlagFast     InstructionFlags = 0x10
	FlagTailCall InstructionFlags = 0x20
	FlagInline   InstructionFlags = 0x40
	FlagNoinline InstructionFlags = 0x80
)

// Has reports whether flag is set in f.
func (f InstructionFlags) Has(flag InstructionFlags) bool { return f&flag != 0 }

// Instruction is one operation inside a basic block. It exclusively owns
// its Operands slice (spec.md §4.3).
type Instruction struct {
	Opcode      Opcode
	Flags       InstructionFlags
	Destination Operand
	HasDest     bool
	Operands    []Operand
	ResultType  types.Type
	ResultName  string // optional; empty means unnamed
}

// NewInstruction builds an instruction with no destination register.
func NewInstruction(op Opcode, operands ...Operand) *Instruction {
	return &Instruction{Opcode: op, Operands: append([]Operand(nil), operands...)}
}

// NewInstructionWithDest builds an instruction that writes dest.
func NewInstructionWithDest(op Opcode, dest Operand, resultType types.Type, operands ...Operand) *Instruction {
	return &Instruction{
		Opcode:      op,
		Destination: dest,
		HasDest:     true,
		ResultType:  resultType,
		Operands:    append([]Operand(nil), operands...),
	}
}

// IsTerminator reports whether this instruction may legally end a block.
func (i *Instruction) IsTerminator() bool { return i.Opcode.IsTerminator() }

// Clone deep-copies an instruction, including its operand slice, matching
// the copy-on-assignment contract in spec.md §9.
func (i *Instruction) Clone() *Instruction {
	c := *i
	c.Operands = append([]Operand(nil), i.Operands...)
	return &c
}
