package ir

import "github.com/LowLevelDaniel/COIL/internal/types"

// OperandKind discriminates the tagged union described in spec.md §3.8.
// Exactly one variant is populated per Operand.
type OperandKind uint8

const (
	OperandRegister OperandKind = iota
	OperandImmediate
	OperandBasicBlockRef
	OperandFunctionRef
	OperandGlobalRef
	OperandMemory
)

func (k OperandKind) String() string {
	switch k {
	case OperandRegister:
		return "register"
	case OperandImmediate:
		return "immediate"
	case OperandBasicBlockRef:
		return "block_ref"
	case OperandFunctionRef:
		return "function_ref"
	case OperandGlobalRef:
		return "global_ref"
	case OperandMemory:
		return "memory"
	default:
		return "unknown"
	}
}

// Memory is the payload of an OperandMemory operand: spec.md §3.8.
type Memory struct {
	BaseReg  uint16
	Offset   int32
	IndexReg uint16 // 0 = none
	Scale    uint8  // one of 1, 2, 4, 8
	RefType  types.Type
}

// Operand is a tagged value; Kind selects which field is meaningful. The
// struct carries every variant's fields rather than an interface so that
// copying an Operand deep-copies its (small, embedded) string payload by
// value, per spec.md §9 "Operand ownership".
type Operand struct {
	Kind OperandKind

	// OperandRegister.
	Register uint32
	RegType  types.Type

	// OperandImmediate.
	Immediate     int64
	ImmediateType types.Type

	// OperandBasicBlockRef / OperandFunctionRef / OperandGlobalRef.
	Name string
	Ref  types.Type // type of the referenced function/global; unused for blocks

	// OperandMemory.
	Mem Memory
}

// NewRegister builds a register operand.
func NewRegister(index uint32, t types.Type) Operand {
	return Operand{Kind: OperandRegister, Register: index, RegType: t}
}

// NewImmediate builds an immediate operand.
func NewImmediate(value int64, t types.Type) Operand {
	return Operand{Kind: OperandImmediate, Immediate: value, ImmediateType: t}
}

// NewBlockRef builds a basic-block reference operand.
func NewBlockRef(name string) Operand {
	return Operand{Kind: OperandBasicBlockRef, Name: name}
}

// NewFunctionRef builds a function reference operand.
func NewFunctionRef(name string, t types.Type) Operand {
	return Operand{Kind: OperandFunctionRef, Name: name, Ref: t}
}

// NewGlobalRef builds a global reference operand.
func NewGlobalRef(name string, t types.Type) Operand {
	return Operand{Kind: OperandGlobalRef, Name: name, Ref: t}
}

// NewMemory builds a memory operand.
func NewMemory(m Memory) Operand {
	return Operand{Kind: OperandMemory, Mem: m}
}
