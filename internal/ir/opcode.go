package ir

// Opcode identifies an instruction's operation. Opcodes are grouped by
// family (arithmetic, bitwise, comparison, memory, control-flow,
// conversion, vector, literal-load, special) per spec.md §3.7. Values
// reproduce `original_source/src/common/instruction.h`'s `opcode_t` byte
// layout exactly wherever that header defines a matching opcode, so
// `internal/binary`'s one-byte opcode field matches what a real COIL
// consumer built against the C header would expect. A handful of opcodes
// this IR needs have no literal counterpart there (the header models
// sign/zero extension as a single flag-qualified OPCODE_EXTEND, has no
// bitcast or bool-constant-load opcode, and has no IR-level register-move
// opcode at all — MOV only ever appears as x86 text in spec.md's own
// optimizer/translator rules); those take free slots within their
// opcode's family range, called out below.
type Opcode uint8

const (
	// Special (0xF0-0xF3). 0xF0 (HLT) has no IR-level equivalent here.
	OpNop         Opcode = 0xF1
	OpTrap        Opcode = 0xF2
	OpUnreachable Opcode = 0xF3

	// Arithmetic (0x01-0x0A). ABS/MIN/MAX/FMA (0x07-0x0A) are not modeled.
	OpAdd Opcode = 0x01
	OpSub Opcode = 0x02
	OpMul Opcode = 0x03
	OpDiv Opcode = 0x04
	OpMod Opcode = 0x05 // OPCODE_REM
	OpNeg Opcode = 0x06

	// Bitwise (0x10-0x15).
	OpAnd Opcode = 0x10
	OpOr  Opcode = 0x11
	OpXor Opcode = 0x12
	OpNot Opcode = 0x13
	OpShl Opcode = 0x14
	OpShr Opcode = 0x15

	// Comparison (0x20-0x25).
	OpCmpEq Opcode = 0x20
	OpCmpNe Opcode = 0x21
	OpCmpLt Opcode = 0x22
	OpCmpLe Opcode = 0x23
	OpCmpGt Opcode = 0x24
	OpCmpGe Opcode = 0x25

	// Memory (0x30-0x34 defined by the header; ATOMIC_OP/FENCE/LEA are not
	// modeled). OpMov has no header counterpart; 0x35 is free in this
	// family's range.
	OpLoad  Opcode = 0x30
	OpStore Opcode = 0x31
	OpMov   Opcode = 0x35

	// Control flow (0x40-0x43).
	OpBr     Opcode = 0x40
	OpSwitch Opcode = 0x41
	OpCall   Opcode = 0x42
	OpRet    Opcode = 0x43

	// Conversion (0x50-0x52 defined by the header as CONVERT/TRUNC/EXTEND).
	// OpBitcast takes CONVERT's slot (the closest match: an opaque
	// reinterpretation, not an arithmetic narrowing/widening). OpSExt takes
	// EXTEND's slot; OpZExt has no header counterpart (the header
	// distinguishes sign/zero extension via FLAG_SIGNED/FLAG_UNSIGNED on
	// the same opcode instead of a second opcode) so it takes the free
	// 0x53 slot in this family's range.
	OpBitcast Opcode = 0x50
	OpTrunc   Opcode = 0x51
	OpSExt    Opcode = 0x52
	OpZExt    Opcode = 0x53

	// Vector (0x60-0x68 defined by the header; VADD/VSUB/VMUL/VDIV/VDOT/
	// VCROSS/VSPLAT, 0x60-0x66, are not modeled).
	OpVecExtract Opcode = 0x67
	OpVecInsert  Opcode = 0x68

	// Literal load (0x70-0x76 defined by the header; LOAD_I8/LOAD_I16/UNDEF
	// are not modeled). OpLoadBool has no header counterpart; 0x77 is free
	// in this family's range.
	OpLoadI32  Opcode = 0x72
	OpLoadI64  Opcode = 0x73
	OpLoadF32  Opcode = 0x74
	OpLoadF64  Opcode = 0x75
	OpLoadBool Opcode = 0x77
)

var opcodeNames = map[Opcode]string{
	OpNop:         "nop",
	OpTrap:        "trap",
	OpUnreachable: "unreachable",
	OpAdd:         "add",
	OpSub:         "sub",
	OpMul:         "mul",
	OpDiv:         "div",
	OpMod:         "mod",
	OpNeg:         "neg",
	OpAnd:         "and",
	OpOr:          "or",
	OpXor:         "xor",
	OpNot:         "not",
	OpShl:         "shl",
	OpShr:         "shr",
	OpCmpEq:       "cmp_eq",
	OpCmpNe:       "cmp_ne",
	OpCmpLt:       "cmp_lt",
	OpCmpLe:       "cmp_le",
	OpCmpGt:       "cmp_gt",
	OpCmpGe:       "cmp_ge",
	OpLoad:        "load",
	OpStore:       "store",
	OpMov:         "mov",
	OpLoadI32:     "load_i32",
	OpLoadI64:     "load_i64",
	OpLoadF32:     "load_f32",
	OpLoadF64:     "load_f64",
	OpLoadBool:    "load_bool",
	OpBr:          "br",
	OpSwitch:      "switch",
	OpRet:         "ret",
	OpCall:        "call",
	OpSExt:        "sext",
	OpZExt:        "zext",
	OpTrunc:       "trunc",
	OpBitcast:     "bitcast",
	OpVecExtract:  "vec_extract",
	OpVecInsert:   "vec_insert",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "unknown"
}

// IsTerminator reports whether op may legally end a basic block (spec.md
// §3.6, invariant F3).
func (op Opcode) IsTerminator() bool {
	switch op {
	case OpBr, OpSwitch, OpRet:
		return true
	default:
		return false
	}
}

// Arity describes the expected operand-count shape for an opcode: fixed
// arities are exact counts, variable arities (call, switch, branch, ret)
// are ranges; the semantic analyzer additionally rejects a two-operand
// branch and a call whose first operand is not a function reference.
type Arity struct {
	Min, Max int // Max < 0 means unbounded.
}

// ExpectedArity returns the operand-count contract for op, per spec.md
// §3.7 ("each opcode has an expected arity (fixed 0-3 or variable for
// call/switch/branch/return)").
func ExpectedArity(op Opcode) Arity {
	switch op {
	case OpNop, OpTrap, OpUnreachable:
		return Arity{0, 0}
	case OpNeg, OpNot, OpLoad, OpLoadI32, OpLoadI64, OpLoadF32, OpLoadF64, OpLoadBool,
		OpSExt, OpZExt, OpTrunc, OpBitcast:
		return Arity{1, 1}
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpAnd, OpOr, OpXor, OpShl, OpShr,
		OpCmpEq, OpCmpNe, OpCmpLt, OpCmpLe, OpCmpGt, OpCmpGe, OpStore, OpMov, OpVecExtract, OpVecInsert:
		return Arity{2, 2}
	case OpBr:
		return Arity{1, 3}
	case OpRet:
		return Arity{0, 1}
	case OpSwitch:
		return Arity{1, -1}
	case OpCall:
		return Arity{1, -1}
	default:
		return Arity{0, -1}
	}
}
