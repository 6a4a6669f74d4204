package binary

import (
	"golang.org/x/crypto/cryptobyte"

	"github.com/LowLevelDaniel/COIL/internal/ir"
	"github.com/LowLevelDaniel/COIL/internal/types"
)

// encodeOperand writes one operand per the variable-length record shape in
// spec.md §4.7: register, immediate and name-index fields are widened to 4
// or 8 bytes, the memory record uses 2-byte register numbers, a 4-byte
// offset, a 1-byte scale and a 4-byte type, and name fields are resolved through the module's name table instead of the
// placeholder behavior the source spec left open (see Open Question #1).
func encodeOperand(b *cryptobyte.Builder, names *nameTable, op ir.Operand) {
	b.AddUint8(uint8(op.Kind))
	switch op.Kind {
	case ir.OperandRegister:
		leU32(b, op.Register)
		leU32(b, uint32(op.RegType))
	case ir.OperandImmediate:
		leI64(b, op.Immediate)
		leU32(b, uint32(op.ImmediateType))
	case ir.OperandBasicBlockRef:
		leU32(b, names.intern(op.Name))
	case ir.OperandFunctionRef, ir.OperandGlobalRef:
		leU32(b, names.intern(op.Name))
		leU32(b, uint32(op.Ref))
	case ir.OperandMemory:
		leU16(b, op.Mem.BaseReg)
		leI32(b, op.Mem.Offset)
		leU16(b, op.Mem.IndexReg)
		b.AddUint8(op.Mem.Scale)
		leU32(b, uint32(op.Mem.RefType))
	}
}

func decodeOperand(s *cryptobyte.String, names *nameTableReader) (ir.Operand, bool) {
	var kindByte uint8
	if !s.ReadUint8(&kindByte) {
		return ir.Operand{}, false
	}
	kind := ir.OperandKind(kindByte)
	switch kind {
	case ir.OperandRegister:
		var reg, typ uint32
		if !readU32(s, &reg) || !readU32(s, &typ) {
			return ir.Operand{}, false
		}
		return ir.NewRegister(reg, types.Type(typ)), true
	case ir.OperandImmediate:
		var val int64
		var typ uint32
		if !readI64(s, &val) || !readU32(s, &typ) {
			return ir.Operand{}, false
		}
		return ir.NewImmediate(val, types.Type(typ)), true
	case ir.OperandBasicBlockRef:
		var idx uint32
		if !readU32(s, &idx) {
			return ir.Operand{}, false
		}
		return ir.NewBlockRef(names.at(idx)), true
	case ir.OperandFunctionRef, ir.OperandGlobalRef:
		var idx, typ uint32
		if !readU32(s, &idx) || !readU32(s, &typ) {
			return ir.Operand{}, false
		}
		if kind == ir.OperandFunctionRef {
			return ir.NewFunctionRef(names.at(idx), types.Type(typ)), true
		}
		return ir.NewGlobalRef(names.at(idx), types.Type(typ)), true
	case ir.OperandMemory:
		var base, index uint16
		var offset int32
		var scale uint8
		var refType uint32
		if !readU16(s, &base) || !readI32(s, &offset) || !readU16(s, &index) || !s.ReadUint8(&scale) || !readU32(s, &refType) {
			return ir.Operand{}, false
		}
		return ir.NewMemory(ir.Memory{
			BaseReg:  base,
			Offset:   offset,
			IndexReg: index,
			Scale:    scale,
			RefType:  types.Type(refType),
		}), true
	default:
		return ir.Operand{}, false
	}
}

// encodeInstruction writes one instruction record: opcode, flags,
// destination (if any), and the operand list, per spec.md §4.7's shape.
func encodeInstruction(b *cryptobyte.Builder, names *nameTable, inst *ir.Instruction) {
	b.AddUint8(uint8(inst.Opcode))
	b.AddUint8(uint8(inst.Flags))
	if inst.HasDest {
		b.AddUint8(1)
		encodeOperand(b, names, inst.Destination)
		leU32(b, uint32(inst.ResultType))
		leU32(b, names.intern(inst.ResultName))
	} else {
		b.AddUint8(0)
	}
	leU32(b, uint32(len(inst.Operands)))
	for _, op := range inst.Operands {
		encodeOperand(b, names, op)
	}
}

func decodeInstruction(s *cryptobyte.String, names *nameTableReader) (*ir.Instruction, bool) {
	var opcodeByte, flagsByte, hasDest uint8
	if !s.ReadUint8(&opcodeByte) || !s.ReadUint8(&flagsByte) || !s.ReadUint8(&hasDest) {
		return nil, false
	}
	inst := &ir.Instruction{Opcode: ir.Opcode(opcodeByte), Flags: ir.InstructionFlags(flagsByte)}
	if hasDest != 0 {
		dest, ok := decodeOperand(s, names)
		if !ok {
			return nil, false
		}
		var resultType, resultNameIdx uint32
		if !readU32(s, &resultType) || !readU32(s, &resultNameIdx) {
			return nil, false
		}
		inst.Destination = dest
		inst.HasDest = true
		inst.ResultType = types.Type(resultType)
		inst.ResultName = names.at(resultNameIdx)
	}
	var operandCount uint32
	if !readU32(s, &operandCount) {
		return nil, false
	}
	inst.Operands = make([]ir.Operand, 0, operandCount)
	for i := uint32(0); i < operandCount; i++ {
		op, ok := decodeOperand(s, names)
		if !ok {
			return nil, false
		}
		inst.Operands = append(inst.Operands, op)
	}
	return inst, true
}
