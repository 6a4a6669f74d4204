// Package x86 lowers IR (after C6 and, optionally, C8) to a contiguous
// x86-64 byte buffer (C9). The register allocator is round-robin over the
// 16 general-purpose registers starting at RAX — enough for small test
// programs, not real codegen (spec.md §4.9).
package x86

import (
	"encoding/binary"
	"fmt"

	"github.com/LowLevelDaniel/COIL/internal/diag"
	"github.com/LowLevelDaniel/COIL/internal/ir"
)

// Physical GPR encodings, in round-robin assignment order starting at RAX.
const (
	rax = iota
	rcx
	rdx
	rbx
	rsp
	rbp
	rsi
	rdi
	r8
	r9
	r10
	r11
	r12
	r13
	r14
	r15
	gprCount
)

// FunctionCode is one function's emitted bytes and its offset within the
// module's combined buffer.
type FunctionCode struct {
	Name   string
	Offset int
	Code   []byte
}

// Translator lowers a module to machine bytes. The zero value is ready to
// use.
type Translator struct{}

// New returns a Translator.
func New() *Translator { return &Translator{} }

// Translate emits a contiguous buffer holding every non-external function's
// code, in declaration order, and reports ERROR_CODEGEN_UNSUPPORTED for any
// opcode outside the minimal lowering table (spec.md §4.9). An unsupported
// opcode is non-fatal to the module but makes Translate report ok=false;
// translation of later functions still proceeds so the sink collects every
// failure in one pass (spec.md §7's recoverable propagation policy).
func (t *Translator) Translate(mod *ir.Module, sink *diag.Sink, file string) ([]byte, []FunctionCode, bool) {
	var buf []byte
	var funcs []FunctionCode
	ok := true

	for _, f := range mod.Functions {
		if f.IsExternal {
			continue
		}
		code, funcOK := t.translateFunction(f, sink, file)
		if !funcOK {
			ok = false
		}
		funcs = append(funcs, FunctionCode{Name: f.Name, Offset: len(buf), Code: code})
		buf = append(buf, code...)
	}

	return buf, funcs, ok
}

// translateFunction lowers one function per spec.md §4.9's four steps. A
// function whose last instruction carries FlagTailCall never reaches the
// synthesized epilogue: a tail call transfers control to the callee, which
// returns directly to this function's own caller, so this frame's epilogue
// would never execute.
func (t *Translator) translateFunction(f *ir.Function, sink *diag.Sink, file string) ([]byte, bool) {
	regs := newRegisterMap()
	var code []byte
	ok := true
	tailCalled := false

	code = append(code, 0x55, 0x48, 0x89, 0xE5) // push rbp; mov rbp, rsp

	for _, b := range f.Blocks {
		for _, inst := range b.Instructions {
			tailCalled = inst.Flags.Has(ir.FlagTailCall)
			emitted, lowered := lowerInstruction(inst, regs)
			if !lowered {
				sink.Report(diag.Error, diag.Codegen, diag.ErrCodegenUnsupported,
					fmt.Sprintf("function %q: opcode %s has no x86-64 lowering", f.Name, inst.Opcode), diag.Location{File: file})
				ok = false
				continue
			}
			code = append(code, emitted...)
		}
	}

	if !tailCalled && (len(code) == 0 || code[len(code)-1] != 0xC3) {
		code = append(code, 0x5D, 0xC3) // pop rbp; ret
	}

	return code, ok
}

// registerMap assigns each virtual register the next physical GPR in
// round-robin order, the first time it is seen, and remembers the mapping
// for the lifetime of the function (spec.md §4.9).
type registerMap struct {
	next  int
	phys  map[uint32]uint8
}

func newRegisterMap() *registerMap {
	return &registerMap{phys: make(map[uint32]uint8)}
}

func (r *registerMap) assign(v uint32) uint8 {
	if p, ok := r.phys[v]; ok {
		return p
	}
	p := uint8(r.next % gprCount)
	r.next++
	r.phys[v] = p
	return p
}

// lowerInstruction emits inst's bytes per the opcode lowering table,
// reporting (nil, false) when inst's opcode isn't in that table.
func lowerInstruction(inst *ir.Instruction, regs *registerMap) ([]byte, bool) {
	switch inst.Opcode {
	case ir.OpLoadI32:
		return lowerLoadI32(inst, regs), true
	case ir.OpAdd:
		return lowerAddSub(inst, regs, 0x01), true
	case ir.OpSub:
		return lowerAddSub(inst, regs, 0x29), true
	case ir.OpRet:
		return []byte{0xC3}, true
	default:
		return nil, false
	}
}

// lowerLoadI32 emits `REX.W / C7 / mod=11 reg=0 rm=dst / imm32`.
func lowerLoadI32(inst *ir.Instruction, regs *registerMap) []byte {
	dst := regs.assign(inst.Destination.Register)
	var imm [4]byte
	binary.LittleEndian.PutUint32(imm[:], uint32(inst.Operands[0].Immediate))
	code := []byte{rexByte(1, 0, 0, extBit(dst)), 0xC7, modrm(3, 0, dst&7)}
	return append(code, imm[:]...)
}

// lowerAddSub emits `ADD/SUB dst, s1, s2`: a MOV dst, s1 (89 /r) only when
// dst differs from s1, followed by `opcode dst, s2` (both REX.W).
func lowerAddSub(inst *ir.Instruction, regs *registerMap, opcode byte) []byte {
	dst := regs.assign(inst.Destination.Register)
	s1 := regs.assign(inst.Operands[0].Register)
	s2 := regs.assign(inst.Operands[1].Register)

	var code []byte
	if dst != s1 {
		code = append(code, emitRegReg(0x89, s1, dst)...)
	}
	code = append(code, emitRegReg(opcode, s2, dst)...)
	return code
}

// emitRegReg encodes `opcode r/m, reg` as REX.W / opcode / ModRM, matching
// the ADD/SUB/MOV shape in spec.md §4.9's lowering table: reg is the
// opcode's reg field, rm is the destination register/memory operand.
func emitRegReg(opcode byte, reg, rm uint8) []byte {
	return []byte{rexByte(1, extBit(reg), 0, extBit(rm)), opcode, modrm(3, reg&7, rm&7)}
}

// modrm packs `(mod<<6) | ((reg&7)<<3) | (rm&7)` (spec.md §4.9).
func modrm(mod, reg, rm uint8) byte {
	return (mod << 6) | ((reg & 7) << 3) | (rm & 7)
}

// rexByte packs `0x40 | (w<<3) | (r<<2) | (x<<1) | b` (spec.md §4.9). r and
// b extend the ModRM reg and rm fields to address R8-R15.
func rexByte(w, r, x, b uint8) byte {
	return 0x40 | (w << 3) | (r << 2) | (x << 1) | b
}

// extBit returns the high bit of a 4-bit physical register encoding, used
// as the REX.R/X/B extension bit.
func extBit(phys uint8) uint8 { return (phys >> 3) & 1 }
