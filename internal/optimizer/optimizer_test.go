package optimizer

import (
	"testing"

	"github.com/LowLevelDaniel/COIL/internal/diag"
	"github.com/LowLevelDaniel/COIL/internal/ir"
	"github.com/LowLevelDaniel/COIL/internal/types"
)

func buildFunc(regCount uint32, instrs ...*ir.Instruction) *ir.Function {
	f := ir.NewFunction("f", types.VoidType, nil, false, false)
	f.RegisterCount = regCount
	entry := ir.NewBasicBlock(ir.EntryBlockName)
	for _, inst := range instrs {
		entry.Append(inst)
	}
	f.AddBlock(entry)
	return f
}

func TestNoneLevelIsIdentity(t *testing.T) {
	mov1 := ir.NewInstruction(ir.OpMov, ir.NewRegister(0, types.I32), ir.NewRegister(1, types.I32))
	mov2 := ir.NewInstruction(ir.OpMov, ir.NewRegister(1, types.I32), ir.NewRegister(0, types.I32))
	ret := ir.NewInstruction(ir.OpRet)
	f := buildFunc(2, mov1, mov2, ret)
	mod := ir.New("m")
	mod.AddFunction(f)

	New().Run(mod, 16, diag.NewSink(), "t.hoil")

	if f.Blocks[0].Instructions[1].Opcode != ir.OpMov {
		t.Errorf("LevelNone rewrote an instruction; want identity pass")
	}
}

func TestBasicLevelRewritesReverseMov(t *testing.T) {
	mov1 := ir.NewInstruction(ir.OpMov, ir.NewRegister(0, types.I32), ir.NewRegister(1, types.I32))
	mov2 := ir.NewInstruction(ir.OpMov, ir.NewRegister(1, types.I32), ir.NewRegister(0, types.I32))
	ret := ir.NewInstruction(ir.OpRet)
	f := buildFunc(2, mov1, mov2, ret)
	mod := ir.New("m")
	mod.AddFunction(f)

	o := New()
	o.SetLevel(LevelBasic)
	o.Run(mod, 16, diag.NewSink(), "t.hoil")

	if f.Blocks[0].Instructions[0].Opcode != ir.OpMov {
		t.Errorf("first MOV should be left alone, got %v", f.Blocks[0].Instructions[0].Opcode)
	}
	if f.Blocks[0].Instructions[1].Opcode != ir.OpNop {
		t.Errorf("second MOV should become NOP, got %v", f.Blocks[0].Instructions[1].Opcode)
	}
	if len(f.Blocks[0].Instructions) != 3 {
		t.Errorf("instruction count changed: got %d, want 3", len(f.Blocks[0].Instructions))
	}
}

func TestBasicLevelRewritesAddZero(t *testing.T) {
	add := ir.NewInstructionWithDest(ir.OpAdd, ir.NewRegister(0, types.I32), types.I32,
		ir.NewRegister(0, types.I32), ir.NewImmediate(0, types.I32))
	ret := ir.NewInstruction(ir.OpRet)
	f := buildFunc(1, add, ret)
	mod := ir.New("m")
	mod.AddFunction(f)

	o := New()
	o.SetLevel(LevelBasic)
	o.Run(mod, 16, diag.NewSink(), "t.hoil")

	if f.Blocks[0].Instructions[0].Opcode != ir.OpNop {
		t.Errorf("ADD r, 0 should become NOP, got %v", f.Blocks[0].Instructions[0].Opcode)
	}
}

func TestAddZeroWithDifferentDestIsNotRewritten(t *testing.T) {
	// dest (%1) differs from first source (%0): not the `dest == first
	// source` shape the rule requires, so this ADD must survive untouched.
	add := ir.NewInstructionWithDest(ir.OpAdd, ir.NewRegister(1, types.I32), types.I32,
		ir.NewRegister(0, types.I32), ir.NewImmediate(0, types.I32))
	ret := ir.NewInstruction(ir.OpRet)
	f := buildFunc(2, add, ret)
	mod := ir.New("m")
	mod.AddFunction(f)

	o := New()
	o.SetLevel(LevelBasic)
	o.Run(mod, 16, diag.NewSink(), "t.hoil")

	if f.Blocks[0].Instructions[0].Opcode != ir.OpAdd {
		t.Errorf("ADD with mismatched dest should be left alone, got %v", f.Blocks[0].Instructions[0].Opcode)
	}
}

func TestVolatileReverseMovIsNotRewritten(t *testing.T) {
	mov1 := ir.NewInstruction(ir.OpMov, ir.NewRegister(0, types.I32), ir.NewRegister(1, types.I32))
	mov1.Flags = ir.FlagVolatile
	mov2 := ir.NewInstruction(ir.OpMov, ir.NewRegister(1, types.I32), ir.NewRegister(0, types.I32))
	ret := ir.NewInstruction(ir.OpRet)
	f := buildFunc(2, mov1, mov2, ret)
	mod := ir.New("m")
	mod.AddFunction(f)

	o := New()
	o.SetLevel(LevelBasic)
	o.Run(mod, 16, diag.NewSink(), "t.hoil")

	if f.Blocks[0].Instructions[1].Opcode != ir.OpMov {
		t.Errorf("second MOV should survive when the first is volatile, got %v", f.Blocks[0].Instructions[1].Opcode)
	}
}

func TestVolatileAddZeroIsNotRewritten(t *testing.T) {
	add := ir.NewInstructionWithDest(ir.OpAdd, ir.NewRegister(0, types.I32), types.I32,
		ir.NewRegister(0, types.I32), ir.NewImmediate(0, types.I32))
	add.Flags = ir.FlagVolatile
	ret := ir.NewInstruction(ir.OpRet)
	f := buildFunc(1, add, ret)
	mod := ir.New("m")
	mod.AddFunction(f)

	o := New()
	o.SetLevel(LevelBasic)
	o.Run(mod, 16, diag.NewSink(), "t.hoil")

	if f.Blocks[0].Instructions[0].Opcode != ir.OpAdd {
		t.Errorf("volatile ADD r, 0 should survive, got %v", f.Blocks[0].Instructions[0].Opcode)
	}
}

func TestNormalLevelFlagsRegisterOverflow(t *testing.T) {
	f := buildFunc(20, ir.NewInstruction(ir.OpRet))
	mod := ir.New("m")
	mod.AddFunction(f)

	var codes []int
	sink := diag.NewSink()
	sink.RegisterCallback(func(d *diag.Diagnostic) { codes = append(codes, d.Code) })

	o := New()
	o.SetLevel(LevelNormal)
	o.Run(mod, 16, sink, "t.hoil")

	if len(codes) != 1 || codes[0] != diag.ErrAssemblerBadMapping {
		t.Errorf("codes = %v, want [ErrAssemblerBadMapping]", codes)
	}
}

func TestBasicLevelDoesNotCheckRegisterFeasibility(t *testing.T) {
	f := buildFunc(20, ir.NewInstruction(ir.OpRet))
	mod := ir.New("m")
	mod.AddFunction(f)

	sink := diag.NewSink()
	o := New()
	o.SetLevel(LevelBasic)
	o.Run(mod, 16, sink, "t.hoil")

	if sink.HadErrors() {
		t.Errorf("LevelBasic should not run the register-feasibility check")
	}
}

func TestOptimizerNeverChangesBlockCountOrTerminator(t *testing.T) {
	mov1 := ir.NewInstruction(ir.OpMov, ir.NewRegister(0, types.I32), ir.NewRegister(1, types.I32))
	mov2 := ir.NewInstruction(ir.OpMov, ir.NewRegister(1, types.I32), ir.NewRegister(0, types.I32))
	ret := ir.NewInstruction(ir.OpRet)
	f := buildFunc(2, mov1, mov2, ret)
	mod := ir.New("m")
	mod.AddFunction(f)

	o := New()
	o.SetLevel(LevelAggressive)
	o.Run(mod, 16, diag.NewSink(), "t.hoil")

	if len(f.Blocks) != 1 {
		t.Fatalf("block count changed: got %d, want 1", len(f.Blocks))
	}
	if !f.Blocks[0].Terminator().IsTerminator() {
		t.Errorf("block no longer ends in a terminator")
	}
	if len(f.Blocks[0].Instructions) != 3 {
		t.Errorf("instruction count changed: got %d, want 3", len(f.Blocks[0].Instructions))
	}
}
