package ir

import (
	"testing"

	"github.com/LowLevelDaniel/COIL/internal/types"
)

func TestModuleFunctionLookup(t *testing.T) {
	m := New("m")
	f := NewFunction("foo", types.VoidType, nil, false, false)
	m.AddFunction(f)

	if got := m.Function("foo"); got != f {
		t.Errorf("Function(\"foo\") = %v, want %v", got, f)
	}
	if got := m.Function("missing"); got != nil {
		t.Errorf("Function(\"missing\") = %v, want nil", got)
	}
}

func TestModuleBuildIDIsUnique(t *testing.T) {
	a := New("a")
	b := New("b")
	if a.BuildID == b.BuildID {
		t.Errorf("two modules should not share a BuildID")
	}
}

func TestFunctionEntryBlock(t *testing.T) {
	f := NewFunction("f", types.VoidType, nil, false, false)
	entry := NewBasicBlock(EntryBlockName)
	entry.Append(NewInstruction(OpRet))
	f.AddBlock(entry)

	if got := f.EntryBlock(); got != entry {
		t.Errorf("EntryBlock() = %v, want %v", got, entry)
	}
	if got := f.Block("other"); got != nil {
		t.Errorf("Block(\"other\") = %v, want nil", got)
	}
}

func TestBlockTerminator(t *testing.T) {
	b := NewBasicBlock(EntryBlockName)
	if got := b.Terminator(); got != nil {
		t.Errorf("Terminator() on empty block = %v, want nil", got)
	}
	ret := NewInstruction(OpRet)
	b.Append(ret)
	if got := b.Terminator(); got != ret {
		t.Errorf("Terminator() = %v, want %v", got, ret)
	}
	if !ret.IsTerminator() {
		t.Errorf("OpRet instruction should be a terminator")
	}
}

func TestInstructionCloneDeepCopiesOperands(t *testing.T) {
	orig := NewInstructionWithDest(OpAdd, NewRegister(0, types.I32), types.I32,
		NewRegister(1, types.I32), NewImmediate(1, types.I32))
	clone := orig.Clone()

	clone.Operands[0].Register = 99
	if orig.Operands[0].Register == 99 {
		t.Errorf("Clone did not deep-copy the operand slice")
	}
}

func TestInstructionFlagsHas(t *testing.T) {
	f := FlagVolatile | FlagTailCall
	if !f.Has(FlagVolatile) {
		t.Errorf("Has(FlagVolatile) = false, want true")
	}
	if !f.Has(FlagTailCall) {
		t.Errorf("Has(FlagTailCall) = false, want true")
	}
	if f.Has(FlagInline) {
		t.Errorf("Has(FlagInline) = true, want false")
	}
	if FlagNone.Has(FlagVolatile) {
		t.Errorf("FlagNone should have no bits set")
	}
}

func TestExpectedArityMatchesSpec(t *testing.T) {
	cases := []struct {
		op       Opcode
		min, max int
	}{
		{OpNop, 0, 0},
		{OpNeg, 1, 1},
		{OpAdd, 2, 2},
		{OpRet, 0, 1},
		{OpBr, 1, 3},
	}
	for _, c := range cases {
		a := ExpectedArity(c.op)
		if a.Min != c.min || a.Max != c.max {
			t.Errorf("ExpectedArity(%v) = {%d,%d}, want {%d,%d}", c.op, a.Min, a.Max, c.min, c.max)
		}
	}
}

func TestTerminatorOpcodes(t *testing.T) {
	terminators := []Opcode{OpBr, OpSwitch, OpRet}
	for _, op := range terminators {
		if !op.IsTerminator() {
			t.Errorf("%v should be a terminator", op)
		}
	}
	nonTerminators := []Opcode{OpAdd, OpNop, OpCall, OpLoad}
	for _, op := range nonTerminators {
		if op.IsTerminator() {
			t.Errorf("%v should not be a terminator", op)
		}
	}
}
