package hoilparse

import (
	"testing"

	"github.com/LowLevelDaniel/COIL/internal/diag"
	"github.com/LowLevelDaniel/COIL/internal/ir"
	"github.com/LowLevelDaniel/COIL/internal/types"
)

func parse(t *testing.T, src string) (*ir.Module, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink()
	sink.RegisterCallback(func(*diag.Diagnostic) {}) // suppress stderr noise
	p := New(src, "t.hoil", sink)
	mod := p.ParseModule()
	return mod, sink
}

func TestMinimalModule(t *testing.T) {
	mod, sink := parse(t, `MODULE "m";`)
	if mod.Name != "m" {
		t.Errorf("Name = %q, want %q", mod.Name, "m")
	}
	if len(mod.Functions) != 0 || len(mod.Globals) != 0 {
		t.Errorf("expected zero functions/globals, got %d/%d", len(mod.Functions), len(mod.Globals))
	}
	if sink.HadErrors() {
		t.Errorf("unexpected errors: %v", sink.Last(10))
	}
}

func TestExternFunctionSignature(t *testing.T) {
	mod, sink := parse(t, `MODULE "m"; EXTERN FUNCTION printf(fmt: ptr<i8>) -> i32;`)
	if sink.HadErrors() {
		t.Fatalf("unexpected errors: %v", sink.Last(10))
	}
	if len(mod.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(mod.Functions))
	}
	f := mod.Functions[0]
	if !f.IsExternal {
		t.Errorf("IsExternal = false, want true")
	}
	if len(f.Parameters) != 1 || f.Parameters[0].Name != "fmt" {
		t.Errorf("unexpected parameters: %+v", f.Parameters)
	}
	if !f.Parameters[0].Type.IsPointer() {
		t.Errorf("parameter type is not a pointer")
	}
	if f.ReturnType.Category().String() != "integer" {
		t.Errorf("ReturnType category = %v, want integer", f.ReturnType.Category())
	}
}

func TestFunctionWithEntryBlockAndInstructions(t *testing.T) {
	src := `MODULE "m";
FUNCTION f() -> void {
  ENTRY:
    %0:i32 = LOAD_I32 42:i32;
    %1:i32 = ADD %0:i32, %0:i32;
    RET;
}`
	mod, sink := parse(t, src)
	if sink.HadErrors() {
		t.Fatalf("unexpected errors: %v", sink.Last(10))
	}
	f := mod.Function("f")
	if f == nil {
		t.Fatal("function f not found")
	}
	entry := f.EntryBlock()
	if entry == nil {
		t.Fatal("ENTRY block not found")
	}
	if len(entry.Instructions) != 3 {
		t.Fatalf("expected 3 instructions, got %d", len(entry.Instructions))
	}
	if entry.Instructions[0].Opcode != ir.OpLoadI32 {
		t.Errorf("instr 0 opcode = %v, want LoadI32", entry.Instructions[0].Opcode)
	}
	if !entry.Instructions[2].IsTerminator() {
		t.Errorf("last instruction should be a terminator")
	}
	if f.RegisterCount != 2 {
		t.Errorf("RegisterCount = %d, want 2", f.RegisterCount)
	}
}

func TestStructTypeDeclAndUse(t *testing.T) {
	src := `MODULE "m";
TYPE point { x: i32, y: i32 };
GLOBAL origin: point;`
	mod, sink := parse(t, src)
	if sink.HadErrors() {
		t.Fatalf("unexpected errors: %v", sink.Last(10))
	}
	g := mod.Global("origin")
	if g == nil {
		t.Fatal("global origin not found")
	}
	if g.Type.Category() != types.Struct {
		t.Errorf("origin type category = %v, want struct", g.Type.Category())
	}
}

func TestMalformedItemStillParsesRestOfFile(t *testing.T) {
	src := `MODULE "m";
GLOBAL a: i32;
GLOBAL b i32;
GLOBAL c: i32;`
	mod, sink := parse(t, src)
	if !sink.HadErrors() {
		t.Fatalf("expected a parse error for the malformed 'GLOBAL b i32;' line")
	}
	if mod.Global("a") == nil || mod.Global("c") == nil {
		t.Errorf("parser should recover and still parse surrounding globals: %+v", mod.Globals)
	}
}

func TestConditionalBranch(t *testing.T) {
	src := `MODULE "m";
FUNCTION f(c: bool) -> void {
  ENTRY:
    BR %0:bool, yes, no;
  yes:
    RET;
  no:
    RET;
}`
	mod, sink := parse(t, src)
	if sink.HadErrors() {
		t.Fatalf("unexpected errors: %v", sink.Last(10))
	}
	f := mod.Function("f")
	br := f.EntryBlock().Terminator()
	if br.Opcode != ir.OpBr || len(br.Operands) != 3 {
		t.Errorf("expected 3-operand BR, got %v with %d operands", br.Opcode, len(br.Operands))
	}
}
