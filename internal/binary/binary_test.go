package binary

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/LowLevelDaniel/COIL/internal/diag"
	"github.com/LowLevelDaniel/COIL/internal/hoilparse"
	"github.com/LowLevelDaniel/COIL/internal/ir"
	"github.com/LowLevelDaniel/COIL/internal/types"
)

func parseModule(t *testing.T, src string) *ir.Module {
	t.Helper()
	sink := diag.NewSink()
	sink.RegisterCallback(func(*diag.Diagnostic) {})
	p := hoilparse.New(src, "t.hoil", sink)
	mod := p.ParseModule()
	if sink.HadErrors() {
		t.Fatalf("parse failed: %v", sink.Last(10))
	}
	return mod
}

// instCmp ignores the unexported fields of types.Registry; every ir type is
// built from exported fields only (Type is a bit-packed uint32 and compares
// by value), so cmp.Diff needs no other option here.
var instCmp = []cmp.Option{cmpopts.IgnoreUnexported(types.Registry{})}

func TestRoundTripMinimalModule(t *testing.T) {
	mod := parseModule(t, `MODULE "m";
FUNCTION add(a: i32, b: i32) -> i32 {
  ENTRY:
    %2:i32 = ADD %0:i32, %1:i32;
    RET %2:i32;
}`)
	data := Encode(mod)
	sink := diag.NewSink()
	sink.RegisterCallback(func(*diag.Diagnostic) {})
	got, ok := Decode(data, sink, "t.hoil")
	if !ok {
		t.Fatalf("decode failed: %v", sink.Last(10))
	}
	if got.Name != mod.Name {
		t.Errorf("Name = %q, want %q", got.Name, mod.Name)
	}
	if diff := cmp.Diff(mod.Functions, got.Functions, instCmp...); diff != "" {
		t.Errorf("Functions mismatch (-want +got):\n%s", diff)
	}
	if got.BuildID != mod.BuildID {
		t.Errorf("BuildID = %v, want %v", got.BuildID, mod.BuildID)
	}
}

func TestRoundTripPreservesOperandNames(t *testing.T) {
	mod := parseModule(t, `MODULE "m";
EXTERN FUNCTION helper() -> void;
GLOBAL counter: i32;
FUNCTION f(c: bool) -> void {
  ENTRY:
    CALL @helper;
    BR %0:bool, yes, no;
  yes:
    RET;
  no:
    RET;
}`)
	data := Encode(mod)
	sink := diag.NewSink()
	sink.RegisterCallback(func(*diag.Diagnostic) {})
	got, ok := Decode(data, sink, "t.hoil")
	if !ok {
		t.Fatalf("decode failed: %v", sink.Last(10))
	}
	f := got.Function("f")
	if f == nil {
		t.Fatal("function f missing after round trip")
	}
	entry := f.EntryBlock()
	call := entry.Instructions[0]
	if call.Opcode != ir.OpCall || call.Operands[0].Name != "helper" {
		t.Errorf("CALL operand name = %q, want %q", call.Operands[0].Name, "helper")
	}
	br := entry.Instructions[1]
	if br.Operands[1].Name != "yes" || br.Operands[2].Name != "no" {
		t.Errorf("BR targets = %q/%q, want yes/no", br.Operands[1].Name, br.Operands[2].Name)
	}
	if got.Function("helper") == nil {
		t.Errorf("extern function helper missing after round trip")
	}
	if got.Global("counter") == nil {
		t.Errorf("global counter missing after round trip")
	}
}

func TestRoundTripStructType(t *testing.T) {
	mod := parseModule(t, `MODULE "m";
TYPE point { x: i32, y: i32 };
GLOBAL origin: point;`)
	data := Encode(mod)
	sink := diag.NewSink()
	sink.RegisterCallback(func(*diag.Diagnostic) {})
	got, ok := Decode(data, sink, "t.hoil")
	if !ok {
		t.Fatalf("decode failed: %v", sink.Last(10))
	}
	g := got.Global("origin")
	if g == nil {
		t.Fatal("global origin missing after round trip")
	}
	if g.Type.Category() != types.Struct {
		t.Fatalf("origin type category = %v, want struct", g.Type.Category())
	}
	desc := got.Registry.StructOf(g.Type)
	if desc == nil || desc.Name != "point" || len(desc.Fields) != 2 {
		t.Fatalf("unexpected struct descriptor after round trip: %+v", desc)
	}
	if desc.Fields[0].Offset != 0 || desc.Fields[1].Offset != 4 {
		t.Errorf("field offsets = %d/%d, want 0/4", desc.Fields[0].Offset, desc.Fields[1].Offset)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	mod := parseModule(t, `MODULE "m";`)
	data := Encode(mod)
	data[0] ^= 0xFF
	sink := diag.NewSink()
	var codes []int
	sink.RegisterCallback(func(d *diag.Diagnostic) { codes = append(codes, d.Code) })
	_, ok := Decode(data, sink, "t.hoil")
	if ok {
		t.Fatal("expected decode to fail on bad magic")
	}
	if len(codes) != 1 || codes[0] != diag.ErrBinaryInvalidFormat {
		t.Errorf("codes = %v, want [ErrBinaryInvalidFormat]", codes)
	}
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	mod := parseModule(t, `MODULE "m";`)
	data := Encode(mod)
	// Version is the second little-endian uint32 in the file header, laid
	// out major.minor.patch.reserved; bump its major byte (the field's low
	// byte) so it no longer matches Version's major.
	data[4] = 0x02
	sink := diag.NewSink()
	var codes []int
	sink.RegisterCallback(func(d *diag.Diagnostic) { codes = append(codes, d.Code) })
	_, ok := Decode(data, sink, "t.hoil")
	if ok {
		t.Fatal("expected decode to fail on unsupported version")
	}
	if len(codes) != 1 || codes[0] != diag.ErrBinaryUnsupportedVer {
		t.Errorf("codes = %v, want [ErrBinaryUnsupportedVer]", codes)
	}
}

func TestDecodeRejectsCorruptSectionBounds(t *testing.T) {
	mod := parseModule(t, `MODULE "m";`)
	data := Encode(mod)
	truncated := data[:len(data)-4] // chop off the tail of the last section
	sink := diag.NewSink()
	var codes []int
	sink.RegisterCallback(func(d *diag.Diagnostic) { codes = append(codes, d.Code) })
	_, ok := Decode(truncated, sink, "t.hoil")
	if ok {
		t.Fatal("expected decode to fail on a truncated file")
	}
	if len(codes) != 1 || codes[0] != diag.ErrBinaryCorrupt {
		t.Errorf("codes = %v, want [ErrBinaryCorrupt]", codes)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	mod := parseModule(t, `MODULE "m"; GLOBAL x: i32;`)
	a := Encode(mod)
	b := Encode(mod)
	if len(a) != len(b) {
		t.Fatalf("encode lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("encode is not deterministic at byte %d", i)
		}
	}
}
