package types

import "testing"

func TestBasicRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		cat   Category
		width uint8
		quals Qualifier
	}{
		{"i32", Integer, 32, 0},
		{"u64", Integer, 64, Unsigned},
		{"f64", Float, 64, 0},
		{"bool", Bool, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ty := NewBasic(tt.cat, tt.width, tt.quals, 0)
			if ty.Category() != tt.cat {
				t.Errorf("Category() = %v, want %v", ty.Category(), tt.cat)
			}
			if ty.Width() != tt.width {
				t.Errorf("Width() = %d, want %d", ty.Width(), tt.width)
			}
			if ty.Qualifiers() != tt.quals {
				t.Errorf("Qualifiers() = %v, want %v", ty.Qualifiers(), tt.quals)
			}
		})
	}
}

func TestNewBasicIsPure(t *testing.T) {
	a := NewBasic(Integer, 32, Unsigned, 7)
	b := NewBasic(Integer, 32, Unsigned, 7)
	if a != b {
		t.Errorf("NewBasic not pure: %v != %v", a, b)
	}
}

func TestPointerRoundTrip(t *testing.T) {
	p := NewPointer(I32, SpaceShared, Const)
	if !p.IsPointer() {
		t.Fatalf("IsPointer() = false")
	}
	if p.PointerSpace() != SpaceShared {
		t.Errorf("PointerSpace() = %v, want %v", p.PointerSpace(), SpaceShared)
	}
	if !p.HasQualifier(Const) {
		t.Errorf("HasQualifier(Const) = false")
	}
}

func TestVectorZeroCountIsVoid(t *testing.T) {
	if v := NewVector(F32, 0); !v.IsVoid() {
		t.Errorf("NewVector(_, 0) = %v, want void", v)
	}
}

func TestVectorRoundTrip(t *testing.T) {
	r := NewRegistry()
	v := NewVector(F32, 4)
	if v.Width() != 4 {
		t.Errorf("Width() = %d, want 4", v.Width())
	}
	if got := r.ElementType(v); got != F32 {
		t.Errorf("ElementType() = %v, want F32", got)
	}
}

func TestPredefinedClassification(t *testing.T) {
	if !I32.IsInteger() {
		t.Errorf("I32.IsInteger() = false")
	}
	if !F64.IsFloat() {
		t.Errorf("F64.IsFloat() = false")
	}
	if !VoidType.IsVoid() {
		t.Errorf("VoidType.IsVoid() = false")
	}
	if U8.HasQualifier(Unsigned) != true {
		t.Errorf("U8 should be unsigned")
	}
	if I8.HasQualifier(Unsigned) != false {
		t.Errorf("I8 should not be unsigned")
	}
}
