// Package types implements the COIL type system: compact 32-bit encoded
// type codes and the registry that backs struct and function types too
// large to encode inline. See spec.md §3.1 and §4.2.
package types

// Category is the high nibble of a Type.
type Category uint8

const (
	Void Category = iota
	Bool
	Integer
	Float
	Pointer
	Vector
	Array
	Struct
	Function
)

var categoryNames = [...]string{
	Void: "void", Bool: "bool", Integer: "integer", Float: "float",
	Pointer: "pointer", Vector: "vector", Array: "array", Struct: "struct", Function: "function",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// Qualifier is a bit in a Type's qualifier field.
type Qualifier uint16

const (
	Unsigned Qualifier = 1 << iota
	Const
	Volatile
	Restrict
	Atomic
)

// MemorySpace is the pointer-category payload's low 3 bits of width.
type MemorySpace uint8

const (
	SpaceGlobal MemorySpace = iota
	SpaceLocal
	SpaceShared
	SpaceConstant
	SpacePrivate
)

// Type is the 32-bit packed type code described in spec.md §3.1:
//
//	bits 28-31: category   (4 bits)
//	bits 20-27: width      (8 bits)
//	bits 12-19: qualifiers (8 bits)
//	bits  0-11: attributes (12 bits)
type Type uint32

const (
	categoryShift   = 28
	widthShift      = 20
	qualifiersShift = 12

	categoryMask   = 0xF
	widthMask      = 0xFF
	qualifiersMask = 0xFF
	attributesMask = 0xFFF
)

// NewBasic packs a type code from its four fields. It never touches a
// registry and is a pure function of its inputs (spec.md §4.2,
// create_basic): calling it twice with identical arguments returns equal
// codes.
func NewBasic(cat Category, width uint8, quals Qualifier, attrs uint16) Type {
	return Type(uint32(cat&categoryMask)<<categoryShift |
		uint32(width)<<widthShift |
		uint32(quals)&qualifiersMask<<qualifiersShift |
		uint32(attrs)&attributesMask)
}

// Category returns t's category field.
func (t Type) Category() Category { return Category((uint32(t) >> categoryShift) & categoryMask) }

// Width returns t's width field (bits for scalars, element count for small
// vectors/arrays, 0 for void/struct/function).
func (t Type) Width() uint8 { return uint8((uint32(t) >> widthShift) & widthMask) }

// Qualifiers returns t's qualifier bitset.
func (t Type) Qualifiers() Qualifier { return Qualifier((uint32(t) >> qualifiersShift) & qualifiersMask) }

// Attributes returns t's 12-bit category-dependent payload.
func (t Type) Attributes() uint16 { return uint16(uint32(t) & attributesMask) }

func (t Type) HasQualifier(q Qualifier) bool { return t.Qualifiers()&q != 0 }

// NewPointer builds a pointer type. Multiple calls with the same inputs
// return equal codes (spec.md invariant T1): the base type is packed
// directly into the attributes field when it fits (registry-free types),
// otherwise the registry slot index is used, so no allocation occurs here.
func NewPointer(base Type, space MemorySpace, quals Qualifier) Type {
	width := uint8(space) & 0x7
	attrs := encodeBaseForPointer(base)
	return NewBasic(Pointer, width, quals, attrs)
}

// encodeBaseForPointer packs a base type into 12 bits. Primitive base types
// (void/bool/integer/float/generic pointer) are re-encoded compactly;
// registry-backed base types (struct/function/array/vector/pointer-to-
// pointer) are represented by their registry attribute slot, which is
// always < 1<<12 by construction (see Registry.CreateStruct and
// Registry.CreateFunction).
func encodeBaseForPointer(base Type) uint16 {
	switch base.Category() {
	case Void:
		return 0
	case Bool:
		return 1
	case Integer:
		code := uint16(base.Width()) >> 3 // byte width 1,2,4,8
		if base.HasQualifier(Unsigned) {
			code |= 0x10
		}
		return 2 + code
	case Float:
		switch base.Width() {
		case 16:
			return 0x30
		case 32:
			return 0x31
		case 64:
			return 0x32
		}
		return 0x3F
	default:
		// Struct, function, array, vector, or pointer base: carry the
		// registry/attribute slot through directly.
		return base.Attributes()
	}
}

// PointerSpace returns the memory space of a pointer type.
func (t Type) PointerSpace() MemorySpace { return MemorySpace(t.Width() & 0x7) }

// NewVector builds a vector type of count elements of elem. Per spec.md
// §4.2 (create_vector), a count of zero is invalid and the caller (C6)
// is responsible for rejecting it; this constructor itself returns Void in
// that case so callers that skip validation fail closed.
func NewVector(elem Type, count uint8) Type {
	if count == 0 {
		return VoidType
	}
	return NewBasic(Vector, count, 0, encodeElementType(elem))
}

// encodeElementType mirrors encodeBaseForPointer: a compact re-encoding for
// primitives, or the registry slot for composites.
func encodeElementType(elem Type) uint16 {
	return encodeBaseForPointer(elem)
}

// Predefined constants (spec.md §3.1; values cross-checked against
// original_source/src/common/type_system.h's COIL_TYPE_* macros).
var (
	VoidType   = NewBasic(Void, 0, 0, 0)
	BoolType   = NewBasic(Bool, 1, 0, 0)
	I8         = NewBasic(Integer, 8, 0, 0)
	I16        = NewBasic(Integer, 16, 0, 0)
	I32        = NewBasic(Integer, 32, 0, 0)
	I64        = NewBasic(Integer, 64, 0, 0)
	U8         = NewBasic(Integer, 8, Unsigned, 0)
	U16        = NewBasic(Integer, 16, Unsigned, 0)
	U32        = NewBasic(Integer, 32, Unsigned, 0)
	U64        = NewBasic(Integer, 64, Unsigned, 0)
	F16        = NewBasic(Float, 16, 0, 0)
	F32        = NewBasic(Float, 32, 0, 0)
	F64        = NewBasic(Float, 64, 0, 0)
	GenericPtr = NewPointer(VoidType, SpaceGlobal, 0)
)

// IsInteger, IsFloat, IsPointer classify a type by its category.
func (t Type) IsInteger() bool { return t.Category() == Integer }
func (t Type) IsFloat() bool   { return t.Category() == Float }
func (t Type) IsPointer() bool { return t.Category() == Pointer }
func (t Type) IsVoid() bool    { return t.Category() == Void }
