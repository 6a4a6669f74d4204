// Package binary implements the COIL container codec (C7): encoding an
// *ir.Module to the binary container format described in spec.md §4.7, and
// decoding it back. The file layout is little-endian throughout, but
// golang.org/x/crypto/cryptobyte's Builder/String read/write big-endian
// integers (it follows the TLS wire convention), so every multi-byte field
// here goes through the leU16/leU32/... helpers below instead of the
// Builder's native AddUint16/AddUint32.
package binary

import (
	"encoding/binary"

	"golang.org/x/crypto/cryptobyte"
)

// Magic and Version are the fixed file-header values from spec.md §4.7.
const (
	Magic   uint32 = 0x4C494F43 // "COIL"
	Version uint32 = 0x00000001 // major=1, minor=0, patch=0, reserved=0 (spec.md §6.2: on-disk bytes 01 00 00 00)
)

const (
	fileHeaderSize   = 16 // magic + version + section_count + flags
	sectionEntrySize = 12 // type + offset + size
)

// SectionKind identifies one of the container's section table entries.
type SectionKind uint32

const (
	SectionHeader SectionKind = iota
	SectionType
	SectionFunction
	SectionGlobal
	SectionConstant
	SectionCode
	SectionRelocation
	SectionMetadata

	// SectionNames is not named by spec.md §4.7; it resolves the open item
	// in §9 ("round-trip of block/function/global names is incomplete...
	// the format likely requires a string/name-table section") per
	// DESIGN.md's Open Question #1.
	SectionNames
)

func (k SectionKind) String() string {
	switch k {
	case SectionHeader:
		return "header"
	case SectionType:
		return "type"
	case SectionFunction:
		return "function"
	case SectionGlobal:
		return "global"
	case SectionConstant:
		return "constant"
	case SectionCode:
		return "code"
	case SectionRelocation:
		return "relocation"
	case SectionMetadata:
		return "metadata"
	case SectionNames:
		return "names"
	default:
		return "unknown"
	}
}

type sectionEntry struct {
	kind   SectionKind
	offset uint32
	size   uint32
}

// --- little-endian primitives layered on top of cryptobyte ---

func leU16(b *cryptobyte.Builder, v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	b.AddBytes(buf[:])
}

func leU32(b *cryptobyte.Builder, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	b.AddBytes(buf[:])
}

func leU64(b *cryptobyte.Builder, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	b.AddBytes(buf[:])
}

func leI32(b *cryptobyte.Builder, v int32) { leU32(b, uint32(v)) }
func leI64(b *cryptobyte.Builder, v int64) { leU64(b, uint64(v)) }

// leString writes a uint16-length-prefixed UTF-8 string.
func leString(b *cryptobyte.Builder, s string) {
	leU16(b, uint16(len(s)))
	b.AddBytes([]byte(s))
}

func readU16(s *cryptobyte.String, out *uint16) bool {
	var buf []byte
	if !s.ReadBytes(&buf, 2) {
		return false
	}
	*out = binary.LittleEndian.Uint16(buf)
	return true
}

func readU32(s *cryptobyte.String, out *uint32) bool {
	var buf []byte
	if !s.ReadBytes(&buf, 4) {
		return false
	}
	*out = binary.LittleEndian.Uint32(buf)
	return true
}

func readU64(s *cryptobyte.String, out *uint64) bool {
	var buf []byte
	if !s.ReadBytes(&buf, 8) {
		return false
	}
	*out = binary.LittleEndian.Uint64(buf)
	return true
}

func readI32(s *cryptobyte.String, out *int32) bool {
	var v uint32
	if !readU32(s, &v) {
		return false
	}
	*out = int32(v)
	return true
}

func readI64(s *cryptobyte.String, out *int64) bool {
	var v uint64
	if !readU64(s, &v) {
		return false
	}
	*out = int64(v)
	return true
}

func readString(s *cryptobyte.String, out *string) bool {
	var n uint16
	if !readU16(s, &n) {
		return false
	}
	var buf []byte
	if !s.ReadBytes(&buf, int(n)) {
		return false
	}
	*out = string(buf)
	return true
}
