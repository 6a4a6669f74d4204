package binary

import (
	"golang.org/x/crypto/cryptobyte"

	"github.com/LowLevelDaniel/COIL/internal/ir"
)

// Encode serializes mod to the COIL container format (spec.md §4.7). The
// result round-trips through Decode per invariant P4, including string
// operand payloads via the names-section extension (Open Question #1).
func Encode(mod *ir.Module) []byte {
	names := newNameTable()

	// Functions and code must be built before the names section, since
	// instruction operands are what populate the table; the header and
	// type/global sections use module-level strings that don't need the
	// shared table (they're never referenced by operand name).
	funcSec, codeSec := encodeFunctionAndCodeSections(mod, names)

	sections := []struct {
		kind SectionKind
		data []byte
	}{
		{SectionHeader, encodeHeaderSection(mod)},
		{SectionType, encodeTypeSection(mod)},
		{SectionFunction, funcSec},
		{SectionGlobal, encodeGlobalSection(mod)},
		{SectionConstant, nil}, // reserved empty, Open Question #3
		{SectionCode, codeSec},
		{SectionRelocation, encodeRelocationSection(mod)},
		{SectionMetadata, encodeMetadataSection(mod)},
		{SectionNames, encodeNamesSection(names)},
	}

	dataOffset := uint32(fileHeaderSize + len(sections)*sectionEntrySize)
	entries := make([]sectionEntry, len(sections))
	offset := dataOffset
	for i, sec := range sections {
		entries[i] = sectionEntry{kind: sec.kind, offset: offset, size: uint32(len(sec.data))}
		offset += uint32(len(sec.data))
	}

	b := cryptobyte.NewBuilder(nil)
	leU32(b, Magic)
	leU32(b, Version)
	leU32(b, uint32(len(sections)))
	leU32(b, 0) // flags, reserved
	for _, e := range entries {
		leU32(b, uint32(e.kind))
		leU32(b, e.offset)
		leU32(b, e.size)
	}
	for _, sec := range sections {
		b.AddBytes(sec.data)
	}
	return b.BytesOrPanic()
}
