package binary

import (
	"bytes"

	"golang.org/x/crypto/cryptobyte"

	"github.com/LowLevelDaniel/COIL/internal/diag"
	"github.com/LowLevelDaniel/COIL/internal/ir"
)

// versionMajor extracts the major component from a version word whose
// little-endian on-disk bytes are major.minor.patch.reserved (spec.md
// §6.2) — i.e. the major byte is the low byte of v.
func versionMajor(v uint32) uint32 { return v & 0xFF }

// Decode parses data as a COIL container (spec.md §4.7), reporting through
// sink and returning (nil, false) on any validation failure. file is used
// only to attribute diagnostics.
func Decode(data []byte, sink *diag.Sink, file string) (*ir.Module, bool) {
	loc := diag.Location{File: file}

	if len(data) < fileHeaderSize {
		sink.Report(diag.Error, diag.Binary, diag.ErrBinaryInvalidFormat, "file too small for a container header", loc)
		return nil, false
	}

	s := cryptobyte.String(data)
	var magic, version, sectionCount, flags uint32
	if !readU32(&s, &magic) || !readU32(&s, &version) || !readU32(&s, &sectionCount) || !readU32(&s, &flags) {
		sink.Report(diag.Error, diag.Binary, diag.ErrBinaryInvalidFormat, "truncated container header", loc)
		return nil, false
	}
	if magic != Magic {
		sink.Report(diag.Error, diag.Binary, diag.ErrBinaryInvalidFormat, "magic mismatch", loc)
		return nil, false
	}
	if versionMajor(version) != versionMajor(Version) {
		sink.Report(diag.Error, diag.Binary, diag.ErrBinaryUnsupportedVer, "unsupported container major version", loc)
		return nil, false
	}

	entries := make([]sectionEntry, 0, sectionCount)
	for i := uint32(0); i < sectionCount; i++ {
		var kind, offset, size uint32
		if !readU32(&s, &kind) || !readU32(&s, &offset) || !readU32(&s, &size) {
			sink.Report(diag.Error, diag.Binary, diag.ErrBinaryCorrupt, "truncated section table", loc)
			return nil, false
		}
		entries = append(entries, sectionEntry{kind: SectionKind(kind), offset: offset, size: size})
	}

	sectionData := make(map[SectionKind][]byte, len(entries))
	for _, e := range entries {
		end := uint64(e.offset) + uint64(e.size)
		if end > uint64(len(data)) {
			sink.Report(diag.Error, diag.Binary, diag.ErrBinaryCorrupt, "section out of file bounds", loc)
			return nil, false
		}
		sectionData[e.kind] = data[e.offset:end]
	}

	if meta, ok := sectionData[SectionMetadata]; ok {
		nul := bytes.IndexByte(meta, 0)
		if nul < 0 {
			sink.Report(diag.Error, diag.Binary, diag.ErrBinaryCorrupt, "metadata section name is not null-terminated", loc)
			return nil, false
		}
	}

	var names *nameTableReader
	if raw, ok := sectionData[SectionNames]; ok {
		n, ok := decodeNamesSection(raw)
		if !ok {
			sink.Report(diag.Error, diag.Binary, diag.ErrBinaryCorrupt, "malformed names section", loc)
			return nil, false
		}
		names = n
	} else {
		names = &nameTableReader{names: []string{""}}
	}

	mod := ir.New("")

	if raw, ok := sectionData[SectionHeader]; ok {
		if !decodeHeaderSection(raw, mod) {
			sink.Report(diag.Error, diag.Binary, diag.ErrBinaryCorrupt, "malformed header section", loc)
			return nil, false
		}
	}

	if raw, ok := sectionData[SectionType]; ok {
		if !decodeTypeSection(raw, mod.Registry) {
			sink.Report(diag.Error, diag.Binary, diag.ErrBinaryCorrupt, "malformed type section", loc)
			return nil, false
		}
	}

	if raw, ok := sectionData[SectionGlobal]; ok {
		if !decodeGlobalSection(raw, mod) {
			sink.Report(diag.Error, diag.Binary, diag.ErrBinaryCorrupt, "malformed global section", loc)
			return nil, false
		}
	}

	// An absent code section is only valid when every function is external
	// (spec.md §4.7); decodeFunctionAndCodeSections surfaces that case as a
	// truncated-read failure, since a non-external function's block list is
	// non-empty and has nothing to read its instructions from.
	if funcRaw, haveFunc := sectionData[SectionFunction]; haveFunc {
		if !decodeFunctionAndCodeSections(funcRaw, sectionData[SectionCode], mod, names) {
			sink.Report(diag.Error, diag.Binary, diag.ErrBinaryCorrupt, "malformed function or code section", loc)
			return nil, false
		}
	}

	if raw, ok := sectionData[SectionRelocation]; ok {
		if !decodeRelocationSection(raw, mod) {
			sink.Report(diag.Error, diag.Binary, diag.ErrBinaryCorrupt, "malformed relocation section", loc)
			return nil, false
		}
	}

	if meta, ok := sectionData[SectionMetadata]; ok {
		nul := bytes.IndexByte(meta, 0)
		rest := meta[nul+1:]
		if len(rest) >= 16 {
			_ = mod.BuildID.UnmarshalBinary(rest[:16])
		}
	}

	return mod, true
}
