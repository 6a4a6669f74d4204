package binary

import (
	"golang.org/x/crypto/cryptobyte"

	"github.com/LowLevelDaniel/COIL/internal/ir"
	"github.com/LowLevelDaniel/COIL/internal/types"
)

// --- section 0: header (module name + target requirements) ---

func encodeHeaderSection(mod *ir.Module) []byte {
	b := cryptobyte.NewBuilder(nil)
	leString(b, mod.Name)
	leU32(b, uint32(len(mod.TargetReqs.Required)))
	for _, s := range mod.TargetReqs.Required {
		leString(b, s)
	}
	leU32(b, uint32(len(mod.TargetReqs.Preferred)))
	for _, s := range mod.TargetReqs.Preferred {
		leString(b, s)
	}
	leString(b, mod.TargetReqs.DeviceClass)
	return b.BytesOrPanic()
}

func decodeHeaderSection(data []byte, mod *ir.Module) bool {
	s := cryptobyte.String(data)
	if !readString(&s, &mod.Name) {
		return false
	}
	var requiredCount uint32
	if !readU32(&s, &requiredCount) {
		return false
	}
	for i := uint32(0); i < requiredCount; i++ {
		var v string
		if !readString(&s, &v) {
			return false
		}
		mod.TargetReqs.Required = append(mod.TargetReqs.Required, v)
	}
	var preferredCount uint32
	if !readU32(&s, &preferredCount) {
		return false
	}
	for i := uint32(0); i < preferredCount; i++ {
		var v string
		if !readString(&s, &v) {
			return false
		}
		mod.TargetReqs.Preferred = append(mod.TargetReqs.Preferred, v)
	}
	return readString(&s, &mod.TargetReqs.DeviceClass)
}

// --- section 1: type registry ---

const (
	registryEntryStruct   = 0
	registryEntryFunction = 1
)

func encodeTypeSection(mod *ir.Module) []byte {
	b := cryptobyte.NewBuilder(nil)
	entries := mod.Registry.Entries()
	leU32(b, uint32(len(entries)))
	for _, e := range entries {
		if e.Struct != nil {
			b.AddUint8(registryEntryStruct)
			leString(b, e.Struct.Name)
			leU32(b, uint32(len(e.Struct.Fields)))
			for _, f := range e.Struct.Fields {
				leString(b, f.Name)
				leU32(b, uint32(f.Type))
				leU32(b, f.Offset)
			}
			leU32(b, e.Struct.Size)
			leU32(b, e.Struct.Alignment)
			continue
		}
		b.AddUint8(registryEntryFunction)
		leU32(b, uint32(e.Func.Return))
		leU32(b, uint32(len(e.Func.Params)))
		for _, p := range e.Func.Params {
			leString(b, p.Name)
			leU32(b, uint32(p.Type))
		}
		if e.Func.IsVariadic {
			b.AddUint8(1)
		} else {
			b.AddUint8(0)
		}
	}
	return b.BytesOrPanic()
}

func decodeTypeSection(data []byte, reg *types.Registry) bool {
	s := cryptobyte.String(data)
	var count uint32
	if !readU32(&s, &count) {
		return false
	}
	for i := uint32(0); i < count; i++ {
		var kindByte uint8
		if !s.ReadUint8(&kindByte) {
			return false
		}
		switch kindByte {
		case registryEntryStruct:
			var name string
			if !readString(&s, &name) {
				return false
			}
			var fieldCount uint32
			if !readU32(&s, &fieldCount) {
				return false
			}
			fieldNames := make([]string, 0, fieldCount)
			fieldTypes := make([]types.Type, 0, fieldCount)
			for j := uint32(0); j < fieldCount; j++ {
				var fname string
				var ftype uint32
				if !readString(&s, &fname) {
					return false
				}
				if !readU32(&s, &ftype) {
					return false
				}
				var offset uint32
				if !readU32(&s, &offset) {
					return false
				}
				fieldNames = append(fieldNames, fname)
				fieldTypes = append(fieldTypes, types.Type(ftype))
			}
			var size, align uint32
			if !readU32(&s, &size) || !readU32(&s, &align) {
				return false
			}
			reg.CreateStruct(name, fieldNames, fieldTypes)
		case registryEntryFunction:
			var ret uint32
			if !readU32(&s, &ret) {
				return false
			}
			var paramCount uint32
			if !readU32(&s, &paramCount) {
				return false
			}
			paramNames := make([]string, 0, paramCount)
			paramTypes := make([]types.Type, 0, paramCount)
			for j := uint32(0); j < paramCount; j++ {
				var pname string
				var ptype uint32
				if !readString(&s, &pname) || !readU32(&s, &ptype) {
					return false
				}
				paramNames = append(paramNames, pname)
				paramTypes = append(paramTypes, types.Type(ptype))
			}
			var variadic uint8
			if !s.ReadUint8(&variadic) {
				return false
			}
			reg.CreateFunction(types.Type(ret), paramNames, paramTypes, variadic != 0)
		default:
			return false
		}
	}
	return true
}

// --- section 3: globals ---

func encodeGlobalSection(mod *ir.Module) []byte {
	b := cryptobyte.NewBuilder(nil)
	leU32(b, uint32(len(mod.Globals)))
	for _, g := range mod.Globals {
		leString(b, g.Name)
		leU32(b, uint32(g.Type))
		flags := uint8(0)
		if g.IsConstant {
			flags |= 1
		}
		if g.IsExternal {
			flags |= 2
		}
		b.AddUint8(flags)
		leU32(b, g.Alignment)
		if g.Initializer == nil {
			b.AddUint8(0)
		} else {
			b.AddUint8(1)
			leU32(b, uint32(len(g.Initializer)))
			b.AddBytes(g.Initializer)
		}
	}
	return b.BytesOrPanic()
}

func decodeGlobalSection(data []byte, mod *ir.Module) bool {
	s := cryptobyte.String(data)
	var count uint32
	if !readU32(&s, &count) {
		return false
	}
	for i := uint32(0); i < count; i++ {
		var name string
		var typ uint32
		var flags, hasInit uint8
		var alignment uint32
		if !readString(&s, &name) || !readU32(&s, &typ) || !s.ReadUint8(&flags) || !readU32(&s, &alignment) || !s.ReadUint8(&hasInit) {
			return false
		}
		g := ir.NewGlobal(name, types.Type(typ), flags&1 != 0, flags&2 != 0, alignment)
		if hasInit != 0 {
			var n uint32
			if !readU32(&s, &n) {
				return false
			}
			var buf []byte
			if !s.ReadBytes(&buf, int(n)) {
				return false
			}
			g.Initializer = append([]byte(nil), buf...)
		}
		mod.AddGlobal(g)
	}
	return true
}

// --- sections 2 + 5: function declarations and code ---

func encodeFunctionAndCodeSections(mod *ir.Module, names *nameTable) (funcSec, codeSec []byte) {
	fb := cryptobyte.NewBuilder(nil)
	cb := cryptobyte.NewBuilder(nil)
	leU32(fb, uint32(len(mod.Functions)))
	for _, f := range mod.Functions {
		leString(fb, f.Name)
		leU32(fb, uint32(f.ReturnType))
		leU32(fb, uint32(len(f.Parameters)))
		for _, p := range f.Parameters {
			leString(fb, p.Name)
			leU32(fb, uint32(p.Type))
		}
		flags := uint8(0)
		if f.IsVariadic {
			flags |= 1
		}
		if f.IsExternal {
			flags |= 2
		}
		fb.AddUint8(flags)
		leU32(fb, f.RegisterCount)
		leU32(fb, uint32(len(f.Blocks)))
		for _, blk := range f.Blocks {
			leString(fb, blk.Name)
			leU32(fb, uint32(len(blk.Instructions)))
			for _, inst := range blk.Instructions {
				encodeInstruction(cb, names, inst)
			}
		}
	}
	return fb.BytesOrPanic(), cb.BytesOrPanic()
}

func decodeFunctionAndCodeSections(funcData, codeData []byte, mod *ir.Module, names *nameTableReader) bool {
	fs := cryptobyte.String(funcData)
	cs := cryptobyte.String(codeData)

	var funcCount uint32
	if !readU32(&fs, &funcCount) {
		return false
	}
	for i := uint32(0); i < funcCount; i++ {
		var name string
		var retType uint32
		if !readString(&fs, &name) || !readU32(&fs, &retType) {
			return false
		}
		var paramCount uint32
		if !readU32(&fs, &paramCount) {
			return false
		}
		params := make([]ir.Parameter, 0, paramCount)
		for j := uint32(0); j < paramCount; j++ {
			var pname string
			var ptype uint32
			if !readString(&fs, &pname) || !readU32(&fs, &ptype) {
				return false
			}
			params = append(params, ir.Parameter{Name: pname, Type: types.Type(ptype)})
		}
		var flags uint8
		if !fs.ReadUint8(&flags) {
			return false
		}
		f := ir.NewFunction(name, types.Type(retType), params, flags&1 != 0, flags&2 != 0)
		if !readU32(&fs, &f.RegisterCount) {
			return false
		}
		var blockCount uint32
		if !readU32(&fs, &blockCount) {
			return false
		}
		for j := uint32(0); j < blockCount; j++ {
			var blockName string
			if !readString(&fs, &blockName) {
				return false
			}
			var instCount uint32
			if !readU32(&fs, &instCount) {
				return false
			}
			blk := ir.NewBasicBlock(blockName)
			for k := uint32(0); k < instCount; k++ {
				inst, ok := decodeInstruction(&cs, names)
				if !ok {
					return false
				}
				blk.Append(inst)
			}
			f.AddBlock(blk)
		}
		mod.AddFunction(f)
	}
	return true
}

// --- section 6: relocations ---

func encodeRelocationSection(mod *ir.Module) []byte {
	b := cryptobyte.NewBuilder(nil)
	leU32(b, uint32(len(mod.Relocs)))
	for _, r := range mod.Relocs {
		leString(b, r.Symbol)
		leU32(b, r.Offset)
		b.AddUint8(uint8(r.Kind))
		leI64(b, r.Addend)
	}
	return b.BytesOrPanic()
}

func decodeRelocationSection(data []byte, mod *ir.Module) bool {
	s := cryptobyte.String(data)
	var count uint32
	if !readU32(&s, &count) {
		return false
	}
	for i := uint32(0); i < count; i++ {
		var symbol string
		var offset uint32
		var kindByte uint8
		var addend int64
		if !readString(&s, &symbol) || !readU32(&s, &offset) || !s.ReadUint8(&kindByte) || !readI64(&s, &addend) {
			return false
		}
		mod.AddRelocation(ir.Relocation{Symbol: symbol, Offset: offset, Kind: ir.RelocationKind(kindByte), Addend: addend})
	}
	return true
}

// --- section 7: metadata ---

func encodeMetadataSection(mod *ir.Module) []byte {
	b := cryptobyte.NewBuilder(nil)
	b.AddBytes([]byte(mod.Name))
	b.AddUint8(0) // null terminator, required by spec.md §4.7
	buildID, _ := mod.BuildID.MarshalBinary()
	b.AddBytes(buildID)
	return b.BytesOrPanic()
}

// --- section 8: name table (Open Question #1) ---

func encodeNamesSection(names *nameTable) []byte {
	b := cryptobyte.NewBuilder(nil)
	leU32(b, uint32(len(names.names)))
	for _, n := range names.names {
		leString(b, n)
	}
	return b.BytesOrPanic()
}

func decodeNamesSection(data []byte) (*nameTableReader, bool) {
	s := cryptobyte.String(data)
	var count uint32
	if !readU32(&s, &count) {
		return nil, false
	}
	names := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		var v string
		if !readString(&s, &v) {
			return nil, false
		}
		names = append(names, v)
	}
	return &nameTableReader{names: names}, true
}
