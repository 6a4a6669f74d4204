package ir

import "github.com/LowLevelDaniel/COIL/internal/types"

// Parameter is one named, typed function parameter.
type Parameter struct {
	Name string
	Type types.Type
}

// Function is `{name, return_type, parameters[], is_variadic, is_external,
// blocks[], register_count}` per spec.md §3.5. It exclusively owns its
// Parameters and Blocks.
type Function struct {
	Name          string
	ReturnType    types.Type
	Parameters    []Parameter
	IsVariadic    bool
	IsExternal    bool
	Blocks        []*BasicBlock
	RegisterCount uint32
}

// NewFunction returns a function with no blocks yet.
func NewFunction(name string, returnType types.Type, params []Parameter, variadic, external bool) *Function {
	return &Function{
		Name:       name,
		ReturnType: returnType,
		Parameters: append([]Parameter(nil), params...),
		IsVariadic: variadic,
		IsExternal: external,
	}
}

// AddBlock appends b as the function's new last block.
func (f *Function) AddBlock(b *BasicBlock) {
	f.Blocks = append(f.Blocks, b)
}

// Block returns the block named name, or nil if none exists. Lookup is
// linear per spec.md §4.3 ("acceptable because compilation units are
// small").
func (f *Function) Block(name string) *BasicBlock {
	for _, b := range f.Blocks {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// EntryBlock returns the function's ENTRY block, or nil if absent.
func (f *Function) EntryBlock() *BasicBlock { return f.Block(EntryBlockName) }

// HasParameter reports whether name matches one of f's parameters.
func (f *Function) HasParameter(name string) bool {
	for _, p := range f.Parameters {
		if p.Name == name {
			return true
		}
	}
	return false
}
