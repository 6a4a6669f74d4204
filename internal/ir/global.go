package ir

import "github.com/LowLevelDaniel/COIL/internal/types"

// Global is `{name, type_code, is_constant, is_external,
// initializer_bytes?, alignment}` per spec.md §3.4.
type Global struct {
	Name        string
	Type        types.Type
	IsConstant  bool
	IsExternal  bool
	Initializer []byte // nil means uninitialized
	Alignment   uint32
}

// NewGlobal returns a global variable descriptor.
func NewGlobal(name string, t types.Type, constant, external bool, alignment uint32) *Global {
	return &Global{Name: name, Type: t, IsConstant: constant, IsExternal: external, Alignment: alignment}
}
