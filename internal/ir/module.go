// Package ir implements the COIL in-memory representation: growable
// collections of owned entities with identity semantics (spec.md §4.3).
// Ownership is strict — a Module exclusively owns its type registry,
// globals, functions, and relocations; a Function exclusively owns its
// parameters and blocks; a BasicBlock exclusively owns its instructions;
// an Instruction exclusively owns its operand list.
package ir

import (
	"github.com/google/uuid"

	"github.com/LowLevelDaniel/COIL/internal/types"
)

// RelocationKind identifies how a relocation's addend combines with its
// target symbol at link time. The kind set mirrors common object-format
// relocation types; COIL does not interpret them, only carries them
// (spec.md glossary, "Relocation").
type RelocationKind uint8

const (
	RelocAbsolute RelocationKind = iota
	RelocRelative
)

// Relocation binds a symbol name to a code-section offset, per spec.md
// §3.3.
type Relocation struct {
	Symbol string
	Offset uint32
	Kind   RelocationKind
	Addend int64
}

// TargetRequirements records the features a module needs or prefers from
// a target configuration (C10), plus an optional device-class hint such
// as "cpu" or "gpu".
type TargetRequirements struct {
	Required    []string
	Preferred   []string
	DeviceClass string
}

// Module is the root IR entity: `{name, type_registry, globals,
// functions, target_requirements, relocations}` per spec.md §3.3.
//
// BuildID is a per-module identifier assigned at construction, used by
// the binary codec's metadata section to distinguish independently built
// artifacts that otherwise encode identical bytes.
type Module struct {
	Name       string
	Registry   *types.Registry
	Globals    []*Global
	Functions  []*Function
	TargetReqs TargetRequirements
	Relocs     []Relocation
	BuildID    uuid.UUID
}

// New returns an empty module with a fresh type registry and build ID.
func New(name string) *Module {
	return &Module{
		Name:     name,
		Registry: types.NewRegistry(),
		BuildID:  uuid.New(),
	}
}

// AddGlobal appends g as the module's new last global.
func (m *Module) AddGlobal(g *Global) { m.Globals = append(m.Globals, g) }

// AddFunction appends f as the module's new last function.
func (m *Module) AddFunction(f *Function) { m.Functions = append(m.Functions, f) }

// AddRelocation appends r to the module's relocation list.
func (m *Module) AddRelocation(r Relocation) { m.Relocs = append(m.Relocs, r) }

// Global returns the global named name, or nil. Lookup is linear (§4.3).
func (m *Module) Global(name string) *Global {
	for _, g := range m.Globals {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Function returns the function named name, or nil. Lookup is linear
// (§4.3).
func (m *Module) Function(name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}
