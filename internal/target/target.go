// Package target implements the two-level architecture/configuration
// descriptor (C10): an Architecture names a vendor and a catalog of
// features, and a Configuration binds an enabled feature subset, resource
// limits, memory geometry, and optimization tunables to one architecture
// (spec.md §4.10).
package target

import (
	"fmt"
	"sort"
	"strings"

	"github.com/LowLevelDaniel/COIL/internal/ir"
)

// Feature is one named capability an architecture may offer (e.g. "sse").
type Feature struct {
	ID          string
	Description string
}

// MemoryOrder is one memory-ordering model a configuration may support.
type MemoryOrder int

const (
	OrderRelaxed MemoryOrder = iota
	OrderAcquireRelease
	OrderSequentiallyConsistent
)

func (o MemoryOrder) String() string {
	switch o {
	case OrderRelaxed:
		return "relaxed"
	case OrderAcquireRelease:
		return "acquire_release"
	case OrderSequentiallyConsistent:
		return "sequentially_consistent"
	default:
		return "unknown"
	}
}

// Architecture names a target family and its feature catalog. Creation
// and feature registration are separate operations, matching the
// create-then-add-feature shape of `original_source`'s target.h.
type Architecture struct {
	Name     string
	Vendor   string
	features map[string]Feature
}

// NewArchitecture creates an architecture with an empty feature catalog.
func NewArchitecture(name, vendor string) *Architecture {
	return &Architecture{Name: name, Vendor: vendor, features: make(map[string]Feature)}
}

// AddFeature registers a catalog entry. Re-adding an id overwrites its
// description.
func (a *Architecture) AddFeature(id, description string) {
	a.features[id] = Feature{ID: id, Description: description}
}

// HasFeature reports whether id is in the architecture's catalog.
func (a *Architecture) HasFeature(id string) bool {
	_, ok := a.features[id]
	return ok
}

// Features returns the architecture's catalog, sorted by id for
// deterministic iteration (summaries and tests both depend on this).
func (a *Architecture) Features() []Feature {
	out := make([]Feature, 0, len(a.features))
	for _, f := range a.features {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Resources describes a configuration's register and vector capacity.
type Resources struct {
	RegisterCount   uint32
	VectorWidthBits uint32
	MinAlignment    uint32
	MemoryOrders    []MemoryOrder
}

// Memory describes a configuration's alignment and cache geometry.
type Memory struct {
	Alignment     uint32
	PageSize      uint32
	CacheLineSize uint32
}

// Optimization carries the tunables a backend consults when deciding how
// aggressively to vectorize or unroll.
type Optimization struct {
	VectorThreshold uint32
	UnrollFactor    uint32
	UseFMA          bool
}

// Configuration binds an architecture to a concrete machine profile: an
// enabled feature subset plus resource/memory/optimization settings.
type Configuration struct {
	Architecture *Architecture
	Name         string
	enabled      map[string]bool
	Resources    Resources
	Memory       Memory
	Optimization Optimization
}

// NewConfiguration creates a configuration bound to arch with no features
// enabled yet.
func NewConfiguration(arch *Architecture, name string) *Configuration {
	return &Configuration{Architecture: arch, Name: name, enabled: make(map[string]bool)}
}

// EnableFeature turns on id, failing if arch's catalog doesn't contain it.
func (c *Configuration) EnableFeature(id string) error {
	if !c.Architecture.HasFeature(id) {
		return fmt.Errorf("target: feature %q not in architecture %q catalog", id, c.Architecture.Name)
	}
	c.enabled[id] = true
	return nil
}

// HasFeature reports whether id is enabled on this configuration.
func (c *Configuration) HasFeature(id string) bool {
	return c.enabled[id]
}

// EnabledFeatures returns every enabled feature id, sorted.
func (c *Configuration) EnabledFeatures() []string {
	out := make([]string, 0, len(c.enabled))
	for id := range c.enabled {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Summary renders a one-shot human-readable description of the
// configuration, printed by `coil assemble --verbose`.
func (c *Configuration) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "target: %s/%s (%s)\n", c.Architecture.Name, c.Architecture.Vendor, c.Name)
	fmt.Fprintf(&b, "  features: %s\n", strings.Join(c.EnabledFeatures(), ", "))
	fmt.Fprintf(&b, "  resources: %d registers, %d-bit vectors, %d-byte min alignment\n",
		c.Resources.RegisterCount, c.Resources.VectorWidthBits, c.Resources.MinAlignment)
	fmt.Fprintf(&b, "  memory: %d-byte alignment, %d-byte pages, %d-byte cache lines\n",
		c.Memory.Alignment, c.Memory.PageSize, c.Memory.CacheLineSize)
	fmt.Fprintf(&b, "  optimization: vector_threshold=%d unroll_factor=%d use_fma=%t\n",
		c.Optimization.VectorThreshold, c.Optimization.UnrollFactor, c.Optimization.UseFMA)
	return b.String()
}

// SatisfiesRequirements reports whether c enables every feature req.Required
// names. Preferred features and DeviceClass are advisory and never fail
// the check (spec.md §4.10, §3.3).
func (c *Configuration) SatisfiesRequirements(req ir.TargetRequirements) (bool, []string) {
	var missing []string
	for _, id := range req.Required {
		if !c.HasFeature(id) {
			missing = append(missing, id)
		}
	}
	return len(missing) == 0, missing
}

// Default returns the built-in x86_64/generic descriptor spec.md §4.10
// specifies: sse and sse2 enabled, 16 GPRs, 128-bit vectors, 8-byte
// alignment, 4 KB pages, 64-byte cache lines.
func Default() *Configuration {
	arch := NewArchitecture("x86_64", "generic")
	arch.AddFeature("sse", "Streaming SIMD Extensions")
	arch.AddFeature("sse2", "Streaming SIMD Extensions 2")

	cfg := NewConfiguration(arch, "default")
	_ = cfg.EnableFeature("sse")
	_ = cfg.EnableFeature("sse2")
	cfg.Resources = Resources{
		RegisterCount:   16,
		VectorWidthBits: 128,
		MinAlignment:    8,
		MemoryOrders:    []MemoryOrder{OrderRelaxed, OrderAcquireRelease, OrderSequentiallyConsistent},
	}
	cfg.Memory = Memory{Alignment: 8, PageSize: 4096, CacheLineSize: 64}
	cfg.Optimization = Optimization{VectorThreshold: 4, UnrollFactor: 1, UseFMA: false}
	return cfg
}
