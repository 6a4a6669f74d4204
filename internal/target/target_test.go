package target

import (
	"strings"
	"testing"

	"github.com/LowLevelDaniel/COIL/internal/ir"
)

func TestDefaultConfiguration(t *testing.T) {
	cfg := Default()
	if cfg.Architecture.Name != "x86_64" || cfg.Architecture.Vendor != "generic" {
		t.Fatalf("architecture = %s/%s, want x86_64/generic", cfg.Architecture.Name, cfg.Architecture.Vendor)
	}
	if !cfg.HasFeature("sse") || !cfg.HasFeature("sse2") {
		t.Errorf("default config should enable sse and sse2")
	}
	if cfg.Resources.RegisterCount != 16 {
		t.Errorf("RegisterCount = %d, want 16", cfg.Resources.RegisterCount)
	}
	if cfg.Resources.VectorWidthBits != 128 {
		t.Errorf("VectorWidthBits = %d, want 128", cfg.Resources.VectorWidthBits)
	}
	if cfg.Memory.Alignment != 8 || cfg.Memory.PageSize != 4096 || cfg.Memory.CacheLineSize != 64 {
		t.Errorf("Memory = %+v, want {8 4096 64}", cfg.Memory)
	}
}

func TestEnableFeatureRejectsUnknownFeature(t *testing.T) {
	arch := NewArchitecture("test_arch", "test_vendor")
	arch.AddFeature("avx", "Advanced Vector Extensions")
	cfg := NewConfiguration(arch, "c")

	if err := cfg.EnableFeature("avx512"); err == nil {
		t.Fatal("expected an error enabling a feature outside the architecture's catalog")
	}
	if err := cfg.EnableFeature("avx"); err != nil {
		t.Fatalf("unexpected error enabling a cataloged feature: %v", err)
	}
	if !cfg.HasFeature("avx") {
		t.Error("avx should be enabled after EnableFeature")
	}
}

func TestFeaturesAreSortedForDeterministicSummary(t *testing.T) {
	arch := NewArchitecture("a", "v")
	arch.AddFeature("zeta", "")
	arch.AddFeature("alpha", "")
	feats := arch.Features()
	if len(feats) != 2 || feats[0].ID != "alpha" || feats[1].ID != "zeta" {
		t.Errorf("Features() = %+v, want sorted [alpha zeta]", feats)
	}
}

func TestSatisfiesRequirements(t *testing.T) {
	cfg := Default()

	ok, missing := cfg.SatisfiesRequirements(ir.TargetRequirements{Required: []string{"sse"}})
	if !ok || len(missing) != 0 {
		t.Errorf("ok=%v missing=%v, want satisfied", ok, missing)
	}

	ok, missing = cfg.SatisfiesRequirements(ir.TargetRequirements{Required: []string{"sse", "avx512"}})
	if ok || len(missing) != 1 || missing[0] != "avx512" {
		t.Errorf("ok=%v missing=%v, want unsatisfied on avx512", ok, missing)
	}
}

func TestSatisfiesRequirementsIgnoresPreferredAndDeviceClass(t *testing.T) {
	cfg := Default()
	ok, missing := cfg.SatisfiesRequirements(ir.TargetRequirements{
		Required:    []string{"sse2"},
		Preferred:   []string{"avx512"},
		DeviceClass: "gpu",
	})
	if !ok || len(missing) != 0 {
		t.Errorf("preferred/device_class should never fail the check; ok=%v missing=%v", ok, missing)
	}
}

func TestSummaryIncludesCoreFields(t *testing.T) {
	summary := Default().Summary()
	for _, want := range []string{"x86_64", "generic", "sse", "sse2", "16 registers", "128-bit vectors"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary() missing %q:\n%s", want, summary)
		}
	}
}
