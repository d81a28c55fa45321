// Package policy holds the substitution policy document: how far a
// comparable type may deviate from the original, and which parts of the
// catalog are off limits.
package policy

import (
	"fmt"

	"flexstarter/internal/models"
)

// BareMetalMode controls whether bare-metal types may be considered.
type BareMetalMode string

const (
	// BareMetalIncluded admits both bare-metal and virtualized types.
	BareMetalIncluded BareMetalMode = "included"

	// BareMetalRequired admits only bare-metal types.
	BareMetalRequired BareMetalMode = "required"

	// BareMetalExcluded rejects bare-metal types.
	BareMetalExcluded BareMetalMode = "excluded"
)

// Policy is the validated, immutable substitution policy for one recovery
// run.
type Policy struct {
	// MemoryBufferPercent is how far below the original's memory a
	// candidate may fall, in percent.
	MemoryBufferPercent int

	// AllowedVendors is the CPU manufacturer allow-list.
	AllowedVendors map[models.CPUVendor]bool

	// ExclusionPatterns are wildcard patterns; a type matching any of
	// them is never selected.
	ExclusionPatterns []string

	// BareMetalMode is the bare-metal tri-state filter.
	BareMetalMode BareMetalMode
}

// Default returns the policy used when no document is supplied:
// 5% memory buffer, Intel only, no exclusions, bare metal included.
func Default() Policy {
	return Policy{
		MemoryBufferPercent: 5,
		AllowedVendors:      map[models.CPUVendor]bool{models.VendorIntel: true},
		BareMetalMode:       BareMetalIncluded,
	}
}

// VendorAllowed reports whether the vendor passes the allow-list.
func (p Policy) VendorAllowed(v models.CPUVendor) bool {
	return p.AllowedVendors[v]
}

// Validate checks the policy's internal consistency.
func (p Policy) Validate() error {
	if p.MemoryBufferPercent < 0 {
		return fmt.Errorf("memory buffer percentage must not be negative, got %d", p.MemoryBufferPercent)
	}
	if p.MemoryBufferPercent > 100 {
		return fmt.Errorf("memory buffer percentage must not exceed 100, got %d", p.MemoryBufferPercent)
	}
	if len(p.AllowedVendors) == 0 {
		return fmt.Errorf("at least one CPU manufacturer must be allowed")
	}
	switch p.BareMetalMode {
	case BareMetalIncluded, BareMetalRequired, BareMetalExcluded:
	default:
		return fmt.Errorf("unknown bare metal mode %q", p.BareMetalMode)
	}
	return nil
}
