// Package matcher selects comparable substitute instance types. The search
// is a pure function over the catalog: same inputs, same ranked output.
package matcher

import (
	"sort"

	"flexstarter/internal/models"
	"flexstarter/internal/policy"
)

// FindCandidates returns the catalog entries that could replace failedType
// under the given policy, ranked best-first. Types named in alreadyTried
// and the failed type itself are never returned. An empty result means the
// candidate pool is exhausted.
func FindCandidates(
	failedType models.TypeSpec,
	pol policy.Policy,
	catalog []models.TypeSpec,
	alreadyTried map[string]bool,
) []models.TypeSpec {
	floor := memoryFloor(failedType.MemoryMiB, pol.MemoryBufferPercent)

	var candidates []models.TypeSpec
	seen := make(map[string]bool, len(catalog))
	for _, spec := range catalog {
		if seen[spec.Name] {
			continue
		}
		seen[spec.Name] = true
		if !admissible(spec, failedType, pol, floor, alreadyTried) {
			continue
		}
		candidates = append(candidates, spec)
	}

	rank(candidates, failedType)
	return candidates
}

// memoryFloor computes the lowest admissible memory size. Integer
// truncation, so an 8192 MiB original with a 5% buffer admits exactly
// 7782 MiB.
func memoryFloor(memoryMiB, bufferPercent int) int {
	return memoryMiB * (100 - bufferPercent) / 100
}

// admissible applies every policy filter to one catalog entry.
func admissible(
	spec, failedType models.TypeSpec,
	pol policy.Policy,
	floor int,
	alreadyTried map[string]bool,
) bool {
	if spec.Name == failedType.Name || alreadyTried[spec.Name] {
		return false
	}
	if spec.MemoryMiB < floor {
		return false
	}
	// Never regress compute.
	if spec.VCPU < failedType.VCPU {
		return false
	}
	if !pol.VendorAllowed(spec.Vendor) {
		return false
	}
	switch pol.BareMetalMode {
	case policy.BareMetalRequired:
		if !spec.BareMetal {
			return false
		}
	case policy.BareMetalExcluded:
		if spec.BareMetal {
			return false
		}
	}
	if MatchAny(pol.ExclusionPatterns, spec.Name) {
		return false
	}
	return true
}

// rank orders candidates by memory closeness to the original, then vCPU
// closeness, then name.
func rank(candidates []models.TypeSpec, failedType models.TypeSpec) {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]

		memA := absDiff(a.MemoryMiB, failedType.MemoryMiB)
		memB := absDiff(b.MemoryMiB, failedType.MemoryMiB)
		if memA != memB {
			return memA < memB
		}

		cpuA := absDiff(a.VCPU, failedType.VCPU)
		cpuB := absDiff(b.VCPU, failedType.VCPU)
		if cpuA != cpuB {
			return cpuA < cpuB
		}

		return a.Name < b.Name
	})
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
