package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"flexstarter/internal/models"
	"flexstarter/internal/policy"
)

// spec is a shorthand fixture constructor.
func spec(name string, vcpu, memoryMiB int, vendor models.CPUVendor, bareMetal bool) models.TypeSpec {
	family, generation, size := models.ParseTypeName(name)
	return models.TypeSpec{
		Name:       name,
		Family:     family,
		Generation: generation,
		Size:       size,
		VCPU:       vcpu,
		MemoryMiB:  memoryMiB,
		Vendor:     vendor,
		BareMetal:  bareMetal,
	}
}

func intelOnlyPolicy(bufferPercent int) policy.Policy {
	pol := policy.Default()
	pol.MemoryBufferPercent = bufferPercent
	return pol
}

func names(specs []models.TypeSpec) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.Name
	}
	return out
}

func TestFindCandidatesMemoryBufferBoundary(t *testing.T) {
	failed := spec("m5.large", 2, 8192, models.VendorIntel, false)
	// 8192 * 0.95 truncates to 7782: exactly on the floor is admitted,
	// one MiB below is not.
	catalog := []models.TypeSpec{
		spec("r5.large", 2, 7782, models.VendorIntel, false),
		spec("c5.large", 2, 7781, models.VendorIntel, false),
	}

	got := FindCandidates(failed, intelOnlyPolicy(5), catalog, map[string]bool{"m5.large": true})
	assert.Equal(t, []string{"r5.large"}, names(got))
}

func TestFindCandidatesZeroBuffer(t *testing.T) {
	failed := spec("m5.large", 2, 8192, models.VendorIntel, false)
	catalog := []models.TypeSpec{
		spec("r5.large", 2, 8192, models.VendorIntel, false),
		spec("c5.large", 2, 8191, models.VendorIntel, false),
	}

	got := FindCandidates(failed, intelOnlyPolicy(0), catalog, nil)
	assert.Equal(t, []string{"r5.large"}, names(got))
}

func TestFindCandidatesNeverRegressesCompute(t *testing.T) {
	failed := spec("c5.xlarge", 4, 8192, models.VendorIntel, false)
	catalog := []models.TypeSpec{
		spec("c5.large", 2, 8192, models.VendorIntel, false),
		spec("m5.xlarge", 4, 8192, models.VendorIntel, false),
		spec("m5.2xlarge", 8, 8192, models.VendorIntel, false),
	}

	got := FindCandidates(failed, intelOnlyPolicy(5), catalog, nil)
	assert.Equal(t, []string{"m5.xlarge", "m5.2xlarge"}, names(got))
}

func TestFindCandidatesVendorAllowList(t *testing.T) {
	failed := spec("c5.large", 2, 4096, models.VendorIntel, false)
	catalog := []models.TypeSpec{
		spec("c5a.large", 2, 4096, models.VendorAMD, false),
		spec("c6g.large", 2, 4096, models.VendorAWS, false),
		spec("m5.large", 2, 8192, models.VendorIntel, false),
	}

	pol := intelOnlyPolicy(5)
	got := FindCandidates(failed, pol, catalog, nil)
	assert.Equal(t, []string{"m5.large"}, names(got))

	pol.AllowedVendors = map[models.CPUVendor]bool{
		models.VendorIntel: true,
		models.VendorAMD:   true,
	}
	got = FindCandidates(failed, pol, catalog, nil)
	assert.Equal(t, []string{"c5a.large", "m5.large"}, names(got))
}

func TestFindCandidatesBareMetalModes(t *testing.T) {
	failed := spec("c5.large", 2, 4096, models.VendorIntel, false)
	catalog := []models.TypeSpec{
		spec("c5.metal", 96, 196608, models.VendorIntel, true),
		spec("m5.large", 2, 8192, models.VendorIntel, false),
	}

	tests := []struct {
		name string
		mode policy.BareMetalMode
		want []string
	}{
		{
			name: "included admits both",
			mode: policy.BareMetalIncluded,
			want: []string{"m5.large", "c5.metal"},
		},
		{
			name: "required keeps only bare metal",
			mode: policy.BareMetalRequired,
			want: []string{"c5.metal"},
		},
		{
			name: "excluded drops bare metal",
			mode: policy.BareMetalExcluded,
			want: []string{"m5.large"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pol := intelOnlyPolicy(5)
			pol.BareMetalMode = tt.mode
			got := FindCandidates(failed, pol, catalog, nil)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestFindCandidatesExclusionPatterns(t *testing.T) {
	failed := spec("c5.large", 2, 4096, models.VendorIntel, false)
	catalog := []models.TypeSpec{
		spec("c5a.large", 2, 4096, models.VendorIntel, false),
		spec("c5n.large", 2, 5376, models.VendorIntel, false),
		spec("m5.large", 2, 8192, models.VendorIntel, false),
	}

	pol := intelOnlyPolicy(5)
	pol.ExclusionPatterns = []string{"c5*"}

	got := FindCandidates(failed, pol, catalog, nil)
	assert.Equal(t, []string{"m5.large"}, names(got))
}

func TestFindCandidatesSkipsTriedAndSelf(t *testing.T) {
	failed := spec("c5.large", 2, 4096, models.VendorIntel, false)
	catalog := []models.TypeSpec{
		spec("c5.large", 2, 4096, models.VendorIntel, false),
		spec("c5a.large", 2, 4096, models.VendorIntel, false),
		spec("m5.large", 2, 8192, models.VendorIntel, false),
	}

	tried := map[string]bool{"c5.large": true, "c5a.large": true}
	got := FindCandidates(failed, intelOnlyPolicy(5), catalog, tried)
	assert.Equal(t, []string{"m5.large"}, names(got))
}

func TestFindCandidatesRanking(t *testing.T) {
	failed := spec("c5.large", 2, 4096, models.VendorIntel, false)
	catalog := []models.TypeSpec{
		spec("m5.large", 2, 8192, models.VendorIntel, false),
		spec("c5n.large", 2, 5376, models.VendorIntel, false),
		spec("c5a.large", 2, 4096, models.VendorIntel, false),
		spec("c4.xlarge", 4, 4096, models.VendorIntel, false),
		spec("c4.large", 2, 4096, models.VendorIntel, false),
	}

	got := FindCandidates(failed, intelOnlyPolicy(5), catalog, nil)
	// Memory closeness first, vCPU closeness second, name last:
	// c4.large and c5a.large tie on both keys and fall back to lexical
	// order; c4.xlarge loses the vCPU tie-break; the rest trail by
	// memory distance.
	assert.Equal(t, []string{"c4.large", "c5a.large", "c4.xlarge", "c5n.large", "m5.large"}, names(got))
}

func TestFindCandidatesDeterminism(t *testing.T) {
	failed := spec("c5.large", 2, 4096, models.VendorIntel, false)
	catalog := []models.TypeSpec{
		spec("m5.large", 2, 8192, models.VendorIntel, false),
		spec("c5a.large", 2, 4096, models.VendorIntel, false),
		spec("c5n.large", 2, 5376, models.VendorIntel, false),
		spec("c4.large", 2, 4096, models.VendorIntel, false),
	}
	tried := map[string]bool{"c5.large": true}

	first := FindCandidates(failed, intelOnlyPolicy(5), catalog, tried)
	second := FindCandidates(failed, intelOnlyPolicy(5), catalog, tried)
	assert.Equal(t, first, second)
}

func TestFindCandidatesDeduplicates(t *testing.T) {
	failed := spec("c5.large", 2, 4096, models.VendorIntel, false)
	catalog := []models.TypeSpec{
		spec("m5.large", 2, 8192, models.VendorIntel, false),
		spec("m5.large", 2, 8192, models.VendorIntel, false),
	}

	got := FindCandidates(failed, intelOnlyPolicy(5), catalog, nil)
	assert.Equal(t, []string{"m5.large"}, names(got))
}

func TestFindCandidatesExhaustion(t *testing.T) {
	failed := spec("c5.large", 2, 4096, models.VendorIntel, false)
	catalog := []models.TypeSpec{
		spec("c5a.large", 2, 4096, models.VendorAMD, false),
		spec("t3.small", 2, 2048, models.VendorIntel, false),
	}

	got := FindCandidates(failed, intelOnlyPolicy(5), catalog, nil)
	assert.Empty(t, got)
}
