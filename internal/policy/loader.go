package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"flexstarter/internal/models"
)

// supportedVersion is the only document schema version in circulation.
const supportedVersion = 1

// jsonDocument mirrors the JSON policy document layout.
type jsonDocument struct {
	Version int          `json:"version"`
	Default jsonSettings `json:"default"`
}

type jsonSettings struct {
	MemoryBufferPercentage *int     `json:"memoryBufferPercentage"`
	CPUManufacturers       []string `json:"cpuManufacturers"`
	ExcludedInstanceTypes  []string `json:"excludedInstanceTypes"`
	BareMetal              *string  `json:"bareMetal"`
}

// hclDocument mirrors the HCL policy document layout.
type hclDocument struct {
	Version int          `hcl:"version,optional"`
	Default *hclSettings `hcl:"default,block"`
}

type hclSettings struct {
	MemoryBufferPercentage *int     `hcl:"memory_buffer_percentage,optional"`
	CPUManufacturers       []string `hcl:"cpu_manufacturers,optional"`
	ExcludedInstanceTypes  []string `hcl:"excluded_instance_types,optional"`
	BareMetal              *string  `hcl:"bare_metal,optional"`
}

// Load reads a policy document from disk, dispatching on the file
// extension: ".hcl" is parsed as HCL, everything else as JSON.
func Load(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read policy document %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		return ParseHCL(data, path)
	}
	return ParseJSON(data)
}

// ParseJSON decodes a JSON policy document.
func ParseJSON(data []byte) (Policy, error) {
	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Policy{}, fmt.Errorf("failed to decode policy document: %w", err)
	}
	if doc.Version != 0 && doc.Version != supportedVersion {
		return Policy{}, fmt.Errorf("unsupported policy document version %d", doc.Version)
	}

	return fromSettings(doc.Default.MemoryBufferPercentage, doc.Default.CPUManufacturers,
		doc.Default.ExcludedInstanceTypes, doc.Default.BareMetal)
}

// ParseHCL decodes an HCL policy document.
func ParseHCL(data []byte, filename string) (Policy, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return Policy{}, fmt.Errorf("failed to parse HCL policy document %s: %s", filename, diags.Error())
	}
	if file == nil || file.Body == nil {
		return Policy{}, fmt.Errorf("parsed HCL policy document is empty or invalid: %s", filename)
	}

	var doc hclDocument
	diags = gohcl.DecodeBody(file.Body, nil, &doc)
	if diags.HasErrors() {
		return Policy{}, fmt.Errorf("failed to decode HCL policy document %s: %s", filename, diags.Error())
	}
	if doc.Version != 0 && doc.Version != supportedVersion {
		return Policy{}, fmt.Errorf("unsupported policy document version %d", doc.Version)
	}

	if doc.Default == nil {
		return Default(), nil
	}
	return fromSettings(doc.Default.MemoryBufferPercentage, doc.Default.CPUManufacturers,
		doc.Default.ExcludedInstanceTypes, doc.Default.BareMetal)
}

// fromSettings overlays present document fields on the defaults and
// validates the result. A typo in the vendor list or bare-metal mode is an
// error rather than a silently shrunk allow-list.
func fromSettings(buffer *int, manufacturers, excluded []string, bareMetal *string) (Policy, error) {
	pol := Default()

	if buffer != nil {
		pol.MemoryBufferPercent = *buffer
	}

	if manufacturers != nil {
		vendors := make(map[models.CPUVendor]bool, len(manufacturers))
		for _, raw := range manufacturers {
			vendor, ok := models.ParseCPUVendor(raw)
			if !ok {
				return Policy{}, fmt.Errorf("unknown CPU manufacturer %q", raw)
			}
			vendors[vendor] = true
		}
		pol.AllowedVendors = vendors
	}

	if excluded != nil {
		pol.ExclusionPatterns = append([]string(nil), excluded...)
	}

	if bareMetal != nil {
		pol.BareMetalMode = BareMetalMode(strings.ToLower(strings.TrimSpace(*bareMetal)))
	}

	if err := pol.Validate(); err != nil {
		return Policy{}, err
	}
	return pol, nil
}
