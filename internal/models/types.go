package models

import (
	"strconv"
	"strings"
)

// CPUVendor identifies the manufacturer of an instance type's processor.
type CPUVendor string

const (
	VendorIntel CPUVendor = "intel"
	VendorAMD   CPUVendor = "amd"
	VendorAWS   CPUVendor = "aws"
	VendorApple CPUVendor = "apple"
)

// vendorAliases maps the spellings used by policy documents and the EC2
// DescribeInstanceTypes API onto the canonical vendor values.
var vendorAliases = map[string]CPUVendor{
	"intel":               VendorIntel,
	"amd":                 VendorAMD,
	"aws":                 VendorAWS,
	"amazon-web-services": VendorAWS,
	"amazon web services": VendorAWS,
	"apple":               VendorApple,
}

// ParseCPUVendor resolves a vendor string to its canonical value.
// The second return value is false for unrecognized vendors.
func ParseCPUVendor(s string) (CPUVendor, bool) {
	v, ok := vendorAliases[strings.ToLower(strings.TrimSpace(s))]
	return v, ok
}

// TypeSpec is the hardware specification of a single instance type, as
// reported by the type catalog. Immutable once constructed.
type TypeSpec struct {
	Name       string    `json:"name"`
	Family     string    `json:"family"`
	Generation int       `json:"generation"`
	Size       string    `json:"size"`
	VCPU       int       `json:"vcpu"`
	MemoryMiB  int       `json:"memoryMiB"`
	Vendor     CPUVendor `json:"vendor"`
	BareMetal  bool      `json:"bareMetal"`
}

// ParseTypeName splits an instance type name like "c5a.large" into its
// family letters, generation number, and size. Attribute letters after the
// generation digits ("a", "n", "d", ...) are not broken out separately.
// Names that don't follow the family-generation.size convention come back
// with zero values for the parts that are missing.
func ParseTypeName(name string) (family string, generation int, size string) {
	prefix := name
	if i := strings.IndexByte(name, '.'); i >= 0 {
		prefix = name[:i]
		size = name[i+1:]
	}

	letters := 0
	for letters < len(prefix) && !isDigit(prefix[letters]) {
		letters++
	}
	family = prefix[:letters]

	digits := letters
	for digits < len(prefix) && isDigit(prefix[digits]) {
		digits++
	}
	if digits > letters {
		generation, _ = strconv.Atoi(prefix[letters:digits])
	}
	return family, generation, size
}

// IsBareMetalSize reports whether a size string denotes a bare-metal
// variant ("metal", "metal-24xl", ...).
func IsBareMetalSize(size string) bool {
	return size == "metal" || strings.HasPrefix(size, "metal-")
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// ManagedInstance is the controller-side view of one instance under
// management. OriginalType is empty unless the durable original-type tag is
// present on the instance.
type ManagedInstance struct {
	ID           string `json:"instanceId"`
	CurrentType  string `json:"currentType"`
	OriginalType string `json:"originalType,omitempty"`
}
