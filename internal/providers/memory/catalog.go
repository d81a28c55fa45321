package memory

import (
	"context"

	"flexstarter/internal/models"
	"flexstarter/internal/providers"
)

// Catalog is a static providers.TypeCatalog backed by a fixed spec list.
type Catalog struct {
	specs map[string]models.TypeSpec
	order []string
}

// NewCatalog builds a catalog from the given specs.
func NewCatalog(specs ...models.TypeSpec) *Catalog {
	c := &Catalog{
		specs: make(map[string]models.TypeSpec, len(specs)),
	}
	for _, spec := range specs {
		if _, ok := c.specs[spec.Name]; !ok {
			c.order = append(c.order, spec.Name)
		}
		c.specs[spec.Name] = spec
	}
	return c
}

// Lookup returns the spec for a single type name.
func (c *Catalog) Lookup(ctx context.Context, typeName string) (models.TypeSpec, error) {
	spec, ok := c.specs[typeName]
	if !ok {
		return models.TypeSpec{}, providers.NewError(providers.ErrNotFound, "",
			"unknown instance type: "+typeName, nil)
	}
	return spec, nil
}

// List returns all specs in insertion order.
func (c *Catalog) List(ctx context.Context) ([]models.TypeSpec, error) {
	specs := make([]models.TypeSpec, 0, len(c.order))
	for _, name := range c.order {
		specs = append(specs, c.specs[name])
	}
	return specs, nil
}
