package providers

import (
	"context"

	"flexstarter/internal/models"
)

// InstanceState is the lifecycle state of a compute instance as reported by
// the provider.
type InstanceState string

const (
	StatePending      InstanceState = "pending"
	StateRunning      InstanceState = "running"
	StateShuttingDown InstanceState = "shutting-down"
	StateStopping     InstanceState = "stopping"
	StateStopped      InstanceState = "stopped"
	StateTerminated   InstanceState = "terminated"
	StateUnknown      InstanceState = "unknown"
)

// ComputeProvider is the set of compute primitives the controllers invoke.
// Implementations must return errors classified via this package's Error
// type so callers can distinguish capacity failures from everything else.
//
//go:generate mockery --name=ComputeProvider --output=./mocks
type ComputeProvider interface {
	StartInstance(ctx context.Context, instanceID string) error
	StopInstance(ctx context.Context, instanceID string) error
	ModifyInstanceType(ctx context.Context, instanceID, newType string) error
	DescribeInstanceState(ctx context.Context, instanceID string) (InstanceState, error)
	DescribeInstanceType(ctx context.Context, instanceID string) (string, error)
	GetTags(ctx context.Context, instanceID string) (map[string]string, error)
	SetTag(ctx context.Context, instanceID, key, value string) error
	RemoveTag(ctx context.Context, instanceID, key string) error
}

// TypeCatalog is the read-only source of instance type hardware specs.
//
//go:generate mockery --name=TypeCatalog --output=./mocks
type TypeCatalog interface {
	// Lookup returns the spec for a single type name. Unknown names yield
	// an error with category ErrNotFound.
	Lookup(ctx context.Context, typeName string) (models.TypeSpec, error)

	// List returns every spec in the catalog.
	List(ctx context.Context) ([]models.TypeSpec, error)
}
