package aws

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"flexstarter/internal/models"
	"flexstarter/internal/providers"
)

// CatalogService implements providers.TypeCatalog on top of
// DescribeInstanceTypes. Specs are immutable, so both single lookups and the
// full listing are memoized for the life of the service.
type CatalogService struct {
	client EC2ClientAPI

	mu    sync.Mutex
	cache map[string]models.TypeSpec
	all   []models.TypeSpec
}

// NewCatalogServiceWithClient creates a new CatalogService with a provided client
func NewCatalogServiceWithClient(client EC2ClientAPI) *CatalogService {
	return &CatalogService{
		client: client,
		cache:  make(map[string]models.TypeSpec),
	}
}

// NewCatalogServiceWithDefaultConfig creates a new CatalogService with the default AWS SDK configuration
func NewCatalogServiceWithDefaultConfig(ctx context.Context, region string) (*CatalogService, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return NewCatalogServiceWithClient(ec2.NewFromConfig(cfg)), nil
}

// Lookup returns the spec for a single type name.
func (s *CatalogService) Lookup(ctx context.Context, typeName string) (models.TypeSpec, error) {
	s.mu.Lock()
	if spec, ok := s.cache[typeName]; ok {
		s.mu.Unlock()
		return spec, nil
	}
	s.mu.Unlock()

	resp, err := s.client.DescribeInstanceTypes(ctx, &ec2.DescribeInstanceTypesInput{
		InstanceTypes: []types.InstanceType{types.InstanceType(typeName)},
	})
	if err != nil {
		return models.TypeSpec{}, ClassifyError(err, "")
	}
	if len(resp.InstanceTypes) == 0 {
		return models.TypeSpec{}, providers.NewError(providers.ErrNotFound, "",
			"unknown instance type: "+typeName, nil)
	}

	spec := specFromInstanceTypeInfo(resp.InstanceTypes[0])
	s.mu.Lock()
	s.cache[spec.Name] = spec
	s.mu.Unlock()
	return spec, nil
}

// List returns every instance type visible in the region, paginating
// through DescribeInstanceTypes.
func (s *CatalogService) List(ctx context.Context) ([]models.TypeSpec, error) {
	s.mu.Lock()
	if s.all != nil {
		all := s.all
		s.mu.Unlock()
		return all, nil
	}
	s.mu.Unlock()

	var specs []models.TypeSpec
	var nextToken *string
	for {
		resp, err := s.client.DescribeInstanceTypes(ctx, &ec2.DescribeInstanceTypesInput{
			NextToken: nextToken,
		})
		if err != nil {
			return nil, ClassifyError(err, "")
		}
		for _, info := range resp.InstanceTypes {
			specs = append(specs, specFromInstanceTypeInfo(info))
		}
		if resp.NextToken == nil {
			break
		}
		nextToken = resp.NextToken
	}

	s.mu.Lock()
	s.all = specs
	for _, spec := range specs {
		s.cache[spec.Name] = spec
	}
	s.mu.Unlock()
	return specs, nil
}

// specFromInstanceTypeInfo converts an SDK instance type record to the
// domain spec.
func specFromInstanceTypeInfo(info types.InstanceTypeInfo) models.TypeSpec {
	name := string(info.InstanceType)
	family, generation, size := models.ParseTypeName(name)

	spec := models.TypeSpec{
		Name:       name,
		Family:     family,
		Generation: generation,
		Size:       size,
		BareMetal:  aws.ToBool(info.BareMetal) || models.IsBareMetalSize(size),
	}
	if info.VCpuInfo != nil {
		spec.VCPU = int(aws.ToInt32(info.VCpuInfo.DefaultVCpus))
	}
	if info.MemoryInfo != nil {
		spec.MemoryMiB = int(aws.ToInt64(info.MemoryInfo.SizeInMiB))
	}
	if info.ProcessorInfo != nil {
		if vendor, ok := models.ParseCPUVendor(aws.ToString(info.ProcessorInfo.Manufacturer)); ok {
			spec.Vendor = vendor
		}
	}
	return spec
}
