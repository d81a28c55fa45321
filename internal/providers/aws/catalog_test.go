package aws

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flexstarter/internal/models"
	"flexstarter/internal/providers"
	"flexstarter/internal/providers/aws/mocks"
)

func instanceTypeInfo(name string, vcpu int32, memoryMiB int64, manufacturer string, bareMetal bool) types.InstanceTypeInfo {
	return types.InstanceTypeInfo{
		InstanceType: types.InstanceType(name),
		VCpuInfo:     &types.VCpuInfo{DefaultVCpus: aws.Int32(vcpu)},
		MemoryInfo:   &types.MemoryInfo{SizeInMiB: aws.Int64(memoryMiB)},
		ProcessorInfo: &types.ProcessorInfo{
			Manufacturer: aws.String(manufacturer),
		},
		BareMetal: aws.Bool(bareMetal),
	}
}

func TestCatalogLookup(t *testing.T) {
	mockClient := mocks.NewEC2ClientAPI(t)
	mockClient.On("DescribeInstanceTypes",
		mock.Anything,
		mock.MatchedBy(func(input *ec2.DescribeInstanceTypesInput) bool {
			return len(input.InstanceTypes) == 1 && input.InstanceTypes[0] == "c5a.large"
		}),
	).Return(&ec2.DescribeInstanceTypesOutput{
		InstanceTypes: []types.InstanceTypeInfo{
			instanceTypeInfo("c5a.large", 2, 4096, "AMD", false),
		},
	}, nil).Once()

	catalog := NewCatalogServiceWithClient(mockClient)
	spec, err := catalog.Lookup(context.Background(), "c5a.large")
	require.NoError(t, err)

	assert.Equal(t, models.TypeSpec{
		Name:       "c5a.large",
		Family:     "c",
		Generation: 5,
		Size:       "large",
		VCPU:       2,
		MemoryMiB:  4096,
		Vendor:     models.VendorAMD,
		BareMetal:  false,
	}, spec)

	// Second lookup is served from the cache; the Once() expectation
	// fails the test if the API is hit again.
	cached, err := catalog.Lookup(context.Background(), "c5a.large")
	require.NoError(t, err)
	assert.Equal(t, spec, cached)
}

func TestCatalogLookupUnknownType(t *testing.T) {
	mockClient := mocks.NewEC2ClientAPI(t)
	mockClient.On("DescribeInstanceTypes", mock.Anything, mock.Anything).
		Return(&ec2.DescribeInstanceTypesOutput{}, nil)

	catalog := NewCatalogServiceWithClient(mockClient)
	_, err := catalog.Lookup(context.Background(), "c5.enormous")

	require.Error(t, err)
	assert.True(t, providers.IsErrorCategory(err, providers.ErrNotFound))
}

func TestCatalogListPaginates(t *testing.T) {
	mockClient := mocks.NewEC2ClientAPI(t)
	mockClient.On("DescribeInstanceTypes",
		mock.Anything,
		mock.MatchedBy(func(input *ec2.DescribeInstanceTypesInput) bool {
			return input.NextToken == nil
		}),
	).Return(&ec2.DescribeInstanceTypesOutput{
		InstanceTypes: []types.InstanceTypeInfo{
			instanceTypeInfo("c5.large", 2, 4096, "Intel", false),
		},
		NextToken: aws.String("page-2"),
	}, nil).Once()
	mockClient.On("DescribeInstanceTypes",
		mock.Anything,
		mock.MatchedBy(func(input *ec2.DescribeInstanceTypesInput) bool {
			return aws.ToString(input.NextToken) == "page-2"
		}),
	).Return(&ec2.DescribeInstanceTypesOutput{
		InstanceTypes: []types.InstanceTypeInfo{
			instanceTypeInfo("c5.metal", 96, 196608, "Intel", true),
		},
	}, nil).Once()

	catalog := NewCatalogServiceWithClient(mockClient)
	specs, err := catalog.List(context.Background())
	require.NoError(t, err)

	require.Len(t, specs, 2)
	assert.Equal(t, "c5.large", specs[0].Name)
	assert.Equal(t, "c5.metal", specs[1].Name)
	assert.True(t, specs[1].BareMetal)

	// Listing is memoized.
	again, err := catalog.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, specs, again)
}
