package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"flexstarter/internal/providers"
)

// ComputeService implements providers.ComputeProvider on top of the EC2 API.
type ComputeService struct {
	client EC2ClientAPI
}

// NewComputeServiceWithDefaultConfig creates a new ComputeService with the default AWS SDK configuration
func NewComputeServiceWithDefaultConfig(ctx context.Context, region string) (*ComputeService, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return NewComputeServiceWithClient(ec2.NewFromConfig(cfg)), nil
}

// NewComputeServiceWithClient creates a new ComputeService with a provided client
func NewComputeServiceWithClient(client EC2ClientAPI) *ComputeService {
	return &ComputeService{
		client: client,
	}
}

// NewEC2Client creates an EC2 client from the default AWS configuration.
// Use it when the compute service and the catalog should share one client.
func NewEC2Client(ctx context.Context, region string) (EC2ClientAPI, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return ec2.NewFromConfig(cfg), nil
}

func loadConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return cfg, nil
}

// StartInstance starts a stopped instance.
func (s *ComputeService) StartInstance(ctx context.Context, instanceID string) error {
	_, err := s.client.StartInstances(ctx, &ec2.StartInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return ClassifyError(err, instanceID)
	}
	return nil
}

// StopInstance stops a running instance.
func (s *ComputeService) StopInstance(ctx context.Context, instanceID string) error {
	_, err := s.client.StopInstances(ctx, &ec2.StopInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return ClassifyError(err, instanceID)
	}
	return nil
}

// ModifyInstanceType changes the instance's type. The instance must be
// stopped; EC2 rejects the call otherwise.
func (s *ComputeService) ModifyInstanceType(ctx context.Context, instanceID, newType string) error {
	_, err := s.client.ModifyInstanceAttribute(ctx, &ec2.ModifyInstanceAttributeInput{
		InstanceId: aws.String(instanceID),
		InstanceType: &types.AttributeValue{
			Value: aws.String(newType),
		},
	})
	if err != nil {
		return ClassifyError(err, instanceID)
	}
	return nil
}

// DescribeInstanceState returns the instance's current lifecycle state.
func (s *ComputeService) DescribeInstanceState(ctx context.Context, instanceID string) (providers.InstanceState, error) {
	instance, err := s.describeInstance(ctx, instanceID)
	if err != nil {
		return providers.StateUnknown, err
	}
	if instance.State == nil {
		return providers.StateUnknown, nil
	}
	return providers.InstanceState(instance.State.Name), nil
}

// DescribeInstanceType returns the instance's current type name.
func (s *ComputeService) DescribeInstanceType(ctx context.Context, instanceID string) (string, error) {
	instance, err := s.describeInstance(ctx, instanceID)
	if err != nil {
		return "", err
	}
	return string(instance.InstanceType), nil
}

// GetTags returns the instance's tag set as a map.
func (s *ComputeService) GetTags(ctx context.Context, instanceID string) (map[string]string, error) {
	instance, err := s.describeInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	return convertTags(instance.Tags), nil
}

// SetTag writes a single tag on the instance.
func (s *ComputeService) SetTag(ctx context.Context, instanceID, key, value string) error {
	_, err := s.client.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{instanceID},
		Tags: []types.Tag{
			{Key: aws.String(key), Value: aws.String(value)},
		},
	})
	if err != nil {
		return ClassifyError(err, instanceID)
	}
	return nil
}

// RemoveTag deletes a single tag from the instance.
func (s *ComputeService) RemoveTag(ctx context.Context, instanceID, key string) error {
	_, err := s.client.DeleteTags(ctx, &ec2.DeleteTagsInput{
		Resources: []string{instanceID},
		Tags: []types.Tag{
			{Key: aws.String(key)},
		},
	})
	if err != nil {
		return ClassifyError(err, instanceID)
	}
	return nil
}

// describeInstance fetches a single instance record.
func (s *ComputeService) describeInstance(ctx context.Context, instanceID string) (types.Instance, error) {
	resp, err := s.client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return types.Instance{}, ClassifyError(err, instanceID)
	}

	// Ensure we got exactly one reservation with one instance
	if len(resp.Reservations) == 0 || len(resp.Reservations[0].Instances) == 0 {
		return types.Instance{}, providers.NewError(providers.ErrNotFound, instanceID,
			"EC2 instance not found", nil)
	}

	return resp.Reservations[0].Instances[0], nil
}

// convertTags converts AWS SDK tags to a map
func convertTags(tags []types.Tag) map[string]string {
	if len(tags) == 0 {
		return nil
	}

	result := make(map[string]string, len(tags))
	for _, tag := range tags {
		if tag.Key != nil && tag.Value != nil {
			result[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
		}
	}
	return result
}
