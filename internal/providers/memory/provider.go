// Package memory provides in-memory implementations of the provider
// interfaces so controller logic can be exercised without a live compute
// service.
package memory

import (
	"context"
	"sync"

	"flexstarter/internal/providers"
)

// Instance is the in-memory record backing one instance id.
type Instance struct {
	Type  string
	State providers.InstanceState
	Tags  map[string]string

	// startResults is a queue of results for successive StartInstance
	// calls; nil means success. Once drained, starts succeed.
	startResults []error

	// stateSequence is a queue of states returned by successive
	// DescribeInstanceState calls; once drained, State is returned.
	stateSequence []providers.InstanceState
}

// Provider is an in-memory providers.ComputeProvider. All mutating calls
// are counted so tests can assert an instance was never touched.
type Provider struct {
	mu        sync.Mutex
	instances map[string]*Instance
	mutations int

	// ModifyCalls records every type modification in order.
	ModifyCalls []string
}

// NewProvider creates an empty in-memory provider.
func NewProvider() *Provider {
	return &Provider{
		instances: make(map[string]*Instance),
	}
}

// AddInstance registers an instance. The tags map is copied.
func (p *Provider) AddInstance(id, instanceType string, state providers.InstanceState, tags map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	copied := make(map[string]string, len(tags))
	for k, v := range tags {
		copied[k] = v
	}
	p.instances[id] = &Instance{
		Type:  instanceType,
		State: state,
		Tags:  copied,
	}
}

// ScriptStartResults queues results for successive StartInstance calls on
// the given id; nil entries mean success.
func (p *Provider) ScriptStartResults(id string, results ...error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if inst, ok := p.instances[id]; ok {
		inst.startResults = append(inst.startResults, results...)
	}
}

// ScriptStates queues states for successive DescribeInstanceState calls on
// the given id.
func (p *Provider) ScriptStates(id string, states ...providers.InstanceState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if inst, ok := p.instances[id]; ok {
		inst.stateSequence = append(inst.stateSequence, states...)
	}
}

// Mutations returns how many mutating provider calls have been made.
func (p *Provider) Mutations() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mutations
}

// InstanceType returns the instance's current type.
func (p *Provider) InstanceType(id string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if inst, ok := p.instances[id]; ok {
		return inst.Type
	}
	return ""
}

// Tags returns a copy of the instance's tags.
func (p *Provider) Tags(id string) map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	inst, ok := p.instances[id]
	if !ok {
		return nil
	}
	copied := make(map[string]string, len(inst.Tags))
	for k, v := range inst.Tags {
		copied[k] = v
	}
	return copied
}

func (p *Provider) get(id string) (*Instance, error) {
	inst, ok := p.instances[id]
	if !ok {
		return nil, providers.NewError(providers.ErrNotFound, id, "instance not found", nil)
	}
	return inst, nil
}

// StartInstance pops the next scripted start result; success transitions
// the instance to running.
func (p *Provider) StartInstance(ctx context.Context, instanceID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	inst, err := p.get(instanceID)
	if err != nil {
		return err
	}
	p.mutations++

	var result error
	if len(inst.startResults) > 0 {
		result = inst.startResults[0]
		inst.startResults = inst.startResults[1:]
	}
	if result == nil {
		inst.State = providers.StateRunning
	}
	return result
}

// StopInstance transitions the instance to stopped.
func (p *Provider) StopInstance(ctx context.Context, instanceID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	inst, err := p.get(instanceID)
	if err != nil {
		return err
	}
	p.mutations++
	inst.State = providers.StateStopped
	return nil
}

// ModifyInstanceType sets the instance's type.
func (p *Provider) ModifyInstanceType(ctx context.Context, instanceID, newType string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	inst, err := p.get(instanceID)
	if err != nil {
		return err
	}
	p.mutations++
	inst.Type = newType
	p.ModifyCalls = append(p.ModifyCalls, instanceID+"="+newType)
	return nil
}

// DescribeInstanceState pops the next scripted state, falling back to the
// instance's current state.
func (p *Provider) DescribeInstanceState(ctx context.Context, instanceID string) (providers.InstanceState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	inst, err := p.get(instanceID)
	if err != nil {
		return providers.StateUnknown, err
	}
	if len(inst.stateSequence) > 0 {
		state := inst.stateSequence[0]
		inst.stateSequence = inst.stateSequence[1:]
		return state, nil
	}
	return inst.State, nil
}

// DescribeInstanceType returns the instance's current type.
func (p *Provider) DescribeInstanceType(ctx context.Context, instanceID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	inst, err := p.get(instanceID)
	if err != nil {
		return "", err
	}
	return inst.Type, nil
}

// GetTags returns a copy of the instance's tags.
func (p *Provider) GetTags(ctx context.Context, instanceID string) (map[string]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	inst, err := p.get(instanceID)
	if err != nil {
		return nil, err
	}
	copied := make(map[string]string, len(inst.Tags))
	for k, v := range inst.Tags {
		copied[k] = v
	}
	return copied, nil
}

// SetTag writes one tag.
func (p *Provider) SetTag(ctx context.Context, instanceID, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	inst, err := p.get(instanceID)
	if err != nil {
		return err
	}
	p.mutations++
	inst.Tags[key] = value
	return nil
}

// RemoveTag deletes one tag.
func (p *Provider) RemoveTag(ctx context.Context, instanceID, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	inst, err := p.get(instanceID)
	if err != nil {
		return err
	}
	p.mutations++
	delete(inst.Tags, key)
	return nil
}
