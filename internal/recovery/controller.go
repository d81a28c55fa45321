// Package recovery drives the start-failure workflow: split the failed
// batch, retry each instance on its current type, and fall back to
// comparable substitutes until one starts or the pool is exhausted.
package recovery

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"flexstarter/internal/events"
	"flexstarter/internal/models"
	"flexstarter/internal/policy"
	"flexstarter/internal/providers"
	"flexstarter/pkg/logging"
)

// Config contains the parameters for a recovery service.
type Config struct {
	// ConcurrencyLimit caps how many instances are worked concurrently
	// (0 = unlimited). Cross-instance state is disjoint, so the split
	// workflows are safe to run in parallel.
	ConcurrencyLimit int
}

// Service is the capacity recovery controller.
type Service struct {
	config  Config
	compute providers.ComputeProvider
	catalog providers.TypeCatalog
	pol     policy.Policy
	logger  logging.Logger
}

// NewService creates a recovery controller with the given collaborators.
func NewService(
	config Config,
	compute providers.ComputeProvider,
	catalog providers.TypeCatalog,
	pol policy.Policy,
	logger logging.Logger,
) *Service {
	return &Service{
		config:  config,
		compute: compute,
		catalog: catalog,
		pol:     pol,
		logger:  logger,
	}
}

// Run executes the recovery workflow for every instance named in the
// failure event and returns one outcome per instance. A non-capacity error
// code means the event is not ours to handle: no instance is touched and
// no outcomes are produced.
func (s *Service) Run(ctx context.Context, ev events.FailureEvent) ([]models.Outcome, error) {
	runID := uuid.NewString()

	if !ev.IsCapacityError() {
		s.logger.Warn("run %s: ignoring event with non-capacity error code %q", runID, ev.ErrorCode)
		return nil, nil
	}

	s.logger.Info("run %s: recovering %d instance(s) after capacity failure", runID, len(ev.InstanceIDs))

	g, gctx := errgroup.WithContext(ctx)
	if s.config.ConcurrencyLimit > 0 {
		g.SetLimit(s.config.ConcurrencyLimit)
	}

	resultChan := make(chan models.Outcome, len(ev.InstanceIDs))

	// Split: each instance becomes an independent workflow, so one
	// instance's unavailability never blocks its siblings.
	for _, instanceID := range ev.InstanceIDs {
		instanceID := instanceID
		g.Go(func() error {
			outcome := s.recoverInstance(gctx, runID, instanceID)

			select {
			case resultChan <- outcome:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	go func() {
		_ = g.Wait()
		close(resultChan)
	}()

	outcomes := make([]models.Outcome, 0, len(ev.InstanceIDs))
	for outcome := range resultChan {
		outcomes = append(outcomes, outcome)
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}

	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].InstanceID < outcomes[j].InstanceID
	})
	return outcomes, nil
}

// recoverInstance runs the per-instance state machine to completion.
func (s *Service) recoverInstance(ctx context.Context, runID, instanceID string) models.Outcome {
	w := &workflow{
		svc:   s,
		runID: runID,
		id:    instanceID,
		tried: make(map[string]bool),
	}

	st := stateReceived
	for st != stateDone {
		st = w.step(ctx, st)
	}
	return w.outcome
}
