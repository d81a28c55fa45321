// Package revert drives the stop-event workflow: once a substituted
// instance stops, put the operator's original type back and clear the
// durable record. The tag is removed only after the modification is
// confirmed, so a crash in between leaves a retryable state behind.
package revert

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"flexstarter/internal/events"
	"flexstarter/internal/models"
	"flexstarter/internal/providers"
	"flexstarter/pkg/logging"
)

// Config contains the parameters for a revert service.
type Config struct {
	// PollInterval is the delay between instance state checks while
	// waiting for the stop to complete.
	PollInterval time.Duration

	// MaxAttempts bounds the wait; exceeding it fails the instance's
	// workflow and leaves the tag for a later retry.
	MaxAttempts int

	// ConcurrencyLimit caps how many instances are worked concurrently
	// (0 = unlimited).
	ConcurrencyLimit int
}

// DefaultConfig returns the stock wait policy: a 10 second poll, 30
// attempts.
func DefaultConfig() Config {
	return Config{
		PollInterval: 10 * time.Second,
		MaxAttempts:  30,
	}
}

// Service is the revert controller.
type Service struct {
	config  Config
	compute providers.ComputeProvider
	catalog providers.TypeCatalog
	logger  logging.Logger
}

// NewService creates a revert controller with the given collaborators.
func NewService(
	config Config,
	compute providers.ComputeProvider,
	catalog providers.TypeCatalog,
	logger logging.Logger,
) *Service {
	return &Service{
		config:  config,
		compute: compute,
		catalog: catalog,
		logger:  logger,
	}
}

// Run executes the revert workflow for every instance named in the stop
// event and returns one outcome per instance.
func (s *Service) Run(ctx context.Context, ev events.StopEvent) ([]models.Outcome, error) {
	runID := uuid.NewString()
	s.logger.Info("run %s: reverting %d stopped instance(s)", runID, len(ev.InstanceIDs))

	g, gctx := errgroup.WithContext(ctx)
	if s.config.ConcurrencyLimit > 0 {
		g.SetLimit(s.config.ConcurrencyLimit)
	}

	resultChan := make(chan models.Outcome, len(ev.InstanceIDs))

	for _, instanceID := range ev.InstanceIDs {
		instanceID := instanceID
		g.Go(func() error {
			outcome := s.revertInstance(gctx, runID, instanceID)

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
