package revert

import (
	"context"
	"time"

	"flexstarter/internal/guard"
	"flexstarter/internal/models"
	"flexstarter/internal/providers"
)

// state enumerates the revert workflow states.
type state int

const (
	stateReceived state = iota
	stateCheckManaged
	stateCheckHasOriginal
	stateWaitStopped
	stateRevert
	stateRemoveTag
	stateDone
)

// workflow is the mutable context of one instance's revert run.
type workflow struct {
	svc   *Service
	runID string
	id    string

	tags         map[string]string
	originalType string
	currentType  string

	outcome models.Outcome
}

func (s *Service) revertInstance(ctx context.Context, runID, instanceID string) models.Outcome {
	w := &workflow{
		svc:   s,
		runID: runID,
		id:    instanceID,
	}

	st := stateReceived
	for st != stateDone {
		st = w.step(ctx, st)
	}
	return w.outcome
}

func (w *workflow) step(ctx context.Context, st state) state {
	switch st {
	case stateReceived:
		return w.stepReceived(ctx)
	case stateCheckManaged:
		return w.stepCheckManaged()
	case stateCheckHasOriginal:
		return w.stepCheckHasOriginal(ctx)
	case stateWaitStopped:
		return w.stepWaitStopped(ctx)
	case stateRevert:
		return w.stepRevert(ctx)
	case stateRemoveTag:
		return w.stepRemoveTag(ctx)
	default:
		return stateDone
	}
}

func (w *workflow) stepReceived(ctx context.Context) state {
	tags, err := w.svc.compute.GetTags(ctx, w.id)
	if err != nil {
		return w.fail(err)
	}
	w.tags = tags
	return stateCheckManaged
}

func (w *workflow) stepCheckManaged() state {
	if !guard.IsManaged(w.tags) {
		w.svc.logger.Info("run %s: instance %s is not opted in, skipping", w.runID, w.id)
		w.outcome = models.Skipped(w.id, models.ReasonNotOptedIn)
		return stateDone
	}
	return stateCheckHasOriginal
}

// stepCheckHasOriginal is where duplicate deliveries fall out: no tag
// means either never substituted or already reverted.
func (w *workflow) stepCheckHasOriginal(ctx context.Context) state {
	original, ok := guard.OriginalType(w.tags)
	if !ok {
		w.svc.logger.Info("run %s: instance %s has no original type recorded, nothing to revert", w.runID, w.id)
		w.outcome = models.Skipped(w.id, models.ReasonNothingToRevert)
		return stateDone
	}
	w.originalType = original

	// A corrupted or stale record must not reach ModifyInstanceType.
	if _, err := w.svc.catalog.Lookup(ctx, original); err != nil {
		w.svc.logger.Error("run %s: recorded original type %q for instance %s is not in the catalog", w.runID, original, w.id)
		return w.fail(err)
	}

	currentType, err := w.svc.compute.DescribeInstanceType(ctx, w.id)
	if err != nil {
		return w.fail(err)
	}
	w.currentType = currentType

	if currentType == original {
		// Modification already happened (earlier partial run); only
		// the tag cleanup is outstanding.
		w.svc.logger.Info("run %s: instance %s is already on its original type %s", w.runID, w.id, original)
		return stateRemoveTag
	}
	return stateWaitStopped
}

// stepWaitStopped polls until the instance settles; the type cannot be
// modified while it is running or transitioning.
func (w *workflow) stepWaitStopped(ctx context.Context) state {
	for attempt := 1; attempt <= w.svc.config.MaxAttempts; attempt++ {
		current, err := w.svc.compute.DescribeInstanceState(ctx, w.id)
		if err != nil {
			return w.fail(err)
		}

		w.svc.logger.Debug("run %s: instance %s state check %d/%d: %s", w.runID, w.id, attempt, w.svc.config.MaxAttempts, current)

		switch current {
		case providers.StateStopped:
			return stateRevert
		case providers.StateTerminated:
			w.svc.logger.Info("run %s: instance %s is terminated, no action needed", w.runID, w.id)
			w.outcome = models.Skipped(w.id, models.ReasonTerminated)
			return stateDone
		case providers.StateStopping:
			// Expected transitional state.
		default:
			w.svc.logger.Warn("run %s: instance %s in unexpected state %s while waiting for stop", w.runID, w.id, current)
		}

		if attempt == w.svc.config.MaxAttempts {
			break
		}

		select {
		case <-time.After(w.svc.config.PollInterval):
		case <-ctx.Done():
			// Cancellation leaves the tag untouched; a later stop
			// event retries the full sequence.
			w.svc.logger.Warn("run %s: wait for instance %s canceled: %v", w.runID, w.id, ctx.Err())
			w.outcome = models.Failed(w.id, models.ActionNone, "canceled")
			return stateDone
		}
	}

	w.svc.logger.Error("run %s: instance %s did not reach stopped state in time", w.runID, w.id)
	w.outcome = models.Failed(w.id, models.ActionNone, models.ReasonStopWaitTimeout)
	return stateDone
}

func (w *workflow) stepRevert(ctx context.Context) state {
	w.svc.logger.Info("run %s: reverting instance %s from %s to %s", w.runID, w.id, w.currentType, w.originalType)
	if err := w.svc.compute.ModifyInstanceType(ctx, w.id, w.originalType); err != nil {
		return w.fail(err)
	}
	return stateRemoveTag
}

// stepRemoveTag clears the durable record, strictly after the type
// modification: a crash before this step leaves the tag present and a
// duplicate delivery re-runs the sequence safely.
func (w *workflow) stepRemoveTag(ctx context.Context) state {
	if err := w.svc.compute.RemoveTag(ctx, w.id, guard.OriginalTypeTagKey); err != nil {
		return w.fail(err)
	}

	w.svc.logger.Info("run %s: instance %s reverted to %s", w.runID, w.id, w.originalType)
	w.outcome = models.Outcome{
		InstanceID: w.id,
		Action:     models.ActionReverted,
		FromType:   w.currentType,
		ToType:     w.originalType,
		Status:     models.StatusSucceeded,
	}
	return stateDone
}

func (w *workflow) fail(err error) state {
	w.svc.logger.Error("run %s: instance %s: %v", w.runID, w.id, err)
	w.outcome = models.Failed(w.id, models.ActionNone, string(providers.CategoryOf(err)))
	return stateDone
}
