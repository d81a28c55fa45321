package recovery

import (
	"context"

	"flexstarter/internal/guard"
	"flexstarter/internal/matcher"
	"flexstarter/internal/models"
	"flexstarter/internal/providers"
)

// state enumerates the per-instance workflow states. Transitions are total:
// every state either advances or lands on stateDone with the outcome set.
type state int

const (
	stateReceived state = iota
	stateAttemptCurrentType
	stateNeedsAlternate
	stateAttemptAlternate
	stateTagOriginal
	stateDone
)

// workflow is the mutable context of one instance's recovery run.
type workflow struct {
	svc   *Service
	runID string
	id    string

	// originalType is the instance's type at workflow start, captured
	// once before any modification.
	originalType string

	// hasPriorTag is true when a previous run already recorded an
	// original type. That record stays authoritative.
	hasPriorTag bool

	tried      map[string]bool
	candidates []models.TypeSpec
	next       int

	// modified is true once the instance's type differs from
	// originalType.
	modified bool

	outcome models.Outcome
}

func (w *workflow) step(ctx context.Context, st state) state {
	switch st {
	case stateReceived:
		return w.stepReceived(ctx)
	case stateAttemptCurrentType:
		return w.stepAttemptCurrentType(ctx)
	case stateNeedsAlternate:
		return w.stepNeedsAlternate(ctx)
	case stateAttemptAlternate:
		return w.stepAttemptAlternate(ctx)
	case stateTagOriginal:
		return w.stepTagOriginal(ctx)
	default:
		return stateDone
	}
}

// stepReceived loads tags, applies the opt-in guard, and captures the
// original type.
func (w *workflow) stepReceived(ctx context.Context) state {
	tags, err := w.svc.compute.GetTags(ctx, w.id)
	if err != nil {
		return w.fail(err)
	}

	if !guard.IsManaged(tags) {
		w.svc.logger.Info("run %s: instance %s is not opted in, skipping", w.runID, w.id)
		w.outcome = models.Skipped(w.id, models.ReasonNotOptedIn)
		return stateDone
	}

	currentType, err := w.svc.compute.DescribeInstanceType(ctx, w.id)
	if err != nil {
		return w.fail(err)
	}
	w.originalType = currentType
	w.tried[currentType] = true

	if prior, ok := guard.OriginalType(tags); ok {
		// A previous substitution has not reverted yet; its record
		// wins over whatever type the instance carries now.
		w.hasPriorTag = true
		w.svc.logger.Info("run %s: instance %s already carries original type %s", w.runID, w.id, prior)
	}

	return stateAttemptCurrentType
}

// stepAttemptCurrentType retries the start as-is first; a transient
// capacity shortage may already have cleared.
func (w *workflow) stepAttemptCurrentType(ctx context.Context) state {
	w.svc.logger.Info("run %s: starting instance %s with current type %s", w.runID, w.id, w.originalType)

	err := w.svc.compute.StartInstance(ctx, w.id)
	if err == nil {
		w.outcome = models.Outcome{
			InstanceID: w.id,
			Action:     models.ActionStarted,
			FromType:   w.originalType,
			ToType:     w.originalType,
			Status:     models.StatusSucceeded,
		}
		return stateDone
	}
	if providers.IsCapacityError(err) {
		w.svc.logger.Info("run %s: instance %s hit capacity shortage on type %s", w.runID, w.id, w.originalType)
		return stateNeedsAlternate
	}
	return w.fail(err)
}

// stepNeedsAlternate asks the matcher for ranked substitutes.
func (w *workflow) stepNeedsAlternate(ctx context.Context) state {
	failedSpec, err := w.svc.catalog.Lookup(ctx, w.originalType)
	if err != nil {
		return w.fail(err)
	}
	catalog, err := w.svc.catalog.List(ctx)
	if err != nil {
		return w.fail(err)
	}

	w.candidates = matcher.FindCandidates(failedSpec, w.svc.pol, catalog, w.tried)
	if len(w.candidates) == 0 {
		w.svc.logger.Warn("run %s: no comparable type available for instance %s (%s)", w.runID, w.id, w.originalType)
		w.outcome = models.Failed(w.id, models.ActionNone, models.ReasonNoComparableType)
		return stateDone
	}

	w.svc.logger.Info("run %s: instance %s has %d candidate type(s)", w.runID, w.id, len(w.candidates))
	return stateAttemptAlternate
}

// stepAttemptAlternate tries the next ranked candidate: modify, then start.
func (w *workflow) stepAttemptAlternate(ctx context.Context) state {
	if w.next >= len(w.candidates) {
		w.outcome = models.Failed(w.id, models.ActionSubstituted, models.ReasonNoComparableType)
		return stateTagOriginal
	}

	candidate := w.candidates[w.next]
	w.next++

	w.svc.logger.Info("run %s: modifying instance %s to type %s", w.runID, w.id, candidate.Name)
	if err := w.svc.compute.ModifyInstanceType(ctx, w.id, candidate.Name); err != nil {
		w.failPending(err)
		return stateTagOriginal
	}
	w.modified = true
	w.tried[candidate.Name] = true

	err := w.svc.compute.StartInstance(ctx, w.id)
	if err == nil {
		w.svc.logger.Info("run %s: instance %s started on substitute type %s", w.runID, w.id, candidate.Name)
		w.outcome = models.Outcome{
			InstanceID: w.id,
			Action:     models.ActionSubstituted,
			FromType:   w.originalType,
			ToType:     candidate.Name,
			Status:     models.StatusSucceeded,
		}
		return stateTagOriginal
	}
	if providers.IsCapacityError(err) {
		w.svc.logger.Info("run %s: substitute %s also short on capacity for instance %s", w.runID, candidate.Name, w.id)
		return stateAttemptAlternate
	}
	// Permission and validation failures don't clear on retry.
	w.failPending(err)
	return stateTagOriginal
}

// stepTagOriginal records the pre-substitution type once the instance has
// been modified. A record left by an earlier, not-yet-reverted run is never
// overwritten.
func (w *workflow) stepTagOriginal(ctx context.Context) state {
	if !w.modified || w.hasPriorTag {
		return stateDone
	}

	if err := w.svc.compute.SetTag(ctx, w.id, guard.OriginalTypeTagKey, w.originalType); err != nil {
		w.svc.logger.Error("run %s: failed to record original type for instance %s: %v", w.runID, w.id, err)
		// The substitution happened but is now untracked; surface it.
		w.failPending(err)
		return stateDone
	}
	w.svc.logger.Info("run %s: recorded original type %s on instance %s", w.runID, w.originalType, w.id)
	return stateDone
}

// fail sets a failure outcome for errors that happen before any
// modification.
func (w *workflow) fail(err error) state {
	w.svc.logger.Error("run %s: instance %s: %v", w.runID, w.id, err)
	w.outcome = models.Failed(w.id, models.ActionNone, string(providers.CategoryOf(err)))
	return stateDone
}

// failPending records a failure but leaves the workflow to pass through
// the tagging state, since the instance's type may already have changed.
func (w *workflow) failPending(err error) {
	w.svc.logger.Error("run %s: instance %s: %v", w.runID, w.id, err)
	action := models.ActionNone
	if w.modified {
		action = models.ActionSubstituted
	}
	w.outcome = models.Failed(w.id, action, string(providers.CategoryOf(err)))
}
