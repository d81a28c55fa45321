package models

// Action describes what a controller run did to an instance.
type Action string

const (
	// ActionNone means the instance was not touched.
	ActionNone Action = "none"

	// ActionStarted means the instance started on its existing type.
	ActionStarted Action = "started"

	// ActionSubstituted means the instance was modified to a comparable
	// type before starting.
	ActionSubstituted Action = "substituted"

	// ActionReverted means the instance was modified back to its recorded
	// original type.
	ActionReverted Action = "reverted"
)

// OutcomeStatus is the terminal status of one instance's workflow.
type OutcomeStatus string

const (
	StatusSucceeded OutcomeStatus = "succeeded"
	StatusSkipped   OutcomeStatus = "skipped"
	StatusFailed    OutcomeStatus = "failed"
)

// Well-known outcome reasons. Failures caused by provider errors carry the
// classified error category as the reason instead.
const (
	ReasonNotOptedIn       = "not-opted-in"
	ReasonNoComparableType = "no-comparable-type-available"
	ReasonStopWaitTimeout  = "stop-wait-timeout"
	ReasonNothingToRevert  = "nothing-to-revert"
	ReasonTerminated       = "instance-terminated"
)

// Outcome is the per-instance result record produced by the recovery and
// revert controllers. It is the only observable output of a run besides
// compute provider calls and tag writes.
type Outcome struct {
	InstanceID string        `json:"instanceId"`
	Action     Action        `json:"action"`
	FromType   string        `json:"fromType,omitempty"`
	ToType     string        `json:"toType,omitempty"`
	Status     OutcomeStatus `json:"status"`
	Reason     string        `json:"reason,omitempty"`
}

// Skipped builds a skip outcome for an instance that was not touched.
func Skipped(instanceID, reason string) Outcome {
	return Outcome{
		InstanceID: instanceID,
		Action:     ActionNone,
		Status:     StatusSkipped,
		Reason:     reason,
	}
}

// Failed builds a failure outcome.
func Failed(instanceID string, action Action, reason string) Outcome {
	return Outcome{
		InstanceID: instanceID,
		Action:     action,
		Status:     StatusFailed,
		Reason:     reason,
	}
}
