// Package events decodes the trigger payloads the controllers consume. The
// shapes follow the EventBridge documents the surrounding wiring delivers:
// a CloudTrail StartInstances error event and an instance stop
// notification.
package events

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Capacity-class error codes. Anything else on a failure event is ignored
// by the recovery controller.
const capacityErrorMarker = "InsufficientInstanceCapacity"

// FailureEvent names the instances of a batch start request that failed,
// the error code, and (when the payload carries it) the requested type.
type FailureEvent struct {
	InstanceIDs   []string
	RequestedType string
	ErrorCode     string
}

// IsCapacityError reports whether the event's error code is capacity-class.
func (e FailureEvent) IsCapacityError() bool {
	return strings.Contains(e.ErrorCode, capacityErrorMarker)
}

// StopEvent names instances that were stopped.
type StopEvent struct {
	InstanceIDs []string
}

type failureDocument struct {
	Detail struct {
		ErrorCode         string `json:"errorCode"`
		RequestParameters struct {
			InstancesSet struct {
				Items []struct {
					InstanceID   string `json:"instanceId"`
					InstanceType string `json:"instanceType"`
				} `json:"items"`
			} `json:"instancesSet"`
		} `json:"requestParameters"`
	} `json:"detail"`
}

type stopDocument struct {
	Detail struct {
		InstanceID  string   `json:"instance-id"`
		InstanceIDs []string `json:"instanceIds"`
	} `json:"detail"`
}

// ParseFailureEvent decodes a start-failure document. Items without an
// instance id are dropped; an event with no ids at all is an error.
func ParseFailureEvent(data []byte) (FailureEvent, error) {
	var doc failureDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return FailureEvent{}, fmt.Errorf("failed to decode failure event: %w", err)
	}

	ev := FailureEvent{
		ErrorCode: doc.Detail.ErrorCode,
	}
	for _, item := range doc.Detail.RequestParameters.InstancesSet.Items {
		if item.InstanceID == "" {
			continue
		}
		ev.InstanceIDs = append(ev.InstanceIDs, item.InstanceID)
		if ev.RequestedType == "" {
			ev.RequestedType = item.InstanceType
		}
	}
	if len(ev.InstanceIDs) == 0 {
		return FailureEvent{}, fmt.Errorf("no instance IDs found in failure event")
	}
	return ev, nil
}

// ParseStopEvent decodes a stop document. Both the single-instance
// notification form (detail.instance-id) and the batch form
// (detail.instanceIds) are accepted.
func ParseStopEvent(data []byte) (StopEvent, error) {
	var doc stopDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return StopEvent{}, fmt.Errorf("failed to decode stop event: %w", err)
	}

	ev := StopEvent{}
	if doc.Detail.InstanceID != "" {
		ev.InstanceIDs = append(ev.InstanceIDs, doc.Detail.InstanceID)
	}
	for _, id := range doc.Detail.InstanceIDs {
		if id != "" {
			ev.InstanceIDs = append(ev.InstanceIDs, id)
		}
	}
	if len(ev.InstanceIDs) == 0 {
		return StopEvent{}, fmt.Errorf("no instance IDs found in stop event")
	}
	return ev, nil
}
