package aws

import (
	"strings"

	"flexstarter/internal/providers"
)

// ClassifyError maps an EC2 API error onto the provider error taxonomy.
// Classification is by error code substring; the SDK embeds the code in the
// error string for every API error.
// Reference: https://docs.aws.amazon.com/AWSEC2/latest/APIReference/errors-overview.html
func ClassifyError(err error, instanceID string) *providers.Error {
	if err == nil {
		return nil
	}

	errMsg := err.Error()

	switch {
	case contains(errMsg, "InsufficientInstanceCapacity", "InsufficientCapacity"):
		return providers.NewError(providers.ErrCapacity, instanceID,
			"Insufficient capacity for the requested instance type", err)

	case contains(errMsg, "UnauthorizedOperation", "AuthFailure", "InvalidClientTokenId"):
		return providers.NewError(providers.ErrPermission, instanceID,
			"Access denied", err)

	case contains(errMsg, "InvalidInstanceID.NotFound", "InvalidInstanceType.NotFound"):
		return providers.NewError(providers.ErrNotFound, instanceID,
			"Resource not found", err)

	case contains(errMsg, "RequestLimitExceeded"):
		return providers.NewError(providers.ErrThrottling, instanceID,
			"Request throttled", err)

	case contains(errMsg, "InvalidParameter", "InvalidInstanceID",
		"InvalidInstanceAttributeValue", "IncorrectInstanceState", "ValidationError"):
		return providers.NewError(providers.ErrValidation, instanceID,
			"Invalid input", err)

	default:
		return providers.NewError(providers.ErrInternal, instanceID,
			"Internal error occurred", err)
	}
}

// contains checks if the error message contains any of the provided substrings
func contains(s string, substrings ...string) bool {
	for _, substr := range substrings {
		if strings.Contains(strings.ToLower(s), strings.ToLower(substr)) {
			return true
		}
	}
	return false
}
