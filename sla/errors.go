package sla

import (
	"errors"
	"fmt"

	"github.com/warp/sla-engine/workcal"
)

// ErrInvalidRequest is returned when a service request is malformed.
var ErrInvalidRequest = errors.New("invalid request")

// ErrLeaveConflict is returned when a leave ID is already held by another
// developer.
var ErrLeaveConflict = errors.New("leave id belongs to another developer")

// RequestError names the request field that failed validation.
type RequestError struct {
	Field  string
	Reason string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

func (e *RequestError) Unwrap() error {
	return ErrInvalidRequest
}

// IsClientError returns true if the caller can fix the error by changing
// its input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) || workcal.IsClientError(err)
}
