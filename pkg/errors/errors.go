package errors

import (
	"fmt"
	"strings"
)

// Sentinel errors for the tracking and workflow services. The HTTP
// layer maps them to status codes in utils.ErrorResponse.
var (
	ErrNotFound     = fmt.Errorf("record not found")
	ErrBadRequest   = fmt.Errorf("invalid request")
	ErrUserInactive = fmt.Errorf("user account is deactivated")

	// ErrConflict marks an optimistic-concurrency failure: the ODL
	// status changed between validation and update. Retryable.
	ErrConflict = fmt.Errorf("concurrent modification, retry")
)

// IllegalTransitionError reports an event that is inconsistent with the
// ODL's current status or with the entry/exit rules of a department.
type IllegalTransitionError struct {
	EventType      string
	DepartmentType string
	CurrentStatus  string
	ExpectedStatus string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: event %s in %s not allowed with status %s (expected %s)",
		e.EventType, e.DepartmentType, e.CurrentStatus, e.ExpectedStatus)
}

// DependencyBlockedError reports a department-specific precondition
// that prevents a transfer, with the remedial actions an operator must
// take first.
type DependencyBlockedError struct {
	Reason          string
	RequiredActions []string
}

func (e *DependencyBlockedError) Error() string {
	if len(e.RequiredActions) == 0 {
		return e.Reason
	}
	return e.Reason + ": " + strings.Join(e.RequiredActions, "; ")
}

type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}
