package reporter

import (
	"errors"
	"fmt"
)

// The reporter distinguishes two failure classes. A RuntimeError means
// the run itself broke and exits with code 2. A ReportFailureError
// means the run worked but the report contains failing outcomes,
// exiting with code 1.

// RuntimeError wraps an operational fault such as a missing input
// stream or an invalid profile.
type RuntimeError struct {
	Err error
}

func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsRuntimeError reports whether err is or wraps a RuntimeError.
func IsRuntimeError(err error) bool {
	var target *RuntimeError
	return errors.As(err, &target)
}

// ReportFailureError carries the summary of a report whose outcomes
// include failures or errors.
type ReportFailureError struct {
	Message string
}

func NewReportFailureError(message string) *ReportFailureError {
	return &ReportFailureError{Message: message}
}

func (e *ReportFailureError) Error() string {
	return fmt.Sprintf("report failure: %s", e.Message)
}

// IsReportFailureError reports whether err is or wraps a ReportFailureError.
func IsReportFailureError(err error) bool {
	var target *ReportFailureError
	return errors.As(err, &target)
}
