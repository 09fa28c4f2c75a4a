package schema

import (
	"context"
	"errors"
	"fmt"
)

// FailureKind classifies why a bootstrap run stopped.
type FailureKind string

const (
	KindUnknown          FailureKind = "unknown"
	KindConnection       FailureKind = "connection"
	KindPermission       FailureKind = "permission"
	KindMissingReference FailureKind = "missing_reference"
	KindSyntax           FailureKind = "syntax"
	KindConstraint       FailureKind = "constraint"
	KindCanceled         FailureKind = "canceled"
	KindInvalidPlan      FailureKind = "invalid_plan"
)

// Classifier maps a driver error to a FailureKind.
type Classifier func(err error) FailureKind

// StepError reports the step that failed and why.
// Step is empty when the run failed before any statement executed.
type StepError struct {
	Step string
	Kind FailureKind
	Err  error
}

func (e *StepError) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("schema bootstrap failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("schema bootstrap step %s failed (%s): %v", e.Step, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a StepError of the given kind.
func IsKind(err error, kind FailureKind) bool {
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		return false
	}
	return stepErr.Kind == kind
}

// KindOf returns the FailureKind of err, or KindUnknown if err is not a StepError.
func KindOf(err error) FailureKind {
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		return KindUnknown
	}
	return stepErr.Kind
}

func defaultClassifier(err error) FailureKind {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, ErrInvalidPlan):
		return KindInvalidPlan
	default:
		return KindUnknown
	}
}
