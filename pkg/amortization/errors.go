package amortization

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTerms matches every *InvalidTermsError via errors.Is.
	ErrInvalidTerms = errors.New("invalid loan terms")

	// ErrScheduleBuild matches every *ScheduleBuildError via errors.Is.
	ErrScheduleBuild = errors.New("schedule build failed")
)

// InvalidTermsError reports a principal, rate or term that the payment
// calculation cannot accept.
type InvalidTermsError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidTermsError) Error() string {
	return fmt.Sprintf("invalid loan terms: %s=%s: %s", e.Field, e.Value, e.Reason)
}

// Is reports whether target is ErrInvalidTerms.
func (e *InvalidTermsError) Is(target error) bool {
	return target == ErrInvalidTerms
}

// ScheduleBuildError reports a schedule build precondition violation.
type ScheduleBuildError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ScheduleBuildError) Error() string {
	return fmt.Sprintf("cannot build schedule: %s=%s: %s", e.Field, e.Value, e.Reason)
}

// Is reports whether target is ErrScheduleBuild.
func (e *ScheduleBuildError) Is(target error) bool {
	return target == ErrScheduleBuild
}
