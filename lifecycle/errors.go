package lifecycle

import (
	"errors"
	"fmt"

	"github.com/travelguide/crud-contract-tests/assertions"
	"github.com/travelguide/crud-contract-tests/framework/harness"
)

// Kind classifies why a run stopped.
type Kind string

const (
	KindNone              Kind = ""
	KindSetupFailure      Kind = "SetupFailure"
	KindTransportFailure  Kind = "TransportFailure"
	KindAssertionFailure  Kind = "AssertionFailure"
	KindDependencyMissing Kind = "DependencyMissing"
	KindOther             Kind = "Other"
)

// KindOf returns the Kind of any error produced by a run.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var se *harness.SetupError
	var te *harness.TransportError
	var dme *DependencyMissingError
	var ae *assertions.AssertionError
	var mfe *assertions.MissingFieldError
	switch {
	case errors.As(err, &se):
		return KindSetupFailure
	case errors.As(err, &te):
		return KindTransportFailure
	case errors.As(err, &dme):
		return KindDependencyMissing
	case errors.As(err, &ae), errors.As(err, &mfe):
		return KindAssertionFailure
	default:
		return KindOther
	}
}

// DependencyMissingError means no existing record could be found to satisfy a dependency.
type DependencyMissingError struct {
	Resource   string
	Dependency string
	MatchField string
	MatchValue string
}

func (e *DependencyMissingError) Error() string {
	if e.MatchField != "" {
		return fmt.Sprintf("%s needs a %s with %s %q, but none was found", e.Resource, e.Dependency, e.MatchField, e.MatchValue)
	}
	return fmt.Sprintf("%s needs an existing %s, but the %s list was empty", e.Resource, e.Dependency, e.Dependency)
}

// StepError identifies the transition during which a run stopped.
type StepError struct {
	Resource string
	From, To State
	Method   string
	Path     string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s %s→%s (%s %s): %s", e.Resource, e.From, e.To, e.Method, e.Path, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
