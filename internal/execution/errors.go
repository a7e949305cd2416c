package execution

import (
	"errors"
	"fmt"
)

var (
	// ErrProcessFailed is returned when the build tool exits with a non-zero status
	ErrProcessFailed = errors.New("build tool exited with a non-zero status")
	// ErrFailureSignature is returned when build output matched an infrastructure failure
	ErrFailureSignature = errors.New("build tool reported an infrastructure failure")
)

// RunError is the engine-level error of a run. Individual test outcomes
// have already been reported when it is returned.
type RunError struct {
	Outcome *ExitOutcome
	Err     error // ErrProcessFailed, ErrFailureSignature or the context error
}

func (e *RunError) Error() string {
	switch {
	case errors.Is(e.Err, ErrFailureSignature) && e.Outcome.Signature != "":
		return fmt.Sprintf("%s (%s, exit code %d)", e.Err, e.Outcome.Signature, e.Outcome.ExitCode)
	case errors.Is(e.Err, ErrProcessFailed):
		return fmt.Sprintf("%s (exit code %d)", e.Err, e.Outcome.ExitCode)
	default:
		return fmt.Sprintf("test run stopped: %s", e.Err)
	}
}

func (e *RunError) Unwrap() error {
	return e.Err
}
