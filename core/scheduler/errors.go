package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrMappingFailed is returned when a periodic job fits on no resource.
	ErrMappingFailed = errors.New("core mapping failed")
	// ErrUnsupportedAlgorithm is returned for an unknown mapping algorithm.
	ErrUnsupportedAlgorithm = errors.New("mapping algorithm is not supported")
	// ErrInvalidConfig reports malformed scheduler parameters.
	ErrInvalidConfig = errors.New("invalid scheduler config")
	// ErrSchedulingFailed indicates that no attempt reached a finished state.
	ErrSchedulingFailed = errors.New("scheduling failed")
)

// InfeasibleError is returned by Schedule once every attempt ended in failure.
// Terminal is the state the last greedy replay stopped in.
type InfeasibleError struct {
	Resource string
	Attempts int
	Terminal DecisionState
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("%s on %s after %d attempts (stopped at %s)", ErrSchedulingFailed, e.Resource, e.Attempts, e.Terminal)
}

func (e *InfeasibleError) Unwrap() error { return ErrSchedulingFailed }
