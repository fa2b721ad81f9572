package heat

import (
	"errors"
	"fmt"
)

// ErrEmptyGrid indicates an extremal query on a grid with no cells.
var ErrEmptyGrid = errors.New("heat: grid is empty")

// StepError wraps an engine failure with the step it happened on.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
