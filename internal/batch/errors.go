package batch

import (
	"errors"
	"fmt"
)

// The pipeline classifies every failure into one of four stable classes.
// Synchronous classes (input, state) never mutate stored state; adapter
// failures park the batch in ERROR; validation failures are recorded as
// per-invoice diagnostics.
const (
	ClassInput      = "input_error"
	ClassAdapter    = "adapter_error"
	ClassValidation = "validation_error"
	ClassState      = "state_error"
)

// ErrNotFound is returned by stores when no batch exists for an ID.
var ErrNotFound = errors.New("batch not found")

// ErrFeatureArchived is returned by extraction-related operations when
// the deployment runs with extraction archived. It is a static
// deployment outcome, not an error in the batch itself.
var ErrFeatureArchived = errors.New("feature archived")

// InputError is a synchronous rejection of malformed input. The batch,
// if any, is left untouched.
type InputError struct {
	Detail string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Detail)
}

// StateError rejects an action requested in an incompatible status.
type StateError struct {
	BatchID string
	Op      string
	Status  Status
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s batch %s in status %s", e.Op, e.BatchID, e.Status)
}

// AdapterError wraps a failure of an external collaborator. The
// triggering input stays stored so the stage can be retried via
// reprocess.
type AdapterError struct {
	Stage Status
	Err   error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

// Classify maps an error to its stable classification string.
func Classify(err error) string {
	var ie *InputError
	var se *StateError
	var ae *AdapterError
	switch {
	case errors.As(err, &ie):
		return ClassInput
	case errors.As(err, &se):
		return ClassState
	case errors.As(err, &ae):
		return ClassAdapter
	}
	return ClassValidation
}
