package order

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrValidation    = errors.New("validation failed")
	ErrUnknownStatus = errors.New("unknown order status")
)

// Step identifies where in the submission sequence a failure occurred.
type Step string

const (
	StepCreateHeader Step = "create_header"
	StepPriceLookup  Step = "price_lookup"
	StepInsertItems  Step = "insert_items"
	StepFinalize     Step = "finalize"
)

// SequenceError wraps a failure of one step of the submission sequence.
// Steps after create_header leave the order header in place with total 0;
// there is no compensation.
type SequenceError struct {
	Step Step
	Err  error
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("order submission failed at %s: %v", e.Step, e.Err)
}

func (e *SequenceError) Unwrap() error {
	return e.Err
}
