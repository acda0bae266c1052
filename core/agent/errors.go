package agent

import (
	"errors"
	"strconv"

	"github.com/kuanpern/lg-utils/core/extract"
	"github.com/kuanpern/lg-utils/core/validate"
)

// retryableError marks a post-processor failure as eligible for the inner
// retry layer.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Retryable marks err so the agent's inner layer treats it as caused by model
// output and re-invokes the model. Post-processors return Retryable(err) for
// failures a fresh response could fix (hallucinated values, absent keys) and
// plain errors for everything else. Returns nil for a nil err.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// IsRetryable reports whether err belongs to the inner layer's retryable set:
// selection failures, schema failures, numeric conversion failures, and
// errors explicitly marked with Retryable. Anything else propagates without
// consuming inner retry budget.
func IsRetryable(err error) bool {
	var selectionErr *extract.SelectionError
	var schemaErr *validate.SchemaError
	var numErr *strconv.NumError
	var marked *retryableError
	return errors.As(err, &selectionErr) ||
		errors.As(err, &schemaErr) ||
		errors.As(err, &numErr) ||
		errors.As(err, &marked)
}
