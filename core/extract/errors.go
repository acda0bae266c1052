package extract

import "fmt"

// SelectionError reports that candidate selection failed: either no candidate
// survived extraction and filtering, or strict mandatory-key checking found an
// incomplete candidate. It is classified as retryable by the orchestration
// layer, since a fresh model response may well produce a valid document.
type SelectionError struct {
	// Index is the 1-based position of the offending candidate, or zero when
	// the failure is not tied to a single candidate.
	Index int
	// MissingKeys lists the mandatory keys the offending candidate lacks.
	MissingKeys []string
	// MandatoryKeys echoes the configured key set for diagnostics.
	MandatoryKeys []string
}

func (e *SelectionError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("segment %d is missing mandatory keys: %v", e.Index, e.MissingKeys)
	}
	return fmt.Sprintf("no valid candidates found matching requirements (mandatory keys: %v)", e.MandatoryKeys)
}
