// Package retry implements one bounded retry layer with clamped exponential
// backoff and pluggable error classification. The orchestration layer nests
// two independently configured layers: an outer one around model invocation
// and an inner one around the extract-validate-post-process sequence.
package retry
