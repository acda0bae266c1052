// Package validate narrows a selected extraction candidate into a typed Go
// value, classifying every mismatch as a SchemaError so retry layers can
// distinguish bad model output from transport or programming failures.
package validate
