// Package ai defines the role-tagged message model and the Provider
// interface through which the orchestration layer invokes a language model.
// Concrete providers live in subpackages.
package ai
