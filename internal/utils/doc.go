// Package utils contains small shared helpers: log-safe string truncation,
// token-budget text truncation, and nested map access.
package utils
