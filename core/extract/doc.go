// Package extract recovers structured-data candidates from free-form model
// output. Because language models wrap YAML and JSON in narrative prose,
// markdown code fences, or broken syntax, extraction applies a layered
// recovery strategy: fenced-block scanning, blank-line block splitting,
// optional markdown normalization, and a JSON-repair pass, before candidates
// are filtered by mandatory keys and one is selected deterministically.
package extract
