// Package agent orchestrates the full generate-extract-validate cycle: it
// renders a prompt, invokes a model provider, recovers a typed value from the
// raw response, and retries under two independently configured backoff
// policies. Transport failures consume the outer budget; logic failures in
// the model's output (unparseable documents, missing keys, schema mismatches,
// marked post-processor errors) consume the inner budget and always trigger a
// fresh model call.
package agent
