package utils

import (
	"errors"
	"strings"
)

// estimateTokens approximates the token count of s. Four bytes per token is
// the usual planning ratio for subword vocabularies.
func estimateTokens(s string) int {
	return (len(s) + 3) / 4
}

// TruncateToTokens shrinks text on word boundaries until its estimated token
// count fits maxTokens, appending ellipsis when anything was cut. The input
// is returned unchanged (stripped) when it already fits.
//
// The estimate is deliberately coarse; callers needing exact budgets must
// measure with a real tokenizer and enforce the limit themselves.
func TruncateToTokens(text string, maxTokens int, ellipsis string) (string, error) {
	if maxTokens <= 0 {
		return "", errors.New("maxTokens must be positive")
	}

	stripped := strings.TrimSpace(text)
	if stripped == "" || estimateTokens(stripped) <= maxTokens {
		return stripped, nil
	}

	words := strings.Fields(stripped)
	keep := len(words) * maxTokens / estimateTokens(stripped)
	if keep < 1 {
		keep = 1
	}
	if keep > len(words) {
		keep = len(words)
	}

	current := strings.Join(words[:keep], " ")
	for estimateTokens(current) > maxTokens && keep > 1 {
		keep--
		current = strings.Join(words[:keep], " ")
	}

	if keep < len(words) {
		// Make room for the ellipsis, then give up below one word.
		for estimateTokens(current+ellipsis) > maxTokens && keep > 1 {
			keep--
			current = strings.Join(words[:keep], " ")
		}
		current += ellipsis
	}
	return current, nil
}
