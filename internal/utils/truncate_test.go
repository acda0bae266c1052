package utils

import (
	"strings"
	"testing"
)

func TestTruncateToTokens(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxTokens int
		ellipsis  string
		want      string
		wantErr   bool
	}{
		{
			name:      "empty input",
			input:     "",
			maxTokens: 10,
			want:      "",
		},
		{
			name:      "fits untouched apart from trimming",
			input:     "  hello world  ",
			maxTokens: 10,
			want:      "hello world",
		},
		{
			name:      "non-positive budget rejected",
			input:     "hello",
			maxTokens: 0,
			wantErr:   true,
		},
		{
			name:      "truncates on word boundary with ellipsis",
			input:     strings.Repeat("word ", 40),
			maxTokens: 10,
			ellipsis:  "...",
			want:      "word word word word word word word...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TruncateToTokens(tt.input, tt.maxTokens, tt.ellipsis)
			if (err != nil) != tt.wantErr {
				t.Fatalf("TruncateToTokens() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got != tt.want {
				t.Errorf("TruncateToTokens() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateToTokens_StaysWithinBudget(t *testing.T) {
	input := strings.Repeat("alpha beta gamma ", 100)

	for _, maxTokens := range []int{1, 5, 25, 100} {
		got, err := TruncateToTokens(input, maxTokens, "...")
		if err != nil {
			t.Fatalf("TruncateToTokens(maxTokens=%d) error = %v", maxTokens, err)
		}
		// Budgets below one word are allowed to overflow; everything else
		// must fit the estimate.
		if maxTokens > 1 && estimateTokens(got) > maxTokens {
			t.Errorf("TruncateToTokens(maxTokens=%d) = %d estimated tokens", maxTokens, estimateTokens(got))
		}
	}
}
