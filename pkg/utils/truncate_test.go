package utils

import (
	"strings"
	"testing"
)

func TestTruncatePreview(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		maxLength int
		wantCheck func(result string) bool
	}{
		{
			name:      "short content passes through",
			content:   "I feel tired",
			maxLength: 80,
			wantCheck: func(result string) bool {
				return result == "I feel tired"
			},
		},
		{
			name:      "exact length passes through",
			content:   strings.Repeat("a", 80),
			maxLength: 80,
			wantCheck: func(result string) bool {
				return result == strings.Repeat("a", 80)
			},
		},
		{
			name:      "long content gets marker",
			content:   strings.Repeat("thinking out loud ", 20),
			maxLength: 80,
			wantCheck: func(result string) bool {
				return len([]rune(result)) <= 83 && strings.HasSuffix(result, "...")
			},
		},
		{
			name:      "cuts at word boundary",
			content:   "today was a good day and tomorrow will hopefully also be a good day for walking",
			maxLength: 30,
			wantCheck: func(result string) bool {
				inner := strings.TrimSuffix(result, "...")
				return !strings.HasSuffix(inner, " ") && strings.HasSuffix(result, "...")
			},
		},
		{
			name:      "multibyte safe",
			content:   strings.Repeat("今天的天气很好，适合散步。", 20),
			maxLength: 40,
			wantCheck: func(result string) bool {
				return len([]rune(result)) <= 43 && strings.HasSuffix(result, "...")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncatePreview(tt.content, tt.maxLength)
			if !tt.wantCheck(got) {
				t.Errorf("TruncatePreview(%q, %d) = %q", tt.content, tt.maxLength, got)
			}
		})
	}
}
