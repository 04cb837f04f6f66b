package utils

import (
	"strings"
)

// TruncatePreview cuts content down to maxLength runes for list previews.
// Content that already fits is returned untouched, without a marker.
// Truncated content is adjusted back to a word boundary when one sits past
// the midpoint, then suffixed with "...".
func TruncatePreview(content string, maxLength int) string {
	runes := []rune(content)
	if len(runes) <= maxLength {
		return content
	}

	truncated := adjustToWordBoundary(string(runes[:maxLength]))

	return strings.TrimSpace(truncated) + "..."
}

func adjustToWordBoundary(content string) string {
	length := len(content)
	minPos := length / 2 // 不要截断太多

	if lastPeriod := strings.LastIndex(content, "。"); lastPeriod > minPos {
		return content[:lastPeriod+1]
	}
	if lastNewline := strings.LastIndex(content, "\n"); lastNewline > minPos {
		return content[:lastNewline]
	}
	if lastSpace := strings.LastIndex(content, " "); lastSpace > minPos {
		return content[:lastSpace]
	}

	return content
}
