package safe

import (
	"log/slog"
	"runtime/debug"
	"strings"
)

// Run executes fn in the calling goroutine and turns a panic into an error log
// instead of a process crash. Background publishers and cron jobs wrap with it.
func Run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic recovered",
				slog.Any("recover", r),
				slog.String("component", "safe.Run"),
				slog.String("stack", stackTrace(3)),
			)
		}
	}()

	fn()
}

// RunWithLog is Run with the reporting component named by the caller.
func RunWithLog(fn func(), component string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic recovered",
				slog.Any("recover", r),
				slog.String("component", component),
				slog.String("stack", stackTrace(3)),
			)
		}
	}()

	fn()
}

func stackTrace(skipFrames int) string {
	lines := strings.Split(string(debug.Stack()), "\n")

	formatted := []string{"Stack trace:"}
	start := skipFrames
	if start < len(lines) {
		for i := start; i < len(lines) && i < start+20; i++ {
			if line := strings.TrimSpace(lines[i]); line != "" {
				formatted = append(formatted, "  "+line)
			}
		}
		if len(lines) > start+20 {
			formatted = append(formatted, "  ... (truncated)")
		}
	}

	return strings.Join(formatted, "\n")
}
