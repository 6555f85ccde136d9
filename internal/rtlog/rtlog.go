// rtlog.go - ambient structured logging
//
// Matches the teacher's mixed logging register: most files log plain diagnostics
// straight to stderr (see VideoError in video_interface.go, or the
// fmt.Fprintf(os.Stderr, ...) calls in terminal_host.go) while startup/shutdown/
// session-lifecycle events get structured fields. Hot, ISR-adjacent paths
// (daq.AITimerEngine.AcknowledgeInterrupt and friends) must never log at all —
// they are bounded to tens of microseconds and allocate nothing.

package rtlog

import (
	"log/slog"
	"os"
)

// Default is the process-wide structured logger, writing to stderr.
var Default = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// Fatal logs a diagnostic and terminates the process, matching spec.md §7 tier 1
// ("Fatal" errors: write a diagnostic to standard error, then terminate).
func Fatal(msg string, args ...any) {
	Default.Error(msg, args...)
	os.Exit(1)
}
