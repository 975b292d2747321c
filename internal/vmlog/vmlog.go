// Package vmlog is the structured logger the driver, loader, and
// interpreter thread through the load → link → <clinit> → run pipeline
// (SPEC_FULL.md §4.9). It wraps log/slog rather than a third-party
// logger — see DESIGN.md's "Logging" entry for why.
package vmlog

import (
	"io"
	"log/slog"
	"os"
)

// New builds a text-handler logger writing to w (typically os.Stderr).
// verbose raises the level to Debug, which is what surfaces per-class
// load detail, every <clinit> invocation, and every INVOKESTATIC
// dispatch; non-verbose stays at Info, narrating only the start of the
// main run. Fatal errors are returned to the caller, not logged here.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// Discard is a logger that drops everything, for components built and
// tested without a driver-supplied logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
