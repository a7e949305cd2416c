package ui

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// SyncWriter serializes writes to a terminal shared by the progress bar,
// engine warnings and diagnostics raised on reader goroutines.
type SyncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewSyncWriter wraps w
func NewSyncWriter(w io.Writer) *SyncWriter {
	return &SyncWriter{w: w}
}

// Write implements io.Writer
func (s *SyncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// ErrorNotifier shows build-environment failures prominently
type ErrorNotifier struct {
	mu   sync.Mutex
	out  io.Writer
	hint string
}

// NewErrorNotifier creates a notifier writing to out. hint, when set, is
// printed below every message, e.g. the path of the build log.
func NewErrorNotifier(out io.Writer, hint string) *ErrorNotifier {
	return &ErrorNotifier{out: out, hint: hint}
}

// ShowError implements signature.Notifier. The message block reaches out in
// a single write so it cannot be split by other output on the same writer.
func (n *ErrorNotifier) ShowError(message string) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, color.New(color.FgRed, color.Bold).Sprintf("✗ %s", message))
	if n.hint != "" {
		fmt.Fprintln(&buf, color.HiBlackString("  %s", n.hint))
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = n.out.Write(buf.Bytes())
}
