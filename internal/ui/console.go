package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"

	"gtp/internal/domain"
)

// ConsoleSink reports outcomes on the terminal. With a progress bar it only
// updates the bar; without one it prints a line per finished test.
type ConsoleSink struct {
	mu     sync.Mutex
	out    io.Writer
	bar    *ProgressBar
	counts Counts
}

// NewConsoleSink creates a sink printing to out. A nil bar selects line output.
func NewConsoleSink(out io.Writer, bar *ProgressBar) *ConsoleSink {
	return &ConsoleSink{out: out, bar: bar}
}

// Enqueued implements reporter.Sink
func (s *ConsoleSink) Enqueued(*domain.TestItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar != nil {
		s.bar.Grow(1)
	}
}

// Started implements reporter.Sink
func (s *ConsoleSink) Started(*domain.TestItem) {}

// Passed implements reporter.Sink
func (s *ConsoleSink) Passed(item *domain.TestItem, d time.Duration) {
	s.finish(func(c *Counts) { c.Passed++ }, func() {
		fmt.Fprintf(s.out, "%s %s %s\n", color.GreenString("✓"), item.ID,
			color.HiBlackString("(%s)", d.Round(time.Millisecond)))
	})
}

// Failed implements reporter.Sink
func (s *ConsoleSink) Failed(item *domain.TestItem, message string) {
	s.finish(func(c *Counts) { c.Failed++ }, func() {
		fmt.Fprintf(s.out, "%s %s\n", color.RedString("✗"), item.ID)
		printMessage(s.out, message)
	})
}

// Skipped implements reporter.Sink
func (s *ConsoleSink) Skipped(item *domain.TestItem) {
	s.finish(func(c *Counts) { c.Skipped++ }, func() {
		fmt.Fprintf(s.out, "%s %s\n", color.YellowString("-"), item.ID)
	})
}

// Errored implements reporter.Sink
func (s *ConsoleSink) Errored(item *domain.TestItem, message string) {
	s.finish(func(c *Counts) { c.Errored++ }, func() {
		fmt.Fprintf(s.out, "%s %s\n", color.RedString("!"), item.ID)
		printMessage(s.out, message)
	})
}

// Counts returns the outcome counts so far
func (s *ConsoleSink) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

// Close finishes the progress bar
func (s *ConsoleSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar != nil {
		s.bar.Finish()
	}
}

func (s *ConsoleSink) finish(count func(*Counts), line func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count(&s.counts)
	if s.bar != nil {
		s.bar.Update(s.counts)
		return
	}
	line()
}

func printMessage(w io.Writer, message string) {
	if message == "" {
		return
	}
	fmt.Fprintln(w, color.RedString("    %s", firstLine(message)))
}
