// Package reportertest provides in-memory sinks and loggers for tests.
package reportertest

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"gtp/internal/domain"
)

// Call is a single recorded sink call
type Call struct {
	Method   string
	ID       string
	Message  string
	Duration time.Duration
}

func (c Call) String() string {
	return fmt.Sprintf("%s(%s)", c.Method, c.ID)
}

// Sink records every call it receives
type Sink struct {
	mu    sync.Mutex
	calls []Call
}

func (s *Sink) add(c Call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
}

func (s *Sink) Enqueued(item *domain.TestItem) { s.add(Call{Method: "enqueued", ID: item.ID}) }
func (s *Sink) Started(item *domain.TestItem)  { s.add(Call{Method: "started", ID: item.ID}) }
func (s *Sink) Skipped(item *domain.TestItem)  { s.add(Call{Method: "skipped", ID: item.ID}) }

func (s *Sink) Passed(item *domain.TestItem, d time.Duration) {
	s.add(Call{Method: "passed", ID: item.ID, Duration: d})
}

func (s *Sink) Failed(item *domain.TestItem, message string) {
	s.add(Call{Method: "failed", ID: item.ID, Message: message})
}

func (s *Sink) Errored(item *domain.TestItem, message string) {
	s.add(Call{Method: "errored", ID: item.ID, Message: message})
}

// Calls returns a copy of the recorded calls
func (s *Sink) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Trace returns the calls as "method(id)" strings
func (s *Sink) Trace() []string {
	var out []string
	for _, c := range s.Calls() {
		out = append(out, c.String())
	}
	return out
}

// Logger records appended lines
type Logger struct {
	mu    sync.Mutex
	lines []string
}

// AppendLine implements reporter.Logger
func (l *Logger) AppendLine(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, text)
}

// Lines returns a copy of the recorded lines
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Matching returns the lines that start with prefix
func (l *Logger) Matching(prefix string) []string {
	var out []string
	for _, line := range l.Lines() {
		if strings.HasPrefix(line, prefix) {
			out = append(out, line)
		}
	}
	return out
}
