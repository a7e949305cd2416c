package reporter

import (
	"time"

	"gtp/internal/domain"
)

// Sink receives test lifecycle transitions for a run
type Sink interface {
	Enqueued(item *domain.TestItem)
	Started(item *domain.TestItem)
	Passed(item *domain.TestItem, duration time.Duration)
	Failed(item *domain.TestItem, message string)
	Skipped(item *domain.TestItem)
	Errored(item *domain.TestItem, message string)
}

// Logger receives non-event output lines and engine notices verbatim
type Logger interface {
	AppendLine(text string)
}

// Tee fans every call out to each sink in order
func Tee(sinks ...Sink) Sink {
	return teeSink(sinks)
}

type teeSink []Sink

func (t teeSink) Enqueued(item *domain.TestItem) {
	for _, s := range t {
		s.Enqueued(item)
	}
}

func (t teeSink) Started(item *domain.TestItem) {
	for _, s := range t {
		s.Started(item)
	}
}

func (t teeSink) Passed(item *domain.TestItem, duration time.Duration) {
	for _, s := range t {
		s.Passed(item, duration)
	}
}

func (t teeSink) Failed(item *domain.TestItem, message string) {
	for _, s := range t {
		s.Failed(item, message)
	}
}

func (t teeSink) Skipped(item *domain.TestItem) {
	for _, s := range t {
		s.Skipped(item)
	}
}

func (t teeSink) Errored(item *domain.TestItem, message string) {
	for _, s := range t {
		s.Errored(item, message)
	}
}
