// Package reporter maps resolved events onto Run Sink calls.
package reporter

import (
	"fmt"

	"gtp/internal/domain"
	"gtp/internal/parser"
)

// Reporter applies events to a sink and remembers which items were started
// but have not reached a terminal outcome yet.
type Reporter struct {
	sink   Sink
	logger Logger

	started  map[*domain.TestItem]bool
	finished map[*domain.TestItem]bool
	order    []*domain.TestItem
	terminal int
}

// New creates a Reporter for a single run
func New(sink Sink, logger Logger) *Reporter {
	return &Reporter{
		sink:     sink,
		logger:   logger,
		started:  make(map[*domain.TestItem]bool),
		finished: make(map[*domain.TestItem]bool),
	}
}

// Apply reports ev for item. A nil item is ignored.
func (r *Reporter) Apply(item *domain.TestItem, ev parser.Event) {
	if ev.IsSuite() {
		r.logf("%s %s", ev.Kind, ev.ID)
		return
	}
	if item == nil {
		return
	}

	switch ev.Kind {
	case parser.TestStarted:
		r.Started(item)
	case parser.TestFinished:
		switch ev.Result {
		case parser.ResultSuccess:
			r.sink.Passed(item, ev.Duration)
		case parser.ResultFailure:
			r.sink.Failed(item, ev.Message)
		case parser.ResultSkipped:
			r.sink.Skipped(item)
		default:
			r.sink.Errored(item, unknownResultMessage(ev))
		}
		r.finish(item)
	}
}

// Enqueued reports a newly materialized item
func (r *Reporter) Enqueued(item *domain.TestItem) {
	r.sink.Enqueued(item)
}

// Started reports item as running. A start that repeats after the item
// finished is logged and ignored.
func (r *Reporter) Started(item *domain.TestItem) {
	if r.finished[item] {
		r.logf("ignoring start of finished test %s", item.ID)
		return
	}
	if !r.started[item] {
		r.started[item] = true
		r.order = append(r.order, item)
	}
	r.sink.Started(item)
}

// Outstanding returns the items started but not finished, in start order
func (r *Reporter) Outstanding() []*domain.TestItem {
	var out []*domain.TestItem
	for _, item := range r.order {
		if r.started[item] {
			out = append(out, item)
		}
	}
	return out
}

// ErrorOutstanding reports every outstanding item as errored with message
func (r *Reporter) ErrorOutstanding(message string) int {
	items := r.Outstanding()
	for _, item := range items {
		r.sink.Errored(item, message)
		r.finish(item)
	}
	return len(items)
}

// Terminal returns how many terminal outcomes were reported
func (r *Reporter) Terminal() int {
	return r.terminal
}

func (r *Reporter) finish(item *domain.TestItem) {
	r.terminal++
	r.finished[item] = true
	if r.started[item] {
		r.started[item] = false
	}
}

func (r *Reporter) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.AppendLine(fmt.Sprintf(format, args...))
	}
}

func unknownResultMessage(ev parser.Event) string {
	msg := fmt.Sprintf("unknown test result %q", ev.RawResult)
	if ev.Message != "" {
		msg += ": " + ev.Message
	}
	return msg
}
