package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"gtp/internal/domain"
)

// Collector is a run sink that records every terminal outcome for storage.
// An item reported twice keeps its last outcome.
type Collector struct {
	mu      sync.Mutex
	details []domain.TestOutcome
	index   map[string]int
}

// NewCollector creates an empty Collector
func NewCollector() *Collector {
	return &Collector{index: make(map[string]int)}
}

// Enqueued implements reporter.Sink
func (c *Collector) Enqueued(*domain.TestItem) {}

// Started implements reporter.Sink
func (c *Collector) Started(*domain.TestItem) {}

// Passed implements reporter.Sink
func (c *Collector) Passed(item *domain.TestItem, d time.Duration) {
	o := outcomeFor(item, domain.OutcomePassed, "")
	o.DurationMs = float64(d) / float64(time.Millisecond)
	c.add(o)
}

// Failed implements reporter.Sink
func (c *Collector) Failed(item *domain.TestItem, message string) {
	c.add(outcomeFor(item, domain.OutcomeFailed, message))
}

// Skipped implements reporter.Sink
func (c *Collector) Skipped(item *domain.TestItem) {
	c.add(outcomeFor(item, domain.OutcomeSkipped, ""))
}

// Errored implements reporter.Sink
func (c *Collector) Errored(item *domain.TestItem, message string) {
	c.add(outcomeFor(item, domain.OutcomeErrored, message))
}

// Outcomes returns the recorded outcomes in report order
func (c *Collector) Outcomes() []domain.TestOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.TestOutcome, len(c.details))
	copy(out, c.details)
	return out
}

// Record builds a run record from meta and the collected outcomes.
// Counts, run id and timestamp are filled in when meta leaves them empty.
func (c *Collector) Record(meta domain.RunMeta) *domain.RunRecord {
	details := c.Outcomes()

	meta.Total = len(details)
	meta.Passed, meta.Failed, meta.Skipped, meta.Errored = 0, 0, 0, 0
	for _, d := range details {
		switch d.Outcome {
		case domain.OutcomePassed:
			meta.Passed++
		case domain.OutcomeFailed:
			meta.Failed++
		case domain.OutcomeSkipped:
			meta.Skipped++
		case domain.OutcomeErrored:
			meta.Errored++
		}
	}
	if meta.RunID == "" {
		meta.RunID = uuid.NewString()
	}
	if meta.Timestamp == "" {
		meta.Timestamp = time.Now().Format(time.RFC3339)
	}
	return &domain.RunRecord{Meta: meta, Details: details}
}

func (c *Collector) add(o domain.TestOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i, ok := c.index[o.ID]; ok {
		c.details[i] = o
		return
	}
	c.index[o.ID] = len(c.details)
	c.details = append(c.details, o)
}

func outcomeFor(item *domain.TestItem, outcome domain.Outcome, message string) domain.TestOutcome {
	o := domain.TestOutcome{
		ID:      item.ID,
		Label:   item.Label,
		Suite:   item.SuiteID(),
		Outcome: outcome,
		Message: message,
		Dynamic: item.Dynamic,
	}
	if item.Location != nil {
		o.File = item.Location.File
		o.Line = item.Location.Line
	}
	return o
}
