package execution

import (
	"gtp/internal/domain"
	"gtp/internal/parser"
	"gtp/internal/registry"
	"gtp/internal/reporter"
	"gtp/internal/resolver"
)

// Stats counts what a pipeline saw during a run
type Stats struct {
	Lines        int
	Events       int
	Dropped      int
	Materialized int
}

// Pipeline turns output lines into sink calls. It is the single writer of
// the run's registry and must only be driven from one goroutine.
type Pipeline struct {
	parser       parser.Parser
	registry     *registry.Registry
	resolver     *resolver.Resolver
	reporter     *reporter.Reporter
	materializer *Materializer
	logger       reporter.Logger
	stats        Stats
}

// NewPipeline creates a pipeline over reg reporting to sink
func NewPipeline(reg *registry.Registry, sink reporter.Sink, logger reporter.Logger, factory domain.ItemFactory) *Pipeline {
	rep := reporter.New(sink, logger)
	return &Pipeline{
		parser:       parser.NewJSONParser(),
		registry:     reg,
		resolver:     resolver.New(reg),
		reporter:     rep,
		materializer: NewMaterializer(reg, factory, rep, logger),
		logger:       logger,
	}
}

// HandleLine processes one raw output line
func (p *Pipeline) HandleLine(line string) {
	p.stats.Lines++
	ev, ok := p.parser.ParseLine(line)
	if !ok {
		if p.logger != nil {
			p.logger.AppendLine(line)
		}
		return
	}
	p.HandleEvent(ev)
}

// HandleEvent processes one parsed event
func (p *Pipeline) HandleEvent(ev parser.Event) {
	p.stats.Events++
	switch ev.Kind {
	case parser.TestStarted:
		p.testStarted(ev)
	case parser.TestFinished:
		item := p.resolver.Resolve(ev)
		if item == nil {
			p.drop(ev)
			return
		}
		p.reporter.Apply(item, ev)
	default:
		p.reporter.Apply(nil, ev)
	}
}

func (p *Pipeline) testStarted(ev parser.Event) {
	if item, ok := p.registry.Get(ev.ID); ok && ev.ID != "" {
		p.reporter.Apply(item, ev)
		return
	}

	// Iterations must not fall through to label matching, which would
	// resolve them to their own parent.
	if ev.Parent != "" && isIteration(ev.ID, ev.Parent) {
		p.materialize(ev)
		return
	}

	if item := p.resolver.Resolve(ev); item != nil {
		p.reporter.Apply(item, ev)
		return
	}

	if _, ok := p.registry.Get(ev.Parent); ok && ev.Parent != "" {
		p.materialize(ev)
		return
	}
	p.drop(ev)
}

func (p *Pipeline) materialize(ev parser.Event) {
	if p.materializer.Materialize(ev) == nil {
		p.stats.Dropped++
		return
	}
	p.stats.Materialized++
}

func (p *Pipeline) drop(ev parser.Event) {
	p.stats.Dropped++
	warn(p.logger, "no registered test matches %s id=%q name=%q parent=%q", ev.Kind, ev.ID, ev.Name, ev.Parent)
}

// Finish reports every started but unfinished test as errored and returns how many there were
func (p *Pipeline) Finish(reason string) int {
	return p.reporter.ErrorOutstanding(reason)
}

// Stats returns the pipeline counters
func (p *Pipeline) Stats() Stats {
	return p.stats
}

// Reported returns the number of terminal outcomes reported so far
func (p *Pipeline) Reported() int {
	return p.reporter.Terminal()
}
