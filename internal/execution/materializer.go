package execution

import (
	"fmt"
	"strings"

	"gtp/internal/domain"
	"gtp/internal/parser"
	"gtp/internal/registry"
	"gtp/internal/reporter"
)

// WarningPrefix marks engine warnings in the output log
const WarningPrefix = "[gtp] warning: "

// Materializer creates items for data-driven iterations that discovery could not know about
type Materializer struct {
	registry *registry.Registry
	factory  domain.ItemFactory
	reporter *reporter.Reporter
	logger   reporter.Logger
}

// NewMaterializer creates a Materializer for one run
func NewMaterializer(reg *registry.Registry, factory domain.ItemFactory, rep *reporter.Reporter, logger reporter.Logger) *Materializer {
	if factory == nil {
		factory = domain.DefaultFactory{}
	}
	return &Materializer{registry: reg, factory: factory, reporter: rep, logger: logger}
}

// Materialize attaches a new child for ev under its registered parent and
// reports it as enqueued and started. It returns nil and logs one warning
// when the event has no id or the parent is not registered.
func (m *Materializer) Materialize(ev parser.Event) *domain.TestItem {
	if ev.ID == "" {
		warn(m.logger, "dropping dynamic test %q under %q: event has no id", ev.Name, ev.Parent)
		return nil
	}
	parent, ok := m.registry.Get(ev.Parent)
	if !ok {
		warn(m.logger, "dropping dynamic test %q: parent %q is not registered", ev.ID, ev.Parent)
		return nil
	}

	label := ev.Name
	if label == "" {
		label = ev.ID
	}
	var loc *domain.Location
	if parent.Location != nil {
		l := *parent.Location
		loc = &l
	}

	item := m.factory.CreateTestItem(ev.ID, label, loc)
	item.Dynamic = true
	parent.AddChild(item)
	m.registry.Register(ev.ID, item)

	m.reporter.Enqueued(item)
	m.reporter.Started(item)
	return item
}

// isIteration reports whether id is parent suffixed with a bracketed index
func isIteration(id, parent string) bool {
	return len(id) > len(parent) && strings.HasPrefix(id, parent) && id[len(parent)] == '['
}

func warn(logger reporter.Logger, format string, args ...any) {
	if logger != nil {
		logger.AppendLine(WarningPrefix + fmt.Sprintf(format, args...))
	}
}
