package execution

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtp/internal/domain"
	"gtp/internal/registry"
	"gtp/internal/reporter/reportertest"
)

type fixture struct {
	registry *registry.Registry
	sink     *reportertest.Sink
	logger   *reportertest.Logger
	pipeline *Pipeline
}

func newFixture(items ...*domain.TestItem) *fixture {
	f := &fixture{
		registry: registry.New(),
		sink:     &reportertest.Sink{},
		logger:   &reportertest.Logger{},
	}
	f.registry.RegisterTree(items...)
	f.pipeline = NewPipeline(f.registry, f.sink, f.logger, nil)
	return f
}

func (f *fixture) feed(lines ...string) {
	for _, line := range lines {
		f.pipeline.HandleLine(line)
	}
}

func (f *fixture) warnings() []string {
	return f.logger.Matching(WarningPrefix)
}

func spec(id string, features ...string) *domain.TestItem {
	label := id[strings.LastIndex(id, ".")+1:]
	suite := &domain.TestItem{ID: id, Label: label, Kind: domain.KindSuite, Location: &domain.Location{File: label + ".groovy", Line: 3}}
	for i, f := range features {
		suite.AddChild(&domain.TestItem{
			ID:       id + "." + f,
			Label:    f,
			Kind:     domain.KindTest,
			Location: &domain.Location{File: label + ".groovy", Line: 10 + i},
		})
	}
	return suite
}

func TestPipeline_StartedThenPassed(t *testing.T) {
	f := newFixture(spec("com.x.Spec", "m"))

	f.feed(
		`{"event":"testStarted","id":"com.x.Spec.m","name":"m"}`,
		`{"event":"testFinished","id":"com.x.Spec.m","name":"m","result":"SUCCESS","duration":100}`,
	)

	calls := f.sink.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, reportertest.Call{Method: "started", ID: "com.x.Spec.m"}, calls[0])
	assert.Equal(t, reportertest.Call{Method: "passed", ID: "com.x.Spec.m", Duration: 100 * time.Millisecond}, calls[1])
	assert.Empty(t, f.warnings())
}

func TestPipeline_StartedThenFailed(t *testing.T) {
	f := newFixture(spec("com.x.Spec", "m"))

	f.feed(
		`{"event":"testStarted","id":"com.x.Spec.m","name":"m"}`,
		`{"event":"testFinished","id":"com.x.Spec.m","name":"m","result":"FAILURE","message":"Assertion failed"}`,
	)

	calls := f.sink.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "started", calls[0].Method)
	assert.Equal(t, reportertest.Call{Method: "failed", ID: "com.x.Spec.m", Message: "Assertion failed"}, calls[1])
}

func TestPipeline_PlainTextIsLogged(t *testing.T) {
	f := newFixture(spec("com.x.Spec", "m"))

	f.feed("Building 75%", "> Task :compileTestGroovy", "")

	assert.Empty(t, f.sink.Calls())
	assert.Equal(t, []string{"Building 75%", "> Task :compileTestGroovy", ""}, f.logger.Lines())
	assert.Equal(t, 0, f.pipeline.Stats().Events)
	assert.Equal(t, 3, f.pipeline.Stats().Lines)
}

func TestPipeline_SuiteEventsOnlyLogged(t *testing.T) {
	f := newFixture(spec("com.x.Spec", "m"))

	f.feed(
		`{"event":"suiteStarted","id":"com.x.Spec","name":"Spec"}`,
		`{"event":"suiteFinished","id":"com.x.Spec","name":"Spec"}`,
	)

	assert.Empty(t, f.sink.Calls())
	assert.Len(t, f.logger.Lines(), 2)
}

func TestPipeline_DynamicSubtest(t *testing.T) {
	f := newFixture(spec("com.x.Spec", "unroll"))
	parent, _ := f.registry.Get("com.x.Spec.unroll")

	f.feed(`{"event":"testStarted","id":"com.x.Spec.unroll[0]","name":"case 0","parent":"com.x.Spec.unroll"}`)

	assert.Equal(t, []string{"enqueued(com.x.Spec.unroll[0])", "started(com.x.Spec.unroll[0])"}, f.sink.Trace())

	children := parent.Children()
	require.Len(t, children, 1)
	child := children[0]
	assert.Equal(t, "case 0", child.Label)
	assert.True(t, child.Dynamic)
	assert.Same(t, parent, child.Parent)
	assert.Equal(t, *parent.Location, *child.Location)
	assert.NotSame(t, parent.Location, child.Location)

	registered, ok := f.registry.Get("com.x.Spec.unroll[0]")
	require.True(t, ok)
	assert.Same(t, child, registered)

	f.feed(`{"event":"testFinished","id":"com.x.Spec.unroll[0]","name":"case 0","result":"SUCCESS","duration":5}`)
	assert.Equal(t, []string{
		"enqueued(com.x.Spec.unroll[0])",
		"started(com.x.Spec.unroll[0])",
		"passed(com.x.Spec.unroll[0])",
	}, f.sink.Trace())
	assert.Equal(t, 1, f.pipeline.Stats().Materialized)
}

func TestPipeline_DynamicSubtestNamedLikeParent(t *testing.T) {
	f := newFixture(spec("com.x.Spec", "unroll"))

	f.feed(`{"event":"testStarted","id":"com.x.Spec.unroll[1]","name":"unroll","parent":"com.x.Spec.unroll"}`)

	assert.Equal(t, []string{"enqueued(com.x.Spec.unroll[1])", "started(com.x.Spec.unroll[1])"}, f.sink.Trace())
}

func TestPipeline_OrphanedDynamicSubtest(t *testing.T) {
	f := newFixture(spec("com.x.Spec", "m"))
	before := f.registry.Len()

	f.feed(`{"event":"testStarted","id":"unknown.parent[0]","name":"x","parent":"unknown.parent"}`)

	assert.Empty(t, f.sink.Calls())
	assert.Equal(t, before, f.registry.Len())
	warnings := f.warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "unknown.parent[0]")
}

func TestPipeline_DynamicSubtestWithoutID(t *testing.T) {
	f := newFixture(spec("com.x.Spec", "m"))
	before := f.registry.Len()

	f.feed(`{"event":"testStarted","name":"generated","parent":"com.x.Spec"}`)

	assert.Empty(t, f.sink.Calls())
	assert.Equal(t, before, f.registry.Len())
	warnings := f.warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "event has no id")
	assert.NotContains(t, warnings[0], "is not registered")
	assert.Equal(t, 1, f.pipeline.Stats().Dropped)
}

func TestPipeline_RepeatedStartAfterFinish(t *testing.T) {
	f := newFixture(spec("com.x.Spec", "m"))

	f.feed(
		`{"event":"testStarted","id":"com.x.Spec.m","name":"m"}`,
		`{"event":"testFinished","id":"com.x.Spec.m","name":"m","result":"SUCCESS"}`,
		`{"event":"testStarted","id":"com.x.Spec.m","name":"m"}`,
	)

	assert.Equal(t, 0, f.pipeline.Finish("process died"))
	assert.Equal(t, []string{"started(com.x.Spec.m)", "passed(com.x.Spec.m)"}, f.sink.Trace())
}

func TestPipeline_SameLabelDifferentParents(t *testing.T) {
	f := newFixture(spec("com.a.Spec", "does the thing"), spec("com.b.Spec", "does the thing"))

	f.feed(
		`{"event":"testStarted","id":"Spec > does the thing","name":"does the thing","parent":"com.b.Spec"}`,
		`{"event":"testFinished","id":"com.b.Spec.does the thing","name":"does the thing","result":"SUCCESS"}`,
	)

	assert.Equal(t, []string{"started(com.b.Spec.does the thing)", "passed(com.b.Spec.does the thing)"}, f.sink.Trace())
}

func TestPipeline_UnknownResultIsErrored(t *testing.T) {
	f := newFixture(spec("com.x.Spec", "m"))

	f.feed(`{"event":"testFinished","id":"com.x.Spec.m","name":"m","result":"UNKNOWN","message":"weird"}`)

	calls := f.sink.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "errored", calls[0].Method)
	assert.Contains(t, calls[0].Message, "weird")
}

func TestPipeline_SkippedTest(t *testing.T) {
	f := newFixture(spec("com.x.Spec", "m"))

	f.feed(`{"event":"testFinished","id":"com.x.Spec.m","name":"m","result":"SKIPPED"}`)

	assert.Equal(t, []string{"skipped(com.x.Spec.m)"}, f.sink.Trace())
}

func TestPipeline_UnresolvedFinishIsDropped(t *testing.T) {
	f := newFixture(spec("com.x.Spec", "m"))

	f.feed(`{"event":"testFinished","id":"com.y.Other.n","name":"n","result":"SUCCESS"}`)

	assert.Empty(t, f.sink.Calls())
	assert.Len(t, f.warnings(), 1)
	assert.Equal(t, 1, f.pipeline.Stats().Dropped)
}

func TestPipeline_UnresolvedStartWithRegisteredParentMaterializes(t *testing.T) {
	f := newFixture(spec("com.x.Spec", "m"))

	f.feed(`{"event":"testStarted","id":"com.x.Spec.generated","name":"generated","parent":"com.x.Spec"}`)

	assert.Equal(t, []string{"enqueued(com.x.Spec.generated)", "started(com.x.Spec.generated)"}, f.sink.Trace())
}

func TestPipeline_AfterClear(t *testing.T) {
	f := newFixture(spec("com.x.Spec", "m", "unroll"))
	f.registry.Clear()

	f.feed(
		`{"event":"testStarted","id":"com.x.Spec.m","name":"m"}`,
		`{"event":"testFinished","id":"com.x.Spec.m","name":"m","result":"SUCCESS"}`,
		`{"event":"testStarted","id":"com.x.Spec.unroll[0]","name":"case 0","parent":"com.x.Spec.unroll"}`,
	)

	assert.Empty(t, f.registry.All())
	assert.Empty(t, f.sink.Calls())
}

func TestPipeline_HostileInput(t *testing.T) {
	f := newFixture(spec("com.x.Spec", "m"))

	lines := []string{
		`{"event":"testStarted","id":"com.x.Spec.m","name":"m","__proto__":{"polluted":true}}`,
		`{"event":"testFinished","id":"com.x.Spec.m","name":"m","result":"FAILURE","message":"` + strings.Repeat("A", 1<<20) + `"}`,
		"{\"event\":\"testStarted\",\"id\":\"com.x.Spec.m\x00\",\"name\":\"m\"}",
		`{"event":"testStarted","id":"x","nested":` + strings.Repeat(`{"a":`, 120) + `1` + strings.Repeat(`}`, 120) + `}`,
		`{"event":"testStarted","id":"__proto__","name":"constructor","parent":"prototype"}`,
		`{"event":"testStarted",`,
		"\x00\x00\x00",
		`{"__proto__":{"event":"testStarted","id":"com.x.Spec.m"}}`,
	}

	assert.NotPanics(t, func() { f.feed(lines...) })

	assert.Equal(t, []string{"started(com.x.Spec.m)", "failed(com.x.Spec.m)"}, f.sink.Trace())
	_, polluted := f.registry.Get("__proto__")
	assert.False(t, polluted)
	assert.Equal(t, 2, len(f.registry.All()))
}

func TestPipeline_FinishErrorsOutstanding(t *testing.T) {
	f := newFixture(spec("com.x.Spec", "a", "b"))

	f.feed(
		`{"event":"testStarted","id":"com.x.Spec.a","name":"a"}`,
		`{"event":"testStarted","id":"com.x.Spec.b","name":"b"}`,
		`{"event":"testFinished","id":"com.x.Spec.a","name":"a","result":"SUCCESS"}`,
	)

	n := f.pipeline.Finish("process died")
	assert.Equal(t, 1, n)
	calls := f.sink.Calls()
	last := calls[len(calls)-1]
	assert.Equal(t, reportertest.Call{Method: "errored", ID: "com.x.Spec.b", Message: "process died"}, last)
	assert.Equal(t, 2, f.pipeline.Reported())
}

func TestIsIteration(t *testing.T) {
	assert.True(t, isIteration("P[0]", "P"))
	assert.True(t, isIteration("com.x.Spec.m[12]", "com.x.Spec.m"))
	assert.False(t, isIteration("P", "P"))
	assert.False(t, isIteration("P.q", "P"))
	assert.False(t, isIteration("Q[0]", "P"))
}
