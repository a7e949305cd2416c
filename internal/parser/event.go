package parser

import "time"

// Kind identifies the lifecycle transition carried by an event
type Kind int

const (
	SuiteStarted Kind = iota + 1
	SuiteFinished
	TestStarted
	TestFinished
)

var kindNames = map[string]Kind{
	"suiteStarted":  SuiteStarted,
	"suiteFinished": SuiteFinished,
	"testStarted":   TestStarted,
	"testFinished":  TestFinished,
}

func (k Kind) String() string {
	switch k {
	case SuiteStarted:
		return "suiteStarted"
	case SuiteFinished:
		return "suiteFinished"
	case TestStarted:
		return "testStarted"
	case TestFinished:
		return "testFinished"
	default:
		return "unknown"
	}
}

// Result is the outcome carried by a testFinished event
type Result int

const (
	ResultUnknown Result = iota
	ResultSuccess
	ResultFailure
	ResultSkipped
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "SUCCESS"
	case ResultFailure:
		return "FAILURE"
	case ResultSkipped:
		return "SKIPPED"
	default:
		return "UNKNOWN"
	}
}

// ParseResult maps a wire result onto a Result; anything unrecognised is ResultUnknown
func ParseResult(s string) Result {
	switch s {
	case "SUCCESS":
		return ResultSuccess
	case "FAILURE":
		return ResultFailure
	case "SKIPPED":
		return ResultSkipped
	default:
		return ResultUnknown
	}
}

// Event is a single test lifecycle event emitted by the listener plugin
type Event struct {
	Kind        Kind
	ID          string
	Name        string
	Parent      string // Optional qualified id of the logical parent, only used for disambiguation
	Result      Result
	RawResult   string
	Message     string
	Duration    time.Duration
	HasDuration bool
}

// IsSuite reports whether the event is a suite lifecycle notice
func (e Event) IsSuite() bool {
	return e.Kind == SuiteStarted || e.Kind == SuiteFinished
}
