package domain

import "time"

// Outcome is the terminal state reported for a test item
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
	OutcomeErrored Outcome = "errored"
)

// TestOutcome is a single reported test outcome
type TestOutcome struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Suite      string  `json:"suite,omitempty"`
	Outcome    Outcome `json:"outcome"`
	Message    string  `json:"message,omitempty"`
	DurationMs float64 `json:"duration_ms,omitempty"`
	Dynamic    bool    `json:"dynamic,omitempty"`
	File       string  `json:"file,omitempty"`
	Line       int     `json:"line,omitempty"`
}

// RunMeta contains metadata about a test run
type RunMeta struct {
	RunID             string  `json:"run_id"`
	Command           string  `json:"command"`
	Total             int     `json:"total"`
	Passed            int     `json:"passed"`
	Failed            int     `json:"failed"`
	Skipped           int     `json:"skipped"`
	Errored           int     `json:"errored"`
	ExitCode          int     `json:"exit_code"`
	Cancelled         bool    `json:"cancelled,omitempty"`
	SignatureDetected bool    `json:"signature_detected,omitempty"`
	Duration          string  `json:"duration"`
	DurationSeconds   float64 `json:"duration_seconds"`
	Timestamp         string  `json:"timestamp"`
}

// RunRecord is the complete stored result of one run
type RunRecord struct {
	Meta    RunMeta       `json:"meta"`
	Details []TestOutcome `json:"details"`
}

// Failures returns the failed and errored outcomes
func (r *RunRecord) Failures() []TestOutcome {
	var out []TestOutcome
	for _, d := range r.Details {
		if d.Outcome == OutcomeFailed || d.Outcome == OutcomeErrored {
			out = append(out, d)
		}
	}
	return out
}

// SetDuration fills the duration fields of the meta block
func (m *RunMeta) SetDuration(d time.Duration) {
	m.Duration = d.Round(time.Millisecond).String()
	m.DurationSeconds = d.Seconds()
}
