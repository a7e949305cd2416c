package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// Counts holds the terminal outcomes reported so far
type Counts struct {
	Passed  int
	Failed  int
	Skipped int
	Errored int
}

// Done returns how many tests have finished
func (c Counts) Done() int {
	return c.Passed + c.Failed + c.Skipped + c.Errored
}

// ProgressBar creates and manages progress bars
type ProgressBar struct {
	bar *progressbar.ProgressBar
	max int
}

// NewProgressBar creates a new progress bar writing to w
func NewProgressBar(w io.Writer, count int) *ProgressBar {
	if count < 1 {
		count = 1
	}
	bar := progressbar.NewOptions(count,
		progressbar.OptionSetDescription(describe(Counts{})),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &ProgressBar{bar: bar, max: count}
}

// Grow raises the bar's maximum, e.g. when a dynamic subtest appears
func (p *ProgressBar) Grow(n int) {
	p.max += n
	p.bar.ChangeMax(p.max)
}

// Update updates the progress bar with the outcome counts
func (p *ProgressBar) Update(c Counts) {
	if done := c.Done(); done > p.max {
		p.Grow(done - p.max)
	}
	_ = p.bar.Set(c.Done())
	p.bar.Describe(describe(c))
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}

func describe(c Counts) string {
	desc := color.CyanString("Running tests: ") +
		color.GreenString("[passed: %d", c.Passed) +
		" | " +
		color.RedString("failed: %d", c.Failed+c.Errored)
	if c.Skipped > 0 {
		desc += " | " + color.YellowString("skipped: %d", c.Skipped)
	}
	return desc + color.RedString("]")
}
