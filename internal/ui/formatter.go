package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"

	"gtp/internal/config"
	"gtp/internal/domain"
)

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	bold   = color.New(color.FgRed, color.Bold)
	yellow = color.New(color.FgYellow)
	white  = color.New(color.FgWhite)
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	out    io.Writer
}

// NewFormatter creates a new Formatter
func NewFormatter(cfg *config.Config, out io.Writer) *Formatter {
	return &Formatter{
		config: cfg,
		out:    out,
	}
}

// PrintMetaStats displays the statistics of a stored run followed by a tree of failed tests
func (f *Formatter) PrintMetaStats(record *domain.RunRecord) {
	meta := record.Meta

	// Print header
	fmt.Fprint(f.out, "\n")
	cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(f.out, "║                    Test Execution Statistics                  ║")
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(f.out)

	// Print table
	rows := []struct {
		label string
		value string
		c     *color.Color
	}{
		{"Run ID", meta.RunID, white},
		{"Total Tests", fmt.Sprint(meta.Total), white},
		{"Passed", fmt.Sprint(meta.Passed), green},
		{"Failed", fmt.Sprint(meta.Failed), red},
		{"Errored", fmt.Sprint(meta.Errored), red},
		{"Skipped", fmt.Sprint(meta.Skipped), yellow},
		{"Exit Code", fmt.Sprint(meta.ExitCode), white},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds), white},
		{"Timestamp", meta.Timestamp, white},
	}
	fmt.Fprintln(f.out, "┌──────────────────────┬────────────────────────────────────────┐")
	for i, row := range rows {
		fmt.Fprintf(f.out, "│ %-20s │ ", row.label)
		row.c.Fprintf(f.out, "%-38s", row.value)
		fmt.Fprintln(f.out, " │")
		if i < len(rows)-1 {
			fmt.Fprintln(f.out, "├──────────────────────┼────────────────────────────────────────┤")
		}
	}
	fmt.Fprintln(f.out, "└──────────────────────┴────────────────────────────────────────┘")

	// Print summary line
	fmt.Fprintln(f.out)
	failures := record.Failures()
	switch {
	case meta.Cancelled:
		yellow.Fprintln(f.out, "⚠ Test run was cancelled")
	case meta.SignatureDetected:
		red.Fprintln(f.out, "✗ The build failed before tests could run, see the build log")
	case len(failures) == 0 && meta.ExitCode != 0:
		red.Fprintf(f.out, "✗ Build tool exited with code %d\n", meta.ExitCode)
	case len(failures) == 0:
		green.Fprintln(f.out, "✓ All tests passed!")
	}
	if len(failures) > 0 {
		red.Fprintf(f.out, "✗ %d test(s) failed\n", len(failures))
		fmt.Fprintln(f.out)
		f.printFailedTestsTree(failures)
	}
}

// PrintFailures displays every failed or errored test of a run with its message
func (f *Formatter) PrintFailures(record *domain.RunRecord) {
	failures := record.Failures()
	if len(failures) == 0 {
		green.Fprintln(f.out, "✓ No failures in the last run")
		return
	}

	red.Fprintf(f.out, "%d failure(s) in run %s (%s)\n\n", len(failures), record.Meta.RunID, record.Meta.Timestamp)
	for i, failure := range failures {
		marker := "✗"
		if failure.Outcome == domain.OutcomeErrored {
			marker = "!"
		}
		bold.Fprintf(f.out, "%s %s\n", marker, failure.ID)
		if failure.File != "" {
			location := f.relPath(failure.File)
			if failure.Line > 0 {
				location = fmt.Sprintf("%s:%d", location, failure.Line)
			}
			color.New(color.FgHiBlack).Fprintf(f.out, "  at %s\n", location)
		}
		if failure.Message != "" {
			for _, line := range strings.Split(strings.TrimRight(failure.Message, "\n"), "\n") {
				fmt.Fprintf(f.out, "    %s\n", line)
			}
		}
		if i < len(failures)-1 {
			fmt.Fprintln(f.out)
		}
	}
}

// TreeNode represents a node in the file tree structure
type TreeNode struct {
	Name     string
	Children map[string]*TreeNode
	Failures []domain.TestOutcome
	IsFile   bool
}

// printFailedTestsTree prints a tree structure of failed tests, grouped by source file
func (f *Formatter) printFailedTestsTree(failures []domain.TestOutcome) {
	if len(failures) == 0 {
		return
	}

	// Group failures by file path, falling back to the suite for items without a location
	fileMap := make(map[string][]domain.TestOutcome)
	for _, failure := range failures {
		key := failure.Suite
		if failure.File != "" {
			key = f.relPath(failure.File)
		}
		if key == "" {
			key = failure.ID
		}
		fileMap[key] = append(fileMap[key], failure)
	}

	root := &TreeNode{
		Name:     "",
		Children: make(map[string]*TreeNode),
		IsFile:   false,
	}

	// Process each file
	for filePath, fileFailures := range fileMap {
		parts := strings.Split(strings.TrimPrefix(filepath.ToSlash(filePath), "./"), "/")
		current := root

		// Navigate/create tree nodes for each path part
		for i, part := range parts {
			if part == "" {
				continue
			}

			if current.Children[part] == nil {
				current.Children[part] = &TreeNode{
					Name:     part,
					Children: make(map[string]*TreeNode),
					IsFile:   i == len(parts)-1,
				}
			}

			current = current.Children[part]

			// If this is the file (last part), add failures
			if i == len(parts)-1 {
				current.Failures = fileFailures
			}
		}
	}

	// Print tree recursively
	f.printTreeNode(root, "", true)
}

func (f *Formatter) printTreeNode(node *TreeNode, prefix string, isRoot bool) {
	// Sort children for consistent output
	var keys []string
	for key := range node.Children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for i, key := range keys {
		child := node.Children[key]
		isLastChild := i == len(keys)-1

		var connector string
		if isRoot {
			connector = ""
		} else if isLastChild {
			connector = prefix + "└── "
		} else {
			connector = prefix + "├── "
		}

		if child.IsFile {
			yellow.Fprintf(f.out, "%s%s\n", connector, child.Name)
		} else {
			cyan.Fprintf(f.out, "%s%s\n", connector, child.Name)
		}

		// Children of this node are indented below it
		var newPrefix string
		if isRoot {
			newPrefix = ""
		} else if isLastChild {
			newPrefix = prefix + "    "
		} else {
			newPrefix = prefix + "│   "
		}

		if child.IsFile {
			for j, failure := range child.Failures {
				casePrefix := newPrefix + "├── "
				if j == len(child.Failures)-1 && len(child.Children) == 0 {
					casePrefix = newPrefix + "└── "
				}
				red.Fprintf(f.out, "%s%s\n", casePrefix, failureLabel(failure))
			}
		}

		f.printTreeNode(child, newPrefix, false)
	}
}

// PrintTestList prints discovered suites, optionally with their test cases.
// failed is optional; suites or tests whose id is in it are marked with [F] (from last run).
func (f *Formatter) PrintTestList(roots []*domain.TestItem, showTestCases bool, failed map[string]struct{}) {
	if showTestCases {
		green.Fprintf(f.out, "Found %d test suite(s) with test cases:\n\n", len(roots))
	} else {
		green.Fprintf(f.out, "Found %d test suite(s):\n\n", len(roots))
	}

	for i, suite := range roots {
		isLastSuite := i == len(roots)-1

		location := ""
		if suite.Location != nil {
			location = color.HiBlackString(" (%s)", f.relPath(suite.Location.File))
		}

		connector := "├── "
		if isLastSuite {
			connector = "└── "
		}
		cyan.Fprintf(f.out, "%s%s", connector, suite.ID)
		fmt.Fprintf(f.out, "%s%s\n", location, failMarker(failed, suite))

		if !showTestCases {
			continue
		}

		cases := suite.Children()
		indent := "│   "
		if isLastSuite {
			indent = "    "
		}
		if len(cases) == 0 {
			fmt.Fprintf(f.out, "%s└── %s\n", indent, color.RedString("(no test cases found)"))
		}
		for j, tc := range cases {
			prefix := indent + "├── "
			if j == len(cases)-1 {
				prefix = indent + "└── "
			}
			fmt.Fprintf(f.out, "%s%s%s\n", prefix, color.YellowString("%s", tc.Label), failMarker(failed, tc))
		}

		// Add spacing between suites (except for the last one)
		if !isLastSuite {
			fmt.Fprintln(f.out)
		}
	}
}

// FailedIDs returns the ids of failed tests and their suites, for marking list output
func FailedIDs(record *domain.RunRecord) map[string]struct{} {
	ids := make(map[string]struct{})
	if record == nil {
		return ids
	}
	for _, failure := range record.Failures() {
		ids[failure.ID] = struct{}{}
		if failure.Suite != "" {
			ids[failure.Suite] = struct{}{}
		}
	}
	return ids
}

func failMarker(failed map[string]struct{}, item *domain.TestItem) string {
	if len(failed) == 0 {
		return ""
	}
	if _, ok := failed[item.ID]; ok {
		return " " + color.RedString("[F]")
	}
	return ""
}

func failureLabel(o domain.TestOutcome) string {
	label := o.Label
	if label == "" {
		label = o.ID
	}
	if o.Message != "" {
		label += ": " + firstLine(o.Message)
	}
	return label
}

// relPath returns path relative to the project for cleaner display
func (f *Formatter) relPath(path string) string {
	if f.config == nil || f.config.ProjectPath == "" || !filepath.IsAbs(path) {
		return path
	}
	base, err := filepath.Abs(f.config.ProjectPath)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i]) + " …"
	}
	return s
}
