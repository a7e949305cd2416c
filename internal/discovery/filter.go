package discovery

import (
	"path/filepath"
	"strings"

	"gtp/internal/domain"
)

// Filter selects test items by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName returns the items whose id or label matches pattern.
// Supports patterns like "*UserSpec" or "*payment*"; without wildcards it is a substring match.
func (f *Filter) FilterByName(items []*domain.TestItem, pattern string) []*domain.TestItem {
	if pattern == "" {
		return items
	}

	var filtered []*domain.TestItem
	for _, item := range items {
		if matchName(item.ID, pattern) || matchName(item.Label, pattern) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// SelectByID returns the registered items named by ids, keeping their order
func (f *Filter) SelectByID(items []*domain.TestItem, ids []string) []*domain.TestItem {
	byID := make(map[string]*domain.TestItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	var selected []*domain.TestItem
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			selected = append(selected, item)
		}
	}
	return selected
}

func matchName(name, pattern string) bool {
	// Try to match using filepath.Match (supports * and ? wildcards)
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	if strings.Contains(pattern, "*") {
		// Every non-empty part between wildcards must appear in order
		rest := name
		hasPart := false
		for _, part := range strings.Split(pattern, "*") {
			if part == "" {
				continue
			}
			hasPart = true
			i := strings.Index(rest, part)
			if i < 0 {
				return false
			}
			rest = rest[i+len(part):]
		}
		return hasPart
	}

	// If no wildcards, do a simple contains check
	if !strings.Contains(pattern, "?") {
		return strings.Contains(name, pattern)
	}
	return false
}

// TestFilter returns the value passed to Gradle's --tests for item.
// Suites filter by their qualified name, tests by suite plus test name,
// and dynamic iterations by the static test they were created from.
func TestFilter(item *domain.TestItem) string {
	for item.Dynamic && item.Parent != nil {
		item = item.Parent
	}
	if item.Kind == domain.KindSuite {
		return item.ID
	}
	if suite := item.SuiteID(); suite != "" {
		return suite + "." + item.Label
	}
	return item.ID
}

// BuildTestArgs returns the build tool argv: the task followed by one --tests pair per item
func BuildTestArgs(task string, items []*domain.TestItem) []string {
	args := []string{task}
	seen := make(map[string]bool)
	for _, item := range items {
		filter := TestFilter(item)
		if seen[filter] {
			continue
		}
		seen[filter] = true
		args = append(args, "--tests", filter)
	}
	return args
}

// ShellArgs renders the --tests flags for a shell, quoting every filter so
// names containing whitespace are not split.
func ShellArgs(items []*domain.TestItem) string {
	args := BuildTestArgs("", items)[1:]
	var parts []string
	for i := 0; i < len(args); i += 2 {
		parts = append(parts, args[i]+" "+Quote(args[i+1]))
	}
	return strings.Join(parts, " ")
}

// ShellCommand renders a full command line for display
func ShellCommand(executable string, args []string) string {
	parts := []string{quoteIfNeeded(executable)}
	for _, a := range args {
		parts = append(parts, quoteIfNeeded(a))
	}
	return strings.Join(parts, " ")
}

// Quote wraps s in double quotes, escaping characters the shell treats specially inside them
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")
	return `"` + r.Replace(s) + `"`
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"'$`\\*?[]") {
		return Quote(s)
	}
	return s
}
