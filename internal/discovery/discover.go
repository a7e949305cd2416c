package discovery

import (
	"strings"

	"gtp/internal/domain"
)

// Discover scans root for test files and builds the static test tree
func Discover(scanner *Scanner, parser *Parser, root string) ([]*domain.TestItem, error) {
	files, err := scanner.Scan(root)
	if err != nil {
		return nil, err
	}

	var suites []domain.TestSuite
	for _, file := range files {
		found, err := parser.FindSuites(file)
		if err != nil {
			return nil, err
		}
		suites = append(suites, found...)
	}
	return BuildTree(suites), nil
}

// Flatten returns every item of the trees, parents before their children
func Flatten(roots []*domain.TestItem) []*domain.TestItem {
	var out []*domain.TestItem
	var walk func(*domain.TestItem)
	walk = func(item *domain.TestItem) {
		out = append(out, item)
		for _, child := range item.Children() {
			walk(child)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return out
}

// SelectFailed maps stored failures onto discovered items. A failure whose
// id is unknown, such as a dynamic iteration, selects the longest known id
// it starts with.
func (f *Filter) SelectFailed(items []*domain.TestItem, failures []domain.TestOutcome) []*domain.TestItem {
	byID := make(map[string]*domain.TestItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	seen := make(map[*domain.TestItem]bool)
	var selected []*domain.TestItem
	for _, failure := range failures {
		item, ok := byID[failure.ID]
		if !ok {
			for _, candidate := range items {
				if strings.HasPrefix(failure.ID, candidate.ID) && (item == nil || len(candidate.ID) > len(item.ID)) {
					item = candidate
				}
			}
		}
		if item == nil || seen[item] {
			continue
		}
		seen[item] = true
		selected = append(selected, item)
	}
	return selected
}

// CountTests returns how many tests a selection covers. An empty selection
// covers every test of roots.
func CountTests(roots, selected []*domain.TestItem) int {
	if len(selected) == 0 {
		selected = roots
	}
	seen := make(map[string]bool)
	for _, item := range selected {
		if item.Kind == domain.KindSuite {
			for _, child := range Flatten([]*domain.TestItem{item}) {
				if child.Kind == domain.KindTest {
					seen[child.ID] = true
				}
			}
			continue
		}
		seen[item.ID] = true
	}
	return len(seen)
}
