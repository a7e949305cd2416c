package discovery

import (
	"testing"

	"gtp/internal/domain"
)

func suiteWith(id, label string, cases ...string) *domain.TestItem {
	suite := &domain.TestItem{ID: id, Label: label, Kind: domain.KindSuite}
	for _, c := range cases {
		suite.AddChild(&domain.TestItem{ID: id + "." + c, Label: c, Kind: domain.KindTest})
	}
	return suite
}

func flatten(roots ...*domain.TestItem) []*domain.TestItem {
	var out []*domain.TestItem
	for _, r := range roots {
		out = append(out, r)
		out = append(out, flatten(r.Children()...)...)
	}
	return out
}

func TestFilter_FilterByName(t *testing.T) {
	filter := NewFilter()
	items := flatten(
		suiteWith("com.example.UserSpec", "UserSpec", "creates a user"),
		suiteWith("com.example.PaymentSpec", "PaymentSpec", "charges card"),
		suiteWith("com.example.PaymentServiceTest", "PaymentServiceTest", "refund"),
	)

	tests := []struct {
		name     string
		pattern  string
		expected int // Expected number of matches
	}{
		{name: "empty pattern returns all", pattern: "", expected: 6},
		{name: "wildcard pattern matches suite and its tests", pattern: "*UserSpec", expected: 2},
		{name: "wildcard pattern matches substring", pattern: "*Payment*", expected: 4},
		{name: "simple contains match", pattern: "charges", expected: 1},
		{name: "no matches", pattern: "*NonExistent*", expected: 0},
		{name: "multiple wildcards keep order", pattern: "*Payment*Test*", expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.FilterByName(items, tt.pattern)
			if len(result) != tt.expected {
				t.Errorf("expected %d matches, got %d", tt.expected, len(result))
			}
		})
	}
}

func TestFilter_SelectByID(t *testing.T) {
	filter := NewFilter()
	items := flatten(suiteWith("com.example.UserSpec", "UserSpec", "a", "b"))

	selected := filter.SelectByID(items, []string{"com.example.UserSpec.b", "missing", "com.example.UserSpec"})
	if len(selected) != 2 {
		t.Fatalf("expected 2 items, got %d", len(selected))
	}
	if selected[0].ID != "com.example.UserSpec.b" || selected[1].ID != "com.example.UserSpec" {
		t.Errorf("unexpected order: %s, %s", selected[0].ID, selected[1].ID)
	}
}

func TestShellArgs(t *testing.T) {
	spec := suiteWith("com.example.MySpec", "MySpec", "multi-argument capture", "simple")
	children := spec.Children()

	dynamic := &domain.TestItem{ID: "com.example.MySpec.simple[0]", Label: "simple 0", Kind: domain.KindTest, Dynamic: true}
	children[1].AddChild(dynamic)

	tests := []struct {
		name     string
		items    []*domain.TestItem
		expected string
	}{
		{
			name:     "leaf with whitespace",
			items:    []*domain.TestItem{children[0]},
			expected: `--tests "com.example.MySpec.multi-argument capture"`,
		},
		{
			name:     "suite only",
			items:    []*domain.TestItem{spec},
			expected: `--tests "com.example.MySpec"`,
		},
		{
			name:     "multiple selections",
			items:    []*domain.TestItem{children[0], children[1]},
			expected: `--tests "com.example.MySpec.multi-argument capture" --tests "com.example.MySpec.simple"`,
		},
		{
			name:     "dynamic iteration filters by its static test",
			items:    []*domain.TestItem{dynamic, children[1]},
			expected: `--tests "com.example.MySpec.simple"`,
		},
		{
			name:     "nothing selected",
			items:    nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShellArgs(tt.items); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestBuildTestArgs(t *testing.T) {
	spec := suiteWith("com.example.MySpec", "MySpec", "multi-argument capture")

	args := BuildTestArgs("test", spec.Children())
	expected := []string{"test", "--tests", "com.example.MySpec.multi-argument capture"}
	if len(args) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, args)
	}
	for i := range expected {
		if args[i] != expected[i] {
			t.Errorf("arg %d: expected %q, got %q", i, expected[i], args[i])
		}
	}
}

func TestQuote(t *testing.T) {
	tests := map[string]string{
		"plain":      `"plain"`,
		"with space": `"with space"`,
		`say "hi"`:   `"say \"hi\""`,
		"costs $5":   `"costs \$5"`,
		`back\slash`: `"back\\slash"`,
	}
	for in, expected := range tests {
		if got := Quote(in); got != expected {
			t.Errorf("Quote(%q): expected %s, got %s", in, expected, got)
		}
	}
}

func TestShellCommand(t *testing.T) {
	got := ShellCommand("./gradlew", []string{"test", "--tests", "com.example.MySpec.multi-argument capture"})
	expected := `./gradlew test --tests "com.example.MySpec.multi-argument capture"`
	if got != expected {
		t.Errorf("expected %s, got %s", expected, got)
	}
}
