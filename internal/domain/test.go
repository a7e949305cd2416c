package domain

// ItemKind distinguishes suites from individual tests
type ItemKind int

const (
	KindSuite ItemKind = iota
	KindTest
)

func (k ItemKind) String() string {
	if k == KindSuite {
		return "suite"
	}
	return "test"
}

// Location points at the source that declares a test item
type Location struct {
	File string `json:"file"`
	Line int    `json:"line,omitempty"`
}

// TestItem is the handle for a suite, a test method or a dynamic iteration.
// Items are created by discovery or by the materializer and referenced by
// the registry; the engine never deletes them.
type TestItem struct {
	ID       string
	Label    string
	Location *Location
	Kind     ItemKind
	Dynamic  bool // created from the event stream, not from discovery
	Parent   *TestItem

	children []*TestItem
	childIDs map[string]int
}

// AddChild attaches child to the item, replacing an existing child with the same id
func (t *TestItem) AddChild(child *TestItem) {
	if t.childIDs == nil {
		t.childIDs = make(map[string]int)
	}
	child.Parent = t
	if i, ok := t.childIDs[child.ID]; ok {
		t.children[i] = child
		return
	}
	t.childIDs[child.ID] = len(t.children)
	t.children = append(t.children, child)
}

// Children returns the item's children in insertion order
func (t *TestItem) Children() []*TestItem {
	out := make([]*TestItem, len(t.children))
	copy(out, t.children)
	return out
}

// Child looks up a direct child by id
func (t *TestItem) Child(id string) (*TestItem, bool) {
	i, ok := t.childIDs[id]
	if !ok {
		return nil, false
	}
	return t.children[i], true
}

// SuiteID returns the qualified id of the suite that owns the item
func (t *TestItem) SuiteID() string {
	for it := t; it != nil; it = it.Parent {
		if it.Kind == KindSuite {
			return it.ID
		}
	}
	return ""
}

// ItemFactory creates test item handles
type ItemFactory interface {
	CreateTestItem(id, label string, loc *Location) *TestItem
}

// DefaultFactory creates plain TestItem values
type DefaultFactory struct{}

// CreateTestItem creates a test-kind item
func (DefaultFactory) CreateTestItem(id, label string, loc *Location) *TestItem {
	return &TestItem{ID: id, Label: label, Location: loc, Kind: KindTest}
}

// TestCase represents a single test method discovered in a source file
type TestCase struct {
	Name string // Method name or Spock feature name
	Line int
}

// TestSuite represents a test class discovered in a source file
type TestSuite struct {
	Package  string
	Class    string
	FilePath string
	Line     int
	Cases    []TestCase
}

// QualifiedName returns the package qualified class name
func (s TestSuite) QualifiedName() string {
	if s.Package == "" {
		return s.Class
	}
	return s.Package + "." + s.Class
}
