package discovery

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gtp/internal/domain"
)

var (
	packagePattern = regexp.MustCompile(`(?m)^\s*package\s+([\w.]+)`)

	// Matches:
	// - class UserSpec extends Specification
	// - public final class OrderTest
	// - @Stepwise class CheckoutSpec
	classPattern = regexp.MustCompile(`(?m)^[ \t]*(?:@\w+(?:\([^)\n]*\))?\s+)*((?:(?:public|protected|private|abstract|final|static)\s+)*)class\s+(\w+)`)

	// Spock feature methods: def "creates a user"() / def 'creates a user'()
	featurePattern = regexp.MustCompile(`(?m)^[ \t]*(?:public\s+)?(?:def|void)\s+(?:"([^"\n]+)"|'([^'\n]+)')\s*\(`)

	// JUnit 4/5 annotated methods, allowing further annotations between @Test and the method
	annotatedPattern = regexp.MustCompile(`(?m)@(?:Test|ParameterizedTest|RepeatedTest|TestFactory)\b[^\n]*\n(?:[ \t]*@[^\n]*\n)*[ \t]*(?:(?:public|protected|private|static|final)\s+)*(?:void|def)\s+(\w+)\s*\(`)

	// JUnit 3 style methods starting with "test"
	prefixedPattern = regexp.MustCompile(`(?m)^[ \t]*(?:public\s+)?(?:void|def)\s+(test\w+)\s*\(`)
)

// Parser parses test files to extract test suites and cases
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// FindSuites finds all concrete test classes and their test cases in a test file
func (p *Parser) FindSuites(filePath string) ([]domain.TestSuite, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}
	return p.ParseSource(filePath, string(content)), nil
}

// ParseSource extracts test suites from source text
func (p *Parser) ParseSource(filePath, source string) []domain.TestSuite {
	pkg := ""
	if m := packagePattern.FindStringSubmatch(source); m != nil {
		pkg = m[1]
	}

	type classAt struct {
		suite    domain.TestSuite
		offset   int
		abstract bool
		seen     map[string]bool
	}

	var classes []*classAt
	for _, m := range classPattern.FindAllStringSubmatchIndex(source, -1) {
		modifiers := source[m[2]:m[3]]
		classes = append(classes, &classAt{
			suite: domain.TestSuite{
				Package:  pkg,
				Class:    source[m[4]:m[5]],
				FilePath: filePath,
				Line:     lineAt(source, m[4]),
			},
			offset:   m[0],
			abstract: strings.Contains(modifiers, "abstract"),
			seen:     map[string]bool{},
		})
	}
	if len(classes) == 0 {
		return nil
	}

	// Cases belong to the closest class declared before them
	add := func(name string, offset int) {
		var owner *classAt
		for _, c := range classes {
			if c.offset <= offset {
				owner = c
			}
		}
		if owner == nil || owner.seen[name] {
			return
		}
		owner.seen[name] = true
		owner.suite.Cases = append(owner.suite.Cases, domain.TestCase{Name: name, Line: lineAt(source, offset)})
	}

	for _, m := range featurePattern.FindAllStringSubmatchIndex(source, -1) {
		if m[2] >= 0 {
			add(source[m[2]:m[3]], m[2])
		} else {
			add(source[m[4]:m[5]], m[4])
		}
	}
	for _, pattern := range []*regexp.Regexp{annotatedPattern, prefixedPattern} {
		for _, m := range pattern.FindAllStringSubmatchIndex(source, -1) {
			add(source[m[2]:m[3]], m[2])
		}
	}

	var suites []domain.TestSuite
	for _, c := range classes {
		if c.abstract || len(c.suite.Cases) == 0 {
			continue
		}
		sort.SliceStable(c.suite.Cases, func(i, j int) bool {
			return c.suite.Cases[i].Line < c.suite.Cases[j].Line
		})
		suites = append(suites, c.suite)
	}
	return suites
}

// BuildTree turns discovered suites into test item trees
func BuildTree(suites []domain.TestSuite) []*domain.TestItem {
	var roots []*domain.TestItem
	for _, s := range suites {
		suite := &domain.TestItem{
			ID:       s.QualifiedName(),
			Label:    s.Class,
			Location: &domain.Location{File: s.FilePath, Line: s.Line},
			Kind:     domain.KindSuite,
		}
		for _, c := range s.Cases {
			suite.AddChild(&domain.TestItem{
				ID:       suite.ID + "." + c.Name,
				Label:    c.Name,
				Location: &domain.Location{File: s.FilePath, Line: c.Line},
				Kind:     domain.KindTest,
			})
		}
		roots = append(roots, suite)
	}
	return roots
}

func lineAt(source string, offset int) int {
	return strings.Count(source[:offset], "\n") + 1
}
