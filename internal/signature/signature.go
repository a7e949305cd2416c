// Package signature detects infrastructure failures in raw build output.
package signature

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/acarl005/stripansi"
)

// Signature is a known infrastructure failure marker
type Signature struct {
	Name    string
	Literal string         // matched with strings.Contains when set
	Pattern *regexp.Regexp // matched when Literal is empty
	Message string         // shown to the user
}

// Match reports whether chunk contains the marker
func (s Signature) Match(chunk string) bool {
	if s.Literal != "" {
		return strings.Contains(chunk, s.Literal)
	}
	return s.Pattern != nil && s.Pattern.MatchString(chunk)
}

// Compile builds a signature from configuration. Exactly one of literal and pattern must be set.
func Compile(name, literal, pattern, message string) (Signature, error) {
	switch {
	case name == "":
		return Signature{}, errors.New("signature needs a name")
	case (literal == "") == (pattern == ""):
		return Signature{}, fmt.Errorf("signature %s: set exactly one of literal and pattern", name)
	case message == "":
		return Signature{}, fmt.Errorf("signature %s: missing message", name)
	}
	sig := Signature{Name: name, Literal: literal, Message: message}
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return Signature{}, fmt.Errorf("signature %s: %w", name, err)
		}
		sig.Pattern = re
	}
	return sig, nil
}

// Defaults are the signatures scanned for on every run
var Defaults = []Signature{
	{
		Name:    "maven-http-blocker",
		Literal: "maven-default-http-blocker",
		Message: "Dependency resolution was blocked by Maven's default HTTP repository blocker. " +
			"Switch the repository URL to HTTPS or allow insecure protocols for it.",
	},
	{
		Name:    "blocked-mirror",
		Pattern: regexp.MustCompile(`Blocked mirror for repositories: \[[^\]]*\]`),
		Message: "A repository mirror is blocked for this build. Check the repository configuration and mirror settings.",
	},
	{
		Name:    "dependency-resolution",
		Pattern: regexp.MustCompile(`Could not resolve all (?:files|dependencies|artifacts) for configuration '[^']+'`),
		Message: "The build could not resolve its dependencies. Check network access and repository credentials.",
	},
	{
		Name:    "missing-wrapper",
		Literal: "Could not find or load main class org.gradle.wrapper.GradleWrapperMain",
		Message: "The Gradle wrapper jar is missing. Run `gradle wrapper` or commit gradle/wrapper/gradle-wrapper.jar.",
	},
}

// Notifier shows an infrastructure diagnostic to the user
type Notifier interface {
	ShowError(message string)
}

// Scanner raises at most one diagnostic per run. It is safe to call Scan
// from the stdout and stderr readers concurrently.
type Scanner struct {
	notifier   Notifier
	signatures []Signature
	fired      atomic.Bool
	matched    atomic.Pointer[Signature]
}

// NewScanner creates a Scanner over the given signatures, or Defaults when none are given
func NewScanner(notifier Notifier, signatures ...Signature) *Scanner {
	if len(signatures) == 0 {
		signatures = Defaults
	}
	return &Scanner{notifier: notifier, signatures: signatures}
}

// Scan inspects a raw chunk of output and reports whether it matched a signature
func (s *Scanner) Scan(chunk string) bool {
	if strings.IndexByte(chunk, 0x1b) >= 0 {
		chunk = stripansi.Strip(chunk)
	}
	for i := range s.signatures {
		sig := &s.signatures[i]
		if !sig.Match(chunk) {
			continue
		}
		if s.fired.CompareAndSwap(false, true) {
			s.matched.Store(sig)
			if s.notifier != nil {
				s.notifier.ShowError(sig.Message)
			}
		}
		return true
	}
	return false
}

// Detected reports whether a signature was seen during the run
func (s *Scanner) Detected() bool {
	return s.fired.Load()
}

// Matched returns the first signature seen during the run
func (s *Scanner) Matched() (Signature, bool) {
	sig := s.matched.Load()
	if sig == nil {
		return Signature{}, false
	}
	return *sig, true
}
