// Package match selects bucket names by substring or glob pattern.
package match

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultSubstring is the name fragment that identifies lab buckets.
const DefaultSubstring = "glue-labs"

// Mode controls how a pattern is compared against bucket names.
type Mode string

const (
	// ModeContains matches names that contain the pattern literally.
	ModeContains Mode = "contains"

	// ModeGlob matches names against a doublestar glob pattern.
	ModeGlob Mode = "glob"
)

// Errors returned by Selector operations.
var (
	// ErrNoMatch is returned when no name satisfies the pattern.
	ErrNoMatch = errors.New("no bucket name matches")

	// ErrEmptyPattern is returned when a selector is built without a pattern.
	ErrEmptyPattern = errors.New("pattern must not be empty")

	// ErrInvalidPattern is returned when a glob pattern cannot be compiled.
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrUnknownMode is returned for modes other than contains and glob.
	ErrUnknownMode = errors.New("unknown match mode")
)

// PatternError wraps pattern-related errors with context.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return "pattern " + e.Pattern + ": " + e.Err.Error()
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Selector picks bucket names matching a single pattern.
//
// Matching never reorders its input: the first match is the first name in
// the order the caller supplied. A Selector is safe for concurrent use.
type Selector struct {
	pattern string
	mode    Mode
}

// New creates a Selector. An empty mode means ModeContains.
func New(pattern string, mode Mode) (*Selector, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern
	}
	if mode == "" {
		mode = ModeContains
	}

	switch mode {
	case ModeContains:
	case ModeGlob:
		if !doublestar.ValidatePattern(pattern) {
			return nil, &PatternError{Pattern: pattern, Err: ErrInvalidPattern}
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	return &Selector{pattern: pattern, mode: mode}, nil
}

// Default returns the selector for DefaultSubstring.
func Default() *Selector {
	return &Selector{pattern: DefaultSubstring, mode: ModeContains}
}

// Pattern returns the configured pattern.
func (s *Selector) Pattern() string {
	return s.pattern
}

// Mode returns the configured match mode.
func (s *Selector) Mode() Mode {
	return s.mode
}

// Match reports whether name satisfies the pattern.
func (s *Selector) Match(name string) bool {
	if s.mode == ModeGlob {
		// Pattern validated in New, so the error is always nil.
		ok, _ := doublestar.Match(s.pattern, name)
		return ok
	}
	return strings.Contains(name, s.pattern)
}

// Filter returns every matching name, preserving input order.
func (s *Selector) Filter(names []string) []string {
	var matched []string
	for _, name := range names {
		if s.Match(name) {
			matched = append(matched, name)
		}
	}
	return matched
}

// Select returns the first matching name in input order.
// Returns ErrNoMatch (wrapped with the pattern) when nothing matches.
func (s *Selector) Select(names []string) (string, error) {
	for _, name := range names {
		if s.Match(name) {
			return name, nil
		}
	}
	return "", &PatternError{Pattern: s.pattern, Err: ErrNoMatch}
}
