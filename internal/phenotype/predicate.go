// Package phenotype decides which phenotype labels denote the dual-marker
// (CD4+ FOXP3+) population.
package phenotype

import "strings"

// DualMarker matches labels containing both markers, case-insensitively and
// in any order.
type DualMarker struct {
	First  string
	Second string
}

// CD4FOXP3 is the target marker pair
var CD4FOXP3 = DualMarker{First: "cd4", Second: "foxp3"}

// Match reports whether label contains both markers
func (d DualMarker) Match(label string) bool {
	l := strings.ToLower(label)
	return strings.Contains(l, strings.ToLower(d.First)) && strings.Contains(l, strings.ToLower(d.Second))
}

// Matcher decides target membership for a trimmed, non-empty phenotype label
type Matcher interface {
	Match(label string) bool
	// Strategy names the rule in effect, for reporting
	Strategy() string
}

type exactMatcher struct {
	vocab Vocabulary
}

func (m exactMatcher) Match(label string) bool { return m.vocab.Contains(label) }
func (m exactMatcher) Strategy() string        { return "vocabulary" }

type substringMatcher struct {
	marker DualMarker
}

func (m substringMatcher) Match(label string) bool { return m.marker.Match(label) }
func (m substringMatcher) Strategy() string        { return "dual-substring" }

// NewMatcher returns exact, case-sensitive vocabulary membership when vocab is
// non-empty, and the dual-substring predicate otherwise.
func NewMatcher(vocab Vocabulary, marker DualMarker) Matcher {
	if vocab.Len() > 0 {
		return exactMatcher{vocab: vocab}
	}
	return substringMatcher{marker: marker}
}
