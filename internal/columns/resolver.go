// Package columns locates the phenotype, distance and sample-name columns of a
// table header.
package columns

import (
	"strings"

	"phenosplit/domain/table"
)

const (
	PhenotypeColumn  = "phenotype"
	SampleNameColumn = "sample name"
)

// splitDistanceTokens are how "distance" appears in the source exports: the
// word is broken by one or two stray spaces.
var splitDistanceTokens = []string{"d  istance", "d istance"}

// distanceQualifiers are words one of which must accompany the split token
var distanceQualifiers = []string{"micron", "edge", "process", "tissue"}

// Strategy is a named predicate over a lower-cased column name
type Strategy struct {
	Name  string
	Match func(lower string) bool
}

// DistanceStrategies are evaluated in order; the first tier with any match wins.
var DistanceStrategies = []Strategy{
	{Name: "split-token", Match: matchSplitToken},
	{Name: "distance-substring", Match: matchDistanceSubstring},
}

func matchSplitToken(lower string) bool {
	split := false
	for _, tok := range splitDistanceTokens {
		if strings.Contains(lower, tok) {
			split = true
			break
		}
	}
	if !split {
		return false
	}
	for _, q := range distanceQualifiers {
		if strings.Contains(lower, q) {
			return true
		}
	}
	return false
}

func matchDistanceSubstring(lower string) bool {
	return strings.Contains(lower, "distance")
}

// Match is a resolved column
type Match struct {
	Index    int
	Name     string
	Strategy string
	// Ignored lists other columns the winning strategy also matched, left to right
	Ignored []string
}

// Resolution is everything one header scan finds
type Resolution struct {
	Phenotype    int
	HasPhenotype bool

	Distance    Match
	HasDistance bool

	SampleName    int
	HasSampleName bool
}

// ResolvePhenotype finds the column named exactly "phenotype" (case-insensitive)
func ResolvePhenotype(h table.Header) (int, bool) {
	return h.Index().Lookup(PhenotypeColumn)
}

// ResolveSampleName finds the optional "sample name" column
func ResolveSampleName(h table.Header) (int, bool) {
	return h.Index().Lookup(SampleNameColumn)
}

// ResolveDistance applies DistanceStrategies to h
func ResolveDistance(h table.Header) (Match, bool) {
	return ResolveWith(h, DistanceStrategies)
}

// ResolveWith returns the first column (left to right) matched by the first
// strategy that matches anything.
func ResolveWith(h table.Header, strategies []Strategy) (Match, bool) {
	for _, s := range strategies {
		m := Match{Index: -1, Strategy: s.Name}
		for i, name := range h {
			if name == "" || !s.Match(strings.ToLower(name)) {
				continue
			}
			if m.Index < 0 {
				m.Index = i
				m.Name = name
				continue
			}
			m.Ignored = append(m.Ignored, name)
		}
		if m.Index >= 0 {
			return m, true
		}
	}
	return Match{Index: -1}, false
}

// Resolve scans the header once for all three columns
func Resolve(h table.Header) Resolution {
	idx := h.Index()
	var r Resolution
	r.Phenotype, r.HasPhenotype = idx.Lookup(PhenotypeColumn)
	r.SampleName, r.HasSampleName = idx.Lookup(SampleNameColumn)
	r.Distance, r.HasDistance = ResolveDistance(h)
	return r
}
