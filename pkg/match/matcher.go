// Package match ranks catalog entity tables by similarity to a name that
// failed to resolve, so error recovery can propose real alternatives.
package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mdlh-io/queryassist/pkg/similarity"
)

const (
	// DefaultMinScore is the floor below which a candidate is noise.
	DefaultMinScore = 0.25
	// DefaultMaxResults caps the returned list.
	DefaultMaxResults = 8

	entitySuffix = "_ENTITY"
)

// Match is one scored candidate. Reason is a short human-readable
// explanation of why the candidate scored, suitable for a suggestion body.
type Match struct {
	Name   string
	Score  float64
	Reason string
}

// Matcher scores candidate entity tables against a target name. The zero
// value is not usable; construct with New.
type Matcher struct {
	minScore   float64
	maxResults int
}

// New builds a Matcher. Non-positive arguments fall back to the defaults.
func New(minScore float64, maxResults int) *Matcher {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Matcher{minScore: minScore, maxResults: maxResults}
}

// FindSimilar scores every candidate against target and returns the
// strongest matches, best first. The target itself is excluded, duplicates
// collapse case-insensitively keeping the first spelling seen, and the
// result is truncated to maxResults.
func (m *Matcher) FindSimilar(target string, candidates []string) []Match {
	targetUpper := strings.ToUpper(target)

	var matches []Match
	seen := make(map[string]bool, len(candidates))
	for _, candidate := range candidates {
		upper := strings.ToUpper(candidate)
		if upper == targetUpper || seen[upper] {
			continue
		}
		seen[upper] = true

		if score, reason := Score(targetUpper, upper); score >= m.minScore {
			matches = append(matches, Match{Name: candidate, Score: score, Reason: reason})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > m.maxResults {
		matches = matches[:m.maxResults]
	}
	return matches
}

// Score rates how likely candidate is the table the author meant by target.
// Both arguments must already be uppercase. Strategies run in priority
// order and the first one that fires wins:
//
//  1. structural similarity of decomposed name parts, weighted toward a
//     shared connector family (accepted above 0.3)
//  2. containment of one entity stem in the other, scaled by length ratio
//  3. plain edit distance over the full names
func Score(target, candidate string) (float64, string) {
	if s, r := structuralScore(target, candidate); s > 0 {
		return s, r
	}
	if s, r := containmentScore(target, candidate); s > 0 {
		return s, r
	}
	return similarity.NormalizedSimilarity(target, candidate), "similar spelling"
}

// containmentScore checks whether one name's stem contains the other after
// stripping the entity suffix. TABLE_ENTITY vs SALESFORCE_TABLE_ENTITY is
// a near-certain rename, so containment scores high, scaled by how much of
// the longer stem the shorter one covers.
func containmentScore(target, candidate string) (float64, string) {
	a := strings.TrimSuffix(target, entitySuffix)
	b := strings.TrimSuffix(candidate, entitySuffix)
	if a == "" || b == "" {
		return 0, ""
	}

	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if !strings.Contains(longer, shorter) {
		return 0, ""
	}

	ratio := float64(len(shorter)) / float64(len(longer))
	score := 0.5 + 0.45*ratio
	return score, fmt.Sprintf("name contains %q", shorter)
}

// structuralScore compares decomposed identifiers: shared connector family
// is the strongest signal, then the fraction of shared name parts, then a
// small length-similarity nudge to break ties between otherwise equal
// candidates.
func structuralScore(target, candidate string) (float64, string) {
	td := similarity.Decompose(target)
	cd := similarity.Decompose(candidate)
	if len(td.Parts) == 0 || len(cd.Parts) == 0 {
		return 0, ""
	}

	var score float64
	var reason string
	if td.Family != "" && td.Family == cd.Family {
		score += 0.4
		reason = fmt.Sprintf("same %s family", td.Family)
	}

	shared := similarity.SharedParts(td, cd)
	maxParts := len(td.Parts)
	if len(cd.Parts) > maxParts {
		maxParts = len(cd.Parts)
	}
	if shared > 0 && maxParts > 0 {
		score += 0.5 * float64(shared) / float64(maxParts)
		if reason == "" {
			reason = fmt.Sprintf("shares %d name part(s)", shared)
		}
	}

	shortLen, longLen := len(target), len(candidate)
	if shortLen > longLen {
		shortLen, longLen = longLen, shortLen
	}
	if longLen > 0 {
		score += 0.1 * float64(shortLen) / float64(longLen)
	}

	// Length similarity alone is meaningless; require a real signal.
	if score <= 0.3 || reason == "" {
		return 0, ""
	}
	return score, reason
}
