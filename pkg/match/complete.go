package match

import "strings"

// Complete proposes name completions for a partial identifier while the
// user is typing. Case-insensitive prefix matches come first in candidate
// order, then fuzzy matches from FindSimilar fill the remaining slots up
// to maxResults.
func (m *Matcher) Complete(prefix string, candidates []string) []string {
	prefixUpper := strings.ToUpper(prefix)

	var names []string
	seen := make(map[string]bool, len(candidates))
	if prefixUpper != "" {
		for _, candidate := range candidates {
			upper := strings.ToUpper(candidate)
			if seen[upper] || !strings.HasPrefix(upper, prefixUpper) {
				continue
			}
			seen[upper] = true
			names = append(names, candidate)
			if len(names) == m.maxResults {
				return names
			}
		}
	}

	for _, fuzzy := range m.FindSimilar(prefix, candidates) {
		if seen[strings.ToUpper(fuzzy.Name)] {
			continue
		}
		names = append(names, fuzzy.Name)
		if len(names) == m.maxResults {
			break
		}
	}
	return names
}
