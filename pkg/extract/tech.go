package extract

import "regexp"

// techMatcher is one vocabulary entry with its whole-word pattern,
// precompiled at normalizer construction.
type techMatcher struct {
	name    string
	pattern *regexp.Regexp
}

func compileTechMatchers(vocabulary []string) []techMatcher {
	matchers := make([]techMatcher, 0, len(vocabulary))
	for _, tech := range vocabulary {
		matchers = append(matchers, techMatcher{
			name:    tech,
			pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(tech) + `\b`),
		})
	}
	return matchers
}

// extractTechnologies returns every vocabulary token appearing as a whole
// word in the lower-cased text.
func (n *Normalizer) extractTechnologies(textLower string) []string {
	if textLower == "" {
		return nil
	}
	var found []string
	for _, m := range n.techMatchers {
		if m.pattern.MatchString(textLower) {
			found = append(found, m.name)
		}
	}
	return sortedSet(found)
}
