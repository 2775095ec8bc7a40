package extract

import (
	"regexp"
	"strings"
)

var (
	bracketTagPattern = regexp.MustCompile(`\[([^\]]+)\]`)
	dateTagPattern    = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}`)

	// business-unit brand prefixes, ordered by specificity
	buPrefixPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^ar_(.+)$`),
		regexp.MustCompile(`^fh_(.+)$`),
		regexp.MustCompile(`^ic-(.+)$`),
		regexp.MustCompile(`^ionos-(.+)$`),
		regexp.MustCompile(`^strato-(.+)$`),
		regexp.MustCompile(`^home\.pl-(.+)$`),
		regexp.MustCompile(`^cronon[- ](.+)$`),
		regexp.MustCompile(`^fasthosts[- ](.+)$`),
		regexp.MustCompile(`^world4you[- ](.+)$`),
		regexp.MustCompile(`^internetx[- ](.+)$`),
		regexp.MustCompile(`^we22[- ](.+)$`),
		regexp.MustCompile(`^udag[- ](.+)$`),
	}

	// "Next Generation Cloud Server (NGCS)" → ngcs
	buAcronymPattern  = regexp.MustCompile(`^(.+?)\s*\(([a-z]{2,10}(?:-[a-z]{2,10})?)\)$`)
	trailingParenRE   = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	digitsAndSepsOnly = regexp.MustCompile(`^[\d :,]+$`)
)

// Generic organizational suffixes stripped from business-unit names.
var buGenericSuffixes = []string{
	"business support systems", "customer interaction systems",
	"employee support systems", "operations support systems",
	"product service systems", "external supplier systems",
	"outsourced service systems", "corporate management systems",
	"-bss", "-cis", "-ess", "-oss", "-pss", "-extss", "-outss", "-cms",
}

// validServiceTag filters bracket tags that never denote a service: user
// mentions, dates, URLs, image macros, one-character tags, and bare numbers.
// Severity and environment labels are dropped separately through the
// ignore-tag table in extractServices.
func (n *Normalizer) validServiceTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if strings.HasPrefix(tag, "~") {
		return false
	}
	if dateTagPattern.MatchString(tag) {
		return false
	}
	if strings.HasPrefix(tag, "http") || strings.Contains(tag, ".com") || strings.Contains(tag, ".org") {
		return false
	}
	if strings.HasPrefix(tag, "!") || strings.HasSuffix(tag, "!") {
		return false
	}
	if len(tag) < 2 {
		return false
	}
	if digitsAndSepsOnly.MatchString(tag) {
		return false
	}
	return true
}

// parseBusinessUnit extracts a service name from a business-unit label.
//
// Recognized shapes:
//
//	AR_Cloud Builder               → cloud builder
//	IC-S3 Object Storage           → s3 object storage
//	IONOS-NGCS                     → ngcs
//	Next Generation Cloud Server (NGCS) → ngcs
//	IONOS Cloud/IONOS Cloud PSS/IC-S3 Object Storage → s3 object storage
//	Arsys Business Support Systems → arsys
func parseBusinessUnit(bu string) string {
	bu = strings.TrimSpace(bu)
	if bu == "" {
		return ""
	}
	lower := strings.ToLower(bu)

	for _, pattern := range buPrefixPatterns {
		if m := pattern.FindStringSubmatch(lower); m != nil {
			return strings.TrimSpace(strings.ReplaceAll(m[1], "_", " "))
		}
	}

	if m := buAcronymPattern.FindStringSubmatch(lower); m != nil {
		return strings.TrimSpace(m[2])
	}

	// hierarchical path: recurse on the last segment
	if strings.Contains(bu, "/") {
		parts := strings.Split(bu, "/")
		last := strings.TrimSpace(parts[len(parts)-1])
		if parsed := parseBusinessUnit(last); parsed != "" {
			return parsed
		}
		return strings.ToLower(last)
	}

	result := lower
	for _, suffix := range buGenericSuffixes {
		if strings.HasSuffix(result, suffix) {
			result = strings.TrimSpace(strings.TrimSuffix(result, suffix))
			result = strings.TrimSpace(trailingParenRE.ReplaceAllString(result, ""))
			break
		}
	}

	if len(result) >= 2 {
		return result
	}
	if len(bu) >= 2 && len(bu) <= 50 {
		return lower
	}
	return ""
}

// extractServices combines the three service sources: synonym hits anywhere
// in the text pool, bracket tags matched against synonyms, and parsed
// business-unit fields.
func (n *Normalizer) extractServices(text string, businessUnits []string) []string {
	services := make(map[string]struct{})

	if text != "" {
		textLower := strings.ToLower(text)
		for canonical, aliases := range n.synonyms {
			if strings.Contains(textLower, canonical) {
				services[canonical] = struct{}{}
			}
			for _, alias := range aliases {
				if strings.Contains(textLower, alias) {
					services[canonical] = struct{}{}
				}
			}
		}

		for _, m := range bracketTagPattern.FindAllStringSubmatch(text, -1) {
			tag := m[1]
			if !n.validServiceTag(tag) {
				continue
			}
			tagLower := strings.TrimSpace(strings.ToLower(tag))
			if _, ignored := n.ignoreTags[tagLower]; ignored {
				continue
			}
			for canonical, aliases := range n.synonyms {
				if matchesTag(tagLower, canonical, aliases) {
					services[canonical] = struct{}{}
					break
				}
			}
		}
	}

	for _, bu := range businessUnits {
		if service := parseBusinessUnit(bu); service != "" {
			services[service] = struct{}{}
		}
	}

	out := make([]string, 0, len(services))
	for s := range services {
		out = append(out, s)
	}
	return sortedSet(out)
}

func matchesTag(tagLower, canonical string, aliases []string) bool {
	if strings.Contains(tagLower, canonical) {
		return true
	}
	for _, alias := range aliases {
		if strings.Contains(tagLower, alias) {
			return true
		}
	}
	return false
}
