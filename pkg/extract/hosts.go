package extract

import (
	"regexp"
	"strings"
)

// Host candidate patterns, applied over the lower-cased text pool. The
// matches of ALL patterns are unioned before validation: a name like
// "s3-node-91" satisfies several patterns and the set union dedupes it.
var hostPatterns = []*regexp.Regexp{
	// storage node naming: s3-node-901, s3-node-91-16
	regexp.MustCompile(`\b(s3-node-\d+(?:-\d+)?)\b`),
	// prefix-number: auth-out-01, accsh-j01, bex-aprtl01
	regexp.MustCompile(`\b([a-z]{2,10}-[a-z]*-?\d{1,3})\b`),
	// classic: llim908, srv001, bay03
	regexp.MustCompile(`\b([a-z]{2,6}\d{2,4})\b`),
	// long prefix-number: towanxyz-123 (awsme-2385 also matches, but a
	// 2-6 letter prefix is ticket-key shaped and validHost drops it)
	regexp.MustCompile(`\b([a-z]{3,8}-\d{3,5})\b`),
	// long run: accshappdyconsolentoolbapproda01
	regexp.MustCompile(`\b([a-z]{6,30}[a-z]\d{2})\b`),
}

// False-positive filters.
var (
	uuidFragmentPattern = regexp.MustCompile(`^[a-f0-9]{4,8}$`)
	hexHashPattern      = regexp.MustCompile(`^[a-f0-9]{32,}$`)
	versionPattern      = regexp.MustCompile(`^v?\d+(\.\d+)*$`)
	nodeFragmentPattern = regexp.MustCompile(`^node-\d+$`)
	cloudRegionPattern  = regexp.MustCompile(`^(eu|us|ap|sa|af|me)-(north|south|east|west|central)-\d+$`)
	ticketKeyPattern    = regexp.MustCompile(`^[a-z]{2,6}-\d{1,5}$`)
	attachmentPattern   = regexp.MustCompile(`^(image|screenshot|img|pic|photo)-`)
	digitsOnlyPattern   = regexp.MustCompile(`^[\d-]+$`)
	hasLetterPattern    = regexp.MustCompile(`[a-z]`)
)

// validHost rejects candidates that match a host pattern but are known
// non-hosts: blacklisted words, uuid/hash fragments, versions, ticket keys,
// cloud regions, attachment names.
func (n *Normalizer) validHost(host string) bool {
	if _, blacklisted := n.hostBlacklist[host]; blacklisted {
		return false
	}
	if uuidFragmentPattern.MatchString(host) || hexHashPattern.MatchString(host) {
		return false
	}
	if digitsOnlyPattern.MatchString(host) {
		return false
	}
	if versionPattern.MatchString(host) {
		return false
	}
	if !hasLetterPattern.MatchString(host) {
		return false
	}
	// bare node-NNN is a fragment of s3-node-NNN
	if nodeFragmentPattern.MatchString(host) {
		return false
	}
	if cloudRegionPattern.MatchString(host) {
		return false
	}
	// ticket-key shaped (icrd-141, ngcs-456), except the s3-node family
	if ticketKeyPattern.MatchString(host) && !strings.HasPrefix(host, "s3-node") {
		return false
	}
	if attachmentPattern.MatchString(host) {
		return false
	}
	return true
}

// extractHosts returns the validated union of all pattern matches over the
// lower-cased text.
func (n *Normalizer) extractHosts(textLower string) []string {
	if textLower == "" {
		return nil
	}

	seen := make(map[string]struct{})
	for _, pattern := range hostPatterns {
		for _, m := range pattern.FindAllStringSubmatch(textLower, -1) {
			seen[m[1]] = struct{}{}
		}
	}

	var hosts []string
	for host := range seen {
		if n.validHost(host) {
			hosts = append(hosts, host)
		}
	}
	return sortedSet(hosts)
}
