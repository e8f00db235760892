package scraper

import "regexp"

// Lowercase letters and underscore are included because some cardnos carry
// suffixes like 'a'/'b'.
var cardnoRe = regexp.MustCompile(`cardno=([A-Za-z0-9_\-]+)`)

// ExtractCardnos returns the set of distinct cardno tokens appearing in raw
// markup. It is pure and never fails; markup that contains no identifiers
// yields an empty set.
func ExtractCardnos(html string) map[string]struct{} {
	found := make(map[string]struct{})
	for _, m := range cardnoRe.FindAllStringSubmatch(html, -1) {
		found[m[1]] = struct{}{}
	}
	return found
}
