package matcher

import "strings"

// Match reports whether name matches pattern. The only metacharacter is
// '*', which matches any run of characters including none and including
// separators such as '.'. Matching is case-insensitive and anchored to the
// full name: "c5*" matches "c5n.xlarge" but not "mc5.large".
//
// Implemented as its own predicate rather than path.Match because the glob
// dialect here has no '?' or character classes, and '*' must cross '.'.
func Match(pattern, name string) bool {
	p := strings.ToLower(pattern)
	n := strings.ToLower(name)

	// Greedy scan with single-star backtracking.
	var pi, ni int
	star, backtrack := -1, 0
	for ni < len(n) {
		switch {
		case pi < len(p) && p[pi] == '*':
			star = pi
			backtrack = ni
			pi++
		case pi < len(p) && p[pi] == n[ni]:
			pi++
			ni++
		case star >= 0:
			backtrack++
			ni = backtrack
			pi = star + 1
		default:
			return false
		}
	}

	// Trailing stars match the empty remainder.
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}

// MatchAny reports whether name matches at least one of the patterns.
func MatchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if Match(pattern, name) {
			return true
		}
	}
	return false
}
