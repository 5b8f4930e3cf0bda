// Package wildcard implements the ASCII glob grammar used to match a
// request's Host string against a route's configured pattern: '*'
// matches any run of characters including the empty string, '?'
// matches exactly one character, and every other byte is literal. The
// match is always anchored to the entire subject string.
package wildcard

import "strings"

// Pattern is a compiled host-matching glob. The zero value is not
// valid; use Compile.
type Pattern struct {
	raw string
}

// Compile parses pattern. The grammar has no invalid syntax — any
// string of bytes is an acceptable pattern — so Compile never fails
// today, but it returns an error to leave room for future grammar
// restrictions (e.g. rejecting control bytes) without changing the
// call sites that already check the error.
func Compile(pattern string) (Pattern, error) {
	return Pattern{raw: pattern}, nil
}

// String returns the original pattern text.
func (p Pattern) String() string {
	return p.raw
}

// Match reports whether subject matches the pattern in its entirety.
func (p Pattern) Match(subject string) bool {
	return match(p.raw, subject)
}

// match is a classic iterative glob matcher over '*' and '?', anchored
// at both ends. It tracks the most recent '*' and the subject position
// it was tried against so that a later mismatch can backtrack by
// advancing one byte past that star instead of restarting recursion.
func match(pattern, subject string) bool {
	var pi, si int
	starIdx, starSi := -1, -1

	for si < len(subject) {
		switch {
		case pi < len(pattern) && (pattern[pi] == '?' || pattern[pi] == subject[si]):
			pi++
			si++
		case pi < len(pattern) && pattern[pi] == '*':
			starIdx = pi
			starSi = si
			pi++
		case starIdx != -1:
			pi = starIdx + 1
			starSi++
			si = starSi
		default:
			return false
		}
	}

	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}

	return pi == len(pattern)
}

// HasWildcard reports whether pattern contains any glob metacharacter,
// useful for callers that want to special-case exact-literal routes.
func HasWildcard(pattern string) bool {
	return strings.ContainsAny(pattern, "*?")
}
