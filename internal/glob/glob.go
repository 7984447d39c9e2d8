package glob

import (
	"regexp"
	"strings"
)

// Matches reports whether name satisfies a shell-style pattern.
// Supported metacharacters: '*' matches zero or more characters,
// '?' matches exactly one character. Everything else is literal.
// The match is anchored: the whole name must satisfy the pattern.
// Patterns apply to a single path component, there are no
// directory-separator semantics.
func Matches(name, pattern string) bool {
	return compile(pattern).MatchString(name)
}

// MatchesAny reports whether name satisfies at least one of patterns.
func MatchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if Matches(name, pattern) {
			return true
		}
	}
	return false
}

// compile translates a glob pattern into an anchored regexp.
// Every regexp metacharacter is escaped first, so compilation
// cannot fail on any input. The (?s) flag makes '.' match newlines,
// which are legal in file names.
func compile(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("(?s)^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}
