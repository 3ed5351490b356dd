package policy

import (
	"regexp"
	"strings"
)

// compiledGlob pairs a source glob pattern with its precompiled
// matcher, so a blocked/allowed verdict can report which pattern
// actually fired without recompiling at match time.
type compiledGlob struct {
	source string
	re     *regexp.Regexp
}

var regexMetaEscaper = strings.NewReplacer(
	".", `\.`, "+", `\+`, "^", `\^`, "$", `\$`,
	"{", `\{`, "}", `\}`, "(", `\(`, ")", `\)`,
	"|", `\|`, "[", `\[`, "]", `\]`, `\`, `\\`,
)

// compileGlob turns a shell-style glob ("*" = zero or more, "?" =
// exactly one) into an anchored regexp. Regex metacharacters in the
// pattern are escaped first so a literal "." in a recipient pattern
// doesn't become "any character". If compilation fails for any reason,
// compileGlob falls back to a matcher for the literal pattern, i.e.
// exact-string equality.
func compileGlob(pattern string) compiledGlob {
	if pattern == "*" {
		return compiledGlob{source: pattern, re: regexp.MustCompile(`^.*$`)}
	}

	escaped := regexMetaEscaper.Replace(pattern)
	escaped = strings.ReplaceAll(escaped, "*", ".*")
	escaped = strings.ReplaceAll(escaped, "?", ".")

	re, err := regexp.Compile("^" + escaped + "$")
	if err != nil {
		// Fall back to a matcher that only matches the literal pattern.
		return compiledGlob{source: pattern, re: regexp.MustCompile("^" + regexp.QuoteMeta(pattern) + "$")}
	}
	return compiledGlob{source: pattern, re: re}
}

func (g compiledGlob) Match(value string) bool {
	if g.source == value {
		return true
	}
	return g.re.MatchString(value)
}

// compileGlobs precompiles a list of source patterns, preserving order
// (first match wins matters for diagnostic reporting, not semantics,
// since every pattern is tried independently).
func compileGlobs(patterns []string) []compiledGlob {
	compiled := make([]compiledGlob, len(patterns))
	for i, p := range patterns {
		compiled[i] = compileGlob(p)
	}
	return compiled
}

func matchAny(globs []compiledGlob, value string) (bool, string) {
	for _, g := range globs {
		if g.Match(value) {
			return true, g.source
		}
	}
	return false, ""
}
