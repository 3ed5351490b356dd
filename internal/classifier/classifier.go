// Package classifier implements the pattern classifier (C2): an
// ordered, additive set of weighted regex rules plus a structural
// Unicode-smuggling scan (unicode.go), producing an injection
// probability in [0,1].
//
// The classifier is injectable: the firewall depends on the Classifier
// interface, not this concrete type, so a caller can supply a custom
// or ML-backed implementation (see spec §1 Non-goals — we ship the
// default, not the only possible, classifier).
package classifier

import (
	"regexp"
)

// Severity weights, summed additively and clamped to 1.0.
const (
	weightHigh   = 0.4
	weightMedium = 0.2
	weightLow    = 0.1
)

// MatchDetail is one rule that fired during Classify, kept for the
// firewall's audit trail and for operators debugging a block.
type MatchDetail struct {
	Description string
	Severity    string // "high", "medium", "low"
}

// Result is the outcome of classifying one piece of text.
type Result struct {
	InjectionProbability float64
	Details               []MatchDetail
}

// Classifier is the interface the firewall depends on. Classify must be
// deterministic for fixed input given a fixed rule set.
type Classifier interface {
	Classify(text string) (Result, error)
}

// Rule is a single detection pattern: a compiled regex, its severity,
// and a human-readable description used in the match trace.
type Rule struct {
	Pattern     *regexp.Regexp
	Severity    string // "high", "medium", "low"
	Description string
}

// PatternClassifier is the default Classifier. It holds an ordered list
// of rules — the built-ins plus any caller-supplied custom rules — and
// sums the weight of every rule that matches; a match never
// short-circuits the scan, because the probability is meant to reflect
// the total weight of evidence, not just the first hit.
type PatternClassifier struct {
	rules   []Rule
	enabled bool
}

// Option configures a PatternClassifier at construction time.
type Option func(*PatternClassifier)

// WithCustomRules appends caller-supplied rules after the built-ins.
func WithCustomRules(rules ...Rule) Option {
	return func(c *PatternClassifier) {
		c.rules = append(c.rules, rules...)
	}
}

// WithPatternDetectionDisabled makes Classify always return probability
// 0 — used when the firewall configuration turns pattern detection off
// in favor of an externally supplied classifier.
func WithPatternDetectionDisabled() Option {
	return func(c *PatternClassifier) { c.enabled = false }
}

// New builds a PatternClassifier with the built-in rule set applied,
// then any options.
func New(opts ...Option) *PatternClassifier {
	c := &PatternClassifier{rules: builtinRules(), enabled: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify runs every rule against text and sums the matched weight,
// clamped to 1.0. Unicode-smuggling findings (invisible characters,
// bidi overrides, tag characters, control bytes, script homoglyphs —
// see unicode.go) are folded in as additional matches at the severity
// scanUnicodeThreats already assigned.
func (c *PatternClassifier) Classify(text string) (Result, error) {
	if !c.enabled {
		return Result{}, nil
	}

	var total float64
	var details []MatchDetail

	for _, r := range c.rules {
		// Regexes are compiled once and never carry mutable match state
		// across calls (no Longest()/submatch caching side effects), so
		// no reset step is required beyond re-matching on each text.
		if r.Pattern.MatchString(text) {
			total += weightFor(r.Severity)
			details = append(details, MatchDetail{Description: r.Description, Severity: r.Severity})
		}
	}

	for _, threat := range scanUnicodeThreats(text) {
		total += weightFor(threat.Severity)
		details = append(details, MatchDetail{Description: threat.Description, Severity: threat.Severity})
	}

	if total > 1.0 {
		total = 1.0
	}

	return Result{InjectionProbability: total, Details: details}, nil
}

func weightFor(severity string) float64 {
	switch severity {
	case "high":
		return weightHigh
	case "medium":
		return weightMedium
	case "low":
		return weightLow
	default:
		return 0
	}
}

func compile(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}

func rulesFrom(severity string, descriptionPrefix string, patterns []*regexp.Regexp, descriptions []string) []Rule {
	rules := make([]Rule, len(patterns))
	for i, p := range patterns {
		desc := descriptionPrefix
		if i < len(descriptions) {
			desc = descriptions[i]
		}
		rules[i] = Rule{Pattern: p, Severity: severity, Description: desc}
	}
	return rules
}

// builtinRules returns the five-category rule set required by spec §6:
// instruction override, financial manipulation, hidden content,
// encoding/eval tricks, social engineering/privilege escalation.
func builtinRules() []Rule {
	var rules []Rule

	// --- Direct instruction override ---
	overridePatterns := compile(
		`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+(rules?|instructions?)`,
		`(?i)disregard\s+(all\s+)?(your\s+)?(previous\s+)?(instructions?|rules?|guidelines?)`,
		`(?i)forget\s+(all\s+)?(your|previous)\s+(instructions?|rules?)`,
		`(?i)you\s+are\s+now\s+`,
		`(?i)new\s+instructions?\s*:\s*`,
		`(?i)system\s*:\s*(you\s+are|ignore|forget)`,
	)
	overrideDescriptions := []string{
		"instruction override: ignore previous instructions",
		"instruction override: disregard instructions/rules",
		"instruction override: forget previous instructions",
		"instruction override: role reassignment (\"you are now\")",
		"instruction override: fabricated new-instructions block",
		"instruction override: fabricated system message",
	}
	rules = append(rules, rulesFrom("high", "instruction override", overridePatterns, overrideDescriptions)...)

	// --- Financial manipulation ---
	financialPatterns := compile(
		`(?i)transfer\s+all\s+(funds|balance|money)`,
		`(?i)(change|update|set)\s+(the\s+)?(recipient|address|wallet)\b`,
		`(?i)bypass\s+(the\s+)?(spending\s+)?limit`,
		`(?i)bypass\s+(the\s+)?approval`,
		`(?i)no\s+limits?\b`,
		`(?i)unlimited\s+(spending|funds|budget)`,
	)
	financialDescriptions := []string{
		"financial manipulation: transfer all funds",
		"financial manipulation: recipient/address/wallet substitution",
		"financial manipulation: bypass spending limit",
		"financial manipulation: bypass approval",
		"financial manipulation: claims no limits apply",
		"financial manipulation: claims unlimited spending",
	}
	rules = append(rules, rulesFrom("high", "financial manipulation", financialPatterns, financialDescriptions)...)

	// --- Hidden content ---
	hiddenPatterns := compile(
		`(?i)SYSTEM:\s*(ignore|forget|override|you\s+are)`,
		`(?i)\[INST\]`,
		`(?i)<\|im_start\|>\s*system`,
		`(?i)BEGIN\s+HIDDEN\s+INSTRUCTIONS?`,
		`(?i)IMPORTANT:\s*(ignore|disregard|override)`,
	)
	hiddenDescriptions := []string{
		"hidden content: embedded fake system directive",
		"hidden content: chat-template injection marker",
		"hidden content: chat-template injection marker",
		"hidden content: hidden-instructions block marker",
		"hidden content: urgent-override framing",
	}
	rules = append(rules, rulesFrom("medium", "hidden content", hiddenPatterns, hiddenDescriptions)...)

	// --- Encoding / eval tricks ---
	rules = append(rules, Rule{
		Pattern:     regexp.MustCompile(`[A-Za-z0-9+/]{40,}={0,2}`),
		Severity:    "medium",
		Description: "encoding trick: long base64-like payload",
	})
	rules = append(rules, Rule{
		Pattern:     regexp.MustCompile(`(\\\\?x[0-9a-fA-F]{2}){4,}`),
		Severity:    "medium",
		Description: "encoding trick: hex escape sequence",
	})
	rules = append(rules, Rule{
		Pattern:     regexp.MustCompile(`(?i)\b(eval|exec)\s*\(`),
		Severity:    "medium",
		Description: "encoding trick: dynamic eval/exec call",
	})

	// --- Social engineering / privilege escalation ---
	socialPatterns := compile(
		`(?i)(show|reveal|display|print|output)\s+(me\s+)?(your|the)\s+(system\s+)?prompt`,
		`(?i)(what\s+are|tell\s+me)\s+(your|the)\s+(instructions?|rules?|guidelines?)`,
		`(?i)as\s+(an?\s+)?(admin|administrator|root|superuser|owner)\b`,
		`(?i)i\s+am\s+(the\s+)?(developer|admin|administrator|owner)\b`,
		`(?i)this\s+is\s+an?\s+(emergency|urgent\s+override)`,
	)
	socialDescriptions := []string{
		"social engineering: prompt exfiltration request",
		"social engineering: instruction exfiltration request",
		"social engineering: claims elevated privilege",
		"social engineering: claims developer/admin identity",
		"social engineering: false urgency/emergency framing",
	}
	rules = append(rules, rulesFrom("medium", "social engineering", socialPatterns, socialDescriptions)...)

	return rules
}
