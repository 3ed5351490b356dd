// Package drift implements the intent-drift comparator (C3): it
// measures how far a current intent has moved from the user's
// originally stated instruction, field by field, using fixed
// heuristics rather than any learned model.
package drift

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gzhole/paymentguard/internal/intent"
	"github.com/gzhole/paymentguard/internal/types"
)

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "to": true, "for": true, "of": true,
	"in": true, "on": true, "at": true, "is": true, "it": true, "and": true,
	"or": true, "but": true, "with": true, "from": true, "by": true, "as": true,
	"this": true, "that": true, "pay": true, "send": true, "transfer": true,
	"please": true, "i": true, "my": true, "me": true, "want": true,
}

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)
var hostPattern = regexp.MustCompile(`(?i)^(?:https?://|agent://)([^/\s]+)`)

// Comparator is constructed with the user's original instruction; it
// runs the intent extractor on that instruction once and memoizes the
// result so every subsequent Check reuses it.
type Comparator struct {
	extractor *intent.Extractor
	original  types.StructuredIntent
}

// New builds a Comparator from the user's original free-text
// instruction.
func New(originalInstruction string) *Comparator {
	e := intent.NewExtractor()
	return &Comparator{
		extractor: e,
		original:  e.Extract(originalInstruction),
	}
}

// SetOriginalInstruction replaces the memoized extraction — used when
// the firewall's original instruction is updated mid-session.
func (c *Comparator) SetOriginalInstruction(instruction string) {
	c.original = c.extractor.Extract(instruction)
}

// Check compares intent against the memoized original instruction and
// returns an aggregate similarity plus the fields that drifted.
func (c *Comparator) Check(pi *types.PaymentIntent) types.IntentDiffResult {
	current := c.extractor.Extract(pi.Purpose)
	// The current intent's own structured fields take precedence over
	// whatever the extractor pulled from its purpose text, since those
	// are the fields that were actually submitted.
	currentAmount := &pi.Amount
	currentCurrency := &pi.Currency
	currentRecipient := &pi.Recipient

	var scores []float64
	var indicators []types.DriftIndicator

	if c.original.Amount != nil {
		score := scoreAmount(*c.original.Amount, *currentAmount)
		scores = append(scores, score)
		if score < 0.8 {
			indicators = append(indicators, indicator("amount", ftoa(*c.original.Amount), ftoa(*currentAmount), score, 0.3))
		}
	}

	if c.original.Recipient != nil {
		score := scoreRecipient(*c.original.Recipient, *currentRecipient)
		scores = append(scores, score)
		if score < 0.8 {
			indicators = append(indicators, indicator("recipient", *c.original.Recipient, *currentRecipient, score, 0.3))
		}
	}

	if c.original.Currency != nil {
		score := scoreCurrency(*c.original.Currency, *currentCurrency)
		scores = append(scores, score)
		if score < 0.8 {
			indicators = append(indicators, types.DriftIndicator{
				Field: "currency", Original: *c.original.Currency, Current: *currentCurrency,
				Severity: types.SeverityMedium, // currency drift is always medium
			})
		}
	}

	if c.original.ResidualPurpose != nil {
		currentPurpose := ""
		if current.ResidualPurpose != nil {
			currentPurpose = *current.ResidualPurpose
		}
		score := scorePurpose(*c.original.ResidualPurpose, currentPurpose)
		scores = append(scores, score)
		if score < 0.5 {
			indicators = append(indicators, indicator("purpose", *c.original.ResidualPurpose, currentPurpose, score, 0.2))
		}
	}

	similarity := mean(scores)
	similarity = math.Round(similarity*1000) / 1000

	return types.IntentDiffResult{Similarity: similarity, Indicators: indicators}
}

// indicator builds a DriftIndicator, picking severity by a
// caller-supplied "high" threshold (0.3 for most fields, 0.2 for
// purpose per spec §4.3).
func indicator(field, original, current string, score, highBelow float64) types.DriftIndicator {
	sev := types.SeverityMedium
	if score < highBelow {
		sev = types.SeverityHigh
	}
	return types.DriftIndicator{Field: field, Original: original, Current: current, Severity: sev}
}

func scoreAmount(original, current float64) float64 {
	if original == 0 && current == 0 {
		return 1.0
	}
	if original == 0 || current == 0 {
		return 0.0
	}
	r := math.Min(original, current) / math.Max(original, current)
	switch {
	case r >= 0.99:
		return 1.0
	case r >= 0.9:
		return 0.8
	case r >= 0.5:
		return 0.5
	default:
		return r
	}
}

func scoreRecipient(original, current string) float64 {
	o := strings.ToLower(strings.TrimSpace(original))
	c := strings.ToLower(strings.TrimSpace(current))
	if o == c {
		return 1.0
	}
	if o == "" || c == "" {
		return 0.0
	}
	if strings.Contains(o, c) || strings.Contains(c, o) {
		return 0.7
	}
	oh := hostOf(o)
	ch := hostOf(c)
	if oh != "" && oh == ch {
		return 0.6
	}
	return 0.0
}

func hostOf(s string) string {
	m := hostPattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

func scoreCurrency(original, current string) float64 {
	if strings.EqualFold(original, current) {
		return 1.0
	}
	return 0.0
}

func scorePurpose(original, current string) float64 {
	a := tokenize(original)
	b := tokenize(current)
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	union := map[string]bool{}
	for w := range a {
		union[w] = true
	}
	for w := range b {
		union[w] = true
	}

	inter := 0
	for w := range a {
		if b[w] {
			inter++
		}
	}

	return float64(inter) / float64(len(union))
}

func tokenize(s string) map[string]bool {
	words := tokenPattern.FindAllString(strings.ToLower(s), -1)
	out := map[string]bool{}
	for _, w := range words {
		if len(w) <= 1 {
			continue
		}
		if stopWords[w] {
			continue
		}
		out[w] = true
	}
	return out
}

func mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 1.0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
