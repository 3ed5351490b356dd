// Package intent implements the structured intent extractor (C1): a
// rule-based, deterministic parser that turns free text into a
// StructuredIntent. Every rule is a regex over the input — there is no
// NLP, no model call, nothing that can disagree with itself between
// two runs on the same string.
package intent

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gzhole/paymentguard/internal/currencyx"
	"github.com/gzhole/paymentguard/internal/types"
)

// Extractor parses free text into a types.StructuredIntent.
type Extractor struct{}

// NewExtractor returns a ready-to-use Extractor. It holds no state.
func NewExtractor() *Extractor { return &Extractor{} }

var numberRegex = `[0-9][0-9,]*(?:\.[0-9]+)?`

var dollarPattern = regexp.MustCompile(`\$(` + numberRegex + `)`)

var currencyAliasPattern = buildAliasAlternation()

func buildAliasAlternation() string {
	tokens := make([]string, 0, len(currencyx.Aliases)+1)
	for k := range currencyx.Aliases {
		tokens = append(tokens, regexp.QuoteMeta(k))
	}
	tokens = append(tokens, "usd")
	// Longest-first so "dollars" matches before a hypothetical "dollar" prefix collision.
	sort.Slice(tokens, func(i, j int) bool { return len(tokens[i]) > len(tokens[j]) })
	return strings.Join(tokens, "|")
}

var amountThenCurrencyPattern = regexp.MustCompile(`(?i)(` + numberRegex + `)\s*(` + currencyAliasPattern + `)\b`)
var currencyThenAmountPattern = regexp.MustCompile(`(?i)\b(` + currencyAliasPattern + `)\s*(` + numberRegex + `)`)

var agentURIPattern = regexp.MustCompile(`agent://\S+`)
var hexAddressPattern = regexp.MustCompile(`0x[0-9a-fA-F]{40}`)
var ensPattern = regexp.MustCompile(`(?i)\b[a-z0-9-]+\.eth\b`)
var urlPattern = regexp.MustCompile(`https?://\S+`)

var withinDeadlinePattern = regexp.MustCompile(`(?i)\bwithin\s+(\d+)\s*(minutes?|mins?|m\b|hours?|hrs?|h\b|days?|d\b|weeks?|wks?|w\b)`)
var namedTimeWord = `tomorrow|tonight|monday|tuesday|wednesday|thursday|friday|saturday|sunday|end of day|end of week|end of month`
var byDeadlinePattern = regexp.MustCompile(`(?i)\bby\s+(` + namedTimeWord + `)`)
var bareDurationPattern = regexp.MustCompile(`(?i)\b(\d+)\s*(minutes?|mins?|m\b|hours?|hrs?|h\b|days?|d\b|weeks?|wks?|w\b)`)

var fillerWords = map[string]bool{
	"pay": true, "send": true, "transfer": true, "to": true,
	"for": true, "within": true, "by": true,
}

var wordPattern = regexp.MustCompile(`\S+`)

// Extract parses raw free text into a StructuredIntent. Resolution order
// within each field family is fixed (see package doc and spec §4.1);
// earlier rules win over later ones.
func (e *Extractor) Extract(text string) types.StructuredIntent {
	result := types.StructuredIntent{RawText: text}
	var consumedSpans []string

	amount, currency, spans := e.extractAmountCurrency(text)
	if amount != nil {
		result.Amount = amount
	}
	if currency != nil {
		result.Currency = currency
	}
	consumedSpans = append(consumedSpans, spans...)

	if recipient, span := e.extractRecipient(text); recipient != nil {
		result.Recipient = recipient
		consumedSpans = append(consumedSpans, span)
	}

	if deadline, span := e.extractDeadline(text); deadline != nil {
		result.Deadline = deadline
		consumedSpans = append(consumedSpans, span)
	}

	residual := buildResidualPurpose(text, consumedSpans)
	if residual != "" {
		result.ResidualPurpose = &residual
	}

	return result
}

// extractAmountCurrency resolves amount/currency per the three-layer
// rule: bare "$N" sets a baseline; "N <currency>" overrides it unless
// the token is the word dollar(s); "<currency> N" fills in only if
// neither of the first two produced an amount.
func (e *Extractor) extractAmountCurrency(text string) (amount *float64, currency *string, spans []string) {
	if m := dollarPattern.FindStringSubmatch(text); m != nil {
		v := parseAmount(m[1])
		amount = &v
		usd := "USD"
		currency = &usd
		spans = append(spans, m[0])
	}

	if m := amountThenCurrencyPattern.FindStringSubmatch(text); m != nil {
		if !currencyx.IsDollarWord(m[2]) {
			v := parseAmount(m[1])
			amount = &v
			code := currencyx.Canonicalize(m[2])
			currency = &code
			spans = append(spans, m[0])
		}
	}

	if amount == nil {
		if m := currencyThenAmountPattern.FindStringSubmatch(text); m != nil {
			v := parseAmount(m[2])
			amount = &v
			code := currencyx.Canonicalize(m[1])
			currency = &code
			spans = append(spans, m[0])
		}
	}

	return amount, currency, spans
}

func parseAmount(raw string) float64 {
	cleaned := strings.ReplaceAll(raw, ",", "")
	v, _ := strconv.ParseFloat(cleaned, 64)
	return v
}

func (e *Extractor) extractRecipient(text string) (*string, string) {
	if m := agentURIPattern.FindString(text); m != "" {
		return &m, m
	}
	if m := hexAddressPattern.FindString(text); m != "" {
		return &m, m
	}
	if m := ensPattern.FindString(text); m != "" {
		return &m, m
	}
	if m := urlPattern.FindString(text); m != "" {
		return &m, m
	}
	return nil, ""
}

func (e *Extractor) extractDeadline(text string) (*string, string) {
	if m := withinDeadlinePattern.FindStringSubmatch(text); m != nil {
		d := m[1] + normalizeUnit(m[2])
		return &d, m[0]
	}
	if m := byDeadlinePattern.FindStringSubmatch(text); m != nil {
		d := strings.ToLower(m[1])
		return &d, m[0]
	}
	if m := bareDurationPattern.FindStringSubmatch(text); m != nil {
		d := m[1] + normalizeUnit(m[2])
		return &d, m[0]
	}
	return nil, ""
}

func normalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	switch {
	case strings.HasPrefix(u, "m") && !strings.HasPrefix(u, "mo"):
		return "m"
	case strings.HasPrefix(u, "h"):
		return "h"
	case strings.HasPrefix(u, "d"):
		return "d"
	case strings.HasPrefix(u, "w"):
		return "w"
	}
	return u
}

// buildResidualPurpose removes every matched span, strips filler words
// and "$", collapses whitespace, and returns "" if nothing is left.
func buildResidualPurpose(text string, spans []string) string {
	residual := text
	for _, span := range spans {
		if span == "" {
			continue
		}
		residual = strings.Replace(residual, span, " ", 1)
	}
	residual = strings.ReplaceAll(residual, "$", "")

	words := wordPattern.FindAllString(residual, -1)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		clean := strings.Trim(w, ".,!?;:")
		if fillerWords[strings.ToLower(clean)] {
			continue
		}
		kept = append(kept, w)
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}
