// Package firewall implements the transaction firewall (C4): it
// composes the pattern classifier, the structured-intent extractor and
// the drift comparator into a single ordered verdict over a payment
// intent, short-circuiting on the first layer that blocks.
package firewall

import (
	"fmt"
	"math"
	"strings"

	"github.com/gzhole/paymentguard/internal/classifier"
	"github.com/gzhole/paymentguard/internal/drift"
	"github.com/gzhole/paymentguard/internal/intent"
	"github.com/gzhole/paymentguard/internal/types"
)

const (
	defaultInjectionThreshold  = 0.7
	defaultIntentDiffThreshold = 0.6
	mismatchTolerance          = 0.01
)

// OnBlockFunc is invoked as a side effect whenever evaluate returns a
// blocking verdict, before the verdict is returned to the caller.
type OnBlockFunc func(pi *types.PaymentIntent, verdict types.FirewallVerdict)

// Option configures a Firewall at construction time.
type Option func(*Firewall)

// WithClassifier overrides the default pattern classifier — the sole
// DI seam named in spec §4.1.
func WithClassifier(c classifier.Classifier) Option {
	return func(f *Firewall) { f.classifier = c }
}

// WithInjectionThreshold overrides the classifier block threshold.
func WithInjectionThreshold(t float64) Option {
	return func(f *Firewall) { f.injectionThreshold = t }
}

// WithIntentDiffThreshold overrides the drift-similarity block threshold.
func WithIntentDiffThreshold(t float64) Option {
	return func(f *Firewall) { f.intentDiffThreshold = t }
}

// WithOriginalInstruction seeds the drift comparator with the user's
// original free-text instruction.
func WithOriginalInstruction(instruction string) Option {
	return func(f *Firewall) {
		f.originalInstruction = instruction
		f.comparator = drift.New(instruction)
	}
}

// WithOnBlock registers a callback fired whenever evaluate blocks.
func WithOnBlock(fn OnBlockFunc) Option {
	return func(f *Firewall) { f.onBlock = fn }
}

// WithWarnFunc registers a callback fired when the classifier fails
// and the firewall falls open. Gate wires this to its logger.
func WithWarnFunc(fn func(msg string)) Option {
	return func(f *Firewall) { f.warn = fn }
}

// Firewall runs the three-layer evaluation described in spec §4.4.
type Firewall struct {
	classifier          classifier.Classifier
	extractor           *intent.Extractor
	comparator          *drift.Comparator
	injectionThreshold  float64
	intentDiffThreshold float64
	originalInstruction string
	onBlock             OnBlockFunc
	warn                func(msg string)

	// lastProbability caches the most recent classification so a
	// passing Evaluate can report confidence without reclassifying.
	lastProbability float64
}

// New builds a Firewall with the spec's default thresholds, applying
// any Options on top.
func New(opts ...Option) *Firewall {
	f := &Firewall{
		classifier:          classifier.New(),
		extractor:           intent.NewExtractor(),
		injectionThreshold:  defaultInjectionThreshold,
		intentDiffThreshold: defaultIntentDiffThreshold,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetOriginalInstruction replaces the memoized drift baseline.
func (f *Firewall) SetOriginalInstruction(instruction string) {
	f.originalInstruction = instruction
	f.comparator = drift.New(instruction)
}

// Evaluate runs the injection scan, structured-mismatch check, and
// origin-drift check in that order, returning the first blocking
// verdict. A non-blocking return carries layer=classifier and
// confidence = 1 − injection probability.
func (f *Firewall) Evaluate(pi *types.PaymentIntent) types.FirewallVerdict {
	if v := f.scanInjection(pi); v != nil {
		f.fireOnBlock(pi, *v)
		return *v
	}
	if v := f.checkStructuredMismatch(pi); v != nil {
		f.fireOnBlock(pi, *v)
		return *v
	}
	if v := f.checkOriginDrift(pi); v != nil {
		f.fireOnBlock(pi, *v)
		return *v
	}

	probability := f.lastProbability
	return types.FirewallVerdict{
		Allowed:    true,
		Layer:      types.LayerClassifier,
		Reason:     "passed all firewall layers",
		Confidence: 1 - probability,
	}
}

func (f *Firewall) fireOnBlock(pi *types.PaymentIntent, v types.FirewallVerdict) {
	if f.onBlock != nil {
		f.onBlock(pi, v)
	}
}

func (f *Firewall) scanInjection(pi *types.PaymentIntent) *types.FirewallVerdict {
	text := buildScanText(pi)
	result, err := f.classifier.Classify(text)
	if err != nil {
		// The classifier fails open: the policy engine is the hard
		// floor, so an unreachable classifier must not block payments.
		if f.warn != nil {
			f.warn(fmt.Sprintf("classifier error, falling open: %v", err))
		}
		f.lastProbability = 0
		return nil
	}
	f.lastProbability = result.InjectionProbability
	if result.InjectionProbability >= f.injectionThreshold {
		details := make([]string, 0, len(result.Details))
		for _, d := range result.Details {
			details = append(details, d.Description)
		}
		return &types.FirewallVerdict{
			Allowed: false, Layer: types.LayerClassifier,
			Reason:     "injection probability exceeds threshold",
			Confidence: result.InjectionProbability,
			Detail:     map[string]any{"matched": details},
		}
	}
	return nil
}

func (f *Firewall) checkStructuredMismatch(pi *types.PaymentIntent) *types.FirewallVerdict {
	extracted := f.extractor.Extract(pi.Purpose)

	var mismatches []string
	if extracted.Amount != nil && math.Abs(*extracted.Amount-pi.Amount) > mismatchTolerance {
		mismatches = append(mismatches, fmt.Sprintf("amount: extracted=%v intent=%v", *extracted.Amount, pi.Amount))
	}
	if extracted.Recipient != nil && !strings.EqualFold(*extracted.Recipient, pi.Recipient) {
		mismatches = append(mismatches, fmt.Sprintf("recipient: extracted=%q intent=%q", *extracted.Recipient, pi.Recipient))
	}
	if extracted.Currency != nil && !strings.EqualFold(*extracted.Currency, pi.Currency) {
		mismatches = append(mismatches, fmt.Sprintf("currency: extracted=%q intent=%q", *extracted.Currency, pi.Currency))
	}

	if len(mismatches) == 0 {
		return nil
	}
	return &types.FirewallVerdict{
		Allowed: false, Layer: types.LayerIntentDiff,
		Reason:     "purpose text disagrees with the structured intent: " + strings.Join(mismatches, "; "),
		Confidence: 0.8,
		Detail:     map[string]any{"mismatches": mismatches},
	}
}

func (f *Firewall) checkOriginDrift(pi *types.PaymentIntent) *types.FirewallVerdict {
	if f.comparator == nil {
		return nil
	}
	result := f.comparator.Check(pi)
	if result.Similarity < f.intentDiffThreshold {
		return &types.FirewallVerdict{
			Allowed: false, Layer: types.LayerIntentDiff,
			Reason:     "intent has drifted from the original instruction",
			Confidence: 1 - result.Similarity,
			Detail:     map[string]any{"similarity": result.Similarity, "indicators": result.Indicators},
		}
	}
	return nil
}

// buildScanText concatenates purpose, recipient and every metadata
// value coerced to string, space-separated, per spec §4.4 step 1.
func buildScanText(pi *types.PaymentIntent) string {
	parts := []string{pi.Purpose, pi.Recipient}
	for _, v := range pi.Metadata {
		parts = append(parts, fmt.Sprintf("%v", v))
	}
	return strings.Join(parts, " ")
}
