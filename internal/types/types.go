// Package types holds the data model shared across every stage of the
// payment firewall: the intent a caller wants executed, the policy that
// bounds it, and the verdicts the pipeline stages produce.
package types

import "fmt"

// Protocol identifies the payment rail a PaymentIntent will be routed
// through. It is a closed set; DetectProtocol never returns a value
// outside this list.
type Protocol string

const (
	ProtocolX402    Protocol = "x402"
	ProtocolAP2     Protocol = "ap2"
	ProtocolACP     Protocol = "acp"
	ProtocolEscrow  Protocol = "escrow"
	ProtocolUnknown Protocol = "unknown"
)

// Milestone is a single escrow delivery checkpoint.
type Milestone struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Deadline    string  `json:"deadline"`
}

// EscrowConfig describes the escrow terms attached to a PaymentIntent.
// Its presence is consulted by both the policy engine (escrow threshold)
// and protocol detection (escrow inference).
type EscrowConfig struct {
	Deadline   string      `json:"deadline"`            // duration string ("72h") or ISO timestamp
	Evaluator  string      `json:"evaluator,omitempty"` // address, or the literal "auto"; empty if unset
	Milestones []Milestone `json:"milestones,omitempty"`
}

// IntentRequest is what a caller submits to the gate. The gate stamps it
// with an id and timestamp to produce a PaymentIntent.
type IntentRequest struct {
	Recipient string         `json:"recipient"`
	Amount    float64        `json:"amount"`
	Currency  string         `json:"currency"`
	Purpose   string         `json:"purpose"`
	Protocol  Protocol       `json:"protocol,omitempty"` // optional; empty means "detect it"
	Escrow    *EscrowConfig  `json:"escrow,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// PaymentIntent is a uniquely identified request to pay. Once created it
// is mutated only to fill in a detected Protocol; no other stage may
// edit it.
type PaymentIntent struct {
	ID        string
	Recipient string
	Amount    float64
	Currency  string
	Purpose   string
	Protocol  Protocol
	Escrow    *EscrowConfig
	Metadata  map[string]any
	CreatedAt int64 // epoch ms
}

// MetadataString coerces a metadata value to its string form for text
// scanning. Non-string values, including nested maps/slices, are
// formatted with fmt's default %v verb.
func (p *PaymentIntent) MetadataString(key string) (string, bool) {
	v, ok := p.Metadata[key]
	if !ok {
		return "", false
	}
	return metadataToString(v), true
}

func metadataToString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// StructuredIntent holds the nullable fields an intent extractor pulls
// out of free text, plus the original raw text it was derived from.
type StructuredIntent struct {
	RawText         string
	Amount          *float64
	Currency        *string
	Recipient       *string
	Deadline        *string
	ResidualPurpose *string
}

// Layer names the pipeline stage that produced a FirewallVerdict.
type Layer string

const (
	LayerClassifier Layer = "classifier"
	LayerPolicy     Layer = "policy"
	LayerIntentDiff Layer = "intent-diff"
	LayerHuman      Layer = "human"
)

// FirewallVerdict is the outcome of one pipeline decision point.
type FirewallVerdict struct {
	Allowed    bool
	Layer      Layer
	Reason     string
	Confidence float64 // 0..1, optional (zero value means "not set")
	Detail     map[string]any
}

// Severity classifies how far a drifted field has moved from the
// original instruction.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// DriftIndicator flags one field that moved between the original
// instruction and the current intent.
type DriftIndicator struct {
	Field    string
	Original string
	Current  string
	Severity Severity
}

// IntentDiffResult aggregates a similarity score with the indicators
// that explain it.
type IntentDiffResult struct {
	Similarity float64
	Indicators []DriftIndicator
}

// PolicyConfig bounds what the policy engine will allow. Every bound is
// a pointer; a nil bound disables that particular check. YAML keys are
// the lower_snake form of the field name.
type PolicyConfig struct {
	MaxPerTransaction         *float64 `yaml:"max_per_transaction,omitempty"`
	MaxDaily                  *float64 `yaml:"max_daily,omitempty"`
	MaxMonthly                *float64 `yaml:"max_monthly,omitempty"`
	RequireEscrowAbove        *float64 `yaml:"require_escrow_above,omitempty"`
	RequireHumanApprovalAbove *float64 `yaml:"require_human_approval_above,omitempty"`
	CooldownMs                *int64   `yaml:"cooldown_ms,omitempty"`

	AllowedRecipients []string `yaml:"allowed_recipients,omitempty"`
	BlockedRecipients []string `yaml:"blocked_recipients,omitempty"`
	AllowedCategories []string `yaml:"allowed_categories,omitempty"`
}

// FirewallConfig is the YAML-loadable subset of firewall.Option: the
// knobs an operator can set without recompiling. A classifier error
// always lets the injection scan pass; FailOpen (default true) only
// decides whether that error is reported as a warning through the
// operator logger. Setting it to false does not make such an error block.
type FirewallConfig struct {
	Enabled             bool    `yaml:"enabled"`
	ClassifierEndpoint  string  `yaml:"classifier_endpoint,omitempty"`
	IntentDiffThreshold float64 `yaml:"intent_diff_threshold,omitempty"`
	OriginalInstruction string  `yaml:"original_instruction,omitempty"`
	FailOpen            bool    `yaml:"fail_open"`
}

// PaymentResult is what an adapter returns after attempting execution.
type PaymentResult struct {
	Success       bool
	TransactionID string
	Protocol      Protocol
	Amount        float64
	Currency      string
	Recipient     string
	Timestamp     int64
	EscrowID      string
	Error         string
}
