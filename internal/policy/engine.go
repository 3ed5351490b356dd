// Package policy implements the deterministic policy engine (C5): a
// fixed-order rule evaluation plus the rolling spend/cooldown state the
// rules are checked against. Every check is pure given the engine's
// current state — no network calls, no randomness.
package policy

import (
	"sort"
	"time"

	"github.com/gzhole/paymentguard/internal/types"
)

// dayKeyLen/monthKeyLen are the lengths of the UTC ISO-8601 prefix used
// as spend-map keys ("YYYY-MM-DD" and "YYYY-MM").
const (
	dayKeyLen   = 10
	monthKeyLen = 7
)

// Rule names reported in FirewallVerdict.Detail["policy"].
const (
	RuleMaxPerTransaction = "maxPerTransaction"
	RuleMaxDaily          = "maxDaily"
	RuleMaxMonthly        = "maxMonthly"
	RuleBlockedRecipients = "blockedRecipients"
	RuleAllowedRecipients = "allowedRecipients"
	RuleAllowedCategories = "allowedCategories"
	RuleCooldownMs        = "cooldownMs"
	RuleRequireEscrow     = "requireEscrowAbove"
)

// Engine evaluates payment intents against a PolicyConfig and owns the
// rolling spend/cooldown state. It is intended to be driven by a single
// logical actor (see spec §5 concurrency notes) or wrapped by a
// caller-supplied mutex for concurrent pays.
type Engine struct {
	cfg types.PolicyConfig

	allowedRecipients []compiledGlob
	blockedRecipients []compiledGlob

	daily   map[string]float64
	monthly map[string]float64
	lastTransaction int64 // epoch ms, 0 if none recorded yet
}

// NewEngine precompiles the glob lists in cfg and returns a fresh
// engine with empty spend state.
func NewEngine(cfg types.PolicyConfig) *Engine {
	return &Engine{
		cfg:               cfg,
		allowedRecipients: compileGlobs(cfg.AllowedRecipients),
		blockedRecipients: compileGlobs(cfg.BlockedRecipients),
		daily:             map[string]float64{},
		monthly:           map[string]float64{},
	}
}

// Config returns the engine's policy configuration (for inspection).
func (e *Engine) Config() types.PolicyConfig { return e.cfg }

// Evaluate runs the fixed-order checks in spec §4.5 and returns the
// first one that fails. A nil return means the intent passes every
// configured check.
func (e *Engine) Evaluate(pi *types.PaymentIntent) *types.FirewallVerdict {
	if v := e.checkMaxPerTransaction(pi); v != nil {
		return v
	}
	if v := e.checkMaxDaily(pi); v != nil {
		return v
	}
	if v := e.checkMaxMonthly(pi); v != nil {
		return v
	}
	if v := e.checkRecipient(pi); v != nil {
		return v
	}
	if v := e.checkCategory(pi); v != nil {
		return v
	}
	if v := e.checkCooldown(pi); v != nil {
		return v
	}
	if v := e.checkEscrow(pi); v != nil {
		return v
	}
	return nil
}

func blockVerdict(rule, reason string, detail map[string]any) *types.FirewallVerdict {
	if detail == nil {
		detail = map[string]any{}
	}
	detail["policy"] = rule
	return &types.FirewallVerdict{Allowed: false, Layer: types.LayerPolicy, Reason: reason, Detail: detail}
}

func (e *Engine) checkMaxPerTransaction(pi *types.PaymentIntent) *types.FirewallVerdict {
	if e.cfg.MaxPerTransaction == nil {
		return nil
	}
	max := *e.cfg.MaxPerTransaction
	if pi.Amount > max {
		return blockVerdict(RuleMaxPerTransaction, "amount exceeds the per-transaction limit",
			map[string]any{"value": pi.Amount, "limit": max})
	}
	return nil
}

func (e *Engine) checkMaxDaily(pi *types.PaymentIntent) *types.FirewallVerdict {
	if e.cfg.MaxDaily == nil {
		return nil
	}
	max := *e.cfg.MaxDaily
	key := dayKey(pi.CreatedAt)
	proposed := e.daily[key] + pi.Amount
	if proposed > max {
		return blockVerdict(RuleMaxDaily, "amount would exceed the rolling daily limit",
			map[string]any{"value": proposed, "limit": max})
	}
	return nil
}

func (e *Engine) checkMaxMonthly(pi *types.PaymentIntent) *types.FirewallVerdict {
	if e.cfg.MaxMonthly == nil {
		return nil
	}
	max := *e.cfg.MaxMonthly
	key := monthKey(pi.CreatedAt)
	proposed := e.monthly[key] + pi.Amount
	if proposed > max {
		return blockVerdict(RuleMaxMonthly, "amount would exceed the rolling monthly limit",
			map[string]any{"value": proposed, "limit": max})
	}
	return nil
}

func (e *Engine) checkRecipient(pi *types.PaymentIntent) *types.FirewallVerdict {
	if matched, pattern := matchAny(e.blockedRecipients, pi.Recipient); matched {
		return blockVerdict(RuleBlockedRecipients, "recipient matches a blocked pattern",
			map[string]any{"pattern": pattern, "recipient": pi.Recipient})
	}
	if len(e.allowedRecipients) > 0 {
		if matched, _ := matchAny(e.allowedRecipients, pi.Recipient); !matched {
			return blockVerdict(RuleAllowedRecipients, "recipient does not match any allowed pattern",
				map[string]any{"recipient": pi.Recipient})
		}
	}
	return nil
}

func (e *Engine) checkCategory(pi *types.PaymentIntent) *types.FirewallVerdict {
	if len(e.cfg.AllowedCategories) == 0 {
		return nil
	}
	category, ok := pi.MetadataString("category")
	if !ok {
		return nil
	}
	for _, c := range e.cfg.AllowedCategories {
		if c == category {
			return nil
		}
	}
	return blockVerdict(RuleAllowedCategories, "category is not in the allowed list",
		map[string]any{"category": category})
}

func (e *Engine) checkCooldown(pi *types.PaymentIntent) *types.FirewallVerdict {
	if e.cfg.CooldownMs == nil || e.lastTransaction == 0 {
		return nil
	}
	now := nowMs()
	elapsed := now - e.lastTransaction
	if elapsed < *e.cfg.CooldownMs {
		return blockVerdict(RuleCooldownMs, "cooldown has not elapsed since the last transaction",
			map[string]any{"elapsedMs": elapsed, "cooldownMs": *e.cfg.CooldownMs})
	}
	return nil
}

func (e *Engine) checkEscrow(pi *types.PaymentIntent) *types.FirewallVerdict {
	if e.cfg.RequireEscrowAbove == nil {
		return nil
	}
	threshold := *e.cfg.RequireEscrowAbove
	if pi.Amount > threshold && pi.Escrow == nil {
		return blockVerdict(RuleRequireEscrow, "amount exceeds the escrow threshold without escrow configuration",
			map[string]any{"value": pi.Amount, "limit": threshold})
	}
	return nil
}

// RequiresHumanApproval reports whether amount strictly exceeds the
// configured threshold. The boundary value itself does not require
// approval.
func (e *Engine) RequiresHumanApproval(pi *types.PaymentIntent) bool {
	if e.cfg.RequireHumanApprovalAbove == nil {
		return false
	}
	return pi.Amount > *e.cfg.RequireHumanApprovalAbove
}

// RecordTransaction adds amount to the daily/monthly buckets keyed by
// the intent's own timestamp (UTC) and advances lastTransaction. It is
// the only mutator of spend state besides Reset, and it is not atomic
// across concurrent callers — see spec §5.
func (e *Engine) RecordTransaction(pi *types.PaymentIntent) {
	e.daily[dayKey(pi.CreatedAt)] += pi.Amount
	e.monthly[monthKey(pi.CreatedAt)] += pi.Amount
	e.lastTransaction = pi.CreatedAt
	e.pruneOldKeys(pi.CreatedAt)
}

// Reset clears all spend state, returning the engine to a state
// indistinguishable from fresh-constructed.
func (e *Engine) Reset() {
	e.daily = map[string]float64{}
	e.monthly = map[string]float64{}
	e.lastTransaction = 0
}

// Snapshot returns a copy of the current spend state, for
// inspection/testing without risking a caller mutating engine internals.
type Snapshot struct {
	Daily           map[string]float64
	Monthly         map[string]float64
	LastTransaction int64
}

func (e *Engine) Snapshot() Snapshot {
	daily := make(map[string]float64, len(e.daily))
	for k, v := range e.daily {
		daily[k] = v
	}
	monthly := make(map[string]float64, len(e.monthly))
	for k, v := range e.monthly {
		monthly[k] = v
	}
	return Snapshot{Daily: daily, Monthly: monthly, LastTransaction: e.lastTransaction}
}

// pruneOldKeys drops daily/monthly buckets older than one full month
// relative to asOf, bounding memory for a long-lived process (spec §9
// DESIGN NOTES).
func (e *Engine) pruneOldKeys(asOf int64) {
	cutoffMonth := monthKey(asOf)
	for k := range e.monthly {
		if k < cutoffMonth {
			delete(e.monthly, k)
		}
	}
	cutoffDay := addMonthsToDayKey(dayKey(asOf), -1)
	for k := range e.daily {
		if k < cutoffDay {
			delete(e.daily, k)
		}
	}
}

func addMonthsToDayKey(day string, months int) string {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return day
	}
	return t.AddDate(0, months, 0).Format("2006-01-02")
}

func dayKey(epochMs int64) string {
	return time.UnixMilli(epochMs).UTC().Format(time.RFC3339)[:dayKeyLen]
}

func monthKey(epochMs int64) string {
	return time.UnixMilli(epochMs).UTC().Format(time.RFC3339)[:monthKeyLen]
}

var nowMs = func() int64 { return time.Now().UTC().UnixMilli() }

// sortedKeys is a small test/diagnostic helper kept next to the spend
// maps it inspects.
func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
