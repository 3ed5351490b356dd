// Package gate implements the gate orchestrator (C6): the full pay
// pipeline — firewall, policy, human approval, protocol detection,
// adapter routing, execution, and spend recording — plus the
// dry-run check variant and the typed error taxonomy callers match on.
package gate

import (
	"fmt"
	"time"

	"github.com/gzhole/paymentguard/internal/adapter"
	"github.com/gzhole/paymentguard/internal/approval"
	"github.com/gzhole/paymentguard/internal/firewall"
	"github.com/gzhole/paymentguard/internal/logging"
	"github.com/gzhole/paymentguard/internal/policy"
	"github.com/gzhole/paymentguard/internal/types"
)

// Logger is the minimal logging surface the gate needs; *zap.SugaredLogger
// satisfies it directly.
type Logger interface {
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
}

// noopLogger discards everything; used when no logger is configured.
type noopLogger struct{}

func (noopLogger) Infow(string, ...any) {}
func (noopLogger) Warnw(string, ...any) {}

// Option configures a Gate at construction time.
type Option func(*Gate)

// WithWallet attaches an opaque wallet descriptor forwarded to adapters.
func WithWallet(wallet any) Option {
	return func(g *Gate) { g.wallet = wallet }
}

// WithFirewall installs a preconfigured firewall in place of the default.
func WithFirewall(f *firewall.Firewall) Option {
	return func(g *Gate) { g.firewall = f }
}

// WithFirewallDisabled skips the firewall layer entirely.
func WithFirewallDisabled() Option {
	return func(g *Gate) { g.firewallEnabled = false }
}

// WithApproval registers the human-approval callback.
func WithApproval(cb approval.Callback) Option {
	return func(g *Gate) { g.approve = cb }
}

// WithLogger attaches an operator logger (e.g. a *zap.SugaredLogger).
func WithLogger(l Logger) Option {
	return func(g *Gate) { g.log = l }
}

// WithAuditLogger attaches the JSONL compliance audit trail. When set,
// every Pay and Check call appends exactly one AuditEvent.
func WithAuditLogger(a *logging.AuditLogger) Option {
	return func(g *Gate) { g.audit = a }
}

// Gate wires the pipeline components together. It owns no adapter
// back-references: adapters never call back into the gate.
type Gate struct {
	wallet          any
	firewall        *firewall.Firewall
	firewallEnabled bool
	policy          *policy.Engine
	adapters        *adapter.Registry
	approve         approval.Callback
	log             Logger
	audit           *logging.AuditLogger
}

// New builds a Gate from a policy config and an initial adapter list.
func New(policyCfg types.PolicyConfig, adapters *adapter.Registry, opts ...Option) *Gate {
	g := &Gate{
		firewall:        firewall.New(),
		firewallEnabled: true,
		policy:          policy.NewEngine(policyCfg),
		adapters:        adapters,
		log:             noopLogger{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Pay runs the full hot-path pipeline in spec §4.6's nine steps,
// raising a typed error on any gating or hard execution failure. It
// appends exactly one AuditEvent, at whichever point the pipeline
// settles.
func (g *Gate) Pay(request types.IntentRequest) (types.PaymentResult, error) {
	pi := g.buildIntent(request)

	if g.firewallEnabled {
		if v := g.firewall.Evaluate(pi); !v.Allowed {
			g.log.Warnw("firewall blocked payment", "intentId", pi.ID, "layer", v.Layer, "reason", v.Reason)
			g.recordAudit(pi, "blocked", string(v.Layer), v.Reason, "", "")
			return types.PaymentResult{}, &FirewallBlocked{Layer: string(v.Layer), Confidence: v.Confidence, Reason: v.Reason}
		}
	}
	g.log.Infow("firewall passed", "intentId", pi.ID)

	if v := g.policy.Evaluate(pi); v != nil {
		ruleName, _ := v.Detail["policy"].(string)
		g.log.Warnw("policy blocked payment", "intentId", pi.ID, "policy", ruleName)
		value, _ := v.Detail["value"].(float64)
		limit, _ := v.Detail["limit"].(float64)
		g.recordAudit(pi, "blocked", string(types.LayerPolicy), ruleName, "", "")
		return types.PaymentResult{}, &PolicyViolation{Policy: ruleName, Value: value, Limit: limit}
	}
	g.log.Infow("policy passed", "intentId", pi.ID)

	if g.policy.RequiresHumanApproval(pi) {
		if g.approve == nil {
			g.log.Warnw("human approval required but no approval callback configured", "intentId", pi.ID)
			g.recordAudit(pi, "blocked", string(types.LayerHuman), "no approval callback configured", "", "")
			return types.PaymentResult{}, &FirewallBlocked{Layer: string(types.LayerHuman), Reason: "human approval required but no approval callback configured"}
		}
		result := g.approve(approval.Prompt{
			Recipient: pi.Recipient, Amount: pi.Amount, Currency: pi.Currency,
			Purpose: pi.Purpose, Protocol: string(pi.Protocol),
		})
		if !result.Approved {
			g.log.Warnw("human approver rejected payment", "intentId", pi.ID, "userAction", result.UserAction)
			g.recordAudit(pi, "blocked", string(types.LayerHuman), "rejected by human approver", result.UserAction, "")
			return types.PaymentResult{}, &FirewallBlocked{Layer: string(types.LayerHuman), Reason: "rejected by human approver"}
		}
		g.log.Infow("human approval granted", "intentId", pi.ID)
	}

	if pi.Protocol == "" {
		pi.Protocol = DetectProtocol(pi)
	}

	ad, ok := g.adapters.Resolve(string(pi.Protocol))
	if !ok {
		g.log.Warnw("no adapter for protocol", "intentId", pi.ID, "protocol", pi.Protocol)
		g.recordAudit(pi, "blocked", "", "", "", (&NoAdapter{Protocol: string(pi.Protocol)}).Error())
		return types.PaymentResult{}, &NoAdapter{Protocol: string(pi.Protocol)}
	}

	result, err := g.executeAdapter(ad, pi)
	if err != nil {
		g.recordAudit(pi, "failed", "", "", "", err.Error())
		return types.PaymentResult{}, err
	}

	if result.Success {
		g.policy.RecordTransaction(pi)
		g.log.Infow("payment executed", "intentId", pi.ID, "transactionId", result.TransactionID)
		g.recordAudit(pi, "executed", "", "", "", "")
	} else {
		g.log.Warnw("adapter returned soft failure", "intentId", pi.ID, "error", result.Error)
		g.recordAudit(pi, "failed", "", "", "", result.Error)
	}

	return result, nil
}

// recordAudit appends one AuditEvent if an audit logger is configured;
// it is a no-op otherwise. A write failure is logged to the operator
// logger rather than propagated, since a broken audit trail must not
// itself block a payment decision.
func (g *Gate) recordAudit(pi *types.PaymentIntent, decision, layer, triggeredRule, userAction, errMsg string) {
	if g.audit == nil {
		return
	}
	event := logging.AuditEvent{
		Timestamp:     time.UnixMilli(pi.CreatedAt).UTC().Format(time.RFC3339Nano),
		IntentID:      pi.ID,
		Recipient:     pi.Recipient,
		Amount:        pi.Amount,
		Currency:      pi.Currency,
		Protocol:      string(pi.Protocol),
		Purpose:       pi.Purpose,
		Decision:      decision,
		Layer:         layer,
		TriggeredRule: triggeredRule,
		UserAction:    userAction,
		Error:         errMsg,
		Metadata:      pi.Metadata,
	}
	if err := g.audit.Log(event); err != nil {
		g.log.Warnw("failed to write audit event", "intentId", pi.ID, "error", err.Error())
	}
}

// executeAdapter isolates the adapter call so a panicking adapter
// becomes a PaymentFailed instead of crashing the gate.
func (g *Gate) executeAdapter(ad adapter.Port, pi *types.PaymentIntent) (result types.PaymentResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PaymentFailed{Protocol: string(pi.Protocol), Cause: fmt.Errorf("adapter panic: %v", r)}
		}
	}()
	result = ad.Execute(pi)
	return result, nil
}

// CheckResult is the dry-run report for Check: every field `Pay` would
// have produced a verdict for, without ever touching spend state or
// invoking an adapter.
type CheckResult struct {
	Firewall              types.FirewallVerdict
	Policy                *types.FirewallVerdict
	RequiresHumanApproval bool
	Protocol              types.Protocol
	AdapterAvailable      bool
}

// Check runs firewall + policy, reports whether human approval would
// be required, and reports whether an adapter exists for the detected
// protocol. It never records spend or calls an adapter, but — like Pay
// — it appends exactly one AuditEvent per call, decision prefixed
// "check:" so the trail distinguishes dry runs from real attempts.
func (g *Gate) Check(request types.IntentRequest) CheckResult {
	pi := g.buildIntent(request)

	var fwVerdict types.FirewallVerdict
	if g.firewallEnabled {
		fwVerdict = g.firewall.Evaluate(pi)
	} else {
		fwVerdict = types.FirewallVerdict{Allowed: true, Layer: types.LayerClassifier, Reason: "firewall disabled"}
	}
	if !fwVerdict.Allowed {
		g.recordAudit(pi, "check:blocked", string(fwVerdict.Layer), fwVerdict.Reason, "", "")
		return CheckResult{Firewall: fwVerdict}
	}

	policyVerdict := g.policy.Evaluate(pi)
	if policyVerdict != nil {
		ruleName, _ := policyVerdict.Detail["policy"].(string)
		g.recordAudit(pi, "check:blocked", string(types.LayerPolicy), ruleName, "", "")
		return CheckResult{Firewall: fwVerdict, Policy: policyVerdict}
	}

	requiresApproval := g.policy.RequiresHumanApproval(pi)

	protocol := pi.Protocol
	if protocol == "" {
		protocol = DetectProtocol(pi)
	}
	_, hasAdapter := g.adapters.Resolve(string(protocol))

	g.recordAudit(pi, "check:pass", "", "", "", "")
	return CheckResult{
		Firewall:              fwVerdict,
		RequiresHumanApproval: requiresApproval,
		Protocol:              protocol,
		AdapterAvailable:      hasAdapter,
	}
}

func (g *Gate) buildIntent(request types.IntentRequest) *types.PaymentIntent {
	now := time.Now().UTC()
	return &types.PaymentIntent{
		ID:        newIntentID(now),
		Recipient: request.Recipient,
		Amount:    request.Amount,
		Currency:  request.Currency,
		Purpose:   request.Purpose,
		Protocol:  request.Protocol,
		Escrow:    request.Escrow,
		Metadata:  request.Metadata,
		CreatedAt: now.UnixMilli(),
	}
}
