package gate

import "fmt"

// FirewallBlocked reports that the transaction firewall, or the human
// approval step, rejected an intent before any side effect occurred.
type FirewallBlocked struct {
	Layer      string
	Confidence float64
	Reason     string
}

func (e *FirewallBlocked) Error() string {
	return fmt.Sprintf("FIREWALL_BLOCKED: layer=%s confidence=%.2f: %s", e.Layer, e.Confidence, e.Reason)
}

// PolicyViolation reports that the deterministic policy engine
// rejected an intent. Value/Limit are left zero when the failing rule
// doesn't carry a quantitative bound (e.g. blockedRecipients).
type PolicyViolation struct {
	Policy string
	Value  float64
	Limit  float64
}

func (e *PolicyViolation) Error() string {
	return fmt.Sprintf("POLICY_VIOLATION: policy=%s value=%v limit=%v", e.Policy, e.Value, e.Limit)
}

// NoAdapter reports that no registered adapter's name matched the
// resolved protocol.
type NoAdapter struct {
	Protocol string
}

func (e *NoAdapter) Error() string {
	return fmt.Sprintf("NO_ADAPTER: protocol=%s", e.Protocol)
}

// PaymentFailed wraps a hard (panicking/erroring) adapter failure. It
// is never raised for a soft success=false result, which is returned
// unchanged instead.
type PaymentFailed struct {
	Protocol      string
	TransactionID string
	Cause         error
}

func (e *PaymentFailed) Error() string {
	msg := fmt.Sprintf("PAYMENT_FAILED: protocol=%s", e.Protocol)
	if e.TransactionID != "" {
		msg += fmt.Sprintf(" transactionId=%s", e.TransactionID)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *PaymentFailed) Unwrap() error { return e.Cause }
