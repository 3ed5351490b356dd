// Package logging owns the two log surfaces the gate writes to: a
// structured JSONL audit trail (one line per pipeline decision) and an
// operator-facing zap logger for phase-transition/warning messages.
package logging

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/gzhole/paymentguard/internal/redact"
)

// AuditEvent is one line of the compliance audit trail: what intent
// was evaluated, what each stage decided, and why.
type AuditEvent struct {
	Timestamp      string         `json:"timestamp"`
	IntentID       string         `json:"intent_id"`
	Recipient      string         `json:"recipient"`
	Amount         float64        `json:"amount"`
	Currency       string         `json:"currency"`
	Protocol       string         `json:"protocol"`
	Purpose        string         `json:"purpose"`
	Decision       string         `json:"decision"`
	Layer          string         `json:"layer,omitempty"`
	TriggeredRule  string         `json:"triggered_rule,omitempty"`
	UserAction     string         `json:"user_action,omitempty"`
	Error          string         `json:"error,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// AuditLogger appends AuditEvents to a JSONL file, redacting secrets
// out of free-text fields before they hit disk.
type AuditLogger struct {
	file *os.File
	mu   sync.Mutex
}

// New opens (creating if necessary) the audit log at path for append.
func New(path string) (*AuditLogger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	return &AuditLogger{file: file}, nil
}

// Log redacts sensitive fields and appends the event as one JSON line.
func (l *AuditLogger) Log(event AuditEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	event.Purpose = redact.Redact(event.Purpose)
	if event.Error != "" {
		event.Error = redact.Redact(event.Error)
	}
	if event.Metadata != nil {
		event.Metadata = redact.RedactMetadata(event.Metadata)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	_, err = l.file.Write(data)
	return err
}

func (l *AuditLogger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
