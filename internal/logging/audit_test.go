package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestAuditLogger_Log(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test_audit.jsonl")

	logger, err := New(logPath)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Close() }()

	event := AuditEvent{
		Timestamp: "2026-02-02T12:00:00Z",
		IntentID:  "pi_abc123",
		Recipient: "agent://api-provider.verified",
		Amount:    50,
		Currency:  "USDC",
		Protocol:  "ap2",
		Purpose:   "for API usage",
		Decision:  "ALLOW",
	}

	if err := logger.Log(event); err != nil {
		t.Fatalf("failed to log event: %v", err)
	}
	_ = logger.Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	var parsed AuditEvent
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("failed to parse log line as JSON: %v", err)
	}

	if parsed.IntentID != "pi_abc123" {
		t.Errorf("expected intent id 'pi_abc123', got '%s'", parsed.IntentID)
	}
	if parsed.Decision != "ALLOW" {
		t.Errorf("expected decision 'ALLOW', got '%s'", parsed.Decision)
	}
}

func TestAuditLogger_RedactsSensitivePurpose(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "audit.jsonl")

	logger, err := New(logPath)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Close() }()

	event := AuditEvent{
		Timestamp: "2026-02-02T12:00:00Z",
		IntentID:  "pi_xyz",
		Purpose:   "api_key=abcdefghijklmnop1234567890 please pay",
		Decision:  "BLOCK",
	}
	if err := logger.Log(event); err != nil {
		t.Fatalf("failed to log event: %v", err)
	}
	_ = logger.Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	var parsed AuditEvent
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("failed to parse log line as JSON: %v", err)
	}
	if parsed.Purpose == event.Purpose {
		t.Errorf("expected purpose to be redacted, got unchanged text")
	}
}

func TestAuditLogger_FilePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "secure_audit.jsonl")

	logger, err := New(logPath)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	_ = logger.Close()

	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("failed to stat log file: %v", err)
	}

	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("expected file permissions 0600, got %04o", perm)
	}
}
