// Package redact scrubs secrets out of text before it reaches an
// audit log or operator console: API keys, bearer tokens, private
// keys, and raw wallet private-key material an attacker might try to
// smuggle through a payment's purpose or metadata fields.
package redact

import (
	"regexp"
)

var sensitivePatterns = []*regexp.Regexp{
	// AWS
	regexp.MustCompile(`(?i)(aws_access_key_id|aws_secret_access_key|aws_session_token)\s*[=:]\s*['"]?[A-Za-z0-9/+=]{20,}['"]?`),
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),

	// GitHub
	regexp.MustCompile(`(?i)(github_token|gh_token|github_pat)\s*[=:]\s*['"]?[A-Za-z0-9_-]{30,}['"]?`),
	regexp.MustCompile(`ghp_[A-Za-z0-9]{36}`),
	regexp.MustCompile(`gho_[A-Za-z0-9]{36}`),
	regexp.MustCompile(`ghu_[A-Za-z0-9]{36}`),
	regexp.MustCompile(`ghs_[A-Za-z0-9]{36}`),
	regexp.MustCompile(`ghr_[A-Za-z0-9]{36}`),

	// Generic API keys
	regexp.MustCompile(`(?i)(api_key|apikey|api-key|secret_key|secretkey|secret-key|access_token|auth_token)\s*[=:]\s*['"]?[A-Za-z0-9_-]{16,}['"]?`),

	// Private keys (PEM armor and raw secp256k1/ed25519 hex material)
	regexp.MustCompile(`-----BEGIN (RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY-----`),
	regexp.MustCompile(`(?i)(private_key|privkey|seed_phrase|mnemonic)\s*[=:]\s*['"]?[^\s'"]{12,}['"]?`),
	regexp.MustCompile(`(?i)(seed_phrase|mnemonic)\s*[=:]\s*['"]?[a-z]+(?:\s+[a-z]+){2,}['"]?`),
	regexp.MustCompile(`\b0x[0-9a-fA-F]{64}\b`),

	// Bearer tokens
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_-]{20,}`),

	// Basic auth in URLs
	regexp.MustCompile(`https?://[^:]+:[^@]+@`),

	// Stripe
	regexp.MustCompile(`sk_live_[0-9a-zA-Z]{24}`),
	regexp.MustCompile(`rk_live_[0-9a-zA-Z]{24}`),

	// Generic password/secret assignments
	regexp.MustCompile(`(?i)(password|passwd|pwd|secret)\s*[=:]\s*['"]?[^\s'"]{8,}['"]?`),
}

const redactedPlaceholder = "[REDACTED]"

// Redact scrubs every recognized secret shape out of a free-text
// field (purpose, a metadata value) before it is logged.
func Redact(input string) string {
	result := input
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, redactedPlaceholder)
	}
	return result
}

// RedactMetadata returns a copy of an intent's metadata map with every
// string value passed through Redact. Non-string values pass through
// unchanged — they aren't going to carry smuggled secret text.
func RedactMetadata(metadata map[string]any) map[string]any {
	out := make(map[string]any, len(metadata))
	for k, v := range metadata {
		if s, ok := v.(string); ok {
			out[k] = Redact(s)
			continue
		}
		out[k] = v
	}
	return out
}
